package domain

// Severity buckets produced by the classifier-backed combiner.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// TierCounts records how many lexicon phrases matched per severity tier.
type TierCounts struct {
	Extreme  int `json:"extreme"`
	High     int `json:"high"`
	Moderate int `json:"moderate"`
	Spam     int `json:"spam"`
}

// RiskMetadata carries the statistical context behind a risk score, for
// audit and operator tooling only.
type RiskMetadata struct {
	Entropy        float64    `json:"entropy"`
	UppercaseRatio float64    `json:"uppercase_ratio"`
	LinkCount      int        `json:"link_count"`
	Language       string     `json:"language,omitempty"`
	TierMatches    TierCounts `json:"tier_matches"`
}

// RiskAssessment is the heuristic verdict. Computed fresh per
// submission and immutable afterwards.
type RiskAssessment struct {
	RiskScore int          `json:"risk_score"`
	Approved  bool         `json:"approved"`
	ShadowBan bool         `json:"shadow_ban"`
	Reasons   []string     `json:"reasons"`
	Metadata  RiskMetadata `json:"metadata"`
}

// VerdictScores is the probability-like triple exposed for audit. The
// three values sum to 1; they do not drive the allow decision.
type VerdictScores struct {
	Normal   float64 `json:"normal"`
	Moderate float64 `json:"moderate"`
	High     float64 `json:"high"`
}

// ModerationVerdict is the classifier-path verdict.
type ModerationVerdict struct {
	Severity Severity      `json:"severity"`
	Allow    bool          `json:"allow"`
	Scores   VerdictScores `json:"scores"`
}

// Outcome is the fused decision for a submission.
type Outcome struct {
	Allow       bool
	ShadowBan   bool
	Discard     bool
	RateLimited bool
	Risk        RiskAssessment
	Verdict     ModerationVerdict
}
