package classifier

// Canonical label names emitted by the toxicity models.
const (
	LabelToxic        = "toxic"
	LabelSevereToxic  = "severe_toxic"
	LabelObscene      = "obscene"
	LabelThreat       = "threat"
	LabelInsult       = "insult"
	LabelIdentityHate = "identity_hate"
)

// LabelScore is one (label, probability) pair.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// LabelScores is the strongly-typed result shape. A label the model did
// not emit stays at its zero value.
type LabelScores struct {
	Toxic        float64
	SevereToxic  float64
	Obscene      float64
	Threat       float64
	Insult       float64
	IdentityHate float64
}

// FromList folds a label list into the typed struct, ignoring labels it
// does not know about.
func FromList(list []LabelScore) LabelScores {
	var s LabelScores
	for _, ls := range list {
		switch ls.Label {
		case LabelToxic:
			s.Toxic = ls.Score
		case LabelSevereToxic:
			s.SevereToxic = ls.Score
		case LabelObscene:
			s.Obscene = ls.Score
		case LabelThreat:
			s.Threat = ls.Score
		case LabelInsult:
			s.Insult = ls.Score
		case LabelIdentityHate:
			s.IdentityHate = ls.Score
		}
	}
	return s
}

// List flattens the struct back into label pairs, in canonical order.
func (s LabelScores) List() []LabelScore {
	return []LabelScore{
		{Label: LabelToxic, Score: s.Toxic},
		{Label: LabelSevereToxic, Score: s.SevereToxic},
		{Label: LabelObscene, Score: s.Obscene},
		{Label: LabelThreat, Score: s.Threat},
		{Label: LabelInsult, Score: s.Insult},
		{Label: LabelIdentityHate, Score: s.IdentityHate},
	}
}
