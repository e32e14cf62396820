package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"trust-lab/errors"
)

// WeightsFile is the on-disk export format: one independent logistic
// head per label over the shared hashed feature space.
type WeightsFile struct {
	Name     string               `json:"name"`
	Features int                  `json:"features"`
	Labels   map[string]LabelHead `json:"labels"`
}

type LabelHead struct {
	Bias   float64            `json:"bias"`
	Tokens map[string]float64 `json:"tokens"`
}

// Model is a frozen multi-label toxicity classifier consumed
// inference-only. Immutable after construction, safe for concurrent
// use.
type Model struct {
	name       string
	vectorizer Vectorizer
	heads      map[string]labelWeights
}

type labelWeights struct {
	bias    float64
	buckets map[int]float64
}

func NewModel(w WeightsFile) (*Model, error) {
	if w.Features <= 0 || len(w.Labels) == 0 {
		return nil, fmt.Errorf("%w: %q has no usable heads", errors.ErrModelWeights, w.Name)
	}
	m := &Model{
		name:       w.Name,
		vectorizer: NewVectorizer(w.Features),
		heads:      make(map[string]labelWeights, len(w.Labels)),
	}
	for label, head := range w.Labels {
		lw := labelWeights{bias: head.Bias, buckets: make(map[int]float64, len(head.Tokens))}
		for token, weight := range head.Tokens {
			// Colliding tokens accumulate, mirroring how the exporter
			// folds the vocabulary into the hashed space.
			lw.buckets[m.vectorizer.Index(token)] += weight
		}
		m.heads[label] = lw
	}
	return m, nil
}

// LoadModelFile deserializes an exported weights file. This is the slow
// path the gateway runs off the request goroutine.
func LoadModelFile(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrModelWeights, err)
	}
	var w WeightsFile
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrModelWeights, path, err)
	}
	return NewModel(w)
}

// Name identifies the loaded model in logs.
func (m *Model) Name() string { return m.name }

// Predict runs every label head over the hashed features of text.
// Pure and synchronous.
func (m *Model) Predict(text string) LabelScores {
	indices := m.vectorizer.Indices(text)
	var out LabelScores
	for label, head := range m.heads {
		z := head.bias
		for _, idx := range indices {
			z += head.buckets[idx]
		}
		score := sigmoid(z)
		switch label {
		case LabelToxic:
			out.Toxic = score
		case LabelSevereToxic:
			out.SevereToxic = score
		case LabelObscene:
			out.Obscene = score
		case LabelThreat:
			out.Threat = score
		case LabelInsult:
			out.Insult = score
		case LabelIdentityHate:
			out.IdentityHate = score
		}
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
