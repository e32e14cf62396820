package classifier

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"trust-lab/errors"
)

func TestLoadModelFile(t *testing.T) {
	req := require.New(t)

	m, err := LoadModelFile(filepath.Join("testdata", "weights.json"))
	req.NoError(err)
	req.Equal("toxic-xlm-distill-test", m.Name())

	scores := m.Predict("quel idiot")
	req.Greater(scores.Toxic, 0.5)
	req.Greater(scores.Insult, 0.5)
	req.Less(scores.IdentityHate, 0.1)
}

func TestLoadModelFile_Missing(t *testing.T) {
	req := require.New(t)

	_, err := LoadModelFile(filepath.Join("testdata", "no-such-weights.json"))
	req.ErrorIs(err, errors.ErrModelWeights)
}

func TestFallbackModel_Predict(t *testing.T) {
	req := require.New(t)
	m := FallbackModel()

	benign := m.Predict("what a lovely and thoughtful article")
	req.Less(benign.Toxic, 0.1)
	req.Less(benign.Threat, 0.1)
	req.Less(benign.SevereToxic, 0.1)

	toxic := m.Predict("fuck you idiot")
	req.Greater(toxic.Toxic, 0.8)
	req.Greater(toxic.Insult, 0.5)

	threat := m.Predict("i will kill you")
	req.Greater(threat.Threat, 0.5)
}

func TestFromList(t *testing.T) {
	req := require.New(t)

	// Missing labels stay at zero.
	s := FromList([]LabelScore{{Label: LabelSevereToxic, Score: 0.5}})
	req.Equal(0.5, s.SevereToxic)
	req.Zero(s.Toxic)
	req.Zero(s.Threat)

	// Unknown labels are ignored.
	s = FromList([]LabelScore{{Label: "sarcasm", Score: 0.9}})
	req.Equal(LabelScores{}, s)
}

func TestVectorizer_Deterministic(t *testing.T) {
	req := require.New(t)
	v := NewVectorizer(4096)

	a := v.Indices("some words some words")
	b := v.Indices("some words")
	req.Equal(b, a, "duplicate tokens fold into one feature")
	req.Equal(v.Index("words"), v.Index("words"))
}
