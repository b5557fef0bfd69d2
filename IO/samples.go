package IO

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Sample is one labeled training record. Labels maps head name to label
// string; heads without a label simply don't contribute to that sample's
// loss, and unknown head names are ignored by the trainer.
type Sample struct {
	Text   string
	Labels map[string]string
}

// UnmarshalJSON flattens the corpus record shape
// {"text": "...", "intent": "...", "sentiment": "...", ...} where every
// non-text key is a head label.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Text = raw["text"]
	delete(raw, "text")
	s.Labels = raw
	return nil
}

func (s Sample) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(s.Labels)+1)
	for k, v := range s.Labels {
		flat[k] = v
	}
	flat["text"] = s.Text
	return json.Marshal(flat)
}

// LoadSamples reads a {"samples": [...]} training corpus file.
func LoadSamples(path string) ([]Sample, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read training data %s", path)
	}
	var doc struct {
		Samples []Sample `json:"samples"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "invalid training data %s", path)
	}
	return doc.Samples, nil
}
