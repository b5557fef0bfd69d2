package params

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config fixes the network shape and training defaults at construction time.
// Head set and sizes never change after a Brain is built from it.
type Config struct {
	InputSize    int            // vocabulary capacity / input layer width
	HiddenSize   int            // shared hidden layer width
	OutputHeads  map[string]int // head name -> number of classes
	HeadLabels   map[string][]string
	LearningRate float64
	Epochs       int // default epoch count for training runs

	Version int

	// Paths the persistence layer uses. No implicit resolution anywhere;
	// whatever is here is what gets opened.
	WeightsPath  string
	TrainLogPath string
}

// configFile mirrors model_config.json.
type configFile struct {
	Version      int `json:"version"`
	Architecture struct {
		InputSize    int            `json:"input_size"`
		HiddenSize   int            `json:"hidden_size"`
		OutputHeads  map[string]int `json:"output_heads"`
		LearningRate float64        `json:"learning_rate"`
		Epochs       int            `json:"epochs"`
	} `json:"architecture"`
	IntentLabels     []string `json:"intent_labels"`
	SentimentLabels  []string `json:"sentiment_labels"`
	PreferenceLabels []string `json:"preference_labels"`
}

// LoadConfig reads a model_config.json-shaped file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "can't read config %s", path)
	}

	var cf configFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return Config{}, errors.Wrapf(err, "can't parse config %s", path)
	}

	cfg := Config{
		InputSize:    cf.Architecture.InputSize,
		HiddenSize:   cf.Architecture.HiddenSize,
		OutputHeads:  cf.Architecture.OutputHeads,
		LearningRate: cf.Architecture.LearningRate,
		Epochs:       cf.Architecture.Epochs,
		Version:      cf.Version,
		HeadLabels: map[string][]string{
			"intent":     cf.IntentLabels,
			"sentiment":  cf.SentimentLabels,
			"preference": cf.PreferenceLabels,
		},
	}
	if cfg.Version == 0 {
		cfg.Version = 2
	}

	// Drop label lists for heads the architecture doesn't declare.
	for name := range cfg.HeadLabels {
		if _, ok := cfg.OutputHeads[name]; !ok {
			delete(cfg.HeadLabels, name)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks that the shapes in the config are coherent. Heads are
// validated against their label lists; an output size never gets inferred
// from data later, so it has to be right here.
func (c Config) Validate() error {
	if c.InputSize <= 0 {
		return errors.Errorf("input_size must be positive, got %d", c.InputSize)
	}
	if c.HiddenSize <= 0 {
		return errors.Errorf("hidden_size must be positive, got %d", c.HiddenSize)
	}
	if len(c.OutputHeads) == 0 {
		return errors.New("at least one output head required")
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("learning_rate must be positive, got %g", c.LearningRate)
	}
	for name, size := range c.OutputHeads {
		if size <= 0 {
			return errors.Errorf("head %q: size must be positive, got %d", name, size)
		}
		labels := c.HeadLabels[name]
		if len(labels) != size {
			return errors.Errorf("head %q: %d labels for %d classes", name, len(labels), size)
		}
		seen := make(map[string]bool, len(labels))
		for _, l := range labels {
			if seen[l] {
				return errors.Errorf("head %q: duplicate label %q", name, l)
			}
			seen[l] = true
		}
	}
	return nil
}

// DefaultConfig is the architecture the assistant ships with.
func DefaultConfig() Config {
	return Config{
		InputSize:  50,
		HiddenSize: 24,
		OutputHeads: map[string]int{
			"intent":     6,
			"sentiment":  3,
			"preference": 3,
		},
		HeadLabels: map[string][]string{
			"intent":     {"GREETING", "QUESTION", "COMMAND", "REMINDER", "SMALLTALK", "GOODBYE"},
			"sentiment":  {"POSITIVE", "NEUTRAL", "NEGATIVE"},
			"preference": {"FORMAL", "CASUAL", "PLAYFUL"},
		},
		LearningRate: 0.05,
		Epochs:       100,
		Version:      2,
		WeightsPath:  "data/weights.json",
		TrainLogPath: "data/training_log.json",
	}
}
