package brain

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/pandabrain/pandabrain/IO"
	"github.com/pandabrain/pandabrain/utils"
)

var (
	// ErrNotTrained is returned when prediction or online learning is
	// attempted before any vocabulary exists.
	ErrNotTrained = errors.New("model not trained")

	// ErrNoValidSamples is returned when no training sample carries a label
	// known to any configured head.
	ErrNoValidSamples = errors.New("no valid training samples")
)

// onlineLRScale damps single-interaction updates so one example can't drag
// the weights around.
const onlineLRScale = 0.1

type example struct {
	x       *mat.Dense
	targets map[string]int
}

// Train runs epoch-based per-sample training over the corpus and returns the
// average-loss history, one entry per epoch.
//
// The vocabulary is rebuilt from the sample texts and replaces the previous
// one — training is not incremental across vocabulary changes — but the swap
// only happens once at least one valid sample exists, so a failed call
// leaves the model exactly as it was.
//
// epochs <= 0 and lr <= 0 fall back to the configured defaults.
func (b *Brain) Train(samples []IO.Sample, epochs int, lr float64, verbose bool) ([]float64, error) {
	if epochs <= 0 {
		epochs = b.cfg.Epochs
	}
	if lr <= 0 {
		lr = b.cfg.LearningRate
	}

	texts := make([]string, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
	}
	vocab := IO.BuildVocabulary(texts, b.cfg.InputSize)

	var examples []example
	for _, s := range samples {
		targets := b.targetsFor(s.Labels)
		if len(targets) == 0 {
			continue
		}
		examples = append(examples, example{
			x:       IO.Vectorize(s.Text, vocab, b.cfg.InputSize),
			targets: targets,
		})
	}
	if len(examples) == 0 {
		return nil, ErrNoValidSamples
	}
	b.vocab = vocab

	history := make([]float64, 0, epochs)
	for epoch := 0; epoch < epochs; epoch++ {
		b.rng.Shuffle(len(examples), func(i, j int) {
			examples[i], examples[j] = examples[j], examples[i]
		})

		totalLoss := 0.0
		for _, ex := range examples {
			fr := b.Forward(ex.x)
			b.Backward(ex.x, fr, ex.targets, lr)
			for name, targetIdx := range ex.targets {
				totalLoss += utils.CrossEntropyLoss(fr.Outputs[name], targetIdx)
			}
		}

		avgLoss := totalLoss / float64(len(examples)*len(b.heads))
		history = append(history, avgLoss)

		if verbose && (epoch+1)%10 == 0 {
			fmt.Printf("  Epoch %4d/%d - loss: %.4f\n", epoch+1, epochs, avgLoss)
		}
	}

	return history, nil
}

// LearnOne applies a single reduced-learning-rate update from one new
// interaction, using the existing vocabulary. Returns false when the model
// has never been trained or none of the supplied labels is known to its
// head; no state changes in either case.
func (b *Brain) LearnOne(text string, labels map[string]string) bool {
	if b.vocab.Size() == 0 {
		return false
	}
	targets := b.targetsFor(labels)
	if len(targets) == 0 {
		return false
	}

	x := IO.Vectorize(text, b.vocab, b.cfg.InputSize)
	fr := b.Forward(x)
	b.Backward(x, fr, targets, b.cfg.LearningRate*onlineLRScale)
	return true
}

// Prediction is one head's verdict on an input.
type Prediction struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"all_scores"`
}

// Predict classifies text on every head: the arg-max label, its probability,
// and the full per-class distribution.
func (b *Brain) Predict(text string) (map[string]Prediction, error) {
	if b.vocab.Size() == 0 {
		return nil, ErrNotTrained
	}

	x := IO.Vectorize(text, b.vocab, b.cfg.InputSize)
	fr := b.Forward(x)

	predictions := make(map[string]Prediction, len(b.heads))
	for _, name := range b.headNames {
		hd := b.heads[name]
		probs := fr.Outputs[name]
		best := utils.ArgmaxVec(probs)

		scores := make(map[string]float64, hd.size)
		for i, label := range hd.labels {
			scores[label] = probs.At(i, 0)
		}
		predictions[name] = Prediction{
			Label:      hd.labels[best],
			Confidence: probs.At(best, 0),
			Scores:     scores,
		}
	}
	return predictions, nil
}
