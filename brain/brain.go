// Package brain implements the multi-head feedforward network behind the
// assistant's intent/sentiment/preference classification: bag-of-words input,
// one shared ReLU hidden layer, and a softmax output layer per head, trained
// with momentum-SGD.
//
// A Brain is not safe for concurrent use; every operation reads or mutates
// the shared weight matrices, so callers running training and inference from
// multiple goroutines must serialize access themselves.
package brain

import (
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/pandabrain/pandabrain/params"
	"github.com/pandabrain/pandabrain/utils"
)

// head is one softmax output layer plus its momentum buffers.
type head struct {
	size   int
	labels []string
	index  map[string]int // label -> class index

	w  *mat.Dense // (hidden x size)
	b  *mat.Dense // (size x 1)
	vw *mat.Dense
	vb *mat.Dense
}

// Brain owns every parameter of the network. Weights are Xavier-initialized
// at construction; the head set and all shapes are fixed from the config and
// never change afterward.
type Brain struct {
	cfg   params.Config
	rng   *rand.Rand
	vocab params.Vocabulary

	w1  *mat.Dense // (input x hidden)
	b1  *mat.Dense // (hidden x 1)
	vw1 *mat.Dense
	vb1 *mat.Dense

	heads     map[string]*head
	headNames []string // sorted, for deterministic iteration
}

// New builds a Brain from cfg. rng seeds weight init and epoch shuffling;
// pass nil for a time-seeded source (tests inject a fixed seed instead).
func New(cfg params.Config, rng *rand.Rand) (*Brain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	b := &Brain{cfg: cfg, rng: rng}

	b.w1 = mat.NewDense(cfg.InputSize, cfg.HiddenSize,
		utils.XavierArray(rng, cfg.InputSize, cfg.HiddenSize))
	b.b1 = mat.NewDense(cfg.HiddenSize, 1, nil)

	b.heads = make(map[string]*head, len(cfg.OutputHeads))
	for name, size := range cfg.OutputHeads {
		labels := cfg.HeadLabels[name]
		index := make(map[string]int, len(labels))
		for i, l := range labels {
			index[l] = i
		}
		b.heads[name] = &head{
			size:   size,
			labels: labels,
			index:  index,
			w: mat.NewDense(cfg.HiddenSize, size,
				utils.XavierArray(rng, cfg.HiddenSize, size)),
			b: mat.NewDense(size, 1, nil),
		}
		b.headNames = append(b.headNames, name)
	}
	sort.Strings(b.headNames)

	b.zeroMomentum()
	return b, nil
}

// zeroMomentum (re)allocates every velocity buffer. Called at construction
// and after every successful Load, since momentum is never persisted.
func (b *Brain) zeroMomentum() {
	b.vw1 = utils.ZerosLike(b.w1)
	b.vb1 = utils.ZerosLike(b.b1)
	for _, h := range b.heads {
		h.vw = utils.ZerosLike(h.w)
		h.vb = utils.ZerosLike(h.b)
	}
}

// Vocab returns the current learned vocabulary.
func (b *Brain) Vocab() params.Vocabulary {
	return b.vocab
}

// Config returns the construction-time configuration.
func (b *Brain) Config() params.Config {
	return b.cfg
}

// targetsFor maps supplied labels to per-head class indices. Labels for
// unknown heads and labels a head doesn't know are dropped.
func (b *Brain) targetsFor(labels map[string]string) map[string]int {
	targets := make(map[string]int)
	for name, label := range labels {
		h, ok := b.heads[name]
		if !ok || label == "" {
			continue
		}
		if idx, ok := h.index[label]; ok {
			targets[name] = idx
		}
	}
	return targets
}
