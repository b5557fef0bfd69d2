package brain

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pandabrain/pandabrain/utils"
)

// ForwardResult carries everything the backward pass needs: the hidden
// pre-activation (for the ReLU derivative), the hidden activation (for the
// head weight gradients) and the per-head probability distributions.
type ForwardResult struct {
	Z1      *mat.Dense            // (hidden x 1) pre-activation
	Hidden  *mat.Dense            // (hidden x 1) ReLU(Z1)
	Outputs map[string]*mat.Dense // head name -> (size x 1) probabilities
}

// Forward runs one input column vector (input x 1) through the network.
// Pure over the current parameters; each head's output sums to 1.
func (b *Brain) Forward(x *mat.Dense) ForwardResult {
	z1 := utils.ToDense(utils.Dot(b.w1.T(), x)) // (hidden x 1)
	z1.Add(z1, b.b1)

	h := utils.ToDense(utils.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, z1))

	outputs := make(map[string]*mat.Dense, len(b.heads))
	for name, hd := range b.heads {
		logits := utils.ToDense(utils.Dot(hd.w.T(), h)) // (size x 1)
		logits.Add(logits, hd.b)
		outputs[name] = utils.ColVectorSoftmax(logits)
	}

	return ForwardResult{Z1: z1, Hidden: h, Outputs: outputs}
}
