package brain

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pandabrain/pandabrain/optimizations"
	"github.com/pandabrain/pandabrain/utils"
)

// Backward applies one momentum-SGD step for the heads named in targets,
// then propagates their combined gradient through the shared hidden layer.
// Heads without a target are skipped entirely: their weights stay untouched
// and they contribute nothing to the hidden gradient. An empty (or fully
// unknown) targets map leaves every parameter and velocity buffer as-is.
//
// Invariant: the hidden gradient reads each head's weights before that
// head's update writes them.
func (b *Brain) Backward(x *mat.Dense, fr ForwardResult, targets map[string]int, lr float64) {
	dh := mat.NewDense(b.cfg.HiddenSize, 1, nil)
	touched := 0

	for name, targetIdx := range targets {
		hd, ok := b.heads[name]
		if !ok {
			continue
		}
		touched++

		// dL/dlogit = prob - one_hot(target)
		dOut := mat.DenseCopyOf(fr.Outputs[name])
		dOut.Set(targetIdx, 0, dOut.At(targetIdx, 0)-1.0)

		// Accumulate the hidden gradient from the pre-update weights.
		dh.Add(dh, utils.Dot(hd.w, dOut))

		gw := utils.ToDense(utils.Dot(fr.Hidden, dOut.T())) // (hidden x size)
		optimizations.SGDMomentumInPlace(hd.w, gw, hd.vw, lr)
		optimizations.SGDMomentumInPlace(hd.b, dOut, hd.vb, lr)
	}

	if touched == 0 {
		return
	}

	// ReLU derivative on the accumulated hidden gradient.
	for j := 0; j < b.cfg.HiddenSize; j++ {
		if fr.Z1.At(j, 0) <= 0 {
			dh.Set(j, 0, 0)
		}
	}

	gw1 := utils.ToDense(utils.Dot(x, dh.T())) // (input x hidden)
	optimizations.SGDMomentumInPlace(b.w1, gw1, b.vw1, lr)
	optimizations.SGDMomentumInPlace(b.b1, dh, b.vb1, lr)
}
