package optimizations

import (
	"gonum.org/v1/gonum/mat"
)

// Momentum is the fixed decay factor for all momentum-SGD updates.
const Momentum = 0.9

// SGDMomentumInPlace applies one momentum-SGD step:
//
//	v = momentum*v + lr*g
//	p -= v
//
// p, g and v must share a shape; the velocity buffer v carries state across
// calls and must be zeroed whenever the parameters it tracks are replaced.
func SGDMomentumInPlace(p, g, v *mat.Dense, lr float64) {
	pr, pc := p.Dims()
	if gr, gc := g.Dims(); gr != pr || gc != pc {
		panic("SGDMomentumInPlace: grad shape mismatch")
	}
	if vr, vc := v.Dims(); vr != pr || vc != pc {
		panic("SGDMomentumInPlace: velocity shape mismatch")
	}
	for i := 0; i < pr; i++ {
		for j := 0; j < pc; j++ {
			vij := Momentum*v.At(i, j) + lr*g.At(i, j)
			v.Set(i, j, vij)
			p.Set(i, j, p.At(i, j)-vij)
		}
	}
}
