package utils

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Matrix helpers shared by the forward/backward passes.

func Dot(m, n mat.Matrix) mat.Matrix {
	r, _ := m.Dims()
	_, c := n.Dims()
	o := mat.NewDense(r, c, nil)
	o.Product(m, n)
	return o
}

func Apply(fn func(i, j int, v float64) float64, m mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(fn, m)
	return o
}

func ToDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}

func ZerosLike(a *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	return mat.NewDense(r, c, nil)
}

// ColData exposes the backing slice of a (r x 1) vector.
func ColData(v *mat.Dense) []float64 {
	_, c := v.Dims()
	if c != 1 {
		panic("ColData expects a (r x 1) column vector")
	}
	return v.RawMatrix().Data
}

// ColVectorSoftmax applies softmax across the single column of a (r x 1)
// vector, subtracting the max first so large logits can't overflow Exp.
func ColVectorSoftmax(v *mat.Dense) *mat.Dense {
	r, _ := v.Dims()
	out := mat.NewDense(r, 1, nil)
	raw := ColData(out)
	mx := floats.Max(ColData(v))
	for i := 0; i < r; i++ {
		raw[i] = math.Exp(v.At(i, 0) - mx)
	}
	sum := floats.Sum(raw)
	for i := range raw {
		raw[i] /= sum
	}
	return out
}

// CrossEntropyLoss for a single sample: -ln(p[target]), with p clamped to
// 1e-15 so an all-wrong prediction can't produce -Inf.
func CrossEntropyLoss(probs *mat.Dense, targetIdx int) float64 {
	p := probs.At(targetIdx, 0)
	if p < 1e-15 {
		p = 1e-15
	}
	return -math.Log(p)
}

// ArgmaxVec returns the index of the largest entry of a column vector.
func ArgmaxVec(v *mat.Dense) int {
	return floats.MaxIdx(ColData(v))
}

// XavierArray fills a slice with uniform values in ±sqrt(6/(fanIn+fanOut)).
func XavierArray(rng *rand.Rand, fanIn, fanOut int) []float64 {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	out := make([]float64, fanIn*fanOut)
	for i := range out {
		out[i] = -limit + 2*limit*rng.Float64()
	}
	return out
}

func OneHot(n, idx int) *mat.Dense {
	v := make([]float64, n)
	if idx >= 0 && idx < n {
		v[idx] = 1.0
	}
	return mat.NewDense(n, 1, v)
}
