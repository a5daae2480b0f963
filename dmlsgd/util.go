package dmlsgd

import (
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// Shuffle shuffles a list of samples.
func Shuffle(s SampleList) {
	for i := 0; i < s.Len(); i++ {
		j := i + rand.Intn(s.Len()-i)
		s.Swap(i, j)
	}
}

// A ConstRater is a Rater which always returns the same
// constant learning rate.
type ConstRater float64

// Rate returns float64(c).
func (c ConstRater) Rate(epoch float64) float64 {
	return float64(c)
}

// CosterGrad computes the gradient of a Coster's cost
// with respect to params.
// It also returns the cost itself.
func CosterGrad(c Coster, b Batch, params []*anydiff.Var) (anydiff.Grad, anyvec.Numeric) {
	res := anydiff.NewGrad(params...)
	cost := c.TotalCost(b)
	if cost.Output().Len() != 1 {
		panic("cost must have exactly one component")
	}

	cr := cost.Output().Creator()
	upstream := cr.MakeVectorData(cr.MakeNumericList([]float64{1}))
	cost.Propagate(upstream, res)

	return res, anyvec.Sum(cost.Output())
}
