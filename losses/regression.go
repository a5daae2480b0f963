// Package losses implements regression losses for
// differentiable models, including Sobolev losses which
// also match the derivatives of a model.
package losses

import (
	"fmt"
	"math"

	"github.com/unixpickle/anydiff"
)

// A Loss measures the discrepancy between packed targets
// and packed predictions of equal length.
//
// The result has exactly one component.
// A Loss must be pure, so that it can be called
// concurrently and composed by Sobolev.
type Loss func(y, predY anydiff.Res) anydiff.Res

// MSE computes the mean of the squared differences between
// y and predY.
//
// For empty inputs, the result is NaN.
func MSE(y, predY anydiff.Res) anydiff.Res {
	checkLengths(y, predY)
	c := y.Output().Creator()
	if y.Output().Len() == 0 {
		nan := c.MakeVector(1)
		nan.AddScalar(c.MakeNumeric(math.NaN()))
		return anydiff.NewConst(nan)
	}
	n := float64(y.Output().Len())
	sq := anydiff.Square(anydiff.Sub(y, predY))
	return anydiff.Scale(anydiff.Sum(sq), c.MakeNumeric(1/n))
}

// RMSE computes the square root of the MSE.
//
// The gradient of RMSE is undefined when the MSE is 0.
func RMSE(y, predY anydiff.Res) anydiff.Res {
	mse := MSE(y, predY)
	return anydiff.Pow(mse, mse.Output().Creator().MakeNumeric(0.5))
}

func checkLengths(y, predY anydiff.Res) {
	if y.Output().Len() != predY.Output().Len() {
		panic(fmt.Sprintf("target length %d does not match prediction length %d",
			y.Output().Len(), predY.Output().Len()))
	}
}
