package losses

import (
	"errors"
	"fmt"
	"math"

	diffml "github.com/neilkichler/diff-ml"
	"github.com/unixpickle/anydiff"
)

// A Method selects which derivative information a Sobolev
// loss matches.
type Method int

// These are the Sobolev methods.
//
// The second-order methods are reserved for losses on
// Hessian-vector products, sampled along random directions
// (SecondOrderHutchinson) or along principal components of
// the inputs (SecondOrderPCA).
// They are not implemented, and Sobolev rejects them.
const (
	ZerothOrder Method = iota
	FirstOrder
	SecondOrderHutchinson
	SecondOrderPCA
)

// ParseMethod finds the Method with the given name, as
// returned by String.
func ParseMethod(name string) (Method, error) {
	for m := ZerothOrder; m <= SecondOrderPCA; m++ {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown Sobolev method: %s", name)
}

// String returns the name of the method.
func (m Method) String() string {
	switch m {
	case ZerothOrder:
		return "zeroth-order"
	case FirstOrder:
		return "first-order"
	case SecondOrderHutchinson:
		return "second-order-hutchinson"
	case SecondOrderPCA:
		return "second-order-pca"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// A BatchLoss computes a differentiable, one-component
// loss for a model on a batch.
type BatchLoss func(m diffml.Model, b *diffml.Batch) anydiff.Res

// Sobolev creates a BatchLoss from a base loss using the
// default weighting of 1.
//
// See SobolevWeighted for details.
func Sobolev(loss Loss, method Method) (BatchLoss, error) {
	return SobolevWeighted(loss, method, 1)
}

// SobolevWeighted creates a BatchLoss from a base loss.
//
// For ZerothOrder, the result applies loss to the batch
// targets and the model's predictions, and never asks the
// model for gradients.
//
// For FirstOrder, the result evaluates the model's values
// and input gradients together, applies loss to both the
// values and the packed gradients, and combines the two
// losses with the weights from LossBalance.
// Gradients are compared in their packed order: all the
// components of the first example, then of the second, and
// so on.
// If the model's outputs do not match the batch's targets
// in size, the result panics with a *ShapeError.
//
// Unimplemented methods yield an error wrapping
// ErrUnsupportedMethod.
// The weighting must be finite and non-negative.
func SobolevWeighted(loss Loss, method Method, weighting float64) (BatchLoss, error) {
	if math.IsNaN(weighting) || math.IsInf(weighting, 0) || weighting < 0 {
		return nil, fmt.Errorf("create Sobolev loss: invalid weighting: %v", weighting)
	}
	switch method {
	case ZerothOrder:
		return zerothOrder(loss), nil
	case FirstOrder:
		return firstOrder(loss, weighting), nil
	case SecondOrderHutchinson, SecondOrderPCA:
		return nil, fmt.Errorf("create Sobolev loss: %w: %s", ErrUnsupportedMethod, method)
	default:
		return nil, errors.New("create Sobolev loss: unknown method: " + method.String())
	}
}

// LossBalance computes the weights of the value loss
// (alpha) and the gradient loss (beta) for inputs with
// nDims dimensions.
//
// With a weighting of 1, every one of the 1+nDims scalar
// residuals of an example contributes equally.
// The weights always sum to 1.
func LossBalance(nDims int, weighting float64) (alpha, beta float64) {
	lambda := weighting * float64(nDims)
	numElements := 1 + lambda
	alpha = 1 / numElements
	beta = lambda / numElements
	return
}

func zerothOrder(loss Loss) BatchLoss {
	return func(m diffml.Model, b *diffml.Batch) anydiff.Res {
		return loss(b.Y, m.Apply(b.X, b.Num))
	}
}

func firstOrder(loss Loss, weighting float64) BatchLoss {
	return func(m diffml.Model, b *diffml.Batch) anydiff.Res {
		yPred, dydxPred := m.ValueAndGrad(b.X, b.Num)
		checkShape("values", b.Y, yPred)
		checkShape("gradients", b.DYDX, dydxPred)

		valueLoss := loss(b.Y, yPred)
		gradLoss := loss(b.DYDX, dydxPred)

		alpha, beta := LossBalance(b.Dims(), weighting)
		c := valueLoss.Output().Creator()
		return anydiff.Add(
			anydiff.Scale(valueLoss, c.MakeNumeric(alpha)),
			anydiff.Scale(gradLoss, c.MakeNumeric(beta)),
		)
	}
}

func checkShape(field string, target, pred anydiff.Res) {
	if target.Output().Len() != pred.Output().Len() {
		panic(&ShapeError{
			Field:     field,
			Target:    target.Output().Len(),
			Predicted: pred.Output().Len(),
		})
	}
}
