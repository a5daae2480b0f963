package diffml

import (
	"fmt"

	"github.com/unixpickle/anyvec"
)

// NewMLP creates a randomly initialized multi-layer
// perceptron with a single output.
//
// Each hidden layer is a fully-connected layer followed by
// the activation.
// The output layer is linear.
func NewMLP(c anyvec.Creator, inCount int, hidden []int, act Activation) Net {
	var res Net
	prev := inCount
	for _, size := range hidden {
		res = append(res, NewFC(c, prev, size), act)
		prev = size
	}
	return append(res, NewFC(c, prev, 1))
}

// Normalization stores the statistics used to move inputs
// and outputs of a model into a standardized space.
//
// Standard deviations of zero are treated as one.
type Normalization struct {
	InMean []float64
	InStd  []float64

	OutMean float64
	OutStd  float64
}

// Wrap creates a Net which normalizes its inputs, feeds
// them to net, and denormalizes the result.
//
// The normalization layers are frozen, so the parameters
// of the resulting Net are exactly the parameters of net.
// Input gradients are in the original, unnormalized space.
func (n *Normalization) Wrap(c anyvec.Creator, net Net) Net {
	if len(n.InMean) != len(n.InStd) {
		panic(fmt.Sprintf("mean has %d components but std has %d",
			len(n.InMean), len(n.InStd)))
	}
	inScalers := make([]float64, len(n.InMean))
	inBiases := make([]float64, len(n.InMean))
	for i, mean := range n.InMean {
		std := nonZero(n.InStd[i])
		inScalers[i] = 1 / std
		inBiases[i] = -mean / std
	}
	normalize := NewAffine(c, inScalers, inBiases)
	denormalize := NewAffine(c, []float64{nonZero(n.OutStd)}, []float64{n.OutMean})

	res := Net{&Frozen{Layer: normalize}}
	res = append(res, net...)
	return append(res, &Frozen{Layer: denormalize})
}

func nonZero(std float64) float64 {
	if std == 0 {
		return 1
	}
	return std
}
