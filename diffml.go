// Package diffml provides differentiable regression models
// which expose both their predictions and the gradients of
// those predictions with respect to their inputs.
//
// Sub-packages implement Sobolev losses over such models
// and the machinery for training them.
package diffml

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var n Net
	serializer.RegisterTypedDeserializer(n.SerializerType(), DeserializeNet)
}

// A Parameterizer is anything with learnable variables.
//
// The parameters of a Parameterizer must be in the same
// order every time Parameters() is called.
type Parameterizer interface {
	Parameters() []*anydiff.Var
}

// A Layer is a batched computation unit for use in a
// Net.
//
// The input's length must be divisible by the batch size,
// since the batch size indicates how many equally-long
// vectors are packed into the input vector.
type Layer interface {
	Apply(in anydiff.Res, batchSize int) anydiff.Res
}

// Backward maps the gradient of some scalar with respect
// to a layer's outputs to the gradient of that scalar
// with respect to the layer's inputs.
//
// The result is itself an anydiff.Res, so it can be
// differentiated with respect to the layer's parameters.
type Backward func(upstream anydiff.Res) anydiff.Res

// A TwinLayer is a Layer that can also produce the
// backward pass of its Jacobian as a differentiable
// computation.
type TwinLayer interface {
	Layer

	// ApplyTwin applies the layer like Apply and returns
	// the Backward for the same inputs.
	ApplyTwin(in anydiff.Res, batchSize int) (anydiff.Res, Backward)
}

// A Model is a differentiable function from input vectors
// to scalars.
type Model interface {
	// Apply evaluates the model on n packed inputs and
	// produces n predictions.
	Apply(in anydiff.Res, n int) anydiff.Res

	// ValueAndGrad evaluates the model on n packed inputs,
	// producing the n predictions and the n packed
	// gradients of each prediction with respect to its
	// input, in one evaluation.
	ValueAndGrad(in anydiff.Res, n int) (values, grads anydiff.Res)
}

// A Net evaluates a list of layers, one after another.
//
// When used as a Model, the last layer must produce one
// value per example and every layer must be a TwinLayer.
type Net []Layer

// DeserializeNet attempts to deserialize the network.
func DeserializeNet(d []byte) (Net, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Net", err)
	}
	res := make(Net, len(slice))
	for i, x := range slice {
		if layer, ok := x.(Layer); ok {
			res[i] = layer
		} else {
			return nil, fmt.Errorf("deserialize Net: not a Layer: %T", x)
		}
	}
	return res, nil
}

// Apply applies the network to a batch.
// If the network contains no layers, the input is
// returned as output.
func (n Net) Apply(in anydiff.Res, batchSize int) anydiff.Res {
	for _, l := range n {
		in = l.Apply(in, batchSize)
	}
	return in
}

// ValueAndGrad applies the network to a batch and
// back-propagates a unit upstream through every layer's
// Backward, yielding the input gradients.
//
// Every intermediate result is pooled, so each node in
// the graph is only propagated through once.
//
// If the last layer does not produce one value per
// example, ValueAndGrad panics with a *ShapeError.
func (n Net) ValueAndGrad(in anydiff.Res, batchSize int) (values, grads anydiff.Res) {
	twins := make([]TwinLayer, len(n))
	for i, l := range n {
		t, ok := l.(TwinLayer)
		if !ok {
			panic(fmt.Sprintf("layer %d is not a TwinLayer: %T", i, l))
		}
		twins[i] = t
	}
	inLen := in.Output().Len()
	joined := applyTwins(twins, in, batchSize)
	values = anydiff.Slice(joined, 0, batchSize)
	grads = anydiff.Slice(joined, batchSize, batchSize+inLen)
	return
}

// Parameters returns the parameters of the network.
//
// Every layer which implements Parameterizer will have
// its parameters added to the slice.
// Parameters are ordered from the first layer onwards.
func (n Net) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, x := range n {
		if p, ok := x.(Parameterizer); ok {
			res = append(res, p.Parameters()...)
		}
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Net with the serializer package.
func (n Net) SerializerType() string {
	return "github.com/neilkichler/diff-ml.Net"
}

// Serialize attempts to serialize the network.
// If any Layer is not a serializer.Serializer,
// this fails.
func (n Net) Serialize() ([]byte, error) {
	var slice []serializer.Serializer
	for _, x := range n {
		if s, ok := x.(serializer.Serializer); ok {
			slice = append(slice, s)
		} else {
			return nil, fmt.Errorf("not a Serializer: %T", x)
		}
	}
	return serializer.SerializeSlice(slice)
}

// applyTwins produces the outputs of the layers followed
// by the gradients of the outputs with respect to in.
func applyTwins(layers []TwinLayer, in anydiff.Res, n int) anydiff.Res {
	if len(layers) == 0 {
		if in.Output().Len() != n {
			panic(&ShapeError{Field: "values", Target: n, Predicted: in.Output().Len()})
		}
		c := in.Output().Creator()
		ones := c.MakeVector(n)
		ones.AddScalar(c.MakeNumeric(1))
		return anydiff.Concat(in, anydiff.NewConst(ones))
	}
	return anydiff.Pool(in, func(in anydiff.Res) anydiff.Res {
		out, back := layers[0].ApplyTwin(in, n)
		rest := applyTwins(layers[1:], out, n)
		return anydiff.Pool(rest, func(rest anydiff.Res) anydiff.Res {
			return anydiff.Concat(
				anydiff.Slice(rest, 0, n),
				back(anydiff.Slice(rest, n, rest.Output().Len())),
			)
		})
	})
}
