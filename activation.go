package diffml

import (
	"fmt"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/serializer"
)

func init() {
	var a Activation
	serializer.RegisterTypedDeserializer(a.SerializerType(), DeserializeActivation)
}

// An Activation is a component-wise activation function.
//
// Every Activation can produce its derivative, so it can
// be used in a twin network.
// Smooth activations are preferable for Sobolev training,
// since the derivative of ReLU is piecewise constant and
// carries no curvature information.
type Activation int

// These are the supported activation functions.
const (
	Tanh Activation = iota
	Sigmoid
	ReLU
	Sin
	Softplus
)

// DeserializeActivation deserializes an Activation.
func DeserializeActivation(d []byte) (Activation, error) {
	if len(d) != 1 {
		return 0, fmt.Errorf("deserialize Activation: data length (%d) should be 1", len(d))
	}
	a := Activation(d[0])
	if a > Softplus {
		return 0, fmt.Errorf("deserialize Activation: unknown activation ID: %d", a)
	}
	return a, nil
}

// Apply applies the activation function.
func (a Activation) Apply(in anydiff.Res, n int) anydiff.Res {
	switch a {
	case Tanh:
		return anydiff.Tanh(in)
	case Sigmoid:
		return anydiff.Sigmoid(in)
	case ReLU:
		return anydiff.ClipPos(in)
	case Sin:
		return anydiff.Sin(in)
	case Softplus:
		// softplus(x) = -log(sigmoid(-x))
		minusOne := in.Output().Creator().MakeNumeric(-1)
		return anydiff.Scale(anydiff.LogSigmoid(anydiff.Scale(in, minusOne)), minusOne)
	default:
		panic(fmt.Sprintf("unknown activation: %d", a))
	}
}

// ApplyTwin applies the activation function and returns a
// Backward which scales upstream gradients by the
// activation's derivative.
func (a Activation) ApplyTwin(in anydiff.Res, n int) (anydiff.Res, Backward) {
	out := a.Apply(in, n)
	var deriv anydiff.Res
	switch a {
	case Tanh:
		deriv = anydiff.Complement(anydiff.Square(out))
	case Sigmoid:
		deriv = anydiff.Mul(out, anydiff.Complement(out))
	case ReLU:
		mask := in.Output().Copy()
		mask.Scale(mask.Creator().MakeNumeric(-1))
		anyvec.LessThan(mask, mask.Creator().MakeNumeric(0))
		deriv = anydiff.NewConst(mask)
	case Sin:
		// cos(x) = sin(x + pi/2)
		shift := in.Output().Creator().MakeNumeric(math.Pi / 2)
		deriv = anydiff.Sin(anydiff.AddScalar(in, shift))
	case Softplus:
		deriv = anydiff.Sigmoid(in)
	default:
		panic(fmt.Sprintf("unknown activation: %d", a))
	}
	return out, func(upstream anydiff.Res) anydiff.Res {
		return anydiff.Mul(upstream, deriv)
	}
}

// String returns the name of the activation.
func (a Activation) String() string {
	switch a {
	case Tanh:
		return "tanh"
	case Sigmoid:
		return "sigmoid"
	case ReLU:
		return "relu"
	case Sin:
		return "sin"
	case Softplus:
		return "softplus"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

// ParseActivation finds the Activation with the given
// name, as returned by String.
func ParseActivation(name string) (Activation, error) {
	for a := Tanh; a <= Softplus; a++ {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown activation: %s", name)
}

// SerializerType returns the unique ID used to serialize
// an Activation.
func (a Activation) SerializerType() string {
	return "github.com/neilkichler/diff-ml.Activation"
}

// Serialize serializes the activation.
func (a Activation) Serialize() ([]byte, error) {
	return []byte{byte(a)}, nil
}
