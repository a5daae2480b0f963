package diffml

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var f Frozen
	serializer.RegisterTypedDeserializer(f.SerializerType(), DeserializeFrozen)
}

// Frozen wraps a Layer and does not implement
// Parameterizer, thus keeping the layer's variables out of
// Net.Parameters() and out of training.
//
// Normalization layers are frozen, since their statistics
// come from the data rather than from training.
type Frozen struct {
	Layer Layer
}

// DeserializeFrozen deserializes a Frozen.
func DeserializeFrozen(d []byte) (*Frozen, error) {
	var f Frozen
	if err := serializer.DeserializeAny(d, &f.Layer); err != nil {
		return nil, essentials.AddCtx("deserialize Frozen", err)
	}
	return &f, nil
}

// Apply applies the wrapped layer.
func (f *Frozen) Apply(in anydiff.Res, n int) anydiff.Res {
	return f.Layer.Apply(in, n)
}

// ApplyTwin applies the wrapped layer, which must be a
// TwinLayer.
func (f *Frozen) ApplyTwin(in anydiff.Res, n int) (anydiff.Res, Backward) {
	t, ok := f.Layer.(TwinLayer)
	if !ok {
		panic(fmt.Sprintf("frozen layer is not a TwinLayer: %T", f.Layer))
	}
	return t.ApplyTwin(in, n)
}

// SerializerType returns the unique ID used to serialize
// a Frozen with the serializer package.
func (f *Frozen) SerializerType() string {
	return "github.com/neilkichler/diff-ml.Frozen"
}

// Serialize serializes the Frozen.
func (f *Frozen) Serialize() ([]byte, error) {
	s, ok := f.Layer.(serializer.Serializer)
	if !ok {
		return nil, fmt.Errorf("not a Serializer: %T", f.Layer)
	}
	return serializer.SerializeAny(s)
}
