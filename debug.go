package diffml

import (
	"fmt"
	"io"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/serializer"
)

func init() {
	serializer.RegisterTypedDeserializer((&Debug{}).SerializerType(), DeserializeDebug)
}

// Debug is a layer which logs statistics about the values
// flowing through it and, in a twin network, about the
// gradients flowing back through it.
// Besides logging, the Debug layer does nothing to
// interfere with the flow of values in a network.
type Debug struct {
	// Writer to which stats are printed.
	// If nil, os.Stdout is used.
	Writer io.Writer

	ID            string
	PrintRaw      bool
	PrintMean     bool
	PrintVariance bool
}

// DeserializeDebug deserializes a Debug layer.
// The Writer will be nil.
func DeserializeDebug(d []byte) (*Debug, error) {
	var res Debug
	err := serializer.DeserializeAny(d, &res.ID, &res.PrintRaw, &res.PrintMean,
		&res.PrintVariance)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Apply logs information about its input.
// The input is returned, untouched.
func (d *Debug) Apply(in anydiff.Res, n int) anydiff.Res {
	d.printStats("values", in.Output(), n)
	return in
}

// ApplyTwin logs information about its input, and the
// returned Backward logs information about the upstream
// gradients.
// Both directions are the identity.
func (d *Debug) ApplyTwin(in anydiff.Res, n int) (anydiff.Res, Backward) {
	return d.Apply(in, n), func(upstream anydiff.Res) anydiff.Res {
		d.printStats("gradients", upstream.Output(), n)
		return upstream
	}
}

// SerializerType returns the unique ID used to serialize
// a Debug layer with the serializer package.
func (d *Debug) SerializerType() string {
	return "github.com/neilkichler/diff-ml.Debug"
}

// Serialize serializes the layer.
func (d *Debug) Serialize() ([]byte, error) {
	return serializer.SerializeAny(d.ID, d.PrintRaw, d.PrintMean, d.PrintVariance)
}

func (d *Debug) printStats(kind string, vec anyvec.Vector, n int) {
	if d.PrintRaw {
		d.println("batch of", n, kind+":", vec.Data())
	}
	if !d.PrintMean && !d.PrintVariance {
		return
	}
	cols := vec.Len() / n
	mean := anyvec.SumRows(vec, cols)
	normalizer := mean.Creator().MakeNumeric(1 / float64(n))
	mean.Scale(normalizer)
	if d.PrintMean {
		d.println(kind, "mean:", mean.Data())
	}
	if d.PrintVariance {
		two := mean.Creator().MakeNumeric(2)
		squared := vec.Copy()
		anyvec.Pow(squared, two)
		variance := anyvec.SumRows(squared, cols)
		variance.Scale(normalizer)
		anyvec.Pow(mean, two)
		variance.Sub(mean)
		d.println(kind, "variance:", variance.Data())
	}
}

func (d *Debug) println(args ...interface{}) {
	newArgs := append([]interface{}{"Debug (" + d.ID + "):"}, args...)
	if d.Writer == nil {
		fmt.Println(newArgs...)
	} else {
		fmt.Fprintln(d.Writer, newArgs...)
	}
}
