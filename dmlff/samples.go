package dmlff

import (
	"github.com/neilkichler/diff-ml/dmlsgd"
	"github.com/unixpickle/anyvec"
)

// A Sample is a training sample for Sobolev regression.
// It pairs an input with the target value and the target
// gradient of the value with respect to the input.
type Sample struct {
	Input anyvec.Vector

	// Output has exactly one component.
	Output anyvec.Vector

	// Grad has as many components as Input.
	Grad anyvec.Vector
}

// NewSample creates a Sample from raw values.
func NewSample(c anyvec.Creator, x []float64, y float64, dydx []float64) *Sample {
	return &Sample{
		Input:  c.MakeVectorData(c.MakeNumericList(x)),
		Output: c.MakeVectorData(c.MakeNumericList([]float64{y})),
		Grad:   c.MakeVectorData(c.MakeNumericList(dydx)),
	}
}

// A SampleList is a dmlsgd.SampleList that produces
// Sobolev samples.
type SampleList interface {
	dmlsgd.SampleList

	GetSample(idx int) (*Sample, error)
}

// A SliceSampleList is a concrete SampleList with
// predetermined samples.
type SliceSampleList []*Sample

// Len returns the number of samples.
func (s SliceSampleList) Len() int {
	return len(s)
}

// Swap swaps two samples.
func (s SliceSampleList) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// Slice copies a sub-slice of the list.
func (s SliceSampleList) Slice(i, j int) dmlsgd.SampleList {
	return append(SliceSampleList{}, s[i:j]...)
}

// GetSample returns the sample at the index.
func (s SliceSampleList) GetSample(idx int) (*Sample, error) {
	return s[idx], nil
}
