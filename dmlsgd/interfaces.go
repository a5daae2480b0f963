// Package dmlsgd provides stochastic gradient descent for
// models trained with Sobolev losses.
package dmlsgd

import "github.com/unixpickle/anydiff"

// A SampleList represents a list of training samples.
type SampleList interface {
	// Len returns the number of samples.
	Len() int

	// Swap swaps two samples.
	Swap(i, j int)

	// Slice generates a shallow copy of a subset of the
	// list.
	Slice(i, j int) SampleList
}

// A Batch is an immutable, fetched list of samples.
//
// Batches are obtained using a Fetcher and then used as
// arguments to a Gradienter.
type Batch interface{}

// A Fetcher is responsible for fetching Batches for
// SampleLists.
//
// SGD calls Fetch from a separate goroutine, so the next
// Batch can be loaded while a gradient is computed.
type Fetcher interface {
	Fetch(s SampleList) (Batch, error)
}

// A Gradienter computes a gradient for a Batch.
//
// The same gradient instance may be re-used by successive
// calls to Gradient.
type Gradienter interface {
	Gradient(b Batch) anydiff.Grad
}

// A Coster computes differentiable costs for a Batch.
// The resulting cost vectors should have one component.
type Coster interface {
	TotalCost(b Batch) anydiff.Res
}

// A Transformer transforms gradients, for example to
// implement momentum or adaptive learning rates.
//
// A Transformer may modify its input and return it.
// It should not retain a reference to its input.
type Transformer interface {
	Transform(g anydiff.Grad) anydiff.Grad
}

// A Rater determines the learning rate given the epoch
// number.
// An "epoch" is a full pass over the training set, so
// fractional epochs are possible.
type Rater interface {
	Rate(epoch float64) float64
}
