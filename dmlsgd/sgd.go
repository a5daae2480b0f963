package dmlsgd

import (
	"errors"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/essentials"
)

// SGD performs stochastic gradient descent.
type SGD struct {
	// Fetcher is used to load each mini-batch.
	Fetcher Fetcher

	// Gradienter computes the untransformed gradient of
	// each mini-batch.
	Gradienter Gradienter

	// Transformer, if non-nil, is used to transform each
	// gradient before the step.
	Transformer Transformer

	// Samples is the list of training samples.
	// It is shuffled at the start of every epoch.
	Samples SampleList

	// Rater determines the learning rate for each step.
	Rater Rater

	// StatusFunc, if non-nil, is called before every
	// iteration with the next mini-batch.
	StatusFunc func(b Batch)

	// BatchSize is the mini-batch size.
	// If it is 0, the entire sample list is used at every
	// iteration.
	BatchSize int

	// NumProcessed is the number of samples that have
	// been passed to Gradienter so far.
	// It determines the epoch passed to Rater.
	NumProcessed int
}

type fetchResult struct {
	Batch Batch
	Size  int
	Err   error
}

// Run runs SGD until done is closed or a batch cannot be
// fetched.
func (s *SGD) Run(done <-chan struct{}) error {
	if s.Samples.Len() == 0 {
		return errors.New("run SGD: empty sample list")
	}

	idx := s.Samples.Len()
	pending := s.fetch(s.nextSamples(&idx))
	for {
		select {
		case <-done:
			return nil
		default:
		}

		res := <-pending
		if res.Err != nil {
			return essentials.AddCtx("run SGD", res.Err)
		}
		pending = s.fetch(s.nextSamples(&idx))

		if s.StatusFunc != nil {
			s.StatusFunc(res.Batch)
			select {
			case <-done:
				return nil
			default:
			}
		}

		grad := s.Gradienter.Gradient(res.Batch)
		if s.Transformer != nil {
			grad = s.Transformer.Transform(grad)
		}

		epoch := float64(s.NumProcessed) / float64(s.Samples.Len())
		scaleGrad(grad, -s.Rater.Rate(epoch))
		grad.AddToVars()

		s.NumProcessed += res.Size
	}
}

// nextSamples slices the next mini-batch off the sample
// list, shuffling when an epoch has been used up.
func (s *SGD) nextSamples(idx *int) SampleList {
	remaining := s.Samples.Len() - *idx
	if remaining == 0 {
		Shuffle(s.Samples)
		*idx = 0
		remaining = s.Samples.Len()
	}
	size := remaining
	if s.BatchSize != 0 && s.BatchSize < remaining {
		size = s.BatchSize
	}
	res := s.Samples.Slice(*idx, *idx+size)
	*idx += size
	return res
}

func (s *SGD) fetch(l SampleList) <-chan fetchResult {
	res := make(chan fetchResult, 1)
	go func() {
		b, err := s.Fetcher.Fetch(l)
		res <- fetchResult{Batch: b, Size: l.Len(), Err: err}
	}()
	return res
}

func scaleGrad(g anydiff.Grad, s float64) {
	for _, v := range g {
		g.Scale(v.Creator().MakeNumeric(s))
		return
	}
}
