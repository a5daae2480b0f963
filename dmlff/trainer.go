// Package dmlff trains feed-forward models with Sobolev
// losses.
package dmlff

import (
	"errors"
	"fmt"
	"runtime"

	diffml "github.com/neilkichler/diff-ml"
	"github.com/neilkichler/diff-ml/dmlsgd"
	"github.com/neilkichler/diff-ml/losses"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"golang.org/x/sync/errgroup"
)

// A Trainer constructs batches, computes gradients, and
// tallies up Sobolev losses.
//
// A Trainer implements dmlsgd.Fetcher, dmlsgd.Gradienter
// and dmlsgd.Coster.
type Trainer struct {
	Model  diffml.Model
	Loss   losses.BatchLoss
	Params []*anydiff.Var

	// After every gradient computation, LastCost is set to
	// the loss of the batch.
	LastCost anyvec.Numeric

	// MaxGos specifies the maximum goroutines to use
	// simultaneously for fetching samples.
	// If it is 0, GOMAXPROCS is used.
	MaxGos int
}

// Fetch produces a *diffml.Batch for the subset of
// samples.
// The s argument must implement SampleList.
// The batch may not be empty.
func (t *Trainer) Fetch(s dmlsgd.SampleList) (dmlsgd.Batch, error) {
	if s.Len() == 0 {
		return nil, errors.New("fetch batch: empty batch")
	}

	l := s.(SampleList)
	ins := make([]anyvec.Vector, l.Len())
	outs := make([]anyvec.Vector, l.Len())
	grads := make([]anyvec.Vector, l.Len())

	maxGos := t.MaxGos
	if maxGos == 0 {
		maxGos = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(maxGos)
	for i := 0; i < l.Len(); i++ {
		g.Go(func() error {
			sample, err := l.GetSample(i)
			if err != nil {
				return err
			}
			if sample.Output.Len() != 1 {
				return fmt.Errorf("sample %d: %d output components", i,
					sample.Output.Len())
			}
			if sample.Grad.Len() != sample.Input.Len() {
				return fmt.Errorf("sample %d: %d gradient components for %d inputs",
					i, sample.Grad.Len(), sample.Input.Len())
			}
			ins[i] = sample.Input
			outs[i] = sample.Output
			grads[i] = sample.Grad
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, essentials.AddCtx("fetch batch", err)
	}
	for i, in := range ins[1:] {
		if in.Len() != ins[0].Len() {
			return nil, fmt.Errorf("fetch batch: sample %d has %d inputs, sample 0 has %d",
				i+1, in.Len(), ins[0].Len())
		}
	}

	c := ins[0].Creator()
	batch := &diffml.Batch{
		X:    anydiff.NewConst(c.Concat(ins...)),
		Y:    anydiff.NewConst(c.Concat(outs...)),
		DYDX: anydiff.NewConst(c.Concat(grads...)),
		Num:  l.Len(),
	}
	if err := batch.Validate(); err != nil {
		return nil, essentials.AddCtx("fetch batch", err)
	}
	return batch, nil
}

// TotalCost computes the Sobolev loss for the batch.
//
// The b argument must be a *diffml.Batch.
func (t *Trainer) TotalCost(b dmlsgd.Batch) anydiff.Res {
	return t.Loss(t.Model, b.(*diffml.Batch))
}

// Gradient computes the gradient for the batch's loss.
// It also sets t.LastCost to the numerical value of the
// loss.
//
// The b argument must be a *diffml.Batch.
func (t *Trainer) Gradient(b dmlsgd.Batch) anydiff.Grad {
	grad, lc := dmlsgd.CosterGrad(t, b, t.Params)
	t.LastCost = lc
	return grad
}
