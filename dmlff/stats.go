package dmlff

import (
	"errors"
	"math"

	diffml "github.com/neilkichler/diff-ml"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
)

// ComputeStats computes the mean and standard deviation
// of every input component and of the outputs, for use
// with diffml.Normalization.
func ComputeStats(l SampleList) (*diffml.Normalization, error) {
	if l.Len() == 0 {
		return nil, errors.New("compute stats: empty sample list")
	}
	var ins, outs []anyvec.Vector
	for i := 0; i < l.Len(); i++ {
		sample, err := l.GetSample(i)
		if err != nil {
			return nil, essentials.AddCtx("compute stats", err)
		}
		ins = append(ins, sample.Input)
		outs = append(outs, sample.Output)
	}
	c := ins[0].Creator()

	inMean, inStd := columnStats(c.Concat(ins...), l.Len())
	outMean, outStd := columnStats(c.Concat(outs...), l.Len())
	return &diffml.Normalization{
		InMean:  inMean,
		InStd:   inStd,
		OutMean: outMean[0],
		OutStd:  outStd[0],
	}, nil
}

// columnStats computes the mean and standard deviation of
// each column of an n-row matrix.
func columnStats(joined anyvec.Vector, n int) (mean, std []float64) {
	cols := joined.Len() / n
	normalizer := joined.Creator().MakeNumeric(1 / float64(n))

	meanVec := anyvec.SumRows(joined, cols)
	meanVec.Scale(normalizer)

	squared := joined.Copy()
	squared.Mul(joined)
	variance := anyvec.SumRows(squared, cols)
	variance.Scale(normalizer)
	meanSq := meanVec.Copy()
	meanSq.Mul(meanVec)
	variance.Sub(meanSq)

	mean = vectorFloats(meanVec)
	std = vectorFloats(variance)
	for i, v := range std {
		std[i] = math.Sqrt(math.Max(v, 0))
	}
	return
}

func vectorFloats(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	case []float64:
		return append([]float64{}, data...)
	default:
		panic("unsupported numeric type")
	}
}
