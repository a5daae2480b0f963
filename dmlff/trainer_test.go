package dmlff

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	diffml "github.com/neilkichler/diff-ml"
	"github.com/neilkichler/diff-ml/dmlsgd"
	"github.com/neilkichler/diff-ml/losses"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

type failingList struct {
	SliceSampleList
}

func (f failingList) GetSample(idx int) (*Sample, error) {
	if idx == 1 {
		return nil, errors.New("bad sample")
	}
	return f.SliceSampleList.GetSample(idx)
}

func TestTrainerFetch(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	samples := SliceSampleList{
		NewSample(c, []float64{1, 2}, 3, []float64{4, 5}),
		NewSample(c, []float64{6, 7}, 8, []float64{9, 10}),
		NewSample(c, []float64{11, 12}, 13, []float64{14, 15}),
	}
	tr := &Trainer{MaxGos: 2}
	b, err := tr.Fetch(samples)
	if err != nil {
		t.Fatal(err)
	}
	batch := b.(*diffml.Batch)
	if batch.Num != 3 || batch.Dims() != 2 {
		t.Fatalf("bad batch size: %d examples of %d dims", batch.Num, batch.Dims())
	}
	assertData(t, []float64{1, 2, 6, 7, 11, 12}, batch.X.Output())
	assertData(t, []float64{3, 8, 13}, batch.Y.Output())
	assertData(t, []float64{4, 5, 9, 10, 14, 15}, batch.DYDX.Output())
}

func TestTrainerFetchErrors(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	tr := &Trainer{}
	if _, err := tr.Fetch(SliceSampleList{}); err == nil {
		t.Error("expected error for empty batch")
	}

	samples := SliceSampleList{
		NewSample(c, []float64{1, 2}, 3, []float64{4, 5}),
		NewSample(c, []float64{6, 7}, 8, []float64{9, 10}),
	}
	if _, err := tr.Fetch(failingList{samples}); err == nil {
		t.Error("expected error for failing sample")
	}

	mismatched := SliceSampleList{
		NewSample(c, []float64{1, 2}, 3, []float64{4}),
	}
	if _, err := tr.Fetch(mismatched); err == nil {
		t.Error("expected error for mismatched gradient")
	}

	ragged := SliceSampleList{
		NewSample(c, []float64{1, 2, 3}, 3, []float64{4}),
		NewSample(c, []float64{1}, 3, []float64{4, 5, 6}),
	}
	if _, err := tr.Fetch(ragged); err == nil {
		t.Error("expected error for ragged gradients")
	}

	uneven := SliceSampleList{
		NewSample(c, []float64{1, 2, 3}, 3, []float64{4, 5, 6}),
		NewSample(c, []float64{1}, 3, []float64{4}),
	}
	if _, err := tr.Fetch(uneven); err == nil {
		t.Error("expected error for uneven inputs")
	}

	twoOutputs := SliceSampleList{
		{
			Input:  c.MakeVectorData(c.MakeNumericList([]float64{1})),
			Output: c.MakeVectorData(c.MakeNumericList([]float64{1, 2})),
			Grad:   c.MakeVectorData(c.MakeNumericList([]float64{1})),
		},
		{
			Input:  c.MakeVectorData(c.MakeNumericList([]float64{1})),
			Output: c.MakeVector(0),
			Grad:   c.MakeVectorData(c.MakeNumericList([]float64{1})),
		},
	}
	if _, err := tr.Fetch(twoOutputs); err == nil {
		t.Error("expected error for bad output sizes")
	}
}

func TestComputeStats(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	samples := SliceSampleList{
		NewSample(c, []float64{1, 5}, 2, []float64{0, 0}),
		NewSample(c, []float64{3, 5}, 4, []float64{0, 0}),
	}
	stats, err := ComputeStats(samples)
	if err != nil {
		t.Fatal(err)
	}
	expected := &diffml.Normalization{
		InMean:  []float64{2, 5},
		InStd:   []float64{1, 0},
		OutMean: 3,
		OutStd:  1,
	}
	for i := range expected.InMean {
		if math.Abs(stats.InMean[i]-expected.InMean[i]) > 1e-12 ||
			math.Abs(stats.InStd[i]-expected.InStd[i]) > 1e-12 {
			t.Errorf("expected %v but got %v", expected, stats)
		}
	}
	if math.Abs(stats.OutMean-expected.OutMean) > 1e-12 ||
		math.Abs(stats.OutStd-expected.OutStd) > 1e-12 {
		t.Errorf("expected %v but got %v", expected, stats)
	}

	if _, err := ComputeStats(SliceSampleList{}); err == nil {
		t.Error("expected error for empty list")
	}
}

func TestTrainerSobolev(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	samples := quadraticSamples(c, 64)
	stats, err := ComputeStats(samples)
	if err != nil {
		t.Fatal(err)
	}

	for _, method := range []losses.Method{losses.ZerothOrder, losses.FirstOrder} {
		t.Run(method.String(), func(t *testing.T) {
			net := stats.Wrap(c, diffml.NewMLP(c, 2, []int{16}, diffml.Softplus))
			lossFn, err := losses.Sobolev(losses.MSE, method)
			if err != nil {
				t.Fatal(err)
			}
			tr := &Trainer{
				Model:  net,
				Loss:   lossFn,
				Params: net.Parameters(),
			}
			batch, err := tr.Fetch(samples)
			if err != nil {
				t.Fatal(err)
			}
			initial := costValue(tr, batch)

			done := make(chan struct{})
			var iter int
			s := &dmlsgd.SGD{
				Fetcher:     tr,
				Gradienter:  tr,
				Transformer: &dmlsgd.Adam{},
				Samples:     samples,
				Rater:       dmlsgd.ConstRater(0.01),
				BatchSize:   16,
				StatusFunc: func(b dmlsgd.Batch) {
					iter++
					if iter > 400 {
						close(done)
					}
				},
			}
			if err := s.Run(done); err != nil {
				t.Fatal(err)
			}

			final := costValue(tr, batch)
			if !(final < initial/2) {
				t.Errorf("loss went from %f to %f", initial, final)
			}
			if tr.LastCost == nil {
				t.Error("LastCost was not set")
			}
		})
	}
}

// quadraticSamples samples f(x) = x0^2 + 2*x1 on [-1, 1]^2.
func quadraticSamples(c anyvec.Creator, n int) SliceSampleList {
	rng := rand.New(rand.NewSource(1337))
	var res SliceSampleList
	for i := 0; i < n; i++ {
		x := []float64{rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		y := x[0]*x[0] + 2*x[1]
		res = append(res, NewSample(c, x, y, []float64{2 * x[0], 2}))
	}
	return res
}

func costValue(tr *Trainer, b dmlsgd.Batch) float64 {
	return tr.TotalCost(b).Output().Data().([]float64)[0]
}

func assertData(t *testing.T, expected []float64, actual anyvec.Vector) {
	data := actual.Data().([]float64)
	if len(data) != len(expected) {
		t.Fatalf("expected %v but got %v", expected, data)
	}
	for i, x := range expected {
		if data[i] != x {
			t.Fatalf("expected %v but got %v", expected, data)
		}
	}
}
