package dmlsgd

import (
	"errors"
	"math"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec/anyvec64"
)

// testSampleList stores targets whose mean minimizes the
// total squared error.
type testSampleList []float64

func (t testSampleList) Len() int {
	return len(t)
}

func (t testSampleList) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
}

func (t testSampleList) Slice(i, j int) SampleList {
	return append(testSampleList{}, t[i:j]...)
}

type testTrainer struct {
	X        *anydiff.Var
	FetchErr error
}

func newTestTrainer() *testTrainer {
	return &testTrainer{X: anydiff.NewVar(anyvec64.MakeVector(1))}
}

func (t *testTrainer) Fetch(s SampleList) (Batch, error) {
	if t.FetchErr != nil {
		return nil, t.FetchErr
	}
	return s, nil
}

func (t *testTrainer) TotalCost(b Batch) anydiff.Res {
	c := t.X.Vector.Creator()
	var cost anydiff.Res
	for _, target := range b.(testSampleList) {
		term := anydiff.Square(anydiff.AddScalar(t.X, c.MakeNumeric(-target)))
		if cost == nil {
			cost = term
		} else {
			cost = anydiff.Add(cost, term)
		}
	}
	return cost
}

func (t *testTrainer) Gradient(b Batch) anydiff.Grad {
	grad, _ := CosterGrad(t, b, []*anydiff.Var{t.X})
	return grad
}

func (t *testTrainer) current() float64 {
	return t.X.Vector.Data().([]float64)[0]
}

func TestSGD(t *testing.T) {
	for _, transformer := range []Transformer{nil, &Momentum{Momentum: 0.9}, &Adam{}} {
		tr := newTestTrainer()
		s := &SGD{
			Fetcher:     tr,
			Gradienter:  tr,
			Transformer: transformer,
			Samples:     testSampleList{1, 2, 6},
			Rater:       ConstRater(0.01),
		}
		runIterations(t, s, 3000)
		if x := tr.current(); math.Abs(x-3) > 5e-2 {
			t.Errorf("transformer %T: expected 3 but got %f", transformer, x)
		}
		if s.NumProcessed != 3000*3 {
			t.Errorf("transformer %T: processed %d samples", transformer, s.NumProcessed)
		}
	}
}

func TestSGDMiniBatches(t *testing.T) {
	tr := newTestTrainer()
	var sizes []int
	s := &SGD{
		Fetcher:    tr,
		Gradienter: tr,
		Samples:    testSampleList{1, 2, 6, 3, 3},
		Rater:      ConstRater(0.01),
		BatchSize:  2,
		StatusFunc: func(b Batch) {
			sizes = append(sizes, len(b.(testSampleList)))
		},
	}
	runIterations(t, s, 6)
	expected := []int{2, 2, 1, 2, 2, 1}
	for i, size := range expected {
		if sizes[i] != size {
			t.Fatalf("expected batch sizes %v but got %v", expected, sizes)
		}
	}
}

func TestSGDFetchError(t *testing.T) {
	tr := newTestTrainer()
	tr.FetchErr = errors.New("disk on fire")
	s := &SGD{
		Fetcher:    tr,
		Gradienter: tr,
		Samples:    testSampleList{1},
		Rater:      ConstRater(0.01),
	}
	if err := s.Run(make(chan struct{})); err == nil {
		t.Error("expected error")
	}
}

func TestSGDEmpty(t *testing.T) {
	tr := newTestTrainer()
	s := &SGD{Fetcher: tr, Gradienter: tr, Samples: testSampleList{}, Rater: ConstRater(1)}
	if err := s.Run(make(chan struct{})); err == nil {
		t.Error("expected error")
	}
}

// runIterations runs s for exactly n gradient steps.
func runIterations(t *testing.T, s *SGD, n int) {
	done := make(chan struct{})
	var iter int
	status := s.StatusFunc
	s.StatusFunc = func(b Batch) {
		if status != nil && iter < n {
			status(b)
		}
		if iter == n {
			close(done)
		}
		iter++
	}
	if err := s.Run(done); err != nil {
		t.Fatal(err)
	}
}
