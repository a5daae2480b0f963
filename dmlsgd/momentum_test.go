package dmlsgd

import (
	"math"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestMomentumTransform(t *testing.T) {
	v := anydiff.NewVar(anyvec64.MakeVector(2))
	m := &Momentum{Momentum: 0.5}

	steps := [][]float64{{1, 2}, {1, -2}, {0, 4}}
	expected := [][]float64{{1, 2}, {1.5, -1}, {0.75, 3.5}}
	for i, step := range steps {
		g := anydiff.Grad{v: anyvec64.MakeVectorData(append([]float64{}, step...))}
		actual := m.Transform(g)[v].Data().([]float64)
		for j, x := range expected[i] {
			if math.Abs(actual[j]-x) > 1e-12 {
				t.Errorf("step %d: expected %v but got %v", i, expected[i], actual)
				break
			}
		}
	}
}

func TestMomentumZero(t *testing.T) {
	v := anydiff.NewVar(anyvec64.MakeVector(1))
	m := &Momentum{}
	for _, x := range []float64{3, -1, 2} {
		g := anydiff.Grad{v: anyvec64.MakeVectorData([]float64{x})}
		if actual := m.Transform(g)[v].Data().([]float64)[0]; actual != x {
			t.Errorf("expected %f but got %f", x, actual)
		}
	}
}
