package dmlsgd

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

const (
	adamDefaultDecayRate1 = 0.9
	adamDefaultDecayRate2 = 0.999
	adamDefaultDamping    = 1e-8
)

// Adam implements the adaptive moments SGD technique
// described in https://arxiv.org/pdf/1412.6980.pdf.
//
// Adam is the usual choice for Sobolev training, since the
// gradient loss and the value loss can have very different
// curvature.
type Adam struct {
	// These are decay rates for the first and second
	// moments of the gradient.
	// If these are 0, defaults as suggested in the
	// original Adam paper are used.
	DecayRate1, DecayRate2 float64

	// Damping is used to prevent divisions by zero.
	// If it is 0, a default is used.
	Damping float64

	firstMoment  anydiff.Grad
	secondMoment anydiff.Grad
	iteration    float64
}

// Transform replaces the gradient with the bias-corrected
// ratio of the first moment to the root of the second
// moment.
//
// This is not thread-safe.
func (a *Adam) Transform(g anydiff.Grad) anydiff.Grad {
	rate1 := valueOrDefault(a.DecayRate1, adamDefaultDecayRate1)
	rate2 := valueOrDefault(a.DecayRate2, adamDefaultDecayRate2)
	damping := valueOrDefault(a.Damping, adamDefaultDamping)

	if a.firstMoment == nil {
		a.firstMoment = zeroGrad(g)
		a.secondMoment = zeroGrad(g)
	}
	for v, vec := range g {
		updateMoment(a.firstMoment[v], vec, rate1)
		sq := vec.Copy()
		sq.Mul(vec)
		updateMoment(a.secondMoment[v], sq, rate2)
	}

	a.iteration++
	scale := math.Sqrt(1-math.Pow(rate2, a.iteration)) / (1 - math.Pow(rate1, a.iteration))
	for v, vec := range g {
		vec.Set(a.firstMoment[v])
		vec.Scale(vec.Creator().MakeNumeric(scale))

		divisor := a.secondMoment[v].Copy()
		divisor.AddScalar(divisor.Creator().MakeNumeric(damping))
		anyvec.Pow(divisor, divisor.Creator().MakeNumeric(0.5))
		vec.Div(divisor)
	}
	return g
}

// updateMoment computes moment = rate*moment + (1-rate)*x.
func updateMoment(moment, x anyvec.Vector, rate float64) {
	c := moment.Creator()
	moment.Scale(c.MakeNumeric(rate))
	scaled := x.Copy()
	scaled.Scale(c.MakeNumeric(1 - rate))
	moment.Add(scaled)
}

func zeroGrad(g anydiff.Grad) anydiff.Grad {
	res := anydiff.Grad{}
	for k, v := range g {
		res[k] = v.Creator().MakeVector(v.Len())
	}
	return res
}

func valueOrDefault(value, def float64) float64 {
	if value == 0 {
		return def
	}
	return value
}
