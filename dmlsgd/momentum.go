package dmlsgd

import "github.com/unixpickle/anydiff"

// Momentum is a Transformer which accumulates a velocity
// across steps:
//
//     velocity := Momentum*velocity + grad
//
// The velocity replaces the gradient in every step.
// A zero Momentum leaves gradients unchanged.
type Momentum struct {
	Momentum float64

	velocity anydiff.Grad
}

// Transform updates the velocity with g and writes the
// velocity into g.
//
// This is not thread-safe.
func (m *Momentum) Transform(g anydiff.Grad) anydiff.Grad {
	if m.velocity == nil {
		m.velocity = zeroGrad(g)
	}
	for v, vec := range g {
		vel := m.velocity[v]
		vel.Scale(vel.Creator().MakeNumeric(m.Momentum))
		vel.Add(vec)
		vec.Set(vel)
	}
	return g
}
