package diffml

import "fmt"

// A ShapeError indicates that a model produced a different
// number of values or gradients than expected.
//
// It is raised with panic, since it signals a mismatched
// batch and model rather than a transient condition.
type ShapeError struct {
	// Field is "values" or "gradients".
	Field string

	Target    int
	Predicted int
}

// Error returns a description of the mismatch.
func (s *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch for %s: expected %d components but got %d",
		s.Field, s.Target, s.Predicted)
}
