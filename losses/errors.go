package losses

import (
	"errors"

	diffml "github.com/neilkichler/diff-ml"
)

// ErrUnsupportedMethod is returned when constructing a
// Sobolev loss for a method which is not implemented.
var ErrUnsupportedMethod = errors.New("unsupported Sobolev method")

// ShapeError is the fault raised by Sobolev losses when
// predictions and targets differ in size.
type ShapeError = diffml.ShapeError
