package diffml

import (
	"fmt"

	"github.com/unixpickle/anydiff"
)

// A Batch is a packed set of regression examples with
// derivative targets.
//
// Examples are packed one after another, so X and DYDX
// store Num rows of Dims() components each, and Y stores
// one value per example.
type Batch struct {
	X    anydiff.Res
	Y    anydiff.Res
	DYDX anydiff.Res
	Num  int
}

// Dims returns the number of input dimensions.
// It is 0 for an empty batch.
func (b *Batch) Dims() int {
	if b.Num == 0 {
		return 0
	}
	return b.X.Output().Len() / b.Num
}

// Validate checks that the packed vectors agree on the
// number of examples and dimensions.
func (b *Batch) Validate() error {
	xLen := b.X.Output().Len()
	if b.Num < 0 {
		return fmt.Errorf("invalid batch: negative size %d", b.Num)
	}
	if b.Y.Output().Len() != b.Num {
		return fmt.Errorf("invalid batch: %d values for %d examples",
			b.Y.Output().Len(), b.Num)
	}
	if b.Num == 0 && xLen != 0 {
		return fmt.Errorf("invalid batch: %d input components for no examples", xLen)
	}
	if b.Num != 0 && xLen%b.Num != 0 {
		return fmt.Errorf("invalid batch: %d input components for %d examples",
			xLen, b.Num)
	}
	if b.DYDX.Output().Len() != xLen {
		return fmt.Errorf("invalid batch: %d gradient components for %d input components",
			b.DYDX.Output().Len(), xLen)
	}
	return nil
}
