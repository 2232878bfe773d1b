package mastermind

import (
	"errors"
	"fmt"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// IndexError is the panic value for out-of-domain rows, columns, digits and
// peg counts. It signals a bug in the caller, not a recoverable condition.
type IndexError struct {
	What     string
	Value    int
	Min, Max int
}

// [IndexError] implements [error]
func (e *IndexError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.What, e.Value, e.Min, e.Max)
}

func assertRange(what string, value, min, max int) {
	if value < min || value > max {
		panic(&IndexError{What: what, Value: value, Min: min, Max: max})
	}
}
