// Package mastermind implements the rules of a Mastermind-style guessing
// game: a secret combination of four digits, twelve rows of guesses and peg
// feedback for every checked row.
//
// A [Session] owns the whole puzzle state and is not safe for concurrent
// use. Hosts that share a session between goroutines must serialize access.
package mastermind

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

const (
	CombinationLength = 4
	RowCount          = 12
	MinDigit          = 1
	MaxDigit          = 6
	Unset             = 0
)

// Code is a single row of digits. Unset cells hold 0.
type Code [CombinationLength]int

// Complete reports whether every cell holds a digit in [MinDigit, MaxDigit].
func (c Code) Complete() bool {
	for _, d := range c {
		if d < MinDigit || d > MaxDigit {
			return false
		}
	}
	return true
}

// Code implements [fmt.Stringer]
func (c Code) String() string {
	var sb strings.Builder
	for _, d := range c {
		sb.WriteByte(byte('0' + d))
	}
	return sb.String()
}

func ParseCode(s string) (Code, error) {
	var c Code
	if len(s) != CombinationLength {
		return c, fmt.Errorf("code must have %d digits", CombinationLength)
	}
	for i := range s {
		d := int(s[i]) - '0'
		if d < Unset || d > MaxDigit {
			return c, fmt.Errorf("invalid digit %q at position %d", s[i], i)
		}
		c[i] = d
	}
	return c, nil
}
