package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/vancomm/mastermind-server/internal/mastermind"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgCount    = errors.New("invalid number of arguments")
	ErrBadDigit       = errors.New("digit must be an int between 1 and 6")
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0, // get
	"d": 1, // submit digit
	"n": 0, // next cell
	"c": 0, // check row
	"r": 0, // reset
	"o": 0, // cheater check
}

func executeCommand(s *mastermind.Session, c string) error {
	parts := strings.Fields(c)
	if len(parts) == 0 {
		return ErrUnknownCommand
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return ErrUnknownCommand
	}
	if nargs != len(parts)-1 {
		return ErrBadArgCount
	}
	switch parts[0] {
	case "g":
	case "d":
		d, err := strconv.Atoi(parts[1])
		if err != nil || d < mastermind.MinDigit || d > mastermind.MaxDigit {
			return ErrBadDigit
		}
		s.SubmitDigit(d)
	case "n":
		s.ChangeActiveCell()
	case "c":
		s.CheckRow()
	case "r":
		s.Reset()
	case "o":
		s.CheaterCheck()
	}
	return nil
}

// splitCommands returns the non-blank lines of text.
func splitCommands(text string) []string {
	cmds := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			cmds = append(cmds, line)
		}
	}
	return cmds
}
