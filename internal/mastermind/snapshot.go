package mastermind

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Snapshot is the serializable state of a [Session].
type Snapshot struct {
	Rules        RuleKind
	Status       Status
	Combination  Code
	Answers      [RowCount]Code
	Feedback     [RowCount]Feedback
	CurrentRow   int
	ActiveCell   int
	InputEnabled bool
	Candidates   []Code
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Rules:        s.rules.Kind(),
		Status:       s.status,
		Combination:  s.combination,
		Answers:      s.board.answers,
		CurrentRow:   s.board.currentRow,
		ActiveCell:   s.board.activeCell,
		InputEnabled: s.board.inputEnabled,
	}
	for i, f := range s.board.feedback {
		snap.Feedback[i] = append(Feedback(nil), f...)
	}
	if r, ok := s.rules.(*enhancedRules); ok {
		snap.Candidates = append([]Code(nil), r.candidates...)
	}
	return snap
}

func (snap Snapshot) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeSnapshot(b []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return &snap, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}

func (snap Snapshot) validate() error {
	if !snap.Rules.valid() {
		return invalid("rules %s", snap.Rules)
	}
	if snap.Status < Active || snap.Status > Revealed {
		return invalid("status %d", int(snap.Status))
	}
	if (snap.Status == Active) != snap.InputEnabled {
		return invalid("status %s with input enabled = %t", snap.Status, snap.InputEnabled)
	}
	if !snap.Combination.Complete() {
		return invalid("combination %s", snap.Combination)
	}
	if snap.CurrentRow < 0 || snap.CurrentRow >= RowCount {
		return invalid("current row %d", snap.CurrentRow)
	}
	if snap.ActiveCell < 0 || snap.ActiveCell >= CombinationLength {
		return invalid("active cell %d", snap.ActiveCell)
	}
	for row, answer := range snap.Answers {
		for _, d := range answer {
			if d < Unset || d > MaxDigit {
				return invalid("answer %s in row %d", answer, row)
			}
		}
	}
	for row, f := range snap.Feedback {
		// only checked rows carry pegs: those below the current one, and the
		// current one once the game is over
		checked := row > snap.CurrentRow || (row == snap.CurrentRow && snap.Status != Active)
		if len(f) > 0 && !checked {
			return invalid("feedback on unchecked row %d", row)
		}
		if len(f) > CombinationLength {
			return invalid("%d pegs in row %d", len(f), row)
		}
		for _, p := range f {
			if p != CorrectPosition && p != WrongPosition {
				return invalid("peg %d in row %d", p, row)
			}
		}
	}
	if snap.Rules == Enhanced {
		if len(snap.Candidates) == 0 {
			return invalid("no candidates left")
		}
		for _, c := range snap.Candidates {
			if !c.Complete() {
				return invalid("candidate %s", c)
			}
		}
	}
	return nil
}

// Restore rebuilds a session from snap. No events are emitted.
func Restore(snap Snapshot, opts Options) (*Session, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}

	s := newSession(opts)
	s.board = &Board{
		answers:      snap.Answers,
		currentRow:   snap.CurrentRow,
		activeCell:   snap.ActiveCell,
		inputEnabled: snap.InputEnabled,
	}
	for i, f := range snap.Feedback {
		if len(f) > 0 {
			s.board.feedback[i] = append(Feedback(nil), f...)
		}
	}
	s.combination = snap.Combination
	s.status = snap.Status
	s.rules = newRules(snap.Rules, &s.table)
	if r, ok := s.rules.(*enhancedRules); ok {
		r.candidates = append([]Code(nil), snap.Candidates...)
	}
	return s, nil
}
