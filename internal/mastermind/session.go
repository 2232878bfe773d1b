package mastermind

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

type Status int

const (
	Active Status = iota
	Won
	Lost
	Revealed
)

// Status implements [fmt.Stringer]
func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Revealed:
		return "revealed"
	}
	return "unknown"
}

type Options struct {
	// Rand drives combination generation, random rule selection and cheater
	// input. A time-seeded source is used when nil.
	Rand *rand.Rand
	// Rules selects the variant bound on every reset. RandomRules picks one
	// of the three uniformly.
	Rules     RuleKind
	Generator Generator
	Listener  Listener
}

// Session is the facade used by input handlers. It owns the combination,
// the board and the active rule variant, and replaces all three on reset.
type Session struct {
	table
	opts  Options
	rules Rules
}

func NewSession(opts Options) *Session {
	s := newSession(opts)
	s.Reset()
	return s
}

func newSession(opts Options) *Session {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Generator == nil {
		opts.Generator = Generate
	}
	s := &Session{opts: opts}
	s.rnd = opts.Rand
	s.table.emit = s.notify
	return s
}

func (s *Session) notify(e Event) {
	if s.opts.Listener != nil {
		s.opts.Listener(e)
	}
}

// Reset starts a new game: a fresh combination, an empty board and a
// newly selected rule variant.
func (s *Session) Reset() {
	kind := s.opts.Rules
	if !kind.valid() {
		kind = Standard + RuleKind(s.rnd.IntN(3))
	}

	s.board = NewBoard()
	s.combination = s.opts.Generator(s.rnd)
	s.status = Active
	s.rules = newRules(kind, &s.table)
	combination := s.rules.Combination()

	Log.WithFields(logrus.Fields{
		"combination": combination.String(),
		"rules":       kind.String(),
	}).Debug("game reset")

	s.emit(AfterReset{Combination: combination, Rules: kind})
}

// SubmitDigit writes d into the active cell of the current row, subject to
// the rule variant. d outside [MinDigit, MaxDigit] panics with *IndexError.
func (s *Session) SubmitDigit(d int) {
	assertRange("digit", d, MinDigit, MaxDigit)
	if s.status == Active {
		s.rules.SetAnswerDigit(d)
	}
}

func (s *Session) ChangeActiveCell() {
	if s.status == Active {
		s.rules.ChangeActiveCell()
	}
}

func (s *Session) CheckRow() {
	if s.status == Active {
		s.rules.CheckRow()
	}
}

// CheaterCheck ends an active game by revealing whether its rules cheat.
func (s *Session) CheaterCheck() {
	if s.status != Active {
		return
	}
	s.finish(Revealed, CheaterChecked{
		Cheated:     s.rules.Kind() == Cheater,
		Combination: s.rules.Combination(),
	})
}

func (s *Session) Status() Status     { return s.status }
func (s *Session) Rules() RuleKind    { return s.rules.Kind() }
func (s *Session) Combination() Code { return s.rules.Combination() }
func (s *Session) Board() *Board      { return s.board }

// Candidates returns the number of combinations still consistent with the
// feedback given so far. ok is false unless the session plays enhanced rules.
func (s *Session) Candidates() (n int, ok bool) {
	if r, isEnhanced := s.rules.(*enhancedRules); isEnhanced {
		return len(r.candidates), true
	}
	return 0, false
}
