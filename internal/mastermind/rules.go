package mastermind

import (
	"fmt"
	"math/rand/v2"
)

type RuleKind int

const (
	RandomRules RuleKind = iota
	Standard
	Cheater
	Enhanced
)

var ruleKindNames = map[RuleKind]string{
	RandomRules: "random",
	Standard:    "standard",
	Cheater:     "cheater",
	Enhanced:    "enhanced",
}

// RuleKind implements [fmt.Stringer]
func (k RuleKind) String() string {
	if name, ok := ruleKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

func ParseRuleKind(s string) (RuleKind, error) {
	for k, name := range ruleKindNames {
		if name == s {
			return k, nil
		}
	}
	return RandomRules, fmt.Errorf("unknown rules %q", s)
}

func (k RuleKind) valid() bool {
	return k == Standard || k == Cheater || k == Enhanced
}

// Rules is the row-submission protocol of one rule variant. A variant is
// bound to a single game and never replaced until the next reset.
type Rules interface {
	Kind() RuleKind
	// Combination returns the code the variant currently holds as secret.
	Combination() Code
	SetAnswerDigit(digit int)
	ChangeActiveCell()
	CheckRow()
}

// table is the per-game state shared by the session and its rules.
type table struct {
	board       *Board
	combination Code
	status      Status
	rnd         *rand.Rand
	emit        func(Event)
}

func (t *table) finish(status Status, e Event) {
	t.status = status
	t.board.DisableInput()
	t.emit(e)
}

func newRules(kind RuleKind, t *table) Rules {
	switch kind {
	case Cheater:
		return &cheaterRules{standardRules{t}}
	case Enhanced:
		return &enhancedRules{standardRules: standardRules{t}, candidates: allCodes()}
	default:
		return &standardRules{t}
	}
}

type standardRules struct {
	t *table
}

func (r *standardRules) Kind() RuleKind     { return Standard }
func (r *standardRules) Combination() Code { return r.t.combination }

func (r *standardRules) SetAnswerDigit(digit int) {
	b := r.t.board
	if b.InputEnabled() {
		b.SetAnswerDigit(digit, b.CurrentRow(), b.ActiveCell())
	}
}

func (r *standardRules) ChangeActiveCell() {
	if r.t.board.InputEnabled() {
		r.t.board.ChangeActiveCell()
	}
}

// validateRow returns the current answer, or emits a validation error if
// the row still has unset cells.
func (r *standardRules) validateRow() (Code, bool) {
	answer := r.t.board.Answer(r.t.board.CurrentRow())
	if !answer.Complete() {
		r.t.emit(ValidationError{Message: MessageRowIncomplete})
		return answer, false
	}
	return answer, true
}

func (r *standardRules) CheckRow() {
	b := r.t.board
	if !b.InputEnabled() {
		return
	}

	answer, ok := r.validateRow()
	if !ok {
		return
	}

	if answer == r.t.combination {
		r.t.finish(Won, GameWon{Combination: r.t.combination})
		return
	}

	row := b.CurrentRow()
	b.SetRowFeedback(row, Score(answer, r.t.combination))

	if row == 0 {
		r.t.finish(Lost, GameOver{Combination: r.t.combination})
		return
	}

	b.AdvanceToPreviousRow()
}

// cheaterRules replaces every digit the player enters with a random one.
type cheaterRules struct {
	standardRules
}

func (r *cheaterRules) Kind() RuleKind { return Cheater }

func (r *cheaterRules) SetAnswerDigit(int) {
	r.standardRules.SetAnswerDigit(randomDigit(r.t.rnd))
}

// enhancedRules never commits to a secret. Every checked row gets the
// feedback shared by the largest group of still-possible combinations, and
// only that group survives.
type enhancedRules struct {
	standardRules
	candidates []Code
}

func (r *enhancedRules) Kind() RuleKind { return Enhanced }

func (r *enhancedRules) Combination() Code {
	return r.candidates[0]
}

func (r *enhancedRules) CheckRow() {
	b := r.t.board
	if !b.InputEnabled() {
		return
	}

	answer, ok := r.validateRow()
	if !ok {
		return
	}

	row := b.CurrentRow()
	b.SetRowFeedback(row, r.narrow(answer))

	if len(r.candidates) == 1 && r.candidates[0] == answer {
		r.t.finish(Won, GameWon{Combination: answer})
		return
	}

	if row == 0 {
		r.t.finish(Lost, GameOver{Combination: r.candidates[0]})
		return
	}

	b.AdvanceToPreviousRow()
}

// narrow picks the most common feedback for answer over all candidates,
// ties going to the pattern seen first, and drops every candidate that
// would have produced a different one.
func (r *enhancedRules) narrow(answer Code) Feedback {
	type group struct {
		feedback Feedback
		size     int
	}

	var (
		groups     = make(map[string]*group)
		order      []*group
		signatures = make([]string, len(r.candidates))
	)
	for i, c := range r.candidates {
		f := Score(answer, c)
		sig := f.String()
		signatures[i] = sig
		g, ok := groups[sig]
		if !ok {
			g = &group{feedback: f}
			groups[sig] = g
			order = append(order, g)
		}
		g.size++
	}

	best := order[0]
	for _, g := range order[1:] {
		if g.size > best.size {
			best = g
		}
	}

	keep := best.feedback.String()
	remaining := r.candidates[:0]
	for i, c := range r.candidates {
		if signatures[i] == keep {
			remaining = append(remaining, c)
		}
	}
	r.candidates = remaining

	return best.feedback
}
