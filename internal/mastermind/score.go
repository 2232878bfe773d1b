package mastermind

import "strings"

type Peg uint8

const (
	CorrectPosition Peg = 1
	WrongPosition   Peg = 2
)

// Peg implements [fmt.Stringer]
func (p Peg) String() string {
	switch p {
	case CorrectPosition:
		return "correct"
	case WrongPosition:
		return "wrong"
	}
	return "invalid"
}

// Feedback holds the pegs of one checked row: CorrectPosition pegs first,
// then WrongPosition pegs.
type Feedback []Peg

// Feedback implements [fmt.Stringer]. The result doubles as the signature
// used to compare feedback rows.
func (f Feedback) String() string {
	var sb strings.Builder
	for _, p := range f {
		sb.WriteByte(byte('0' + p))
	}
	return sb.String()
}

func (f Feedback) Counts() (correct, wrong int) {
	for _, p := range f {
		switch p {
		case CorrectPosition:
			correct++
		case WrongPosition:
			wrong++
		}
	}
	return
}

func (f Feedback) Equal(o Feedback) bool {
	if len(f) != len(o) {
		return false
	}
	for i := range f {
		if f[i] != o[i] {
			return false
		}
	}
	return true
}

// Score computes the feedback for answer against combination. Both codes
// must be complete.
func Score(answer, combination Code) Feedback {
	for i := range CombinationLength {
		assertRange("answer digit", answer[i], MinDigit, MaxDigit)
		assertRange("combination digit", combination[i], MinDigit, MaxDigit)
	}

	feedback := make(Feedback, 0, CombinationLength)

	var (
		unmatched [MaxDigit + 1]int /* combination digits not matched in place */
		pending   [CombinationLength]int
		n         int
	)
	for i := range CombinationLength {
		if answer[i] == combination[i] {
			feedback = append(feedback, CorrectPosition)
			continue
		}
		unmatched[combination[i]]++
		pending[n] = i
		n++
	}

	for _, i := range pending[:n] {
		if d := answer[i]; unmatched[d] > 0 {
			unmatched[d]--
			feedback = append(feedback, WrongPosition)
		}
	}

	return feedback
}
