package mastermind

// Board holds the answer grid, the feedback grid and the input pointers of
// one game. It performs bounds checks only; game legality is enforced by
// [Rules].
type Board struct {
	answers      [RowCount]Code
	feedback     [RowCount]Feedback
	currentRow   int
	activeCell   int
	inputEnabled bool
}

func NewBoard() *Board {
	return &Board{
		currentRow:   RowCount - 1,
		inputEnabled: true,
	}
}

func (b *Board) CurrentRow() int { return b.currentRow }
func (b *Board) ActiveCell() int { return b.activeCell }

func (b *Board) Answer(row int) Code {
	assertRange("row", row, 0, RowCount-1)
	return b.answers[row]
}

func (b *Board) AnswerDigit(row, col int) int {
	assertRange("col", col, 0, CombinationLength-1)
	return b.Answer(row)[col]
}

// SetAnswerDigit writes digit into the cell at row and col unconditionally.
func (b *Board) SetAnswerDigit(digit, row, col int) {
	assertRange("digit", digit, MinDigit, MaxDigit)
	assertRange("row", row, 0, RowCount-1)
	assertRange("col", col, 0, CombinationLength-1)
	b.answers[row][col] = digit
}

// Feedback returns the pegs stored for row. The slice is shared with the
// board and must not be modified.
func (b *Board) Feedback(row int) Feedback {
	assertRange("row", row, 0, RowCount-1)
	return b.feedback[row]
}

// SetRowFeedback replaces the feedback of row with a copy of pegs.
func (b *Board) SetRowFeedback(row int, pegs Feedback) {
	assertRange("row", row, 0, RowCount-1)
	assertRange("peg count", len(pegs), 0, CombinationLength)
	b.feedback[row] = append(Feedback(nil), pegs...)
}

// ChangeActiveCell moves the active cell to the next column, wrapping
// from the last column to the first.
func (b *Board) ChangeActiveCell() {
	b.activeCell = (b.activeCell + 1) % CombinationLength
}

// AdvanceToPreviousRow moves the current row one step towards row 0. The
// caller handles the loss condition before row 0 would be left.
func (b *Board) AdvanceToPreviousRow() {
	assertRange("row", b.currentRow-1, 0, RowCount-1)
	b.currentRow--
}

func (b *Board) DisableInput()      { b.inputEnabled = false }
func (b *Board) InputEnabled() bool { return b.inputEnabled }
