package mastermind

type EventKind string

const (
	EventAfterReset      EventKind = "after_reset"
	EventValidationError EventKind = "validation_error"
	EventGameWon         EventKind = "game_won"
	EventGameOver        EventKind = "game_over"
	EventCheaterChecked  EventKind = "cheater_checked"
)

const MessageRowIncomplete = "row incomplete"

// Event is an outcome notification emitted by a [Session].
type Event interface {
	Kind() EventKind
}

// Listener receives events synchronously, in emission order.
type Listener func(Event)

type AfterReset struct {
	Combination Code
	Rules       RuleKind
}

type ValidationError struct {
	Message string
}

type GameWon struct {
	Combination Code
}

type GameOver struct {
	Combination Code
}

type CheaterChecked struct {
	Cheated     bool
	Combination Code
}

func (AfterReset) Kind() EventKind      { return EventAfterReset }
func (ValidationError) Kind() EventKind { return EventValidationError }
func (GameWon) Kind() EventKind         { return EventGameWon }
func (GameOver) Kind() EventKind        { return EventGameOver }
func (CheaterChecked) Kind() EventKind  { return EventCheaterChecked }
