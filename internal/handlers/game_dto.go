package handlers

import (
	"github.com/gorilla/schema"

	"github.com/vancomm/mastermind-server/internal/mastermind"
)

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

type CreateGameDTO struct {
	Rules string `schema:"rules"`
}

func ParseCreateGameDTO(src map[string][]string) (CreateGameDTO, error) {
	var dto CreateGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type MoveDTO struct {
	Cmd string `schema:"cmd,required"`
}

func ParseMoveDTO(src map[string][]string) (MoveDTO, error) {
	var dto MoveDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type RowDTO struct {
	// Answer holds 0 for empty cells.
	Answer   []int    `json:"answer"`
	Feedback []string `json:"feedback"`
}

type EventDTO struct {
	Kind        string `json:"kind"`
	Message     string `json:"message,omitempty"`
	Combination string `json:"combination,omitempty"`
	Cheated     *bool  `json:"cheated,omitempty"`
}

// NewEventDTO renders e for clients. The combination chosen at reset is
// never sent.
func NewEventDTO(e mastermind.Event) EventDTO {
	dto := EventDTO{Kind: string(e.Kind())}
	switch e := e.(type) {
	case mastermind.ValidationError:
		dto.Message = e.Message
	case mastermind.GameWon:
		dto.Combination = e.Combination.String()
	case mastermind.GameOver:
		dto.Combination = e.Combination.String()
	case mastermind.CheaterChecked:
		cheated := e.Cheated
		dto.Cheated = &cheated
		dto.Combination = e.Combination.String()
	}
	return dto
}

type GameDTO struct {
	SessionId    string     `json:"session_id"`
	Status       string     `json:"status"`
	Rules        *string    `json:"rules,omitempty"`
	Combination  *string    `json:"combination,omitempty"`
	Candidates   *int       `json:"candidates,omitempty"`
	Rows         []RowDTO   `json:"rows"`
	CurrentRow   int        `json:"current_row"`
	ActiveCell   int        `json:"active_cell"`
	InputEnabled bool       `json:"input_enabled"`
	StartedAt    int64      `json:"started_at"`
	EndedAt      *int64     `json:"ended_at,omitempty"`
	Events       []EventDTO `json:"events"`
}

// NewGameDTO renders the session. Rules, combination and candidate count
// stay hidden until the game is over.
func NewGameDTO(gs *gameSession, s *mastermind.Session, events []mastermind.Event) *GameDTO {
	board := s.Board()
	dto := &GameDTO{
		SessionId:    gs.ID,
		Status:       s.Status().String(),
		Rows:         make([]RowDTO, mastermind.RowCount),
		CurrentRow:   board.CurrentRow(),
		ActiveCell:   board.ActiveCell(),
		InputEnabled: board.InputEnabled(),
		StartedAt:    gs.StartedAt.UnixMilli(),
		Events:       make([]EventDTO, 0, len(events)),
	}
	if gs.EndedAt != nil {
		e := gs.EndedAt.UnixMilli()
		dto.EndedAt = &e
	}
	for row := range dto.Rows {
		answer := board.Answer(row)
		feedback := board.Feedback(row)
		r := RowDTO{
			Answer:   answer[:],
			Feedback: make([]string, len(feedback)),
		}
		for i, p := range feedback {
			r.Feedback[i] = p.String()
		}
		dto.Rows[row] = r
	}
	if s.Status() != mastermind.Active {
		rules := s.Rules().String()
		combination := s.Combination().String()
		dto.Rules = &rules
		dto.Combination = &combination
		if n, ok := s.Candidates(); ok {
			dto.Candidates = &n
		}
	}
	for _, e := range events {
		dto.Events = append(dto.Events, NewEventDTO(e))
	}
	return dto
}
