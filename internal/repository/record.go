package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	OutcomeWon      = "won"
	OutcomeLost     = "lost"
	OutcomeRevealed = "revealed"
)

type GameRecord struct {
	GameRecordId int64              `db:"game_record_id"`
	PlayerId     *int64             `db:"player_id"`
	SessionId    string             `db:"session_id"`
	Rules        string             `db:"rules"`
	Combination  string             `db:"combination"`
	Outcome      string             `db:"outcome"`
	RowsUsed     int                `db:"rows_used"`
	StartedAt    time.Time          `db:"started_at"`
	EndedAt      time.Time          `db:"ended_at"`
	CreatedAt    pgtype.Timestamptz `db:"created_at"`
}

type CreateGameRecordParams struct {
	PlayerId    *int64
	SessionId   string
	Rules       string
	Combination string
	Outcome     string
	RowsUsed    int
	StartedAt   time.Time
	EndedAt     time.Time
}

func (q *Queries) CreateGameRecord(
	ctx context.Context, params CreateGameRecordParams,
) (*GameRecord, error) {
	args := pgx.NamedArgs{
		"player_id":   params.PlayerId,
		"session_id":  params.SessionId,
		"rules":       params.Rules,
		"combination": params.Combination,
		"outcome":     params.Outcome,
		"rows_used":   params.RowsUsed,
		"started_at":  params.StartedAt,
		"ended_at":    params.EndedAt,
	}
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_record (
			player_id, session_id, rules, combination, outcome, rows_used, started_at, ended_at
		)
		VALUES (
			@player_id, @session_id, @rules, @combination, @outcome, @rows_used, @started_at, @ended_at
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameRecord])
}

type LeaderboardEntry struct {
	SessionId  string  `json:"session_id" db:"session_id"`
	Username   *string `json:"username" db:"username"`
	Rules      string  `json:"rules" db:"rules"`
	RowsUsed   int     `json:"rows_used" db:"rows_used"`
	PlaytimeMs float64 `json:"playtime_ms" db:"playtime_ms"`
}

type LeaderboardFilter struct {
	Username *string
	Rules    *string
	Limit    int
}

func (f LeaderboardFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.Rules != nil {
		clauses = append(clauses, "rules = @rules")
		args["rules"] = *f.Rules
	}
	return strings.Join(clauses, " AND "), args
}

// GetLeaderboard lists won games, fewest rows first, then fastest.
func (q *Queries) GetLeaderboard(
	ctx context.Context, filter LeaderboardFilter,
) ([]LeaderboardEntry, error) {
	query := `
	SELECT
		session_id,
		username,
		rules,
		rows_used,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from started_at)
		) * 1000 playtime_ms
	FROM game_record
		LEFT OUTER JOIN player using (player_id)
	WHERE
		outcome = 'won'
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY rows_used, playtime_ms"
	if filter.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = filter.Limit
	}

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[LeaderboardEntry])
}
