package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/mastermind-server/internal/mastermind"
	"github.com/vancomm/mastermind-server/internal/repository"
)

type LeaderboardRepository interface {
	GetLeaderboard(ctx context.Context, filter repository.LeaderboardFilter) ([]repository.LeaderboardEntry, error)
}

type Records struct {
	log  *logrus.Logger
	repo LeaderboardRepository
}

func NewRecords(log *logrus.Logger, repo LeaderboardRepository) *Records {
	return &Records{log: log, repo: repo}
}

type LeaderboardDTO struct {
	Username string `schema:"username"`
	Rules    string `schema:"rules"`
	Limit    int    `schema:"limit"`
}

func ParseLeaderboardDTO(src map[string][]string) (repository.LeaderboardFilter, error) {
	var dto LeaderboardDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return repository.LeaderboardFilter{}, err
	}
	filter := repository.LeaderboardFilter{Limit: dto.Limit}
	if dto.Username != "" {
		filter.Username = &dto.Username
	}
	if dto.Rules != "" {
		kind, err := mastermind.ParseRuleKind(dto.Rules)
		if err != nil || kind == mastermind.RandomRules {
			return filter, ErrBadRulesFilter
		}
		filter.Rules = &dto.Rules
	}
	if filter.Limit <= 0 || filter.Limit > maxLeaderboardLimit {
		filter.Limit = maxLeaderboardLimit
	}
	return filter, nil
}

const maxLeaderboardLimit = 100

var ErrBadRulesFilter = errors.New("rules must be one of standard, cheater, enhanced")

func (h Records) Leaderboard(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseLeaderboardDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.log, http.StatusBadRequest, err)
		return
	}

	entries, err := h.repo.GetLeaderboard(r.Context(), filter)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.WithError(err).Error("unable to fetch leaderboard")
		return
	}
	if entries == nil {
		entries = []repository.LeaderboardEntry{}
	}

	sendJSONOrLog(w, h.log, entries)
}
