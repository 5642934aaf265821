package service

import (
	"context"
	"dota-tracker/internal/api"
	"dota-tracker/internal/constants"
	"dota-tracker/internal/domain"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("dota-tracker/service")

type Upstream interface {
	FetchPlayerProfile(ctx context.Context, accountID string) (*api.PlayerResponse, error)
	FetchMatchList(ctx context.Context, accountID string, limit int) ([]api.RawMatch, error)
	FetchMatchDetail(ctx context.Context, matchID string) (*api.MatchDetailResponse, error)
}

type MatchStore interface {
	UpsertMatch(ctx context.Context, match *domain.Match) error
	ListByPlayer(ctx context.Context, playerID string, limit, offset int) ([]domain.Match, error)
	CountByPlayer(ctx context.Context, playerID string) (int, error)
}

type ProfileStore interface {
	Upsert(ctx context.Context, player *domain.Player) error
	GetBySteamID(ctx context.Context, steamID string) (*domain.Player, error)
}

// detach keeps upstream fetches and store writes running when the client
// goes away, bounded by the request timeout.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), constants.RequestTimeout)
}
