package repository

import (
	"context"
	"database/sql"
	"dota-tracker/internal/db"
	"dota-tracker/internal/domain"
	"dota-tracker/internal/metrics"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
	now     func() time.Time
}

func NewMatchRepository(queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		logger:  logger,
		now:     time.Now,
	}
}

// UpsertMatch inserts or overwrites the row keyed by match id. Replaying the
// same record converges to the latest write.
func (r *MatchRepository) UpsertMatch(ctx context.Context, match *domain.Match) error {
	if err := validateMatch(match); err != nil {
		metrics.StoreUpserts.WithLabelValues("match", "invalid").Inc()
		return err
	}

	now := r.now().UTC()
	err := r.queries.UpsertMatch(ctx, db.UpsertMatchParams{
		MatchID:   match.MatchID,
		PlayerID:  match.PlayerID,
		HeroID:    int64(match.HeroID),
		Duration:  int64(match.Duration),
		Kills:     int64(match.Kills),
		Deaths:    int64(match.Deaths),
		Assists:   int64(match.Assists),
		Result:    string(match.Result),
		PlayedAt:  match.PlayedAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		metrics.StoreUpserts.WithLabelValues("match", "error").Inc()
		return fmt.Errorf("%w: upsert match %d: %v", domain.ErrStore, match.MatchID, err)
	}

	metrics.StoreUpserts.WithLabelValues("match", "ok").Inc()
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID int64) (*domain.Match, error) {
	row, err := r.queries.GetMatch(ctx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get match %d: %v", domain.ErrStore, matchID, err)
	}
	m := toDomainMatch(row)
	return &m, nil
}

// ListByPlayer returns a player's stored matches, newest first.
func (r *MatchRepository) ListByPlayer(ctx context.Context, playerID string, limit, offset int) ([]domain.Match, error) {
	rows, err := r.queries.ListMatchesByPlayer(ctx, db.ListMatchesByPlayerParams{
		PlayerID: playerID,
		Limit:    int64(limit),
		Offset:   int64(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list matches for %s: %v", domain.ErrStore, playerID, err)
	}

	results := make([]domain.Match, len(rows))
	for i, row := range rows {
		results[i] = toDomainMatch(row)
	}
	r.logger.Debug().Str("player_id", playerID).Int("count", len(results)).Msg("listed stored matches")
	return results, nil
}

func (r *MatchRepository) CountByPlayer(ctx context.Context, playerID string) (int, error) {
	n, err := r.queries.CountMatchesByPlayer(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("%w: count matches for %s: %v", domain.ErrStore, playerID, err)
	}
	return int(n), nil
}

func validateMatch(m *domain.Match) error {
	switch {
	case m == nil:
		return fmt.Errorf("%w: nil match", domain.ErrStore)
	case m.MatchID <= 0:
		return fmt.Errorf("%w: match id must be positive", domain.ErrStore)
	case m.PlayerID == "":
		return fmt.Errorf("%w: match %d has no owner", domain.ErrStore, m.MatchID)
	case m.Duration < 0 || m.Kills < 0 || m.Deaths < 0 || m.Assists < 0:
		return fmt.Errorf("%w: match %d has negative stats", domain.ErrStore, m.MatchID)
	case m.Result != domain.OutcomeWin && m.Result != domain.OutcomeLoss:
		return fmt.Errorf("%w: match %d has result %q", domain.ErrStore, m.MatchID, m.Result)
	}
	return nil
}

func toDomainMatch(row db.Match) domain.Match {
	return domain.Match{
		MatchID:   row.MatchID,
		PlayerID:  row.PlayerID,
		HeroID:    int(row.HeroID),
		Duration:  int(row.Duration),
		Kills:     int(row.Kills),
		Deaths:    int(row.Deaths),
		Assists:   int(row.Assists),
		Result:    domain.Outcome(row.Result),
		PlayedAt:  row.PlayedAt,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
