package repository

import (
	"context"
	"database/sql"
	"dota-tracker/internal/db"
	"dota-tracker/internal/domain"
	"dota-tracker/internal/metrics"
	"dota-tracker/internal/steamid"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
	now     func() time.Time
}

func NewPlayerRepository(queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		logger:  logger,
		now:     time.Now,
	}
}

// Upsert writes the profile keyed by steam id. created_at survives updates;
// a nil rank tier keeps whatever was stored before.
func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	if player == nil || !steamid.ValidExternal(player.SteamID) {
		metrics.StoreUpserts.WithLabelValues("user", "invalid").Inc()
		return fmt.Errorf("%w: invalid steam id", domain.ErrStore)
	}

	var rankTier *int64
	if player.RankTier != nil {
		v := int64(*player.RankTier)
		rankTier = &v
	}

	now := r.now().UTC()
	err := r.queries.UpsertUser(ctx, db.UpsertUserParams{
		SteamID:     player.SteamID,
		DisplayName: player.DisplayName,
		Avatar:      player.Avatar,
		RankTier:    rankTier,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		metrics.StoreUpserts.WithLabelValues("user", "error").Inc()
		r.logger.Error().Err(err).Str("steam_id", player.SteamID).Msg("failed to upsert user")
		return fmt.Errorf("%w: upsert user %s: %v", domain.ErrStore, player.SteamID, err)
	}

	metrics.StoreUpserts.WithLabelValues("user", "ok").Inc()
	return nil
}

func (r *PlayerRepository) GetBySteamID(ctx context.Context, steamID string) (*domain.Player, error) {
	row, err := r.queries.GetUserBySteamID(ctx, steamID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user %s: %v", domain.ErrStore, steamID, err)
	}

	player := &domain.Player{
		SteamID:     row.SteamID,
		DisplayName: row.DisplayName,
		Avatar:      row.Avatar,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if accountID, err := steamid.ToInternal(row.SteamID); err == nil {
		player.AccountID = accountID
	}
	if row.RankTier != nil {
		v := int(*row.RankTier)
		player.RankTier = &v
	}
	return player, nil
}
