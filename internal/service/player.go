package service

import (
	"context"
	"dota-tracker/internal/cache"
	"dota-tracker/internal/config"
	"dota-tracker/internal/constants"
	"dota-tracker/internal/domain"
	"dota-tracker/internal/steamid"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type PlayerService struct {
	upstream Upstream
	store    ProfileStore
	cache    cache.Cache
	ttl      time.Duration
	logger   zerolog.Logger
}

func NewPlayerService(upstream Upstream, store ProfileStore, c cache.Cache, cfg *config.Config, logger zerolog.Logger) *PlayerService {
	ttl := cfg.SearchCacheTTL
	if ttl <= 0 {
		ttl = constants.SearchCacheTTL
	}
	return &PlayerService{upstream: upstream, store: store, cache: c, ttl: ttl, logger: logger}
}

// Search resolves a query to at most one player. The query is either a
// 17-digit steam id or a numeric account id; anything else is reported as
// not found, as is an account the provider does not know.
func (s *PlayerService) Search(ctx context.Context, query string) ([]domain.Player, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	ctx, span := tracer.Start(ctx, "PlayerService.Search")
	defer span.End()

	log := s.logger.With().Str("query", query).Logger()
	key := cache.SearchKey(query)

	var cached []domain.Player
	hit, err := cache.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		log.Warn().Err(err).Msg("cache lookup failed, searching live")
	}
	if hit {
		return cached, nil
	}

	steamID, accountID, ok := resolveQuery(query)
	if !ok {
		log.Debug().Msg("query is not a numeric id")
		return nil, fmt.Errorf("%w: no player matches %q", domain.ErrNotFound, query)
	}

	fetchCtx, cancel := detach(ctx)
	defer cancel()

	profile, err := s.upstream.FetchPlayerProfile(fetchCtx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug().Str("account_id", accountID).Msg("player not found upstream")
		return nil, fmt.Errorf("%w: no player matches %q", domain.ErrNotFound, query)
	}
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("player lookup failed")
		return nil, err
	}

	player := profile.Player(steamID)
	if err := s.store.Upsert(fetchCtx, &player); err != nil {
		return nil, err
	}
	if stored, err := s.store.GetBySteamID(fetchCtx, steamID); err == nil {
		player = *stored
	} else {
		player.AccountID = accountID
	}

	results := []domain.Player{player}
	if err := cache.SetJSON(fetchCtx, s.cache, key, results, s.ttl); err != nil {
		log.Warn().Err(err).Msg("failed to cache search result")
	}
	return results, nil
}

// CurrentUser returns the stored profile for steamID, or nil when there is none.
func (s *PlayerService) CurrentUser(ctx context.Context, steamID string) (*domain.Player, error) {
	player, err := s.store.GetBySteamID(ctx, steamID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return player, nil
}

// RecordLogin refreshes the profile of a freshly authenticated user. The
// provider lookup is best effort; the user row is always written.
func (s *PlayerService) RecordLogin(ctx context.Context, steamID string) (*domain.Player, error) {
	accountID, err := steamid.ToInternal(steamID)
	if err != nil {
		return nil, err
	}

	log := s.logger.With().Str("steam_id", steamID).Logger()

	var player domain.Player
	profile, err := s.upstream.FetchPlayerProfile(ctx, accountID)
	switch {
	case err == nil:
		player = profile.Player(steamID)
	default:
		log.Warn().Err(err).Msg("profile lookup failed during login")
		if existing, gerr := s.store.GetBySteamID(ctx, steamID); gerr == nil {
			player = *existing
		} else {
			player = domain.Player{SteamID: steamID, DisplayName: steamID}
		}
	}

	if err := s.store.Upsert(ctx, &player); err != nil {
		return nil, err
	}
	log.Info().Msg("login recorded")
	return s.store.GetBySteamID(ctx, steamID)
}

func resolveQuery(query string) (steamID, accountID string, ok bool) {
	if steamid.ValidExternal(query) {
		accountID, err := steamid.ToInternal(query)
		if err != nil {
			return "", "", false
		}
		return query, accountID, true
	}
	if steamid.ValidInternal(query) {
		steamID, err := steamid.ToExternal(query)
		if err != nil || !steamid.ValidExternal(steamID) {
			return "", "", false
		}
		return steamID, query, true
	}
	return "", "", false
}
