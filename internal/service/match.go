package service

import (
	"context"
	"dota-tracker/internal/api"
	"dota-tracker/internal/cache"
	"dota-tracker/internal/config"
	"dota-tracker/internal/constants"
	"dota-tracker/internal/domain"
	"dota-tracker/internal/metrics"
	"dota-tracker/internal/steamid"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

type MatchService struct {
	upstream Upstream
	store    MatchStore
	cache    cache.Cache
	ttl      time.Duration
	fallback bool
	group    singleflight.Group
	logger   zerolog.Logger
}

func NewMatchService(upstream Upstream, store MatchStore, c cache.Cache, cfg *config.Config, logger zerolog.Logger) *MatchService {
	ttl := cfg.MatchesCacheTTL
	if ttl <= 0 {
		ttl = constants.MatchesCacheTTL
	}
	return &MatchService{
		upstream: upstream,
		store:    store,
		cache:    c,
		ttl:      ttl,
		fallback: cfg.StoreFallback,
		logger:   logger,
	}
}

// GetMatches returns one page of a player's recent matches. Pages are served
// from cache when present; otherwise the latest records are pulled from the
// provider, persisted, sliced and cached.
func (s *MatchService) GetMatches(ctx context.Context, steamID string, page, limit int) (*domain.MatchPage, error) {
	if !steamid.ValidExternal(steamID) {
		return nil, fmt.Errorf("%w: steam id %q", domain.ErrInvalidIdentifier, steamID)
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", domain.ErrInvalidRequest)
	}
	if limit < 1 || limit > constants.MaxPageLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidRequest, constants.MaxPageLimit)
	}

	ctx, span := tracer.Start(ctx, "MatchService.GetMatches")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page), attribute.Int("limit", limit))

	log := s.logger.With().Str("steam_id", steamID).Int("page", page).Int("limit", limit).Logger()
	key := cache.MatchesKey(steamID, page, limit)

	var cached domain.MatchPage
	hit, err := cache.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		log.Warn().Err(err).Msg("cache lookup failed, fetching live")
	}
	if hit {
		log.Debug().Msg("returning cached matches page")
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return &cached, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		fetchCtx, cancel := detach(ctx)
		defer cancel()
		return s.load(fetchCtx, log, steamID, key, page, limit)
	})
	if shared {
		metrics.SingleflightShared.WithLabelValues("matches").Inc()
	}
	if err != nil {
		return nil, err
	}
	result := *v.(*domain.MatchPage)
	return &result, nil
}

func (s *MatchService) load(ctx context.Context, log zerolog.Logger, steamID, key string, page, limit int) (*domain.MatchPage, error) {
	accountID, err := steamid.ToInternal(steamID)
	if err != nil {
		return nil, err
	}

	raw, err := s.upstream.FetchMatchList(ctx, accountID, constants.UpstreamMatchFetchLimit)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("failed to fetch matches")
		if s.fallback {
			if stored, ferr := s.fromStore(ctx, steamID, page, limit); ferr == nil && stored != nil {
				log.Warn().Msg("serving matches from store after upstream failure")
				return stored, nil
			}
		}
		return nil, err
	}

	rows := api.Summaries(raw)
	s.persist(ctx, log, steamID, rows)

	result := paginate(rows, page, limit)
	if err := cache.SetJSON(ctx, s.cache, key, result, s.ttl); err != nil {
		log.Warn().Err(err).Msg("failed to cache matches page")
	}

	log.Info().Int("total_matches", result.TotalMatches).Msg("matches fetched")
	return result, nil
}

// persist writes every record one by one; a failed record is logged and
// skipped so the page is still served.
func (s *MatchService) persist(ctx context.Context, log zerolog.Logger, steamID string, rows []domain.MatchSummary) {
	var failed int
	for _, row := range rows {
		record := row.Record(steamID)
		if err := s.store.UpsertMatch(ctx, &record); err != nil {
			failed++
			log.Warn().Err(err).Int64("match_id", row.MatchID).Msg("failed to persist match")
		}
	}
	if failed > 0 {
		log.Warn().Int("failed", failed).Int("total", len(rows)).Msg("some matches were not persisted")
	}
}

func (s *MatchService) fromStore(ctx context.Context, steamID string, page, limit int) (*domain.MatchPage, error) {
	total, err := s.store.CountByPlayer(ctx, steamID)
	if err != nil || total == 0 {
		return nil, err
	}
	stored, err := s.store.ListByPlayer(ctx, steamID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.MatchSummary, len(stored))
	for i, m := range stored {
		rows[i] = m.Summary()
	}
	return &domain.MatchPage{
		Matches:      rows,
		TotalPages:   totalPages(total, limit),
		CurrentPage:  page,
		TotalMatches: total,
		Summary:      domain.Summarize(rows),
		Source:       "store",
	}, nil
}

func paginate(rows []domain.MatchSummary, page, limit int) *domain.MatchPage {
	total := len(rows)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	window := make([]domain.MatchSummary, end-start)
	copy(window, rows[start:end])

	return &domain.MatchPage{
		Matches:      window,
		TotalPages:   totalPages(total, limit),
		CurrentPage:  page,
		TotalMatches: total,
		Summary:      domain.Summarize(window),
	}
}

func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}
