package service

import (
	"context"
	"dota-tracker/internal/cache"
	"dota-tracker/internal/config"
	"dota-tracker/internal/constants"
	"dota-tracker/internal/domain"
	"dota-tracker/internal/metrics"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

// canonical decimal form, so each match has exactly one cache key
var matchIDRe = regexp.MustCompile(`^[1-9]\d*$`)

// MatchDetailService serves the full scoreboard of one match. Details are
// cached but never written to the store.
type MatchDetailService struct {
	upstream Upstream
	cache    cache.Cache
	ttl      time.Duration
	group    singleflight.Group
	logger   zerolog.Logger
}

func NewMatchDetailService(upstream Upstream, c cache.Cache, cfg *config.Config, logger zerolog.Logger) *MatchDetailService {
	ttl := cfg.MatchCacheTTL
	if ttl <= 0 {
		ttl = constants.MatchCacheTTL
	}
	return &MatchDetailService{upstream: upstream, cache: c, ttl: ttl, logger: logger}
}

func (s *MatchDetailService) GetMatch(ctx context.Context, matchID string) (*domain.MatchDetail, error) {
	if !matchIDRe.MatchString(matchID) {
		return nil, fmt.Errorf("%w: match id %q", domain.ErrInvalidIdentifier, matchID)
	}
	if _, err := strconv.ParseInt(matchID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: match id %q", domain.ErrInvalidIdentifier, matchID)
	}

	ctx, span := tracer.Start(ctx, "MatchDetailService.GetMatch")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchID))

	log := s.logger.With().Str("match_id", matchID).Logger()
	key := cache.MatchKey(matchID)

	var cached domain.MatchDetail
	hit, err := cache.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		log.Warn().Err(err).Msg("cache lookup failed, fetching live")
	}
	if hit {
		log.Debug().Msg("match found in cache")
		return &cached, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		fetchCtx, cancel := detach(ctx)
		defer cancel()

		log.Debug().Msg("match not in cache, fetching from API")
		resp, err := s.upstream.FetchMatchDetail(fetchCtx, matchID)
		if err != nil {
			log.Error().Err(err).Msg("failed to fetch match")
			return nil, err
		}

		detail := resp.Detail()
		if err := cache.SetJSON(fetchCtx, s.cache, key, detail, s.ttl); err != nil {
			log.Warn().Err(err).Msg("failed to cache match")
		}
		return &detail, nil
	})
	if shared {
		metrics.SingleflightShared.WithLabelValues("match").Inc()
	}
	if err != nil {
		return nil, err
	}
	detail := *v.(*domain.MatchDetail)
	return &detail, nil
}
