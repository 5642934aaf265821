package api

import (
	"bytes"
	"context"
	"dota-tracker/internal/config"
	"dota-tracker/internal/constants"
	"dota-tracker/internal/domain"
	"dota-tracker/internal/metrics"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("dota-tracker/api")

type OpenDotaClient struct {
	baseURL    string
	apiKey     string
	client     *fasthttp.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger

	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	RemainingMinute int       `json:"remaining_minute"`
	RemainingMonth  int       `json:"remaining_month"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StatusError is a definitive non-2xx answer from the provider.
type StatusError struct {
	Endpoint string
	Status   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("opendota %s: status %d", e.Endpoint, e.Status)
}

func (e *StatusError) Unwrap() error { return domain.ErrUpstreamRejected }

func NewOpenDotaClient(cfg *config.Config, logger zerolog.Logger) *OpenDotaClient {
	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = constants.ExternalAPITimeout
	}
	perMinute := cfg.UpstreamRatePerMinute
	if perMinute <= 0 {
		perMinute = constants.UpstreamRatePerMinute
	}
	retryDelay := cfg.UpstreamRetryDelay
	if retryDelay <= 0 {
		retryDelay = constants.UpstreamRetryBaseDelay
	}

	return &OpenDotaClient{
		baseURL: cfg.OpenDotaBaseURL,
		apiKey:  cfg.OpenDotaAPIKey,
		client: &fasthttp.Client{
			Name:                "dota-tracker",
			MaxConnsPerHost:     100,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter:    rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute),
		timeout:    timeout,
		maxRetries: cfg.UpstreamRetries,
		retryDelay: retryDelay,
		logger:     logger.With().Str("component", "opendota").Logger(),
		rateLimit: RateLimitInfo{
			RemainingMinute: perMinute,
			UpdatedAt:       time.Now(),
		},
	}
}

func (c *OpenDotaClient) RateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *OpenDotaClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if v := string(resp.Header.Peek("X-Rate-Limit-Remaining-Minute")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.rateLimit.RemainingMinute = n
		}
	}
	if v := string(resp.Header.Peek("X-Rate-Limit-Remaining-Month")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.rateLimit.RemainingMonth = n
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// FetchPlayerProfile returns domain.ErrNotFound when the account is unknown
// or has no public profile.
func (c *OpenDotaClient) FetchPlayerProfile(ctx context.Context, accountID string) (*PlayerResponse, error) {
	body, err := c.get(ctx, "players", "/players/"+url.PathEscape(accountID), nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == fasthttp.StatusNotFound {
			return nil, fmt.Errorf("%w: account %s", domain.ErrNotFound, accountID)
		}
		return nil, err
	}

	resp, err := decodeObject[PlayerResponse](body)
	if err != nil {
		return nil, c.malformed("players", body, err)
	}
	if resp.Profile == nil || resp.Profile.AccountID == 0 {
		return nil, fmt.Errorf("%w: account %s has no profile", domain.ErrNotFound, accountID)
	}
	return resp, nil
}

func (c *OpenDotaClient) FetchMatchList(ctx context.Context, accountID string, limit int) ([]RawMatch, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "player_matches", "/players/"+url.PathEscape(accountID)+"/matches", q)
	if err != nil {
		return nil, err
	}

	matches, err := decodeArray[RawMatch](body)
	if err != nil {
		return nil, c.malformed("player_matches", body, err)
	}
	for i := range matches {
		if err := matches[i].validate(); err != nil {
			return nil, c.malformed("player_matches", body, fmt.Errorf("record %d: %w", i, err))
		}
	}
	return matches, nil
}

func (c *OpenDotaClient) FetchMatchDetail(ctx context.Context, matchID string) (*MatchDetailResponse, error) {
	body, err := c.get(ctx, "match", "/matches/"+url.PathEscape(matchID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := decodeObject[MatchDetailResponse](body)
	if err != nil {
		return nil, c.malformed("match", body, err)
	}
	if resp.MatchID == 0 {
		return nil, c.malformed("match", body, errors.New("missing match_id"))
	}
	return resp, nil
}

// get performs a GET with the retry policy: network errors, timeouts, 429 and
// 5xx are retried up to maxRetries times, sleeping attempt*retryDelay between
// attempts. Other statuses fail immediately with a *StatusError.
func (c *OpenDotaClient) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "opendota."+endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	uri := c.buildURL(path, query)
	log := c.logger.With().Str("endpoint", endpoint).Str("path", path).Logger()

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if attempt > 1 {
			metrics.UpstreamRetries.WithLabelValues(endpoint).Inc()
			delay := time.Duration(attempt-1) * c.retryDelay
			log.Debug().Int("attempt", attempt).Dur("delay", delay).Msg("retrying upstream request")
			if err := sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}

		start := time.Now()
		body, status, err := c.do(ctx, uri)
		metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		span.SetAttributes(attribute.Int("opendota.attempts", attempt))

		if err != nil {
			metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
			log.Warn().Err(err).Int("attempt", attempt).Msg("upstream request failed")
			lastErr = err
			continue
		}

		metrics.UpstreamRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
		span.SetAttributes(attribute.Int("http.status_code", status))

		switch {
		case status == fasthttp.StatusOK:
			return body, nil
		case retryableStatus(status):
			log.Warn().Int("status", status).Int("attempt", attempt).Msg("upstream returned retryable status")
			lastErr = &StatusError{Endpoint: endpoint, Status: status}
		default:
			err := &StatusError{Endpoint: endpoint, Status: status}
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	span.SetStatus(codes.Error, "upstream unavailable")
	log.Error().Err(lastErr).Msg("upstream unavailable")
	return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, endpoint, lastErr)
}

func (c *OpenDotaClient) do(ctx context.Context, uri string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, 0, context.DeadlineExceeded
	}

	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, 0, err
	}

	c.updateRateLimit(resp)

	// body is owned by resp, which goes back to the pool
	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

func (c *OpenDotaClient) buildURL(path string, query url.Values) string {
	if c.apiKey != "" {
		if query == nil {
			query = url.Values{}
		}
		query.Set("api_key", c.apiKey)
	}
	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	return uri
}

func (c *OpenDotaClient) malformed(endpoint string, body []byte, cause error) error {
	const maxLogged = 4096
	logged := body
	if len(logged) > maxLogged {
		logged = logged[:maxLogged]
	}
	c.logger.Error().
		Err(cause).
		Str("endpoint", endpoint).
		Bytes("body", logged).
		Msg("malformed upstream response")
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamMalformed, endpoint, cause)
}

func retryableStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func firstByte(body []byte) byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
