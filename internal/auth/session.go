package auth

import (
	"context"
	"dota-tracker/internal/cache"
	"dota-tracker/internal/config"
	"dota-tracker/internal/constants"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const issuer = "dota-tracker"

var ErrNoSession = errors.New("auth: no active session")

type Session struct {
	ID        string    `json:"id"`
	SteamID   string    `json:"steamId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Sessions issues signed cookie tokens backed by a sess:<id> cache record.
// The token alone is not enough: deleting the record ends the session.
type Sessions struct {
	cache  cache.Cache
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
	logger zerolog.Logger
}

func NewSessions(c cache.Cache, cfg *config.Config, logger zerolog.Logger) *Sessions {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = constants.SessionTTL
	}
	return &Sessions{
		cache:  c,
		secret: []byte(cfg.SessionSecret),
		ttl:    ttl,
		secure: cfg.SecureCookies,
		now:    time.Now,
		logger: logger.With().Str("component", "sessions").Logger(),
	}
}

func (s *Sessions) Create(ctx context.Context, steamID string) (string, *Session, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := s.now().UTC()
	sess := &Session{
		ID:        id,
		SteamID:   steamID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := cache.SetJSON(ctx, s.cache, cache.SessionKey(id), sess, s.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   steamID,
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, sess, nil
}

// Resolve returns the live session behind token, or ErrNoSession.
func (s *Sessions) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := s.parse(token, true)
	if err != nil {
		return nil, err
	}

	var sess Session
	found, err := cache.GetJSON(ctx, s.cache, cache.SessionKey(claims.ID), &sess)
	if err != nil {
		return nil, err
	}
	if !found || sess.SteamID != claims.Subject {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Destroy removes the session record. Tokens that do not parse have nothing
// to remove.
func (s *Sessions) Destroy(ctx context.Context, token string) error {
	claims, err := s.parse(token, false)
	if err != nil {
		return nil
	}
	if err := s.cache.Delete(ctx, cache.SessionKey(claims.ID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Sessions) parse(token string, validateExpiry bool) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	}
	if validateExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		s.logger.Debug().Err(err).Msg("rejected session token")
		return nil, ErrNoSession
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrNoSession
	}
	return &claims, nil
}

func (s *Sessions) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type contextKey string

const steamIDKey contextKey = "steam_id"

// Middleware attaches the signed-in steam id to the request context. Requests
// without a valid session pass through anonymously.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(constants.SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := s.Resolve(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("session lookup failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), steamIDKey, sess.SteamID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SteamIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(steamIDKey).(string)
	return id, ok && id != ""
}
