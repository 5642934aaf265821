package constants

import "time"

const (
	SearchCacheTTL  = 1 * time.Hour
	MatchesCacheTTL = 1 * time.Hour
	MatchCacheTTL   = 1 * time.Hour
	SessionTTL      = 24 * time.Hour
)

const (
	ExternalAPITimeout = 5 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

// upstream retry policy
const (
	UpstreamMaxRetries     = 3
	UpstreamRetryBaseDelay = 1 * time.Second
	UpstreamRatePerMinute  = 60
)

const (
	DefaultPage      = 1
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	// raw records pulled per player; pages are sliced locally
	UpstreamMatchFetchLimit = 100
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SessionCookieName = "dota_session"
)
