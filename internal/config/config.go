package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const devSessionSecret = "dev-session-secret-change-me"

type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"5000"`
	ServerURL  string `env:"SERVER_URL"`
	ClientURL  string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	DBPath   string `env:"DB_PATH" envDefault:"dota.db"`
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	OpenDotaBaseURL       string        `env:"OPENDOTA_BASE_URL" envDefault:"https://api.opendota.com/api"`
	OpenDotaAPIKey        string        `env:"OPENDOTA_API_KEY"`
	UpstreamTimeout       time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"5s"`
	UpstreamRetries       int           `env:"UPSTREAM_RETRIES" envDefault:"3"`
	UpstreamRetryDelay    time.Duration `env:"UPSTREAM_RETRY_DELAY" envDefault:"1s"`
	UpstreamRatePerMinute int           `env:"UPSTREAM_RATE_PER_MINUTE" envDefault:"60"`

	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	SearchCacheTTL  time.Duration `env:"SEARCH_CACHE_TTL"`
	MatchesCacheTTL time.Duration `env:"MATCHES_CACHE_TTL"`
	MatchCacheTTL   time.Duration `env:"MATCH_CACHE_TTL"`
	StoreFallback   bool          `env:"STORE_FALLBACK" envDefault:"false"`

	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SecureCookies  bool          `env:"SECURE_COOKIES" envDefault:"false"`
	SteamOpenIDURL string        `env:"STEAM_OPENID_URL" envDefault:"https://steamcommunity.com/openid/login"`

	OTEL OTELConfig
}

type OTELConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	Insecure    bool    `env:"OTEL_INSECURE" envDefault:"true"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"dota-tracker"`
	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if cfg.SessionSecret == devSessionSecret {
		logger.Warn().Msg("SESSION_SECRET not set, using development secret")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("redis_url", redactURL(cfg.RedisURL)).
		Str("server_port", cfg.ServerPort).
		Str("server_url", cfg.ServerURL).
		Str("client_url", cfg.ClientURL).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Dur("upstream_timeout", cfg.UpstreamTimeout).
		Int("upstream_retries", cfg.UpstreamRetries).
		Bool("store_fallback", cfg.StoreFallback).
		Msg("configuration loaded")

	return cfg, nil
}

// Parse reads the environment without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = "http://localhost:" + c.ServerPort
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	c.ClientURL = strings.TrimRight(c.ClientURL, "/")
	if c.SearchCacheTTL == 0 {
		c.SearchCacheTTL = c.CacheTTL
	}
	if c.MatchesCacheTTL == 0 {
		c.MatchesCacheTTL = c.CacheTTL
	}
	if c.MatchCacheTTL == 0 {
		c.MatchCacheTTL = c.CacheTTL
	}
	if c.SessionSecret == "" {
		c.SessionSecret = devSessionSecret
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}
	if c.UpstreamRetries < 0 {
		errs = append(errs, errors.New("UPSTREAM_RETRIES must not be negative"))
	}
	if c.UpstreamRatePerMinute <= 0 {
		errs = append(errs, errors.New("UPSTREAM_RATE_PER_MINUTE must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		errs = append(errs, errors.New("OTEL_SAMPLE_RATIO must be within [0,1]"))
	}
	if _, err := url.Parse(c.OpenDotaBaseURL); err != nil || c.OpenDotaBaseURL == "" {
		errs = append(errs, fmt.Errorf("OPENDOTA_BASE_URL is invalid: %q", c.OpenDotaBaseURL))
	}
	return errors.Join(errs...)
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Redacted()
}
