package server

import (
	"context"
	"dota-tracker/internal/auth"
	"dota-tracker/internal/config"
	"dota-tracker/internal/constants"
	"dota-tracker/internal/domain"
	"dota-tracker/internal/middleware"
	"dota-tracker/internal/steamid"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const banner = "Dota 2 Tracker Backend"

type MatchLister interface {
	GetMatches(ctx context.Context, steamID string, page, limit int) (*domain.MatchPage, error)
}

type MatchDetailGetter interface {
	GetMatch(ctx context.Context, matchID string) (*domain.MatchDetail, error)
}

type PlayerDirectory interface {
	Search(ctx context.Context, query string) ([]domain.Player, error)
	CurrentUser(ctx context.Context, steamID string) (*domain.Player, error)
	RecordLogin(ctx context.Context, steamID string) (*domain.Player, error)
}

type Authenticator interface {
	RedirectURL() string
	Verify(ctx context.Context, params url.Values) (string, error)
}

type TrackerServer struct {
	players   PlayerDirectory
	matches   MatchLister
	details   MatchDetailGetter
	openid    Authenticator
	sessions  *auth.Sessions
	clientURL string
	logger    zerolog.Logger
}

func NewTrackerServer(
	players PlayerDirectory,
	matches MatchLister,
	details MatchDetailGetter,
	openid Authenticator,
	sessions *auth.Sessions,
	cfg *config.Config,
	logger zerolog.Logger,
) *TrackerServer {
	return &TrackerServer{
		players:   players,
		matches:   matches,
		details:   details,
		openid:    openid,
		sessions:  sessions,
		clientURL: cfg.ClientURL,
		logger:    logger,
	}
}

// Handler returns the routed API with request ids, sessions and metrics
// applied. CORS is left to the caller.
func (s *TrackerServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/user", s.handleUser)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/matches/{steamId}", s.handleMatches)
	mux.HandleFunc("GET /api/match/{matchId}", s.handleMatch)

	mux.HandleFunc("GET /auth/steam", s.handleLogin)
	mux.HandleFunc("GET /auth/steam/return", s.handleLoginReturn)
	mux.HandleFunc("GET /auth/logout", s.handleLogout)

	return middleware.Chain(mux,
		middleware.RequestID(s.logger),
		s.sessions.Middleware,
		middleware.Metrics,
	)
}

func (s *TrackerServer) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(banner))
}

func (s *TrackerServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *TrackerServer) handleUser(w http.ResponseWriter, r *http.Request) {
	steamID, ok := auth.SteamIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	user, err := s.players.CurrentUser(r.Context(), steamID)
	if err != nil {
		writeError(w, r, err, messages{failed: "Server error"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *TrackerServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := s.players.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, r, err, messages{
			invalid:  "Query is required",
			notFound: "Player not found",
			failed:   "Failed to search player",
		})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *TrackerServer) handleMatches(w http.ResponseWriter, r *http.Request) {
	msgs := messages{invalid: "Invalid SteamID format", failed: "Failed to fetch matches"}

	page, err := queryInt(r, "page", constants.DefaultPage)
	if err != nil {
		writeError(w, r, err, messages{invalid: "Invalid pagination parameters"})
		return
	}
	limit, err := queryInt(r, "limit", constants.DefaultPageLimit)
	if err != nil {
		writeError(w, r, err, messages{invalid: "Invalid pagination parameters"})
		return
	}

	steamID := r.PathValue("steamId")
	result, err := s.matches.GetMatches(r.Context(), steamID, page, limit)
	if err != nil {
		if steamid.ValidExternal(steamID) {
			msgs.invalid = "Invalid pagination parameters"
		}
		writeError(w, r, err, msgs)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *TrackerServer) handleMatch(w http.ResponseWriter, r *http.Request) {
	detail, err := s.details.GetMatch(r.Context(), r.PathValue("matchId"))
	if err != nil {
		writeError(w, r, err, messages{
			invalid: "Invalid Match ID format",
			failed:  "Failed to fetch match data",
		})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidRequest, name)
	}
	return n, nil
}
