package server

import (
	"dota-tracker/internal/constants"
	"net/http"

	"github.com/rs/zerolog"
)

func (s *TrackerServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.openid.RedirectURL(), http.StatusFound)
}

// handleLoginReturn completes the Steam round trip. Any failure sends the
// browser back to the client home page without a session.
func (s *TrackerServer) handleLoginReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := zerolog.Ctx(ctx)
	failure := s.clientURL + "/"

	steamID, err := s.openid.Verify(ctx, r.URL.Query())
	if err != nil {
		log.Warn().Err(err).Msg("steam login rejected")
		http.Redirect(w, r, failure, http.StatusFound)
		return
	}

	if _, err := s.players.RecordLogin(ctx, steamID); err != nil {
		log.Error().Err(err).Str("steam_id", steamID).Msg("failed to record login")
		http.Redirect(w, r, failure, http.StatusFound)
		return
	}

	token, sess, err := s.sessions.Create(ctx, steamID)
	if err != nil {
		log.Error().Err(err).Str("steam_id", steamID).Msg("failed to create session")
		http.Redirect(w, r, failure, http.StatusFound)
		return
	}

	log.Info().Str("steam_id", steamID).Str("session_id", sess.ID).Msg("user logged in")
	http.SetCookie(w, s.sessions.Cookie(token))
	http.Redirect(w, r, s.clientURL+"/profile", http.StatusFound)
}

func (s *TrackerServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
		if err := s.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to destroy session")
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error: "Failed to destroy session",
				Code:  "logout_failed",
			})
			return
		}
	}

	http.SetCookie(w, s.sessions.ClearCookie())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
