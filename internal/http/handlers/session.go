package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gallery/internal/domain"
	"gallery/internal/middleware"
)

// Session upgrades to a websocket and streams the scene. The optional name
// query parameter labels the participant; the hub assigns its ID.
func (a *App) Session(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	user := domain.User{
		Name:   strings.TrimSpace(q.Get("name")),
		Locale: middleware.LocaleFromContext(r.Context()),
	}
	err := a.Sessions.Serve(w, r, user)
	if errors.Is(err, domain.ErrSceneNotReady) {
		a.error(w, http.StatusServiceUnavailable, "not_ready", "scene is not built yet")
		return
	}
	if err != nil {
		// The upgrader has already answered the client.
		logger(r).Debug().Err(err).Msg("session upgrade failed")
	}
}
