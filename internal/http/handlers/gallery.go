package handlers

import (
	"errors"
	"net/http"

	"gallery/internal/domain"
)

// GalleryStatus reports the job state, clip, status label and slot bindings.
func (a *App) GalleryStatus(w http.ResponseWriter, r *http.Request) {
	st, err := a.Gallery.Status()
	if errors.Is(err, domain.ErrSceneNotReady) {
		a.error(w, http.StatusServiceUnavailable, "not_ready", "scene is not built yet")
		return
	}
	if err != nil {
		logger(r).Error().Err(err).Msg("gallery status failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read gallery status")
		return
	}
	a.json(w, http.StatusOK, st)
}
