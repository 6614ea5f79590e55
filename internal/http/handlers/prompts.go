package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gallery/internal/domain"
	"gallery/internal/gallery"
	"gallery/internal/middleware"
)

const maxPromptBody = 4 << 10

type submitPromptRequest struct {
	Prompt string `json:"prompt"`
	Name   string `json:"name"`
}

type submitPromptResponse struct {
	Status string `json:"status"`
	Prompt string `json:"prompt"`
	Hash   string `json:"hash"`
}

// SubmitPrompt starts a generation job, the HTTP equivalent of a dialog submission.
func (a *App) SubmitPrompt(w http.ResponseWriter, r *http.Request) {
	var req submitPromptRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPromptBody)).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	user := domain.User{
		ID:     "http:" + middleware.ClientIP(r),
		Name:   strings.TrimSpace(req.Name),
		Locale: locale,
	}

	err := a.Gallery.Submit(req.Prompt, user)
	switch {
	case err == nil:
		a.json(w, http.StatusAccepted, submitPromptResponse{
			Status: string(domain.JobStateRunning),
			Prompt: gallery.Sanitize(req.Prompt),
			Hash:   gallery.RequestHash(req.Prompt),
		})
	case errors.Is(err, domain.ErrBusy):
		a.error(w, http.StatusConflict, "busy", domain.Notice(locale, domain.NoticeBusy))
	case errors.Is(err, domain.ErrEmptyQuery):
		a.error(w, http.StatusBadRequest, "empty_query", domain.Notice(locale, domain.NoticeEmptyQuery))
	case errors.Is(err, domain.ErrSceneNotReady):
		a.error(w, http.StatusServiceUnavailable, "not_ready", "scene is not built yet")
	case errors.Is(err, domain.ErrShuttingDown):
		a.error(w, http.StatusServiceUnavailable, "shutting_down", "server is shutting down")
	default:
		logger(r).Error().Err(err).Msg("submit prompt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to submit prompt")
	}
}
