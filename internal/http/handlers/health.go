package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	_, err := a.Gallery.Status()
	a.json(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"scene_ready": err == nil,
		"sessions":    a.Sessions.Clients(),
	})
}
