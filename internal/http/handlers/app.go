package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"gallery/internal/gallery"
	"gallery/internal/session"
	"gallery/internal/storage"
)

// App carries the dependencies of the HTTP handlers.
type App struct {
	Gallery  *gallery.App
	Sessions *session.Hub
	Store    *storage.FileStore
}

func NewApp(g *gallery.App, sessions *session.Hub, store *storage.FileStore) *App {
	return &App{Gallery: g, Sessions: sessions, Store: store}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

func logger(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}
