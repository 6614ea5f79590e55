package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"gallery/internal/http/handlers"
	"gallery/internal/middleware"
)

// Options configures the middleware stack.
type Options struct {
	Logger          zerolog.Logger
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	AllowedOrigins  []string
	RateLimitPerMin int
	RequestTimeout  time.Duration
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	// Websocket sessions are long lived and must stay outside the request timeout.
	r.Get("/v1/session", app.Session)

	r.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chimw.Timeout(opts.RequestTimeout))
		}

		r.Get("/v1/healthz", app.Health)
		r.Get("/v1/gallery", app.GalleryStatus)
		r.Get("/v1/gallery/{hash}/archive", app.GalleryArchive)
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/v1/prompts", app.SubmitPrompt)
		r.Handle("/public/*", app.Public("/public"))
	})

	return r
}
