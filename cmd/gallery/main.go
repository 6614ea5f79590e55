package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gallery/internal/gallery"
	"gallery/internal/generator"
	"gallery/internal/http/handlers"
	httpapi "gallery/internal/http/httpapi"
	"gallery/internal/infra"
	"gallery/internal/infra/geoip"
	"gallery/internal/middleware"
	"gallery/internal/scene"
	"gallery/internal/session"
	"gallery/internal/storage"
)

func main() {
	// Optional .env
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	store, err := storage.NewFileStore(cfg.PublicRoot)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open public root")
	}

	backend, err := generator.NewBackend(cfg.GeneratorBackend, cfg.GeneratorPython, cfg.WorkDir, cfg.GeneratorDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid generator backend")
	}
	genLog := infra.Component(logger, "generator")
	gen, err := generator.New(generator.Options{
		Backend:       backend,
		Store:         store,
		APIKey:        cfg.APIKey,
		WorkDir:       cfg.WorkDir,
		Timeout:       cfg.GeneratorTimeout,
		LaunchRetries: cfg.GeneratorLaunchRetries,
		Logger:        &genLog,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure generator")
	}

	opts, err := gallery.LoadOptions(cfg.LayoutFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load layout")
	}
	if cfg.TextureBaseURL != "" {
		opts.TextureBaseURL = cfg.TextureBaseURL
	}

	graph := scene.NewGraph()
	sessionLog := infra.Component(logger, "session")
	hub := session.NewHub(graph, session.Options{
		CheckOrigin: middleware.AllowOrigin(cfg.CORSAllowedOrigins),
		Logger:      &sessionLog,
	})
	galleryLog := infra.Component(logger, "gallery")
	app := gallery.NewApp(graph, gallery.Config{
		Options:     opts,
		Generator:   gen,
		Store:       store,
		Notifier:    hub,
		ReuseOutput: cfg.ReuseOutput,
		Logger:      &galleryLog,
	})
	hub.Attach(app)
	if err := app.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to build scene")
	}

	router := httpapi.NewRouter(handlers.NewApp(app, hub, store), httpapi.Options{
		Logger:          infra.Component(logger, "http"),
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   resolver.Lookup(),
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RequestTimeout:  cfg.HTTPWriteTimeout,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("backend", gen.Backend().Name).
			Str("public_root", store.BasePath()).
			Msg("gallery listening")
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	// ctx is done, so an in-flight generator process group has been killed.
	app.Wait()
	logger.Info().Msg("server stopped")
}
