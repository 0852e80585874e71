package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/DridhaTeamHQ/tria-server/internal/http/handlers"
	"github.com/DridhaTeamHQ/tria-server/internal/http/httpapi"
	"github.com/DridhaTeamHQ/tria-server/internal/infra"
	"github.com/DridhaTeamHQ/tria-server/internal/infra/geoip"
	"github.com/DridhaTeamHQ/tria-server/internal/middleware"
	"github.com/DridhaTeamHQ/tria-server/internal/queue"
	"github.com/DridhaTeamHQ/tria-server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	q, err := queue.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer q.Close()

	fileStore, err := storage.NewFileStore(resolveStoragePath(cfg.StoragePath))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	var countryLookup middleware.CountryLookup
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Msg("geoip database unavailable, country analytics degrade to headers")
		} else if resolver != nil {
			defer resolver.Close()
			countryLookup = resolver.CountryCode
		}
	}

	app := &handlers.App{
		SQL:    infra.NewSQLRunner(dbpool, logger),
		Logger: logger,
		Config: cfg,
		Store:  fileStore,
		Queue:  q,
	}
	router := httpapi.NewRouter(app, countryLookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func resolveStoragePath(path string) string {
	if path == "" {
		path = "./storage"
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return path
}
