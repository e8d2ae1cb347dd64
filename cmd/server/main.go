// Command server runs the chat widget backend: the /api/chat proxy, the
// widget embed scripts, and the integration demo page.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/webchat/go-chat-widget/internal/config"
	httpapi "github.com/webchat/go-chat-widget/internal/http"
	"github.com/webchat/go-chat-widget/internal/observability"
	"github.com/webchat/go-chat-widget/internal/repo"
	"github.com/webchat/go-chat-widget/internal/services"
	"github.com/webchat/go-chat-widget/internal/store"
	"github.com/webchat/go-chat-widget/internal/sysutil"
	"github.com/webchat/go-chat-widget/internal/upstream"
)

const defaultVersion = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development; the real environment wins.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	cfg := config.MustLoad()
	version := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), defaultVersion)

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("store", cfg.StoreDriver).Msg("starting chat widget backend")

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store setup failed")
	}

	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty; chat requests will fail until it is set")
	}
	chatSvc := services.NewChatService(st, upstream.NewClient(cfg.OpenAI))

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, chatSvc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
		return
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}

// openStore selects the persistence backend. The default in-memory store
// needs no setup; sqlite opens and migrates the database file.
func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		db, err := repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := repo.AutoMigrate(db); err != nil {
			return nil, err
		}
		return store.NewGormStore(db), nil
	default:
		return store.NewMemStore(), nil
	}
}
