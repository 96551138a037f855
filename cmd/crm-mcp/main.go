package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/leadline/crm-mcp/pkg/config"
	"github.com/leadline/crm-mcp/pkg/server"
	"github.com/leadline/crm-mcp/pkg/sweep"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	stdio := flag.Bool("stdio", false, "serve a single session over stdio instead of HTTP")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("Failed to load config")
	}

	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *stdio {
		if err := server.RunStdio(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("Stdio session failed")
		}
		return
	}

	if cfg.Sweep.Enabled {
		sweeper, err := sweep.New(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up inactivity sweep")
		}
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start inactivity sweep")
		}
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.New(cfg, log),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Shutdown did not finish cleanly")
		}
	}()

	log.Info().Str("listen", cfg.Listen).Bool("read_only", cfg.ReadOnly).Msg("Serving MCP over HTTP")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
	log.Info().Msg("Server stopped")
}

// newLogger builds the process logger on stderr, which keeps stdout clean
// for the MCP transport in stdio mode.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}
