package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"memory-match-server/api"
	"memory-match-server/auth"
	"memory-match-server/config"
	"memory-match-server/lobby"
	"memory-match-server/loghandler"
	"memory-match-server/storage"
	"memory-match-server/theme"
	"memory-match-server/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	level := new(slog.LevelVar)
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, level)))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			slog.Warn("invalid LOG_LEVEL, using INFO", "tag", "main", "value", v)
		}
	}

	if err := run(); err != nil {
		slog.Error("server stopped", "tag", "main", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	validator := auth.NewValidator(cfg.NeonAuthBaseURL, cfg.JWTSecret)
	switch {
	case cfg.NeonAuthBaseURL != "":
		slog.Info("auth configured", "tag", "main", "base_url", cfg.NeonAuthBaseURL)
	case cfg.JWTSecret != "":
		slog.Info("auth configured with shared secret", "tag", "main")
	default:
		slog.Info("auth not configured; everyone plays as a guest", "tag", "main")
	}

	slog.Info("configuration", "tag", "main",
		"board", fmt.Sprintf("%dx%d", cfg.BoardRows, cfg.BoardCols),
		"theme", cfg.Theme,
		"mismatch_policy", cfg.MismatchPolicy,
		"reveal_ms", cfg.RevealDelayMS,
		"resolve_ms", cfg.ResolveDelayMS,
		"port", cfg.WSPort)

	themes := theme.NewRegistry()
	theme.RegisterAll(themes)
	if _, err := themes.PickFaces(cfg.Theme, cfg.PairCount(), rand.New(rand.NewSource(1))); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	lob := lobby.NewLobby(cfg, themes, store)
	hub := ws.NewHub(cfg, lob, validator)
	router := api.NewRouter(api.NewHandler(cfg, store, validator), hub.ServeWS)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WSPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return lob.Run(gctx)
	})
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("memory match server listening", "tag", "main", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
