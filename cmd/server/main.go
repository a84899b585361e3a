package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nbmusic/remote/internal/catalog"
	"github.com/nbmusic/remote/internal/config"
	"github.com/nbmusic/remote/internal/gateway"
	"github.com/nbmusic/remote/internal/hub"
	"github.com/nbmusic/remote/internal/logging"
	"github.com/nbmusic/remote/internal/player"
	"github.com/nbmusic/remote/internal/router"
	"github.com/nbmusic/remote/internal/watcher"
)

func main() {
	// Initialize structured logging (reads LOGGING_LEVEL env var)
	logging.Initialize()

	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire the core: provider, catalog, push hub, cache, gateway
	provider := player.NewLocal()
	source := catalog.NewBilibiliService(cfg.CatalogTimeout)
	pushHub := hub.New()
	hotList := catalog.NewHotList(source, cfg.HotSongsTTL, cfg.HotSongsKeyword, pushHub)
	gw := gateway.New(provider, provider, source, pushHub, cfg.ProbeTimeout)

	// Initial hot-list fetch; failures are tolerated, the cache fills on
	// the next scheduled or on-demand refresh.
	go func() {
		if err := hotList.Refresh(ctx); err != nil {
			slog.Warn("initial hot-list refresh failed", slog.Any("error", err))
		}
	}()

	// Scheduled refresh keeps the cache warm between requests
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.HotSongsTTL), func() {
		refreshCtx, cancel := context.WithTimeout(ctx, cfg.CatalogTimeout)
		defer cancel()
		if err := hotList.Refresh(refreshCtx); err != nil {
			slog.Warn("scheduled hot-list refresh failed", slog.Any("error", err))
		}
	}); err != nil {
		slog.Error("failed to schedule hot-list refresh", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Playlist change detection feeding the broadcast path
	go watcher.New(provider, pushHub, cfg.PollInterval).Run(ctx)

	// Create router
	r := router.New(cfg, gw, hotList, source, pushHub)

	if err := listenWithRetry(ctx, r, cfg.Port, cfg.PortMaxAttempts); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// listenWithRetry binds the first free port in [startPort, startPort+maxAttempts)
// and serves until ctx is cancelled. Bounded replaces the source behavior of
// recursing on "address in use" forever.
func listenWithRetry(ctx context.Context, handler http.Handler, startPort, maxAttempts int) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		port := startPort + attempt
		addr := fmt.Sprintf(":%d", port)

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				slog.Warn("port in use, trying next",
					slog.Int("port", port),
					slog.Int("attempt", attempt+1))
				continue
			}
			return err
		}

		slog.Info("remote control server listening",
			slog.String("http", fmt.Sprintf("http://localhost:%d", port)),
			slog.String("ws", fmt.Sprintf("ws://localhost:%d/ws", port)))

		srv := &http.Server{Handler: handler}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	return fmt.Errorf("no free port in range %d-%d", startPort, startPort+maxAttempts-1)
}
