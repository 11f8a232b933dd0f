package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/playrank/authd/internal/config"
	"github.com/playrank/authd/internal/score"
	"github.com/playrank/authd/internal/server"
	"github.com/playrank/authd/internal/session"
	"github.com/playrank/authd/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "authd")

	cfg, path, err := config.Load()
	if err != nil {
		logger.Error("config error", "error", err)
		os.Exit(1)
	}
	if path != "" {
		logger.Info("loaded config", "path", path)
	}
	for _, warn := range config.Validate(cfg).Warnings {
		logger.Warn("config warning", "warning", warn)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users, backend, err := storage.NewUserStoreFromConfig(cfg)
	if err != nil {
		logger.Error("user store error", "error", err)
		os.Exit(1)
	}
	logger.Info("user store ready", "backend", string(backend))

	redisClient, err := storage.NewRedisClientFromURL(ctx, cfg.Cache.RedisURL)
	if err != nil {
		logger.Error("redis error", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	opTimeout := time.Duration(cfg.Cache.OpTimeoutSeconds) * time.Second
	sessions := session.NewRedisStore(redisClient, opTimeout)
	ledger := score.NewLedger(redisClient, opTimeout)

	srv := server.New(cfg, logger, users, sessions, ledger)

	go watchConfig(ctx, logger, path, func(updated *config.Config) {
		srv.UpdateConfig(updated)
	})

	go func() {
		logger.Info("server listening", "address", cfg.Server.Address)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func watchConfig(ctx context.Context, logger *slog.Logger, path string, onReload func(cfg *config.Config)) {
	if path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("config watcher error", "error", err)
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("config watcher error", "error", err)
		return
	}
	if err := watcher.Add(path); err != nil {
		logger.Warn("config watcher error", "error", err)
	}

	var mu sync.Mutex
	var timer *time.Timer

	scheduleReload := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(500*time.Millisecond, func() {
			updated, err := config.LoadFromPath(path)
			if err != nil {
				logger.Warn("config reload error", "error", err)
				return
			}
			logger.Info("config reloaded", "path", path)
			onReload(updated)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				scheduleReload()
			}
		case err := <-watcher.Errors:
			if err != nil {
				logger.Warn("config watcher error", "error", err)
			}
		}
	}
}
