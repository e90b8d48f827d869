package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gtodo/internal/backend/gist"
	"gtodo/internal/config"
	"gtodo/internal/service"
	"gtodo/internal/storage"
	"gtodo/internal/storage/filekv"
	"gtodo/internal/storage/memory"
	"gtodo/internal/storage/rediskv"
	"gtodo/internal/storage/sqlkv"
	"gtodo/internal/store"
)

// Storage backend names accepted in storage.backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// NewLogger returns the process logger: debug level with --debug,
// warnings only otherwise.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenKV opens the storage backend selected in cfg.
func OpenKV(ctx context.Context, cfg *config.Config) (storage.KV, error) {
	switch cfg.Storage.Backend {
	case "", BackendFile:
		return filekv.New(cfg.DataPath()), nil
	case BackendSQLite:
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		return sqlkv.Open(cfg.SQLitePath())
	case BackendRedis:
		return rediskv.Dial(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPrefix)
	case BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// NewStore is the production ServiceFactory: the configured storage
// backend, the gist client and the store.
func NewStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Service, error) {
	kv, err := OpenKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("storage opened", "backend", cfg.Storage.Backend)

	remote := gist.New(gist.Options{
		Endpoint: cfg.Remote.Endpoint,
		Filename: cfg.Remote.Filename,
		Timeout:  cfg.Remote.Timeout,
		Logger:   log,
	})

	return store.New(store.Options{
		Adapter:      storage.NewAdapter(kv, log),
		Remote:       remote,
		Users:        cfg.Users,
		Debounce:     cfg.Sync.Debounce,
		PullInterval: cfg.Sync.PullInterval,
		Logger:       log,
	}), nil
}
