package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"remindd/internal/task"
	logx "remindd/pkg/logx"
)

// Store is the persistence API used by the app and the scheduler.
//
// LoadAll is called once at startup; SaveAll after every store mutation
// (add, delete, extract). Both are synchronous and safe to call right
// after the task store lock is released.
type Store interface {
	LoadAll(ctx context.Context) ([]task.Task, error)
	SaveAll(ctx context.Context, tasks []task.Task) error

	AppendFired(ctx context.Context, t task.Task, firedAt time.Time) error
	PruneFired(ctx context.Context, olderThan time.Time) (int64, error)
	Checkpoint(ctx context.Context) error

	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "file":
		return openFile(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
