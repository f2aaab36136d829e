package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file (default)
//   - "file": dependency-free task file (pipe-delimited, one task per line)
//
// If Driver is "none", storage is disabled and the store is memory-only.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default

	Maintenance MaintenanceConfig
}

type MaintenanceConfig struct {
	Schedule  string        // cron spec or descriptor, e.g. "@daily"
	Retention time.Duration // fired-reminder audit retention; 0 means keep all
}
