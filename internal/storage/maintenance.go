package storage

import (
	"context"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	logx "remindd/pkg/logx"
)

// DefaultMaintenanceSchedule runs housekeeping once a day.
const DefaultMaintenanceSchedule = "@daily"

// Maintenance periodically prunes the fired-reminder audit and compacts
// the database (WAL checkpoint for sqlite; a no-op for the file driver).
type Maintenance struct {
	c         *cron.Cron
	store     Store
	log       logx.Logger
	retention time.Duration
}

func StartMaintenance(store Store, cfg MaintenanceConfig, log logx.Logger) (*Maintenance, error) {
	if store == nil {
		return nil, nil
	}
	spec := strings.TrimSpace(cfg.Schedule)
	if spec == "" {
		spec = DefaultMaintenanceSchedule
	}

	m := &Maintenance{c: cron.New(), store: store, log: log, retention: cfg.Retention}
	if _, err := m.c.AddFunc(spec, m.runOnce); err != nil {
		return nil, err
	}
	m.c.Start()
	log.Info("storage maintenance scheduled", logx.String("schedule", spec), logx.Duration("retention", cfg.Retention))
	return m, nil
}

func (m *Maintenance) Stop() {
	if m == nil {
		return
	}
	<-m.c.Stop().Done()
}

func (m *Maintenance) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if m.retention > 0 {
		cutoff := time.Now().Add(-m.retention)
		n, err := m.store.PruneFired(ctx, cutoff)
		if err != nil {
			m.log.Warn("audit prune failed", logx.Err(err))
		} else if n > 0 {
			m.log.Info("audit pruned", logx.Int64("removed", n))
		}
	}
	if err := m.store.Checkpoint(ctx); err != nil {
		m.log.Warn("storage checkpoint failed", logx.Err(err))
	}
}
