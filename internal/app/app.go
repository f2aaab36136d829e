// Package app wires configuration, storage, the task store, the scheduler
// and the announcers into one runnable daemon.
package app

import (
	"context"
	"fmt"
	"sync"

	"remindd/internal/config"
	"remindd/internal/services/notify"
	"remindd/internal/services/scheduler"
	"remindd/internal/storage"
	"remindd/internal/task"
	logx "remindd/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	store *task.Store
	db    storage.Store
	maint *storage.Maintenance
	sched *scheduler.Service

	tg *notify.TelegramAnnouncer

	watchCancel context.CancelFunc
	watchWG     sync.WaitGroup
	cfgCh       chan *config.Config
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Log.Level,
		Console: true,
		File: logx.FileConfig{
			Enabled: cfg.Log.File.Enabled,
			Path:    cfg.Log.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(logSvc.Logger().With(logx.String("comp", "config")))

	a := &App{
		cfgm:  cfgm,
		log:   log,
		logs:  logSvc,
		store: task.NewStore(cfg.Store.MaxTasks),
	}

	// Storage (optional).
	busyTimeout, err := cfg.StorageBusyTimeout()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, logSvc.Logger().With(logx.String("comp", "storage")))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.db = db
	if db != nil {
		log.Info("storage enabled", logx.String("driver", cfg.Storage.Driver), logx.String("path", cfg.Storage.Path))
	}

	// Announcers: console always, telegram when configured.
	var ann notify.Announcer = notify.NewConsoleAnnouncer(logx.Stdout())
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramAnnouncer(notify.TelegramConfig{
			Enabled:    true,
			Token:      cfg.Telegram.Token,
			ChatID:     cfg.Telegram.ChatID,
			RatePerSec: cfg.Telegram.RatePerSec,
		}, logSvc.Logger().With(logx.String("comp", "telegram")))
		if err != nil {
			return nil, fmt.Errorf("telegram announcer: %w", err)
		}
		a.tg = tg
		ann = notify.Fanout{ann, tg}
		log.Info("telegram announcer enabled", logx.Int64("chat_id", cfg.Telegram.ChatID))
	}

	stageUnit, err := cfg.StageUnit()
	if err != nil {
		return nil, err
	}
	runner := notify.NewNotifier(ann, logSvc.Logger().With(logx.String("comp", "countdown")), stageUnit)

	pollInterval, err := cfg.PollInterval()
	if err != nil {
		return nil, err
	}
	var saver scheduler.Saver
	var auditor scheduler.Auditor
	if db != nil {
		saver = db
		auditor = db
	}
	a.sched = scheduler.New(scheduler.Config{PollInterval: pollInterval},
		a.store, saver, runner, auditor,
		logSvc.Logger().With(logx.String("comp", "scheduler")))

	return a, nil
}

// Store exposes the task store to the interactive menu.
func (a *App) Store() *task.Store { return a.store }

// Saver returns the persistence hook for menu mutations (nil when storage
// is disabled).
func (a *App) Saver() storage.Store { return a.db }

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) Start(ctx context.Context) error {
	// Hydrate the store before the scheduler can observe it.
	if a.db != nil {
		tasks, err := a.db.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("load tasks: %w", err)
		}
		a.store.Hydrate(tasks)
		a.log.Info("tasks loaded", logx.Int("count", len(tasks)))
	}

	a.sched.Start(ctx)

	if a.db != nil {
		cfg := a.cfgm.Get()
		retention, err := cfg.AuditRetention()
		if err != nil {
			return err
		}
		m, err := storage.StartMaintenance(a.db, storage.MaintenanceConfig{
			Schedule:  cfg.Storage.Maintenance.Schedule,
			Retention: retention,
		}, a.logs.Logger().With(logx.String("comp", "maintenance")))
		if err != nil {
			return fmt.Errorf("storage maintenance: %w", err)
		}
		a.maint = m
	}

	// Config hot reload: follow the file, re-apply tunables.
	watchCtx, cancel := context.WithCancel(ctx)
	a.watchCancel = cancel
	a.cfgCh = a.cfgm.Subscribe(1)
	a.watchWG.Add(2)
	go func() {
		defer a.watchWG.Done()
		_ = a.cfgm.Watch(watchCtx)
	}()
	go func() {
		defer a.watchWG.Done()
		for {
			select {
			case <-watchCtx.Done():
				return
			case cfg, ok := <-a.cfgCh:
				if !ok {
					return
				}
				a.applyConfig(cfg)
			}
		}
	}()

	return nil
}

// applyConfig hot-applies the runtime-tunable subset: log level/sinks and
// the scheduler poll interval. Storage driver and telegram changes need a
// restart.
func (a *App) applyConfig(cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Log.Level,
		Console: true,
		File: logx.FileConfig{
			Enabled: cfg.Log.File.Enabled,
			Path:    cfg.Log.File.Path,
		},
	})
	if poll, err := cfg.PollInterval(); err == nil {
		a.sched.Apply(scheduler.Config{PollInterval: poll})
	}
	a.log.Info("config applied")
}

func (a *App) Stop(ctx context.Context) {
	if a.watchCancel != nil {
		a.watchCancel()
		a.watchWG.Wait()
		a.cfgm.Unsubscribe(a.cfgCh)
		a.watchCancel = nil
	}
	a.sched.Stop(ctx)
	a.maint.Stop()
	if a.tg != nil {
		a.tg.Close()
	}
	if a.db != nil {
		// Final flush so an exit mid-cycle loses nothing.
		if err := a.db.SaveAll(ctx, a.store.List()); err != nil {
			a.log.Warn("final task flush failed", logx.Err(err))
		}
		_ = a.db.Close()
	}
	_ = a.logs.Close()
}
