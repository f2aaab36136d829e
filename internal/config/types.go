package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the on-disk configuration (YAML or JSON). Durations are Go
// duration strings ("2s", "720h"); use the accessor methods to resolve
// them with defaults applied.
type Config struct {
	Log       LogConfig       `json:"log"`
	Store     StoreConfig     `json:"store"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Countdown CountdownConfig `json:"countdown"`
	Storage   StorageConfig   `json:"storage"`
	Telegram  TelegramConfig  `json:"telegram"`
}

type LogConfig struct {
	Level string        `json:"level"`
	File  LogFileConfig `json:"file"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type StoreConfig struct {
	MaxTasks int `json:"max_tasks"`
}

type SchedulerConfig struct {
	PollInterval string `json:"poll_interval"`
}

type CountdownConfig struct {
	StageUnit string `json:"stage_unit"`
}

type StorageConfig struct {
	Driver      string                   `json:"driver"`
	Path        string                   `json:"path"`
	BusyTimeout string                   `json:"busy_timeout"`
	Maintenance StorageMaintenanceConfig `json:"maintenance"`
}

type StorageMaintenanceConfig struct {
	Schedule  string `json:"schedule"`
	Retention string `json:"retention"`
}

type TelegramConfig struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token"`
	ChatID     int64  `json:"chat_id"`
	RatePerSec int    `json:"rate_per_sec"`
}

// Default returns the configuration used when fields are left unset.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "info"},
		Store:     StoreConfig{MaxTasks: 256},
		Scheduler: SchedulerConfig{PollInterval: "2s"},
		Countdown: CountdownConfig{StageUnit: "1s"},
		Storage: StorageConfig{
			Driver:      "sqlite",
			Path:        "./remindd.db",
			BusyTimeout: "5s",
			Maintenance: StorageMaintenanceConfig{Schedule: "@daily", Retention: "720h"},
		},
		Telegram: TelegramConfig{RatePerSec: 1},
	}
}

// Validate checks field syntax (durations, required pairs). It is run
// before a parsed config is committed or published.
func (c *Config) Validate() error {
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	if _, err := c.StageUnit(); err != nil {
		return err
	}
	if _, err := c.StorageBusyTimeout(); err != nil {
		return err
	}
	if _, err := c.AuditRetention(); err != nil {
		return err
	}
	if c.Store.MaxTasks < 0 {
		return errors.New("store.max_tasks must be >= 0")
	}
	if c.Telegram.Enabled {
		if strings.TrimSpace(c.Telegram.Token) == "" {
			return errors.New("telegram.token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return errors.New("telegram.chat_id is required when telegram is enabled")
		}
	}
	driver := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch driver {
	case "", "none", "sqlite", "sqlite3", "file":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if driver != "none" && strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	return nil
}

func (c *Config) PollInterval() (time.Duration, error) {
	return ParseDurationOrDefault("scheduler.poll_interval", c.Scheduler.PollInterval, 2*time.Second)
}

func (c *Config) StageUnit() (time.Duration, error) {
	return ParseDurationOrDefault("countdown.stage_unit", c.Countdown.StageUnit, time.Second)
}

func (c *Config) StorageBusyTimeout() (time.Duration, error) {
	return ParseDurationOrDefault("storage.busy_timeout", c.Storage.BusyTimeout, 5*time.Second)
}

func (c *Config) AuditRetention() (time.Duration, error) {
	return ParseDurationField("storage.maintenance.retention", c.Storage.Maintenance.Retention)
}
