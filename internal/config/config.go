// Package config loads the CampusBell application configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Storage backends for the event cache and notification settings.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// FeedConfig describes the district calendar feed subscription.
type FeedConfig struct {
	// URL is the ICS feed endpoint.
	URL string `yaml:"url" json:"url"`

	// RefreshCron is a cron-style schedule string for periodic refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`
}

// NotifyConfig describes the notification reconciliation schedule and the
// optional Pub/Sub delivery backend.
type NotifyConfig struct {
	// ReconcileCron is a cron-style schedule string for the daily
	// reconciliation pass.
	ReconcileCron string `yaml:"reconcile" json:"reconcile"`

	// PubSubProject and PubSubTopic select the delivery topic. When the
	// project is empty, notification scheduling is disabled.
	PubSubProject string `yaml:"pubsub_project" json:"pubsub_project"`
	PubSubTopic   string `yaml:"pubsub_topic" json:"pubsub_topic"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone the school operates in
	// (e.g. "America/Chicago"). Schedule resolution is anchored to it.
	Timezone string `yaml:"timezone" json:"timezone"`

	// SchedulesPath is the bell schedule definitions YAML file.
	SchedulesPath string `yaml:"schedules" json:"schedules"`

	// WellnessPath is the wellness center hours YAML file. Optional.
	WellnessPath string `yaml:"wellness" json:"wellness"`

	// StaticEventsPath is the bundled fallback events JSON file. Optional.
	StaticEventsPath string `yaml:"static_events" json:"static_events"`

	// RotationCycleDays is the length of the letter-day rotation cycle.
	RotationCycleDays int `yaml:"rotation_cycle_days" json:"rotation_cycle_days"`

	// Storage selects where the event cache and notification settings
	// persist: "memory", "postgres", or "redis".
	Storage string `yaml:"storage" json:"storage"`

	// RedisAddr is the Redis address when Storage is "redis".
	RedisAddr string `yaml:"redis_addr" json:"redis_addr"`

	Feed   FeedConfig   `yaml:"feed" json:"feed"`
	Notify NotifyConfig `yaml:"notify" json:"notify"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:            "127.0.0.1:8080",
		Timezone:          "America/Chicago",
		SchedulesPath:     "schedules.yaml",
		RotationCycleDays: 26,
		Storage:           StorageMemory,
		Feed: FeedConfig{
			RefreshCron: "0 * * * *",
		},
		Notify: NotifyConfig{
			ReconcileCron: "0 5 * * *",
		},
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly, and validates enumerated fields.
func (c *Config) Normalize() error {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.SchedulesPath == "" {
		c.SchedulesPath = def.SchedulesPath
	}
	if c.RotationCycleDays <= 0 {
		c.RotationCycleDays = def.RotationCycleDays
	}
	if c.Feed.RefreshCron == "" {
		c.Feed.RefreshCron = def.Feed.RefreshCron
	}
	if c.Notify.ReconcileCron == "" {
		c.Notify.ReconcileCron = def.Notify.ReconcileCron
	}

	switch c.Storage {
	case StorageMemory, StoragePostgres, StorageRedis:
	case "":
		c.Storage = StorageMemory
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}

	if c.Storage == StorageRedis && c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}

	return nil
}

// Load loads configuration from the given YAML path. A missing file yields
// the defaults; a present but malformed file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	if err := cfg.Normalize(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".campusbell-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
