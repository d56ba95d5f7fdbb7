package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	AssetsDir string `yaml:"assets_dir"`
}

type SimulatorConfig struct {
	Latency time.Duration `yaml:"latency"`
}

type StorageConfig struct {
	// RedisURL is optional; when empty the store is in-memory only.
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type CacheConfig struct {
	Version  string   `yaml:"version"`
	Precache []string `yaml:"precache"`
}

type AnalyticsConfig struct {
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type SchedulerConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path and applies defaults. A missing file
// is not fatal; the defaults describe a fully in-memory dev deployment.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.AssetsDir == "" {
		cfg.Server.AssetsDir = "assets"
	}
	if cfg.Simulator.Latency <= 0 {
		cfg.Simulator.Latency = 1500 * time.Millisecond
	}
	if cfg.Cache.Version == "" {
		cfg.Cache.Version = "storefront-static-v1.0.0"
	}
	if cfg.Analytics.FlushInterval <= 0 {
		cfg.Analytics.FlushInterval = 30 * time.Second
	}
	if cfg.Scheduler.SweepInterval <= 0 {
		cfg.Scheduler.SweepInterval = time.Hour
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
