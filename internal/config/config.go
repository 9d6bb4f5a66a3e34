package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model. It captures Twitter
// credentials, the stats lookback window, storage, and server surfaces.
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	Stats       StatsConfig       `yaml:"stats"`
	Storage     StorageConfig     `yaml:"storage"`
	Server      ServerConfig      `yaml:"server"`
	Sync        SyncConfig        `yaml:"sync"`
}

type CredentialsConfig struct {
	// OAuth 1.0a credentials for the v1.1 API. Empty fields are read
	// from TWITTER_CONSUMER_KEY, TWITTER_CONSUMER_SECRET,
	// TWITTER_ACCESS_TOKEN_KEY, TWITTER_ACCESS_TOKEN_SECRET.
	ConsumerKey    string `yaml:"consumerKey"`
	ConsumerSecret string `yaml:"consumerSecret"`
	AccessToken    string `yaml:"accessToken"`
	AccessSecret   string `yaml:"accessSecret"`
}

type StatsConfig struct {
	// SinceDays is the lookback window for recent-tweet aggregates.
	// If zero, read from STATS_SINCE_DAYS; defaults to 7.
	SinceDays int `yaml:"sinceDays"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metricsAddr"`
}

type SyncConfig struct {
	// IntervalSeconds between scheduled combined syncs; zero disables the loop.
	IntervalSeconds int `yaml:"intervalSeconds"`
	// TaskTimeoutSeconds bounds each per-account fetch or save.
	TaskTimeoutSeconds int `yaml:"taskTimeoutSeconds"`
}

// Interval returns the loop interval as a duration.
func (c SyncConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// TaskTimeout returns the per-task bound as a duration.
func (c SyncConfig) TaskTimeout() time.Duration {
	return time.Duration(c.TaskTimeoutSeconds) * time.Second
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Stats:   StatsConfig{SinceDays: 7},
		Storage: StorageConfig{DBPath: "./flocksync.db"},
		Server:  ServerConfig{Addr: ":3000", MetricsAddr: ""},
		Sync:    SyncConfig{IntervalSeconds: 0, TaskTimeoutSeconds: 30},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Credentials.ConsumerKey == "" {
		c.Credentials.ConsumerKey = os.Getenv("TWITTER_CONSUMER_KEY")
	}
	if c.Credentials.ConsumerSecret == "" {
		c.Credentials.ConsumerSecret = os.Getenv("TWITTER_CONSUMER_SECRET")
	}
	if c.Credentials.AccessToken == "" {
		c.Credentials.AccessToken = os.Getenv("TWITTER_ACCESS_TOKEN_KEY")
	}
	if c.Credentials.AccessSecret == "" {
		c.Credentials.AccessSecret = os.Getenv("TWITTER_ACCESS_TOKEN_SECRET")
	}
	if c.Stats.SinceDays <= 0 {
		if v := os.Getenv("STATS_SINCE_DAYS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.Stats.SinceDays = n
			}
		}
	}
	if c.Stats.SinceDays <= 0 {
		c.Stats.SinceDays = 7
	}
	if c.Sync.TaskTimeoutSeconds <= 0 {
		c.Sync.TaskTimeoutSeconds = 30
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
