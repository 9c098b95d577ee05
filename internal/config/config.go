// Package config loads and saves the daemon configuration: global settings
// plus the monitored account list. A malformed account entry is reported and
// excluded; it never prevents the remaining accounts from starting.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ytget/yt-monitor/internal/model"
)

// Default values (durations in seconds in the file)
const (
	DefaultDownloadDir     = "downloads"
	DefaultLedgerPath      = "yt-monitor.db"
	DefaultQuality         = "best"
	DefaultIntervalSec     = 300
	DefaultProbeTimeout    = 60
	DefaultDispatchTimeout = 3600
	DefaultBackoffBase     = 30
	DefaultBackoffMax      = 3600
)

// AccountConfig is one account entry in the config file
type AccountConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Platform    string `yaml:"platform"`
	URL         string `yaml:"url"`
	DownloadDir string `yaml:"download_dir,omitempty"` // overrides the global dir
	IntervalSec int    `yaml:"interval,omitempty"`
	Enabled     bool   `yaml:"enabled"`
	MaxPerPoll  int    `yaml:"max_per_poll,omitempty"`
	Cookie      string `yaml:"cookie,omitempty"`
}

// Config is the full daemon configuration
type Config struct {
	DownloadDir        string          `yaml:"download_dir"`
	LedgerPath         string          `yaml:"ledger_path"`
	Quality            string          `yaml:"quality"`
	ProbeTimeoutSec    int             `yaml:"probe_timeout,omitempty"`
	DispatchTimeoutSec int             `yaml:"dispatch_timeout,omitempty"`
	BackoffBaseSec     int             `yaml:"backoff_base,omitempty"`
	BackoffMaxSec      int             `yaml:"backoff_max,omitempty"`
	Accounts           []AccountConfig `yaml:"accounts"`
}

// Default returns a configuration with every global setting at its default
func Default() *Config {
	return &Config{
		DownloadDir:        DefaultDownloadDir,
		LedgerPath:         DefaultLedgerPath,
		Quality:            DefaultQuality,
		ProbeTimeoutSec:    DefaultProbeTimeout,
		DispatchTimeoutSec: DefaultDispatchTimeout,
		BackoffBaseSec:     DefaultBackoffBase,
		BackoffMaxSec:      DefaultBackoffMax,
	}
}

// Load reads the config file. A missing file yields the defaults, so a fresh
// install starts clean and the first Save creates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config file, creating parent directories as needed
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DownloadDir == "" {
		c.DownloadDir = DefaultDownloadDir
	}
	if c.LedgerPath == "" {
		c.LedgerPath = DefaultLedgerPath
	}
	if c.Quality == "" {
		c.Quality = DefaultQuality
	}
	if c.ProbeTimeoutSec <= 0 {
		c.ProbeTimeoutSec = DefaultProbeTimeout
	}
	if c.DispatchTimeoutSec <= 0 {
		c.DispatchTimeoutSec = DefaultDispatchTimeout
	}
	if c.BackoffBaseSec <= 0 {
		c.BackoffBaseSec = DefaultBackoffBase
	}
	if c.BackoffMaxSec <= 0 {
		c.BackoffMaxSec = DefaultBackoffMax
	}
}

// ProbeTimeout returns the probe timeout as a duration
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSec) * time.Second
}

// DispatchTimeout returns the dispatch timeout as a duration
func (c *Config) DispatchTimeout() time.Duration {
	return time.Duration(c.DispatchTimeoutSec) * time.Second
}

// BackoffBase returns the backoff base as a duration
func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.BackoffBaseSec) * time.Second
}

// BackoffMax returns the backoff cap as a duration
func (c *Config) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxSec) * time.Second
}

// ToAccounts converts the account entries to domain accounts. Malformed
// entries are skipped and their errors returned alongside the valid rest.
func (c *Config) ToAccounts() ([]model.Account, []error) {
	accounts := make([]model.Account, 0, len(c.Accounts))
	var errs []error
	seen := make(map[string]bool, len(c.Accounts))

	for i, entry := range c.Accounts {
		account := entry.toModel(c.DownloadDir)
		if err := account.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("account entry %d: %w", i, err))
			continue
		}
		if seen[account.ID] {
			errs = append(errs, fmt.Errorf("account entry %d: duplicate id %s", i, account.ID))
			continue
		}
		seen[account.ID] = true
		accounts = append(accounts, account)
	}
	return accounts, errs
}

func (a *AccountConfig) toModel(globalDownloadDir string) model.Account {
	interval := a.IntervalSec
	if interval == 0 {
		interval = DefaultIntervalSec
	}
	dir := a.DownloadDir
	if dir == "" {
		dir = globalDownloadDir
	}
	return model.Account{
		ID:          a.ID,
		Name:        a.Name,
		Platform:    model.Platform(a.Platform),
		URL:         a.URL,
		DownloadDir: dir,
		Interval:    time.Duration(interval) * time.Second,
		Enabled:     a.Enabled,
		MaxPerPoll:  a.MaxPerPoll,
		Cookie:      a.Cookie,
	}
}
