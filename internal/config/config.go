package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Strategy names accepted in the config file.
const (
	StrategyTable    = "table"
	StrategyFreeText = "text"
)

// Config is the top-level application configuration. It is loaded once at
// startup and passed into the pipeline as an immutable value; nothing
// mutates it afterwards.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// SourceURL is the schedule page for the configured group/period.
	// Requests may override it with the ?src= parameter.
	SourceURL string `yaml:"source_url" json:"source_url"`

	// Timezone is the IANA zone the institution's wall-clock times live in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Strategy selects the extraction strategy: "table" (default) reads
	// the page as a row-oriented HTML table, "text" falls back to
	// line-oriented heuristics.
	Strategy string `yaml:"strategy" json:"strategy"`

	// FetchTimeoutSeconds bounds the upstream page fetch.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds" json:"fetch_timeout_seconds"`

	// ProdID is the PRODID emitted in the calendar envelope.
	ProdID string `yaml:"prodid" json:"prodid"`

	// UIDSuffix is appended after '@' in every event UID.
	UIDSuffix string `yaml:"uid_suffix" json:"uid_suffix"`

	// CalendarName is the display name (X-WR-CALNAME) of the feed.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:              "127.0.0.1:8080",
		SourceURL:           "https://planzajec.uek.krakow.pl/index.php?typ=G&id=187405&okres=2",
		Timezone:            "Europe/Warsaw",
		Strategy:            StrategyTable,
		FetchTimeoutSeconds: 15,
		ProdID:              "-//uekcal//Plan zajec UEK//PL",
		UIDSuffix:           "uekcal",
		CalendarName:        "Plan zajęć UEK",
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled config files still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.SourceURL == "" {
		c.SourceURL = d.SourceURL
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	switch c.Strategy {
	case StrategyTable, StrategyFreeText:
		// ok
	default:
		c.Strategy = StrategyTable
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = d.FetchTimeoutSeconds
	}
	if c.ProdID == "" {
		c.ProdID = d.ProdID
	}
	if c.UIDSuffix == "" {
		c.UIDSuffix = d.UIDSuffix
	}
	if c.CalendarName == "" {
		c.CalendarName = d.CalendarName
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (parent
// directory created, 0600 perms) and returned, so a first run leaves a
// file the operator can edit.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename)
// with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".uekcal-config-*.tmp")
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
