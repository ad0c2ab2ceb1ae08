package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"webcal/internal/calendar"
	"webcal/internal/model"
)

// Seed values understood besides a file path or feed URL.
const (
	SeedSample = "sample"
	SeedNone   = "none"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// WeekStart controls which weekday is the first column of week and
	// month views. Supported values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// DefaultView is the granularity a new session opens in.
	DefaultView model.Granularity `yaml:"default_view" json:"default_view"`

	// HourHeight and MinExtent size the day-column timeline.
	HourHeight float64 `yaml:"hour_height" json:"hour_height"`
	MinExtent  float64 `yaml:"min_extent" json:"min_extent"`

	// Seed selects the events loaded at startup: "sample", "none", a path
	// to an .ics file, or an http(s) URL of an ICS feed.
	Seed string `yaml:"seed" json:"seed"`

	// CacheDir stores downloaded seed feeds.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// LogLevel is one of debug, info, error. LogFormat is console or json.
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		WeekStart:   "sunday",
		DefaultView: model.Month,
		HourHeight:  calendar.DefaultHourHeight,
		MinExtent:   calendar.DefaultMinExtent,
		Seed:        SeedSample,
		CacheDir:    "./var/ics-cache",
		LogLevel:    "info",
		LogFormat:   "console",
		BasicAuth:   nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	switch strings.ToLower(c.WeekStart) {
	case "sunday", "monday":
		c.WeekStart = strings.ToLower(c.WeekStart)
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = def.WeekStart
	}
	if c.DefaultView == "" {
		c.DefaultView = def.DefaultView
	}
	if c.HourHeight <= 0 {
		c.HourHeight = def.HourHeight
	}
	if c.MinExtent <= 0 {
		c.MinExtent = def.MinExtent
	}
	if c.Seed == "" {
		c.Seed = def.Seed
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat != "json" {
		c.LogFormat = def.LogFormat
	}
}

// Weekday returns WeekStart as a time.Weekday.
func (c *Config) Weekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// Mapper returns the timeline mapper configured by HourHeight/MinExtent.
func (c *Config) Mapper() calendar.Mapper {
	return calendar.Mapper{HourHeight: c.HourHeight, MinExtent: c.MinExtent}
}

// ApplyEnv overrides fields from WEBCAL_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("WEBCAL_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := getenv("WEBCAL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("WEBCAL_SEED"); v != "" {
		c.Seed = v
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
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

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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

	tmp, err := os.CreateTemp(dir, ".webcal-config-*.tmp")
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

func (c *Config) Save(path string) error {
	return Save(path, c)
}
