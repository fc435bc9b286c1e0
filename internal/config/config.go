// Package config holds the scrollcal configuration: YAML load/save with
// first-run default creation, defaults for partially filled files, and
// validation of the values the renderer depends on.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	// Displays run on minimal images without a zoneinfo database.
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"scrollcal/internal/text"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the preview server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// FontConfig selects a font file and size for one text role. An empty
// Path uses the built-in Go font of the given weight, which has no CJK
// glyphs: weekday names, "翌" and the no-events line then render as boxes.
// Point Path at a Japanese font such as M+ 1m
// (e.g. /usr/share/fonts/truetype/mplus/mplus-1m-bold.ttf) for real output.
type FontConfig struct {
	Path   string  `yaml:"path,omitempty" json:"path,omitempty"`
	Size   float64 `yaml:"size" json:"size"`
	Weight string  `yaml:"weight" json:"weight"`
}

func (f FontConfig) Font() (text.Font, error) {
	w, err := text.ParseWeight(f.Weight)
	if err != nil {
		return text.Font{}, err
	}
	return text.Font{Path: f.Path, Size: f.Size, Weight: w}, nil
}

// Fonts has one entry per text role of the layout.
type Fonts struct {
	DayHeader FontConfig `yaml:"day_header" json:"day_header"`
	Time      FontConfig `yaml:"time" json:"time"`
	EndTime   FontConfig `yaml:"end_time" json:"end_time"`
	Event     FontConfig `yaml:"event" json:"event"`
	Info      FontConfig `yaml:"info" json:"info"`
}

// Config is the top-level application configuration.
type Config struct {
	// FeedURL is the iCal endpoint, or a local .ics path.
	FeedURL string `yaml:"feed_url" json:"feed_url"`

	// Timezone is the IANA timezone used for display (e.g. "Asia/Tokyo").
	Timezone string `yaml:"timezone" json:"timezone"`

	// HorizonDays is the number of days from today that are shown.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// DayCutoffHour keeps yesterday on screen until this local hour.
	DayCutoffHour int `yaml:"day_cutoff_hour" json:"day_cutoff_hour"`

	// MaxParseErrors is how many broken VEVENTs are tolerated.
	MaxParseErrors int `yaml:"max_parse_errors" json:"max_parse_errors"`

	// CacheDir stores fetched feed bodies and their HTTP cache headers.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// FetchTimeoutSeconds bounds one feed request.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds" json:"fetch_timeout_seconds"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// BranchName is printed in the footer next to the render time.
	BranchName string `yaml:"branch_name" json:"branch_name"`

	// Template, Header and Output are image paths. Flags override them.
	Template string `yaml:"template" json:"template"`
	Header   string `yaml:"header" json:"header"`
	Output   string `yaml:"output" json:"output"`

	// HeaderMargin is the gap between a day header and its first event.
	HeaderMargin float64 `yaml:"header_margin" json:"header_margin"`

	Fonts Fonts `yaml:"fonts" json:"fonts"`

	// RefreshCron is a standard 5-field cron schedule used in daemon mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Listen is the preview server address in daemon mode. Empty disables it.
	Listen string `yaml:"listen" json:"listen"`

	// BasicAuth, if non-nil, protects every preview endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

func defaultFonts() Fonts {
	return Fonts{
		DayHeader: FontConfig{Size: 21.6, Weight: "bold"},
		Time:      FontConfig{Size: 16.2, Weight: "bold"},
		EndTime:   FontConfig{Size: 10.8, Weight: "regular"},
		Event:     FontConfig{Size: 16.2, Weight: "medium"},
		Info:      FontConfig{Size: 10.8, Weight: "regular"},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:            "Asia/Tokyo",
		HorizonDays:         7,
		DayCutoffHour:       3,
		MaxParseErrors:      10,
		CacheDir:            "./var/ics-cache",
		FetchTimeoutSeconds: 15,
		LogLevel:            "info",
		BranchName:          "DEVEL",
		Template:            "template.png",
		Header:              "header.png",
		Output:              "out.png",
		HeaderMargin:        16,
		Fonts:               defaultFonts(),
		RefreshCron:         "*/15 * * * *",
	}
}

func normalizeFont(f *FontConfig, def FontConfig) {
	if f.Size <= 0 {
		f.Size = def.Size
	}
	if f.Weight == "" {
		f.Weight = def.Weight
	}
}

// Normalize fills zero values with defaults so partially filled files
// still behave.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = def.HorizonDays
	}
	if c.DayCutoffHour < 0 || c.DayCutoffHour > 23 {
		c.DayCutoffHour = def.DayCutoffHour
	}
	if c.MaxParseErrors < 0 {
		c.MaxParseErrors = def.MaxParseErrors
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = def.FetchTimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.BranchName == "" {
		c.BranchName = def.BranchName
	}
	if c.Template == "" {
		c.Template = def.Template
	}
	if c.Header == "" {
		c.Header = def.Header
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.HeaderMargin < 0 {
		c.HeaderMargin = def.HeaderMargin
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	normalizeFont(&c.Fonts.DayHeader, def.Fonts.DayHeader)
	normalizeFont(&c.Fonts.Time, def.Fonts.Time)
	normalizeFont(&c.Fonts.EndTime, def.Fonts.EndTime)
	normalizeFont(&c.Fonts.Event, def.Fonts.Event)
	normalizeFont(&c.Fonts.Info, def.Fonts.Info)
}

// Validate checks the values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("config: refresh %q: %w", c.RefreshCron, err)
	}
	for name, f := range map[string]FontConfig{
		"day_header": c.Fonts.DayHeader,
		"time":       c.Fonts.Time,
		"end_time":   c.Fonts.EndTime,
		"event":      c.Fonts.Event,
		"info":       c.Fonts.Info,
	} {
		if _, err := f.Font(); err != nil {
			return fmt.Errorf("config: fonts.%s: %w", name, err)
		}
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		return errors.New("config: basic_auth.username is empty")
	}
	return nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there with 0600
// permissions and returned. Otherwise the file is read over the defaults,
// normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read: %w", err)
	}

	// Keys missing from the file keep their defaults.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg atomically (temp file + rename) with 0600 permissions,
// creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: config is nil")
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

	tmp, err := os.CreateTemp(dir, ".scrollcal-config-*.tmp")
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
