package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/htechno/wiprober/internal/thumbnail"
)

const (
	defaultLogLevel = "info"
	defaultDatabase = "captures.sqlite"
)

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Input    InputConfig   `yaml:"input"`
	Storage  StorageConfig `yaml:"storage"`
	Report   ReportConfig  `yaml:"report"`
	Output   OutputConfig  `yaml:"output"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level parses LogLevel, e.g. "debug" or "warn".
func (s Settings) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': %w", s.LogLevel, err)
	}
	return level, nil
}

// InputConfig selects where the capture comes from: either a capture file or
// a capture previously stored in a database.
type InputConfig struct {
	CaptureFile    string `yaml:"captureFile"`
	Database       string `yaml:"database"`
	CaptureID      int64  `yaml:"captureID"`
	MediaDirectory string `yaml:"mediaDirectory"` // Floor plan and photo files, defaults to the capture file directory
}

// StorageConfig represents storage settings
type StorageConfig struct {
	Database string `yaml:"database"`
	Persist  bool   `yaml:"persist"` // Store the loaded capture file for later exports
}

// ReportConfig represents report building settings
type ReportConfig struct {
	MetersPerUnit *float64        `yaml:"metersPerUnit"` // Overrides the capture calibration
	TimeZone      string          `yaml:"timeZone"`
	Thumbnail     ThumbnailConfig `yaml:"thumbnail"`
}

// Location loads TimeZone, empty means local time.
func (c ReportConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone '%s': %w", c.TimeZone, err)
	}
	return loc, nil
}

// ThumbnailConfig represents project thumbnail settings
type ThumbnailConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	MinSignal float64 `yaml:"minSignal"` // dBm drawn blue, both zero selects the default range
	MaxSignal float64 `yaml:"maxSignal"` // dBm drawn red
}

// SignalBounds returns the configured color range, false when the default
// range applies.
func (c ThumbnailConfig) SignalBounds() (thumbnail.SignalBounds, bool) {
	if c.MinSignal == 0 && c.MaxSignal == 0 {
		return thumbnail.SignalBounds{}, false
	}
	return thumbnail.SignalBounds{Min: c.MinSignal, Max: c.MaxSignal}, true
}

// OutputConfig represents archive output settings
type OutputConfig struct {
	File            string `yaml:"file"`
	AssetsDirectory string `yaml:"assetsDirectory"` // Static project documents copied into the archive as they are
}

// LoadConfig reads, defaults and validates the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	p, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(p, &config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.setDefaults(filepath.Dir(path))
	if err = config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults fills zero values. Relative paths are resolved against dir,
// the directory of the configuration file.
func (c *Config) setDefaults(dir string) {
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaultLogLevel
	}
	if c.Storage.Database == "" {
		c.Storage.Database = defaultDatabase
	}
	if c.Report.Thumbnail.Width == 0 && c.Report.Thumbnail.Height == 0 {
		c.Report.Thumbnail.Width = thumbnail.DefaultWidth
		c.Report.Thumbnail.Height = thumbnail.DefaultHeight
	}
	for _, p := range []*string{
		&c.Input.CaptureFile,
		&c.Input.Database,
		&c.Input.MediaDirectory,
		&c.Storage.Database,
		&c.Output.File,
		&c.Output.AssetsDirectory,
	} {
		*p = resolvePath(dir, *p)
	}

	switch {
	case c.Input.MediaDirectory != "":
	case c.Input.CaptureFile != "":
		c.Input.MediaDirectory = filepath.Dir(c.Input.CaptureFile)
	case c.Input.Database != "":
		c.Input.MediaDirectory = filepath.Dir(c.Input.Database)
	}
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks the configuration is complete and consistent
func (c *Config) Validate() error {
	if _, err := c.Settings.Level(); err != nil {
		return err
	}

	switch {
	case c.Input.CaptureFile != "" && c.Input.Database != "":
		return errors.New("input: captureFile and database are mutually exclusive")
	case c.Input.CaptureFile == "" && c.Input.Database == "":
		return errors.New("input: either captureFile or database is required")
	case c.Input.Database != "" && c.Input.CaptureID <= 0:
		return errors.New("input: captureID is required when reading from a database")
	}

	if c.Report.MetersPerUnit != nil && *c.Report.MetersPerUnit <= 0 {
		return fmt.Errorf("report: metersPerUnit must be positive: %f", *c.Report.MetersPerUnit)
	}
	if _, err := c.Report.Location(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if c.Report.Thumbnail.Width < 0 || c.Report.Thumbnail.Height < 0 {
		return fmt.Errorf("report: invalid thumbnail size %dx%d", c.Report.Thumbnail.Width, c.Report.Thumbnail.Height)
	}
	if bounds, ok := c.Report.Thumbnail.SignalBounds(); ok && bounds.Max <= bounds.Min {
		return fmt.Errorf("report: thumbnail maxSignal %.1f must be above minSignal %.1f", bounds.Max, bounds.Min)
	}

	if c.Output.File == "" {
		return errors.New("output: file is required")
	}
	if c.Output.AssetsDirectory == "" {
		return errors.New("output: assetsDirectory is required")
	}

	return nil
}
