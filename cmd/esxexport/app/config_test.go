package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htechno/wiprober/internal/thumbnail"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
settings:
  logLevel: debug
input:
  captureFile: captures/office.yaml
storage:
  persist: true
report:
  metersPerUnit: 0.05
  timeZone: UTC
  thumbnail:
    enabled: true
    minSignal: -85
    maxSignal: -40
output:
  file: out/office.esx
  assetsDirectory: /opt/assets
`)
	dir := filepath.Dir(path)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	level, err := config.Settings.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	assert.Equal(t, filepath.Join(dir, "captures", "office.yaml"), config.Input.CaptureFile)
	assert.Equal(t, filepath.Join(dir, "captures"), config.Input.MediaDirectory)
	assert.Equal(t, filepath.Join(dir, defaultDatabase), config.Storage.Database)
	assert.True(t, config.Storage.Persist)
	assert.Equal(t, filepath.Join(dir, "out", "office.esx"), config.Output.File)
	assert.Equal(t, "/opt/assets", config.Output.AssetsDirectory)

	require.NotNil(t, config.Report.MetersPerUnit)
	assert.Equal(t, 0.05, *config.Report.MetersPerUnit)
	assert.Equal(t, 320, config.Report.Thumbnail.Width)
	assert.Equal(t, 240, config.Report.Thumbnail.Height)

	bounds, ok := config.Report.Thumbnail.SignalBounds()
	assert.True(t, ok)
	assert.Equal(t, thumbnail.SignalBounds{Min: -85, Max: -40}, bounds)

	loc, err := config.Report.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
input:
  database: captures.sqlite
  captureID: 3
output:
  file: office.esx
  assetsDirectory: assets
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, defaultLogLevel, config.Settings.LogLevel)
	assert.Equal(t, filepath.Dir(path), config.Input.MediaDirectory)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "assets"), config.Output.AssetsDirectory)

	_, ok := config.Report.Thumbnail.SignalBounds()
	assert.False(t, ok)

	loc, err := config.Report.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	negative := -1.0

	valid := func() *Config {
		return &Config{
			Settings: Settings{LogLevel: "info"},
			Input:    InputConfig{CaptureFile: "capture.yaml"},
			Output:   OutputConfig{File: "out.esx", AssetsDirectory: "assets"},
		}
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad log level", func(c *Config) { c.Settings.LogLevel = "loud" }, true},
		{"no input", func(c *Config) { c.Input.CaptureFile = "" }, true},
		{"both inputs", func(c *Config) { c.Input.Database = "db.sqlite"; c.Input.CaptureID = 1 }, true},
		{"database without id", func(c *Config) { c.Input = InputConfig{Database: "db.sqlite"} }, true},
		{"database with id", func(c *Config) { c.Input = InputConfig{Database: "db.sqlite", CaptureID: 1} }, false},
		{"negative scale", func(c *Config) { c.Report.MetersPerUnit = &negative }, true},
		{"bad time zone", func(c *Config) { c.Report.TimeZone = "Mars/Olympus" }, true},
		{"negative thumbnail", func(c *Config) { c.Report.Thumbnail.Width = -1 }, true},
		{"no output", func(c *Config) { c.Output.File = "" }, true},
		{"no assets", func(c *Config) { c.Output.AssetsDirectory = "" }, true},
		{"signal bounds", func(c *Config) { c.Report.Thumbnail.MinSignal, c.Report.Thumbnail.MaxSignal = -80, -40 }, false},
		{"reversed signal bounds", func(c *Config) { c.Report.Thumbnail.MinSignal, c.Report.Thumbnail.MaxSignal = -40, -80 }, true},
		{"only max signal", func(c *Config) { c.Report.Thumbnail.MaxSignal = -50 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)

			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
