package app

import (
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/htechno/wiprober/internal/archive"
	"github.com/htechno/wiprober/internal/esx"
	"github.com/htechno/wiprober/internal/storage"
	"github.com/htechno/wiprober/internal/survey"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, width, height))))
}

func makeCapture() *survey.Capture {
	start := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	return &survey.Capture{
		Name: "office",
		Map:  &survey.MapInfo{FileName: "plan.png"},
		ScanPoints: []survey.ScanPoint{{
			Timestamp: start,
			X:         10,
			Y:         20,
			Networks: []survey.Network{
				{SSID: "lab", BSSID: "aa:bb:cc:dd:ee:01", Level: -50, Frequency: 2412, Security: "WPA2"},
				{SSID: "lab", BSSID: "aa:bb:cc:dd:ee:02", Level: -70, Frequency: 5180, Security: "WPA2"},
			},
		}},
		Sessions: []survey.ContinuousSession{{
			ID:        "walk",
			Start:     start.Add(time.Minute),
			End:       start.Add(2 * time.Minute),
			Waypoints: []survey.Waypoint{{Time: 0, X: 0, Y: 0}, {Time: 60_000, X: 90, Y: 40}},
			Scans: []survey.ScanEvent{{CompletedAt: 1200, Duration: 400, Networks: []survey.Network{
				{SSID: "lab", BSSID: "aa:bb:cc:dd:ee:01", Level: -55, Frequency: 2412, Security: "WPA2"},
			}}},
		}},
		Notes: []survey.Note{{Text: "door", X: 5, Y: 5, Photo: &survey.Photo{FileName: "door.png"}}},
	}
}

// writeAssets creates dir/assets holding the static documents every archive needs.
func writeAssets(t *testing.T, dir string) string {
	t.Helper()
	assets := filepath.Join(dir, "assets")
	require.NoError(t, os.MkdirAll(assets, 0o755))
	for _, name := range esx.RequiredAssets {
		require.NoError(t, os.WriteFile(filepath.Join(assets, name), []byte(`{}`), 0o644))
	}
	return assets
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "plan.png"), 100, 50)
	writePNG(t, filepath.Join(dir, "door.png"), 8, 6)

	assets := writeAssets(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(assets, "requirements.json"), []byte(`{"requirements":[]}`), 0o644))

	captureFile := filepath.Join(dir, "capture.yaml")
	require.NoError(t, survey.WriteCaptureFile(captureFile, makeCapture()))

	config := &Config{
		Settings: Settings{LogLevel: "info"},
		Input:    InputConfig{CaptureFile: captureFile, MediaDirectory: dir},
		Storage:  StorageConfig{Database: filepath.Join(dir, "captures.sqlite"), Persist: true},
		Report:   ReportConfig{TimeZone: "UTC", Thumbnail: ThumbnailConfig{Enabled: true, Width: 64, Height: 32}},
		Output:   OutputConfig{File: filepath.Join(dir, "office.esx"), AssetsDirectory: assets},
	}
	require.NoError(t, config.Validate())
	require.NoError(t, Run(context.Background(), config, testLogger()))

	r, err := archive.OpenReader(config.Output.File)
	require.NoError(t, err)
	defer r.Close()

	names := r.Names()
	assert.Contains(t, names, esx.ProjectFile)
	assert.Contains(t, names, "requirements.json")
	assert.Contains(t, names, esx.ProjectConfigurationFile)
	assert.Contains(t, names, esx.WifiAdapterInformationsFile)

	project, err := r.ReadFile(esx.ProjectFile)
	require.NoError(t, err)
	assert.NotEmpty(t, gjson.GetBytes(project, "project.thumbnail.data").String())

	images, err := r.ReadFile(esx.ImagesFile)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.GetBytes(images, "images.#").Int())
	assert.Equal(t, 100.0, gjson.GetBytes(images, "images.0.resolutionWidth").Float())
	assert.Equal(t, 6.0, gjson.GetBytes(images, "images.1.resolutionHeight").Float())

	lookups, err := r.ReadFile(esx.SurveyLookupsFile)
	require.NoError(t, err)
	surveyIDs := gjson.GetBytes(lookups, "surveyLookups.#.surveyId").Array()
	require.Len(t, surveyIDs, 2)

	for _, id := range surveyIDs {
		doc, err := r.ReadFile(esx.SurveyFile(id.String()))
		require.NoError(t, err)

		binaryFileID := gjson.GetBytes(doc, "surveys.0.wifiTracks.0.binaryFileId").String()
		scans, err := r.ReadTrack(binaryFileID)
		require.NoError(t, err)
		assert.NotEmpty(t, scans)
	}

	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	captures, err := store.Captures(context.Background())
	require.NoError(t, err)
	require.Len(t, captures, 1)
	assert.Equal(t, "office", captures[0].Name)
}

func TestRun_FromDatabase(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "plan.png"), 40, 40)
	writePNG(t, filepath.Join(dir, "door.png"), 8, 6)

	database := filepath.Join(dir, "captures.sqlite")
	store := storage.NewSqliteStore(database)
	id, err := store.SaveCapture(context.Background(), "office", makeCapture())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	config := &Config{
		Settings: Settings{LogLevel: "info"},
		Input:    InputConfig{Database: database, CaptureID: id, MediaDirectory: dir},
		Output:   OutputConfig{File: filepath.Join(dir, "office.esx"), AssetsDirectory: writeAssets(t, dir)},
	}
	require.NoError(t, Run(context.Background(), config, testLogger()))

	_, err = os.Stat(config.Output.File)
	assert.NoError(t, err)
}

func TestRun_MissingImage(t *testing.T) {
	dir := t.TempDir()

	capture := makeCapture()
	capture.Map.Width, capture.Map.Height = 100, 50
	capture.Notes = nil

	captureFile := filepath.Join(dir, "capture.yaml")
	require.NoError(t, survey.WriteCaptureFile(captureFile, capture))

	config := &Config{
		Settings: Settings{LogLevel: "info"},
		Input:    InputConfig{CaptureFile: captureFile, MediaDirectory: dir},
		Output:   OutputConfig{File: filepath.Join(dir, "office.esx"), AssetsDirectory: writeAssets(t, dir)},
	}
	err := Run(context.Background(), config, testLogger())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingAsset)

	_, err = os.Stat(config.Output.File)
	assert.True(t, os.IsNotExist(err), "partial archive is removed")
}

func TestRun_MissingAssets(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "plan.png"), 100, 50)
	writePNG(t, filepath.Join(dir, "door.png"), 8, 6)

	captureFile := filepath.Join(dir, "capture.yaml")
	require.NoError(t, survey.WriteCaptureFile(captureFile, makeCapture()))

	for _, missing := range esx.RequiredAssets {
		t.Run(missing, func(t *testing.T) {
			assets := writeAssets(t, t.TempDir())
			require.NoError(t, os.Remove(filepath.Join(assets, missing)))

			config := &Config{
				Settings: Settings{LogLevel: "info"},
				Input:    InputConfig{CaptureFile: captureFile, MediaDirectory: dir},
				Output:   OutputConfig{File: filepath.Join(t.TempDir(), "office.esx"), AssetsDirectory: assets},
			}

			err := Run(context.Background(), config, testLogger())
			require.ErrorIs(t, err, ErrMissingAsset)
			assert.Contains(t, err.Error(), missing)

			_, err = os.Stat(config.Output.File)
			assert.True(t, os.IsNotExist(err), "no archive is written")
		})
	}
}
