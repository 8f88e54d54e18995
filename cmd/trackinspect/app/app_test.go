package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htechno/wiprober/internal/archive"
	"github.com/htechno/wiprober/internal/esx"
	"github.com/htechno/wiprober/internal/report"
	"github.com/htechno/wiprober/internal/survey"
)

func sequentialIDs() esx.IDGenerator {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func writeTestArchive(t *testing.T) (string, *report.Bundle) {
	t.Helper()

	start := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	builder := report.NewBuilder(report.WithIDGenerator(sequentialIDs()), report.WithLocation(time.UTC))
	bundle, err := builder.Build(report.Input{
		Map: &survey.MapInfo{FileName: "plan.png", Width: 100, Height: 50},
		ScanPoints: []survey.ScanPoint{{
			Timestamp: start,
			X:         10,
			Y:         20,
			Networks: []survey.Network{
				{SSID: "lab", BSSID: "aa:bb:cc:dd:ee:01", Level: -50, Frequency: 2412},
				{SSID: "lab", BSSID: "aa:bb:cc:dd:ee:02", Level: -70, Frequency: 5180},
			},
		}},
		Sessions: []survey.ContinuousSession{{
			ID:    "walk",
			Start: start.Add(time.Minute),
			End:   start.Add(2 * time.Minute),
			Scans: []survey.ScanEvent{
				{CompletedAt: 1200, Duration: 400, Networks: []survey.Network{
					{BSSID: "aa:bb:cc:dd:ee:02", Level: -65, Frequency: 5180},
				}},
				{CompletedAt: 3000, Duration: 500, Networks: []survey.Network{
					{BSSID: "aa:bb:cc:dd:ee:02", Level: -60, Frequency: 5180},
					{BSSID: "aa:bb:cc:dd:ee:03", Level: -40, Frequency: 2437},
				}},
			},
		}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.esx")
	w, err := archive.Create(path)
	require.NoError(t, err)

	resolve := func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("image")), nil
	}
	require.NoError(t, archive.WriteBundle(w, bundle, resolve))
	require.NoError(t, w.Close())

	return path, bundle
}

func TestInspect(t *testing.T) {
	path, bundle := writeTestArchive(t)

	r, err := archive.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	summaries, err := Inspect(context.Background(), r, "")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	stationary := summaries[0]
	assert.Equal(t, bundle.SurveyIDs[0], stationary.SurveyID)
	assert.Equal(t, esx.RouteStopAndGo, stationary.RouteType)
	assert.Equal(t, 1, stationary.Scans)
	assert.Equal(t, 2, stationary.Entries)
	assert.Equal(t, 2, stationary.AccessPoints)
	assert.Equal(t, 0, stationary.Unresolved)
	assert.Equal(t, "aa:bb:cc:dd:ee:01", stationary.StrongestMAC)
	assert.Equal(t, int8(-50), stationary.StrongestSignal)
	assert.Equal(t, int32(1), stationary.FirstTime)

	continuous := summaries[1]
	assert.Equal(t, esx.RouteContinuous, continuous.RouteType)
	assert.Equal(t, 2, continuous.Scans)
	assert.Equal(t, 3, continuous.Entries)
	assert.Equal(t, 2, continuous.AccessPoints)
	assert.Equal(t, "aa:bb:cc:dd:ee:03", continuous.StrongestMAC)
	assert.Equal(t, int32(800), continuous.FirstTime)
	assert.Equal(t, int32(2500), continuous.LastTime)
}

func TestInspect_SingleSurvey(t *testing.T) {
	path, bundle := writeTestArchive(t)

	r, err := archive.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	summaries, err := Inspect(context.Background(), r, bundle.SurveyIDs[1])
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, bundle.SurveyIDs[1], summaries[0].SurveyID)

	_, err = Inspect(context.Background(), r, "missing")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	path, _ := writeTestArchive(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	assert.NoError(t, Run(context.Background(), &Config{ArchivePath: path, Verbose: true}, logger))
	assert.Error(t, Run(context.Background(), &Config{ArchivePath: path + ".missing"}, logger))
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("trackinspect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config, err := parseFlags(fs, []string{"-a", "report.esx", "-s", "abc", "-verbose"})
	require.NoError(t, err)
	assert.Equal(t, &Config{ArchivePath: "report.esx", SurveyID: "abc", Verbose: true}, config)

	fs = flag.NewFlagSet("trackinspect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	_, err = parseFlags(fs, nil)
	assert.Error(t, err)
}
