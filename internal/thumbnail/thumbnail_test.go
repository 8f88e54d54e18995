package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htechno/wiprober/internal/survey"
)

func ptr(f float64) *float64 {
	return &f
}

func TestColorMapper_GetColor(t *testing.T) {
	cm := NewColorMapper(16, DefaultSignalBounds)

	assert.Equal(t, NoSignalColor, cm.GetColor(nil))

	weak := cm.GetColor(ptr(-90)).(color.RGBA)
	strong := cm.GetColor(ptr(-30)).(color.RGBA)
	assert.Greater(t, weak.B, weak.R, "weak signal should be blue")
	assert.Greater(t, strong.R, strong.B, "strong signal should be red")

	assert.Equal(t, weak, cm.GetColor(ptr(-120)), "below range is clamped")
	assert.Equal(t, strong, cm.GetColor(ptr(0)), "above range is clamped")
}

func TestNewColorMapper_InvalidBounds(t *testing.T) {
	cm := NewColorMapper(0, SignalBounds{Min: 10, Max: 10})

	assert.Equal(t, DefaultSignalBounds, cm.bounds)
	assert.Len(t, cm.colorMap, defaultColorMapSize)
}

func TestPointsFromCapture(t *testing.T) {
	c := &survey.Capture{
		ScanPoints: []survey.ScanPoint{
			{X: 1, Y: 2, Networks: []survey.Network{{Level: -70}, {Level: -45}, {Level: -80}}},
			{X: 3, Y: 4},
		},
		Sessions: []survey.ContinuousSession{
			{
				Waypoints: []survey.Waypoint{{Time: 0, X: 5, Y: 6}, {Time: 10_000, X: 7, Y: 8}, {Time: 4_000, X: 9, Y: 9}},
				Scans: []survey.ScanEvent{
					{CompletedAt: 1_000, Networks: []survey.Network{{Level: -75}, {Level: -62}}},
					{CompletedAt: 9_000, Networks: []survey.Network{{Level: -40}}},
					{CompletedAt: 4_500},
				},
			},
			{
				Waypoints: []survey.Waypoint{{X: 1, Y: 1}},
			},
		},
	}

	points := PointsFromCapture(c)
	require.Len(t, points, 6)

	require.NotNil(t, points[0].Level)
	assert.Equal(t, -45.0, *points[0].Level)
	assert.Nil(t, points[1].Level)

	require.NotNil(t, points[2].Level, "waypoint takes the nearest scan")
	assert.Equal(t, -62.0, *points[2].Level)
	require.NotNil(t, points[3].Level)
	assert.Equal(t, -40.0, *points[3].Level)
	assert.Equal(t, 7.0, points[3].X)
	assert.Nil(t, points[4].Level, "nearest scan saw no network")
	assert.Equal(t, Point{X: 1, Y: 1}, points[5], "session without scans")
}

func TestRenderer_WithSignalBounds(t *testing.T) {
	bounds := SignalBounds{Min: -70, Max: -50}
	renderer, err := NewRenderer(WithSignalBounds(bounds))
	require.NoError(t, err)

	assert.Equal(t, bounds, renderer.colors.bounds)
	assert.Equal(t, renderer.colors.GetColor(ptr(-50)), renderer.colors.GetColor(ptr(-30)), "clamped at the configured maximum")
}

func TestRenderer_Render(t *testing.T) {
	renderer, err := NewRenderer(WithSize(100, 50))
	require.NoError(t, err)

	floorPlan := image.NewGray(image.Rect(0, 0, 400, 400))
	points := []Point{
		{X: 200, Y: 200, Level: ptr(-30)},
		{X: 5000, Y: 5000},
	}

	data, err := renderer.Render(floorPlan, points, "office")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 50), img.Bounds())

	// The square plan is scaled to 50x50 and centered horizontally.
	r, g, b, _ := img.At(50, 25).RGBA()
	assert.Greater(t, r, b, "marker at the plan center")
	assert.Greater(t, r, g)

	r, g, b, _ = img.At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "margin stays white")
}

func TestRenderer_EmptyFloorPlan(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	_, err = renderer.Render(image.NewRGBA(image.Rectangle{}), nil, "")
	assert.Error(t, err)
}

func TestDecodeConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.png")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 32))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	width, height, format, err := DecodeConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 64, width)
	assert.Equal(t, 32, height)
	assert.Equal(t, "png", format)

	img, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	_, _, _, err = DecodeConfig(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
