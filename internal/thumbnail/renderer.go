package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"

	"golang.org/x/image/draw"

	"github.com/htechno/wiprober/internal/survey"
)

const (
	DefaultWidth  = 320
	DefaultHeight = 240

	markerRadius = 3
)

// Point is a marker drawn on the thumbnail, in floor plan coordinates.
type Point struct {
	X     float64
	Y     float64
	Level *float64 // Strongest signal seen at the point, nil for none
}

// PointsFromCapture places a marker at every stationary scan point and at
// every waypoint of the continuous sessions. A waypoint takes the level of
// the scan event completed closest to it in time.
func PointsFromCapture(c *survey.Capture) []Point {
	points := make([]Point, 0, len(c.ScanPoints))
	for _, sp := range c.ScanPoints {
		points = append(points, Point{X: sp.X, Y: sp.Y, Level: strongest(sp.Networks)})
	}
	for _, s := range c.Sessions {
		for _, wp := range s.Waypoints {
			points = append(points, Point{X: wp.X, Y: wp.Y, Level: nearestLevel(s.Scans, wp.Time)})
		}
	}
	return points
}

func strongest(networks []survey.Network) *float64 {
	var level *float64
	for _, n := range networks {
		l := float64(n.Level)
		if level == nil || l > *level {
			level = &l
		}
	}
	return level
}

func nearestLevel(scans []survey.ScanEvent, at int64) *float64 {
	nearest := -1
	var distance int64
	for i, scan := range scans {
		d := scan.CompletedAt - at
		if d < 0 {
			d = -d
		}
		if nearest < 0 || d < distance {
			nearest, distance = i, d
		}
	}
	if nearest < 0 {
		return nil
	}
	return strongest(scans[nearest].Networks)
}

// Renderer draws a floor plan preview with the survey markers on top.
type Renderer struct {
	width     int
	height    int
	colors    *ColorMapper
	annotator *Annotator
	logger    *slog.Logger
}

func WithSize(width, height int) func(r *Renderer) {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width = width
			r.height = height
		}
	}
}

func WithSignalBounds(bounds SignalBounds) func(r *Renderer) {
	return func(r *Renderer) {
		r.colors = NewColorMapper(defaultColorMapSize, bounds)
	}
}

func WithLogger(logger *slog.Logger) func(r *Renderer) {
	return func(r *Renderer) {
		r.logger = logger.With(slog.String("component", "thumbnail"))
	}
}

func NewRenderer(options ...func(r *Renderer)) (*Renderer, error) {
	annotator, err := NewAnnotator()
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}

	r := &Renderer{
		width:     DefaultWidth,
		height:    DefaultHeight,
		colors:    NewColorMapper(defaultColorMapSize, DefaultSignalBounds),
		annotator: annotator,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}
	for _, option := range options {
		option(r)
	}

	return r, nil
}

// Render scales the floor plan into the thumbnail frame keeping its aspect
// ratio, draws the markers and the caption and returns the PNG encoding.
func (r *Renderer) Render(floorPlan image.Image, points []Point, caption string) ([]byte, error) {
	src := floorPlan.Bounds()
	if src.Empty() {
		return nil, fmt.Errorf("rendering thumbnail: empty floor plan")
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	scale := min(float64(r.width)/float64(src.Dx()), float64(r.height)/float64(src.Dy()))
	w := int(float64(src.Dx()) * scale)
	h := int(float64(src.Dy()) * scale)
	offset := image.Pt((r.width-w)/2, (r.height-h)/2)
	target := image.Rectangle{Min: offset, Max: offset.Add(image.Pt(w, h))}

	draw.ApproxBiLinear.Scale(dst, target, floorPlan, src, draw.Over, nil)

	drawn := 0
	for _, p := range points {
		x := offset.X + int((p.X-float64(src.Min.X))*scale)
		y := offset.Y + int((p.Y-float64(src.Min.Y))*scale)
		if !image.Pt(x, y).In(target) {
			continue
		}
		fillCircle(dst, x, y, markerRadius, r.colors.GetColor(p.Level))
		drawn++
	}

	if err := r.annotator.Caption(dst, caption); err != nil {
		return nil, fmt.Errorf("rendering thumbnail: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}

	r.logger.Debug("thumbnail rendered",
		slog.Int("width", r.width),
		slog.Int("height", r.height),
		slog.Int("markers", drawn),
		slog.Int("skipped", len(points)-drawn),
	)

	return buf.Bytes(), nil
}

func fillCircle(img *image.RGBA, cx, cy, radius int, c color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}
