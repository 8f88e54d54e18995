package thumbnail

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	hueStart = 236 // Weakest signal, blue
	hueEnd   = 0   // Strongest signal, red

	defaultColorMapSize = 64
)

// NoSignalColor marks scan points that observed no network at all.
var NoSignalColor color.Color = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

// SignalBounds is the signal range, in dBm, spread across the color ramp.
// Levels outside of the range are clamped.
type SignalBounds struct {
	Min float64
	Max float64
}

// DefaultSignalBounds covers the levels a site survey usually sees, from
// barely usable coverage to a radio right next to the scanner.
var DefaultSignalBounds = SignalBounds{Min: -90, Max: -30}

// ColorMapper converts signal levels into colors using a pre-computed ramp.
type ColorMapper struct {
	colorMap      []color.Color
	bounds        SignalBounds
	levelPerIndex float64
}

func NewColorMapper(size int, bounds SignalBounds) *ColorMapper {
	if size < 2 {
		size = defaultColorMapSize
	}
	if bounds.Max <= bounds.Min {
		bounds = DefaultSignalBounds
	}

	cm := &ColorMapper{
		colorMap:      make([]color.Color, size),
		bounds:        bounds,
		levelPerIndex: (bounds.Max - bounds.Min) / float64(size-1),
	}
	for i := range cm.colorMap {
		cm.colorMap[i] = rampColor(float64(i) / float64(size-1))
	}

	return cm
}

// GetColor returns the color of the signal level, nil level means no signal.
func (cm *ColorMapper) GetColor(level *float64) color.Color {
	if level == nil {
		return NoSignalColor
	}

	lvl := math.Max(cm.bounds.Min, math.Min(*level, cm.bounds.Max))
	index := int(math.Round((lvl - cm.bounds.Min) / cm.levelPerIndex))

	return cm.colorMap[min(max(index, 0), len(cm.colorMap)-1)]
}

func rampColor(normalized float64) color.Color {
	hue := hueStart + normalized*(hueEnd-hueStart)
	r, g, b := colorful.Hsv(hue, 1, 0.90).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
