package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi      float64 = 72
	fontSize float64 = 12
	padding  int     = 4
)

var captionBackground = color.RGBA{A: 0xa0}

type Annotator struct {
	context *freetype.Context
	font    *truetype.Font
}

func NewAnnotator() (*Annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(fontSize)
	context.SetSrc(image.White)
	context.SetHinting(font.HintingFull)

	return &Annotator{context: context, font: parsedFont}, nil
}

// Caption draws text on a translucent strip along the bottom edge.
func (a *Annotator) Caption(img *image.RGBA, text string) error {
	if text == "" {
		return nil
	}

	lineHeight := a.context.PointToFixed(fontSize).Ceil()
	bounds := img.Bounds()
	strip := image.Rect(bounds.Min.X, bounds.Max.Y-lineHeight-2*padding, bounds.Max.X, bounds.Max.Y)
	draw.Draw(img, strip, image.NewUniform(captionBackground), image.Point{}, draw.Over)

	a.context.SetClip(bounds)
	a.context.SetDst(img)

	pt := freetype.Pt(strip.Min.X+padding, strip.Max.Y-padding-descent(a.font))
	if _, err := a.context.DrawString(text, pt); err != nil {
		return fmt.Errorf("drawing caption: %w", err)
	}

	return nil
}

func descent(f *truetype.Font) int {
	face := truetype.NewFace(f, &truetype.Options{Size: fontSize, DPI: dpi})
	defer face.Close()
	return face.Metrics().Descent.Ceil()
}
