package thumbnail

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeConfig reads the dimensions and the format name of an encoded image
// without decoding the pixels.
func DecodeConfig(r io.Reader) (width, height int, format string, err error) {
	config, format, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, "", fmt.Errorf("decoding image config: %w", err)
	}
	return config.Width, config.Height, format, nil
}

// DecodeConfigFile is DecodeConfig reading from a file.
func DecodeConfigFile(path string) (width, height int, format string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	return DecodeConfig(f)
}

// LoadFile decodes an image file in any of the registered formats.
func LoadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %q: %w", path, err)
	}
	return img, nil
}
