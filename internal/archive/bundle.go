package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/htechno/wiprober/internal/esx"
	"github.com/htechno/wiprober/internal/report"
)

// ImageResolver opens the source of an image given the file name recorded in
// the capture.
type ImageResolver func(source string) (io.ReadCloser, error)

// DirResolver resolves image sources relative to dir.
func DirResolver(dir string) ImageResolver {
	return func(source string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, filepath.Base(source)))
	}
}

// WriteBundle writes every document, track and image of bundle. An image
// whose source cannot be resolved fails the whole write.
func WriteBundle(w *Writer, bundle *report.Bundle, resolve ImageResolver) error {
	for _, doc := range bundle.Documents() {
		if err := w.WriteJSON(doc.Name, doc.Value); err != nil {
			return err
		}
	}

	for _, id := range bundle.TrackIDs() {
		if err := w.WriteFile(esx.TrackFile(id), bundle.Tracks[id]); err != nil {
			return err
		}
	}

	for _, id := range bundle.ImageIDs() {
		if err := writeImage(w, id, bundle.ImageSources[id], resolve); err != nil {
			return err
		}
	}

	return nil
}

func writeImage(w *Writer, id, source string, resolve ImageResolver) (err error) {
	r, err := resolve(source)
	if err != nil {
		return fmt.Errorf("resolving image %s: %w", source, err)
	}
	defer closeWithError(r, &err)

	return w.Copy(esx.ImageFile(id), r)
}
