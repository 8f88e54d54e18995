package archive

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/htechno/wiprober/internal/esx"
	"github.com/htechno/wiprober/internal/track"
)

// ErrNotFound is returned when a requested entry is missing
var ErrNotFound = errors.New("archive entry not found")

// Reader gives access to the entries of a container file.
type Reader struct {
	rc    *zip.ReadCloser
	files map[string]*zip.File
}

// OpenReader opens the container at path.
func OpenReader(path string) (*Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	files := make(map[string]*zip.File, len(rc.File))
	for _, f := range rc.File {
		files[f.Name] = f
	}

	return &Reader{rc: rc, files: files}, nil
}

// Names returns the entry names in container order.
func (r *Reader) Names() []string {
	names := make([]string, 0, len(r.rc.File))
	for _, f := range r.rc.File {
		names = append(names, f.Name)
	}
	return names
}

// Stored reports whether the entry name was written without compression.
func (r *Reader) Stored(name string) (bool, error) {
	f, ok := r.files[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f.Method == zip.Store, nil
}

// ReadFile returns the content of the entry name.
func (r *Reader) ReadFile(name string) (p []byte, err error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening entry %s: %w", name, err)
	}
	defer closeWithError(rc, &err)

	if p, err = io.ReadAll(rc); err != nil {
		return nil, fmt.Errorf("reading entry %s: %w", name, err)
	}
	return p, nil
}

// ReadTrack decodes the binary track with the given binary file id.
func (r *Reader) ReadTrack(binaryFileID string) ([]track.Scan, error) {
	p, err := r.ReadFile(esx.TrackFile(binaryFileID))
	if err != nil {
		return nil, err
	}

	scans, err := track.Decode(p)
	if err != nil {
		return nil, fmt.Errorf("decoding track %s: %w", binaryFileID, err)
	}
	return scans, nil
}

func (r *Reader) Close() error {
	return r.rc.Close()
}
