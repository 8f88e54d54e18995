// Package archive writes and reads the project container: a zip file whose
// entries are all stored without compression.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// ErrDuplicateEntry is returned when an entry name is written twice
var ErrDuplicateEntry = errors.New("duplicate archive entry")

// WithLogger sets the logger for the writer
func WithLogger(logger *slog.Logger) func(w *Writer) {
	return func(w *Writer) {
		w.logger = logger.With(slog.String("component", "archive"))
	}
}

// Writer adds entries to a container. It is not safe for concurrent use.
type Writer struct {
	zw     *zip.Writer
	closer io.Closer // Underlying file when created by Create, nil otherwise
	names  map[string]struct{}

	written int64
	logger  *slog.Logger
}

// NewWriter creates a Writer writing to w. Closing the Writer does not close w.
func NewWriter(w io.Writer, options ...func(w *Writer)) *Writer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	aw := Writer{
		zw:     zip.NewWriter(w),
		names:  make(map[string]struct{}),
		logger: logger,
	}

	for _, option := range options {
		option(&aw)
	}

	return &aw
}

// Create creates the file at path and returns a Writer owning it.
func Create(path string, options ...func(w *Writer)) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	w := NewWriter(f, options...)
	w.closer = f
	return w, nil
}

// Entries returns the number of entries written so far.
func (w *Writer) Entries() int {
	return len(w.names)
}

// Written returns the number of payload bytes written so far.
func (w *Writer) Written() int64 {
	return w.written
}

func (w *Writer) create(name string) (io.Writer, error) {
	if _, ok := w.names[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}

	entry, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Store,
	})
	if err != nil {
		return nil, fmt.Errorf("creating entry %s: %w", name, err)
	}

	w.names[name] = struct{}{}
	return entry, nil
}

// WriteFile adds an entry holding p.
func (w *Writer) WriteFile(name string, p []byte) error {
	entry, err := w.create(name)
	if err != nil {
		return err
	}

	n, err := entry.Write(p)
	w.written += int64(n)
	if err != nil {
		return fmt.Errorf("writing entry %s: %w", name, err)
	}

	w.logger.Debug("entry written", slog.String("name", name), slog.Int("size", n))
	return nil
}

// WriteJSON adds an entry holding v encoded as indented JSON.
func (w *Writer) WriteJSON(name string, v any) error {
	p, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding entry %s: %w", name, err)
	}

	return w.WriteFile(name, p)
}

// Copy adds an entry holding everything read from r.
func (w *Writer) Copy(name string, r io.Reader) error {
	entry, err := w.create(name)
	if err != nil {
		return err
	}

	n, err := io.Copy(entry, r)
	w.written += n
	if err != nil {
		return fmt.Errorf("copying entry %s: %w", name, err)
	}

	w.logger.Debug("entry copied", slog.String("name", name), slog.Int64("size", n))
	return nil
}

// CopyFile adds an entry holding the content of the file at path.
func (w *Writer) CopyFile(name, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer closeWithError(f, &err)

	return w.Copy(name, f)
}

// CopyDir adds every regular file found directly in dir, under its base name.
// Subdirectories are skipped.
func (w *Writer) CopyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err = w.CopyFile(e.Name(), filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}

	return nil
}

// Close finishes the container and closes the underlying file if the Writer owns it.
func (w *Writer) Close() error {
	err := w.zw.Close()
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	if err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

func closeWithError(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}
