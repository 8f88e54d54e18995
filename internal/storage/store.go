package storage

import (
	"context"

	"github.com/htechno/wiprober/internal/survey"
)

// Store provides an interface for persisting survey captures so that an
// export can be repeated without the capture file.
// All operations that write to the database should be considered atomic.
type Store interface {
	// SaveCapture stores a whole capture and returns its unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - name: Human readable capture name
	//   - c: Capture to store, including scan points, sessions and notes
	//
	// Returns:
	//   - captureID: Unique identifier for the stored capture
	//   - error: If storage fails or context is cancelled
	SaveCapture(ctx context.Context, name string, c *survey.Capture) (captureID int64, err error)

	// LoadCapture rebuilds a stored capture. Every sequence is returned in
	// the order it was saved in.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - id: Unique capture identifier
	//
	// Returns:
	//   - capture: The stored capture
	//   - error: If retrieval fails, the capture does not exist or context is cancelled
	LoadCapture(ctx context.Context, id int64) (capture *survey.Capture, err error)

	// Captures returns all stored captures ordered by identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//
	// Returns:
	//   - captures: Summary of every stored capture
	//   - error: If retrieval fails or context is cancelled
	Captures(ctx context.Context) (captures []CaptureInfo, err error)

	// Close releases all database connections and resources.
	// After Close is called, the store instance cannot be reused.
	// It is safe to call Close multiple times.
	Close() error
}
