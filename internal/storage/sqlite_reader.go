package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/htechno/wiprober/internal/survey"
)

// ScanPointReader provides an iterator-based interface for reading the scan
// points of a stored capture together with their observations.
type ScanPointReader interface {
	// Next advances the iterator and returns true if there is another scan
	// point to read, false when the iteration is complete or if an error occurred.
	Next(context.Context) bool

	// Current returns the current scan point in the iteration.
	// If called after Next() returns false, the behavior is undefined.
	Current() *survey.ScanPoint

	// Error returns any error that occurred during iteration.
	// If Next() returns false, Error() should be checked to distinguish between
	// end of data and an error condition.
	Error() error

	// Close releases any resources associated with the reader.
	// After Close is called, the reader should not be used.
	Close() error
}

// SqliteScanPointReader groups the rows of a scan point and observation join
// into scan points. Rows arrive ordered by scan point, so a point is complete
// as soon as a row of the next point shows up.
type SqliteScanPointReader struct {
	rows *sql.Rows

	current *survey.ScanPoint
	next    *scanPointData // First row of the following scan point
	err     error
}

var _ ScanPointReader = (*SqliteScanPointReader)(nil)

func newSqliteScanPointReader(ctx context.Context, db *sql.DB, captureID int64) (*SqliteScanPointReader, error) {
	rows, err := db.QueryContext(ctx, selectScanPointsSQL, captureID)
	if err != nil {
		return nil, fmt.Errorf("querying scan points: %w", err)
	}
	return &SqliteScanPointReader{rows: rows}, nil
}

func (sr *SqliteScanPointReader) scanRow() (*scanPointData, error) {
	var data scanPointData
	err := sr.rows.Scan(
		&data.ID,
		&data.Timestamp,
		&data.X,
		&data.Y,
		&data.SSID,
		&data.BSSID,
		&data.Level,
		&data.Frequency,
		&data.Security,
		&data.Technologies,
		&data.InformationElements,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning scan point: %w", err)
	}
	return &data, nil
}

func startScanPoint(data *scanPointData) *survey.ScanPoint {
	point := &survey.ScanPoint{
		Timestamp: data.Timestamp,
		X:         data.X,
		Y:         data.Y,
	}
	if data.valid() {
		point.Networks = append(point.Networks, data.network())
	}
	return point
}

func (sr *SqliteScanPointReader) Next(ctx context.Context) bool {
	if sr.err != nil || sr.rows == nil {
		return false
	}

	var pointID int64
	sr.current = nil
	if sr.next != nil {
		pointID = sr.next.ID
		sr.current = startScanPoint(sr.next)
		sr.next = nil
	}

	for {
		select {
		case <-ctx.Done():
			sr.err = ctx.Err()
			return false
		default:
		}

		if !sr.rows.Next() {
			if err := sr.rows.Err(); err != nil {
				sr.err = fmt.Errorf("iterating scan points: %w", err)
				return false
			}
			return sr.current != nil
		}

		data, err := sr.scanRow()
		if err != nil {
			sr.err = err
			return false
		}

		switch {
		case sr.current == nil:
			pointID = data.ID
			sr.current = startScanPoint(data)

		case data.ID != pointID:
			sr.next = data
			return true

		case data.valid():
			sr.current.Networks = append(sr.current.Networks, data.network())
		}
	}
}

func (sr *SqliteScanPointReader) Current() *survey.ScanPoint {
	return sr.current
}

func (sr *SqliteScanPointReader) Error() error {
	return sr.err
}

func (sr *SqliteScanPointReader) Close() error {
	if sr.rows != nil {
		err := sr.rows.Close()
		sr.current = nil
		sr.next = nil
		sr.rows = nil
		return err
	}
	return nil
}
