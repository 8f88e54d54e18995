package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/htechno/wiprober/internal/survey"
)

// ErrCaptureNotFound is returned when a capture id does not exist
var ErrCaptureNotFound = errors.New("capture not found")

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

var _ Store = (*SqliteStore)(nil)

// NewSqliteStore creates a store backed by the Sqlite database at dbPath.
// Connections are opened lazily, the schema is created on first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// captureWriter holds the prepared statements of one SaveCapture transaction.
type captureWriter struct {
	scanPoint   *sql.Stmt
	session     *sql.Stmt
	waypoint    *sql.Stmt
	scanEvent   *sql.Stmt
	observation *sql.Stmt
	note        *sql.Stmt
}

func prepareCaptureWriter(ctx context.Context, tx *sql.Tx) (*captureWriter, error) {
	var w captureWriter
	statements := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&w.scanPoint, insertScanPointSQL},
		{&w.session, insertSessionSQL},
		{&w.waypoint, insertWaypointSQL},
		{&w.scanEvent, insertScanEventSQL},
		{&w.observation, insertObservationSQL},
		{&w.note, insertNoteSQL},
	}

	for _, st := range statements {
		stmt, err := tx.PrepareContext(ctx, st.query)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("preparing statement: %w", err)
		}
		*st.dst = stmt
	}

	return &w, nil
}

func (w *captureWriter) Close() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{w.scanPoint, w.session, w.waypoint, w.scanEvent, w.observation, w.note} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	return errors.Join(errs...)
}

func (w *captureWriter) insertObservations(ctx context.Context, pointID, eventID sql.NullInt64, networks []survey.Network) error {
	for i, n := range networks {
		_, err := w.observation.ExecContext(ctx,
			pointID,
			eventID,
			i,
			n.SSID,
			n.BSSID,
			n.Level,
			n.Frequency,
			n.Security,
			joinTechnologies(n.Technologies),
			n.InformationElements,
		)
		if err != nil {
			return fmt.Errorf("inserting observation: %w", err)
		}
	}
	return nil
}

func (w *captureWriter) insertSession(ctx context.Context, captureID int64, seq int, session *survey.ContinuousSession) error {
	result, err := w.session.ExecContext(ctx, captureID, seq, session.ID, session.Start.UTC(), session.End.UTC())
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	sessionID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting session ID: %w", err)
	}

	for i, wp := range session.Waypoints {
		if _, err = w.waypoint.ExecContext(ctx, sessionID, i, wp.Time, wp.X, wp.Y); err != nil {
			return fmt.Errorf("inserting waypoint: %w", err)
		}
	}

	for i, scan := range session.Scans {
		result, err = w.scanEvent.ExecContext(ctx, sessionID, i, scan.CompletedAt, scan.Duration)
		if err != nil {
			return fmt.Errorf("inserting scan event: %w", err)
		}
		eventID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting scan event ID: %w", err)
		}
		if err = w.insertObservations(ctx, sql.NullInt64{}, sql.NullInt64{Int64: eventID, Valid: true}, scan.Networks); err != nil {
			return err
		}
	}

	return nil
}

func (s *SqliteStore) SaveCapture(ctx context.Context, name string, c *survey.Capture) (captureID int64, err error) {
	if c.Map == nil {
		return 0, errors.New("saving capture: map is required")
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("beginning transaction: %w", err)
		return
	}
	defer rollbackWithError(tx, &err)

	result, err := tx.ExecContext(ctx, insertCaptureSQL, name, c.Map.FileName, c.Map.Width, c.Map.Height, toNullFloat64(c.MetersPerUnit))
	if err != nil {
		err = fmt.Errorf("inserting capture: %w", err)
		return
	}
	if captureID, err = result.LastInsertId(); err != nil {
		err = fmt.Errorf("getting capture ID: %w", err)
		return
	}

	w, err := prepareCaptureWriter(ctx, tx)
	if err != nil {
		return
	}
	defer closeWithError(w, &err)

	for i, point := range c.ScanPoints {
		if result, err = w.scanPoint.ExecContext(ctx, captureID, i, point.Timestamp.UTC(), point.X, point.Y); err != nil {
			err = fmt.Errorf("inserting scan point: %w", err)
			return
		}
		var pointID int64
		if pointID, err = result.LastInsertId(); err != nil {
			err = fmt.Errorf("getting scan point ID: %w", err)
			return
		}
		if err = w.insertObservations(ctx, sql.NullInt64{Int64: pointID, Valid: true}, sql.NullInt64{}, point.Networks); err != nil {
			return
		}
	}

	for i := range c.Sessions {
		if err = w.insertSession(ctx, captureID, i, &c.Sessions[i]); err != nil {
			return
		}
	}

	for i := range c.Notes {
		data := toNoteData(&c.Notes[i])
		if _, err = w.note.ExecContext(ctx, captureID, i, data.Text, data.X, data.Y, data.PhotoFile, data.PhotoWidth, data.PhotoHeight); err != nil {
			err = fmt.Errorf("inserting note: %w", err)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("committing transaction: %w", err)
		return
	}

	return captureID, nil
}

func (s *SqliteStore) LoadCapture(ctx context.Context, id int64) (capture *survey.Capture, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	var data captureData
	err = db.QueryRowContext(ctx, selectCaptureSQL, id).Scan(&data.Name, &data.MapFile, &data.MapWidth, &data.MapHeight, &data.MetersPerUnit)
	if errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("%w: %d", ErrCaptureNotFound, id)
		return
	}
	if err != nil {
		err = fmt.Errorf("scanning capture: %w", err)
		return
	}

	c := survey.Capture{
		Name:          data.Name,
		Map:           &survey.MapInfo{FileName: data.MapFile, Width: data.MapWidth, Height: data.MapHeight},
		MetersPerUnit: fromNullFloat64(data.MetersPerUnit),
	}

	if c.ScanPoints, err = s.loadScanPoints(ctx, db, id); err != nil {
		return
	}
	if c.Sessions, err = loadSessions(ctx, db, id); err != nil {
		return
	}
	if c.Notes, err = loadNotes(ctx, db, id); err != nil {
		return
	}

	return &c, nil
}

func (s *SqliteStore) loadScanPoints(ctx context.Context, db *sql.DB, captureID int64) (points []survey.ScanPoint, err error) {
	reader, err := newSqliteScanPointReader(ctx, db, captureID)
	if err != nil {
		return nil, err
	}
	defer closeWithError(reader, &err)

	for reader.Next(ctx) {
		points = append(points, *reader.Current())
	}
	if err = reader.Error(); err != nil {
		return nil, err
	}
	return points, nil
}

func loadSessions(ctx context.Context, db *sql.DB, captureID int64) (sessions []survey.ContinuousSession, err error) {
	rows, err := db.QueryContext(ctx, selectSessionsSQL, captureID)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	var ids []int64
	for rows.Next() {
		var id int64
		var session survey.ContinuousSession
		if err = rows.Scan(&id, &session.ID, &session.Start, &session.End); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		ids = append(ids, id)
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating sessions: %w", err)
		return
	}

	for i, id := range ids {
		if sessions[i].Waypoints, err = loadWaypoints(ctx, db, id); err != nil {
			return
		}
		if sessions[i].Scans, err = loadScanEvents(ctx, db, id); err != nil {
			return
		}
	}
	return
}

func loadWaypoints(ctx context.Context, db *sql.DB, sessionID int64) (waypoints []survey.Waypoint, err error) {
	rows, err := db.QueryContext(ctx, selectWaypointsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying waypoints: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var wp survey.Waypoint
		if err = rows.Scan(&wp.Time, &wp.X, &wp.Y); err != nil {
			err = fmt.Errorf("scanning waypoint: %w", err)
			return
		}
		waypoints = append(waypoints, wp)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating waypoints: %w", err)
	}
	return
}

func loadScanEvents(ctx context.Context, db *sql.DB, sessionID int64) (events []survey.ScanEvent, err error) {
	rows, err := db.QueryContext(ctx, selectScanEventsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying scan events: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	positions := make(map[int64]int)
	for rows.Next() {
		var id int64
		var event survey.ScanEvent
		if err = rows.Scan(&id, &event.CompletedAt, &event.Duration); err != nil {
			err = fmt.Errorf("scanning scan event: %w", err)
			return
		}
		positions[id] = len(events)
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating scan events: %w", err)
		return
	}

	obsRows, err := db.QueryContext(ctx, selectEventObservationsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying observations: %w", err)
		return
	}
	defer closeWithError(obsRows, &err)

	for obsRows.Next() {
		var eventID int64
		var data observationData
		err = obsRows.Scan(&eventID, &data.SSID, &data.BSSID, &data.Level, &data.Frequency, &data.Security, &data.Technologies, &data.InformationElements)
		if err != nil {
			err = fmt.Errorf("scanning observation: %w", err)
			return
		}
		if pos, ok := positions[eventID]; ok {
			events[pos].Networks = append(events[pos].Networks, data.network())
		}
	}
	if err = obsRows.Err(); err != nil {
		err = fmt.Errorf("iterating observations: %w", err)
	}
	return
}

func loadNotes(ctx context.Context, db *sql.DB, captureID int64) (notes []survey.Note, err error) {
	rows, err := db.QueryContext(ctx, selectNotesSQL, captureID)
	if err != nil {
		err = fmt.Errorf("querying notes: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data noteData
		if err = rows.Scan(&data.Text, &data.X, &data.Y, &data.PhotoFile, &data.PhotoWidth, &data.PhotoHeight); err != nil {
			err = fmt.Errorf("scanning note: %w", err)
			return
		}
		notes = append(notes, data.note())
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating notes: %w", err)
	}
	return
}

func (s *SqliteStore) Captures(ctx context.Context) (captures []CaptureInfo, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectCapturesSQL)
	if err != nil {
		err = fmt.Errorf("querying captures: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var info CaptureInfo
		if err = rows.Scan(&info.ID, &info.Name, &info.CreatedAt, &info.MapFile, &info.ScanPoints, &info.Sessions); err != nil {
			err = fmt.Errorf("scanning capture: %w", err)
			return
		}
		captures = append(captures, info)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating captures: %w", err)
	}
	return
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
