package storage

import (
	_ "embed"
)

var (
	//go:embed schema.sql
	initSchemaSQL string

	//go:embed indexes.sql
	initIndexesSQL string
)

const (
	insertCaptureSQL = `
INSERT INTO captures (name,
                      map_file,
                      map_width,
                      map_height,
                      meters_per_unit)
VALUES (?, ?, ?, ?, ?)`

	selectCaptureSQL = `
SELECT
    name,
    map_file,
    map_width,
    map_height,
    meters_per_unit
FROM captures
WHERE
    id = ?`

	selectCapturesSQL = `
SELECT
    c.id,
    c.name,
    c.created_at,
    c.map_file,
    (SELECT COUNT(*) FROM scan_points p WHERE p.capture_id = c.id),
    (SELECT COUNT(*) FROM sessions s WHERE s.capture_id = c.id)
FROM captures c
ORDER BY c.id`

	insertScanPointSQL = `
INSERT INTO scan_points (capture_id,
                         seq,
                         timestamp,
                         x,
                         y)
VALUES (?, ?, ?, ?, ?)`

	selectScanPointsSQL = `
SELECT
    p.id,
    p.timestamp,
    p.x,
    p.y,
    o.ssid,
    o.bssid,
    o.level,
    o.frequency,
    o.security,
    o.technologies,
    o.information_elements
FROM scan_points p
    LEFT JOIN observations o ON o.scan_point_id = p.id
WHERE
    p.capture_id = ?
ORDER BY p.seq, o.seq`

	insertSessionSQL = `
INSERT INTO sessions (capture_id,
                      seq,
                      session_key,
                      start_time,
                      end_time)
VALUES (?, ?, ?, ?, ?)`

	selectSessionsSQL = `
SELECT
    id,
    session_key,
    start_time,
    end_time
FROM sessions
WHERE
    capture_id = ?
ORDER BY seq`

	insertWaypointSQL = `
INSERT INTO waypoints (session_id,
                       seq,
                       time_ms,
                       x,
                       y)
VALUES (?, ?, ?, ?, ?)`

	selectWaypointsSQL = `
SELECT
    time_ms,
    x,
    y
FROM waypoints
WHERE
    session_id = ?
ORDER BY seq`

	insertScanEventSQL = `
INSERT INTO scan_events (session_id,
                         seq,
                         completed_ms,
                         duration_ms)
VALUES (?, ?, ?, ?)`

	selectScanEventsSQL = `
SELECT
    id,
    completed_ms,
    duration_ms
FROM scan_events
WHERE
    session_id = ?
ORDER BY seq`

	insertObservationSQL = `
INSERT INTO observations (scan_point_id,
                          scan_event_id,
                          seq,
                          ssid,
                          bssid,
                          level,
                          frequency,
                          security,
                          technologies,
                          information_elements)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectEventObservationsSQL = `
SELECT
    o.scan_event_id,
    o.ssid,
    o.bssid,
    o.level,
    o.frequency,
    o.security,
    o.technologies,
    o.information_elements
FROM observations o
    JOIN scan_events e ON o.scan_event_id = e.id
WHERE
    e.session_id = ?
ORDER BY e.seq, o.seq`

	insertNoteSQL = `
INSERT INTO notes (capture_id,
                   seq,
                   text,
                   x,
                   y,
                   photo_file,
                   photo_width,
                   photo_height)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectNotesSQL = `
SELECT
    text,
    x,
    y,
    photo_file,
    photo_width,
    photo_height
FROM notes
WHERE
    capture_id = ?
ORDER BY seq`
)
