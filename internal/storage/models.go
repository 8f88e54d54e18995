package storage

import (
	"database/sql"
	"time"
)

// CaptureInfo summarises a stored capture.
type CaptureInfo struct {
	ID         int64
	Name       string
	CreatedAt  time.Time
	MapFile    string
	ScanPoints int
	Sessions   int
}

type captureData struct {
	Name          string
	MapFile       string
	MapWidth      int
	MapHeight     int
	MetersPerUnit sql.NullFloat64
}

// observationData is one row of the observations table. Columns are nullable
// because scan points are read through a LEFT JOIN.
type observationData struct {
	SSID                sql.NullString
	BSSID               sql.NullString
	Level               sql.NullInt64
	Frequency           sql.NullInt64
	Security            sql.NullString
	Technologies        sql.NullString
	InformationElements sql.NullString
}

type scanPointData struct {
	ID        int64
	Timestamp time.Time
	X         float64
	Y         float64
	observationData
}

type noteData struct {
	Text        string
	X           float64
	Y           float64
	PhotoFile   sql.NullString
	PhotoWidth  sql.NullInt64
	PhotoHeight sql.NullInt64
}
