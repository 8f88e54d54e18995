package storage

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/htechno/wiprober/internal/survey"
)

const technologiesSeparator = ","

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toNullFloat64(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func fromNullFloat64(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func toNoteData(n *survey.Note) noteData {
	data := noteData{Text: n.Text, X: n.X, Y: n.Y}
	if n.Photo != nil {
		data.PhotoFile = sql.NullString{String: n.Photo.FileName, Valid: true}
		data.PhotoWidth = sql.NullInt64{Int64: int64(n.Photo.Width), Valid: true}
		data.PhotoHeight = sql.NullInt64{Int64: int64(n.Photo.Height), Valid: true}
	}
	return data
}

func (d *noteData) note() survey.Note {
	n := survey.Note{Text: d.Text, X: d.X, Y: d.Y}
	if d.PhotoFile.Valid {
		n.Photo = &survey.Photo{
			FileName: d.PhotoFile.String,
			Width:    int(d.PhotoWidth.Int64),
			Height:   int(d.PhotoHeight.Int64),
		}
	}
	return n
}

func joinTechnologies(techs []string) string {
	return strings.Join(techs, technologiesSeparator)
}

func splitTechnologies(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, technologiesSeparator)
}

// valid reports whether the row holds an observation, LEFT JOIN rows of an
// empty scan point do not.
func (d *observationData) valid() bool {
	return d.BSSID.Valid
}

func (d *observationData) network() survey.Network {
	return survey.Network{
		SSID:                d.SSID.String,
		BSSID:               d.BSSID.String,
		Level:               int(d.Level.Int64),
		Frequency:           int(d.Frequency.Int64),
		Security:            d.Security.String,
		Technologies:        splitTechnologies(d.Technologies.String),
		InformationElements: d.InformationElements.String,
	}
}
