package report

import (
	"github.com/htechno/wiprober/internal/esx"
)

// Bundle is the complete, internally consistent result of one build.
// It is handed to the archive writer whole and must not be mutated.
type Bundle struct {
	Project                 esx.ProjectDocument
	ProjectHistories        esx.ProjectHistoriesDocument
	FloorPlans              esx.FloorPlansDocument
	Images                  esx.ImagesDocument
	AccessPointMeasurements esx.AccessPointMeasurementsDocument
	AccessPoints            esx.AccessPointsDocument
	MeasuredRadios          esx.MeasuredRadiosDocument
	SurveyLookups           esx.SurveyLookupsDocument
	Notes                   esx.NotesDocument
	PictureNotes            esx.PictureNotesDocument

	Surveys   map[string]esx.SurveysDocument // Keyed by survey id
	SurveyIDs []string                       // Survey ids in build order

	Tracks       map[string][]byte // Encoded tracks keyed by binary file id
	ImageSources map[string]string // Source file name keyed by image id
}

// Document is one named JSON document of the archive.
type Document struct {
	Name  string
	Value any
}

// Documents returns every JSON document of the bundle in a stable order,
// the fixed documents first followed by one document per survey.
func (b *Bundle) Documents() []Document {
	docs := []Document{
		{Name: esx.ProjectFile, Value: b.Project},
		{Name: esx.ProjectHistoriesFile, Value: b.ProjectHistories},
		{Name: esx.FloorPlansFile, Value: b.FloorPlans},
		{Name: esx.ImagesFile, Value: b.Images},
		{Name: esx.AccessPointMeasurementsFile, Value: b.AccessPointMeasurements},
		{Name: esx.AccessPointsFile, Value: b.AccessPoints},
		{Name: esx.MeasuredRadiosFile, Value: b.MeasuredRadios},
		{Name: esx.SurveyLookupsFile, Value: b.SurveyLookups},
		{Name: esx.NotesFile, Value: b.Notes},
		{Name: esx.PictureNotesFile, Value: b.PictureNotes},
	}
	for _, id := range b.SurveyIDs {
		docs = append(docs, Document{Name: esx.SurveyFile(id), Value: b.Surveys[id]})
	}
	return docs
}

// TrackIDs returns the binary file ids in survey build order.
func (b *Bundle) TrackIDs() []string {
	ids := make([]string, 0, len(b.Tracks))
	for _, id := range b.SurveyIDs {
		for _, s := range b.Surveys[id].Surveys {
			for _, track := range s.WifiTracks {
				ids = append(ids, track.BinaryFileID)
			}
		}
	}
	return ids
}

// ImageIDs returns the image ids in document order.
func (b *Bundle) ImageIDs() []string {
	ids := make([]string, 0, len(b.Images.Images))
	for _, img := range b.Images.Images {
		ids = append(ids, img.ID)
	}
	return ids
}
