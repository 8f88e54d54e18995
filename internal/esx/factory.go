package esx

import (
	"time"

	"github.com/google/uuid"
)

const (
	HistoryTimeFormat        = "2006-01-02T15:04:05.000Z"
	ProjectHistoryTimeFormat = "2006-01-02T15:04:05.000-0700"

	productName    = "Ekahau AI Pro"
	productVersion = "11.8.5.1"
	saveOperation  = "LOCAL_SAVE"
	platform       = "Windows 10 64-bit"

	pingAddress    = "localhost"
	pingVersion    = "IPV4"
	pingResolvedTo = "127.0.0.1"
)

// IDGenerator returns a new unique record identifier on every call.
type IDGenerator func() string

// NewUUID is the default IDGenerator, it returns random UUIDv4 strings.
func NewUUID() string {
	return uuid.NewString()
}

// FormatHistoryTime formats t the way record histories expect it: UTC with milliseconds.
func FormatHistoryTime(t time.Time) string {
	return t.UTC().Format(HistoryTimeFormat)
}

// FormatProjectHistoryTime formats t with its numeric zone offset.
func FormatProjectHistoryTime(t time.Time) string {
	return t.Format(ProjectHistoryTimeFormat)
}

// Factory constructs records with their default field values. Identifiers
// and "now" come from the injected generator and clock.
type Factory struct {
	newID IDGenerator
	now   func() time.Time
}

// WithIDGenerator replaces the UUID generator, mainly for deterministic tests.
func WithIDGenerator(gen IDGenerator) func(f *Factory) {
	return func(f *Factory) {
		f.newID = gen
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) func(f *Factory) {
	return func(f *Factory) {
		f.now = now
	}
}

// NewFactory creates a Factory generating UUIDs with time.Now as the clock.
func NewFactory(options ...func(f *Factory)) *Factory {
	f := &Factory{
		newID: NewUUID,
		now:   time.Now,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

func (f *Factory) creationHistory(at string) CreationHistory {
	return CreationHistory{CreatedAt: at, CreatedBy: Author}
}

// Project returns a project named name whose thumbnail belongs to floorPlanID.
// thumbnail holds base64 PNG data and may be empty.
func (f *Factory) Project(name, floorPlanID, thumbnail string) Project {
	now := FormatHistoryTime(f.now())
	return Project{
		ID:                     f.newID(),
		Status:                 StatusCreated,
		Name:                   name,
		Title:                  name,
		SchemaVersion:          SchemaVersion,
		ProjectConfigurationID: ProjectConfigurationID,
		NoteIDs:                []string{},
		ProjectAncestors:       []string{},
		Tags:                   []string{},
		Thumbnail: Thumbnail{
			DataFloorPlanID: floorPlanID,
			MimeType:        ThumbnailMime,
			Data:            thumbnail,
		},
		History: History{
			ModifiedAt: now,
			ModifiedBy: Author,
			CreatedAt:  now,
			CreatedBy:  Author,
		},
	}
}

// ProjectHistory records a local save of project. The timestamp is written in loc.
func (f *Factory) ProjectHistory(project Project, loc *time.Location) ProjectHistory {
	return ProjectHistory{
		ID:             f.newID(),
		Status:         StatusCreated,
		ProjectID:      project.ID,
		ProjectName:    project.Name,
		Timestamp:      FormatProjectHistoryTime(f.now().In(loc)),
		ParentIDs:      []string{},
		ProductName:    productName,
		ProductVersion: productVersion,
		SchemaVersion:  SchemaVersion,
		Operation:      saveOperation,
		Platform:       platform,
	}
}

// FloorPlan returns a floor plan with the full image as crop box.
func (f *Factory) FloorPlan(name, imageID string, width, height, metersPerUnit float64) FloorPlan {
	return FloorPlan{
		ID:                 f.newID(),
		Status:             StatusCreated,
		Name:               name,
		Width:              width,
		Height:             height,
		ImageID:            imageID,
		MetersPerUnit:      metersPerUnit,
		GPSReferencePoints: []string{},
		FloorPlanType:      FloorPlanFSPL,
		CropMaxX:           width,
		CropMaxY:           height,
		RotateUpDirection:  RotateUp,
		Tags:               []string{},
	}
}

func (f *Factory) Image(format string, width, height float64) Image {
	return Image{
		ID:               f.newID(),
		Status:           StatusCreated,
		ImageFormat:      format,
		ResolutionWidth:  width,
		ResolutionHeight: height,
	}
}

func (f *Factory) AccessPointMeasurement(mac, ssid string, channels []int, security string, technologies []string, ies string) AccessPointMeasurement {
	if technologies == nil {
		technologies = []string{}
	}
	return AccessPointMeasurement{
		ID:                  f.newID(),
		Status:              StatusCreated,
		MAC:                 mac,
		SSID:                ssid,
		Channels:            channels,
		Security:            security,
		Technologies:        technologies,
		InformationElements: ies,
	}
}

func (f *Factory) AccessPoint(name string) AccessPoint {
	return AccessPoint{
		ID:      f.newID(),
		Status:  StatusCreated,
		Name:    name,
		NoteIDs: []string{},
		Tags:    []string{},
	}
}

func (f *Factory) MeasuredRadio(accessPointID string, measurementIDs ...string) MeasuredRadio {
	return MeasuredRadio{
		ID:                        f.newID(),
		Status:                    StatusCreated,
		AccessPointID:             accessPointID,
		AccessPointMeasurementIDs: measurementIDs,
	}
}

func (f *Factory) SurveyLookup(surveyID, floorPlanID string) SurveyLookup {
	return SurveyLookup{
		ID:          f.newID(),
		SurveyID:    surveyID,
		FloorPlanID: floorPlanID,
	}
}

// WifiTrack returns a primary track with a fresh binary file identifier.
// measurementIDs must be in the access point index order of the binary file.
func (f *Factory) WifiTrack(measurementIDs []string, scannings []Scanning) WifiTrack {
	return WifiTrack{
		WifiAdapterInformationID:  WifiAdapterID,
		BinaryFileID:              f.newID(),
		Primary:                   true,
		Scannings:                 scannings,
		AccessPointMeasurementIDs: measurementIDs,
		Technologies:              []string{},
	}
}

// SurveyParams are the variable parts of a survey record.
type SurveyParams struct {
	Name        string
	Start       time.Time
	Duration    int64 // Nanoseconds
	FloorPlanID string
	RouteType   string
	RoutePoints [][]RoutePoint
	Track       WifiTrack
}

func (f *Factory) Survey(p SurveyParams) Survey {
	start := FormatHistoryTime(p.Start)
	return Survey{
		ID:                                f.newID(),
		Status:                            StatusCreated,
		Name:                              p.Name,
		StartTime:                         start,
		Duration:                          p.Duration,
		FloorPlanID:                       p.FloorPlanID,
		RouteType:                         p.RouteType,
		NoteIDs:                           []string{},
		RoutePoints:                       p.RoutePoints,
		WifiTracks:                        []WifiTrack{p.Track},
		ActiveSurveyAdapterInformationIDs: []string{},
		AssociationIntervals:              []string{},
		PingSessions: []PingSession{{
			RequestedAddress:       pingAddress,
			ResolvedAddressVersion: pingVersion,
			ResolvedAddress:        pingResolvedTo,
			Pings:                  []string{},
		}},
		ThroughputSessions:          []string{},
		SpectrumSessions:            []string{},
		InterferenceDetectionEvents: []string{},
		History:                     f.creationHistory(start),
	}
}

// Note returns a note created now. imageID is empty when the note has no photo.
func (f *Factory) Note(text, imageID string) Note {
	imageIDs := []string{}
	if imageID != "" {
		imageIDs = append(imageIDs, imageID)
	}
	return Note{
		ID:       f.newID(),
		Status:   StatusCreated,
		Text:     text,
		ImageIDs: imageIDs,
		History:  f.creationHistory(FormatHistoryTime(f.now())),
	}
}

func (f *Factory) PictureNote(floorPlanID string, x, y float64, noteIDs ...string) PictureNote {
	return PictureNote{
		ID:     f.newID(),
		Status: StatusCreated,
		Location: NoteLocation{
			FloorPlanID: floorPlanID,
			Coord:       Location{X: x, Y: y},
		},
		NoteIDs: noteIDs,
	}
}
