// Package esx holds the document records of the survey tool's project archive.
//
// Records are plain values. JSON field names follow the tool's schema and must
// not be renamed. Use Factory to construct records with their default values
// and generated identifiers.
package esx

const (
	StatusCreated = "CREATED"
	SchemaVersion = "1.9.0"
	Author        = "WiProber"

	ProjectConfigurationID = "ac617491-9beb-4f3a-b600-f0037669c1a9"
	WifiAdapterID          = "3fb11fa8-4a44-4be9-b588-15d767bd768a"

	DefaultMetersPerUnit = 0.025

	// Stationary surveys span a fixed nominal window, all values in nanoseconds
	StopAndGoDuration  int64 = 5_001_000_000
	StopAndGoPathStart int64 = 1_000_000
	StopAndGoPathEnd   int64 = 5_002_000_000
	StopAndGoScanEnd   int64 = 3_971_000_000

	RouteStopAndGo   = "STOP_AND_GO"
	RouteContinuous  = "CONTINUOUS"
	FloorPlanFSPL    = "FSPL"
	RotateUp         = "UP"
	ThumbnailMime    = "image/png"
	DefaultImageType = "JPEG"
)

// ProjectDocument is the content of project.json.
type ProjectDocument struct {
	Project Project `json:"project"`
}

type Project struct {
	ID                     string    `json:"id"`
	Status                 string    `json:"status"`
	Name                   string    `json:"name"`
	Title                  string    `json:"title"`
	SchemaVersion          string    `json:"schemaVersion"`
	ProjectConfigurationID string    `json:"projectConfigurationId"`
	Customer               string    `json:"customer"`
	Location               string    `json:"location"`
	ResponsiblePerson      string    `json:"responsiblePerson"`
	NoteIDs                []string  `json:"noteIds"`
	ProjectAncestors       []string  `json:"projectAncestors"`
	Tags                   []string  `json:"tags"`
	Thumbnail              Thumbnail `json:"thumbnail"`
	History                History   `json:"history"`
}

type Thumbnail struct {
	DataFloorPlanID string `json:"dataFloorPlanId"`
	MimeType        string `json:"mimeType"`
	Data            string `json:"data"` // Base64 encoded PNG, empty when no thumbnail was rendered
}

// History is the full modification history of the project record.
type History struct {
	ModifiedAt string `json:"modifiedAt"`
	ModifiedBy string `json:"modifiedBy"`
	CreatedAt  string `json:"createdAt"`
	CreatedBy  string `json:"createdBy"`
}

// ProjectHistoriesDocument is the content of projectHistorys.json,
// the misspelling is the tool's.
type ProjectHistoriesDocument struct {
	ProjectHistories []ProjectHistory `json:"projectHistorys"`
}

type ProjectHistory struct {
	ID             string   `json:"id"`
	Status         string   `json:"status"`
	ProjectID      string   `json:"projectId"`
	ProjectName    string   `json:"projectName"`
	Timestamp      string   `json:"timestamp"`
	ParentIDs      []string `json:"parentIds"`
	ProductName    string   `json:"productName"`
	ProductVersion string   `json:"productVersion"`
	SchemaVersion  string   `json:"schemaVersion"`
	Operation      string   `json:"operation"`
	Platform       string   `json:"platform"`
}

type FloorPlansDocument struct {
	FloorPlans []FloorPlan `json:"floorPlans"`
}

type FloorPlan struct {
	ID                 string   `json:"id"`
	Status             string   `json:"status"`
	Name               string   `json:"name"`
	Width              float64  `json:"width"`
	Height             float64  `json:"height"`
	ImageID            string   `json:"imageId"`
	MetersPerUnit      float64  `json:"metersPerUnit"`
	GPSReferencePoints []string `json:"gpsReferencePoints"`
	FloorPlanType      string   `json:"floorPlanType"`
	CropMinX           float64  `json:"cropMinX"`
	CropMinY           float64  `json:"cropMinY"`
	CropMaxX           float64  `json:"cropMaxX"`
	CropMaxY           float64  `json:"cropMaxY"`
	RotateUpDirection  string   `json:"rotateUpDirection"`
	Tags               []string `json:"tags"`
}

type ImagesDocument struct {
	Images []Image `json:"images"`
}

type Image struct {
	ID               string  `json:"id"`
	Status           string  `json:"status"`
	ImageFormat      string  `json:"imageFormat"`
	ResolutionWidth  float64 `json:"resolutionWidth"`
	ResolutionHeight float64 `json:"resolutionHeight"`
}

type AccessPointMeasurementsDocument struct {
	AccessPointMeasurements []AccessPointMeasurement `json:"accessPointMeasurements"`
}

// AccessPointMeasurement describes one distinct radio (bssid) seen during the capture.
type AccessPointMeasurement struct {
	ID                  string   `json:"id"`
	Status              string   `json:"status"`
	MAC                 string   `json:"mac"`
	SSID                string   `json:"ssid"`
	Channels            []int    `json:"channelByCenterFrequencyDefinedNarrowChannels"`
	Security            string   `json:"security"`
	Technologies        []string `json:"technologies"`
	InformationElements string   `json:"informationElements"`
}

type AccessPointsDocument struct {
	AccessPoints []AccessPoint `json:"accessPoints"`
}

type AccessPoint struct {
	ID                  string   `json:"id"`
	Status              string   `json:"status"`
	Name                string   `json:"name"`
	Mine                bool     `json:"mine"`
	Hidden              bool     `json:"hidden"`
	UserDefinedPosition bool     `json:"userDefinedPosition"`
	NoteIDs             []string `json:"noteIds"`
	Tags                []string `json:"tags"`
}

type MeasuredRadiosDocument struct {
	MeasuredRadios []MeasuredRadio `json:"measuredRadios"`
}

type MeasuredRadio struct {
	ID                        string   `json:"id"`
	Status                    string   `json:"status"`
	AccessPointID             string   `json:"accessPointId"`
	AccessPointMeasurementIDs []string `json:"accessPointMeasurementIds"`
}

type SurveyLookupsDocument struct {
	SurveyLookups []SurveyLookup `json:"surveyLookups"`
}

type SurveyLookup struct {
	ID          string `json:"id"`
	SurveyID    string `json:"surveyId"`
	FloorPlanID string `json:"floorPlanId"`
}

// SurveysDocument is the content of a survey-<id>.json file, it always holds one survey.
type SurveysDocument struct {
	Surveys []Survey `json:"surveys"`
}

type Survey struct {
	ID                                string          `json:"id"`
	Status                            string          `json:"status"`
	Name                              string          `json:"name"`
	StartTime                         string          `json:"startTime"`
	Duration                          int64           `json:"duration"` // Nanoseconds
	FloorPlanID                       string          `json:"floorPlanId"`
	RouteType                         string          `json:"routeType"`
	NoteIDs                           []string        `json:"noteIds"`
	RoutePoints                       [][]RoutePoint  `json:"routePoints"`
	WifiTracks                        []WifiTrack     `json:"wifiTracks"`
	ActiveSurveyAdapterInformationIDs []string        `json:"activeSurveyAdapterInformationIds"`
	AssociationIntervals              []string        `json:"associationIntervals"`
	PingSessions                      []PingSession   `json:"pingSessions"`
	ThroughputSessions                []string        `json:"throughputSessions"`
	SpectrumSessions                  []string        `json:"spectrumSessions"`
	InterferenceDetectionEvents       []string        `json:"interferenceDetectionEvents"`
	History                           CreationHistory `json:"history"`
}

// CreationHistory is the short history form used by surveys and notes.
type CreationHistory struct {
	CreatedAt string `json:"createdAt"`
	CreatedBy string `json:"createdBy"`
}

type RoutePoint struct {
	Time     int64    `json:"time"` // Nanoseconds since the survey start
	Location Location `json:"location"`
}

type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WifiTrack links a survey to its binary measurement file. AccessPointMeasurementIDs
// is indexed by the access point index used inside the binary file.
type WifiTrack struct {
	WifiAdapterInformationID  string     `json:"wifiAdapterInformationId"`
	BinaryFileID              string     `json:"binaryFileId"`
	Primary                   bool       `json:"primary"`
	Secondary                 bool       `json:"secondary"`
	Scannings                 []Scanning `json:"scannings"`
	AccessPointMeasurementIDs []string   `json:"accessPointMeasurementIds"`
	ChannelWaitTime           int        `json:"channelWaitTime"`
	Technologies              []string   `json:"technologies"`
}

// Scanning is a radio activity interval, bounds are nanoseconds since the survey start.
type Scanning struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

type PingSession struct {
	RequestedAddress       string   `json:"requestedAddress"`
	ResolvedAddressVersion string   `json:"resolvedAddressVersion"`
	ResolvedAddress        string   `json:"resolvedAddress"`
	Pings                  []string `json:"pings"`
}

type NotesDocument struct {
	Notes []Note `json:"notes"`
}

type Note struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Text     string          `json:"text"`
	ImageIDs []string        `json:"imageIds"`
	History  CreationHistory `json:"history"`
}

type PictureNotesDocument struct {
	PictureNotes []PictureNote `json:"pictureNotes"`
}

// PictureNote anchors notes to a floor plan position.
type PictureNote struct {
	ID       string       `json:"id"`
	Status   string       `json:"status"`
	Location NoteLocation `json:"location"`
	NoteIDs  []string     `json:"noteIds"`
}

type NoteLocation struct {
	FloorPlanID string   `json:"floorPlanId"`
	Coord       Location `json:"coord"`
}
