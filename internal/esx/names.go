package esx

// Names of the fixed documents inside the archive.
const (
	ProjectFile                 = "project.json"
	ProjectHistoriesFile        = "projectHistorys.json"
	FloorPlansFile              = "floorPlans.json"
	AccessPointMeasurementsFile = "accessPointMeasurements.json"
	AccessPointsFile            = "accessPoints.json"
	MeasuredRadiosFile          = "measuredRadios.json"
	SurveyLookupsFile           = "surveyLookups.json"
	ImagesFile                  = "images.json"
	NotesFile                   = "notes.json"
	PictureNotesFile            = "pictureNotes.json"

	// Static documents shipped with every project, they define the records
	// ProjectConfigurationID and WifiAdapterID point to.
	ProjectConfigurationFile    = "projectConfiguration.json"
	WifiAdapterInformationsFile = "wifiAdapterInformations.json"

	surveyPrefix = "survey-"
	trackPrefix  = "track-"
	imagePrefix  = "image-"
)

// SurveyFile returns the archive name of the document holding survey id.
func SurveyFile(id string) string {
	return surveyPrefix + id + ".json"
}

// TrackFile returns the archive name of a binary measurement file.
func TrackFile(binaryFileID string) string {
	return trackPrefix + binaryFileID + ".bin"
}

// ImageFile returns the archive name of the raw image bytes of an image record.
func ImageFile(imageID string) string {
	return imagePrefix + imageID
}

// RequiredAssets lists the static documents an archive cannot be opened without.
var RequiredAssets = []string{ProjectConfigurationFile, WifiAdapterInformationsFile}
