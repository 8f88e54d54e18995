package esx

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 10, 15, 30, 250_000_000, time.UTC)

// newTestFactory returns a factory producing id-1, id-2, ... at a fixed time.
func newTestFactory() *Factory {
	n := 0
	return NewFactory(
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestNewUUID(t *testing.T) {
	a, b := NewUUID(), NewUUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestFormatTimes(t *testing.T) {
	assert.Equal(t, "2024-03-01T10:15:30.250Z", FormatHistoryTime(fixedNow))

	moscow := time.FixedZone("MSK", 3*60*60)
	assert.Equal(t, "2024-03-01T10:15:30.250Z", FormatHistoryTime(fixedNow.In(moscow)))
	assert.Equal(t, "2024-03-01T13:15:30.250+0300", FormatProjectHistoryTime(fixedNow.In(moscow)))
}

func TestFactory_Project(t *testing.T) {
	f := newTestFactory()
	project := f.Project("Survey from office", "plan-1", "")
	history := f.ProjectHistory(project, time.UTC)

	assert.Equal(t, "id-1", project.ID)
	assert.Equal(t, StatusCreated, project.Status)
	assert.Equal(t, project.Name, project.Title)
	assert.Equal(t, SchemaVersion, project.SchemaVersion)
	assert.Equal(t, ProjectConfigurationID, project.ProjectConfigurationID)
	assert.Equal(t, Thumbnail{DataFloorPlanID: "plan-1", MimeType: ThumbnailMime}, project.Thumbnail)
	assert.Equal(t, "2024-03-01T10:15:30.250Z", project.History.CreatedAt)
	assert.Equal(t, Author, project.History.ModifiedBy)

	assert.Equal(t, "id-2", history.ID)
	assert.Equal(t, project.ID, history.ProjectID)
	assert.Equal(t, project.Name, history.ProjectName)
	assert.Equal(t, "2024-03-01T10:15:30.250+0000", history.Timestamp)
	assert.Equal(t, "LOCAL_SAVE", history.Operation)
}

func TestFactory_FloorPlan(t *testing.T) {
	plan := newTestFactory().FloorPlan("office", "img-1", 1200, 800, DefaultMetersPerUnit)

	assert.Equal(t, 0.0, plan.CropMinX)
	assert.Equal(t, 0.0, plan.CropMinY)
	assert.Equal(t, 1200.0, plan.CropMaxX)
	assert.Equal(t, 800.0, plan.CropMaxY)
	assert.Equal(t, 0.025, plan.MetersPerUnit)
	assert.Equal(t, FloorPlanFSPL, plan.FloorPlanType)
	assert.Equal(t, RotateUp, plan.RotateUpDirection)
}

func TestFactory_Survey(t *testing.T) {
	f := newTestFactory()
	track := f.WifiTrack([]string{"m-1", "m-2"}, []Scanning{{StartTime: 1_000_000, EndTime: 3_971_000_000}})
	survey := f.Survey(SurveyParams{
		Name:        "2024-03-01-10:15",
		Start:       fixedNow,
		Duration:    StopAndGoDuration,
		FloorPlanID: "plan-1",
		RouteType:   RouteStopAndGo,
		Track:       track,
	})

	assert.Equal(t, "id-1", track.BinaryFileID)
	assert.True(t, track.Primary)
	assert.False(t, track.Secondary)
	assert.Equal(t, WifiAdapterID, track.WifiAdapterInformationID)

	assert.Equal(t, "id-2", survey.ID)
	assert.Equal(t, int64(5_001_000_000), survey.Duration)
	assert.Equal(t, "2024-03-01T10:15:30.250Z", survey.StartTime)
	assert.Equal(t, survey.StartTime, survey.History.CreatedAt)
	require.Len(t, survey.PingSessions, 1)
	assert.Equal(t, "127.0.0.1", survey.PingSessions[0].ResolvedAddress)
	require.Len(t, survey.WifiTracks, 1)
	assert.Equal(t, []string{"m-1", "m-2"}, survey.WifiTracks[0].AccessPointMeasurementIDs)
}

func TestFactory_Note(t *testing.T) {
	f := newTestFactory()

	plain := f.Note("server room", "")
	assert.NotNil(t, plain.ImageIDs)
	assert.Empty(t, plain.ImageIDs)

	withPhoto := f.Note("rack", "img-7")
	assert.Equal(t, []string{"img-7"}, withPhoto.ImageIDs)

	pin := f.PictureNote("plan-1", 10, 20, withPhoto.ID)
	assert.Equal(t, NoteLocation{FloorPlanID: "plan-1", Coord: Location{X: 10, Y: 20}}, pin.Location)
	assert.Equal(t, []string{withPhoto.ID}, pin.NoteIDs)
}

func TestDocuments_JSONShape(t *testing.T) {
	f := newTestFactory()
	doc := AccessPointMeasurementsDocument{AccessPointMeasurements: []AccessPointMeasurement{
		f.AccessPointMeasurement("aa:bb:cc:dd:ee:01", "lab", []int{1}, "WPA2", nil, ""),
	}}

	p, err := json.Marshal(doc)
	require.NoError(t, err)

	var raw map[string][]map[string]any
	require.NoError(t, json.Unmarshal(p, &raw))
	require.Len(t, raw["accessPointMeasurements"], 1)

	m := raw["accessPointMeasurements"][0]
	assert.Equal(t, "aa:bb:cc:dd:ee:01", m["mac"])
	assert.Equal(t, []any{1.0}, m["channelByCenterFrequencyDefinedNarrowChannels"])
	assert.Equal(t, []any{}, m["technologies"])
	assert.Equal(t, "CREATED", m["status"])

	p, err = json.Marshal(ProjectHistoriesDocument{ProjectHistories: []ProjectHistory{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"projectHistorys": []}`, string(p))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "survey-abc.json", SurveyFile("abc"))
	assert.Equal(t, "track-abc.bin", TrackFile("abc"))
	assert.Equal(t, "image-abc", ImageFile("abc"))
}
