// Package report turns a survey capture into the document graph and binary
// tracks of a project archive.
//
// A build is a single synchronous pass without I/O. A Builder holds no
// mutable state between builds and may be shared between goroutines as long
// as its IDGenerator and clock are safe for concurrent use.
package report

import (
	"cmp"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/htechno/wiprober/internal/esx"
	"github.com/htechno/wiprober/internal/survey"
	"github.com/htechno/wiprober/internal/track"
)

const (
	// stationaryTime is the relative time, in ms, of every entry of a stationary scan
	stationaryTime = 1

	nsPerMs = int64(time.Millisecond)

	surveyNameLayout = "2006-01-02-15:04"
	continuousSuffix = " (continuous)"
	projectPrefix    = "Survey from "
	apNamePrefix     = "Measured AP-"
)

// ErrNoFloorPlan is returned when the input carries no floor plan information.
var ErrNoFloorPlan = errors.New("report: floor plan is required")

// Input is everything a build consumes.
type Input struct {
	ScanPoints    []survey.ScanPoint
	Sessions      []survey.ContinuousSession
	Map           *survey.MapInfo
	MetersPerUnit *float64 // Nil falls back to esx.DefaultMetersPerUnit
	Notes         []survey.Note
	Thumbnail     []byte // PNG encoded project thumbnail, may be empty
}

// WithIDGenerator sets the identifier generator of every created record
func WithIDGenerator(gen esx.IDGenerator) func(b *Builder) {
	return func(b *Builder) {
		b.factoryOptions = append(b.factoryOptions, esx.WithIDGenerator(gen))
	}
}

// WithClock sets the clock used for history timestamps
func WithClock(now func() time.Time) func(b *Builder) {
	return func(b *Builder) {
		b.factoryOptions = append(b.factoryOptions, esx.WithClock(now))
	}
}

// WithLocation sets the time zone survey names and the project history are written in
func WithLocation(loc *time.Location) func(b *Builder) {
	return func(b *Builder) {
		b.location = loc
	}
}

// WithLogger sets the logger for the builder
func WithLogger(logger *slog.Logger) func(b *Builder) {
	return func(b *Builder) {
		b.logger = logger.With(slog.String("component", "report"))
	}
}

// Builder builds report bundles.
type Builder struct {
	factoryOptions []func(f *esx.Factory)
	factory        *esx.Factory
	location       *time.Location
	logger         *slog.Logger
}

// NewBuilder creates a Builder with random identifiers, the system clock,
// local time and a discard logger.
func NewBuilder(options ...func(b *Builder)) *Builder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	b := Builder{
		location: time.Local,
		logger:   logger,
	}

	for _, option := range options {
		option(&b)
	}

	b.factory = esx.NewFactory(b.factoryOptions...)
	return &b
}

// buildState accumulates the documents of one build. It never escapes Build.
type buildState struct {
	measurements *orderedIndex // bssid -> position in bundle.AccessPointMeasurements
	floorPlanID  string
	bundle       *Bundle
}

func (s *buildState) measurementID(bssid string) (string, bool) {
	pos, ok := s.measurements.IndexOf(bssid)
	if !ok {
		return "", false
	}
	return s.bundle.AccessPointMeasurements.AccessPointMeasurements[pos].ID, true
}

// Build converts the input into a Bundle. It fails only when in.Map is nil,
// in which case no partial result is returned.
func (b *Builder) Build(in Input) (*Bundle, error) {
	if in.Map == nil {
		return nil, ErrNoFloorPlan
	}

	state := &buildState{
		measurements: newOrderedIndex(),
		bundle: &Bundle{
			Surveys:      make(map[string]esx.SurveysDocument),
			Tracks:       make(map[string][]byte),
			ImageSources: make(map[string]string),
		},
	}

	b.addFloorPlan(state, in.Map, in.MetersPerUnit)
	b.addMeasurements(state, in.ScanPoints, in.Sessions)

	for _, point := range in.ScanPoints {
		b.addStationarySurvey(state, point)
	}
	for i := range in.Sessions {
		b.addContinuousSurvey(state, &in.Sessions[i])
	}

	b.addNotes(state, in.Notes)
	b.addProject(state, in.Map, in.Thumbnail)
	b.fillEmpty(state.bundle)

	b.logger.Debug("report built",
		slog.Int("measurements", state.measurements.Len()),
		slog.Int("surveys", len(state.bundle.SurveyIDs)),
		slog.Int("notes", len(state.bundle.Notes.Notes)),
	)

	return state.bundle, nil
}

func (b *Builder) addFloorPlan(state *buildState, info *survey.MapInfo, metersPerUnit *float64) {
	scale := esx.DefaultMetersPerUnit
	if metersPerUnit != nil {
		scale = *metersPerUnit
	}

	width, height := float64(info.Width), float64(info.Height)
	image := b.factory.Image(imageFormat(info.FileName), width, height)
	plan := b.factory.FloorPlan(baseName(info.FileName), image.ID, width, height, scale)

	state.floorPlanID = plan.ID
	state.bundle.FloorPlans.FloorPlans = []esx.FloorPlan{plan}
	state.bundle.Images.Images = append(state.bundle.Images.Images, image)
	state.bundle.ImageSources[image.ID] = info.FileName
}

// addMeasurements deduplicates networks by bssid across all scan points and
// then all session scans. The first observation of a bssid defines its record.
func (b *Builder) addMeasurements(state *buildState, points []survey.ScanPoint, sessions []survey.ContinuousSession) {
	add := func(n *survey.Network) {
		if _, added := state.measurements.Add(n.BSSID); !added {
			return
		}

		m := b.factory.AccessPointMeasurement(n.BSSID, n.SSID, []int{survey.Channel(n.Frequency)},
			n.Security, n.Technologies, n.InformationElements)
		ap := b.factory.AccessPoint(accessPointName(n.BSSID))
		radio := b.factory.MeasuredRadio(ap.ID, m.ID)

		bundle := state.bundle
		bundle.AccessPointMeasurements.AccessPointMeasurements = append(bundle.AccessPointMeasurements.AccessPointMeasurements, m)
		bundle.AccessPoints.AccessPoints = append(bundle.AccessPoints.AccessPoints, ap)
		bundle.MeasuredRadios.MeasuredRadios = append(bundle.MeasuredRadios.MeasuredRadios, radio)
	}

	for i := range points {
		for j := range points[i].Networks {
			add(&points[i].Networks[j])
		}
	}
	for i := range sessions {
		for j := range sessions[i].Scans {
			for k := range sessions[i].Scans[j].Networks {
				add(&sessions[i].Scans[j].Networks[k])
			}
		}
	}
}

func (b *Builder) addStationarySurvey(state *buildState, point survey.ScanPoint) {
	local := newOrderedIndex()
	entries := make([]track.Entry, 0, len(point.Networks))
	for _, n := range point.Networks {
		if _, ok := state.measurements.IndexOf(n.BSSID); !ok {
			continue
		}
		idx, _ := local.Add(n.BSSID)
		entries = append(entries, newEntry(stationaryTime, idx, n))
	}
	slices.SortStableFunc(entries, func(x, y track.Entry) int {
		return cmp.Compare(x.AP, y.AP)
	})

	location := esx.Location{X: point.X, Y: point.Y}
	b.addSurvey(state, entries, local, esx.SurveyParams{
		Name:      point.Timestamp.In(b.location).Format(surveyNameLayout),
		Start:     point.Timestamp,
		Duration:  esx.StopAndGoDuration,
		RouteType: esx.RouteStopAndGo,
		RoutePoints: [][]esx.RoutePoint{{
			{Time: esx.StopAndGoPathStart, Location: location},
			{Time: esx.StopAndGoPathEnd, Location: location},
		}},
	}, []esx.Scanning{{StartTime: esx.StopAndGoPathStart, EndTime: esx.StopAndGoScanEnd}})
}

func (b *Builder) addContinuousSurvey(state *buildState, session *survey.ContinuousSession) {
	local := newOrderedIndex()
	for _, scan := range session.Scans {
		for _, n := range scan.Networks {
			if _, ok := state.measurements.IndexOf(n.BSSID); ok {
				local.Add(n.BSSID)
			}
		}
	}

	var entries []track.Entry
	scannings := make([]esx.Scanning, 0, len(session.Scans))
	for _, scan := range session.Scans {
		start := scan.StartedAt()
		for _, n := range scan.Networks {
			if idx, ok := local.IndexOf(n.BSSID); ok {
				entries = append(entries, newEntry(start, idx, n))
			}
		}
		scannings = append(scannings, esx.Scanning{
			StartTime: start * nsPerMs,
			EndTime:   scan.CompletedAt * nsPerMs,
		})
	}

	// Equal timestamps form one scan block, so the order must be strict
	slices.SortStableFunc(entries, func(x, y track.Entry) int {
		return cmp.Or(cmp.Compare(x.Time, y.Time), cmp.Compare(x.AP, y.AP))
	})

	path := make([]esx.RoutePoint, 0, len(session.Waypoints))
	for _, wp := range session.Waypoints {
		path = append(path, esx.RoutePoint{
			Time:     wp.Time * nsPerMs,
			Location: esx.Location{X: wp.X, Y: wp.Y},
		})
	}

	b.addSurvey(state, entries, local, esx.SurveyParams{
		Name:        session.Start.In(b.location).Format(surveyNameLayout) + continuousSuffix,
		Start:       session.Start,
		Duration:    session.Duration().Nanoseconds(),
		RouteType:   esx.RouteContinuous,
		RoutePoints: [][]esx.RoutePoint{path},
	}, scannings)
}

// addSurvey encodes entries and records the survey, its lookup and its track.
// local maps the access point indices used by entries to bssids.
func (b *Builder) addSurvey(state *buildState, entries []track.Entry, local *orderedIndex, params esx.SurveyParams, scannings []esx.Scanning) {
	measurementIDs := make([]string, 0, local.Len())
	for _, bssid := range local.Keys() {
		id, _ := state.measurementID(bssid)
		measurementIDs = append(measurementIDs, id)
	}

	params.FloorPlanID = state.floorPlanID
	params.Track = b.factory.WifiTrack(measurementIDs, scannings)
	s := b.factory.Survey(params)

	bundle := state.bundle
	bundle.Surveys[s.ID] = esx.SurveysDocument{Surveys: []esx.Survey{s}}
	bundle.SurveyIDs = append(bundle.SurveyIDs, s.ID)
	bundle.SurveyLookups.SurveyLookups = append(bundle.SurveyLookups.SurveyLookups, b.factory.SurveyLookup(s.ID, state.floorPlanID))
	bundle.Tracks[params.Track.BinaryFileID] = track.Serialize(entries)

	b.logger.Debug("survey added",
		slog.String("surveyID", s.ID),
		slog.String("routeType", s.RouteType),
		slog.Int("accessPoints", len(measurementIDs)),
		slog.Int("entries", len(entries)),
	)
}

func (b *Builder) addNotes(state *buildState, notes []survey.Note) {
	bundle := state.bundle
	for _, n := range notes {
		var imageID string
		if n.Photo != nil {
			image := b.factory.Image(imageFormat(n.Photo.FileName), float64(n.Photo.Width), float64(n.Photo.Height))
			imageID = image.ID
			bundle.Images.Images = append(bundle.Images.Images, image)
			bundle.ImageSources[image.ID] = n.Photo.FileName
		}

		note := b.factory.Note(n.Text, imageID)
		bundle.Notes.Notes = append(bundle.Notes.Notes, note)
		bundle.PictureNotes.PictureNotes = append(bundle.PictureNotes.PictureNotes,
			b.factory.PictureNote(state.floorPlanID, n.X, n.Y, note.ID))
	}
}

func (b *Builder) addProject(state *buildState, info *survey.MapInfo, thumbnail []byte) {
	var data string
	if len(thumbnail) > 0 {
		data = base64.StdEncoding.EncodeToString(thumbnail)
	}

	project := b.factory.Project(projectPrefix+baseName(info.FileName), state.floorPlanID, data)
	state.bundle.Project = esx.ProjectDocument{Project: project}
	state.bundle.ProjectHistories = esx.ProjectHistoriesDocument{
		ProjectHistories: []esx.ProjectHistory{b.factory.ProjectHistory(project, b.location)},
	}
}

// fillEmpty replaces nil collections so that they are written as [] rather than null.
func (b *Builder) fillEmpty(bundle *Bundle) {
	if bundle.AccessPointMeasurements.AccessPointMeasurements == nil {
		bundle.AccessPointMeasurements.AccessPointMeasurements = []esx.AccessPointMeasurement{}
	}
	if bundle.AccessPoints.AccessPoints == nil {
		bundle.AccessPoints.AccessPoints = []esx.AccessPoint{}
	}
	if bundle.MeasuredRadios.MeasuredRadios == nil {
		bundle.MeasuredRadios.MeasuredRadios = []esx.MeasuredRadio{}
	}
	if bundle.SurveyLookups.SurveyLookups == nil {
		bundle.SurveyLookups.SurveyLookups = []esx.SurveyLookup{}
	}
	if bundle.Notes.Notes == nil {
		bundle.Notes.Notes = []esx.Note{}
	}
	if bundle.PictureNotes.PictureNotes == nil {
		bundle.PictureNotes.PictureNotes = []esx.PictureNote{}
	}
}

// newEntry narrows an observation to the track field widths. Out of range
// values wrap.
func newEntry(timeMs int64, idx int, n survey.Network) track.Entry {
	return track.Entry{
		Time:      int32(timeMs),
		AP:        int16(idx),
		Signal:    int8(n.Level),
		Frequency: int32(n.Frequency),
	}
}

// accessPointName derives a display name from the last two octets of mac.
func accessPointName(mac string) string {
	octets := strings.Split(mac, ":")
	if len(octets) >= 6 {
		return apNamePrefix + octets[4] + ":" + octets[5]
	}
	return apNamePrefix + strings.ReplaceAll(mac, ":", "")
}

func baseName(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

// imageFormat returns the upper-cased file extension, or JPEG without one.
func imageFormat(fileName string) string {
	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if ext == "" {
		return esx.DefaultImageType
	}
	return strings.ToUpper(ext)
}
