package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"

	"github.com/htechno/wiprober/internal/archive"
	"github.com/htechno/wiprober/internal/esx"
	"github.com/htechno/wiprober/internal/track"
)

// TrackSummary describes one decoded wifi track of a survey.
type TrackSummary struct {
	SurveyID     string
	SurveyName   string
	RouteType    string
	BinaryFileID string

	Scans        int
	Entries      int
	AccessPoints int // Distinct access points referenced by the entries
	Unresolved   int // Entries whose index has no measurement id

	StrongestMAC    string
	StrongestSignal int8
	FirstTime       int32 // Milliseconds, first scan of the track
	LastTime        int32 // Milliseconds, last scan of the track

	scans []track.Scan
	macs  []string // Measurement MACs in track index order
}

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.ArchivePath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("archive file '%s' does not exist: %w", config.ArchivePath, err)
	}

	r, err := archive.OpenReader(config.ArchivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	logger.Info("archive opened",
		slog.String("path", config.ArchivePath),
		slog.String("entries", humanize.Comma(int64(len(r.Names())))))

	summaries, err := Inspect(ctx, r, config.SurveyID)
	if err != nil {
		return err
	}

	for _, s := range summaries {
		logger.Info("track",
			slog.String("survey", s.SurveyName),
			slog.String("routeType", s.RouteType),
			slog.String("binaryFileId", s.BinaryFileID),
			slog.String("scans", humanize.Comma(int64(s.Scans))),
			slog.String("entries", humanize.Comma(int64(s.Entries))),
			slog.Int("accessPoints", s.AccessPoints),
			slog.String("strongest", fmt.Sprintf("%s (%d dBm)", s.StrongestMAC, s.StrongestSignal)),
			slog.Int("firstTime", int(s.FirstTime)),
			slog.Int("lastTime", int(s.LastTime)),
		)
		if s.Unresolved > 0 {
			logger.Warn("track references unknown access points",
				slog.String("binaryFileId", s.BinaryFileID),
				slog.Int("entries", s.Unresolved))
		}

		for _, scan := range s.scans {
			logScan(logger, &s, scan)
		}
	}

	return nil
}

func logScan(logger *slog.Logger, s *TrackSummary, scan track.Scan) {
	if len(scan.Entries) == 0 {
		return
	}

	strongest := scan.Entries[0]
	for _, e := range scan.Entries[1:] {
		if e.Signal > strongest.Signal {
			strongest = e
		}
	}

	logger.Debug("scan",
		slog.String("binaryFileId", s.BinaryFileID),
		slog.Int("seq", int(scan.Seq)),
		slog.Int("time", int(strongest.Time)),
		slog.Int("entries", len(scan.Entries)),
		slog.String("strongest", s.mac(strongest.AP)),
		slog.Int("signal", int(strongest.Signal)),
		slog.Int("frequency", int(strongest.Frequency)),
	)
}

func (s *TrackSummary) mac(ap int16) string {
	if ap < 0 || int(ap) >= len(s.macs) {
		return ""
	}
	return s.macs[ap]
}

// Inspect decodes every wifi track of the archive, or only those of surveyID
// when it is not empty.
func Inspect(ctx context.Context, r *archive.Reader, surveyID string) ([]TrackSummary, error) {
	measurements, err := r.ReadFile(esx.AccessPointMeasurementsFile)
	if err != nil {
		return nil, err
	}

	macs := make(map[string]string)
	gjson.GetBytes(measurements, "accessPointMeasurements").ForEach(func(_, m gjson.Result) bool {
		macs[m.Get("id").String()] = m.Get("mac").String()
		return true
	})

	lookups, err := r.ReadFile(esx.SurveyLookupsFile)
	if err != nil {
		return nil, err
	}

	var surveyIDs []string
	for _, id := range gjson.GetBytes(lookups, "surveyLookups.#.surveyId").Array() {
		if surveyID == "" || id.String() == surveyID {
			surveyIDs = append(surveyIDs, id.String())
		}
	}
	if surveyID != "" && len(surveyIDs) == 0 {
		return nil, fmt.Errorf("survey %s not found", surveyID)
	}

	var summaries []TrackSummary
	for _, id := range surveyIDs {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := r.ReadFile(esx.SurveyFile(id))
		if err != nil {
			return nil, err
		}

		survey := gjson.GetBytes(doc, "surveys.0")
		for _, wifiTrack := range survey.Get("wifiTracks").Array() {
			s := TrackSummary{
				SurveyID:     id,
				SurveyName:   survey.Get("name").String(),
				RouteType:    survey.Get("routeType").String(),
				BinaryFileID: wifiTrack.Get("binaryFileId").String(),
			}
			for _, mID := range wifiTrack.Get("accessPointMeasurementIds").Array() {
				s.macs = append(s.macs, macs[mID.String()])
			}

			if s.scans, err = r.ReadTrack(s.BinaryFileID); err != nil {
				return nil, err
			}
			s.summarize()

			summaries = append(summaries, s)
		}
	}

	return summaries, nil
}

func (s *TrackSummary) summarize() {
	seen := make(map[int16]struct{})
	first := true

	s.Scans = len(s.scans)
	for _, scan := range s.scans {
		for _, e := range scan.Entries {
			s.Entries++

			if first {
				s.FirstTime = e.Time
				s.StrongestMAC, s.StrongestSignal = s.mac(e.AP), e.Signal
				first = false
			}
			s.LastTime = e.Time

			if e.Signal > s.StrongestSignal {
				s.StrongestMAC, s.StrongestSignal = s.mac(e.AP), e.Signal
			}
			if s.mac(e.AP) == "" {
				s.Unresolved++
			}
			seen[e.AP] = struct{}{}
		}
	}
	s.AccessPoints = len(seen)
}
