package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/htechno/wiprober/internal/archive"
	"github.com/htechno/wiprober/internal/esx"
	"github.com/htechno/wiprober/internal/report"
	"github.com/htechno/wiprober/internal/storage"
	"github.com/htechno/wiprober/internal/survey"
	"github.com/htechno/wiprober/internal/thumbnail"
)

// ErrMissingAsset is returned when the assets directory lacks a document the
// generated project refers to.
var ErrMissingAsset = errors.New("missing asset")

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if err := checkAssets(config.Output.AssetsDirectory); err != nil {
		return err
	}

	capture, err := loadCapture(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("failed to load capture: %w", err)
	}

	if config.Storage.Persist && config.Input.CaptureFile != "" {
		if err = persistCapture(ctx, config, capture, logger); err != nil {
			return fmt.Errorf("failed to persist capture: %w", err)
		}
	}

	if err = resolveImageSizes(capture, config.Input.MediaDirectory); err != nil {
		return fmt.Errorf("failed to resolve image sizes: %w", err)
	}

	var thumb []byte
	if config.Report.Thumbnail.Enabled {
		if thumb, err = renderThumbnail(capture, config, logger); err != nil {
			logger.Warn("skipping project thumbnail", slog.String("error", err.Error()))
		}
	}

	loc, err := config.Report.Location()
	if err != nil {
		return err
	}

	metersPerUnit := capture.MetersPerUnit
	if config.Report.MetersPerUnit != nil {
		metersPerUnit = config.Report.MetersPerUnit
	}
	if metersPerUnit == nil {
		logger.Warn("floor plan is not calibrated, using the default scale")
	}

	builder := report.NewBuilder(report.WithLocation(loc), report.WithLogger(logger))
	bundle, err := builder.Build(report.Input{
		ScanPoints:    capture.ScanPoints,
		Sessions:      capture.Sessions,
		Map:           capture.Map,
		MetersPerUnit: metersPerUnit,
		Notes:         capture.Notes,
		Thumbnail:     thumb,
	})
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	logger.Info("report built",
		slog.String("measurements", humanize.Comma(int64(len(bundle.AccessPointMeasurements.AccessPointMeasurements)))),
		slog.String("accessPoints", humanize.Comma(int64(len(bundle.AccessPoints.AccessPoints)))),
		slog.String("surveys", humanize.Comma(int64(len(bundle.SurveyIDs)))),
		slog.String("notes", humanize.Comma(int64(len(bundle.Notes.Notes)))),
	)

	if err = writeArchive(config, bundle, logger); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	return nil
}

func loadCapture(ctx context.Context, config *Config, logger *slog.Logger) (*survey.Capture, error) {
	if config.Input.CaptureFile != "" {
		logger.Info("loading capture file", slog.String("path", config.Input.CaptureFile))
		return survey.LoadCaptureFile(config.Input.CaptureFile)
	}

	if _, err := os.Stat(config.Input.Database); err != nil && os.IsNotExist(err) {
		return nil, fmt.Errorf("database file '%s' does not exist: %w", config.Input.Database, err)
	}

	store := storage.NewSqliteStore(config.Input.Database)
	defer store.Close()

	logger.Info("loading stored capture",
		slog.String("path", config.Input.Database),
		slog.Int64("captureID", config.Input.CaptureID))

	capture, err := store.LoadCapture(ctx, config.Input.CaptureID)
	if err != nil {
		return nil, err
	}
	if err = capture.Validate(); err != nil {
		return nil, err
	}
	return capture, nil
}

func persistCapture(ctx context.Context, config *Config, capture *survey.Capture, logger *slog.Logger) error {
	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	name := capture.Name
	if name == "" {
		name = filepath.Base(config.Input.CaptureFile)
	}

	id, err := store.SaveCapture(ctx, name, capture)
	if err != nil {
		return err
	}

	logger.Info("capture stored",
		slog.String("path", config.Storage.Database),
		slog.Int64("captureID", id),
		slog.String("scanPoints", humanize.Comma(int64(len(capture.ScanPoints)))))

	return nil
}

// resolveImageSizes reads the dimensions the capture left out from the image
// files themselves.
func resolveImageSizes(capture *survey.Capture, mediaDir string) error {
	sizes := []struct {
		fileName      string
		width, height *int
	}{
		{capture.Map.FileName, &capture.Map.Width, &capture.Map.Height},
	}
	for i := range capture.Notes {
		if photo := capture.Notes[i].Photo; photo != nil {
			sizes = append(sizes, struct {
				fileName      string
				width, height *int
			}{photo.FileName, &photo.Width, &photo.Height})
		}
	}

	for _, size := range sizes {
		if *size.width > 0 && *size.height > 0 {
			continue
		}

		w, h, _, err := thumbnail.DecodeConfigFile(mediaPath(mediaDir, size.fileName))
		if err != nil {
			return fmt.Errorf("%s: %w", size.fileName, err)
		}
		*size.width, *size.height = w, h
	}

	return nil
}

func renderThumbnail(capture *survey.Capture, config *Config, logger *slog.Logger) ([]byte, error) {
	floorPlan, err := thumbnail.LoadFile(mediaPath(config.Input.MediaDirectory, capture.Map.FileName))
	if err != nil {
		return nil, err
	}

	options := []func(r *thumbnail.Renderer){
		thumbnail.WithSize(config.Report.Thumbnail.Width, config.Report.Thumbnail.Height),
		thumbnail.WithLogger(logger),
	}
	if bounds, ok := config.Report.Thumbnail.SignalBounds(); ok {
		options = append(options, thumbnail.WithSignalBounds(bounds))
	}

	renderer, err := thumbnail.NewRenderer(options...)
	if err != nil {
		return nil, err
	}

	points := thumbnail.PointsFromCapture(capture)
	caption := fmt.Sprintf("%s, %s points", capture.Name, humanize.Comma(int64(len(points))))
	if capture.Name == "" {
		caption = fmt.Sprintf("%s points", humanize.Comma(int64(len(points))))
	}

	return renderer.Render(floorPlan, points, caption)
}

func writeArchive(config *Config, bundle *report.Bundle, logger *slog.Logger) (err error) {
	w, err := archive.Create(config.Output.File, archive.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, w.Close())
		if err != nil {
			_ = os.Remove(config.Output.File)
		}
	}()

	if err = archive.WriteBundle(w, bundle, archive.DirResolver(config.Input.MediaDirectory)); err != nil {
		return err
	}

	if err = w.CopyDir(config.Output.AssetsDirectory); err != nil {
		return err
	}

	logger.Info("archive written",
		slog.String("path", config.Output.File),
		slog.String("entries", humanize.Comma(int64(w.Entries()))),
		slog.String("size", humanize.Bytes(uint64(w.Written()))))

	return nil
}

// checkAssets makes sure dir holds every document the project and its wifi
// tracks reference by id.
func checkAssets(dir string) error {
	for _, name := range esx.RequiredAssets {
		stat, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s not found in '%s'", ErrMissingAsset, name, dir)
			}
			return fmt.Errorf("checking asset %s: %w", name, err)
		}
		if !stat.Mode().IsRegular() {
			return fmt.Errorf("%w: %s in '%s' is not a regular file", ErrMissingAsset, name, dir)
		}
	}
	return nil
}

func mediaPath(dir, fileName string) string {
	return filepath.Join(dir, filepath.Base(fileName))
}
