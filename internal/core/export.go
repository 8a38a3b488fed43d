package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/formlog/internal/export"
	"github.com/JonMunkholm/formlog/internal/logging"
	"github.com/google/uuid"
)

// ExportRequest selects what to export and how.
type ExportRequest struct {
	Profile  string
	Language string
	Filter   EntryFilter
}

// Exporter builds an exporter for the named profile with headers translated
// into language.
func (s *Service) Exporter(profileName, language string, opts ...export.Option) (*export.Exporter, Profile, error) {
	profile, ok := s.profiles.Get(profileName)
	if !ok {
		return nil, Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, profileName)
	}

	format, err := export.LookupFormat(profile.Format)
	if err != nil {
		return nil, Profile{}, err
	}

	if s.labels != nil {
		opts = append([]export.Option{export.WithTranslator(s.labels.Translator(language))}, opts...)
	}

	exp := export.New(format, opts...)
	exp.SetConfiguration(profile.Configuration)
	return exp, profile, nil
}

// Export streams the selected entries to w and returns the number of rows
// written. Callers pick the content type from exp.Format() before writing.
func (s *Service) Export(ctx context.Context, w io.Writer, exp *export.Exporter, req ExportRequest) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, ExportTimeout)
	defer cancel()

	start := s.now()
	rows, err := exp.WriteTo(ctx, w, s.StreamEntries(ctx, req.Filter))
	s.finishExport(ctx, req, exp, rows, start, err)
	return rows, err
}

// ExportToDir writes the selected entries to {fileBasename}.{ext} in dir.
func (s *Service) ExportToDir(ctx context.Context, dir string, req ExportRequest) (export.Result, error) {
	exp, _, err := s.Exporter(req.Profile, req.Language, export.WithOutputDir(dir))
	if err != nil {
		return export.Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, ExportTimeout)
	defer cancel()

	start := s.now()
	result, err := exp.Dump(ctx, s.StreamEntries(ctx, req.Filter))
	s.finishExport(ctx, req, exp, result.Rows, start, err)
	return result, err
}

func (s *Service) finishExport(ctx context.Context, req ExportRequest, exp *export.Exporter, rows int, start time.Time, err error) {
	profile := req.Profile
	if profile == "" {
		profile = DefaultProfileName
	}
	format := exp.Format().Name()
	elapsed := s.now().Sub(start)

	logger := logging.WithFields(ctx,
		"export_id", uuid.NewString(),
		"profile", profile,
		"format", format,
	)

	reason := exportFailureReason(err)
	s.metrics.ExportFinished(profile, format, rows, elapsed, reason)

	if err != nil {
		logger.Error("export failed", "error", err, "rows", rows, "reason", reason)
		return
	}
	logger.Info("export completed", "rows", rows, "duration_ms", elapsed.Milliseconds())
}

func exportFailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case export.IsConfigurationError(err):
		return "configuration"
	case export.IsIOError(err):
		return "io"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "source"
	}
}
