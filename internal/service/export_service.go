package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/export"
	"github.com/arka-edu/timetable-api/pkg/storage"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type timetableViewer interface {
	Current(ctx context.Context, filter models.TimetableFilter) (*dto.TimetableResponse, error)
	ByGeneration(ctx context.Context, generationID string, filter models.TimetableFilter) (*dto.TimetableResponse, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures a rendered export and its download token.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders timetable views into downloadable CSV or PDF
// files and archives them behind signed URLs.
type ExportService struct {
	timetable timetableViewer
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

func NewExportService(timetable timetableViewer, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		timetable: timetable,
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

var exportHeaders = []string{"Day", "Period", "Time", "Course", "Teacher", "Section", "Room"}

// Export renders one generation's timetable (the latest successful one
// when generationID is empty) and archives the file.
func (s *ExportService) Export(ctx context.Context, generationID string, format ExportFormat, filter models.TimetableFilter) (*ExportResult, error) {
	var (
		view *dto.TimetableResponse
		err  error
	)
	if generationID == "" {
		view, err = s.timetable.Current(ctx, filter)
	} else {
		view, err = s.timetable.ByGeneration(ctx, generationID, filter)
	}
	if err != nil {
		return nil, err
	}
	if len(view.Entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable entries to export")
	}

	data := buildExportDataset(view.Entries)
	var (
		rendered []byte
		ext      string
	)
	switch format {
	case ExportFormatCSV:
		rendered, err = s.csv.Render(data)
		ext = "csv"
	case ExportFormatPDF:
		rendered, err = s.pdf.Render(data, "Weekly Timetable")
		ext = "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("timetable_%s_%d.%s", view.GenerationID, time.Now().Unix(), ext)
	relPath, err := s.storage.Save(filename, rendered)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive export")
	}

	token, expiresAt, err := s.signer.Generate(view.GenerationID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	s.logger.Info("timetable exported",
		zap.String("generation_id", view.GenerationID),
		zap.String("format", string(format)),
		zap.Int("entries", len(view.Entries)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          strings.TrimSuffix(s.cfg.APIPrefix, "/") + "/exports/download?token=" + token,
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// OpenDownload validates a signed token and opens the archived file.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, filepath.Base(relPath), nil
}

// CleanupExpired deletes archived exports older than the result TTL.
func (s *ExportService) CleanupExpired() (int, error) {
	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clean up exports")
	}
	return len(removed), nil
}

func buildExportDataset(entries []dto.TimetableEntry) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		course := e.CourseCode
		if e.IsLab {
			course += " (Lab)"
		}
		rows = append(rows, map[string]string{
			"Day":     e.Day,
			"Period":  fmt.Sprintf("%d", e.Period),
			"Time":    e.StartTime + "-" + e.EndTime,
			"Course":  course,
			"Teacher": e.TeacherName,
			"Section": e.SectionName,
			"Room":    e.RoomNumber,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
