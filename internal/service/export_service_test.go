package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/storage"
)

type fakeTimetableViewer struct {
	resp *dto.TimetableResponse
	err  error
}

func (f *fakeTimetableViewer) Current(ctx context.Context, filter models.TimetableFilter) (*dto.TimetableResponse, error) {
	return f.resp, f.err
}

func (f *fakeTimetableViewer) ByGeneration(ctx context.Context, generationID string, filter models.TimetableFilter) (*dto.TimetableResponse, error) {
	return f.resp, f.err
}

func newExportFixture(t *testing.T, resp *dto.TimetableResponse) (*ExportService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewExportService(&fakeTimetableViewer{resp: resp}, store, signer,
		ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(), nil, nil)
	return svc, dir
}

func exportView() *dto.TimetableResponse {
	return &dto.TimetableResponse{
		GenerationID: "gen-1",
		Entries: []dto.TimetableEntry{
			{
				CourseCode: "CS101", TeacherName: "Dr. Rao", SectionName: "BSc-1A",
				RoomNumber: "101", Day: "Monday", Period: 1,
				StartTime: "09:00", EndTime: "10:00",
			},
			{
				CourseCode: "CS101L", IsLab: true, TeacherName: "Dr. Rao", SectionName: "BSc-1A",
				RoomNumber: "Lab-1", Day: "Tuesday", Period: 2,
				StartTime: "10:00", EndTime: "11:00",
			},
		},
	}
}

func TestExportServiceRendersCSV(t *testing.T) {
	svc, dir := newExportFixture(t, exportView())

	result, err := svc.Export(context.Background(), "", ExportFormatCSV, models.TimetableFilter{})
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, result.Format)
	assert.NotEmpty(t, result.Token)
	assert.Contains(t, result.URL, "/api/v1/exports/download?token=")

	content, err := os.ReadFile(filepath.Join(dir, result.RelativePath))
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "Day,Period,Time,Course,Teacher,Section,Room")
	assert.Contains(t, text, "Monday,1,09:00-10:00,CS101,Dr. Rao,BSc-1A,101")
	assert.Contains(t, text, "CS101L (Lab)")
}

func TestExportServiceRendersPDF(t *testing.T) {
	svc, dir := newExportFixture(t, exportView())

	result, err := svc.Export(context.Background(), "gen-1", ExportFormatPDF, models.TimetableFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))

	content, err := os.ReadFile(filepath.Join(dir, result.RelativePath))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
}

func TestExportServiceDownloadRoundTrip(t *testing.T) {
	svc, _ := newExportFixture(t, exportView())

	result, err := svc.Export(context.Background(), "", ExportFormatCSV, models.TimetableFilter{})
	require.NoError(t, err)

	file, name, err := svc.OpenDownload(result.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, filepath.Base(result.RelativePath), name)
}

func TestExportServiceRejectsTamperedToken(t *testing.T) {
	svc, _ := newExportFixture(t, exportView())

	result, err := svc.Export(context.Background(), "", ExportFormatCSV, models.TimetableFilter{})
	require.NoError(t, err)

	_, _, err = svc.OpenDownload(result.Token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc, _ := newExportFixture(t, exportView())

	_, err := svc.Export(context.Background(), "", ExportFormat("xlsx"), models.TimetableFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceEmptyTimetable(t *testing.T) {
	svc, _ := newExportFixture(t, &dto.TimetableResponse{GenerationID: "gen-1"})

	_, err := svc.Export(context.Background(), "", ExportFormatCSV, models.TimetableFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
