package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/engine"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

type fakeTimetableStore struct {
	records []models.TimetableSlot
	updated []models.TimetableSlot
	locked  map[string]bool
}

func (f *fakeTimetableStore) ListByGeneration(ctx context.Context, generationID string, filter models.TimetableFilter) ([]models.TimetableSlot, error) {
	out := make([]models.TimetableSlot, 0, len(f.records))
	for _, rec := range f.records {
		if rec.GenerationID != generationID {
			continue
		}
		if filter.SectionID != "" && rec.SectionID != filter.SectionID {
			continue
		}
		if filter.TeacherID != "" && rec.TeacherID != filter.TeacherID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeTimetableStore) FindByID(ctx context.Context, id string) (*models.TimetableSlot, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTimetableStore) UpdatePlacements(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	f.updated = slots
	return nil
}

func (f *fakeTimetableStore) SetLocked(ctx context.Context, id string, locked bool) error {
	if f.locked == nil {
		f.locked = map[string]bool{}
	}
	f.locked[id] = locked
	return nil
}

func serviceCatalog(t *testing.T) *engine.Catalog {
	t.Helper()
	catalog, err := engine.NewCatalog(
		[]models.Teacher{{ID: "t-1", FullName: "Dr. Rao", MaxWeeklyLoad: 10, Active: true}},
		[]models.Course{{ID: "c-1", Code: "CS101", Name: "Programming", SessionsPerWeek: 1, SessionDuration: 1, Program: "BSc", Semester: "1", Active: true}},
		[]models.Section{{ID: "s-1", Name: "BSc-1A", Program: "BSc", Semester: "1", StudentCount: 25, Active: true}},
		[]models.Room{
			{ID: "r-1", Number: "101", Type: models.RoomTypeClassroom, Capacity: 40, Active: true},
			{ID: "r-2", Number: "102", Type: models.RoomTypeClassroom, Capacity: 40, Active: true},
		},
		[]models.TimeSlot{
			{ID: "mon-1", DayOfWeek: 0, Period: 1, StartTime: "09:00", EndTime: "10:00", Active: true},
			{ID: "mon-2", DayOfWeek: 0, Period: 2, StartTime: "10:00", EndTime: "11:00", Active: true},
		},
		[]models.Offering{{ID: "o-1", TeacherID: "t-1", CourseID: "c-1", SectionID: "s-1"}},
		nil,
	)
	require.NoError(t, err)
	return catalog
}

func newTimetableFixture(t *testing.T, records []models.TimetableSlot) (*TimetableService, *fakeTimetableStore, *fakeRunStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	store := &fakeTimetableStore{records: records}
	runs := newFakeRunStore()
	runs.finished = &models.GenerationRun{ID: "gen-1", Status: models.GenerationStatusSuccess}

	svc := NewTimetableService(store, runs, &fakeCatalogSource{catalog: serviceCatalog(t)},
		sqlxDB, nil, nil, nil, zap.NewNop())
	return svc, store, runs, mock, func() { sqlxDB.Close() }
}

func scheduledSlot(id, timeSlotID, roomID string, locked bool) models.TimetableSlot {
	return models.TimetableSlot{
		ID:           id,
		GenerationID: "gen-1",
		OfferingID:   "o-1",
		CourseID:     "c-1",
		TeacherID:    "t-1",
		SectionID:    "s-1",
		RoomID:       roomID,
		TimeSlotID:   timeSlotID,
		Locked:       locked,
	}
}

func TestTimetableServiceCurrentEnrichesEntries(t *testing.T) {
	svc, _, _, _, closeFn := newTimetableFixture(t, []models.TimetableSlot{
		scheduledSlot("slot-1", "mon-1", "r-1", false),
	})
	defer closeFn()

	resp, err := svc.Current(context.Background(), models.TimetableFilter{})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", resp.GenerationID)
	require.Len(t, resp.Entries, 1)

	entry := resp.Entries[0]
	assert.Equal(t, "CS101", entry.CourseCode)
	assert.Equal(t, "Dr. Rao", entry.TeacherName)
	assert.Equal(t, "BSc-1A", entry.SectionName)
	assert.Equal(t, "101", entry.RoomNumber)
	assert.Equal(t, "Monday", entry.Day)
	assert.Equal(t, 1, entry.Period)
	assert.Equal(t, "09:00", entry.StartTime)
}

func TestTimetableServiceCurrentWithoutPublishedRun(t *testing.T) {
	svc, _, runs, _, closeFn := newTimetableFixture(t, nil)
	defer closeFn()
	runs.finished = nil

	_, err := svc.Current(context.Background(), models.TimetableFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceMoveRelocatesSlot(t *testing.T) {
	svc, store, _, mock, closeFn := newTimetableFixture(t, []models.TimetableSlot{
		scheduledSlot("slot-1", "mon-1", "r-1", false),
	})
	defer closeFn()

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Move(context.Background(), "slot-1", dto.MoveSlotRequest{
		NewTimeSlotID: "mon-2",
		NewRoomID:     "r-2",
	})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, 2, resp.Entries[0].Period)
	assert.Equal(t, "102", resp.Entries[0].RoomNumber)

	require.Len(t, store.updated, 1)
	assert.Equal(t, "mon-2", store.updated[0].TimeSlotID)
	assert.Equal(t, "r-2", store.updated[0].RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceMoveRejectsLockedSlot(t *testing.T) {
	svc, store, _, _, closeFn := newTimetableFixture(t, []models.TimetableSlot{
		scheduledSlot("slot-1", "mon-1", "r-1", true),
	})
	defer closeFn()

	_, err := svc.Move(context.Background(), "slot-1", dto.MoveSlotRequest{NewTimeSlotID: "mon-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidMove.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.updated)
}

func TestTimetableServiceMoveSurfacesEngineRejection(t *testing.T) {
	// Both entries belong to the same section, so stacking them on one
	// period must be rejected.
	second := scheduledSlot("slot-2", "mon-2", "r-2", false)
	svc, store, _, _, closeFn := newTimetableFixture(t, []models.TimetableSlot{
		scheduledSlot("slot-1", "mon-1", "r-1", false),
		second,
	})
	defer closeFn()

	_, err := svc.Move(context.Background(), "slot-1", dto.MoveSlotRequest{NewTimeSlotID: "mon-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidMove.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.updated)
}

func TestTimetableServiceMoveUnknownSlot(t *testing.T) {
	svc, _, _, _, closeFn := newTimetableFixture(t, nil)
	defer closeFn()

	_, err := svc.Move(context.Background(), "slot-x", dto.MoveSlotRequest{NewTimeSlotID: "mon-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceSetLocked(t *testing.T) {
	svc, store, _, _, closeFn := newTimetableFixture(t, []models.TimetableSlot{
		scheduledSlot("slot-1", "mon-1", "r-1", false),
	})
	defer closeFn()

	require.NoError(t, svc.SetLocked(context.Background(), "slot-1", true))
	assert.True(t, store.locked["slot-1"])

	err := svc.SetLocked(context.Background(), "slot-x", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

type stubRunGuard struct {
	busy bool
}

func (g *stubRunGuard) Active() bool { return g.busy }

func TestTimetableServiceMoveRejectedWhileGenerationRuns(t *testing.T) {
	svc, store, _, _, closeFn := newTimetableFixture(t, []models.TimetableSlot{
		scheduledSlot("slot-1", "mon-1", "r-1", false),
	})
	defer closeFn()
	svc.AttachRunGuard(&stubRunGuard{busy: true})

	_, err := svc.Move(context.Background(), "slot-1", dto.MoveSlotRequest{NewTimeSlotID: "mon-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRunInProgress.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.updated)
}
