package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/engine"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

const timetableCacheTTL = 10 * time.Minute

type timetableStore interface {
	ListByGeneration(ctx context.Context, generationID string, filter models.TimetableFilter) ([]models.TimetableSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimetableSlot, error)
	UpdatePlacements(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error
	SetLocked(ctx context.Context, id string, locked bool) error
}

type runGuard interface {
	Active() bool
}

type latestRunSource interface {
	FindLatestSuccessful(ctx context.Context) (*models.GenerationRun, error)
	FindByID(ctx context.Context, id string) (*models.GenerationRun, error)
}

// TimetableService serves published timetable views and applies manual
// edits. Views are enriched against a fresh roster snapshot and cached
// until the next generation or edit invalidates them.
type TimetableService struct {
	store     timetableStore
	runs      latestRunSource
	catalog   catalogSource
	db        generationDB
	cache     *CacheService
	metrics   *MetricsService
	guard     runGuard
	validator *validator.Validate
	logger    *zap.Logger
}

func NewTimetableService(
	store timetableStore,
	runs latestRunSource,
	catalog catalogSource,
	db generationDB,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		store:     store,
		runs:      runs,
		catalog:   catalog,
		db:        db,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// AttachRunGuard serializes manual edits against generation runs. A
// move applied mid-run would be overwritten by the wholesale publish.
func (s *TimetableService) AttachRunGuard(g runGuard) {
	s.guard = g
}

// Current returns the latest successful generation's timetable,
// optionally narrowed to one section, teacher or room.
func (s *TimetableService) Current(ctx context.Context, filter models.TimetableFilter) (*dto.TimetableResponse, error) {
	run, err := s.runs.FindLatestSuccessful(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no published timetable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve latest generation")
	}
	return s.ByGeneration(ctx, run.ID, filter)
}

// ByGeneration returns one generation's timetable view.
func (s *TimetableService) ByGeneration(ctx context.Context, generationID string, filter models.TimetableFilter) (*dto.TimetableResponse, error) {
	key := timetableCacheKey(generationID, filter)
	if s.cache != nil {
		var cached dto.TimetableResponse
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	records, err := s.store.ListByGeneration(ctx, generationID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster for timetable view")
	}

	resp := &dto.TimetableResponse{
		GenerationID: generationID,
		Entries:      make([]dto.TimetableEntry, 0, len(records)),
	}
	for _, rec := range records {
		resp.Entries = append(resp.Entries, s.enrich(catalog, rec))
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, resp, timetableCacheTTL)
	}
	return resp, nil
}

func (s *TimetableService) enrich(catalog *engine.Catalog, rec models.TimetableSlot) dto.TimetableEntry {
	entry := dto.TimetableEntry{
		ID:           rec.ID,
		OfferingID:   rec.OfferingID,
		SessionIndex: rec.SessionIndex,
		BlockIndex:   rec.BlockIndex,
		Locked:       rec.Locked,
	}
	if course, ok := catalog.Course(rec.CourseID); ok {
		entry.CourseCode = course.Code
		entry.CourseName = course.Name
		entry.IsLab = course.IsLab
	}
	if teacher, ok := catalog.Teacher(rec.TeacherID); ok {
		entry.TeacherName = teacher.FullName
	}
	if section, ok := catalog.Section(rec.SectionID); ok {
		entry.SectionName = section.Name
	}
	if room, ok := catalog.Room(rec.RoomID); ok {
		entry.RoomNumber = room.Number
	}
	if slot, ok := catalog.Slot(rec.TimeSlotID); ok {
		entry.DayOfWeek = slot.DayOfWeek
		entry.Day = models.DayName(slot.DayOfWeek)
		entry.Period = slot.Period
		entry.StartTime = slot.StartTime
		entry.EndTime = slot.EndTime
	}
	return entry
}

// Move relocates one entry, carrying its whole lab block along, after
// revalidating every hard rule against the live timetable. The update
// is all-or-nothing.
func (s *TimetableService) Move(ctx context.Context, slotID string, req dto.MoveSlotRequest) (*dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move request")
	}
	if s.guard != nil && s.guard.Active() {
		return nil, appErrors.Clone(appErrors.ErrRunInProgress, "a generation run is in progress, retry after it finishes")
	}

	target, err := s.store.FindByID(ctx, slotID)
	if err != nil {
		if err == sql.ErrNoRows {
			s.observeMove("not_found")
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slot")
	}
	if target.Locked {
		s.observeMove("rejected")
		return nil, appErrors.Clone(appErrors.ErrInvalidMove, "slot is locked")
	}

	records, err := s.store.ListByGeneration(ctx, target.GenerationID, models.TimetableFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster for move validation")
	}

	updated, err := engine.NewMoveValidator(catalog).Move(records, engine.MoveRequest{
		SlotID:        slotID,
		NewTimeSlotID: req.NewTimeSlotID,
		NewRoomID:     req.NewRoomID,
	})
	if err != nil {
		var ime *engine.InvalidMoveError
		switch {
		case errors.Is(err, engine.ErrSlotNotFound):
			s.observeMove("not_found")
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable slot not found")
		case errors.As(err, &ime):
			s.observeMove("rejected")
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidMove.Code, appErrors.ErrInvalidMove.Status, ime.Error())
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "move validation failed")
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	defer tx.Rollback()
	if err := s.store.UpdatePlacements(ctx, tx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist move")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit move")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "timetable:*")
	}
	s.observeMove("applied")
	s.logger.Info("timetable slot moved",
		zap.String("slot_id", slotID),
		zap.String("new_time_slot_id", req.NewTimeSlotID),
		zap.Int("block_size", len(updated)))

	resp := &dto.TimetableResponse{
		GenerationID: target.GenerationID,
		Entries:      make([]dto.TimetableEntry, 0, len(updated)),
	}
	for _, rec := range updated {
		resp.Entries = append(resp.Entries, s.enrich(catalog, rec))
	}
	return resp, nil
}

// SetLocked pins or unpins one entry against future manual moves.
func (s *TimetableService) SetLocked(ctx context.Context, slotID string, locked bool) error {
	if _, err := s.store.FindByID(ctx, slotID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slot")
	}
	if err := s.store.SetLocked(ctx, slotID, locked); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lock")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "timetable:*")
	}
	return nil
}

func (s *TimetableService) observeMove(result string) {
	if s.metrics != nil {
		s.metrics.ObserveMove(result)
	}
}

func timetableCacheKey(generationID string, f models.TimetableFilter) string {
	return fmt.Sprintf("timetable:%s:s=%s:t=%s:r=%s", generationID, f.SectionID, f.TeacherID, f.RoomID)
}
