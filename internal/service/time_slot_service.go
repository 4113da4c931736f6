package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

type timeSlotRepository interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
	ReplaceGrid(ctx context.Context, slots []models.TimeSlot) error
}

// TimeSlotService manages the weekly period grid. The grid is replaced
// wholesale rather than edited slot by slot so the week always stays
// internally consistent.
type TimeSlotService struct {
	repo      timeSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewTimeSlotService(repo timeSlotRepository, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, validator: validate, logger: logger}
}

func (s *TimeSlotService) List(ctx context.Context) ([]models.TimeSlot, error) {
	slots, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, nil
}

// ReplaceGrid swaps the whole weekly grid atomically. Duplicate
// (day, period) pairs are rejected before anything is written.
func (s *TimeSlotService) ReplaceGrid(ctx context.Context, req dto.ReplaceTimeSlotsRequest) ([]models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot grid")
	}

	seen := make(map[string]bool, len(req.Slots))
	slots := make([]models.TimeSlot, 0, len(req.Slots))
	for _, in := range req.Slots {
		key := fmt.Sprintf("%d:%d", in.DayOfWeek, in.Period)
		if seen[key] {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("duplicate time slot for day %d period %d", in.DayOfWeek, in.Period))
		}
		seen[key] = true
		slots = append(slots, models.TimeSlot{
			ID:        uuid.NewString(),
			DayOfWeek: in.DayOfWeek,
			Period:    in.Period,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			IsBreak:   in.IsBreak,
			Active:    true,
		})
	}

	if err := s.repo.ReplaceGrid(ctx, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace time slot grid")
	}
	s.logger.Info("time slot grid replaced", zap.Int("slots", len(slots)))
	return slots, nil
}
