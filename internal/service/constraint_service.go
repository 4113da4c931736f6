package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

type constraintRepository interface {
	List(ctx context.Context, kind, teacherID string) ([]models.Constraint, error)
	FindByID(ctx context.Context, id string) (*models.Constraint, error)
	Create(ctx context.Context, cn *models.Constraint) error
	Delete(ctx context.Context, id string) error
}

type timeSlotLister interface {
	ListActive(ctx context.Context) ([]models.TimeSlot, error)
}

// ConstraintService manages availability blocks and preferences fed
// into the solver.
type ConstraintService struct {
	repo      constraintRepository
	slots     timeSlotLister
	validator *validator.Validate
	logger    *zap.Logger
}

func NewConstraintService(repo constraintRepository, slots timeSlotLister, validate *validator.Validate, logger *zap.Logger) *ConstraintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConstraintService{repo: repo, slots: slots, validator: validate, logger: logger}
}

func (s *ConstraintService) List(ctx context.Context, kind, teacherID string) ([]models.Constraint, error) {
	constraints, err := s.repo.List(ctx, kind, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list constraints")
	}
	return constraints, nil
}

func (s *ConstraintService) Create(ctx context.Context, req dto.CreateConstraintRequest) (*models.Constraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid constraint payload")
	}
	// A time_preference without teacherId applies to every teacher.
	switch req.Kind {
	case models.ConstraintTeacherUnavailable:
		if req.TeacherID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher unavailability requires teacherId")
		}
	case models.ConstraintRoomUnavailable:
		if req.RoomID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "room constraints require roomId")
		}
	case models.ConstraintSectionPreference:
		if req.SectionID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "section constraints require sectionId")
		}
	}
	if err := s.checkSlot(ctx, req.TimeSlotID); err != nil {
		return nil, err
	}

	weight := req.Weight
	if weight == 0 {
		weight = 1
	}
	cn := &models.Constraint{
		Kind:       req.Kind,
		TeacherID:  optionalString(req.TeacherID),
		RoomID:     optionalString(req.RoomID),
		SectionID:  optionalString(req.SectionID),
		TimeSlotID: req.TimeSlotID,
		Weight:     weight,
		Active:     true,
	}
	if err := s.repo.Create(ctx, cn); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create constraint")
	}
	s.logger.Info("constraint created", zap.String("constraint_id", cn.ID), zap.String("kind", cn.Kind))
	return cn, nil
}

func (s *ConstraintService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "constraint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraint")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete constraint")
	}
	return nil
}

func (s *ConstraintService) checkSlot(ctx context.Context, timeSlotID string) error {
	slots, err := s.slots.ListActive(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	for _, slot := range slots {
		if slot.ID == timeSlotID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "constraint references an unknown time slot")
}
