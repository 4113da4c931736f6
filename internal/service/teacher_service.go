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

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Deactivate(ctx context.Context, id string) error
}

// TeacherService manages the teacher roster.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, total, nil
}

func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

func (s *TeacherService) Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if req.Code != "" {
		exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "teacher code already in use")
		}
	}

	teacher := &models.Teacher{
		Code:          optionalString(req.Code),
		FullName:      req.FullName,
		Designation:   optionalString(req.Designation),
		MaxWeeklyLoad: req.MaxWeeklyLoad,
		Active:        true,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	s.logger.Info("teacher created", zap.String("teacher_id", teacher.ID))
	return teacher, nil
}

func (s *TeacherService) Update(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != "" {
		exists, err := s.repo.ExistsByCode(ctx, *req.Code, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "teacher code already in use")
		}
		teacher.Code = req.Code
	}
	if req.FullName != nil {
		teacher.FullName = *req.FullName
	}
	if req.Designation != nil {
		teacher.Designation = req.Designation
	}
	if req.MaxWeeklyLoad != nil {
		teacher.MaxWeeklyLoad = *req.MaxWeeklyLoad
	}
	if req.Active != nil {
		teacher.Active = *req.Active
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Deactivate retires a teacher from scheduling without deleting the
// historical record.
func (s *TeacherService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate teacher")
	}
	s.logger.Info("teacher deactivated", zap.String("teacher_id", id))
	return nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
