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

type courseRepository interface {
	List(ctx context.Context, program, semester string) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Deactivate(ctx context.Context, id string) error
}

// CourseService manages the course catalog. Lab courses carry a block
// duration that the generator schedules as consecutive periods.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

func (s *CourseService) List(ctx context.Context, program, semester string) ([]models.Course, error) {
	courses, err := s.repo.List(ctx, program, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if !req.IsLab && req.SessionDuration > 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only lab courses may span multiple periods")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already in use")
	}

	course := &models.Course{
		Code:            req.Code,
		Name:            req.Name,
		CreditHours:     req.CreditHours,
		SessionsPerWeek: req.SessionsPerWeek,
		SessionDuration: req.SessionDuration,
		IsLab:           req.IsLab,
		Program:         req.Program,
		Semester:        req.Semester,
		Active:          true,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("code", course.Code))
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id string, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if !req.IsLab && req.SessionDuration > 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only lab courses may span multiple periods")
	}
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already in use")
	}

	course.Code = req.Code
	course.Name = req.Name
	course.CreditHours = req.CreditHours
	course.SessionsPerWeek = req.SessionsPerWeek
	course.SessionDuration = req.SessionDuration
	course.IsLab = req.IsLab
	course.Program = req.Program
	course.Semester = req.Semester
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

func (s *CourseService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate course")
	}
	return nil
}
