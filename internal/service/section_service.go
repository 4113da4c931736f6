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

type sectionRepository interface {
	List(ctx context.Context, program, semester string) ([]models.Section, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	Deactivate(ctx context.Context, id string) error
}

// SectionService manages student cohorts.
type SectionService struct {
	repo      sectionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

func NewSectionService(repo sectionRepository, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{repo: repo, validator: validate, logger: logger}
}

func (s *SectionService) List(ctx context.Context, program, semester string) ([]models.Section, error) {
	sections, err := s.repo.List(ctx, program, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

func (s *SectionService) Get(ctx context.Context, id string) (*models.Section, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	return section, nil
}

func (s *SectionService) Create(ctx context.Context, req dto.CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section := &models.Section{
		Name:         req.Name,
		Program:      req.Program,
		Semester:     req.Semester,
		Letter:       optionalString(req.Letter),
		StudentCount: req.StudentCount,
		Active:       true,
	}
	if err := s.repo.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	s.logger.Info("section created", zap.String("section_id", section.ID), zap.String("name", section.Name))
	return section, nil
}

func (s *SectionService) Update(ctx context.Context, id string, req dto.CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	section.Name = req.Name
	section.Program = req.Program
	section.Semester = req.Semester
	section.Letter = optionalString(req.Letter)
	section.StudentCount = req.StudentCount
	if err := s.repo.Update(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	return section, nil
}

func (s *SectionService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate section")
	}
	return nil
}
