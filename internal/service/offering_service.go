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

type offeringRepository interface {
	List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, error)
	FindByID(ctx context.Context, id string) (*models.Offering, error)
	Exists(ctx context.Context, teacherID, courseID, sectionID, excludeID string) (bool, error)
	Create(ctx context.Context, offering *models.Offering) error
	Update(ctx context.Context, offering *models.Offering) error
	Delete(ctx context.Context, id string) error
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type sectionFinder interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// OfferingService manages teaching assignments, the (teacher, course,
// section) triples the generator expands into session instances.
type OfferingService struct {
	repo      offeringRepository
	teachers  teacherFinder
	courses   courseFinder
	sections  sectionFinder
	rooms     roomFinder
	validator *validator.Validate
	logger    *zap.Logger
}

func NewOfferingService(
	repo offeringRepository,
	teachers teacherFinder,
	courses courseFinder,
	sections sectionFinder,
	rooms roomFinder,
	validate *validator.Validate,
	logger *zap.Logger,
) *OfferingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferingService{
		repo:      repo,
		teachers:  teachers,
		courses:   courses,
		sections:  sections,
		rooms:     rooms,
		validator: validate,
		logger:    logger,
	}
}

func (s *OfferingService) List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, error) {
	offerings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	return offerings, nil
}

func (s *OfferingService) Get(ctx context.Context, id string) (*models.Offering, error) {
	offering, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	return offering, nil
}

func (s *OfferingService) Create(ctx context.Context, req dto.CreateOfferingRequest) (*models.Offering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}
	exists, err := s.repo.Exists(ctx, req.TeacherID, req.CourseID, req.SectionID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check offering uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "offering already exists for this teacher, course and section")
	}

	offering := &models.Offering{
		TeacherID:       req.TeacherID,
		CourseID:        req.CourseID,
		SectionID:       req.SectionID,
		PreferredRoomID: optionalString(req.PreferredRoomID),
	}
	if err := s.repo.Create(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create offering")
	}
	s.logger.Info("offering created", zap.String("offering_id", offering.ID))
	return offering, nil
}

func (s *OfferingService) Update(ctx context.Context, id string, req dto.CreateOfferingRequest) (*models.Offering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}
	offering, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}
	exists, err := s.repo.Exists(ctx, req.TeacherID, req.CourseID, req.SectionID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check offering uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "offering already exists for this teacher, course and section")
	}

	offering.TeacherID = req.TeacherID
	offering.CourseID = req.CourseID
	offering.SectionID = req.SectionID
	offering.PreferredRoomID = optionalString(req.PreferredRoomID)
	if err := s.repo.Update(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update offering")
	}
	return offering, nil
}

func (s *OfferingService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete offering")
	}
	return nil
}

func (s *OfferingService) checkReferences(ctx context.Context, req dto.CreateOfferingRequest) error {
	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil || !teacher.Active {
		return appErrors.Clone(appErrors.ErrValidation, "offering references an unknown or inactive teacher")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil || !course.Active {
		return appErrors.Clone(appErrors.ErrValidation, "offering references an unknown or inactive course")
	}
	section, err := s.sections.FindByID(ctx, req.SectionID)
	if err != nil || !section.Active {
		return appErrors.Clone(appErrors.ErrValidation, "offering references an unknown or inactive section")
	}
	if req.PreferredRoomID != "" {
		room, err := s.rooms.FindByID(ctx, req.PreferredRoomID)
		if err != nil || !room.Active {
			return appErrors.Clone(appErrors.ErrValidation, "offering references an unknown or inactive room")
		}
	}
	return nil
}
