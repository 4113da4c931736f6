package service

import (
	"context"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

// ImportService loads roster CSV files. Rows are upserted by natural
// key (teacher code, course code, section name, room number) so the
// same file can be re-imported after edits.
type ImportService struct {
	teachers  teacherRepository
	courses   courseRepository
	sections  sectionRepository
	rooms     roomRepository
	offerings offeringRepository
	slots     timeSlotRepository
	maxBytes  int64
	logger    *zap.Logger
}

func NewImportService(
	teachers teacherRepository,
	courses courseRepository,
	sections sectionRepository,
	rooms roomRepository,
	offerings offeringRepository,
	slots timeSlotRepository,
	maxBytes int64,
	logger *zap.Logger,
) *ImportService {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		teachers:  teachers,
		courses:   courses,
		sections:  sections,
		rooms:     rooms,
		offerings: offerings,
		slots:     slots,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// MaxFileSizeBytes is the upload cap enforced before parsing.
func (s *ImportService) MaxFileSizeBytes() int64 {
	return s.maxBytes
}

func (s *ImportService) checkSize(data []byte) error {
	if int64(len(data)) > s.maxBytes {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds the %d byte upload limit", s.maxBytes))
	}
	return nil
}

func (s *ImportService) ImportTeachers(ctx context.Context, data []byte) (*dto.ImportSummary, error) {
	if err := s.checkSize(data); err != nil {
		return nil, err
	}
	var rows []dto.TeacherCSVRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed teacher CSV")
	}

	existing, _, err := s.teachers.List(ctx, models.TeacherFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	byCode := map[string]models.Teacher{}
	for _, t := range existing {
		if t.Code != nil {
			byCode[*t.Code] = t
		}
	}

	summary := &dto.ImportSummary{}
	for i, row := range rows {
		if row.Code == "" || row.FullName == "" {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: code and full_name are required", i+1))
			continue
		}
		if current, ok := byCode[row.Code]; ok {
			current.FullName = row.FullName
			current.Designation = optionalString(row.Designation)
			current.MaxWeeklyLoad = row.MaxWeeklyLoad
			if err := s.teachers.Update(ctx, &current); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			summary.Updated++
			continue
		}
		teacher := models.Teacher{
			Code:          optionalString(row.Code),
			FullName:      row.FullName,
			Designation:   optionalString(row.Designation),
			MaxWeeklyLoad: row.MaxWeeklyLoad,
			Active:        true,
		}
		if err := s.teachers.Create(ctx, &teacher); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		byCode[row.Code] = teacher
		summary.Created++
	}
	s.logImport("teachers", summary)
	return summary, nil
}

func (s *ImportService) ImportCourses(ctx context.Context, data []byte) (*dto.ImportSummary, error) {
	if err := s.checkSize(data); err != nil {
		return nil, err
	}
	var rows []dto.CourseCSVRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed course CSV")
	}

	existing, err := s.courses.List(ctx, "", "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	byCode := lo.SliceToMap(existing, func(c models.Course) (string, models.Course) { return c.Code, c })

	summary := &dto.ImportSummary{}
	for i, row := range rows {
		if row.Code == "" || row.Name == "" {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: code and name are required", i+1))
			continue
		}
		if !row.IsLab && row.SessionDuration > 1 {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: only lab courses may span multiple periods", i+1))
			continue
		}
		if current, ok := byCode[row.Code]; ok {
			current.Name = row.Name
			current.CreditHours = row.CreditHours
			current.SessionsPerWeek = row.SessionsPerWeek
			current.SessionDuration = row.SessionDuration
			current.IsLab = row.IsLab
			current.Program = row.Program
			current.Semester = row.Semester
			if err := s.courses.Update(ctx, &current); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			summary.Updated++
			continue
		}
		course := models.Course{
			Code:            row.Code,
			Name:            row.Name,
			CreditHours:     row.CreditHours,
			SessionsPerWeek: row.SessionsPerWeek,
			SessionDuration: row.SessionDuration,
			IsLab:           row.IsLab,
			Program:         row.Program,
			Semester:        row.Semester,
			Active:          true,
		}
		if err := s.courses.Create(ctx, &course); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		byCode[row.Code] = course
		summary.Created++
	}
	s.logImport("courses", summary)
	return summary, nil
}

func (s *ImportService) ImportSections(ctx context.Context, data []byte) (*dto.ImportSummary, error) {
	if err := s.checkSize(data); err != nil {
		return nil, err
	}
	var rows []dto.SectionCSVRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed section CSV")
	}

	existing, err := s.sections.List(ctx, "", "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}
	byName := lo.SliceToMap(existing, func(sec models.Section) (string, models.Section) { return sec.Name, sec })

	summary := &dto.ImportSummary{}
	for i, row := range rows {
		if row.Name == "" || row.StudentCount <= 0 {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: name and a positive student_count are required", i+1))
			continue
		}
		if current, ok := byName[row.Name]; ok {
			current.Program = row.Program
			current.Semester = row.Semester
			current.Letter = optionalString(row.Letter)
			current.StudentCount = row.StudentCount
			if err := s.sections.Update(ctx, &current); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			summary.Updated++
			continue
		}
		section := models.Section{
			Name:         row.Name,
			Program:      row.Program,
			Semester:     row.Semester,
			Letter:       optionalString(row.Letter),
			StudentCount: row.StudentCount,
			Active:       true,
		}
		if err := s.sections.Create(ctx, &section); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		byName[row.Name] = section
		summary.Created++
	}
	s.logImport("sections", summary)
	return summary, nil
}

func (s *ImportService) ImportRooms(ctx context.Context, data []byte) (*dto.ImportSummary, error) {
	if err := s.checkSize(data); err != nil {
		return nil, err
	}
	var rows []dto.RoomCSVRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed room CSV")
	}

	existing, err := s.rooms.List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	byNumber := lo.SliceToMap(existing, func(r models.Room) (string, models.Room) { return r.Number, r })

	summary := &dto.ImportSummary{}
	for i, row := range rows {
		if row.Number == "" || row.Capacity <= 0 {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: number and a positive capacity are required", i+1))
			continue
		}
		roomType := row.Type
		if roomType == "" {
			roomType = models.RoomTypeClassroom
		}
		if current, ok := byNumber[row.Number]; ok {
			current.Name = optionalString(row.Name)
			current.Type = roomType
			current.Capacity = row.Capacity
			if err := s.rooms.Update(ctx, &current); err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			summary.Updated++
			continue
		}
		room := models.Room{
			Number:   row.Number,
			Name:     optionalString(row.Name),
			Type:     roomType,
			Capacity: row.Capacity,
			Active:   true,
		}
		if err := s.rooms.Create(ctx, &room); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		byNumber[row.Number] = room
		summary.Created++
	}
	s.logImport("rooms", summary)
	return summary, nil
}

// ImportOfferings links rows to existing entities by natural key, so
// the entity files must be imported first.
func (s *ImportService) ImportOfferings(ctx context.Context, data []byte) (*dto.ImportSummary, error) {
	if err := s.checkSize(data); err != nil {
		return nil, err
	}
	var rows []dto.OfferingCSVRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed offering CSV")
	}

	teachers, _, err := s.teachers.List(ctx, models.TeacherFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	courses, err := s.courses.List(ctx, "", "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	sections, err := s.sections.List(ctx, "", "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}
	rooms, err := s.rooms.List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	teacherByCode := map[string]models.Teacher{}
	for _, t := range teachers {
		if t.Code != nil {
			teacherByCode[*t.Code] = t
		}
	}
	courseByCode := lo.SliceToMap(courses, func(c models.Course) (string, models.Course) { return c.Code, c })
	sectionByName := lo.SliceToMap(sections, func(sec models.Section) (string, models.Section) { return sec.Name, sec })
	roomByNumber := lo.SliceToMap(rooms, func(r models.Room) (string, models.Room) { return r.Number, r })

	summary := &dto.ImportSummary{}
	for i, row := range rows {
		teacher, ok := teacherByCode[row.TeacherCode]
		if !ok {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: unknown teacher code %q", i+1, row.TeacherCode))
			continue
		}
		course, ok := courseByCode[row.CourseCode]
		if !ok {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: unknown course code %q", i+1, row.CourseCode))
			continue
		}
		section, ok := sectionByName[row.SectionName]
		if !ok {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: unknown section %q", i+1, row.SectionName))
			continue
		}
		var preferredRoomID *string
		if row.PreferredRoom != "" {
			room, ok := roomByNumber[row.PreferredRoom]
			if !ok {
				summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: unknown room %q", i+1, row.PreferredRoom))
				continue
			}
			preferredRoomID = &room.ID
		}

		exists, err := s.offerings.Exists(ctx, teacher.ID, course.ID, section.ID, "")
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if exists {
			summary.Skipped++
			continue
		}
		offering := models.Offering{
			TeacherID:       teacher.ID,
			CourseID:        course.ID,
			SectionID:       section.ID,
			PreferredRoomID: preferredRoomID,
		}
		if err := s.offerings.Create(ctx, &offering); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		summary.Created++
	}
	s.logImport("offerings", summary)
	return summary, nil
}

// ImportTimeSlots replaces the whole weekly grid with the uploaded
// file. Unlike the entity imports there is no upsert: a partial grid
// would leave the week inconsistent.
func (s *ImportService) ImportTimeSlots(ctx context.Context, data []byte) (*dto.ImportSummary, error) {
	if err := s.checkSize(data); err != nil {
		return nil, err
	}
	var rows []dto.TimeSlotCSVRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot CSV")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time slot file is empty")
	}

	seen := make(map[string]bool, len(rows))
	slots := make([]models.TimeSlot, 0, len(rows))
	for i, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 || row.Period < 1 {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("row %d: invalid day or period", i+1))
		}
		key := fmt.Sprintf("%d:%d", row.DayOfWeek, row.Period)
		if seen[key] {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("row %d: duplicate slot for day %d period %d", i+1, row.DayOfWeek, row.Period))
		}
		seen[key] = true
		slots = append(slots, models.TimeSlot{
			ID:        uuid.NewString(),
			DayOfWeek: row.DayOfWeek,
			Period:    row.Period,
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
			IsBreak:   row.IsBreak,
			Active:    true,
		})
	}

	if err := s.slots.ReplaceGrid(ctx, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace time slot grid")
	}
	summary := &dto.ImportSummary{Created: len(slots)}
	s.logImport("time_slots", summary)
	return summary, nil
}

func (s *ImportService) logImport(kind string, summary *dto.ImportSummary) {
	s.logger.Info("roster import finished",
		zap.String("kind", kind),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", len(summary.Errors)))
}
