package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/models"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
)

type memTeacherRepo struct {
	teachers []models.Teacher
	updated  int
}

func (m *memTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	return m.teachers, len(m.teachers), nil
}

func (m *memTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	for i := range m.teachers {
		if m.teachers[i].ID == id {
			return &m.teachers[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memTeacherRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	for _, t := range m.teachers {
		if t.Code != nil && *t.Code == code && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	teacher.ID = fmt.Sprintf("t-%d", len(m.teachers)+1)
	m.teachers = append(m.teachers, *teacher)
	return nil
}

func (m *memTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	m.updated++
	for i := range m.teachers {
		if m.teachers[i].ID == teacher.ID {
			m.teachers[i] = *teacher
		}
	}
	return nil
}

func (m *memTeacherRepo) Deactivate(ctx context.Context, id string) error { return nil }

type memCourseRepo struct {
	courses []models.Course
}

func (m *memCourseRepo) List(ctx context.Context, program, semester string) ([]models.Course, error) {
	return m.courses, nil
}

func (m *memCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	for i := range m.courses {
		if m.courses[i].ID == id {
			return &m.courses[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memCourseRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	for _, c := range m.courses {
		if c.Code == code && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = fmt.Sprintf("c-%d", len(m.courses)+1)
	m.courses = append(m.courses, *course)
	return nil
}

func (m *memCourseRepo) Update(ctx context.Context, course *models.Course) error {
	for i := range m.courses {
		if m.courses[i].ID == course.ID {
			m.courses[i] = *course
		}
	}
	return nil
}

func (m *memCourseRepo) Deactivate(ctx context.Context, id string) error { return nil }

type memSectionRepo struct {
	sections []models.Section
}

func (m *memSectionRepo) List(ctx context.Context, program, semester string) ([]models.Section, error) {
	return m.sections, nil
}

func (m *memSectionRepo) FindByID(ctx context.Context, id string) (*models.Section, error) {
	for i := range m.sections {
		if m.sections[i].ID == id {
			return &m.sections[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memSectionRepo) Create(ctx context.Context, section *models.Section) error {
	section.ID = fmt.Sprintf("s-%d", len(m.sections)+1)
	m.sections = append(m.sections, *section)
	return nil
}

func (m *memSectionRepo) Update(ctx context.Context, section *models.Section) error { return nil }

func (m *memSectionRepo) Deactivate(ctx context.Context, id string) error { return nil }

type memRoomRepo struct {
	rooms []models.Room
}

func (m *memRoomRepo) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	return m.rooms, nil
}

func (m *memRoomRepo) FindByID(ctx context.Context, id string) (*models.Room, error) {
	for i := range m.rooms {
		if m.rooms[i].ID == id {
			return &m.rooms[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memRoomRepo) Create(ctx context.Context, room *models.Room) error {
	room.ID = fmt.Sprintf("r-%d", len(m.rooms)+1)
	m.rooms = append(m.rooms, *room)
	return nil
}

func (m *memRoomRepo) Update(ctx context.Context, room *models.Room) error { return nil }

func (m *memRoomRepo) Deactivate(ctx context.Context, id string) error { return nil }

type memOfferingRepo struct {
	offerings []models.Offering
}

func (m *memOfferingRepo) List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, error) {
	return m.offerings, nil
}

func (m *memOfferingRepo) FindByID(ctx context.Context, id string) (*models.Offering, error) {
	for i := range m.offerings {
		if m.offerings[i].ID == id {
			return &m.offerings[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memOfferingRepo) Exists(ctx context.Context, teacherID, courseID, sectionID, excludeID string) (bool, error) {
	for _, o := range m.offerings {
		if o.TeacherID == teacherID && o.CourseID == courseID && o.SectionID == sectionID && o.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memOfferingRepo) Create(ctx context.Context, offering *models.Offering) error {
	offering.ID = fmt.Sprintf("o-%d", len(m.offerings)+1)
	m.offerings = append(m.offerings, *offering)
	return nil
}

func (m *memOfferingRepo) Update(ctx context.Context, offering *models.Offering) error { return nil }

func (m *memOfferingRepo) Delete(ctx context.Context, id string) error { return nil }

func newImportFixture() (*ImportService, *memTeacherRepo, *memCourseRepo, *memSectionRepo, *memRoomRepo, *memOfferingRepo) {
	teachers := &memTeacherRepo{}
	courses := &memCourseRepo{}
	sections := &memSectionRepo{}
	rooms := &memRoomRepo{}
	offerings := &memOfferingRepo{}
	svc := NewImportService(teachers, courses, sections, rooms, offerings, &memTimeSlotRepo{}, 0, zap.NewNop())
	return svc, teachers, courses, sections, rooms, offerings
}

func TestImportTeachersCreatesAndUpdates(t *testing.T) {
	svc, teachers, _, _, _, _ := newImportFixture()
	code := "T-01"
	teachers.teachers = []models.Teacher{{ID: "t-1", Code: &code, FullName: "Old Name", Active: true}}

	csvData := []byte("code,full_name,designation,max_weekly_load\n" +
		"T-01,Dr. Alice Rao,Professor,12\n" +
		"T-02,Dr. Bob Iyer,,10\n" +
		",No Code,,8\n")

	summary, err := svc.ImportTeachers(context.Background(), csvData)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "row 3")

	assert.Equal(t, "Dr. Alice Rao", teachers.teachers[0].FullName)
	assert.Equal(t, 12, teachers.teachers[0].MaxWeeklyLoad)
	assert.Len(t, teachers.teachers, 2)
}

func TestImportCoursesRejectsMultiPeriodTheory(t *testing.T) {
	svc, _, courses, _, _, _ := newImportFixture()

	csvData := []byte("code,name,credit_hours,sessions_per_week,session_duration,is_lab,program,semester\n" +
		"CS101,Programming,3,2,1,false,BSc,1\n" +
		"CS102,Bad Theory,3,1,2,false,BSc,1\n")

	summary, err := svc.ImportCourses(context.Background(), csvData)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "lab courses")
	assert.Len(t, courses.courses, 1)
}

func TestImportOfferingsResolvesNaturalKeys(t *testing.T) {
	svc, teachers, courses, sections, rooms, offerings := newImportFixture()
	code := "T-01"
	teachers.teachers = []models.Teacher{{ID: "t-1", Code: &code, FullName: "Dr. Rao", Active: true}}
	courses.courses = []models.Course{{ID: "c-1", Code: "CS101", Name: "Programming", Active: true}}
	sections.sections = []models.Section{{ID: "s-1", Name: "BSc-1A", Active: true}}
	rooms.rooms = []models.Room{{ID: "r-1", Number: "101", Active: true}}

	csvData := []byte("teacher_code,course_code,section_name,preferred_room\n" +
		"T-01,CS101,BSc-1A,101\n" +
		"T-01,CS101,BSc-1A,\n" +
		"T-99,CS101,BSc-1A,\n")

	summary, err := svc.ImportOfferings(context.Background(), csvData)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "T-99")

	require.Len(t, offerings.offerings, 1)
	require.NotNil(t, offerings.offerings[0].PreferredRoomID)
	assert.Equal(t, "r-1", *offerings.offerings[0].PreferredRoomID)
}

func TestImportRejectsOversizedFile(t *testing.T) {
	teachers := &memTeacherRepo{}
	svc := NewImportService(teachers, &memCourseRepo{}, &memSectionRepo{}, &memRoomRepo{}, &memOfferingRepo{}, &memTimeSlotRepo{}, 64, zap.NewNop())

	_, err := svc.ImportTeachers(context.Background(), bytes.Repeat([]byte("a"), 100))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestImportTimeSlotsReplacesGrid(t *testing.T) {
	slots := &memTimeSlotRepo{slots: []models.TimeSlot{{ID: "old", DayOfWeek: 0, Period: 1}}}
	svc := NewImportService(&memTeacherRepo{}, &memCourseRepo{}, &memSectionRepo{}, &memRoomRepo{}, &memOfferingRepo{}, slots, 0, zap.NewNop())

	csvData := []byte("day_of_week,period,start_time,end_time,is_break\n" +
		"0,1,09:00,10:00,false\n" +
		"0,2,10:00,11:00,true\n")

	summary, err := svc.ImportTimeSlots(context.Background(), csvData)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	require.Len(t, slots.slots, 2)
	assert.True(t, slots.slots[1].IsBreak)
	assert.True(t, slots.slots[0].Active)
}

func TestImportTimeSlotsRejectsDuplicateCells(t *testing.T) {
	slots := &memTimeSlotRepo{}
	svc := NewImportService(&memTeacherRepo{}, &memCourseRepo{}, &memSectionRepo{}, &memRoomRepo{}, &memOfferingRepo{}, slots, 0, zap.NewNop())

	csvData := []byte("day_of_week,period,start_time,end_time,is_break\n" +
		"1,1,09:00,10:00,false\n" +
		"1,1,10:00,11:00,false\n")

	_, err := svc.ImportTimeSlots(context.Background(), csvData)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
	assert.Empty(t, slots.slots)
}
