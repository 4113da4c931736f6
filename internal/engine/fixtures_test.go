package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arka-edu/timetable-api/internal/models"
)

type fixture struct {
	teachers    []models.Teacher
	courses     []models.Course
	sections    []models.Section
	rooms       []models.Room
	slots       []models.TimeSlot
	offerings   []models.Offering
	constraints []models.Constraint
}

// baseFixture models two days: Monday with periods 1-2, a break at 3,
// then 4-5, and Tuesday with periods 1-2.
func baseFixture() *fixture {
	f := &fixture{}
	f.teachers = []models.Teacher{
		{ID: "t-alice", FullName: "Alice Rahman", MaxWeeklyLoad: 10, Active: true},
		{ID: "t-bob", FullName: "Bob Karim", MaxWeeklyLoad: 10, Active: true},
	}
	f.courses = []models.Course{
		{ID: "c-theory", Code: "CS101", Name: "Programming I", CreditHours: 3, SessionsPerWeek: 2, SessionDuration: 1, Active: true},
		{ID: "c-lab", Code: "CS101L", Name: "Programming I Lab", CreditHours: 1, SessionsPerWeek: 1, SessionDuration: 2, IsLab: true, Active: true},
	}
	f.sections = []models.Section{
		{ID: "s-a", Name: "CSE-1A", Program: "CSE", Semester: "1", StudentCount: 30, Active: true},
		{ID: "s-b", Name: "CSE-1B", Program: "CSE", Semester: "1", StudentCount: 25, Active: true},
	}
	f.rooms = []models.Room{
		{ID: "r-101", Number: "101", Type: models.RoomTypeClassroom, Capacity: 40, Active: true},
		{ID: "r-lab1", Number: "L1", Type: models.RoomTypeLab, Capacity: 30, Active: true},
	}
	f.slots = []models.TimeSlot{
		{ID: "mon-1", DayOfWeek: 0, Period: 1, StartTime: "09:00", EndTime: "10:00", Active: true},
		{ID: "mon-2", DayOfWeek: 0, Period: 2, StartTime: "10:00", EndTime: "11:00", Active: true},
		{ID: "mon-3", DayOfWeek: 0, Period: 3, StartTime: "11:00", EndTime: "11:30", IsBreak: true, Active: true},
		{ID: "mon-4", DayOfWeek: 0, Period: 4, StartTime: "11:30", EndTime: "12:30", Active: true},
		{ID: "mon-5", DayOfWeek: 0, Period: 5, StartTime: "12:30", EndTime: "13:30", Active: true},
		{ID: "tue-1", DayOfWeek: 1, Period: 1, StartTime: "09:00", EndTime: "10:00", Active: true},
		{ID: "tue-2", DayOfWeek: 1, Period: 2, StartTime: "10:00", EndTime: "11:00", Active: true},
	}
	f.offerings = []models.Offering{
		{ID: "o-theory", TeacherID: "t-alice", CourseID: "c-theory", SectionID: "s-a"},
		{ID: "o-lab", TeacherID: "t-bob", CourseID: "c-lab", SectionID: "s-b"},
	}
	return f
}

func (f *fixture) catalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(f.teachers, f.courses, f.sections, f.rooms, f.slots, f.offerings, f.constraints)
	require.NoError(t, err)
	return c
}

func (f *fixture) blockTeacher(teacherID string, slotIDs ...string) {
	tid := teacherID
	for _, sid := range slotIDs {
		f.constraints = append(f.constraints, models.Constraint{
			ID:         "cn-" + tid + "-" + sid,
			Kind:       models.ConstraintTeacherUnavailable,
			TeacherID:  &tid,
			TimeSlotID: sid,
			Active:     true,
		})
	}
}

func (f *fixture) slotAt(id string, day, period int, isBreak bool) models.TimeSlot {
	return models.TimeSlot{ID: id, DayOfWeek: day, Period: period, IsBreak: isBreak, Active: true}
}

func record(id, offeringID, courseID, teacherID, sectionID, roomID, timeSlotID string, sessionIdx, blockIdx int) models.TimetableSlot {
	return models.TimetableSlot{
		ID:           id,
		GenerationID: "gen-test",
		OfferingID:   offeringID,
		CourseID:     courseID,
		TeacherID:    teacherID,
		SectionID:    sectionID,
		RoomID:       roomID,
		TimeSlotID:   timeSlotID,
		SessionIndex: sessionIdx,
		BlockIndex:   blockIdx,
	}
}

func (f *fixture) teachingSlotIDs() []string {
	var ids []string
	for _, s := range f.slots {
		if !s.IsBreak {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
