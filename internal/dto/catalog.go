package dto

// Roster CRUD payloads.

type CreateTeacherRequest struct {
	Code          string `json:"code" validate:"omitempty,max=20"`
	FullName      string `json:"fullName" validate:"required,max=150"`
	Designation   string `json:"designation" validate:"omitempty,max=100"`
	MaxWeeklyLoad int    `json:"maxWeeklyLoad" validate:"omitempty,min=0,max=60"`
}

type UpdateTeacherRequest struct {
	Code          *string `json:"code" validate:"omitempty,max=20"`
	FullName      *string `json:"fullName" validate:"omitempty,max=150"`
	Designation   *string `json:"designation" validate:"omitempty,max=100"`
	MaxWeeklyLoad *int    `json:"maxWeeklyLoad" validate:"omitempty,min=0,max=60"`
	Active        *bool   `json:"active"`
}

type CreateCourseRequest struct {
	Code            string `json:"code" validate:"required,max=20"`
	Name            string `json:"name" validate:"required,max=150"`
	CreditHours     int    `json:"creditHours" validate:"required,min=1,max=10"`
	SessionsPerWeek int    `json:"sessionsPerWeek" validate:"required,min=1,max=10"`
	SessionDuration int    `json:"sessionDuration" validate:"required,min=1,max=4"`
	IsLab           bool   `json:"isLab"`
	Program         string `json:"program" validate:"omitempty,max=50"`
	Semester        string `json:"semester" validate:"omitempty,max=10"`
}

type CreateSectionRequest struct {
	Name         string `json:"name" validate:"required,max=50"`
	Program      string `json:"program" validate:"omitempty,max=50"`
	Semester     string `json:"semester" validate:"omitempty,max=10"`
	Letter       string `json:"letter" validate:"omitempty,max=5"`
	StudentCount int    `json:"studentCount" validate:"required,min=1,max=500"`
}

type CreateRoomRequest struct {
	Number   string `json:"number" validate:"required,max=20"`
	Name     string `json:"name" validate:"omitempty,max=100"`
	Type     string `json:"type" validate:"required,oneof=classroom lab seminar auditorium"`
	Capacity int    `json:"capacity" validate:"required,min=1,max=1000"`
}

type CreateOfferingRequest struct {
	TeacherID       string `json:"teacherId" validate:"required"`
	CourseID        string `json:"courseId" validate:"required"`
	SectionID       string `json:"sectionId" validate:"required"`
	PreferredRoomID string `json:"preferredRoomId" validate:"omitempty"`
}

type CreateConstraintRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=teacher_unavailable room_unavailable section_preference time_preference"`
	TeacherID  string `json:"teacherId" validate:"omitempty"`
	RoomID     string `json:"roomId" validate:"omitempty"`
	SectionID  string `json:"sectionId" validate:"omitempty"`
	TimeSlotID string `json:"timeSlotId" validate:"required"`
	Weight     int    `json:"weight" validate:"omitempty,min=1,max=10"`
}

type TimeSlotInput struct {
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	Period    int    `json:"period" validate:"required,min=1,max=16"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	IsBreak   bool   `json:"isBreak"`
}

// ReplaceTimeSlotsRequest swaps the whole weekly grid at once.
type ReplaceTimeSlotsRequest struct {
	Slots []TimeSlotInput `json:"slots" validate:"required,min=1,dive"`
}
