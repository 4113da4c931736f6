package dto

// MoveSlotRequest relocates one timetable entry; moving any hour of a
// lab block moves the whole block.
type MoveSlotRequest struct {
	NewTimeSlotID string `json:"newTimeSlotId" validate:"required"`
	NewRoomID     string `json:"newRoomId" validate:"omitempty"`
}

// TimetableEntry is one scheduled hour enriched with display names.
type TimetableEntry struct {
	ID           string `json:"id"`
	OfferingID   string `json:"offeringId"`
	CourseCode   string `json:"courseCode"`
	CourseName   string `json:"courseName"`
	IsLab        bool   `json:"isLab"`
	TeacherName  string `json:"teacherName"`
	SectionName  string `json:"sectionName"`
	RoomNumber   string `json:"roomNumber"`
	Day          string `json:"day"`
	DayOfWeek    int    `json:"dayOfWeek"`
	Period       int    `json:"period"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	SessionIndex int    `json:"sessionIndex"`
	BlockIndex   int    `json:"blockIndex"`
	Locked       bool   `json:"locked"`
}

// TimetableResponse groups a view's entries under its generation.
type TimetableResponse struct {
	GenerationID string           `json:"generationId"`
	Entries      []TimetableEntry `json:"entries"`
}
