package models

import "time"

// Offering is the unit of scheduling demand: a course taught by a
// teacher to a section. Sessions per week come from the course.
type Offering struct {
	ID              string    `db:"id" json:"id"`
	TeacherID       string    `db:"teacher_id" json:"teacher_id"`
	CourseID        string    `db:"course_id" json:"course_id"`
	SectionID       string    `db:"section_id" json:"section_id"`
	PreferredRoomID *string   `db:"preferred_room_id" json:"preferred_room_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// OfferingFilter captures filtering options for listing offerings.
type OfferingFilter struct {
	TeacherID string
	SectionID string
	CourseID  string
	Page      int
	PageSize  int
}
