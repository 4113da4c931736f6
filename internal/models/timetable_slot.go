package models

import "time"

// TimetableSlot is one concrete assignment produced by a generation
// run. A multi-period lab session materializes as one record per
// covered time slot sharing SessionIndex and RoomID, with BlockIndex
// giving the position inside the block.
type TimetableSlot struct {
	ID           string    `db:"id" json:"id"`
	GenerationID string    `db:"generation_id" json:"generation_id"`
	OfferingID   string    `db:"offering_id" json:"offering_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	SectionID    string    `db:"section_id" json:"section_id"`
	RoomID       string    `db:"room_id" json:"room_id"`
	TimeSlotID   string    `db:"time_slot_id" json:"time_slot_id"`
	SessionIndex int       `db:"session_index" json:"session_index"`
	BlockIndex   int       `db:"block_index" json:"block_index"`
	Locked       bool      `db:"locked" json:"locked"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TimetableFilter narrows timetable queries to one cohort or teacher.
type TimetableFilter struct {
	SectionID string
	TeacherID string
	RoomID    string
}
