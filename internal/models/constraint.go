package models

import "time"

// Constraint kinds. Unavailability kinds are hard and prune candidate
// placements; preference kinds contribute weighted objective terms.
const (
	ConstraintTeacherUnavailable = "teacher_unavailable"
	ConstraintRoomUnavailable    = "room_unavailable"
	ConstraintSectionPreference  = "section_preference"
	ConstraintTimePreference     = "time_preference"
)

// Constraint is an admin-entered scheduling rule tied to a time slot.
type Constraint struct {
	ID         string    `db:"id" json:"id"`
	Kind       string    `db:"kind" json:"kind"`
	TeacherID  *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	RoomID     *string   `db:"room_id" json:"room_id,omitempty"`
	SectionID  *string   `db:"section_id" json:"section_id,omitempty"`
	TimeSlotID string    `db:"time_slot_id" json:"time_slot_id"`
	Weight     int       `db:"weight" json:"weight"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// IsHard reports whether the constraint prunes candidates outright.
func (c Constraint) IsHard() bool {
	return c.Kind == ConstraintTeacherUnavailable || c.Kind == ConstraintRoomUnavailable
}
