package engine

import (
	"errors"
	"fmt"
)

// ErrSlotNotFound signals a manual edit referencing an unknown
// timetable record.
var ErrSlotNotFound = errors.New("timetable slot not found")

// InfeasibleCandidateError reports a session instance with zero legal
// placements. This is a data or configuration problem surfaced before
// the solver runs.
type InfeasibleCandidateError struct {
	InstanceID string
	OfferingID string
	CourseCode string
	TeacherID  string
	SectionID  string
}

func (e *InfeasibleCandidateError) Error() string {
	return fmt.Sprintf("session instance %s (course %s, teacher %s, section %s) has no legal time slot and room placement",
		e.InstanceID, e.CourseCode, e.TeacherID, e.SectionID)
}

// Conflict dimensions reported by the post-solve integrity sweep.
const (
	ConflictTeacher  = "TEACHER"
	ConflictRoom     = "ROOM"
	ConflictSection  = "SECTION"
	ConflictCapacity = "CAPACITY"
	ConflictRoomType = "ROOM_TYPE"
	ConflictBreak    = "BREAK_SLOT"
	ConflictLoad     = "TEACHER_LOAD"
)

// ConflictDetectedError reports an invariant violation found after a
// successful solve. It always indicates a model-building defect; the
// whole batch is rejected rather than returning a partial timetable.
type ConflictDetectedError struct {
	Kind         string
	ResourceID   string
	TimeSlotID   string
	FirstSlotID  string
	SecondSlotID string
}

func (e *ConflictDetectedError) Error() string {
	if e.SecondSlotID != "" {
		return fmt.Sprintf("post-solve %s conflict on resource %s at time slot %s between records %s and %s",
			e.Kind, e.ResourceID, e.TimeSlotID, e.FirstSlotID, e.SecondSlotID)
	}
	return fmt.Sprintf("post-solve %s violation on resource %s (record %s)", e.Kind, e.ResourceID, e.FirstSlotID)
}

// Manual-edit rule identifiers, surfaced to the UI verbatim.
const (
	RuleTimeSlotNotFound   = "time_slot_not_found"
	RuleRoomNotFound       = "room_not_found"
	RuleBreakSlot          = "break_slot"
	RuleRoomCapacity       = "room_capacity"
	RuleRoomType           = "room_type"
	RuleTeacherUnavailable = "teacher_unavailable"
	RuleRoomUnavailable    = "room_unavailable"
	RuleBlockContiguity    = "lab_block_contiguity"
	RuleTeacherConflict    = "teacher_conflict"
	RuleRoomConflict       = "room_conflict"
	RuleSectionConflict    = "section_conflict"
)

// InvalidMoveError names the first rule a manual edit violates.
type InvalidMoveError struct {
	SlotID string
	Rule   string
	Detail string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("move of slot %s rejected by rule %s: %s", e.SlotID, e.Rule, e.Detail)
}
