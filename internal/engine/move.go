package engine

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/arka-edu/timetable-api/internal/models"
)

// MoveRequest asks to relocate one timetable record. Moving any record
// of a lab block moves the whole block; an empty NewRoomID keeps the
// current room.
type MoveRequest struct {
	SlotID        string
	NewTimeSlotID string
	NewRoomID     string
}

// MoveValidator applies manual drag-and-drop edits. Rules are checked
// in a fixed order and the first violation is reported, so the UI can
// show a single actionable reason.
type MoveValidator struct {
	catalog *Catalog
}

func NewMoveValidator(c *Catalog) *MoveValidator {
	return &MoveValidator{catalog: c}
}

// Move validates the request against the current records and returns
// the updated records of the moved session, one per covered slot. The
// input slice is not modified.
func (v *MoveValidator) Move(records []models.TimetableSlot, req MoveRequest) ([]models.TimetableSlot, error) {
	target, ok := lo.Find(records, func(r models.TimetableSlot) bool { return r.ID == req.SlotID })
	if !ok {
		return nil, ErrSlotNotFound
	}

	// Lab blocks move as a unit.
	block := lo.Filter(records, func(r models.TimetableSlot, _ int) bool {
		return r.OfferingID == target.OfferingID && r.SessionIndex == target.SessionIndex
	})
	sort.Slice(block, func(i, j int) bool { return block[i].BlockIndex < block[j].BlockIndex })

	course, ok := v.catalog.Course(target.CourseID)
	if !ok {
		return nil, fmt.Errorf("record %s references unknown course %s", target.ID, target.CourseID)
	}
	section, ok := v.catalog.Section(target.SectionID)
	if !ok {
		return nil, fmt.Errorf("record %s references unknown section %s", target.ID, target.SectionID)
	}

	newStart, ok := v.catalog.Slot(req.NewTimeSlotID)
	if !ok {
		return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleTimeSlotNotFound,
			Detail: fmt.Sprintf("time slot %s does not exist or is inactive", req.NewTimeSlotID)}
	}
	if newStart.IsBreak {
		return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleBreakSlot,
			Detail: fmt.Sprintf("%s period %d is a break", models.DayName(newStart.DayOfWeek), newStart.Period)}
	}

	newSlots, ok := v.catalog.BlockFrom(newStart, len(block))
	if !ok {
		return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleBlockContiguity,
			Detail: fmt.Sprintf("session needs %d consecutive teaching periods starting at %s period %d",
				len(block), models.DayName(newStart.DayOfWeek), newStart.Period)}
	}

	roomID := target.RoomID
	if req.NewRoomID != "" {
		roomID = req.NewRoomID
	}
	room, ok := v.catalog.Room(roomID)
	if !ok {
		return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleRoomNotFound,
			Detail: fmt.Sprintf("room %s does not exist or is inactive", roomID)}
	}
	if room.Capacity < section.StudentCount {
		return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleRoomCapacity,
			Detail: fmt.Sprintf("room %s seats %d but section %s has %d students",
				room.Number, room.Capacity, section.Name, section.StudentCount)}
	}
	if course.IsLab && room.Type != models.RoomTypeLab {
		return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleRoomType,
			Detail: fmt.Sprintf("lab course %s cannot run in %s room %s", course.Code, room.Type, room.Number)}
	}

	for _, s := range newSlots {
		if v.catalog.TeacherBlocked(target.TeacherID, s.ID) {
			return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleTeacherUnavailable,
				Detail: fmt.Sprintf("teacher is unavailable on %s period %d", models.DayName(s.DayOfWeek), s.Period)}
		}
		if v.catalog.RoomBlocked(room.ID, s.ID) {
			return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleRoomUnavailable,
				Detail: fmt.Sprintf("room %s is unavailable on %s period %d", room.Number, models.DayName(s.DayOfWeek), s.Period)}
		}
	}

	moving := make(map[string]struct{}, len(block))
	for _, r := range block {
		moving[r.ID] = struct{}{}
	}
	for _, s := range newSlots {
		for _, other := range records {
			if _, own := moving[other.ID]; own || other.TimeSlotID != s.ID {
				continue
			}
			switch {
			case other.TeacherID == target.TeacherID:
				return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleTeacherConflict,
					Detail: fmt.Sprintf("teacher already teaches on %s period %d", models.DayName(s.DayOfWeek), s.Period)}
			case other.RoomID == room.ID:
				return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleRoomConflict,
					Detail: fmt.Sprintf("room %s is occupied on %s period %d", room.Number, models.DayName(s.DayOfWeek), s.Period)}
			case other.SectionID == target.SectionID:
				return nil, &InvalidMoveError{SlotID: req.SlotID, Rule: RuleSectionConflict,
					Detail: fmt.Sprintf("section %s already has a class on %s period %d", section.Name, models.DayName(s.DayOfWeek), s.Period)}
			}
		}
	}

	updated := make([]models.TimetableSlot, len(block))
	for i, r := range block {
		r.TimeSlotID = newSlots[i].ID
		r.RoomID = room.ID
		r.BlockIndex = i
		updated[i] = r
	}
	return updated, nil
}
