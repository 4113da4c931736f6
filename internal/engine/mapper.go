package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/arka-edu/timetable-api/internal/models"
)

// Mapper materializes a solved assignment into timetable records and
// re-verifies every hard rule against the produced records. The sweep
// duplicates checks the model already enforces on purpose: a solver or
// encoding defect must surface here, never in a published timetable.
type Mapper struct {
	catalog *Catalog
}

func NewMapper(c *Catalog) *Mapper {
	return &Mapper{catalog: c}
}

// MapSolution emits one record per covered slot. A two-hour lab yields
// two records sharing SessionIndex, distinguished by BlockIndex.
func (m *Mapper) MapSolution(generationID string, instances []InstanceCandidates, a Assignment) ([]models.TimetableSlot, error) {
	now := time.Now().UTC()
	var records []models.TimetableSlot
	for i, ic := range instances {
		ci, ok := a[i]
		if !ok {
			return nil, fmt.Errorf("instance %s missing from assignment", ic.Instance.ID)
		}
		if ci < 0 || ci >= len(ic.Candidates) {
			return nil, fmt.Errorf("instance %s: candidate index %d out of range", ic.Instance.ID, ci)
		}
		cand := ic.Candidates[ci]
		for bi, slot := range cand.Slots {
			records = append(records, models.TimetableSlot{
				ID:           uuid.NewString(),
				GenerationID: generationID,
				OfferingID:   ic.Instance.Offering.ID,
				CourseID:     ic.Instance.Course.ID,
				TeacherID:    ic.Instance.Teacher.ID,
				SectionID:    ic.Instance.Section.ID,
				RoomID:       cand.Room.ID,
				TimeSlotID:   slot.ID,
				SessionIndex: ic.Instance.Index,
				BlockIndex:   bi,
				CreatedAt:    now,
			})
		}
	}

	if err := m.Verify(records); err != nil {
		return nil, err
	}
	m.sortRecords(records)
	return records, nil
}

// Verify checks a full record set against the hard rules: no resource
// double booking, no break or blocked slots, room fit, and teacher
// weekly load. Used both after a solve and after a manual edit.
func (m *Mapper) Verify(records []models.TimetableSlot) error {
	type occKey struct {
		resource string
		slot     string
	}
	seen := make(map[occKey]string)
	loads := make(map[string]int)

	for _, r := range records {
		slot, ok := m.catalog.Slot(r.TimeSlotID)
		if !ok || slot.IsBreak {
			return &ConflictDetectedError{Kind: ConflictBreak, ResourceID: r.TimeSlotID, TimeSlotID: r.TimeSlotID, FirstSlotID: r.ID}
		}
		for _, k := range []occKey{
			{"t:" + r.TeacherID, r.TimeSlotID},
			{"r:" + r.RoomID, r.TimeSlotID},
			{"s:" + r.SectionID, r.TimeSlotID},
		} {
			if prev, dup := seen[k]; dup {
				return &ConflictDetectedError{
					Kind:         kindOf(k.resource),
					ResourceID:   k.resource[2:],
					TimeSlotID:   r.TimeSlotID,
					FirstSlotID:  prev,
					SecondSlotID: r.ID,
				}
			}
			seen[k] = r.ID
		}

		room, ok := m.catalog.Room(r.RoomID)
		if !ok {
			return &ConflictDetectedError{Kind: ConflictRoom, ResourceID: r.RoomID, FirstSlotID: r.ID}
		}
		section, ok := m.catalog.Section(r.SectionID)
		if !ok {
			return &ConflictDetectedError{Kind: ConflictSection, ResourceID: r.SectionID, FirstSlotID: r.ID}
		}
		course, ok := m.catalog.Course(r.CourseID)
		if !ok {
			return &ConflictDetectedError{Kind: ConflictSection, ResourceID: r.CourseID, FirstSlotID: r.ID}
		}
		if room.Capacity < section.StudentCount {
			return &ConflictDetectedError{Kind: ConflictCapacity, ResourceID: r.RoomID, TimeSlotID: r.TimeSlotID, FirstSlotID: r.ID}
		}
		if course.IsLab && room.Type != models.RoomTypeLab {
			return &ConflictDetectedError{Kind: ConflictRoomType, ResourceID: r.RoomID, TimeSlotID: r.TimeSlotID, FirstSlotID: r.ID}
		}
		if m.catalog.TeacherBlocked(r.TeacherID, r.TimeSlotID) {
			return &ConflictDetectedError{Kind: ConflictTeacher, ResourceID: r.TeacherID, TimeSlotID: r.TimeSlotID, FirstSlotID: r.ID}
		}
		if m.catalog.RoomBlocked(r.RoomID, r.TimeSlotID) {
			return &ConflictDetectedError{Kind: ConflictRoom, ResourceID: r.RoomID, TimeSlotID: r.TimeSlotID, FirstSlotID: r.ID}
		}

		loads[r.TeacherID]++
	}

	for teacherID, hours := range loads {
		t, ok := m.catalog.Teacher(teacherID)
		if !ok {
			return &ConflictDetectedError{Kind: ConflictTeacher, ResourceID: teacherID}
		}
		if t.MaxWeeklyLoad > 0 && hours > t.MaxWeeklyLoad {
			return &ConflictDetectedError{Kind: ConflictLoad, ResourceID: teacherID}
		}
	}
	return nil
}

func (m *Mapper) sortRecords(records []models.TimetableSlot) {
	sort.Slice(records, func(i, j int) bool {
		si, _ := m.catalog.Slot(records[i].TimeSlotID)
		sj, _ := m.catalog.Slot(records[j].TimeSlotID)
		if si.DayOfWeek != sj.DayOfWeek {
			return si.DayOfWeek < sj.DayOfWeek
		}
		if si.Period != sj.Period {
			return si.Period < sj.Period
		}
		return records[i].SectionID < records[j].SectionID
	})
}

func kindOf(resource string) string {
	switch resource[0] {
	case 't':
		return ConflictTeacher
	case 'r':
		return ConflictRoom
	default:
		return ConflictSection
	}
}
