package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arka-edu/timetable-api/internal/models"
)

func moveFixtureRecords() []models.TimetableSlot {
	return []models.TimetableSlot{
		record("rec-theory", "o-theory", "c-theory", "t-alice", "s-a", "r-101", "mon-2", 0, 0),
		record("rec-lab-0", "o-lab", "c-lab", "t-bob", "s-b", "r-lab1", "mon-1", 0, 0),
		record("rec-lab-1", "o-lab", "c-lab", "t-bob", "s-b", "r-lab1", "mon-2", 0, 1),
	}
}

func TestMoveRoundTrip(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))
	records := moveFixtureRecords()

	moved, err := v.Move(records, MoveRequest{SlotID: "rec-theory", NewTimeSlotID: "tue-1"})
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "tue-1", moved[0].TimeSlotID)
	assert.Equal(t, "r-101", moved[0].RoomID)

	// Apply and move back.
	records[0] = moved[0]
	back, err := v.Move(records, MoveRequest{SlotID: "rec-theory", NewTimeSlotID: "mon-2"})
	require.NoError(t, err)
	assert.Equal(t, moveFixtureRecords()[0], back[0])
}

func TestMoveRejectsOccupiedRoom(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))
	records := []models.TimetableSlot{
		record("rec-theory", "o-theory", "c-theory", "t-alice", "s-a", "r-101", "mon-2", 0, 0),
		record("rec-other", "o-other", "c-theory", "t-bob", "s-b", "r-101", "tue-1", 0, 0),
	}

	_, err := v.Move(records, MoveRequest{SlotID: "rec-theory", NewTimeSlotID: "tue-1"})

	var ime *InvalidMoveError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, RuleRoomConflict, ime.Rule)
	assert.Contains(t, ime.Detail, "101")
}

func TestMoveRejectsTeacherConflict(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))
	records := []models.TimetableSlot{
		record("rec-theory", "o-theory", "c-theory", "t-alice", "s-a", "r-101", "mon-2", 0, 0),
		record("rec-other", "o-other", "c-theory", "t-alice", "s-b", "r-lab1", "tue-1", 0, 0),
	}

	_, err := v.Move(records, MoveRequest{SlotID: "rec-theory", NewTimeSlotID: "tue-1"})

	var ime *InvalidMoveError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, RuleTeacherConflict, ime.Rule)
}

func TestMoveRejectsSectionConflict(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))
	records := []models.TimetableSlot{
		record("rec-theory", "o-theory", "c-theory", "t-alice", "s-a", "r-101", "mon-2", 0, 0),
		record("rec-other", "o-other", "c-theory", "t-bob", "s-a", "r-lab1", "tue-1", 0, 0),
	}

	_, err := v.Move(records, MoveRequest{SlotID: "rec-theory", NewTimeSlotID: "tue-1"})

	var ime *InvalidMoveError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, RuleSectionConflict, ime.Rule)
}

func TestMoveLabBlockMovesAsUnit(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))

	moved, err := v.Move(moveFixtureRecords(), MoveRequest{SlotID: "rec-lab-0", NewTimeSlotID: "mon-4"})
	require.NoError(t, err)
	require.Len(t, moved, 2)
	assert.Equal(t, "mon-4", moved[0].TimeSlotID)
	assert.Equal(t, "mon-5", moved[1].TimeSlotID)
	assert.Equal(t, 0, moved[0].BlockIndex)
	assert.Equal(t, 1, moved[1].BlockIndex)
}

func TestMoveLabBlockRequiresContiguity(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))

	// Tuesday period 2 is the last period of the day, leaving no room
	// for the second lab hour.
	_, err := v.Move(moveFixtureRecords(), MoveRequest{SlotID: "rec-lab-0", NewTimeSlotID: "tue-2"})

	var ime *InvalidMoveError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, RuleBlockContiguity, ime.Rule)
}

func TestMoveRejectsBreakSlot(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))

	_, err := v.Move(moveFixtureRecords(), MoveRequest{SlotID: "rec-theory", NewTimeSlotID: "mon-3"})

	var ime *InvalidMoveError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, RuleBreakSlot, ime.Rule)
}

func TestMoveRejectsUndersizedRoom(t *testing.T) {
	f := baseFixture()
	f.sections[0].StudentCount = 35
	v := NewMoveValidator(f.catalog(t))

	_, err := v.Move(moveFixtureRecords(), MoveRequest{SlotID: "rec-theory", NewTimeSlotID: "tue-1", NewRoomID: "r-lab1"})

	var ime *InvalidMoveError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, RuleRoomCapacity, ime.Rule)
}

func TestMoveRejectsNonLabRoomForLab(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))

	_, err := v.Move(moveFixtureRecords(), MoveRequest{SlotID: "rec-lab-0", NewTimeSlotID: "mon-4", NewRoomID: "r-101"})

	var ime *InvalidMoveError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, RuleRoomType, ime.Rule)
}

func TestMoveRejectsTeacherUnavailability(t *testing.T) {
	f := baseFixture()
	f.blockTeacher("t-alice", "tue-1")
	v := NewMoveValidator(f.catalog(t))

	_, err := v.Move(moveFixtureRecords(), MoveRequest{SlotID: "rec-theory", NewTimeSlotID: "tue-1"})

	var ime *InvalidMoveError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, RuleTeacherUnavailable, ime.Rule)
}

func TestMoveUnknownRecord(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))

	_, err := v.Move(moveFixtureRecords(), MoveRequest{SlotID: "rec-nope", NewTimeSlotID: "tue-1"})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestMoveDoesNotMutateInput(t *testing.T) {
	v := NewMoveValidator(baseFixture().catalog(t))
	records := moveFixtureRecords()

	_, err := v.Move(records, MoveRequest{SlotID: "rec-theory", NewTimeSlotID: "tue-1"})
	require.NoError(t, err)
	assert.Equal(t, "mon-2", records[0].TimeSlotID)
}
