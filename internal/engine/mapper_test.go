package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arka-edu/timetable-api/internal/models"
)

func TestVerifyDetectsRoomDoubleBooking(t *testing.T) {
	c := baseFixture().catalog(t)

	records := []models.TimetableSlot{
		record("rec-1", "o-theory", "c-theory", "t-alice", "s-a", "r-101", "mon-2", 0, 0),
		record("rec-2", "o-other", "c-theory", "t-bob", "s-b", "r-101", "mon-2", 0, 0),
	}

	err := NewMapper(c).Verify(records)
	var cde *ConflictDetectedError
	require.ErrorAs(t, err, &cde)
	assert.Equal(t, ConflictRoom, cde.Kind)
	assert.Equal(t, "r-101", cde.ResourceID)
	assert.Equal(t, "mon-2", cde.TimeSlotID)
	assert.Equal(t, "rec-1", cde.FirstSlotID)
	assert.Equal(t, "rec-2", cde.SecondSlotID)
}

func TestVerifyDetectsBreakSlot(t *testing.T) {
	c := baseFixture().catalog(t)

	records := []models.TimetableSlot{
		record("rec-1", "o-theory", "c-theory", "t-alice", "s-a", "r-101", "mon-3", 0, 0),
	}

	err := NewMapper(c).Verify(records)
	var cde *ConflictDetectedError
	require.ErrorAs(t, err, &cde)
	assert.Equal(t, ConflictBreak, cde.Kind)
}

func TestVerifyDetectsTeacherOverload(t *testing.T) {
	f := baseFixture()
	f.teachers[0].MaxWeeklyLoad = 1
	c := f.catalog(t)

	records := []models.TimetableSlot{
		record("rec-1", "o-theory", "c-theory", "t-alice", "s-a", "r-101", "mon-1", 0, 0),
		record("rec-2", "o-theory", "c-theory", "t-alice", "s-a", "r-101", "mon-2", 1, 0),
	}

	err := NewMapper(c).Verify(records)
	var cde *ConflictDetectedError
	require.ErrorAs(t, err, &cde)
	assert.Equal(t, ConflictLoad, cde.Kind)
	assert.Equal(t, "t-alice", cde.ResourceID)
}

func TestVerifyDetectsRoomTypeMismatch(t *testing.T) {
	c := baseFixture().catalog(t)

	records := []models.TimetableSlot{
		record("rec-1", "o-lab", "c-lab", "t-bob", "s-b", "r-101", "mon-1", 0, 0),
	}

	err := NewMapper(c).Verify(records)
	var cde *ConflictDetectedError
	require.ErrorAs(t, err, &cde)
	assert.Equal(t, ConflictRoomType, cde.Kind)
}

func TestVerifyAcceptsValidRecords(t *testing.T) {
	c := baseFixture().catalog(t)

	records := []models.TimetableSlot{
		record("rec-1", "o-theory", "c-theory", "t-alice", "s-a", "r-101", "mon-1", 0, 0),
		record("rec-2", "o-lab", "c-lab", "t-bob", "s-b", "r-lab1", "mon-1", 0, 0),
		record("rec-3", "o-lab", "c-lab", "t-bob", "s-b", "r-lab1", "mon-2", 0, 1),
	}

	require.NoError(t, NewMapper(c).Verify(records))
}

func TestMapSolutionRejectsIncompleteAssignment(t *testing.T) {
	c := baseFixture().catalog(t)
	instances, err := NewCandidateGenerator(c).Generate()
	require.NoError(t, err)

	_, err = NewMapper(c).MapSolution("gen-x", instances, Assignment{0: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing from assignment")
}
