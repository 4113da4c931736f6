package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateExpandsSessionsPerWeek(t *testing.T) {
	c := baseFixture().catalog(t)

	instances, err := NewCandidateGenerator(c).Generate()
	require.NoError(t, err)

	// Two theory sessions plus one lab session.
	require.Len(t, instances, 3)
	assert.Equal(t, "o-theory#0", instances[0].Instance.ID)
	assert.Equal(t, "o-theory#1", instances[1].Instance.ID)
	assert.Equal(t, "o-lab#0", instances[2].Instance.ID)
	assert.Equal(t, 2, instances[2].Instance.BlockLength)
}

func TestLabCandidatesUseLabRoomsAndContiguousBlocks(t *testing.T) {
	c := baseFixture().catalog(t)

	instances, err := NewCandidateGenerator(c).Generate()
	require.NoError(t, err)

	lab := instances[2]
	require.NotEmpty(t, lab.Candidates)
	for _, cand := range lab.Candidates {
		assert.Equal(t, "r-lab1", cand.Room.ID)
		require.Len(t, cand.Slots, 2)
		assert.Equal(t, cand.Slots[0].DayOfWeek, cand.Slots[1].DayOfWeek)
		assert.Equal(t, cand.Slots[0].Period+1, cand.Slots[1].Period)
	}
}

func TestTheoryMayUseLabRooms(t *testing.T) {
	f := baseFixture()
	f.sections[0].StudentCount = 20

	instances, err := NewCandidateGenerator(f.catalog(t)).Generate()
	require.NoError(t, err)

	rooms := map[string]bool{}
	for _, cand := range instances[0].Candidates {
		rooms[cand.Room.ID] = true
	}
	assert.True(t, rooms["r-101"])
	assert.True(t, rooms["r-lab1"])
}

func TestCapacityFiltersRooms(t *testing.T) {
	f := baseFixture()
	// 35 students no longer fit the 30-seat lab.
	f.sections[0].StudentCount = 35

	instances, err := NewCandidateGenerator(f.catalog(t)).Generate()
	require.NoError(t, err)

	for _, cand := range instances[0].Candidates {
		assert.Equal(t, "r-101", cand.Room.ID)
	}
}

func TestFullyUnavailableTeacherIsInfeasible(t *testing.T) {
	f := baseFixture()
	f.blockTeacher("t-alice", f.teachingSlotIDs()...)

	_, err := NewCandidateGenerator(f.catalog(t)).Generate()

	var ice *InfeasibleCandidateError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, "o-theory", ice.OfferingID)
	assert.Equal(t, "t-alice", ice.TeacherID)
	assert.Equal(t, "o-theory#0", ice.InstanceID)
}

func TestLabWithoutContiguousSlotsIsInfeasible(t *testing.T) {
	f := baseFixture()
	// Keep only isolated teaching periods: every remaining pair of
	// adjacent periods is separated by a break.
	f.slots = f.slots[:0]
	f.slots = append(f.slots,
		f.slotAt("mon-1", 0, 1, false),
		f.slotAt("mon-2", 0, 2, true),
		f.slotAt("mon-3", 0, 3, false),
		f.slotAt("tue-1", 1, 1, false),
	)

	_, err := NewCandidateGenerator(f.catalog(t)).Generate()

	var ice *InfeasibleCandidateError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, "o-lab", ice.OfferingID)
	assert.Equal(t, "CS101L", ice.CourseCode)
}

func TestInfeasibleCandidateErrorIsNotGeneric(t *testing.T) {
	f := baseFixture()
	f.blockTeacher("t-alice", f.teachingSlotIDs()...)

	_, err := NewCandidateGenerator(f.catalog(t)).Generate()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSlotNotFound))
	assert.Contains(t, err.Error(), "no legal time slot")
}
