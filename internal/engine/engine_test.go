package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/models"
)

func generateOpts() GenerateOptions {
	return GenerateOptions{TimeLimit: 30 * time.Second, Weights: DefaultWeights()}
}

func TestGenerateProducesConflictFreeTimetable(t *testing.T) {
	f := baseFixture()
	c := f.catalog(t)

	res, err := New(zap.NewNop()).Generate(context.Background(), c, "gen-1", generateOpts())
	require.NoError(t, err)
	require.True(t, res.Status.Solved())

	// Two theory sessions (one slot each) plus a two-slot lab block.
	require.Len(t, res.Slots, 4)
	assert.Equal(t, 3, res.Stats.Instances)

	type occ struct{ resource, slot string }
	seen := map[occ]bool{}
	for _, r := range res.Slots {
		assert.Equal(t, "gen-1", r.GenerationID)
		for _, k := range []occ{{r.TeacherID, r.TimeSlotID}, {r.RoomID, r.TimeSlotID}, {r.SectionID, r.TimeSlotID}} {
			assert.False(t, seen[k], "double booking of %v", k)
			seen[k] = true
		}
	}

	// The produced records pass the same sweep the mapper ran.
	require.NoError(t, NewMapper(c).Verify(res.Slots))
}

func TestGenerateLabBlockIsContiguous(t *testing.T) {
	f := baseFixture()
	c := f.catalog(t)

	res, err := New(zap.NewNop()).Generate(context.Background(), c, "gen-2", generateOpts())
	require.NoError(t, err)
	require.True(t, res.Status.Solved())

	var lab []models.TimetableSlot
	for _, r := range res.Slots {
		if r.OfferingID == "o-lab" {
			lab = append(lab, r)
		}
	}
	require.Len(t, lab, 2)
	assert.Equal(t, lab[0].SessionIndex, lab[1].SessionIndex)

	first, _ := c.Slot(lab[0].TimeSlotID)
	second, _ := c.Slot(lab[1].TimeSlotID)
	if first.Period > second.Period {
		first, second = second, first
	}
	assert.Equal(t, first.DayOfWeek, second.DayOfWeek)
	assert.Equal(t, first.Period+1, second.Period)
	assert.Equal(t, "r-lab1", lab[0].RoomID)
}

func TestGenerateInfeasibleWhenSectionOverbooked(t *testing.T) {
	f := baseFixture()
	// A single teaching slot and two courses for the same section
	// cannot coexist.
	f.slots = []models.TimeSlot{f.slotAt("mon-1", 0, 1, false)}
	f.courses = []models.Course{
		{ID: "c-one", Code: "C1", Name: "One", SessionsPerWeek: 1, SessionDuration: 1, Active: true},
		{ID: "c-two", Code: "C2", Name: "Two", SessionsPerWeek: 1, SessionDuration: 1, Active: true},
	}
	f.offerings = []models.Offering{
		{ID: "o-one", TeacherID: "t-alice", CourseID: "c-one", SectionID: "s-a"},
		{ID: "o-two", TeacherID: "t-bob", CourseID: "c-two", SectionID: "s-a"},
	}

	res, err := New(zap.NewNop()).Generate(context.Background(), f.catalog(t), "gen-3", generateOpts())
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.Empty(t, res.Slots)
}

func TestGenerateInfeasibleWhenTeacherOverloaded(t *testing.T) {
	f := baseFixture()
	f.teachers[0].MaxWeeklyLoad = 1
	f.offerings = []models.Offering{
		{ID: "o-theory", TeacherID: "t-alice", CourseID: "c-theory", SectionID: "s-a"},
	}

	// Two weekly sessions against a one-hour cap. Every session still
	// has candidates, so this must surface as solver infeasibility,
	// not as a candidate error.
	res, err := New(zap.NewNop()).Generate(context.Background(), f.catalog(t), "gen-4", generateOpts())
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, res.Status)
}

func TestGenerateEmptyCatalog(t *testing.T) {
	f := baseFixture()
	f.offerings = nil

	res, err := New(zap.NewNop()).Generate(context.Background(), f.catalog(t), "gen-5", generateOpts())
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, res.Status)
	assert.Empty(t, res.Slots)
}

func TestGenerateAvoidsEdgePeriods(t *testing.T) {
	f := baseFixture()
	f.courses = []models.Course{
		{ID: "c-one", Code: "C1", Name: "One", SessionsPerWeek: 1, SessionDuration: 1, Active: true},
	}
	f.offerings = []models.Offering{
		{ID: "o-one", TeacherID: "t-alice", CourseID: "c-one", SectionID: "s-a"},
	}

	c := f.catalog(t)
	res, err := New(zap.NewNop()).Generate(context.Background(), c, "gen-6", generateOpts())
	require.NoError(t, err)
	require.Len(t, res.Slots, 1)

	// Monday periods 2 and 4 are the only interior teaching periods;
	// Tuesday has two periods so both are edges there.
	slot, ok := c.Slot(res.Slots[0].TimeSlotID)
	require.True(t, ok)
	assert.Equal(t, 0, slot.DayOfWeek)
	assert.Contains(t, []int{2, 4}, slot.Period)
}

func TestGenerateHonorsPreferredRoom(t *testing.T) {
	f := baseFixture()
	pref := "r-lab1"
	f.courses = []models.Course{
		{ID: "c-one", Code: "C1", Name: "One", SessionsPerWeek: 1, SessionDuration: 1, Active: true},
	}
	f.offerings = []models.Offering{
		{ID: "o-one", TeacherID: "t-alice", CourseID: "c-one", SectionID: "s-b", PreferredRoomID: &pref},
	}

	res, err := New(zap.NewNop()).Generate(context.Background(), f.catalog(t), "gen-7", generateOpts())
	require.NoError(t, err)
	require.Len(t, res.Slots, 1)
	assert.Equal(t, "r-lab1", res.Slots[0].RoomID)
}

func TestGenerateSpreadsSectionAcrossDays(t *testing.T) {
	f := baseFixture()
	f.courses = []models.Course{
		{ID: "c-one", Code: "C1", Name: "One", SessionsPerWeek: 2, SessionDuration: 1, Active: true},
	}
	f.offerings = []models.Offering{
		{ID: "o-one", TeacherID: "t-alice", CourseID: "c-one", SectionID: "s-a"},
	}

	c := f.catalog(t)
	res, err := New(zap.NewNop()).Generate(context.Background(), c, "gen-8", generateOpts())
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)

	// With the balance weight above the edge weight, splitting the two
	// sessions across Monday and Tuesday beats stacking Monday.
	days := map[int]bool{}
	for _, r := range res.Slots {
		slot, _ := c.Slot(r.TimeSlotID)
		days[slot.DayOfWeek] = true
	}
	assert.Len(t, days, 2)
}

func TestGenerateHonorsGlobalTimePreference(t *testing.T) {
	f := baseFixture()
	f.courses = []models.Course{
		{ID: "c-one", Code: "C1", Name: "One", SessionsPerWeek: 1, SessionDuration: 1, Active: true},
	}
	f.offerings = []models.Offering{
		{ID: "o-one", TeacherID: "t-alice", CourseID: "c-one", SectionID: "s-a"},
	}
	// No teacher scope, so the reward applies to any placement in
	// tue-1. Weight 3 against PreferenceUnit 3 outbids the edge
	// penalty of 1 that tue-1 carries.
	f.constraints = []models.Constraint{
		{ID: "cn-1", Kind: models.ConstraintTimePreference, TimeSlotID: "tue-1", Weight: 3, Active: true},
	}

	res, err := New(zap.NewNop()).Generate(context.Background(), f.catalog(t), "gen-9", generateOpts())
	require.NoError(t, err)
	require.Len(t, res.Slots, 1)
	assert.Equal(t, "tue-1", res.Slots[0].TimeSlotID)
}

func TestGenerateSectionPreferenceOnlyMovesMatchingSection(t *testing.T) {
	f := baseFixture()
	f.courses = []models.Course{
		{ID: "c-one", Code: "C1", Name: "One", SessionsPerWeek: 1, SessionDuration: 1, Active: true},
		{ID: "c-two", Code: "C2", Name: "Two", SessionsPerWeek: 1, SessionDuration: 1, Active: true},
	}
	f.offerings = []models.Offering{
		{ID: "o-a", TeacherID: "t-alice", CourseID: "c-one", SectionID: "s-a"},
		{ID: "o-b", TeacherID: "t-bob", CourseID: "c-two", SectionID: "s-b"},
	}
	sid := "s-a"
	f.constraints = []models.Constraint{
		{ID: "cn-1", Kind: models.ConstraintSectionPreference, SectionID: &sid, TimeSlotID: "tue-1", Weight: 3, Active: true},
	}

	c := f.catalog(t)
	res, err := New(zap.NewNop()).Generate(context.Background(), c, "gen-10", generateOpts())
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)

	placed := map[string]string{}
	for _, r := range res.Slots {
		placed[r.SectionID] = r.TimeSlotID
	}
	assert.Equal(t, "tue-1", placed["s-a"])

	// Section B earns no reward in tue-1, so the edge penalty keeps it
	// in a Monday interior period.
	slotB, ok := c.Slot(placed["s-b"])
	require.True(t, ok)
	assert.Equal(t, 0, slotB.DayOfWeek)
	assert.Contains(t, []int{2, 4}, slotB.Period)
}

func TestGenerateRepeatedRunsAgree(t *testing.T) {
	f := baseFixture()
	c := f.catalog(t)
	eng := New(zap.NewNop())

	first, err := eng.Generate(context.Background(), c, "gen-11a", generateOpts())
	require.NoError(t, err)
	second, err := eng.Generate(context.Background(), c, "gen-11b", generateOpts())
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	require.True(t, second.Status.Solved())
	require.Len(t, second.Slots, len(first.Slots))
	require.NoError(t, NewMapper(c).Verify(first.Slots))
	require.NoError(t, NewMapper(c).Verify(second.Slots))
}
