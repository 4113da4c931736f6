package engine

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/arka-edu/timetable-api/internal/models"
)

// SessionInstance is one weekly occurrence of an offering. An offering
// with three sessions per week produces three instances; a lab instance
// occupies a block of consecutive slots.
type SessionInstance struct {
	ID          string
	Offering    models.Offering
	Course      *models.Course
	Teacher     *models.Teacher
	Section     *models.Section
	Index       int
	BlockLength int
}

// Hours is the weekly teaching hours this instance contributes.
func (si SessionInstance) Hours() int { return si.BlockLength }

// Candidate is one legal placement: a run of covered slots plus a room.
// Slots are ordered by period; theory sessions cover exactly one.
type Candidate struct {
	Slots []*models.TimeSlot
	Room  *models.Room
}

// Start returns the first covered slot.
func (c Candidate) Start() *models.TimeSlot { return c.Slots[0] }

// InstanceCandidates pairs an instance with its legal placements.
type InstanceCandidates struct {
	Instance   SessionInstance
	Candidates []Candidate
}

// CandidateGenerator enumerates legal placements ahead of the solver,
// so that hard availability, capacity and room-type rules never reach
// the constraint model at all.
type CandidateGenerator struct {
	catalog *Catalog
}

func NewCandidateGenerator(c *Catalog) *CandidateGenerator {
	return &CandidateGenerator{catalog: c}
}

// Generate expands every offering into its session instances and
// computes the candidate set of each. It fails with an
// InfeasibleCandidateError as soon as any instance has no placement,
// since the batch can never be solved in that state.
func (g *CandidateGenerator) Generate() ([]InstanceCandidates, error) {
	var out []InstanceCandidates
	for _, off := range g.catalog.Offerings() {
		course, _ := g.catalog.Course(off.CourseID)
		teacher, _ := g.catalog.Teacher(off.TeacherID)
		section, _ := g.catalog.Section(off.SectionID)

		blockLen := course.SessionDuration
		if blockLen < 1 {
			blockLen = 1
		}
		rooms := g.suitableRooms(course, section)
		cands := g.placements(off, teacher, rooms, blockLen)

		for i := 0; i < course.SessionsPerWeek; i++ {
			inst := SessionInstance{
				ID:          fmt.Sprintf("%s#%d", off.ID, i),
				Offering:    off,
				Course:      course,
				Teacher:     teacher,
				Section:     section,
				Index:       i,
				BlockLength: blockLen,
			}
			if len(cands) == 0 {
				return nil, &InfeasibleCandidateError{
					InstanceID: inst.ID,
					OfferingID: off.ID,
					CourseCode: course.Code,
					TeacherID:  teacher.ID,
					SectionID:  section.ID,
				}
			}
			out = append(out, InstanceCandidates{Instance: inst, Candidates: cands})
		}
	}
	return out, nil
}

// suitableRooms keeps rooms that fit the section and match the course
// kind. Labs must run in lab rooms; theory sessions may use any room,
// labs included.
func (g *CandidateGenerator) suitableRooms(course *models.Course, section *models.Section) []*models.Room {
	return lo.Filter(g.catalog.Rooms(), func(r *models.Room, _ int) bool {
		if r.Capacity < section.StudentCount {
			return false
		}
		if course.IsLab && r.Type != models.RoomTypeLab {
			return false
		}
		return true
	})
}

func (g *CandidateGenerator) placements(off models.Offering, teacher *models.Teacher, rooms []*models.Room, blockLen int) []Candidate {
	var cands []Candidate
	for _, start := range g.catalog.AssignableSlots() {
		block, ok := g.catalog.BlockFrom(start, blockLen)
		if !ok {
			continue
		}
		if g.anyBlocked(g.catalog.TeacherBlocked, teacher.ID, block) {
			continue
		}
		for _, room := range rooms {
			if g.anyBlocked(g.catalog.RoomBlocked, room.ID, block) {
				continue
			}
			cands = append(cands, Candidate{Slots: block, Room: room})
		}
	}
	return cands
}

func (g *CandidateGenerator) anyBlocked(blocked func(string, string) bool, resourceID string, block []*models.TimeSlot) bool {
	for _, s := range block {
		if blocked(resourceID, s.ID) {
			return true
		}
	}
	return false
}
