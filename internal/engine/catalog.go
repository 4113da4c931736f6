package engine

import (
	"fmt"
	"sort"

	"github.com/arka-edu/timetable-api/internal/models"
)

// Catalog is an immutable snapshot of the scheduling inputs. Inactive
// entities are filtered out at construction, and offerings referencing
// an inactive entity are dropped, so everything downstream can treat
// the catalog as already validated.
type Catalog struct {
	teachers map[string]*models.Teacher
	courses  map[string]*models.Course
	sections map[string]*models.Section
	rooms    map[string]*models.Room
	slots    map[string]*models.TimeSlot

	offerings []models.Offering
	skipped   int

	roomList   []*models.Room
	slotsByDay map[int][]*models.TimeSlot
	assignable []*models.TimeSlot

	teacherBlocked map[string]map[string]struct{}
	roomBlocked    map[string]map[string]struct{}
	preferences    []models.Constraint
}

// NewCatalog indexes the raw roster. It returns an error only for
// dangling references, which indicate corrupted data rather than an
// intentionally deactivated entity.
func NewCatalog(
	teachers []models.Teacher,
	courses []models.Course,
	sections []models.Section,
	rooms []models.Room,
	slots []models.TimeSlot,
	offerings []models.Offering,
	constraints []models.Constraint,
) (*Catalog, error) {
	c := &Catalog{
		teachers:       make(map[string]*models.Teacher),
		courses:        make(map[string]*models.Course),
		sections:       make(map[string]*models.Section),
		rooms:          make(map[string]*models.Room),
		slots:          make(map[string]*models.TimeSlot),
		slotsByDay:     make(map[int][]*models.TimeSlot),
		teacherBlocked: make(map[string]map[string]struct{}),
		roomBlocked:    make(map[string]map[string]struct{}),
	}

	known := make(map[string]struct{})
	for i := range teachers {
		known["t:"+teachers[i].ID] = struct{}{}
		if teachers[i].Active {
			c.teachers[teachers[i].ID] = &teachers[i]
		}
	}
	for i := range courses {
		known["c:"+courses[i].ID] = struct{}{}
		if courses[i].Active {
			c.courses[courses[i].ID] = &courses[i]
		}
	}
	for i := range sections {
		known["s:"+sections[i].ID] = struct{}{}
		if sections[i].Active {
			c.sections[sections[i].ID] = &sections[i]
		}
	}
	for i := range rooms {
		known["r:"+rooms[i].ID] = struct{}{}
		if rooms[i].Active {
			c.rooms[rooms[i].ID] = &rooms[i]
			c.roomList = append(c.roomList, &rooms[i])
		}
	}
	for i := range slots {
		if !slots[i].Active {
			continue
		}
		c.slots[slots[i].ID] = &slots[i]
		c.slotsByDay[slots[i].DayOfWeek] = append(c.slotsByDay[slots[i].DayOfWeek], &slots[i])
	}

	sort.Slice(c.roomList, func(i, j int) bool { return c.roomList[i].Number < c.roomList[j].Number })
	for day := range c.slotsByDay {
		ds := c.slotsByDay[day]
		sort.Slice(ds, func(i, j int) bool { return ds[i].Period < ds[j].Period })
	}

	var days []int
	for day := range c.slotsByDay {
		days = append(days, day)
	}
	sort.Ints(days)
	for _, day := range days {
		for _, s := range c.slotsByDay[day] {
			if !s.IsBreak {
				c.assignable = append(c.assignable, s)
			}
		}
	}

	for _, o := range offerings {
		if _, ok := known["t:"+o.TeacherID]; !ok {
			return nil, fmt.Errorf("offering %s references unknown teacher %s", o.ID, o.TeacherID)
		}
		if _, ok := known["c:"+o.CourseID]; !ok {
			return nil, fmt.Errorf("offering %s references unknown course %s", o.ID, o.CourseID)
		}
		if _, ok := known["s:"+o.SectionID]; !ok {
			return nil, fmt.Errorf("offering %s references unknown section %s", o.ID, o.SectionID)
		}
		_, t := c.teachers[o.TeacherID]
		_, cr := c.courses[o.CourseID]
		_, s := c.sections[o.SectionID]
		if !t || !cr || !s {
			c.skipped++
			continue
		}
		c.offerings = append(c.offerings, o)
	}

	for _, cn := range constraints {
		if !cn.Active {
			continue
		}
		if !cn.IsHard() {
			c.preferences = append(c.preferences, cn)
			continue
		}
		switch cn.Kind {
		case models.ConstraintTeacherUnavailable:
			if cn.TeacherID == nil {
				return nil, fmt.Errorf("constraint %s: teacher unavailability without a teacher", cn.ID)
			}
			c.block(c.teacherBlocked, *cn.TeacherID, cn.TimeSlotID)
		case models.ConstraintRoomUnavailable:
			if cn.RoomID == nil {
				return nil, fmt.Errorf("constraint %s: room unavailability without a room", cn.ID)
			}
			c.block(c.roomBlocked, *cn.RoomID, cn.TimeSlotID)
		}
	}

	return c, nil
}

func (c *Catalog) block(m map[string]map[string]struct{}, resourceID, slotID string) {
	if m[resourceID] == nil {
		m[resourceID] = make(map[string]struct{})
	}
	m[resourceID][slotID] = struct{}{}
}

func (c *Catalog) Teacher(id string) (*models.Teacher, bool) { t, ok := c.teachers[id]; return t, ok }
func (c *Catalog) Course(id string) (*models.Course, bool)   { cr, ok := c.courses[id]; return cr, ok }
func (c *Catalog) Section(id string) (*models.Section, bool) { s, ok := c.sections[id]; return s, ok }
func (c *Catalog) Room(id string) (*models.Room, bool)       { r, ok := c.rooms[id]; return r, ok }
func (c *Catalog) Slot(id string) (*models.TimeSlot, bool)   { s, ok := c.slots[id]; return s, ok }

// Offerings returns the offerings whose teacher, course and section are
// all active.
func (c *Catalog) Offerings() []models.Offering { return c.offerings }

// SkippedOfferings reports how many offerings were dropped because a
// referenced entity is inactive.
func (c *Catalog) SkippedOfferings() int { return c.skipped }

// Rooms returns active rooms ordered by room number.
func (c *Catalog) Rooms() []*models.Room { return c.roomList }

// AssignableSlots returns active non-break slots ordered by day then
// period.
func (c *Catalog) AssignableSlots() []*models.TimeSlot { return c.assignable }

// Preferences returns the active soft constraints.
func (c *Catalog) Preferences() []models.Constraint { return c.preferences }

// BlockFrom returns length consecutive slots on the same day starting
// at start, stepping one period at a time. It fails when the run would
// cross a break, a missing period, or the end of the day.
func (c *Catalog) BlockFrom(start *models.TimeSlot, length int) ([]*models.TimeSlot, bool) {
	if start.IsBreak {
		return nil, false
	}
	if length <= 1 {
		return []*models.TimeSlot{start}, true
	}
	day := c.slotsByDay[start.DayOfWeek]
	idx := -1
	for i, s := range day {
		if s.ID == start.ID {
			idx = i
			break
		}
	}
	if idx < 0 || idx+length > len(day) {
		return nil, false
	}
	block := make([]*models.TimeSlot, 0, length)
	prev := start.Period
	for i := idx; i < idx+length; i++ {
		s := day[i]
		if s.IsBreak {
			return nil, false
		}
		if i > idx && s.Period != prev+1 {
			return nil, false
		}
		prev = s.Period
		block = append(block, s)
	}
	return block, true
}

// EdgePeriods returns the first and last teaching periods of a day,
// ignoring breaks. ok is false when the day has no teaching slots.
func (c *Catalog) EdgePeriods(day int) (first, last int, ok bool) {
	for _, s := range c.slotsByDay[day] {
		if s.IsBreak {
			continue
		}
		if !ok {
			first, last, ok = s.Period, s.Period, true
			continue
		}
		if s.Period < first {
			first = s.Period
		}
		if s.Period > last {
			last = s.Period
		}
	}
	return first, last, ok
}

// TeacherBlocked reports whether a hard unavailability rules the
// teacher out of the given slot.
func (c *Catalog) TeacherBlocked(teacherID, slotID string) bool {
	_, ok := c.teacherBlocked[teacherID][slotID]
	return ok
}

// RoomBlocked reports whether a hard unavailability rules the room out
// of the given slot.
func (c *Catalog) RoomBlocked(roomID, slotID string) bool {
	_, ok := c.roomBlocked[roomID][slotID]
	return ok
}
