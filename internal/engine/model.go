package engine

import (
	"fmt"

	"github.com/gitrdm/gokanlogic/pkg/minikanren"

	"github.com/arka-edu/timetable-api/internal/models"
)

// Boolean variables use domain {1, 2}: 1 means the candidate is not
// chosen, 2 means it is.
const (
	boolFalse = 1
	boolTrue  = 2
)

// Weights tune the soft objective. All penalties are positive; a
// preference reward is applied as a reduction before per-instance
// normalization, so the final coefficients stay non-negative.
type Weights struct {
	EdgePenalty    int
	BalancePenalty int
	PreferenceUnit int
	RoomPreference int
}

func DefaultWeights() Weights {
	return Weights{EdgePenalty: 1, BalancePenalty: 2, PreferenceUnit: 3, RoomPreference: 1}
}

// VarRef ties a boolean variable back to its (instance, candidate)
// pair.
type VarRef struct {
	Instance  int
	Candidate int
}

// Model is the built constraint program plus the bookkeeping needed to
// decode a raw solver assignment back into placements.
type Model struct {
	CP        *minikanren.Model
	Instances []InstanceCandidates

	vars       []*minikanren.FDVariable
	refs       []VarRef
	byInstance [][]int

	objective *minikanren.FDVariable
	objBase   int

	NumConstraints int
}

// ModelBuilder translates candidate sets into a finite-domain model:
// one boolean per candidate, exactly-one per instance, at-most-one per
// resource and slot, a weekly-load sum per teacher, and a minimized
// penalty objective.
type ModelBuilder struct {
	catalog *Catalog
	weights Weights
}

func NewModelBuilder(c *Catalog, w Weights) *ModelBuilder {
	return &ModelBuilder{catalog: c, weights: w}
}

func (b *ModelBuilder) Build(instances []InstanceCandidates) (*Model, error) {
	m := &Model{
		CP:         minikanren.NewModel(),
		Instances:  instances,
		byInstance: make([][]int, len(instances)),
	}

	boolDomain := minikanren.NewBitSetDomainFromValues(boolTrue, []int{boolFalse, boolTrue})
	for i, ic := range instances {
		for j := range ic.Candidates {
			name := fmt.Sprintf("x_%s_%d", ic.Instance.ID, j)
			v := m.CP.NewVariableWithName(boolDomain, name)
			m.byInstance[i] = append(m.byInstance[i], len(m.vars))
			m.vars = append(m.vars, v)
			m.refs = append(m.refs, VarRef{Instance: i, Candidate: j})
		}
	}

	if err := b.addChoiceConstraints(m); err != nil {
		return nil, err
	}
	if err := b.addResourceConstraints(m); err != nil {
		return nil, err
	}
	if err := b.addLoadConstraints(m); err != nil {
		return nil, err
	}
	if err := b.addObjective(m); err != nil {
		return nil, err
	}
	return m, nil
}

// addChoiceConstraints pins exactly one candidate per instance. The
// BoolSum total encodes count+1, so a fixed {2} means count == 1.
func (b *ModelBuilder) addChoiceConstraints(m *Model) error {
	for i, idxs := range m.byInstance {
		vars := pick(m.vars, idxs)
		total := m.CP.NewVariable(minikanren.NewBitSetDomainFromValues(len(vars)+1, []int{2}))
		c, err := minikanren.NewBoolSum(vars, total)
		if err != nil {
			return fmt.Errorf("choice constraint for instance %s: %w", m.Instances[i].Instance.ID, err)
		}
		m.CP.AddConstraint(c)
		m.NumConstraints++
	}
	return nil
}

// addResourceConstraints forbids double booking: over all candidates
// covering a given slot, at most one per teacher, per room, and per
// section may be chosen.
func (b *ModelBuilder) addResourceConstraints(m *Model) error {
	type key struct {
		resource string
		slot     string
	}
	cover := make(map[key][]*minikanren.FDVariable)

	for vi, ref := range m.refs {
		ic := m.Instances[ref.Instance]
		cand := ic.Candidates[ref.Candidate]
		for _, s := range cand.Slots {
			cover[key{"t:" + ic.Instance.Teacher.ID, s.ID}] = append(cover[key{"t:" + ic.Instance.Teacher.ID, s.ID}], m.vars[vi])
			cover[key{"r:" + cand.Room.ID, s.ID}] = append(cover[key{"r:" + cand.Room.ID, s.ID}], m.vars[vi])
			cover[key{"s:" + ic.Instance.Section.ID, s.ID}] = append(cover[key{"s:" + ic.Instance.Section.ID, s.ID}], m.vars[vi])
		}
	}

	for k, vars := range cover {
		if len(vars) < 2 {
			continue
		}
		// count in {0, 1}, encoded as total in {1, 2}
		total := m.CP.NewVariable(minikanren.NewBitSetDomainFromValues(len(vars)+1, []int{1, 2}))
		c, err := minikanren.NewBoolSum(vars, total)
		if err != nil {
			return fmt.Errorf("occupancy constraint %s@%s: %w", k.resource, k.slot, err)
		}
		m.CP.AddConstraint(c)
		m.NumConstraints++
	}
	return nil
}

// addLoadConstraints caps weekly teaching hours per teacher. With all
// booleans at the false value 1, a LinearSum over hour coefficients has
// baseline sum B; each chosen instance adds its hours once. Restricting
// the total to [B, B+max] turns an overload into solver infeasibility.
func (b *ModelBuilder) addLoadConstraints(m *Model) error {
	type acc struct {
		vars   []*minikanren.FDVariable
		coeffs []int
		hours  int
	}
	byTeacher := make(map[string]*acc)

	for i, ic := range m.Instances {
		t := ic.Instance.Teacher
		if t.MaxWeeklyLoad <= 0 {
			continue
		}
		a := byTeacher[t.ID]
		if a == nil {
			a = &acc{}
			byTeacher[t.ID] = a
		}
		a.hours += ic.Instance.Hours()
		for _, vi := range m.byInstance[i] {
			a.vars = append(a.vars, m.vars[vi])
			a.coeffs = append(a.coeffs, ic.Instance.Hours())
		}
	}

	for teacherID, a := range byTeacher {
		teacher, _ := b.catalog.Teacher(teacherID)
		base := 0
		for _, c := range a.coeffs {
			base += c
		}
		limit := a.hours
		if teacher.MaxWeeklyLoad < limit {
			limit = teacher.MaxWeeklyLoad
		}
		total := m.CP.NewVariable(minikanren.NewBitSetDomainFromValues(base+limit, rangeValues(base, base+limit)))
		c, err := minikanren.NewLinearSum(a.vars, a.coeffs, total)
		if err != nil {
			return fmt.Errorf("load constraint for teacher %s: %w", teacherID, err)
		}
		m.CP.AddConstraint(c)
		m.NumConstraints++
	}
	return nil
}

// addObjective assembles the minimized penalty sum: edge-of-day
// placements, unmet placement preferences, and per-section peak-day
// counts that spread sessions across the week.
func (b *ModelBuilder) addObjective(m *Model) error {
	raw := make([]int, len(m.vars))
	for vi, ref := range m.refs {
		raw[vi] = b.candidatePenalty(m.Instances[ref.Instance], m.Instances[ref.Instance].Candidates[ref.Candidate])
	}

	// Shift per instance so coefficients stay non-negative. Exactly one
	// variable per instance is true, so a uniform shift cannot change
	// which assignment minimizes the sum.
	for _, idxs := range m.byInstance {
		min := raw[idxs[0]]
		for _, vi := range idxs {
			if raw[vi] < min {
				min = raw[vi]
			}
		}
		for _, vi := range idxs {
			raw[vi] -= min
		}
	}

	var objVars []*minikanren.FDVariable
	var objCoeffs []int
	ub := 0
	for vi, w := range raw {
		if w == 0 {
			continue
		}
		objVars = append(objVars, m.vars[vi])
		objCoeffs = append(objCoeffs, w)
		m.objBase += w * boolFalse
		ub += w * boolTrue
	}

	peaks, peakCoeffs, peakUB, err := b.addBalanceTerms(m)
	if err != nil {
		return err
	}
	objVars = append(objVars, peaks...)
	objCoeffs = append(objCoeffs, peakCoeffs...)
	ub += peakUB

	if len(objVars) == 0 {
		return nil
	}

	obj := m.CP.NewVariableWithName(minikanren.NewBitSetDomain(ub), "penalty")
	c, err := minikanren.NewLinearSum(objVars, objCoeffs, obj)
	if err != nil {
		return fmt.Errorf("objective: %w", err)
	}
	m.CP.AddConstraint(c)
	m.NumConstraints++
	m.objective = obj
	return nil
}

// candidatePenalty scores a single placement before normalization.
// Rewards subtract, so a fulfilled preference lowers the score.
func (b *ModelBuilder) candidatePenalty(ic InstanceCandidates, cand Candidate) int {
	w := 0
	for _, s := range cand.Slots {
		first, last, ok := b.catalog.EdgePeriods(s.DayOfWeek)
		if ok && (s.Period == first || s.Period == last) {
			w += b.weights.EdgePenalty
		}
		for _, p := range b.catalog.Preferences() {
			if p.TimeSlotID != s.ID {
				continue
			}
			switch p.Kind {
			case models.ConstraintTimePreference:
				if p.TeacherID == nil || *p.TeacherID == ic.Instance.Teacher.ID {
					w -= p.Weight * b.weights.PreferenceUnit
				}
			case models.ConstraintSectionPreference:
				if p.SectionID != nil && *p.SectionID == ic.Instance.Section.ID {
					w -= p.Weight * b.weights.PreferenceUnit
				}
			}
		}
	}
	if pref := ic.Instance.Offering.PreferredRoomID; pref != nil && cand.Room.ID == *pref {
		w -= b.weights.RoomPreference
	}
	return w
}

// addBalanceTerms builds, per section, a per-day chosen count and a
// max over those counts. Minimizing the weighted peak pushes sessions
// onto otherwise empty days.
func (b *ModelBuilder) addBalanceTerms(m *Model) (vars []*minikanren.FDVariable, coeffs []int, ub int, err error) {
	if b.weights.BalancePenalty <= 0 {
		return nil, nil, 0, nil
	}
	type key struct {
		section string
		day     int
	}
	cover := make(map[key][]*minikanren.FDVariable)
	days := make(map[string]map[int]struct{})

	for vi, ref := range m.refs {
		ic := m.Instances[ref.Instance]
		day := ic.Candidates[ref.Candidate].Start().DayOfWeek
		k := key{ic.Instance.Section.ID, day}
		cover[k] = append(cover[k], m.vars[vi])
		if days[k.section] == nil {
			days[k.section] = make(map[int]struct{})
		}
		days[k.section][day] = struct{}{}
	}

	for sectionID, dayset := range days {
		if len(dayset) < 2 {
			continue
		}
		var counts []*minikanren.FDVariable
		maxDomain := 0
		for day := range dayset {
			dayVars := cover[key{sectionID, day}]
			total := m.CP.NewVariable(minikanren.NewBitSetDomain(len(dayVars) + 1))
			c, err := minikanren.NewBoolSum(dayVars, total)
			if err != nil {
				return nil, nil, 0, fmt.Errorf("balance count for section %s day %d: %w", sectionID, day, err)
			}
			m.CP.AddConstraint(c)
			m.NumConstraints++
			counts = append(counts, total)
			if len(dayVars)+1 > maxDomain {
				maxDomain = len(dayVars) + 1
			}
		}
		peak := m.CP.NewVariableWithName(minikanren.NewBitSetDomain(maxDomain), "peak_"+sectionID)
		c, err := minikanren.NewMax(counts, peak)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("balance peak for section %s: %w", sectionID, err)
		}
		m.CP.AddConstraint(c)
		m.NumConstraints++
		vars = append(vars, peak)
		coeffs = append(coeffs, b.weights.BalancePenalty)
		ub += b.weights.BalancePenalty * maxDomain
	}
	return vars, coeffs, ub, nil
}

// NumVariables reports the decision booleans, excluding totals and
// objective helpers.
func (m *Model) NumVariables() int { return len(m.vars) }

// Objective returns the penalty variable, or nil when every candidate
// scored zero and no balance terms exist.
func (m *Model) Objective() *minikanren.FDVariable { return m.objective }

// Decode turns a raw solver vector into an instance-to-candidate
// assignment, checking the exactly-one shape on the way.
func (m *Model) Decode(raw []int) (Assignment, error) {
	a := make(Assignment, len(m.Instances))
	for vi, v := range m.vars {
		if v.ID() >= len(raw) {
			return nil, fmt.Errorf("solution vector too short: missing variable %d", v.ID())
		}
		if raw[v.ID()] != boolTrue {
			continue
		}
		ref := m.refs[vi]
		if prev, dup := a[ref.Instance]; dup {
			return nil, fmt.Errorf("instance %s assigned candidates %d and %d",
				m.Instances[ref.Instance].Instance.ID, prev, ref.Candidate)
		}
		a[ref.Instance] = ref.Candidate
	}
	for i := range m.Instances {
		if _, ok := a[i]; !ok {
			return nil, fmt.Errorf("instance %s has no chosen candidate", m.Instances[i].Instance.ID)
		}
	}
	return a, nil
}

// PenaltyOf converts a raw objective total into the human-meaningful
// penalty by removing the false-value baseline of the boolean terms.
func (m *Model) PenaltyOf(total int) int {
	if m.objective == nil {
		return 0
	}
	return total - m.objBase
}

func pick(vars []*minikanren.FDVariable, idxs []int) []*minikanren.FDVariable {
	out := make([]*minikanren.FDVariable, len(idxs))
	for i, vi := range idxs {
		out[i] = vars[vi]
	}
	return out
}

func rangeValues(lo, hi int) []int {
	vals := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		vals = append(vals, v)
	}
	return vals
}
