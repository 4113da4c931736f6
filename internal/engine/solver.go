package engine

import (
	"context"
	"errors"
	"time"

	"github.com/gitrdm/gokanlogic/pkg/minikanren"
)

// Status reflects the solver outcome for a generation run.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusTimedOut   Status = "TIMED_OUT"
)

// Solved reports whether the outcome carries a usable assignment.
func (s Status) Solved() bool { return s == StatusOptimal || s == StatusFeasible }

// Assignment maps instance index to chosen candidate index.
type Assignment map[int]int

// Options control a single solve.
type Options struct {
	TimeLimit time.Duration
}

// Outcome is the decoded result of a solve.
type Outcome struct {
	Status     Status
	Assignment Assignment
	Penalty    int
	SolveTime  time.Duration
	TimedOut   bool
}

// Solver drives the finite-domain search. When the model carries an
// objective it runs branch-and-bound, otherwise a plain feasibility
// search.
type Solver struct{}

func NewSolver() *Solver { return &Solver{} }

func (s *Solver) Solve(ctx context.Context, m *Model, opts Options) (*Outcome, error) {
	start := time.Now()
	fd := minikanren.NewSolver(m.CP)

	if m.Objective() == nil {
		return s.solveFeasible(ctx, fd, m, opts, start)
	}

	var limits []minikanren.OptimizeOption
	if opts.TimeLimit > 0 {
		limits = append(limits, minikanren.WithTimeLimit(opts.TimeLimit))
	}
	raw, best, err := fd.SolveOptimalWithOptions(ctx, m.Objective(), true, limits...)
	elapsed := time.Since(start)

	switch {
	case err == nil && raw == nil:
		return &Outcome{Status: StatusInfeasible, SolveTime: elapsed}, nil
	case err == nil:
		a, derr := m.Decode(raw)
		if derr != nil {
			return nil, derr
		}
		return &Outcome{Status: StatusOptimal, Assignment: a, Penalty: m.PenaltyOf(best), SolveTime: elapsed}, nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, minikanren.ErrSearchLimitReached):
		// The incumbent, when present, is a valid solution whose
		// optimality was not proven before the limit.
		if raw == nil {
			return &Outcome{Status: StatusTimedOut, SolveTime: elapsed, TimedOut: true}, nil
		}
		a, derr := m.Decode(raw)
		if derr != nil {
			return nil, derr
		}
		return &Outcome{Status: StatusFeasible, Assignment: a, Penalty: m.PenaltyOf(best), SolveTime: elapsed, TimedOut: true}, nil
	default:
		return nil, err
	}
}

func (s *Solver) solveFeasible(ctx context.Context, fd *minikanren.Solver, m *Model, opts Options, start time.Time) (*Outcome, error) {
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}
	sols, err := fd.Solve(ctx, 1)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &Outcome{Status: StatusTimedOut, SolveTime: elapsed, TimedOut: true}, nil
		}
		return nil, err
	}
	if len(sols) == 0 {
		return &Outcome{Status: StatusInfeasible, SolveTime: elapsed}, nil
	}
	a, derr := m.Decode(sols[0])
	if derr != nil {
		return nil, derr
	}
	return &Outcome{Status: StatusOptimal, Assignment: a, SolveTime: elapsed}, nil
}
