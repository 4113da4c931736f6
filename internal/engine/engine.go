// Package engine implements the timetable generation pipeline: a
// catalog snapshot feeds a candidate generator, the candidates become a
// finite-domain constraint model, a branch-and-bound search picks the
// least-penalized assignment, and a mapper materializes and verifies
// the resulting records.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arka-edu/timetable-api/internal/models"
)

// GenerateOptions tune one generation run.
type GenerateOptions struct {
	TimeLimit time.Duration
	Weights   Weights
}

// Stats describes the size of a run for the audit trail and logs.
type Stats struct {
	Instances   int
	Candidates  int
	Variables   int
	Constraints int
	SolveTime   time.Duration
	TimedOut    bool
}

// Result is the outcome of a full generation run. Slots is empty
// unless Status is solved.
type Result struct {
	Status  Status
	Slots   []models.TimetableSlot
	Penalty int
	Stats   Stats
}

// Engine wires the pipeline stages together. It is stateless; every
// call works on the catalog snapshot it is given.
type Engine struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Generate runs the full pipeline for one catalog snapshot. It returns
// an InfeasibleCandidateError before solving when some session has no
// legal placement, and a ConflictDetectedError when the solved records
// fail the integrity sweep.
func (e *Engine) Generate(ctx context.Context, catalog *Catalog, generationID string, opts GenerateOptions) (*Result, error) {
	instances, err := NewCandidateGenerator(catalog).Generate()
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		e.logger.Info("nothing to schedule", zap.String("generation_id", generationID))
		return &Result{Status: StatusOptimal}, nil
	}

	totalCands := 0
	for _, ic := range instances {
		totalCands += len(ic.Candidates)
	}

	model, err := NewModelBuilder(catalog, opts.Weights).Build(instances)
	if err != nil {
		return nil, err
	}
	e.logger.Info("constraint model built",
		zap.String("generation_id", generationID),
		zap.Int("instances", len(instances)),
		zap.Int("candidates", totalCands),
		zap.Int("variables", model.NumVariables()),
		zap.Int("constraints", model.NumConstraints))

	outcome, err := NewSolver().Solve(ctx, model, Options{TimeLimit: opts.TimeLimit})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Status:  outcome.Status,
		Penalty: outcome.Penalty,
		Stats: Stats{
			Instances:   len(instances),
			Candidates:  totalCands,
			Variables:   model.NumVariables(),
			Constraints: model.NumConstraints,
			SolveTime:   outcome.SolveTime,
			TimedOut:    outcome.TimedOut,
		},
	}
	if !outcome.Status.Solved() {
		e.logger.Warn("no timetable produced",
			zap.String("generation_id", generationID),
			zap.String("status", string(outcome.Status)),
			zap.Duration("solve_time", outcome.SolveTime))
		return res, nil
	}

	slots, err := NewMapper(catalog).MapSolution(generationID, instances, outcome.Assignment)
	if err != nil {
		return nil, err
	}
	res.Slots = slots
	e.logger.Info("timetable generated",
		zap.String("generation_id", generationID),
		zap.String("status", string(outcome.Status)),
		zap.Int("slots", len(slots)),
		zap.Int("penalty", outcome.Penalty),
		zap.Duration("solve_time", outcome.SolveTime))
	return res, nil
}
