package models

import "time"

// GenerationStatus is the lifecycle of a generation run record.
type GenerationStatus string

const (
	GenerationStatusPending GenerationStatus = "PENDING"
	GenerationStatusRunning GenerationStatus = "RUNNING"
	GenerationStatusSuccess GenerationStatus = "SUCCESS"
	GenerationStatusFailed  GenerationStatus = "FAILED"
)

// GenerationRun is the audit record of one timetable generation.
// SolverStatus carries the engine outcome (OPTIMAL, FEASIBLE,
// INFEASIBLE, TIMED_OUT, or an error code).
type GenerationRun struct {
	ID           string           `db:"id" json:"id"`
	Status       GenerationStatus `db:"status" json:"status"`
	SolverStatus string           `db:"solver_status" json:"solver_status"`
	TotalSlots   int              `db:"total_slots" json:"total_slots"`
	SolveSeconds float64          `db:"solve_seconds" json:"solve_seconds"`
	Notes        string           `db:"notes" json:"notes"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}
