package dto

import "github.com/arka-edu/timetable-api/internal/models"

// GenerateTimetableRequest starts a full regeneration run.
type GenerateTimetableRequest struct {
	TimeLimitSeconds int    `json:"timeLimitSeconds" validate:"omitempty,min=1,max=3600"`
	Notes            string `json:"notes" validate:"omitempty,max=500"`
}

// GenerationRunResponse reports the state of a run.
type GenerationRunResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	SolverStatus string  `json:"solverStatus,omitempty"`
	TotalSlots   int     `json:"totalSlots"`
	SolveSeconds float64 `json:"solveSeconds"`
	Notes        string  `json:"notes,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// NewGenerationRunResponse maps the audit record into its API shape.
func NewGenerationRunResponse(run *models.GenerationRun) GenerationRunResponse {
	return GenerationRunResponse{
		ID:           run.ID,
		Status:       string(run.Status),
		SolverStatus: run.SolverStatus,
		TotalSlots:   run.TotalSlots,
		SolveSeconds: run.SolveSeconds,
		Notes:        run.Notes,
		CreatedAt:    run.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    run.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
