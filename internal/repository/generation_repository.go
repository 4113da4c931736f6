package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// GenerationRepository keeps the audit trail of generation runs.
type GenerationRepository struct {
	db *sqlx.DB
}

// NewGenerationRepository constructs a GenerationRepository.
func NewGenerationRepository(db *sqlx.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

const generationColumns = "id, status, solver_status, total_slots, solve_seconds, notes, created_at, updated_at"

// Create inserts a pending run.
func (r *GenerationRepository) Create(ctx context.Context, run *models.GenerationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.Status == "" {
		run.Status = models.GenerationStatusPending
	}
	const query = `INSERT INTO generation_runs (id, status, solver_status, total_slots, solve_seconds, notes, created_at, updated_at)
        VALUES (:id, :status, :solver_status, :total_slots, :solve_seconds, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create generation run: %w", err)
	}
	return nil
}

// MarkRunning transitions a pending run to running.
func (r *GenerationRepository) MarkRunning(ctx context.Context, id string) error {
	const query = `UPDATE generation_runs SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.GenerationStatusRunning, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark generation running: %w", err)
	}
	return nil
}

// Finish records the terminal state of a run. It runs on the caller's
// executor so the outcome commits atomically with the slot batch.
func (r *GenerationRepository) Finish(ctx context.Context, exec sqlx.ExtContext, run *models.GenerationRun) error {
	run.UpdatedAt = time.Now().UTC()
	const query = `UPDATE generation_runs SET status = :status, solver_status = :solver_status, total_slots = :total_slots,
        solve_seconds = :solve_seconds, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, run); err != nil {
		return fmt.Errorf("finish generation run: %w", err)
	}
	return nil
}

// FindByID fetches a run by ID.
func (r *GenerationRepository) FindByID(ctx context.Context, id string) (*models.GenerationRun, error) {
	query := fmt.Sprintf("SELECT %s FROM generation_runs WHERE id = $1", generationColumns)
	var run models.GenerationRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// FindLatestSuccessful returns the newest run that produced a
// timetable, which is what every read endpoint serves by default.
func (r *GenerationRepository) FindLatestSuccessful(ctx context.Context) (*models.GenerationRun, error) {
	query := fmt.Sprintf("SELECT %s FROM generation_runs WHERE status = $1 ORDER BY created_at DESC LIMIT 1", generationColumns)
	var run models.GenerationRun
	if err := r.db.GetContext(ctx, &run, query, models.GenerationStatusSuccess); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest first.
func (r *GenerationRepository) List(ctx context.Context, limit int) ([]models.GenerationRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT %s FROM generation_runs ORDER BY created_at DESC LIMIT %d", generationColumns, limit)
	var runs []models.GenerationRun
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list generation runs: %w", err)
	}
	return runs, nil
}
