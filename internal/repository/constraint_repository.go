package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// ConstraintRepository manages availability rules and preferences.
type ConstraintRepository struct {
	db *sqlx.DB
}

// NewConstraintRepository constructs a ConstraintRepository.
func NewConstraintRepository(db *sqlx.DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

const constraintColumns = "id, kind, teacher_id, room_id, section_id, time_slot_id, weight, active, created_at"

// List returns constraints, optionally filtered by kind or teacher.
func (r *ConstraintRepository) List(ctx context.Context, kind, teacherID string) ([]models.Constraint, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, kind)
	}
	if teacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, teacherID)
	}
	query := fmt.Sprintf("SELECT %s FROM constraints WHERE %s ORDER BY created_at ASC", constraintColumns, strings.Join(conditions, " AND "))
	var constraints []models.Constraint
	if err := r.db.SelectContext(ctx, &constraints, query, args...); err != nil {
		return nil, fmt.Errorf("list constraints: %w", err)
	}
	return constraints, nil
}

// ListActive returns every active constraint for catalog snapshots.
func (r *ConstraintRepository) ListActive(ctx context.Context) ([]models.Constraint, error) {
	var constraints []models.Constraint
	query := fmt.Sprintf("SELECT %s FROM constraints WHERE active = TRUE ORDER BY created_at ASC", constraintColumns)
	if err := r.db.SelectContext(ctx, &constraints, query); err != nil {
		return nil, fmt.Errorf("list active constraints: %w", err)
	}
	return constraints, nil
}

// FindByID fetches a constraint by ID.
func (r *ConstraintRepository) FindByID(ctx context.Context, id string) (*models.Constraint, error) {
	query := fmt.Sprintf("SELECT %s FROM constraints WHERE id = $1", constraintColumns)
	var cn models.Constraint
	if err := r.db.GetContext(ctx, &cn, query, id); err != nil {
		return nil, err
	}
	return &cn, nil
}

// Create inserts a new constraint.
func (r *ConstraintRepository) Create(ctx context.Context, cn *models.Constraint) error {
	if cn.ID == "" {
		cn.ID = uuid.NewString()
	}
	if cn.CreatedAt.IsZero() {
		cn.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO constraints (id, kind, teacher_id, room_id, section_id, time_slot_id, weight, active, created_at)
        VALUES (:id, :kind, :teacher_id, :room_id, :section_id, :time_slot_id, :weight, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cn); err != nil {
		return fmt.Errorf("create constraint: %w", err)
	}
	return nil
}

// Delete removes a constraint.
func (r *ConstraintRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM constraints WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete constraint: %w", err)
	}
	return nil
}
