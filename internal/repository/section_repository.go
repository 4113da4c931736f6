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

// SectionRepository manages persistence for student section records.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = "id, name, program, semester, letter, student_count, active, created_at, updated_at"

// List returns sections, optionally filtered by program and semester.
func (r *SectionRepository) List(ctx context.Context, program, semester string) ([]models.Section, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if program != "" {
		conditions = append(conditions, fmt.Sprintf("program = $%d", len(args)+1))
		args = append(args, program)
	}
	if semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, semester)
	}
	query := fmt.Sprintf("SELECT %s FROM sections WHERE %s ORDER BY name ASC", sectionColumns, strings.Join(conditions, " AND "))
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// ListActive returns every active section for catalog snapshots.
func (r *SectionRepository) ListActive(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	query := fmt.Sprintf("SELECT %s FROM sections WHERE active = TRUE ORDER BY name ASC", sectionColumns)
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list active sections: %w", err)
	}
	return sections, nil
}

// FindByID fetches a section by ID.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf("SELECT %s FROM sections WHERE id = $1", sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// Create inserts a new section record.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now
	const query = `INSERT INTO sections (id, name, program, semester, letter, student_count, active, created_at, updated_at)
        VALUES (:id, :name, :program, :semester, :letter, :student_count, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Update modifies an existing section.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sections SET name = :name, program = :program, semester = :semester,
        letter = :letter, student_count = :student_count, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Deactivate marks a section as inactive.
func (r *SectionRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE sections SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate section: %w", err)
	}
	return nil
}
