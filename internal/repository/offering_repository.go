package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// OfferingRepository manages teacher-course-section assignments.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs an OfferingRepository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

const offeringColumns = "id, teacher_id, course_id, section_id, preferred_room_id, created_at, updated_at"

// List returns offerings matching the provided filters.
func (r *OfferingRepository) List(ctx context.Context, filter models.OfferingFilter) ([]models.Offering, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	query := fmt.Sprintf("SELECT %s FROM offerings WHERE %s ORDER BY created_at ASC", offeringColumns, strings.Join(conditions, " AND "))
	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	return offerings, nil
}

// ListAll returns every offering for catalog snapshots.
func (r *OfferingRepository) ListAll(ctx context.Context) ([]models.Offering, error) {
	var offerings []models.Offering
	query := fmt.Sprintf("SELECT %s FROM offerings ORDER BY created_at ASC", offeringColumns)
	if err := r.db.SelectContext(ctx, &offerings, query); err != nil {
		return nil, fmt.Errorf("list all offerings: %w", err)
	}
	return offerings, nil
}

// FindByID fetches an offering by ID.
func (r *OfferingRepository) FindByID(ctx context.Context, id string) (*models.Offering, error) {
	query := fmt.Sprintf("SELECT %s FROM offerings WHERE id = $1", offeringColumns)
	var offering models.Offering
	if err := r.db.GetContext(ctx, &offering, query, id); err != nil {
		return nil, err
	}
	return &offering, nil
}

// Exists reports whether the same teacher-course-section triple is
// already assigned.
func (r *OfferingRepository) Exists(ctx context.Context, teacherID, courseID, sectionID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM offerings WHERE teacher_id = $1 AND course_id = $2 AND section_id = $3"
	args := []interface{}{teacherID, courseID, sectionID}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check offering: %w", err)
	}
	return true, nil
}

// Create inserts a new offering.
func (r *OfferingRepository) Create(ctx context.Context, offering *models.Offering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if offering.CreatedAt.IsZero() {
		offering.CreatedAt = now
	}
	offering.UpdatedAt = now
	const query = `INSERT INTO offerings (id, teacher_id, course_id, section_id, preferred_room_id, created_at, updated_at)
        VALUES (:id, :teacher_id, :course_id, :section_id, :preferred_room_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("create offering: %w", err)
	}
	return nil
}

// Update modifies an existing offering.
func (r *OfferingRepository) Update(ctx context.Context, offering *models.Offering) error {
	offering.UpdatedAt = time.Now().UTC()
	const query = `UPDATE offerings SET teacher_id = :teacher_id, course_id = :course_id, section_id = :section_id,
        preferred_room_id = :preferred_room_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("update offering: %w", err)
	}
	return nil
}

// Delete removes an offering.
func (r *OfferingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM offerings WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	return nil
}
