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

// CourseRepository manages persistence for course records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = "id, code, name, credit_hours, sessions_per_week, session_duration, is_lab, program, semester, active, created_at, updated_at"

// List returns courses, optionally filtered by program and semester.
func (r *CourseRepository) List(ctx context.Context, program, semester string) ([]models.Course, error) {
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
	query := fmt.Sprintf("SELECT %s FROM courses WHERE %s ORDER BY code ASC", courseColumns, strings.Join(conditions, " AND "))
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListActive returns every active course for catalog snapshots.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	query := fmt.Sprintf("SELECT %s FROM courses WHERE active = TRUE ORDER BY code ASC", courseColumns)
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByCode checks whether a course code is taken, optionally excluding an ID.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM courses WHERE LOWER(code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course code: %w", err)
	}
	return true, nil
}

// Create inserts a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, code, name, credit_hours, sessions_per_week, session_duration, is_lab, program, semester, active, created_at, updated_at)
        VALUES (:id, :code, :name, :credit_hours, :sessions_per_week, :session_duration, :is_lab, :program, :semester, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, name = :name, credit_hours = :credit_hours,
        sessions_per_week = :sessions_per_week, session_duration = :session_duration, is_lab = :is_lab,
        program = :program, semester = :semester, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Deactivate marks a course as inactive.
func (r *CourseRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE courses SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate course: %w", err)
	}
	return nil
}
