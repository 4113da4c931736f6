package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/engine"
	"github.com/arka-edu/timetable-api/internal/models"
)

// CatalogRepository assembles the immutable input snapshot a
// generation run works on. It reads every table in one pass so the
// engine never sees a half-updated roster.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Load reads the full roster and indexes it into an engine catalog.
func (r *CatalogRepository) Load(ctx context.Context) (*engine.Catalog, error) {
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, fmt.Sprintf("SELECT %s FROM teachers", teacherColumns)); err != nil {
		return nil, fmt.Errorf("load teachers: %w", err)
	}
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, fmt.Sprintf("SELECT %s FROM courses", courseColumns)); err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, fmt.Sprintf("SELECT %s FROM sections", sectionColumns)); err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, fmt.Sprintf("SELECT %s FROM rooms", roomColumns)); err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, fmt.Sprintf("SELECT %s FROM time_slots ORDER BY day_of_week, period", timeSlotColumns)); err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}
	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, fmt.Sprintf("SELECT %s FROM offerings", offeringColumns)); err != nil {
		return nil, fmt.Errorf("load offerings: %w", err)
	}
	var constraints []models.Constraint
	if err := r.db.SelectContext(ctx, &constraints, fmt.Sprintf("SELECT %s FROM constraints", constraintColumns)); err != nil {
		return nil, fmt.Errorf("load constraints: %w", err)
	}
	return engine.NewCatalog(teachers, courses, sections, rooms, slots, offerings, constraints)
}
