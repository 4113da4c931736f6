package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// TimeSlotRepository manages the weekly slot grid.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository constructs a TimeSlotRepository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

const timeSlotColumns = "id, day_of_week, period, start_time, end_time, is_break, active"

// List returns every slot ordered by day then period.
func (r *TimeSlotRepository) List(ctx context.Context) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	query := fmt.Sprintf("SELECT %s FROM time_slots ORDER BY day_of_week ASC, period ASC", timeSlotColumns)
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// ListActive returns every active slot for catalog snapshots.
func (r *TimeSlotRepository) ListActive(ctx context.Context) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	query := fmt.Sprintf("SELECT %s FROM time_slots WHERE active = TRUE ORDER BY day_of_week ASC, period ASC", timeSlotColumns)
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list active time slots: %w", err)
	}
	return slots, nil
}

// ReplaceGrid swaps the whole weekly grid in one transaction. The grid
// changes rarely and per-slot edits would leave half-updated weeks.
func (r *TimeSlotRepository) ReplaceGrid(ctx context.Context, slots []models.TimeSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grid replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM time_slots"); err != nil {
		return fmt.Errorf("clear time slots: %w", err)
	}
	const query = `INSERT INTO time_slots (id, day_of_week, period, start_time, end_time, is_break, active)
        VALUES (:id, :day_of_week, :period, :start_time, :end_time, :is_break, :active)`
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, slots[i]); err != nil {
			return fmt.Errorf("insert time slot: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grid replace: %w", err)
	}
	return nil
}
