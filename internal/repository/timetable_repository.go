package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/arka-edu/timetable-api/internal/models"
)

// TimetableRepository manages generated timetable records.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableColumns = "id, generation_id, offering_id, course_id, teacher_id, section_id, room_id, time_slot_id, session_index, block_index, locked, created_at"

// ListByGeneration returns the records of one generation, optionally
// narrowed to a section, teacher or room view.
func (r *TimetableRepository) ListByGeneration(ctx context.Context, generationID string, filter models.TimetableFilter) ([]models.TimetableSlot, error) {
	conditions := []string{"generation_id = $1"}
	args := []interface{}{generationID}
	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	query := fmt.Sprintf("SELECT %s FROM timetable_slots WHERE %s ORDER BY created_at ASC, id ASC",
		timetableColumns, strings.Join(conditions, " AND "))
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// FindByID fetches a single timetable record.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.TimetableSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_slots WHERE id = $1", timetableColumns)
	var slot models.TimetableSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// InsertBatch writes a full generation's records inside the caller's
// transaction, so a failed run never leaves a partial timetable.
func (r *TimetableRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	const query = `INSERT INTO timetable_slots (id, generation_id, offering_id, course_id, teacher_id, section_id, room_id, time_slot_id, session_index, block_index, locked, created_at)
        VALUES (:id, :generation_id, :offering_id, :course_id, :teacher_id, :section_id, :room_id, :time_slot_id, :session_index, :block_index, :locked, :created_at)`
	for i := range slots {
		if _, err := sqlx.NamedExecContext(ctx, exec, query, slots[i]); err != nil {
			return fmt.Errorf("insert timetable slot: %w", err)
		}
	}
	return nil
}

// UpdatePlacements rewrites time slot and room of the given records,
// used to apply a validated manual move in one transaction.
func (r *TimetableRepository) UpdatePlacements(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	const query = `UPDATE timetable_slots SET time_slot_id = :time_slot_id, room_id = :room_id, block_index = :block_index WHERE id = :id`
	for i := range slots {
		if _, err := sqlx.NamedExecContext(ctx, exec, query, slots[i]); err != nil {
			return fmt.Errorf("update timetable slot %s: %w", slots[i].ID, err)
		}
	}
	return nil
}

// SetLocked flags a record as pinned against future regeneration.
func (r *TimetableRepository) SetLocked(ctx context.Context, id string, locked bool) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE timetable_slots SET locked = $2 WHERE id = $1", id, locked); err != nil {
		return fmt.Errorf("set slot lock: %w", err)
	}
	return nil
}

// DeleteByGeneration removes a generation's records inside the
// caller's transaction.
func (r *TimetableRepository) DeleteByGeneration(ctx context.Context, exec sqlx.ExtContext, generationID string) error {
	if _, err := exec.ExecContext(ctx, "DELETE FROM timetable_slots WHERE generation_id = $1", generationID); err != nil {
		return fmt.Errorf("delete generation slots: %w", err)
	}
	return nil
}
