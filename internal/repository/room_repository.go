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

// RoomRepository manages persistence for room records.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = "id, number, name, room_type, capacity, active, created_at, updated_at"

// List returns rooms matching the provided filters.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("room_type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.MinCapacity > 0 {
		conditions = append(conditions, fmt.Sprintf("capacity >= $%d", len(args)+1))
		args = append(args, filter.MinCapacity)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE %s ORDER BY number ASC", roomColumns, strings.Join(conditions, " AND "))
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListActive returns every active room for catalog snapshots.
func (r *RoomRepository) ListActive(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE active = TRUE ORDER BY number ASC", roomColumns)
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list active rooms: %w", err)
	}
	return rooms, nil
}

// FindByID fetches a room by ID.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE id = $1", roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create inserts a new room record.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now
	const query = `INSERT INTO rooms (id, number, name, room_type, capacity, active, created_at, updated_at)
        VALUES (:id, :number, :name, :room_type, :capacity, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies an existing room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET number = :number, name = :name, room_type = :room_type,
        capacity = :capacity, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Deactivate marks a room as inactive.
func (r *RoomRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE rooms SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate room: %w", err)
	}
	return nil
}
