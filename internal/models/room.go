package models

import "time"

// Room types. Lab courses may only be placed in lab rooms; theory
// courses may use any room type.
const (
	RoomTypeClassroom  = "classroom"
	RoomTypeLab        = "lab"
	RoomTypeSeminar    = "seminar"
	RoomTypeAuditorium = "auditorium"
)

// Room represents a teaching space.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Number    string    `db:"number" json:"number"`
	Name      *string   `db:"name" json:"name,omitempty"`
	Type      string    `db:"room_type" json:"room_type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	Type        string
	MinCapacity int
	Active      *bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
