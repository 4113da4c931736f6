package models

import "time"

// Section is a student cohort. StudentCount is used only for
// room-capacity checks.
type Section struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Program      string    `db:"program" json:"program"`
	Semester     string    `db:"semester" json:"semester"`
	Letter       *string   `db:"letter" json:"letter,omitempty"`
	StudentCount int       `db:"student_count" json:"student_count"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
