package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID            string    `db:"id" json:"id"`
	Code          *string   `db:"code" json:"code,omitempty"`
	FullName      string    `db:"full_name" json:"full_name"`
	Designation   *string   `db:"designation" json:"designation,omitempty"`
	MaxWeeklyLoad int       `db:"max_weekly_load" json:"max_weekly_load"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
