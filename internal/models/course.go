package models

import "time"

// Course represents a taught subject. Lab courses occupy
// SessionDuration consecutive periods per session.
type Course struct {
	ID              string    `db:"id" json:"id"`
	Code            string    `db:"code" json:"code"`
	Name            string    `db:"name" json:"name"`
	CreditHours     int       `db:"credit_hours" json:"credit_hours"`
	SessionsPerWeek int       `db:"sessions_per_week" json:"sessions_per_week"`
	SessionDuration int       `db:"session_duration" json:"session_duration"`
	IsLab           bool      `db:"is_lab" json:"is_lab"`
	Program         string    `db:"program" json:"program"`
	Semester        string    `db:"semester" json:"semester"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
