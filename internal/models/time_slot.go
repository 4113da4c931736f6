package models

// TimeSlot is one teaching period on one weekday. Break-flagged slots
// are never assignable.
type TimeSlot struct {
	ID        string `db:"id" json:"id"`
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	Period    int    `db:"period" json:"period"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	IsBreak   bool   `db:"is_break" json:"is_break"`
	Active    bool   `db:"active" json:"active"`
}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the weekday label for a 0-based day index.
func DayName(day int) string {
	if day < 0 || day >= len(dayNames) {
		return "Unknown"
	}
	return dayNames[day]
}
