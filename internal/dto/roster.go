package dto

// CSV roster rows. Column headers match the institution's export
// format, one entity kind per file.

type TeacherCSVRow struct {
	Code          string `csv:"code"`
	FullName      string `csv:"full_name"`
	Designation   string `csv:"designation"`
	MaxWeeklyLoad int    `csv:"max_weekly_load"`
}

type CourseCSVRow struct {
	Code            string `csv:"code"`
	Name            string `csv:"name"`
	CreditHours     int    `csv:"credit_hours"`
	SessionsPerWeek int    `csv:"sessions_per_week"`
	SessionDuration int    `csv:"session_duration"`
	IsLab           bool   `csv:"is_lab"`
	Program         string `csv:"program"`
	Semester        string `csv:"semester"`
}

type SectionCSVRow struct {
	Name         string `csv:"name"`
	Program      string `csv:"program"`
	Semester     string `csv:"semester"`
	Letter       string `csv:"letter"`
	StudentCount int    `csv:"student_count"`
}

type RoomCSVRow struct {
	Number   string `csv:"number"`
	Name     string `csv:"name"`
	Type     string `csv:"type"`
	Capacity int    `csv:"capacity"`
}

// OfferingCSVRow links entities by their natural keys rather than IDs,
// so a roster file can be authored by hand.
type OfferingCSVRow struct {
	TeacherCode   string `csv:"teacher_code"`
	CourseCode    string `csv:"course_code"`
	SectionName   string `csv:"section_name"`
	PreferredRoom string `csv:"preferred_room"`
}

// TimeSlotCSVRow describes one cell of the weekly period grid.
type TimeSlotCSVRow struct {
	DayOfWeek int    `csv:"day_of_week"`
	Period    int    `csv:"period"`
	StartTime string `csv:"start_time"`
	EndTime   string `csv:"end_time"`
	IsBreak   bool   `csv:"is_break"`
}

// ImportSummary reports what a roster upload changed.
type ImportSummary struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
