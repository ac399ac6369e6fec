package models

import "time"

// CalendarDay holds the assignments due on one day.
type CalendarDay struct {
	Date        time.Time          `json:"date"`
	Weekday     string             `json:"weekday"`
	Assignments []AssignmentRecord `json:"assignments"`
}

// CalendarWeek is a Monday-to-Sunday block of days.
type CalendarWeek struct {
	Start time.Time     `json:"start"`
	Days  []CalendarDay `json:"days"`
}

// CalendarView is the week-by-week projection of assignments. Undated holds records whose
// due date could not be parsed.
type CalendarView struct {
	Weeks   []CalendarWeek     `json:"weeks"`
	Undated []AssignmentRecord `json:"undated,omitempty"`
}
