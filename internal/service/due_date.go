package service

import (
	"strings"
	"time"
)

// DefaultDateLayout renders "Wednesday, May 1, 2024 at 10:00 AM".
const DefaultDateLayout = "Monday, January 2, 2006 at 03:04 PM"

// Zoned layouts carry their own offset; naive layouts are read in the display location.
var (
	zonedDueLayouts = []string{
		time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05Z0700",
		time.RFC1123Z, time.RFC1123, time.RFC850, time.UnixDate, time.RFC822Z, time.RFC822,
	}
	naiveDueLayouts = []string{
		"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02",
		"2006/01/02 15:04:05", "2006/01/02 15:04", "2006/01/02",
		"January 2, 2006 15:04:05", "January 2, 2006 15:04", "January 2, 2006 3:04 PM", "January 2, 2006",
		"Jan 2, 2006 15:04:05", "Jan 2, 2006 15:04", "Jan 2, 2006 3:04 PM", "Jan 2, 2006",
		time.ANSIC,
	}
)

// DueDateFormatter turns due_date strings into long-form display text.
type DueDateFormatter struct {
	loc    *time.Location
	layout string
}

// NewDueDateFormatter builds a formatter for the given IANA zone name. Unknown zones fall back
// to UTC.
func NewDueDateFormatter(zone, layout string) (*DueDateFormatter, error) {
	loc := time.UTC
	var err error
	if zone != "" {
		if loc, err = time.LoadLocation(zone); err != nil {
			loc = time.UTC
		}
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return &DueDateFormatter{loc: loc, layout: layout}, err
}

// Location returns the display location.
func (f *DueDateFormatter) Location() *time.Location {
	if f == nil || f.loc == nil {
		return time.UTC
	}
	return f.loc
}

// Parse reads a due date in any accepted layout.
func (f *DueDateFormatter) Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedDueLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(f.Location()), true
		}
	}
	for _, layout := range naiveDueLayouts {
		if t, err := time.ParseInLocation(layout, raw, f.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format returns the display text for raw, or raw itself when it cannot be parsed.
func (f *DueDateFormatter) Format(raw string) string {
	t, ok := f.Parse(raw)
	if !ok {
		return raw
	}
	layout := DefaultDateLayout
	if f != nil && f.layout != "" {
		layout = f.layout
	}
	return t.Format(layout)
}
