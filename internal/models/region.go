package models

import (
	"html/template"
	"time"
)

// Region names a display area that is replaced wholesale on every cycle.
type Region string

const (
	RegionAssignments Region = "assignments"
	RegionSchedule    Region = "schedule"
)

// Regions lists every display region in page order.
var Regions = []Region{RegionAssignments, RegionSchedule}

// ParseRegion maps a path segment to a known region.
func ParseRegion(raw string) (Region, bool) {
	for _, r := range Regions {
		if string(r) == raw {
			return r, true
		}
	}
	return "", false
}

// RegionSnapshot is the current content of a region.
type RegionSnapshot struct {
	Region    Region        `json:"region"`
	HTML      template.HTML `json:"html"`
	CycleID   string        `json:"cycle_id"`
	UpdatedAt time.Time     `json:"updated_at"`
}
