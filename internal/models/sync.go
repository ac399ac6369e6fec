package models

import "time"

// SyncPayload is the combined document returned by the sync endpoint.
//
// HasAssignments/HasSchedule record key presence; a payload with neither key is malformed.
// AssignmentsErr/ScheduleErr hold per-list decode failures so one bad list does not block the
// other from rendering.
type SyncPayload struct {
	Assignments []AssignmentRecord `json:"assignments"`
	Schedule    []CourseRecord     `json:"schedule"`

	HasAssignments bool  `json:"-"`
	HasSchedule    bool  `json:"-"`
	AssignmentsErr error `json:"-"`
	ScheduleErr    error `json:"-"`
}

// CycleResult is the outcome of one sync cycle: either Payload or Err is set.
type CycleResult struct {
	ID         string       `json:"id"`
	Payload    *SyncPayload `json:"-"`
	Err        error        `json:"-"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// OK reports whether the cycle produced a payload.
func (r CycleResult) OK() bool {
	return r.Err == nil && r.Payload != nil
}

// SyncStatus is the API view of the most recent cycle.
type SyncStatus struct {
	CycleID          string     `json:"cycle_id,omitempty"`
	OK               bool       `json:"ok"`
	ErrorCode        string     `json:"error_code,omitempty"`
	Error            string     `json:"error,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	LastSuccessAt    *time.Time `json:"last_success_at,omitempty"`
	AssignmentsCount int        `json:"assignments_count"`
	ScheduleCount    int        `json:"schedule_count"`
	Endpoint         string     `json:"endpoint"`
	Interval         string     `json:"interval"`
	PendingCycles    int        `json:"pending_cycles"`
}
