package models

// CourseRecord is one entry of the course schedule.
type CourseRecord struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Code string `json:"code"`
	Term string `json:"term"`
}
