package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AssignmentRecord is one upcoming assignment as delivered by the /api/all document.
// DueDate is kept verbatim; it is only parsed for display.
type AssignmentRecord struct {
	DueDate string `json:"due_date"`
	Course  string `json:"course"`
	Name    string `json:"name"`
}

// UnmarshalJSON accepts any JSON value for the record's fields. Strings are taken as is, null
// becomes empty and every other value keeps its JSON text, so one odd field cannot fail the list.
func (r *AssignmentRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("assignment record: %w", err)
	}
	if fields == nil {
		return nil
	}
	*r = AssignmentRecord{
		DueDate: displayText(fields["due_date"]),
		Course:  displayText(fields["course"]),
		Name:    displayText(fields["name"]),
	}
	return nil
}

func displayText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}
