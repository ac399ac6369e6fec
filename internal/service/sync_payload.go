package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/noah-isme/peach-brawl/internal/models"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

// DecodeSyncPayload parses and validates the combined document.
//
// Invalid JSON yields ErrUpstreamParse. Valid JSON that is not an object, or an object without a
// non-null assignments or schedule key, yields ErrPayloadShape. A present list that fails to
// decode is recorded on the payload instead of failing the whole document.
func DecodeSyncPayload(body []byte) (*models.SyncPayload, error) {
	if !json.Valid(body) {
		return nil, appErrors.Wrap(fmt.Errorf("%d byte body", len(body)), appErrors.ErrUpstreamParse.Code, appErrors.ErrUpstreamParse.Status, appErrors.ErrUpstreamParse.Message)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPayloadShape.Code, http.StatusBadGateway, appErrors.ErrPayloadShape.Message)
	}

	payload := &models.SyncPayload{}
	if raw, ok := present(fields, "assignments"); ok {
		payload.HasAssignments = true
		if err := json.Unmarshal(raw, &payload.Assignments); err != nil {
			payload.Assignments = nil
			payload.AssignmentsErr = fmt.Errorf("decode assignments: %w", err)
		}
	}
	if raw, ok := present(fields, "schedule"); ok {
		payload.HasSchedule = true
		if err := json.Unmarshal(raw, &payload.Schedule); err != nil {
			payload.Schedule = nil
			payload.ScheduleErr = fmt.Errorf("decode schedule: %w", err)
		}
	}

	if !payload.HasAssignments && !payload.HasSchedule {
		return nil, appErrors.ErrPayloadShape
	}
	return payload, nil
}

// present treats an explicit JSON null like a missing key.
func present(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}
