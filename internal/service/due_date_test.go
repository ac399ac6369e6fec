package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueDateFormatterFormats(t *testing.T) {
	f, err := NewDueDateFormatter("UTC", "")
	require.NoError(t, err)

	cases := map[string]string{
		"2024-05-01T10:00:00Z":              "Wednesday, May 1, 2024 at 10:00 AM",
		"2024-05-01T10:00:00.123Z":          "Wednesday, May 1, 2024 at 10:00 AM",
		"2024-05-01T12:00:00+02:00":         "Wednesday, May 1, 2024 at 10:00 AM",
		"2024-05-01T22:30:00":               "Wednesday, May 1, 2024 at 10:30 PM",
		"2024-05-01 09:05:00":               "Wednesday, May 1, 2024 at 09:05 AM",
		"2024-05-01":                        "Wednesday, May 1, 2024 at 12:00 AM",
		"Wed, 01 May 2024 10:00:00 GMT":     "Wednesday, May 1, 2024 at 10:00 AM",
		"Wed, 01 May 2024 12:00:00 +0200":   "Wednesday, May 1, 2024 at 10:00 AM",
		"Wednesday, 01-May-24 10:00:00 UTC": "Wednesday, May 1, 2024 at 10:00 AM",
		"Wed May  1 10:00:00 2024":          "Wednesday, May 1, 2024 at 10:00 AM",
		"Wed May  1 10:00:00 UTC 2024":      "Wednesday, May 1, 2024 at 10:00 AM",
		"May 1, 2024 10:00":                 "Wednesday, May 1, 2024 at 10:00 AM",
		"May 1, 2024 10:00 PM":              "Wednesday, May 1, 2024 at 10:00 PM",
		"Sep 3, 2024":                       "Tuesday, September 3, 2024 at 12:00 AM",
		"2024/05/01 10:00":                  "Wednesday, May 1, 2024 at 10:00 AM",
		"2024/05/01":                        "Wednesday, May 1, 2024 at 12:00 AM",
	}
	for raw, want := range cases {
		assert.Equal(t, want, f.Format(raw), raw)
	}
}

func TestDueDateFormatterFallsBackToRaw(t *testing.T) {
	f, _ := NewDueDateFormatter("UTC", "")

	assert.Equal(t, "next friday-ish", f.Format("next friday-ish"))
	assert.Equal(t, "", f.Format(""))
}

func TestDueDateFormatterZone(t *testing.T) {
	f, err := NewDueDateFormatter("America/New_York", "")
	require.NoError(t, err)

	assert.Equal(t, "Wednesday, May 1, 2024 at 06:00 AM", f.Format("2024-05-01T10:00:00Z"))
}

func TestDueDateFormatterUnknownZone(t *testing.T) {
	f, err := NewDueDateFormatter("Mars/Olympus", "")
	assert.Error(t, err)
	assert.Equal(t, "Wednesday, May 1, 2024 at 10:00 AM", f.Format("2024-05-01T10:00:00Z"))
}
