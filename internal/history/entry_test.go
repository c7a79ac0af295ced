package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_RoundTrip(t *testing.T) {
	log := []Entry{
		NewEntry(base, TypeSystem, "PC Health Report\n\nCPU Usage: 25.0%", "Status: Good"),
		NewEntry(base.Add(time.Second), "email", "", "Status: Warning\nIssues: \"quoted\" <html>"),
		NewEntry(time.Date(2024, 12, 31, 23, 59, 59, 1, time.UTC), TypeSystem, "ünïcødé ✓", ""),
	}

	data, err := json.Marshal(log)
	require.NoError(t, err)

	var back []Entry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, log, back)
}

func TestNewEntry_StripsMonotonicClock(t *testing.T) {
	e := NewEntry(time.Now(), TypeSystem, "r", "a")
	assert.Equal(t, e.Timestamp.Time, e.Timestamp.Round(0))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-02T15:04:05Z", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2024-01-02T15:04:05.5+02:00", time.Date(2024, 1, 2, 13, 4, 5, 500000000, time.UTC)},
		{"2024-01-02T15:04:05.123456", time.Date(2024, 1, 2, 15, 4, 5, 123456000, time.Local)},
		{"2024-01-02T15:04:05", time.Date(2024, 1, 2, 15, 4, 5, 0, time.Local)},
		{"2024-01-02 15:04:05", time.Date(2024, 1, 2, 15, 4, 5, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}

	_, err := ParseTimestamp("last tuesday")
	assert.Error(t, err)
}

func TestTimestamp_RejectsNonString(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))
}
