package history

import (
	"encoding/json"
	"fmt"
	"time"
)

// TypeSystem is the category label for machine health analyses.
const TypeSystem = "system"

// Entry is one persisted (report, analysis) pair. Entries are never
// modified after they are written.
type Entry struct {
	Timestamp Timestamp `json:"timestamp"`
	Type      string    `json:"type"`
	Report    string    `json:"report"`
	Analysis  string    `json:"analysis"`
}

// NewEntry builds an entry stamped at t.
func NewEntry(t time.Time, typ, report, analysis string) Entry {
	return Entry{
		Timestamp: Timestamp{Time: t.Round(0)},
		Type:      typ,
		Report:    report,
		Analysis:  analysis,
	}
}

// Timestamp marshals as RFC 3339 with nanoseconds. Unmarshalling also
// accepts timestamps without a zone offset, which are read as local time.
type Timestamp struct {
	time.Time
}

// Layouts accepted for zone-less timestamps, most precise first.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses RFC 3339 or a zone-less ISO-8601 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
