package internal

import (
	"fmt"
	"strings"
	"time"
)

const (
	SectionLessons  = "lessons_learned"
	SectionMetadata = "metadata"

	FieldSolution    = "solution"
	FieldCreatedDate = "created_date"
	FieldUseCount    = "use_count"

	MetaCreatedDate    = "created_date"
	MetaLastUpdated    = "last_updated"
	MetaLastPruned     = "last_pruned"
	MetaTotalSolutions = "total_solutions"
	MetaSDKVersion     = "sdk_version"

	SDKVersion = "1.0.0"
)

// RequiredFields lists the keys every solution record must carry, in the
// order they are written for new records.
var RequiredFields = []string{FieldSolution, FieldCreatedDate, FieldUseCount}

type SolutionRecord struct {
	Solution    string
	CreatedDate string
	UseCount    int
}

// Timestamp is a parsed created_date. Aware is false when the text carried
// no zone designator; such values are interpreted in time.Local.
type Timestamp struct {
	Time  time.Time
	Aware bool
}

var (
	awareLayouts = []string{
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999-0700",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// ParseTimestamp accepts ISO-8601 date-times with an optional zone offset or
// trailing Z, with either 'T' or a space between date and time.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Aware: true}, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid isoformat string: %q", s)
}

// Naive drops the zone and keeps the wall clock, reinterpreted in time.Local.
func (ts Timestamp) Naive() time.Time {
	t := ts.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
