package task

import (
	"fmt"
	"time"
)

// Stamp is the naive timestamp layout used throughout: no zone, second
// precision. All planner timestamps parse to and format from this shape.
const Stamp = "2006-01-02T15:04:05"

// stampLayouts are the accepted input forms, tried in order.
var stampLayouts = []string{
	Stamp,
	"2006-01-02T15:04",
	time.RFC3339,
}

// ParseStamp parses a timestamp string into a naive local time.
func ParseStamp(s string) (time.Time, error) {
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatStamp renders a timestamp in the naive ISO form used in reports.
func FormatStamp(t time.Time) string {
	return t.Format(Stamp)
}

// Task is a single unit of work. Immutable once validated.
type Task struct {
	ID          string
	Title       string
	DurationMin int
	Deadline    time.Time
	Priority    int
	DependsOn   []string
}

// ScheduledBlock is one placed slice of a task's duration.
type ScheduledBlock struct {
	TaskID string
	Title  string
	Start  time.Time
	End    time.Time
}

// Minutes returns the whole-minute length of the block.
func (b ScheduledBlock) Minutes() int {
	return int(b.End.Sub(b.Start) / time.Minute)
}

// BlockedInterval is an externally imposed unavailability window.
type BlockedInterval struct {
	Start time.Time
	End   time.Time
	Label string
}

// ClockTime is a time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses a "HH:MM" time of day.
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("unrecognized time of day %q", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String renders the clock time as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On places the clock time onto the calendar day of ref.
func (c ClockTime) On(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), c.Hour, c.Minute, 0, 0, ref.Location())
}

// Before reports whether c is earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool {
	if c.Hour != other.Hour {
		return c.Hour < other.Hour
	}
	return c.Minute < other.Minute
}

// WorkWindow is the recurring daily availability window. Start must be
// earlier than End within a single day; overnight windows are not modeled.
type WorkWindow struct {
	Start ClockTime
	End   ClockTime
}

// Request is one planning snapshot: everything a run needs, nothing shared.
type Request struct {
	PlanningStart time.Time
	Window        WorkWindow
	Blocked       []BlockedInterval
	Tasks         []Task
}
