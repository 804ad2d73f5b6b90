package task

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// IsValid reports whether the status is a recognized value.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusDone
}

// ErrNotFound is returned when no task matches the given reference.
var ErrNotFound = errors.New("task not found")

// ErrUnknownField is returned when a modify request names a field that
// cannot be updated.
var ErrUnknownField = errors.New("unknown task field")

// DayTime is a time of day without a date component.
type DayTime struct {
	Hour   int
	Minute int
}

func (d DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// Task is a scheduled reminder owned by a single user. DueDate and DueTime
// are both optional; a reminder can only fire when both are set or when the
// task was created from a relative offset (which resolves to both).
type Task struct {
	ID        string
	OwnerID   string
	Title     string
	DueDate   *time.Time // date component only, midnight in its location
	DueTime   *DayTime
	Rrule     string // canonical "every N unit" form, empty when not recurring
	Status    Status
	CreatedAt time.Time
}

// DueAt combines the date and time-of-day components into a single instant.
// The second return is false when either component is missing.
func (t *Task) DueAt() (time.Time, bool) {
	if t.DueDate == nil || t.DueTime == nil {
		return time.Time{}, false
	}
	d := *t.DueDate
	return time.Date(d.Year(), d.Month(), d.Day(),
		t.DueTime.Hour, t.DueTime.Minute, 0, 0, d.Location()), true
}

// Recurring reports whether the task carries a recurrence rule.
func (t *Task) Recurring() bool {
	return t.Rrule != ""
}
