package task

import (
	"context"
	"time"
)

// Repository is the persistence port for tasks. Implementations must scope
// every operation to the given owner.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	// GetByID returns ErrNotFound when the id does not exist for the owner.
	GetByID(ctx context.Context, ownerID, id string) (*Task, error)
	// FindByTitle matches the title case-insensitively and returns
	// ErrNotFound when nothing matches.
	FindByTitle(ctx context.Context, ownerID, title string) (*Task, error)
	// ListByOwner returns the owner's tasks, narrowed to a single due date
	// when date is non-nil.
	ListByOwner(ctx context.Context, ownerID string, date *time.Time) ([]*Task, error)
	// ListByRange returns tasks with a due date in [from, to].
	ListByRange(ctx context.Context, ownerID string, from, to time.Time) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, ownerID, id string) error
}

// Reminders is the scheduling port. The service calls it after every write so
// the reminder timeline tracks the stored tasks.
type Reminders interface {
	Schedule(t *Task)
	Cancel(taskID string)
}

// NopReminders is a Reminders that does nothing. Useful when the scheduler is
// disabled or in tests.
type NopReminders struct{}

func (NopReminders) Schedule(*Task) {}
func (NopReminders) Cancel(string)  {}
