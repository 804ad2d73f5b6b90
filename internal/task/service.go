package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FanchonSora/V-Assistant/internal/dsl"
	"github.com/FanchonSora/V-Assistant/internal/logging"
)

// Service is the boundary between interpreted intents and task storage. It
// owns id generation, due resolution against the clock, default statuses, and
// keeping the reminder schedule in sync with every write.
type Service struct {
	repo      Repository
	reminders Reminders
	log       logging.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNow overrides the clock. Tests use this to pin time.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReminders attaches a reminder scheduler.
func WithReminders(r Reminders) Option {
	return func(s *Service) { s.reminders = r }
}

// WithLogger attaches a logger.
func WithLogger(log logging.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService builds a task service over the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		reminders: NopReminders{},
		log:       logging.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTask materializes a create intent into a stored task. A relative due
// is resolved against the current clock; an absolute due is taken as written.
// Status defaults to pending when the utterance did not state one.
func (s *Service) CreateTask(ctx context.Context, ownerID string, intent dsl.Create, now time.Time) (*Task, error) {
	t := &Task{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     intent.Title,
		Rrule:     intent.Recurrence,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	if intent.Status != "" {
		t.Status = Status(intent.Status)
	}
	if due, ok := intent.Due.ResolveAt(now); ok {
		setDue(t, due)
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.reminders.Schedule(t)
	s.log.Info("Created task %s (%q) for user %s", t.ID, t.Title, ownerID)
	return t, nil
}

// NewTask creates a task from explicit fields. Used by the REST surface,
// where due date and time arrive as separate optional components.
func (s *Service) NewTask(ctx context.Context, ownerID, title string, patch Patch) (*Task, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	t := &Task{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, fmt.Errorf("%w: status %q", ErrUnknownField, *patch.Status)
		}
		t.Status = *patch.Status
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.DueTime != nil {
		t.DueTime = patch.DueTime
	}
	if patch.Rrule != nil {
		t.Rrule = *patch.Rrule
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.reminders.Schedule(t)
	s.log.Info("Created task %s (%q) for user %s", t.ID, t.Title, ownerID)
	return t, nil
}

// ListTasks returns the owner's tasks, optionally narrowed to one due date.
func (s *Service) ListTasks(ctx context.Context, ownerID string, date *time.Time) ([]*Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID, date)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListRange returns the owner's tasks due between from and to inclusive.
func (s *Service) ListRange(ctx context.Context, ownerID string, from, to time.Time) ([]*Task, error) {
	tasks, err := s.repo.ListByRange(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list tasks by range: %w", err)
	}
	return tasks, nil
}

// FindByReference resolves a task reference the way users write them: a
// literal task id wins, otherwise the reference is matched against titles
// case-insensitively.
func (s *Service) FindByReference(ctx context.Context, ownerID, ref string) (*Task, error) {
	if _, err := uuid.Parse(ref); err == nil {
		t, err := s.repo.GetByID(ctx, ownerID, ref)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return s.repo.FindByTitle(ctx, ownerID, ref)
}

// GetTask returns one task by id.
func (s *Service) GetTask(ctx context.Context, ownerID, id string) (*Task, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// DeleteTask removes the task named by a delete intent and cancels its
// reminder. The due clause, when present, disambiguates between tasks that
// share a title.
func (s *Service) DeleteTask(ctx context.Context, ownerID string, intent dsl.Delete) (*Task, error) {
	t, err := s.FindByReference(ctx, ownerID, intent.TitleRef)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, ownerID, t.ID); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	s.reminders.Cancel(t.ID)
	s.log.Info("Deleted task %s (%q) for user %s", t.ID, t.Title, ownerID)
	return t, nil
}

// RemoveTask deletes a task by id. Used by the REST surface.
func (s *Service) RemoveTask(ctx context.Context, ownerID, id string) error {
	if _, err := s.repo.GetByID(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.reminders.Cancel(id)
	return nil
}

// ModifyTask applies a modify intent: an optional new due plus field
// assignments. Recognized fields are title, status, date and time. The
// reminder is rescheduled after the write.
func (s *Service) ModifyTask(ctx context.Context, ownerID string, intent dsl.Modify, now time.Time) (*Task, error) {
	t, err := s.FindByReference(ctx, ownerID, intent.TitleRef)
	if err != nil {
		return nil, err
	}

	if due, ok := intent.Due.ResolveAt(now); ok {
		setDue(t, due)
	}
	for key, value := range intent.Updates {
		if err := applyField(t, key, value); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.reminders.Cancel(t.ID)
	s.reminders.Schedule(t)
	s.log.Info("Updated task %s (%q) for user %s", t.ID, t.Title, ownerID)
	return t, nil
}

// UpdateFields applies a partial update by id. Used by the REST surface; nil
// pointers leave the corresponding field untouched.
func (s *Service) UpdateFields(ctx context.Context, ownerID, id string, patch Patch) (*Task, error) {
	t, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, fmt.Errorf("%w: status %q", ErrUnknownField, *patch.Status)
		}
		t.Status = *patch.Status
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.DueTime != nil {
		t.DueTime = patch.DueTime
	}
	if patch.Rrule != nil {
		t.Rrule = *patch.Rrule
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.reminders.Cancel(t.ID)
	s.reminders.Schedule(t)
	return t, nil
}

// Patch is a partial task update. Nil fields are left unchanged.
type Patch struct {
	Title   *string
	Status  *Status
	DueDate *time.Time
	DueTime *DayTime
	Rrule   *string
}

func setDue(t *Task, due time.Time) {
	date := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
	t.DueDate = &date
	t.DueTime = &DayTime{Hour: due.Hour(), Minute: due.Minute()}
}

func applyField(t *Task, key, value string) error {
	switch key {
	case "title":
		t.Title = value
	case "status":
		status := Status(value)
		if !status.IsValid() {
			return fmt.Errorf("%w: status %q", ErrUnknownField, value)
		}
		t.Status = status
	case "date":
		date, err := time.Parse(dsl.DateLayout, value)
		if err != nil {
			return fmt.Errorf("%w: date %q", ErrUnknownField, value)
		}
		t.DueDate = &date
	case "time":
		clock, err := time.Parse(dsl.TimeLayout, value)
		if err != nil {
			return fmt.Errorf("%w: time %q", ErrUnknownField, value)
		}
		t.DueTime = &DayTime{Hour: clock.Hour(), Minute: clock.Minute()}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return nil
}
