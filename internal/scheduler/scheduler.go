// Package scheduler fires reminders ahead of task due times: one-shot timers
// for dated tasks and cron entries for recurring ones.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FanchonSora/V-Assistant/internal/logging"
	"github.com/FanchonSora/V-Assistant/internal/notification"
	"github.com/FanchonSora/V-Assistant/internal/task"
)

// Config holds scheduler configuration.
type Config struct {
	Enabled bool
	// Lead is how long before the due instant the reminder fires.
	// Defaults to 10 minutes.
	Lead time.Duration
	// NotifyTimeout bounds a single delivery. Defaults to 30 seconds.
	NotifyTimeout time.Duration
}

// RecipientFunc resolves the delivery address for a user id.
type RecipientFunc func(ctx context.Context, userID string) (string, error)

// Scheduler implements task.Reminders. Safe for concurrent use.
type Scheduler struct {
	cron      *cron.Cron
	notifier  notification.Notifier
	recipient RecipientFunc
	config    Config
	logger    logging.Logger
	now       func() time.Time

	mu       sync.Mutex
	timers   map[string]*time.Timer  // one-shot reminders by task id
	entryIDs map[string]cron.EntryID // recurring reminders by task id

	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a Scheduler. The notifier and recipient resolver are required
// when the scheduler is enabled.
func New(cfg Config, notifier notification.Notifier, recipient RecipientFunc, logger logging.Logger) *Scheduler {
	if cfg.Lead == 0 {
		cfg.Lead = 10 * time.Minute
	}
	if cfg.NotifyTimeout == 0 {
		cfg.NotifyTimeout = 30 * time.Second
	}
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		notifier:  notifier,
		recipient: recipient,
		config:    cfg,
		logger:    logging.OrNop(logger),
		now:       time.Now,
		timers:    make(map[string]*time.Timer),
		entryIDs:  make(map[string]cron.EntryID),
		stopped:   make(chan struct{}),
	}
}

// WithNow allows tests to control the clock used for lead calculations.
func (s *Scheduler) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Start begins running recurring reminders and stops everything when ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler disabled by config")
		return nil
	}
	s.cron.Start()
	s.logger.Info("Scheduler started (lead=%s)", s.config.Lead)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop cancels all reminders and waits for running deliveries. Safe to call
// multiple times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Scheduler stopping...")
		s.mu.Lock()
		for id, timer := range s.timers {
			timer.Stop()
			delete(s.timers, id)
		}
		s.mu.Unlock()
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		close(s.stopped)
		s.logger.Info("Scheduler stopped")
	})
}

// Done returns a channel closed once the scheduler has fully stopped.
func (s *Scheduler) Done() <-chan struct{} {
	return s.stopped
}

// Schedule registers a reminder for the task, replacing any existing one.
// Done tasks and tasks without a due instant get no reminder.
func (s *Scheduler) Schedule(t *task.Task) {
	if !s.config.Enabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(t.ID)

	if t.Status == task.StatusDone {
		return
	}
	if t.Recurring() {
		s.scheduleRecurringLocked(t)
		return
	}
	s.scheduleOneShotLocked(t)
}

// Cancel removes any reminder registered for the task id.
func (s *Scheduler) Cancel(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(taskID)
}

// ReminderCount returns the number of registered reminders.
func (s *Scheduler) ReminderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers) + len(s.entryIDs)
}

func (s *Scheduler) cancelLocked(taskID string) {
	if timer, ok := s.timers[taskID]; ok {
		timer.Stop()
		delete(s.timers, taskID)
	}
	if entryID, ok := s.entryIDs[taskID]; ok {
		s.cron.Remove(entryID)
		delete(s.entryIDs, taskID)
	}
}

func (s *Scheduler) scheduleOneShotLocked(t *task.Task) {
	due, ok := t.DueAt()
	if !ok {
		return
	}
	now := s.now()
	if due.Before(now) {
		s.logger.Debug("Scheduler: task %s already due, skipping reminder", t.ID)
		return
	}
	delay := due.Add(-s.config.Lead).Sub(now)
	if delay < 0 {
		// Inside the lead window: remind right away.
		delay = 0
	}

	reminder := *t
	s.timers[t.ID] = time.AfterFunc(delay, func() {
		s.forget(reminder.ID)
		s.deliver(&reminder)
	})
	s.logger.Info("Scheduler: reminder for task %s in %s", t.ID, delay.Round(time.Second))
}

func (s *Scheduler) scheduleRecurringLocked(t *task.Task) {
	interval, err := ParseEvery(t.Rrule)
	if err != nil {
		s.logger.Warn("Scheduler: task %s has unusable recurrence: %v", t.ID, err)
		return
	}

	reminder := *t
	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		s.deliver(&reminder)
	})
	if err != nil {
		s.logger.Warn("Scheduler: failed to register recurring reminder for %s: %v", t.ID, err)
		return
	}
	s.entryIDs[t.ID] = entryID
	s.logger.Info("Scheduler: recurring reminder for task %s every %s", t.ID, interval)
}

func (s *Scheduler) forget(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, taskID)
}

func (s *Scheduler) deliver(t *task.Task) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
	defer cancel()

	to, err := s.recipient(ctx, t.OwnerID)
	if err != nil {
		s.logger.Error("Scheduler: cannot resolve recipient for user %s: %v", t.OwnerID, err)
		return
	}

	msg := notification.Message{
		To:      to,
		Subject: fmt.Sprintf("Reminder: %s", t.Title),
		Body:    reminderBody(t),
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Error("Scheduler: delivery failed for task %s: %v", t.ID, err)
		return
	}
	s.logger.Info("Scheduler: delivered reminder for task %s", t.ID)
}

func reminderBody(t *task.Task) string {
	if due, ok := t.DueAt(); ok {
		return fmt.Sprintf("Your task %q is due at %s.", t.Title, due.Format("2006-01-02 15:04"))
	}
	return fmt.Sprintf("Your task %q is due.", t.Title)
}
