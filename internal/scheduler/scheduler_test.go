package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FanchonSora/V-Assistant/internal/notification"
	"github.com/FanchonSora/V-Assistant/internal/task"
)

// recordingNotifier captures delivered messages.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
	fired    chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{fired: make(chan struct{}, 16)}
}

func (n *recordingNotifier) Notify(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	n.messages = append(n.messages, msg)
	n.mu.Unlock()
	n.fired <- struct{}{}
	return nil
}

func (n *recordingNotifier) all() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Message(nil), n.messages...)
}

func staticRecipient(addr string) RecipientFunc {
	return func(context.Context, string) (string, error) {
		return addr, nil
	}
}

func dueIn(t *testing.T, d time.Duration) *task.Task {
	t.Helper()
	due := time.Now().Add(d)
	date := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
	return &task.Task{
		ID:      "t1",
		OwnerID: "u1",
		Title:   "call mom",
		DueDate: &date,
		DueTime: &task.DayTime{Hour: due.Hour(), Minute: due.Minute()},
		Status:  task.StatusPending,
	}
}

func TestParseEvery(t *testing.T) {
	tests := []struct {
		rrule string
		want  time.Duration
		ok    bool
	}{
		{"every 1 minute", time.Minute, true},
		{"every 30 minutes", 30 * time.Minute, true},
		{"every 2 hours", 2 * time.Hour, true},
		{"every 3 days", 72 * time.Hour, true},
		{"Every 1 Minute", time.Minute, true},
		{"every 0 minutes", 0, false},
		{"every minute", 0, false},
		{"weekly", 0, false},
		{"every 2 weeks", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseEvery(tt.rrule)
		if !tt.ok {
			assert.Error(t, err, tt.rrule)
			continue
		}
		require.NoError(t, err, tt.rrule)
		assert.Equal(t, tt.want, got, tt.rrule)
	}
}

func TestScheduler_OneShotFiresInsideLeadWindow(t *testing.T) {
	notifier := newRecordingNotifier()
	s := New(Config{Enabled: true, Lead: time.Hour}, notifier, staticRecipient("alice@example.com"), nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	// Due within the lead window, so the reminder fires immediately.
	s.Schedule(dueIn(t, 30*time.Minute))

	select {
	case <-notifier.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("reminder did not fire")
	}

	msgs := notifier.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice@example.com", msgs[0].To)
	assert.Equal(t, "Reminder: call mom", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, "call mom")
	assert.Equal(t, 0, s.ReminderCount(), "one-shot reminder is forgotten after firing")
}

func TestScheduler_CancelStopsReminder(t *testing.T) {
	notifier := newRecordingNotifier()
	s := New(Config{Enabled: true, Lead: time.Hour}, notifier, staticRecipient("alice@example.com"), nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	// Outside the lead window: the timer is pending, not fired.
	tk := dueIn(t, 2*time.Hour)
	s.Schedule(tk)
	assert.Equal(t, 1, s.ReminderCount())

	s.Cancel(tk.ID)
	assert.Equal(t, 0, s.ReminderCount())
	assert.Empty(t, notifier.all())
}

func TestScheduler_SkipsPastDueAndDoneTasks(t *testing.T) {
	notifier := newRecordingNotifier()
	s := New(Config{Enabled: true}, notifier, staticRecipient("alice@example.com"), nil)

	past := dueIn(t, -time.Hour)
	s.Schedule(past)
	assert.Equal(t, 0, s.ReminderCount())

	done := dueIn(t, 2*time.Hour)
	done.Status = task.StatusDone
	s.Schedule(done)
	assert.Equal(t, 0, s.ReminderCount())
}

func TestScheduler_RecurringRegistersCronEntry(t *testing.T) {
	notifier := newRecordingNotifier()
	s := New(Config{Enabled: true}, notifier, staticRecipient("alice@example.com"), nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	tk := dueIn(t, time.Hour)
	tk.ID = "recurring"
	tk.Rrule = "every 2 hours"
	s.Schedule(tk)
	assert.Equal(t, 1, s.ReminderCount())

	// Rescheduling replaces the previous entry instead of stacking.
	s.Schedule(tk)
	assert.Equal(t, 1, s.ReminderCount())

	s.Cancel(tk.ID)
	assert.Equal(t, 0, s.ReminderCount())
}

func TestScheduler_UnusableRecurrenceIsIgnored(t *testing.T) {
	notifier := newRecordingNotifier()
	s := New(Config{Enabled: true}, notifier, staticRecipient("alice@example.com"), nil)

	tk := dueIn(t, time.Hour)
	tk.Rrule = "sometimes"
	s.Schedule(tk)
	assert.Equal(t, 0, s.ReminderCount())
}

func TestScheduler_DisabledIsNoop(t *testing.T) {
	notifier := newRecordingNotifier()
	s := New(Config{Enabled: false}, notifier, staticRecipient("alice@example.com"), nil)
	require.NoError(t, s.Start(context.Background()))

	s.Schedule(dueIn(t, time.Minute))
	assert.Equal(t, 0, s.ReminderCount())
}
