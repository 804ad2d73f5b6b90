package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FanchonSora/V-Assistant/internal/dsl"
	"github.com/FanchonSora/V-Assistant/internal/task"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// mockDispatcher records boundary crossings and returns canned tasks.
type mockDispatcher struct {
	mu       sync.Mutex
	created  []dsl.Create
	deleted  []dsl.Delete
	modified []dsl.Modify
	listCnt  int
	tasks    []*task.Task
	err      error // forced error for every call when set
}

func (m *mockDispatcher) CreateTask(_ context.Context, ownerID string, intent dsl.Create, now time.Time) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, intent)
	t := &task.Task{
		ID:      fmt.Sprintf("task-%d", len(m.created)),
		OwnerID: ownerID,
		Title:   intent.Title,
		Status:  task.StatusPending,
	}
	if due, ok := intent.Due.ResolveAt(now); ok {
		date := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
		t.DueDate = &date
		t.DueTime = &task.DayTime{Hour: due.Hour(), Minute: due.Minute()}
	}
	return t, nil
}

func (m *mockDispatcher) ListTasks(context.Context, string, *time.Time) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.listCnt++
	return m.tasks, nil
}

func (m *mockDispatcher) DeleteTask(_ context.Context, ownerID string, intent dsl.Delete) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.deleted = append(m.deleted, intent)
	return &task.Task{ID: "task-del", OwnerID: ownerID, Title: intent.TitleRef}, nil
}

func (m *mockDispatcher) ModifyTask(_ context.Context, ownerID string, intent dsl.Modify, _ time.Time) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.modified = append(m.modified, intent)
	return &task.Task{ID: "task-mod", OwnerID: ownerID, Title: intent.TitleRef}, nil
}

func (m *mockDispatcher) createdIntents() []dsl.Create {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]dsl.Create(nil), m.created...)
}

func newTestEngine(t *testing.T) (*Engine, *mockDispatcher) {
	t.Helper()
	dispatcher := &mockDispatcher{}
	engine := NewEngine(dispatcher, WithNow(func() time.Time { return fixedNow }))
	return engine, dispatcher
}

func handle(t *testing.T, e *Engine, userID, text string) *Result {
	t.Helper()
	result, err := e.Handle(context.Background(), userID, text)
	require.NoError(t, err, "handle %q", text)
	return result
}

func TestEngine_CompleteCreateDispatchesImmediately(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	result := handle(t, engine, "u1", "remind me to call mom in 15 minutes")
	assert.Equal(t, ResultDispatched, result.Kind)
	assert.Contains(t, result.Reply, "call mom")
	require.NotNil(t, result.Task)

	created := dispatcher.createdIntents()
	require.Len(t, created, 1)
	assert.Equal(t, "call mom", created[0].Title)
	assert.Equal(t, dsl.DueRelative, created[0].Due.Kind)
}

func TestEngine_IncompleteCreateAwaitsConfirmation(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	result := handle(t, engine, "u1", "remind me to buy milk")
	assert.Equal(t, ResultConfirmationRequested, result.Kind)
	assert.Equal(t, []string{"due", "recurrence", "status"}, result.Missing)
	assert.Empty(t, dispatcher.createdIntents(), "nothing dispatched yet")

	result = handle(t, engine, "u1", "yes")
	assert.Equal(t, ResultDispatched, result.Kind)
	created := dispatcher.createdIntents()
	require.Len(t, created, 1)
	assert.Equal(t, "buy milk", created[0].Title)

	// The pending action was consumed by the confirmation.
	result = handle(t, engine, "u1", "yes")
	assert.Equal(t, ResultAnswered, result.Kind)
	assert.Len(t, dispatcher.createdIntents(), 1)
}

func TestEngine_RejectionDiscardsPending(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	handle(t, engine, "u1", "remind me to buy milk")
	result := handle(t, engine, "u1", "no")
	assert.Equal(t, ResultDiscarded, result.Kind)
	assert.Empty(t, dispatcher.createdIntents())

	result = handle(t, engine, "u1", "yes")
	assert.Equal(t, ResultAnswered, result.Kind, "discard consumed the pending action")
}

func TestEngine_NewerActionableSupersedesPending(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	handle(t, engine, "u1", "remind me to buy milk")
	handle(t, engine, "u1", "remind me to walk the dog")

	result := handle(t, engine, "u1", "yes")
	assert.Equal(t, ResultDispatched, result.Kind)

	created := dispatcher.createdIntents()
	require.Len(t, created, 1, "only the most recent pending action is realized")
	assert.Equal(t, "walk the dog", created[0].Title)
}

func TestEngine_CompleteActionableClearsPending(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	handle(t, engine, "u1", "remind me to buy milk")
	result := handle(t, engine, "u1", "remind me to call mom in 5 minutes")
	assert.Equal(t, ResultDispatched, result.Kind)

	result = handle(t, engine, "u1", "yes")
	assert.Equal(t, ResultAnswered, result.Kind, "superseded pending was cleared, not kept")
	assert.Len(t, dispatcher.createdIntents(), 1)
}

func TestEngine_SmallTalkLeavesPendingIntact(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	handle(t, engine, "u1", "remind me to buy milk")
	result := handle(t, engine, "u1", "hello")
	assert.Equal(t, ResultAnswered, result.Kind)

	result = handle(t, engine, "u1", "yes")
	assert.Equal(t, ResultDispatched, result.Kind, "pending survives small talk")
	assert.Len(t, dispatcher.createdIntents(), 1)
}

func TestEngine_ParseErrorLeavesPendingIntact(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	handle(t, engine, "u1", "remind me to buy milk")
	result := handle(t, engine, "u1", "XYZ garbage")
	assert.Equal(t, ResultParseError, result.Kind)
	assert.NotEmpty(t, result.Reply)

	result = handle(t, engine, "u1", "yes")
	assert.Equal(t, ResultDispatched, result.Kind)
	assert.Len(t, dispatcher.createdIntents(), 1)
}

func TestEngine_ModifyConfirmationFlow(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	result := handle(t, engine, "u1", "update task report set status=done, title=quarterly report")
	assert.Equal(t, ResultConfirmationRequested, result.Kind)
	assert.Equal(t, []string{"due"}, result.Missing)

	result = handle(t, engine, "u1", "ok")
	assert.Equal(t, ResultDispatched, result.Kind)

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	require.Len(t, dispatcher.modified, 1)
	assert.Equal(t, "report", dispatcher.modified[0].TitleRef)
	assert.Equal(t, "done", dispatcher.modified[0].Updates["status"])
}

func TestEngine_DeleteWithDueDispatchesImmediately(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	result := handle(t, engine, "u1", "delete task dentist at 2024-05-05 14:00")
	assert.Equal(t, ResultDispatched, result.Kind)

	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	require.Len(t, dispatcher.deleted, 1)
	assert.Equal(t, "dentist", dispatcher.deleted[0].TitleRef)
}

func TestEngine_ViewDispatchesAndLeavesPendingIntact(t *testing.T) {
	engine, dispatcher := newTestEngine(t)
	dispatcher.tasks = []*task.Task{{ID: "t1", Title: "call mom", Status: task.StatusPending}}

	handle(t, engine, "u1", "remind me to buy milk")
	result := handle(t, engine, "u1", "view tasks")
	assert.Equal(t, ResultDispatched, result.Kind)
	assert.Len(t, result.Tasks, 1)
	assert.Contains(t, result.Reply, "call mom")

	result = handle(t, engine, "u1", "yes")
	assert.Equal(t, ResultDispatched, result.Kind)
}

func TestEngine_ConfirmWithoutPending(t *testing.T) {
	engine, _ := newTestEngine(t)
	result := handle(t, engine, "u1", "yes")
	assert.Equal(t, ResultAnswered, result.Kind)
}

func TestEngine_PendingIsPerUser(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	handle(t, engine, "alice", "remind me to buy milk")
	result := handle(t, engine, "bob", "yes")
	assert.Equal(t, ResultAnswered, result.Kind, "bob has nothing pending")

	result = handle(t, engine, "alice", "yes")
	assert.Equal(t, ResultDispatched, result.Kind)
	assert.Len(t, dispatcher.createdIntents(), 1)
}

func TestEngine_NotFoundIsConversational(t *testing.T) {
	dispatcher := &mockDispatcher{err: task.ErrNotFound}
	engine := NewEngine(dispatcher, WithNow(func() time.Time { return fixedNow }))

	result := handle(t, engine, "u1", "delete task missing at 2024-05-05 14:00")
	assert.Equal(t, ResultAnswered, result.Kind)
	assert.Contains(t, result.Reply, "couldn't find")
}

func TestEngine_StorageErrorsPassThrough(t *testing.T) {
	boom := errors.New("disk on fire")
	dispatcher := &mockDispatcher{err: boom}
	engine := NewEngine(dispatcher, WithNow(func() time.Time { return fixedNow }))

	_, err := engine.Handle(context.Background(), "u1", "remind me to call mom in 5 minutes")
	assert.ErrorIs(t, err, boom)
}

func TestEngine_ConcurrentUsersDoNotInterfere(t *testing.T) {
	engine, dispatcher := newTestEngine(t)

	const users = 20
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			_, err := engine.Handle(context.Background(), userID,
				"remind me to stretch in 5 minutes")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, dispatcher.createdIntents(), users)
}

func TestEngine_SmallTalkReplies(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := handle(t, engine, "u1", "hello Alice")
	assert.Contains(t, result.Reply, "Alice")

	result = handle(t, engine, "u1", "who are you")
	assert.Contains(t, result.Reply, "V-Assistant")

	result = handle(t, engine, "u1", "help tasks")
	assert.Contains(t, result.Reply, "remind me to")
}
