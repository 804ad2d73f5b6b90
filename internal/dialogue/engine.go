// Package dialogue drives the per-user conversation state machine: it
// interprets utterances, holds at most one pending action per user until a
// yes/no confirmation, and dispatches complete actions to task storage.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/FanchonSora/V-Assistant/internal/dsl"
	"github.com/FanchonSora/V-Assistant/internal/logging"
	"github.com/FanchonSora/V-Assistant/internal/metrics"
	"github.com/FanchonSora/V-Assistant/internal/task"
)

// Dispatcher is the narrow boundary to task storage. Dispatch happens only
// here; the engine never touches a repository directly.
type Dispatcher interface {
	CreateTask(ctx context.Context, ownerID string, intent dsl.Create, now time.Time) (*task.Task, error)
	ListTasks(ctx context.Context, ownerID string, date *time.Time) ([]*task.Task, error)
	DeleteTask(ctx context.Context, ownerID string, intent dsl.Delete) (*task.Task, error)
	ModifyTask(ctx context.Context, ownerID string, intent dsl.Modify, now time.Time) (*task.Task, error)
}

// ResultKind classifies what one utterance produced.
type ResultKind int

const (
	// ResultAnswered is small talk or an informational reply; no state changed.
	ResultAnswered ResultKind = iota
	// ResultDispatched means a task operation reached storage.
	ResultDispatched
	// ResultConfirmationRequested means an incomplete action is now pending.
	ResultConfirmationRequested
	// ResultDiscarded means the user rejected the pending action.
	ResultDiscarded
	// ResultParseError means the grammar rejected the utterance.
	ResultParseError
)

func (k ResultKind) String() string {
	switch k {
	case ResultDispatched:
		return "dispatched"
	case ResultConfirmationRequested:
		return "confirmation_requested"
	case ResultDiscarded:
		return "discarded"
	case ResultParseError:
		return "parse_error"
	default:
		return "answered"
	}
}

// Result is the outcome of handling one utterance. Reply is always set and
// suitable to show the user verbatim.
type Result struct {
	Kind    ResultKind
	Reply   string
	Missing []string     // set for ResultConfirmationRequested
	Task    *task.Task   // set when a single task was created/updated/deleted
	Tasks   []*task.Task // set for list results
}

// Engine is the dialogue state machine. Safe for concurrent use; utterances
// from the same user are serialized.
type Engine struct {
	dispatcher Dispatcher
	pending    PendingStore
	locks      *mutexMap
	log        logging.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPendingStore overrides the default in-memory pending store.
func WithPendingStore(store PendingStore) EngineOption {
	return func(e *Engine) { e.pending = store }
}

// WithLogger attaches a logger.
func WithLogger(log logging.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithNow overrides the clock. Tests use this to pin time.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an engine over the given dispatcher.
func NewEngine(dispatcher Dispatcher, opts ...EngineOption) *Engine {
	e := &Engine{
		dispatcher: dispatcher,
		pending:    NewMemoryPendingStore(),
		locks:      newMutexMap(),
		log:        logging.Nop(),
		metrics:    metrics.NewIsolated(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle runs one utterance through the full pipeline for one user. Grammar
// rejections come back as a ResultParseError result, not an error; the error
// return is reserved for storage failures.
func (e *Engine) Handle(ctx context.Context, userID, text string) (*Result, error) {
	e.locks.Lock(userID)
	defer e.locks.Unlock(userID)

	result, err := e.handle(ctx, userID, text)
	if err != nil {
		return nil, err
	}
	e.metrics.Utterances.WithLabelValues(result.Kind.String()).Inc()
	return result, nil
}

func (e *Engine) handle(ctx context.Context, userID, text string) (*Result, error) {
	intent, err := dsl.Parse(text)
	if err != nil {
		if dsl.IsParseError(err) {
			e.log.Debug("User %s: cannot parse %q", userID, text)
			e.metrics.ParseErrors.Inc()
			return &Result{
				Kind:  ResultParseError,
				Reply: "Sorry, I didn't understand that. Say \"help\" to see what I can do.",
			}, nil
		}
		return nil, err
	}

	switch in := intent.(type) {
	case dsl.Greet:
		return answered(greetReply(in.Name)), nil

	case dsl.Introduce:
		return answered("I'm V-Assistant, a task and reminder assistant. " +
			"I can create, list, update and delete your tasks, and remind you before they are due."), nil

	case dsl.Ask:
		return answered("I'm best at managing tasks. Try \"remind me to call mom in 15 minutes\", " +
			"or say \"help\" for more examples."), nil

	case dsl.Instruction:
		return answered(helpReply(in.Topic)), nil

	case dsl.View:
		return e.handleView(ctx, userID, in)

	case dsl.Create:
		return e.handleActionable(ctx, userID, in, in.Due)

	case dsl.Delete:
		return e.handleActionable(ctx, userID, in, in.Due)

	case dsl.Modify:
		return e.handleActionable(ctx, userID, in, in.Due)

	case dsl.Confirm:
		return e.handleConfirm(ctx, userID, in)

	default:
		return &Result{
			Kind:  ResultParseError,
			Reply: "Sorry, I didn't understand that.",
		}, nil
	}
}

// handleActionable runs the completeness check for create/delete/modify:
// complete actions dispatch immediately, incomplete ones become the user's
// pending action. Either way any previous pending action is superseded.
func (e *Engine) handleActionable(ctx context.Context, userID string, intent dsl.Intent, due dsl.DueSpec) (*Result, error) {
	if due.Kind != dsl.DueNone {
		if err := e.pending.Delete(ctx, userID); err != nil {
			return nil, err
		}
		return e.dispatch(ctx, userID, intent)
	}

	missing := missingFields(intent)
	action := &PendingAction{
		UserID:    userID,
		Intent:    intent,
		Missing:   missing,
		CreatedAt: e.now(),
	}
	if err := e.pending.Put(ctx, action); err != nil {
		return nil, err
	}
	e.log.Debug("User %s: pending %T awaiting confirmation", userID, intent)
	return &Result{
		Kind:    ResultConfirmationRequested,
		Reply:   confirmPrompt(intent, missing),
		Missing: missing,
	}, nil
}

func (e *Engine) handleConfirm(ctx context.Context, userID string, in dsl.Confirm) (*Result, error) {
	action, err := e.pending.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return answered("There's nothing waiting for a yes or no right now."), nil
	}

	// The pending action is consumed on either branch.
	if err := e.pending.Delete(ctx, userID); err != nil {
		return nil, err
	}
	e.metrics.Confirmations.WithLabelValues(strconv.FormatBool(in.Accepted)).Inc()

	if !in.Accepted {
		e.log.Debug("User %s: discarded pending %T", userID, action.Intent)
		return &Result{Kind: ResultDiscarded, Reply: "Okay, I've discarded that."}, nil
	}
	return e.dispatch(ctx, userID, action.Intent)
}

func (e *Engine) handleView(ctx context.Context, userID string, in dsl.View) (*Result, error) {
	tasks, err := e.dispatcher.ListTasks(ctx, userID, in.DateFilter)
	if err != nil {
		return nil, err
	}
	e.metrics.Dispatches.WithLabelValues("list").Inc()
	return &Result{
		Kind:  ResultDispatched,
		Reply: listReply(tasks, in.DateFilter),
		Tasks: tasks,
	}, nil
}

// dispatch crosses the storage boundary for a single actionable intent. A
// missing task reference is a conversational outcome, not a system failure.
func (e *Engine) dispatch(ctx context.Context, userID string, intent dsl.Intent) (*Result, error) {
	now := e.now()
	var (
		t      *task.Task
		err    error
		action string
		reply  func(*task.Task) string
	)

	switch in := intent.(type) {
	case dsl.Create:
		action = "create"
		t, err = e.dispatcher.CreateTask(ctx, userID, in, now)
		reply = createdReply
	case dsl.Delete:
		action = "delete"
		t, err = e.dispatcher.DeleteTask(ctx, userID, in)
		reply = func(t *task.Task) string {
			return fmt.Sprintf("Deleted %q.", t.Title)
		}
	case dsl.Modify:
		action = "modify"
		t, err = e.dispatcher.ModifyTask(ctx, userID, in, now)
		reply = func(t *task.Task) string {
			return fmt.Sprintf("Updated %q.", t.Title)
		}
	default:
		return nil, fmt.Errorf("dialogue: cannot dispatch %T", intent)
	}

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return answered("I couldn't find a task matching that. Say \"view tasks\" to see what you have."), nil
		}
		if errors.Is(err, task.ErrUnknownField) {
			return answered(fmt.Sprintf("I can't change that: %v.", err)), nil
		}
		e.log.Error("User %s: dispatch %s failed: %v", userID, action, err)
		return nil, err
	}

	e.metrics.Dispatches.WithLabelValues(action).Inc()
	e.log.Info("User %s: dispatched %s for task %s", userID, action, t.ID)
	return &Result{Kind: ResultDispatched, Reply: reply(t), Task: t}, nil
}

func answered(reply string) *Result {
	return &Result{Kind: ResultAnswered, Reply: reply}
}

// missingFields lists what the utterance left unspecified, in stable order.
// Due is always first since its absence is what made the action incomplete.
func missingFields(intent dsl.Intent) []string {
	missing := []string{"due"}
	if create, ok := intent.(dsl.Create); ok {
		if create.Recurrence == "" {
			missing = append(missing, "recurrence")
		}
		if create.Status == "" {
			missing = append(missing, "status")
		}
	}
	return missing
}

func confirmPrompt(intent dsl.Intent, missing []string) string {
	fields := strings.Join(missing, ", ")
	switch in := intent.(type) {
	case dsl.Create:
		return fmt.Sprintf("You didn't specify %s for %q. Create it anyway? (yes/no)", fields, in.Title)
	case dsl.Delete:
		return fmt.Sprintf("You didn't specify %s. Delete %q anyway? (yes/no)", fields, in.TitleRef)
	case dsl.Modify:
		return fmt.Sprintf("You didn't specify %s. Update %q anyway? (yes/no)", fields, in.TitleRef)
	default:
		return fmt.Sprintf("You didn't specify %s. Proceed anyway? (yes/no)", fields)
	}
}

func greetReply(name string) string {
	if name != "" {
		return fmt.Sprintf("Hello, %s! How can I help you today?", name)
	}
	return "Hello! How can I help you today?"
}

func helpReply(topic string) string {
	switch topic {
	case "tasks":
		return "Task commands: \"remind me to <title> in <N> minutes\", " +
			"\"view tasks on <YYYY-MM-DD>\", \"delete task <title>\", " +
			"\"update task <title> set status=done\"."
	default:
		return "I manage tasks and reminders. Examples: " +
			"\"remind me to call mom in 15 minutes\", \"view tasks\", " +
			"\"delete task groceries\", \"update task report set status=done\". " +
			"Say \"help tasks\" for the full command list."
	}
}

func createdReply(t *task.Task) string {
	if due, ok := t.DueAt(); ok {
		return fmt.Sprintf("Done! I'll remind you to %q at %s.",
			t.Title, due.Format("2006-01-02 15:04"))
	}
	return fmt.Sprintf("Done! I've added %q to your tasks.", t.Title)
}

func listReply(tasks []*task.Task, date *time.Time) string {
	if len(tasks) == 0 {
		if date != nil {
			return fmt.Sprintf("You have no tasks on %s.", date.Format(dsl.DateLayout))
		}
		return "You have no tasks."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d task(s):", len(tasks))
	for _, t := range tasks {
		b.WriteString("\n- ")
		b.WriteString(t.Title)
		if due, ok := t.DueAt(); ok {
			fmt.Fprintf(&b, " (due %s", due.Format("2006-01-02 15:04"))
			if t.Recurring() {
				fmt.Fprintf(&b, ", %s", t.Rrule)
			}
			b.WriteString(")")
		}
		fmt.Fprintf(&b, " [%s]", t.Status)
	}
	return b.String()
}
