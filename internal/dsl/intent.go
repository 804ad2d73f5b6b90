package dsl

import "time"

// Status is a task lifecycle state as it appears in utterances.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// IsValid reports whether the status is one of the recognized values.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusDone
}

// Intent is the structured, typed result of interpreting one utterance. It is
// a closed union: exactly one variant per command kind, immutable once
// produced. Consumers switch exhaustively over the concrete types.
type Intent interface {
	intent()
}

// Greet is a hello with an optional name.
type Greet struct {
	Name string
}

// Introduce asks the assistant to describe itself.
type Introduce struct{}

// Ask carries a free-form question verbatim.
type Ask struct {
	Question string
}

// Instruction is a help request scoped to a topic.
type Instruction struct {
	Topic string
}

// Create is a reminder creation request. Recurrence is the canonical
// "every N unit" form or empty when absent. Status is empty when absent;
// this layer never injects defaults.
type Create struct {
	Title      string
	Due        DueSpec
	Recurrence string
	Status     Status
}

// View lists tasks, optionally narrowed to a single date.
type View struct {
	DateFilter *time.Time
}

// Delete removes the task identified by TitleRef, optionally narrowed by due.
type Delete struct {
	TitleRef string
	Due      DueSpec
}

// Modify updates fields of the task identified by TitleRef. Update keys are
// lower-cased and unique; a duplicate key in the utterance wins last.
type Modify struct {
	TitleRef string
	Due      DueSpec
	Updates  map[string]string
}

// Confirm is a yes/no reply to a pending confirmation request.
type Confirm struct {
	Accepted bool
}

func (Greet) intent()       {}
func (Introduce) intent()   {}
func (Ask) intent()         {}
func (Instruction) intent() {}
func (Create) intent()      {}
func (View) intent()        {}
func (Delete) intent()      {}
func (Modify) intent()      {}
func (Confirm) intent()     {}
