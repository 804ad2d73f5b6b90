package dsl

// The parse tree is a closed set of node types, one per grammar rule. The tree
// is produced by ParseCommand, consumed by exactly one Extract pass, and then
// discarded; nodes are never shared or retained.

// Tree is the root of a parsed utterance.
type Tree struct {
	Command CommandNode
}

// CommandNode is implemented by every command-level parse-tree node.
type CommandNode interface {
	commandNode()
}

// GreetingNode represents "hello"/"hi"/"hey" with an optional name.
type GreetingNode struct {
	Name string
}

// IntroduceNode represents "who are you" / "introduce yourself".
type IntroduceNode struct{}

// AskNode represents a free-form question led by a question keyword.
type AskNode struct {
	Question string
}

// SupportNode represents a help request with an optional topic.
type SupportNode struct {
	Topic string
}

// CreateNode represents "remind me to TITLE dueSpec? rruleClause? statusClause?".
type CreateNode struct {
	Title  []string
	Due    *DueSpecNode
	Rrule  *RruleNode
	Status *StatusNode
}

// ViewNode represents "view|show|list tasks (on DATE)?". Date holds the raw
// literal; it is validated during extraction.
type ViewNode struct {
	Date string
}

// DeleteNode represents "delete|remove task TITLE dueSpec?".
type DeleteNode struct {
	Title []string
	Due   *DueSpecNode
}

// ModifyNode represents "update|modify task TITLE dueSpec? set fieldAssign (, fieldAssign)*".
type ModifyNode struct {
	Title   []string
	Due     *DueSpecNode
	Assigns []FieldAssignNode
}

// ConfirmNode represents an affirmative or negative reply.
type ConfirmNode struct {
	Accepted bool
}

// DueSpecNode carries either a relative offset ("in INT unit") or raw
// absolute literals ("at DATE TIME"). Literals are validated by the extractor.
type DueSpecNode struct {
	Relative bool
	Amount   int
	Unit     string
	Date     string
	Time     string
}

// RruleNode represents "repeat every INT? unit".
type RruleNode struct {
	Interval int
	Unit     string
}

// StatusNode represents "as STATUS".
type StatusNode struct {
	Value string
}

// FieldAssignNode is a single "field = value" entry of a modify command.
type FieldAssignNode struct {
	Key   string
	Value string
}

func (*GreetingNode) commandNode()  {}
func (*IntroduceNode) commandNode() {}
func (*AskNode) commandNode()       {}
func (*SupportNode) commandNode()   {}
func (*CreateNode) commandNode()    {}
func (*ViewNode) commandNode()      {}
func (*DeleteNode) commandNode()    {}
func (*ModifyNode) commandNode()    {}
func (*ConfirmNode) commandNode()   {}
