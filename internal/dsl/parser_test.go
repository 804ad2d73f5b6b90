package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTree(t *testing.T, text string) *Tree {
	t.Helper()
	tree, err := ParseCommand(Tokenize(text))
	require.NoError(t, err, "parse %q", text)
	return tree
}

func requireCannotParse(t *testing.T, text string) {
	t.Helper()
	_, err := ParseCommand(Tokenize(text))
	require.Error(t, err, "expected parse failure for %q", text)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonCannotParse, pe.Reason)
}

func TestParse_CreateWithRelativeDue(t *testing.T) {
	tree := parseTree(t, "remind me to call mom in 15 minutes")
	node, ok := tree.Command.(*CreateNode)
	require.True(t, ok)
	assert.Equal(t, []string{"call", "mom"}, node.Title)
	require.NotNil(t, node.Due)
	assert.True(t, node.Due.Relative)
	assert.Equal(t, 15, node.Due.Amount)
	assert.Equal(t, "minutes", node.Due.Unit)
	assert.Nil(t, node.Rrule)
	assert.Nil(t, node.Status)
}

func TestParse_CreateWithAbsoluteDue(t *testing.T) {
	tree := parseTree(t, "remind me to submit report at 2024-03-01 09:30")
	node := tree.Command.(*CreateNode)
	require.NotNil(t, node.Due)
	assert.False(t, node.Due.Relative)
	assert.Equal(t, "2024-03-01", node.Due.Date)
	assert.Equal(t, "09:30", node.Due.Time)
}

func TestParse_CreateWithAllClauses(t *testing.T) {
	tree := parseTree(t, "remind me to water plants in 2 hours repeat every 3 days as pending")
	node := tree.Command.(*CreateNode)
	assert.Equal(t, []string{"water", "plants"}, node.Title)
	require.NotNil(t, node.Rrule)
	assert.Equal(t, 3, node.Rrule.Interval)
	assert.Equal(t, "days", node.Rrule.Unit)
	require.NotNil(t, node.Status)
	assert.Equal(t, "pending", node.Status.Value)
}

func TestParse_CreateWithoutDue(t *testing.T) {
	tree := parseTree(t, "remind me to pay rent")
	node := tree.Command.(*CreateNode)
	assert.Equal(t, []string{"pay", "rent"}, node.Title)
	assert.Nil(t, node.Due)
}

func TestParse_TitleKeepsClauseWordsWithoutClauseShape(t *testing.T) {
	// "in" not followed by INT+unit stays inside the title.
	tree := parseTree(t, "remind me to check in with the team")
	node := tree.Command.(*CreateNode)
	assert.Equal(t, []string{"check", "in", "with", "the", "team"}, node.Title)

	// "at" not followed by a date literal stays inside the title too.
	tree = parseTree(t, "remind me to look at the roof in 1 hour")
	node = tree.Command.(*CreateNode)
	assert.Equal(t, []string{"look", "at", "the", "roof"}, node.Title)
	require.NotNil(t, node.Due)
	assert.Equal(t, 1, node.Due.Amount)
}

func TestParse_DeleteAction(t *testing.T) {
	tree := parseTree(t, "delete task groceries")
	node := tree.Command.(*DeleteNode)
	assert.Equal(t, []string{"groceries"}, node.Title)
	assert.Nil(t, node.Due)

	tree = parseTree(t, "remove task dentist at 2024-05-05 14:00")
	node = tree.Command.(*DeleteNode)
	assert.Equal(t, []string{"dentist"}, node.Title)
	require.NotNil(t, node.Due)
	assert.Equal(t, "2024-05-05", node.Due.Date)
}

func TestParse_ModifyAction(t *testing.T) {
	tree := parseTree(t, "update task report set status=done, title=quarterly report")
	node := tree.Command.(*ModifyNode)
	assert.Equal(t, []string{"report"}, node.Title)
	require.Len(t, node.Assigns, 2)
	assert.Equal(t, FieldAssignNode{Key: "status", Value: "done"}, node.Assigns[0])
	assert.Equal(t, FieldAssignNode{Key: "title", Value: "quarterly report"}, node.Assigns[1])
}

func TestParse_ModifyWithDue(t *testing.T) {
	tree := parseTree(t, "modify task standup in 30 minutes set title=daily standup")
	node := tree.Command.(*ModifyNode)
	require.NotNil(t, node.Due)
	assert.True(t, node.Due.Relative)
	assert.Equal(t, 30, node.Due.Amount)
	require.Len(t, node.Assigns, 1)
}

func TestParse_ViewAction(t *testing.T) {
	tree := parseTree(t, "show tasks")
	node := tree.Command.(*ViewNode)
	assert.Empty(t, node.Date)

	tree = parseTree(t, "list tasks on 2024-02-02")
	node = tree.Command.(*ViewNode)
	assert.Equal(t, "2024-02-02", node.Date)
}

func TestParse_SmallTalk(t *testing.T) {
	tree := parseTree(t, "hello Alice")
	greet := tree.Command.(*GreetingNode)
	assert.Equal(t, "Alice", greet.Name)

	tree = parseTree(t, "hi")
	greet = tree.Command.(*GreetingNode)
	assert.Empty(t, greet.Name)

	tree = parseTree(t, "who are you")
	_, ok := tree.Command.(*IntroduceNode)
	assert.True(t, ok)

	tree = parseTree(t, "introduce yourself")
	_, ok = tree.Command.(*IntroduceNode)
	assert.True(t, ok)

	tree = parseTree(t, "what can you do for me")
	ask := tree.Command.(*AskNode)
	assert.Equal(t, "what can you do for me", ask.Question)

	tree = parseTree(t, "help tasks")
	help := tree.Command.(*SupportNode)
	assert.Equal(t, "tasks", help.Topic)
}

func TestParse_Confirmations(t *testing.T) {
	for _, text := range []string{"yes", "YES", "ok", "sure", "yep"} {
		tree := parseTree(t, text)
		node := tree.Command.(*ConfirmNode)
		assert.True(t, node.Accepted, text)
	}
	for _, text := range []string{"no", "nope", "cancel"} {
		tree := parseTree(t, text)
		node := tree.Command.(*ConfirmNode)
		assert.False(t, node.Accepted, text)
	}
}

func TestParse_Failures(t *testing.T) {
	for _, text := range []string{
		"",
		"XYZ garbage",
		"remind me to",                       // empty title
		"remind you to call",                 // wrong pronoun
		"delete groceries",                   // missing "task"
		"update task report",                 // missing set clause
		"update task report set",             // missing assignment
		"update task report set status=",     // missing value
		"remind me to call mom at 2024-01-01",// absolute due missing time
		"list tasks on tomorrow",             // not a date literal
		"yes please",                         // trailing tokens after confirm
	} {
		requireCannotParse(t, text)
	}
}

func TestParse_NeverPanics(t *testing.T) {
	inputs := []string{
		"remind remind remind",
		"= = , ,",
		"at 2024-01-01 10:00",
		"set a=b",
		"repeat every day",
		"remind me to , set = yes",
	}
	for _, text := range inputs {
		_, _ = ParseCommand(Tokenize(text)) // must return, not panic
	}
}
