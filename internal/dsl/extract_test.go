package dsl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseIntent(t *testing.T, text string) Intent {
	t.Helper()
	intent, err := Parse(text)
	require.NoError(t, err, "interpret %q", text)
	return intent
}

func TestExtract_CreateRelative(t *testing.T) {
	intent := parseIntent(t, "remind me to call mom in 15 minutes")
	create, ok := intent.(Create)
	require.True(t, ok)
	assert.Equal(t, "call mom", create.Title)
	assert.Equal(t, DueRelative, create.Due.Kind)
	assert.Equal(t, 15, create.Due.Amount)
	assert.Equal(t, UnitMinute, create.Due.Unit)
	assert.Empty(t, create.Recurrence)
	assert.Empty(t, create.Status, "status defaults are not injected")
}

func TestExtract_CreateAbsolute(t *testing.T) {
	intent := parseIntent(t, "remind me to submit report at 2024-03-01 09:30")
	create := intent.(Create)
	assert.Equal(t, DueAbsolute, create.Due.Kind)
	assert.Equal(t, "2024-03-01", create.Due.Date.Format(DateLayout))
	assert.Equal(t, 9, create.Due.Hour)
	assert.Equal(t, 30, create.Due.Minute)
}

func TestExtract_CreateRecurrenceAndStatus(t *testing.T) {
	intent := parseIntent(t, "remind me to water plants in 1 day repeat every 2 hours as DONE")
	create := intent.(Create)
	assert.Equal(t, "every 2 hours", create.Recurrence)
	assert.Equal(t, StatusDone, create.Status, "status is lower-cased on extraction")

	intent = parseIntent(t, "remind me to stretch repeat every minute")
	create = intent.(Create)
	assert.Equal(t, "every 1 minute", create.Recurrence)
}

func TestExtract_TitlePreservesCase(t *testing.T) {
	intent := parseIntent(t, "remind me to Call MOM in 5 minutes")
	create := intent.(Create)
	assert.Equal(t, "Call MOM", create.Title)
}

func TestExtract_ModifyUpdates(t *testing.T) {
	intent := parseIntent(t, "update task report set status=done, title=quarterly report")
	modify := intent.(Modify)
	assert.Equal(t, "report", modify.TitleRef)
	assert.Equal(t, DueNone, modify.Due.Kind)
	assert.Equal(t, map[string]string{
		"status": "done",
		"title":  "quarterly report",
	}, modify.Updates)
}

func TestExtract_ModifyDuplicateKeyLastWins(t *testing.T) {
	intent := parseIntent(t, "update task report set title=a, title=b")
	modify := intent.(Modify)
	assert.Equal(t, map[string]string{"title": "b"}, modify.Updates)
}

func TestExtract_ModifyStatusValueValidated(t *testing.T) {
	_, err := Parse("update task report set status=finished")
	require.Error(t, err)
	assert.True(t, IsParseError(err))

	intent := parseIntent(t, "update task report set status=DONE")
	modify := intent.(Modify)
	assert.Equal(t, "done", modify.Updates["status"])
}

func TestExtract_ViewDateFilter(t *testing.T) {
	intent := parseIntent(t, "view tasks")
	view := intent.(View)
	assert.Nil(t, view.DateFilter)

	intent = parseIntent(t, "view tasks on 2024-02-02")
	view = intent.(View)
	require.NotNil(t, view.DateFilter)
	assert.Equal(t, time.February, view.DateFilter.Month())
}

func TestExtract_MalformedLiteralsAreParseErrors(t *testing.T) {
	for _, text := range []string{
		"remind me to x at 2024-13-40 09:30", // impossible date
		"remind me to x at 2024-03-01 25:00", // impossible time
		"remind me to x in 0 minutes",        // amount must be positive
		"view tasks on 2024-99-99",
	} {
		_, err := Parse(text)
		require.Error(t, err, text)
		assert.True(t, IsParseError(err), text)
	}
}

func TestExtract_Confirm(t *testing.T) {
	assert.Equal(t, Confirm{Accepted: true}, parseIntent(t, "yes"))
	assert.Equal(t, Confirm{Accepted: false}, parseIntent(t, "no"))
}

func TestExtract_GarbageIsCannotParse(t *testing.T) {
	_, err := Parse("XYZ garbage")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonCannotParse, pe.Reason)
}
