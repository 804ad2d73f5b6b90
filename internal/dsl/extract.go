package dsl

import (
	"fmt"
	"strings"
	"time"
)

// Parse runs the full pipeline on one utterance: tokenize, parse, extract.
// Every failure path returns a typed error value; nothing panics on malformed
// input.
func Parse(text string) (Intent, error) {
	tree, err := ParseCommand(Tokenize(text))
	if err != nil {
		return nil, err
	}
	return Extract(tree)
}

// Extract converts a parse tree into a flat Intent value. It is a pure
// structural traversal: one case per node kind, no I/O, no clock access.
func Extract(tree *Tree) (Intent, error) {
	if tree == nil || tree.Command == nil {
		return nil, errCannotParse()
	}

	switch node := tree.Command.(type) {
	case *GreetingNode:
		return Greet{Name: node.Name}, nil

	case *IntroduceNode:
		return Introduce{}, nil

	case *AskNode:
		return Ask{Question: node.Question}, nil

	case *SupportNode:
		return Instruction{Topic: node.Topic}, nil

	case *CreateNode:
		due, err := dueFromNode(node.Due)
		if err != nil {
			return nil, err
		}
		if node.Rrule != nil && node.Rrule.Interval <= 0 {
			return nil, errCannotParse()
		}
		intent := Create{
			Title:      joinTitle(node.Title),
			Due:        due,
			Recurrence: recurrenceString(node.Rrule),
		}
		if node.Status != nil {
			status := Status(node.Status.Value)
			if !status.IsValid() {
				return nil, errCannotParse()
			}
			intent.Status = status
		}
		return intent, nil

	case *ViewNode:
		intent := View{}
		if node.Date != "" {
			date, err := time.Parse(DateLayout, node.Date)
			if err != nil {
				return nil, errCannotParse()
			}
			intent.DateFilter = &date
		}
		return intent, nil

	case *DeleteNode:
		due, err := dueFromNode(node.Due)
		if err != nil {
			return nil, err
		}
		return Delete{TitleRef: joinTitle(node.Title), Due: due}, nil

	case *ModifyNode:
		due, err := dueFromNode(node.Due)
		if err != nil {
			return nil, err
		}
		updates := make(map[string]string, len(node.Assigns))
		for _, assign := range node.Assigns {
			value := assign.Value
			if assign.Key == "status" {
				status := Status(strings.ToLower(value))
				if !status.IsValid() {
					return nil, errCannotParse()
				}
				value = string(status)
			}
			// Duplicate keys overwrite: last write wins.
			updates[assign.Key] = value
		}
		return Modify{TitleRef: joinTitle(node.Title), Due: due, Updates: updates}, nil

	case *ConfirmNode:
		return Confirm{Accepted: node.Accepted}, nil

	default:
		return nil, errCannotParse()
	}
}

// joinTitle reconstructs a task title from its constituent words, preserving
// original case.
func joinTitle(words []string) string {
	return strings.Join(words, " ")
}

// recurrenceString produces the canonical "every N units" form consumed by the
// scheduler, or empty when the clause is absent.
func recurrenceString(node *RruleNode) string {
	if node == nil {
		return ""
	}
	unit := unitFromWord(node.Unit).String()
	if node.Interval != 1 {
		unit += "s"
	}
	return fmt.Sprintf("every %d %s", node.Interval, unit)
}
