package dsl

import (
	"fmt"
	"time"
)

// Literal layouts accepted by the grammar.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// DueKind selects the active DueSpec variant.
type DueKind int

const (
	DueNone DueKind = iota
	DueRelative
	DueAbsolute
)

// DueUnit is the unit of a relative due offset.
type DueUnit int

const (
	UnitMinute DueUnit = iota
	UnitHour
	UnitDay
)

// Duration returns the length of one unit.
func (u DueUnit) Duration() time.Duration {
	switch u {
	case UnitHour:
		return time.Hour
	case UnitDay:
		return 24 * time.Hour
	default:
		return time.Minute
	}
}

func (u DueUnit) String() string {
	switch u {
	case UnitHour:
		return "hour"
	case UnitDay:
		return "day"
	default:
		return "minute"
	}
}

// DueSpec is a tagged variant: no due at all, a relative offset, or an
// absolute date plus time of day. Exactly one variant is active.
type DueSpec struct {
	Kind   DueKind
	Amount int     // relative: offset amount, always > 0
	Unit   DueUnit // relative: offset unit
	Date   time.Time
	Hour   int
	Minute int
}

// ResolveAt turns a DueSpec into a concrete instant. Relative specs resolve
// against now; absolute specs are a pure function of their literals and ignore
// now entirely. The second return is false for DueNone.
func (d DueSpec) ResolveAt(now time.Time) (time.Time, bool) {
	switch d.Kind {
	case DueRelative:
		return now.Add(time.Duration(d.Amount) * d.Unit.Duration()), true
	case DueAbsolute:
		return time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(),
			d.Hour, d.Minute, 0, 0, d.Date.Location()), true
	default:
		return time.Time{}, false
	}
}

func (d DueSpec) String() string {
	switch d.Kind {
	case DueRelative:
		unit := d.Unit.String()
		if d.Amount != 1 {
			unit += "s"
		}
		return fmt.Sprintf("in %d %s", d.Amount, unit)
	case DueAbsolute:
		return fmt.Sprintf("at %s %02d:%02d", d.Date.Format(DateLayout), d.Hour, d.Minute)
	default:
		return "unspecified"
	}
}

// dueFromNode validates a parsed due clause. A nil node means "unspecified".
// Malformed literals in a correct grammar position are reported as a
// ParseError, never as a partial DueSpec.
func dueFromNode(node *DueSpecNode) (DueSpec, error) {
	if node == nil {
		return DueSpec{Kind: DueNone}, nil
	}
	if node.Relative {
		if node.Amount <= 0 {
			return DueSpec{}, errCannotParse()
		}
		return DueSpec{Kind: DueRelative, Amount: node.Amount, Unit: unitFromWord(node.Unit)}, nil
	}

	date, err := time.Parse(DateLayout, node.Date)
	if err != nil {
		return DueSpec{}, errCannotParse()
	}
	clock, err := time.Parse(TimeLayout, node.Time)
	if err != nil {
		return DueSpec{}, errCannotParse()
	}
	return DueSpec{
		Kind:   DueAbsolute,
		Date:   date,
		Hour:   clock.Hour(),
		Minute: clock.Minute(),
	}, nil
}

func unitFromWord(word string) DueUnit {
	switch word {
	case "hour", "hours":
		return UnitHour
	case "day", "days":
		return UnitDay
	default:
		return UnitMinute
	}
}
