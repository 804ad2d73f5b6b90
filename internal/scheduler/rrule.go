package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseEvery parses the canonical recurrence form "every N minutes|hours|days"
// into a repeat interval.
func ParseEvery(rrule string) (time.Duration, error) {
	fields := strings.Fields(strings.ToLower(rrule))
	if len(fields) != 3 || fields[0] != "every" {
		return 0, fmt.Errorf("malformed recurrence %q", rrule)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("malformed recurrence interval %q", rrule)
	}

	var unit time.Duration
	switch fields[2] {
	case "minute", "minutes":
		unit = time.Minute
	case "hour", "hours":
		unit = time.Hour
	case "day", "days":
		unit = 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown recurrence unit %q", fields[2])
	}
	return time.Duration(n) * unit, nil
}
