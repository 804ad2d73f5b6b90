package dsl

import "errors"

// ReasonCannotParse is the single reason code for grammar mismatches. No
// partial interpretation is ever surfaced alongside it.
const ReasonCannotParse = "cannot_parse"

// ParseError reports that an utterance does not match the command grammar, or
// that a literal in a correct grammar position failed to resolve. The pipeline
// returns it as a value; it never escapes as a panic.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

func errCannotParse() error {
	return &ParseError{Reason: ReasonCannotParse}
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
