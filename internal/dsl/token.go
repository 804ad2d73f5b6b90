package dsl

import "strings"

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TokenKeyword TokenKind = iota
	TokenIdent
	TokenDate
	TokenTime
	TokenInt
	TokenStatus
	TokenEOF
)

// Token is a single lexical unit of an utterance. Text preserves the original
// casing; keyword and status matching is case-insensitive.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Is reports whether the token is the given keyword, matched case-insensitively.
func (t Token) Is(keyword string) bool {
	return t.Kind == TokenKeyword && strings.EqualFold(t.Text, keyword)
}

// IsAny reports whether the token matches any of the given keywords.
func (t Token) IsAny(keywords ...string) bool {
	for _, kw := range keywords {
		if t.Is(kw) {
			return true
		}
	}
	return false
}

func (k TokenKind) String() string {
	switch k {
	case TokenKeyword:
		return "keyword"
	case TokenIdent:
		return "identifier"
	case TokenDate:
		return "date"
	case TokenTime:
		return "time"
	case TokenInt:
		return "integer"
	case TokenStatus:
		return "status"
	case TokenEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// keywords is the reserved vocabulary of the command grammar. Anything outside
// this set (and the fixed date/time/integer/status patterns) lexes as free text.
var keywords = map[string]struct{}{
	// actions
	"remind": {}, "me": {}, "to": {},
	"delete": {}, "remove": {},
	"update": {}, "modify": {},
	"view": {}, "show": {}, "list": {},
	"task": {}, "tasks": {}, "set": {}, "on": {},
	// due / recurrence / status clauses
	"in": {}, "at": {}, "repeat": {}, "every": {}, "as": {},
	"minute": {}, "minutes": {},
	"hour": {}, "hours": {},
	"day": {}, "days": {},
	// small talk
	"hello": {}, "hi": {}, "hey": {},
	"who": {}, "are": {}, "you": {},
	"introduce": {}, "yourself": {},
	"what": {}, "how": {}, "why": {}, "when": {},
	"help": {},
	// confirmation
	"yes": {}, "y": {}, "yeah": {}, "yep": {}, "ok": {}, "okay": {}, "sure": {}, "confirm": {},
	"no": {}, "n": {}, "nope": {}, "cancel": {},
	// punctuation used by field assignments
	",": {}, "=": {},
}
