package dsl

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
	intPattern  = regexp.MustCompile(`^\d+$`)
)

// Tokenize splits raw text into a token stream terminated by an EOF token.
//
// Whitespace is a token boundary and is never emitted. The characters ',' and
// '=' are single-character tokens regardless of surrounding whitespace so that
// field assignments like "status=done, title=report" segment correctly.
// Tokenize never fails: unrecognized words lex as identifiers.
func Tokenize(text string) []Token {
	var tokens []Token

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		if runes[i] == ',' || runes[i] == '=' {
			tokens = append(tokens, Token{Kind: TokenKeyword, Text: string(runes[i]), Pos: i})
			i++
			continue
		}
		start := i
		for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != ',' && runes[i] != '=' {
			i++
		}
		word := string(runes[start:i])
		tokens = append(tokens, Token{Kind: classify(word), Text: word, Pos: start})
	}

	tokens = append(tokens, Token{Kind: TokenEOF, Pos: len(runes)})
	return tokens
}

// classify determines the token kind of a single word. Keyword recognition is
// tried before the literal patterns, which in turn win over the identifier
// fallback.
func classify(word string) TokenKind {
	lower := strings.ToLower(word)
	if _, ok := keywords[lower]; ok {
		return TokenKeyword
	}
	switch {
	case datePattern.MatchString(word):
		return TokenDate
	case timePattern.MatchString(word):
		return TokenTime
	case intPattern.MatchString(word):
		return TokenInt
	case lower == "pending" || lower == "done":
		return TokenStatus
	default:
		return TokenIdent
	}
}
