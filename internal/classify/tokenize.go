package classify

import (
	"errors"
	"unicode"
)

// ErrUnterminated reports a segment with an unclosed quote or a trailing
// backslash. Callers decide how to classify it per the extrasafe policy.
var ErrUnterminated = errors.New("unterminated quote or escape")

// splitSegments splits a command on unescaped |, ||, && and single &
// (background chaining) outside quotes. Quote and escape characters are
// preserved in the returned segments for tokenize to interpret.
func splitSegments(s string) []string {
	var segments []string
	var cur []rune
	var quote rune
	escaped := false

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case escaped:
			cur = append(cur, r)
			escaped = false
		case r == '\\' && quote != '\'':
			cur = append(cur, r)
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
			cur = append(cur, r)
		case r == '\'' || r == '"':
			quote = r
			cur = append(cur, r)
		case r == '&':
			if i+1 < len(runes) && runes[i+1] == '&' {
				i++
			}
			segments = append(segments, string(cur))
			cur = cur[:0]
		case r == '|':
			if i+1 < len(runes) && runes[i+1] == '|' {
				i++
			}
			segments = append(segments, string(cur))
			cur = cur[:0]
		default:
			cur = append(cur, r)
		}
	}
	segments = append(segments, string(cur))
	return segments
}

// tokenize splits a segment into words, honoring single quotes, double
// quotes, and backslash escapes. It is best-effort shell lexing, not a
// full parser: parameter expansion and globbing are left verbatim.
func tokenize(s string) ([]string, error) {
	var tokens []string
	var cur []rune
	var quote rune
	escaped := false
	inToken := false

	for _, r := range s {
		switch {
		case escaped:
			cur = append(cur, r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inToken = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur = append(cur, r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, string(cur))
				cur = cur[:0]
				inToken = false
			}
		default:
			cur = append(cur, r)
			inToken = true
		}
	}
	if escaped || quote != 0 {
		return nil, ErrUnterminated
	}
	if inToken {
		tokens = append(tokens, string(cur))
	}
	return tokens, nil
}
