// Package classify decides whether a shell command is read-only or
// write-like.
//
// The classifier is a pure function of the command string and the
// operator policy. It is deliberately conservative: shell redirection is
// always write-like, argument-dependent commands (sed -i, find -delete,
// xargs rm) are inspected with per-command rules, and under the extrasafe
// policy any name it does not recognize is treated as write-like. It
// never attempts full shell parsing; quoting is handled with best-effort
// tokenization.
package classify

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Risk is the classification outcome.
type Risk int

const (
	// ReadOnly commands observe but never mutate.
	ReadOnly Risk = iota

	// WriteLike commands can mutate the filesystem or system state.
	WriteLike
)

// String returns a short name for the risk.
func (r Risk) String() string {
	if r == WriteLike {
		return "write-like"
	}
	return "read-only"
}

// Policy carries the operator-configured classification overrides.
type Policy struct {
	// ReadNames extend the built-in read-only name set.
	ReadNames []string

	// WriteNames extend the built-in write-like name set.
	WriteNames []string

	// Extrasafe treats unrecognized names as write-like.
	Extrasafe bool
}

func (p *Policy) readSet() map[string]bool  { return toSet(p.ReadNames) }
func (p *Policy) writeSet() map[string]bool { return toSet(p.WriteNames) }

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return set
}

// redirPattern catches shell redirection: >, >>, descriptor forms such as
// 2>&1, combined &>, and spaced input redirection / heredocs. Redirection
// is always mutating regardless of the command invoked, so matching
// anywhere in the raw string (even inside quotes) errs toward WriteLike.
var redirPattern = regexp.MustCompile(`(?:^|\s)\d*>>?&?\d*|(?:^|\s)<<?<?\s|(?:^|\s)&>`)

// Classify determines the risk of a shell command under a policy.
//
// A command is ReadOnly only if every pipe/&&/|| segment is ReadOnly.
// Empty commands are ReadOnly. Tokenization failures (unbalanced quotes)
// resolve to WriteLike under extrasafe and ReadOnly otherwise, matching
// the general unrecognized-name default.
func Classify(command string, pol Policy) Risk {
	s := strings.TrimSpace(command)
	if s == "" {
		return ReadOnly
	}

	if redirPattern.MatchString(s) {
		return WriteLike
	}

	readNames := pol.readSet()
	writeNames := pol.writeSet()

	for _, segment := range splitSegments(s) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		tokens, err := tokenize(segment)
		if err != nil {
			if pol.Extrasafe {
				return WriteLike
			}
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		if classifySegment(tokens, pol, readNames, writeNames) == WriteLike {
			return WriteLike
		}
	}
	return ReadOnly
}

// classifySegment evaluates one pipeline segment. Rule precedence follows
// the decision ladder: cd, subcommand-gated names, the write-like name
// sets, argument rules, then the read-only name sets, then the extrasafe
// default.
func classifySegment(tokens []string, pol Policy, readNames, writeNames map[string]bool) Risk {
	name := strings.ToLower(filepath.Base(tokens[0]))
	args := tokens[1:]

	if name == "cd" {
		return ReadOnly
	}

	if rule, ok := subcommandRules[name]; ok {
		return rule(args)
	}

	if defaultWriteNames[name] || writeNames[name] {
		return WriteLike
	}

	if rule, ok := argumentRules[name]; ok {
		if rule(args, writeNames) == WriteLike {
			return WriteLike
		}
	}

	if readNames[name] || defaultReadNames[name] {
		return ReadOnly
	}
	if pol.Extrasafe {
		return WriteLike
	}
	return ReadOnly
}
