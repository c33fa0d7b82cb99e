package classify

import (
	"regexp"
	"strings"
)

// subcommandRule classifies a command whose risk depends on its first
// argument (pip install vs pip list).
type subcommandRule func(args []string) Risk

// argumentRule classifies a command whose risk depends on the full
// argument list (sed -i, find -delete). The operator's write-name set is
// passed through so rules like xargs can recognize configured write
// commands.
type argumentRule func(args []string, writeNames map[string]bool) Risk

// subcommandRules gates package managers and interpreters on their
// subcommand. Anything not on the read-only allow-list is write-like.
var subcommandRules = map[string]subcommandRule{
	"pip":     packageManagerRule(map[string]bool{"show": true, "list": true, "search": true, "check": true, "freeze": true, "help": true}),
	"pip3":    packageManagerRule(map[string]bool{"show": true, "list": true, "search": true, "check": true, "freeze": true, "help": true}),
	"npm":     packageManagerRule(map[string]bool{"list": true, "ls": true, "view": true, "show": true, "search": true, "help": true}),
	"yarn":    packageManagerRule(map[string]bool{"list": true, "ls": true, "view": true, "show": true, "search": true, "help": true}),
	"python":  pythonRule,
	"python3": pythonRule,
	"git":     gitRule,
}

// gitReadSubcommands are git operations that only inspect the
// repository.
var gitReadSubcommands = map[string]bool{
	"status": true, "log": true, "diff": true, "show": true,
	"branch": true, "remote": true, "describe": true, "rev-parse": true,
	"blame": true, "ls-files": true, "ls-remote": true, "shortlog": true,
	"reflog": true, "cat-file": true, "grep": true, "help": true,
}

// gitRule allows inspection subcommands only. `git branch` with
// arguments can create branches; that risk is accepted to keep branch
// listing usable.
func gitRule(args []string) Risk {
	if len(args) == 0 {
		return ReadOnly
	}
	if gitReadSubcommands[strings.ToLower(args[0])] {
		return ReadOnly
	}
	return WriteLike
}

func packageManagerRule(readSubcommands map[string]bool) subcommandRule {
	return func(args []string) Risk {
		if len(args) == 0 {
			return WriteLike
		}
		if readSubcommands[strings.ToLower(args[0])] {
			return ReadOnly
		}
		return WriteLike
	}
}

// pythonRule allows only -c and -m invocations: arbitrary scripts can
// mutate files, so plain `python script.py` fails closed.
func pythonRule(args []string) Risk {
	if len(args) > 0 && (args[0] == "-c" || args[0] == "-m") {
		return ReadOnly
	}
	return WriteLike
}

// argumentRules inspect argument lists of commands that are read-only by
// default but carry mutating flags.
var argumentRules = map[string]argumentRule{
	"sed":   sedRule,
	"gsed":  sedRule,
	"awk":   awkRule,
	"gawk":  awkRule,
	"mawk":  awkRule,
	"find":  findRule,
	"xargs": xargsRule,
}

// sedRule flags in-place editing.
func sedRule(args []string, _ map[string]bool) Risk {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-i") || arg == "--in-place" {
			return WriteLike
		}
	}
	return ReadOnly
}

var awkRedirPattern = regexp.MustCompile(`>>?\s*["'].*["']`)

// awkRule flags output redirection inside the awk program text.
func awkRule(args []string, _ map[string]bool) Risk {
	script := strings.Join(args, " ")
	if awkRedirPattern.MatchString(script) {
		return WriteLike
	}
	for _, idiom := range []string{"print >", "print >>", "printf >", "printf >>"} {
		if strings.Contains(script, idiom) {
			return WriteLike
		}
	}
	return ReadOnly
}

// findRule flags -delete and -exec/-execdir invoking a write-like
// command.
func findRule(args []string, writeNames map[string]bool) Risk {
	for i, arg := range args {
		if arg == "-delete" {
			return WriteLike
		}
		if arg == "-exec" || arg == "-execdir" {
			if i+1 < len(args) {
				execCmd := strings.ToLower(args[i+1])
				if defaultWriteNames[execCmd] || writeNames[execCmd] {
					return WriteLike
				}
			}
		}
	}
	return ReadOnly
}

// xargsRule flags write-like commands fed through xargs, including the
// chained `xargs sed -i` idiom.
func xargsRule(args []string, writeNames map[string]bool) Risk {
	for i, arg := range args {
		lower := strings.ToLower(arg)
		if defaultWriteNames[lower] || writeNames[lower] {
			return WriteLike
		}
		if lower == "sed" || lower == "gsed" {
			if i+1 < len(args) && strings.HasPrefix(args[i+1], "-i") {
				return WriteLike
			}
		}
	}
	return ReadOnly
}
