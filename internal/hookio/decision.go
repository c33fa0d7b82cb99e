package hookio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Exit codes consumed by the host.
const (
	// CodeAllow means no objection; the tool may proceed.
	CodeAllow = 0

	// CodeFatal means the invocation could not be evaluated (malformed
	// input, corrupted state).
	CodeFatal = 1

	// CodeBlock means a deliberate policy block.
	CodeBlock = 2
)

// Verdict is the mediator's three-valued outcome.
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictBlock
	VerdictFatal
)

// Decision is the result of mediating one tool invocation.
type Decision struct {
	Verdict     Verdict
	Reason      string
	Remediation string
	Mode        string
	BlockedTool string
	Err         error
}

// Allow returns the silent-proceed decision.
func Allow() Decision {
	return Decision{Verdict: VerdictAllow}
}

// Block returns a policy block. Every block carries a remediation;
// a bare denial is a bug.
func Block(tool, mode, reason, remediation string) Decision {
	return Decision{
		Verdict:     VerdictBlock,
		Reason:      reason,
		Remediation: remediation,
		Mode:        mode,
		BlockedTool: tool,
	}
}

// Fatal returns a decision for an invocation that cannot be evaluated.
func Fatal(err error) Decision {
	return Decision{Verdict: VerdictFatal, Err: err}
}

// ExitCode maps the verdict to the host's exit-code taxonomy.
func (d Decision) ExitCode() int {
	switch d.Verdict {
	case VerdictBlock:
		return CodeBlock
	case VerdictFatal:
		return CodeFatal
	default:
		return CodeAllow
	}
}

// blockBody is the structured output emitted on a policy block.
type blockBody struct {
	Reason      string `json:"reason"`
	Remediation string `json:"remediation"`
	Mode        string `json:"mode"`
	BlockedTool string `json:"blocked_tool"`
}

var (
	blockHeader = color.New(color.FgRed, color.Bold)
	remedyText  = color.New(color.FgYellow)
	fatalHeader = color.New(color.FgRed, color.Bold)
)

// Emit writes the decision: on allow, nothing (silence means proceed);
// on block, a JSON body to stdout for the host plus a colored diagnostic
// to stderr for the terminal; on fatal, the error to stderr only.
func (d Decision) Emit(stdout, stderr io.Writer) error {
	switch d.Verdict {
	case VerdictAllow:
		return nil
	case VerdictFatal:
		fatalHeader.Fprintf(stderr, "[sessiongate] fatal: %v\n", d.Err)
		return nil
	default:
		blockHeader.Fprintf(stderr, "[sessiongate] blocked %s: %s\n", d.BlockedTool, d.Reason)
		remedyText.Fprintf(stderr, "%s\n", d.Remediation)

		body := blockBody{
			Reason:      d.Reason,
			Remediation: d.Remediation,
			Mode:        d.Mode,
			BlockedTool: d.BlockedTool,
		}
		enc := json.NewEncoder(stdout)
		if err := enc.Encode(body); err != nil {
			return fmt.Errorf("encoding block output: %w", err)
		}
		return nil
	}
}
