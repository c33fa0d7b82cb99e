// Package branch verifies that a file write lands in a repository that
// is both declared in the active task and checked out on the task's
// branch.
//
// The checker fails open: if the repository or its branch cannot be
// resolved within the timeout, it logs a warning and allows the write.
// Losing this one guarantee is preferable to blocking all work on a
// tooling failure.
package branch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sessiongate/internal/state"
)

// DetachedHead is reported when HEAD does not point at a branch.
const DetachedHead = "detached"

// Outcome is one row of the four-way decision table.
type Outcome int

const (
	// OutcomeAllow: repository declared in the task and on the right
	// branch (or checking was impossible and the checker failed open).
	OutcomeAllow Outcome = iota

	// OutcomeWrongBranch: declared in the task, wrong branch.
	OutcomeWrongBranch

	// OutcomeNotInTask: right branch, repository not declared.
	OutcomeNotInTask

	// OutcomeBothWrong: neither declared nor on the right branch.
	OutcomeBothWrong
)

// Check is the result of one branch-consistency verification.
type Check struct {
	Outcome       Outcome
	Repo          string // repository short name
	RepoPath      string // repository root
	RelPath       string // repo root relative to the project root
	CurrentBranch string
	WantBranch    string
}

// Reason returns the human explanation for a blocking outcome.
func (c *Check) Reason() string {
	switch c.Outcome {
	case OutcomeWrongBranch:
		return fmt.Sprintf("Repository %q is part of this task but is on branch %q instead of %q.",
			c.Repo, c.CurrentBranch, c.WantBranch)
	case OutcomeNotInTask:
		return fmt.Sprintf("Repository %q is on the correct branch %q but is not declared in the task's repository list.",
			c.Repo, c.WantBranch)
	case OutcomeBothWrong:
		return fmt.Sprintf("Repository %q is not declared in the task's repository list and is on branch %q instead of %q.",
			c.Repo, c.CurrentBranch, c.WantBranch)
	}
	return ""
}

// Remediation returns the exact commands or edits that resolve a
// blocking outcome.
func (c *Check) Remediation() string {
	switch c.Outcome {
	case OutcomeWrongBranch:
		return fmt.Sprintf("Run: cd %s && git checkout %s", c.RelPath, c.WantBranch)
	case OutcomeNotInTask:
		return fmt.Sprintf("Update the task's repositories list to include %q.", c.Repo)
	case OutcomeBothWrong:
		return fmt.Sprintf("Run: cd %s && git checkout -b %s\nThen update the task's repositories list to include %q.",
			c.RelPath, c.WantBranch, c.Repo)
	}
	return ""
}

// Checker resolves repositories and branches for the mediator.
type Checker struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewChecker creates a checker. A zero timeout defaults to 2s.
func NewChecker(timeout time.Duration, logger *zap.Logger) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{timeout: timeout, logger: logger}
}

// Verify evaluates a candidate file write against the active task.
//
// The path's owning repository is resolved by walking up to the nearest
// .git entry; the repository is "in task" when it is the project root
// itself or its short name appears in the task's repository set. Paths
// outside any repository, and any resolution failure, allow the write.
func (c *Checker) Verify(ctx context.Context, projectRoot, path string, task *state.Task) *Check {
	if task == nil || task.Branch == "" {
		return &Check{Outcome: OutcomeAllow}
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(projectRoot, abs)
	}
	repoPath := findRepoRoot(filepath.Dir(abs))
	if repoPath == "" {
		return &Check{Outcome: OutcomeAllow}
	}

	current, err := c.currentBranch(ctx, repoPath)
	if err != nil {
		c.logger.Warn("could not verify branch; allowing",
			zap.String("repo", repoPath),
			zap.Error(err),
		)
		return &Check{Outcome: OutcomeAllow, RepoPath: repoPath}
	}

	repoName := filepath.Base(repoPath)
	relPath, relErr := filepath.Rel(projectRoot, repoPath)
	if relErr != nil {
		relPath = repoPath
	}

	inTask := repoPath == filepath.Clean(projectRoot) || task.HasRepository(repoName)
	branchCorrect := current == task.Branch

	check := &Check{
		Repo:          repoName,
		RepoPath:      repoPath,
		RelPath:       relPath,
		CurrentBranch: current,
		WantBranch:    task.Branch,
	}
	switch {
	case inTask && branchCorrect:
		check.Outcome = OutcomeAllow
	case inTask && !branchCorrect:
		check.Outcome = OutcomeWrongBranch
	case !inTask && branchCorrect:
		check.Outcome = OutcomeNotInTask
	default:
		check.Outcome = OutcomeBothWrong
	}
	return check
}

// currentBranch reads HEAD through go-git, bounded by the checker
// timeout. go-git operates on the local filesystem, so the goroutine is
// abandoned rather than cancelled when the deadline expires.
func (c *Checker) currentBranch(ctx context.Context, repoPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		repo, err := git.PlainOpen(repoPath)
		if err != nil {
			ch <- result{err: fmt.Errorf("opening repository: %w", err)}
			return
		}
		head, err := repo.Head()
		if err != nil {
			ch <- result{err: fmt.Errorf("resolving HEAD: %w", err)}
			return
		}
		if !head.Name().IsBranch() {
			ch <- result{name: DetachedHead}
			return
		}
		ch <- result{name: head.Name().Short()}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("branch lookup timed out: %w", ctx.Err())
	case r := <-ch:
		return r.name, r.err
	}
}

// findRepoRoot walks up from dir to the nearest directory containing a
// .git entry (directory or worktree file). Empty when none exists.
func findRepoRoot(dir string) string {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(cur, ".git")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return ""
		}
		cur = parent
	}
}
