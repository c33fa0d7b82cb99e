// Package policy loads operator-controlled mediation policy.
//
// The policy file lives at <root>/.sessiongate/config.yaml and is read on
// every invocation. It is written only by external configuration tooling;
// this package never persists anything.
package policy

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config is the operator-controlled mediation policy.
type Config struct {
	Commands             CommandsConfig       `koanf:"commands"`
	TriggerPhrases       TriggerPhrasesConfig `koanf:"trigger_phrases"`
	BlockedTools         []string             `koanf:"blocked_tools"`
	WorkArtifactPrefixes []string             `koanf:"work_artifact_prefixes"`
	Features             FeaturesConfig       `koanf:"features"`
	Git                  GitConfig            `koanf:"git"`
	Logging              LoggingConfig        `koanf:"logging"`
}

// CommandsConfig tunes the command risk classifier.
type CommandsConfig struct {
	// ReadPatterns are command names the operator has classified read-only,
	// extending the built-in set.
	ReadPatterns []string `koanf:"read_patterns"`

	// WritePatterns are command names the operator has classified
	// write-like, extending the built-in set.
	WritePatterns []string `koanf:"write_patterns"`

	// Extrasafe treats any command not known to be read-only as write-like.
	// Defaults to true (fail closed).
	Extrasafe *bool `koanf:"extrasafe"`
}

// ExtrasafeEnabled resolves the Extrasafe toggle with its fail-closed
// default.
func (c *CommandsConfig) ExtrasafeEnabled() bool {
	if c.Extrasafe == nil {
		return true
	}
	return *c.Extrasafe
}

// TriggerPhrasesConfig lists the natural-language phrases an external
// intent recognizer matches to move the workflow between modes. The
// mediator only quotes them in remediation messages.
type TriggerPhrasesConfig struct {
	ImplementationMode []string `koanf:"implementation_mode"`
	DiscussionMode     []string `koanf:"discussion_mode"`
	ContextCompaction  []string `koanf:"context_compaction"`
}

// FeaturesConfig toggles optional enforcement features.
type FeaturesConfig struct {
	BranchEnforcement *bool `koanf:"branch_enforcement"`
	EventLog          *bool `koanf:"event_log"`
}

// BranchEnforcementEnabled defaults to true.
func (f *FeaturesConfig) BranchEnforcementEnabled() bool {
	if f.BranchEnforcement == nil {
		return true
	}
	return *f.BranchEnforcement
}

// EventLogEnabled defaults to true.
func (f *FeaturesConfig) EventLogEnabled() bool {
	if f.EventLog == nil {
		return true
	}
	return *f.EventLog
}

// GitConfig bounds external VCS lookups.
type GitConfig struct {
	// Timeout caps a single branch resolution. The branch checker fails
	// open when it expires.
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig controls the stderr diagnostic logger.
type LoggingConfig struct {
	Level  zapcore.Level `koanf:"level"`
	Format string        `koanf:"format"`
}

// IsToolBlocked reports whether the tool identity is on the operator's
// block list for Discussion/Plan modes.
func (c *Config) IsToolBlocked(tool string) bool {
	for _, t := range c.BlockedTools {
		if t == tool {
			return true
		}
	}
	return false
}

// IsWorkArtifactPath reports whether the path lies under one of the
// work-artifact prefixes (plans, notes, logs, docs), which stay writable
// in Discussion and Plan modes. Relative paths are resolved against the
// project root.
func (c *Config) IsWorkArtifactPath(projectRoot, path string) bool {
	if path == "" {
		return false
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(projectRoot, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(projectRoot, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, prefix := range c.WorkArtifactPrefixes {
		if strings.HasPrefix(rel, strings.TrimSuffix(prefix, "/")+"/") || rel == strings.TrimSuffix(prefix, "/") {
			return true
		}
	}
	return false
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Git.Timeout <= 0 {
		return fmt.Errorf("git timeout must be > 0, got %v", c.Git.Timeout)
	}
	if c.Git.Timeout > time.Minute {
		return fmt.Errorf("git timeout too large: %v (max 1m)", c.Git.Timeout)
	}
	for _, t := range c.BlockedTools {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("blocked_tools contains an empty tool name")
		}
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if len(cfg.TriggerPhrases.ImplementationMode) == 0 {
		cfg.TriggerPhrases.ImplementationMode = []string{"make it so", "run that", "go ahead"}
	}
	if len(cfg.TriggerPhrases.DiscussionMode) == 0 {
		cfg.TriggerPhrases.DiscussionMode = []string{"stop", "hold on"}
	}
	if len(cfg.TriggerPhrases.ContextCompaction) == 0 {
		cfg.TriggerPhrases.ContextCompaction = []string{"compact"}
	}
	if len(cfg.BlockedTools) == 0 {
		cfg.BlockedTools = []string{"Write", "Edit", "MultiEdit", "NotebookEdit"}
	}
	if len(cfg.WorkArtifactPrefixes) == 0 {
		cfg.WorkArtifactPrefixes = []string{
			".sessiongate/", ".claude/", "docs/", "plans/", "notes/", "logs/",
		}
	}
	if cfg.Git.Timeout == 0 {
		cfg.Git.Timeout = 2 * time.Second
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}
