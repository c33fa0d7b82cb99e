package policy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// FileName is the policy file inside the project's .sessiongate dir.
	FileName = "config.yaml"

	// envPrefix namespaces environment overrides.
	envPrefix = "SESSIONGATE_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load reads the policy for a project.
//
// Precedence (highest to lowest):
//  1. Environment variables (SESSIONGATE_COMMANDS_EXTRASAFE, ...)
//  2. YAML policy file (<root>/.sessiongate/config.yaml)
//  3. Built-in defaults
//
// A missing file is not an error; defaults apply. A present but
// unparseable file is an error: the invocation cannot be evaluated
// against an unknown policy.
func Load(projectRoot string) (*Config, error) {
	k := koanf.New(".")

	configPath := filepath.Join(projectRoot, ".sessiongate", FileName)
	if _, err := os.Stat(configPath); err == nil {
		// Open once and size-check through the descriptor to avoid a
		// TOCTOU race between stat and read.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open policy file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat policy file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("policy file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read policy file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse policy file %s: %w", configPath, err)
		}
	}

	// Environment overrides: SESSIONGATE_<SECTION>_<FIELD> maps to
	// section.field. Example: SESSIONGATE_COMMANDS_EXTRASAFE ->
	// commands.extrasafe, SESSIONGATE_FEATURES_BRANCH_ENFORCEMENT ->
	// features.branch_enforcement.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("policy validation failed: %w", err)
	}
	return &cfg, nil
}
