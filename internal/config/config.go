package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config encapsulates all settings for an extraction run. Values come from
// CLI flags and a couple of environment fallbacks; there is no config file.
//
// Field groups:
//   - Source: manual input directory or Steam auto-detection (exactly one)
//   - Output: final station tree plus the work directory used for the
//     extraction cache and conversion staging
//   - Tools: external binary paths and the per-invocation timeout
//   - Concurrency: worker pool size shared by extraction and conversion
//   - Logging: level, format, optional log file directory and retention
type Config struct {
	InputDir   string
	AutoDetect bool

	OutputDir string
	WorkDir   string
	LogDir    string

	RPFCLIBinary       string
	VGMStreamBinary    string
	ToolTimeoutSeconds int

	Jobs int

	LogLevel  string
	LogFormat string
	// LogRetentionDays bounds how long old run logs survive in LogDir.
	// Zero disables pruning.
	LogRetentionDays int
}

// ManualMode reports whether the source is a user-supplied directory rather
// than an auto-detected Steam install.
func (c *Config) ManualMode() bool {
	return strings.TrimSpace(c.InputDir) != ""
}

// ExtractedDir returns the durable extraction cache below the work directory.
func (c *Config) ExtractedDir() string {
	return filepath.Join(c.WorkDir, "extracted")
}

// StagingDir returns the transient conversion staging area below the work
// directory.
func (c *Config) StagingDir() string {
	return filepath.Join(c.WorkDir, "staging")
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.OutputDir, c.WorkDir, c.ExtractedDir(), c.StagingDir()}
	if strings.TrimSpace(c.LogDir) != "" {
		dirs = append(dirs, c.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
