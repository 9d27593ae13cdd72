package vgmstream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ChickenNuggetsK/GTRadio/internal/services"
)

var commandContext = exec.CommandContext

const tailLimit = 6

// Converter defines the behaviour required by the conversion stage.
type Converter interface {
	Convert(ctx context.Context, sourcePath, destPath string) (int64, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// WithTimeout bounds each invocation. Zero or negative disables the bound.
func WithTimeout(seconds int) Option {
	return func(c *CLI) {
		c.timeout = time.Duration(seconds) * time.Second
	}
}

// CLI wraps the vgmstream-cli decoder.
type CLI struct {
	binary  string
	timeout time.Duration
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "vgmstream-cli"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert decodes one audio container into a RIFF WAVE file at destPath and
// returns the output size. Partial output is removed on any failure so a
// rerun never mistakes it for a finished file.
func (c *CLI) Convert(ctx context.Context, sourcePath, destPath string) (int64, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return 0, errors.New("source path required")
	}
	if strings.TrimSpace(destPath) == "" {
		return 0, errors.New("destination path required")
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	toolCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		toolCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"-o", destPath, sourcePath}
	cmd := commandContext(toolCtx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start vgmstream: %w", err)
	}

	var tail []string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tail = append(tail, line)
		if len(tail) > tailLimit {
			tail = tail[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		discard(destPath)
		return 0, fmt.Errorf("read vgmstream output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		discard(destPath)
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if errors.Is(toolCtx.Err(), context.DeadlineExceeded) {
			return 0, services.Wrap(services.ErrTimeout, "converting", "vgmstream-cli",
				fmt.Sprintf("no result after %s", c.timeout), err)
		}
		detail := strings.Join(tail, " | ")
		if detail == "" {
			detail = "tool reported no detail"
		}
		return 0, services.Wrap(services.ErrExternalTool, "converting", "vgmstream-cli", detail, err)
	}

	info, err := os.Stat(destPath)
	if err != nil || info.Size() == 0 {
		discard(destPath)
		return 0, services.Wrap(services.ErrExternalTool, "converting", "vgmstream-cli",
			"produced no playable output", nil)
	}
	return info.Size(), nil
}

func discard(path string) {
	_ = os.Remove(path)
}

var _ Converter = (*CLI)(nil)
