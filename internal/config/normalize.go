package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Normalize trims and expands every configured value and fills in derived
// defaults. Call it before Validate.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.InputDir = strings.TrimSpace(c.InputDir)
	if c.InputDir != "" {
		if c.InputDir, err = expandPath(c.InputDir); err != nil {
			return fmt.Errorf("input dir: %w", err)
		}
	}
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir != "" {
		if c.OutputDir, err = expandPath(c.OutputDir); err != nil {
			return fmt.Errorf("output dir: %w", err)
		}
	}
	c.WorkDir = strings.TrimSpace(c.WorkDir)
	if c.WorkDir == "" && c.OutputDir != "" {
		c.WorkDir = filepath.Join(c.OutputDir, defaultWorkDirName)
	}
	if c.WorkDir != "" {
		if c.WorkDir, err = expandPath(c.WorkDir); err != nil {
			return fmt.Errorf("work dir: %w", err)
		}
	}
	c.LogDir = strings.TrimSpace(c.LogDir)
	if c.LogDir != "" {
		if c.LogDir, err = expandPath(c.LogDir); err != nil {
			return fmt.Errorf("log dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.RPFCLIBinary = strings.TrimSpace(c.RPFCLIBinary)
	if c.RPFCLIBinary == "" {
		if value, ok := os.LookupEnv("GTRADIO_RPF_CLI"); ok {
			c.RPFCLIBinary = strings.TrimSpace(value)
		}
	}
	if c.RPFCLIBinary == "" {
		c.RPFCLIBinary = defaultRPFCLIBinary
	}
	c.VGMStreamBinary = strings.TrimSpace(c.VGMStreamBinary)
	if c.VGMStreamBinary == "" {
		if value, ok := os.LookupEnv("GTRADIO_VGMSTREAM"); ok {
			c.VGMStreamBinary = strings.TrimSpace(value)
		}
	}
	if c.VGMStreamBinary == "" {
		c.VGMStreamBinary = defaultVGMStreamBinary
	}
	if c.ToolTimeoutSeconds <= 0 {
		c.ToolTimeoutSeconds = defaultToolTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "", "console":
		c.LogFormat = "console"
	case "json":
	default:
		c.LogFormat = "console"
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}
