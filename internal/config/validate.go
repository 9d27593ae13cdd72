package config

import "errors"

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateConcurrency(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.ManualMode() && c.AutoDetect {
		return errors.New("choose either --input or --auto-detect, not both")
	}
	if !c.ManualMode() && !c.AutoDetect {
		return errors.New("a source is required: pass --input <dir> or --auto-detect")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.OutputDir == "" {
		return errors.New("--output must be set")
	}
	if c.WorkDir == "" {
		return errors.New("work dir must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.VGMStreamBinary == "" {
		return errors.New("vgmstream binary must be set")
	}
	if !c.ManualMode() && c.RPFCLIBinary == "" {
		return errors.New("rpf-cli binary must be set for archive extraction")
	}
	if c.ToolTimeoutSeconds <= 0 {
		return errors.New("tool timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateConcurrency() error {
	if c.Jobs < 1 {
		return errors.New("--jobs must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.LogRetentionDays < 0 {
		return errors.New("log retention days must be zero or positive")
	}
	return nil
}
