package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ChickenNuggetsK/GTRadio/internal/config"
)

func TestNormalizeExpandsPathsAndDerivesWorkDir(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg := config.Default()
	cfg.AutoDetect = true
	cfg.OutputDir = "~/radio"
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	wantOutput := filepath.Join(tempHome, "radio")
	if cfg.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.OutputDir, wantOutput)
	}
	wantWork := filepath.Join(wantOutput, ".gtradio")
	if cfg.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.WorkDir, wantWork)
	}
	if cfg.ExtractedDir() != filepath.Join(wantWork, "extracted") {
		t.Fatalf("unexpected extracted dir: %q", cfg.ExtractedDir())
	}
	if cfg.StagingDir() != filepath.Join(wantWork, "staging") {
		t.Fatalf("unexpected staging dir: %q", cfg.StagingDir())
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.OutputDir, cfg.WorkDir, cfg.ExtractedDir(), cfg.StagingDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestNormalizeHonoursToolEnvFallbacks(t *testing.T) {
	t.Setenv("GTRADIO_RPF_CLI", "/opt/tools/rpf-cli")
	t.Setenv("GTRADIO_VGMSTREAM", "/opt/tools/vgmstream-cli")

	cfg := config.Default()
	cfg.AutoDetect = true
	cfg.OutputDir = t.TempDir()
	cfg.RPFCLIBinary = ""
	cfg.VGMStreamBinary = ""
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if cfg.RPFCLIBinary != "/opt/tools/rpf-cli" {
		t.Fatalf("expected rpf-cli from env, got %q", cfg.RPFCLIBinary)
	}
	if cfg.VGMStreamBinary != "/opt/tools/vgmstream-cli" {
		t.Fatalf("expected vgmstream from env, got %q", cfg.VGMStreamBinary)
	}
}

func TestNormalizeFlagOverridesEnv(t *testing.T) {
	t.Setenv("GTRADIO_VGMSTREAM", "/env/vgmstream-cli")

	cfg := config.Default()
	cfg.AutoDetect = true
	cfg.OutputDir = t.TempDir()
	cfg.VGMStreamBinary = "/flag/vgmstream-cli"
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if cfg.VGMStreamBinary != "/flag/vgmstream-cli" {
		t.Fatalf("expected flag value to win, got %q", cfg.VGMStreamBinary)
	}
}

func TestNormalizeCanonicalizesLogging(t *testing.T) {
	cfg := config.Default()
	cfg.AutoDetect = true
	cfg.OutputDir = t.TempDir()
	cfg.LogFormat = " JSON "
	cfg.LogLevel = " Debug "
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("unexpected log format: %q", cfg.LogFormat)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}

	cfg.LogFormat = "yaml"
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if cfg.LogFormat != "console" {
		t.Fatalf("expected unsupported format to fall back to console, got %q", cfg.LogFormat)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.OutputDir = "/tmp/out"
		cfg.WorkDir = "/tmp/out/.gtradio"
		return cfg
	}

	cfg := base()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no source mode is selected")
	}

	cfg = base()
	cfg.AutoDetect = true
	cfg.InputDir = "/tmp/in"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when both source modes are selected")
	}

	cfg = base()
	cfg.AutoDetect = true
	cfg.OutputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing output dir")
	}

	cfg = base()
	cfg.AutoDetect = true
	cfg.Jobs = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive jobs")
	}

	cfg = base()
	cfg.AutoDetect = true
	cfg.ToolTimeoutSeconds = -5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative tool timeout")
	}

	cfg = base()
	cfg.AutoDetect = true
	cfg.LogRetentionDays = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative log retention")
	}

	cfg = base()
	cfg.InputDir = "/tmp/in"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected manual mode config to validate, got %v", err)
	}
}
