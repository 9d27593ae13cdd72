package main

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestBuildRunConfigFillsDerivedDefaults(t *testing.T) {
	output := t.TempDir()
	cfg, err := buildRunConfig(&runOptions{output: output, autoDetect: true})
	if err != nil {
		t.Fatalf("buildRunConfig: %v", err)
	}
	if cfg.WorkDir != filepath.Join(output, ".gtradio") {
		t.Fatalf("WorkDir = %q", cfg.WorkDir)
	}
	if cfg.Jobs != runtime.NumCPU() {
		t.Fatalf("Jobs = %d, want %d", cfg.Jobs, runtime.NumCPU())
	}
	if cfg.RPFCLIBinary != "rpf-cli" || cfg.VGMStreamBinary != "vgmstream-cli" {
		t.Fatalf("tool defaults = %q, %q", cfg.RPFCLIBinary, cfg.VGMStreamBinary)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "console" {
		t.Fatalf("logging defaults = %q, %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestBuildRunConfigRejectsConflictingSources(t *testing.T) {
	_, err := buildRunConfig(&runOptions{
		output:     t.TempDir(),
		input:      t.TempDir(),
		autoDetect: true,
	})
	if err == nil {
		t.Fatal("expected an error for --input with --auto-detect")
	}
	requireContains(t, err.Error(), "not both")
}

func TestBuildRunConfigRequiresSomeSource(t *testing.T) {
	_, err := buildRunConfig(&runOptions{output: t.TempDir()})
	if err == nil {
		t.Fatal("expected an error without a source")
	}
	requireContains(t, err.Error(), "--auto-detect")
}

func TestBuildRunConfigToolPrecedence(t *testing.T) {
	t.Setenv("GTRADIO_RPF_CLI", "/env/rpf-cli")

	cfg, err := buildRunConfig(&runOptions{output: t.TempDir(), autoDetect: true})
	if err != nil {
		t.Fatalf("buildRunConfig: %v", err)
	}
	if cfg.RPFCLIBinary != "/env/rpf-cli" {
		t.Fatalf("env fallback ignored, got %q", cfg.RPFCLIBinary)
	}

	cfg, err = buildRunConfig(&runOptions{
		output:     t.TempDir(),
		autoDetect: true,
		rpfCLI:     "/flag/rpf-cli",
	})
	if err != nil {
		t.Fatalf("buildRunConfig: %v", err)
	}
	if cfg.RPFCLIBinary != "/flag/rpf-cli" {
		t.Fatalf("flag should beat environment, got %q", cfg.RPFCLIBinary)
	}
}

func TestBuildRunConfigJobsOverride(t *testing.T) {
	cfg, err := buildRunConfig(&runOptions{output: t.TempDir(), autoDetect: true, jobs: 3})
	if err != nil {
		t.Fatalf("buildRunConfig: %v", err)
	}
	if cfg.Jobs != 3 {
		t.Fatalf("Jobs = %d, want 3", cfg.Jobs)
	}
}
