package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ChickenNuggetsK/GTRadio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Both tool binaries default to the test executable, the one program
// guaranteed to exist on the machine, so dependency checks pass without the
// real tools installed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.OutputDir = filepath.Join(base, "library")
	cfgVal.WorkDir = filepath.Join(base, "work")
	cfgVal.LogDir = filepath.Join(base, "logs")
	cfgVal.Jobs = 2
	cfgVal.RPFCLIBinary = os.Args[0]
	cfgVal.VGMStreamBinary = os.Args[0]

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithManualInput points the config at a directory of already-extracted
// station folders.
func WithManualInput(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.InputDir = dir
		b.cfg.AutoDetect = false
	}
}
