package rpfcli_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChickenNuggetsK/GTRadio/internal/services"
	"github.com/ChickenNuggetsK/GTRadio/internal/services/rpfcli"
)

type stubExecutor struct {
	lines []string
	err   error
	calls int
	args  [][]string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	s.calls++
	s.args = append(s.args, append([]string(nil), args...))
	for _, line := range s.lines {
		onOutput(line)
	}
	return s.err
}

// fileCreatingExecutor drops a file into the destination so the output check
// passes. Dest dir is always the second argument.
type fileCreatingExecutor struct {
	args [][]string
}

func (f *fileCreatingExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	f.args = append(f.args, append([]string(nil), args...))
	destDir := args[1]
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(destDir, "track_01.awc"), []byte("awc"), 0o644)
}

type blockingExecutor struct{}

func (blockingExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := rpfcli.New("  ", 5); err == nil {
		t.Fatal("expected error for blank binary")
	}
}

func TestExtractPassesArchiveAndDest(t *testing.T) {
	exec := &fileCreatingExecutor{}
	client, err := rpfcli.New("rpf-cli", 5, rpfcli.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	destDir := filepath.Join(t.TempDir(), "RADIO_02_POP")
	archive := "/game/x64/audio/sfx/RADIO_02_POP.rpf"
	if err := client.Extract(context.Background(), archive, destDir); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(exec.args) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(exec.args))
	}
	want := []string{"-o", destDir, archive}
	got := exec.args[0]
	if len(got) != len(want) {
		t.Fatalf("unexpected args: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected args: got %v want %v", got, want)
		}
	}
}

func TestExtractErrorsWhenNoOutputProduced(t *testing.T) {
	client, err := rpfcli.New("rpf-cli", 5, rpfcli.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.Extract(context.Background(), "RADIO_04_PUNK.rpf", filepath.Join(t.TempDir(), "out"))
	if err == nil {
		t.Fatal("expected error when nothing was extracted")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got: %v", err)
	}
	if !strings.Contains(err.Error(), "produced no output") {
		t.Fatalf("expected 'produced no output' error, got: %v", err)
	}
}

func TestExtractIncludesOutputTailInError(t *testing.T) {
	exec := &stubExecutor{
		lines: []string{"opening archive", "error: header checksum mismatch"},
		err:   errors.New("exit status 2"),
	}
	client, err := rpfcli.New("rpf-cli", 5, rpfcli.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.Extract(context.Background(), "RADIO_04_PUNK.rpf", filepath.Join(t.TempDir(), "out"))
	if err == nil {
		t.Fatal("expected executor error to propagate")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got: %v", err)
	}
	if !strings.Contains(err.Error(), "header checksum mismatch") {
		t.Fatalf("expected tool output in error, got: %v", err)
	}
}

func TestExtractTimeoutClassified(t *testing.T) {
	client, err := rpfcli.New("rpf-cli", 1, rpfcli.WithExecutor(blockingExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.Extract(context.Background(), "RADIO_01_CLASS_ROCK.rpf", filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got: %v", err)
	}
}

func TestExtractCancelledContextPassesThrough(t *testing.T) {
	client, err := rpfcli.New("rpf-cli", 5, rpfcli.WithExecutor(blockingExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = client.Extract(ctx, "RADIO_01_CLASS_ROCK.rpf", filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("cancellation must not count as a tool failure: %v", err)
	}
}
