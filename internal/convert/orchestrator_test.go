package convert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ChickenNuggetsK/GTRadio/internal/convert"
	"github.com/ChickenNuggetsK/GTRadio/internal/logging"
	"github.com/ChickenNuggetsK/GTRadio/internal/report"
	"github.com/ChickenNuggetsK/GTRadio/internal/stations"
	"github.com/ChickenNuggetsK/GTRadio/internal/testsupport"
)

type stubConverter struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (s *stubConverter) Convert(ctx context.Context, sourcePath, destPath string) (int64, error) {
	s.mu.Lock()
	s.calls = append(s.calls, filepath.Base(sourcePath))
	s.mu.Unlock()
	if err := s.fail[filepath.Base(sourcePath)]; err != nil {
		return 0, err
	}
	data := []byte("wav:" + filepath.Base(sourcePath))
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (s *stubConverter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func identity(t *testing.T, folder string) stations.Identity {
	t.Helper()
	id, ok := stations.ByFolder(folder)
	if !ok {
		t.Fatalf("unknown station folder %s", folder)
	}
	return id
}

func TestBuildTasksFindsNestedAudioCaseInsensitively(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	payload := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(payload, "01_track.awc"), "awc")
	testsupport.WriteFile(t, filepath.Join(payload, "sub", "02_track.AWC"), "awc")
	testsupport.WriteFile(t, filepath.Join(payload, "readme.dat"), "x")

	orch := convert.NewOrchestratorWithConverter(cfg, &stubConverter{}, logging.NewNop(), report.New("test"))
	tasks := orch.BuildTasks([]convert.Station{{
		Archive:  "RADIO_02_POP.rpf",
		Dir:      payload,
		Identity: identity(t, "RADIO_02_POP"),
	}})

	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}
	first := tasks[0]
	if first.StagedPath != filepath.Join(cfg.StagingDir(), "RADIO_02_POP.rpf", "01_track.wav") {
		t.Errorf("staged path = %q", first.StagedPath)
	}
	if first.FinalPath != filepath.Join(cfg.OutputDir, "RADIO_02_POP", "Songs", "01_track.wav") {
		t.Errorf("final path = %q", first.FinalPath)
	}
	if first.Status != report.StatusPending {
		t.Errorf("status = %q, want pending", first.Status)
	}
	nested := tasks[1]
	if nested.StagedPath != filepath.Join(cfg.StagingDir(), "RADIO_02_POP.rpf", "sub", "02_track.wav") {
		t.Errorf("nested staged path = %q", nested.StagedPath)
	}
	if nested.FinalPath != filepath.Join(cfg.OutputDir, "RADIO_02_POP", "Songs", "02_track.wav") {
		t.Errorf("nested final path should flatten to Songs, got %q", nested.FinalPath)
	}
}

func TestBuildTasksRecordsScanFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rep := report.New("test")
	orch := convert.NewOrchestratorWithConverter(cfg, &stubConverter{}, logging.NewNop(), rep)

	tasks := orch.BuildTasks([]convert.Station{{
		Archive:  "RADIO_02_POP.rpf",
		Dir:      filepath.Join(t.TempDir(), "vanished"),
		Identity: identity(t, "RADIO_02_POP"),
	}})
	if len(tasks) != 0 {
		t.Fatalf("tasks = %d, want 0", len(tasks))
	}
	snap := rep.Snapshot()
	if len(snap.Failures) != 1 || snap.Failures[0].Stage != "converting" {
		t.Fatalf("expected one converting failure, got %+v", snap.Failures)
	}
}

func TestRunConvertsPendingTasks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	payload := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(payload, "01_track.awc"), "awc")
	testsupport.WriteFile(t, filepath.Join(payload, "02_track.awc"), "awc")

	conv := &stubConverter{}
	rep := report.New("test")
	orch := convert.NewOrchestratorWithConverter(cfg, conv, logging.NewNop(), rep)
	tasks := orch.BuildTasks([]convert.Station{{
		Archive:  "RADIO_02_POP.rpf",
		Dir:      payload,
		Identity: identity(t, "RADIO_02_POP"),
	}})

	done, err := orch.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	var total int64
	for _, task := range done {
		if task.Status != report.StatusConverted {
			t.Errorf("task %s status = %q, want converted", task.Source, task.Status)
		}
		if _, statErr := os.Stat(task.StagedPath); statErr != nil {
			t.Errorf("expected staged output %s: %v", task.StagedPath, statErr)
		}
		total += task.Bytes
	}
	snap := rep.Snapshot()
	if snap.FilesConverted != 2 || snap.FilesFailed != 0 || snap.FilesSkipped != 0 {
		t.Errorf("counters = %d/%d/%d, want 2/0/0", snap.FilesConverted, snap.FilesFailed, snap.FilesSkipped)
	}
	if snap.BytesConverted != total || total == 0 {
		t.Errorf("BytesConverted = %d, want %d", snap.BytesConverted, total)
	}
}

func TestRunSkipsNonEmptyFinalOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	payload := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(payload, "01_track.awc"), "awc")
	testsupport.WriteFile(t, filepath.Join(payload, "02_track.awc"), "awc")
	testsupport.WriteFile(t, filepath.Join(cfg.OutputDir, "RADIO_02_POP", "Songs", "01_track.wav"), "already here")

	conv := &stubConverter{}
	rep := report.New("test")
	orch := convert.NewOrchestratorWithConverter(cfg, conv, logging.NewNop(), rep)
	tasks := orch.BuildTasks([]convert.Station{{
		Archive:  "RADIO_02_POP.rpf",
		Dir:      payload,
		Identity: identity(t, "RADIO_02_POP"),
	}})

	done, err := orch.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if conv.callCount() != 1 {
		t.Fatalf("expected 1 decoder run, got %d", conv.callCount())
	}
	if done[0].Status != report.StatusSkippedExists {
		t.Errorf("existing output not skipped: %q", done[0].Status)
	}
	if done[1].Status != report.StatusConverted {
		t.Errorf("pending task status = %q", done[1].Status)
	}
	snap := rep.Snapshot()
	if snap.FilesSkipped != 1 || snap.FilesConverted != 1 {
		t.Errorf("counters = %d skipped / %d converted, want 1/1", snap.FilesSkipped, snap.FilesConverted)
	}
}

func TestRunDoesNotSkipEmptyFinalOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	payload := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(payload, "01_track.awc"), "awc")
	testsupport.WriteFile(t, filepath.Join(cfg.OutputDir, "RADIO_02_POP", "Songs", "01_track.wav"), "")

	conv := &stubConverter{}
	orch := convert.NewOrchestratorWithConverter(cfg, conv, logging.NewNop(), report.New("test"))
	tasks := orch.BuildTasks([]convert.Station{{
		Archive:  "RADIO_02_POP.rpf",
		Dir:      payload,
		Identity: identity(t, "RADIO_02_POP"),
	}})

	done, err := orch.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if done[0].Status != report.StatusConverted {
		t.Errorf("zero-byte output must not satisfy the skip rule; status = %q", done[0].Status)
	}
}

func TestRunConvertsCollidingNamesIntoDistinctStagedPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	payload := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(payload, "part_a", "track.awc"), "awc-a")
	testsupport.WriteFile(t, filepath.Join(payload, "part_b", "track.awc"), "awc-b")

	conv := &stubConverter{}
	orch := convert.NewOrchestratorWithConverter(cfg, conv, logging.NewNop(), report.New("test"))
	tasks := orch.BuildTasks([]convert.Station{{
		Archive:  "RADIO_02_POP.rpf",
		Dir:      payload,
		Identity: identity(t, "RADIO_02_POP"),
	}})

	done, err := orch.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(done) != 2 {
		t.Fatalf("tasks = %d, want 2", len(done))
	}
	if done[0].FinalPath != done[1].FinalPath {
		t.Fatalf("test expects colliding final paths, got %q and %q", done[0].FinalPath, done[1].FinalPath)
	}
	if done[0].StagedPath == done[1].StagedPath {
		t.Fatal("colliding names must stage to distinct paths")
	}
	for _, task := range done {
		if task.Status != report.StatusConverted {
			t.Errorf("task %s status = %q, want converted", task.Source, task.Status)
		}
	}
}

func TestRunContainsDecoderFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	payload := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(payload, "01_track.awc"), "awc")
	testsupport.WriteFile(t, filepath.Join(payload, "02_track.awc"), "awc")

	conv := &stubConverter{fail: map[string]error{
		"01_track.awc": errors.New("vgmstream-cli: failed opening file"),
	}}
	rep := report.New("test")
	orch := convert.NewOrchestratorWithConverter(cfg, conv, logging.NewNop(), rep)
	tasks := orch.BuildTasks([]convert.Station{{
		Archive:  "RADIO_02_POP.rpf",
		Dir:      payload,
		Identity: identity(t, "RADIO_02_POP"),
	}})

	done, err := orch.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("one bad file must not abort the stage: %v", err)
	}
	if done[0].Status != report.StatusFailed || done[0].Detail == "" {
		t.Errorf("failed task = %+v", done[0])
	}
	if done[1].Status != report.StatusConverted {
		t.Errorf("healthy task status = %q", done[1].Status)
	}
	snap := rep.Snapshot()
	if snap.FilesFailed != 1 || snap.FilesConverted != 1 {
		t.Errorf("counters = %d failed / %d converted, want 1/1", snap.FilesFailed, snap.FilesConverted)
	}
	if len(snap.Failures) != 1 || snap.Failures[0].Stage != "converting" {
		t.Errorf("unexpected failure record: %+v", snap.Failures)
	}
}

func TestRunCancelledContextAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	payload := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(payload, "01_track.awc"), "awc")

	orch := convert.NewOrchestratorWithConverter(cfg, &stubConverter{}, logging.NewNop(), report.New("test"))
	tasks := orch.BuildTasks([]convert.Station{{
		Archive:  "RADIO_02_POP.rpf",
		Dir:      payload,
		Identity: identity(t, "RADIO_02_POP"),
	}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := orch.Run(ctx, tasks); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}
