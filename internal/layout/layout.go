// Package layout moves staged conversions into the final station tree. The
// placement pass is sequential on purpose: it is the only writer to final
// destination paths, which keeps collision handling free of races.
package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChickenNuggetsK/GTRadio/internal/config"
	"github.com/ChickenNuggetsK/GTRadio/internal/convert"
	"github.com/ChickenNuggetsK/GTRadio/internal/fileutil"
	"github.com/ChickenNuggetsK/GTRadio/internal/logging"
	"github.com/ChickenNuggetsK/GTRadio/internal/report"
)

const groupMarkerName = "stationGroupInfo.json"

// groupInfo is the marker the player app reads at the root of a station
// group.
type groupInfo struct {
	Generation int    `json:"generation"`
	Name       string `json:"name"`
}

// Builder owns the final placement of converted files.
type Builder struct {
	cfg    *config.Config
	logger *slog.Logger
	report *report.Report
}

// NewBuilder constructs the layout stage.
func NewBuilder(cfg *config.Config, logger *slog.Logger, rep *report.Report) *Builder {
	return &Builder{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "layout"),
		report: rep,
	}
}

// Run places every converted task, resolves destination collisions, writes
// the station group marker, and prunes the staging area. Placement failures
// are recorded and contained; only cancellation aborts.
func (b *Builder) Run(ctx context.Context, tasks []convert.Task) error {
	logger := logging.WithContext(ctx, b.logger)
	if len(tasks) == 0 {
		return nil
	}

	if err := b.EnsureStationDirs(tasks); err != nil {
		b.report.Failed("laying-out", "station directories", err.Error())
		logger.Warn("creating station directories failed", logging.Error(err))
	}

	var placed, duplicates, collisions int
	for i := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		task := &tasks[i]
		if task.Status != report.StatusConverted {
			continue
		}
		outcome, err := b.place(task)
		if err != nil {
			b.report.Failed("laying-out", taskSubject(task), err.Error())
			logger.Warn("placement failed",
				logging.String("file", taskSubject(task)),
				logging.Error(err))
			continue
		}
		switch outcome {
		case placedDirect, placedRenamed:
			placed++
			if outcome == placedRenamed {
				collisions++
			}
		case droppedDuplicate:
			duplicates++
		}
	}

	if err := b.writeGroupMarker(); err != nil {
		b.report.Failed("laying-out", groupMarkerName, err.Error())
		logger.Warn("writing station group marker failed", logging.Error(err))
	}
	if err := os.RemoveAll(b.cfg.StagingDir()); err != nil {
		logger.Warn("pruning staging area failed", logging.Error(err))
	}

	logger.Info("layout complete",
		logging.Int("placed", placed),
		logging.Int("duplicates", duplicates),
		logging.Int("collisions", collisions))
	return nil
}

// EnsureStationDirs creates <output>/<folder>/Songs for every station that
// has output headed its way. MkdirAll keeps repeated calls harmless.
func (b *Builder) EnsureStationDirs(tasks []convert.Task) error {
	seen := make(map[string]struct{})
	for i := range tasks {
		if tasks[i].Status == report.StatusFailed {
			continue
		}
		folder := tasks[i].Station.Folder
		if _, ok := seen[folder]; ok {
			continue
		}
		seen[folder] = struct{}{}
		if err := os.MkdirAll(filepath.Join(b.cfg.OutputDir, folder, "Songs"), 0o755); err != nil {
			return fmt.Errorf("create station directory for %s: %w", folder, err)
		}
	}
	return nil
}

type placement int

const (
	placedDirect placement = iota
	placedRenamed
	droppedDuplicate
)

// place moves one staged file to its destination. An occupied destination
// with identical content drops the staged copy; different content probes
// numbered alternatives until a free or identical slot turns up.
func (b *Builder) place(task *convert.Task) (placement, error) {
	dest := task.FinalPath
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return placedDirect, fmt.Errorf("create destination directory: %w", err)
	}

	if !exists(dest) {
		if err := fileutil.MoveFile(task.StagedPath, dest); err != nil {
			return placedDirect, err
		}
		return placedDirect, nil
	}

	same, err := fileutil.SameContent(task.StagedPath, dest)
	if err != nil {
		return placedDirect, fmt.Errorf("compare with existing output: %w", err)
	}
	if same {
		if err := os.Remove(task.StagedPath); err != nil {
			return placedDirect, fmt.Errorf("drop duplicate: %w", err)
		}
		b.report.DuplicateSkipped()
		return droppedDuplicate, nil
	}

	for n := 1; ; n++ {
		candidate := numberedPath(dest, n)
		if !exists(candidate) {
			if err := fileutil.MoveFile(task.StagedPath, candidate); err != nil {
				return placedRenamed, err
			}
			b.report.CollisionResolved(task.Station.Folder, filepath.Base(candidate))
			return placedRenamed, nil
		}
		same, err := fileutil.SameContent(task.StagedPath, candidate)
		if err != nil {
			return placedRenamed, fmt.Errorf("compare with existing output: %w", err)
		}
		if same {
			if err := os.Remove(task.StagedPath); err != nil {
				return placedRenamed, fmt.Errorf("drop duplicate: %w", err)
			}
			b.report.DuplicateSkipped()
			return droppedDuplicate, nil
		}
	}
}

// writeGroupMarker drops the group metadata file at the output root. An
// existing marker is left exactly as it is.
func (b *Builder) writeGroupMarker() error {
	path := filepath.Join(b.cfg.OutputDir, groupMarkerName)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	data, err := json.MarshalIndent(groupInfo{Generation: 5, Name: "Grand Theft Auto V"}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func numberedPath(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(path, ext), n, ext)
}

func taskSubject(task *convert.Task) string {
	return filepath.Join(task.Station.Folder, filepath.Base(task.FinalPath))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
