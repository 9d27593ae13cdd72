package convert

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ChickenNuggetsK/GTRadio/internal/config"
	"github.com/ChickenNuggetsK/GTRadio/internal/logging"
	"github.com/ChickenNuggetsK/GTRadio/internal/report"
	"github.com/ChickenNuggetsK/GTRadio/internal/services"
	"github.com/ChickenNuggetsK/GTRadio/internal/services/vgmstream"
	"github.com/ChickenNuggetsK/GTRadio/internal/stations"
)

// Station pairs an extracted payload with its mapped station identity.
type Station struct {
	Archive  string
	Dir      string
	Identity stations.Identity
}

// Task is one raw audio file on its way into the station's Songs folder.
// Conversion writes to StagedPath; layout later moves it to FinalPath.
type Task struct {
	Source     string
	Station    stations.Identity
	StagedPath string
	FinalPath  string
	Status     report.Status
	Detail     string
	Bytes      int64
}

// Orchestrator runs the external decoder across every pending task.
type Orchestrator struct {
	cfg       *config.Config
	converter vgmstream.Converter
	logger    *slog.Logger
	report    *report.Report
	sampler   *logging.ProgressSampler
}

// NewOrchestrator constructs the conversion stage using the configured
// vgmstream-cli.
func NewOrchestrator(cfg *config.Config, logger *slog.Logger, rep *report.Report) *Orchestrator {
	converter := vgmstream.NewCLI(
		vgmstream.WithBinary(cfg.VGMStreamBinary),
		vgmstream.WithTimeout(cfg.ToolTimeoutSeconds),
	)
	return NewOrchestratorWithConverter(cfg, converter, logger, rep)
}

// NewOrchestratorWithConverter allows injecting the decoder (used in tests).
func NewOrchestratorWithConverter(cfg *config.Config, converter vgmstream.Converter, logger *slog.Logger, rep *report.Report) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		converter: converter,
		logger:    logging.NewComponentLogger(logger, "converter"),
		report:    rep,
		sampler:   logging.NewProgressSampler(10),
	}
}

// BuildTasks walks each station payload for raw audio files and plans one
// task per file. Staging paths are keyed by the discovered archive name,
// which is unique within a run, so no two tasks ever share an in-flight
// output path even when their final names collide.
func (o *Orchestrator) BuildTasks(mapped []Station) []Task {
	var tasks []Task
	for _, station := range mapped {
		walkErr := filepath.WalkDir(station.Dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".awc") {
				return nil
			}
			rel, relErr := filepath.Rel(station.Dir, path)
			if relErr != nil {
				return relErr
			}
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			tasks = append(tasks, Task{
				Source:     path,
				Station:    station.Identity,
				StagedPath: filepath.Join(o.cfg.StagingDir(), station.Archive, swapToWav(rel)),
				FinalPath:  filepath.Join(o.cfg.OutputDir, station.Identity.Folder, "Songs", stem+".wav"),
				Status:     report.StatusPending,
			})
			return nil
		})
		if walkErr != nil {
			o.report.Failed("converting", station.Archive, "scan payload: "+walkErr.Error())
			o.logger.Warn("payload scan failed",
				logging.String("archive", station.Archive),
				logging.Error(walkErr))
		}
	}
	return tasks
}

// Run executes every pending task with bounded parallelism and returns the
// tasks with their outcomes filled in. The skip decision uses the state of
// the final tree before any conversion starts: a rerun of a finished run
// converts nothing, while a fresh run with colliding names converts every
// file and leaves the collisions to layout.
func (o *Orchestrator) Run(ctx context.Context, tasks []Task) ([]Task, error) {
	logger := logging.WithContext(ctx, o.logger)

	pending := make([]int, 0, len(tasks))
	for i := range tasks {
		if existsNonEmpty(tasks[i].FinalPath) {
			tasks[i].Status = report.StatusSkippedExists
			o.report.FileSkipped()
			continue
		}
		pending = append(pending, i)
	}
	logger.Info("converting audio files",
		logging.Int("files", len(pending)),
		logging.Int("skipped", len(tasks)-len(pending)),
		logging.Int("jobs", o.jobs()))

	o.sampler.Reset()
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.jobs())
	for _, i := range pending {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if err := o.convertOne(groupCtx, &tasks[i]); err != nil {
				return err
			}
			o.logProgress(logger, len(pending))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return tasks, err
	}
	return tasks, nil
}

// logProgress emits a bucketed progress line. The done count comes from the
// report, so concurrent completions may observe percents out of order; the
// sampler logs each bucket at most once either way.
func (o *Orchestrator) logProgress(logger *slog.Logger, total int) {
	if total <= 0 {
		return
	}
	done := o.report.FilesHandled()
	percent := float64(done) / float64(total) * 100
	if !o.sampler.ShouldLog(percent) {
		return
	}
	logger.Info("conversion progress",
		logging.Int("done", done),
		logging.Int("total", total),
		logging.Int("percent", int(percent)))
}

// convertOne records contained failures on the task; the error return is
// reserved for cancellation.
func (o *Orchestrator) convertOne(ctx context.Context, task *Task) error {
	ctx = services.WithStation(ctx, task.Station.Folder)
	logger := logging.WithContext(ctx, o.logger)
	bytes, err := o.converter.Convert(ctx, task.Source, task.StagedPath)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		task.Status = report.StatusFailed
		task.Detail = err.Error()
		o.report.FileFailed(taskSubject(task), err.Error())
		logger.Warn("conversion failed",
			logging.String("file", filepath.Base(task.Source)),
			logging.Error(err))
		return nil
	}

	task.Status = report.StatusConverted
	task.Bytes = bytes
	o.report.FileConverted(bytes)
	logger.Debug("converted",
		logging.String("file", filepath.Base(task.Source)),
		logging.Int64("bytes", bytes))
	return nil
}

func (o *Orchestrator) jobs() int {
	if o.cfg != nil && o.cfg.Jobs > 0 {
		return o.cfg.Jobs
	}
	return 1
}

func taskSubject(task *Task) string {
	return filepath.Join(task.Station.Folder, filepath.Base(task.Source))
}

func swapToWav(rel string) string {
	ext := filepath.Ext(rel)
	return rel[:len(rel)-len(ext)] + ".wav"
}

func existsNonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
