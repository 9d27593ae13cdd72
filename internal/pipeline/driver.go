// Package pipeline drives one extraction run from source resolution through
// final layout. The driver owns the run lifecycle: it takes the work
// directory lock, verifies the external tools, then walks the stage
// sequence, with every stage recording into the shared run report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/ChickenNuggetsK/GTRadio/internal/config"
	"github.com/ChickenNuggetsK/GTRadio/internal/convert"
	"github.com/ChickenNuggetsK/GTRadio/internal/deps"
	"github.com/ChickenNuggetsK/GTRadio/internal/extract"
	"github.com/ChickenNuggetsK/GTRadio/internal/gamepath"
	"github.com/ChickenNuggetsK/GTRadio/internal/layout"
	"github.com/ChickenNuggetsK/GTRadio/internal/logging"
	"github.com/ChickenNuggetsK/GTRadio/internal/report"
	"github.com/ChickenNuggetsK/GTRadio/internal/services"
	"github.com/ChickenNuggetsK/GTRadio/internal/stations"
)

const lockFileName = "run.lock"

// Stages bundles the concrete stage implementations the driver sequences.
type Stages struct {
	Extractor *extract.Extractor
	Converter *convert.Orchestrator
	Builder   *layout.Builder
}

// Driver executes one run end to end. Each Driver is single use; construct a
// fresh one per run so the report starts clean.
type Driver struct {
	cfg    *config.Config
	logger *slog.Logger
	report *report.Report

	runID string
	state State

	stages Stages
	mapper *stations.Mapper
}

// New wires the default stages for one run against the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Driver, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "configuration is required", nil)
	}
	runID := uuid.NewString()
	rep := report.New(runID)
	extractor, err := extract.NewExtractor(cfg, logger, rep)
	if err != nil {
		return nil, err
	}
	stages := Stages{
		Extractor: extractor,
		Converter: convert.NewOrchestrator(cfg, logger, rep),
		Builder:   layout.NewBuilder(cfg, logger, rep),
	}
	return NewWithStages(cfg, logger, rep, stages), nil
}

// NewWithStages constructs a driver around prebuilt stages (used in tests).
// The stages must share the given report.
func NewWithStages(cfg *config.Config, logger *slog.Logger, rep *report.Report, stages Stages) *Driver {
	return &Driver{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		report: rep,
		runID:  rep.Snapshot().RunID,
		state:  StateInit,
		stages: stages,
		mapper: stations.NewMapper(),
	}
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Run executes the full stage sequence and returns the finished report. A
// resolution error moves the run to Failed; later stages record per-archive
// and per-file failures in the report and keep going, so from Extracting on
// the only error Run returns is cancellation. The returned snapshot is valid
// on every path, including the failed and cancelled ones.
func (d *Driver) Run(ctx context.Context) (report.Snapshot, error) {
	ctx = services.WithRunID(ctx, d.runID)
	logger := logging.WithContext(ctx, d.logger)
	logger.Info("run starting",
		logging.String("output", d.cfg.OutputDir),
		logging.Int("jobs", d.cfg.Jobs))

	if err := d.cfg.EnsureDirectories(); err != nil {
		return report.Snapshot{}, err
	}
	release, err := d.lockWorkDir()
	if err != nil {
		return report.Snapshot{}, err
	}
	defer release()
	if err := d.checkTools(logger); err != nil {
		return report.Snapshot{}, err
	}

	d.advance(logger, StateResolving)
	source, err := d.resolveSource()
	if err != nil {
		logger.Error("source resolution failed", logging.Error(err))
		d.advance(logger, StateFailed)
		return d.finish(logger), err
	}
	d.report.ArchivesDiscovered(len(source.Archives))
	logger.Info("resolved audio source",
		logging.String("mode", string(source.Mode)),
		logging.String("root", source.Root()),
		logging.Int("archives", len(source.Archives)))

	d.advance(logger, StateExtracting)
	extracted, err := d.stages.Extractor.Run(stageContext(ctx, StateExtracting), source)
	if err != nil {
		return d.finish(logger), err
	}

	d.advance(logger, StateMapping)
	mapped := d.mapStations(stageContext(ctx, StateMapping), extracted)

	if err := ctx.Err(); err != nil {
		return d.finish(logger), err
	}
	d.advance(logger, StateConverting)
	tasks, err := d.stages.Converter.Run(stageContext(ctx, StateConverting), d.stages.Converter.BuildTasks(mapped))
	if err != nil {
		return d.finish(logger), err
	}

	d.advance(logger, StateLayingOut)
	if err := d.stages.Builder.Run(stageContext(ctx, StateLayingOut), tasks); err != nil {
		return d.finish(logger), err
	}

	d.advance(logger, StateDone)
	return d.finish(logger), nil
}

func (d *Driver) resolveSource() (gamepath.Source, error) {
	if d.cfg.ManualMode() {
		return gamepath.Manual(d.cfg.InputDir)
	}
	return gamepath.AutoDetect()
}

// stageContext tags ctx so every log line inside the stage carries its name.
func stageContext(ctx context.Context, state State) context.Context {
	return services.WithStage(ctx, string(state))
}

// mapStations resolves each extracted archive to a station identity.
// Archives the mapper refuses stay out of the converted set and surface in
// the report instead; a guess here would file songs under the wrong station.
func (d *Driver) mapStations(ctx context.Context, extracted []extract.Result) []convert.Station {
	logger := logging.WithContext(ctx, d.logger)

	mapped := make([]convert.Station, 0, len(extracted))
	for _, result := range extracted {
		match, miss := d.mapper.Map(result.Archive.Name)
		if miss != nil {
			d.report.Unrecognized(*miss)
			if miss.Kind == stations.UnmatchedAmbiguous {
				logger.Warn("archive name fits more than one station",
					logging.String("archive", miss.Name),
					logging.String("candidates", strings.Join(miss.Candidates, ", ")))
			} else {
				logger.Warn("archive does not match any station",
					logging.String("archive", miss.Name))
			}
			continue
		}
		mapped = append(mapped, convert.Station{
			Archive:  result.Archive.Name,
			Dir:      result.Dir,
			Identity: match.Identity,
		})
		logger.Debug("station mapped",
			logging.String("archive", result.Archive.Name),
			logging.String("station", match.Identity.Display))
	}
	d.report.StationsMatched(len(mapped))
	logger.Info("stations mapped",
		logging.Int("matched", len(mapped)),
		logging.Int("unrecognized", len(extracted)-len(mapped)))
	return mapped
}

// lockWorkDir takes the single-run lock below the work directory. The
// returned release func must be called once the run is over.
func (d *Driver) lockWorkDir() (func(), error) {
	lock := flock.New(filepath.Join(d.cfg.WorkDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "lock",
			fmt.Sprintf("another run is already active in %s", d.cfg.WorkDir), nil)
	}
	release := func() {
		if err := lock.Unlock(); err != nil {
			d.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}
	return release, nil
}

// checkTools verifies the external binaries this configuration will shell
// out to before any stage starts.
func (d *Driver) checkTools(logger *slog.Logger) error {
	statuses := deps.CheckBinaries(deps.ForConfig(d.cfg))
	for _, status := range statuses {
		if status.Available {
			logger.Debug("tool available", logging.String("tool", status.Name))
			continue
		}
		if status.Optional {
			logger.Debug("optional tool unavailable",
				logging.String("tool", status.Name),
				logging.String("detail", status.Detail))
			continue
		}
		logger.Error("required tool unavailable",
			logging.String("tool", status.Name),
			logging.String("detail", status.Detail))
	}
	missing := deps.MissingRequired(statuses)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, status := range missing {
		names = append(names, status.Name)
	}
	return services.Wrap(services.ErrConfiguration, "pipeline", "tools",
		fmt.Sprintf("missing required tools: %s", strings.Join(names, ", ")), nil)
}

// advance moves the lifecycle to next. Run's stage sequence follows the
// transition table; a request from outside it is logged and refused.
func (d *Driver) advance(logger *slog.Logger, next State) {
	if !d.state.CanReach(next) {
		logger.Error("transition outside the lifecycle table",
			logging.String("from", string(d.state)),
			logging.String("to", string(next)))
		return
	}
	logger.Info("pipeline state changed",
		logging.String("from", string(d.state)),
		logging.String("to", string(next)))
	d.state = next
}

func (d *Driver) finish(logger *slog.Logger) report.Snapshot {
	d.report.Finish()
	snap := d.report.Snapshot()
	logger.Info("run finished",
		logging.String("state", string(d.state)),
		logging.Int("archives", snap.ArchivesFound),
		logging.Int("converted", snap.FilesConverted),
		logging.Int("failures", len(snap.Failures)),
		logging.Duration("run_duration", snap.Duration()))
	return snap
}
