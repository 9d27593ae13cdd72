// Package extract unpacks radio archives into the work directory ahead of
// station mapping. Each archive lands in its own directory; a directory that
// is already populated short-circuits the tool run so reruns stay cheap.
package extract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ChickenNuggetsK/GTRadio/internal/config"
	"github.com/ChickenNuggetsK/GTRadio/internal/gamepath"
	"github.com/ChickenNuggetsK/GTRadio/internal/logging"
	"github.com/ChickenNuggetsK/GTRadio/internal/report"
	"github.com/ChickenNuggetsK/GTRadio/internal/services"
	"github.com/ChickenNuggetsK/GTRadio/internal/services/rpfcli"
)

// Result pairs a source archive with the directory holding its payload.
type Result struct {
	Archive gamepath.Archive
	Dir     string
}

// Extractor unpacks discovered archives into the work directory.
type Extractor struct {
	cfg    *config.Config
	client rpfcli.Extractor
	logger *slog.Logger
	report *report.Report
}

// NewExtractor constructs the extraction stage using the configured rpf-cli.
func NewExtractor(cfg *config.Config, logger *slog.Logger, rep *report.Report) (*Extractor, error) {
	client, err := rpfcli.New(cfg.RPFCLIBinary, cfg.ToolTimeoutSeconds)
	if err != nil {
		return nil, err
	}
	return NewExtractorWithClient(cfg, client, logger, rep), nil
}

// NewExtractorWithClient allows injecting the tool client (used in tests).
func NewExtractorWithClient(cfg *config.Config, client rpfcli.Extractor, logger *slog.Logger, rep *report.Report) *Extractor {
	return &Extractor{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, "extractor"),
		report: rep,
	}
}

// Run processes every archive and returns the ones whose payload is ready for
// mapping, in discovery order. A tool failure on one archive is recorded and
// never stops the others; only cancellation aborts the stage. Manual sources
// pass through untouched.
func (e *Extractor) Run(ctx context.Context, source gamepath.Source) ([]Result, error) {
	logger := logging.WithContext(ctx, e.logger)

	if source.Mode == gamepath.ModeManual {
		results := make([]Result, 0, len(source.Archives))
		for _, archive := range source.Archives {
			results = append(results, Result{Archive: archive, Dir: archive.Path})
		}
		logger.Info("using pre-extracted input", logging.Int("folders", len(results)))
		return results, nil
	}

	results := make([]Result, len(source.Archives))
	ready := make([]bool, len(source.Archives))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.jobs())
	for i, archive := range source.Archives {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := e.extractOne(groupCtx, archive)
			if err != nil {
				return err
			}
			if result.Dir != "" {
				results[i] = result
				ready[i] = true
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	ordered := make([]Result, 0, len(results))
	for i := range results {
		if ready[i] {
			ordered = append(ordered, results[i])
		}
	}
	return ordered, nil
}

// extractOne returns an empty Result for contained failures; the error return
// is reserved for cancellation.
func (e *Extractor) extractOne(ctx context.Context, archive gamepath.Archive) (Result, error) {
	ctx = services.WithArchive(ctx, archive.Name)
	logger := logging.WithContext(ctx, e.logger)
	dest := filepath.Join(e.cfg.ExtractedDir(), archiveStem(archive.Name))

	populated, err := hasEntries(dest)
	if err != nil {
		e.report.ArchiveFailed(archive.Name, "inspect destination: "+err.Error())
		return Result{}, nil
	}
	if populated {
		logger.Debug("extraction output present, skipping")
		e.report.ArchiveSkipped()
		return Result{Archive: archive, Dir: dest}, nil
	}

	// Extract into a partial directory first so an interrupted run never
	// leaves a destination the skip check would trust.
	partial := dest + ".partial"
	if err := os.RemoveAll(partial); err != nil {
		e.report.ArchiveFailed(archive.Name, "clear stale partial: "+err.Error())
		return Result{}, nil
	}

	logger.Info("extracting archive")
	if err := e.client.Extract(ctx, archive.Path, partial); err != nil {
		_ = os.RemoveAll(partial)
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		logger.Warn("archive extraction failed", logging.Error(err))
		e.report.ArchiveFailed(archive.Name, err.Error())
		return Result{}, nil
	}
	if err := os.Rename(partial, dest); err != nil {
		_ = os.RemoveAll(partial)
		e.report.ArchiveFailed(archive.Name, "finalize extraction: "+err.Error())
		return Result{}, nil
	}

	e.report.ArchiveExtracted()
	return Result{Archive: archive, Dir: dest}, nil
}

func (e *Extractor) jobs() int {
	if e.cfg != nil && e.cfg.Jobs > 0 {
		return e.cfg.Jobs
	}
	return 1
}

func archiveStem(name string) string {
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".rpf") {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

func hasEntries(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}
