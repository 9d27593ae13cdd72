package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChickenNuggetsK/GTRadio/internal/config"
	"github.com/ChickenNuggetsK/GTRadio/internal/logging"
	"github.com/ChickenNuggetsK/GTRadio/internal/pipeline"
	"github.com/ChickenNuggetsK/GTRadio/internal/services"
)

type runOptions struct {
	input      string
	autoDetect bool
	output     string
	workDir    string
	logDir     string
	rpfCLI     string
	vgmstream  string
	jobs       int
	logLevel   string
	logFormat  string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, convert, and organize the radio station audio",
		Long: `Run the full extraction: locate the game audio, unpack the radio
archives, decode every stream to WAV, and lay the results out as one folder
per station with a Songs subdirectory.

The source is either --input (a directory of already-unpacked station
folders) or --auto-detect (find the Steam install and extract the archives
with rpf-cli). Re-running against the same output picks up where the last
run left off; finished work is skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtraction(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "Directory of pre-extracted station folders")
	flags.BoolVarP(&opts.autoDetect, "auto-detect", "a", false, "Locate the game through its Steam install")
	flags.StringVarP(&opts.output, "output", "o", "", "Destination directory for the station library")
	flags.StringVar(&opts.workDir, "work-dir", "", "Extraction cache and staging area (default <output>/.gtradio)")
	flags.StringVar(&opts.logDir, "log-dir", "", "Directory for the run log file")
	flags.StringVarP(&opts.rpfCLI, "rpf-cli", "r", "", "Path to the rpf-cli binary")
	flags.StringVarP(&opts.vgmstream, "vgmstream", "v", "", "Path to the vgmstream-cli binary")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "Parallel tool invocations (0 = number of CPUs)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, or error")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: console or json")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// buildRunConfig folds the flags into a config. Tool and logging flags are
// assigned unconditionally so Normalize keeps the flag > environment >
// default precedence.
func buildRunConfig(opts *runOptions) (*config.Config, error) {
	cfg := config.Default()
	cfg.InputDir = opts.input
	cfg.AutoDetect = opts.autoDetect
	cfg.OutputDir = opts.output
	cfg.WorkDir = opts.workDir
	cfg.LogDir = opts.logDir
	cfg.RPFCLIBinary = opts.rpfCLI
	cfg.VGMStreamBinary = opts.vgmstream
	cfg.LogLevel = opts.logLevel
	cfg.LogFormat = opts.logFormat
	if opts.jobs > 0 {
		cfg.Jobs = opts.jobs
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runExtraction(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := buildRunConfig(opts)
	if err != nil {
		return err
	}
	logger, err := newRunLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}
	snap, runErr := driver.Run(ctx)
	out := cmd.OutOrStdout()

	if runErr != nil {
		// A cancelled run still shows what it got done; a run that failed
		// before doing anything has nothing worth a table.
		if errors.Is(runErr, context.Canceled) && snap.RunID != "" {
			printSummary(out, snap)
		}
		if services.IsFatal(runErr) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Check the configured paths and tool binaries, then run again.")
		}
		return runErr
	}

	printSummary(out, snap)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Done. Station library written to %s\n", cfg.OutputDir)
	fmt.Fprintln(out, "Note: every decoded file lands in its station's Songs folder; sort DJ")
	fmt.Fprintln(out, "chatter, news, and adverts into their own folders by hand if needed.")
	return nil
}

// newRunLogger builds the run logger: console output, plus a timestamped file
// under the log dir when one is configured. Old run logs past the retention
// window are pruned, keeping the file just opened.
func newRunLogger(cfg *config.Config) (*slog.Logger, error) {
	outputPaths := []string{"stdout"}
	errorPaths := []string{"stderr"}
	logPath := ""
	if cfg.LogDir != "" {
		stamp := time.Now().UTC().Format("20060102T150405.000Z")
		logPath = filepath.Join(cfg.LogDir, fmt.Sprintf("gtradio-%s.log", stamp))
		outputPaths = append(outputPaths, logPath)
		errorPaths = append(errorPaths, logPath)
	}

	logger, err := logging.New(logging.Options{
		Level:            cfg.LogLevel,
		Format:           cfg.LogFormat,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: errorPaths,
	})
	if err != nil {
		return nil, err
	}
	if logPath != "" {
		logging.CleanupOldLogs(logger, cfg.LogRetentionDays,
			logging.RetentionTarget{Dir: cfg.LogDir, Pattern: "gtradio-*.log", Exclude: []string{logPath}})
	}
	return logger, nil
}
