package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ChickenNuggetsK/GTRadio/internal/report"
	"github.com/ChickenNuggetsK/GTRadio/internal/stations"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// printSummary renders the run report: the counter table first, then any
// failures, unrecognized archives, and collision renames.
func printSummary(w io.Writer, snap report.Snapshot) {
	colorize := shouldColorize(w)

	fmt.Fprintln(w)
	fmt.Fprintln(w, renderTable([]string{"Metric", "Value"}, summaryRows(snap), 1))

	if len(snap.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, paint("Failures:", ansiRed, colorize))
		for _, failure := range snap.Failures {
			fmt.Fprintf(w, "  [%s] %s: %s\n", failure.Stage, failure.Subject, failure.Detail)
		}
	}

	if len(snap.Unrecognized) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, paint("Not recognized as stations (left untouched):", ansiYellow, colorize))
		for _, miss := range snap.Unrecognized {
			fmt.Fprintln(w, "  "+describeUnmatched(miss))
		}
	}

	if len(snap.Collisions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Name collisions resolved by renaming:")
		for _, collision := range snap.Collisions {
			fmt.Fprintf(w, "  %s: kept both, new copy is %q\n", collision.Station, collision.ResolvedName)
		}
	}
}

func summaryRows(snap report.Snapshot) [][]string {
	return [][]string{
		{"Archives found", strconv.Itoa(snap.ArchivesFound)},
		{"Archives extracted", strconv.Itoa(snap.ArchivesExtracted)},
		{"Archives skipped", strconv.Itoa(snap.ArchivesSkipped)},
		{"Archives failed", strconv.Itoa(snap.ArchivesFailed)},
		{"Stations matched", strconv.Itoa(snap.StationsMatched)},
		{"Files converted", strconv.Itoa(snap.FilesConverted)},
		{"Files skipped", strconv.Itoa(snap.FilesSkipped)},
		{"Files failed", strconv.Itoa(snap.FilesFailed)},
		{"Duplicates folded", strconv.Itoa(snap.DuplicatesSkipped)},
		{"Audio written", humanize.Bytes(uint64(snap.BytesConverted))},
		{"Duration", formatDuration(snap.Duration())},
	}
}

func describeUnmatched(miss stations.Unmatched) string {
	if miss.Kind == stations.UnmatchedAmbiguous {
		return fmt.Sprintf("%s (fits several stations: %s)", miss.Name, strings.Join(miss.Candidates, ", "))
	}
	return fmt.Sprintf("%s (reads as %q; no station matches)", miss.Name, stations.DisplayTitle(miss.Name))
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
