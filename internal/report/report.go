package report

import (
	"sync"
	"time"

	"github.com/ChickenNuggetsK/GTRadio/internal/stations"
)

// Failure records one contained per-item failure with enough detail for the
// end-of-run summary.
type Failure struct {
	Stage   string
	Subject string
	Detail  string
}

// Collision records a placement that needed a disambiguation suffix.
type Collision struct {
	Station      string
	ResolvedName string
}

// Snapshot is an immutable copy of the run outcome, safe to render after the
// workers are done or while they run.
type Snapshot struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	ArchivesFound     int
	ArchivesExtracted int
	ArchivesSkipped   int
	ArchivesFailed    int

	StationsMatched int

	FilesConverted int
	FilesSkipped   int
	FilesFailed    int

	DuplicatesSkipped int
	BytesConverted    int64

	Failures     []Failure
	Collisions   []Collision
	Unrecognized []stations.Unmatched
}

// Duration returns the elapsed run time, or the time so far when the run has
// not finished.
func (s Snapshot) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// HasFailures reports whether any contained failure was recorded.
func (s Snapshot) HasFailures() bool {
	return len(s.Failures) > 0
}

// Report accumulates per-item outcomes across all pipeline stages. Workers
// from every stage record into it concurrently; a single mutex is the only
// serialization point.
type Report struct {
	mu   sync.Mutex
	snap Snapshot
}

// New returns an empty report stamped with the run identifier.
func New(runID string) *Report {
	return &Report{snap: Snapshot{RunID: runID, StartedAt: time.Now()}}
}

// Finish stamps the completion time.
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.FinishedAt = time.Now()
}

// ArchivesDiscovered records how many archives resolution produced.
func (r *Report) ArchivesDiscovered(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.ArchivesFound += n
}

// ArchiveExtracted records one successful extraction.
func (r *Report) ArchiveExtracted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.ArchivesExtracted++
}

// ArchiveSkipped records one archive whose extraction output already existed.
func (r *Report) ArchiveSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.ArchivesSkipped++
}

// ArchiveFailed records one contained extraction failure.
func (r *Report) ArchiveFailed(archive, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.ArchivesFailed++
	r.snap.Failures = append(r.snap.Failures, Failure{Stage: "extracting", Subject: archive, Detail: detail})
}

// StationsMatched records how many archives mapped to a station.
func (r *Report) StationsMatched(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.StationsMatched += n
}

// Unrecognized records a name the mapper refused to place.
func (r *Report) Unrecognized(miss stations.Unmatched) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Unrecognized = append(r.snap.Unrecognized, miss)
}

// FileConverted records one successful conversion and its output size.
func (r *Report) FileConverted(bytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.FilesConverted++
	if bytes > 0 {
		r.snap.BytesConverted += bytes
	}
}

// FilesHandled returns how many files conversion has finished so far,
// successfully or not. Skipped files are not counted.
func (r *Report) FilesHandled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.FilesConverted + r.snap.FilesFailed
}

// FileSkipped records one file whose converted output already existed.
func (r *Report) FileSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.FilesSkipped++
}

// FileFailed records one contained conversion failure.
func (r *Report) FileFailed(file, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.FilesFailed++
	r.snap.Failures = append(r.snap.Failures, Failure{Stage: "converting", Subject: file, Detail: detail})
}

// CollisionResolved records a placement that took a disambiguation suffix.
func (r *Report) CollisionResolved(station, resolvedName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Collisions = append(r.snap.Collisions, Collision{Station: station, ResolvedName: resolvedName})
}

// DuplicateSkipped records a staged file dropped because the destination
// already held identical content.
func (r *Report) DuplicateSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.DuplicatesSkipped++
}

// Failed records a contained failure that is not tied to a counted archive
// or file, such as a payload scan or a placement move.
func (r *Report) Failed(stage, subject, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Failures = append(r.snap.Failures, Failure{Stage: stage, Subject: subject, Detail: detail})
}

// Snapshot returns a deep copy of the current state.
func (r *Report) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.snap
	snap.Failures = append([]Failure(nil), r.snap.Failures...)
	snap.Collisions = append([]Collision(nil), r.snap.Collisions...)
	snap.Unrecognized = append([]stations.Unmatched(nil), r.snap.Unrecognized...)
	return snap
}
