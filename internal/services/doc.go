// Package services defines shared utilities consumed by the pipeline stages
// and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and the archive or
//     station currently being worked for logging and tracing.
//   - Structured error markers plus the Wrap helper that separate fatal
//     operator-facing failures from per-file failures the run absorbs.
//   - Thin abstractions that make command execution against external tools
//     testable.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services
