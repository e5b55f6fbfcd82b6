// Package diag defines the diagnostic model shared by the decoder, the binder
// and the CLI.
//
// # Purpose
//
//   - Provide deterministic data structures for findings produced while
//     decoding compiler metadata or resolving argument bindings.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier (see codes.go) with a stable string form.
//   - Message – short, actionable text.
//   - Primary – the Pos (source name, record line, field) the finding refers to.
//   - Notes – optional secondary positions with extra context.
//
// Positions point into line-oriented metadata records, not into source code:
// Line is the 1-based record number and Field the 0-based comma field.
//
// # Emitting diagnostics
//
// Producers take a Reporter. ReportError/ReportWarning/ReportInfo build a
// ReportBuilder that is chained with WithNote and finished with Emit.
// BagReporter collects into a Bag, which supports sorting, deduplication and
// a bounded capacity.
//
// Package diag does no IO. Rendering for the CLI lives in format.go and only
// produces strings.
package diag
