// Package trace records what the decoder and binder did, for debugging
// metadata that does not bind the way a caller expects.
//
// Events are grouped in four scopes, from coarse to fine:
//
//	driver   whole CLI invocations and file loads
//	program  one metadata document (decode, struct attachment)
//	entry    one entry point of a pipeline
//	arg      one argument or one packed descriptor
//
// The Level selects how deep events are kept. A Tracer is carried through a
// context.Context (WithTracer/FromContext); code that has no tracer attached
// gets Nop, which costs a single interface call per event.
//
// Storage is either a stream (text or NDJSON written as events happen), an
// in-memory ring that keeps the last N events, or both.
package trace
