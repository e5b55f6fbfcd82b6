// Package backend applies resolved binding instructions to a native command
// encoder.
//
// An Encoder is the per-API capability: set a buffer, a buffer range, a
// texture or a texture range at a slot of a stage. Binder dispatches
// instructions to it without doing any slot arithmetic of its own.
//
// Instructions are applied in order and the first failure stops the pass.
// Binds that already reached the encoder are not undone; the caller is
// expected to abandon the encoder, which discards them.
package backend
