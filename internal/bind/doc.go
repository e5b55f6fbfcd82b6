// Package bind resolves caller arguments to native binding slots.
//
// Bind walks the entries of a pipeline (one compute kernel, or a vertex and
// a fragment function) and the caller's arguments in lockstep. Buffers,
// inline values and argument buffers take buffer slots; images take texture
// slots. Each entry numbers both kinds of slots from 0. Stage inputs are
// skipped without consuming a caller argument, read-write images take two
// texture slots per element, and entries using soft printf take one implicit
// buffer argument after their declared ones.
//
// The result is a list of Instructions in argument order. Applying them to
// a native encoder is left to package backend.
package bind
