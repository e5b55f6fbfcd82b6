// Package ffi decodes the function info records the device compiler writes
// next to every compiled program.
//
// Each non-empty line is one record:
//
//	<version>,<name>,<type>,<flags>,<f4>,<f5>,<f6>,<arg>...
//
// For entry points f4..f6 are the required local size. For argument buffer
// struct records (type 100) f4 is the index of the argument the struct
// describes, in the closest earlier function of the same name, and f5, f6
// are zero. Struct records never become top-level functions; they are
// attached to their owner as ArgInfo.Nested.
//
// Packed values of 0 or all bits set are reported as warnings and decoded
// anyway unless Options.Strict is set. Every other problem aborts the decode
// and nothing is returned.
package ffi
