// Package funcinfo holds the per-function argument metadata produced by the
// kernel compiler: entry kinds, flags, and for every formal parameter its
// size, address space, image shape/access and special role.
//
// The model is plain data. Decoding from the compiler's text records lives in
// internal/ffi; slot assignment lives in internal/bind.
//
// # Packed arguments
//
// Each argument travels as one 64-bit integer:
//
//	bits  0..31  size (bytes, or element count for image arrays)
//	bits 32..34  address space
//	bits 40..47  image kind
//	bits 48..49  image access
//	bits 56..63  special role
//
// Pack and Unpack convert between that form and ArgInfo.
package funcinfo
