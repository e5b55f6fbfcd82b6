package funcinfo

import (
	"fmt"

	"fortio.org/safecast"
)

// Bit layout of a packed argument descriptor as emitted by the compiler.
// Bits outside the masks are reserved: written as zero, ignored on read.
const (
	ArgSizeMask  uint64 = 0x0000_0000_FFFF_FFFF
	ArgSizeShift        = 0

	AddressSpaceMask  uint64 = 0x0000_0007_0000_0000
	AddressSpaceShift        = 32

	ImageKindMask  uint64 = 0x0000_FF00_0000_0000
	ImageKindShift        = 40

	ImageAccessMask  uint64 = 0x0003_0000_0000_0000
	ImageAccessShift        = 48

	SpecialRoleMask  uint64 = 0xFF00_0000_0000_0000
	SpecialRoleShift        = 56
)

// MalformedPackedSentinel is the all-bits-set value some producers emit on failure.
const MalformedPackedSentinel = ^uint64(0)

// IsMalformedPacked reports the two values that can never describe a real argument.
func IsMalformedPacked(v uint64) bool {
	return v == 0 || v == MalformedPackedSentinel
}

func field(v, mask uint64, shift uint) uint32 {
	out, err := safecast.Conv[uint32]((v & mask) >> shift)
	if err != nil {
		// every mask is at most 32 bits wide
		panic(err)
	}
	return out
}

// Unpack decodes a packed argument descriptor. Nested is always nil.
func Unpack(v uint64) ArgInfo {
	return ArgInfo{
		Size:         field(v, ArgSizeMask, ArgSizeShift),
		AddressSpace: AddressSpace(field(v, AddressSpaceMask, AddressSpaceShift)),
		Image:        ImageKind(field(v, ImageKindMask, ImageKindShift)),
		Access:       ImageAccess(field(v, ImageAccessMask, ImageAccessShift)),
		Role:         SpecialRole(field(v, SpecialRoleMask, SpecialRoleShift)),
	}
}

func put(value uint32, mask uint64, shift uint, what string) (uint64, error) {
	out := uint64(value) << shift
	if out&^mask != 0 || out>>shift != uint64(value) {
		return 0, fmt.Errorf("%s value %d does not fit the packed layout", what, value)
	}
	return out, nil
}

// Pack encodes the descriptor fields of a. The nested layout is not part of
// the packed value; it travels as a separate struct record.
func Pack(a ArgInfo) (uint64, error) {
	var out uint64
	parts := []struct {
		value uint32
		mask  uint64
		shift uint
		what  string
	}{
		{a.Size, ArgSizeMask, ArgSizeShift, "size"},
		{uint32(a.AddressSpace), AddressSpaceMask, AddressSpaceShift, "address space"},
		{uint32(a.Image), ImageKindMask, ImageKindShift, "image kind"},
		{uint32(a.Access), ImageAccessMask, ImageAccessShift, "image access"},
		{uint32(a.Role), SpecialRoleMask, SpecialRoleShift, "special role"},
	}
	for _, p := range parts {
		bits, err := put(p.value, p.mask, p.shift, p.what)
		if err != nil {
			return 0, err
		}
		out |= bits
	}
	return out, nil
}
