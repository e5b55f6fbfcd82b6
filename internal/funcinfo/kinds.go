package funcinfo

import (
	"fmt"
	"strings"
)

// FunctionKind identifies what a compiled entry is used for.
type FunctionKind uint32

const (
	KindNone     FunctionKind = 0
	KindKernel   FunctionKind = 1
	KindVertex   FunctionKind = 2
	KindFragment FunctionKind = 3
	// KindGeometry and the tessellation kinds are decoded but not supported.
	KindGeometry               FunctionKind = 4
	KindTessellationControl    FunctionKind = 5
	KindTessellationEvaluation FunctionKind = 6
	// KindArgumentBufferStruct describes the layout of an argument buffer;
	// it is handled like a function but never dispatched.
	KindArgumentBufferStruct FunctionKind = 100
)

func (k FunctionKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindKernel:
		return "kernel"
	case KindVertex:
		return "vertex"
	case KindFragment:
		return "fragment"
	case KindGeometry:
		return "geometry"
	case KindTessellationControl:
		return "tess-control"
	case KindTessellationEvaluation:
		return "tess-evaluation"
	case KindArgumentBufferStruct:
		return "argument-buffer-struct"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// Supported reports whether entries of this kind can be used at runtime.
func (k FunctionKind) Supported() bool {
	switch k {
	case KindKernel, KindVertex, KindFragment, KindArgumentBufferStruct:
		return true
	}
	return false
}

// IsGraphics reports whether the kind is a render pipeline stage.
func (k FunctionKind) IsGraphics() bool {
	return k == KindVertex || k == KindFragment
}

// FunctionFlags applies to a whole function.
type FunctionFlags uint32

const (
	FlagNone FunctionFlags = 0
	// FlagUsesSoftPrintf marks functions that write into an implicit printf buffer.
	FlagUsesSoftPrintf FunctionFlags = 1 << 0
)

// Has reports whether all bits of f are set.
func (fl FunctionFlags) Has(f FunctionFlags) bool {
	return fl&f == f
}

func (fl FunctionFlags) String() string {
	if fl == FlagNone {
		return "none"
	}
	var parts []string
	rest := fl
	if fl.Has(FlagUsesSoftPrintf) {
		parts = append(parts, "soft-printf")
		rest &^= FlagUsesSoftPrintf
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// AddressSpace is the memory space an argument lives in.
// Only meaningful for OpenCL, Metal and Vulkan targets.
type AddressSpace uint32

const (
	AddressUnknown  AddressSpace = 0
	AddressGlobal   AddressSpace = 1
	AddressLocal    AddressSpace = 2
	AddressConstant AddressSpace = 3
	AddressImage    AddressSpace = 4
)

func (a AddressSpace) String() string {
	switch a {
	case AddressUnknown:
		return "unknown"
	case AddressGlobal:
		return "global"
	case AddressLocal:
		return "local"
	case AddressConstant:
		return "constant"
	case AddressImage:
		return "image"
	default:
		return fmt.Sprintf("address(%d)", uint32(a))
	}
}

// ImageKind is the shape of an image argument.
type ImageKind uint32

const (
	ImageNone ImageKind = iota
	Image1D
	Image1DArray
	Image1DBuffer
	Image2D
	Image2DArray
	Image2DDepth
	Image2DArrayDepth
	Image2DMSAA
	Image2DArrayMSAA
	Image2DMSAADepth
	Image2DArrayMSAADepth
	Image3D
	ImageCube
	ImageCubeArray
	ImageCubeDepth
	ImageCubeArrayDepth
)

var imageKindNames = [...]string{
	ImageNone:             "none",
	Image1D:               "1d",
	Image1DArray:          "1d-array",
	Image1DBuffer:         "1d-buffer",
	Image2D:               "2d",
	Image2DArray:          "2d-array",
	Image2DDepth:          "2d-depth",
	Image2DArrayDepth:     "2d-array-depth",
	Image2DMSAA:           "2d-msaa",
	Image2DArrayMSAA:      "2d-array-msaa",
	Image2DMSAADepth:      "2d-msaa-depth",
	Image2DArrayMSAADepth: "2d-array-msaa-depth",
	Image3D:               "3d",
	ImageCube:             "cube",
	ImageCubeArray:        "cube-array",
	ImageCubeDepth:        "cube-depth",
	ImageCubeArrayDepth:   "cube-array-depth",
}

func (k ImageKind) String() string {
	if int(k) < len(imageKindNames) {
		return imageKindNames[k]
	}
	return fmt.Sprintf("image(%d)", uint32(k))
}

// ParseImageKind converts a name produced by ImageKind.String back to a kind.
func ParseImageKind(s string) (ImageKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range imageKindNames {
		if name == s {
			return ImageKind(i), nil
		}
	}
	return ImageNone, fmt.Errorf("unknown image kind %q", s)
}

// ImageAccess describes how a kernel accesses an image.
type ImageAccess uint32

const (
	AccessNone      ImageAccess = 0
	AccessRead      ImageAccess = 1
	AccessWrite     ImageAccess = 2
	AccessReadWrite ImageAccess = AccessRead | AccessWrite
)

func (a ImageAccess) String() string {
	switch a {
	case AccessNone:
		return "none"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("access(%d)", uint32(a))
	}
}

// ParseImageAccess accepts none|read|write|read-write (also "rw").
func ParseImageAccess(s string) (ImageAccess, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AccessNone, nil
	case "read", "r":
		return AccessRead, nil
	case "write", "w":
		return AccessWrite, nil
	case "read-write", "readwrite", "rw":
		return AccessReadWrite, nil
	default:
		return AccessNone, fmt.Errorf("unknown image access %q (expected none|read|write|read-write)", s)
	}
}

// SpecialRole marks backend or stage specific arguments.
type SpecialRole uint32

const (
	RoleNone SpecialRole = 0
	// RoleStageInput is fed by the fixed-function pipeline and never bound here.
	RoleStageInput SpecialRole = 1
	// RolePushConstant is the Vulkan constant fast path.
	RolePushConstant SpecialRole = 2
	// RoleStorageBuffer is a Vulkan storage (not uniform) block.
	RoleStorageBuffer SpecialRole = 3
	// RoleImageArray marks an array of images; ArgInfo.Size is the extent.
	RoleImageArray SpecialRole = 4
	// RoleInlineUniformBlock is a Vulkan inline uniform block.
	RoleInlineUniformBlock SpecialRole = 5
	// RoleArgumentBuffer is an indirect buffer with a nested layout.
	RoleArgumentBuffer SpecialRole = 6
)

func (r SpecialRole) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleStageInput:
		return "stage-input"
	case RolePushConstant:
		return "push-constant"
	case RoleStorageBuffer:
		return "storage-buffer"
	case RoleImageArray:
		return "image-array"
	case RoleInlineUniformBlock:
		return "inline-uniform-block"
	case RoleArgumentBuffer:
		return "argument-buffer"
	default:
		return fmt.Sprintf("role(%d)", uint32(r))
	}
}
