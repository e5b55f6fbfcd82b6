package bind

import (
	"fmt"
)

// Resource is a caller-owned native object: a buffer or an image.
type Resource interface {
	Label() string
}

// ArgumentBuffer is an indirect buffer backed by a single storage buffer.
type ArgumentBuffer interface {
	StorageBuffer() Resource
}

// Kind is the variant of an Argument and of the Instruction it resolves to.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindValue
	KindBuffer
	KindBufferArray
	KindImage
	KindImageArray
	KindArgumentBuffer
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindBuffer:
		return "buffer"
	case KindBufferArray:
		return "buffer-array"
	case KindImage:
		return "image"
	case KindImageArray:
		return "image-array"
	case KindArgumentBuffer:
		return "argument-buffer"
	}
	return "invalid"
}

// IsImage reports whether the kind takes texture slots.
func (k Kind) IsImage() bool {
	return k == KindImage || k == KindImageArray
}

// IsBufferLike reports whether the kind takes buffer slots.
func (k Kind) IsBufferLike() bool {
	switch k {
	case KindValue, KindBuffer, KindBufferArray, KindArgumentBuffer:
		return true
	}
	return false
}

// Argument is one caller-supplied kernel or shader argument. The zero value
// is invalid; build arguments with Value, Buffer, Buffers, Image, Images or
// ArgBuffer.
type Argument struct {
	kind Kind
	data []byte
	res  []Resource
	ab   ArgumentBuffer
}

// Value passes data inline. The slice is not copied.
func Value(data []byte) Argument {
	return Argument{kind: KindValue, data: data}
}

func Buffer(b Resource) Argument {
	return Argument{kind: KindBuffer, res: []Resource{b}}
}

// Buffers binds bs to a contiguous buffer slot range.
func Buffers(bs ...Resource) Argument {
	return Argument{kind: KindBufferArray, res: bs}
}

func Image(img Resource) Argument {
	return Argument{kind: KindImage, res: []Resource{img}}
}

// Images binds imgs to a contiguous texture slot range.
func Images(imgs ...Resource) Argument {
	return Argument{kind: KindImageArray, res: imgs}
}

// ArgBuffer binds the storage buffer of ab.
func ArgBuffer(ab ArgumentBuffer) Argument {
	return Argument{kind: KindArgumentBuffer, ab: ab}
}

func (a Argument) Kind() Kind { return a.kind }

// Len is the number of slots-worth of elements the argument carries.
func (a Argument) Len() int {
	switch a.kind {
	case KindValue, KindArgumentBuffer:
		return 1
	}
	return len(a.res)
}

// Bytes returns the inline data of a value argument.
func (a Argument) Bytes() []byte { return a.data }

func (a Argument) String() string {
	switch a.kind {
	case KindValue:
		return fmt.Sprintf("value(%d bytes)", len(a.data))
	case KindBuffer, KindImage:
		return fmt.Sprintf("%s(%s)", a.kind, label(a.res[0]))
	case KindBufferArray, KindImageArray:
		return fmt.Sprintf("%s[%d]", a.kind, len(a.res))
	case KindArgumentBuffer:
		if a.ab == nil {
			return "argument-buffer(<nil>)"
		}
		return fmt.Sprintf("argument-buffer(%s)", label(a.ab.StorageBuffer()))
	}
	return "invalid"
}

// resources returns the native objects to bind, validating the variant.
func (a Argument) resources() ([]Resource, error) {
	switch a.kind {
	case KindValue:
		return nil, nil
	case KindBuffer, KindImage, KindBufferArray, KindImageArray:
		for i, r := range a.res {
			if r == nil {
				return nil, fmt.Errorf("%s element %d is nil", a.kind, i)
			}
		}
		return a.res, nil
	case KindArgumentBuffer:
		if a.ab == nil {
			return nil, fmt.Errorf("argument buffer is nil")
		}
		sb := a.ab.StorageBuffer()
		if sb == nil {
			return nil, fmt.Errorf("argument buffer has no storage buffer")
		}
		return []Resource{sb}, nil
	}
	return nil, fmt.Errorf("argument has no variant")
}

func label(r Resource) string {
	if r == nil {
		return "<nil>"
	}
	return r.Label()
}
