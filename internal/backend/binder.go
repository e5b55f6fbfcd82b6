package backend

import (
	"errors"
	"fmt"

	"argbind/internal/bind"
	"argbind/internal/diag"
)

// Encoder is a native command or argument encoder.
// Implementations are usually not safe for concurrent use.
type Encoder interface {
	SetBuffer(stage Stage, slot uint32, buf bind.Resource) error
	SetBuffers(stage Stage, slot uint32, bufs []bind.Resource) error
	SetTexture(stage Stage, slot uint32, img bind.Resource) error
	SetTextures(stage Stage, slot uint32, imgs []bind.Resource) error
}

// BytesEncoder is implemented by encoders that can inline small constant
// data (setBytes and friends).
type BytesEncoder interface {
	SetBytes(stage Stage, slot uint32, data []byte) error
}

// ErrNoUpload is returned for value arguments when the encoder cannot inline
// bytes and the Binder has no Upload function.
var ErrNoUpload = errors.New("value argument needs an upload function")

// Binder applies instructions to Encoder.
type Binder struct {
	Encoder Encoder
	// Upload copies a value argument into a buffer when bytes cannot be
	// inlined.
	Upload func(data []byte) (bind.Resource, error)
	// ForceUpload ignores BytesEncoder support.
	ForceUpload bool
}

// ApplyError reports the instruction a native call failed for.
type ApplyError struct {
	Index       int
	Instruction bind.Instruction
	Err         error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply #%d (%s): %v", e.Index, e.Instruction.String(), e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

func (e *ApplyError) Code() diag.Code { return diag.BndApplyFailed }

// Apply issues the native calls for one instruction.
func (b *Binder) Apply(in bind.Instruction) error {
	stage, err := StageFor(in.Stage)
	if err != nil {
		return err
	}
	if in.Count == 0 {
		return nil
	}
	enc := b.Encoder
	switch in.Kind {
	case bind.KindValue:
		return b.applyValue(stage, in)
	case bind.KindBuffer, bind.KindArgumentBuffer:
		return enc.SetBuffer(stage, in.BufferSlot, in.Resources[0])
	case bind.KindBufferArray:
		return enc.SetBuffers(stage, in.BufferSlot, in.Resources)
	case bind.KindImage:
		if err := enc.SetTexture(stage, in.TextureSlot, in.Resources[0]); err != nil {
			return err
		}
		if in.Doubled {
			// write view
			return enc.SetTexture(stage, in.TextureSlot+1, in.Resources[0])
		}
		return nil
	case bind.KindImageArray:
		if err := enc.SetTextures(stage, in.TextureSlot, in.Resources); err != nil {
			return err
		}
		if in.Doubled {
			return enc.SetTextures(stage, in.TextureSlot+in.Count, in.Resources)
		}
		return nil
	}
	return fmt.Errorf("cannot apply %s instruction", in.Kind)
}

func (b *Binder) applyValue(stage Stage, in bind.Instruction) error {
	if be, ok := b.Encoder.(BytesEncoder); ok && !b.ForceUpload {
		return be.SetBytes(stage, in.BufferSlot, in.Data)
	}
	if b.Upload == nil {
		return ErrNoUpload
	}
	buf, err := b.Upload(in.Data)
	if err != nil {
		return fmt.Errorf("upload value: %w", err)
	}
	return b.Encoder.SetBuffers(stage, in.BufferSlot, []bind.Resource{buf})
}

// ApplyAll applies plan in order and stops at the first failure.
// Already applied instructions are not rolled back.
func (b *Binder) ApplyAll(plan []bind.Instruction) error {
	for i := range plan {
		if err := b.Apply(plan[i]); err != nil {
			return &ApplyError{Index: i, Instruction: plan[i], Err: err}
		}
	}
	return nil
}
