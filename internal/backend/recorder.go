package backend

import (
	"fmt"
	"strings"
	"sync"

	"argbind/internal/bind"
)

// Call is one recorded encoder call.
type Call struct {
	Op     string   `json:"op"`
	Stage  Stage    `json:"stage"`
	Slot   uint32   `json:"slot"`
	Labels []string `json:"labels,omitempty"`
	Bytes  []byte   `json:"bytes,omitempty"`
}

func (c Call) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s @%d", c.Stage, c.Op, c.Slot)
	if len(c.Labels) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(c.Labels, ","))
	}
	if c.Bytes != nil {
		fmt.Fprintf(&sb, " % x", c.Bytes)
	}
	return sb.String()
}

// Recorder is an Encoder and BytesEncoder that remembers every call.
// It backs dry runs and tests.
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	uploads int
	// FailAt makes the n-th call (1-based) fail; 0 never fails.
	FailAt int
}

func (r *Recorder) record(op string, stage Stage, slot uint32, res []bind.Resource, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAt > 0 && len(r.calls)+1 == r.FailAt {
		return fmt.Errorf("%s at %d: injected failure", op, slot)
	}
	c := Call{Op: op, Stage: stage, Slot: slot}
	for _, x := range res {
		c.Labels = append(c.Labels, x.Label())
	}
	if data != nil {
		c.Bytes = append([]byte(nil), data...)
	}
	r.calls = append(r.calls, c)
	return nil
}

func (r *Recorder) SetBuffer(stage Stage, slot uint32, buf bind.Resource) error {
	return r.record("set-buffer", stage, slot, []bind.Resource{buf}, nil)
}

func (r *Recorder) SetBuffers(stage Stage, slot uint32, bufs []bind.Resource) error {
	return r.record("set-buffers", stage, slot, bufs, nil)
}

func (r *Recorder) SetTexture(stage Stage, slot uint32, img bind.Resource) error {
	return r.record("set-texture", stage, slot, []bind.Resource{img}, nil)
}

func (r *Recorder) SetTextures(stage Stage, slot uint32, imgs []bind.Resource) error {
	return r.record("set-textures", stage, slot, imgs, nil)
}

func (r *Recorder) SetBytes(stage Stage, slot uint32, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	return r.record("set-bytes", stage, slot, nil, data)
}

// Upload stands in for a device buffer holding data.
func (r *Recorder) Upload(data []byte) (bind.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads++
	return uploaded(fmt.Sprintf("upload#%d(%d bytes)", r.uploads, len(data))), nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.uploads = 0
}

type uploaded string

func (u uploaded) Label() string { return string(u) }
