package project

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ArgKind names an argument variant in plan files.
type ArgKind string

const (
	ArgValue     ArgKind = "value"
	ArgBuffer    ArgKind = "buffer"
	ArgBuffers   ArgKind = "buffers"
	ArgImage     ArgKind = "image"
	ArgImages    ArgKind = "images"
	ArgArgBuffer ArgKind = "argbuffer"
)

// ArgSpec describes one argument of a dry-run binding plan.
type ArgSpec struct {
	Kind ArgKind `toml:"kind"`
	// Label names the resource; arrays get "<label>[i]".
	Label string `toml:"label"`
	Count int    `toml:"count"`
	// Bytes is the hex payload of a value argument.
	Bytes string `toml:"bytes"`
}

// Data decodes the hex payload.
func (a ArgSpec) Data() ([]byte, error) {
	return hex.DecodeString(strings.ReplaceAll(a.Bytes, " ", ""))
}

// Labels returns the resource labels the argument refers to.
func (a ArgSpec) Labels() []string {
	switch a.Kind {
	case ArgBuffers, ArgImages:
		out := make([]string, a.Count)
		for i := range out {
			out[i] = fmt.Sprintf("%s[%d]", a.Label, i)
		}
		return out
	case ArgValue:
		return nil
	}
	return []string{a.Label}
}

// Plan is a binding plan: which program, which entries, which arguments.
type Plan struct {
	Path     string    `toml:"-"`
	Program  string    `toml:"program"`
	Entries  []string  `toml:"entries"`
	Args     []ArgSpec `toml:"args"`
	Implicit []ArgSpec `toml:"implicit"`
}

// LoadPlan decodes a plan file. Program is resolved against the plan's
// directory.
func LoadPlan(path string) (*Plan, error) {
	var p Plan
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("program") || strings.TrimSpace(p.Program) == "" {
		return nil, fmt.Errorf("%s: missing program", path)
	}
	if !meta.IsDefined("entries") || len(p.Entries) == 0 {
		return nil, fmt.Errorf("%s: missing entries", path)
	}
	if !filepath.IsAbs(p.Program) {
		p.Program = filepath.Join(filepath.Dir(path), filepath.FromSlash(p.Program))
	}
	p.Path = path
	for i := range p.Args {
		if err := p.Args[i].validate(); err != nil {
			return nil, fmt.Errorf("%s: args[%d]: %w", path, i, err)
		}
	}
	for i := range p.Implicit {
		if err := p.Implicit[i].validate(); err != nil {
			return nil, fmt.Errorf("%s: implicit[%d]: %w", path, i, err)
		}
	}
	return &p, nil
}

func (a *ArgSpec) validate() error {
	a.Kind = ArgKind(strings.ToLower(strings.TrimSpace(string(a.Kind))))
	switch a.Kind {
	case ArgValue:
		if _, err := a.Data(); err != nil {
			return fmt.Errorf("bytes: %w", err)
		}
		return nil
	case ArgBuffer, ArgImage, ArgArgBuffer:
		if a.Count != 0 && a.Count != 1 {
			return fmt.Errorf("%s takes no count", a.Kind)
		}
	case ArgBuffers, ArgImages:
		if a.Count < 0 {
			return fmt.Errorf("negative count %d", a.Count)
		}
	case "":
		return fmt.Errorf("missing kind")
	default:
		return fmt.Errorf("unknown kind %q", a.Kind)
	}
	if a.Bytes != "" {
		return fmt.Errorf("%s takes no bytes", a.Kind)
	}
	if strings.TrimSpace(a.Label) == "" {
		return fmt.Errorf("%s needs a label", a.Kind)
	}
	return nil
}
