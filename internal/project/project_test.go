package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), `
[decode]
strict = true
jobs = 2
[cache]
dir = "cache"
[trace]
level = "detail"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	m, ok, err := Discover(nested)
	if err != nil || !ok {
		t.Fatalf("Discover = %v, %v", ok, err)
	}
	cfg := m.Config
	if !cfg.Decode.Strict || cfg.Decode.Jobs != 2 {
		t.Fatalf("decode = %+v", cfg.Decode)
	}
	// untouched keys keep defaults
	if cfg.Decode.MaxDiagnostics != 100 || !cfg.Cache.Enabled || !cfg.Bind.InlineBytes {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Cache.Dir != filepath.Join(m.Root, "cache") {
		t.Fatalf("cache dir = %q", cfg.Cache.Dir)
	}
}

func TestDiscoverNone(t *testing.T) {
	m, ok, err := Discover(t.TempDir())
	if err != nil || ok {
		t.Fatalf("Discover = %v, %v", ok, err)
	}
	if m.Config != DefaultConfig() {
		t.Fatalf("config = %+v", m.Config)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "[decode]\nfast = true\n",
		"bad level":     "[trace]\nlevel = \"loud\"\n",
		"negative jobs": "[decode]\njobs = -1\n",
		"zero diags":    "[decode]\nmax_diagnostics = 0\n",
		"bad toml":      "[decode\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFile)
			writeFile(t, path, content)
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.toml")
	writeFile(t, path, `
program = "shaders/prog.ffi"
entries = ["vs", "", "fs"]

[[args]]
kind = "Buffer"
label = "verts"

[[args]]
kind = "images"
label = "tex"
count = 2

[[args]]
kind = "value"
bytes = "01 02 03 04"

[[implicit]]
kind = "buffer"
label = "printf"
`)
	p, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if p.Program != filepath.Join(dir, "shaders", "prog.ffi") {
		t.Fatalf("program = %q", p.Program)
	}
	if len(p.Entries) != 3 || p.Entries[1] != "" {
		t.Fatalf("entries = %q", p.Entries)
	}
	if p.Args[0].Kind != ArgBuffer {
		t.Fatalf("kind not normalized: %q", p.Args[0].Kind)
	}
	if got := strings.Join(p.Args[1].Labels(), ","); got != "tex[0],tex[1]" {
		t.Fatalf("labels = %s", got)
	}
	data, err := p.Args[2].Data()
	if err != nil || len(data) != 4 || data[3] != 4 {
		t.Fatalf("data = %v, %v", data, err)
	}
	if len(p.Implicit) != 1 {
		t.Fatalf("implicit = %+v", p.Implicit)
	}
}

func TestLoadPlanRejects(t *testing.T) {
	tests := map[string]string{
		"no program":     "entries = [\"k\"]\n",
		"no entries":     "program = \"p.ffi\"\n",
		"unknown kind":   "program = \"p.ffi\"\nentries = [\"k\"]\n[[args]]\nkind = \"sampler\"\nlabel = \"s\"\n",
		"bad hex":        "program = \"p.ffi\"\nentries = [\"k\"]\n[[args]]\nkind = \"value\"\nbytes = \"zz\"\n",
		"missing label":  "program = \"p.ffi\"\nentries = [\"k\"]\n[[args]]\nkind = \"buffer\"\n",
		"count on image": "program = \"p.ffi\"\nentries = [\"k\"]\n[[args]]\nkind = \"image\"\nlabel = \"i\"\ncount = 3\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "plan.toml")
			writeFile(t, path, content)
			if _, err := LoadPlan(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x")
	writeFile(t, path, "abc")
	d, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if d != HashBytes([]byte("abc")) {
		t.Fatal("HashFile and HashBytes disagree")
	}
	if d.String() != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("digest = %s", d)
	}
	if Combine(d, []byte("x")) == Combine(d, []byte("y")) || d.IsZero() {
		t.Fatal("Combine must depend on parts")
	}
}
