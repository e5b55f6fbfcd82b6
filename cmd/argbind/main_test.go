package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes a fresh command tree inside an empty working directory
// with a private cache.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	root, a := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.ExecuteContext(context.Background())
	a.close(err != nil)
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func testdata(t *testing.T, name string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "..", "testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Chdir(dir)
	return dir
}

func TestDecodePretty(t *testing.T) {
	compute := testdata(t, "ffi/compute.ffi")
	isolate(t)
	res := runCLI(t, "", "decode", "--ui", "off", compute)
	if res.err != nil {
		t.Fatalf("decode: %v\n%s", res.err, res.stderr)
	}
	for _, want := range []string{
		"compute.ffi: 2 functions",
		"blur    kernel  16x16x1  soft-printf  4+1",
		"#2 image 2d read-write size=8",
		"#0 argument-buffer constant {2 fields} size=16",
		".1 image 2d read size=8",
	} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("missing %q in:\n%s", want, res.stdout)
		}
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for _, name := range []string{"ffi/compute.ffi", "ffi/graphics.ffi"} {
		t.Run(name, func(t *testing.T) {
			path := testdata(t, name)
			original, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			isolate(t)
			dec := runCLI(t, "", "decode", "--format", "json", "--no-cache", path)
			if dec.err != nil {
				t.Fatalf("decode: %v\n%s", dec.err, dec.stderr)
			}
			enc := runCLI(t, dec.stdout, "encode", "-")
			if enc.err != nil {
				t.Fatalf("encode: %v", enc.err)
			}
			if enc.stdout != string(original) {
				t.Fatalf("round trip:\n%s\nwant:\n%s", enc.stdout, original)
			}
		})
	}
}

func TestDecodeUsesCache(t *testing.T) {
	path := testdata(t, "ffi/graphics.ffi")
	isolate(t)
	type doc struct {
		Files []struct {
			Cached bool `json:"cached"`
		} `json:"files"`
	}
	var first, second doc
	for _, d := range []*doc{&first, &second} {
		res := runCLI(t, "", "decode", "--format", "json", path)
		if res.err != nil {
			t.Fatalf("decode: %v", res.err)
		}
		if err := json.Unmarshal([]byte(res.stdout), d); err != nil {
			t.Fatal(err)
		}
	}
	if first.Files[0].Cached || !second.Files[0].Cached {
		t.Fatalf("cached flags: first=%v second=%v", first.Files[0].Cached, second.Files[0].Cached)
	}

	if res := runCLI(t, "", "cache", "clean"); res.err != nil || !strings.Contains(res.stdout, "cleaned") {
		t.Fatalf("cache clean: %v %q", res.err, res.stdout)
	}
}

func TestDecodeReportsErrors(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.ffi")
	if err := os.WriteFile(bad, []byte("3,k,1,0,0,0,0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	res := runCLI(t, "", "decode", "--ui", "off", bad)
	if !errors.Is(res.err, errReported) {
		t.Fatalf("err = %v", res.err)
	}
	if !strings.Contains(res.stderr, "error[DEC1001]") || !strings.Contains(res.stderr, "bad.ffi:1") {
		t.Fatalf("stderr:\n%s", res.stderr)
	}
}

func TestBindPlans(t *testing.T) {
	tests := []struct {
		plan  string
		calls []string
	}{
		{
			plan: "compute_plan.toml",
			calls: []string{
				"compute set-buffer @0 weights",
				"compute set-texture @0 src",
				"compute set-texture @1 dst",
				"compute set-texture @2 dst",
				"compute set-bytes @1 02 00 00 00",
				"compute set-buffer @2 printf",
			},
		},
		{
			plan: "graphics_plan.toml",
			calls: []string{
				"vertex set-bytes @0 00 00 00 00 00 00 80 3f 00 00 00 00 00 00 80 3f",
				"vertex set-buffer @1 vertices",
				"fragment set-textures @0 albedo[0],albedo[1],albedo[2],albedo[3]",
				"fragment set-bytes @0 00 00 00 3f",
				"fragment set-buffer @1 printf",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			plan := testdata(t, tt.plan)
			isolate(t)
			res := runCLI(t, "", "bind", "--check-kinds", plan)
			if res.err != nil {
				t.Fatalf("bind: %v\n%s", res.err, res.stderr)
			}
			_, calls, ok := strings.Cut(res.stdout, "calls:\n")
			if !ok {
				t.Fatalf("no calls in:\n%s", res.stdout)
			}
			var got []string
			for _, line := range strings.Split(strings.TrimRight(calls, "\n"), "\n") {
				got = append(got, strings.TrimSpace(line))
			}
			if strings.Join(got, "\n") != strings.Join(tt.calls, "\n") {
				t.Fatalf("calls:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(tt.calls, "\n"))
			}
		})
	}
}

func TestBindMissingImplicit(t *testing.T) {
	dir := isolate(t)
	program := testdata(t, "ffi/compute.ffi")
	plan := filepath.Join(dir, "plan.toml")
	content := "program = " + strconv.Quote(program) + `
entries = ["blur"]
[[args]]
kind = "buffer"
label = "w"
[[args]]
kind = "image"
label = "src"
[[args]]
kind = "image"
label = "dst"
[[args]]
kind = "value"
bytes = "00"
`
	if err := os.WriteFile(plan, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	res := runCLI(t, "", "bind", "--format", "json", plan)
	if !errors.Is(res.err, errReported) {
		t.Fatalf("err = %v", res.err)
	}
	var doc struct {
		Instructions []json.RawMessage `json:"instructions"`
		Error        string            `json:"error"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &doc); err != nil {
		t.Fatalf("json: %v\n%s", err, res.stdout)
	}
	// the partial plan is reported alongside the error
	if len(doc.Instructions) != 4 || !strings.Contains(doc.Error, "argument count mismatch") {
		t.Fatalf("doc = %+v", doc)
	}
	if !strings.Contains(res.stderr, "BND2002") {
		t.Fatalf("stderr:\n%s", res.stderr)
	}
}

func TestVersionJSON(t *testing.T) {
	isolate(t)
	res := runCLI(t, "", "version", "--format", "json")
	if res.err != nil {
		t.Fatal(res.err)
	}
	var info struct {
		Version     string `json:"version"`
		WireVersion string `json:"wire_version"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &info); err != nil {
		t.Fatal(err)
	}
	if info.Version == "" || info.WireVersion != "4" {
		t.Fatalf("info = %+v", info)
	}
}

func TestInvalidFlags(t *testing.T) {
	isolate(t)
	cases := [][]string{
		{"decode", "--format", "xml", "."},
		{"decode", "--ui", "maybe", "."},
		{"--trace-level", "loud", "version"},
		{"--color", "sometimes", "version"},
	}
	for _, args := range cases {
		if res := runCLI(t, "", args...); res.err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	cfg := filepath.Join(dir, "argbind.toml")
	if err := os.WriteFile(cfg, []byte("[decode]\nunknown = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if res := runCLI(t, "", "version"); res.err == nil || !strings.Contains(res.err.Error(), "unknown keys") {
		t.Fatalf("err = %v", res.err)
	}
}

func TestDecodeJSONTimings(t *testing.T) {
	path := testdata(t, "ffi/compute.ffi")
	isolate(t)
	res := runCLI(t, "", "--timings", "decode", "--format", "json", "--no-cache", path)
	if res.err != nil {
		t.Fatalf("decode: %v", res.err)
	}
	var doc struct {
		Timings []struct {
			Code  string   `json:"code"`
			Notes []string `json:"notes"`
		} `json:"timings"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Timings) != 1 || doc.Timings[0].Code != "OBS6001" || len(doc.Timings[0].Notes) != 1 {
		t.Fatalf("timings = %+v", doc.Timings)
	}
	if !strings.Contains(doc.Timings[0].Notes[0], `"kind":"decode"`) {
		t.Fatalf("payload = %s", doc.Timings[0].Notes[0])
	}
	// the decode output still feeds encode
	if enc := runCLI(t, res.stdout, "encode", "-"); enc.err != nil {
		t.Fatalf("encode: %v", enc.err)
	}
}

func TestDecodeShortDiagnostics(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.ffi")
	if err := os.WriteFile(bad, []byte("3,k,1,0,0,0,0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	res := runCLI(t, "", "--diagnostics", "short", "decode", "--ui", "off", bad)
	if !errors.Is(res.err, errReported) {
		t.Fatalf("err = %v", res.err)
	}
	lines := strings.Split(strings.TrimRight(res.stderr, "\n"), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "error DEC1001 "+bad+":1") {
		t.Fatalf("stderr:\n%s", res.stderr)
	}
	if res := runCLI(t, "", "--diagnostics", "long", "version"); res.err == nil {
		t.Fatal("expected error for unknown diagnostic style")
	}
}
