package observ

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"argbind/internal/diag"
)

func TestReport(t *testing.T) {
	tm := NewTimer()
	tm.Add("read", 2*time.Millisecond, "")
	tm.Add("decode", 3*time.Millisecond, "cached")
	r := tm.Report()
	if len(r.Phases) != 2 || r.TotalMS != 5 {
		t.Fatalf("report = %+v", r)
	}
	if r.Phases[1].Note != "cached" {
		t.Fatalf("note lost: %+v", r.Phases[1])
	}
	s := tm.Summary()
	if !strings.Contains(s, "decode") || !strings.Contains(s, "// cached") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestTrack(t *testing.T) {
	tm := NewTimer()
	boom := errors.New("boom")
	if err := tm.Track("bind", func() error { return boom }); err != boom {
		t.Fatalf("Track = %v", err)
	}
	if r := tm.Report(); r.Phases[0].Note != "failed" {
		t.Fatalf("report = %+v", r)
	}
	tm.End(42, "ignored")
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("report = %+v", r)
	}
}

func TestAppendToFullBag(t *testing.T) {
	tm := NewTimer()
	tm.Add("decode", time.Millisecond, "")
	bag := diag.NewBag(0)
	tm.AppendTo(bag, "decode", "a.ffi")
	if bag.Len() != 1 {
		t.Fatalf("bag len = %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.ObsTimings || len(d.Notes) != 1 {
		t.Fatalf("diagnostic = %+v", d)
	}
	var payload struct {
		Kind   string        `json:"kind"`
		Path   string        `json:"path"`
		Phases []PhaseReport `json:"phases"`
	}
	if err := json.Unmarshal([]byte(d.Notes[0].Msg), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Kind != "decode" || payload.Path != "a.ffi" || len(payload.Phases) != 1 {
		t.Fatalf("payload = %+v", payload)
	}
}
