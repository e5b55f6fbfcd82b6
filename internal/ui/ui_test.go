package ui

import (
	"strings"
	"testing"
	"time"

	"argbind/internal/driver"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 6, "abc..."},
		{"abcdef", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestTableRender(t *testing.T) {
	tab := Table{
		Headers: []string{"NAME", "KIND", "ARGS"},
		Rows: [][]string{
			{"blur", "kernel", "4"},
			{"vs_main", "vertex"},
		},
	}
	want := "NAME     KIND    ARGS\n" +
		"blur     kernel  4\n" +
		"vs_main  vertex\n"
	if got := tab.Render(); got != want {
		t.Fatalf("Render:\n%q\nwant:\n%q", got, want)
	}
	if (&Table{}).Render() != "" {
		t.Fatal("empty table must render nothing")
	}
}

func TestProgressModelEvents(t *testing.T) {
	m := NewProgressModel("decoding", []string{"a.ffi", "b.ffi", "c.ffi"}, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "a.ffi", Stage: driver.StageDecode, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "b.ffi", Stage: driver.StageCache, Status: driver.StatusCached, Elapsed: time.Millisecond})
	m.applyEvent(driver.Event{File: "c.ffi", Stage: driver.StageRead, Status: driver.StatusError})
	m.applyEvent(driver.Event{File: "unknown.ffi", Status: driver.StatusDone})

	if m.items[0].status != labelDecoding || m.items[1].status != labelCached || m.items[2].status != labelError {
		t.Fatalf("items = %+v", m.items)
	}
	finished, cached, failed := m.counts()
	if finished != 2 || cached != 1 || failed != 1 {
		t.Fatalf("counts = %d %d %d", finished, cached, failed)
	}
	view := m.View()
	if !strings.Contains(view, "decoding 2/3, 1 cached, 1 failed") {
		t.Fatalf("view:\n%s", view)
	}
}
