package main

import (
	"fmt"
	"io"

	"argbind/internal/driver"
)

// loadNote summarizes a batch for the timings table.
func loadNote(results []driver.FileResult) string {
	var cached, failed int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Cached:
			cached++
		}
	}
	note := fmt.Sprintf("%d files", len(results))
	if cached > 0 {
		note += fmt.Sprintf(", %d cached", cached)
	}
	if failed > 0 {
		note += fmt.Sprintf(", %d failed", failed)
	}
	return note
}

func (a *app) printTimings(out io.Writer) {
	if !a.timings || out == nil {
		return
	}
	fmt.Fprint(out, a.timer.Summary())
}
