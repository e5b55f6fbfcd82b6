package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"argbind/internal/driver"
	"argbind/internal/ui"
)

type loadOutcome struct {
	results []driver.FileResult
	err     error
}

// runLoadWithUI loads files while a Bubble Tea view follows the progress.
func runLoadWithUI(ctx context.Context, out io.Writer, title string, files []string, opts driver.LoadOptions) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan loadOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.LoadFiles(ctx, files, opts)
		outcomeCh <- loadOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so the loader never blocks on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
