package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"argbind/internal/project"
	"argbind/internal/trace"
)

// setupTracing builds the tracer from flags, falling back to the [trace]
// config section, and attaches it to the command context. The cleanup dumps
// ring buffers to stderr when the command failed.
func setupTracing(cmd *cobra.Command, cfg project.TraceConfig) (func(failed bool), error) {
	root := cmd.Root()
	flags := root.PersistentFlags()

	output, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if !flags.Changed("trace") {
		output = cfg.Output
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if !flags.Changed("trace-level") {
		levelStr = cfg.Level
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// an output without a level means "trace the phases"
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	root.SetContext(ctx)

	return func(failed bool) {
		if failed {
			dumpRings(cmd, tracer)
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

func dumpRings(cmd *cobra.Command, t trace.Tracer) {
	var rings []*trace.RingTracer
	switch t := t.(type) {
	case *trace.RingTracer:
		rings = append(rings, t)
	case *trace.MultiTracer:
		rings = t.Rings()
	}
	for _, r := range rings {
		fmt.Fprintln(cmd.ErrOrStderr(), "trace: last events before failure:")
		if err := r.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
		}
	}
}
