package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"argbind/internal/version"
)

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("failed")

func newRootCmd() (*cobra.Command, *app) {
	a := newApp()
	root := &cobra.Command{
		Use:   "argbind",
		Short: "Function info decoder and argument binder",
		Long: `argbind decodes compiled function info (argument layouts of GPU entry
points) and resolves host arguments into backend slot assignments.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.AddCommand(newDecodeCmd(a))
	root.AddCommand(newEncodeCmd(a))
	root.AddCommand(newBindCmd(a))
	root.AddCommand(newCacheCmd(a))
	root.AddCommand(newVersionCmd())

	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress warnings and informational output")
	pf.Bool("timings", false, "show timing information")
	pf.String("diagnostics", diagPretty, "diagnostic style (pretty|short)")
	pf.String("config", "", "path to argbind.toml (default: search upwards from the working directory)")
	pf.String("trace", "", "trace output file (\"-\" for stderr)")
	pf.String("trace-level", "", "trace level (off|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 1024, "events kept by the ring tracer")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file")
	pf.String("runtime-trace", "", "write a runtime trace to file")
	return root, a
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	a.close(err != nil)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
