package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"argbind/internal/diag"
	"argbind/internal/driver"
	"argbind/internal/funcinfo"
	"argbind/internal/ui"
)

const (
	formatPretty = "pretty"
	formatJSON   = "json"
)

func readFormat(value string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(value)); f {
	case formatPretty, formatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (must be pretty or json)", value)
}

type decodeOptions struct {
	format  string
	strict  bool
	jobs    int
	ui      string
	noCache bool
}

func newDecodeCmd(a *app) *cobra.Command {
	var opts decodeOptions
	cmd := &cobra.Command{
		Use:   "decode [files|dirs...]",
		Short: "Decode function info files",
		Long: `Decode function info files and print their entry points and argument
layouts. Directories are searched for *.ffi files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDecode(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.format, "format", formatPretty, "output format (pretty|json)")
	f.BoolVar(&opts.strict, "strict", false, "reject malformed packed argument values")
	f.IntVar(&opts.jobs, "jobs", 0, "parallel decodes (0 = GOMAXPROCS)")
	f.StringVar(&opts.ui, "ui", "auto", "progress view (auto|on|off)")
	f.BoolVar(&opts.noCache, "no-cache", false, "bypass the program cache")
	return cmd
}

// loadOptions merges command flags over the config file.
func (a *app) loadOptions(cmd *cobra.Command, strict bool, jobs int, noCache bool) driver.LoadOptions {
	opts := driver.LoadOptions{
		Jobs:           a.cfg.Decode.Jobs,
		MaxDiagnostics: a.cfg.Decode.MaxDiagnostics,
		Strict:         a.cfg.Decode.Strict,
	}
	if cmd.Flags().Changed("strict") {
		opts.Strict = strict
	}
	if cmd.Flags().Changed("jobs") {
		opts.Jobs = jobs
	}
	if a.cfg.Cache.Enabled && !noCache {
		cache, err := driver.OpenProgramCache(a.cfg.Cache.Dir)
		if err != nil {
			// decoding works without the cache
			if !a.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: program cache disabled: %v\n", err)
			}
		} else {
			opts.Cache = cache
		}
	}
	return opts
}

func (a *app) runDecode(cmd *cobra.Command, args []string, opts decodeOptions) error {
	format, err := readFormat(opts.format)
	if err != nil {
		return err
	}
	mode, err := readUIMode(opts.ui)
	if err != nil {
		return err
	}
	files, err := driver.ListFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", driver.FileExt)
	}
	lo := a.loadOptions(cmd, opts.strict, opts.jobs, opts.noCache)

	ctx := cmd.Context()
	idx := a.timer.Begin("load")
	var results []driver.FileResult
	if shouldUseTUI(mode, len(files), format) {
		results, err = runLoadWithUI(ctx, cmd.OutOrStdout(), "decoding", files, lo)
	} else {
		results, err = driver.LoadFiles(ctx, files, lo)
	}
	a.timer.End(idx, loadNote(results))
	if err != nil {
		return err
	}

	idx = a.timer.Begin("render")
	out := cmd.OutOrStdout()
	failed := false
	all := diag.NewBag(0)
	for i := range results {
		failed = failed || results[i].Bag.HasErrors()
		all.Merge(results[i].Bag)
	}
	if format == formatJSON {
		var timings *diag.Bag
		if a.timings {
			timings = diag.NewBag(1)
			a.timer.AppendTo(timings, "decode", "")
		}
		err = renderProgramsJSON(out, results, timings)
	} else {
		err = renderProgramsPretty(out, results)
		if err == nil {
			err = a.printDiagnostics(cmd.ErrOrStderr(), all)
		}
	}
	a.timer.End(idx, "")
	if err != nil {
		return err
	}
	a.printTimings(cmd.ErrOrStderr())
	if failed {
		return errReported
	}
	return nil
}

const (
	diagPretty = "pretty"
	diagShort  = "short"
)

func readDiagStyle(value string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(value)); s {
	case "", diagPretty:
		return diagPretty, nil
	case diagShort:
		return s, nil
	}
	return "", fmt.Errorf("invalid --diagnostics value %q (expected pretty|short)", value)
}

// printDiagnostics renders bag sorted and deduplicated. Quiet keeps errors only.
func (a *app) printDiagnostics(w io.Writer, bag *diag.Bag) error {
	bag.Sort()
	bag.Dedup()
	items := bag.Items()
	if a.quiet {
		kept := make([]diag.Diagnostic, 0, len(items))
		for _, d := range items {
			if d.Severity >= diag.SevError {
				kept = append(kept, d)
			}
		}
		items = kept
	}
	if a.diags == diagShort {
		if len(items) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, diag.FormatShort(items, true))
		return err
	}
	return diag.Pretty(w, items)
}

func renderProgramsJSON(w io.Writer, results []driver.FileResult, timings *diag.Bag) error {
	doc := struct {
		Files   []programJSON    `json:"files"`
		Timings []diagnosticJSON `json:"timings,omitempty"`
	}{Files: make([]programJSON, 0, len(results))}
	if timings != nil {
		doc.Timings = toDiagnosticsJSON(timings.Items())
	}
	for i := range results {
		r := &results[i]
		pj := programJSON{
			Path:        r.Path,
			Cached:      r.Cached,
			Functions:   make([]functionJSON, 0, len(r.Functions)),
			Diagnostics: toDiagnosticsJSON(r.Bag.Items()),
		}
		for j := range r.Functions {
			pj.Functions = append(pj.Functions, toFunctionJSON(&r.Functions[j]))
		}
		doc.Files = append(doc.Files, pj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func renderProgramsPretty(w io.Writer, results []driver.FileResult) error {
	var sb strings.Builder
	for i := range results {
		r := &results[i]
		if i > 0 {
			sb.WriteByte('\n')
		}
		header := fmt.Sprintf("%s: %d functions", r.Path, len(r.Functions))
		switch {
		case r.Err != nil:
			header = fmt.Sprintf("%s: failed", r.Path)
		case r.Cached:
			header += " (cached)"
		}
		sb.WriteString(color.New(color.Bold).Sprint(header))
		sb.WriteByte('\n')
		if r.Err != nil {
			continue
		}
		sb.WriteString(functionTable(r.Functions).Render())
		for j := range r.Functions {
			writeArgs(&sb, &r.Functions[j])
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func functionTable(fns []funcinfo.FunctionInfo) *ui.Table {
	t := &ui.Table{
		Headers: []string{"NAME", "KIND", "LOCAL", "FLAGS", "ARGS"},
		MaxCell: 48,
		Styled:  !color.NoColor,
	}
	for i := range fns {
		fn := &fns[i]
		local := "-"
		if !fn.LocalSize.IsZero() {
			local = fn.LocalSize.String()
		}
		args := strconv.Itoa(len(fn.Args))
		if n := fn.ImplicitArgCount(); n > 0 {
			args += fmt.Sprintf("+%d", n)
		}
		t.Rows = append(t.Rows, []string{fn.Name, fn.Kind.String(), local, fn.Flags.String(), args})
	}
	return t
}

func writeArgs(sb *strings.Builder, fn *funcinfo.FunctionInfo) {
	if len(fn.Args) == 0 {
		return
	}
	fmt.Fprintf(sb, "  %s:\n", fn.Name)
	for i := range fn.Args {
		a := &fn.Args[i]
		fmt.Fprintf(sb, "    #%d %s\n", i, describeArg(a))
		if a.Nested == nil {
			continue
		}
		for j := range a.Nested.Args {
			fmt.Fprintf(sb, "       .%d %s\n", j, describeArg(&a.Nested.Args[j]))
		}
	}
}
