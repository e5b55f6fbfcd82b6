package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"argbind/internal/backend"
	"argbind/internal/bind"
	"argbind/internal/diag"
	"argbind/internal/driver"
	"argbind/internal/project"
)

// labelResource stands in for a native object in dry runs.
type labelResource string

func (r labelResource) Label() string { return string(r) }

type labelArgBuffer struct{ storage labelResource }

func (a labelArgBuffer) StorageBuffer() bind.Resource { return a.storage }

type bindOptions struct {
	format     string
	checkKinds bool
	noCache    bool
	strict     bool
}

func newBindCmd(a *app) *cobra.Command {
	var opts bindOptions
	cmd := &cobra.Command{
		Use:   "bind <plan.toml>",
		Short: "Dry-run a binding plan and print the native bind calls",
		Long: `Bind loads the program named by a plan file, resolves its entries,
binds the listed arguments and applies the result to a recording encoder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBind(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.format, "format", formatPretty, "output format (pretty|json)")
	f.BoolVar(&opts.checkKinds, "check-kinds", false, "reject arguments whose variant does not fit the parameter")
	f.BoolVar(&opts.strict, "strict", false, "reject malformed packed argument values")
	f.BoolVar(&opts.noCache, "no-cache", false, "bypass the program cache")
	return cmd
}

// buildArgs turns plan entries into binder arguments.
func buildArgs(specs []project.ArgSpec) ([]bind.Argument, error) {
	out := make([]bind.Argument, 0, len(specs))
	for i, s := range specs {
		labels := s.Labels()
		res := make([]bind.Resource, len(labels))
		for j, l := range labels {
			res[j] = labelResource(l)
		}
		switch s.Kind {
		case project.ArgValue:
			data, err := s.Data()
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			out = append(out, bind.Value(data))
		case project.ArgBuffer:
			out = append(out, bind.Buffer(res[0]))
		case project.ArgBuffers:
			out = append(out, bind.Buffers(res...))
		case project.ArgImage:
			out = append(out, bind.Image(res[0]))
		case project.ArgImages:
			out = append(out, bind.Images(res...))
		case project.ArgArgBuffer:
			out = append(out, bind.ArgBuffer(labelArgBuffer{storage: labelResource(s.Label)}))
		default:
			return nil, fmt.Errorf("argument %d: unknown kind %q", i, s.Kind)
		}
	}
	return out, nil
}

type bindResult struct {
	plan  []bind.Instruction
	calls []backend.Call
}

func (a *app) runBind(cmd *cobra.Command, planPath string, opts bindOptions) error {
	format, err := readFormat(opts.format)
	if err != nil {
		return err
	}
	idx := a.timer.Begin("plan")
	plan, err := project.LoadPlan(planPath)
	a.timer.End(idx, planPath)
	if err != nil {
		return a.fail(cmd, diag.NewError(diag.CfgInvalidPlan, diag.Pos{Source: planPath}, err.Error()))
	}

	idx = a.timer.Begin("load")
	lo := a.loadOptions(cmd, opts.strict, 0, opts.noCache)
	file := driver.LoadFile(cmd.Context(), plan.Program, lo)
	a.timer.End(idx, loadNote([]driver.FileResult{file}))
	if file.Err != nil {
		if err := a.printDiagnostics(cmd.ErrOrStderr(), file.Bag); err != nil {
			return err
		}
		return errReported
	}

	idx = a.timer.Begin("bind")
	res, bindErr := a.bindPlan(cmd, plan, file, opts)
	a.timer.End(idx, "")

	out := cmd.OutOrStdout()
	if format == formatJSON {
		err = renderBindJSON(out, res, bindErr)
	} else {
		err = renderBindPretty(out, res)
	}
	if err != nil {
		return err
	}
	if bindErr != nil {
		bag := diag.NewBag(1)
		bag.Add(bindDiagnostic(bindErr, plan.Path))
		if err := a.printDiagnostics(cmd.ErrOrStderr(), bag); err != nil {
			return err
		}
		return errReported
	}
	a.printTimings(cmd.ErrOrStderr())
	return nil
}

func (a *app) bindPlan(cmd *cobra.Command, plan *project.Plan, file driver.FileResult, opts bindOptions) (bindResult, error) {
	var res bindResult
	entries, err := file.Program().Entries(plan.Entries...)
	if err != nil {
		return res, err
	}
	explicit, err := buildArgs(plan.Args)
	if err != nil {
		return res, err
	}
	implicit, err := buildArgs(plan.Implicit)
	if err != nil {
		return res, err
	}
	checkKinds := a.cfg.Bind.CheckKinds
	if cmd.Flags().Changed("check-kinds") {
		checkKinds = opts.checkKinds
	}
	res.plan, err = bind.BindWithOptions(cmd.Context(), entries, explicit, implicit, bind.Options{CheckKinds: checkKinds})
	if err != nil {
		return res, err
	}

	rec := &backend.Recorder{}
	b := backend.Binder{Encoder: rec, Upload: rec.Upload, ForceUpload: !a.cfg.Bind.InlineBytes}
	err = b.ApplyAll(res.plan)
	res.calls = rec.Calls()
	return res, err
}

// coded is implemented by bind, backend and decode errors.
type coded interface {
	error
	Code() diag.Code
}

func bindDiagnostic(err error, source string) diag.Diagnostic {
	var c coded
	if errors.As(err, &c) {
		return diag.NewError(c.Code(), diag.Pos{Source: source}, c.Error())
	}
	return diag.NewError(diag.CfgInvalidPlan, diag.Pos{Source: source}, err.Error())
}

func (a *app) fail(cmd *cobra.Command, d diag.Diagnostic) error {
	bag := diag.NewBag(1)
	bag.Add(d)
	if err := a.printDiagnostics(cmd.ErrOrStderr(), bag); err != nil {
		return err
	}
	return errReported
}

func renderBindPretty(w io.Writer, res bindResult) error {
	var sb strings.Builder
	if len(res.plan) > 0 {
		sb.WriteString("instructions:\n")
		for i := range res.plan {
			fmt.Fprintf(&sb, "  %s\n", res.plan[i].String())
		}
	}
	if len(res.calls) > 0 {
		sb.WriteString("calls:\n")
		for _, c := range res.calls {
			fmt.Fprintf(&sb, "  %s\n", c.String())
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

type instructionJSON struct {
	Entry     int      `json:"entry"`
	Stage     string   `json:"stage"`
	Arg       int      `json:"arg"`
	Kind      string   `json:"kind"`
	Slot      uint32   `json:"slot"`
	Count     uint32   `json:"count"`
	Doubled   bool     `json:"doubled,omitempty"`
	Implicit  bool     `json:"implicit,omitempty"`
	Resources []string `json:"resources,omitempty"`
}

func renderBindJSON(w io.Writer, res bindResult, bindErr error) error {
	doc := struct {
		Instructions []instructionJSON `json:"instructions"`
		Calls        []backend.Call    `json:"calls"`
		Error        string            `json:"error,omitempty"`
	}{
		Instructions: make([]instructionJSON, 0, len(res.plan)),
		Calls:        res.calls,
	}
	if doc.Calls == nil {
		doc.Calls = []backend.Call{}
	}
	if bindErr != nil {
		doc.Error = bindErr.Error()
	}
	for i := range res.plan {
		in := &res.plan[i]
		ij := instructionJSON{
			Entry:    in.Entry,
			Stage:    in.Stage.String(),
			Arg:      in.Arg,
			Kind:     in.Kind.String(),
			Slot:     in.Slot(),
			Count:    in.Count,
			Doubled:  in.Doubled,
			Implicit: in.Implicit,
		}
		for _, r := range in.Resources {
			ij.Resources = append(ij.Resources, r.Label())
		}
		doc.Instructions = append(doc.Instructions, ij)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
