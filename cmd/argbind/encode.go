package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"argbind/internal/funcinfo"
)

func newEncodeCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "encode <file.json|->",
		Short: "Write function info records from a JSON program",
		Long: `Encode reads a JSON program, either {"functions": [...]} or the
{"files": [...]} document printed by "decode --format json", and writes the
equivalent function info records. Programs of several files are concatenated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx := a.timer.Begin("encode")
			err := runEncode(cmd, args[0], output)
			a.timer.End(idx, "")
			if err == nil {
				a.printTimings(cmd.ErrOrStderr())
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runEncode(cmd *cobra.Command, input, output string) error {
	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return err
	}
	fns, err := parseProgramJSON(data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	prog := funcinfo.Program{Functions: fns}
	if err := prog.Validate(); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	if output == "" {
		return funcinfo.WriteRecords(cmd.OutOrStdout(), fns)
	}
	var buf bytes.Buffer
	if err := funcinfo.WriteRecords(&buf, fns); err != nil {
		return err
	}
	return os.WriteFile(output, buf.Bytes(), 0o644)
}

func parseProgramJSON(data []byte) ([]funcinfo.FunctionInfo, error) {
	var doc struct {
		Functions []functionJSON   `json:"functions"`
		Files     []programJSON    `json:"files"`
		Timings   []diagnosticJSON `json:"timings"` // ignored
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Functions == nil && doc.Files == nil {
		return nil, errors.New(`expected "functions" or "files"`)
	}
	views := doc.Functions
	for _, f := range doc.Files {
		views = append(views, f.Functions...)
	}
	fns := make([]funcinfo.FunctionInfo, 0, len(views))
	for i := range views {
		fn, err := fromFunctionJSON(&views[i])
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}
