package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"argbind/internal/version"
)

type versionOptions struct {
	format string
	full   bool
}

func newVersionCmd() *cobra.Command {
	var opts versionOptions
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show argbind build metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := readFormat(opts.format)
			if err != nil {
				return err
			}
			info := version.Get()
			if format == formatJSON {
				return renderVersionJSON(cmd.OutOrStdout(), info, opts.full)
			}
			return renderVersionPretty(cmd.OutOrStdout(), info, opts.full)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", formatPretty, "output format (pretty|json)")
	cmd.Flags().BoolVar(&opts.full, "full", false, "show every recorded bit of build metadata")
	return cmd
}

func renderVersionPretty(w io.Writer, info version.Info, full bool) error {
	if _, err := fmt.Fprintf(w, "argbind %s (function info v%s)\n", version.Colored(), info.WireVersion); err != nil {
		return err
	}
	if !full {
		return nil
	}
	rows := [][2]string{
		{"commit", info.GitCommit},
		{"message", info.GitMessage},
		{"built", info.BuildDate},
		{"go", info.GoVersion},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %-8s %s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return nil
}

func renderVersionJSON(w io.Writer, info version.Info, full bool) error {
	if !full {
		info = version.Info{Version: info.Version, WireVersion: info.WireVersion, GoVersion: info.GoVersion}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
