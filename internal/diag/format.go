package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

type shortLine struct {
	Severity string
	Code     string
	Pos      Pos
	Message  string
}

// FormatShort renders diagnostics one per line in a stable order:
//
//	<severity> <code> <source>:<line>:<field> <message>
//
// The output is suitable for golden files. An empty string is returned when
// there is nothing to render.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]shortLine, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, shortLine{
			Severity: severityLabel(d.Severity),
			Code:     d.Code.ID(),
			Pos:      d.Primary,
			Message:  sanitizeMessage(d.Message),
		})
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			rendered = append(rendered, shortLine{
				Severity: "note",
				Code:     d.Code.ID(),
				Pos:      n.Pos,
				Message:  sanitizeMessage(n.Msg),
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Pos.Source != dj.Pos.Source {
			return di.Pos.Source < dj.Pos.Source
		}
		if di.Pos.Line != dj.Pos.Line {
			return di.Pos.Line < dj.Pos.Line
		}
		if di.Pos.Field != dj.Pos.Field {
			return di.Pos.Field < dj.Pos.Field
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code, d.Pos, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Pretty writes a human oriented listing with colored severities.
// Colors follow color.NoColor, so redirected output stays plain.
func Pretty(w io.Writer, diags []Diagnostic) error {
	errC := color.New(color.FgRed, color.Bold)
	warnC := color.New(color.FgYellow, color.Bold)
	infoC := color.New(color.FgCyan)
	dim := color.New(color.Faint)

	for i := range diags {
		d := &diags[i]
		var sev string
		switch d.Severity {
		case SevError:
			sev = errC.Sprint("error")
		case SevWarning:
			sev = warnC.Sprint("warning")
		default:
			sev = infoC.Sprint("info")
		}
		if _, err := fmt.Fprintf(w, "%s[%s]: %s\n", sev, d.Code.ID(), d.Message); err != nil {
			return err
		}
		if !d.Primary.IsZero() {
			if _, err := fmt.Fprintf(w, "  %s %s\n", dim.Sprint("-->"), d.Primary); err != nil {
				return err
			}
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  %s %s: %s\n", dim.Sprint("note"), n.Pos, n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevInfo:
		return "info"
	default:
		return strings.ToLower(sev.String())
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
