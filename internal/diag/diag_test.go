package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{DecMalformedRecord, "DEC1003"},
		{DecMalformedArgInfo, "DEC1010"},
		{BndArgumentCountMismatch, "BND2002"},
		{IOLoadFileError, "IO4001"},
		{CfgInvalidPlan, "CFG5002"},
		{ObsTimings, "OBS6001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if Code(1999).Title() != "Unknown error" {
		t.Errorf("unregistered code should fall back to unknown title")
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		ok := b.Add(NewError(DecMalformedRecord, Pos{Line: i + 1}, "bad"))
		if i < 2 && !ok {
			t.Fatalf("Add #%d rejected", i)
		}
		if i == 2 && ok {
			t.Fatalf("Add beyond limit accepted")
		}
	}
	if b.Len() != 2 || !b.HasErrors() {
		t.Fatalf("Len=%d HasErrors=%v", b.Len(), b.HasErrors())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, DecMalformedArgInfo, Pos{Source: "a", Line: 3, Field: 7}, "packed 0"))
	b.Add(NewError(DecMalformedRecord, Pos{Source: "a", Line: 1}, "short"))
	b.Add(New(SevWarning, DecMalformedArgInfo, Pos{Source: "a", Line: 3, Field: 7}, "packed 0"))
	b.Add(NewError(DecVersionMismatch, Pos{Source: "a", Line: 3, Field: 7}, "v3"))
	b.Dedup()
	b.Sort()
	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].Code != DecMalformedRecord || items[1].Code != DecVersionMismatch || items[2].Code != DecMalformedArgInfo {
		t.Fatalf("unexpected order: %v %v %v", items[0].Code, items[1].Code, items[2].Code)
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(4)
	r := BagReporter{Bag: bag}
	rb := ReportWarning(r, DecMalformedArgInfo, Pos{Source: "x", Line: 2, Field: 8}, "packed value 0").
		WithNote(Pos{Source: "x", Line: 2}, "record k")
	rb.Emit()
	rb.Emit()
	if bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.Severity != SevWarning || len(d.Notes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("severity flags wrong")
	}
}

func TestFormatShort(t *testing.T) {
	diags := []Diagnostic{
		New(SevWarning, DecMalformedArgInfo, Pos{Source: "prog.fi", Line: 2, Field: 7}, "packed value 0").
			WithNote(Pos{Source: "prog.fi", Line: 2}, "in record k"),
		NewError(DecMalformedRecord, Pos{Source: "prog.fi", Line: 1}, "only 3 fields\n"),
		NewError(DecVersionMismatch, Pos{Source: "prog.fi", Line: 3}, "want 4,\r\ngot 3"),
	}
	got := FormatShort(diags, true)
	want := strings.Join([]string{
		"error DEC1003 prog.fi:1 only 3 fields",
		"note DEC1010 prog.fi:2 in record k",
		"warning DEC1010 prog.fi:2:7 packed value 0",
		"error DEC1001 prog.fi:3 want 4, got 3",
	}, "\n")
	if got != want {
		t.Fatalf("FormatShort:\n%s\nwant:\n%s", got, want)
	}
	if FormatShort(nil, true) != "" {
		t.Fatal("empty input must render empty")
	}
}

func TestPrettyPlain(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	err := Pretty(&buf, []Diagnostic{NewError(BndEntryIndexOutOfBounds, Pos{}, "entry 2 of 2")})
	if err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if got := buf.String(); got != "error[BND2001]: entry 2 of 2\n" {
		t.Fatalf("Pretty = %q", got)
	}
}

func TestPosString(t *testing.T) {
	if s := (Pos{}).String(); s != "<input>" {
		t.Errorf("zero Pos = %q", s)
	}
	if s := (Pos{Source: "f", Line: 4}).String(); s != "f:4" {
		t.Errorf("line Pos = %q", s)
	}
}
