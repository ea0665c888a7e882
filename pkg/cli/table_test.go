package cli

import (
	"bytes"
	"testing"
)

func TestTable_Output(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "PORT", "NAME", "LANES")
	tbl.Row("1", "eth1/1/1", "4")
	tbl.Row("5", "eth1/2/1", "2")
	tbl.Flush()

	want := "PORT  NAME      LANES\n" +
		"----  ----      -----\n" +
		"1     eth1/1/1  4\n" +
		"5     eth1/2/1  2\n"
	if got := buf.String(); got != want {
		t.Errorf("table output:\n%q\nwant:\n%q", got, want)
	}
}

func TestTable_EmptyPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "CHIP", "KIND")
	tbl.Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTable_Prefix(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "A").WithPrefix("  ")
	tbl.Row("x")
	tbl.Flush()

	want := "  A\n  -\n  x\n"
	if got := buf.String(); got != want {
		t.Errorf("prefixed output = %q, want %q", got, want)
	}
}
