package trace

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, text string) Source {
	t.Helper()
	src, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return src
}

func TestParseBasicRecords(t *testing.T) {
	src := mustParse(t, "0 R 0x1000\n0 W 0x2000\n1 N\n")
	if got := src.ProcCount(); got != 2 {
		t.Fatalf("ProcCount() = %d, want 2", got)
	}

	rec, err := src.Next(0)
	if err != nil || rec != (Record{Kind: Read, Addr: 0x1000}) {
		t.Fatalf("Next(0) = %+v, %v", rec, err)
	}
	rec, err = src.Next(0)
	if err != nil || rec != (Record{Kind: Write, Addr: 0x2000}) {
		t.Fatalf("Next(0) = %+v, %v", rec, err)
	}
	if _, err := src.Next(0); err != ErrEOF {
		t.Fatalf("Next(0) at EOF = %v, want ErrEOF", err)
	}

	rec, err = src.Next(1)
	if err != nil || rec != (Record{Kind: NOP}) {
		t.Fatalf("Next(1) = %+v, %v", rec, err)
	}
}

func TestParseIgnoresBlankLinesAndComments(t *testing.T) {
	src := mustParse(t, "\n# a comment\n0 R 0x10\n\n")
	rec, err := src.Next(0)
	if err != nil || rec.Kind != Read {
		t.Fatalf("Next(0) = %+v, %v", rec, err)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	if _, err := Parse(strings.NewReader("0 X 0x10\n")); err == nil {
		t.Fatal("Parse() error = nil, want error for unknown kind")
	}
}

func TestParseRejectsEmptyTrace(t *testing.T) {
	if _, err := Parse(strings.NewReader("# nothing but comments\n")); err == nil {
		t.Fatal("Parse() error = nil, want error for empty trace")
	}
}

func TestEOFReflectsAllPids(t *testing.T) {
	src := mustParse(t, "0 R 0x10\n1 R 0x20\n")
	if src.EOF() {
		t.Fatal("EOF() = true before draining")
	}
	if _, err := src.Next(0); err != nil {
		t.Fatal(err)
	}
	if src.EOF() {
		t.Fatal("EOF() = true with pid 1 undrained")
	}
	if _, err := src.Next(1); err != nil {
		t.Fatal(err)
	}
	if !src.EOF() {
		t.Fatal("EOF() = false after draining every pid")
	}
}

func TestNextRejectsOutOfRangePID(t *testing.T) {
	src := mustParse(t, "0 R 0x10\n")
	if _, err := src.Next(5); err == nil {
		t.Fatal("Next(5) error = nil, want out-of-range error")
	}
}

func TestFromRecordsServesGivenQueues(t *testing.T) {
	src := FromRecords([][]Record{
		{{Kind: Read, Addr: 0x0000}, {Kind: Read, Addr: 0x0020}},
	})
	if src.ProcCount() != 1 {
		t.Fatalf("ProcCount() = %d, want 1", src.ProcCount())
	}
	rec, _ := src.Next(0)
	if rec.Addr != 0x0000 {
		t.Fatalf("Next(0) = %+v", rec)
	}
}
