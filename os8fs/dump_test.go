package os8fs

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumpBlockProducesOneLinePerEightWords(t *testing.T) {
	var b Block
	var out bytes.Buffer
	DumpBlock(&out, b)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != BlockWords/8 {
		t.Fatalf("DumpBlock produced %d lines, want %d", len(lines), BlockWords/8)
	}
	if !strings.HasPrefix(lines[0], "0000000:") {
		t.Errorf("first line = %q, want prefix 0000000:", lines[0])
	}
}
