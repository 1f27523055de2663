package os8fs

import (
	"errors"
	"strings"
	"testing"
)

func TestGetEmptyEntryNoFitIsErrResource(t *testing.T) {
	dir := freshDirectory(t, 993)
	dir.segments[0].setEntries([]Entry{{Kind: KindEmpty, Length: 3}})
	eng := NewEngine(dir)

	_, err := eng.GetEmptyEntry(nil, 10)
	if !errors.Is(err, ErrNoFit) {
		t.Errorf("GetEmptyEntry: errors.Is(err, ErrNoFit) = false, want true (err = %v)", err)
	}
	if !errors.Is(err, ErrResource) {
		t.Errorf("GetEmptyEntry: errors.Is(err, ErrResource) = false, want true; wrapping should preserve the kind (err = %v)", err)
	}
}

func TestCopyInZeroLengthIsErrUsage(t *testing.T) {
	f, dir := newImageWithDirectory(t, 993)
	eng := NewEngine(dir)
	fs := NewFileStreamer(f, CodecFor(FormatDSK))

	_, err := fs.CopyIn(eng, "E.BN", 0, strings.NewReader(""))
	if !errors.Is(err, ErrZeroLengthFile) {
		t.Errorf("CopyIn zero length: errors.Is(err, ErrZeroLengthFile) = false, want true (err = %v)", err)
	}
	if !errors.Is(err, ErrUsage) {
		t.Errorf("CopyIn zero length: errors.Is(err, ErrUsage) = false, want true; wrapping should preserve the kind (err = %v)", err)
	}
}
