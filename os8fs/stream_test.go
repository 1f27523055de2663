package os8fs

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func newImageWithDirectory(t *testing.T, filesystemBlocks int) (*os.File, *Directory) {
	t.Helper()
	f := tempImage(t, int64(filesystemBlocks+7)*512)
	device := NewDeviceSized(FormatDSK, filesystemBlocks+7)
	codec := CodecFor(FormatDSK)
	dir := CreateFilesystem(device, codec, 1)
	if err := dir.FlushAll(f); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
	return f, dir
}

func TestFileStreamerCopyInCopyOutRoundTrip(t *testing.T) {
	f, dir := newImageWithDirectory(t, 993)
	codec := CodecFor(FormatDSK)
	fs := NewFileStreamer(f, codec)
	eng := NewEngine(dir)

	content := strings.Repeat("HELLO, OS/8!", 100) // spans multiple 512-byte blocks
	entry, err := fs.CopyIn(eng, "GREET.TX", int64(len(content)), strings.NewReader(content))
	if err != nil {
		t.Fatalf("CopyIn: %v", err)
	}
	wantBlocks := (len(content) + 511) / 512
	if entry.Length != wantBlocks {
		t.Fatalf("entered file Length = %d, want %d", entry.Length, wantBlocks)
	}

	var out bytes.Buffer
	if err := fs.CopyOut(entry, &out); err != nil {
		t.Fatalf("CopyOut: %v", err)
	}
	got := out.Bytes()
	if !bytes.HasPrefix(got, []byte(content)) {
		t.Fatalf("CopyOut did not reproduce the written prefix")
	}
	// trailing bytes of the final block are zero padding.
	for _, b := range got[len(content):] {
		if b != 0 {
			t.Fatalf("CopyOut trailing padding byte = %#x, want 0", b)
		}
	}
}

func TestFileStreamerCopyInRejectsZeroLength(t *testing.T) {
	f, dir := newImageWithDirectory(t, 993)
	codec := CodecFor(FormatDSK)
	fs := NewFileStreamer(f, codec)
	eng := NewEngine(dir)

	if _, err := fs.CopyIn(eng, "EMPTY.TX", 0, strings.NewReader("")); err == nil {
		t.Fatal("CopyIn of a zero-length source: err = nil, want ErrZeroLengthFile")
	}
}
