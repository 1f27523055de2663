// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// ImageHandle is a scoped resource wrapping one open OS/8 image file:
// its host *os.File, the advisory lock held for the operation's
// lifetime, and the BlockCodec/Device pair selected for its format
// Create it with OpenImage and release it with Close on every exit
// path.
type ImageHandle struct {
	f      *os.File
	Format Format
	Device Device
	Codec  BlockCodec
	locked bool
}

// OpenImage opens path as an OS/8 image of the given format, takes a
// non-blocking advisory exclusive lock, and wires up the matching
// BlockCodec. rw selects read/write vs read-only.
func OpenImage(path string, format Format, rw bool) (*ImageHandle, error) {
	flag := os.O_RDONLY
	if rw {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "open %s: %v", path, err)
	}

	if err := lockImage(f); err != nil {
		f.Close()
		return nil, err
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		unlockImage(f)
		f.Close()
		return nil, errors.Wrapf(ErrIO, "stat %s: %v", path, err)
	}

	return &ImageHandle{
		f:      f,
		Format: format,
		Device: NewDevice(format, size),
		Codec:  CodecFor(format),
		locked: true,
	}, nil
}

// Close releases the advisory lock and closes the host file. It is
// safe to call more than once.
func (h *ImageHandle) Close() error {
	if h.locked {
		unlockImage(h.f)
		h.locked = false
	}
	return h.f.Close()
}

// ReadDirectory reads the directory chain from h's image.
func (h *ImageHandle) ReadDirectory() (*Directory, error) {
	return ReadDirectory(h.f, h.Device, h.Codec)
}

// Flush writes every dirty segment of dir back to h's image.
func (h *ImageHandle) Flush(dir *Directory) error {
	return dir.Flush(h.f)
}

// Streamer returns a FileStreamer bound to h's file and codec.
func (h *ImageHandle) Streamer() *FileStreamer {
	return NewFileStreamer(h.f, h.Codec)
}

// ListingRow is one line of a directory listing: either a file
// (Empty == false) or a free-space run (Empty == true).
type ListingRow struct {
	Name   string
	Length int
	Empty  bool
}

// Summary is the trailing accounting line of a directory listing.
type Summary struct {
	Files      int
	UsedBlocks int
	FreeBlocks int
}

// String renders the summary exactly as the original USR-style
// listing does: "N Files In M Blocks - K Free Blocks".
func (s Summary) String() string {
	return fmt.Sprintf("%d Files In %d Blocks - %d Free Blocks", s.Files, s.UsedBlocks, s.FreeBlocks)
}

// List yields every entry matching p as ListingRows, plus a Summary
// across the whole directory (file count, used blocks, free blocks —
// unaffected by p: totals are always reported for the entire volume).
// printEmpties controls whether free runs are included in the
// returned rows.
func List(dir *Directory, p Pattern, printEmpties bool) ([]ListingRow, Summary, error) {
	entries, err := dir.AllEntries()
	if err != nil {
		return nil, Summary{}, err
	}
	var rows []ListingRow
	var sum Summary
	for _, e := range entries {
		if e.Kind == KindEmpty {
			sum.FreeBlocks += e.Length
			if printEmpties {
				rows = append(rows, ListingRow{Name: "<empty>", Length: e.Length, Empty: true})
			}
			continue
		}
		sum.Files++
		sum.UsedBlocks += e.Length
		if p.matchEntry(e) {
			rows = append(rows, ListingRow{Name: e.Name, Length: e.Length})
		}
	}
	return rows, sum, nil
}

// LookupAll materializes every entry matching p, in on-media order.
func LookupAll(dir *Directory, eng *DirectoryEngine, p Pattern) []Entry {
	c := NewCursor(dir)
	var out []Entry
	for {
		e, ok := eng.Lookup(c, p)
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

// DeleteMany deletes every entry matching any of patterns and returns
// how many were removed. Quiet reporting is a CLI
// concern, not a core one; callers report per-file results themselves
// using the returned count and any error.
func DeleteMany(dir *Directory, eng *DirectoryEngine, patterns []Pattern) (int, error) {
	count := 0
	for _, p := range patterns {
		for {
			c := NewCursor(dir)
			e, ok := eng.Lookup(c, p)
			if !ok {
				break
			}
			if err := eng.Delete(e); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// CopyOut streams entry's blocks to sink.
func (h *ImageHandle) CopyOut(entry Entry, sink io.Writer) error {
	return h.Streamer().CopyOut(entry, sink)
}

// CopyIn streams sourceLen bytes from source into a new file named
// name.
func (h *ImageHandle) CopyIn(eng *DirectoryEngine, name string, sourceLen int64, source io.Reader) (Entry, error) {
	return h.Streamer().CopyIn(eng, name, sourceLen, source)
}

// Create writes a brand-new filesystem to h's image: every directory
// segment zeroed except segment 0 (one empty entry spanning the full
// filesystem size), the pre-directory block, and a final block
// extending the host file to the full device size.
func (h *ImageHandle) Create(additionalWords int) (*Directory, error) {
	dir := CreateFilesystem(h.Device, h.Codec, additionalWords)

	if err := h.Codec.Write(h.f, 0, Block{}); err != nil {
		return nil, errors.Wrap(err, "create: write pre-directory block")
	}
	if err := dir.FlushAll(h.f); err != nil {
		return nil, err
	}
	if err := h.Codec.Write(h.f, h.Device.LastBlock(), Block{}); err != nil {
		return nil, errors.Wrap(err, "create: write final block")
	}
	return dir, nil
}

// Zero resets dir to a single free-space entry spanning to the end of
// the device, without touching any data blocks.
func Zero(dir *Directory) error {
	return NewEngine(dir).ZeroFilesystem()
}
