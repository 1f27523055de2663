// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import (
	"os"

	"github.com/pkg/errors"
)

// Directory is the in-memory hold of all directory segments reached
// by the segment chain, plus a per-segment dirty mark. It is born
// from ReadDirectory or Create, mutated in place by DirectoryEngine,
// and discarded after Flush; no identity persists beyond the image
// file itself.
type Directory struct {
	Device Device
	codec  BlockCodec

	segments [DirectorySegments]segment
	loaded   [DirectorySegments]bool
}

// chainOrder walks the next_segment chain starting at segment index 0
// (block 1) and returns the visited indices in chain order. It stops
// at a terminating 0 and defensively caps iterations at
// DirectorySegments to avoid spinning on a cyclic chain (invariant 3
// forbids cycles, but reading must not hang on a corrupt one).
func (d *Directory) chainOrder() ([]int, error) {
	var order []int
	idx := 0
	seen := make(map[int]bool, DirectorySegments)
	for {
		if seen[idx] {
			return nil, errors.Wrapf(ErrFormat, "directory chain cycle detected at segment %d", idx)
		}
		if idx < 0 || idx >= DirectorySegments {
			return nil, errors.Wrapf(ErrFormat, "directory chain segment out of range: %d", idx)
		}
		seen[idx] = true
		order = append(order, idx)
		next := d.segments[idx].nextSegment
		if next == 0 {
			break
		}
		idx = next - 1
	}
	return order, nil
}

// ReadDirectory reads the directory segment chain starting at block 1
// using codec, validates every segment reached, and returns the
// resulting Directory.
func ReadDirectory(f *os.File, device Device, codec BlockCodec) (*Directory, error) {
	d := &Directory{Device: device, codec: codec}

	idx := 0
	seen := make(map[int]bool, DirectorySegments)
	for {
		if seen[idx] {
			return nil, errors.Wrapf(ErrFormat, "directory chain cycle detected at segment %d", idx)
		}
		if idx < 0 || idx >= DirectorySegments {
			return nil, errors.Wrapf(ErrFormat, "directory chain segment out of range: %d", idx)
		}
		seen[idx] = true
		block, err := codec.Read(f, FirstDataBlock+idx)
		if err != nil {
			return nil, errors.Wrapf(err, "read directory segment %d", idx)
		}
		d.segments[idx] = decodeSegment(block)
		d.loaded[idx] = true
		next := d.segments[idx].nextSegment
		if next == 0 {
			break
		}
		idx = next - 1
	}
	if err := d.validate(); err != nil {
		return nil, errors.Wrapf(ErrFormat, "read directory: %v", err)
	}
	return d, nil
}

// validate checks invariants 1-4 on every segment reached via the
// chain.
func (d *Directory) validate() error {
	order, err := d.chainOrder()
	if err != nil {
		return err
	}
	for _, idx := range order {
		s := d.segments[idx]
		if s.numberFiles == 0 {
			return errors.Wrapf(ErrInvariant, "segment %d: number_files is zero", idx)
		}
		if s.numberFiles >= 100 {
			return errors.Wrapf(ErrInvariant, "segment %d: |number_files|=%d >= 100", idx, s.numberFiles)
		}
		if s.additionalWords >= 10 {
			return errors.Wrapf(ErrInvariant, "segment %d: |additional_words|=%d >= 10", idx, s.additionalWords)
		}
		if s.nextSegment < 0 || s.nextSegment > DirectorySegments {
			return errors.Wrapf(ErrInvariant, "segment %d: next_segment out of range: %d", idx, s.nextSegment)
		}
		if s.flagWord != 0 && (s.flagWord < flagBase || s.flagWord > flagMax) {
			return errors.Wrapf(ErrInvariant, "segment %d: flag_word out of range: %04o", idx, s.flagWord)
		}
	}
	return nil
}

// MarkDirty marks segment idx for rewrite on the next Flush.
func (d *Directory) MarkDirty(idx int) {
	d.segments[idx].dirty = true
}

// Flush writes every dirty segment reached by the chain back to the
// host file, in chain order. On the first write failure it stops and
// reports the failure; the image may be left partially written.
func (d *Directory) Flush(f *os.File) error {
	if err := d.validate(); err != nil {
		return err
	}
	order, err := d.chainOrder()
	if err != nil {
		return err
	}
	for _, idx := range order {
		s := &d.segments[idx]
		if !s.dirty {
			continue
		}
		if err := d.codec.Write(f, FirstDataBlock+idx, s.encode()); err != nil {
			return errors.Wrapf(err, "flush segment %d (partial: prior segments already written)", idx)
		}
		s.dirty = false
	}
	return nil
}

// FlushAll writes every one of the six segment slots unconditionally,
// regardless of dirty marks or chain membership. Used only by Create,
// which must zero every directory block on media even though most of
// them are unreachable from segment 0's chain immediately afterward.
func (d *Directory) FlushAll(f *os.File) error {
	for i := 0; i < DirectorySegments; i++ {
		if err := d.codec.Write(f, FirstDataBlock+i, d.segments[i].encode()); err != nil {
			return errors.Wrapf(err, "create: write segment %d", i)
		}
		d.segments[i].dirty = false
	}
	return nil
}

// Segments returns the live chain in order, as a slice of segment
// indices.
func (d *Directory) Segments() ([]int, error) {
	return d.chainOrder()
}

// AllEntries returns every entry reached by the chain, in on-media
// order (chain order, then position within segment).
func (d *Directory) AllEntries() ([]Entry, error) {
	order, err := d.chainOrder()
	if err != nil {
		return nil, err
	}
	var all []Entry
	for _, idx := range order {
		all = append(all, d.segments[idx].entries(idx)...)
	}
	return all, nil
}

// TotalLength sums every entry's length across the chain; per
// invariant 6 this must equal Device.FilesystemSize().
func (d *Directory) TotalLength() (int, error) {
	entries, err := d.AllEntries()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, e := range entries {
		total += e.Length
	}
	return total, nil
}
