// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

// A Cursor is a stateful walk over a Directory's entries. It carries
// (segment index, word offset) indices rather than raw pointers, so
// the Directory backing it can be mutated between calls without
// invalidating the cursor.
type Cursor struct {
	dir *Directory

	segIndex int // current segment
	wordPtr  int // offset into the current segment's entryWords
	fileNo   int // 1-based logical file number within segIndex
	running  int // running first-block total for the current segment
	done     bool
}

// NewCursor returns a Cursor positioned at the first entry of the
// directory's first segment (block 1).
func NewCursor(d *Directory) *Cursor {
	c := &Cursor{dir: d}
	c.resetTo(0)
	return c
}

func (c *Cursor) resetTo(segIndex int) {
	c.segIndex = segIndex
	c.wordPtr = 0
	c.fileNo = 1
	c.running = c.dir.segments[segIndex].firstFileBlock
}

// Done reports whether the walk has passed the last entry of the
// last segment in the chain.
func (c *Cursor) Done() bool {
	return c.done
}

// Peek decodes the entry at the cursor's current position without
// advancing. The returned bool is false once the walk is exhausted.
func (c *Cursor) Peek() (Entry, bool) {
	if c.done {
		return Entry{}, false
	}
	s := &c.dir.segments[c.segIndex]
	if c.fileNo > s.numberFiles {
		return Entry{}, false
	}
	e, _ := decodeEntry(s.entryWords[:], c.wordPtr, s.additionalWords)
	e.SegIndex = c.segIndex
	e.FileNumber = c.fileNo
	e.FileBlock = c.running
	return e, true
}

// Advance moves the cursor past the current entry, following
// next_segment when the current segment is exhausted.
func (c *Cursor) Advance() {
	if c.done {
		return
	}
	s := &c.dir.segments[c.segIndex]
	if c.fileNo > s.numberFiles {
		c.done = true
		return
	}
	e, n := decodeEntry(s.entryWords[:], c.wordPtr, s.additionalWords)
	c.wordPtr += n
	c.fileNo++
	c.running += e.Length

	if c.fileNo > s.numberFiles {
		next := s.nextSegment
		if next == 0 {
			c.done = true
			return
		}
		c.resetTo(next - 1)
	}
}
