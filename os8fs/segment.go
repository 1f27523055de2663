// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

// headerWords is the fixed-size segment header: number_files,
// first_file_block, next_segment, flag_word, additional_words.
const headerWords = 5

// flagBase is the flag_word value that targets word 0 of the segment
// block: flag_word - flagBase is the tentative entry's word index
// within the block.
const flagBase = 01400

// flagMax is the largest legal flag_word value.
const flagMax = 01777

// segment is the in-memory form of one 256-word directory block.
type segment struct {
	numberFiles     int // decoded positive entry count
	firstFileBlock  int
	nextSegment     int // 0 terminates the chain
	flagWord        int // 0, or 01400..01777
	additionalWords int // decoded positive extra-word count

	// entryWords holds words 5..255 as written on media (only the
	// first used portion is meaningful; decodeEntries walks it using
	// numberFiles).
	entryWords [BlockWords - headerWords]Word

	dirty bool
}

// decodeSegment decodes a raw 256-word block into a segment. It does
// not validate invariants; callers run validate separately (on read,
// before every write, and after every enter).
func decodeSegment(b Block) segment {
	var s segment
	s.numberFiles = magnitude(b[0])
	s.firstFileBlock = int(b[1])
	s.nextSegment = int(b[2])
	s.flagWord = int(b[3])
	s.additionalWords = magnitude(b[4])
	copy(s.entryWords[:], b[headerWords:])
	return s
}

// encode packs the segment back into a raw 256-word block.
func (s segment) encode() Block {
	var b Block
	b[0] = negate(s.numberFiles)
	b[1] = Word(s.firstFileBlock)
	b[2] = Word(s.nextSegment)
	b[3] = Word(s.flagWord)
	b[4] = negate(s.additionalWords)
	copy(b[headerWords:], s.entryWords[:])
	return b
}

// entries decodes every entry in the segment in on-media order,
// stamping SegIndex, FileNumber, and FileBlock (computed by walking
// running length totals starting from firstFileBlock).
func (s segment) entries(segIndex int) []Entry {
	entries := make([]Entry, 0, s.numberFiles)
	off := 0
	running := s.firstFileBlock
	for i := 1; i <= s.numberFiles; i++ {
		e, n := decodeEntry(s.entryWords[:], off, s.additionalWords)
		e.SegIndex = segIndex
		e.FileNumber = i
		e.FileBlock = running
		entries = append(entries, e)
		off += n
		running += e.Length
	}
	return entries
}

// usedWords returns how many of the 251 available entry words are
// currently occupied by the segment's numberFiles entries.
func (s segment) usedWords() int {
	n := 0
	off := 0
	for i := 0; i < s.numberFiles; i++ {
		e, consumed := decodeEntry(s.entryWords[:], off, s.additionalWords)
		_ = e
		n += consumed
		off += consumed
	}
	return n
}

// freeWords returns how many entry words remain unused at the tail of
// the segment.
func (s segment) freeWords() int {
	return len(s.entryWords) - s.usedWords()
}

// lastEntry returns the final entry in the segment, if any.
func (s segment) lastEntry(segIndex int) (Entry, bool) {
	entries := s.entries(segIndex)
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[len(entries)-1], true
}

// setEntries replaces the segment's entry list with entries (in
// order), recomputing numberFiles and packing entryWords tightly from
// offset 0. Entries' WordOffset/FileNumber/FileBlock fields are
// recomputed to match.
func (s *segment) setEntries(entries []Entry) {
	var words [BlockWords - headerWords]Word
	off := 0
	for i := range entries {
		entries[i].WordOffset = off
		entries[i].FileNumber = i + 1
		encodeEntry(words[:], entries[i], s.additionalWords)
		off += entries[i].wordCount(s.additionalWords)
	}
	s.entryWords = words
	s.numberFiles = len(entries)
}
