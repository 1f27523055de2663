// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import "github.com/pkg/errors"

// DirectoryEngine performs every directory mutation: lookup, best-fit
// empty-entry search, delete, enter (with cross-segment shuffle and
// segment allocation), and consolidation. It is the sole component
// permitted to mutate a Directory's segments.
type DirectoryEngine struct {
	dir *Directory
}

// NewEngine returns a DirectoryEngine operating on dir.
func NewEngine(dir *Directory) *DirectoryEngine {
	return &DirectoryEngine{dir: dir}
}

// Lookup walks c forward, skipping empty entries and zero-length file
// entries, and returns the next entry matching p. Repeated calls with
// the same cursor yield successive matches in on-media order.
func (eng *DirectoryEngine) Lookup(c *Cursor, p Pattern) (Entry, bool) {
	for {
		e, ok := c.Peek()
		if !ok {
			return Entry{}, false
		}
		c.Advance()
		if e.Kind != KindFile || e.Length == 0 {
			continue
		}
		if p.matchEntry(e) {
			return e, true
		}
	}
}

// GetEmptyEntry performs the MENTER-style best-fit search across
// every segment in the chain. exclude, if non-nil, identifies
// an entry (by SegIndex/FileNumber) to skip — used to avoid reusing
// the empty produced by a just-deleted file before it is overwritten.
// requestedLength == 0 asks for the largest qualifying empty;
// otherwise the strictly smallest qualifying empty is returned.
func (eng *DirectoryEngine) GetEmptyEntry(exclude *Entry, requestedLength int) (Entry, error) {
	entries, err := eng.dir.AllEntries()
	if err != nil {
		return Entry{}, err
	}
	var best Entry
	found := false
	for _, e := range entries {
		if e.Kind != KindEmpty {
			continue
		}
		if exclude != nil && e.SegIndex == exclude.SegIndex && e.FileNumber == exclude.FileNumber {
			continue
		}
		if e.Length < requestedLength {
			continue
		}
		switch {
		case !found:
			best, found = e, true
		case requestedLength == 0 && e.Length > best.Length:
			best = e
		case requestedLength != 0 && e.Length < best.Length:
			best = e
		}
	}
	if !found {
		return Entry{}, errors.Wrapf(ErrNoFit, "requested %d blocks", requestedLength)
	}
	return best, nil
}

// Delete removes e from its segment: the entry's slot collapses to a
// two-word empty entry (zero word + original length), everything
// after it shifts down to close the gap, and the tentative flag_word
// is adjusted if it pointed beyond the deleted entry.
func (eng *DirectoryEngine) Delete(e Entry) error {
	if e.Kind != KindFile {
		return errors.Wrapf(ErrUsage, "delete: entry %q is not a file", e.Name)
	}
	seg := &eng.dir.segments[e.SegIndex]
	entries := seg.entries(e.SegIndex)
	idx := e.FileNumber - 1
	if idx < 0 || idx >= len(entries) {
		return errors.Wrapf(ErrInvariant, "delete: file number %d out of range in segment %d", e.FileNumber, e.SegIndex)
	}

	fileWords := entries[idx].wordCount(seg.additionalWords)
	emptyWords := 2
	deletedOffset := headerWords + entries[idx].WordOffset

	entries[idx] = Entry{Kind: KindEmpty, Length: entries[idx].Length}

	if seg.flagWord != 0 {
		flagAbs := seg.flagWord - flagBase
		if flagAbs > deletedOffset {
			delta := fileWords - emptyWords
			newAbs := flagAbs - delta
			if newAbs > flagMax-flagBase || newAbs < 0 {
				seg.flagWord = 0
			} else {
				seg.flagWord = flagBase + newAbs
			}
		}
	}

	seg.setEntries(entries)
	seg.dirty = true
	return nil
}

// migrateLast evicts the physically last entry in segment targetIdx
// and prepends it to the segment's successor, allocating a fresh
// segment if none exists yet. It returns the migrated
// entry as it was positioned before the move (so the caller can check
// whether it was the entry it is tracking) and the index of the
// segment it was moved into.
func (eng *DirectoryEngine) migrateLast(targetIdx int) (migrated Entry, successorIdx int, err error) {
	dir := eng.dir
	target := &dir.segments[targetIdx]
	entries := target.entries(targetIdx)
	if len(entries) == 0 {
		return Entry{}, 0, errors.Wrapf(ErrInvariant, "segment %d has no entries to migrate", targetIdx)
	}
	last := entries[len(entries)-1]
	target.setEntries(entries[:len(entries)-1])
	target.dirty = true

	if target.nextSegment == 0 {
		newIdx := targetIdx + 1
		if newIdx >= DirectorySegments {
			return Entry{}, 0, ErrNoSpace
		}
		dir.segments[newIdx] = segment{
			firstFileBlock:  last.FileBlock + last.Length,
			additionalWords: target.additionalWords,
		}
		dir.segments[newIdx].setEntries([]Entry{{Kind: KindEmpty, Length: 0}})
		dir.loaded[newIdx] = true
		target.nextSegment = newIdx + 1
		successorIdx = newIdx
	} else {
		successorIdx = target.nextSegment - 1
	}

	successor := &dir.segments[successorIdx]
	successor.firstFileBlock -= last.Length
	succEntries := append([]Entry{last}, successor.entries(successorIdx)...)
	successor.setEntries(succEntries)
	successor.dirty = true

	return last, successorIdx, nil
}

// Enter stamps a new file entry named name, occupying actualLength
// blocks, into the empty entry previously returned by GetEmptyEntry
// for this transaction. It performs the cross-segment shuffle if the
// target segment lacks room, reserves and stamps the entry, shrinks
// the trailing empty, and runs Consolidate.
func (eng *DirectoryEngine) Enter(name string, actualLength int, empty Entry) (Entry, error) {
	if empty.Kind != KindEmpty {
		return Entry{}, errors.Wrap(ErrUsage, "enter: target is not an empty entry")
	}
	if actualLength <= 0 {
		return Entry{}, errors.Wrap(ErrUsage, "enter: non-positive length")
	}
	if actualLength > empty.Length {
		return Entry{}, errors.Wrapf(ErrInvariant, "enter: requested %d exceeds empty entry length %d", actualLength, empty.Length)
	}

	additionalWords := eng.dir.segments[empty.SegIndex].additionalWords
	newEntryLength := nameWords + additionalWords + 1
	// min_free is a word budget, not a block count: room for the new
	// file entry plus room to retain at least a minimal (2-word)
	// empty entry, so the segment is never left exactly full (USR
	// compatibility: never completely fill a segment).
	const emptyEntryWordLen = 2
	minFree := newEntryLength + emptyEntryWordLen

	cur := empty
	for {
		target := &eng.dir.segments[cur.SegIndex]
		if target.freeWords() >= minFree {
			break
		}
		trackedSeg, trackedOffset := cur.SegIndex, cur.WordOffset
		migrated, successorIdx, err := eng.migrateLast(cur.SegIndex)
		if err != nil {
			return Entry{}, err
		}
		if migrated.Kind == KindEmpty && migrated.WordOffset == trackedOffset && trackedSeg == cur.SegIndex {
			cur.SegIndex = successorIdx
			cur.WordOffset = 0
			cur.FileNumber = 1
			cur.FileBlock = eng.dir.segments[successorIdx].firstFileBlock
		}
	}
	empty = cur

	target := &eng.dir.segments[empty.SegIndex]
	entries := target.entries(empty.SegIndex)
	idx := empty.FileNumber - 1
	if idx < 0 || idx >= len(entries) {
		return Entry{}, errors.Wrapf(ErrInvariant, "enter: empty entry position %d out of range", empty.FileNumber)
	}
	emptyAbsBeforeShift := headerWords + entries[idx].WordOffset

	newFile := Entry{Kind: KindFile, Name: name, Extras: make([]Word, additionalWords), Length: actualLength}
	shrunk := Entry{Kind: KindEmpty, Length: entries[idx].Length - actualLength}

	newEntries := make([]Entry, 0, len(entries)+1)
	newEntries = append(newEntries, entries[:idx]...)
	newEntries = append(newEntries, newFile, shrunk)
	newEntries = append(newEntries, entries[idx+1:]...)
	target.setEntries(newEntries)

	if target.flagWord != 0 {
		flagAbs := target.flagWord - flagBase
		if flagAbs >= emptyAbsBeforeShift {
			newAbs := flagAbs + newEntryLength
			if newAbs > flagMax-flagBase {
				target.flagWord = 0
			} else {
				target.flagWord = flagBase + newAbs
			}
		}
	}
	target.dirty = true

	if err := eng.Consolidate(); err != nil {
		return Entry{}, err
	}
	if err := eng.dir.validate(); err != nil {
		return Entry{}, err
	}

	final := target.entries(empty.SegIndex)
	return final[idx], nil
}

// consolidateSegmentEntries merges adjacent empties and drops
// zero-length empties (unless the segment would be left with no
// entries at all). It is idempotent.
func consolidateSegmentEntries(entries []Entry) []Entry {
	changed := true
	for changed {
		changed = false
		for i := 0; i+1 < len(entries); i++ {
			if entries[i].Kind == KindEmpty && entries[i+1].Kind == KindEmpty {
				entries[i].Length += entries[i+1].Length
				entries = append(entries[:i+1], entries[i+2:]...)
				changed = true
				break
			}
		}
		if changed {
			continue
		}
		if len(entries) > 1 {
			for i, e := range entries {
				if e.Kind == KindEmpty && e.Length == 0 {
					entries = append(entries[:i], entries[i+1:]...)
					changed = true
					break
				}
			}
		}
	}
	return entries
}

// Consolidate runs one merge pass over every segment in the chain.
// It never merges empties across segments (intentional USR
// compatibility).
func (eng *DirectoryEngine) Consolidate() error {
	order, err := eng.dir.chainOrder()
	if err != nil {
		return err
	}
	for _, idx := range order {
		seg := &eng.dir.segments[idx]
		before := seg.entries(idx)
		after := consolidateSegmentEntries(before)
		if len(after) != len(before) {
			seg.setEntries(after)
			seg.dirty = true
		}
	}
	return nil
}

// ZeroFilesystem resets the directory to a single free-space entry
// spanning from segment 0's current first_file_block to the end of
// the device, preserving any pre-directory system-image blocks.
// Segments 1..5 become unreachable and are left unrewritten.
func (eng *DirectoryEngine) ZeroFilesystem() error {
	seg0 := &eng.dir.segments[0]
	length := eng.dir.Device.TotalBlocks - seg0.firstFileBlock
	if length < 0 {
		return errors.Wrapf(ErrInvariant, "zero: device too small for first_file_block %d", seg0.firstFileBlock)
	}
	seg0.nextSegment = 0
	seg0.flagWord = 0
	seg0.setEntries([]Entry{{Kind: KindEmpty, Length: length}})
	seg0.dirty = true
	for i := 1; i < DirectorySegments; i++ {
		eng.dir.loaded[i] = false
	}
	return nil
}

// CreateFilesystem returns a brand-new Directory: every segment
// zeroed except segment 0, which holds a single empty entry spanning
// the full filesystem size starting at block 7.
func CreateFilesystem(device Device, codec BlockCodec, additionalWords int) *Directory {
	dir := &Directory{Device: device, codec: codec}
	for i := range dir.segments {
		dir.segments[i] = segment{additionalWords: additionalWords}
		dir.loaded[i] = i == 0
		dir.segments[i].dirty = true
	}
	dir.segments[0].firstFileBlock = 7
	dir.segments[0].setEntries([]Entry{{Kind: KindEmpty, Length: device.FilesystemSize()}})
	return dir
}
