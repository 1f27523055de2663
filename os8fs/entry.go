// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import "strings"

// nameWords is the number of six-bit-packed words a file entry spends
// on its name: three for the filename, one for the extension.
const nameWords = 4

// EntryKind distinguishes the two entry shapes a directory segment
// can hold. This is a closed variant: callers switch on Kind rather
// than testing for a
// sentinel name.
type EntryKind int

const (
	// KindEmpty marks free space: a single zero word followed by a
	// negated length.
	KindEmpty EntryKind = iota
	// KindFile marks a live file: name words, additional words, and
	// a negated length.
	KindFile
)

// Entry is a view of one directory entry, either Empty or File. It
// carries enough location data (SegIndex, WordOffset, FileNumber) to
// be resubmitted to DirectoryEngine within the same transaction, but
// must not outlive the Directory it was read from.
type Entry struct {
	Kind EntryKind

	// Name is the dotted OS/8 name ("FOO.BN"); valid only for
	// KindFile.
	Name string
	// Extras holds the entry's additional_words payload verbatim
	// (treated as opaque by the engine; may encode a Date); valid
	// only for KindFile.
	Extras []Word

	// Length is the entry's decoded, positive block count.
	Length int
	// FileBlock is the entry's computed starting block: the
	// segment's first_file_block plus the lengths of every
	// preceding entry in the segment.
	FileBlock int

	// SegIndex is the owning segment's index (0..5).
	SegIndex int
	// WordOffset is the entry's starting word offset within the
	// segment's entry area (offset 0 is the first entry, at word 5
	// of the block).
	WordOffset int
	// FileNumber is the entry's 1-based position within the
	// segment's entry list, used by GetEmptyEntry's exclude
	// parameter.
	FileNumber int
}

// wordCount returns how many segment words this entry occupies on
// media.
func (e Entry) wordCount(additionalWords int) int {
	if e.Kind == KindEmpty {
		return 2
	}
	return nameWords + additionalWords + 1
}

// decodeEntry decodes one entry from seg starting at word offset off,
// given the segment's additional_words count (ignored for empty
// entries, which never carry extras). It returns the entry and the
// number of words it consumed.
func decodeEntry(seg []Word, off, additionalWords int) (Entry, int) {
	if seg[off] == 0 {
		length := magnitude(seg[off+1])
		return Entry{Kind: KindEmpty, Length: length, WordOffset: off}, 2
	}
	name := unpackName(seg[off : off+nameWords])
	extras := append([]Word(nil), seg[off+nameWords:off+nameWords+additionalWords]...)
	lengthOff := off + nameWords + additionalWords
	length := magnitude(seg[lengthOff])
	n := nameWords + additionalWords + 1
	return Entry{
		Kind:       KindFile,
		Name:       name,
		Extras:     extras,
		Length:     length,
		WordOffset: off,
	}, n
}

// encodeEntry writes e into seg at e.WordOffset, given the segment's
// additional_words count. The caller must ensure seg has room.
func encodeEntry(seg []Word, e Entry, additionalWords int) {
	off := e.WordOffset
	if e.Kind == KindEmpty {
		seg[off] = 0
		seg[off+1] = negate(e.Length)
		return
	}
	copy(seg[off:off+nameWords], packName(e.Name))
	extras := e.Extras
	if len(extras) < additionalWords {
		padded := make([]Word, additionalWords)
		copy(padded, extras)
		extras = padded
	}
	copy(seg[off+nameWords:off+nameWords+additionalWords], extras[:additionalWords])
	seg[off+nameWords+additionalWords] = negate(e.Length)
}

// packName packs a dotted OS/8 name ("FOO.BN") into the four on-media
// name words: three for up to six filename characters, one for up to
// two extension characters. Missing characters pack as zero words,
// which decode back to '@'.
func packName(name string) [nameWords]Word {
	base, ext := splitName(name)
	base = padTo(base, 6)
	ext = padTo(ext, 2)
	var w [nameWords]Word
	w[0] = packWord(base[0], base[1])
	w[1] = packWord(base[2], base[3])
	w[2] = packWord(base[4], base[5])
	w[3] = packWord(ext[0], ext[1])
	return w
}

// unpackName is the inverse of packName, trimming the '@' padding
// characters.
func unpackName(w []Word) string {
	var b strings.Builder
	for _, word := range w[:3] {
		hi, lo := unpackWord(word)
		if hi == '@' {
			break
		}
		b.WriteByte(hi)
		if lo == '@' {
			break
		}
		b.WriteByte(lo)
	}
	hi, lo := unpackWord(w[3])
	if hi != '@' {
		b.WriteByte('.')
		b.WriteByte(hi)
		if lo != '@' {
			b.WriteByte(lo)
		}
	}
	return b.String()
}

func splitName(name string) (base, ext string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func padTo(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat("@", n-len(s))
}
