// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// A Pattern is a compiled OS/8 filename match: four six-bit match
// words and four six-bit mask words. A word in a candidate
// name matches when match_i == name_i (mod mask_i); a trailing '*' in
// the input zeroes the mask from that position through the end of its
// field (name or extension), making every word in the rest of that
// field a wildcard.
type Pattern struct {
	match [nameWords]Word
	mask  [nameWords]Word
}

// CompilePattern compiles a host-side name (optionally containing a
// trailing '*' in the name and/or extension field) into a Pattern.
// Names are restricted to 1..6 leading alnum characters (first
// alphabetic) with an optional '*' suffix, and an optional extension
// of 1..2 alnum characters with an optional '*' suffix. Either field
// may also be a bare '*', and the extension may be empty. Case is
// folded to uppercase before six-bit packing.
func CompilePattern(name string) (Pattern, error) {
	name = strings.ToUpper(name)
	base, ext := splitName(name)

	baseStar := strings.HasSuffix(base, "*")
	if baseStar {
		base = strings.TrimSuffix(base, "*")
	}
	extStar := strings.HasSuffix(ext, "*")
	if extStar {
		ext = strings.TrimSuffix(ext, "*")
	}

	minBase := 1
	if baseStar {
		minBase = 0 // a bare '*' name field matches any name
	}
	if err := validateField(base, minBase, 6, true); err != nil {
		return Pattern{}, errors.Wrapf(ErrUsage, "invalid name %q: %v", name, err)
	}
	if err := validateField(ext, 0, 2, false); err != nil {
		return Pattern{}, errors.Wrapf(ErrUsage, "invalid extension %q: %v", name, err)
	}

	var p Pattern
	baseChars := padTo(base, 6)
	extChars := padTo(ext, 2)

	p.match[0] = packWord(baseChars[0], baseChars[1])
	p.match[1] = packWord(baseChars[2], baseChars[3])
	p.match[2] = packWord(baseChars[4], baseChars[5])
	p.match[3] = packWord(extChars[0], extChars[1])
	for i := range p.mask {
		p.mask[i] = 07777
	}

	if baseStar {
		zeroMaskFrom(&p.mask, 0, len(base))
	}
	if extStar {
		zeroMaskFrom(&p.mask, 3, len(ext))
	}
	return p, nil
}

// zeroMaskFrom zeroes the mask bits covering characters from position
// charIndex (0-based within the field) through the end of the
// three-word name field (wordBase==0) or the one-word extension field
// (wordBase==3).
func zeroMaskFrom(mask *[nameWords]Word, wordBase, charIndex int) {
	if wordBase == 3 {
		zeroMaskChars(mask, 3, charIndex, 2)
		return
	}
	zeroMaskChars(mask, 0, charIndex, 6)
}

func zeroMaskChars(mask *[nameWords]Word, wordBase, charIndex, fieldLen int) {
	for c := charIndex; c < fieldLen; c++ {
		w := wordBase + c/2
		if c%2 == 0 {
			mask[w] &^= 07700
		} else {
			mask[w] &^= 00077
		}
	}
}

func validateField(s string, minLen, maxLen int, firstAlpha bool) error {
	if len(s) < minLen {
		return errors.Errorf("too short")
	}
	if len(s) > maxLen {
		return errors.Errorf("too long")
	}
	for i, r := range s {
		if !unicode.IsDigit(r) && !(r >= 'A' && r <= 'Z') {
			return errors.Errorf("invalid character %q", r)
		}
		if i == 0 && firstAlpha && !(r >= 'A' && r <= 'Z') {
			return errors.Errorf("must start with a letter")
		}
	}
	return nil
}

// Match reports whether name (four packed six-bit words) satisfies
// the pattern.
func (p Pattern) Match(name [nameWords]Word) bool {
	for i := 0; i < nameWords; i++ {
		if name[i]&p.mask[i] != p.match[i]&p.mask[i] {
			return false
		}
	}
	return true
}

// matchEntry reports whether e's name matches p. Matching folds case
// and compares the six-bit packed form, per invariant 7.
func (p Pattern) matchEntry(e Entry) bool {
	if e.Kind != KindFile {
		return false
	}
	words := packName(e.Name)
	return p.Match(words)
}
