// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import "fmt"

// Date decodes the optional date stamp OS/8 stores in a file entry's
// additional_words payload when additional_words == 1 (the common
// case). The directory engine never reads or depends on Date for any
// invariant; this is a read-only decoration for listings.
//
// Dates are packed MMMMDDDDDYYY: a 4-bit month, 5-bit day, 3-bit year
// offset from 1970, so only 1970..1977 are representable. A zero date
// means the file has no date stamp.
type Date uint16

var months = [...]string{
	"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// EntryDate decodes e's Date, or returns ok == false if e carries
// zero or more than one additional word (no unambiguous date field).
func EntryDate(e Entry) (Date, bool) {
	if e.Kind != KindFile || len(e.Extras) != 1 {
		return 0, false
	}
	return Date(e.Extras[0]), e.Extras[0] != 0
}

func (d Date) String() string {
	if d == 0 {
		return ""
	}
	month := int(d>>8) & 0xf
	day := int(d>>3) & 0x1f
	year := int(d & 07)
	name := "M?"
	if month >= 0 && month < len(months) {
		name = months[month]
	}
	return fmt.Sprintf("%02d-%s-%d", day, name, 1970+year)
}
