// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import (
	"fmt"
	"io"
)

// DumpBlock renders block as eight octal words per line (address
// prefix, then the words themselves) followed by their six-bit ASCII
// rendering. Useful for diagnosing block corruption errors.
func DumpBlock(w io.Writer, block Block) {
	for i := 0; i < BlockWords; i += 8 {
		fmt.Fprintf(w, "%07o:", i)
		for _, word := range block[i : i+4] {
			fmt.Fprintf(w, " %04o", uint16(word))
		}
		fmt.Fprint(w, " ")
		for _, word := range block[i+4 : i+8] {
			fmt.Fprintf(w, " %04o", uint16(word))
		}
		fmt.Fprint(w, "  ")
		for _, word := range block[i : i+8] {
			hi, lo := unpackWord(word)
			fmt.Fprintf(w, "%c%c", hi, lo)
		}
		fmt.Fprintln(w)
	}
}
