// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

// Package txt implements the external text transcoder that OS/8
// PIP-style text copies delegate to (os8fs's FileStreamer treats text
// files as an ordinary image copy of whatever bytes this package
// produces; it never inspects the bytes itself).
//
// Encoding a host text file for OS/8 prepends a carriage return
// before every line feed, sets the high "mark" bit (0x80) on every
// output byte, and appends a trailing ^Z (0x1A). Decoding reverses
// all three transformations.
package txt

import (
	"bufio"
	"io"
)

const (
	lf        = 0x0a
	cr        = 0x0d
	markBit   = 0x80
	endOfFile = 0x1a
)

// Encoder is a streaming host-to-OS/8 text encoder. It is a struct,
// not package-level state, so each copy gets its own Encoder
// instance and concurrent copies never share transcoding state.
type Encoder struct {
	w   *bufio.Writer
	out io.Writer
}

// NewEncoder returns an Encoder writing transcoded bytes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), out: w}
}

// Write transcodes p and writes it to the underlying writer. Every
// line feed byte receives a leading carriage return unconditionally:
// this is not only-before-the-first-newline, it is before every one.
func (e *Encoder) Write(p []byte) (int, error) {
	for _, c := range p {
		if c == lf {
			if err := e.w.WriteByte(cr | markBit); err != nil {
				return 0, err
			}
		}
		if err := e.w.WriteByte(c | markBit); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close appends the trailing ^Z and flushes any buffered bytes. It
// must be called exactly once, after the last Write.
func (e *Encoder) Close() error {
	if err := e.w.WriteByte(endOfFile | markBit); err != nil {
		return err
	}
	return e.w.Flush()
}

// Decoder is a streaming OS/8-to-host text decoder.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a Decoder reading transcoded bytes from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Read decodes bytes into p: the mark bit is stripped, a CR
// immediately followed by LF collapses to a bare LF, a CR not
// followed by LF passes through unstripped, and a ^Z (once its mark
// bit is stripped) ends the stream.
func (d *Decoder) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := d.r.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		c := b &^ markBit
		if c == endOfFile {
			// leave the ^Z unread so every later call reports io.EOF too
			d.r.UnreadByte()
			if n > 0 {
				return n, nil
			}
			return 0, io.EOF
		}
		if c == cr {
			next, err := d.r.Peek(1)
			if err == nil && next[0]&^markBit == lf {
				continue // drop the CR; the LF itself is emitted next iteration
			}
		}
		p[n] = c
		n++
	}
	return n, nil
}
