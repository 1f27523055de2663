// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// A BlockCodec converts between host bytes at a byte offset and a
// 256-word OS/8 Block. There is one implementation per on-media
// format; all four address the same kind of host handle (*os.File)
// but differ in byte layout and the offset formula.
type BlockCodec interface {
	// Read decodes OS/8 block blockNo from the host file.
	Read(f *os.File, blockNo int) (Block, error)
	// Write encodes block and writes it as OS/8 block blockNo.
	Write(f *os.File, blockNo int, block Block) error
	// Format identifies which encoding this codec implements.
	Format() Format
}

// CodecFor returns the BlockCodec for format f.
func CodecFor(f Format) BlockCodec {
	switch f {
	case FormatDECtape:
		return dectapeCodec{}
	case FormatRK05A:
		return rk05Codec{side: FormatRK05A}
	case FormatRK05B:
		return rk05Codec{side: FormatRK05B}
	default:
		return dskCodec{}
	}
}

// dskCodec implements the plain 256-word block encoding: two
// little-endian bytes per word, 512 bytes per block, at
// blockNo*512.
type dskCodec struct{}

func (dskCodec) Format() Format { return FormatDSK }

func (dskCodec) Read(f *os.File, blockNo int) (Block, error) {
	var raw [512]byte
	n, err := f.ReadAt(raw[:], int64(blockNo)*512)
	if err != nil && err != io.EOF {
		return Block{}, wrapf(ErrIO, "dsk: read block %d: %v", blockNo, err)
	}
	if n < 512 {
		return Block{}, errors.Wrapf(ErrShortRead, "dsk: block %d: got %d of 512 bytes", blockNo, n)
	}
	var b Block
	for i := 0; i < BlockWords; i++ {
		w := Word(raw[i*2]) | Word(raw[i*2+1])<<8
		if corrupt(w) {
			return Block{}, errors.Wrapf(ErrCorrupt, "dsk: block %d word %d (%04o)", blockNo, i, uint16(w))
		}
		b[i] = w
	}
	return b, nil
}

func (dskCodec) Write(f *os.File, blockNo int, block Block) error {
	var raw [512]byte
	for i, w := range block {
		if corrupt(w) {
			return errors.Wrapf(ErrCorrupt, "dsk: write block %d word %d (%04o)", blockNo, i, uint16(w))
		}
		raw[i*2] = byte(w)
		raw[i*2+1] = byte(w >> 8)
	}
	n, err := f.WriteAt(raw[:], int64(blockNo)*512)
	if err != nil {
		return wrapf(ErrIO, "dsk: write block %d: %v", blockNo, err)
	}
	if n < 512 {
		return errors.Wrapf(ErrShortWrite, "dsk: block %d: wrote %d of 512 bytes", blockNo, n)
	}
	return nil
}

// dectapeCodec implements the DECtape encoding: 129-word media
// blocks of which only the first 128 are OS/8-visible, so one OS/8
// block occupies two consecutive 258-byte media blocks (128 words =
// 256 bytes, plus 2 padding bytes, per media block).
type dectapeCodec struct{}

func (dectapeCodec) Format() Format { return FormatDECtape }

const dectapeMediaBlockBytes = 258 // 128 words * 2 bytes + 2 pad bytes

func (dectapeCodec) Read(f *os.File, blockNo int) (Block, error) {
	var raw [2 * dectapeMediaBlockBytes]byte
	off := int64(blockNo) * 2 * dectapeMediaBlockBytes
	n, err := f.ReadAt(raw[:], off)
	if err != nil && err != io.EOF {
		return Block{}, wrapf(ErrIO, "dectape: read block %d: %v", blockNo, err)
	}
	if n < len(raw) {
		return Block{}, errors.Wrapf(ErrShortRead, "dectape: block %d: got %d of %d bytes", blockNo, n, len(raw))
	}
	var b Block
	for half := 0; half < 2; half++ {
		base := half * dectapeMediaBlockBytes
		for i := 0; i < 128; i++ {
			w := Word(raw[base+i*2]) | Word(raw[base+i*2+1])<<8
			if corrupt(w) {
				return Block{}, errors.Wrapf(ErrCorrupt, "dectape: block %d word %d (%04o)", blockNo, half*128+i, uint16(w))
			}
			b[half*128+i] = w
		}
	}
	return b, nil
}

func (dectapeCodec) Write(f *os.File, blockNo int, block Block) error {
	var raw [2 * dectapeMediaBlockBytes]byte
	for half := 0; half < 2; half++ {
		base := half * dectapeMediaBlockBytes
		for i := 0; i < 128; i++ {
			w := block[half*128+i]
			if corrupt(w) {
				return errors.Wrapf(ErrCorrupt, "dectape: write block %d word %d (%04o)", blockNo, half*128+i, uint16(w))
			}
			raw[base+i*2] = byte(w)
			raw[base+i*2+1] = byte(w >> 8)
		}
		// last two bytes of each 258-byte media block are padding.
		raw[base+256] = 0
		raw[base+257] = 0
	}
	off := int64(blockNo) * 2 * dectapeMediaBlockBytes
	n, err := f.WriteAt(raw[:], off)
	if err != nil {
		return wrapf(ErrIO, "dectape: write block %d: %v", blockNo, err)
	}
	if n < len(raw) {
		return errors.Wrapf(ErrShortWrite, "dectape: block %d: wrote %d of %d bytes", blockNo, n, len(raw))
	}
	return nil
}

// rk05Codec implements the RK05 3:2-packed encoding shared by both
// platters; side selects the +3248 block offset for the B platter.
type rk05Codec struct {
	side Format // FormatRK05A or FormatRK05B
}

func (c rk05Codec) Format() Format { return c.side }

func (c rk05Codec) platterOffset() int {
	if c.side == FormatRK05B {
		return rk05PlatterBlocks
	}
	return 0
}

func (c rk05Codec) Read(f *os.File, blockNo int) (Block, error) {
	var raw [384]byte
	off := int64(blockNo+c.platterOffset()) * 384
	n, err := f.ReadAt(raw[:], off)
	if err != nil && err != io.EOF {
		return Block{}, wrapf(ErrIO, "rk05: read block %d: %v", blockNo, err)
	}
	if n < 384 {
		return Block{}, errors.Wrapf(ErrShortRead, "rk05: block %d: got %d of 384 bytes", blockNo, n)
	}
	var b Block
	for i := 0; i < 128; i++ {
		b0, b1, b2 := raw[i*3], raw[i*3+1], raw[i*3+2]
		w1 := Word(b0)<<4 | Word(b1>>4)
		w2 := Word(b1&0x0f)<<8 | Word(b2)
		if corrupt(w1) {
			return Block{}, errors.Wrapf(ErrCorrupt, "rk05: block %d word %d (%04o)", blockNo, i*2, uint16(w1))
		}
		if corrupt(w2) {
			return Block{}, errors.Wrapf(ErrCorrupt, "rk05: block %d word %d (%04o)", blockNo, i*2+1, uint16(w2))
		}
		b[i*2] = w1
		b[i*2+1] = w2
	}
	return b, nil
}

func (c rk05Codec) Write(f *os.File, blockNo int, block Block) error {
	var raw [384]byte
	for i := 0; i < 128; i++ {
		w1, w2 := block[i*2], block[i*2+1]
		if corrupt(w1) {
			return errors.Wrapf(ErrCorrupt, "rk05: write block %d word %d (%04o)", blockNo, i*2, uint16(w1))
		}
		if corrupt(w2) {
			return errors.Wrapf(ErrCorrupt, "rk05: write block %d word %d (%04o)", blockNo, i*2+1, uint16(w2))
		}
		raw[i*3] = byte(w1 >> 4)
		raw[i*3+1] = byte(w1<<4) | byte(w2>>8)
		raw[i*3+2] = byte(w2)
	}
	off := int64(blockNo+c.platterOffset()) * 384
	n, err := f.WriteAt(raw[:], off)
	if err != nil {
		return wrapf(ErrIO, "rk05: write block %d: %v", blockNo, err)
	}
	if n < 384 {
		return errors.Wrapf(ErrShortWrite, "rk05: block %d: wrote %d of 384 bytes", blockNo, n)
	}
	return nil
}
