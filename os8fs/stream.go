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

// firstDataAreaBlock is the first block number file data may occupy;
// blocks 0..6 are reserved for the boot block and the six directory
// segments.
const firstDataAreaBlock = FirstDataBlock + DirectorySegments

// checkDataBlock is a defensive bounds check: a BlockCodec write for
// file data must never land on a directory segment block.
func checkDataBlock(blockNo int) error {
	if blockNo < firstDataAreaBlock {
		return errors.Wrapf(ErrInvariant, "refusing to write file data to directory-region block %d", blockNo)
	}
	return nil
}

// wordsToBytes renders a Block as 512 host bytes, two little-endian
// bytes per word. This is the normalized "image" byte stream:
// independent of the source media's on-disk packing, a copied-out
// file's bytes are always two bytes per word.
func wordsToBytes(b Block) [512]byte {
	var raw [512]byte
	for i, w := range b {
		raw[i*2] = byte(w)
		raw[i*2+1] = byte(w >> 8)
	}
	return raw
}

// bytesToWords is the inverse of wordsToBytes.
func bytesToWords(raw [512]byte) Block {
	var b Block
	for i := range b {
		b[i] = Word(raw[i*2]) | Word(raw[i*2+1])<<8
	}
	return b
}

// FileStreamer copies blocks between an allocated OS/8 file region
// and a host byte stream. Text transcoding is delegated to an
// external txt.Encoder/txt.Decoder (see the txt package); FileStreamer
// itself only ever moves 512-byte-per-block "image" data.
type FileStreamer struct {
	f     *os.File
	codec BlockCodec
}

// NewFileStreamer returns a FileStreamer writing through codec to f.
func NewFileStreamer(f *os.File, codec BlockCodec) *FileStreamer {
	return &FileStreamer{f: f, codec: codec}
}

// CopyOut reads every block of entry and writes it to sink as 512
// host bytes per block (OS/8 → Host).
func (fs *FileStreamer) CopyOut(entry Entry, sink io.Writer) error {
	for i := 0; i < entry.Length; i++ {
		block, err := fs.codec.Read(fs.f, entry.FileBlock+i)
		if err != nil {
			return errors.Wrapf(err, "copy out %q: block %d", entry.Name, i)
		}
		raw := wordsToBytes(block)
		if _, err := sink.Write(raw[:]); err != nil {
			return errors.Wrapf(err, "copy out %q: write host block %d", entry.Name, i)
		}
	}
	return nil
}

// CopyIn computes the block count needed for sourceLen bytes,
// allocates an empty entry of that size, writes source's bytes
// block-by-block (zero-padding the final block), and enters the new
// file (Host → OS/8). sourceLen == 0 is a usage error.
func (fs *FileStreamer) CopyIn(eng *DirectoryEngine, name string, sourceLen int64, source io.Reader) (Entry, error) {
	if sourceLen == 0 {
		return Entry{}, ErrZeroLengthFile
	}
	blocks := int((sourceLen + 511) / 512)

	empty, err := eng.GetEmptyEntry(nil, blocks)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "copy in %q", name)
	}
	if err := checkDataBlock(empty.FileBlock); err != nil {
		return Entry{}, err
	}

	for i := 0; i < blocks; i++ {
		var raw [512]byte
		n, err := io.ReadFull(source, raw[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return Entry{}, errors.Wrapf(err, "copy in %q: read host block %d", name, i)
		}
		_ = n // short final block is zero-padded by the zero value of raw
		block := bytesToWords(raw)
		if err := fs.codec.Write(fs.f, empty.FileBlock+i, block); err != nil {
			return Entry{}, errors.Wrapf(err, "copy in %q: write block %d", name, i)
		}
	}

	return eng.Enter(name, blocks, empty)
}
