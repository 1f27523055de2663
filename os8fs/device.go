// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

// Format identifies one of the four on-media encodings supported by
// BlockCodec.
type Format int

const (
	// FormatDSK is the plain 256-word-per-block encoding, two bytes
	// per word, 512 bytes per OS/8 block.
	FormatDSK Format = iota
	// FormatDECtape is the DECtape 129-media-word-block encoding
	// (128 OS/8-visible words per media block, two media blocks per
	// OS/8 block).
	FormatDECtape
	// FormatRK05A is the first platter of an RK05 pack, 3:2 packed.
	FormatRK05A
	// FormatRK05B is the second platter of an RK05 pack, 3:2 packed,
	// offset by 3248 blocks from FormatRK05A.
	FormatRK05B
)

func (f Format) String() string {
	switch f {
	case FormatDSK:
		return "dsk"
	case FormatDECtape:
		return "dectape"
	case FormatRK05A:
		return "rk05a"
	case FormatRK05B:
		return "rk05b"
	default:
		return "unknown"
	}
}

// rk05PlatterBlocks is the fixed OS/8-block size of one RK05 platter.
const rk05PlatterBlocks = 3248

// Device describes the fixed geometry of an OS/8 filesystem image: how
// many OS/8 blocks the device has in total, and how many of them are
// usable filesystem space (everything from block 7 onward: block 0
// is reserved, blocks 1..6 are the directory).
type Device struct {
	Format      Format
	TotalBlocks int
}

// BytesPerBlock returns the number of host bytes one OS/8 block
// occupies under format f: 512 for DSK (2 bytes/word), 2*258=516 for
// DECtape (two 258-byte media blocks per OS/8 block), and 384
// for RK05 (3:2 packing, 3 bytes per 2 words).
func (f Format) BytesPerBlock() int {
	switch f {
	case FormatDECtape:
		return 2 * 258
	case FormatRK05A, FormatRK05B:
		return 384
	default:
		return 512
	}
}

// NewDevice returns the device geometry for format f given the host
// image's size in bytes. RK05 platters are fixed size regardless of
// the host file (both platters live in one host file); DSK and
// DECtape images are sized from the file itself.
func NewDevice(f Format, hostBytes int64) Device {
	switch f {
	case FormatRK05A, FormatRK05B:
		return Device{Format: f, TotalBlocks: rk05PlatterBlocks}
	default:
		return Device{Format: f, TotalBlocks: int(hostBytes) / f.BytesPerBlock()}
	}
}

// NewDeviceSized returns a device descriptor for format f sized to
// hold exactly totalBlocks OS/8 blocks; used by `create`, which picks
// a size rather than deriving one from an existing file.
func NewDeviceSized(f Format, totalBlocks int) Device {
	return Device{Format: f, TotalBlocks: totalBlocks}
}

// FirstDataBlock is the first block usable for directory or file
// data; block 0 is reserved.
const FirstDataBlock = 1

// DirectorySegments is the number of directory segment slots (blocks
// 1..6).
const DirectorySegments = 6

// FilesystemSize is the number of blocks available for directory
// entries and file data: everything from block 7 to the end of the
// device.
func (d Device) FilesystemSize() int {
	return d.TotalBlocks - 7
}

// LastBlock is the last valid OS/8 block number on the device.
func (d Device) LastBlock() int {
	return d.TotalBlocks - 1
}
