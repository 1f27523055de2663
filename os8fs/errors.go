// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import "github.com/pkg/errors"

// Error kinds for the directory engine. Callers distinguish them
// with errors.Is against these sentinels; wrapping
// (via github.com/pkg/errors) preserves the underlying cause while
// keeping the kind comparable.
var (
	// ErrIO covers short reads/writes, permission failures, and lock
	// contention.
	ErrIO = errors.New("i/o error")

	// ErrFormat covers a corrupted word, an invalid directory
	// invariant, or a directory chain pointing out of range.
	ErrFormat = errors.New("format error")

	// ErrResource covers an allocation that cannot be satisfied: no
	// empty entry of the requested size, or no free segment to
	// extend the chain.
	ErrResource = errors.New("resource exhausted")

	// ErrUsage covers illegal OS/8 names, wrong argument counts, and
	// destination-is-not-a-directory style caller mistakes.
	ErrUsage = errors.New("usage error")

	// ErrInvariant is a programmer error: a post-mutation invariant
	// failed. It is always fatal and is raised before any write.
	ErrInvariant = errors.New("invariant violation")
)

// ErrCorrupt is returned by a BlockCodec when a decoded word has any
// of its top five bits set.
var ErrCorrupt = errors.Wrap(ErrFormat, "corrupt word")

// ErrShortRead and ErrShortWrite are returned by a BlockCodec on a
// truncated positional read or write.
var (
	ErrShortRead  = errors.Wrap(ErrIO, "short read")
	ErrShortWrite = errors.Wrap(ErrIO, "short write")
)

// ErrNoSpace is returned by DirectoryEngine.Enter when no segment can
// be allocated to hold a new file entry.
var ErrNoSpace = errors.Wrap(ErrResource, "ENOSPC: no segment available")

// ErrNoFit is returned by GetEmptyEntry when no empty entry of the
// requested size exists.
var ErrNoFit = errors.Wrap(ErrResource, "no empty entry large enough")

// ErrZeroLengthFile is returned by FileStreamer.CopyIn for a zero-byte
// host source; treated as a usage error rather than a valid empty
// file.
var ErrZeroLengthFile = errors.Wrap(ErrUsage, "zero-length file")

// ErrNotFound is the sentinel kind for a name with no matching entry.
// Lookup and LookupAll report a miss through their results, not this
// error; no function in this package returns it.
var ErrNotFound = errors.New("not found")

// wrapf is a small local helper for annotating every I/O failure with
// enough context to locate it, built on github.com/pkg/errors instead
// of bare fmt.Errorf.
func wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
