// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

package os8fs

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// lockImage takes a non-blocking advisory exclusive lock on f: the
// host image is acquired with an advisory exclusive lock at open;
// failure to acquire aborts the operation rather than blocking.
func lockImage(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return errors.Wrapf(ErrIO, "lock %s: %v", f.Name(), err)
	}
	return nil
}

// unlockImage releases the advisory lock taken by lockImage.
func unlockImage(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
