// Copyright 2017 Paul Borman
// Use of this source code is governed by a Apache-style
// license found in the LICENSE file.  It also can be found at
// https://github.com/pborman/pdp8/blob/master/LICENSE

// Program os8pip is a PIP-style copier for OS/8 filesystem images: it
// lists, extracts, ingests, deletes, zeroes, and creates OS/8
// directories on DECtape, plain 256-word, and RK05 3:2-packed device
// images.
//
// Usage:
//
//	os8pip --os8 PATH [--rk05|--tu56|--dt8|--dsk] [--rka|--rkb] SPEC...
//
// An OS/8-side file spec is written with an "os8:" prefix, e.g.
// "os8:foo.bn"; the copy direction is inferred from which side of the
// spec carries that prefix.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pborman/getopt"

	"github.com/dhogaza/os8pip/os8fs"
	"github.com/dhogaza/os8pip/txt"
)

func exit(v ...interface{}) {
	fmt.Fprintln(os.Stderr, v...)
	os.Exit(1)
}

// exitErr reports err and exits with a code that distinguishes its
// error kind (os8fs.ErrUsage, ErrNotFound, ErrIO, ErrFormat/
// ErrInvariant, ErrResource), using errors.Is against the engine's
// sentinels rather than a bare exit(1) for every failure.
func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitCodeFor(err))
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, os8fs.ErrUsage):
		return 2
	case errors.Is(err, os8fs.ErrNotFound):
		return 3
	case errors.Is(err, os8fs.ErrFormat), errors.Is(err, os8fs.ErrInvariant):
		return 4
	case errors.Is(err, os8fs.ErrResource):
		return 5
	case errors.Is(err, os8fs.ErrIO):
		return 6
	default:
		return 1
	}
}

func exitf(format string, v ...interface{}) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Fprintf(os.Stderr, format, v...)
	os.Exit(1)
}

const os8Prefix = "os8:"

func main() {
	getopt.SetParameters("[os8:]SPEC ...")

	image := getopt.String("o/os8", "", "path to the OS/8 image")
	rk05 := getopt.Bool("rk05", "use RK05 3:2-packed block encoding")
	tu56 := getopt.Bool("tu56", "use DECtape block encoding")
	dt8 := getopt.Bool("dt8", "use DECtape block encoding (alias for --tu56)")
	dsk := getopt.Bool("dsk", "use plain 256-word block encoding (default)")
	rka := getopt.Bool("rka", "use RK05 platter A")
	rkb := getopt.Bool("rkb", "use RK05 platter B")

	dirVerb := getopt.Bool("dir", "list the directory")
	empties := getopt.Bool("empties", "include free-space runs in the listing")
	columns := getopt.Int("columns", 1, "number of listing columns")

	deleteVerb := getopt.Bool("delete", "delete files matching the given patterns")
	quiet := getopt.Bool("quiet", "no per-file delete report; only the count of deleted files is printed")

	createVerb := getopt.Bool("create", "create a fresh OS/8 filesystem")
	existsFlag := getopt.Bool("exists", "with --create: write nothing to the image")

	zeroVerb := getopt.Bool("zero", "reset the directory to a single empty entry")

	getopt.Parse()
	args := getopt.Args()

	if *image == "" {
		exit("os8pip: --os8 PATH is required")
	}
	format := resolveFormat(*rk05, *tu56, *dt8, *dsk, *rka, *rkb)

	switch {
	case *createVerb:
		runCreate(*image, format, *existsFlag)
	case *zeroVerb:
		runZero(*image, format)
	case *dirVerb:
		runDir(*image, format, args, *empties, *columns)
	case *deleteVerb:
		runDelete(*image, format, args, *quiet)
	default:
		runCopy(*image, format, args)
	}
}

func resolveFormat(rk05, tu56, dt8, dsk, rka, rkb bool) os8fs.Format {
	switch {
	case rka:
		return os8fs.FormatRK05A
	case rkb:
		return os8fs.FormatRK05B
	case rk05:
		return os8fs.FormatRK05A
	case tu56, dt8:
		return os8fs.FormatDECtape
	case dsk:
		return os8fs.FormatDSK
	default:
		return os8fs.FormatDSK
	}
}

func runCreate(image string, format os8fs.Format, existsFlag bool) {
	if existsFlag {
		// "Exists" semantics: nothing is written. The image is not
		// opened or inspected.
		return
	}
	h, err := os8fs.OpenImage(image, format, true)
	if err != nil {
		exitErr(err)
	}
	defer h.Close()
	if _, err := h.Create(1); err != nil {
		exitErr(err)
	}
}

func runZero(image string, format os8fs.Format) {
	h, err := os8fs.OpenImage(image, format, true)
	if err != nil {
		exitErr(err)
	}
	defer h.Close()
	dir, err := h.ReadDirectory()
	if err != nil {
		exitErr(err)
	}
	if err := os8fs.Zero(dir); err != nil {
		exitErr(err)
	}
	if err := h.Flush(dir); err != nil {
		exitErr(err)
	}
}

func runDir(image string, format os8fs.Format, args []string, empties bool, columns int) {
	h, err := os8fs.OpenImage(image, format, false)
	if err != nil {
		exitErr(err)
	}
	defer h.Close()
	dir, err := h.ReadDirectory()
	if err != nil {
		exitErr(err)
	}

	pattern := os8fs.Pattern{}
	if len(args) > 0 {
		pattern, err = os8fs.CompilePattern(stripOS8(args[0]))
		if err != nil {
			exitErr(err)
		}
	}

	rows, summary, err := os8fs.List(dir, pattern, empties)
	if err != nil {
		exitErr(err)
	}
	if columns < 1 {
		columns = 1
	}
	for i := 0; i < len(rows); i += columns {
		end := i + columns
		if end > len(rows) {
			end = len(rows)
		}
		var line []string
		for _, r := range rows[i:end] {
			line = append(line, fmt.Sprintf("%-11s %-3d", r.Name, r.Length))
		}
		fmt.Println(strings.Join(line, "  "))
	}
	fmt.Println(summary.String())
}

func runDelete(image string, format os8fs.Format, args []string, quiet bool) {
	if len(args) == 0 {
		exit("os8pip: --delete requires at least one pattern")
	}
	h, err := os8fs.OpenImage(image, format, true)
	if err != nil {
		exitErr(err)
	}
	defer h.Close()
	dir, err := h.ReadDirectory()
	if err != nil {
		exitErr(err)
	}
	eng := os8fs.NewEngine(dir)

	var patterns []os8fs.Pattern
	for _, a := range args {
		p, err := os8fs.CompilePattern(stripOS8(a))
		if err != nil {
			exitErr(err)
		}
		patterns = append(patterns, p)
	}

	count, err := os8fs.DeleteMany(dir, eng, patterns)
	if err != nil {
		exitErr(err)
	}
	if err := h.Flush(dir); err != nil {
		exitErr(err)
	}
	fmt.Printf("%d files deleted\n", count)
}

func runCopy(image string, format os8fs.Format, args []string) {
	if len(args) != 2 {
		exitf("os8pip: copy requires a source and a destination, got %d args", len(args))
	}
	src, dst := args[0], args[1]
	srcOS8, dstOS8 := strings.HasPrefix(src, os8Prefix), strings.HasPrefix(dst, os8Prefix)
	switch {
	case srcOS8 && !dstOS8:
		copyOut(image, format, stripOS8(src), dst)
	case !srcOS8 && dstOS8:
		copyIn(image, format, src, stripOS8(dst))
	default:
		exit("os8pip: exactly one of source/destination must carry the os8: prefix")
	}
}

func copyOut(image string, format os8fs.Format, name, dstPath string) {
	h, err := os8fs.OpenImage(image, format, false)
	if err != nil {
		exitErr(err)
	}
	defer h.Close()
	dir, err := h.ReadDirectory()
	if err != nil {
		exitErr(err)
	}
	eng := os8fs.NewEngine(dir)
	p, err := os8fs.CompilePattern(name)
	if err != nil {
		exitErr(err)
	}
	entry, ok := eng.Lookup(os8fs.NewCursor(dir), p)
	if !ok {
		exitf("os8pip: file not found: %s", name)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		exitErr(err)
	}
	defer out.Close()

	if !isTextName(name) {
		if err := h.CopyOut(entry, out); err != nil {
			exitErr(err)
		}
		return
	}

	// Text copy-out: CopyOut to a scratch file first, then run
	// txt.Decoder over it into the real destination. os8fs never sees
	// the text transcoding.
	scratch, err := os.CreateTemp("", "os8pip-*.scratch")
	if err != nil {
		exitErr(err)
	}
	defer os.Remove(scratch.Name())
	defer scratch.Close()

	if err := h.CopyOut(entry, scratch); err != nil {
		exitErr(err)
	}
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		exitErr(err)
	}
	if _, err := io.Copy(out, txt.NewDecoder(scratch)); err != nil {
		exitErr(err)
	}
}

func copyIn(image string, format os8fs.Format, srcPath, name string) {
	h, err := os8fs.OpenImage(image, format, true)
	if err != nil {
		exitErr(err)
	}
	defer h.Close()
	dir, err := h.ReadDirectory()
	if err != nil {
		exitErr(err)
	}
	eng := os8fs.NewEngine(dir)
	name = strings.ToUpper(name)

	in, err := os.Open(srcPath)
	if err != nil {
		exitErr(err)
	}
	defer in.Close()

	if !isTextName(name) {
		fi, err := in.Stat()
		if err != nil {
			exitErr(err)
		}
		if _, err := h.CopyIn(eng, name, fi.Size(), in); err != nil {
			exitErr(err)
		}
		if err := h.Flush(dir); err != nil {
			exitErr(err)
		}
		return
	}

	// Text copy-in: run txt.Encoder over the host source into a
	// scratch file first, then CopyIn the scratch file exactly as a
	// binary copy.
	scratch, err := os.CreateTemp("", "os8pip-*.scratch")
	if err != nil {
		exitErr(err)
	}
	defer os.Remove(scratch.Name())
	defer scratch.Close()

	enc := txt.NewEncoder(scratch)
	if _, err := io.Copy(enc, in); err != nil {
		exitErr(err)
	}
	if err := enc.Close(); err != nil {
		exitErr(err)
	}
	fi, err := scratch.Stat()
	if err != nil {
		exitErr(err)
	}
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		exitErr(err)
	}
	if _, err := h.CopyIn(eng, name, fi.Size(), scratch); err != nil {
		exitErr(err)
	}
	if err := h.Flush(dir); err != nil {
		exitErr(err)
	}
}

// isTextName guesses whether name should be treated as text rather
// than a raw image copy; the real heuristic lives here because the
// directory engine never inspects file contents.
func isTextName(name string) bool {
	_, ext := splitExt(name)
	switch strings.ToUpper(ext) {
	case "TX", "PA", "LS":
		return true
	default:
		return false
	}
}

func splitExt(name string) (string, string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func stripOS8(s string) string {
	return strings.TrimPrefix(s, os8Prefix)
}
