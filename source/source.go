/*
 * source.go, part of ffmerge.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package source opens input files that may have been stored compressed.
// A file "a.xml" is looked up as "a.xml", then "a.xml.gz" (deflate/gzip)
// and then "a.xml.zst" (zstandard).
package source

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/zstd"
)

// Extensions tried, in order, after the plain name.
var Extensions = []string{".gz", ".zst"}

// Find returns the name under which the file name exists in fsys, trying
// the plain name first and then the compressed variants. The error wraps
// fs.ErrNotExist if none is present.
func Find(fsys fs.FS, name string) (string, error) {
	for _, cand := range candidates(name) {
		st, err := fs.Stat(fsys, cand)
		if err == nil {
			if st.IsDir() {
				continue
			}
			return cand, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("source: %s: %w", name, fs.ErrNotExist)
}

// Exists is true if name, or one of its compressed variants, is in fsys.
func Exists(fsys fs.FS, name string) bool {
	_, err := Find(fsys, name)
	return err == nil
}

func candidates(name string) []string {
	ret := make([]string, 0, len(Extensions)+1)
	ret = append(ret, name)
	for _, e := range Extensions {
		ret = append(ret, name+e)
	}
	return ret
}

// Open finds name (see Find) and returns a reader that decompresses it if
// needed, together with the name actually opened. The caller must close the
// reader.
func Open(fsys fs.FS, name string) (io.ReadCloser, string, error) {
	fname, err := Find(fsys, name)
	if err != nil {
		return nil, "", err
	}
	f, err := fsys.Open(fname)
	if err != nil {
		return nil, fname, err
	}
	rc, err := wrap(f, fname)
	if err != nil {
		f.Close()
		return nil, fname, fmt.Errorf("source: %s: %w", fname, err)
	}
	return rc, fname, nil
}

// ReadAll reads the whole, decompressed, content of name.
func ReadAll(fsys fs.FS, name string) ([]byte, string, error) {
	rc, fname, err := Open(fsys, name)
	if err != nil {
		return nil, fname, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fname, fmt.Errorf("source: reading %s: %w", fname, err)
	}
	return b, fname, nil
}

func wrap(f fs.File, fname string) (io.ReadCloser, error) {
	switch ext(fname) {
	case ".gz":
		gz, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, err
		}
		return &closer{Reader: gz, closers: []io.Closer{gz, f}}, nil
	case ".zst":
		dec, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, err
		}
		rc := dec.IOReadCloser()
		return &closer{Reader: rc, closers: []io.Closer{rc, f}}, nil
	default:
		return f, nil
	}
}

func ext(fname string) string {
	for _, e := range Extensions {
		if len(fname) > len(e) && fname[len(fname)-len(e):] == e {
			return e
		}
	}
	return ""
}

// closer closes the decompressor and then the underlying file.
type closer struct {
	io.Reader
	closers []io.Closer
}

func (c *closer) Close() error {
	var err error
	for _, v := range c.closers {
		if e := v.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
