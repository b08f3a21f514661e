/*
 * errors.go, part of ffmerge.
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

package ffmerge

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Kind classifies the errors of a merge. All of them abort the run.
// A Kind is itself an error, so errors.Is(err, Format) works on any
// error returned by this package.
type Kind int

const (
	MissingInput Kind = iota + 1 // an expected file or directory is absent
	Format                       // malformed document, identifier or record
	Lookup                       // atom or element absent from a table
)

func (k Kind) Error() string {
	switch k {
	case MissingInput:
		return "missing input"
	case Format:
		return "format error"
	case Lookup:
		return "lookup error"
	}
	return "unknown error"
}

// Error is the error type returned by the merge.
type Error struct {
	kind     Kind
	message  string
	molecule string //empty if the error is not related to a molecule
	filename string //empty if none
	deco     []string
	err      error
}

func (E *Error) Error() string {
	var b strings.Builder
	b.WriteString("ffmerge: ")
	b.WriteString(E.kind.Error())
	if E.molecule != "" {
		fmt.Fprintf(&b, " in molecule %s", E.molecule)
	}
	if E.filename != "" {
		fmt.Fprintf(&b, " (%s)", E.filename)
	}
	if E.message != "" {
		b.WriteString(": ")
		b.WriteString(E.message)
	}
	if E.err != nil {
		b.WriteString(": ")
		b.WriteString(E.err.Error())
	}
	return b.String()
}

// Decorate adds the name of a caller to the trail of the error and
// returns the trail.
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func (E *Error) Kind() Kind { return E.kind }

// Molecule returns the molecule being processed when the error happened.
func (E *Error) Molecule() string { return E.molecule }

// FileName returns the offending file, if any.
func (E *Error) FileName() string { return E.filename }

func (E *Error) Unwrap() error { return E.err }

// Is reports whether target is the Kind of E.
func (E *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == E.kind
}

func newError(kind Kind, molecule, filename, message string, cause error) *Error {
	return &Error{kind: kind, molecule: molecule, filename: filename, message: message, err: cause}
}

// classify turns an error from the reading packages into an *Error. Errors
// that already are *Error get the molecule and file filled if they lack them.
func classify(err error, molecule, filename, caller string) error {
	if err == nil {
		return nil
	}
	var E *Error
	if errors.As(err, &E) {
		if E.molecule == "" {
			E.molecule = molecule
		}
		if E.filename == "" {
			E.filename = filename
		}
		E.Decorate(caller)
		return E
	}
	kind := Format
	if errors.Is(err, fs.ErrNotExist) {
		kind = MissingInput
	}
	E = newError(kind, molecule, filename, "", err)
	E.Decorate(caller)
	return E
}
