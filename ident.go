package ffmerge

import (
	"fmt"
	"strconv"
	"strings"
)

// Identifier prefixes with a fixed, zero-padded, numeric field.
const (
	qubePrefix  = "QUBE_"
	vsitePrefix = "v-site"
	fixedWidth  = 4
)

// ID is an atom type, class or site identifier split in a textual prefix
// and a numeric suffix.
type ID struct {
	Prefix string
	N      int
	Width  int //0 means no padding
}

func (I ID) String() string {
	if I.Width > 0 {
		return fmt.Sprintf("%s%0*d", I.Prefix, I.Width, I.N)
	}
	return I.Prefix + strconv.Itoa(I.N)
}

// ParseID splits s following the conventions of QUBEKit force fields:
// "QUBE_<n>" and "v-site<n>" (written back with 4 digits), a bare
// integer, or a one or two character prefix followed by an integer.
func ParseID(s string) (ID, error) {
	if strings.Contains(s, "QUBE") {
		return fixedID(s, qubePrefix)
	}
	if strings.Contains(s, vsitePrefix) {
		return fixedID(s, vsitePrefix)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return ID{N: n}, nil
	}
	for _, l := range []int{1, 2} {
		if len(s) <= l {
			break
		}
		if n, err := strconv.Atoi(s[l:]); err == nil {
			return ID{Prefix: s[:l], N: n}, nil
		}
	}
	return ID{}, badID(s)
}

func fixedID(s, prefix string) (ID, error) {
	if !strings.HasPrefix(s, prefix) {
		return ID{}, badID(s)
	}
	n, err := strconv.Atoi(s[len(prefix):])
	if err != nil || n < 0 {
		return ID{}, badID(s)
	}
	return ID{Prefix: prefix, N: n, Width: fixedWidth}, nil
}

func badID(s string) error {
	return newError(Format, "", "", fmt.Sprintf("malformed identifier %q", s), nil)
}

// IncrementID adds increment to the numeric suffix of s.
func IncrementID(s string, increment int) (string, error) {
	id, err := ParseID(s)
	if err != nil {
		return "", err
	}
	id.N += increment
	return id.String(), nil
}

// LocalIndex returns the numeric suffix of s, which for atom types is the
// 0-based index of the atom in its molecule.
func LocalIndex(s string) (int, error) {
	id, err := ParseID(s)
	if err != nil {
		return -1, err
	}
	return id.N, nil
}

// renumberer increments identifiers by a fixed offset, keeping the first
// error found so a whole section can be processed before checking.
type renumberer struct {
	offset int
	err    error
}

func (r *renumberer) id(s string) string {
	if r.err != nil {
		return s
	}
	ret, err := IncrementID(s, r.offset)
	if err != nil {
		r.err = err
		return s
	}
	return ret
}
