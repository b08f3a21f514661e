/*
 * ddec.go, part of ffmerge.
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

// Package ddec reads the atomic charges, atomic multipoles and atomic
// volumes written by Chargemol (DDEC3 and DDEC6 partitionings).
package ddec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/ffmerge/ffmerge/source"
)

// Output files, relative to the Chargemol directory.
const (
	DDEC6Charges = "DDEC6_even_tempered_net_atomic_charges.xyz"
	DDEC3Charges = "DDEC3_net_atomic_charges.xyz"
	RCubed       = "DDEC_atomic_Rcubed_moments.xyz"
)

// marker of the per-atom block in the net charges file. The data
// start two lines below it.
const dataMarker = "The following XYZ"

var (
	ErrNoChargeData = errors.New("ddec: cannot find charge data")
	ErrVersion      = errors.New("ddec: unsupported DDEC version, use 3 or 6")
)

// Charge is the DDEC record used for the Lennard-Jones terms.
type Charge struct {
	Symbol string
	Charge float64
	Volume float64 // <r^3> moment, in bohr^3
}

// Dipole is the atomic dipole moment, in atomic units.
type Dipole struct {
	X, Y, Z float64
}

// Quadrupole holds the traceless atomic quadrupole components, in atomic units.
type Quadrupole struct {
	XY, XZ, YZ float64
	X2Y2       float64 // Q(x^2-y^2)
	Z2R2       float64 // Q(3z^2-r^2)
}

// Data contains the records of every atom, indexed by the 0-based atom
// position in the molecule.
type Data struct {
	Charges     []Charge
	Dipoles     []Dipole
	Quadrupoles []Quadrupole
}

// Len returns the number of atoms read.
func (D *Data) Len() int {
	return len(D.Charges)
}

// Atom returns the charge record of the i-th atom and false if there is none.
func (D *Data) Atom(i int) (Charge, bool) {
	if D == nil || i < 0 || i >= len(D.Charges) {
		return Charge{}, false
	}
	return D.Charges[i], true
}

// ChargesFile returns the name of the net charges file for a DDEC version.
func ChargesFile(version int) (string, error) {
	switch version {
	case 6:
		return DDEC6Charges, nil
	case 3:
		return DDEC3Charges, nil
	}
	return "", fmt.Errorf("%w: %d", ErrVersion, version)
}

// Files returns the files Read needs in dir, for the given DDEC version.
func Files(dir string, version int) ([]string, error) {
	c, err := ChargesFile(version)
	if err != nil {
		return nil, err
	}
	return []string{path.Join(dir, c), path.Join(dir, RCubed)}, nil
}

// Read reads the Chargemol output in the directory dir of fsys. Compressed
// (.gz, .zst) versions of the files are accepted.
func Read(fsys fs.FS, dir string, version int) (*Data, error) {
	files, err := Files(dir, version)
	if err != nil {
		return nil, err
	}
	cb, cname, err := source.ReadAll(fsys, files[0])
	if err != nil {
		return nil, err
	}
	D, err := ReadCharges(bytes.NewReader(cb))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cname, err)
	}
	vb, vname, err := source.ReadAll(fsys, files[1])
	if err != nil {
		return nil, err
	}
	vols, err := ReadVolumes(bytes.NewReader(vb), D.Len())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", vname, err)
	}
	for i, v := range vols {
		D.Charges[i].Volume = v
	}
	return D, nil
}

func readLines(r io.Reader) ([]string, error) {
	lines := make([]string, 0, 64)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	return lines, s.Err()
}

func natoms(lines []string) (int, error) {
	if len(lines) == 0 {
		return 0, fmt.Errorf("ddec: empty file")
	}
	n, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("ddec: ill-formatted atom count %q", lines[0])
	}
	return n, nil
}

func parsefloats(s ...string) ([]float64, error) {
	r := make([]float64, 0, len(s))
	for _, v := range s {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		r = append(r, f)
	}
	return r, nil
}

// ReadCharges reads a DDEC net atomic charges file. Volumes are left at 0.
func ReadCharges(r io.Reader) (*Data, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	n, err := natoms(lines)
	if err != nil {
		return nil, err
	}
	start := -1
	for i, l := range lines {
		if strings.Contains(l, dataMarker) {
			start = i + 2
			break
		}
	}
	if start < 0 || start+n > len(lines) {
		return nil, ErrNoChargeData
	}
	D := &Data{
		Charges:     make([]Charge, n),
		Dipoles:     make([]Dipole, n),
		Quadrupoles: make([]Quadrupole, n),
	}
	seen := make([]bool, n)
	for i, l := range lines[start : start+n] {
		f := strings.Fields(l)
		//atom number, symbol, x, y, z, charge, dipole x, y, z, |dipole|, Qxy, Qxz, Qyz, Q(x2-y2), Q(3z2-r2), eigenvalues...
		if len(f) < 15 {
			return nil, fmt.Errorf("ddec: line %d of the charge block has %d fields, want at least 15", i+1, len(f))
		}
		count, err := strconv.Atoi(f[0])
		if err != nil {
			return nil, fmt.Errorf("ddec: line %d of the charge block: %w", i+1, err)
		}
		ix := count - 1 //the file counts from 1
		if ix < 0 || ix >= n || seen[ix] {
			return nil, fmt.Errorf("ddec: bad or repeated atom number %d", count)
		}
		seen[ix] = true
		v, err := parsefloats(f[5], f[6], f[7], f[8], f[10], f[11], f[12], f[13], f[14])
		if err != nil {
			return nil, fmt.Errorf("ddec: atom %d: %w", count, err)
		}
		D.Charges[ix] = Charge{Symbol: f[1], Charge: v[0]}
		D.Dipoles[ix] = Dipole{X: v[1], Y: v[2], Z: v[3]}
		D.Quadrupoles[ix] = Quadrupole{XY: v[4], XZ: v[5], YZ: v[6], X2Y2: v[7], Z2R2: v[8]}
	}
	return D, nil
}

// ReadVolumes reads the last column of the n atom lines of a DDEC R-cubed
// moments file.
func ReadVolumes(r io.Reader, n int) ([]float64, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) < n+2 {
		return nil, fmt.Errorf("ddec: R-cubed file has %d lines, want %d atoms", len(lines), n)
	}
	vols := make([]float64, 0, n)
	for i, l := range lines[2 : n+2] {
		f := strings.Fields(l)
		if len(f) == 0 {
			return nil, fmt.Errorf("ddec: empty R-cubed line for atom %d", i+1)
		}
		v, err := strconv.ParseFloat(f[len(f)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("ddec: R-cubed atom %d: %w", i+1, err)
		}
		vols = append(vols, v)
	}
	return vols, nil
}
