/*
 * merge.go, part of ffmerge.
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
	"fmt"
	"log"
	"strings"

	"github.com/ffmerge/ffmerge/ffxml"
)

// Merger combines single-molecule force fields into one, annotating the
// Lennard-Jones terms of the optimised categories for ForceBalance.
type Merger struct {
	cats     []Category
	optimise map[string]Category
	logger   *log.Logger
}

// NewMerger returns a Merger that fits the categories in optimise
// (DefaultOptimise if empty). logger can be nil.
func NewMerger(optimise []string, logger *log.Logger) (*Merger, error) {
	if len(optimise) == 0 {
		optimise = DefaultOptimise
	}
	cats, err := Categories(optimise)
	if err != nil {
		return nil, err
	}
	M := &Merger{cats: cats, optimise: make(map[string]Category, len(cats)), logger: logger}
	for _, c := range cats {
		M.optimise[c.Name] = c
	}
	return M, nil
}

// Categories returns the fitted categories, in declaration order.
func (M *Merger) Categories() []Category {
	return append([]Category(nil), M.cats...)
}

// Merge combines the molecules in the given order. Atom types, classes
// and virtual site types of each molecule are shifted by the number of
// atom types of the molecules before it, while residue bonds and virtual
// sites keep their local indexes.
func (M *Merger) Merge(mols []Input) (*ffxml.Combined, *Report, error) {
	C := ffxml.NewCombined()
	for _, c := range M.cats {
		C.Declare(c.Declaration())
	}
	R := newReport(M.cats)
	offset := 0
	for _, m := range mols {
		if m.Fragment == nil {
			return nil, nil, newError(MissingInput, m.Name, m.FragmentFile, "force field not loaded", nil)
		}
		polar, err := M.molecule(C, R, m, offset)
		if err != nil {
			return nil, nil, classify(err, m.Name, m.FragmentFile, "Merge")
		}
		if M.logger != nil {
			M.logger.Printf("[merge   ] [status=ok] %s (%d atoms, offset %d, %d polar H)\n", m.Name, m.Fragment.Len(), offset, polar)
		}
		offset += m.Fragment.Len()
		R.Molecules++
	}
	R.Atoms = offset
	R.finish()
	return C, R, nil
}

// molecule adds one molecule to C and returns the number of polar
// hydrogens found in it.
func (M *Merger) molecule(C *ffxml.Combined, R *Report, m Input, offset int) (int, error) {
	F := m.Fragment
	T, err := NewTopology(F)
	if err != nil {
		return 0, err
	}
	r := &renumberer{offset: offset}
	res := C.AddResidue(m.Name)
	for _, t := range F.Types {
		t = t.Renamed(r.id)
		C.AddType(t)
		res.AddAtom(t.Class, t.Name)
	}
	for _, v := range F.Residue {
		res.Add(v)
	}
	for _, v := range F.Bonds {
		C.AddBond(v.Renamed(r.id))
	}
	for _, v := range F.Angles {
		C.AddAngle(v.Renamed(r.id))
	}
	for _, v := range F.Torsions {
		C.AddTorsion(v.Renamed(r.id))
	}
	if r.err != nil {
		return 0, r.err
	}
	polar := 0
	for i, a := range F.Nonbonded {
		local := a.Type
		a.Type = r.id(a.Type)
		if r.err != nil {
			return 0, r.err
		}
		if strings.Contains(local, vsitePrefix) {
			C.AddNonbonded(a, nil)
			continue
		}
		fit, isPolar, err := M.annotate(R, m, T, i, local)
		if err != nil {
			return 0, err
		}
		if isPolar {
			polar++
		}
		C.AddNonbonded(a, fit)
	}
	R.PolarH += polar
	return polar, nil
}

// annotate decides the category of the i-th nonbonded atom, of type typ,
// and returns its annotations if the category is fitted. Hydrogens bonded
// to O, N or S go in the PolarH category.
func (M *Merger) annotate(R *Report, m Input, T *Topology, i int, typ string) (*ffxml.Fit, bool, error) {
	rec, ok := m.Charges.Atom(i)
	if !ok {
		return nil, false, newError(Lookup, m.Name, m.ChargesDir, fmt.Sprintf("no charge record for atom %d (%s)", i, typ), nil)
	}
	free, err := Reference(rec.Symbol)
	if err != nil {
		return nil, false, err
	}
	local, err := LocalIndex(typ)
	if err != nil {
		return nil, false, err
	}
	if _, ok := T.Element(local); !ok {
		return nil, false, newError(Lookup, m.Name, "", fmt.Sprintf("nonbonded type %s has no atom type", typ), nil)
	}
	name := rec.Symbol
	polar := T.PolarH(local)
	if polar {
		name = PolarH
	}
	cat, ok := M.optimise[name]
	if !ok {
		return nil, polar, nil
	}
	R.add(cat, rec.Volume, free)
	return annotation(cat, rec.Volume, free), polar, nil
}
