/*
 * fragment.go, part of ffmerge.
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

package ffxml

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

var (
	ErrNotForceField = errors.New("ffxml: not a ForceField document")
	ErrMissingAttr   = errors.New("ffxml: missing attribute")
)

// Root tag of an OpenMM force field file.
const RootTag = "ForceField"

// AtomType is an entry of the AtomTypes section. Element is empty for
// types without an element (virtual sites).
type AtomType struct {
	Class   string
	Element string
	Mass    string
	Name    string
}

// Renamed returns a copy of the type with its class and name passed through f.
func (A AtomType) Renamed(f func(string) string) AtomType {
	A.Class = f(A.Class)
	A.Name = f(A.Name)
	return A
}

// HarmonicBond is a term of the HarmonicBondForce section.
type HarmonicBond struct {
	Class  [2]string
	Length string
	K      string
}

func (B HarmonicBond) Renamed(f func(string) string) HarmonicBond {
	for i, v := range B.Class {
		B.Class[i] = f(v)
	}
	return B
}

// HarmonicAngle is a term of the HarmonicAngleForce section.
type HarmonicAngle struct {
	Class [3]string
	Angle string
	K     string
}

func (A HarmonicAngle) Renamed(f func(string) string) HarmonicAngle {
	for i, v := range A.Class {
		A.Class[i] = f(v)
	}
	return A
}

// TorsionTerm is one k/periodicity/phase triplet of a torsion.
type TorsionTerm struct {
	K           string
	Periodicity string
	Phase       string
}

// Torsion is a Proper or Improper term of the PeriodicTorsionForce section.
type Torsion struct {
	Tag   string
	Class [4]string
	Terms []TorsionTerm
}

func (T Torsion) Renamed(f func(string) string) Torsion {
	for i, v := range T.Class {
		T.Class[i] = f(v)
	}
	T.Terms = append([]TorsionTerm(nil), T.Terms...)
	return T
}

// NonbondedAtom is an Atom entry of the NonbondedForce section.
type NonbondedAtom struct {
	Charge  string
	Sigma   string
	Epsilon string
	Type    string
}

// Fragment is the force field of a single molecule.
type Fragment struct {
	Types     []AtomType
	Residue   []ResidueEntry // bonds and virtual sites, in file order
	Bonds     []HarmonicBond
	Angles    []HarmonicAngle
	Torsions  []Torsion
	Nonbonded []NonbondedAtom
}

// Len returns the number of atoms (atom types) in the fragment.
func (F *Fragment) Len() int {
	return len(F.Types)
}

// Connectivity returns the residue bonds of the fragment.
func (F *Fragment) Connectivity() []Bond {
	ret := make([]Bond, 0, len(F.Residue))
	for _, v := range F.Residue {
		if b, ok := v.(Bond); ok {
			ret = append(ret, b)
		}
	}
	return ret
}

// ReadFragment reads a single-molecule force field.
func ReadFragment(r io.Reader) (*Fragment, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("ffxml: %w", err)
	}
	return FragmentFromXML(doc.Root())
}

// FragmentFromXML builds a Fragment from the root element of a force field file.
func FragmentFromXML(root *etree.Element) (*Fragment, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrNotForceField)
	}
	if root.Tag != RootTag {
		return nil, fmt.Errorf("%w: root tag is %q", ErrNotForceField, root.Tag)
	}
	F := new(Fragment)
	var err error
	for _, sec := range root.ChildElements() {
		switch sec.Tag {
		case "AtomTypes":
			err = F.readTypes(sec)
		case "Residues":
			err = F.readResidues(sec)
		case "HarmonicBondForce":
			err = F.readBonds(sec)
		case "HarmonicAngleForce":
			err = F.readAngles(sec)
		case "PeriodicTorsionForce":
			err = F.readTorsions(sec)
		case "NonbondedForce":
			err = F.readNonbonded(sec)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return F, nil
}

// attrs collects required attributes of an element, remembering the
// first missing one.
type attrs struct {
	e   *etree.Element
	err error
}

func (a *attrs) get(key string) string {
	at := a.e.SelectAttr(key)
	if at == nil {
		if a.err == nil {
			a.err = fmt.Errorf("%w: %s has no %q", ErrMissingAttr, a.e.GetPath(), key)
		}
		return ""
	}
	return at.Value
}

func (a *attrs) opt(key string) string {
	return a.e.SelectAttrValue(key, "")
}

func (F *Fragment) readTypes(sec *etree.Element) error {
	for _, e := range sec.SelectElements("Type") {
		a := &attrs{e: e}
		t := AtomType{Class: a.get("class"), Element: a.opt("element"), Mass: a.get("mass"), Name: a.get("name")}
		if a.err != nil {
			return a.err
		}
		F.Types = append(F.Types, t)
	}
	return nil
}

func (F *Fragment) readResidues(sec *etree.Element) error {
	for _, res := range sec.SelectElements("Residue") {
		for _, e := range res.ChildElements() {
			a := &attrs{e: e}
			switch e.Tag {
			case "Bond":
				b := Bond{From: a.get("from"), To: a.get("to")}
				if a.err != nil {
					return a.err
				}
				F.Residue = append(F.Residue, b)
			case "VirtualSite":
				v := VirtualSite{Index: a.get("index")}
				n := 3
				if e.SelectAttr("wx4") != nil {
					n = 4
				}
				for i := 1; i <= n; i++ {
					v.Atoms = append(v.Atoms, a.get("atom"+strconv.Itoa(i)))
				}
				for i := range v.P {
					v.P[i] = a.get("p" + strconv.Itoa(i+1))
				}
				if a.err != nil {
					return a.err
				}
				F.Residue = append(F.Residue, v)
			}
		}
	}
	return nil
}

func (F *Fragment) readBonds(sec *etree.Element) error {
	for _, e := range sec.SelectElements("Bond") {
		a := &attrs{e: e}
		b := HarmonicBond{Class: [2]string{a.get("class1"), a.get("class2")}, Length: a.get("length"), K: a.get("k")}
		if a.err != nil {
			return a.err
		}
		F.Bonds = append(F.Bonds, b)
	}
	return nil
}

func (F *Fragment) readAngles(sec *etree.Element) error {
	for _, e := range sec.SelectElements("Angle") {
		a := &attrs{e: e}
		an := HarmonicAngle{Class: [3]string{a.get("class1"), a.get("class2"), a.get("class3")}, Angle: a.get("angle"), K: a.get("k")}
		if a.err != nil {
			return a.err
		}
		F.Angles = append(F.Angles, an)
	}
	return nil
}

func (F *Fragment) readTorsions(sec *etree.Element) error {
	for _, e := range sec.ChildElements() {
		if e.Tag != "Proper" && e.Tag != "Improper" {
			continue
		}
		a := &attrs{e: e}
		t := Torsion{Tag: e.Tag}
		for i := range t.Class {
			t.Class[i] = a.get("class" + strconv.Itoa(i+1))
		}
		terms, err := termCount(e)
		if err != nil {
			return err
		}
		for i := 1; i <= terms; i++ {
			n := strconv.Itoa(i)
			t.Terms = append(t.Terms, TorsionTerm{K: a.get("k" + n), Periodicity: a.get("periodicity" + n), Phase: a.get("phase" + n)})
		}
		if terms == 0 {
			a.get("k1") //at least one term is required, this records the error
		}
		if a.err != nil {
			return a.err
		}
		F.Torsions = append(F.Torsions, t)
	}
	return nil
}

// termCount returns the highest term index among the k, periodicity and
// phase attributes of a torsion. Every index below it must then carry the
// full triplet, so a gap shows up as a missing attribute.
func termCount(e *etree.Element) (int, error) {
	last := 0
	for _, at := range e.Attr {
		var idx string
		switch {
		case strings.HasPrefix(at.Key, "periodicity"):
			idx = at.Key[len("periodicity"):]
		case strings.HasPrefix(at.Key, "phase"):
			idx = at.Key[len("phase"):]
		case strings.HasPrefix(at.Key, "k"):
			idx = at.Key[len("k"):]
		default:
			continue
		}
		if idx == "" || strings.Trim(idx, "0123456789") != "" {
			continue
		}
		n, err := strconv.Atoi(idx)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%w: %s has a term attribute %q", ErrMissingAttr, e.GetPath(), at.Key)
		}
		if n > last {
			last = n
		}
	}
	return last, nil
}

func (F *Fragment) readNonbonded(sec *etree.Element) error {
	for _, e := range sec.SelectElements("Atom") {
		a := &attrs{e: e}
		n := NonbondedAtom{Charge: a.get("charge"), Sigma: a.get("sigma"), Epsilon: a.get("epsilon"), Type: a.get("type")}
		if a.err != nil {
			return a.err
		}
		F.Nonbonded = append(F.Nonbonded, n)
	}
	return nil
}
