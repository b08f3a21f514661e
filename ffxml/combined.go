/*
 * combined.go, part of ffmerge.
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
	"bytes"
	"io"
	"strconv"

	"github.com/beevik/etree"
)

// ResidueEntry is a bond or a virtual site of a residue.
type ResidueEntry interface {
	appendTo(res *etree.Element)
}

// Bond joins two atoms of a residue, given by their 0-based local indexes.
type Bond struct {
	From string
	To   string
}

func (B Bond) appendTo(res *etree.Element) {
	e := res.CreateElement("Bond")
	e.CreateAttr("from", B.From)
	e.CreateAttr("to", B.To)
}

// VirtualSite is a localCoords site defined on 3 or 4 atoms of the residue.
type VirtualSite struct {
	Atoms []string
	Index string
	P     [3]string
}

// localCoords weights. The origin sits on the first atom in both cases.
var (
	vsite3Weights = [][2]string{
		{"wo1", "1.0"}, {"wo2", "0.0"}, {"wo3", "0.0"},
		{"wx1", "-1.0"}, {"wx2", "1.0"}, {"wx3", "0.0"},
		{"wy1", "-1.0"}, {"wy2", "0.0"}, {"wy3", "1.0"},
	}
	vsite4Weights = [][2]string{
		{"wo1", "1.0"}, {"wo2", "0.0"}, {"wo3", "0.0"}, {"wo4", "0.0"},
		{"wx1", "-1.0"}, {"wx2", "0.33333333"}, {"wx3", "0.33333333"}, {"wx4", "0.33333333"},
		{"wy1", "1.0"}, {"wy2", "-1.0"}, {"wy3", "0.0"}, {"wy4", "0.0"},
	}
)

func (V VirtualSite) appendTo(res *etree.Element) {
	e := res.CreateElement("VirtualSite")
	for i, v := range V.Atoms {
		e.CreateAttr("atom"+strconv.Itoa(i+1), v)
	}
	e.CreateAttr("index", V.Index)
	for i, v := range V.P {
		e.CreateAttr("p"+strconv.Itoa(i+1), v)
	}
	e.CreateAttr("type", "localCoords")
	w := vsite3Weights
	if len(V.Atoms) == 4 {
		w = vsite4Weights
	}
	for _, v := range w {
		e.CreateAttr(v[0], v[1])
	}
}

// Declaration is a ForceBalance parameter block entry, written as
// <{Category}Element {Param}="{RFree}" bfree=".." vfree=".." parameterize="{Param}"/>
type Declaration struct {
	Category string
	Param    string
	RFree    string
	BFree    string
	VFree    string
}

// Fit holds the ForceBalance annotations of a nonbonded atom.
type Fit struct {
	Volume string
	BFree  string
	VFree  string
	Eval   string
}

// Nonbonded force settings of the combined file.
const (
	Coulomb14Scale = "0.83333"
	LJ14Scale      = "0.5"
	Combination    = "amber"
)

// Combined is a force field document being built from several fragments.
type Combined struct {
	doc       *etree.Document
	root      *etree.Element
	types     *etree.Element
	residues  *etree.Element
	bonds     *etree.Element
	angles    *etree.Element
	torsions  *etree.Element
	nonbonded *etree.Element
	fb        *etree.Element
	ntypes    int
}

// NewCombined returns an empty document with all its sections.
func NewCombined() *Combined {
	C := new(Combined)
	C.doc = etree.NewDocument()
	C.doc.CreateProcInst("xml", `version="1.0" `)
	C.root = C.doc.CreateElement(RootTag)
	C.types = C.root.CreateElement("AtomTypes")
	C.residues = C.root.CreateElement("Residues")
	C.bonds = C.root.CreateElement("HarmonicBondForce")
	C.angles = C.root.CreateElement("HarmonicAngleForce")
	C.torsions = C.root.CreateElement("PeriodicTorsionForce")
	C.nonbonded = C.root.CreateElement("NonbondedForce")
	C.nonbonded.CreateAttr("coulomb14scale", Coulomb14Scale)
	C.nonbonded.CreateAttr("lj14scale", LJ14Scale)
	C.nonbonded.CreateAttr("combination", Combination)
	C.fb = C.root.CreateElement("ForceBalance")
	return C
}

// Len returns the number of atom types added so far.
func (C *Combined) Len() int {
	return C.ntypes
}

// Declare adds an entry to the ForceBalance block.
func (C *Combined) Declare(d Declaration) {
	e := C.fb.CreateElement(d.Category + "Element")
	e.CreateAttr(d.Param, d.RFree)
	e.CreateAttr("bfree", d.BFree)
	e.CreateAttr("vfree", d.VFree)
	e.CreateAttr("parameterize", d.Param)
}

func (C *Combined) AddType(t AtomType) {
	e := C.types.CreateElement("Type")
	e.CreateAttr("class", t.Class)
	if t.Element != "" {
		e.CreateAttr("element", t.Element)
	}
	e.CreateAttr("mass", t.Mass)
	e.CreateAttr("name", t.Name)
	C.ntypes++
}

// Residue is a residue of the combined document.
type Residue struct {
	e *etree.Element
}

// AddResidue starts a new residue named name.
func (C *Combined) AddResidue(name string) *Residue {
	e := C.residues.CreateElement("Residue")
	e.CreateAttr("name", name)
	return &Residue{e: e}
}

func (R *Residue) AddAtom(name, typ string) {
	e := R.e.CreateElement("Atom")
	e.CreateAttr("name", name)
	e.CreateAttr("type", typ)
}

// Add appends a bond or virtual site, as given.
func (R *Residue) Add(entry ResidueEntry) {
	entry.appendTo(R.e)
}

func (C *Combined) AddBond(b HarmonicBond) {
	e := C.bonds.CreateElement("Bond")
	e.CreateAttr("class1", b.Class[0])
	e.CreateAttr("class2", b.Class[1])
	e.CreateAttr("length", b.Length)
	e.CreateAttr("k", b.K)
}

func (C *Combined) AddAngle(a HarmonicAngle) {
	e := C.angles.CreateElement("Angle")
	for i, v := range a.Class {
		e.CreateAttr("class"+strconv.Itoa(i+1), v)
	}
	e.CreateAttr("angle", a.Angle)
	e.CreateAttr("k", a.K)
}

// AddTorsion writes the classes, then all the k, periodicity and phase terms.
func (C *Combined) AddTorsion(t Torsion) {
	e := C.torsions.CreateElement(t.Tag)
	for i, v := range t.Class {
		e.CreateAttr("class"+strconv.Itoa(i+1), v)
	}
	for i, v := range t.Terms {
		e.CreateAttr("k"+strconv.Itoa(i+1), v.K)
	}
	for i, v := range t.Terms {
		e.CreateAttr("periodicity"+strconv.Itoa(i+1), v.Periodicity)
	}
	for i, v := range t.Terms {
		e.CreateAttr("phase"+strconv.Itoa(i+1), v.Phase)
	}
}

// AddNonbonded adds a nonbonded atom, with the ForceBalance annotations
// in fit, if fit is not nil.
func (C *Combined) AddNonbonded(a NonbondedAtom, fit *Fit) {
	e := C.nonbonded.CreateElement("Atom")
	e.CreateAttr("charge", a.Charge)
	e.CreateAttr("sigma", a.Sigma)
	e.CreateAttr("epsilon", a.Epsilon)
	e.CreateAttr("type", a.Type)
	if fit == nil {
		return
	}
	e.CreateAttr("volume", fit.Volume)
	e.CreateAttr("bfree", fit.BFree)
	e.CreateAttr("vfree", fit.VFree)
	e.CreateAttr("parameter_eval", fit.Eval)
}

// Document returns the underlying document. Changes to it affect the receiver.
func (C *Combined) Document() *etree.Document {
	return C.doc
}

// WriteTo writes the document pretty-printed, one element per line and
// without indentation. The receiver is not modified.
func (C *Combined) WriteTo(w io.Writer) (int64, error) {
	d := C.doc.Copy()
	d.WriteSettings.CanonicalAttrVal = true
	d.Indent(0)
	return d.WriteTo(w)
}

// Bytes returns the pretty-printed document.
func (C *Combined) Bytes() ([]byte, error) {
	var b bytes.Buffer
	_, err := C.WriteTo(&b)
	return b.Bytes(), err
}
