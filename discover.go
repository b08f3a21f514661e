/*
 * discover.go, part of ffmerge.
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
	"bytes"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/ffmerge/ffmerge/ddec"
	"github.com/ffmerge/ffmerge/ffxml"
	"github.com/ffmerge/ffmerge/source"
)

// Layout is the way the molecule directories are named and organized.
type Layout string

const (
	// QUBEKit run directories, QUBEKit_<name>_<date>_..., with the final
	// force field in 11_finalise and the Chargemol output in 08_lennard_jones.
	QUBEKit Layout = "qubekit"
	// Directories named after mol01, mol02..., with the force field in
	// final_parameters and the Chargemol output in charges/ChargeMol.
	Numbered Layout = "numbered"
)

const (
	qubekitTag = "QUBEKit_"
	// the numbered layout stops at the first missing molecule, or here.
	maxNumbered = 99
)

// Subdirectories of a molecule directory, per layout.
var layoutDirs = map[Layout][2]string{
	QUBEKit:  {"11_finalise", "08_lennard_jones"},
	Numbered: {"final_parameters", "charges/ChargeMol"},
}

// Discovery tells where to find the molecules.
type Discovery struct {
	Layout      Layout
	FragmentDir string //overrides the force field subdirectory of the layout, if not empty
	ChargesDir  string //same, for the Chargemol subdirectory
	DDEC        int    //DDEC version, 3 or 6
}

// DefaultDiscovery returns the settings of a QUBEKit run with DDEC6 charges.
func DefaultDiscovery() Discovery {
	return Discovery{Layout: QUBEKit, DDEC: 6}
}

// withDefaults fills the unset fields of D with the defaults.
func (D Discovery) withDefaults() Discovery {
	def := DefaultDiscovery()
	if D.Layout == "" {
		D.Layout = def.Layout
	}
	if D.DDEC == 0 {
		D.DDEC = def.DDEC
	}
	return D
}

func (D Discovery) dirs() (frag, charges string, err error) {
	d, ok := layoutDirs[D.Layout]
	if !ok {
		return "", "", newError(Format, "", "", fmt.Sprintf("unknown layout %q", D.Layout), nil)
	}
	frag, charges = d[0], d[1]
	if D.FragmentDir != "" {
		frag = D.FragmentDir
	}
	if D.ChargesDir != "" {
		charges = D.ChargesDir
	}
	return frag, charges, nil
}

// Molecule is a molecule found in the input tree. Paths are relative to
// the root of the tree.
type Molecule struct {
	Name         string
	Dir          string
	FragmentFile string //force field file
	ChargesDir   string //Chargemol output directory
}

// Discover finds the molecules under the root of fsys and checks that
// each of them has its force field and charge files. Molecules are
// returned in the order of the directory listing, or in numeric order for
// the Numbered layout.
func Discover(fsys fs.FS, D Discovery) ([]Molecule, error) {
	D = D.withDefaults()
	fragdir, chargedir, err := D.dirs()
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, newError(MissingInput, "", ".", "cannot list the molecule directories", err)
	}
	dirs := make([]string, 0, len(entries))
	for _, v := range entries {
		if v.IsDir() {
			dirs = append(dirs, v.Name())
		}
	}
	var mols []Molecule
	switch D.Layout {
	case QUBEKit:
		mols, err = qubekitMolecules(dirs)
	case Numbered:
		mols, err = numberedMolecules(dirs)
	}
	if err != nil {
		return nil, err
	}
	for i, m := range mols {
		m.FragmentFile = path.Join(m.Dir, fragdir, m.Name+".xml")
		m.ChargesDir = path.Join(m.Dir, chargedir)
		if !source.Exists(fsys, m.FragmentFile) {
			return nil, newError(MissingInput, m.Name, m.FragmentFile, "no force field file", fs.ErrNotExist)
		}
		files, err := ddec.Files(m.ChargesDir, D.DDEC)
		if err != nil {
			return nil, newError(Format, m.Name, "", "", err)
		}
		for _, f := range files {
			if !source.Exists(fsys, f) {
				return nil, newError(MissingInput, m.Name, f, "no charge file", fs.ErrNotExist)
			}
		}
		mols[i] = m
	}
	return mols, nil
}

func qubekitMolecules(dirs []string) ([]Molecule, error) {
	var ret []Molecule
	seen := make(map[string]string)
	for _, d := range dirs {
		if !strings.Contains(d, qubekitTag) {
			continue
		}
		name := strings.Split(d, "_")[1]
		if name == "" {
			return nil, newError(Format, "", d, "cannot get a molecule name from the directory name", nil)
		}
		if prev, ok := seen[name]; ok {
			return nil, newError(Format, name, d, fmt.Sprintf("molecule also found in %s", prev), nil)
		}
		seen[name] = d
		ret = append(ret, Molecule{Name: name, Dir: d})
	}
	return ret, nil
}

func numberedMolecules(dirs []string) ([]Molecule, error) {
	var ret []Molecule
	for i := 1; i <= maxNumbered; i++ {
		name := fmt.Sprintf("mol%02d", i)
		var found []string
		for _, d := range dirs {
			if strings.Contains(d, name) {
				found = append(found, d)
			}
		}
		if len(found) == 0 {
			break
		}
		if len(found) > 1 {
			return nil, newError(Format, name, found[1], fmt.Sprintf("molecule also found in %s", found[0]), nil)
		}
		ret = append(ret, Molecule{Name: name, Dir: found[0]})
	}
	return ret, nil
}

// Input is a molecule with its force field and charges read.
type Input struct {
	Molecule
	Fragment *ffxml.Fragment
	Charges  *ddec.Data
}

// Load reads the force field and the charges of every molecule.
func Load(fsys fs.FS, mols []Molecule, ddecVersion int, logger *log.Logger) ([]Input, error) {
	ret := make([]Input, 0, len(mols))
	for _, m := range mols {
		b, fname, err := source.ReadAll(fsys, m.FragmentFile)
		if err != nil {
			return nil, classify(err, m.Name, m.FragmentFile, "Load")
		}
		F, err := ffxml.ReadFragment(bytes.NewReader(b))
		if err != nil {
			return nil, classify(err, m.Name, fname, "Load")
		}
		C, err := ddec.Read(fsys, m.ChargesDir, ddecVersion)
		if err != nil {
			return nil, classify(err, m.Name, m.ChargesDir, "Load")
		}
		if logger != nil {
			logger.Printf("[load    ] [status=ok] %s (%d types, %d charges)\n", m.Name, F.Len(), C.Len())
		}
		ret = append(ret, Input{Molecule: m, Fragment: F, Charges: C})
	}
	return ret, nil
}
