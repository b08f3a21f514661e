/*
 * elements.go, part of ffmerge.
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
	"slices"
	"strings"

	"github.com/ffmerge/ffmerge/ffxml"
)

// FreeParams are the free-atom reference values of an element.
type FreeParams struct {
	VFree float64 //free atom volume, bohr^3
	BFree float64 //free atom C6 coefficient
	RFree float64 //free atom radius, angstrom
}

// Free atom values for the supported elements.
// Adding an element here makes it available as a fitting category.
var symbolFree = map[string]FreeParams{
	"H":  {7.6, 6.5, 1.64},
	"B":  {46.7, 99.5, 2.08},
	"C":  {34.4, 46.6, 2.08},
	"N":  {25.9, 24.2, 1.72},
	"O":  {22.1, 15.6, 1.60},
	"F":  {18.2, 9.5, 1.58},
	"P":  {84.6, 185, 2.07},
	"S":  {75.2, 134.0, 2.00},
	"Cl": {65.1, 94.6, 1.88},
	"Br": {95.7, 162.0, 1.96},
	"Si": {101.64, 305, 2.08},
	"I":  {153.8, 385.0, 2.04},
}

// Table order, used wherever the elements have to be listed.
var symbols = []string{"H", "B", "C", "N", "O", "F", "P", "S", "Cl", "Br", "Si", "I"}

// Reference returns the free atom values for the element symbol.
func Reference(symbol string) (FreeParams, error) {
	p, ok := symbolFree[symbol]
	if !ok {
		return p, newError(Lookup, "", "", fmt.Sprintf("element %q not in the reference table", symbol), nil)
	}
	return p, nil
}

// Symbols returns the elements of the reference table.
func Symbols() []string {
	return slices.Clone(symbols)
}

// PolarH is the category of hydrogens bonded to O, N or S.
const PolarH = "X"

// polar hydrogen: fitted with its own radius, H volume and C6.
var polarH = FreeParams{VFree: 7.6, BFree: 6.5, RFree: 1.00}

// Category is a set of atoms sharing one ForceBalance radius parameter.
type Category struct {
	Name string //element symbol, or PolarH
	Free string //prefix of the parameter name
	FreeParams
}

// Param returns the ForceBalance parameter name, e.g. "clfree".
func (C Category) Param() string {
	return C.Free + "free"
}

// Declaration returns the ForceBalance block entry of the category.
func (C Category) Declaration() ffxml.Declaration {
	return ffxml.Declaration{
		Category: C.Name,
		Param:    C.Param(),
		RFree:    fmt.Sprintf("%.2f", C.RFree),
		BFree:    pyFloat(C.BFree),
		VFree:    pyFloat(C.VFree),
	}
}

// CategoryOf returns the category for an element symbol or PolarH.
func CategoryOf(name string) (Category, error) {
	if name == PolarH {
		return Category{Name: PolarH, Free: "hpol", FreeParams: polarH}, nil
	}
	p, err := Reference(name)
	if err != nil {
		return Category{}, err
	}
	return Category{Name: name, Free: strings.ToLower(name), FreeParams: p}, nil
}

// DefaultOptimise is the set of categories fitted unless told otherwise.
var DefaultOptimise = []string{"F", "Cl", "Br", "S"}

// order of the ForceBalance block: the halogens and S first, the rest of the table, then polar H.
var declarationOrder = []string{"F", "Cl", "Br", "I", "S", "H", "B", "C", "N", "O", "P", "Si", PolarH}

// Categories validates the names in optimise and returns their categories
// in declaration order, without repetitions.
func Categories(optimise []string) ([]Category, error) {
	for _, v := range optimise {
		if !slices.Contains(declarationOrder, v) {
			return nil, newError(Lookup, "", "", fmt.Sprintf("cannot optimise unknown category %q", v), nil)
		}
	}
	ret := make([]Category, 0, len(optimise))
	for _, v := range declarationOrder {
		if !slices.Contains(optimise, v) {
			continue
		}
		c, err := CategoryOf(v)
		if err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
	return ret, nil
}
