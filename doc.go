/*
 * doc.go, part of ffmerge.
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

/*
Package ffmerge combines the single-molecule OpenMM force fields produced by
QUBEKit into one force field, ready for a ForceBalance fit of the
Lennard-Jones parameters.

	**ffmerge Capabilities**

	Finds the molecules of a QUBEKit run (or of a set of mol01, mol02...
	directories) with their force field and Chargemol output. Plain, gzip
	and zstd compressed files are read.

	Shifts the atom types and classes of each molecule so they don't clash
	with those of the molecules before it. Residue bonds and virtual sites
	keep their local indexes.

	Adds to the nonbonded atoms of the fitted elements their DDEC volume,
	free atom values and the expressions ForceBalance uses to get epsilon
	and sigma from a per-element radius. Hydrogens bonded to O, N or S get
	their own radius.

	Writes the combined force field, one element per line, only after the
	whole merge has succeeded.

The errors returned are of type *Error, and can be told apart with
errors.Is(err, Format) and the like.
*/
package ffmerge
