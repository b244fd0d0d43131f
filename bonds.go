/*
 * bonds.go, part of gocontacts.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
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

package chem

import (
	"fmt"
	"log"
	"sort"

	"github.com/rmera/gocontacts/cells"
	v3 "github.com/rmera/gocontacts/v3"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

type guessedBond struct {
	i, j int
	d    float64
}

//AssignBonds guesses the covalent bonds among atoms from the coordinates coord,
//using a simple distance criterion, similar to that described in DOI:10.1186/1758-2946-3-33.
//Two atoms are bonded if they are farther than 0.63 A and closer than the sum of their covalent
//radii plus 0.45 A. Atoms with more bonds than allowed for their element (i.e. more than one bond
//for hydrogens) only keep the shortest ones. Atoms with unknown elements get no bonds.
//box can be nil or the box for the coordinates, in which case the minimum image convention is used.
//It returns the bonds as pairs of atom indexes, with the smaller index first, sorted.
func AssignBonds(coord *v3.Matrix, atoms []*Atom, box []float64) ([][2]int, error) {
	if coord.NVecs() != len(atoms) {
		return nil, NewInconsistentTopologyError("", fmt.Sprintf("%d atoms and %d coordinates", len(atoms), coord.NVecs()), nil)
	}
	radii := make([]float64, len(atoms))
	maxrad := 0.0
	unknown := make([]string, 0)
	for i, at := range atoms {
		r, ok := CovalentRadius(at.Symbol)
		if !ok {
			if !isInString(unknown, at.Symbol) {
				unknown = append(unknown, at.Symbol)
			}
			continue
		}
		radii[i] = r
		if r > maxrad {
			maxrad = r
		}
	}
	if len(unknown) > 0 {
		log.Printf("AssignBonds: no covalent radius for element(s) %q, those atoms will get no bonds", unknown)
	}
	if maxrad == 0 {
		return nil, nil
	}
	cutoff := 2*maxrad + bondtol
	G, err := cells.New(cutoff, box)
	if err != nil {
		//with a tiny box, or a box we can't use, we just ignore periodicity.
		G, err = cells.New(cutoff, nil)
		if err != nil {
			return nil, errDecorate(err, "AssignBonds")
		}
	}
	perAtom := make([][]guessedBond, len(atoms))
	G.PairsFunc(coord, func(i, j int, d float64) {
		if radii[i] == 0 || radii[j] == 0 {
			return
		}
		if d > tooclose && d < radii[i]+radii[j]+bondtol {
			b := guessedBond{i, j, d}
			perAtom[i] = append(perAtom[i], b)
			perAtom[j] = append(perAtom[j], b)
		}
	})
	//Now we check that no atom has too many bonds, removing the longest ones.
	removed := make(map[[2]int]bool)
	for i, at := range atoms {
		maxb := elements[at.Symbol].maxbonds
		if maxb == 0 || len(perAtom[i]) <= maxb {
			continue
		}
		b := perAtom[i]
		sort.SliceStable(b, func(x, y int) bool { return b[x].d < b[y].d })
		for _, v := range b[maxb:] {
			removed[[2]int{v.i, v.j}] = true
		}
	}
	ret := make([][2]int, 0, len(atoms))
	for i, b := range perAtom {
		for _, v := range b {
			if v.i != i || removed[[2]int{v.i, v.j}] {
				continue //each bond is stored in both atoms, we only take it once.
			}
			ret = append(ret, [2]int{v.i, v.j})
		}
	}
	sort.Slice(ret, func(a, b int) bool {
		if ret[a][0] != ret[b][0] {
			return ret[a][0] < ret[b][0]
		}
		return ret[a][1] < ret[b][1]
	})
	return ret, nil
}
