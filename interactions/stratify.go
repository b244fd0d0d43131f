/*
 * stratify.go, part of gocontacts.
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

package interactions

import (
	chem "github.com/rmera/gocontacts"
)

//stratify turns the hydrogen bonds found in a frame into the derived kinds: hydrogen bonds
//between residues are classified by the backbone atoms involved, and hydrogen bonds
//to solvent give water bridges.
func (C *Classifier) stratify(s *frameState) {
	//solvent residue -> non-solvent atoms hydrogen-bonded to it.
	waterPartners := make(map[int][]int)
	var waterPairs [][2]int
	for _, hb := range s.hbonds {
		si, sj := C.solvent(hb.i), C.solvent(hb.j)
		switch {
		case si && sj:
			waterPairs = append(waterPairs, [2]int{C.top.Atom(hb.i).Residue, C.top.Atom(hb.j).Residue})
		case si:
			w := C.top.Atom(hb.i).Residue
			waterPartners[w] = appendUnique(waterPartners[w], hb.j)
		case sj:
			w := C.top.Atom(hb.j).Residue
			waterPartners[w] = appendUnique(waterPartners[w], hb.i)
		default:
			k := C.backboneKind(hb.i, hb.j)
			if C.sel[k] {
				s.add(hb.i, hb.j, k, hb.d)
			}
		}
	}
	if !C.sel[WaterBridge] && !C.sel[ExtWaterBridge] {
		return
	}
	seen := make(map[[3]int]bool)
	bridge := func(i, j int, k Kind) {
		if i == j {
			return
		}
		if C.top.Atom(i).Residue == C.top.Atom(j).Residue && !C.p.Intra {
			return
		}
		if !C.selected(i, j) {
			return
		}
		if i > j {
			i, j = j, i
		}
		key := [3]int{i, j, int(k)}
		if seen[key] {
			return
		}
		seen[key] = true
		s.add(i, j, k, s.grid.Distance(s.f.Coords, i, j))
	}
	if C.sel[WaterBridge] {
		for _, partners := range waterPartners {
			for x, a := range partners {
				for _, b := range partners[x+1:] {
					bridge(a, b, WaterBridge)
				}
			}
		}
	}
	if C.sel[ExtWaterBridge] {
		for _, w := range waterPairs {
			for _, a := range waterPartners[w[0]] {
				for _, b := range waterPartners[w[1]] {
					bridge(a, b, ExtWaterBridge)
				}
			}
		}
	}
}

//backboneKind returns the hydrogen bond subtype for the atoms i and j.
func (C *Classifier) backboneKind(i, j int) Kind {
	bi := chem.IsBackbone(C.top.Atom(i).Name)
	bj := chem.IsBackbone(C.top.Atom(j).Name)
	switch {
	case bi && bj:
		return HBondBB
	case bi || bj:
		return HBondSB
	}
	return HBondSS
}

func appendUnique(s []int, v int) []int {
	for _, w := range s {
		if w == v {
			return s
		}
	}
	return append(s, v)
}

type decorator interface {
	Decorate(string) []string
}

//errDecorate decorates the error with the caller's name, if the error supports it.
func errDecorate(err error, caller string) error {
	if e, ok := err.(decorator); ok {
		e.Decorate("interactions." + caller)
	}
	return err
}
