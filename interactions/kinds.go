/*
 * kinds.go, part of gocontacts.
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
	"fmt"
	"sort"
	"strings"
)

//Kind is the type of an interaction.
type Kind int

//The interaction kinds, in evaluation order. The hydrogen bond subtypes are derived from
//the hydrogen bonds of each frame, see Params.Stratify.
const (
	HBond Kind = iota
	SaltBridge
	PiStacking
	TStacking
	PiCation
	Hydrophobic
	VdW
	HBondSS        //side chain - side chain hydrogen bond
	HBondSB        //side chain - backbone hydrogen bond
	HBondBB        //backbone - backbone hydrogen bond
	WaterBridge    //residue - water - residue
	ExtWaterBridge //residue - water - water - residue
	nKinds
)

var kindCodes = [nKinds]string{"hb", "sb", "ps", "ts", "pc", "hp", "vdw", "hbss", "hbsb", "hbbb", "wb", "wb2"}

var kindNames = [nKinds]string{
	"hydrogen-bond",
	"salt-bridge",
	"pi-stacking",
	"t-stacking",
	"pi-cation",
	"hydrophobic",
	"van-der-waals",
	"hbond-sidechain-sidechain",
	"hbond-sidechain-backbone",
	"hbond-backbone-backbone",
	"water-bridge",
	"extended-water-bridge",
}

//String returns the short code for the kind, used in the output.
func (k Kind) String() string {
	if k < 0 || k >= nKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindCodes[k]
}

//Name returns the long name of the kind.
func (k Kind) Name() string {
	if k < 0 || k >= nKinds {
		return k.String()
	}
	return kindNames[k]
}

//Derived returns true for the kinds obtained by stratifying hydrogen bonds.
func (k Kind) Derived() bool {
	return k >= HBondSS && k < nKinds
}

//AllKinds returns the kinds evaluated when all interactions are requested, in evaluation order.
func AllKinds() []Kind {
	return []Kind{HBond, SaltBridge, PiStacking, TStacking, PiCation, Hydrophobic, VdW}
}

//ParseKind returns the kind with the given code or long name (case insensitive).
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k := Kind(0); k < nKinds; k++ {
		if s == kindCodes[k] || s == kindNames[k] {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown interaction type %q", s)
}

//ParseKinds parses a comma-separated list of kinds. The kinds returned are unique and
//in evaluation order. "all" is equivalent to AllKinds().
func ParseKinds(s string) ([]Kind, error) {
	set := make(map[Kind]bool)
	for _, f := range strings.Split(s, ",") {
		if strings.TrimSpace(f) == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(f), "all") {
			for _, k := range AllKinds() {
				set[k] = true
			}
			continue
		}
		k, err := ParseKind(f)
		if err != nil {
			return nil, err
		}
		set[k] = true
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no interaction types given in %q", s)
	}
	ret := make([]Kind, 0, len(set))
	for k := range set {
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret, nil
}
