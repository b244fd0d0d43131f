/*
 * selection.go, part of gocontacts.
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
	"strconv"
	"strings"
)

//Selection is a set of atoms, given by their chain, residue name, residue ID and atom name.
//It is built from a text such as "chain A,B and resid 1-50 60 and resname LYS ARG".
//The clauses joined by "and" must all match. Within a clause, any of the values
//(separated by spaces or commas) can match.
type Selection struct {
	text     string
	chains   map[string]bool
	resnames map[string]bool
	names    map[string]bool
	resids   [][2]int
}

//ParseSelection returns the Selection described by text. The keywords are chain, resname,
//resid and name. Residue IDs can be given as ranges (first-last, both included). An empty
//text, or "all", gives a nil Selection, which matches every atom.
func ParseSelection(text string) (*Selection, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "all") {
		return nil, nil
	}
	S := &Selection{text: text}
	for _, clause := range splitAnd(text) {
		f := strings.FieldsFunc(clause, func(r rune) bool { return r == ' ' || r == '\t' || r == ',' })
		if len(f) < 2 {
			return nil, fmt.Errorf("invalid selection %q: clause %q has no values", text, clause)
		}
		vals := f[1:]
		switch strings.ToLower(f[0]) {
		case "chain":
			S.chains = addAll(S.chains, vals, false)
		case "resname":
			S.resnames = addAll(S.resnames, vals, true)
		case "name":
			S.names = addAll(S.names, vals, true)
		case "resid":
			if S.resids != nil {
				return nil, fmt.Errorf("invalid selection %q: repeated resid clause", text)
			}
			for _, v := range vals {
				r, err := parseRange(v)
				if err != nil {
					return nil, fmt.Errorf("invalid selection %q: %w", text, err)
				}
				S.resids = append(S.resids, r)
			}
		default:
			return nil, fmt.Errorf("invalid selection %q: unknown keyword %q", text, f[0])
		}
	}
	return S, nil
}

//splitAnd splits text on the word "and", in any case.
func splitAnd(text string) []string {
	f := strings.Fields(text)
	ret := make([]string, 0, 2)
	start := 0
	for i, w := range f {
		if strings.EqualFold(w, "and") {
			ret = append(ret, strings.Join(f[start:i], " "))
			start = i + 1
		}
	}
	return append(ret, strings.Join(f[start:], " "))
}

func addAll(m map[string]bool, vals []string, upper bool) map[string]bool {
	//a repeated clause narrows the selection to the values in both.
	n := make(map[string]bool, len(vals))
	for _, v := range vals {
		if upper {
			v = strings.ToUpper(v)
		}
		if m == nil || m[v] {
			n[v] = true
		}
	}
	return n
}

//parseRange parses "n" or "first-last". Negative residue IDs are accepted.
func parseRange(v string) ([2]int, error) {
	sep := strings.Index(v[1:], "-") + 1
	if sep == 0 {
		n, err := strconv.Atoi(v)
		return [2]int{n, n}, err
	}
	first, err := strconv.Atoi(v[:sep])
	if err != nil {
		return [2]int{}, err
	}
	last, err := strconv.Atoi(v[sep+1:])
	if err != nil {
		return [2]int{}, err
	}
	if last < first {
		return [2]int{}, fmt.Errorf("empty residue range %s", v)
	}
	return [2]int{first, last}, nil
}

//String returns the text the selection was parsed from.
func (S *Selection) String() string {
	if S == nil {
		return "all"
	}
	return S.text
}

//Match returns true if the atom A is in the selection. A nil Selection matches all atoms.
//Chains are case-sensitive, residue and atom names are not.
func (S *Selection) Match(A *Atom) bool {
	if S == nil {
		return true
	}
	if S.chains != nil && !S.chains[A.Chain] {
		return false
	}
	if S.resnames != nil && !S.resnames[strings.ToUpper(A.Resname)] {
		return false
	}
	if S.names != nil && !S.names[strings.ToUpper(A.Name)] {
		return false
	}
	if S.resids == nil {
		return true
	}
	for _, r := range S.resids {
		if A.Resid >= r[0] && A.Resid <= r[1] {
			return true
		}
	}
	return false
}

//Select returns, for each atom in the topology, whether it is in S.
func (T *Topology) Select(S *Selection) []bool {
	ret := make([]bool, len(T.atoms))
	for i, at := range T.atoms {
		ret[i] = S.Match(at)
	}
	return ret
}

//SetSolvent marks as solvent the residues named as one of resnames (case-insensitive), and only
//those. An empty list restores the default names (see IsSolvent). Since it modifies the residues,
//it must be called before the topology is shared with other goroutines.
func (T *Topology) SetSolvent(resnames []string) {
	names := make(map[string]bool, len(resnames))
	for _, v := range resnames {
		names[strings.ToUpper(strings.TrimSpace(v))] = true
	}
	for _, r := range T.residues {
		if len(names) == 0 {
			r.Solvent = IsSolvent(r.Name)
			continue
		}
		r.Solvent = names[strings.ToUpper(r.Name)]
	}
}
