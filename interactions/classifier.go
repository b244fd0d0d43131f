/*
 * classifier.go, part of gocontacts.
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

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/cells"
	"github.com/rmera/gocontacts/traj"
	v3 "github.com/rmera/gocontacts/v3"
	"gonum.org/v1/gonum/floats"
)

//Contact is one interaction detected in a frame. AtomI is always smaller than AtomJ.
type Contact struct {
	Frame int //index of the frame in the trajectory
	AtomI int
	AtomJ int
	Kind  Kind
	Value float64 //distance, in A, between the atoms or ring centroids involved.
}

//aromatic ring, represented by three equally spaced atoms.
type ring struct {
	atoms   [3]int
	residue int
}

//Classifier detects the interactions between the atoms of a topology, frame by frame.
//Once created, a Classifier is only read, so it can be used from several goroutines.
type Classifier struct {
	top      *chem.Topology
	p        Params
	sel      [nKinds]bool
	needHB   bool //hydrogen bonds are needed, for their own sake or for the derived kinds
	rawHB    bool //hydrogen bonds are reported as such
	donorH   [][]int
	acceptor []bool
	anion    []bool
	cation   []bool
	hphob    []float64 //van der Waals radius of the hydrophobic atoms, 0 for the rest.
	vdw      []float64 //van der Waals radius, 0 for atoms not considered
	rings    []ring
	cations  []int  //atoms that can take part in pi-cation interactions
	in1, in2 []bool //atoms in each selection, solvent included. nil if there is no selection.
	atomCut  float64
	siteCut  float64
	warner   *Warner
}

var halogens = []string{"F", "Cl", "Br", "I"}

//New returns a Classifier for the atoms in top, that will look for the given kinds of interactions
//using the criteria in p. If a warner is given, warnings about atoms that can't be considered for some
//interaction are sent to it, otherwise, a new Warner that logs to the standard logger is used.
func New(top *chem.Topology, p Params, kinds []Kind, warner ...*Warner) (*Classifier, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no interaction types requested")
	}
	C := &Classifier{top: top, p: p}
	if len(warner) > 0 && warner[0] != nil {
		C.warner = warner[0]
	} else {
		C.warner = NewWarner(nil)
	}
	for _, k := range kinds {
		if k < 0 || k >= nKinds {
			return nil, fmt.Errorf("invalid interaction type %d", int(k))
		}
		C.sel[k] = true
	}
	if p.Stratify && C.sel[HBond] {
		for _, k := range []Kind{HBondSS, HBondSB, HBondBB, WaterBridge, ExtWaterBridge} {
			C.sel[k] = true
		}
	}
	C.rawHB = C.sel[HBond] && !p.Stratify
	C.needHB = C.sel[HBond]
	for k := HBondSS; k < nKinds; k++ {
		C.needHB = C.needHB || C.sel[k]
	}
	if err := C.setSelections(); err != nil {
		return nil, err
	}
	C.typeAtoms()
	C.findRings()
	C.setCutoffs()
	return C, nil
}

//Kinds returns the kinds of interaction that can be reported, in evaluation order.
func (C *Classifier) Kinds() []Kind {
	ret := make([]Kind, 0, nKinds)
	for k := Kind(0); k < nKinds; k++ {
		if k == HBond && !C.rawHB {
			continue
		}
		if C.sel[k] {
			ret = append(ret, k)
		}
	}
	return ret
}

//Cutoff returns the largest distance at which an enabled interaction can be detected.
//Periodic boxes must be at least twice this value in each direction.
func (C *Classifier) Cutoff() float64 {
	if C.siteCut > C.atomCut {
		return C.siteCut
	}
	return C.atomCut
}

func (C *Classifier) warn(atom int, attribute, predicate, message string) {
	C.warner.Warn(chem.NewMissingAttributeWarning(atom, attribute, predicate, message))
}

func (C *Classifier) solvent(i int) bool {
	return C.top.ResidueOf(i).Solvent
}

//setSelections builds the atom masks for Sele and Sele2. Solvent atoms are always
//included, so water bridges between selected atoms can be found.
func (C *Classifier) setSelections() error {
	s1, s2, err := C.p.selections()
	if err != nil {
		return err
	}
	if s1 == nil && s2 == nil {
		return nil
	}
	C.in1 = C.top.Select(s1)
	C.in2 = C.in1
	if s2 != nil {
		C.in2 = C.top.Select(s2)
	}
	for i := range C.in1 {
		if C.solvent(i) {
			C.in1[i] = true
			C.in2[i] = true
		}
	}
	return nil
}

//selected returns true if the pair i, j joins an atom of each selection.
func (C *Classifier) selected(i, j int) bool {
	if C.in1 == nil {
		return true
	}
	return (C.in1[i] && C.in2[j]) || (C.in1[j] && C.in2[i])
}

//typeAtoms assigns to each atom the roles it can play in each interaction.
func (C *Classifier) typeAtoms() {
	n := C.top.Len()
	C.donorH = make([][]int, n)
	C.acceptor = make([]bool, n)
	C.anion = make([]bool, n)
	C.cation = make([]bool, n)
	C.hphob = make([]float64, n)
	C.vdw = make([]float64, n)
	wantIons := C.sel[SaltBridge] || C.sel[PiCation]
	hydrogens := 0
	for i := 0; i < n; i++ {
		at := C.top.Atom(i)
		if at.Symbol == "" {
			C.warn(i, "element", "all", "atoms with unknown element are not considered for any interaction")
			continue
		}
		if at.Symbol == "H" {
			hydrogens++
		}
		polar := at.Symbol == "N" || at.Symbol == "O" || at.Symbol == "S"
		if C.needHB && polar {
			C.acceptor[i] = true
			for _, v := range C.top.Neighbors(i) {
				if C.top.Atom(v).Symbol == "H" {
					C.donorH[i] = append(C.donorH[i], v)
				}
			}
		}
		solv := C.solvent(i)
		if solv {
			continue //solvent is only considered for hydrogen bonds
		}
		if wantIons {
			C.typeIon(at)
		}
		if C.sel[Hydrophobic] && (at.Symbol == "C" || at.Symbol == "S" || isIn(halogens, at.Symbol)) && !C.nextToPolar(i) {
			C.hphob[i], _ = chem.VdwRadius(at.Symbol)
		}
		if C.sel[VdW] && at.Symbol != "H" {
			r, ok := chem.VdwRadius(at.Symbol)
			if !ok {
				C.warn(i, "van der Waals radius", VdW.String(), fmt.Sprintf("no radius for element %s", at.Symbol))
				continue
			}
			C.vdw[i] = r
		}
	}
	if C.needHB && hydrogens == 0 && n > 0 {
		C.warn(0, "hydrogens", HBond.String(), "the topology has no hydrogens, no hydrogen bonds can be detected")
	}
}

//typeIon marks the charged groups. Charges read from the file are only used for atoms that
//are not in the tables of charged groups of standard residues.
func (C *Classifier) typeIon(at *chem.Atom) {
	i := at.Index
	switch {
	case chem.Anion(at.Resname, at.Name):
		C.anion[i] = true
	case chem.Cation(at.Resname, at.Name):
		C.cation[i] = true
	case at.HasCharge && at.Charge < 0:
		C.anion[i] = true
	case at.HasCharge && at.Charge > 0:
		C.cation[i] = true
	case at.Het && (at.Symbol == "N" || at.Symbol == "O") && C.sel[SaltBridge]:
		C.warn(i, "charge", SaltBridge.String(), "hetero groups without formal charges are not considered for salt bridges")
	}
	if C.cation[i] {
		C.cations = append(C.cations, i)
	}
}

//nextToPolar returns true if the atom i is bonded to a nitrogen or an oxygen.
func (C *Classifier) nextToPolar(i int) bool {
	for _, v := range C.top.Neighbors(i) {
		if s := C.top.Atom(v).Symbol; s == "N" || s == "O" {
			return true
		}
	}
	return false
}

func (C *Classifier) findRings() {
	if !C.sel[PiStacking] && !C.sel[TStacking] && !C.sel[PiCation] {
		return
	}
	for _, res := range C.top.Residues() {
		names, ok := chem.AromaticRing[res.Name]
		if !ok || res.Solvent {
			continue
		}
		r := ring{residue: res.Index}
		found := 0
		for k, name := range names {
			for _, a := range res.Atoms {
				if C.top.Atom(a).Name == name {
					r.atoms[k] = a
					found++
					break
				}
			}
		}
		if found != 3 {
			C.warn(res.Atoms[0], "ring atom", "aromatic", fmt.Sprintf("%s residues need the atoms %v", res.Name, names))
			continue
		}
		C.rings = append(C.rings, r)
	}
}

func (C *Classifier) setCutoffs() {
	raise := func(c *float64, v float64) {
		if v > *c {
			*c = v
		}
	}
	if C.needHB {
		raise(&C.atomCut, C.p.HBondDist)
	}
	if C.sel[SaltBridge] {
		raise(&C.atomCut, C.p.SaltBridgeDist)
	}
	maxr := func(radii []float64) float64 {
		m := 0.0
		for _, v := range radii {
			raise(&m, v)
		}
		return m
	}
	if r := maxr(C.hphob); r > 0 {
		raise(&C.atomCut, 2*r+C.p.HydrophobicTol)
	}
	if r := maxr(C.vdw); r > 0 {
		raise(&C.atomCut, 2*r+C.p.VdWTol)
	}
	if len(C.rings) == 0 {
		return
	}
	if C.sel[PiStacking] {
		raise(&C.siteCut, C.p.PiStackDist)
	}
	if C.sel[TStacking] {
		raise(&C.siteCut, C.p.TStackDist)
	}
	if C.sel[PiCation] {
		raise(&C.siteCut, C.p.PiCationDist)
	}
}

//related returns true if i and j are bonded or share a bonded neighbor.
func (C *Classifier) related(i, j int) bool {
	if C.top.Bonded(i, j) {
		return true
	}
	for _, v := range C.top.Neighbors(i) {
		if C.top.Bonded(v, j) {
			return true
		}
	}
	return false
}

//hbond is a hydrogen bond found in a frame, kept for the derived kinds.
type hbond struct {
	i, j int
	d    float64
}

//frameState holds what is collected while analyzing one frame.
type frameState struct {
	f        *traj.Frame
	grid     *cells.Grid
	contacts []Contact
	hbonds   []hbond
}

func (s *frameState) add(i, j int, k Kind, v float64) {
	if i > j {
		i, j = j, i
	}
	s.contacts = append(s.contacts, Contact{Frame: s.f.Index, AtomI: i, AtomJ: j, Kind: k, Value: v})
}

//Frame returns the contacts in the frame f, sorted by AtomI, AtomJ and Kind.
//It fails with a cells.BoxTooSmallError if the box of the frame is too small for the
//criteria in use.
func (C *Classifier) Frame(f *traj.Frame) ([]Contact, error) {
	if f.Coords == nil || f.Coords.NVecs() != C.top.Len() {
		return nil, chem.NewFormatError("", fmt.Sprintf("frame %d doesn't have coordinates for the %d atoms of the topology", f.Index, C.top.Len()), nil)
	}
	s := &frameState{f: f, contacts: make([]Contact, 0, 2*C.top.Len())}
	if C.atomCut > 0 {
		G, err := cells.New(C.atomCut, f.Box)
		if err != nil {
			return nil, errDecorate(err, "Frame")
		}
		s.grid = G
		G.PairsFunc(f.Coords, func(i, j int, d float64) { C.pair(s, i, j, d) })
	}
	if C.siteCut > 0 && len(C.rings) > 0 {
		if err := C.sites(s); err != nil {
			return nil, errDecorate(err, "Frame")
		}
	}
	if C.needHB {
		C.stratify(s)
	}
	sortContacts(s.contacts)
	return s.contacts, nil
}

//pair evaluates the atom-based predicates for the atoms i and j, at a distance d.
func (C *Classifier) pair(s *frameState, i, j int, d float64) {
	ri, rj := C.top.Atom(i).Residue, C.top.Atom(j).Residue
	if ri == rj && !C.p.Intra {
		return
	}
	if C.top.Bonded(i, j) || !C.selected(i, j) {
		return
	}
	if C.needHB && d <= C.p.HBondDist && (C.hbond(s, i, j) || C.hbond(s, j, i)) {
		s.hbonds = append(s.hbonds, hbond{i, j, d})
		if C.rawHB && !(C.solvent(i) && C.solvent(j)) {
			s.add(i, j, HBond, d)
		}
	}
	if C.sel[SaltBridge] && d <= C.p.SaltBridgeDist && ((C.anion[i] && C.cation[j]) || (C.cation[i] && C.anion[j])) {
		s.add(i, j, SaltBridge, d)
	}
	hp := C.hphob[i] > 0 && C.hphob[j] > 0 && d <= C.hphob[i]+C.hphob[j]+C.p.HydrophobicTol
	vdw := C.vdw[i] > 0 && C.vdw[j] > 0 && d <= C.vdw[i]+C.vdw[j]+C.p.VdWTol
	if (hp || vdw) && C.related(i, j) {
		return
	}
	if hp {
		s.add(i, j, Hydrophobic, d)
	}
	if vdw {
		s.add(i, j, VdW, d)
	}
}

//hbond returns true if donor has a hydrogen that is hydrogen-bonded to acceptor.
func (C *Classifier) hbond(s *frameState, donor, acceptor int) bool {
	if len(C.donorH[donor]) == 0 || !C.acceptor[acceptor] {
		return false
	}
	coords := s.f.Coords
	hd := make([]float64, 3)
	ha := make([]float64, 3)
	for _, h := range C.donorH[donor] {
		s.grid.Delta(hd, coords.Vec(h), coords.Vec(donor))
		s.grid.Delta(ha, coords.Vec(h), coords.Vec(acceptor))
		if 180-angle(hd, ha) <= C.p.HBondAngle {
			return true
		}
	}
	return false
}

//geometry of a ring in one frame.
type ringGeom struct {
	center []float64
	normal []float64
}

//sites evaluates the interactions that involve aromatic rings.
func (C *Classifier) sites(s *frameState) error {
	G, err := cells.New(C.siteCut, s.f.Box)
	if err != nil {
		return err
	}
	coords := s.f.Coords
	geoms := make([]ringGeom, len(C.rings))
	nsites := len(C.rings)
	if C.sel[PiCation] {
		nsites += len(C.cations)
	}
	data := make([]float64, 0, 3*nsites)
	rc := v3.Zeros(3)
	for k, r := range C.rings {
		rc.SomeVecs(coords, r.atoms[:])
		p0 := rc.Vec(0)
		//the other two atoms, as seen from the first one.
		G.Delta(rc.Vec(1), p0, rc.Vec(1))
		G.Delta(rc.Vec(2), p0, rc.Vec(2))
		center := make([]float64, 3)
		floats.Add(center, rc.Vec(1))
		floats.Add(center, rc.Vec(2))
		floats.Scale(1.0/3, center)
		floats.Add(center, p0)
		normal := v3.Zeros(1)
		normal.Cross(rc.VecView(2), rc.VecView(1))
		normal.Unit(normal)
		geoms[k] = ringGeom{center: center, normal: normal.Vec(0)}
		data = append(data, center...)
	}
	if C.sel[PiCation] {
		for _, c := range C.cations {
			data = append(data, coords.Vec(c)...)
		}
	}
	if len(data) < 6 {
		return nil
	}
	sitec, err := v3.NewMatrix(data)
	if err != nil {
		return err
	}
	nr := len(C.rings)
	delta := make([]float64, 3)
	G.PairsFunc(sitec, func(i, j int, d float64) {
		if i >= nr {
			return //two cations
		}
		ri := C.rings[i]
		if j < nr {
			C.stacking(s, G, ri, C.rings[j], geoms[i], geoms[j], d)
			return
		}
		c := C.cations[j-nr]
		if !C.sel[PiCation] || d > C.p.PiCationDist {
			return
		}
		if C.top.Atom(c).Residue == ri.residue && !C.p.Intra {
			return
		}
		if !C.selected(ri.atoms[0], c) {
			return
		}
		G.Delta(delta, geoms[i].center, coords.Vec(c))
		if fold(angle(geoms[i].normal, delta)) <= C.p.PiCationAngle {
			s.add(ri.atoms[0], c, PiCation, d)
		}
	})
	return nil
}

//stacking evaluates the pi-stacking and T-stacking criteria for two rings whose centers
//are at a distance d.
func (C *Classifier) stacking(s *frameState, G *cells.Grid, a, b ring, ga, gb ringGeom, d float64) {
	if a.residue == b.residue || !C.selected(a.atoms[0], b.atoms[0]) {
		return
	}
	normals := fold(angle(ga.normal, gb.normal))
	cc := make([]float64, 3)
	G.Delta(cc, ga.center, gb.center)
	psi := fold(angle(ga.normal, cc))
	if p := fold(angle(gb.normal, cc)); p < psi {
		psi = p
	}
	if C.sel[PiStacking] && d <= C.p.PiStackDist && normals <= C.p.PiStackAngle && psi <= C.p.PiStackPsi {
		s.add(a.atoms[0], b.atoms[0], PiStacking, d)
	}
	if C.sel[TStacking] && d <= C.p.TStackDist && normals >= C.p.TStackMinAngle && normals <= C.p.TStackMaxAngle && psi <= C.p.TStackPsi {
		s.add(a.atoms[0], b.atoms[0], TStacking, d)
	}
}

func sortContacts(c []Contact) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].AtomI != c[j].AtomI {
			return c[i].AtomI < c[j].AtomI
		}
		if c[i].AtomJ != c[j].AtomJ {
			return c[i].AtomJ < c[j].AtomJ
		}
		return c[i].Kind < c[j].Kind
	})
}

func isIn(container []string, test string) bool {
	for _, v := range container {
		if v == test {
			return true
		}
	}
	return false
}
