/*
 * interactions_test.go, part of gocontacts.
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
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/cells"
	"github.com/rmera/gocontacts/traj"
	v3 "github.com/rmera/gocontacts/v3"
)

func atom(name, symbol, resname, chain string, resid int) *chem.Atom {
	return &chem.Atom{Name: name, Symbol: symbol, Resname: resname, Chain: chain, Resid: resid}
}

func topology(Te *testing.T, atoms []*chem.Atom, bonds [][2]int) *chem.Topology {
	Te.Helper()
	top, err := chem.NewTopology(atoms, bonds)
	if err != nil {
		Te.Fatal(err)
	}
	return top
}

func frame(Te *testing.T, box []float64, coords ...float64) *traj.Frame {
	Te.Helper()
	c, err := v3.NewMatrix(coords)
	if err != nil {
		Te.Fatal(err)
	}
	return &traj.Frame{Coords: c, Box: box}
}

func quietWarner() *Warner {
	return NewWarner(log.New(io.Discard, "", 0))
}

func classify(Te *testing.T, top *chem.Topology, p Params, kinds []Kind, f *traj.Frame) []Contact {
	Te.Helper()
	C, err := New(top, p, kinds, quietWarner())
	if err != nil {
		Te.Fatal(err)
	}
	c, err := C.Frame(f)
	if err != nil {
		Te.Fatal(err)
	}
	return c
}

func TestParseKinds(Te *testing.T) {
	k, err := ParseKinds("hb, sb,hb,van-der-waals")
	if err != nil {
		Te.Fatal(err)
	}
	if len(k) != 3 || k[0] != HBond || k[1] != SaltBridge || k[2] != VdW {
		Te.Errorf("Unexpected kinds %v", k)
	}
	k, err = ParseKinds("all,wb")
	if err != nil || len(k) != len(AllKinds())+1 || k[len(k)-1] != WaterBridge {
		Te.Errorf("Unexpected kinds %v, %v", k, err)
	}
	for _, bad := range []string{"", "hb,xx", ","} {
		if _, err := ParseKinds(bad); err == nil {
			Te.Errorf("Expected an error for %q", bad)
		}
	}
	if VdW.String() != "vdw" || VdW.Name() != "van-der-waals" || !WaterBridge.Derived() || HBond.Derived() {
		Te.Error("Wrong kind names")
	}
}

func TestParams(Te *testing.T) {
	p, err := ParamsFromMap(map[string]string{"hbond_dist": "3.2", "STRATIFY": "true"})
	if err != nil {
		Te.Fatal(err)
	}
	if p.HBondDist != 3.2 || !p.Stratify || p.VdWTol != DefaultParams().VdWTol {
		Te.Errorf("Unexpected parameters %+v", p)
	}
	bad := []map[string]string{
		{"NOT_A_KEY": "1"},
		{"SB_DIST": "far"},
		{"SB_DIST": "-1"},
		{"TS_ANGLE_MIN": "80", "TS_ANGLE_MAX": "70"},
		{"INTRA": "maybe"},
	}
	for _, m := range bad {
		if _, err := ParamsFromMap(m); err == nil {
			Te.Errorf("Expected an error for %v", m)
		}
	}
	name := filepath.Join(Te.TempDir(), "params.env")
	content := "# stricter hydrogen bonds\nHBOND_DIST=3.0\nHBOND_ANGLE=40\nINTRA=1\n"
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		Te.Fatal(err)
	}
	p, err = ParamsFromFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	if p.HBondDist != 3 || p.HBondAngle != 40 || !p.Intra {
		Te.Errorf("Parameters not read from file: %+v", p)
	}
	if _, err := ParamsFromFile(filepath.Join(Te.TempDir(), "nope.env")); err == nil {
		Te.Error("Expected an error for a missing file")
	}
}

//Two bonded atoms are never reported as van der Waals contacts.
func TestBondedPair(Te *testing.T) {
	atoms := func() []*chem.Atom {
		return []*chem.Atom{atom("C1", "C", "LIG", "A", 1), atom("C2", "C", "LIH", "A", 2)}
	}
	f := frame(Te, nil, 0, 0, 0, 2, 0, 0)
	c := classify(Te, topology(Te, atoms(), [][2]int{{0, 1}}), DefaultParams(), AllKinds(), f)
	if len(c) != 0 {
		Te.Errorf("Expected no contacts for bonded atoms, got %v", c)
	}
	c = classify(Te, topology(Te, atoms(), nil), DefaultParams(), AllKinds(), f)
	if len(c) != 2 || c[0].Kind != Hydrophobic || c[1].Kind != VdW || c[1].Value != 2 {
		Te.Errorf("Expected a hydrophobic and a vdW contact, got %v", c)
	}
}

func TestSameResidue(Te *testing.T) {
	atoms := func() []*chem.Atom {
		return []*chem.Atom{atom("C1", "C", "LIG", "A", 1), atom("C2", "C", "LIG", "A", 1)}
	}
	f := frame(Te, nil, 0, 0, 0, 2.5, 0, 0)
	if c := classify(Te, topology(Te, atoms(), nil), DefaultParams(), []Kind{VdW}, f); len(c) != 0 {
		Te.Errorf("Expected no contacts within a residue, got %v", c)
	}
	p := DefaultParams()
	p.Intra = true
	if c := classify(Te, topology(Te, atoms(), nil), p, []Kind{VdW}, f); len(c) != 1 {
		Te.Errorf("Expected one intra-residue contact, got %v", c)
	}
}

func hbondSystem(Te *testing.T, acceptorName string, hy float64) (*chem.Topology, *traj.Frame) {
	atoms := []*chem.Atom{
		atom("N", "N", "GLY", "A", 1),
		atom("H", "H", "GLY", "A", 1),
		atom(acceptorName, "O", "SER", "A", 2),
	}
	top := topology(Te, atoms, [][2]int{{0, 1}})
	hx := 1.0
	if hy != 0 {
		hx = 0
	}
	return top, frame(Te, nil, 0, 0, 0, hx, hy, 0, 2.9, 0, 0)
}

func TestHBond(Te *testing.T) {
	top, f := hbondSystem(Te, "O", 0)
	c := classify(Te, top, DefaultParams(), []Kind{HBond}, f)
	if len(c) != 1 || c[0].AtomI != 0 || c[0].AtomJ != 2 || c[0].Kind != HBond || math.Abs(c[0].Value-2.9) > 1e-9 {
		Te.Fatalf("Expected one hydrogen bond, got %v", c)
	}
	//hydrogen pointing away from the acceptor
	top, f = hbondSystem(Te, "O", 1)
	if c := classify(Te, top, DefaultParams(), []Kind{HBond}, f); len(c) != 0 {
		Te.Errorf("Expected no hydrogen bonds for a bent geometry, got %v", c)
	}
	p := DefaultParams()
	p.Stratify = true
	top, f = hbondSystem(Te, "O", 0)
	if c := classify(Te, top, p, []Kind{HBond}, f); len(c) != 1 || c[0].Kind != HBondBB {
		Te.Errorf("Expected a backbone-backbone hydrogen bond, got %v", c)
	}
	top, f = hbondSystem(Te, "OG", 0)
	if c := classify(Te, top, p, []Kind{HBond}, f); len(c) != 1 || c[0].Kind != HBondSB {
		Te.Errorf("Expected a sidechain-backbone hydrogen bond, got %v", c)
	}
}

func TestSaltBridge(Te *testing.T) {
	atoms := []*chem.Atom{
		atom("OD1", "O", "ASP", "A", 1),
		atom("NZ", "N", "LYS", "A", 2),
		atom("NA", "Na", "NA", "I", 3),
	}
	atoms[2].HasCharge, atoms[2].Charge = true, 1
	top := topology(Te, atoms, nil)
	f := frame(Te, nil, 0, 0, 0, 3.5, 0, 0, -3, 0, 0)
	c := classify(Te, top, DefaultParams(), []Kind{SaltBridge}, f)
	if len(c) != 2 || c[0].AtomJ != 1 || c[1].AtomJ != 2 {
		Te.Errorf("Expected two salt bridges, got %v", c)
	}
}

//ring returns the coordinates of the three ring atoms of a 6-membered ring centered at
//center, with u and v (unit vectors) defining its plane.
func ringCoords(center, u, v []float64) []float64 {
	ret := make([]float64, 0, 9)
	for k := 0; k < 3; k++ {
		a := float64(k) * 2 * math.Pi / 3
		for i := 0; i < 3; i++ {
			ret = append(ret, center[i]+1.4*(math.Cos(a)*u[i]+math.Sin(a)*v[i]))
		}
	}
	return ret
}

func phe(resid int) []*chem.Atom {
	return []*chem.Atom{atom("CG", "C", "PHE", "A", resid), atom("CE1", "C", "PHE", "A", resid), atom("CE2", "C", "PHE", "A", resid)}
}

func TestRings(Te *testing.T) {
	x, y, z := []float64{1, 0, 0}, []float64{0, 1, 0}, []float64{0, 0, 1}
	atoms := append(phe(1), phe(2)...)
	atoms = append(atoms, atom("NZ", "N", "LYS", "A", 3))
	top := topology(Te, atoms, nil)
	kinds := []Kind{PiStacking, TStacking, PiCation}
	//parallel rings, 3.8 A apart, and a cation above the first one, on the other side.
	coords := append(ringCoords([]float64{0, 0, 0}, x, y), ringCoords([]float64{0, 0, 3.8}, x, y)...)
	coords = append(coords, 0, 0, -4)
	c := classify(Te, top, DefaultParams(), kinds, frame(Te, nil, coords...))
	if len(c) != 2 {
		Te.Fatalf("Expected a pi-stacking and a pi-cation contact, got %v", c)
	}
	if c[0].Kind != PiStacking || c[0].AtomI != 0 || c[0].AtomJ != 3 || math.Abs(c[0].Value-3.8) > 1e-6 {
		Te.Errorf("Wrong pi-stacking contact %v", c[0])
	}
	if c[1].Kind != PiCation || c[1].AtomI != 0 || c[1].AtomJ != 6 || math.Abs(c[1].Value-4) > 1e-6 {
		Te.Errorf("Wrong pi-cation contact %v", c[1])
	}
	//the same, with the second ring and the cation one box away.
	coords = append(ringCoords([]float64{0, 0, 0}, x, y), ringCoords([]float64{0, 0, 23.8}, x, y)...)
	coords = append(coords, 0, 0, 16)
	c = classify(Te, top, DefaultParams(), kinds, frame(Te, []float64{20, 20, 20}, coords...))
	if len(c) != 2 || c[0].Kind != PiStacking || c[1].Kind != PiCation || math.Abs(c[0].Value-3.8) > 1e-6 || math.Abs(c[1].Value-4) > 1e-6 {
		Te.Errorf("Expected the same contacts across the periodic boundary, got %v", c)
	}
	//perpendicular rings
	coords = append(ringCoords([]float64{0, 0, 0}, x, y), ringCoords([]float64{0, 0, 4.5}, x, z)...)
	coords = append(coords, 20, 20, 20)
	c = classify(Te, top, DefaultParams(), kinds, frame(Te, nil, coords...))
	if len(c) != 1 || c[0].Kind != TStacking {
		Te.Errorf("Expected one T-stacking contact, got %v", c)
	}
}

func TestWaterBridges(Te *testing.T) {
	p := DefaultParams()
	p.Stratify = true
	atoms := []*chem.Atom{
		atom("OG", "O", "SER", "A", 1),
		atom("OH2", "O", "TIP3", "W", 1),
		atom("H1", "H", "TIP3", "W", 1),
		atom("H2", "H", "TIP3", "W", 1),
		atom("OG", "O", "SER", "A", 2),
	}
	bonds := [][2]int{{1, 2}, {1, 3}}
	f := frame(Te, nil, 2.8, 0, 0, 0, 0, 0, 0.96, 0, 0, -0.96, 0, 0, -2.8, 0, 0)
	c := classify(Te, topology(Te, atoms, bonds), p, []Kind{HBond}, f)
	if len(c) != 1 || c[0].Kind != WaterBridge || c[0].AtomI != 0 || c[0].AtomJ != 4 || math.Abs(c[0].Value-5.6) > 1e-9 {
		Te.Errorf("Expected one water bridge, got %v", c)
	}
	c = classify(Te, topology(Te, atoms, bonds), DefaultParams(), []Kind{HBond}, f)
	if len(c) != 2 || c[0].Kind != HBond || c[1].Kind != HBond {
		Te.Errorf("Expected two hydrogen bonds to water, got %v", c)
	}
	//residue - water - water - residue
	atoms = []*chem.Atom{
		atom("OG", "O", "SER", "A", 1),
		atom("OH2", "O", "TIP3", "W", 1),
		atom("H1", "H", "TIP3", "W", 1),
		atom("H2", "H", "TIP3", "W", 1),
		atom("OH2", "O", "TIP3", "W", 2),
		atom("H1", "H", "TIP3", "W", 2),
		atom("H2", "H", "TIP3", "W", 2),
		atom("OG", "O", "SER", "A", 2),
	}
	bonds = [][2]int{{1, 2}, {1, 3}, {4, 5}, {4, 6}}
	f = frame(Te, nil,
		2.8, 0, 0,
		0, 0, 0, 0.96, 0, 0, -0.96, 0, 0,
		-2.8, 0, 0, -3.76, 0, 0, -2.8, 0.96, 0,
		-5.6, 0, 0)
	c = classify(Te, topology(Te, atoms, bonds), p, []Kind{HBond}, f)
	if len(c) != 1 || c[0].Kind != ExtWaterBridge || c[0].AtomI != 0 || c[0].AtomJ != 7 {
		Te.Errorf("Expected one extended water bridge, got %v", c)
	}
}

func TestSelections(Te *testing.T) {
	atoms := func() []*chem.Atom {
		return []*chem.Atom{
			atom("OD1", "O", "ASP", "A", 1),
			atom("NZ", "N", "LYS", "A", 2),
			atom("NZ", "N", "LYS", "B", 3),
		}
	}
	f := frame(Te, nil, 0, 0, 0, 3.5, 0, 0, -3.5, 0, 0)
	cases := []struct {
		sele, sele2 string
		pairs       [][2]int
	}{
		{"", "", [][2]int{{0, 1}, {0, 2}}},
		{"chain B", "", nil},
		{"resname ASP LYS and chain A", "", [][2]int{{0, 1}}},
		{"resname LYS", "chain A", [][2]int{{0, 1}, {0, 2}}},
		{"chain A", "chain A", [][2]int{{0, 1}}},
		{"name NZ", "name NZ", nil},
	}
	for _, cs := range cases {
		p := DefaultParams()
		p.Sele, p.Sele2 = cs.sele, cs.sele2
		c := classify(Te, topology(Te, atoms(), nil), p, []Kind{SaltBridge}, f)
		if len(c) != len(cs.pairs) {
			Te.Errorf("%q/%q: expected %d contacts, got %v", cs.sele, cs.sele2, len(cs.pairs), c)
			continue
		}
		for i, pr := range cs.pairs {
			if c[i].AtomI != pr[0] || c[i].AtomJ != pr[1] {
				Te.Errorf("%q/%q: expected pair %v, got %v", cs.sele, cs.sele2, pr, c[i])
			}
		}
	}
	p, err := ParamsFromMap(map[string]string{"SELE": "chain A", "sele2": "resid 3"})
	if err != nil || p.Sele != "chain A" || p.Sele2 != "resid 3" {
		Te.Errorf("Selections not read: %+v %v", p, err)
	}
	if _, err := ParamsFromMap(map[string]string{"SELE": "segid X"}); err == nil {
		Te.Error("Expected an error for an invalid selection")
	}
	p = DefaultParams()
	p.Sele2 = "resid"
	if _, err := New(topology(Te, atoms(), nil), p, []Kind{SaltBridge}, quietWarner()); err == nil {
		Te.Error("Expected an error for an invalid second selection")
	}
}

//Water bridges are found between selected atoms, and the solvent residue names can be changed.
func TestSelectedBridges(Te *testing.T) {
	atoms := func(water string) []*chem.Atom {
		return []*chem.Atom{
			atom("OG", "O", "SER", "A", 1),
			atom("OH2", "O", water, "W", 7),
			atom("H1", "H", water, "W", 7),
			atom("H2", "H", water, "W", 7),
			atom("OG", "O", "SER", "A", 2),
		}
	}
	bonds := [][2]int{{1, 2}, {1, 3}}
	f := frame(Te, nil, 2.8, 0, 0, 0, 0, 0, 0.96, 0, 0, -0.96, 0, 0, -2.8, 0, 0)
	p := DefaultParams()
	p.Stratify = true
	p.Sele, p.Sele2 = "resid 1", "resid 2"
	c := classify(Te, topology(Te, atoms("TIP3"), bonds), p, []Kind{HBond}, f)
	if len(c) != 1 || c[0].Kind != WaterBridge {
		Te.Errorf("Expected a water bridge between the selections, got %v", c)
	}
	p.Sele2 = "resid 1"
	if c := classify(Te, topology(Te, atoms("TIP3"), bonds), p, []Kind{HBond}, f); len(c) != 0 {
		Te.Errorf("Expected no contacts within the first selection, got %v", c)
	}
	p = DefaultParams()
	p.Stratify = true
	top := topology(Te, atoms("WTR"), bonds)
	if c := classify(Te, top, p, []Kind{HBond}, f); len(c) == 0 || c[0].Kind == WaterBridge {
		Te.Errorf("WTR is not solvent by default, got %v", c)
	}
	top.SetSolvent([]string{"wtr"})
	if c := classify(Te, top, p, []Kind{HBond}, f); len(c) != 1 || c[0].Kind != WaterBridge {
		Te.Errorf("Expected a water bridge through WTR, got %v", c)
	}
}

func TestWarnings(Te *testing.T) {
	atoms := []*chem.Atom{
		atom("X1", "Xx", "UNK", "A", 1),
		atom("X2", "Xx", "UNK", "A", 2),
		atom("Q", "", "UNK", "A", 3),
		atom("C", "C", "UNK", "A", 4),
	}
	w := quietWarner()
	C, err := New(topology(Te, atoms, nil), DefaultParams(), []Kind{VdW}, w)
	if err != nil {
		Te.Fatal(err)
	}
	warns := w.Warnings()
	if len(warns) != 2 {
		Te.Fatalf("Expected one warning per cause, got %v", warns)
	}
	if warns[0].Attribute != "element" && warns[1].Attribute != "element" {
		Te.Errorf("Expected a warning for the missing element, got %v", warns)
	}
	c, err := C.Frame(frame(Te, nil, 0, 0, 0, 1, 0, 0, 2, 0, 0, 10, 0, 0))
	if err != nil || len(c) != 0 {
		Te.Errorf("Atoms without radius should be skipped: %v %v", c, err)
	}
	if w.Warn(chem.NewMissingAttributeWarning(7, "element", "all", "atoms with unknown element are not considered for any interaction")) {
		Te.Error("A repeated cause should not be reported again")
	}
}

func TestBoxTooSmall(Te *testing.T) {
	atoms := []*chem.Atom{atom("C1", "C", "LIG", "A", 1), atom("C2", "C", "LIH", "A", 2)}
	C, err := New(topology(Te, atoms, nil), DefaultParams(), []Kind{VdW}, quietWarner())
	if err != nil {
		Te.Fatal(err)
	}
	if C.Cutoff() < 3 {
		Te.Fatalf("Unexpected cutoff %f", C.Cutoff())
	}
	_, err = C.Frame(frame(Te, []float64{4, 0, 0, 0, 4, 0, 0, 0, 4}, 0, 0, 0, 2, 0, 0))
	var bts *cells.BoxTooSmallError
	if !errors.As(err, &bts) {
		Te.Errorf("Expected a BoxTooSmallError, got %v", err)
	}
	//with a large enough box, the minimum image is used.
	c, err := C.Frame(frame(Te, []float64{20, 0, 0, 0, 20, 0, 0, 0, 20}, 1, 1, 1, 19, 1, 1))
	if err != nil || len(c) != 1 || math.Abs(c[0].Value-2) > 1e-9 {
		Te.Errorf("Expected one contact across the boundary, got %v %v", c, err)
	}
}
