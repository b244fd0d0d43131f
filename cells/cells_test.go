/*
 * cells_test.go, part of gocontacts.
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

package cells

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	v3 "github.com/rmera/gocontacts/v3"
)

func randomCoords(n int, side float64, seed int64) *v3.Matrix {
	r := rand.New(rand.NewSource(seed))
	c := v3.Zeros(n)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			c.Set(i, j, r.Float64()*side)
		}
	}
	return c
}

//bruteForce returns the pairs within cutoff, computed the slow way.
func bruteForce(G *Grid, coords *v3.Matrix) []Pair {
	ret := make([]Pair, 0)
	n := coords.NVecs()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := G.Distance(coords, i, j)
			if d <= G.Cutoff() {
				ret = append(ret, Pair{I: i, J: j, D: d})
			}
		}
	}
	return ret
}

func comparePairs(Te *testing.T, got, want []Pair) {
	Te.Helper()
	if len(got) != len(want) {
		Te.Fatalf("Got %d pairs, expected %d", len(got), len(want))
	}
	for i := range got {
		if got[i].I != want[i].I || got[i].J != want[i].J || math.Abs(got[i].D-want[i].D) > 1e-9 {
			Te.Fatalf("Pair %d differs: got %v expected %v", i, got[i], want[i])
		}
	}
}

func TestPairsNonPeriodic(Te *testing.T) {
	coords := randomCoords(500, 25, 1)
	G, err := New(3.5, nil)
	if err != nil {
		Te.Fatal(err)
	}
	got := G.Pairs(coords)
	comparePairs(Te, got, bruteForce(G, coords))
	fmt.Println("Non periodic pairs:", len(got))
}

func TestPairsPeriodic(Te *testing.T) {
	//random points, some of them outside the box, which must be wrapped.
	coords := randomCoords(400, 30, 2)
	for i := 0; i < 400; i += 7 {
		coords.Set(i, 0, coords.At(i, 0)-30)
	}
	G, err := New(4, []float64{20, 0, 0, 0, 22, 0, 0, 0, 25})
	if err != nil {
		Te.Fatal(err)
	}
	got := G.Pairs(coords)
	comparePairs(Te, got, bruteForce(G, coords))
}

//With a box between 2 and 3 times the cutoff, the grid has only 2 cells along each axis
//and the neighbor cells must not be visited twice.
func TestPairsTwoCellsPerAxis(Te *testing.T) {
	coords := randomCoords(150, 7, 3)
	G, err := New(3, []float64{7, 7, 7})
	if err != nil {
		Te.Fatal(err)
	}
	got := G.Pairs(coords)
	comparePairs(Te, got, bruteForce(G, coords))
	seen := make(map[[2]int]bool)
	for _, p := range got {
		if p.I >= p.J {
			Te.Errorf("Pair not canonical: %v", p)
		}
		k := [2]int{p.I, p.J}
		if seen[k] {
			Te.Errorf("Duplicated pair %v", p)
		}
		seen[k] = true
	}
}

func TestMinimumImage(Te *testing.T) {
	coords, _ := v3.NewMatrix([]float64{0.5, 5, 5, 9.5, 5, 5})
	G, err := New(2, []float64{10, 10, 10})
	if err != nil {
		Te.Fatal(err)
	}
	p := G.Pairs(coords)
	if len(p) != 1 || math.Abs(p[0].D-1) > 1e-9 {
		Te.Errorf("Expected one pair at distance 1 across the boundary, got %v", p)
	}
	G2, _ := New(2, nil)
	if p := G2.Pairs(coords); len(p) != 0 {
		Te.Errorf("Without a box the atoms are 9 A apart, got %v", p)
	}
	if d, d2 := G.Distance(coords, 0, 1), G2.Distance(coords, 0, 1); math.Abs(d-1) > 1e-9 || math.Abs(d2-9) > 1e-9 {
		Te.Errorf("Expected distances 1 and 9, got %f and %f", d, d2)
	}
}

func TestBoxEdgesKept(Te *testing.T) {
	for _, box := range [][]float64{{10, 11, 12}, {10, 0, 0, 0, 11, 0, 0, 0, 12}} {
		G, err := New(2, box)
		if err != nil {
			Te.Fatal(err)
		}
		if !G.Periodic() || G.box != [3]float64{10, 11, 12} {
			Te.Errorf("Box %v stored as %v", box, G.box)
		}
	}
}

func TestBoxTooSmall(Te *testing.T) {
	_, err := New(3, []float64{4, 4, 4})
	var btse *BoxTooSmallError
	if !errors.As(err, &btse) {
		Te.Fatalf("Expected a BoxTooSmallError, got %v", err)
	}
	fmt.Println(err)
	if _, err := New(3, []float64{6, 6, 6}); err != nil {
		Te.Errorf("A box of exactly twice the cutoff should be accepted: %v", err)
	}
	if _, err := New(3, []float64{10, 1, 0, 0, 10, 0, 0, 0, 10}); err == nil {
		Te.Error("Triclinic boxes should be rejected")
	}
	if _, err := New(0, nil); err == nil {
		Te.Error("A zero cutoff should be rejected")
	}
	G, err := New(3, make([]float64, 9))
	if err != nil || G.Periodic() {
		Te.Errorf("An all-zero box means no box: %v", err)
	}
}

func TestSparse(Te *testing.T) {
	//two far away clusters shouldn't create a huge grid.
	coords, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0, 1e5, 1e5, 1e5, 1e5 + 1, 1e5, 1e5})
	G, _ := New(1.5, nil)
	p := G.Pairs(coords)
	if len(p) != 2 || p[0].I != 0 || p[0].J != 1 || p[1].I != 2 || p[1].J != 3 {
		Te.Errorf("Unexpected pairs %v", p)
	}
}
