/*
 * cells.go, part of gocontacts.
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

//Package cells implements a cell list (uniform grid) for the search of all the
//pairs of points closer than a cutoff, with or without periodic boundary conditions
//(minimum image convention, orthorhombic boxes only).
package cells

import (
	"fmt"
	"math"
	"sort"

	v3 "github.com/rmera/gocontacts/v3"
)

//Pair is a pair of point indexes, I<J, closer than the cutoff, and their distance.
type Pair struct {
	I, J int
	D    float64
}

//maximum number of cells per point in non-periodic grids, so very sparse
//systems don't allocate huge grids.
const maxCellsPerPoint = 8

//Grid holds the geometry needed to bin the points of a frame in cells.
//The same Grid can be used for many frames, as long as the box doesn't change.
//A Grid is not modified by Pairs, so it can be shared among goroutines.
type Grid struct {
	cutoff   float64
	box      [3]float64
	periodic bool
}

//New returns a Grid for the given cutoff and box. box can be nil, empty or all zeros (no periodic
//boundary conditions), 3 values (the edges of an orthorhombic box) or 9 values (the box vectors, as
//rows). If any box edge is smaller than twice the cutoff, a *BoxTooSmallError is returned, as the
//minimum image convention can't guarantee correct results in that case.
func New(cutoff float64, box []float64) (*Grid, error) {
	if cutoff <= 0 || math.IsNaN(cutoff) || math.IsInf(cutoff, 0) {
		return nil, &Error{fmt.Sprintf("invalid cutoff %f", cutoff), []string{"New"}}
	}
	G := &Grid{cutoff: cutoff}
	edges, err := BoxEdges(box)
	if err != nil {
		return nil, errDecorate(err, "New")
	}
	if edges == nil {
		return G, nil
	}
	for _, v := range edges {
		if v < 2*cutoff {
			return nil, &BoxTooSmallError{Box: edges, Cutoff: cutoff, deco: []string{"New"}}
		}
	}
	copy(G.box[:], edges)
	G.periodic = true
	return G, nil
}

//BoxEdges returns the edges of the orthorhombic box described by box (see New), or nil if
//box describes no box at all. Non-orthorhombic boxes produce an error.
func BoxEdges(box []float64) ([]float64, error) {
	var edges [3]float64
	switch len(box) {
	case 0:
		return nil, nil
	case 3:
		copy(edges[:], box)
	case 9:
		for i, v := range box {
			if i%4 != 0 && math.Abs(v) > 1e-4 {
				return nil, &Error{"Only orthorhombic boxes are supported", []string{"BoxEdges"}}
			}
		}
		edges = [3]float64{box[0], box[4], box[8]}
	default:
		return nil, &Error{fmt.Sprintf("Box must have 0, 3 or 9 elements, got %d", len(box)), []string{"BoxEdges"}}
	}
	zeros := 0
	for _, v := range edges {
		if v < 0 || math.IsNaN(v) {
			return nil, &Error{fmt.Sprintf("Invalid box %v", edges), []string{"BoxEdges"}}
		}
		if v == 0 {
			zeros++
		}
	}
	if zeros == 3 {
		return nil, nil
	}
	if zeros > 0 {
		return nil, &Error{fmt.Sprintf("Box with zero-length edges %v", edges), []string{"BoxEdges"}}
	}
	return edges[:], nil
}

//Cutoff returns the cutoff of the grid
func (G *Grid) Cutoff() float64 {
	return G.cutoff
}

//Periodic returns true if the grid uses periodic boundary conditions
func (G *Grid) Periodic() bool {
	return G.periodic
}

//Distance returns the distance between the vectors i and j of coords,
//under the minimum image convention if the grid is periodic.
func (G *Grid) Distance(coords *v3.Matrix, i, j int) float64 {
	if !G.periodic {
		return coords.Distance(i, j)
	}
	return G.dist(coords.Vec(i), coords.Vec(j))
}

//Delta puts in d the vector from a to b, under the minimum image convention if the grid is periodic.
func (G *Grid) Delta(d, a, b []float64) {
	for k := 0; k < 3; k++ {
		x := b[k] - a[k]
		if G.periodic {
			x -= G.box[k] * math.Round(x/G.box[k])
		}
		d[k] = x
	}
}

func (G *Grid) dist(a, b []float64) float64 {
	var d [3]float64
	G.Delta(d[:], a, b)
	return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

//Pairs returns all the pairs of vectors in coords closer than, or at, the cutoff. Each
//pair appears only once, with I<J, and the slice is sorted by I and then by J.
func (G *Grid) Pairs(coords *v3.Matrix) []Pair {
	ret := make([]Pair, 0, coords.NVecs())
	G.PairsFunc(coords, func(i, j int, d float64) {
		ret = append(ret, Pair{I: i, J: j, D: d})
	})
	sort.Slice(ret, func(a, b int) bool {
		if ret[a].I != ret[b].I {
			return ret[a].I < ret[b].I
		}
		return ret[a].J < ret[b].J
	})
	return ret
}

//PairsFunc calls visit once for each pair of vectors closer than, or at, the cutoff, with i<j.
//The order of the calls is not specified.
func (G *Grid) PairsFunc(coords *v3.Matrix, visit func(i, j int, d float64)) {
	n := coords.NVecs()
	if n < 2 {
		return
	}
	l := G.layout(coords)
	//linked-list cell binning. Atoms are pushed in decreasing order so
	//each list is traversed in increasing atom order.
	head := make([]int, l.total())
	for i := range head {
		head[i] = -1
	}
	next := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		c := l.cellOf(coords.Vec(i))
		next[i] = head[c]
		head[c] = i
	}
	neigh := make([]int, 0, 27)
	cut := G.cutoff
	for c := range head {
		if head[c] < 0 {
			continue
		}
		neigh = l.neighbors(c, neigh[:0])
		for _, nc := range neigh {
			if nc < c || head[nc] < 0 {
				continue
			}
			for i := head[c]; i >= 0; i = next[i] {
				vi := coords.Vec(i)
				start := head[nc]
				if nc == c {
					start = next[i]
				}
				for j := start; j >= 0; j = next[j] {
					d := G.dist(vi, coords.Vec(j))
					if d > cut {
						continue
					}
					if i < j {
						visit(i, j, d)
					} else {
						visit(j, i, d)
					}
				}
			}
		}
	}
}

//layout is the actual grid for one frame.
type layout struct {
	n        [3]int
	size     [3]float64
	origin   [3]float64
	periodic bool
}

func (l *layout) total() int {
	return l.n[0] * l.n[1] * l.n[2]
}

func (G *Grid) layout(coords *v3.Matrix) *layout {
	l := &layout{periodic: G.periodic}
	if G.periodic {
		for k := 0; k < 3; k++ {
			l.n[k] = int(math.Floor(G.box[k] / G.cutoff))
			if l.n[k] < 1 {
				l.n[k] = 1
			}
			l.size[k] = G.box[k] / float64(l.n[k])
		}
		return l
	}
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	np := coords.NVecs()
	for i := 0; i < np; i++ {
		v := coords.Vec(i)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	size := G.cutoff
	for {
		total := 1
		for k := 0; k < 3; k++ {
			l.n[k] = int(math.Floor((hi[k]-lo[k])/size)) + 1
			total *= l.n[k]
		}
		if total <= maxCellsPerPoint*np+27 {
			break
		}
		size *= 1.5
	}
	l.size = [3]float64{size, size, size}
	l.origin = lo
	return l
}

func (l *layout) cellOf(v []float64) int {
	var idx [3]int
	for k := 0; k < 3; k++ {
		x := (v[k] - l.origin[k]) / l.size[k]
		i := int(math.Floor(x))
		if l.periodic {
			i %= l.n[k]
			if i < 0 {
				i += l.n[k]
			}
		} else if i >= l.n[k] { //NaN or rounding issues
			i = l.n[k] - 1
		} else if i < 0 {
			i = 0
		}
		idx[k] = i
	}
	return (idx[0]*l.n[1]+idx[1])*l.n[2] + idx[2]
}

//neighbors appends to buf the indexes of the distinct cells adjacent to c (c itself included).
//With periodic grids that have less than 3 cells along an axis, several offsets map to the same
//cell, and those are only included once.
func (l *layout) neighbors(c int, buf []int) []int {
	z := c % l.n[2]
	y := (c / l.n[2]) % l.n[1]
	x := c / (l.n[2] * l.n[1])
	for dx := -1; dx <= 1; dx++ {
		nx, ok := l.wrap(x+dx, 0)
		if !ok {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			ny, ok := l.wrap(y+dy, 1)
			if !ok {
				continue
			}
			for dz := -1; dz <= 1; dz++ {
				nz, ok := l.wrap(z+dz, 2)
				if !ok {
					continue
				}
				nc := (nx*l.n[1]+ny)*l.n[2] + nz
				if !contains(buf, nc) {
					buf = append(buf, nc)
				}
			}
		}
	}
	return buf
}

func (l *layout) wrap(i, axis int) (int, bool) {
	n := l.n[axis]
	if i >= 0 && i < n {
		return i, true
	}
	if !l.periodic {
		return 0, false
	}
	return (i%n + n) % n, true
}

func contains(s []int, v int) bool {
	for _, w := range s {
		if w == v {
			return true
		}
	}
	return false
}

//Errors

//Error is the general error for the package. It satisfies chem.Error.
type Error struct {
	message string
	deco    []string
}

func (err *Error) Error() string { return "cells: " + err.message }

//Decorate adds dec to the decoration slice and returns it.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical is always true for grid errors.
func (err *Error) Critical() bool { return true }

//BoxTooSmallError is returned when a periodic box has an edge shorter than twice the cutoff.
type BoxTooSmallError struct {
	Box    []float64
	Cutoff float64
	deco   []string
}

func (err *BoxTooSmallError) Error() string {
	return fmt.Sprintf("cells: box %v too small for cutoff %.3f (every edge must be at least %.3f)", err.Box, err.Cutoff, 2*err.Cutoff)
}

//Decorate adds dec to the decoration slice and returns it.
func (err *BoxTooSmallError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical is always true.
func (err *BoxTooSmallError) Critical() bool { return true }

type decorator interface {
	Decorate(string) []string
}

//errDecorate decorates the error with the caller's name, if the error supports it.
func errDecorate(err error, caller string) error {
	if e, ok := err.(decorator); ok {
		e.Decorate(caller)
	}
	return err
}
