/*
 * handy.go, part of gocontacts.
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

import "math"

//Deg2Rad converts f from degrees to radians
func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

//Rad2Deg converts f from radians to degrees
func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}

//isInString returns true if test is in container, false otherwise.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

//BoxVectors returns the vectors (as the rows of a 9-element slice) of a cell with edges a, b and c
//and angles alpha, beta and gamma, in degrees. The first vector is aligned with the x axis, the second
//one lies in the xy plane.
func BoxVectors(a, b, c, alpha, beta, gamma float64) []float64 {
	al, be, ga := Deg2Rad(alpha), Deg2Rad(beta), Deg2Rad(gamma)
	cx := c * math.Cos(be)
	cy := c * (math.Cos(al) - math.Cos(be)*math.Cos(ga)) / math.Sin(ga)
	box := []float64{
		a, 0, 0,
		b * math.Cos(ga), b * math.Sin(ga), 0,
		cx, cy, math.Sqrt(c*c - cx*cx - cy*cy),
	}
	for i, v := range box {
		if math.Abs(v) < 1e-6 {
			box[i] = 0
		}
	}
	return box
}

//BoxParameters returns the edges and angles (in degrees) of the cell with the vectors in box (as rows).
func BoxParameters(box []float64) (a, b, c, alpha, beta, gamma float64) {
	norm := func(v []float64) float64 { return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]) }
	angle := func(v, w []float64, lv, lw float64) float64 {
		if lv == 0 || lw == 0 {
			return 90
		}
		return Rad2Deg(math.Acos((v[0]*w[0] + v[1]*w[1] + v[2]*w[2]) / (lv * lw)))
	}
	va, vb, vc := box[0:3], box[3:6], box[6:9]
	a, b, c = norm(va), norm(vb), norm(vc)
	return a, b, c, angle(vb, vc, b, c), angle(va, vc, a, c), angle(va, vb, a, b)
}
