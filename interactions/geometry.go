/*
 * geometry.go, part of gocontacts.
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
	"math"

	chem "github.com/rmera/gocontacts"
	"gonum.org/v1/gonum/floats"
)

//angle returns the angle between a and b, in degrees. If one of the vectors is zero,
//it returns 90.
func angle(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 90
	}
	c := floats.Dot(a, b) / (na * nb)
	c = math.Max(-1, math.Min(1, c))
	return chem.Rad2Deg(math.Acos(c))
}

//fold maps an angle between two lines (not vectors) to [0,90].
func fold(a float64) float64 {
	if a > 90 {
		return 180 - a
	}
	return a
}
