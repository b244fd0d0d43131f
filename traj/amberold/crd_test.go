/*
 * crd_test.go, part of gocontacts.
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

package amberold

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/rmera/gocontacts"
	v3 "github.com/rmera/gocontacts/v3"
	"gonum.org/v1/gonum/mat"
)

func frameCoords(natoms, i int) *v3.Matrix {
	m := v3.Zeros(natoms)
	for j := 0; j < natoms; j++ {
		m.Set(j, 0, float64(i)+0.125)
		m.Set(j, 1, float64(j))
		m.Set(j, 2, -100-float64(i*j)) //fields that run into each other
	}
	return m
}

//mdcrd returns the text of a trajectory with the given number of atoms and frames.
func mdcrd(natoms, frames int, box bool) string {
	var b strings.Builder
	b.WriteString("test trajectory\n")
	for i := 0; i < frames; i++ {
		c := frameCoords(natoms, i)
		n := 0
		for j := 0; j < natoms; j++ {
			for k := 0; k < 3; k++ {
				fmt.Fprintf(&b, "%8.3f", c.At(j, k))
				n++
				if n%10 == 0 {
					b.WriteString("\n")
				}
			}
		}
		if n%10 != 0 {
			b.WriteString("\n")
		}
		if box {
			fmt.Fprintf(&b, "%8.3f%8.3f%8.3f\n", 40.0, 41.0, 42.5)
		}
	}
	return b.String()
}

func reader(Te *testing.T, s string, natoms int) *CrdObj {
	Te.Helper()
	C, err := NewReader(io.NopCloser(strings.NewReader(s)), "test.mdcrd", natoms)
	if err != nil {
		Te.Fatal(err)
	}
	return C
}

func TestCrd(Te *testing.T) {
	for _, natoms := range []int{1, 3, 4, 7} {
		for _, box := range []bool{false, true} {
			if natoms == 1 && box {
				continue
			}
			C := reader(Te, mdcrd(natoms, 3, box), natoms)
			if C.Title() != "test trajectory" {
				Te.Errorf("Wrong title %q", C.Title())
			}
			coords := v3.Zeros(natoms)
			i := 0
			for ; ; i++ {
				b := make([]float64, 9)
				err := C.Next(coords, b)
				if err != nil {
					if !chem.IsLastFrame(err) {
						Te.Fatalf("%d atoms, box %t: %v", natoms, box, err)
					}
					break
				}
				if !mat.EqualApprox(coords, frameCoords(natoms, i), 1e-9) {
					Te.Errorf("%d atoms, box %t: frame %d has wrong coordinates %v", natoms, box, i, coords)
				}
				if box && (b[0] != 40 || b[4] != 41 || b[8] != 42.5) {
					Te.Errorf("%d atoms: frame %d has the wrong box %v", natoms, i, b)
				}
				if !box && b[0] != 0 {
					Te.Errorf("%d atoms: frame %d has a box %v", natoms, i, b)
				}
			}
			if i != 3 {
				Te.Errorf("%d atoms, box %t: read %d frames, expected 3", natoms, box, i)
			}
		}
	}
}

func TestCrdFile(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "test.mdcrd")
	if err := os.WriteFile(name, []byte(mdcrd(4, 2, true)), 0644); err != nil {
		Te.Fatal(err)
	}
	C, err := New(name, 4)
	if err != nil {
		Te.Fatal(err)
	}
	defer C.Close()
	for i := 0; i < 2; i++ {
		if err := C.Next(nil); err != nil {
			Te.Fatal(err)
		}
	}
	if err := C.Next(nil); !chem.IsLastFrame(err) {
		Te.Errorf("Expected the end of the trajectory, got %v", err)
	}
}

func TestCrdErrors(Te *testing.T) {
	full := mdcrd(4, 2, false)
	//without the last line
	C := reader(Te, full[:strings.LastIndex(full[:len(full)-1], "\n")+1], 4)
	if err := C.Next(nil); err != nil {
		Te.Fatal(err)
	}
	err := C.Next(nil)
	var terr *chem.TruncatedTrajectoryError
	if !errors.As(err, &terr) || terr.Frame != 1 {
		Te.Errorf("Expected a truncated trajectory error in frame 1, got %v", err)
	}
	var ferr *chem.FormatError
	C = reader(Te, "title\n   1.000   2.000   x.000\n", 1)
	if err := C.Next(nil); !errors.As(err, &ferr) {
		Te.Errorf("Expected a FormatError, got %v", err)
	}
	C = reader(Te, "title\n   1.000   2.000   3.000   4.000\n", 1)
	if err := C.Next(nil); !errors.As(err, &ferr) {
		Te.Errorf("Expected a FormatError for extra coordinates, got %v", err)
	}
	if _, err := NewReader(io.NopCloser(strings.NewReader("")), "empty.mdcrd", 1); !errors.As(err, &ferr) {
		Te.Errorf("Expected a FormatError for an empty file, got %v", err)
	}
}
