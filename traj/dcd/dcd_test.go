/*
 * dcd_test.go, part of gocontacts.
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

package dcd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/gocontacts"
	v3 "github.com/rmera/gocontacts/v3"
	"gonum.org/v1/gonum/mat"
)

//frameCoords returns the coordinates for the frame i of a test trajectory with natoms atoms.
func frameCoords(natoms, i int) *v3.Matrix {
	m := v3.Zeros(natoms)
	for j := 0; j < natoms; j++ {
		m.Set(j, 0, float64(i)+0.5)
		m.Set(j, 1, float64(j))
		m.Set(j, 2, -float64(i*j))
	}
	return m
}

var testBox = []float64{20, 0, 0, 0, 21, 0, 0, 0, 22}

func writeTestDCD(Te *testing.T, name string, natoms, frames int, cell bool) {
	Te.Helper()
	w, err := NewWriter(name, natoms, cell)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < frames; i++ {
		if err := w.WNext(frameCoords(natoms, i), testBox); err != nil {
			Te.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
}

//readAll reads all the frames in the trajectory, checking their coordinates, and returns
//the number of frames read and the error that stopped the reading.
func readAll(Te *testing.T, name string, natoms int) (int, error) {
	Te.Helper()
	traj, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer traj.Close()
	if traj.Len() != natoms {
		Te.Fatalf("Expected %d atoms, got %d", natoms, traj.Len())
	}
	coords := v3.Zeros(traj.Len())
	box := make([]float64, 9)
	i := 0
	for ; ; i++ {
		err := traj.Next(coords, box)
		if err != nil {
			return i, err
		}
		if !mat.EqualApprox(coords, frameCoords(natoms, i), 1e-6) {
			Te.Errorf("Frame %d has wrong coordinates: %v", i, coords)
		}
		if traj.unitcell {
			for k, v := range box {
				if math.Abs(v-testBox[k]) > 1e-6 {
					Te.Errorf("Frame %d has the wrong box: %v", i, box)
					break
				}
			}
		}
	}
}

func TestDCDRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	for _, c := range []struct {
		name string
		cell bool
	}{{"plain.dcd", false}, {"cell.dcd", true}, {"cell.dcd.gz", true}, {"plain.dcd.zst", false}} {
		name := filepath.Join(dir, c.name)
		writeTestDCD(Te, name, 5, 4, c.cell)
		n, err := readAll(Te, name, 5)
		if !chem.IsLastFrame(err) {
			Te.Errorf("%s: expected the last frame error, got %v", c.name, err)
		}
		if n != 4 {
			Te.Errorf("%s: read %d frames, expected 4", c.name, n)
		}
		fmt.Println(c.name, "frames read:", n)
	}
	//the frame count is only updated for uncompressed files.
	traj, err := New(filepath.Join(dir, "plain.dcd"))
	if err != nil {
		Te.Fatal(err)
	}
	defer traj.Close()
	if traj.Frames() != 4 {
		Te.Errorf("Header says %d frames, expected 4", traj.Frames())
	}
	//skipping frames.
	if err := traj.Next(nil); err != nil {
		Te.Error(err)
	}
	coords := v3.Zeros(5)
	if err := traj.Next(coords); err != nil || coords.At(0, 0) != 1.5 {
		Te.Errorf("Second frame not read correctly after skipping the first one: %v %v", err, coords)
	}
}

func TestBigEndian(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "big.dcd")
	f, err := os.Create(name)
	if err != nil {
		Te.Fatal(err)
	}
	w := &DCDWObj{natoms: 3, filename: name, out: f, seeker: f, endian: binary.BigEndian, writable: true}
	if err := w.writeHeader(); err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := w.WNext(frameCoords(3, i)); err != nil {
			Te.Fatal(err)
		}
	}
	w.Close()
	n, err := readAll(Te, name, 3)
	if n != 2 || !chem.IsLastFrame(err) {
		Te.Errorf("Read %d frames with error %v", n, err)
	}
}

func TestTruncated(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "trunc.dcd")
	writeTestDCD(Te, name, 10, 3, true)
	info, err := os.Stat(name)
	if err != nil {
		Te.Fatal(err)
	}
	if err := os.Truncate(name, info.Size()-20); err != nil {
		Te.Fatal(err)
	}
	n, err := readAll(Te, name, 10)
	var tte *chem.TruncatedTrajectoryError
	if !errors.As(err, &tte) {
		Te.Fatalf("Expected a TruncatedTrajectoryError, got %v", err)
	}
	if n != 2 || tte.Frame != 2 {
		Te.Errorf("Expected 2 complete frames, and the third one truncated, got %d and %d", n, tte.Frame)
	}
}

func TestNotDCD(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "bad.dcd")
	os.WriteFile(name, []byte("this is not a dcd file, just some text that is long enough"), 0644)
	_, err := New(name)
	var fe *chem.FormatError
	if !errors.As(err, &fe) {
		Te.Errorf("Expected a FormatError, got %v", err)
	}
	if _, err := New(filepath.Join(Te.TempDir(), "nothere.dcd")); err == nil {
		Te.Error("Expected an error for a missing file")
	}
}
