/*
 * crd.go, part of gocontacts.
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

//Package amberold reads trajectories in the old Amber ASCII format (mdcrd), also written by pDynamo.
//The file starts with a title line, followed, for each frame, by the coordinates of all the
//atoms, 10 per line, in fields 8 characters wide. Each frame starts on a new line, and can be
//followed by a line with the 3 edges of an orthorhombic box. The number of atoms is not stored
//in the file, so it must be given when the trajectory is opened.
package amberold

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/fileio"
	v3 "github.com/rmera/gocontacts/v3"
)

const fieldWidth = 8

//whether the frames are followed by box lines.
const (
	boxUnknown = iota
	boxAbsent
	boxPresent
)

//CrdObj is an old-Amber/pDynamo trajectory file opened for reading.
type CrdObj struct {
	natoms   int
	filename string
	title    string
	f        io.ReadCloser
	crd      *bufio.Reader
	pending  string //a line read, but not yet used.
	box      int
	read     int //frames read so far
	vals     []float64
	readable bool
}

//New opens the trajectory filename, which can be compressed (see the fileio package), for frames of natoms atoms.
func New(filename string, natoms int) (*CrdObj, error) {
	f, err := fileio.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("amberold.New: %w", err)
	}
	C, err := NewReader(f, filename, natoms)
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "New")
	}
	return C, nil
}

//NewReader reads a trajectory from f, which is closed when the trajectory is. filename is only
//used in errors.
func NewReader(f io.ReadCloser, filename string, natoms int) (*CrdObj, error) {
	if natoms <= 0 {
		return nil, fmt.Errorf("amberold.NewReader: invalid atom number %d", natoms)
	}
	C := &CrdObj{natoms: natoms, filename: filename, f: f, crd: bufio.NewReaderSize(f, 1<<16)}
	title, err := C.crd.ReadString('\n')
	if err != nil && (err != io.EOF || title == "") {
		return nil, chem.NewFormatError(filename, "can't read title line", err)
	}
	C.title = strings.TrimRight(title, "\r\n")
	C.vals = make([]float64, 0, 3*natoms)
	C.readable = true
	return C, nil
}

//Readable returns true if the object is ready to be read from
//false otherwise. It doesnt guarantee that there is something
//to read.
func (C *CrdObj) Readable() bool {
	return C.readable
}

//Len returns the number of atoms per frame.
func (C *CrdObj) Len() int {
	return C.natoms
}

//Title returns the first line of the file.
func (C *CrdObj) Title() string {
	return C.title
}

//readLine returns the next line, without its end of line, and io.EOF if there are no more lines.
func (C *CrdObj) readLine() (string, error) {
	if C.pending != "" {
		l := C.pending
		C.pending = ""
		return l, nil
	}
	l, err := C.crd.ReadString('\n')
	if err != nil && (err != io.EOF || l == "") {
		return "", err
	}
	return strings.TrimRight(l, "\r\n"), nil
}

//parseLine returns the numbers in line. Fields are 8 characters wide, and can run into each other.
//Lines with other lengths are split at whitespace.
func parseLine(line string, dst []float64) ([]float64, error) {
	var fields []string
	if len(line)%fieldWidth == 0 {
		for i := 0; i < len(line); i += fieldWidth {
			fields = append(fields, strings.TrimSpace(line[i:i+fieldWidth]))
		}
	} else {
		fields = strings.Fields(line)
	}
	for _, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return dst, fmt.Errorf("can't parse coordinate %q", s)
		}
		dst = append(dst, v)
	}
	return dst, nil
}

//Next reads the next frame into c, or discards it, if c is nil. If the frames
//carry box information, and box is given, box[0] gets the box vectors.
//After the last frame, it returns an error that satisfies chem.LastFrameError. A frame that ends
//before it is complete produces a *chem.TruncatedTrajectoryError, a malformed one a *chem.FormatError.
func (C *CrdObj) Next(c *v3.Matrix, box ...[]float64) error {
	if !C.readable {
		return chem.NewLastFrameError(C.filename, "Next")
	}
	if c != nil && c.NVecs() != C.natoms {
		return chem.NewFormatError(C.filename, fmt.Sprintf("%d rows given for %d atoms", c.NVecs(), C.natoms), nil)
	}
	need := 3 * C.natoms
	C.vals = C.vals[:0]
	for len(C.vals) < need {
		line, err := C.readLine()
		if err != nil {
			if err == io.EOF && len(C.vals) == 0 {
				C.Close()
				return chem.NewLastFrameError(C.filename, "Next")
			}
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return chem.NewTruncatedTrajectoryError(C.filename, C.read, err)
		}
		if len(C.vals) == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		C.vals, err = parseLine(line, C.vals)
		if err != nil {
			return chem.NewFormatError(C.filename, fmt.Sprintf("frame %d", C.read), err)
		}
	}
	if len(C.vals) > need {
		return chem.NewFormatError(C.filename, fmt.Sprintf("frame %d has more than %d coordinates", C.read, need), nil)
	}
	if c != nil {
		for i := 0; i < C.natoms; i++ {
			c.Set(i, 0, C.vals[3*i])
			c.Set(i, 1, C.vals[3*i+1])
			c.Set(i, 2, C.vals[3*i+2])
		}
	}
	if err := C.nextBox(box...); err != nil {
		return err
	}
	C.read++
	return nil
}

//nextBox reads the box line after a frame, if the trajectory has them. Whether it does
//is decided after the first frame: a line with 3 numbers can't start a frame, unless the
//system has a single atom, in which case boxes are not supported.
func (C *CrdObj) nextBox(box ...[]float64) error {
	if C.box == boxAbsent || C.natoms == 1 {
		return nil
	}
	line, err := C.readLine()
	if err != nil {
		if err == io.EOF && C.box == boxUnknown {
			return nil
		}
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return chem.NewTruncatedTrajectoryError(C.filename, C.read, err)
	}
	vals, err := parseLine(line, make([]float64, 0, 3))
	if err != nil || len(vals) != 3 {
		if C.box == boxPresent {
			return chem.NewFormatError(C.filename, fmt.Sprintf("frame %d: invalid box line %q", C.read, line), err)
		}
		C.box = boxAbsent
		C.pending = line
		return nil
	}
	C.box = boxPresent
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		for i := range b[:9] {
			b[i] = 0
		}
		b[0], b[4], b[8] = vals[0], vals[1], vals[2]
	}
	return nil
}

//Close closes the trajectory. It can be called several times.
func (C *CrdObj) Close() {
	if !C.readable {
		return
	}
	C.f.Close()
	C.readable = false
}

//errDecorate is a helper function that looks for a chem.Error in err
//and decorates it with the caller's name before returning err.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e chem.Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
