/*
 * dcd.go, part of gocontacts.
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

//Package dcd reads and writes CHARMM/NAMD binary (DCD) trajectories, optionally
//compressed (see the fileio package). Both endianness are supported for reading,
//as well as the unit cell and 4th dimension blocks. Fixed atoms are not supported.
package dcd

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/fileio"
	v3 "github.com/rmera/gocontacts/v3"
)

const mAXTITLE int32 = 80

//DCDObj is a CHARMM/NAMD binary trajectory file opened for reading.
type DCDObj struct {
	natoms   int32
	nset     int32 //frames in the file, according to the header
	read     int   //frames read so far
	readable bool  //Is it ready to be read?
	filename string
	charmm   bool //Charmm traj?
	unitcell bool
	fourdim  bool
	f        io.ReadCloser
	dcd      *bufio.Reader
	fields   [3][]float32
	raw      []byte
	cell     [6]float64
	endian   binary.ByteOrder
}

//New opens the DCD trajectory filename for reading.
func New(filename string) (*DCDObj, error) {
	f, err := fileio.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("dcd.New: %w", err)
	}
	D, err := NewReader(f, filename)
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "New")
	}
	return D, nil
}

//NewReader reads a DCD trajectory from f, which is closed when the trajectory is.
//filename is only used in error messages.
func NewReader(f io.ReadCloser, filename string) (*DCDObj, error) {
	D := &DCDObj{f: f, filename: filename, dcd: bufio.NewReaderSize(f, 1<<16)}
	if err := D.readHeader(); err != nil {
		return nil, errDecorate(err, "NewReader")
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.raw = make([]byte, 4*D.natoms)
	D.readable = true
	return D, nil
}

//Readable returns true if the object is ready to be read from,
//false otherwise. It doesnt guarantee that there is something
//to read.
func (D *DCDObj) Readable() bool {
	return D.readable
}

//Len returns the number of atoms per frame.
func (D *DCDObj) Len() int {
	return int(D.natoms)
}

//Frames returns the number of frames stated in the header of the file. Some programs don't set it
//correctly, so it should be taken only as a hint.
func (D *DCDObj) Frames() int {
	return int(D.nset)
}

//Close closes the file. The trajectory can't be read after this call.
func (D *DCDObj) Close() {
	if D.f == nil {
		return
	}
	D.f.Close()
	D.f = nil
	D.readable = false
}

func (D *DCDObj) formatError(msg string, cause error) error {
	return chem.NewFormatError(D.filename, msg, cause)
}

func (D *DCDObj) int32() (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(D.dcd, b[:]); err != nil {
		return 0, err
	}
	return int32(D.endian.Uint32(b[:])), nil
}

//marker reads a Fortran record marker and checks that it is equal to size, unless size is negative.
func (D *DCDObj) marker(size int32) (int32, error) {
	m, err := D.int32()
	if err != nil {
		return 0, err
	}
	if size >= 0 && m != size {
		return m, fmt.Errorf("record marker is %d, expected %d", m, size)
	}
	return m, nil
}

//readHeader reads the header, leaving the file ready to read the first frame.
//It supports big and little endianness, charmm, (namd>=2.1) or X-plor files, and no
//fixed atoms.
func (D *DCDObj) readHeader() error {
	var b [4]byte
	if _, err := io.ReadFull(D.dcd, b[:]); err != nil {
		return D.formatError("can't read header", err)
	}
	//The first thing we should read is an 84.
	//If this fails it means that the file is big endian.
	D.endian = binary.LittleEndian
	if D.endian.Uint32(b[:]) != 84 {
		D.endian = binary.BigEndian
		if D.endian.Uint32(b[:]) != 84 {
			return D.formatError("not a DCD file", nil)
		}
	}
	head := make([]byte, 84)
	if _, err := io.ReadFull(D.dcd, head); err != nil {
		return D.formatError("incomplete header", err)
	}
	//Then the magic number "CORD".
	if string(head[:4]) != "CORD" {
		return D.formatError("wrong magic number", nil)
	}
	icntrl := func(i int) int32 { return int32(D.endian.Uint32(head[4+4*i:])) }
	D.nset = icntrl(0)
	//X-plor sets this last int to zero, charmm sets it to its version number.
	//if we have a charmm file we get some additional flags.
	if icntrl(19) != 0 {
		D.charmm = true
		D.unitcell = icntrl(10) != 0
		D.fourdim = icntrl(11) == 1
	}
	if icntrl(8) != 0 {
		return D.formatError(fmt.Sprintf("%d fixed atoms, fixed atoms are not supported", icntrl(8)), nil)
	}
	if _, err := D.marker(84); err != nil {
		return D.formatError("wrong header", err)
	}
	//Title block
	size, err := D.marker(-1)
	if err != nil {
		return D.formatError("can't read title", err)
	}
	ntitle, err := D.int32()
	if err != nil || ntitle < 0 || size != 4+ntitle*mAXTITLE {
		return D.formatError("wrong title block", err)
	}
	if _, err := D.dcd.Discard(int(ntitle * mAXTITLE)); err != nil {
		return D.formatError("can't read title", err)
	}
	if _, err := D.marker(size); err != nil {
		return D.formatError("wrong title block", err)
	}
	//one must read a 4 before and after the natoms
	if _, err := D.marker(4); err != nil {
		return D.formatError("can't read the number of atoms", err)
	}
	if D.natoms, err = D.int32(); err != nil || D.natoms <= 0 {
		return D.formatError(fmt.Sprintf("invalid number of atoms %d", D.natoms), err)
	}
	if _, err := D.marker(4); err != nil {
		return D.formatError("can't read the number of atoms", err)
	}
	return nil
}

//Next reads the next frame in the trajectory and puts it in keep. If keep is nil, the frame is
//discarded. If box is given, and the trajectory contains a unit cell, the box vectors are put,
//as rows, in box[0], which must have room for 9 elements. After the last frame, it returns a
//chem.LastFrameError. A frame that ends before it is complete produces a
//*chem.TruncatedTrajectoryError.
func (D *DCDObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return chem.NewLastFrameError(D.filename, "Next")
	}
	if keep != nil && keep.NVecs() < int(D.natoms) {
		panic(fmt.Sprintf("Not enough space in matrix: %d rows, %d atoms", keep.NVecs(), D.natoms))
	}
	err := D.nextRaw()
	if err != nil {
		D.readable = false
		if errors.Is(err, io.EOF) {
			return chem.NewLastFrameError(D.filename, "Next")
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return chem.NewTruncatedTrajectoryError(D.filename, D.read, err)
		}
		return errDecorate(err, "Next")
	}
	D.read++
	if keep != nil {
		for i := 0; i < int(D.natoms); i++ {
			keep.Set(i, 0, float64(D.fields[0][i]))
			keep.Set(i, 1, float64(D.fields[1][i]))
			keep.Set(i, 2, float64(D.fields[2][i]))
		}
	}
	if D.unitcell && len(box) > 0 && box[0] != nil {
		copy(box[0], D.cellVectors())
	}
	return nil
}

//cellVectors returns the box vectors for the last unit cell read.
//DCD stores A, gamma, B, beta, alpha, C. Angles can be given as cosines (CHARMM)
//or in degrees (NAMD).
func (D *DCDObj) cellVectors() []float64 {
	c := D.cell
	angles := [3]float64{c[4], c[3], c[1]} //alpha, beta, gamma
	cosines := true
	for _, v := range angles {
		if v < -1 || v > 1 {
			cosines = false
		}
	}
	if cosines {
		for i, v := range angles {
			angles[i] = chem.Rad2Deg(math.Acos(v))
		}
	}
	return chem.BoxVectors(c[0], c[2], c[5], angles[0], angles[1], angles[2])
}

//nextRaw reads one frame into D.fields. io.EOF is returned only if the file ends exactly
//where a frame should begin. If it ends anywhere else, io.ErrUnexpectedEOF is returned.
func (D *DCDObj) nextRaw() error {
	first := true
	unexpected := func(err error) error {
		if err == io.EOF && !first {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if D.unitcell {
		size, err := D.marker(-1)
		if err != nil {
			return unexpected(err)
		}
		first = false
		//Some trajectories have the flag but not the block in all frames, so
		//we use the block size to see if what we are reading is the cell or the X coordinates.
		if size == 48 {
			var raw [48]byte
			if _, err := io.ReadFull(D.dcd, raw[:]); err != nil {
				return unexpected(err)
			}
			for i := range D.cell {
				D.cell[i] = math.Float64frombits(D.endian.Uint64(raw[8*i:]))
			}
			if _, err := D.marker(48); err != nil {
				return unexpected(err)
			}
		} else if size == 4*D.natoms {
			if err := D.readFloat32Block(D.fields[0], true); err != nil {
				return unexpected(err)
			}
			return D.readYZ()
		} else {
			return D.formatError(fmt.Sprintf("wrong unit cell block size %d in frame %d", size, D.read), nil)
		}
	}
	if err := D.readFloat32Block(D.fields[0], false); err != nil {
		return unexpected(err)
	}
	return D.readYZ()
}

func (D *DCDObj) readYZ() error {
	for i := 1; i < 3; i++ {
		if err := D.readFloat32Block(D.fields[i], false); err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	//we skip the 4-D values if they exist. Apparently this is not present in the
	//last snapshot, so an EOF here just means the frame was the last one.
	if D.fourdim {
		size, err := D.marker(-1)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return io.ErrUnexpectedEOF
		}
		if _, err := D.dcd.Discard(int(size)); err != nil {
			return io.ErrUnexpectedEOF
		}
		if _, err := D.marker(size); err != nil {
			return io.ErrUnexpectedEOF
		}
	}
	return nil
}

//readFloat32Block reads a coordinate block into block. If sizeRead is true, the leading
//record marker has already been read.
func (D *DCDObj) readFloat32Block(block []float32, sizeRead bool) error {
	size := 4 * D.natoms
	if !sizeRead {
		m, err := D.marker(-1)
		if err != nil {
			return err
		}
		if m != size {
			return D.formatError(fmt.Sprintf("wrong coordinate block size %d in frame %d, expected %d", m, D.read, size), nil)
		}
	}
	if _, err := io.ReadFull(D.dcd, D.raw); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	for i := range block {
		block[i] = math.Float32frombits(D.endian.Uint32(D.raw[4*i:]))
	}
	if _, err := D.marker(size); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return D.formatError(fmt.Sprintf("wrong coordinate block in frame %d", D.read), err)
	}
	return nil
}
