/*
 * dcd_write.go, part of gocontacts.
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
	"bytes"
	"encoding/binary"
	"io"
	"os"

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/fileio"
	v3 "github.com/rmera/gocontacts/v3"
)

//DCDWObj is a Charmm/NAMD binary trajectory file
//opened for writing
type DCDWObj struct {
	natoms   int32
	writable bool //Is it ready to be written on
	filename string
	unitcell bool
	frames   int32
	out      io.WriteCloser
	seeker   io.WriteSeeker //nil for compressed files
	buf      bytes.Buffer
	endian   binary.ByteOrder
}

//NewWriter initializes a DCD trajectory for writing, with natoms atoms per frame. If unitcell is true,
//a unit cell block is written in each frame. If the filename has a compression extension (see the
//fileio package) the trajectory is compressed, and the number of frames in the header is left as zero.
func NewWriter(filename string, natoms int, unitcell bool) (*DCDWObj, error) {
	D := &DCDWObj{natoms: int32(natoms), filename: filename, unitcell: unitcell, endian: binary.LittleEndian}
	if natoms <= 0 {
		return nil, &Error{"Trajectory not initialized correctly, the number of atoms is set to zero!", filename, []string{"NewWriter"}, true}
	}
	var err error
	if fileio.Compression(filename) == "" {
		var f *os.File
		f, err = os.Create(filename)
		D.out, D.seeker = f, f
	} else {
		D.out, err = fileio.Create(filename)
	}
	if err != nil {
		return nil, &Error{err.Error(), filename, []string{"os.Create", "NewWriter"}, true}
	}
	if err := D.writeHeader(); err != nil {
		D.out.Close()
		return nil, errDecorate(err, "NewWriter")
	}
	D.writable = true
	return D, nil
}

//Close closes the trajectory, flushing all data. It can be called several times.
func (D *DCDWObj) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	if err := D.out.Close(); err != nil {
		return &Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
}

//The values are accumulated in a buffer and written at once.
func (D *DCDWObj) put(v ...interface{}) {
	for _, w := range v {
		binary.Write(&D.buf, D.endian, w) //a bytes.Buffer never fails.
	}
}

func (D *DCDWObj) flush(caller string) error {
	_, err := D.out.Write(D.buf.Bytes())
	D.buf.Reset()
	if err != nil {
		return &Error{err.Error(), D.filename, []string{"Write", caller}, true}
	}
	return nil
}

func (D *DCDWObj) writeHeader() error {
	var cell int32
	if D.unitcell {
		cell = 1
	}
	D.put(int32(84), []byte("CORD"))
	//frames (updated after every write), initial step and step interval (nsavc)
	D.put(int32(0), int32(0), int32(1))
	//6 zeros (the last one is the number of fixed atoms)
	D.put(make([]int32, 6))
	//delta time, unit cell flag, 8 zeros, and the charmm version
	D.put(float32(1), cell, make([]int32, 8), int32(24))
	D.put(int32(84))
	//title block, just a dummy title.
	var ntitle int32 = 2
	title := bytes.Repeat([]byte{' '}, int(ntitle*mAXTITLE))
	copy(title, "Written by gocontacts")
	D.put(4+ntitle*mAXTITLE, ntitle, title, 4+ntitle*mAXTITLE)
	//the number of atoms in each snapshot
	D.put(int32(4), D.natoms, int32(4))
	return D.flush("writeHeader")
}

//WNext writes the next frame to the trajectory. If the trajectory was created with a unit cell,
//box must contain the box vectors, as rows (9 numbers).
func (D *DCDWObj) WNext(towrite *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return &Error{TrajUnIni, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil || int32(towrite.NVecs()) != D.natoms {
		return &Error{"Coordinates don't match the trajectory size", D.filename, []string{"WNext"}, true}
	}
	if D.unitcell {
		if len(box) == 0 || len(box[0]) < 9 {
			return &Error{NotEnoughSpace + " for the unit cell", D.filename, []string{"WNext"}, true}
		}
		a, b, c, alpha, beta, gamma := chem.BoxParameters(box[0])
		D.put(int32(48), []float64{a, gamma, b, beta, alpha, c}, int32(48))
	}
	block := make([]float32, D.natoms)
	size := 4 * D.natoms
	for k := 0; k < 3; k++ {
		for i := range block {
			block[i] = float32(towrite.At(i, k))
		}
		D.put(size, block, size)
	}
	if err := D.flush("WNext"); err != nil {
		return err
	}
	D.frames++
	return errDecorate(D.updateFrames(), "WNext")
}

//DCD requires the number of frames at the begining.
//The number can only be updated for uncompressed files.
func (D *DCDWObj) updateFrames() error {
	if D.seeker == nil {
		return nil
	}
	current, err := D.seeker.Seek(0, io.SeekCurrent) //we'll need it to go back
	if err != nil {
		return &Error{err.Error(), D.filename, []string{"Seek", "updateFrames"}, true}
	}
	//the number of frames comes after the 84 and "CORD"
	if _, err := D.seeker.Seek(8, io.SeekStart); err != nil {
		return &Error{err.Error(), D.filename, []string{"Seek", "updateFrames"}, true}
	}
	var b [4]byte
	D.endian.PutUint32(b[:], uint32(D.frames))
	if _, err := D.seeker.Write(b[:]); err != nil {
		return &Error{err.Error(), D.filename, []string{"Write", "updateFrames"}, true}
	}
	if _, err := D.seeker.Seek(current, io.SeekStart); err != nil {
		return &Error{err.Error(), D.filename, []string{"Seek", "updateFrames"}, true}
	}
	return nil
}
