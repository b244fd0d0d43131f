/*
 * stf.go, part of gocontacts.
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

//Package stf reads and writes the simple trajectory format (STF), a compressed text format
//that is easy to read and write from any language.
//
//An STF file is a text file, compressed with z-standard unless its name carries another
//compression extension (see the fileio package). It starts with a header of key=value lines
//ending with a line "** N", where N is the number of atoms per frame. The "prec" key gives the
//precision P (2 if absent). Each frame has then one line per atom, with the x, y and z
//coordinates, in A, multiplied by 10^P and rounded to integers. A frame ends with a line
//starting with "*", optionally followed by the 9 components of the box vectors.
package stf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/fileio"
	v3 "github.com/rmera/gocontacts/v3"
)

//DefaultPrec is the precision used when the header doesn't give one.
const DefaultPrec = 2

//compression returns the compression format for the file name. Plain .stf files are zstd-compressed.
func compression(name string) string {
	if c := fileio.Compression(name); c != "" {
		return c
	}
	return "zst"
}

func scale(prec int) float64 {
	if prec == DefaultPrec {
		return 100
	}
	return math.Pow(10, float64(prec))
}

func parsePrec(header map[string]string) (int, error) {
	p, ok := header["prec"]
	if !ok {
		return DefaultPrec, nil
	}
	prec, err := strconv.Atoi(strings.TrimSpace(p))
	if err != nil || prec < 0 || prec > 8 {
		return 0, fmt.Errorf("invalid precision %q", p)
	}
	return prec, nil
}

//StfR is an STF trajectory opened for reading.
type StfR struct {
	f        io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	mult     float64
	read     int //frames read so far
	readable bool
}

//New opens the STF trajectory name for reading, and returns it, with the metadata in its header.
func New(name string) (*StfR, map[string]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("stf.New: %w", err)
	}
	r, err := fileio.NewReader(f, compression(name))
	if err != nil {
		f.Close()
		return nil, nil, chem.NewFormatError(name, "can't decompress file", err)
	}
	S, m, err := NewReader(r, name)
	if err != nil {
		r.Close()
		return nil, nil, errDecorate(err, "New")
	}
	return S, m, nil
}

//NewReader reads an uncompressed STF trajectory from f, which is closed when the
//trajectory is. filename is only used in errors.
func NewReader(f io.ReadCloser, filename string) (*StfR, map[string]string, error) {
	S := &StfR{f: f, h: bufio.NewReaderSize(f, 1<<16), filename: filename}
	m := make(map[string]string)
	for nline := 1; ; nline++ {
		str, err := S.h.ReadString('\n')
		if err != nil && (err != io.EOF || str == "") {
			return nil, nil, chem.NewFormatError(filename, "can't read header", err)
		}
		str = strings.TrimRight(str, "\r\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) != 2 {
				return nil, nil, chem.NewFormatError(filename, fmt.Sprintf("malformed header end %q", str), nil)
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				return nil, nil, chem.NewFormatError(filename, fmt.Sprintf("invalid atom number %q", nat[1]), err)
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok || k == "" {
			return nil, nil, chem.NewFormatError(filename, fmt.Sprintf("malformed header line %d: %q", nline, str), nil)
		}
		m[k] = v
	}
	var err error
	S.prec, err = parsePrec(m)
	if err != nil {
		return nil, nil, chem.NewFormatError(filename, "header", err)
	}
	S.mult = scale(S.prec)
	S.readable = true
	return S, m, nil
}

//Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

//Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

//Prec returns the precision of the coordinates in the trajectory.
func (S *StfR) Prec() int {
	return S.prec
}

func (S *StfR) decode(line string, temp *[3]float64) error {
	s := strings.Fields(line)
	if len(s) != 3 {
		return fmt.Errorf("coordinates line with %d fields: %q", len(s), line)
	}
	for i, v := range s {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %q", v)
		}
		temp[i] = float64(n) / S.mult
	}
	return nil
}

//Next puts in c the coordinates for the next frame of the trajectory, or discards them if c is nil.
//If box is given, and the frame has box information, box[0] is filled with it.
//After the last frame, it returns an error that satisfies chem.LastFrameError. A frame that ends
//before it is complete produces a *chem.TruncatedTrajectoryError, a malformed one a *chem.FormatError.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return chem.NewLastFrameError(S.filename, "Next")
	}
	if c != nil && c.NVecs() != S.natoms {
		return chem.NewFormatError(S.filename, fmt.Sprintf("%d rows given for %d atoms", c.NVecs(), S.natoms), nil)
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil && (err != io.EOF || b == "") {
			if err == io.EOF && i == 0 {
				S.Close()
				return chem.NewLastFrameError(S.filename, "Next")
			}
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return chem.NewTruncatedTrajectoryError(S.filename, S.read, err)
		}
		if err := S.decode(strings.TrimRight(b, "\r\n"), &temp); err != nil {
			return chem.NewFormatError(S.filename, fmt.Sprintf("frame %d, atom %d", S.read, i), err)
		}
		if c != nil {
			c.Set(i, 0, temp[0])
			c.Set(i, 1, temp[1])
			c.Set(i, 2, temp[2])
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return chem.NewTruncatedTrajectoryError(S.filename, S.read, err)
	}
	if !strings.HasPrefix(s, "*") || strings.HasPrefix(s, "**") {
		return chem.NewFormatError(S.filename, fmt.Sprintf("frame %d has more than %d atoms", S.read, S.natoms), nil)
	}
	fields := strings.Fields(s[1:])
	if len(fields) != 0 && len(fields) != 9 {
		return chem.NewFormatError(S.filename, fmt.Sprintf("frame %d: box with %d components", S.read, len(fields)), nil)
	}
	if len(fields) == 9 && len(box) > 0 && len(box[0]) >= 9 {
		for j, v := range fields {
			box[0][j], err = strconv.ParseFloat(v, 64)
			if err != nil {
				return chem.NewFormatError(S.filename, fmt.Sprintf("frame %d: invalid box component %q", S.read, v), nil)
			}
		}
	}
	S.read++
	return nil
}

//Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.f.Close()
	S.readable = false
}

//StfW is an STF trajectory opened for writing.
type StfW struct {
	h         io.WriteCloser
	natoms    int
	filename  string
	mult      float64
	writeable bool
}

//NewWriter creates the STF trajectory name, for frames of natoms atoms, with the metadata in header,
//which can be nil. The precision is taken from the "prec" key of the header, DefaultPrec is used
//(and written to the header) if that key is absent.
func NewWriter(name string, natoms int, header map[string]string) (*StfW, error) {
	if natoms <= 0 {
		return nil, fmt.Errorf("stf.NewWriter: invalid atom number %d", natoms)
	}
	prec, err := parsePrec(header)
	if err != nil {
		return nil, fmt.Errorf("stf.NewWriter: %w", err)
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, chem.NewIOError(name, 0, err)
	}
	h, err := fileio.NewWriter(f, compression(name))
	if err != nil {
		f.Close()
		return nil, chem.NewIOError(name, 0, err)
	}
	S := &StfW{h: h, natoms: natoms, filename: name, mult: scale(prec), writeable: true}
	keys := make([]string, 0, len(header)+1)
	for k := range header {
		keys = append(keys, k)
	}
	if _, ok := header["prec"]; !ok {
		keys = append(keys, "prec")
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		v, ok := header[k]
		if !ok {
			v = strconv.Itoa(prec)
		}
		fmt.Fprintf(&b, "%s=%s\n", k, v)
	}
	fmt.Fprintf(&b, "** %d\n", natoms)
	if _, err := io.WriteString(h, b.String()); err != nil {
		h.Close()
		return nil, chem.NewIOError(name, 0, err)
	}
	return S, nil
}

//Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

//WNext writes the coordinates in coord, and the box vectors in box, if given, as a new frame.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return fmt.Errorf("stf.WNext: trajectory %s not open for writing", S.filename)
	}
	if coord == nil || coord.NVecs() != S.natoms {
		return fmt.Errorf("stf.WNext: coordinates for %d atoms expected", S.natoms)
	}
	var b strings.Builder
	for i := 0; i < S.natoms; i++ {
		fmt.Fprintf(&b, "%d %d %d\n", S.encode(coord.At(i, 0)), S.encode(coord.At(i, 1)), S.encode(coord.At(i, 2)))
	}
	b.WriteString("*")
	if len(box) > 0 && len(box[0]) >= 9 {
		for _, v := range box[0][:9] {
			fmt.Fprintf(&b, " %.4f", v)
		}
	}
	b.WriteString("\n")
	if _, err := io.WriteString(S.h, b.String()); err != nil {
		return chem.NewIOError(S.filename, 0, err)
	}
	return nil
}

func (S *StfW) encode(v float64) int {
	return int(math.RoundToEven(v * S.mult))
}

//Close flushes and closes the file. It can be called several times.
func (S *StfW) Close() error {
	if !S.writeable {
		return nil
	}
	S.writeable = false
	if err := S.h.Close(); err != nil {
		return chem.NewIOError(S.filename, 0, err)
	}
	return nil
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
