/*
 * tsv.go, part of gocontacts.
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

//Package output writes the contacts found in a trajectory.
package output

import (
	"bufio"
	"fmt"
	"io"

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/fileio"
	"github.com/rmera/gocontacts/interactions"
)

//Header is the first line of every TSV file written.
const Header = "frame\tresidue_i\tresidue_j\tatom_i\tatom_j\tinteraction_type\tvalue"

//frames are flushed to the sink once the buffer holds this many bytes.
const flushSize = 1 << 16

//TSV writes contacts as tab-separated values, one line per contact.
//A TSV is not safe for concurrent use.
type TSV struct {
	name     string
	sink     io.WriteCloser
	w        *bufio.Writer
	labels   []string //atom labels
	resids   []string //residue IDs, per atom
	frames   int      //frames written to the buffer
	flushed  int      //frames that reached the file
	contacts int
	fcontact int //contacts in the flushed frames
	err      error
	closed   bool
}

//Create creates the file name, compressed according to its extension (see the fileio package),
//and writes the header line to it. top is used to obtain the residue and atom identifiers.
func Create(name string, top *chem.Topology) (*TSV, error) {
	f, err := fileio.Create(name)
	if err != nil {
		return nil, chem.NewIOError(name, 0, err)
	}
	T, err := NewTSV(f, name, top)
	if err != nil {
		f.Close()
		return nil, err
	}
	return T, nil
}

//NewTSV returns a TSV that writes to sink, and writes the header line. name is only used in errors.
//The TSV closes sink when closed.
func NewTSV(sink io.WriteCloser, name string, top *chem.Topology) (*TSV, error) {
	T := &TSV{name: name, sink: sink, w: bufio.NewWriterSize(sink, 2*flushSize)}
	T.labels = make([]string, top.Len())
	T.resids = make([]string, top.Len())
	for i := range T.labels {
		T.labels[i] = top.Atom(i).Label()
		T.resids[i] = top.ResidueOf(i).ID()
	}
	if _, err := T.w.WriteString(Header + "\n"); err != nil {
		return nil, T.fail(err)
	}
	return T, nil
}

//fail records err as an IOError, and returns it.
func (T *TSV) fail(err error) error {
	if T.err == nil {
		T.err = chem.NewIOError(T.name, T.flushed, err)
	}
	return T.err
}

//WriteFrame writes the contacts of the frame with index frame. Once a write fails, this and all
//following calls return the same IOError.
func (T *TSV) WriteFrame(frame int, contacts []interactions.Contact) error {
	if T.err != nil {
		return T.err
	}
	if T.closed {
		return T.fail(fmt.Errorf("write after close"))
	}
	for _, c := range contacts {
		if c.AtomI < 0 || c.AtomJ < 0 || c.AtomI >= len(T.labels) || c.AtomJ >= len(T.labels) {
			return T.fail(fmt.Errorf("contact %v references atoms out of range", c))
		}
		_, err := fmt.Fprintf(T.w, "%d\t%s\t%s\t%s\t%s\t%s\t%.3f\n", frame, T.resids[c.AtomI], T.resids[c.AtomJ],
			T.labels[c.AtomI], T.labels[c.AtomJ], c.Kind, c.Value)
		if err != nil {
			return T.fail(err)
		}
	}
	T.frames++
	T.contacts += len(contacts)
	if T.w.Buffered() >= flushSize {
		if err := T.flush(); err != nil {
			return T.fail(err)
		}
	}
	return nil
}

//flush pushes the buffered frames through the sink. If the sink can be flushed (see fileio.Flusher)
//the frames are then in the file, otherwise they are only counted as such once the sink is closed.
func (T *TSV) flush() error {
	if err := T.w.Flush(); err != nil {
		return err
	}
	f, ok := T.sink.(fileio.Flusher)
	if !ok {
		return nil
	}
	if err := f.Flush(); err != nil {
		return err
	}
	T.flushed, T.fcontact = T.frames, T.contacts
	return nil
}

//Frames returns the number of frames written.
func (T *TSV) Frames() int {
	return T.frames
}

//Flushed returns the number of frames, and of contacts in those frames, that are known to be
//in the file. After a successful Close, they equal Frames and Contacts.
func (T *TSV) Flushed() (frames, contacts int) {
	return T.flushed, T.fcontact
}

//Contacts returns the number of contacts written.
func (T *TSV) Contacts() int {
	return T.contacts
}

//Close flushes the pending output and closes the sink. It can be called several times,
//only the first call has any effect.
func (T *TSV) Close() error {
	if T.closed {
		return T.err
	}
	T.closed = true
	var err error
	if T.err == nil {
		err = T.w.Flush()
	}
	if cerr := T.sink.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return T.fail(err)
	}
	if T.err == nil {
		T.flushed, T.fcontact = T.frames, T.contacts
	}
	return T.err
}
