/*
 * traj.go, part of gocontacts.
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

//Package traj provides Stream, a lazy, forward-only, source of frames read from a trajectory
//file. The trajectory format is chosen from the file extension: DCD (see the dcd package),
//STF (see the stf package), old Amber ASCII (see the amberold package) or multi-model PDB, all of
//them optionally compressed. A Stream can't be rewound, a new one must be opened
//for each pass over a trajectory.
package traj

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/traj/amberold"
	"github.com/rmera/gocontacts/traj/dcd"
	"github.com/rmera/gocontacts/traj/stf"
	v3 "github.com/rmera/gocontacts/v3"
)

//Options controls which frames of a trajectory are delivered, and how long a frame
//read can take.
type Options struct {
	Begin   int           //index of the first frame to deliver
	End     int           //index of the frame after the last one to deliver, -1 means "up to the end"
	Stride  int           //deliver one of each Stride frames
	Timeout time.Duration //maximum time to read one frame, 0 means no limit
}

//DefaultOptions returns options to deliver all the frames in the trajectory, without time limits.
func DefaultOptions() Options {
	return Options{Begin: 0, End: -1, Stride: 1}
}

//Frame is one snapshot of the system.
type Frame struct {
	Seq    int        //0-based ordinal among the frames delivered by a Stream
	Index  int        //0-based index of the frame in the trajectory file
	Coords *v3.Matrix //one row per atom
	Box    []float64  //nil, or the 9 components of the box vectors, as rows.
}

//Stream delivers the frames of a trajectory.
type Stream struct {
	name      string
	src       chem.TrajCloser
	natoms    int
	opts      Options
	next      int //index, in the file, of the next frame to read
	seq       int
	done      bool
	closeOnce sync.Once
}

//Open opens the trajectory name, which must have as many atoms per frame as top.
//DCD (.dcd), STF (.stf), old Amber (.mdcrd, .crd) and PDB (.pdb, .ent) files, optionally compressed,
//are supported. Other extensions, and atom number mismatches, produce a *chem.FormatError.
func Open(ctx context.Context, name string, top *chem.Topology, opts Options) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.check(); err != nil {
		return nil, err
	}
	var src chem.TrajCloser
	switch format := chem.FileFormat(name); format {
	case "dcd":
		d, err := dcd.New(name)
		if err != nil {
			return nil, errDecorate(err, "Open")
		}
		src = d
	case "stf":
		s, _, err := stf.New(name)
		if err != nil {
			return nil, errDecorate(err, "Open")
		}
		src = s
	case "mdcrd", "crd":
		//the file doesn't store the number of atoms, so it can't be checked against the topology.
		c, err := amberold.New(name, top.Len())
		if err != nil {
			return nil, errDecorate(err, "Open")
		}
		src = c
	case "pdb", "ent":
		mol, err := chem.PDBFileRead(name)
		if err != nil {
			return nil, errDecorate(err, "Open")
		}
		src = mol
	default:
		return nil, chem.NewFormatError(name, fmt.Sprintf("unsupported trajectory format %q", format), nil)
	}
	if src.Len() != top.Len() {
		src.Close()
		return nil, chem.NewFormatError(name, fmt.Sprintf("trajectory has %d atoms per frame, topology has %d", src.Len(), top.Len()), nil)
	}
	return NewStream(name, src, opts)
}

//NewStream returns a Stream that reads its frames from src. name is used only in errors
//and logs. The Stream takes ownership of src, and closes it when the stream is closed
//or exhausted.
func NewStream(name string, src chem.TrajCloser, opts Options) (*Stream, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	return &Stream{name: name, src: src, natoms: src.Len(), opts: opts}, nil
}

func (o Options) check() error {
	if o.Begin < 0 {
		return fmt.Errorf("invalid first frame %d", o.Begin)
	}
	if o.Stride < 1 {
		return fmt.Errorf("invalid stride %d", o.Stride)
	}
	if o.End >= 0 && o.End < o.Begin {
		return fmt.Errorf("last frame %d before first frame %d", o.End, o.Begin)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("invalid timeout %v", o.Timeout)
	}
	return nil
}

//Name returns the name of the trajectory file.
func (S *Stream) Name() string {
	return S.name
}

//Len returns the number of atoms per frame.
func (S *Stream) Len() int {
	return S.natoms
}

//Next returns the next frame selected by the stream options. After the last frame, and forever after,
//it returns an error satisfying chem.LastFrameError. The context is checked before each frame read (frames
//skipped because of the stride included). If a read takes longer than the timeout, the trajectory is
//closed and a *chem.TimeoutError returned. Any error closes the stream.
func (S *Stream) Next(ctx context.Context) (*Frame, error) {
	for {
		if S.done {
			return nil, chem.NewLastFrameError(S.name, "Next")
		}
		if err := ctx.Err(); err != nil {
			S.Close()
			return nil, err
		}
		if S.opts.End >= 0 && S.next >= S.opts.End {
			S.Close()
			continue
		}
		keep := S.next >= S.opts.Begin && (S.next-S.opts.Begin)%S.opts.Stride == 0
		var coords *v3.Matrix
		var box []float64
		if keep {
			coords = v3.Zeros(S.natoms)
			box = make([]float64, 9)
		}
		if err := S.read(coords, box); err != nil {
			S.Close()
			if chem.IsLastFrame(err) {
				continue
			}
			return nil, errDecorate(err, "Next")
		}
		index := S.next
		S.next++
		if !keep {
			continue
		}
		f := &Frame{Seq: S.seq, Index: index, Coords: coords}
		for _, v := range box {
			if v != 0 {
				f.Box = box
				break
			}
		}
		S.seq++
		return f, nil
	}
}

//read reads one frame from the source, giving up after the timeout, if one was set.
func (S *Stream) read(coords *v3.Matrix, box []float64) error {
	if S.opts.Timeout <= 0 {
		return S.src.Next(coords, box)
	}
	done := make(chan error, 1)
	go func() {
		done <- S.src.Next(coords, box)
	}()
	timer := time.NewTimer(S.opts.Timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		//closing the handle makes the blocked read fail, so the goroutine ends.
		S.Close()
		return chem.NewTimeoutError(S.name, fmt.Sprintf("reading frame %d took more than %v", S.next, S.opts.Timeout))
	}
}

//Close releases the trajectory. Next returns chem.LastFrameError after Close.
//It can be called several times.
func (S *Stream) Close() {
	S.done = true
	S.closeOnce.Do(S.src.Close)
}

func errDecorate(err error, caller string) error {
	var e chem.Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
