/*
 * pipeline.go, part of gocontacts.
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

//Package pipeline puts together the pieces needed to find the contacts in a trajectory:
//the topology is loaded, the frames of the trajectory are analyzed concurrently, and the
//contacts found are written, in frame order, to the output file.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/cells"
	"github.com/rmera/gocontacts/interactions"
	"github.com/rmera/gocontacts/output"
	"github.com/rmera/gocontacts/traj"
)

//State is the stage a Pipeline is in.
type State int

const (
	Idle State = iota
	LoadingTopology
	LoadingTrajectory
	Streaming
	Finalizing
	Done
	Failed
)

var stateNames = [...]string{"idle", "loading topology", "loading trajectory", "streaming", "finalizing", "done", "failed"}

func (s State) String() string {
	if s < Idle || s > Failed {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

//Terminal returns true for the states a Pipeline never leaves.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

//Result summarizes a run.
type Result struct {
	Frames   int //frames analyzed and completely written to the output
	Contacts int //contacts in those frames
}

//Pipeline finds the contacts in a trajectory. A Pipeline can only be run once.
type Pipeline struct {
	opts   *Options
	mu     sync.Mutex
	state  State
	err    error
	info   *log.Logger
	warner *interactions.Warner
}

//New returns a Pipeline with the options opts. If opts is nil, DefaultOptions() is used.
//opts should not be modified after this call.
func New(opts *Options) *Pipeline {
	if opts == nil {
		opts = DefaultOptions()
	}
	P := &Pipeline{opts: opts, info: opts.Logger()}
	if opts.Quiet() {
		P.info = log.New(io.Discard, "", 0)
	}
	P.warner = interactions.NewWarner(opts.Logger())
	return P
}

//State returns the current state of the pipeline.
func (P *Pipeline) State() State {
	P.mu.Lock()
	defer P.mu.Unlock()
	return P.state
}

//Err returns the error that made the pipeline fail, if any.
func (P *Pipeline) Err() error {
	P.mu.Lock()
	defer P.mu.Unlock()
	return P.err
}

//Warnings returns the non-fatal problems reported so far, one per cause.
func (P *Pipeline) Warnings() []*chem.MissingAttributeWarning {
	return P.warner.Warnings()
}

func (P *Pipeline) setState(s State) {
	P.mu.Lock()
	old := P.state
	P.state = s
	P.mu.Unlock()
	P.info.Printf("getcontacts: %s -> %s", old, s)
}

//fail moves the pipeline to the Failed state, and returns err.
func (P *Pipeline) fail(err error) error {
	P.mu.Lock()
	old := P.state
	P.state = Failed
	P.err = err
	P.mu.Unlock()
	P.opts.Logger().Printf("getcontacts: %s -> %s: %v", old, Failed, err)
	return err
}

func (P *Pipeline) check() error {
	O := P.opts
	if O.Topology() == "" || O.Trajectory() == "" || O.Output() == "" {
		return fmt.Errorf("topology, trajectory and output files must be given")
	}
	if len(O.Kinds()) == 0 {
		return fmt.Errorf("no interaction types requested")
	}
	if O.Cpus() < 1 {
		return fmt.Errorf("invalid number of CPUs %d", O.Cpus())
	}
	if O.Begin() < 0 {
		return fmt.Errorf("invalid first frame %d", O.Begin())
	}
	if O.End() != -1 && O.End() < O.Begin() {
		return fmt.Errorf("invalid frame range %d-%d", O.Begin(), O.End())
	}
	if O.Stride() < 1 {
		return fmt.Errorf("invalid stride %d", O.Stride())
	}
	if O.Timeout() < 0 {
		return fmt.Errorf("invalid timeout %v", O.Timeout())
	}
	return nil
}

//Run loads the topology, and analyzes the trajectory, writing the contacts found to the output file.
//Errors in the topology, or in the options, are reported before the output file is created. Any error
//while reading the trajectory or writing the output aborts the run, leaving the output with the frames
//completed so far (see chem.IOError). Cancelling ctx stops the run at the next frame.
func (P *Pipeline) Run(ctx context.Context) (Result, error) {
	P.mu.Lock()
	if P.state != Idle {
		P.mu.Unlock()
		return Result{}, fmt.Errorf("pipeline already run, its state is %s", P.State())
	}
	P.mu.Unlock()
	var res Result
	if err := P.check(); err != nil {
		return res, P.fail(err)
	}
	O := P.opts
	P.setState(LoadingTopology)
	mol, err := chem.LoadTopology(O.Topology(), O.Guess())
	if err != nil {
		return res, P.fail(err)
	}
	top := mol.Topology
	if len(O.Solvent()) > 0 {
		top.SetSolvent(O.Solvent())
	}
	P.info.Printf("getcontacts: %d atoms, %d residues, %d bonds in %s", top.Len(), len(top.Residues()), len(top.Bonds()), O.Topology())
	C, err := interactions.New(top, O.Params(), O.Kinds(), P.warner)
	if err != nil {
		return res, P.fail(err)
	}
	if err := checkBox(C, mol.Boxes[0]); err != nil {
		return res, P.fail(err)
	}
	P.setState(LoadingTrajectory)
	stream, err := traj.Open(ctx, O.Trajectory(), top, traj.Options{Begin: O.Begin(), End: O.End(), Stride: O.Stride(), Timeout: O.Timeout()})
	if err != nil {
		return res, P.fail(err)
	}
	defer stream.Close()
	first, err := stream.Next(ctx)
	if err != nil && !chem.IsLastFrame(err) {
		return res, P.fail(err)
	}
	if first != nil {
		if err := checkBox(C, first.Box); err != nil {
			return res, P.fail(err)
		}
	}
	out, err := output.Create(O.Output(), top)
	if err != nil {
		return res, P.fail(err)
	}
	P.setState(Streaming)
	err = P.stream(ctx, stream, first, C, out)
	P.setState(Finalizing)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	//on failure, only the frames known to be in the file are reported, as in the IOError.
	res.Frames, res.Contacts = out.Flushed()
	if err != nil {
		return res, P.fail(err)
	}
	P.info.Printf("getcontacts: %d contacts in %d frames written to %s", res.Contacts, res.Frames, O.Output())
	P.setState(Done)
	return res, nil
}

//checkBox returns an error if box can't be used with the cutoff of C.
func checkBox(C *interactions.Classifier, box []float64) error {
	if box == nil || C.Cutoff() <= 0 {
		return nil
	}
	_, err := cells.New(C.Cutoff(), box)
	return err
}

type frameResult struct {
	seq      int
	frame    int
	contacts []interactions.Contact
	err      error
}

//stream analyzes the frames of s, starting with first (which can be nil, if there are no frames)
//using a reader goroutine, Cpus() workers and this goroutine as collector. At most 2*Cpus() frames
//are read but not yet written at any time.
func (P *Pipeline) stream(ctx context.Context, s *traj.Stream, first *traj.Frame, C *interactions.Classifier, out *output.TSV) error {
	if first == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cpus := P.opts.Cpus()
	sem := make(chan struct{}, 2*cpus)
	jobs := make(chan *traj.Frame, cpus)
	results := make(chan frameResult, cpus)
	var readErr error
	go func() {
		defer close(jobs)
		f := first
		for {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				readErr = ctx.Err()
				return
			}
			jobs <- f
			var err error
			f, err = s.Next(ctx)
			if err != nil {
				if !chem.IsLastFrame(err) {
					readErr = err
				}
				return
			}
		}
	}()
	var wg sync.WaitGroup
	for i := 0; i < cpus; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				c, err := C.Frame(f)
				results <- frameResult{seq: f.Seq, frame: f.Index, contacts: c, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	agg := output.NewAggregator(out)
	var firstErr error
	for r := range results {
		if firstErr != nil {
			continue //draining
		}
		if r.err != nil {
			firstErr = fmt.Errorf("frame %d: %w", r.frame, r.err)
			cancel()
			continue
		}
		written := agg.Written()
		if err := agg.Add(r.seq, r.frame, r.contacts); err != nil {
			firstErr = err
			cancel()
			continue
		}
		for i := written; i < agg.Written(); i++ {
			<-sem
		}
	}
	//results is closed only after the reader has finished, so readErr can be read safely.
	if firstErr != nil {
		return firstErr
	}
	return readErr
}
