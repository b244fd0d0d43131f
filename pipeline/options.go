/*
 * options.go, part of gocontacts.
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

package pipeline

import (
	"log"
	"runtime"
	"time"

	"github.com/rmera/gocontacts/interactions"
)

//Options contains the input and output files, and the settings, for a Pipeline.
//Each method returns the current value of an option, and sets it to a new value if one is given.
type Options struct {
	topology   string
	trajectory string
	output     string
	kinds      []interactions.Kind
	params     interactions.Params
	cpus       int
	begin      int
	end        int
	stride     int
	timeout    time.Duration
	guess      bool
	solvent    []string
	quiet      bool
	logger     *log.Logger
}

//DefaultOptions returns options to look for all the primary interaction kinds, with the default
//criteria, in all the frames of a trajectory, using all logical CPUs. Covalent bonds are guessed
//from the topology coordinates. Files still have to be set.
func DefaultOptions() *Options {
	r := new(Options)
	r.kinds = interactions.AllKinds()
	r.params = interactions.DefaultParams()
	r.cpus = runtime.NumCPU()
	r.end = -1
	r.stride = 1
	r.guess = true
	return r
}

//Topology returns the name of the topology file, and sets it if a name is given.
func (O *Options) Topology(name ...string) string {
	if len(name) > 0 && name[0] != "" {
		O.topology = name[0]
	}
	return O.topology
}

//Trajectory returns the name of the trajectory file, and sets it if a name is given.
func (O *Options) Trajectory(name ...string) string {
	if len(name) > 0 && name[0] != "" {
		O.trajectory = name[0]
	}
	return O.trajectory
}

//Output returns the name of the output file, and sets it if a name is given.
func (O *Options) Output(name ...string) string {
	if len(name) > 0 && name[0] != "" {
		O.output = name[0]
	}
	return O.output
}

//Kinds returns the kinds of interaction to look for, and sets them, if a non-empty set is given.
func (O *Options) Kinds(kinds ...[]interactions.Kind) []interactions.Kind {
	if len(kinds) > 0 && len(kinds[0]) > 0 {
		O.kinds = kinds[0]
	}
	return O.kinds
}

//Params returns the criteria for the interactions, and sets them if given.
func (O *Options) Params(p ...interactions.Params) interactions.Params {
	if len(p) > 0 {
		O.params = p[0]
	}
	return O.params
}

//Cpus returns the number of goroutines analyzing frames, and sets it if given.
//Values below 1 make the pipeline fail.
func (O *Options) Cpus(n ...int) int {
	if len(n) > 0 {
		O.cpus = n[0]
	}
	return O.cpus
}

//Begin returns the index of the first frame to analyze, and sets it if given.
func (O *Options) Begin(n ...int) int {
	if len(n) > 0 {
		O.begin = n[0]
	}
	return O.begin
}

//End returns the index of the frame after the last one to analyze (-1 means all frames), and sets it if given.
func (O *Options) End(n ...int) int {
	if len(n) > 0 {
		O.end = n[0]
	}
	return O.end
}

//Stride returns the frames skipped between analyzed frames, plus one, and sets it if given.
func (O *Options) Stride(n ...int) int {
	if len(n) > 0 {
		O.stride = n[0]
	}
	return O.stride
}

//Timeout returns the longest time a frame read can take (0 means no limit), and sets it if given.
func (O *Options) Timeout(t ...time.Duration) time.Duration {
	if len(t) > 0 {
		O.timeout = t[0]
	}
	return O.timeout
}

//Solvent returns the residue names treated as solvent, and sets them, if a non-empty list is given.
//An empty list means the default names (see chem.IsSolvent).
func (O *Options) Solvent(names ...[]string) []string {
	if len(names) > 0 && len(names[0]) > 0 {
		O.solvent = names[0]
	}
	return O.solvent
}

//Guess returns whether covalent bonds are guessed from the topology coordinates, and sets it, if given.
func (O *Options) Guess(g ...bool) bool {
	if len(g) > 0 {
		O.guess = g[0]
	}
	return O.guess
}

//Quiet returns whether informational messages are suppressed, and sets it, if given.
//Warnings are always logged.
func (O *Options) Quiet(q ...bool) bool {
	if len(q) > 0 {
		O.quiet = q[0]
	}
	return O.quiet
}

//Logger returns the logger used for informational messages, and warnings, and sets it, if a non-nil
//one is given. The default is the standard logger.
func (O *Options) Logger(l ...*log.Logger) *log.Logger {
	if len(l) > 0 && l[0] != nil {
		O.logger = l[0]
	}
	if O.logger == nil {
		return log.Default()
	}
	return O.logger
}
