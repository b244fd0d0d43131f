/*
 * main.go, part of gocontacts.
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

//getcontacts finds the interactions between the atoms of a molecular system along a trajectory,
//and writes them to a tab-separated file, one line per interaction and frame.
//
//Usage:
//
//	getcontacts --topology top.pdb --trajectory traj.dcd --all-interactions --output contacts.tsv
//
//Exit codes are 0 on success, 2 for malformed or unsupported input files, 3 if the output
//can't be written and 1 for any other error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	chem "github.com/rmera/gocontacts"
	"github.com/rmera/gocontacts/interactions"
	"github.com/rmera/gocontacts/pipeline"
)

//exit codes
const (
	exitOK     = 0
	exitOther  = 1
	exitFormat = 2
	exitIO     = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

//exitCode returns the exit code corresponding to err.
func exitCode(err error) int {
	var fe *chem.FormatError
	var ioe *chem.IOError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &fe):
		return exitFormat
	case errors.As(err, &ioe):
		return exitIO
	}
	return exitOther
}

//run parses the command line in args, runs the analysis and returns the exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("getcontacts", flag.ContinueOnError)
	fs.SetOutput(stderr)
	topology := fs.String("topology", "", "Topology file (PDB, optionally compressed). Required.")
	trajectory := fs.String("trajectory", "", "Trajectory file (DCD, STF, Amber mdcrd or multi-model PDB, optionally compressed). Required.")
	output := fs.String("output", "", "Output file for the contacts, tab-separated. Compressed if the name ends in .gz or .zst. Required.")
	all := fs.Bool("all-interactions", false, "Look for all the interaction types: hb, sb, ps, ts, pc, hp and vdw.")
	itypes := fs.String("itypes", "", "Comma-separated list of interaction types to look for (hb, sb, ps, ts, pc, hp, vdw, hbss, hbsb, hbbb, wb, wb2).")
	cores := fs.Int("cores", 0, "Number of frames analyzed concurrently. 0 means all logical CPUs.")
	beg := fs.Int("beg", 0, "Index of the first frame to analyze.")
	end := fs.Int("end", -1, "Index of the frame after the last one to analyze. -1 means up to the end of the trajectory.")
	stride := fs.Int("stride", 1, "Analyze one out of each stride frames.")
	params := fs.String("params", "", "File with KEY=value lines overriding the default interaction criteria.")
	timeout := fs.Duration("timeout", 0, "Maximum time to read a frame, such as 30s. 0 means no limit.")
	stratify := fs.Bool("stratify", false, "Replace hydrogen bonds by their backbone/side chain subtypes and water bridges.")
	intra := fs.Bool("intra", false, "Also report interactions between atoms of the same residue.")
	noGuess := fs.Bool("no-guess-bonds", false, "Use only the bonds given in the topology file, don't guess them from distances.")
	quiet := fs.Bool("quiet", false, "Only print warnings and errors.")
	sele := fs.String("sele", "", "Only report contacts between these atoms, such as \"chain A and resid 1-50\". Keywords: chain, resname, resid, name.")
	sele2 := fs.String("sele2", "", "If given, only report contacts between the --sele atoms and these.")
	solv := fs.String("solv", "", "Comma-separated residue names of the solvent. Default: the usual water names (HOH, WAT, TIP3, SOL...).")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitOther
	}
	logger := log.New(stderr, "", log.LstdFlags)
	fail := func(err error) int {
		logger.Printf("getcontacts: %v", err)
		return exitCode(err)
	}
	if *topology == "" || *trajectory == "" || *output == "" {
		fs.Usage()
		return fail(fmt.Errorf("--topology, --trajectory and --output are required"))
	}
	var kinds []interactions.Kind
	if *all {
		kinds = interactions.AllKinds()
	}
	if *itypes != "" {
		k, err := interactions.ParseKinds(*itypes)
		if err != nil {
			return fail(err)
		}
		kinds = mergeKinds(kinds, k)
	}
	if len(kinds) == 0 {
		return fail(fmt.Errorf("either --all-interactions or --itypes must be given"))
	}
	p := interactions.DefaultParams()
	if *params != "" {
		var err error
		p, err = interactions.ParamsFromFile(*params)
		if err != nil {
			return fail(err)
		}
	}
	p.Stratify = p.Stratify || *stratify
	p.Intra = p.Intra || *intra
	if *sele != "" {
		p.Sele = *sele
	}
	if *sele2 != "" {
		p.Sele2 = *sele2
	}
	if err := p.Validate(); err != nil {
		return fail(err)
	}
	O := pipeline.DefaultOptions()
	O.Topology(*topology)
	O.Trajectory(*trajectory)
	O.Output(*output)
	O.Kinds(kinds)
	O.Params(p)
	if *cores != 0 {
		O.Cpus(*cores)
	}
	O.Begin(*beg)
	O.End(*end)
	O.Stride(*stride)
	O.Timeout(*timeout)
	O.Guess(!*noGuess)
	O.Solvent(splitList(*solv))
	O.Quiet(*quiet)
	O.Logger(logger)
	start := time.Now()
	res, err := pipeline.New(O).Run(ctx)
	if err != nil {
		return fail(err)
	}
	if !*quiet {
		logger.Printf("getcontacts: %d frames analyzed in %v", res.Frames, time.Since(start).Round(time.Millisecond))
	}
	return exitOK
}

//splitList splits a comma-separated list, dropping empty elements.
func splitList(s string) []string {
	var ret []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

//mergeKinds returns the union of a and b, in evaluation order.
func mergeKinds(a, b []interactions.Kind) []interactions.Kind {
	codes := make([]string, 0, len(a)+len(b))
	for _, k := range a {
		codes = append(codes, k.String())
	}
	for _, k := range b {
		codes = append(codes, k.String())
	}
	merged, _ := interactions.ParseKinds(strings.Join(codes, ","))
	return merged
}
