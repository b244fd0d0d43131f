/*
 * doc.go, part of gocontacts.
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

/*
Package chem is the structure model of the gocontacts library. It provides atoms,
residues and topologies (with their covalent bond graph), the reading of PDB files,
some atomic data, and the error types and interfaces shared by the rest of the
packages.

	**Capabilities**

    Reads PDB files, optionally compressed, including multi-model files,
	unit cells (CRYST1) and explicit bonds (CONECT).

    Guesses covalent bonds from distances (and periodic boxes), using
	the cells package to avoid the quadratic search.

    Keeps the bonds in a graph (gonum.org/v1/gonum/graph), so bonded
	lookups are constant time.

    Molecules implement the Traj interface, so multi-model PDBs can
	be used as trajectories.

The coordinates are kept apart from the atoms, in v3.Matrix objects (one row per atom),
owned by whoever reads the frames. A Topology is never modified after it is built,
so it can be shared by many goroutines without locking.

Errors returned by the packages of the library implement the chem.Error interface,
and the ones related to files also implement chem.TrajError. The normal end of a
trajectory is signaled with an error implementing LastFrameError.
*/
package chem
