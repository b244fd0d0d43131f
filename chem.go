/*
 * chem.go, part of gocontacts.
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

package chem

import (
	"fmt"
	"sort"

	v3 "github.com/rmera/gocontacts/v3"
	"gonum.org/v1/gonum/graph/simple"
)

//Atom contains the information about one atom, except for the coordinates, which
//are in a v3.Matrix, owned by the frame being analyzed.
type Atom struct {
	Index     int //0-based position of the atom in the topology
	ID        int //serial number from the file
	Name      string
	Symbol    string
	Residue   int //index of the residue in the topology
	Resname   string
	Resid     int
	Chain     string
	Charge    float64
	HasCharge bool //was a charge given in the file?
	Mass      float64
	Het       bool // is hetatm in the pdb file?
}

//Copy returns a copy of the Atom A.
func (A *Atom) Copy() *Atom {
	ret := *A
	return &ret
}

//Label returns a string identifying the atom, in the form chain:resname:resid:name:index
func (A *Atom) Label() string {
	return fmt.Sprintf("%s:%s:%d:%s:%d", A.Chain, A.Resname, A.Resid, A.Name, A.Index)
}

//Residue is a group of consecutive atoms with the same chain, residue name and residue ID.
type Residue struct {
	Index   int
	Name    string
	Chain   string
	Seq     int   //the residue ID in the file
	Atoms   []int //Indexes of the atoms in the residue, in order.
	Solvent bool
}

//ID returns the identifier of the residue, chain:resname:resid, for instance "A:ASP:114"
func (R *Residue) ID() string {
	return fmt.Sprintf("%s:%s:%d", R.Chain, R.Name, R.Seq)
}

//Topology contains the atoms of a system, their residues and their bonds.
//A Topology is not modified after it is created, so it can be used from several
//goroutines without locking.
type Topology struct {
	atoms     []*Atom
	residues  []*Residue
	graph     *simple.UndirectedGraph
	neighbors [][]int
	bonds     [][2]int
}

//NewTopology returns a topology with the given atoms and bonds. The atoms are not copied,
//but their Index and Residue fields are set, so they should not be shared with other
//topologies. Residues are formed by consecutive atoms sharing chain, residue ID and residue name.
//Bonds referencing atoms out of range, and atoms bonded to themselves, produce an
//InconsistentTopologyError. Repeated bonds are only counted once.
func NewTopology(atoms []*Atom, bonds [][2]int) (*Topology, error) {
	if len(atoms) == 0 {
		return nil, NewInconsistentTopologyError("", "no atoms in topology", nil)
	}
	T := &Topology{atoms: atoms, graph: simple.NewUndirectedGraph()}
	var res *Residue
	for i, at := range atoms {
		if at == nil {
			return nil, NewInconsistentTopologyError("", fmt.Sprintf("atom %d is nil", i), nil)
		}
		at.Index = i
		if res == nil || at.Chain != res.Chain || at.Resid != res.Seq || at.Resname != res.Name {
			res = &Residue{Index: len(T.residues), Name: at.Resname, Chain: at.Chain, Seq: at.Resid, Solvent: IsSolvent(at.Resname)}
			T.residues = append(T.residues, res)
		}
		res.Atoms = append(res.Atoms, i)
		at.Residue = res.Index
		T.graph.AddNode(simple.Node(i))
	}
	for _, b := range bonds {
		i, j := b[0], b[1]
		if i < 0 || j < 0 || i >= len(atoms) || j >= len(atoms) {
			return nil, NewInconsistentTopologyError("", fmt.Sprintf("bond %d-%d references an atom out of range (%d atoms)", i, j, len(atoms)), nil)
		}
		if i == j {
			return nil, NewInconsistentTopologyError("", fmt.Sprintf("atom %d bonded to itself", i), nil)
		}
		if T.graph.HasEdgeBetween(int64(i), int64(j)) {
			continue
		}
		T.graph.SetEdge(T.graph.NewEdge(simple.Node(i), simple.Node(j)))
		if i > j {
			i, j = j, i
		}
		T.bonds = append(T.bonds, [2]int{i, j})
	}
	sort.Slice(T.bonds, func(a, b int) bool {
		if T.bonds[a][0] != T.bonds[b][0] {
			return T.bonds[a][0] < T.bonds[b][0]
		}
		return T.bonds[a][1] < T.bonds[b][1]
	})
	T.neighbors = make([][]int, len(atoms))
	for i := range atoms {
		it := T.graph.From(int64(i))
		n := make([]int, 0, it.Len())
		for it.Next() {
			n = append(n, int(it.Node().ID()))
		}
		sort.Ints(n)
		T.neighbors[i] = n
	}
	return T, nil
}

//Atom returns the Atom corresponding to the index i. It panics if i is out of range.
//The atom returned should not be modified.
func (T *Topology) Atom(i int) *Atom {
	return T.atoms[i]
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.atoms)
}

//Residues returns the residues of the topology, in order. The slice should not be modified.
func (T *Topology) Residues() []*Residue {
	return T.residues
}

//Residue returns the residue with index i.
func (T *Topology) Residue(i int) *Residue {
	return T.residues[i]
}

//ResidueOf returns the residue containing the atom with index i.
func (T *Topology) ResidueOf(i int) *Residue {
	return T.residues[T.atoms[i].Residue]
}

//Bonded returns true if the atoms i and j are covalently bonded.
func (T *Topology) Bonded(i, j int) bool {
	return T.graph.HasEdgeBetween(int64(i), int64(j))
}

//Neighbors returns the indexes of the atoms bonded to the atom i, in increasing order.
//The slice should not be modified.
func (T *Topology) Neighbors(i int) []int {
	return T.neighbors[i]
}

//Bonds returns all the bonds in the topology, each as a pair of atom indexes with the smaller first,
//sorted.
func (T *Topology) Bonds() [][2]int {
	return T.bonds
}

//Molecule contains a topology and one or more sets of coordinates (models) with their,
//optional, boxes. It implements Traj, so the models can be read as frames.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Boxes    [][]float64 //one per model, each nil or 9 numbers (the box vectors as rows)
	filename string
	current  int
}

//NewMolecule returns a molecule with the topology top and the models in coords. boxes can be nil,
//otherwise it must have one element per model.
func NewMolecule(top *Topology, coords []*v3.Matrix, boxes [][]float64) (*Molecule, error) {
	if top == nil || len(coords) == 0 {
		return nil, NewInconsistentTopologyError("", "molecule needs a topology and at least one set of coordinates", nil)
	}
	for i, c := range coords {
		if c == nil || c.NVecs() != top.Len() {
			return nil, NewInconsistentTopologyError("", fmt.Sprintf("model %d doesn't have %d atoms", i, top.Len()), nil)
		}
	}
	if boxes == nil {
		boxes = make([][]float64, len(coords))
	}
	if len(boxes) != len(coords) {
		return nil, NewInconsistentTopologyError("", fmt.Sprintf("%d boxes for %d models", len(boxes), len(coords)), nil)
	}
	return &Molecule{Topology: top, Coords: coords, Boxes: boxes}, nil
}

//FileName returns the name of the file the molecule was read from, if any.
func (M *Molecule) FileName() string {
	return M.filename
}

//Readable returns true if there are models left to be read with Next.
func (M *Molecule) Readable() bool {
	return M.current < len(M.Coords)
}

//Next copies the next model into V, or skips it if V is nil. If a box slice is given, and the model
//has a box, it is copied into box[0], which must have room for 9 numbers.
//Once all the models have been read, it returns a LastFrameError.
func (M *Molecule) Next(V *v3.Matrix, box ...[]float64) error {
	if !M.Readable() {
		return NewLastFrameError(M.filename, "Next")
	}
	if V != nil {
		V.Copy(M.Coords[M.current])
	}
	if len(box) > 0 && box[0] != nil && M.Boxes[M.current] != nil {
		copy(box[0], M.Boxes[M.current])
	}
	M.current++
	return nil
}

//Close does nothing, all the models are in memory. It exists so Molecule is a TrajCloser.
func (M *Molecule) Close() {}
