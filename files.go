/*
 * files.go, part of gocontacts.
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
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/rmera/gocontacts/fileio"
	v3 "github.com/rmera/gocontacts/v3"
)

//PDB_read family

//symbolFromName tries to guess a chemical element symbol from a PDB atom name and residue name.
//Mostly based on AMBER and CHARMM names. It only deals with some common bio-elements.
func symbolFromName(name, resname string) (string, error) {
	if s, ok := ionNames[name]; ok && (name == resname || len(name) > 2) {
		return s, nil //an ion, i.e. "CA" in a "CA" residue is calcium, not an alpha carbon.
	}
	trimmed := strings.TrimLeft(name, "0123456789")
	if trimmed == "" {
		return "", fmt.Errorf("couldn't guess symbol from PDB name %q", name)
	}
	switch trimmed[0] {
	case 'H':
		return "H", nil
	case 'C':
		return "C", nil
	case 'N':
		return "N", nil
	case 'O':
		return "O", nil
	case 'S':
		if strings.HasPrefix(trimmed, "SE") && resname == "MSE" {
			return "Se", nil
		}
		return "S", nil
	case 'P':
		return "P", nil
	}
	return "", fmt.Errorf("couldn't guess symbol from PDB name %q", name)
}

//pdbField returns the columns [from,to) of line, or the shorter part of them present in the line.
func pdbField(line string, from, to int) string {
	if len(line) <= from {
		return ""
	}
	if len(line) < to {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

//parseCharge parses a PDB charge field, such as "2+" or "1-".
func parseCharge(field string) (float64, bool) {
	if len(field) != 2 {
		return 0, false
	}
	v, err := strconv.Atoi(field[0:1])
	if err != nil {
		return 0, false
	}
	switch field[1] {
	case '+':
		return float64(v), true
	case '-':
		return -float64(v), true
	}
	return 0, false
}

//readPDBAtom parses a valid ATOM or HETATM line of a PDB file, returns an Atom
//object with the info except for the coordinates, which are returned separately.
//serial is the number of atoms read so far in this model, used when the serial field overflows.
func readPDBAtom(line string, serial int) (*Atom, [3]float64, error) {
	var coords [3]float64
	if len(line) < 54 {
		return nil, coords, fmt.Errorf("ATOM/HETATM line too short")
	}
	var err error
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	id := pdbField(line, 6, 11)
	atom.ID, err = strconv.Atoi(id)
	if err != nil {
		if !strings.Contains(id, "*") {
			return nil, coords, fmt.Errorf("invalid atom serial %q", id)
		}
		atom.ID = serial + 1 //overflowed serials, written by some programs for large systems.
	}
	atom.Name = pdbField(line, 12, 16)
	//PDB says that pos. 21 is for other thing, but it is
	//used for 4-letter residue names in many cases
	atom.Resname = pdbField(line, 17, 21)
	atom.Chain = pdbField(line, 21, 22)
	if atom.Chain == "" {
		atom.Chain = pdbField(line, 72, 76) //the segment name
	}
	resid := pdbField(line, 22, 26)
	atom.Resid, err = strconv.Atoi(resid)
	if err != nil {
		return nil, coords, fmt.Errorf("invalid residue number %q", resid)
	}
	for i := 0; i < 3; i++ {
		f := pdbField(line, 30+8*i, 38+8*i)
		coords[i], err = strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, coords, fmt.Errorf("invalid coordinate %q", f)
		}
	}
	atom.Symbol = pdbField(line, 76, 78)
	if len(atom.Symbol) == 2 {
		atom.Symbol = atom.Symbol[:1] + strings.ToLower(atom.Symbol[1:])
	}
	atom.Charge, atom.HasCharge = parseCharge(pdbField(line, 78, 80))
	//if the symbol was not read, we try to guess it from the atom name.
	//No error checking here, an atom without symbol is just skipped when some
	//property is needed.
	if atom.Symbol == "" {
		atom.Symbol, _ = symbolFromName(atom.Name, atom.Resname)
	}
	atom.Mass, _ = Mass(atom.Symbol)
	return atom, coords, nil
}

//readCRYST1 returns the box vectors, as rows, from a CRYST1 line, or nil if the
//line contains the unit cube that some programs write when there is no box.
func readCRYST1(line string) ([]float64, error) {
	var p [6]float64
	var err error
	widths := [][2]int{{6, 15}, {15, 24}, {24, 33}, {33, 40}, {40, 47}, {47, 54}}
	for i, w := range widths {
		p[i], err = strconv.ParseFloat(pdbField(line, w[0], w[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CRYST1 record %q", strings.TrimSpace(line))
		}
	}
	a, b, c := p[0], p[1], p[2]
	if a <= 1 && b <= 1 && c <= 1 {
		return nil, nil
	}
	return BoxVectors(a, b, c, p[3], p[4], p[5]), nil
}

//readCONECT returns the serial numbers in a CONECT record
func readCONECT(line string) ([]int, error) {
	ret := make([]int, 0, 5)
	for from := 6; from < len(line); from += 5 {
		f := pdbField(line, from, from+5)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid CONECT record %q", strings.TrimSpace(line))
		}
		ret = append(ret, v)
	}
	return ret, nil
}

//PDBRead reads the atoms, coordinates, boxes and explicit bonds (CONECT records) from a PDB
//stream. Each model is a set of coordinates. All the models must have the same atoms.
//Bonds are not guessed, see LoadTopology for that.
func PDBRead(pdb io.Reader) (*Molecule, error) {
	mol, err := pdbRead(pdb, "")
	return mol, errDecorate(err, "PDBRead")
}

//PDBFileRead reads the PDB file pdbname, which can be compressed (see the fileio package),
//as PDBRead does.
func PDBFileRead(pdbname string) (*Molecule, error) {
	f, err := fileio.Open(pdbname)
	if err != nil {
		return nil, fmt.Errorf("PDBFileRead: %w", err)
	}
	defer f.Close()
	mol, err := pdbRead(f, pdbname)
	return mol, errDecorate(err, "PDBFileRead")
}

func pdbRead(pdb io.Reader, filename string) (*Molecule, error) {
	var atoms []*Atom
	var models []*v3.Matrix
	var boxes [][]float64
	var box []float64
	var conect [][]int
	coords := make([]float64, 0, 3000)
	firstModel := true
	atomsInModel := 0
	serials := make(map[int]int)
	closeModel := func() error {
		if atomsInModel == 0 {
			return nil
		}
		if !firstModel && atomsInModel != len(atoms) {
			return fmt.Errorf("model %d has %d atoms, the first one has %d", len(models)+1, atomsInModel, len(atoms))
		}
		m, err := v3.NewMatrix(coords)
		if err != nil {
			return err
		}
		models = append(models, m)
		boxes = append(boxes, box)
		coords = make([]float64, 0, len(coords))
		firstModel = false
		atomsInModel = 0
		return nil
	}
	scanner := bufio.NewScanner(pdb)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	nline := 0
	for scanner.Scan() {
		nline++
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			at, c, err := readPDBAtom(line, atomsInModel)
			if err != nil {
				return nil, NewFormatError(filename, fmt.Sprintf("line %d", nline), err)
			}
			if firstModel {
				if _, ok := serials[at.ID]; ok {
					log.Printf("PDB %s: repeated atom serial %d in line %d, CONECT records might be wrong", filename, at.ID, nline)
				} else {
					serials[at.ID] = len(atoms)
				}
				atoms = append(atoms, at)
			} else if atomsInModel >= len(atoms) {
				return nil, NewFormatError(filename, fmt.Sprintf("line %d: model %d has more atoms than the first one", nline, len(models)+1), nil)
			}
			coords = append(coords, c[0], c[1], c[2])
			atomsInModel++
		case strings.HasPrefix(line, "CRYST1"):
			b, err := readCRYST1(line)
			if err != nil {
				return nil, NewFormatError(filename, fmt.Sprintf("line %d", nline), err)
			}
			box = b
		case strings.HasPrefix(line, "ENDMDL"), strings.HasPrefix(line, "MODEL"):
			if err := closeModel(); err != nil {
				return nil, NewFormatError(filename, fmt.Sprintf("line %d", nline), err)
			}
		case strings.HasPrefix(line, "CONECT"):
			c, err := readCONECT(line)
			if err != nil {
				return nil, NewFormatError(filename, fmt.Sprintf("line %d", nline), err)
			}
			if len(c) > 1 {
				conect = append(conect, c)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, NewFormatError(filename, "can't read file", err)
	}
	if err := closeModel(); err != nil {
		return nil, NewFormatError(filename, "last model", err)
	}
	if len(atoms) == 0 {
		return nil, NewFormatError(filename, "no atoms found", nil)
	}
	bonds := make([][2]int, 0, len(conect))
	for _, c := range conect {
		i, ok := serials[c[0]]
		if !ok {
			return nil, NewInconsistentTopologyError(filename, fmt.Sprintf("CONECT record for unknown atom serial %d", c[0]), nil)
		}
		for _, v := range c[1:] {
			j, ok := serials[v]
			if !ok {
				return nil, NewInconsistentTopologyError(filename, fmt.Sprintf("CONECT record %d references unknown atom serial %d", c[0], v), nil)
			}
			if i != j {
				bonds = append(bonds, [2]int{i, j})
			}
		}
	}
	top, err := NewTopology(atoms, bonds)
	if err != nil {
		return nil, err
	}
	mol, err := NewMolecule(top, models, boxes)
	if err != nil {
		return nil, err
	}
	mol.filename = filename
	return mol, nil
}

//LoadTopology reads the topology (and coordinates) in the file name. The format is deduced
//from the extension, only PDB files (.pdb or .ent, optionally compressed) are supported.
//If guess is true, covalent bonds are guessed from the coordinates of the first model and
//added to those given explicitly in the file.
func LoadTopology(name string, guess bool) (*Molecule, error) {
	format := FileFormat(name)
	if format != "pdb" && format != "ent" {
		return nil, NewFormatError(name, fmt.Sprintf("unsupported topology format %q", format), nil)
	}
	mol, err := PDBFileRead(name)
	if err != nil {
		return nil, errDecorate(err, "LoadTopology")
	}
	if !guess {
		return mol, nil
	}
	guessed, err := AssignBonds(mol.Coords[0], mol.atoms, mol.Boxes[0])
	if err != nil {
		return nil, errDecorate(err, "LoadTopology")
	}
	top, err := NewTopology(mol.atoms, append(guessed, mol.Bonds()...))
	if err != nil {
		return nil, errDecorate(err, "LoadTopology")
	}
	mol.Topology = top
	return mol, nil
}
