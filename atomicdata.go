/*
 * atomicdata.go, part of gocontacts.
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

import "strings"

//element holds the atomic data the library uses for each element.
type element struct {
	mass     float64
	covrad   float64 //covalent radius
	vdwrad   float64 //van der Waals radius
	maxbonds int     //0 means "don't check"
}

//Data for common "bio-elements".
//Covalent radii from Cordero et al., 2008 (DOI:10.1039/B801115J).
//Van der Waals radii from 10.1021/j100785a001 and 10.1021/jp8111556,
//metal radii from 10.1023/A:1011625728803
var elements = map[string]element{
	"H":  {1.008, 0.4, 1.10, 1}, //covalent radius enlarged, H only keeps its shortest bond anyway.
	"C":  {12.011, 0.76, 1.70, 4},
	"N":  {14.007, 0.71, 1.55, 0},
	"O":  {15.999, 0.66, 1.52, 2},
	"F":  {18.998, 0.57, 1.47, 1},
	"Na": {22.990, 1.66, 2.27, 0},
	"Mg": {24.305, 1.41, 1.73, 0},
	"Si": {28.086, 1.11, 2.10, 0},
	"P":  {30.974, 1.07, 1.80, 0},
	"S":  {32.06, 1.05, 1.80, 0},
	"Cl": {35.45, 1.02, 1.75, 1},
	"K":  {39.098, 2.03, 2.75, 0},
	"Ca": {40.078, 1.76, 2.31, 0},
	"Cr": {51.996, 1.39, 1.97, 0},
	"Mn": {54.938, 1.61, 1.96, 0},
	"Fe": {55.845, 1.52, 1.96, 0},
	"Co": {58.933, 1.50, 1.95, 0},
	"Ni": {58.693, 1.24, 1.63, 0},
	"Cu": {63.546, 1.32, 2.00, 0},
	"Zn": {65.38, 1.22, 2.02, 0},
	"Se": {78.971, 1.20, 1.90, 0},
	"Br": {79.904, 1.20, 1.83, 1},
	"I":  {126.90, 1.39, 1.98, 1},
	"Be": {9.012, 0.96, 1.53, 0},
}

//Mass returns the atomic mass for the element symbol, and false if the element is not known.
func Mass(symbol string) (float64, bool) {
	e, ok := elements[symbol]
	return e.mass, ok
}

//CovalentRadius returns the covalent radius for the element symbol, and false if it is not known.
func CovalentRadius(symbol string) (float64, bool) {
	e, ok := elements[symbol]
	return e.covrad, ok
}

//VdwRadius returns the van der Waals radius for the element symbol, and false if it is not known.
func VdwRadius(symbol string) (float64, bool) {
	e, ok := elements[symbol]
	return e.vdwrad, ok
}

//elements with two-letter symbols that commonly appear as ions in PDB files.
var ionNames = map[string]string{
	"NA": "Na",
	"MG": "Mg",
	"CL": "Cl",
	"K":  "K",
	"CA": "Ca",
	"MN": "Mn",
	"FE": "Fe",
	"CO": "Co",
	"NI": "Ni",
	"CU": "Cu",
	"ZN": "Zn",
	"BR": "Br",
	"SE": "Se",
	"SOD": "Na",
	"POT": "K",
	"CLA": "Cl",
	"CAL": "Ca",
}

//Residue data

//resnames commonly used for solvent (water) molecules.
var solventNames = map[string]bool{
	"HOH":  true,
	"WAT":  true,
	"H2O":  true,
	"SOL":  true,
	"TIP3": true,
	"TIP4": true,
	"TIP5": true,
	"TP3":  true,
	"T3P":  true,
	"T4P":  true,
	"SPC":  true,
}

//IsSolvent returns true if resname is one of the names commonly used for water molecules.
func IsSolvent(resname string) bool {
	return solventNames[strings.ToUpper(resname)]
}

//IsBackbone returns true if the atom name corresponds to a backbone atom that
//can take part in hydrogen bonds (N or O).
func IsBackbone(name string) bool {
	return name == "N" || name == "O"
}

//AromaticRing gives, for each aromatic residue, the names of three equally spaced atoms
//in its 6-membered ring. The first atom is the one used to label the ring.
var AromaticRing = map[string][3]string{
	"PHE": {"CG", "CE1", "CE2"},
	"TYR": {"CG", "CE1", "CE2"},
	"TRP": {"CD2", "CZ2", "CZ3"},
}

var hisNames = []string{"HIS", "HSD", "HSE", "HSP", "HIE", "HIP", "HID"}

//Anion returns true if the atom with name name in a residue resname is a carboxylate oxygen
//able to take part in salt bridges.
func Anion(resname, name string) bool {
	switch resname {
	case "ASP":
		return name == "OD1" || name == "OD2"
	case "GLU":
		return name == "OE1" || name == "OE2"
	}
	return false
}

//Cation returns true if the atom with name name in a residue resname is a positively charged
//nitrogen able to take part in salt bridges or pi-cation interactions.
func Cation(resname, name string) bool {
	switch resname {
	case "LYS":
		return name == "NZ"
	case "ARG":
		return name == "NH1" || name == "NH2"
	}
	if isInString(hisNames, resname) {
		return name == "ND1" || name == "NE2"
	}
	return false
}
