/*
 * params.go, part of gocontacts.
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

package interactions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	chem "github.com/rmera/gocontacts"
)

//Params contains the geometric criteria for each interaction kind, and some options
//about which contacts are reported. Distances are in A, angles in degrees.
type Params struct {
	HBondDist      float64 //maximum donor-acceptor distance
	HBondAngle     float64 //maximum deviation of the donor-H-acceptor angle from 180
	SaltBridgeDist float64 //maximum cation-anion distance
	PiCationDist   float64 //maximum ring centroid-cation distance
	PiCationAngle  float64 //maximum angle between the ring normal and the centroid-cation vector
	PiStackDist    float64 //maximum distance between ring centroids
	PiStackAngle   float64 //maximum angle between ring normals
	PiStackPsi     float64 //maximum angle between a ring normal and the centroid-centroid vector
	TStackDist     float64
	TStackMinAngle float64 //minimum angle between ring normals
	TStackMaxAngle float64
	TStackPsi      float64
	HydrophobicTol float64 //added to the sum of van der Waals radii
	VdWTol         float64 //added to the sum of van der Waals radii
	Intra          bool    //report contacts between atoms of the same residue
	Stratify       bool    //replace hydrogen bonds by their subtypes and water bridges
	Sele           string  //only contacts between these atoms are reported (see chem.ParseSelection)
	Sele2          string  //if given, only contacts between a Sele atom and a Sele2 atom are reported
}

//DefaultParams returns the default criteria.
func DefaultParams() Params {
	return Params{
		HBondDist:      3.5,
		HBondAngle:     70,
		SaltBridgeDist: 4.0,
		PiCationDist:   6.0,
		PiCationAngle:  60,
		PiStackDist:    7.0,
		PiStackAngle:   30,
		PiStackPsi:     45,
		TStackDist:     5.0,
		TStackMinAngle: 60,
		TStackMaxAngle: 90,
		TStackPsi:      45,
		HydrophobicTol: 0.5,
		VdWTol:         0.5,
	}
}

//floatKeys maps the numeric keys accepted by ParamsFromMap to the fields they set.
func (p *Params) floatKeys() map[string]*float64 {
	return map[string]*float64{
		"HBOND_DIST":    &p.HBondDist,
		"HBOND_ANGLE":   &p.HBondAngle,
		"SB_DIST":       &p.SaltBridgeDist,
		"PC_DIST":       &p.PiCationDist,
		"PC_ANGLE":      &p.PiCationAngle,
		"PS_DIST":       &p.PiStackDist,
		"PS_ANGLE":      &p.PiStackAngle,
		"PS_PSI":        &p.PiStackPsi,
		"TS_DIST":       &p.TStackDist,
		"TS_ANGLE_MIN":  &p.TStackMinAngle,
		"TS_ANGLE_MAX":  &p.TStackMaxAngle,
		"TS_PSI":        &p.TStackPsi,
		"HP_TOLERANCE":  &p.HydrophobicTol,
		"VDW_TOLERANCE": &p.VdWTol,
	}
}

//ParamsFromMap returns the default parameters, modified by the values in m. Keys are case-insensitive,
//unknown keys and invalid values produce errors.
//Accepted keys: HBOND_DIST, HBOND_ANGLE, SB_DIST, PC_DIST, PC_ANGLE, PS_DIST, PS_ANGLE, PS_PSI,
//TS_DIST, TS_ANGLE_MIN, TS_ANGLE_MAX, TS_PSI, HP_TOLERANCE, VDW_TOLERANCE, INTRA, STRATIFY,
//SELE and SELE2.
func ParamsFromMap(m map[string]string) (Params, error) {
	p := DefaultParams()
	floats := p.floatKeys()
	bools := map[string]*bool{"INTRA": &p.Intra, "STRATIFY": &p.Stratify}
	strs := map[string]*string{"SELE": &p.Sele, "SELE2": &p.Sele2}
	for k, v := range m {
		key := strings.ToUpper(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if f, ok := floats[key]; ok {
			val, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return p, fmt.Errorf("invalid value %q for parameter %s: %w", v, key, err)
			}
			*f = val
			continue
		}
		if b, ok := bools[key]; ok {
			val, err := strconv.ParseBool(v)
			if err != nil {
				return p, fmt.Errorf("invalid value %q for parameter %s: %w", v, key, err)
			}
			*b = val
			continue
		}
		if t, ok := strs[key]; ok {
			*t = v
			continue
		}
		return p, fmt.Errorf("unknown parameter %q", k)
	}
	return p, p.Validate()
}

//ParamsFromFile reads parameters from the dotenv-style file name (KEY=value lines, see ParamsFromMap).
func ParamsFromFile(name string) (Params, error) {
	m, err := godotenv.Read(name)
	if err != nil {
		return DefaultParams(), fmt.Errorf("reading parameters from %s: %w", name, err)
	}
	return ParamsFromMap(m)
}

//Validate returns an error if some criterion makes no sense.
func (p Params) Validate() error {
	for k, v := range p.floatKeys() {
		if *v < 0 || *v != *v {
			return fmt.Errorf("parameter %s can't be %v", k, *v)
		}
	}
	for k, v := range map[string]float64{"HBOND_DIST": p.HBondDist, "SB_DIST": p.SaltBridgeDist, "PC_DIST": p.PiCationDist,
		"PS_DIST": p.PiStackDist, "TS_DIST": p.TStackDist} {
		if v == 0 {
			return fmt.Errorf("parameter %s must be positive", k)
		}
	}
	if p.TStackMinAngle > p.TStackMaxAngle {
		return fmt.Errorf("TS_ANGLE_MIN (%.1f) larger than TS_ANGLE_MAX (%.1f)", p.TStackMinAngle, p.TStackMaxAngle)
	}
	if _, _, err := p.selections(); err != nil {
		return err
	}
	return nil
}

//selections returns the parsed Sele and Sele2.
func (p Params) selections() (*chem.Selection, *chem.Selection, error) {
	s1, err := chem.ParseSelection(p.Sele)
	if err != nil {
		return nil, nil, err
	}
	s2, err := chem.ParseSelection(p.Sele2)
	if err != nil {
		return nil, nil, err
	}
	return s1, s2, nil
}
