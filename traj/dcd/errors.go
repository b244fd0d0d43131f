/*
 * errors.go, part of gocontacts.
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

package dcd

import (
	"errors"
	"fmt"

	chem "github.com/rmera/gocontacts"
)

//Error is the general structure for DCD trajectory errors that are not related to the
//contents of an input file. It fullfills chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
}

//Decorate adds dec to the decoration slice and returns it.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//FileName returns the name of the file with problems
func (err *Error) FileName() string { return err.filename }

//Format returns the format of the file (always "dcd")
func (err *Error) Format() string { return "dcd" }

//Critical returns true if the error is critical, false otherwise
func (err *Error) Critical() bool { return err.critical }

const (
	//TrajUnIni is the message for a trajectory that was not initialized or was already closed.
	TrajUnIni = "traj object uninitialized or closed"
	//NotEnoughSpace is the message for buffers that don't match the number of atoms.
	NotEnoughSpace = "not enough space in passed slice"
)

//errDecorate is a helper function that looks for a chem.Error in err
//and decorates it with the caller's name before returning err.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e chem.Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
