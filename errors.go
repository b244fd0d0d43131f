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

package chem

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rmera/gocontacts/fileio"
)

//baseError contains what is common to all the errors of the package. It is not used
//by itself, only embedded in the actual error types.
type baseError struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	cause    error
}

//Decorate adds dec to the decoration slice of the error and returns the slice.
func (err *baseError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//FileName returns the file associated to the error, if any.
func (err *baseError) FileName() string { return err.filename }

//Format returns the format of the file associated to the error, deduced
//from the file extension (compression extensions are skipped).
func (err *baseError) Format() string {
	return FileFormat(err.filename)
}

//Unwrap returns the underlying error, if any
func (err *baseError) Unwrap() error { return err.cause }

func (err *baseError) describe(kind string) string {
	s := kind
	if err.filename != "" {
		s += fmt.Sprintf(" in %s", err.filename)
	}
	s += ": " + err.message
	if err.cause != nil {
		s += ": " + err.cause.Error()
	}
	return s
}

//FormatError is returned for malformed or unsupported input files.
type FormatError struct {
	baseError
}

//NewFormatError returns a FormatError for the file filename. cause can be nil.
func NewFormatError(filename, message string, cause error) *FormatError {
	return &FormatError{baseError{message: message, filename: filename, cause: cause}}
}

func (err *FormatError) Error() string { return err.describe("format error") }

//Critical is always true for FormatErrors
func (err *FormatError) Critical() bool { return true }

//InconsistentTopologyError is returned when a topology contradicts itself, for instance,
//when a bond references an atom that doesn't exist.
type InconsistentTopologyError struct {
	baseError
}

//NewInconsistentTopologyError returns a new InconsistentTopologyError. cause can be nil.
func NewInconsistentTopologyError(filename, message string, cause error) *InconsistentTopologyError {
	return &InconsistentTopologyError{baseError{message: message, filename: filename, cause: cause}}
}

func (err *InconsistentTopologyError) Error() string { return err.describe("inconsistent topology") }

//Critical is always true for InconsistentTopologyErrors
func (err *InconsistentTopologyError) Critical() bool { return true }

//TruncatedTrajectoryError is returned when a trajectory ends in the middle of a frame.
type TruncatedTrajectoryError struct {
	baseError
	Frame int //the index of the incomplete frame
}

//NewTruncatedTrajectoryError returns a new TruncatedTrajectoryError for the frame with index frame.
func NewTruncatedTrajectoryError(filename string, frame int, cause error) *TruncatedTrajectoryError {
	return &TruncatedTrajectoryError{baseError: baseError{message: fmt.Sprintf("frame %d is incomplete", frame), filename: filename, cause: cause}, Frame: frame}
}

func (err *TruncatedTrajectoryError) Error() string { return err.describe("truncated trajectory") }

//Critical is always true for TruncatedTrajectoryErrors
func (err *TruncatedTrajectoryError) Critical() bool { return true }

//IOError is returned when the output can't be written. Frames is the number of frames completely
//written before the failure.
type IOError struct {
	baseError
	Frames int
}

//NewIOError returns a new IOError.
func NewIOError(filename string, frames int, cause error) *IOError {
	return &IOError{baseError: baseError{message: fmt.Sprintf("output failed after %d complete frames", frames), filename: filename, cause: cause}, Frames: frames}
}

func (err *IOError) Error() string { return err.describe("I/O error") }

//Critical is always true for IOErrors
func (err *IOError) Critical() bool { return true }

//TimeoutError is returned when reading from a trajectory takes longer than allowed.
type TimeoutError struct {
	baseError
}

//NewTimeoutError returns a new TimeoutError.
func NewTimeoutError(filename, message string) *TimeoutError {
	return &TimeoutError{baseError{message: message, filename: filename}}
}

func (err *TimeoutError) Error() string { return err.describe("timeout") }

//Critical is always true for TimeoutErrors
func (err *TimeoutError) Critical() bool { return true }

//MissingAttributeWarning signals that an atom lacks some information (element, radius, etc) needed
//to evaluate a given interaction. It is not critical: the atom is just skipped for that interaction.
type MissingAttributeWarning struct {
	baseError
	Atom      int
	Attribute string
	Predicate string
}

//NewMissingAttributeWarning returns a new MissingAttributeWarning.
func NewMissingAttributeWarning(atom int, attribute, predicate, message string) *MissingAttributeWarning {
	return &MissingAttributeWarning{baseError: baseError{message: message}, Atom: atom, Attribute: attribute, Predicate: predicate}
}

func (err *MissingAttributeWarning) Error() string {
	return fmt.Sprintf("missing %s for %s: %s", err.Attribute, err.Predicate, err.message)
}

//Critical is always false for warnings
func (err *MissingAttributeWarning) Critical() bool { return false }

//lastFrameError implements LastFrameError
type lastFrameError struct {
	baseError
}

//NormalLastFrameTermination does nothing
func (err *lastFrameError) NormalLastFrameTermination() {}

func (err *lastFrameError) Error() string { return "EOF" }

func (err *lastFrameError) Critical() bool { return false }

//NewLastFrameError returns an error that satisfies LastFrameError, signaling that the trajectory
//in file filename has no more frames.
func NewLastFrameError(filename string, caller string) error {
	return &lastFrameError{baseError{message: "EOF", filename: filename, deco: []string{caller}}}
}

//IsLastFrame returns true if err, or an error it wraps, is a LastFrameError.
func IsLastFrame(err error) bool {
	var lf LastFrameError
	return errors.As(err, &lf)
}

//FileFormat returns the lowercase extension of filename, ignoring
//compression extensions, so "traj.dcd.gz" gives "dcd".
func FileFormat(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fileio.Base(filename))), ".")
}

//errDecorate is a helper function that looks for a chem.Error in err
//and decorates it with the caller's name before returning err.
//Errors that don't implement chem.Error are returned unchanged.
func errDecorate(err error, caller string) error {
	var e Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
