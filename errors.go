/*
 * errors.go, part of rsint.
 *
 * Copyright 2023 The rsint developers
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

package rsint

import "strings"

//Error is the error type returned by the integration driver. Critical errors
//(communication failures, integrator failures) terminate the enclosing
//computation; there is no recoverable-error path in this package.
type Error struct {
	message  string
	context  string //usually the basis type or grid level the driver was working on
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return strings.Join([]string{err.message, err.context, strings.Join(err.deco, "/")}, " ")
}

//Decorate adds the caller string to the error trace and returns the
//current trace.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

//errDecorate decorates err with the caller name if err is an rsint Error,
//and wraps it into a critical one otherwise.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return Error{err.Error(), "", []string{caller}, true}
	}
	err2.Decorate(caller)
	return err2
}

//PanicMsg is the type used for the panics raised on caller contract
//violations. Those indicate a programming or configuration error in the
//caller, not a condition the driver can recover from, so, as with the
//out-of-range panics of the containers, the program should crash.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	//the driver was given a nil environment.
	ErrNilEnv = PanicMsg("rsint: nil environment")
	//neither a single matrix nor a per-image matrix list was supplied,
	//or both were.
	ErrMatrixTarget = PanicMsg("rsint: exactly one of single-matrix or per-image matrices must be supplied")
	//the weight matrix does not match the kind (single vs per-image)
	//of the destination matrix.
	ErrWeightKind = PanicMsg("rsint: weight matrix kind does not match destination matrix kind")
	//no task list is registered for the requested basis type.
	ErrNoTaskList = PanicMsg("rsint: no task list for the requested basis type")
	//no grid stack is registered for the requested basis type.
	ErrNoGridStack = PanicMsg("rsint: no grid stack for the requested basis type")
	//forces were requested without a weight matrix to contract them with.
	ErrForcesNeedWeight = PanicMsg("rsint: force evaluation requires a weight matrix")
	//forces were requested without a sink to accumulate them into.
	ErrForcesNeedSink = PanicMsg("rsint: force evaluation requires a ForceSink")
	//a task names an image outside the supplied per-image matrix list.
	ErrImageRange = PanicMsg("rsint: task image index outside the supplied matrix list")
	//only one of the external task list / external grid stack overrides
	//was supplied.
	ErrExternalPair = PanicMsg("rsint: external task list and grid stack must be overridden together")
	//no basis is registered for an atomic kind under the requested type.
	ErrNoBasis = PanicMsg("rsint: no basis for atomic kind under the requested basis type")
	//two workers touched the same matrix block within one grid level.
	ErrBlockRace = PanicMsg("rsint: matrix block touched by two workers in one level")
)
