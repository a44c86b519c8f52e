/*
 * scratch.go, part of rsint.
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

import "gonum.org/v1/gonum/mat"

//Scratch is the dense working storage of one worker, sized once per driver
//invocation from basis-set-wide maxima and reused across every task the
//worker processes. One instance per worker; never shared.
type Scratch struct {
	habBuf []float64 //primitive accumulation, maxco x maxco
	pabBuf []float64 //primitive weight block, maxco x maxco
	t1Buf  []float64 //contraction halves, maxsgf x maxco and maxco x maxsgf
	t2Buf  []float64
	resBuf []float64 //contracted result, maxsgf x maxsgf

	job   PairJob
	va    *mat.SymDense
	vb    *mat.SymDense
	kinds map[string]*Basis //per-worker kind lookup cache
}

//newScratch sizes a worker's buffers. maxco is the largest primitive
//Cartesian block extent over all kinds, maxsgf the largest contracted set.
func newScratch(maxco, maxsgf int) *Scratch {
	return &Scratch{
		habBuf: make([]float64, maxco*maxco),
		pabBuf: make([]float64, maxco*maxco),
		t1Buf:  make([]float64, maxco*maxsgf),
		t2Buf:  make([]float64, maxco*maxsgf),
		resBuf: make([]float64, maxsgf*maxsgf),
		va:     mat.NewSymDense(3, nil),
		vb:     mat.NewSymDense(3, nil),
		kinds:  make(map[string]*Basis),
	}
}

//dense wraps r*c elements of buf as a Dense without allocating new backing
//storage.
func dense(buf []float64, r, c int) *mat.Dense {
	return mat.NewDense(r, c, buf[:r*c])
}
