/*
 * forces.go, part of rsint.
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

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/molgrid/rsint/comm"
)

//ForceSink accumulates per-atom forces and the global virial tensor. It is
//owned by the caller and shared by all workers; every atom pair's last task
//writes to it regardless of worker assignment, so it is the one resource in
//the hot path behind a mutex.
type ForceSink struct {
	mu     sync.Mutex
	forces [][3]float64
	virial *mat.SymDense
}

//NewForceSink returns a sink for natoms atoms with a zero virial.
func NewForceSink(natoms int) *ForceSink {
	return &ForceSink{
		forces: make([][3]float64, natoms),
		virial: mat.NewSymDense(3, nil),
	}
}

//AddPair adds the scaled force contributions of one atom pair, and the
//partial virial tensors when given. scale carries the pair multiplicity
//(2 for heteroatomic pairs, whose off-diagonal block is stored once but
//counts twice, 1 for an atom paired with itself) times any auxiliary-basis
//scaling.
func (S *ForceSink) AddPair(ia, ib int, fa, fb [3]float64, va, vb *mat.SymDense, scale float64) {
	S.mu.Lock()
	defer S.mu.Unlock()
	for d := 0; d < 3; d++ {
		S.forces[ia][d] += scale * fa[d]
		S.forces[ib][d] += scale * fb[d]
	}
	if va != nil {
		S.virial.AddSym(S.virial, scaledSym(va, scale))
	}
	if vb != nil {
		S.virial.AddSym(S.virial, scaledSym(vb, scale))
	}
}

func scaledSym(v *mat.SymDense, s float64) *mat.SymDense {
	out := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			out.SetSym(i, j, s*v.At(i, j))
		}
	}
	return out
}

//Force returns the accumulated force on atom i.
func (S *ForceSink) Force(i int) [3]float64 {
	S.mu.Lock()
	defer S.mu.Unlock()
	return S.forces[i]
}

//Virial returns a copy of the accumulated virial tensor.
func (S *ForceSink) Virial() *mat.SymDense {
	S.mu.Lock()
	defer S.mu.Unlock()
	out := mat.NewSymDense(3, nil)
	out.CopySym(S.virial)
	return out
}

//Reduce sums the sink's forces and virial across all ranks of c, in place,
//so every rank ends with the global totals. On distributed grids each rank
//only sees the pair contributions of its own slab; call Reduce once, after
//the last invocation that accumulated into the sink. A nil communicator or a
//single-rank group is a no-op.
func (S *ForceSink) Reduce(c comm.Communicator) error {
	if c == nil || c.Size() == 1 {
		return nil
	}
	S.mu.Lock()
	defer S.mu.Unlock()
	buf := make([]float64, 0, 3*len(S.forces)+6)
	for _, f := range S.forces {
		buf = append(buf, f[0], f[1], f[2])
	}
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			buf = append(buf, S.virial.At(i, j))
		}
	}
	if err := c.Allreduce(buf); err != nil {
		return errDecorate(err, "ForceSink.Reduce")
	}
	for i := range S.forces {
		S.forces[i] = [3]float64{buf[3*i], buf[3*i+1], buf[3*i+2]}
	}
	k := 3 * len(S.forces)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			S.virial.SetSym(i, j, buf[k])
			k++
		}
	}
	return nil
}
