/*
 * grid.go, part of rsint.
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

//Package grid holds the multi-resolution real-space potential stack the
//integration driver reads from. A stack is a list of levels of increasing
//resolution; sharply peaked primitive pairs map to finer levels. A level may
//be replicated (every process sees all points) or spatially distributed, in
//which case each process holds a slab of the full domain.
package grid

import "fmt"

//Level is one resolution tier: a scalar field sampled on a regular
//orthorhombic mesh. Data holds the owned points only, x-major
//(x slowest, z fastest), covering the index box [Lo,Hi).
type Level struct {
	Rung   int        //position in the stack, 0 is the coarsest
	H      [3]float64 //grid spacing per direction
	Npts   [3]int     //global point counts
	Origin [3]float64 //Cartesian position of global point (0,0,0)
	Lo     [3]int     //inclusive lower corner of the owned box
	Hi     [3]int     //exclusive upper corner of the owned box
	Data   []float64
	//Distributed is true when the level is a slab of a larger domain and
	//partial integration results must be merged across processes.
	Distributed bool
}

//NewLevel returns a fully replicated, zero-initialized level.
func NewLevel(rung int, npts [3]int, h, origin [3]float64) *Level {
	n := npts[0] * npts[1] * npts[2]
	return &Level{
		Rung:   rung,
		H:      h,
		Npts:   npts,
		Origin: origin,
		Hi:     npts,
		Data:   make([]float64, n),
	}
}

//span returns the owned extent in direction d.
func (L *Level) span(d int) int { return L.Hi[d] - L.Lo[d] }

//idx maps global indices to the owned flat index. Panics (via slice
//indexing) when the point is not owned.
func (L *Level) idx(ix, iy, iz int) int {
	return ((ix-L.Lo[0])*L.span(1)+(iy-L.Lo[1]))*L.span(2) + (iz - L.Lo[2])
}

//At returns the potential at the global point (ix,iy,iz).
func (L *Level) At(ix, iy, iz int) float64 { return L.Data[L.idx(ix, iy, iz)] }

//Set stores v at the global point (ix,iy,iz).
func (L *Level) Set(ix, iy, iz int, v float64) { L.Data[L.idx(ix, iy, iz)] = v }

//Owns reports whether the point lies in the owned box.
func (L *Level) Owns(ix, iy, iz int) bool {
	return ix >= L.Lo[0] && ix < L.Hi[0] &&
		iy >= L.Lo[1] && iy < L.Hi[1] &&
		iz >= L.Lo[2] && iz < L.Hi[2]
}

//Point returns the Cartesian position of the global point (ix,iy,iz).
func (L *Level) Point(ix, iy, iz int) [3]float64 {
	return [3]float64{
		L.Origin[0] + float64(ix)*L.H[0],
		L.Origin[1] + float64(iy)*L.H[1],
		L.Origin[2] + float64(iz)*L.H[2],
	}
}

//DV returns the volume element of the level.
func (L *Level) DV() float64 { return L.H[0] * L.H[1] * L.H[2] }

//Fill evaluates f on every owned point.
func (L *Level) Fill(f func(p [3]float64) float64) {
	for ix := L.Lo[0]; ix < L.Hi[0]; ix++ {
		for iy := L.Lo[1]; iy < L.Hi[1]; iy++ {
			for iz := L.Lo[2]; iz < L.Hi[2]; iz++ {
				L.Set(ix, iy, iz, f(L.Point(ix, iy, iz)))
			}
		}
	}
}

//Slab carves the owned box [lo,hi) out of a replicated level and returns it
//as a distributed level, copying the covered data. This is how a process
//group splits a level: each rank keeps one slab, and the merged integration
//results are summed back by the distribution layer.
func (L *Level) Slab(lo, hi [3]int) (*Level, error) {
	for d := 0; d < 3; d++ {
		if lo[d] < L.Lo[d] || hi[d] > L.Hi[d] || lo[d] >= hi[d] {
			return nil, Error{fmt.Sprintf("slab [%v,%v) outside owned box [%v,%v)", lo, hi, L.Lo, L.Hi), "", []string{"Slab"}, true}
		}
	}
	s := &Level{
		Rung:        L.Rung,
		H:           L.H,
		Npts:        L.Npts,
		Origin:      L.Origin,
		Lo:          lo,
		Hi:          hi,
		Distributed: true,
		Data:        make([]float64, (hi[0]-lo[0])*(hi[1]-lo[1])*(hi[2]-lo[2])),
	}
	for ix := lo[0]; ix < hi[0]; ix++ {
		for iy := lo[1]; iy < hi[1]; iy++ {
			for iz := lo[2]; iz < hi[2]; iz++ {
				s.Set(ix, iy, iz, L.At(ix, iy, iz))
			}
		}
	}
	return s, nil
}

//XSlabFor splits the global x extent of the level into size near-equal
//slabs and returns the [lo,hi) x-range owned by the given rank.
func (L *Level) XSlabFor(rank, size int) (int, int) {
	nx := L.Npts[0]
	lo := rank * nx / size
	hi := (rank + 1) * nx / size
	return lo, hi
}

//Stack is the multi-resolution grid hierarchy. Cutoffs[i] is the largest
//exponent sum level i resolves; levels are ordered coarse to fine, with
//Cutoffs strictly increasing.
type Stack struct {
	Levels  []*Level
	Cutoffs []float64
}

//AnyDistributed reports whether at least one level of the stack is
//spatially distributed, which is the capability query deciding between the
//direct-accumulation and the scatter/compute/gather code path.
func (S *Stack) AnyDistributed() bool {
	for _, l := range S.Levels {
		if l.Distributed {
			return true
		}
	}
	return false
}

//LevelFor maps the exponent sum of a primitive pair to the coarsest level
//that still resolves it.
func (S *Stack) LevelFor(zetsum float64) int {
	for i, c := range S.Cutoffs {
		if zetsum <= c {
			return i
		}
	}
	return len(S.Levels) - 1
}

//Error is the error type of the grid package.
type Error struct {
	message  string
	context  string
	deco     []string
	critical bool
}

func (err Error) Error() string { return err.message }

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
