/*
 * env.go, part of rsint.
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
	"github.com/molgrid/rsint/block"
	"github.com/molgrid/rsint/comm"
	"github.com/molgrid/rsint/grid"
)

//Env bundles the collaborator-produced inputs of one scheduling epoch:
//geometry, basis sets, task lists and grid stacks, the primitive-pair
//integrator and, for spatially distributed grids, the process group. All of
//it is read-only to the driver and shared across threads without locking.
type Env struct {
	Atoms []Atom
	Cell  *Cell
	//Basis maps atomic kind -> basis type tag -> descriptor.
	Basis map[string]map[string]*Basis
	//Tasks and Grids are keyed by basis type tag.
	Tasks map[string]*TaskList
	Grids map[string]*grid.Stack
	Integ PairIntegrator
	//Comm is nil for single-process runs.
	Comm comm.Communicator
}

//BasisFor returns the basis of the given kind under the given type tag,
//falling back from the soft tag to the primary basis for kinds that carry
//no separate soft expansion. Panics when nothing is registered: basis
//lookups only fail on configuration errors.
func (E *Env) BasisFor(kind, btype string) *Basis {
	if m, ok := E.Basis[kind]; ok {
		if b, ok := m[btype]; ok {
			return b
		}
		if btype == BasisSoft {
			if b, ok := m[BasisOrb]; ok {
				return b
			}
		}
	}
	panic(ErrNoBasis)
}

//maxima returns the basis-set-wide scratch dimensions under the given type
//tag: the largest primitive Cartesian block and the largest contracted set.
func (E *Env) maxima(btype string) (maxco, maxsgf int) {
	for kind := range E.Basis {
		b := E.BasisFor(kind, btype)
		if n := b.MaxCart(); n > maxco {
			maxco = n
		}
		if n := b.MaxSph(); n > maxsgf {
			maxsgf = n
		}
	}
	return maxco, maxsgf
}

//MatrixTarget is the tagged destination of the integration: exactly one of
//a single matrix (gamma-point runs) or a per-image matrix list (k-point
//sampling). The zero value is invalid.
type MatrixTarget struct {
	single *block.Matrix
	images []*block.Matrix
}

//SingleMatrix targets one matrix; every task must then carry image 0.
func SingleMatrix(m *block.Matrix) MatrixTarget {
	return MatrixTarget{single: m}
}

//PerImage targets one matrix per k-point image.
func PerImage(ms []*block.Matrix) MatrixTarget {
	return MatrixTarget{images: ms}
}

//valid reports whether exactly one variant is populated.
func (T MatrixTarget) valid() bool {
	return (T.single != nil) != (len(T.images) > 0)
}

//perImage reports the variant, for matching weight against destination.
func (T MatrixTarget) perImage() bool { return len(T.images) > 0 }

//nimages returns the number of images the target can hold.
func (T MatrixTarget) nimages() int {
	if T.single != nil {
		return 1
	}
	return len(T.images)
}

//at returns the matrix for an image. Panics on out-of-range images: the
//task list names an image the caller did not supply a matrix for.
func (T MatrixTarget) at(image int) *block.Matrix {
	if T.single != nil {
		if image != 0 {
			panic(ErrImageRange)
		}
		return T.single
	}
	if image >= len(T.images) {
		panic(ErrImageRange)
	}
	return T.images[image]
}

//working returns a target of fresh empty matrices with the same shape, used
//as the private per-process accumulation copies on the distributed path.
func (T MatrixTarget) working() MatrixTarget {
	if T.single != nil {
		return MatrixTarget{single: block.New()}
	}
	ms := make([]*block.Matrix, len(T.images))
	for i := range ms {
		ms[i] = block.New()
	}
	return MatrixTarget{images: ms}
}

//scattered returns the target filtered block-wise by keep.
func (T MatrixTarget) scattered(keep func(block.Key) bool) MatrixTarget {
	if T.single != nil {
		return MatrixTarget{single: T.single.Filter(keep)}
	}
	ms := make([]*block.Matrix, len(T.images))
	for i := range ms {
		ms[i] = T.images[i].Filter(keep)
	}
	return MatrixTarget{images: ms}
}
