/*
 * block.go, part of rsint.
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

//Package block holds the block-sparse operator matrix used by the
//integration driver. Blocks are keyed by (image, row atom, column atom);
//only the block with row <= col is stored, its values applying
//symmetrically. Block dimensions are the contracted basis sizes of the two
//atoms' kinds.
package block

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

//Key identifies one stored block. Row <= Col always holds for stored keys.
type Key struct {
	Image int
	Row   int
	Col   int
}

//Canon returns the canonical (row, col) ordering of an atom pair and
//whether the input was swapped to get there.
func Canon(ia, ib int) (int, int, bool) {
	if ia > ib {
		return ib, ia, true
	}
	return ia, ib, false
}

//Matrix is a block-sparse symmetric matrix. It is not internally
//synchronized: during a grid level, concurrent access goes through a
//Partition, which confines block creation to per-worker side maps.
type Matrix struct {
	blocks map[Key]*mat.Dense
}

//New returns an empty Matrix.
func New() *Matrix {
	return &Matrix{blocks: make(map[Key]*mat.Dense)}
}

//Block returns the block for the (unordered) atom pair and image, or
//(nil, false) when absent.
func (M *Matrix) Block(image, ia, ib int) (*mat.Dense, bool) {
	r, c, _ := Canon(ia, ib)
	b, ok := M.blocks[Key{image, r, c}]
	return b, ok
}

//Put returns the block for the pair, creating a zeroed rows x cols block if
//absent. Panics if an existing block disagrees on the dimensions, since
//that means two callers disagree on the kinds of the atoms.
func (M *Matrix) Put(image, ia, ib, rows, cols int) *mat.Dense {
	r, c, swapped := Canon(ia, ib)
	if swapped {
		rows, cols = cols, rows
	}
	k := Key{image, r, c}
	if b, ok := M.blocks[k]; ok {
		br, bc := b.Dims()
		if br != rows || bc != cols {
			panic("block: conflicting dimensions for the same atom pair")
		}
		return b
	}
	b := mat.NewDense(rows, cols, nil)
	M.blocks[k] = b
	return b
}

//NBlocks returns the number of stored blocks.
func (M *Matrix) NBlocks() int { return len(M.blocks) }

//Keys returns the stored keys, sorted, so iteration order is reproducible.
func (M *Matrix) Keys() []Key {
	ks := make([]Key, 0, len(M.blocks))
	for k := range M.blocks {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.Image != b.Image {
			return a.Image < b.Image
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	return ks
}

//Add accumulates every block of o into the receiver, creating missing
//blocks. The summation is plain element-wise addition, so merging partial
//matrices is commutative and associative.
func (M *Matrix) Add(o *Matrix) {
	for k, ob := range o.blocks {
		r, c := ob.Dims()
		b := M.Put(k.Image, k.Row, k.Col, r, c)
		b.Add(b, ob)
	}
}

//Copy returns a deep copy.
func (M *Matrix) Copy() *Matrix {
	n := New()
	for k, b := range M.blocks {
		n.blocks[k] = mat.DenseCopyOf(b)
	}
	return n
}

//Filter returns a shallow view containing only the blocks whose key
//satisfies keep. Used by the grid distribution layer to drop blocks with no
//support on the local grid partition.
func (M *Matrix) Filter(keep func(Key) bool) *Matrix {
	n := New()
	for k, b := range M.blocks {
		if keep(k) {
			n.blocks[k] = b
		}
	}
	return n
}

//MaxAbs returns the largest absolute element over all blocks.
func (M *Matrix) MaxAbs() float64 {
	m := 0.0
	for _, b := range M.blocks {
		r, c := b.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if v := math.Abs(b.At(i, j)); v > m {
					m = v
				}
			}
		}
	}
	return m
}

//Partition is the thread-partitioned view of a Matrix used while one grid
//level is being integrated. Lookups of pre-existing blocks hit the shared
//map, which is read-only for the duration of the level; blocks created
//during the level land in a per-worker side map, so workers never mutate
//shared state. Flush, called single-threaded after the level barrier,
//merges the side maps back.
type Partition struct {
	m    *Matrix
	side []map[Key]*mat.Dense
}

//BeginLevel returns a Partition with nworkers side maps. The receiver must
//not be mutated directly until Flush is called.
func (M *Matrix) BeginLevel(nworkers int) *Partition {
	p := &Partition{m: M, side: make([]map[Key]*mat.Dense, nworkers)}
	for i := range p.side {
		p.side[i] = make(map[Key]*mat.Dense)
	}
	return p
}

//Block returns the block for the pair as seen by the given worker, creating
//it in the worker's side map when absent everywhere. The returned block may
//be written without locking as long as each (level, pair) is processed by a
//single worker.
func (P *Partition) Block(worker, image, ia, ib, rows, cols int) *mat.Dense {
	r, c, swapped := Canon(ia, ib)
	if swapped {
		rows, cols = cols, rows
	}
	k := Key{image, r, c}
	if b, ok := P.m.blocks[k]; ok {
		return b
	}
	if b, ok := P.side[worker][k]; ok {
		return b
	}
	b := mat.NewDense(rows, cols, nil)
	P.side[worker][k] = b
	return b
}

//Flush merges the per-worker side maps into the shared matrix. It must be
//called from a single goroutine, after all workers of the level are done.
//Duplicate keys across side maps are summed; with pair-atomic scheduling
//they should not occur, but the merge stays a commutative reduction either
//way.
func (P *Partition) Flush() {
	for _, side := range P.side {
		for k, b := range side {
			if shared, ok := P.m.blocks[k]; ok {
				shared.Add(shared, b)
				continue
			}
			P.m.blocks[k] = b
		}
		clear(side)
	}
}
