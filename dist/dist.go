/*
 * dist.go, part of rsint.
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

//Package dist converts between the process-replicated view of a
//block-sparse matrix and a process-local view consistent with the spatial
//decomposition of the real-space grids. Orbital indices are incoherent with
//the grid partitioning, so a pair block can have support on several ranks'
//slabs; after integration, the partial contributions are merged by plain
//summation, which keeps the result independent of the process count and of
//arrival order.
package dist

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/molgrid/rsint/block"
	"github.com/molgrid/rsint/comm"
	"github.com/molgrid/rsint/grid"
)

const tagGather = 101

//Scatter returns the local working copy of m for this rank: pair blocks
//whose keep predicate is false (no support on the local grid partition) are
//dropped. The source matrix is replicated on every rank, so no wire traffic
//is needed on the way in; the communication happens on the way back, in
//Gather. Blocks are deep-copied so the working copy can be consumed freely.
func Scatter(m *block.Matrix, keep func(block.Key) bool) *block.Matrix {
	if m == nil {
		return nil
	}
	return m.Filter(keep).Copy()
}

//Gather merges the per-rank partial matrices into one: every rank's blocks
//are summed block-wise on rank 0 and the merged matrix is broadcast back,
//so all ranks return the same result. With a nil communicator or a
//single-rank group it degenerates to a copy, matching the replicated code
//path.
func Gather(local *block.Matrix, c comm.Communicator) (*block.Matrix, error) {
	if c == nil || c.Size() == 1 {
		return local.Copy(), nil
	}
	if c.Rank() != 0 {
		if err := c.Send(0, encode(local)); err != nil {
			return nil, errors.Wrapf(err, "dist: gather send from rank %d", c.Rank())
		}
		m, err := c.Bcast(0, nil)
		if err != nil {
			return nil, errors.Wrap(err, "dist: gather bcast recv")
		}
		return decode(m)
	}
	merged := local.Copy()
	for from := 1; from < c.Size(); from++ {
		m, err := c.Recv(from)
		if err != nil {
			return nil, errors.Wrapf(err, "dist: gather recv from rank %d", from)
		}
		part, err := decode(m)
		if err != nil {
			return nil, errors.Wrapf(err, "dist: gather decode from rank %d", from)
		}
		merged.Add(part)
	}
	if _, err := c.Bcast(0, encode(merged)); err != nil {
		return nil, errors.Wrap(err, "dist: gather bcast send")
	}
	return merged, nil
}

//SlabKeep builds the keep predicate for Scatter: a pair block survives on
//this rank when the spherical support of either atom, or of the pair
//midpoint, overlaps the rank's x-slab of any distributed level. pos holds
//the wrapped atom positions and radius the per-atom basis support radii.
//A replicated level in the stack keeps every block: its pairs are divided
//across the ranks with no spatial pattern, so any block can be needed
//locally.
func SlabKeep(s *grid.Stack, pos [][3]float64, radius []float64) func(block.Key) bool {
	return func(k block.Key) bool {
		for _, l := range s.Levels {
			if !l.Distributed {
				return true
			}
			xlo := l.Origin[0] + float64(l.Lo[0])*l.H[0]
			xhi := l.Origin[0] + float64(l.Hi[0])*l.H[0]
			ra, rb := radius[k.Row], radius[k.Col]
			ax, bx := pos[k.Row][0], pos[k.Col][0]
			if ax+ra >= xlo && ax-ra < xhi {
				return true
			}
			if bx+rb >= xlo && bx-rb < xhi {
				return true
			}
			//pair product support centered between the two atoms
			mid := 0.5 * (ax + bx)
			r := 0.5 * (ra + rb)
			if mid+r >= xlo && mid-r < xhi {
				return true
			}
		}
		return false
	}
}

//encode flattens a block matrix into a Message: per block five ints of
//header (image, row, col, rows, cols) followed by the row-major data.
func encode(m *block.Matrix) *comm.Message {
	msg := &comm.Message{Tag: tagGather}
	for _, k := range m.Keys() {
		b, _ := m.Block(k.Image, k.Row, k.Col)
		r, c := b.Dims()
		msg.Ints = append(msg.Ints, k.Image, k.Row, k.Col, r, c)
		msg.Floats = append(msg.Floats, b.RawMatrix().Data...)
	}
	return msg
}

func decode(msg *comm.Message) (*block.Matrix, error) {
	if len(msg.Ints)%5 != 0 {
		return nil, errors.Newf("dist: malformed block header, %d ints", len(msg.Ints))
	}
	m := block.New()
	off := 0
	for i := 0; i < len(msg.Ints); i += 5 {
		img, row, col := msg.Ints[i], msg.Ints[i+1], msg.Ints[i+2]
		r, c := msg.Ints[i+3], msg.Ints[i+4]
		if off+r*c > len(msg.Floats) {
			return nil, errors.Newf("dist: block payload truncated at offset %d", off)
		}
		b := m.Put(img, row, col, r, c)
		b.Copy(mat.NewDense(r, c, msg.Floats[off:off+r*c]))
		off += r * c
	}
	if off != len(msg.Floats) {
		return nil, errors.Newf("dist: %d trailing floats in block payload", len(msg.Floats)-off)
	}
	return m, nil
}
