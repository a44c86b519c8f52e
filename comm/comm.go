/*
 * comm.go, part of rsint.
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

//Package comm provides the process-group communication primitives the grid
//distribution layer is built on: blocking point-to-point messages and the
//few collectives (barrier, all-reduce, broadcast) the engine needs. The
//in-process Group implementation runs the ranks as goroutines over buffered
//channels; an MPI-backed implementation can be substituted behind the same
//interface. All calls block until complete, and every failure is terminal:
//this layer never retries.
package comm

import (
	"sync"

	"github.com/cockroachdb/errors"
)

//Message is the unit of exchange: a tag plus integer and float payloads.
//Matrix blocks, grid slabs and reduction buffers all flatten into this.
type Message struct {
	Tag    int
	Ints   []int
	Floats []float64
}

//Communicator is the process-group contract used by the engine. Rank
//numbering is dense in [0, Size). The surface is deliberately the small
//set of operations the engine calls; collectives with no caller, such as
//an all-to-all exchange, are left out until something needs them.
type Communicator interface {
	Rank() int
	Size() int
	//Send delivers m to the given rank. Blocks until the transport has
	//accepted the message.
	Send(to int, m *Message) error
	//Recv blocks until a message from the given rank arrives.
	Recv(from int) (*Message, error)
	//Barrier blocks until every rank of the group has entered it.
	Barrier() error
	//Allreduce sums x element-wise across all ranks, in place, so that
	//every rank leaves with the same totals.
	Allreduce(x []float64) error
	//Bcast distributes the root's message to every rank and returns it.
	//Non-root ranks pass m == nil.
	Bcast(root int, m *Message) (*Message, error)
}

//Group is a set of in-process ranks connected by buffered channels.
type Group struct {
	n  int
	ch [][]chan *Message //ch[to][from]

	mu      sync.Mutex
	waiting int
	gen     int
	release *sync.Cond
}

//Rank is one member's handle on a Group. A Rank is not safe for concurrent
//use by multiple goroutines; each rank belongs to one goroutine, mirroring
//one process.
type Rank struct {
	g  *Group
	id int
}

//NewGroup creates an n-member group and returns the per-member handles.
func NewGroup(n int) []*Rank {
	g := &Group{n: n, ch: make([][]chan *Message, n)}
	g.release = sync.NewCond(&g.mu)
	for to := 0; to < n; to++ {
		g.ch[to] = make([]chan *Message, n)
		for from := 0; from < n; from++ {
			g.ch[to][from] = make(chan *Message, 8)
		}
	}
	rs := make([]*Rank, n)
	for i := range rs {
		rs[i] = &Rank{g: g, id: i}
	}
	return rs
}

func (R *Rank) Rank() int { return R.id }

func (R *Rank) Size() int { return R.g.n }

func (R *Rank) Send(to int, m *Message) error {
	if to < 0 || to >= R.g.n {
		return errors.Newf("comm: send from rank %d to invalid rank %d of %d", R.id, to, R.g.n)
	}
	R.g.ch[to][R.id] <- m
	return nil
}

func (R *Rank) Recv(from int) (*Message, error) {
	if from < 0 || from >= R.g.n {
		return nil, errors.Newf("comm: recv on rank %d from invalid rank %d of %d", R.id, from, R.g.n)
	}
	m, ok := <-R.g.ch[R.id][from]
	if !ok {
		return nil, errors.Newf("comm: channel from rank %d to rank %d closed", from, R.id)
	}
	return m, nil
}

//Barrier is a reusable generation-counted barrier over the whole group.
func (R *Rank) Barrier() error {
	g := R.g
	g.mu.Lock()
	gen := g.gen
	g.waiting++
	if g.waiting == g.n {
		g.waiting = 0
		g.gen++
		g.release.Broadcast()
		g.mu.Unlock()
		return nil
	}
	for gen == g.gen {
		g.release.Wait()
	}
	g.mu.Unlock()
	return nil
}

//Allreduce gathers everyone's buffer on rank 0, sums, and hands the totals
//back. Linear in the group size, which is fine at the rank counts the
//in-process group is used at.
func (R *Rank) Allreduce(x []float64) error {
	const tagReduce = -1
	if R.g.n == 1 {
		return nil
	}
	if R.id != 0 {
		if err := R.Send(0, &Message{Tag: tagReduce, Floats: x}); err != nil {
			return errors.Wrap(err, "allreduce: send to root")
		}
		m, err := R.Recv(0)
		if err != nil {
			return errors.Wrap(err, "allreduce: recv totals")
		}
		if len(m.Floats) != len(x) {
			return errors.Newf("allreduce: rank %d expected %d totals, got %d", R.id, len(x), len(m.Floats))
		}
		copy(x, m.Floats)
		return nil
	}
	sum := append([]float64{}, x...)
	for from := 1; from < R.g.n; from++ {
		m, err := R.Recv(from)
		if err != nil {
			return errors.Wrapf(err, "allreduce: recv from rank %d", from)
		}
		if len(m.Floats) != len(x) {
			return errors.Newf("allreduce: rank %d sent %d values, want %d", from, len(m.Floats), len(x))
		}
		for i, v := range m.Floats {
			sum[i] += v
		}
	}
	copy(x, sum)
	for to := 1; to < R.g.n; to++ {
		out := append([]float64{}, sum...)
		if err := R.Send(to, &Message{Tag: tagReduce, Floats: out}); err != nil {
			return errors.Wrapf(err, "allreduce: send totals to rank %d", to)
		}
	}
	return nil
}

//Bcast distributes the root's message. The root's own copy is returned
//as-is; other ranks receive a message that is theirs to keep.
func (R *Rank) Bcast(root int, m *Message) (*Message, error) {
	if root < 0 || root >= R.g.n {
		return nil, errors.Newf("comm: bcast with invalid root %d of %d", root, R.g.n)
	}
	if R.id == root {
		for to := 0; to < R.g.n; to++ {
			if to == root {
				continue
			}
			cp := &Message{Tag: m.Tag, Ints: append([]int{}, m.Ints...), Floats: append([]float64{}, m.Floats...)}
			if err := R.Send(to, cp); err != nil {
				return nil, errors.Wrapf(err, "bcast: send to rank %d", to)
			}
		}
		return m, nil
	}
	got, err := R.Recv(root)
	if err != nil {
		return nil, errors.Wrap(err, "bcast: recv from root")
	}
	return got, nil
}
