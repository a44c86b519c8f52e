/*
 * comm_test.go, part of rsint.
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

package comm

import (
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

//spawn runs f as every rank of a fresh group and waits for all of them.
func spawn(n int, f func(r *Rank)) {
	ranks := NewGroup(n)
	var wg sync.WaitGroup
	for _, r := range ranks {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(r)
		}()
	}
	wg.Wait()
}

func TestSendRecv(Te *testing.T) {
	spawn(2, func(r *Rank) {
		if r.Rank() == 0 {
			if err := r.Send(1, &Message{Tag: 42, Ints: []int{1, 2}, Floats: []float64{3.5}}); err != nil {
				Te.Error(err)
			}
			return
		}
		m, err := r.Recv(0)
		if err != nil {
			Te.Error(err)
			return
		}
		if m.Tag != 42 || len(m.Ints) != 2 || m.Floats[0] != 3.5 {
			Te.Errorf("message mangled: %+v", m)
		}
	})
}

func TestSendRecvBounds(Te *testing.T) {
	ranks := NewGroup(2)
	if err := ranks[0].Send(5, &Message{}); err == nil {
		Te.Error("send to an invalid rank should fail")
	}
	if _, err := ranks[0].Recv(-1); err == nil {
		Te.Error("recv from an invalid rank should fail")
	}
}

func TestAllreduce(Te *testing.T) {
	const n = 4
	var mu sync.Mutex
	results := make([][]float64, n)
	spawn(n, func(r *Rank) {
		x := []float64{float64(r.Rank()), 1.0}
		if err := r.Allreduce(x); err != nil {
			Te.Error(err)
			return
		}
		mu.Lock()
		results[r.Rank()] = x
		mu.Unlock()
	})
	for rk, x := range results {
		if x == nil {
			Te.Fatalf("rank %d produced no result", rk)
		}
		if x[0] != 6.0 || x[1] != 4.0 {
			Te.Errorf("rank %d totals: got %v want [6 4]", rk, x)
		}
	}
}

func TestAllreduceSingle(Te *testing.T) {
	r := NewGroup(1)[0]
	x := []float64{2.5}
	if err := r.Allreduce(x); err != nil {
		Te.Fatal(err)
	}
	if x[0] != 2.5 {
		Te.Errorf("single-rank allreduce changed the buffer: %v", x)
	}
}

func TestBcast(Te *testing.T) {
	const n = 3
	var mu sync.Mutex
	got := make([]*Message, n)
	spawn(n, func(r *Rank) {
		var in *Message
		if r.Rank() == 1 {
			in = &Message{Tag: 7, Floats: []float64{1, 2, 3}}
		}
		m, err := r.Bcast(1, in)
		if err != nil {
			Te.Error(err)
			return
		}
		mu.Lock()
		got[r.Rank()] = m
		mu.Unlock()
	})
	for rk, m := range got {
		if m == nil || m.Tag != 7 || len(m.Floats) != 3 {
			Te.Fatalf("rank %d broadcast result: %+v", rk, m)
		}
	}
	//non-root copies must not alias the root's slices
	got[0].Floats[0] = -1
	if got[1].Floats[0] == -1 {
		Te.Error("broadcast copies alias the root message")
	}
}

func TestBarrier(Te *testing.T) {
	const n = 3
	const rounds = 5
	var mu sync.Mutex
	seen := 0
	spawn(n, func(r *Rank) {
		for i := 0; i < rounds; i++ {
			mu.Lock()
			seen++
			mu.Unlock()
			if err := r.Barrier(); err != nil {
				Te.Error(err)
				return
			}
			//after the barrier, every rank must have passed this round
			mu.Lock()
			if seen < (i+1)*n {
				Te.Errorf("round %d: barrier released with %d of %d entries", i, seen, (i+1)*n)
			}
			mu.Unlock()
		}
	})
}
