/*
 * block_test.go, part of rsint.
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

package block

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCanon(Te *testing.T) {
	r, c, sw := Canon(3, 1)
	if r != 1 || c != 3 || !sw {
		Te.Errorf("Canon(3,1): got (%d,%d,%v)", r, c, sw)
	}
	r, c, sw = Canon(2, 2)
	if r != 2 || c != 2 || sw {
		Te.Errorf("Canon(2,2): got (%d,%d,%v)", r, c, sw)
	}
}

func TestPutSwapped(Te *testing.T) {
	m := New()
	//creating through the swapped pair must give the canonical block with
	//swapped dimensions
	b := m.Put(0, 2, 0, 3, 1)
	if r, c := b.Dims(); r != 1 || c != 3 {
		Te.Errorf("swapped Put dims: got %dx%d want 1x3", r, c)
	}
	if _, ok := m.Block(0, 0, 2); !ok {
		Te.Error("canonical lookup after swapped Put failed")
	}
	//same pair, same dims through the canonical order: no panic, same block
	if b2 := m.Put(0, 0, 2, 1, 3); b2 != b {
		Te.Error("Put returned a different block for the same pair")
	}
	defer func() {
		if recover() == nil {
			Te.Error("conflicting dimensions should panic")
		}
	}()
	m.Put(0, 0, 2, 2, 2)
}

func TestAddAndCopy(Te *testing.T) {
	a := New()
	a.Put(0, 0, 1, 2, 2).Set(0, 0, 1.5)
	b := New()
	b.Put(0, 0, 1, 2, 2).Set(0, 0, 2.0)
	b.Put(0, 1, 1, 2, 2).Set(1, 1, 3.0)

	c := a.Copy()
	c.Add(b)
	if blk, _ := c.Block(0, 0, 1); blk.At(0, 0) != 3.5 {
		Te.Errorf("summed block: got %v want 3.5", blk.At(0, 0))
	}
	if _, ok := c.Block(0, 1, 1); !ok {
		Te.Error("Add did not create the missing block")
	}
	//the copy must not alias the source
	if blk, _ := a.Block(0, 0, 1); blk.At(0, 0) != 1.5 {
		Te.Errorf("source mutated by Add on the copy: %v", blk.At(0, 0))
	}
}

func TestKeysSorted(Te *testing.T) {
	m := New()
	m.Put(1, 0, 1, 1, 1)
	m.Put(0, 2, 3, 1, 1)
	m.Put(0, 0, 1, 1, 1)
	ks := m.Keys()
	want := []Key{{0, 0, 1}, {0, 2, 3}, {1, 0, 1}}
	for i := range want {
		if ks[i] != want[i] {
			Te.Errorf("Keys[%d]: got %v want %v", i, ks[i], want[i])
		}
	}
}

func TestFilterViews(Te *testing.T) {
	m := New()
	m.Put(0, 0, 1, 1, 1).Set(0, 0, 7)
	m.Put(0, 2, 3, 1, 1)
	f := m.Filter(func(k Key) bool { return k.Row == 0 })
	if f.NBlocks() != 1 {
		Te.Fatalf("filtered blocks: got %d want 1", f.NBlocks())
	}
	//Filter is a view; writes reach the source
	blk, _ := f.Block(0, 0, 1)
	blk.Set(0, 0, 9)
	if src, _ := m.Block(0, 0, 1); src.At(0, 0) != 9 {
		Te.Error("filtered view does not alias the source")
	}
}

func TestMaxAbs(Te *testing.T) {
	m := New()
	if m.MaxAbs() != 0 {
		Te.Error("empty matrix MaxAbs != 0")
	}
	m.Put(0, 0, 0, 2, 2).Set(1, 0, -4.5)
	if v := m.MaxAbs(); v != 4.5 {
		Te.Errorf("MaxAbs: got %v want 4.5", v)
	}
}

func TestPartitionFlush(Te *testing.T) {
	m := New()
	pre := m.Put(0, 0, 1, 1, 1)
	pre.Set(0, 0, 1)

	p := m.BeginLevel(2)
	//pre-existing blocks come from the shared map, for any worker
	if got := p.Block(0, 0, 0, 1, 1, 1); got != pre {
		Te.Error("pre-existing block not shared")
	}
	if got := p.Block(1, 0, 0, 1, 1, 1); got != pre {
		Te.Error("pre-existing block not shared with worker 1")
	}
	//new blocks are worker-private until Flush
	b0 := p.Block(0, 0, 2, 3, 1, 1)
	b0.Set(0, 0, 5)
	if m.NBlocks() != 1 {
		Te.Errorf("side-map block leaked into the shared matrix early")
	}
	//two workers creating the same key sum at Flush
	b1 := p.Block(1, 0, 2, 3, 1, 1)
	b1.Set(0, 0, 2)
	p.Flush()
	if m.NBlocks() != 2 {
		Te.Fatalf("blocks after Flush: got %d want 2", m.NBlocks())
	}
	blk, _ := m.Block(0, 2, 3)
	if blk.At(0, 0) != 7 {
		Te.Errorf("duplicate side blocks not summed: got %v want 7", blk.At(0, 0))
	}
}

func TestGonumInterop(Te *testing.T) {
	//Put must hand back a block usable as a gonum matrix everywhere
	m := New()
	b := m.Put(0, 0, 1, 2, 3)
	var sink mat.Matrix = b
	if r, c := sink.Dims(); r != 2 || c != 3 {
		Te.Errorf("dims through mat.Matrix: %dx%d", r, c)
	}
}
