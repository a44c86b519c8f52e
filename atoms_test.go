/*
 * atoms_test.go, part of rsint.
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
	"math"
	"testing"
)

func TestAtomCopy(Te *testing.T) {
	a := &Atom{Kind: "light", Pos: [3]float64{1, 2, 3}}
	c := a.Copy()
	c.Kind = "heavy"
	c.Pos[0] = -1
	if a.Kind != "light" || a.Pos[0] != 1 {
		Te.Error("copy shares state with the original")
	}
	defer func() {
		if recover() == nil {
			Te.Error("copying a nil atom should panic")
		}
	}()
	var nilAtom *Atom
	nilAtom.Copy()
}

func TestCellWrap(Te *testing.T) {
	cell, err := NewOrthoCell(10, 8, 6)
	if err != nil {
		Te.Fatal(err)
	}
	p := cell.Wrap([3]float64{12.5, -1.0, 6.0})
	want := [3]float64{2.5, 7.0, 0.0}
	for d := 0; d < 3; d++ {
		if math.Abs(p[d]-want[d]) > 1e-12 {
			Te.Errorf("Wrap dim %d: got %v want %v", d, p[d], want[d])
		}
	}
}

func TestCellMinImage(Te *testing.T) {
	cell, err := NewOrthoCell(10, 10, 10)
	if err != nil {
		Te.Fatal(err)
	}
	d := cell.MinImage([3]float64{9.0, -9.5, 4.0})
	want := [3]float64{-1.0, 0.5, 4.0}
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]-want[i]) > 1e-12 {
			Te.Errorf("MinImage dim %d: got %v want %v", i, d[i], want[i])
		}
	}
}

func TestCellSingular(Te *testing.T) {
	_, err := NewCell([3][3]float64{{1, 0, 0}, {2, 0, 0}, {0, 0, 1}})
	if err == nil {
		Te.Error("expected an error for a singular cell matrix")
	}
}

func TestCellVolume(Te *testing.T) {
	cell, _ := NewOrthoCell(2, 3, 4)
	if v := cell.Volume(); math.Abs(v-24) > 1e-12 {
		Te.Errorf("Volume: got %v want 24", v)
	}
}
