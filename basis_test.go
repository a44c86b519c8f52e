/*
 * basis_test.go, part of rsint.
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

import "testing"

func TestCartCounts(Te *testing.T) {
	for l, want := range []int{1, 3, 6, 10} {
		if n := nco(l); n != want {
			Te.Errorf("nco(%d): got %d want %d", l, n, want)
		}
		if n := len(CartExps(l)); n != want {
			Te.Errorf("len(CartExps(%d)): got %d want %d", l, n, want)
		}
	}
	//lx-major descending ordering
	exps := CartExps(1)
	want := [][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i := range want {
		if exps[i] != want[i] {
			Te.Errorf("CartExps(1)[%d]: got %v want %v", i, exps[i], want[i])
		}
	}
}

func TestShellDims(Te *testing.T) {
	s := SShell(0, []float64{0.5, 2.0}, []float64{5, 3}, 0)
	if s.NCart() != 2 || s.NSph() != 2 || s.NCartPrim() != 1 {
		Te.Errorf("s shell dims: NCart %d NSph %d NCartPrim %d", s.NCart(), s.NSph(), s.NCartPrim())
	}
	p := SShell(1, []float64{1.2}, []float64{4}, 2)
	if p.NCart() != 3 || p.NSph() != 1 {
		Te.Errorf("p shell dims: NCart %d NSph %d", p.NCart(), p.NSph())
	}
	if got := len(p.CartList()); got != 3 {
		Te.Errorf("CartList length: got %d want 3", got)
	}
	b := Basis{Kind: "heavy", Shells: []Shell{s, p}}
	if b.NSph() != 3 || b.MaxCart() != 3 || b.MaxSph() != 2 {
		Te.Errorf("basis maxima: NSph %d MaxCart %d MaxSph %d", b.NSph(), b.MaxCart(), b.MaxSph())
	}
	if r := b.MaxRadius(); r != 5 {
		Te.Errorf("MaxRadius: got %v want 5", r)
	}
}
