/*
 * assemble_test.go, part of rsint.
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

	"gonum.org/v1/gonum/mat"
)

//contracted test shells with non-trivial coefficients: two s primitives
//contracted into one function each side.
func contractedShells() (Shell, Shell) {
	sha := Shell{NPrim: 2, LMin: 0, LMax: 0, Zet: []float64{1, 2}, Radius: []float64{3, 2},
		Sphi: mat.NewDense(2, 1, []float64{0.3, 0.7}), First: 0}
	shb := Shell{NPrim: 2, LMin: 0, LMax: 0, Zet: []float64{1.5, 2.5}, Radius: []float64{3, 2},
		Sphi: mat.NewDense(2, 1, []float64{0.6, 0.4}), First: 0}
	return sha, shb
}

func TestContractAdd(Te *testing.T) {
	sha, shb := contractedShells()
	scr := newScratch(2, 1)
	hab := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	dst := mat.NewDense(1, 1, nil)

	contractAdd(dst, hab, &sha, &shb, scr)
	want := 0.0
	ca := []float64{0.3, 0.7}
	cb := []float64{0.6, 0.4}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want += ca[i] * hab.At(i, j) * cb[j]
		}
	}
	if got := dst.At(0, 0); math.Abs(got-want) > 1e-14 {
		Te.Errorf("contraction: got %v want %v", got, want)
	}
	//contributions accumulate
	contractAdd(dst, hab, &sha, &shb, scr)
	if got := dst.At(0, 0); math.Abs(got-2*want) > 1e-14 {
		Te.Errorf("second contraction: got %v want %v", got, 2*want)
	}
}

func TestContractAddOffset(Te *testing.T) {
	//shells with nonzero First land in the right sub-range of the block
	sha, shb := contractedShells()
	sha.First, shb.First = 1, 2
	scr := newScratch(2, 1)
	hab := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	dst := mat.NewDense(3, 4, nil)
	contractAdd(dst, hab, &sha, &shb, scr)
	if dst.At(0, 0) != 0 || dst.At(1, 2) == 0 {
		Te.Errorf("offset contraction landed at the wrong place: %v", mat.Formatted(dst))
	}
}

func TestDecontract(Te *testing.T) {
	sha, shb := contractedShells()
	scr := newScratch(2, 1)
	w := mat.NewDense(1, 1, []float64{2.0})
	pab := decontract(w, &sha, &shb, scr)
	ca := []float64{0.3, 0.7}
	cb := []float64{0.6, 0.4}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 2.0 * ca[i] * cb[j]
			if got := pab.At(i, j); math.Abs(got-want) > 1e-14 {
				Te.Errorf("pab[%d,%d]: got %v want %v", i, j, got, want)
			}
		}
	}
}

func TestTransformAdjoint(Te *testing.T) {
	//tr(w^T (Ca^T hab Cb)) must equal tr((Ca w Cb^T)^T hab): the energy is
	//the same whether contracted first or decontracted first
	sha, shb := contractedShells()
	scr := newScratch(2, 1)
	hab := mat.NewDense(2, 2, []float64{0.5, -1, 2, 0.25})
	w := mat.NewDense(1, 1, []float64{1.7})

	dst := mat.NewDense(1, 1, nil)
	contractAdd(dst, hab, &sha, &shb, scr)
	eContracted := w.At(0, 0) * dst.At(0, 0)

	pab := decontract(w, &sha, &shb, scr)
	ePrim := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			ePrim += pab.At(i, j) * hab.At(i, j)
		}
	}
	if math.Abs(eContracted-ePrim) > 1e-14 {
		Te.Errorf("adjoint mismatch: contracted %v primitive %v", eContracted, ePrim)
	}
}
