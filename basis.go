/*
 * basis.go, part of rsint.
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

import "gonum.org/v1/gonum/mat"

//nco returns the number of Cartesian Gaussian components of angular
//momentum l, i.e. the number of (lx,ly,lz) triples with lx+ly+lz == l.
func nco(l int) int {
	return (l + 1) * (l + 2) / 2
}

//CartExps lists the Cartesian exponent triples of angular momentum l,
//lx-major descending, which is the ordering the contraction coefficient
//matrices are built against.
func CartExps(l int) [][3]int {
	out := make([][3]int, 0, nco(l))
	for lx := l; lx >= 0; lx-- {
		for ly := l - lx; ly >= 0; ly-- {
			out = append(out, [3]int{lx, ly, l - lx - ly})
		}
	}
	return out
}

//Shell is one angular-momentum set of a basis: a group of primitives
//sharing the angular momentum range [LMin,LMax], together with the
//contraction coefficients that map the primitive Cartesian components onto
//the contracted (spherical) functions of the set. Shells are owned by the
//basis-set collaborator and are read-only to this package.
type Shell struct {
	NPrim  int
	LMin   int
	LMax   int
	Zet    []float64 //one exponent per primitive
	Radius []float64 //screening radius per primitive
	//Sphi has NCart() rows and one column per contracted function of the
	//set. Rows run primitive-major, Cartesian components within one
	//primitive ordered as in CartExps, l ascending from LMin to LMax.
	Sphi *mat.Dense
	//First is the starting index of the set's contracted functions within
	//the atom's full contracted numbering.
	First int
}

//NCartPrim returns the number of Cartesian components of one primitive of
//the shell.
func (S *Shell) NCartPrim() int {
	n := 0
	for l := S.LMin; l <= S.LMax; l++ {
		n += nco(l)
	}
	return n
}

//NCart returns the number of rows of the shell's primitive Cartesian block.
func (S *Shell) NCart() int {
	return S.NPrim * S.NCartPrim()
}

//NSph returns the number of contracted functions of the shell.
func (S *Shell) NSph() int {
	_, c := S.Sphi.Dims()
	return c
}

//CartList enumerates the (primitive, lx, ly, lz) rows of the shell's
//Cartesian block, in storage order.
func (S *Shell) CartList() [][4]int {
	out := make([][4]int, 0, S.NCart())
	for p := 0; p < S.NPrim; p++ {
		for l := S.LMin; l <= S.LMax; l++ {
			for _, e := range CartExps(l) {
				out = append(out, [4]int{p, e[0], e[1], e[2]})
			}
		}
	}
	return out
}

//Basis is the per-atomic-kind basis set descriptor: an ordered sequence of
//shells. Read-only to this package.
type Basis struct {
	Kind   string
	Shells []Shell
}

//NSph returns the total number of contracted functions of the basis, which
//is the dimension the kind contributes to the operator matrix blocks.
func (B *Basis) NSph() int {
	n := 0
	for i := range B.Shells {
		n += B.Shells[i].NSph()
	}
	return n
}

//MaxCart returns the largest primitive Cartesian block extent over the
//shells of the basis.
func (B *Basis) MaxCart() int {
	m := 0
	for i := range B.Shells {
		if n := B.Shells[i].NCart(); n > m {
			m = n
		}
	}
	return m
}

//MaxSph returns the largest contracted set size over the shells of the
//basis.
func (B *Basis) MaxSph() int {
	m := 0
	for i := range B.Shells {
		if n := B.Shells[i].NSph(); n > m {
			m = n
		}
	}
	return m
}

//MaxRadius returns the largest primitive screening radius of the basis.
func (B *Basis) MaxRadius() float64 {
	r := 0.0
	for i := range B.Shells {
		for _, v := range B.Shells[i].Radius {
			if v > r {
				r = v
			}
		}
	}
	return r
}

//SShell is a convenience constructor for a single-l shell with unit
//contraction of each primitive onto its own contracted function. It is
//enough for uncontracted test bases; real bases come from the basis-set
//collaborator with proper Sphi matrices.
func SShell(l int, zet, radius []float64, first int) Shell {
	np := len(zet)
	ncart := np * nco(l)
	sphi := mat.NewDense(ncart, np, nil)
	for p := 0; p < np; p++ {
		//only the first Cartesian component carries the coefficient for
		//l==0; higher l test shells contract component-wise.
		sphi.Set(p*nco(l), p, 1.0)
	}
	return Shell{
		NPrim:  np,
		LMin:   l,
		LMax:   l,
		Zet:    append([]float64{}, zet...),
		Radius: append([]float64{}, radius...),
		Sphi:   sphi,
		First:  first,
	}
}
