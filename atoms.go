/*
 * atoms.go, part of rsint.
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
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Atom is one atomic center: a reference to its atomic kind (the key under
//which its basis sets are registered) and its Cartesian position in Bohr.
//Positions may lie outside the cell; the driver wraps them before use.
type Atom struct {
	Kind string
	Pos  [3]float64
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic(PanicMsg("rsint: attempted to copy a nil atom"))
	}
	return &Atom{Kind: A.Kind, Pos: A.Pos}
}

//Cell is a periodic simulation cell. The rows of H are the lattice vectors.
//The inverse is cached at construction so wrapping and minimum-image
//reduction are cheap enough for the inner loop.
type Cell struct {
	h    *mat.Dense
	hinv *mat.Dense
}

//NewCell builds a Cell from the three lattice vectors (rows of h).
//It returns an error if the vectors are (numerically) linearly dependent.
func NewCell(h [3][3]float64) (*Cell, error) {
	d := mat.NewDense(3, 3, []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	})
	inv := mat.NewDense(3, 3, nil)
	if err := inv.Inverse(d); err != nil {
		return nil, Error{fmt.Sprintf("singular cell matrix: %v", err), "", []string{"NewCell"}, true}
	}
	return &Cell{h: d, hinv: inv}, nil
}

//NewOrthoCell builds an orthorhombic Cell with edge lengths a, b and c.
func NewOrthoCell(a, b, c float64) (*Cell, error) {
	return NewCell([3][3]float64{{a, 0, 0}, {0, b, 0}, {0, 0, c}})
}

//frac returns the fractional (scaled) coordinates of p.
func (C *Cell) frac(p [3]float64) [3]float64 {
	var s [3]float64
	for i := 0; i < 3; i++ {
		s[i] = C.hinv.At(0, i)*p[0] + C.hinv.At(1, i)*p[1] + C.hinv.At(2, i)*p[2]
	}
	return s
}

//cart is the inverse of frac.
func (C *Cell) cart(s [3]float64) [3]float64 {
	var p [3]float64
	for i := 0; i < 3; i++ {
		p[i] = C.h.At(0, i)*s[0] + C.h.At(1, i)*s[1] + C.h.At(2, i)*s[2]
	}
	return p
}

//Wrap reduces p into the home cell, i.e. to fractional coordinates in [0,1).
func (C *Cell) Wrap(p [3]float64) [3]float64 {
	s := C.frac(p)
	for i := 0; i < 3; i++ {
		s[i] -= math.Floor(s[i])
	}
	return C.cart(s)
}

//MinImage returns the minimum-image representative of the separation
//vector d, i.e. the shortest of all periodic copies of d.
func (C *Cell) MinImage(d [3]float64) [3]float64 {
	s := C.frac(d)
	for i := 0; i < 3; i++ {
		s[i] -= math.Round(s[i])
	}
	return C.cart(s)
}

//Volume returns the cell volume.
func (C *Cell) Volume() float64 {
	return math.Abs(mat.Det(C.h))
}
