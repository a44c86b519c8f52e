/*
 * assemble.go, part of rsint.
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

//assemble.go contracts primitive Cartesian contribution blocks into the
//contracted basis and moves weight blocks the opposite way. Both transforms
//are two dense multiplications with the shells' contraction coefficient
//matrices; the weight transform runs once per set pair, amortized over all
//the set pair's primitive pairs.

package rsint

import "gonum.org/v1/gonum/mat"

//contractAdd computes Ca^T * hab * Cb and adds it into the destination
//block's sub-range owned by the two shells. dst is the (image, row atom,
//column atom) block, with the row atom the canonical (lower-index) one.
func contractAdd(dst *mat.Dense, hab *mat.Dense, sha, shb *Shell, scr *Scratch) {
	na, nb := sha.NSph(), shb.NSph()
	t := dense(scr.t1Buf, na, shb.NCart())
	t.Mul(sha.Sphi.T(), hab)
	res := dense(scr.resBuf, na, nb)
	res.Mul(t, shb.Sphi)
	view := dst.Slice(sha.First, sha.First+na, shb.First, shb.First+nb).(*mat.Dense)
	view.Add(view, res)
}

//decontract transforms the contracted weight sub-block of a set pair into
//the primitive Cartesian representation: Ca * w * Cb^T. The result lives in
//the worker's pab buffer and stays valid until the next set-pair change.
func decontract(w mat.Matrix, sha, shb *Shell, scr *Scratch) *mat.Dense {
	ra, cb := sha.NCart(), shb.NCart()
	t := dense(scr.t2Buf, ra, shb.NSph())
	t.Mul(sha.Sphi, w)
	pab := dense(scr.pabBuf, ra, cb)
	pab.Mul(t, shb.Sphi.T())
	return pab
}
