/*
 * integrator.go, part of rsint.
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

	"gonum.org/v1/gonum/mat"

	"github.com/molgrid/rsint/grid"
)

//PairJob carries one primitive-pair integration to the integrator and its
//results back. The driver fills the inputs, the integrator adds its
//contribution into Hab (the set pair's primitive Cartesian accumulation
//buffer) and, when requested, into the running pair forces FA/FB and the
//partial virials VA/VB. Atom A is always the canonical (lower-index) atom.
type PairJob struct {
	ShellA *Shell
	ShellB *Shell
	PrimA  int
	PrimB  int
	RA     [3]float64 //wrapped position of atom A
	Rab    [3]float64 //minimum-image separation vector A->B
	Level  *grid.Level
	//Pab is the set pair's weight block in the primitive Cartesian
	//representation, or nil when no weighting is in effect.
	Pab *mat.Dense
	Hab *mat.Dense
	Eps float64 //screening threshold after map-consistency selection
	Tau bool
	//Forces requires Pab; Virial requires Forces.
	Forces bool
	Virial bool
	//Distributed marks a support crossing a process-owned sub-region
	//boundary; Subpatch is the associated wrap-around bit pattern. The
	//reference integrator needs neither (it walks owned points only), but
	//optimized kernels consume both.
	Distributed bool
	Subpatch    uint64

	FA [3]float64
	FB [3]float64
	VA *mat.SymDense
	VB *mat.SymDense
}

//PairIntegrator evaluates the contribution of one primitive Gaussian pair
//on one grid level. Implementations must be safe for concurrent use from
//multiple workers, each with its own PairJob.
type PairIntegrator interface {
	IntegratePair(job *PairJob) error
}

//QuadIntegrator is the reference PairIntegrator: a direct collocation sum
//over the grid points the level owns. It is exact in the limit of a fine
//grid and supports any angular momentum, the tau variant, forces and
//virials. Optimized analytic kernels replace it in production; the driver
//only sees the interface.
type QuadIntegrator struct{}

func (Q QuadIntegrator) IntegratePair(job *PairJob) error {
	sa, sb := job.ShellA, job.ShellB
	za := sa.Zet[job.PrimA]
	zb := sb.Zet[job.PrimB]
	ra := sa.Radius[job.PrimA]
	rb := sb.Radius[job.PrimB]
	rab2 := job.Rab[0]*job.Rab[0] + job.Rab[1]*job.Rab[1] + job.Rab[2]*job.Rab[2]
	if rab2 > (ra+rb)*(ra+rb) {
		return nil
	}
	if math.Exp(-za*zb/(za+zb)*rab2) < job.Eps {
		return nil
	}
	pa := job.RA
	pb := [3]float64{pa[0] + job.Rab[0], pa[1] + job.Rab[1], pa[2] + job.Rab[2]}
	expsA := primExps(sa)
	expsB := primExps(sb)
	rowBase := job.PrimA * sa.NCartPrim()
	colBase := job.PrimB * sb.NCartPrim()
	lv := job.Level
	dv := lv.DV()

	var fta, ftb [3]float64
	for ix := lv.Lo[0]; ix < lv.Hi[0]; ix++ {
		for iy := lv.Lo[1]; iy < lv.Hi[1]; iy++ {
			for iz := lv.Lo[2]; iz < lv.Hi[2]; iz++ {
				v := lv.At(ix, iy, iz)
				if v == 0 {
					continue
				}
				p := lv.Point(ix, iy, iz)
				w := dv * v
				for ia, ea := range expsA {
					fa, dfa, ddfa := gauss1(p, pa, za, ea)
					for ib, eb := range expsB {
						fb, dfb, ddfb := gauss1(p, pb, zb, eb)
						gab := integrand(fa, dfa, fb, dfb, job.Tau)
						job.Hab.Set(rowBase+ia, colBase+ib,
							job.Hab.At(rowBase+ia, colBase+ib)+w*gab)
						if !job.Forces || job.Pab == nil {
							continue
						}
						pv := w * job.Pab.At(rowBase+ia, colBase+ib)
						for d := 0; d < 3; d++ {
							fta[d] += pv * forceTerm(fa, dfa, ddfa, fb, dfb, d, job.Tau)
							ftb[d] += pv * forceTerm(fb, dfb, ddfb, fa, dfa, d, job.Tau)
						}
					}
				}
			}
		}
	}
	if job.Forces && job.Pab != nil {
		for d := 0; d < 3; d++ {
			job.FA[d] += fta[d]
			job.FB[d] += ftb[d]
		}
		if job.Virial && job.VA != nil && job.VB != nil {
			addPairVirial(job.VA, fta, job.Rab)
			addPairVirial(job.VB, ftb, job.Rab)
		}
	}
	return nil
}

//primExps lists the Cartesian exponent triples of one primitive of the
//shell, in the row order of the shell's Cartesian block.
func primExps(s *Shell) [][3]int {
	out := make([][3]int, 0, s.NCartPrim())
	for l := s.LMin; l <= s.LMax; l++ {
		out = append(out, CartExps(l)...)
	}
	return out
}

//gauss1 evaluates one Cartesian Gaussian at p, separated per dimension:
//f[d], df[d], ddf[d] are the dimension factors and their first and second
//derivatives with respect to the coordinate, so that the full value is
//f[0]*f[1]*f[2], the gradient components are df[d] times the other two
//factors, and so on.
func gauss1(p, center [3]float64, z float64, e [3]int) (f, df, ddf [3]float64) {
	for d := 0; d < 3; d++ {
		t := p[d] - center[d]
		l := float64(e[d])
		g := math.Exp(-z * t * t)
		f[d] = pw(t, e[d]) * g
		df[d] = (l*pw(t, e[d]-1) - 2*z*pw(t, e[d]+1)) * g
		ddf[d] = (l*(l-1)*pw(t, e[d]-2) - 2*z*(2*l+1)*pw(t, e[d]) + 4*z*z*pw(t, e[d]+2)) * g
	}
	return f, df, ddf
}

//pw is t**k with negative powers defined as zero (they only appear with a
//zero coefficient in the derivative formulas).
func pw(t float64, k int) float64 {
	if k < 0 {
		return 0
	}
	r := 1.0
	for i := 0; i < k; i++ {
		r *= t
	}
	return r
}

//integrand is ga*gb for the plain operator and the symmetrized gradient
//product 0.5*grad(ga).grad(gb) for the kinetic-energy-density (tau)
//variant.
func integrand(fa, dfa, fb, dfb [3]float64, tau bool) float64 {
	if !tau {
		return fa[0] * fa[1] * fa[2] * fb[0] * fb[1] * fb[2]
	}
	s := 0.0
	for c := 0; c < 3; c++ {
		s += grad(fa, dfa, c) * grad(fb, dfb, c)
	}
	return 0.5 * s
}

//forceTerm is the d-component of the A-center force density: the potential
//times the derivative of ga with respect to the grid coordinate (the
//center derivative carries the opposite sign, which cancels against the
//force being minus the energy gradient).
func forceTerm(fa, dfa, ddfa, fb, dfb [3]float64, d int, tau bool) float64 {
	if !tau {
		return grad(fa, dfa, d) * fb[0] * fb[1] * fb[2]
	}
	//0.5 * sum_c (d_d d_c ga) (d_c gb)
	s := 0.0
	for c := 0; c < 3; c++ {
		s += grad2(fa, dfa, ddfa, d, c) * grad(fb, dfb, c)
	}
	return 0.5 * s
}

//grad returns the d-component of the gradient of the separable product.
func grad(f, df [3]float64, d int) float64 {
	out := df[d]
	for c := 0; c < 3; c++ {
		if c != d {
			out *= f[c]
		}
	}
	return out
}

//grad2 returns the (d,c) second derivative of the separable product.
func grad2(f, df, ddf [3]float64, d, c int) float64 {
	if d == c {
		out := ddf[d]
		for k := 0; k < 3; k++ {
			if k != d {
				out *= f[k]
			}
		}
		return out
	}
	out := df[d] * df[c]
	for k := 0; k < 3; k++ {
		if k != d && k != c {
			out *= f[k]
		}
	}
	return out
}

//addPairVirial folds a task's force contribution and the pair separation
//into a symmetric partial virial.
func addPairVirial(v *mat.SymDense, f [3]float64, rab [3]float64) {
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			v.SetSym(i, j, v.At(i, j)+0.5*(f[i]*rab[j]+f[j]*rab[i]))
		}
	}
}
