/*
 * env_test.go, part of rsint.
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
	"testing"

	"github.com/molgrid/rsint/block"
)

func TestBasisForSoftFallback(Te *testing.T) {
	b := lightBasis()
	e := &Env{Basis: map[string]map[string]*Basis{"light": {BasisOrb: b}}}
	if got := e.BasisFor("light", BasisOrb); got != b {
		Te.Error("primary lookup failed")
	}
	//no soft expansion registered: the soft tag falls back to the primary
	if got := e.BasisFor("light", BasisSoft); got != b {
		Te.Error("soft tag did not fall back to the primary basis")
	}
	defer func() {
		if recover() == nil {
			Te.Error("unknown kind should panic")
		}
	}()
	e.BasisFor("unobtainium", BasisOrb)
}

func TestMatrixTargetKinds(Te *testing.T) {
	var zero MatrixTarget
	if zero.valid() {
		Te.Error("zero MatrixTarget reported valid")
	}
	s := SingleMatrix(block.New())
	if !s.valid() || s.perImage() || s.nimages() != 1 {
		Te.Error("single target misreported")
	}
	p := PerImage([]*block.Matrix{block.New(), block.New()})
	if !p.valid() || !p.perImage() || p.nimages() != 2 {
		Te.Error("per-image target misreported")
	}
	defer func() {
		if recover() == nil {
			Te.Error("image beyond the list should panic")
		}
	}()
	p.at(2)
}

func TestOptionsPolicies(Te *testing.T) {
	o := DefaultOptions()
	if o.eps() != o.EpsGVG {
		Te.Error("default eps should be the integration threshold")
	}
	o.MapConsistent = true
	if o.eps() != o.EpsRho {
		Te.Error("map-consistent eps should be the collocation threshold")
	}
	if o.basisKey() != BasisOrb {
		Te.Errorf("default basis key: %q", o.basisKey())
	}
	o.SoftOverride = true
	if o.basisKey() != BasisSoft {
		Te.Errorf("soft override basis key: %q", o.basisKey())
	}
}

func TestErrorDecoration(Te *testing.T) {
	err := Error{"broke", "orb", nil, true}
	deco := err.Decorate("Integrate")
	if len(deco) != 1 || deco[0] != "Integrate" {
		Te.Errorf("decoration trace: %v", deco)
	}
	if !err.Critical() {
		Te.Error("critical flag lost")
	}
	wrapped := errDecorate(err, "caller")
	if _, ok := wrapped.(Error); !ok {
		Te.Error("errDecorate changed the error type")
	}
}
