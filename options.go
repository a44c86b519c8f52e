/*
 * options.go, part of rsint.
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
	"runtime"

	"go.uber.org/zap"

	"github.com/molgrid/rsint/grid"
)

//Basis type tags. The soft tag is selected automatically when SoftOverride
//is set, for augmented-plane-wave style runs where the grids only see the
//soft part of the primary basis.
const (
	BasisOrb    = "orb"
	BasisAuxFit = "aux_fit"
	BasisSoft   = "soft"
)

//Options carries the per-invocation configuration of the integration
//driver. Zero value is not usable; start from DefaultOptions.
type Options struct {
	//Threads is the fixed worker count for the whole invocation.
	Threads int
	//Forces enables per-task force evaluation and global accumulation.
	Forces bool
	//Virial enables stress tensor accumulation. It requires Forces; when
	//Forces is off the virial contribution is silently skipped.
	Virial bool
	//Tau switches the primitive integrator to its kinetic-energy-density
	//variant.
	Tau bool
	//MapConsistent makes integration reuse the density-collocation
	//threshold EpsRho instead of the looser EpsGVG, guaranteeing both
	//passes agree on which primitive pairs are negligible.
	MapConsistent bool
	EpsRho        float64
	EpsGVG        float64
	//BasisType selects the task list, grid stack and basis accessors:
	//BasisOrb or BasisAuxFit.
	BasisType string
	//SoftOverride redirects the lookup to the soft basis.
	SoftOverride bool
	//AuxScale is the auxiliary-basis force scaling factor (exchange
	//scaling model); 1 leaves forces untouched.
	AuxScale float64
	//ExternalTasks/ExternalGrids bypass the environment lookup entirely.
	//Both must be set together; they take priority over everything else.
	ExternalTasks *TaskList
	ExternalGrids *grid.Stack
	//Logger receives per-level progress at Debug. Never nil after
	//DefaultOptions.
	Logger *zap.Logger
	//Watch, when non-nil, verifies that no two workers touch the same
	//matrix block within one grid level. Development-time instrumentation;
	//its table costs memory proportional to the touched block count.
	Watch *BlockWatch
}

//DefaultOptions returns the production configuration: all logical CPUs,
//primary basis, no forces, no instrumentation.
func DefaultOptions() *Options {
	return &Options{
		Threads:   runtime.NumCPU(),
		EpsRho:    1e-10,
		EpsGVG:    1e-6,
		BasisType: BasisOrb,
		AuxScale:  1.0,
		Logger:    zap.NewNop(),
	}
}

//eps returns the screening threshold the map-consistency policy selects.
func (O *Options) eps() float64 {
	if O.MapConsistent {
		return O.EpsRho
	}
	return O.EpsGVG
}

//basisKey returns the basis-type tag after the soft override.
func (O *Options) basisKey() string {
	if O.SoftOverride {
		return BasisSoft
	}
	return O.BasisType
}
