/*
 * doc.go, part of rsint.
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

//Package rsint integrates a potential sampled on a multi-resolution real-space
//grid against products of primitive Gaussian pairs, and contracts the result
//into a block-sparse operator matrix, optionally accumulating atomic forces
//and a virial tensor. It is the inner numerical kernel of an electronic
//structure code: basis sets, grids, task lists and matrices are produced by
//the surrounding application and handed in; rsint schedules the work over a
//pool of workers (and, for spatially distributed grids, over a group of
//cooperating processes) and hands the accumulated matrix back.
//
//The subpackages hold the collaborating containers: block (the block-sparse
//matrix), grid (the multi-resolution potential stack), comm (the process
//group primitives) and dist (scatter/gather of matrix blocks between the
//replicated and the grid-distributed representation). rsplot renders
//scheduling diagnostics.
package rsint
