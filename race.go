/*
 * race.go, part of rsint.
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
	"sync"

	"github.com/molgrid/rsint/block"
)

//BlockWatch is a development-time race detector: it records which worker
//first touched each matrix block within the current grid level and panics
//when a second worker touches the same block. Scheduling pairs, not tasks,
//as the unit of work makes such a touch impossible; the watch exists to
//catch regressions in that invariant, and is opt-in because its table is
//not free for large atom counts.
type BlockWatch struct {
	mu    sync.Mutex
	owner map[block.Key]int
}

//NewBlockWatch returns an empty watch.
func NewBlockWatch() *BlockWatch {
	return &BlockWatch{owner: make(map[block.Key]int)}
}

//Reset clears the table. The driver calls it at every level boundary, since
//block ownership is only per-level.
func (W *BlockWatch) Reset() {
	W.mu.Lock()
	clear(W.owner)
	W.mu.Unlock()
}

//Touch records that worker is about to mutate the block behind k.
func (W *BlockWatch) Touch(k block.Key, worker int) {
	W.mu.Lock()
	prev, seen := W.owner[k]
	if !seen {
		W.owner[k] = worker
	}
	W.mu.Unlock()
	if seen && prev != worker {
		panic(PanicMsg(fmt.Sprintf("%s: block (%d,%d,%d) workers %d and %d",
			ErrBlockRace, k.Image, k.Row, k.Col, prev, worker)))
	}
}
