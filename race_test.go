/*
 * race_test.go, part of rsint.
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

func TestBlockWatch(Te *testing.T) {
	w := NewBlockWatch()
	k := block.Key{Image: 0, Row: 1, Col: 2}
	w.Touch(k, 0)
	w.Touch(k, 0) //same worker, fine
	w.Touch(block.Key{Image: 0, Row: 1, Col: 3}, 1)

	func() {
		defer func() {
			if recover() == nil {
				Te.Error("second worker on the same block should panic")
			}
		}()
		w.Touch(k, 1)
	}()

	//after a reset the block is up for grabs again
	w.Reset()
	w.Touch(k, 1)
}
