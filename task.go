/*
 * task.go, part of rsint.
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

	"golang.org/x/exp/slices"
)

//Task is one scheduled unit of work: the contribution of one primitive pair
//on one grid level. Tasks are produced once per geometry by the surrounding
//application and reused across driver invocations.
type Task struct {
	Level int //grid level, 0 is the coarsest
	Image int //k-point image of the destination matrix
	AtomA int
	AtomB int
	//shell ("set") and primitive indices on the two atoms.
	ShellA int
	ShellB int
	PrimA  int
	PrimB  int
	//Distributed marks a pair whose support crosses a process-owned
	//sub-region boundary; Subpatch carries the wrap-around bit pattern the
	//integrator needs for it. Both are forwarded untouched.
	Distributed bool
	Subpatch    uint64
}

//PairRun is a contiguous run of tasks sharing one atom pair within one grid
//level. Pairs, never individual tasks, are the unit handed to a worker:
//splitting a run across workers would let two workers write the same matrix
//block.
type PairRun struct {
	First int //index of the first task of the run
	Last  int //index of the last task of the run, inclusive
	AtomA int
	AtomB int
}

//LevelRun groups the pair runs of one grid level.
type LevelRun struct {
	Level int
	Pairs []PairRun
}

//TaskList is an ordered task collection, grouped by grid level and atom
//pair. The ordering invariant (level, then pair, then image, then shells,
//then primitives, ascending) is what lets the driver detect set-pair
//boundaries by looking at the next task only.
type TaskList struct {
	tasks  []Task
	levels []LevelRun
	nimg   int
}

//taskOrder is the canonical task comparison. The atom pair compares on the
//unordered pair (min, max) so that a pair listed as (3,1) and one listed as
//(1,3) land in the same run.
func taskOrder(a, b Task) int {
	al, ah := minmax(a.AtomA, a.AtomB)
	bl, bh := minmax(b.AtomA, b.AtomB)
	for _, d := range [...]int{
		a.Level - b.Level,
		al - bl, ah - bh,
		a.Image - b.Image,
		a.ShellA - b.ShellA, a.ShellB - b.ShellB,
		a.PrimA - b.PrimA, a.PrimB - b.PrimB,
	} {
		if d != 0 {
			return d
		}
	}
	return 0
}

func minmax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

//NewTaskList sorts tasks into canonical order, groups them into pair runs
//and levels, and validates the grouping: within one level, all tasks of an
//atom pair must form exactly one contiguous run. It returns a critical
//error on negative indices.
func NewTaskList(tasks []Task) (*TaskList, error) {
	t := &TaskList{tasks: append([]Task{}, tasks...)}
	for i, tk := range t.tasks {
		if tk.Level < 0 || tk.Image < 0 || tk.AtomA < 0 || tk.AtomB < 0 ||
			tk.ShellA < 0 || tk.ShellB < 0 || tk.PrimA < 0 || tk.PrimB < 0 {
			return nil, Error{fmt.Sprintf("negative index in task %d", i), "", []string{"NewTaskList"}, true}
		}
		if tk.Image+1 > t.nimg {
			t.nimg = tk.Image + 1
		}
	}
	slices.SortFunc(t.tasks, taskOrder)
	for i := 0; i < len(t.tasks); {
		tk := t.tasks[i]
		la, lb := minmax(tk.AtomA, tk.AtomB)
		j := i
		for j+1 < len(t.tasks) {
			nx := t.tasks[j+1]
			na, nb := minmax(nx.AtomA, nx.AtomB)
			if nx.Level != tk.Level || na != la || nb != lb {
				break
			}
			j++
		}
		if len(t.levels) == 0 || t.levels[len(t.levels)-1].Level != tk.Level {
			t.levels = append(t.levels, LevelRun{Level: tk.Level})
		}
		lv := &t.levels[len(t.levels)-1]
		lv.Pairs = append(lv.Pairs, PairRun{First: i, Last: j, AtomA: tk.AtomA, AtomB: tk.AtomB})
		i = j + 1
	}
	return t, nil
}

//Len returns the number of tasks.
func (T *TaskList) Len() int { return len(T.tasks) }

//Task returns the i-th task in canonical order. Panics if out of range,
//as the containers do.
func (T *TaskList) Task(i int) Task { return T.tasks[i] }

//Levels returns the per-level pair grouping, levels in increasing
//resolution order.
func (T *TaskList) Levels() []LevelRun { return T.levels }

//NImages returns one plus the largest image index named by any task.
func (T *TaskList) NImages() int {
	if T.nimg == 0 {
		return 1
	}
	return T.nimg
}

//Restrict returns a new TaskList holding only the tasks of the given grid
//level. Handy for testing level additivity, and for re-running a single
//level after a grid refinement.
func (T *TaskList) Restrict(level int) (*TaskList, error) {
	var sub []Task
	for _, tk := range T.tasks {
		if tk.Level == level {
			sub = append(sub, tk)
		}
	}
	return NewTaskList(sub)
}
