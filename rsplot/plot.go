/*
 * plot.go, part of rsint.
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

//Package rsplot renders scheduling diagnostics for the integration engine:
//how tasks spread over the grid levels and how uneven the per-pair work is.
//Uneven pair costs are why the driver schedules dynamically; these plots are
//how you check that on a real system.
package rsplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	rsint "github.com/molgrid/rsint"
)

//LevelOccupancy saves a bar chart of the task count per grid level.
func LevelOccupancy(tl *rsint.TaskList, fname string) error {
	levels := tl.Levels()
	vals := make(plotter.Values, len(levels))
	names := make([]string, len(levels))
	for i, lr := range levels {
		n := 0
		for _, pr := range lr.Pairs {
			n += pr.Last - pr.First + 1
		}
		vals[i] = float64(n)
		names[i] = fmt.Sprintf("L%d", lr.Level)
	}
	p := plot.New()
	p.Title.Text = "Tasks per grid level"
	p.Y.Label.Text = "tasks"
	bars, err := plotter.NewBarChart(vals, vg.Points(25))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(names...)
	return p.Save(5*vg.Inch, 4*vg.Inch, fname)
}

//PairCost saves a histogram of the task-run lengths of the atom pairs, over
//all levels. A long tail here is what the dynamic pair chunking absorbs.
func PairCost(tl *rsint.TaskList, fname string) error {
	var vals plotter.Values
	for _, lr := range tl.Levels() {
		for _, pr := range lr.Pairs {
			vals = append(vals, float64(pr.Last-pr.First+1))
		}
	}
	if len(vals) == 0 {
		return fmt.Errorf("rsplot: empty task list")
	}
	p := plot.New()
	p.Title.Text = "Tasks per atom pair"
	p.X.Label.Text = "run length"
	h, err := plotter.NewHist(vals, 16)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(5*vg.Inch, 4*vg.Inch, fname)
}
