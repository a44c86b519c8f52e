/*
 * driver.go, part of rsint.
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

//driver.go is the task scheduler: it walks the task list level by level,
//farms atom pairs out to a fixed pool of workers, and turns primitive-pair
//integrals into contracted matrix blocks, forces and virials. Pairs, never
//single tasks, are the schedulable unit: the whole contiguous task run of an
//atom pair goes to one worker, which is what makes every matrix block
//single-writer within a level without per-element locking.

package rsint

import (
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/molgrid/rsint/block"
	"github.com/molgrid/rsint/dist"
	"github.com/molgrid/rsint/grid"
)

//pairChunkDiv controls the dynamic scheduling granularity: each worker
//claims npairs/(workers*pairChunkDiv) pairs at a time, so chunks shrink as
//the pool grows and the highly variable per-pair costs still balance.
const pairChunkDiv = 8

//driver is the per-invocation state shared by the workers.
type driver struct {
	env    *Env
	o      *Options
	tl     *TaskList
	stack  *grid.Stack
	work   MatrixTarget
	weight *MatrixTarget
	sink   *ForceSink
	eps    float64
	bkey   string
	virial bool
	//per-level state, rebuilt between the level barriers
	parts  []*block.Partition
	glevel *grid.Level
}

//Integrate computes the matrix elements of the potential held by the grid
//stack over all primitive pairs of the task list, adding the contracted
//contributions into target. weight is the optional density/weight matrix
//(required when forces are on); sink receives forces and the virial and may
//be nil otherwise.
//
//Structural misconfiguration (no matrix target, mismatched weight kind,
//absent task list, forces without weight or sink) panics: those are caller
//programming errors, not runtime conditions. Integrator and communication
//failures come back as critical errors and abort the invocation.
func Integrate(env *Env, target MatrixTarget, weight *MatrixTarget, sink *ForceSink, o *Options) error {
	if env == nil || env.Integ == nil || env.Cell == nil {
		panic(ErrNilEnv)
	}
	if !target.valid() {
		panic(ErrMatrixTarget)
	}
	if weight != nil {
		if !weight.valid() {
			panic(ErrMatrixTarget)
		}
		if weight.perImage() != target.perImage() {
			panic(ErrWeightKind)
		}
	}
	if o == nil {
		o = DefaultOptions()
	}
	if o.Forces && weight == nil {
		panic(ErrForcesNeedWeight)
	}
	if o.Forces && sink == nil {
		panic(ErrForcesNeedSink)
	}
	d := &driver{
		env:    env,
		o:      o,
		sink:   sink,
		eps:    o.eps(),
		bkey:   o.basisKey(),
		virial: o.Virial && o.Forces,
		work:   target,
		weight: weight,
	}
	d.resolveLists()
	if d.tl.NImages() > target.nimages() {
		panic(ErrImageRange)
	}
	nw := o.Threads
	if nw < 1 {
		nw = runtime.NumCPU()
	}

	distributed := d.stack.AnyDistributed() && env.Comm != nil
	if distributed {
		d.work = target.working()
		if weight != nil {
			w := weight.scattered(d.slabKeep())
			d.weight = &w
		}
		o.Logger.Debug("grids distributed, integrating into working copies",
			zap.Int("rank", env.Comm.Rank()), zap.Int("size", env.Comm.Size()))
	}

	maxco, maxsgf := env.maxima(d.bkey)
	scratch := make([]*Scratch, nw)
	for w := range scratch {
		scratch[w] = newScratch(maxco, maxsgf)
	}

	for _, lr := range d.tl.Levels() {
		d.glevel = d.stack.Levels[lr.Level]
		pairs := lr.Pairs
		if distributed && !d.glevel.Distributed {
			//on a replicated level every rank holds the full grid, so each
			//pair must be integrated by exactly one rank or the gather sum
			//counts the level once per rank
			pairs = rankShare(pairs, env.Comm.Rank(), env.Comm.Size())
		}
		d.parts = make([]*block.Partition, d.work.nimages())
		for img := range d.parts {
			d.parts[img] = d.work.at(img).BeginLevel(nw)
		}
		if o.Watch != nil {
			o.Watch.Reset()
		}
		npairs := len(pairs)
		chunk := npairs/(nw*pairChunkDiv) + 1
		var cursor atomic.Int64
		var g errgroup.Group
		for w := 0; w < nw; w++ {
			w := w
			scr := scratch[w]
			pairs := pairs
			g.Go(func() error {
				for {
					end := int(cursor.Add(int64(chunk)))
					start := end - chunk
					if start >= npairs {
						return nil
					}
					if end > npairs {
						end = npairs
					}
					for pi := start; pi < end; pi++ {
						if err := d.pair(pairs[pi], w, scr); err != nil {
							return err
						}
					}
				}
			})
		}
		if err := g.Wait(); err != nil {
			return errDecorate(err, "Integrate")
		}
		//level barrier: writes of level L are finalized before level L+1
		//prepares its thread-partitioned storage.
		for _, p := range d.parts {
			p.Flush()
		}
		o.Logger.Debug("grid level integrated",
			zap.Int("level", lr.Level), zap.Int("pairs", npairs), zap.Int("workers", nw))
	}

	if distributed {
		for img := 0; img < target.nimages(); img++ {
			merged, err := dist.Gather(d.work.at(img), env.Comm)
			if err != nil {
				return errDecorate(err, "Integrate/gather")
			}
			target.at(img).Add(merged)
		}
	}
	return nil
}

//rankShare returns this rank's contiguous share of a replicated level's
//pair runs. Shares are near-equal and cover the slice exactly once over the
//group, which is what keeps the gathered matrix independent of the process
//count.
func rankShare(pairs []PairRun, rank, size int) []PairRun {
	lo := rank * len(pairs) / size
	hi := (rank + 1) * len(pairs) / size
	return pairs[lo:hi]
}

//resolveLists picks the task list and grid stack: an external override wins
//over everything, then the soft-basis redirection, then the plain basis
//type lookup. Absence is fatal.
func (d *driver) resolveLists() {
	if d.o.ExternalTasks != nil || d.o.ExternalGrids != nil {
		if d.o.ExternalTasks == nil || d.o.ExternalGrids == nil {
			panic(ErrExternalPair)
		}
		d.tl, d.stack = d.o.ExternalTasks, d.o.ExternalGrids
		return
	}
	d.tl = d.env.Tasks[d.bkey]
	if d.tl == nil {
		panic(ErrNoTaskList)
	}
	d.stack = d.env.Grids[d.bkey]
	if d.stack == nil {
		panic(ErrNoGridStack)
	}
}

//slabKeep builds the block filter for the weight scatter from the wrapped
//positions and the kinds' support radii.
func (d *driver) slabKeep() func(block.Key) bool {
	pos := make([][3]float64, len(d.env.Atoms))
	radius := make([]float64, len(d.env.Atoms))
	for i, a := range d.env.Atoms {
		pos[i] = d.env.Cell.Wrap(a.Pos)
		radius[i] = d.env.BasisFor(a.Kind, d.bkey).MaxRadius()
	}
	return dist.SlabKeep(d.stack, pos, radius)
}

//basisCached resolves an atomic kind through the worker-local cache, so the
//map lookups do not show up in the pair loop.
func (d *driver) basisCached(scr *Scratch, kind string) *Basis {
	if b, ok := scr.kinds[kind]; ok {
		return b
	}
	b := d.env.BasisFor(kind, d.bkey)
	scr.kinds[kind] = b
	return b
}

//pair processes one atom pair's full task run on one worker: integrate each
//primitive pair into the set-pair accumulation buffer, contract at set-pair
//boundaries, and hand the pair's forces to the sink at the end.
func (d *driver) pair(pr PairRun, worker int, scr *Scratch) error {
	ia, ib, _ := block.Canon(pr.AtomA, pr.AtomB)
	atA, atB := d.env.Atoms[ia], d.env.Atoms[ib]
	ba := d.basisCached(scr, atA.Kind)
	bb := d.basisCached(scr, atB.Kind)
	pa := d.env.Cell.Wrap(atA.Pos)
	pb := d.env.Cell.Wrap(atB.Pos)
	rab := d.env.Cell.MinImage([3]float64{pb[0] - pa[0], pb[1] - pa[1], pb[2] - pa[2]})
	mult := 2.0
	if ia == ib {
		mult = 1.0
	}

	job := &scr.job
	*job = PairJob{
		RA:     pa,
		Rab:    rab,
		Level:  d.glevel,
		Eps:    d.eps,
		Tau:    d.o.Tau,
		Forces: d.o.Forces,
		Virial: d.virial,
		VA:     scr.va,
		VB:     scr.vb,
	}
	scr.va.Zero()
	scr.vb.Zero()

	curImg, curSa, curSb := -1, -1, -1
	var sha, shb *Shell
	var hab, dst *mat.Dense
	for ti := pr.First; ti <= pr.Last; ti++ {
		t := d.tl.Task(ti)
		sa, sb, pra, prb := t.ShellA, t.ShellB, t.PrimA, t.PrimB
		if t.AtomA != ia {
			//the task named the pair in the reverse role order
			sa, sb, pra, prb = t.ShellB, t.ShellA, t.PrimB, t.PrimA
		}
		if ia == ib && sa > sb {
			//same-atom pairs carry no atom-order cue, so the shell order
			//fixes the orientation within the diagonal block
			sa, sb, pra, prb = sb, sa, prb, pra
		}
		if t.Image != curImg || sa != curSa || sb != curSb {
			curImg, curSa, curSb = t.Image, sa, sb
			sha, shb = &ba.Shells[sa], &bb.Shells[sb]
			hab = dense(scr.habBuf, sha.NCart(), shb.NCart())
			hab.Zero()
			dst = d.parts[t.Image].Block(worker, t.Image, ia, ib, ba.NSph(), bb.NSph())
			if d.o.Watch != nil {
				d.o.Watch.Touch(block.Key{Image: t.Image, Row: ia, Col: ib}, worker)
			}
			job.Pab = nil
			if d.weight != nil {
				if wb, ok := d.weight.at(t.Image).Block(t.Image, ia, ib); ok {
					wsub := wb.Slice(sha.First, sha.First+sha.NSph(), shb.First, shb.First+shb.NSph())
					job.Pab = decontract(wsub, sha, shb, scr)
				}
			}
		}
		job.ShellA, job.ShellB = sha, shb
		job.PrimA, job.PrimB = pra, prb
		job.Distributed, job.Subpatch = t.Distributed, t.Subpatch
		job.Hab = hab
		if err := d.env.Integ.IntegratePair(job); err != nil {
			return errDecorate(err, "pair")
		}
		//set-pair boundary: peek at the next task, or end of the run.
		boundary := ti == pr.Last
		if !boundary {
			nx := d.tl.Task(ti + 1)
			nsa, nsb := nx.ShellA, nx.ShellB
			if nx.AtomA != ia {
				nsa, nsb = nx.ShellB, nx.ShellA
			}
			if ia == ib && nsa > nsb {
				nsa, nsb = nsb, nsa
			}
			boundary = nx.Image != curImg || nsa != curSa || nsb != curSb
		}
		if boundary {
			contractAdd(dst, hab, sha, shb, scr)
		}
	}

	if d.o.Forces {
		var va, vb *mat.SymDense
		if d.virial {
			va, vb = scr.va, scr.vb
		}
		d.sink.AddPair(ia, ib, job.FA, job.FB, va, vb, mult*d.o.AuxScale)
	}
	return nil
}
