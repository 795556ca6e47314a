/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package compress implements a reverse, intersection-based data-flow
// walk over each function's CFG, mutually recursive with a
// caller-to-callee descent across call-boundary blocks that strips from
// the callee the formal parameters whose arguments the caller's block
// reserved.
package compress

import (
	"github.com/jaingaurav/cantm/internal/access"
	"github.com/jaingaurav/cantm/internal/blockanalyzer"
	"github.com/jaingaurav/cantm/internal/ir"
	"github.com/jaingaurav/cantm/internal/rt"
	"github.com/jaingaurav/cantm/internal/stats"
)

// Engine owns the state shared across the whole compression walk: the
// per-function analysis results the worklist produced, and the
// "currently compressing" guard that breaks cycles in the call graph —
// recursing into callees unconditionally would loop forever on a
// cyclic call graph, so a function already being compressed higher up
// the stack contributes no further reduction on re-entry.
type Engine struct {
	states      map[*ir.Function]*blockanalyzer.PerFunctionState
	counters    *stats.Counters
	trace       blockanalyzer.Trace
	compressing rt.ValueSet[*ir.Function]
}

// New builds an Engine over the analysis results the worklist recorded.
// trace may be nil, in which case the engine emits no per-decision
// lines.
func New(states map[*ir.Function]*blockanalyzer.PerFunctionState, counters *stats.Counters, trace blockanalyzer.Trace) *Engine {
	return &Engine{
		states:      states,
		counters:    counters,
		trace:       trace,
		compressing: rt.NewValueSet[*ir.Function](),
	}
}

// CompressFunction compresses every analyzed block of f, given the
// index sets of f's formal parameters the caller reserved on f's
// behalf. A top-level root (no caller) is compressed with both sets
// empty: nothing was reserved for it, so none of its own parameters are
// removed. A parameter is only stripped from f's blocks when its index
// is actually in the reserved set — stripping every parameter
// unconditionally would be unsound whenever a caller only reserves a
// subset of the arguments it passes.
func (self *Engine) CompressFunction(f *ir.Function, reservedLoadIdxs, reservedStoreIdxs rt.ValueSet[int]) {
	if !self.compressing.Add(f) {
		return
	}
	defer self.compressing.Remove(f)

	self.trace.Emit("compressing function %s", f.Name())

	state := self.states[f]
	if state == nil {
		// Never reached by the worklist (e.g. an indirect callee, or dead
		// code): nothing was analyzed, so there is nothing to compress.
		return
	}

	blocks := state.BlockOrder()

	for i, p := range f.Params {
		reserveLoad := reservedLoadIdxs.Has(i)
		reserveStore := reservedStoreIdxs.Has(i)

		if !reserveLoad && !reserveStore {
			continue
		}

		self.trace.Emit("function %s: stripping reserved parameter %s from every block", f.Name(), p.Name())

		for _, bb := range blocks {
			as := state.Blocks[bb]

			if reserveLoad {
				as.CompressWithPriorLoad(p)
			}

			if reserveStore {
				as.CompressWithPriorStore(p)
			}
		}
	}

	for _, term := range f.TerminalBlocks() {
		self.collect(term, state, rt.NewValueSet[ir.Value](), rt.NewValueSet[ir.Value](), rt.NewValueSet[*ir.Block]())
	}
}

// collect is a post-order walk from a terminal block toward entries,
// intersecting accumulators at CFG joins and descending into callees at
// call-boundary blocks: a value is "already reserved on entry to B"
// only if every incoming path already reserved it, which is exactly
// set intersection. visiting guards against infinite recursion on a
// loop back-edge within this single terminal's walk; an unresolved
// back-edge contributes nothing further, matching the call-graph guard
// above.
func (self *Engine) collect(b *ir.Block, state *blockanalyzer.PerFunctionState, L, S rt.ValueSet[ir.Value], visiting rt.ValueSet[*ir.Block]) {
	if !visiting.Add(b) {
		return
	}
	defer visiting.Remove(b)

	for i, p := range b.Predecessors() {
		if i == 0 {
			self.collect(p, state, L, S, visiting)
			continue
		}

		Lp := rt.NewValueSet[ir.Value]()
		Sp := rt.NewValueSet[ir.Value]()
		self.collect(p, state, Lp, Sp, visiting)

		rt.IntersectInPlace(L, Lp)
		rt.IntersectInPlace(S, Sp)
	}

	// as is nil when the block's AccessSet was empty (freeze() only
	// records non-empty sets) — a zero-argument call-boundary block, for
	// instance, still needs the callee descent below even though it has
	// nothing of its own to compress or export.
	as := state.Blocks[b]

	if as != nil {
		beforeLoads, beforeStores := as.NumLoads(), as.NumStores()
		as.Compress(L, S)
		as.CompressPhiNodes()
		self.trace.Emit("block %d: compression removed %d load(s) and %d store(s)", b.ID, beforeLoads-as.NumLoads(), beforeStores-as.NumStores())
	}

	if state.CallBoundary.Has(b) {
		self.compressCallBoundary(b, as)
	}

	if as == nil {
		return
	}

	// Export B's own residual accesses upward alongside what it
	// inherited, so both are visible to B's successors.
	var loads, stores []ir.Value
	as.CopyLoads(&loads)
	as.CopyStores(&stores)

	for _, v := range loads {
		L.Add(v)
	}

	for _, v := range stores {
		S.Add(v)
	}
}

// compressCallBoundary reads the call at b's head, computes which
// argument positions were reserved as loads/stores against b's frozen
// snapshot, and recursively compresses the callee with those index
// sets — this is what lets the callee know which of its own parameters
// it can drop because the caller already reserved them.
func (self *Engine) compressCallBoundary(b *ir.Block, as *access.Set) {
	if len(b.Instrs) == 0 {
		return
	}

	call, ok := b.Instrs[0].(*ir.CallInst)
	if !ok || call.Callee == nil {
		return
	}

	reservedLoads := rt.NewValueSet[int]()
	reservedStores := rt.NewValueSet[int]()

	if as != nil {
		for i, arg := range call.Args {
			if as.ContainsLoad(arg) {
				reservedLoads.Add(i)
			}

			if as.ContainsStore(arg) {
				reservedStores.Add(i)
			}
		}
	}

	self.trace.Emit("block %d: descending into callee %s with %d reserved load arg(s) and %d reserved store arg(s)", b.ID, call.Callee.Name(), len(reservedLoads), len(reservedStores))
	self.CompressFunction(call.Callee, reservedLoads, reservedStores)
}
