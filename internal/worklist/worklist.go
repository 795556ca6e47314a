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

// Package worklist discovers transactional roots by name substring,
// and drives the block analyzer across the reachable call graph,
// visiting each function at most once.
package worklist

import (
	"strings"

	"github.com/oleiade/lane"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/jaingaurav/cantm/internal/blockanalyzer"
	"github.com/jaingaurav/cantm/internal/ir"
	"github.com/jaingaurav/cantm/internal/rt"
	"github.com/jaingaurav/cantm/internal/stats"
)

// Worklist drives block analysis across every function reachable from
// the discovered roots, and owns the pass's global analysis state: one
// PerFunctionState per visited function, plus the visit-once queue.
type Worklist struct {
	counters *stats.Counters
	hint     blockanalyzer.AliasHint
	trace    blockanalyzer.Trace

	states   map[*ir.Function]*blockanalyzer.PerFunctionState
	enqueued rt.ValueSet[*ir.Function]
	queue    *lane.Queue

	graph    *simple.DirectedGraph
	nodeID   map[*ir.Function]int64
	nextNode int64
	current  *ir.Function
}

// New creates an empty worklist reporting into counters. hint may be
// nil, in which case AnalyzeBlock's default (no-op) alias hint is used.
// trace may also be nil, in which case AnalyzeBlock emits no per-
// instruction lines.
func New(counters *stats.Counters, hint blockanalyzer.AliasHint, trace blockanalyzer.Trace) *Worklist {
	return &Worklist{
		counters: counters,
		hint:     hint,
		trace:    trace,
		states:   make(map[*ir.Function]*blockanalyzer.PerFunctionState),
		enqueued: rt.NewValueSet[*ir.Function](),
		queue:    lane.NewQueue(),
		graph:    simple.NewDirectedGraph(),
		nodeID:   make(map[*ir.Function]int64),
	}
}

// Enqueue adds f to the worklist if it has not already been enqueued
// (the visit-once rule). It also records a call-graph
// edge from whichever function is currently being analyzed to f, so
// HasCycles can later ask gonum for a topological order as a cycle
// check.
func (self *Worklist) Enqueue(f *ir.Function) {
	if self.current != nil {
		self.addEdge(self.current, f)
	}

	if !self.enqueued.Add(f) {
		return
	}

	self.queue.Enqueue(f)
}

func (self *Worklist) nodeFor(f *ir.Function) graph.Node {
	id, ok := self.nodeID[f]

	if !ok {
		id = self.nextNode
		self.nextNode++
		self.nodeID[f] = id
		self.graph.AddNode(simple.Node(id))
	}

	return simple.Node(id)
}

func (self *Worklist) addEdge(from *ir.Function, to *ir.Function) {
	u := self.nodeFor(from)
	v := self.nodeFor(to)
	self.graph.SetEdge(self.graph.NewEdge(u, v))
}

// DiscoverRoots scans m's function table for the configured auxiliary
// and primary name substrings (default "foo" and "tx" respectively),
// enqueueing every match. It returns the function the caller should run
// final top-level compression from. The first primary-substring match
// wins outright and stops the scan. Absent any primary match, the last
// auxiliary match stands in as the root instead of leaving compression
// with nothing to run from — a module that only has "foo"-named
// functions still gets its accesses compressed, just without a
// distinguished primary transaction. DiscoverRoots returns nil only
// when no function matched either substring set.
func (self *Worklist) DiscoverRoots(m *ir.Module, auxSubstrings, primarySubstrings []string) *ir.Function {
	var root *ir.Function

	for _, f := range m.Functions {
		if containsAny(f.Name(), auxSubstrings) {
			self.Enqueue(f)
			root = f
		}

		if containsAny(f.Name(), primarySubstrings) {
			self.Enqueue(f)
			root = f
			break
		}
	}

	return root
}

func containsAny(name string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(name, s) {
			return true
		}
	}

	return false
}

// Run drains the queue, analyzing every block of every dequeued
// function with the Block Analyzer, until no function remains. Callees
// discovered mid-analysis are folded back in via Enqueue.
func (self *Worklist) Run() error {
	for !self.queue.Empty() {
		f, ok := self.queue.Dequeue().(*ir.Function)

		if !ok {
			continue
		}

		self.current = f
		self.nodeFor(f)
		state := blockanalyzer.NewPerFunctionState()
		self.states[f] = state

		ctx := &blockanalyzer.Context{Enqueuer: self, Counters: self.counters, Hint: self.hint, Trace: self.trace}

		for _, bb := range f.Blocks {
			if err := blockanalyzer.AnalyzeBlock(bb, state, ctx); err != nil {
				return err
			}
		}

		self.counters.MarkFunctionAnalyzed(f.Name())
	}

	self.current = nil
	return nil
}

// States returns the per-function analysis state accumulated by Run,
// keyed by function.
func (self *Worklist) States() map[*ir.Function]*blockanalyzer.PerFunctionState {
	return self.states
}

// HasCycles reports whether the discovered call graph contains a
// cycle — a gonum topological sort over the edges Enqueue recorded.
// This is diagnostic only: actual cycle-breaking during compression is
// handled independently by a "currently compressing" guard (see
// internal/compress), since a worklist-level cycle doesn't by itself
// tell compression which edge to cut.
func (self *Worklist) HasCycles() bool {
	_, err := topo.Sort(self.graph)
	return err != nil
}
