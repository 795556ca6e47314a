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

// Package access implements the per-block Access Set: the candidate
// load/store addresses a block may touch, and the φ-aware insertion and
// predecessor-intersection "compression" primitives the rest of the
// pass drives.
package access

import (
	"github.com/jaingaurav/cantm/internal/ir"
	"github.com/jaingaurav/cantm/internal/rt"
	"github.com/jaingaurav/cantm/internal/stats"
)

// Set is one block's Access Set. The zero value is not usable; build
// one with New.
type Set struct {
	loads, stores         rt.ValueSet[ir.Value]
	phiLoads, phiStores   rt.ValueSet[*ir.PhiInst]
	origLoads, origStores rt.ValueSet[ir.Value]
	seenLoads, seenStores rt.ValueSet[ir.Value]
	frozen                bool

	counters *stats.Counters
}

// New creates an empty Access Set that reports into counters.
func New(counters *stats.Counters) *Set {
	return &Set{
		loads:      rt.NewValueSet[ir.Value](),
		stores:     rt.NewValueSet[ir.Value](),
		phiLoads:   rt.NewValueSet[*ir.PhiInst](),
		phiStores:  rt.NewValueSet[*ir.PhiInst](),
		seenLoads:  rt.NewValueSet[ir.Value](),
		seenStores: rt.NewValueSet[ir.Value](),
		counters:   counters,
	}
}

// InsertLoad records a load of v. A prior store of the same address in
// this block kills the need to reserve it as a load, so v is only added
// to loads if it is not already a recorded store. It reports whether
// loads grew.
func (self *Set) InsertLoad(v ir.Value) bool {
	if phi, ok := v.(*ir.PhiInst); ok {
		self.counters.LoadsOnPhi++

		if !self.phiStores.Has(phi) {
			self.phiLoads.Add(phi)
		}
	}

	if self.stores.Has(v) {
		self.counters.LoadsSkippedFromPreviousStore++
		return false
	}

	return self.loads.Add(v)
}

// InsertStore records a store to v unconditionally. It reports whether
// stores grew.
func (self *Set) InsertStore(v ir.Value) bool {
	if phi, ok := v.(*ir.PhiInst); ok {
		self.counters.StoresOnPhi++
		self.phiStores.Add(phi)
	}

	return self.stores.Add(v)
}

// Freeze snapshots loads/stores into orig{Loads,Stores}. Called exactly
// once per block, at the boundary between analysis and compression.
func (self *Set) Freeze() {
	self.origLoads = self.loads.Clone()
	self.origStores = self.stores.Clone()
	self.frozen = true
}

// Frozen reports whether Freeze has run.
func (self *Set) Frozen() bool {
	return self.frozen
}

// ContainsLoad queries the frozen load snapshot.
func (self *Set) ContainsLoad(v ir.Value) bool {
	return self.origLoads.Has(v)
}

// ContainsStore queries the frozen store snapshot.
func (self *Set) ContainsStore(v ir.Value) bool {
	return self.origStores.Has(v)
}

// CompressWithPriorLoad removes v from loads if present, recording it
// as seen regardless. It never adds.
func (self *Set) CompressWithPriorLoad(v ir.Value) bool {
	self.seenLoads.Add(v)

	if self.loads.Remove(v) {
		self.counters.LoadsCompressed++
		return true
	}

	return false
}

// CompressWithPriorStore removes v from stores if present, and — because
// a prior store also kills a load — first tries CompressWithPriorLoad.
func (self *Set) CompressWithPriorStore(v ir.Value) bool {
	self.seenStores.Add(v)
	removed := false

	if self.CompressWithPriorLoad(v) {
		self.counters.LoadsCompressedFromPriorStore++
		removed = true
	}

	if self.stores.Remove(v) {
		self.counters.StoresCompressed++
		removed = true
	}

	return removed
}

// Compress applies CompressWithPriorLoad/CompressWithPriorStore for
// every member of priorLoads/priorStores, in that order.
func (self *Set) Compress(priorLoads, priorStores rt.ValueSet[ir.Value]) {
	for _, v := range rt.Sorted(priorLoads, ir.Value.Name) {
		self.CompressWithPriorLoad(v)
	}

	for _, v := range rt.Sorted(priorStores, ir.Value.Name) {
		self.CompressWithPriorStore(v)
	}
}

// CompressPhiNodes removes a φ from loads/stores once every incoming
// value is already covered by the compression context.
func (self *Set) CompressPhiNodes() {
	for _, p := range rt.Sorted(self.phiLoads, phiName) {
		if self.canCompress(p, rt.NewValueSet[*ir.PhiInst](), true) && self.loads.Remove(p) {
			self.counters.LoadsOnPhiCompressed++
		}
	}

	for _, p := range rt.Sorted(self.phiStores, phiName) {
		if self.canCompress(p, rt.NewValueSet[*ir.PhiInst](), false) && self.stores.Remove(p) {
			self.counters.StoresOnPhiCompressed++
		}
	}
}

// canCompress decides whether a φ-node is already covered on every
// incoming edge, so it can be dropped instead of reserved. allowLoads
// distinguishes the two cases it's used for: a φ-load
// is killed by either a load or a store on every incoming edge, a
// φ-store only by a store. visited breaks cycles among mutually
// referential φ-nodes by assuming (optimistically, like any other
// fixed-point compression step) that a node already being checked holds.
func (self *Set) canCompress(p *ir.PhiInst, visited rt.ValueSet[*ir.PhiInst], allowLoads bool) bool {
	if !visited.Add(p) {
		return true
	}

	for _, v := range p.Incoming {
		if child, ok := v.(*ir.PhiInst); ok {
			if !self.canCompress(child, visited, allowLoads) {
				return false
			}
			continue
		}

		switch {
		case self.seenStores.Has(v):
		case allowLoads && self.seenLoads.Has(v):
		case self.stores.Has(v):
		case allowLoads && self.loads.Has(v):
		default:
			return false
		}
	}

	return true
}

func phiName(p *ir.PhiInst) string {
	return p.Name()
}

// CopyLoads appends every residual load to sink, sorted by name for a
// deterministic argument order.
func (self *Set) CopyLoads(sink *[]ir.Value) {
	*sink = append(*sink, rt.Sorted(self.loads, ir.Value.Name)...)
}

// CopyStores appends every residual store to sink, sorted by name.
func (self *Set) CopyStores(sink *[]ir.Value) {
	*sink = append(*sink, rt.Sorted(self.stores, ir.Value.Name)...)
}

// NumLoads returns the current residual load count.
func (self *Set) NumLoads() int {
	return len(self.loads)
}

// NumStores returns the current residual store count.
func (self *Set) NumStores() int {
	return len(self.stores)
}

// Empty reports whether both loads and stores are empty.
func (self *Set) Empty() bool {
	return len(self.loads) == 0 && len(self.stores) == 0
}
