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

// Package cantm instruments a whole program's IR for software
// transactional memory: it discovers transactional root functions,
// analyzes the load/store addresses each reachable block may touch,
// compresses away accesses already covered by a dominating predecessor
// or an enclosing caller, and inserts one stm_reserve call per block
// that still has something left to reserve.
package cantm

import (
	"fmt"

	"github.com/jaingaurav/cantm/internal/blockanalyzer"
	"github.com/jaingaurav/cantm/internal/compress"
	"github.com/jaingaurav/cantm/internal/instrument"
	"github.com/jaingaurav/cantm/internal/ir"
	"github.com/jaingaurav/cantm/internal/rt"
	"github.com/jaingaurav/cantm/internal/stats"
	"github.com/jaingaurav/cantm/internal/worklist"
)

// Pass is one configured instance of the CanTM instrumentation pass.
// It is safe to run against multiple modules sequentially — Run resets
// all per-module state (worklist, counters, escape map) on entry — but
// not concurrently: there is exactly one mutable state struct per Pass,
// shared by every helper it drives.
type Pass struct {
	cfg *config

	counters *stats.Counters
	escape   *stats.EscapeMap
}

// NewPass builds a Pass with the given options applied over the
// defaults (primary root substring "tx", auxiliary "foo", stats
// collection on, reserve symbol "stm_reserve").
func NewPass(opts ...Option) *Pass {
	cfg := defaultConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	return &Pass{cfg: cfg}
}

// Run instruments m in place. It returns whether any stm_reserve call
// was inserted — the pass's only success signal back to a host pass
// manager — and a non-nil error for malformed IR the analysis cannot
// safely walk past (an indirect call with no resolvable callee).
func (self *Pass) Run(m *ir.Module) (bool, error) {
	self.counters = &stats.Counters{}
	self.escape = stats.NewEscapeMap()

	for _, g := range m.Globals {
		// Every global starts escapable and nothing ever revokes that; see
		// internal/stats/escape.go.
		self.escape.MarkEscapable(g, true)
	}

	traceHook := blockanalyzer.Trace(self.trace)

	wl := worklist.New(self.counters, nil, traceHook)
	root := wl.DiscoverRoots(m, self.cfg.auxRoots, self.cfg.primaryRoots)
	self.trace("scanned %d function(s) for auxiliary/primary roots; primary root: %s", len(m.Functions), rootName(root))

	if err := wl.Run(); err != nil {
		return false, err
	}

	if wl.HasCycles() {
		// The "currently-compressing" guard in internal/compress is what
		// actually prevents infinite recursion, not this check — it only
		// tells an operator that a cycle exists so compression stopping
		// short at re-entry is expected rather than a bug.
		self.trace("reachable call graph contains a cycle; compression will stop at re-entry")
	}

	self.trace("analyzed %d function(s): %v", len(wl.States()), self.counters.AnalyzedFunctions())

	if root != nil {
		engine := compress.New(wl.States(), self.counters, traceHook)
		engine.CompressFunction(root, rt.NewValueSet[int](), rt.NewValueSet[int]())
		self.trace("compressed from primary root %s", root.Name())
	}

	changed, err := instrument.Run(m, wl.States(), self.cfg.reserveName)
	if err != nil {
		return false, err
	}
	self.trace("instrumentation complete; module changed: %v", changed)

	return changed, nil
}

// Stats returns the counters accumulated by the most recent Run, or nil
// if Run has not been called yet or statistics collection was disabled
// with WithStats(false) (in which case Run still counts as usual; the
// counters are just not returned).
func (self *Pass) Stats() *stats.Counters {
	if !self.cfg.collectStats {
		return nil
	}

	return self.counters
}

func (self *Pass) trace(format string, args ...interface{}) {
	if self.cfg.trace == nil {
		return
	}

	fmt.Fprintf(self.cfg.trace, format+"\n", args...)
}

func rootName(f *ir.Function) string {
	if f == nil {
		return "<none>"
	}

	return f.Name()
}
