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

// Package instrument materializes one stm_reserve call at the head of
// every block left with a non-empty residual Access Set after
// compression.
package instrument

import (
	"fmt"
	"sort"

	"github.com/jaingaurav/cantm/internal/blockanalyzer"
	"github.com/jaingaurav/cantm/internal/ir"
)

// MalformedIRError occurs when the reserve symbol name collides with a
// function the host module already defines a body for. Reusing it as
// the variadic runtime hook would silently redirect every call to that
// function into stm_reserve's calling convention instead, so this is
// reported rather than walked past.
type MalformedIRError struct {
	Function string
	Reason   string
}

func (self MalformedIRError) Error() string {
	return fmt.Sprintf("MalformedIRError(%s): %s", self.Function, self.Reason)
}

// Run declares (or finds) reserveName in m, then walks every analyzed
// block across states in a deterministic order, inserting one
// stm_reserve call per non-empty residual Access Set. It reports
// whether any call was inserted — the pass's "module changed" signal.
func Run(m *ir.Module, states map[*ir.Function]*blockanalyzer.PerFunctionState, reserveName string) (bool, error) {
	if existing := m.FindFunction(reserveName); existing != nil && len(existing.Blocks) > 0 {
		return false, MalformedIRError{
			Function: existing.Name(),
			Reason:   "reserve symbol name collides with a function that already has a body",
		}
	}

	reserve := m.DeclareReserve(reserveName)
	changed := false

	for _, f := range sortedFunctions(states) {
		state := states[f]

		for _, bb := range state.BlockOrder() {
			as := state.Blocks[bb]

			if as.Empty() {
				continue
			}

			var loads, stores []ir.Value
			as.CopyLoads(&loads)
			as.CopyStores(&stores)

			numArgs := 2 + len(loads) + len(stores)
			args := make([]ir.Value, 0, numArgs)
			args = append(args, ir.NewConstInt(int64(numArgs)))
			args = append(args, ir.NewConstInt(int64(len(loads))))
			args = append(args, loads...)
			args = append(args, ir.NewConstInt(int64(len(stores))))
			args = append(args, stores...)

			ir.InsertCall(bb, ir.FirstNonPhi(bb), reserve, args)
			changed = true
		}
	}

	return changed, nil
}

// sortedFunctions orders states' keys by name, since map iteration
// order is randomized and instrumentation order must be reproducible.
func sortedFunctions(states map[*ir.Function]*blockanalyzer.PerFunctionState) []*ir.Function {
	out := make([]*ir.Function, 0, len(states))

	for f := range states {
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})

	return out
}
