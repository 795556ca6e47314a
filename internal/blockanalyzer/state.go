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

// Package blockanalyzer walks a basic block's instructions, populates
// an Access Set, and splits the block at call and alloca boundaries so
// each surviving piece has a single, simple shape for the compression
// engine to reason about.
package blockanalyzer

import (
	"sort"

	"github.com/jaingaurav/cantm/internal/access"
	"github.com/jaingaurav/cantm/internal/ir"
	"github.com/jaingaurav/cantm/internal/rt"
)

// PerFunctionState is one function's slice of the pass's global state:
// every block's Access Set, plus the subset of blocks whose first
// instruction is a call (the "call-boundary blocks").
type PerFunctionState struct {
	Blocks       map[*ir.Block]*access.Set
	CallBoundary rt.ValueSet[*ir.Block]
}

// NewPerFunctionState returns an empty state ready for AnalyzeBlock.
func NewPerFunctionState() *PerFunctionState {
	return &PerFunctionState{
		Blocks:       make(map[*ir.Block]*access.Set),
		CallBoundary: rt.NewValueSet[*ir.Block](),
	}
}

// BlockOrder returns the keys of Blocks sorted by block ID, for
// deterministic iteration over the analyzed set.
func (self *PerFunctionState) BlockOrder() []*ir.Block {
	out := make([]*ir.Block, 0, len(self.Blocks))

	for bb := range self.Blocks {
		out = append(out, bb)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}
