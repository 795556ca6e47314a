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

package ir

// Instruction is any value produced or consumed inside a Block. The
// pass downcasts instructions by type-switching on the concrete types
// below, mirroring an `isa<>`/`dyn_cast<>` style against a closed set of
// opcodes.
type Instruction interface {
	Value
	Block() *Block
	setBlock(b *Block)
}

type instrBase struct {
	valueBase
	block *Block
}

func (self *instrBase) Block() *Block {
	return self.block
}

func (self *instrBase) setBlock(b *Block) {
	self.block = b
}

// LoadInst reads through a pointer-typed address.
type LoadInst struct {
	instrBase
	Addr Value
}

// StoreInst writes a value through a pointer-typed address.
type StoreInst struct {
	instrBase
	Addr Value
	Val  Value
}

// CallInst calls a (statically known) function with a fixed argument
// list. Indirect calls (Callee == nil) are a hard error per the pass's
// error taxonomy.
type CallInst struct {
	instrBase
	Callee *Function
	Args   []Value
}

// AllocaInst reserves stack storage for a local. The block analyzer
// splits the block after every alloca that is not its last instruction
// (see internal/blockanalyzer). Loads and stores through an alloca's
// pointer are recorded like those through any other named address; the
// escape stub (internal/stats) is not consulted.
type AllocaInst struct {
	instrBase
}

// PhiInst merges values along incoming control-flow edges. Phis must
// lead their block; Block.Phis holds them separately from Block.Instrs.
type PhiInst struct {
	instrBase
	Incoming []Value
}

// OtherInst is the catch-all for arithmetic, compares, casts, selects,
// branches and returns: instructions the pass observes while scanning a
// block but never records in an Access Set.
type OtherInst struct {
	instrBase
	Op string
}
