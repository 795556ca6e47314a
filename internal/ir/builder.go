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

// NewBlock appends a fresh, disconnected block to the function. Callers
// wire up Preds/Succs with Br / CondBr.
func (self *Function) NewBlock() *Block {
	return self.newBlock()
}

// Load appends a load of addr and returns the defined value.
func (self *Block) Load(name string, addr Value) *LoadInst {
	ld := &LoadInst{instrBase: instrBase{valueBase: valueBase{name: name, kind: KindInteger}, block: self}, Addr: addr}
	self.Instrs = append(self.Instrs, ld)
	return ld
}

// Store appends a store of val through addr.
func (self *Block) Store(addr Value, val Value) *StoreInst {
	st := &StoreInst{instrBase: instrBase{block: self}, Addr: addr, Val: val}
	self.Instrs = append(self.Instrs, st)
	return st
}

// Call appends a call to callee with args and returns the defined value.
func (self *Block) Call(name string, callee *Function, args ...Value) *CallInst {
	ci := &CallInst{instrBase: instrBase{valueBase: valueBase{name: name, kind: KindPointer}, block: self}, Callee: callee, Args: args}
	self.Instrs = append(self.Instrs, ci)
	return ci
}

// Alloca appends a stack allocation and returns the defined pointer.
func (self *Block) Alloca(name string) *AllocaInst {
	ai := &AllocaInst{instrBase: instrBase{valueBase: valueBase{name: name, kind: KindPointer}, block: self}}
	self.Instrs = append(self.Instrs, ai)
	return ai
}

// Other appends an opaque instruction (arithmetic, compare, cast,
// select, …) that the analysis observes but never records.
func (self *Block) Other(op string) *OtherInst {
	oi := &OtherInst{instrBase: instrBase{block: self}, Op: op}
	self.Instrs = append(self.Instrs, oi)
	return oi
}

// Phi prepends a phi-node merging incoming along the block's
// (eventual) predecessor edges, in the same order Preds will be built.
func (self *Block) Phi(name string, incoming ...Value) *PhiInst {
	p := &PhiInst{instrBase: instrBase{valueBase: valueBase{name: name}, block: self}, Incoming: incoming}
	self.Phis = append(self.Phis, p)
	return p
}

// Br adds an unconditional edge to to.
func (self *Block) Br(to *Block) {
	self.addEdge(to)
}

// CondBr adds both legs of a conditional branch. The condition itself
// is whatever Other instruction the caller appended earlier in the
// block (a compare/test) — CondBr only wires the two successor edges.
func (self *Block) CondBr(t *Block, f *Block) {
	self.addEdge(t)
	self.addEdge(f)
}

// Ret marks the block as a terminal (no successors) block.
func (self *Block) Ret() {}
