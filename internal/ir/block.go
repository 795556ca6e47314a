/*
 * Copyright 2022 CloudWeGo Authors
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

// Block is a basic block: a straight-line run of Instrs, led by zero or
// more Phis, reached from Preds and leaving through Succs.
type Block struct {
	ID       int
	Function *Function
	Phis     []*PhiInst
	Instrs   []Instruction
	Preds    []*Block
	Succs    []*Block
}

// Predecessors returns the block's incoming edges in insertion order.
func (self *Block) Predecessors() []*Block {
	return self.Preds
}

// Successors returns the block's outgoing edges in insertion order.
func (self *Block) Successors() []*Block {
	return self.Succs
}

// SplitAt splits the block immediately before Instrs[i]: a fresh
// successor block is created holding Instrs[i:], the receiver is
// truncated to Instrs[:i], and an unconditional edge is left from the
// receiver to the new block. Any block that was a successor of the
// receiver becomes a successor of the new block instead, with its
// predecessor list patched to match.
func (self *Block) SplitAt(i int) *Block {
	if i < 0 || i > len(self.Instrs) {
		panic("ir: split index out of range")
	}

	tail := make([]Instruction, len(self.Instrs)-i)
	copy(tail, self.Instrs[i:])
	self.Instrs = self.Instrs[:i:i]

	nb := self.Function.newBlock()
	nb.Instrs = tail
	nb.Succs = self.Succs
	nb.Preds = []*Block{self}

	for _, ins := range nb.Instrs {
		ins.setBlock(nb)
	}

	for _, s := range nb.Succs {
		s.replacePred(self, nb)
	}

	self.Succs = []*Block{nb}
	return nb
}

func (self *Block) replacePred(from *Block, to *Block) {
	for i, p := range self.Preds {
		if p == from {
			self.Preds[i] = to
		}
	}
}

// addEdge records an unconditional (or one leg of a conditional) edge
// from the receiver to to.
func (self *Block) addEdge(to *Block) {
	self.Succs = append(self.Succs, to)
	to.Preds = append(to.Preds, self)
}
