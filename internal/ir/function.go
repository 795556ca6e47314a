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

// Function owns an ordered list of Blocks (in definition order) and
// formal Params.
type Function struct {
	valueBase
	Params []*Param
	Blocks []*Block
}

func (self *Function) newBlock() *Block {
	bb := &Block{ID: len(self.Blocks), Function: self}
	self.Blocks = append(self.Blocks, bb)
	return bb
}

// TerminalBlocks returns every block with no successors (every "return
// block"). The original CanTM.cpp assumed a single terminal block ("the
// last block in iteration order" — see DESIGN.md, "Terminal block
// choice"); this façade exposes all of them so the compression engine
// can run an independent collect() walk from each.
func (self *Function) TerminalBlocks() []*Block {
	var out []*Block
	for _, bb := range self.Blocks {
		if len(bb.Succs) == 0 {
			out = append(out, bb)
		}
	}
	return out
}
