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

import "fmt"

// Module is the whole-program unit the pass runs over: its function
// table and global variable table.
type Module struct {
	Name      string
	Functions []*Function
	Globals   []*Global
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// NewFunction declares a new function in the module and returns it.
// Each formal parameter is given a name ("%N") since the analysis only
// ever treats named values as candidate load/store addresses — an
// unnamed parameter could never be recorded or reserved.
func (self *Module) NewFunction(name string, numParams int) *Function {
	f := &Function{valueBase: valueBase{name: name, kind: KindFunction}}
	for i := 0; i < numParams; i++ {
		f.Params = append(f.Params, &Param{valueBase: valueBase{name: fmt.Sprintf("%%%d", i), kind: KindPointer}, Index: i})
	}
	self.Functions = append(self.Functions, f)
	return f
}

// NewGlobal declares a new global variable in the module.
func (self *Module) NewGlobal(name string) *Global {
	g := NewGlobal(name)
	self.Globals = append(self.Globals, g)
	return g
}

// FindFunction looks up a function by exact name, returning nil if the
// module has none by that name. This is how the pass resolves the
// stm_reserve runtime symbol — by name, not (as the original did) by
// grabbing the module's first function.
func (self *Module) FindFunction(name string) *Function {
	for _, f := range self.Functions {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// DeclareReserve finds or declares the stm_reserve runtime symbol. It
// is variadic in spirit (the argument count varies per call site); the
// façade models it as a function that accepts any number of pointer
// arguments.
func (self *Module) DeclareReserve(name string) *Function {
	if f := self.FindFunction(name); f != nil {
		return f
	}

	f := &Function{valueBase: valueBase{name: name, kind: KindFunction}}
	self.Functions = append(self.Functions, f)
	return f
}

// InsertCall inserts a call to callee with args at position i of bb
// (before any existing instruction at that position), and returns the
// new instruction. No existing instructions are removed.
func InsertCall(bb *Block, i int, callee *Function, args []Value) *CallInst {
	if i < 0 || i > len(bb.Instrs) {
		panic("ir: insert index out of range")
	}

	call := &CallInst{
		instrBase: instrBase{block: bb},
		Callee:    callee,
		Args:      args,
	}

	bb.Instrs = append(bb.Instrs, nil)
	copy(bb.Instrs[i+1:], bb.Instrs[i:])
	bb.Instrs[i] = call
	return call
}

// FirstNonPhi returns the index, within bb.Instrs, of the first
// instruction that is not a phi — i.e. the canonical insertion point
// for instrumentation. Since Phis are tracked separately from Instrs in
// this façade, that index is always 0; the method exists so call sites
// read the same way a real IR's "skip leading phis" walk would.
func FirstNonPhi(bb *Block) int {
	return 0
}
