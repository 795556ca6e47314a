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

// Package ir is the minimal read/write IR façade that the CanTM pass
// consumes. It stands in for a real compiler's module/function/value
// graph: SSA values, basic blocks, loads, stores, calls, allocas and
// phi-nodes, with just enough structure for an interprocedural
// load/store analysis to run over it. Alias analysis, dominator queries
// and every other "real" middle-end concern are out of scope here.
package ir

// Kind classifies the type of a Value for the pass's purposes. Real IRs
// carry a much richer type system; CanTM only ever asks three questions
// of a value's type, so that's all Kind distinguishes.
type Kind uint8

const (
	KindOther Kind = iota
	KindInteger
	KindPointer
	KindFunction
)

// Value is an opaque, hashable identity for an SSA definition, global,
// formal parameter or constant. Every concrete value type in this
// package is a pointer type, so Go's native interface equality already
// gives identity (not structural) comparison, and values are usable
// directly as map keys.
type Value interface {
	Name() string
	HasName() bool
	Kind() Kind
	IsInteger() bool
	IsPointer() bool
	IsFunction() bool
}

type valueBase struct {
	name string
	kind Kind
}

func (self *valueBase) Name() string {
	return self.name
}

func (self *valueBase) HasName() bool {
	return self.name != ""
}

func (self *valueBase) Kind() Kind {
	return self.kind
}

func (self *valueBase) IsInteger() bool {
	return self.kind == KindInteger
}

func (self *valueBase) IsPointer() bool {
	return self.kind == KindPointer
}

func (self *valueBase) IsFunction() bool {
	return self.kind == KindFunction
}

// Global is a module-scope variable. Globals are always pointer-typed
// and, per the escape stub (see internal/stats), always escapable.
type Global struct {
	valueBase
}

// NewGlobal creates a named global variable of pointer type.
func NewGlobal(name string) *Global {
	return &Global{valueBase{name: name, kind: KindPointer}}
}

// Param is a formal parameter of a Function.
type Param struct {
	valueBase
	Index int
}

// ConstInt is an integer constant, such as the encoded arguments CanTM
// builds for stm_reserve.
type ConstInt struct {
	valueBase
	Value int64
}

// NewConstInt builds an unnamed 32-bit signed integer constant.
func NewConstInt(v int64) *ConstInt {
	return &ConstInt{valueBase: valueBase{kind: KindInteger}, Value: v}
}
