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

package stats

// EscapeMap records, for every value the pass has an opinion about,
// whether it may escape the enclosing transaction. This is a direct
// port of CanTM.cpp's fCanEscape: globals are unconditionally marked
// escapable at pass entry, and nothing else ever updates the map,
// because the original's computeEscape() was dead code — declared,
// never called. A real escape analysis is future work (see DESIGN.md,
// "Globals and escape"); this type exists so that seam is visible and
// testable rather than silently assumed.
type EscapeMap struct {
	escapable map[Escapable]bool
}

// Escapable is anything an EscapeMap can hold an opinion about. It is
// satisfied by ir.Value without an import cycle: cantm's Pass.Run
// passes the module's *ir.Global values in, which already implement
// Name() string.
type Escapable interface {
	Name() string
}

// NewEscapeMap returns an empty map.
func NewEscapeMap() *EscapeMap {
	return &EscapeMap{escapable: make(map[Escapable]bool)}
}

// MarkEscapable records v's escapability if it has not already been
// decided — mirrors CanTM::updateEscapability, which only ever writes a
// key once.
func (self *EscapeMap) MarkEscapable(v Escapable, escapable bool) {
	if _, ok := self.escapable[v]; !ok {
		self.escapable[v] = escapable
	}
}

// CanEscape reports v's recorded escapability, defaulting to false for
// anything never marked — mirrors CanTM::canEscape.
func (self *EscapeMap) CanEscape(v Escapable) bool {
	return self.escapable[v]
}

// computeEscape is a stub, exactly as it was in the original: a forward
// points-to analysis would live here. It is intentionally unreachable
// from the pass pipeline — see DESIGN.md's Open Question decision for
// "Globals and escape" — and exists only to document the seam.
func computeEscape(v Escapable) bool {
	return false
}
