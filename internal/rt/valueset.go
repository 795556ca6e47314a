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

// Package rt holds small deterministic-ordering helpers shared by the
// analysis and compression engines. Go map iteration order is
// intentionally randomized, but reproducible diagnostic output and
// stable stm_reserve argument ordering matter here, so every set
// exposed outside a single function call is sorted by a stable key
// before it is walked.
package rt

import (
	"fmt"
	"sort"
	"strings"
)

// Named is the minimal surface a set element must expose for
// deterministic iteration: a stable sort key and a display name.
type Named interface {
	Name() string
}

// ValueSet is an insertion-agnostic, identity-keyed set of comparable
// elements. Iteration via Sorted is ordered by a string key supplied
// by the caller; elements with equal keys (unnamed or same-named
// values) have no defined relative order.
type ValueSet[T comparable] map[T]struct{}

// NewValueSet builds an empty set.
func NewValueSet[T comparable]() ValueSet[T] {
	return make(ValueSet[T])
}

// Add inserts v, returning whether the set grew.
func (self ValueSet[T]) Add(v T) bool {
	if _, ok := self[v]; ok {
		return false
	}
	self[v] = struct{}{}
	return true
}

// Remove deletes v, returning whether it was present.
func (self ValueSet[T]) Remove(v T) bool {
	if _, ok := self[v]; !ok {
		return false
	}
	delete(self, v)
	return true
}

// Has reports whether v is a member.
func (self ValueSet[T]) Has(v T) bool {
	_, ok := self[v]
	return ok
}

// Clone returns a shallow copy.
func (self ValueSet[T]) Clone() ValueSet[T] {
	out := make(ValueSet[T], len(self))
	for v := range self {
		out[v] = struct{}{}
	}
	return out
}

// IntersectInPlace removes from self every member not also present in
// other — used by the compression engine to fold a join predecessor's
// accumulator into the running one: a value only survives a CFG join if
// every incoming path already covered it. Deleting the map key
// currently being ranged over is safe per the language spec; self is
// mutated, not replaced, so callers holding the same map see the result
// without a reassignment.
func IntersectInPlace[T comparable](self ValueSet[T], other ValueSet[T]) {
	for v := range self {
		if !other.Has(v) {
			delete(self, v)
		}
	}
}

// Sorted returns the set's members ordered by key(v). Members with
// equal keys keep the order in which map iteration produced them, so
// their relative order can differ between calls, even on an unmodified
// set.
func Sorted[T comparable](self ValueSet[T], key func(T) string) []T {
	out := make([]T, 0, len(self))

	for v := range self {
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) < key(out[j])
	})

	return out
}

// Dump renders the set as a sorted, comma-joined list of names, for
// debug output.
func Dump[T interface {
	Named
	comparable
}](self ValueSet[T]) string {
	names := make([]string, 0, len(self))

	for v := range self {
		names = append(names, v.Name())
	}

	sort.Strings(names)
	return fmt.Sprintf("{%s}", strings.Join(names, ", "))
}
