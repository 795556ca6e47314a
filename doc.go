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

// Package cantm is a whole-program IR instrumentation pass for software
// transactional memory. Given one or more transactional entry functions
// identified by name substring, it discovers the memory locations each
// reachable basic block may load from or store to, removes accesses
// already reserved by a dominating predecessor or an enclosing caller,
// and inserts a single stm_reserve runtime call at the head of every
// block still left with something to reserve.
//
// The pass consumes a small IR façade (internal/ir) that stands in for
// a real compiler's module/function/value graph. Alias analysis,
// dominator queries, and machine-code generation are out of scope: a
// host embedding this pass against a real compiler IR owns the
// translation into and out of that façade.
//
//	p := cantm.NewPass()
//	changed, err := p.Run(module)
//
// See internal/vectorizer for the basic-block vectorizer's
// configuration surface — a peer collaborator documented here because
// it ships in the same repository, not because this package calls it.
package cantm
