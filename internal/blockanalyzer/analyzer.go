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

package blockanalyzer

import (
	"fmt"

	"github.com/jaingaurav/cantm/internal/access"
	"github.com/jaingaurav/cantm/internal/ir"
	"github.com/jaingaurav/cantm/internal/stats"
)

// Enqueuer is the interprocedural worklist's consumer-facing surface: it
// lets the block analyzer hand off newly discovered callees without
// depending on the worklist package (which depends on this one).
type Enqueuer interface {
	Enqueue(f *ir.Function)
}

// IndirectCallError occurs when a call instruction has no resolvable
// callee. Resolving call targets by following the callee pointer is
// unsafe once that pointer can be nil, so this is reported as a hard
// error rather than walked past silently. The root package re-exports
// this as cantm.IndirectCallError.
type IndirectCallError struct {
	Block int
}

func (self IndirectCallError) Error() string {
	return fmt.Sprintf("blockanalyzer: indirect call in block %d has no resolvable callee", self.Block)
}

// AliasHint lets a caller plug in an alias query at the exact point
// CanTM.cpp asked its AliasSetTracker whether a load or alloca had a
// known alias set. A full alias analysis is a separate, much larger
// pass, so the default hint always answers false; the result is
// observed but never changes analysis behavior, leaving the seam in
// place for a caller that does have one.
type AliasHint func(v ir.Value) (aliased bool)

func noAliasHint(ir.Value) bool {
	return false
}

// Trace receives one formatted line per instruction-level decision
// AnalyzeBlock makes, when a caller wants to watch the walk happen
// instead of only seeing the pass-level summary. A nil Trace is a no-op.
type Trace func(format string, args ...interface{})

func (t Trace) Emit(format string, args ...interface{}) {
	if t == nil {
		return
	}
	t(format, args...)
}

// Context bundles everything AnalyzeBlock needs beyond the block and
// state it is filling in: where to hand off newly discovered callees,
// where to report counters, an optional alias hint, and an optional
// trace sink.
type Context struct {
	Enqueuer Enqueuer
	Counters *stats.Counters
	Hint     AliasHint
	Trace    Trace
}

// AnalyzeBlock walks bb's instructions, populating an Access Set and
// recording it into state once the block's tail is reached — whether
// that tail is the block's own end or a split point introduced by a
// call or alloca. Newly discovered callees are handed to ctx.Enqueuer;
// if ctx.Hint is nil, noAliasHint is used.
func AnalyzeBlock(bb *ir.Block, state *PerFunctionState, ctx *Context) error {
	hint := ctx.Hint
	if hint == nil {
		hint = noAliasHint
	}

	counters := ctx.Counters
	as := access.New(counters)

	for i := 0; i < len(bb.Instrs); i++ {
		switch ins := bb.Instrs[i].(type) {

		case *ir.LoadInst:
			counters.LoadsTotal++
			hint(ins.Addr)

			if ins.Addr.HasName() {
				if as.InsertLoad(ins.Addr) {
					ctx.Trace.Emit("block %d: load of %s recorded", bb.ID, ins.Addr.Name())
				} else {
					counters.LoadsSkipped++
					ctx.Trace.Emit("block %d: load of %s skipped, already a load or store", bb.ID, ins.Addr.Name())
				}
			} else {
				counters.LoadsUnprocessed++
			}

		case *ir.StoreInst:
			counters.StoresTotal++

			if ins.Addr.HasName() {
				if as.InsertStore(ins.Addr) {
					ctx.Trace.Emit("block %d: store to %s recorded", bb.ID, ins.Addr.Name())
				} else {
					counters.StoresSkipped++
				}
			} else {
				counters.StoresUnprocessed++
			}

		case *ir.CallInst:
			if i != 0 {
				ctx.Trace.Emit("block %d: splitting before call %s", bb.ID, ins.Name())
				tail := bb.SplitAt(i)
				return analyzeTail(tail, state, ctx, as)
			}

			if ins.Callee == nil {
				return IndirectCallError{Block: bb.ID}
			}

			for _, arg := range ins.Args {
				counters.LoadsTotal++
				counters.LoadsFromFunctionCall++

				if arg.HasName() {
					if as.InsertLoad(arg) {
						ctx.Trace.Emit("block %d: call argument %s treated as load", bb.ID, arg.Name())
					} else {
						counters.LoadsSkipped++
					}
				} else {
					counters.LoadsUnprocessed++
				}
			}

			state.CallBoundary.Add(bb)
			ctx.Trace.Emit("block %d: call boundary at %s, enqueueing callee %s", bb.ID, ins.Name(), ins.Callee.Name())
			ctx.Enqueuer.Enqueue(ins.Callee)

			if len(bb.Instrs) > 1 {
				tail := bb.SplitAt(1)
				return analyzeTail(tail, state, ctx, as)
			}

			return finish(bb, state, as)

		case *ir.AllocaInst:
			hint(ins)

			if i != len(bb.Instrs)-1 {
				ctx.Trace.Emit("block %d: splitting after alloca %s", bb.ID, ins.Name())
				tail := bb.SplitAt(i + 1)
				return analyzeTail(tail, state, ctx, as)
			}

			return finish(bb, state, as)

		default:
			// arithmetic, compares, casts, selects, branches, returns: observed, not recorded
		}
	}

	return finish(bb, state, as)
}

func analyzeTail(tail *ir.Block, state *PerFunctionState, ctx *Context, as *access.Set) error {
	if err := finish(tail.Preds[0], state, as); err != nil {
		return err
	}

	return AnalyzeBlock(tail, state, ctx)
}

func finish(bb *ir.Block, state *PerFunctionState, as *access.Set) error {
	if !as.Empty() {
		as.Freeze()
		state.Blocks[bb] = as
	}

	return nil
}
