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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitAtPreservesInstructionsAndEdges(t *testing.T) {
	m := NewModule("m")
	f := m.NewFunction("f", 0)
	bb := f.NewBlock()
	succ := f.NewBlock()
	bb.Br(succ)

	a := NewGlobal("a")
	bb.Load("l1", a)
	bb.Load("l2", a)
	bb.Store(a, a)

	tail := bb.SplitAt(1)

	require.Len(t, bb.Instrs, 1)
	require.Len(t, tail.Instrs, 2)
	require.Equal(t, []*Block{tail}, bb.Succs)
	require.Equal(t, []*Block{succ}, tail.Succs)
	require.Equal(t, []*Block{bb}, tail.Preds)
	require.Equal(t, []*Block{tail}, succ.Preds)

	for _, ins := range tail.Instrs {
		require.Equal(t, tail, ins.Block())
	}
}

func TestSplitAtZeroMovesEverything(t *testing.T) {
	f := NewModule("m").NewFunction("f", 0)
	bb := f.NewBlock()
	bb.Store(NewGlobal("a"), NewGlobal("v"))

	tail := bb.SplitAt(0)

	require.Empty(t, bb.Instrs)
	require.Len(t, tail.Instrs, 1)
}

func TestSplitAtOutOfRangePanics(t *testing.T) {
	f := NewModule("m").NewFunction("f", 0)
	bb := f.NewBlock()

	require.Panics(t, func() { bb.SplitAt(-1) })
	require.Panics(t, func() { bb.SplitAt(1) })
}

func TestTerminalBlocksFindsEveryReturn(t *testing.T) {
	f := NewModule("m").NewFunction("f", 0)
	entry := f.NewBlock()
	left := f.NewBlock()
	right := f.NewBlock()

	entry.CondBr(left, right)
	left.Ret()
	right.Ret()

	require.ElementsMatch(t, []*Block{left, right}, f.TerminalBlocks())
}

func TestFindFunctionAndDeclareReserve(t *testing.T) {
	m := NewModule("m")
	m.NewFunction("tx", 0)

	require.Nil(t, m.FindFunction("stm_reserve"))

	r1 := m.DeclareReserve("stm_reserve")
	require.NotNil(t, r1)

	r2 := m.DeclareReserve("stm_reserve")
	require.Same(t, r1, r2)
}

func TestInsertCallAtHeadAndMiddle(t *testing.T) {
	m := NewModule("m")
	f := m.NewFunction("f", 0)
	bb := f.NewBlock()
	a := NewGlobal("a")
	bb.Load("l1", a)
	bb.Load("l2", a)

	callee := m.NewFunction("callee", 0)
	call := InsertCall(bb, 1, callee, nil)

	require.Len(t, bb.Instrs, 3)
	require.Same(t, call, bb.Instrs[1])
	require.Equal(t, callee, call.Callee)
}

func TestFirstNonPhiIsAlwaysZero(t *testing.T) {
	f := NewModule("m").NewFunction("f", 0)
	bb := f.NewBlock()
	bb.Phi("p")

	require.Equal(t, 0, FirstNonPhi(bb))
}

func TestValueKindPredicates(t *testing.T) {
	g := NewGlobal("g")
	require.True(t, g.IsPointer())
	require.False(t, g.IsInteger())
	require.False(t, g.IsFunction())
	require.True(t, g.HasName())

	c := NewConstInt(42)
	require.True(t, c.IsInteger())
	require.False(t, c.HasName())
}

func TestModuleNewFunctionBuildsIndexedParams(t *testing.T) {
	m := NewModule("m")
	f := m.NewFunction("f", 2)

	require.Len(t, f.Params, 2)
	require.Equal(t, 0, f.Params[0].Index)
	require.Equal(t, 1, f.Params[1].Index)
	require.True(t, f.IsFunction())
}
