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

// Package vectorizer holds the basic-block vectorizer's knob bundle: a
// peer collaborator documented because it lives in the same repository,
// not because it is wired into the STM reservation pipeline.
package vectorizer

import "github.com/jaingaurav/cantm/internal/ir"

// Options is the vectorizer's configuration surface — a plain record,
// same shape as internal/opts.Options, with one entry point.
type Options struct {
	VectorBits                uint
	VectorizeInts             bool
	VectorizeFloats           bool
	VectorizePointers         bool
	VectorizeCasts            bool
	VectorizeMath             bool
	VectorizeFMA              bool
	VectorizeSelect           bool
	VectorizeGEP              bool
	VectorizeMemOps           bool
	AlignedOnly               bool
	ReqChainDepth             uint
	SearchLimit               uint
	MaxCandPairsForCycleCheck uint
	SplatBreaksChain          bool
	MaxInsts                  uint
	MaxIter                   uint
	NoMemOpBoost              bool
	FastDep                   bool
}

// GetDefaultOptions returns the knob bundle's defaults. VectorBits comes
// from detected hardware width (see defaults.go); every Vectorize* knob
// defaults to enabled, matching a vectorizer that tries everything
// until a candidate pair search proves too expensive, while
// AlignedOnly, SplatBreaksChain, NoMemOpBoost and FastDep default to
// disabled.
func GetDefaultOptions() Options {
	return Options{
		VectorBits:                defaultVectorBits,
		VectorizeInts:             true,
		VectorizeFloats:           true,
		VectorizePointers:         true,
		VectorizeCasts:            true,
		VectorizeMath:             true,
		VectorizeFMA:              true,
		VectorizeSelect:           true,
		VectorizeGEP:              true,
		VectorizeMemOps:           true,
		AlignedOnly:               false,
		ReqChainDepth:             _DefaultReqChainDepth,
		SearchLimit:               _DefaultSearchLimit,
		MaxCandPairsForCycleCheck: _DefaultMaxCandPairs,
		SplatBreaksChain:          false,
		MaxInsts:                  _DefaultMaxInsts,
		MaxIter:                   _DefaultMaxIter,
		NoMemOpBoost:              false,
		FastDep:                   false,
	}
}

// vectorize is the block-level entry point the original exposes. It is
// a stub: no pairing/packing search is implemented, since the STM
// reservation pipeline never calls it — see DESIGN.md, "Vectorizer
// knob bundle".
func vectorize(block *ir.Block, config Options) bool {
	return false
}
