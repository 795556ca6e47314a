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

package vectorizer

import (
	"os"
	"strconv"

	"github.com/klauspost/cpuid/v2"
)

const (
	_DefaultReqChainDepth = 6
	_DefaultSearchLimit   = 4000
	_DefaultMaxCandPairs  = 8
	_DefaultMaxInsts      = 500
	_DefaultMaxIter       = 10
)

// defaultVectorBits picks the widest vector register the host actually
// has, falling back to 128 (SSE-class) on anything without AVX2. The
// `CANTM_VECTOR_BITS` environment variable overrides detection, the way
// frugal's opts package lets FRUGAL_MAX_INLINE_DEPTH override a
// compile-time default.
var defaultVectorBits = parseOrDefault("CANTM_VECTOR_BITS", detectVectorBits())

func detectVectorBits() uint {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return 512
	case cpuid.CPU.Supports(cpuid.AVX2):
		return 256
	default:
		return 128
	}
}

func parseOrDefault(key string, def uint) uint {
	env := os.Getenv(key)
	if env == "" {
		return def
	}

	val, err := strconv.ParseUint(env, 0, 64)
	if err != nil {
		panic("cantm: invalid value for " + key)
	}

	return uint(val)
}
