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

package cantm

import (
	"github.com/jaingaurav/cantm/internal/blockanalyzer"
	"github.com/jaingaurav/cantm/internal/instrument"
)

// IndirectCallError occurs when a call instruction has no resolvable
// callee. Following a nil called-function pointer would be undefined
// behavior in a real compiler IR, so this pass reports it as an error
// instead of walking past it.
type IndirectCallError = blockanalyzer.IndirectCallError

// MalformedIRError occurs when the pass encounters IR it assumes is
// well-formed and is not — currently, a reserve symbol name that
// collides with a function the host module already gave a body. This
// is treated as programmer error, not something the pass retries or
// works around.
type MalformedIRError = instrument.MalformedIRError
