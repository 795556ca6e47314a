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
	"fmt"
	"io"
)

// config is the pass's resolved configuration. The zero value is never
// used directly; NewPass always starts from defaultConfig() and applies
// every Option in order, mirroring frugal's opts.Options pattern.
type config struct {
	auxRoots     []string
	primaryRoots []string
	collectStats bool
	trace        io.Writer
	reserveName  string
}

func defaultConfig() *config {
	return &config{
		auxRoots:     []string{"foo"},
		primaryRoots: []string{"tx"},
		collectStats: true,
		reserveName:  "stm_reserve",
	}
}

// Option is the property setter function for a Pass's config.
type Option func(*config)

// WithAuxiliaryRoots overrides the name substrings that mark auxiliary
// transactional roots. They are always analyzed; the last auxiliary
// match becomes the final compression root only when no primary root
// matches. The default is {"foo"}.
func WithAuxiliaryRoots(substrings ...string) Option {
	return func(c *config) { c.auxRoots = substrings }
}

// WithPrimaryRoots overrides the name substrings that mark the primary
// transactional root: the first function matching one of these wins as
// "the" root used for final top-level compression, and discovery stops
// there. The default is {"tx"}.
func WithPrimaryRoots(substrings ...string) Option {
	return func(c *config) { c.primaryRoots = substrings }
}

// WithStats enables or disables statistics collection. Disabling it
// does not change analysis results — every counter increment is a
// no-cost bookkeeping step — it only controls whether Pass.Stats
// returns the counters or nil.
//
// Deprecated: statistics collection has no measurable cost; this option
// exists for parity with frugal's deprecated JIT toggles and may be
// removed once nothing depends on disabling it.
func WithStats(enabled bool) Option {
	return func(c *config) { c.collectStats = enabled }
}

// WithTrace streams one line per instruction walked and per compression
// decision made to w, plus a handful of pass-level summary lines. It is
// opt-in and writer-directed, rather than an always-on stderr narration.
func WithTrace(w io.Writer) Option {
	return func(c *config) { c.trace = w }
}

// WithReserveSymbol overrides the module-level symbol name the
// instrumenter resolves and calls (default "stm_reserve"). The pass
// never synthesizes a body for it, only a declaration: it looks the
// symbol up, or declares an uninitialized one if the host module
// doesn't already have it.
func WithReserveSymbol(name string) Option {
	if name == "" {
		panic(fmt.Sprintf("cantm: invalid reserve symbol name: %q", name))
	}

	return func(c *config) { c.reserveName = name }
}
