// Copyright 2026 The CompiledNN Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compilednn

import "github.com/nncompile/compilednn/internal/hwy"

// CompilationSettings controls which ISA extensions a compile may use and
// a couple of numeric-approximation toggles (spec.md §3). Every field
// defaults to its most permissive value; Constrict then downgrades any
// field the host CPU cannot actually back, mirroring the original's
// CompilationSettings::constrict() (grounded on
// original_source/Src/CompiledNN/CompiledNN/CompilationSettings.cpp).
type CompilationSettings struct {
	UseX64   bool
	UseSSE42 bool
	UseAVX2  bool
	UseFMA3  bool

	UseExpApproxInSigmoid bool
	UseExpApproxInTanh    bool

	// Debug is carried in the settings (spec.md §3), but no compile step
	// reads it: it has no effect on the compiled network.
	Debug bool

	// XMMRegs caps how many SIMD registers an op compiler may assume are
	// free for its own accumulators (spec.md §3, §4.9). It is passed to
	// the op compilers as is; no activation.NeededSpares reservation is
	// subtracted from it. Defaults to 16, the amd64 XMM/YMM
	// file size; the quantized conv fast path additionally requires more
	// than 14 to be available (spec.md §4.4).
	XMMRegs int
}

// DefaultSettings returns the most permissive settings: every ISA
// extension enabled, no approximations, debug off. Call Constrict to
// downgrade it to what the host actually supports.
func DefaultSettings() CompilationSettings {
	return CompilationSettings{
		UseX64:   true,
		UseSSE42: true,
		UseAVX2:  true,
		UseFMA3:  true,
		XMMRegs:  16,
	}
}

// Constrict downgrades every ISA field the host CPU cannot back. It never
// upgrades a field the caller already disabled.
func (s *CompilationSettings) Constrict() {
	if s.UseSSE42 && !hwy.HasSSE42() {
		s.UseSSE42 = false
	}
	if s.UseAVX2 && !hwy.HasAVX2() {
		s.UseAVX2 = false
	}
	if s.UseFMA3 && !hwy.HasFMA3() {
		s.UseFMA3 = false
	}
	// UseX64 has no Go-side equivalent to downgrade: this module only
	// ever targets the build's native GOARCH, and there is no 32-bit x86
	// build of this package to fall back to.
	if s.XMMRegs <= 0 {
		s.XMMRegs = 16
	}
}
