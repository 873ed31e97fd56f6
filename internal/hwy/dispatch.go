// Copyright 2025 go-highway Authors
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

package hwy

import "os"

// DispatchLevel identifies the packed-instruction set the current process
// was initialized to use. It is selected once at startup (see dispatch_*.go)
// and never changes for the lifetime of the process.
type DispatchLevel int

const (
	DispatchScalar DispatchLevel = iota
	DispatchSSE2
	DispatchSSE42
	DispatchAVX2
	DispatchAVX512
)

func (l DispatchLevel) String() string {
	switch l {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchSSE42:
		return "sse4.2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

var (
	currentLevel DispatchLevel
	currentWidth = 16
	currentName  = "scalar"
)

// CurrentLevel reports the dispatch level chosen at process start.
func CurrentLevel() DispatchLevel { return currentLevel }

// CurrentWidth reports the byte width of one Vec register at the current
// dispatch level (16 for SSE, 32 for AVX2, 64 for AVX-512).
func CurrentWidth() int { return currentWidth }

// CurrentName is a short human-readable name for the current dispatch level.
func CurrentName() string { return currentName }

// NoSimdEnv reports whether HWY_NO_SIMD disables packed dispatch, forcing
// the portable scalar path. Compiled code honours this the same way the
// library's own benchmarks do, so a suspect SIMD result can be isolated by
// re-running with the environment variable set.
func NoSimdEnv() bool {
	v := os.Getenv("HWY_NO_SIMD")
	return v != "" && v != "0"
}

// HasSME reports whether the Scalable Matrix Extension is available. The
// compiler targets x86/x86-64 only, so this is always
// false; it exists so shared code paths inherited from the vector library
// can be compiled without per-architecture guards.
func HasSME() bool { return false }
