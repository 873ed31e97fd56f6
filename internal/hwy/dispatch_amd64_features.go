//go:build amd64

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

import "golang.org/x/sys/cpu"

// HasSSE42 reports whether the host CPU implements SSE4.2. This is the
// feature gate CompilationSettings.UseSSE42 is checked and downgraded
// against.
func HasSSE42() bool { return cpu.X86.HasSSE42 }

// HasAVX2 reports whether the host CPU implements AVX2.
func HasAVX2() bool { return cpu.X86.HasAVX2 }

// HasFMA3 reports whether the host CPU implements three-operand FMA.
func HasFMA3() bool { return cpu.X86.HasFMA }

// HasF16C reports whether the host CPU can convert between float16 and
// float32 in hardware.
func HasF16C() bool { return cpu.X86.HasF16C }

// HasAVX512FP16 reports whether the host CPU implements AVX-512 together
// with the AVX-512 BF16 extension; the AVX-512 FP16 feature bit itself is
// not probed.
func HasAVX512FP16() bool { return cpu.X86.HasAVX512 && cpu.X86.HasAVX512BF16 }

// HasAVX512BF16 reports whether the host CPU implements the AVX-512 BF16
// extension.
func HasAVX512BF16() bool { return cpu.X86.HasAVX512BF16 }

// HasARMFP16 is always false on amd64 (ARM FP16 is ARM-specific).
func HasARMFP16() bool { return false }

// HasARMBF16 is always false on amd64 (ARM BF16 is ARM-specific).
func HasARMBF16() bool { return false }
