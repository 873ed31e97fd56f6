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

// Package hwy is the register-level code-generation surface used by the
// compiler: a portable vector type backed by the widest SIMD register the
// current dispatch level offers, plus the handful of packed operations
// (load/store/arithmetic/FMA/reduction) that operation compilers emit
// against. The element kernels are the scalar loops in ops_base.go, which
// has no build tag and is used by every build; ops_avx2.go and
// ops_avx512.go, built only on amd64 with GOEXPERIMENT=simd, add standalone
// archsimd helpers that Vec does not use.
package hwy

// Lanes is the set of element types a Vec can hold.
type Lanes interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Floats is the subset of Lanes that supports division, sqrt and FMA.
type Floats interface {
	~float32 | ~float64
}

// Vec is a vector register of up to MaxLanes[T]() elements of type T.
// Its width tracks the current dispatch level: CurrentWidth() bytes.
type Vec[T Lanes] struct {
	data []T
}

// NumLanes returns the number of valid elements held by v.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Mask is a per-lane boolean produced by a vector comparison.
type Mask[T Lanes] struct {
	bits []bool
}

// MaxLanes returns the number of T elements that fit in one vector register
// at the current dispatch level.
func MaxLanes[T Lanes]() int {
	var zero T
	elemSize := sizeOfLane(zero)
	n := currentWidth / elemSize
	if n < 1 {
		n = 1
	}
	return n
}

func sizeOfLane[T Lanes](v T) int {
	switch any(v).(type) {
	case float32, int32, uint32:
		return 4
	case float64, int64, uint64:
		return 8
	case Float16, BFloat16, int16, uint16:
		return 2
	case int8, uint8:
		return 1
	default:
		return 4
	}
}
