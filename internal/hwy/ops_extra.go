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

// LoadSlice is Load without a fixed-length guarantee: it loads up to
// MaxLanes[T]() elements starting at src[0], taking fewer if src is shorter.
// Op compilers use this for the final, possibly-ragged strip of a loop.
func LoadSlice[T Lanes](src []T) Vec[T] {
	return Load(src)
}

// StoreSlice is Store's slice-oriented counterpart, mirroring LoadSlice.
func StoreSlice[T Lanes](v Vec[T], dst []T) {
	Store(v, dst)
}

// MulAdd is FMA under the name used by the matmul kernels: a*b + c.
func MulAdd[T Floats](a, b, c Vec[T]) Vec[T] {
	return FMA(a, b, c)
}

// Const broadcasts a float32 constant, converting to T's precision.
// Typed constant tables (see contrib/activation) are preferred over this
// for float64 specializations, since converting a float32 literal loses
// bits that typing the constant directly in float64 would keep.
func Const[T Floats](value float32) Vec[T] {
	return Set(T(value))
}

// ReduceMax returns the maximum lane in v. v must have at least one lane.
func ReduceMax[T Lanes](v Vec[T]) T {
	m := v.data[0]
	for _, x := range v.data[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// InterleaveLower interleaves the lower (first) half of a and b:
// [a0, b0, a1, b1, ...] taking elements from indices [0, n/2).
// This is the Go-level equivalent of unpcklps/unpcklpd, used by the matmul
// packer to transpose 4x4 (or 2x2) blocks during weight repacking.
func InterleaveLower[T Lanes](a, b Vec[T]) Vec[T] {
	n := len(a.data)
	if len(b.data) < n {
		n = len(b.data)
	}
	half := n / 2
	out := make([]T, n)
	for i := 0; i < half; i++ {
		out[2*i] = a.data[i]
		out[2*i+1] = b.data[i]
	}
	return Vec[T]{data: out}
}

// InterleaveUpper interleaves the upper (second) half of a and b:
// [a(n/2), b(n/2), a(n/2+1), b(n/2+1), ...].
// This is the Go-level equivalent of unpckhps/unpckhpd.
func InterleaveUpper[T Lanes](a, b Vec[T]) Vec[T] {
	n := len(a.data)
	if len(b.data) < n {
		n = len(b.data)
	}
	half := n / 2
	out := make([]T, n)
	for i := 0; i < half; i++ {
		out[2*i] = a.data[half+i]
		out[2*i+1] = b.data[half+i]
	}
	return Vec[T]{data: out}
}
