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

// Package tensor is the dense N-D array view used throughout the
// compiler: a flat backing slice plus a dimension list, channels-last.
package tensor

import "fmt"

// View is a dense N-D array of float32, stored contiguously in row-major
// order. A view never owns storage longer than its backing slice's
// lifetime; Data is always exactly NumElements() long.
type View struct {
	Data []float32
	Dims []int
}

// QView is View's uint8 counterpart, used only for quantized model inputs
// (spec.md §3: "uint8 for quantised inputs").
type QView struct {
	Data []uint8
	Dims []int
}

// New allocates a zeroed View with the given dimensions.
func New(dims ...int) View {
	n := numElements(dims)
	return View{Data: make([]float32, n), Dims: append([]int(nil), dims...)}
}

// Rank returns the number of dimensions.
func (v View) Rank() int { return len(v.Dims) }

// NumElements returns the product of all dimensions.
func (v View) NumElements() int { return numElements(v.Dims) }

// Reshape returns a View over the same backing storage with new
// dimensions. It fails if the element count would change.
func (v View) Reshape(dims ...int) (View, error) {
	if numElements(dims) != len(v.Data) {
		return View{}, fmt.Errorf("tensor: reshape %v -> %v changes element count (%d != %d)", v.Dims, dims, len(v.Data), numElements(dims))
	}
	return View{Data: v.Data, Dims: append([]int(nil), dims...)}, nil
}

func numElements(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// DimsEqual reports whether two dimension lists are identical.
func DimsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
