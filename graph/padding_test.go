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

package graph

import "testing"

// TestZeroPadding2DAsymmetric checks a non-square, asymmetric padding
// spec (top=1, bottom=2, left=0, right=3) against a hand-computed output
// shape, since every other padding test in this package happens to use
// equal edges and would miss a top/bottom or left/right swap bug.
func TestZeroPadding2DAsymmetric(t *testing.T) {
	l := &ZeroPadding2DLayer{Top: 1, Bottom: 2, Left: 0, Right: 3}
	node := &Node{InputDims: [][]int{{4, 4, 2}}}
	dims, err := l.CalcOutputDimensions(node)
	if err != nil {
		t.Fatalf("CalcOutputDimensions: %v", err)
	}
	want := []int{4 + 1 + 2, 4 + 0 + 3, 2}
	if dims[0][0] != want[0] || dims[0][1] != want[1] || dims[0][2] != want[2] {
		t.Fatalf("got %v, want %v", dims[0], want)
	}
	if l.CanBeInplace() {
		t.Fatal("asymmetric padding changes tensor size, must not be inplace-eligible")
	}
}

// TestCropping2DAsymmetric mirrors the padding case on the opposite
// operation: cropping with unequal edges on every side.
func TestCropping2DAsymmetric(t *testing.T) {
	l := &Cropping2DLayer{Top: 1, Bottom: 2, Left: 0, Right: 3}
	node := &Node{InputDims: [][]int{{8, 8, 1}}}
	dims, err := l.CalcOutputDimensions(node)
	if err != nil {
		t.Fatalf("CalcOutputDimensions: %v", err)
	}
	want := []int{8 - 1 - 2, 8 - 0 - 3, 1}
	if dims[0][0] != want[0] || dims[0][1] != want[1] || dims[0][2] != want[2] {
		t.Fatalf("got %v, want %v", dims[0], want)
	}
}

// TestUpSampling2DAsymmetricFactors checks a non-square upsample factor
// (2, 3): height and width must scale independently, not by the same
// factor.
func TestUpSampling2DAsymmetricFactors(t *testing.T) {
	l := &UpSampling2DLayer{SizeH: 2, SizeW: 3}
	node := &Node{InputDims: [][]int{{3, 2, 4}}}
	dims, err := l.CalcOutputDimensions(node)
	if err != nil {
		t.Fatalf("CalcOutputDimensions: %v", err)
	}
	want := []int{3 * 2, 2 * 3, 4}
	if dims[0][0] != want[0] || dims[0][1] != want[1] || dims[0][2] != want[2] {
		t.Fatalf("got %v, want %v", dims[0], want)
	}
	if l.CanBeInplace() {
		t.Fatal("a real (non-1x1) upsample factor must never be inplace-eligible")
	}
}

// TestZeroPadding1DAsymmetric checks the 1D padding layer's independent
// left/right edges.
func TestZeroPadding1DAsymmetric(t *testing.T) {
	l := &ZeroPadding1DLayer{Left: 2, Right: 5}
	node := &Node{InputDims: [][]int{{10, 3}}}
	dims, err := l.CalcOutputDimensions(node)
	if err != nil {
		t.Fatalf("CalcOutputDimensions: %v", err)
	}
	if dims[0][0] != 17 || dims[0][1] != 3 {
		t.Fatalf("got %v, want [17 3]", dims[0])
	}
}
