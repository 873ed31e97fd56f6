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

package compiler

import (
	"testing"

	"github.com/nncompile/compilednn/graph"
)

// TestCompileZeroPadding2DAsymmetric runs the compiled closure for a
// non-square, asymmetric pad (top=1, bottom=2, left=0, right=3) and checks
// both the zero-fill border and the placement of the copied interior,
// since a top/bottom or left/right axis swap would still produce the
// right output *size* but the wrong content.
func TestCompileZeroPadding2DAsymmetric(t *testing.T) {
	l := &graph.ZeroPadding2DLayer{Top: 1, Bottom: 2, Left: 0, Right: 3}
	node := &graph.Node{
		InputDims:  [][]int{{2, 2, 1}},
		OutputDims: [][]int{{5, 5, 1}}, // 2+1+2, 2+0+3
	}
	input := []float32{1, 2, 3, 4}
	output := make([]float32, 5*5*1)
	op, err := compileZeroPadding2D(l, node, input, output)
	if err != nil {
		t.Fatalf("compileZeroPadding2D: %v", err)
	}
	op.Run()

	want := [5][5]float32{
		{0, 0, 0, 0, 0},
		{1, 2, 0, 0, 0},
		{3, 4, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			got := output[y*5+x]
			if got != want[y][x] {
				t.Fatalf("output[%d][%d] = %v, want %v", y, x, got, want[y][x])
			}
		}
	}
}

// TestCompileCropping2DAsymmetric exercises the opposite operation: every
// edge cropped by a different amount, confirming the retained window is
// offset from (top, left), not centered or axis-swapped.
func TestCompileCropping2DAsymmetric(t *testing.T) {
	l := &graph.Cropping2DLayer{Top: 1, Bottom: 2, Left: 0, Right: 3}
	node := &graph.Node{
		InputDims:  [][]int{{8, 8, 1}},
		OutputDims: [][]int{{5, 5, 1}}, // 8-1-2, 8-0-3
	}
	input := make([]float32, 8*8)
	for i := range input {
		input[i] = float32(i)
	}
	output := make([]float32, 5*5)
	op, err := compileCropping2D(l, node, input, output)
	if err != nil {
		t.Fatalf("compileCropping2D: %v", err)
	}
	op.Run()

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			want := input[((y+1)*8+x)*1]
			if got := output[y*5+x]; got != want {
				t.Fatalf("output[%d][%d] = %v, want %v", y, x, got, want)
			}
		}
	}
}

// TestCompileUpSampling2DAsymmetricFactors checks nearest-neighbor
// upsampling with independent (2, 3) height/width factors: each source
// pixel must tile into a 2-tall, 3-wide block, not a uniform square.
func TestCompileUpSampling2DAsymmetricFactors(t *testing.T) {
	l := &graph.UpSampling2DLayer{SizeH: 2, SizeW: 3, Interpolation: graph.InterpNearest}
	node := &graph.Node{
		InputDims:  [][]int{{2, 1, 1}},
		OutputDims: [][]int{{4, 3, 1}},
	}
	input := []float32{10, 20} // row 0, row 1
	output := make([]float32, 4*3)
	op, err := compileUpSampling2D(l, node, input, output)
	if err != nil {
		t.Fatalf("compileUpSampling2D: %v", err)
	}
	op.Run()

	want := [4][3]float32{
		{10, 10, 10},
		{10, 10, 10},
		{20, 20, 20},
		{20, 20, 20},
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 3; x++ {
			if got := output[y*3+x]; got != want[y][x] {
				t.Fatalf("output[%d][%d] = %v, want %v", y, x, got, want[y][x])
			}
		}
	}
}

// TestCompileZeroPadding1DAsymmetric checks the 1D layer's independent
// left/right edges end to end through the compiled closure.
func TestCompileZeroPadding1DAsymmetric(t *testing.T) {
	l := &graph.ZeroPadding1DLayer{Left: 1, Right: 2}
	node := &graph.Node{
		InputDims: [][]int{{2, 2}},
	}
	input := []float32{1, 2, 3, 4}
	output := make([]float32, (2+1+2)*2)
	op, err := compileZeroPadding1D(l, node, input, output)
	if err != nil {
		t.Fatalf("compileZeroPadding1D: %v", err)
	}
	op.Run()

	want := []float32{0, 0, 1, 2, 3, 4, 0, 0, 0, 0}
	for i, w := range want {
		if output[i] != w {
			t.Fatalf("output[%d] = %v, want %v", i, output[i], w)
		}
	}
}
