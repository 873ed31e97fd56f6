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

import (
	"errors"
	"testing"
)

func newInputModel(t *testing.T, dims ...int) (*Model, TensorLocation) {
	t.Helper()
	m := &Model{}
	idx, err := m.AddNode(&InputLayer{Dims: dims}, nil)
	if err != nil {
		t.Fatalf("AddNode(input): %v", err)
	}
	return m, TensorLocation{NodeIndex: idx, OutputIndex: 0}
}

func TestConv2DValidPadding(t *testing.T) {
	cases := []struct {
		name          string
		inH, inW      int
		kh, kw        int
		sh, sw        int
		wantH, wantW  int
	}{
		{"3x3 stride1 on 5x5", 5, 5, 3, 3, 1, 1, 3, 3},
		{"3x3 stride2 on 7x7", 7, 7, 3, 3, 2, 2, 3, 3},
		{"1x1 stride1 on 4x4", 4, 4, 1, 1, 1, 1, 4, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, in := newInputModel(t, c.inH, c.inW, 1)
			layer := &Conv2DLayer{Filters: 2, KernelH: c.kh, KernelW: c.kw, StrideH: c.sh, StrideW: c.sw, Padding: PaddingValid}
			idx, err := m.AddNode(layer, []TensorLocation{in})
			if err != nil {
				t.Fatalf("AddNode(conv2d): %v", err)
			}
			dims := m.Nodes[idx].OutputDims[0]
			if dims[0] != c.wantH || dims[1] != c.wantW || dims[2] != 2 {
				t.Fatalf("got dims %v, want [%d %d 2]", dims, c.wantH, c.wantW)
			}
		})
	}
}

func TestConv2DSamePadding(t *testing.T) {
	m, in := newInputModel(t, 7, 9, 3)
	layer := &Conv2DLayer{Filters: 4, KernelH: 3, KernelW: 3, StrideH: 2, StrideW: 3, Padding: PaddingSame}
	idx, err := m.AddNode(layer, []TensorLocation{in})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	dims := m.Nodes[idx].OutputDims[0]
	// out_h = ceil(in_h / stride_h), per spec.md §8.
	if dims[0] != 4 || dims[1] != 3 {
		t.Fatalf("got dims %v, want [4 3 4]", dims)
	}
}

func TestDepthwiseConv2DChannelMultiplier(t *testing.T) {
	m, in := newInputModel(t, 8, 8, 3)
	layer := &DepthwiseConv2DLayer{KernelH: 3, KernelW: 3, StrideH: 1, StrideW: 1, DepthMultiplier: 2, Padding: PaddingValid}
	idx, err := m.AddNode(layer, []TensorLocation{in})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	dims := m.Nodes[idx].OutputDims[0]
	if dims[2] != 6 {
		t.Fatalf("got %d output channels, want 6", dims[2])
	}
}

func TestConcatenateAxisLast(t *testing.T) {
	m, in1 := newInputModel(t, 1, 2)
	in2idx, err := m.AddNode(&InputLayer{Dims: []int{1, 3}}, nil)
	if err != nil {
		t.Fatalf("AddNode(input2): %v", err)
	}
	in2 := TensorLocation{NodeIndex: in2idx, OutputIndex: 0}
	idx, err := m.AddNode(&ConcatenateLayer{Axis: -1}, []TensorLocation{in1, in2})
	if err != nil {
		t.Fatalf("AddNode(concatenate): %v", err)
	}
	dims := m.Nodes[idx].OutputDims[0]
	if dims[0] != 1 || dims[1] != 5 {
		t.Fatalf("got dims %v, want [1 5]", dims)
	}
}

func TestConcatenateRejectsMismatchedOffAxis(t *testing.T) {
	m, in1 := newInputModel(t, 1, 2)
	in2idx, err := m.AddNode(&InputLayer{Dims: []int{2, 3}}, nil)
	if err != nil {
		t.Fatalf("AddNode(input2): %v", err)
	}
	in2 := TensorLocation{NodeIndex: in2idx, OutputIndex: 0}
	_, err = m.AddNode(&ConcatenateLayer{Axis: -1}, []TensorLocation{in1, in2})
	if !errors.Is(err, ErrInvalidGraph) {
		t.Fatalf("expected ErrInvalidGraph, got %v", err)
	}
}

func TestFlattenPreservesElementCount(t *testing.T) {
	m, in := newInputModel(t, 2, 3, 4)
	idx, err := m.AddNode(&FlattenLayer{}, []TensorLocation{in})
	if err != nil {
		t.Fatalf("AddNode(flatten): %v", err)
	}
	dims := m.Nodes[idx].OutputDims[0]
	if len(dims) != 1 || dims[0] != 24 {
		t.Fatalf("got dims %v, want [24]", dims)
	}
}

func TestReshapeRejectsElementCountChange(t *testing.T) {
	m, in := newInputModel(t, 2, 3)
	_, err := m.AddNode(&ReshapeLayer{TargetDims: []int{4, 2}}, []TensorLocation{in})
	if !errors.Is(err, ErrInvalidGraph) {
		t.Fatalf("expected ErrInvalidGraph, got %v", err)
	}
}

func TestZeroPadding2DIdentityIsInplace(t *testing.T) {
	l := &ZeroPadding2DLayer{}
	if !l.CanBeInplace() {
		t.Fatalf("all-zero zeroPadding2d should report CanBeInplace")
	}
	l2 := &ZeroPadding2DLayer{Top: 1}
	if l2.CanBeInplace() {
		t.Fatalf("non-trivial zeroPadding2d must not report CanBeInplace")
	}
}

func TestUpSampling2DIdentitySize(t *testing.T) {
	m, in := newInputModel(t, 2, 2, 1)
	layer := &UpSampling2DLayer{SizeH: 1, SizeW: 1, Interpolation: InterpNearest}
	idx, err := m.AddNode(layer, []TensorLocation{in})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if !layer.CanBeInplace() {
		t.Fatalf("upSampling2d size (1,1) should be identity/in-place")
	}
	dims := m.Nodes[idx].OutputDims[0]
	if dims[0] != 2 || dims[1] != 2 {
		t.Fatalf("got dims %v, want [2 2 1]", dims)
	}
}

func TestCroppingZeroIsInplace(t *testing.T) {
	l := &Cropping2DLayer{}
	if !l.CanBeInplace() {
		t.Fatalf("all-zero cropping2d should report CanBeInplace")
	}
}

func TestRejectsZeroDimension(t *testing.T) {
	m := &Model{}
	_, err := m.AddNode(&InputLayer{Dims: []int{0, 3}}, nil)
	if !errors.Is(err, ErrInvalidGraph) {
		t.Fatalf("expected ErrInvalidGraph for zero dimension, got %v", err)
	}
}

func TestModelValidate(t *testing.T) {
	m, in := newInputModel(t, 4)
	idx, err := m.AddNode(&DenseLayer{Units: 4, Weights: identity4(), Bias: make([]float32, 4)}, []TensorLocation{in})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	m.Inputs = []TensorLocation{in}
	m.Outputs = []TensorLocation{{NodeIndex: idx, OutputIndex: 0}}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func identity4() []float32 {
	w := make([]float32, 16)
	for i := 0; i < 4; i++ {
		w[i*4+i] = 1
	}
	return w
}
