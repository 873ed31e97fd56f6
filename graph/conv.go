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

import "fmt"

// convOutSize implements spec.md §4.1's conv2d output-size rule for one
// spatial axis: valid padding drops (kernel-1) taps before striding;
// same padding strides the input size directly.
func convOutSize(in, kernel, stride int, padding Padding) int {
	if padding == PaddingValid {
		return ceilDiv(in-(kernel-1), stride)
	}
	return ceilDiv(in, stride)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Conv1DLayer is the 1-D convolution over a rank-2 ([length, channels])
// input.
type Conv1DLayer struct {
	Filters    int
	Kernel     int
	Stride     int
	Padding    Padding
	Activation ActivationID
	Weights    []float32 // [Kernel, inChannels, Filters]
	Bias       []float32 // [Filters]
}

func (l *Conv1DLayer) Kind() string { return "conv1d" }
func (l *Conv1DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 2 {
		return nil, fmt.Errorf("%w: conv1d expects rank 2 [length, channels], got %v", ErrInvalidGraph, in)
	}
	outLen := convOutSize(in[0], l.Kernel, l.Stride, l.Padding)
	return [][]int{{outLen, l.Filters}}, nil
}
func (l *Conv1DLayer) CanBeInplace() bool { return false }

// Conv2DLayer is channels-last 2-D convolution (spec.md §4.1, §4.4).
type Conv2DLayer struct {
	Filters      int
	KernelH      int
	KernelW      int
	StrideH      int
	StrideW      int
	Padding      Padding
	Activation   ActivationID
	Weights      []float32 // [KernelH, KernelW, inChannels, Filters]
	Bias         []float32 // [Filters]
}

func (l *Conv2DLayer) Kind() string { return "conv2d" }
func (l *Conv2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: conv2d expects rank 3 [H, W, C], got %v", ErrInvalidGraph, in)
	}
	outH := convOutSize(in[0], l.KernelH, l.StrideH, l.Padding)
	outW := convOutSize(in[1], l.KernelW, l.StrideW, l.Padding)
	return [][]int{{outH, outW, l.Filters}}, nil
}
func (l *Conv2DLayer) CanBeInplace() bool { return false }

// DepthwiseConv2DLayer: output channels = input channels * DepthMultiplier
// (spec.md §4.1).
type DepthwiseConv2DLayer struct {
	KernelH, KernelW   int
	StrideH, StrideW   int
	DepthMultiplier    int
	Padding            Padding
	Activation         ActivationID
	Weights            []float32 // [KernelH, KernelW, inChannels, DepthMultiplier]
	Bias               []float32
}

func (l *DepthwiseConv2DLayer) Kind() string { return "depthwiseConv2d" }
func (l *DepthwiseConv2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: depthwiseConv2d expects rank 3 [H, W, C], got %v", ErrInvalidGraph, in)
	}
	outH := convOutSize(in[0], l.KernelH, l.StrideH, l.Padding)
	outW := convOutSize(in[1], l.KernelW, l.StrideW, l.Padding)
	return [][]int{{outH, outW, in[2] * l.DepthMultiplier}}, nil
}

// CanBeInplace is true only when strides are at least as large as the
// kernel and there's no channel expansion, matching spec.md §4.4
// "DepthwiseConv2D... may be in-place when strides >= kernel and
// depth_multiplier == 1" (no output position ever re-reads an input cell
// another output position has already overwritten).
func (l *DepthwiseConv2DLayer) CanBeInplace() bool {
	return l.DepthMultiplier == 1 && l.StrideH >= l.KernelH && l.StrideW >= l.KernelW
}

// SeparableConv2DLayer is depthwise followed by a 1x1 pointwise
// convolution (spec.md §4.1, §4.4).
type SeparableConv2DLayer struct {
	KernelH, KernelW int
	StrideH, StrideW int
	DepthMultiplier  int
	Filters          int
	Padding          Padding
	Activation       ActivationID
	DepthwiseWeights []float32 // [KernelH, KernelW, inChannels, DepthMultiplier]
	PointwiseWeights []float32 // [1, 1, inChannels*DepthMultiplier, Filters]
	Bias             []float32
}

func (l *SeparableConv2DLayer) Kind() string { return "separableConv2d" }
func (l *SeparableConv2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: separableConv2d expects rank 3 [H, W, C], got %v", ErrInvalidGraph, in)
	}
	outH := convOutSize(in[0], l.KernelH, l.StrideH, l.Padding)
	outW := convOutSize(in[1], l.KernelW, l.StrideW, l.Padding)
	return [][]int{{outH, outW, l.Filters}}, nil
}
func (l *SeparableConv2DLayer) CanBeInplace() bool { return false }

// QuantizedInputConvStrided4x4WithReLULayer is the specialised uint8,
// 4x4-kernel, stride-4 fast path (spec.md §4.4). Preconditions
// (inputWidth % 16 == 0, xmmRegs > 14) are checked by the op compiler,
// not here, since they depend on CompilationSettings.
type QuantizedInputConvStrided4x4WithReLULayer struct {
	Filters int
	Weights []int8 // [4, 4, inChannels, Filters]
	Bias    []int32
	Scale   int32
}

func (l *QuantizedInputConvStrided4x4WithReLULayer) Kind() string {
	return "quantizedInputConvStrided4x4WithReLU"
}
func (l *QuantizedInputConvStrided4x4WithReLULayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: quantizedInputConvStrided4x4WithReLU expects rank 3 [H, W, C], got %v", ErrInvalidGraph, in)
	}
	outH := ceilDiv(in[0]-3, 4)
	outW := ceilDiv(in[1]-3, 4)
	return [][]int{{outH, outW, l.Filters}}, nil
}
func (l *QuantizedInputConvStrided4x4WithReLULayer) CanBeInplace() bool { return false }
