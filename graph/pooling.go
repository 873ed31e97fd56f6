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

// MaxPooling1DLayer reduces over a sliding window along the one spatial
// axis of a rank-2 [length, channels] tensor.
type MaxPooling1DLayer struct {
	PoolSize, Stride int
	Padding          Padding
}

func (l *MaxPooling1DLayer) Kind() string { return "maxPooling1d" }
func (l *MaxPooling1DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 2 {
		return nil, fmt.Errorf("%w: maxPooling1d expects rank 2, got %v", ErrInvalidGraph, in)
	}
	return [][]int{{convOutSize(in[0], l.PoolSize, l.Stride, l.Padding), in[1]}}, nil
}
func (l *MaxPooling1DLayer) CanBeInplace() bool { return false }

type AveragePooling1DLayer struct {
	PoolSize, Stride int
	Padding          Padding
}

func (l *AveragePooling1DLayer) Kind() string { return "averagePooling1d" }
func (l *AveragePooling1DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 2 {
		return nil, fmt.Errorf("%w: averagePooling1d expects rank 2, got %v", ErrInvalidGraph, in)
	}
	return [][]int{{convOutSize(in[0], l.PoolSize, l.Stride, l.Padding), in[1]}}, nil
}
func (l *AveragePooling1DLayer) CanBeInplace() bool { return false }

// MaxPooling2DLayer and AveragePooling2DLayer pool over [H, W] of a
// channels-last rank-3 tensor (spec.md §4.6).
type MaxPooling2DLayer struct {
	PoolH, PoolW     int
	StrideH, StrideW int
	Padding          Padding
}

func (l *MaxPooling2DLayer) Kind() string { return "maxPooling2d" }
func (l *MaxPooling2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: maxPooling2d expects rank 3, got %v", ErrInvalidGraph, in)
	}
	outH := convOutSize(in[0], l.PoolH, l.StrideH, l.Padding)
	outW := convOutSize(in[1], l.PoolW, l.StrideW, l.Padding)
	return [][]int{{outH, outW, in[2]}}, nil
}
func (l *MaxPooling2DLayer) CanBeInplace() bool { return false }

type AveragePooling2DLayer struct {
	PoolH, PoolW     int
	StrideH, StrideW int
	Padding          Padding
}

func (l *AveragePooling2DLayer) Kind() string { return "averagePooling2d" }
func (l *AveragePooling2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: averagePooling2d expects rank 3, got %v", ErrInvalidGraph, in)
	}
	outH := convOutSize(in[0], l.PoolH, l.StrideH, l.Padding)
	outW := convOutSize(in[1], l.PoolW, l.StrideW, l.Padding)
	return [][]int{{outH, outW, in[2]}}, nil
}
func (l *AveragePooling2DLayer) CanBeInplace() bool { return false }

// GlobalMaxPooling2DLayer and GlobalAveragePooling2DLayer reduce the
// entire [H, W] extent to a rank-1 [C] tensor (spec.md §4.1
// "globalPooling2d: output is a rank-1 tensor of length C").
type GlobalMaxPooling2DLayer struct{}

func (l *GlobalMaxPooling2DLayer) Kind() string { return "globalMaxPooling2d" }
func (l *GlobalMaxPooling2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: globalMaxPooling2d expects rank 3, got %v", ErrInvalidGraph, in)
	}
	return [][]int{{in[2]}}, nil
}
func (l *GlobalMaxPooling2DLayer) CanBeInplace() bool { return false }

type GlobalAveragePooling2DLayer struct{}

func (l *GlobalAveragePooling2DLayer) Kind() string { return "globalAveragePooling2d" }
func (l *GlobalAveragePooling2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: globalAveragePooling2d expects rank 3, got %v", ErrInvalidGraph, in)
	}
	return [][]int{{in[2]}}, nil
}
func (l *GlobalAveragePooling2DLayer) CanBeInplace() bool { return false }
