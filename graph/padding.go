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

// ZeroPadding1DLayer pads a rank-2 [length, channels] tensor on the one
// spatial axis.
type ZeroPadding1DLayer struct{ Left, Right int }

func (l *ZeroPadding1DLayer) Kind() string { return "zeroPadding1d" }
func (l *ZeroPadding1DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 2 {
		return nil, fmt.Errorf("%w: zeroPadding1d expects rank 2, got %v", ErrInvalidGraph, in)
	}
	return [][]int{{in[0] + l.Left + l.Right, in[1]}}, nil
}

// CanBeInplace is true only in the degenerate all-zero-padding case
// (spec.md §8 "zeroPadding2d with all zero paddings is identity"); any
// real padding changes the tensor's size, so it can never alias storage
// with its input.
func (l *ZeroPadding1DLayer) CanBeInplace() bool { return l.Left == 0 && l.Right == 0 }

// ZeroPadding2DLayer pads [H, W] on all four edges independently
// (spec.md §4.7).
type ZeroPadding2DLayer struct{ Top, Bottom, Left, Right int }

func (l *ZeroPadding2DLayer) Kind() string { return "zeroPadding2d" }
func (l *ZeroPadding2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: zeroPadding2d expects rank 3, got %v", ErrInvalidGraph, in)
	}
	return [][]int{{in[0] + l.Top + l.Bottom, in[1] + l.Left + l.Right, in[2]}}, nil
}
func (l *ZeroPadding2DLayer) CanBeInplace() bool {
	return l.Top == 0 && l.Bottom == 0 && l.Left == 0 && l.Right == 0
}

// Cropping2DLayer removes rows/columns from each edge; no zero fill
// (spec.md §4.7).
type Cropping2DLayer struct{ Top, Bottom, Left, Right int }

func (l *Cropping2DLayer) Kind() string { return "cropping2d" }
func (l *Cropping2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: cropping2d expects rank 3, got %v", ErrInvalidGraph, in)
	}
	outH := in[0] - l.Top - l.Bottom
	outW := in[1] - l.Left - l.Right
	if outH <= 0 || outW <= 0 {
		return nil, fmt.Errorf("%w: cropping2d crops %v down to non-positive size", ErrInvalidGraph, in)
	}
	return [][]int{{outH, outW, in[2]}}, nil
}
func (l *Cropping2DLayer) CanBeInplace() bool {
	return l.Top == 0 && l.Bottom == 0 && l.Left == 0 && l.Right == 0
}

// Interpolation is UpSampling2D's closed interpolation-mode set.
type Interpolation int

const (
	InterpNearest Interpolation = iota
	InterpBilinear
)

// UpSampling2DLayer replicates or interpolates [H, W] by an integer
// factor per axis (spec.md §4.7).
type UpSampling2DLayer struct {
	SizeH, SizeW  int
	Interpolation Interpolation
}

func (l *UpSampling2DLayer) Kind() string { return "upSampling2d" }
func (l *UpSampling2DLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	in := node.InputDims[0]
	if len(in) != 3 {
		return nil, fmt.Errorf("%w: upSampling2d expects rank 3, got %v", ErrInvalidGraph, in)
	}
	return [][]int{{in[0] * l.SizeH, in[1] * l.SizeW, in[2]}}, nil
}

// CanBeInplace is true only for size (1,1), the identity case (spec.md
// §8); any real upsampling grows the tensor.
func (l *UpSampling2DLayer) CanBeInplace() bool { return l.SizeH == 1 && l.SizeW == 1 }
