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

// elementwiseOutputDims validates that every merge input shares the same
// shape and returns it once (spec.md §4.8: add/subtract/multiply/average/
// minimum/maximum all require matching shapes).
func elementwiseOutputDims(node *Node, kind string) ([][]int, error) {
	if len(node.InputDims) < 2 {
		return nil, fmt.Errorf("%w: %s needs at least 2 inputs, got %d", ErrInvalidGraph, kind, len(node.InputDims))
	}
	first := node.InputDims[0]
	for _, d := range node.InputDims[1:] {
		if !dimsEqual(d, first) {
			return nil, fmt.Errorf("%w: %s requires identical input shapes, got %v and %v", ErrInvalidGraph, kind, first, d)
		}
	}
	return [][]int{append([]int(nil), first...)}, nil
}

func dimsEqual(a, b []int) bool {
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

type AddLayer struct{}

func (l *AddLayer) Kind() string { return "add" }
func (l *AddLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	return elementwiseOutputDims(node, l.Kind())
}
func (l *AddLayer) CanBeInplace() bool { return true }

type SubtractLayer struct{}

func (l *SubtractLayer) Kind() string { return "subtract" }
func (l *SubtractLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	return elementwiseOutputDims(node, l.Kind())
}
func (l *SubtractLayer) CanBeInplace() bool { return true }

type MultiplyLayer struct{}

func (l *MultiplyLayer) Kind() string { return "multiply" }
func (l *MultiplyLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	return elementwiseOutputDims(node, l.Kind())
}
func (l *MultiplyLayer) CanBeInplace() bool { return true }

type AverageLayer struct{}

func (l *AverageLayer) Kind() string { return "average" }
func (l *AverageLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	return elementwiseOutputDims(node, l.Kind())
}
func (l *AverageLayer) CanBeInplace() bool { return true }

type MinimumLayer struct{}

func (l *MinimumLayer) Kind() string { return "minimum" }
func (l *MinimumLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	return elementwiseOutputDims(node, l.Kind())
}
func (l *MinimumLayer) CanBeInplace() bool { return true }

type MaximumLayer struct{}

func (l *MaximumLayer) Kind() string { return "maximum" }
func (l *MaximumLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	return elementwiseOutputDims(node, l.Kind())
}
func (l *MaximumLayer) CanBeInplace() bool { return true }

// ConcatenateLayer joins its inputs along Axis; every other dimension
// must match (spec.md §4.1, §8). A negative Axis is normalised by adding
// the rank.
type ConcatenateLayer struct{ Axis int }

func (l *ConcatenateLayer) Kind() string { return "concatenate" }
func (l *ConcatenateLayer) CalcOutputDimensions(node *Node) ([][]int, error) {
	if len(node.InputDims) < 2 {
		return nil, fmt.Errorf("%w: concatenate needs at least 2 inputs, got %d", ErrInvalidGraph, len(node.InputDims))
	}
	rank := len(node.InputDims[0])
	axis := l.Axis
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		return nil, fmt.Errorf("%w: concatenate axis %d out of range for rank %d", ErrInvalidGraph, l.Axis, rank)
	}
	out := append([]int(nil), node.InputDims[0]...)
	sum := out[axis]
	for _, d := range node.InputDims[1:] {
		if len(d) != rank {
			return nil, fmt.Errorf("%w: concatenate requires equal rank, got %v and %v", ErrInvalidGraph, node.InputDims[0], d)
		}
		for i := 0; i < rank; i++ {
			if i == axis {
				continue
			}
			if d[i] != out[i] {
				return nil, fmt.Errorf("%w: concatenate requires matching dims off-axis, got %v and %v", ErrInvalidGraph, node.InputDims[0], d)
			}
		}
		sum += d[axis]
	}
	out[axis] = sum
	return [][]int{out}, nil
}
func (l *ConcatenateLayer) CanBeInplace() bool { return false }
