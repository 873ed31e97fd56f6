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

// Package graph is the network's data model: a DAG of Nodes, each owning
// a Layer variant, wired together by weak TensorLocation references. The
// Model owns every Layer and Node; Node and TensorLocation only look
// things up by index, never by pointer, so the graph stays Send-safe
// while independent compiled instances run on separate cores (spec.md §5).
package graph

import "fmt"

// Layer is the tagged-variant interface every layer kind implements.
// Consumers (compiler.Compile, the interp package) dispatch with a type
// switch over the concrete layer types, not a virtual hierarchy: no
// layer kind needs state or behaviour shared across kinds beyond this
// contract (spec.md §9 Design Notes).
type Layer interface {
	// Kind names the layer's tag, used in error messages and by modelio.
	Kind() string
	// CalcOutputDimensions reads node.InputDims and returns the output
	// dimensions for each of this layer's outputs (almost every kind has
	// exactly one).
	CalcOutputDimensions(node *Node) ([][]int, error)
	// CanBeInplace reports whether the emitted code tolerates the output
	// buffer aliasing an input buffer (spec.md §4.2, §4.3).
	CanBeInplace() bool
}

// TensorLocation is a weak (node, output-index) reference: lookup only,
// never ownership (spec.md §3).
type TensorLocation struct {
	NodeIndex   int
	OutputIndex int
}

// Node is one layer instance inside the graph.
type Node struct {
	Layer Layer

	// Inputs lists where each of this node's input tensors comes from.
	// The implicit input node (Layer.Kind() == "input") has none.
	Inputs []TensorLocation

	// InputDims and OutputDims are parallel to Inputs and to the layer's
	// outputs respectively; both are filled in during graph construction
	// and never mutated afterward (spec.md §3 "Node lifecycle").
	InputDims  [][]int
	OutputDims [][]int
}

// Model owns the layer list and marks which TensorLocations are the
// network's external inputs and outputs.
type Model struct {
	Nodes []*Node

	Inputs           []TensorLocation
	Outputs          []TensorLocation
	InputIsQuantized []bool
}

// NumOutputs returns how many output tensors a node declares.
func (n *Node) NumOutputs() int { return len(n.OutputDims) }

// OutputDimsOf resolves a TensorLocation to its output dimension list.
func (m *Model) OutputDimsOf(loc TensorLocation) ([]int, error) {
	if loc.NodeIndex < 0 || loc.NodeIndex >= len(m.Nodes) {
		return nil, fmt.Errorf("graph: %w: node index %d out of range", ErrInvalidGraph, loc.NodeIndex)
	}
	node := m.Nodes[loc.NodeIndex]
	if loc.OutputIndex < 0 || loc.OutputIndex >= len(node.OutputDims) {
		return nil, fmt.Errorf("graph: %w: output index %d out of range for node %d", ErrInvalidGraph, loc.OutputIndex, loc.NodeIndex)
	}
	return node.OutputDims[loc.OutputIndex], nil
}

// AddNode appends a node wired to the given inputs, computes its input
// dimensions from those inputs, runs shape propagation, and returns its
// index. This is the one mutation path model readers use while parsing
// (spec.md §3 "Node lifecycle": mutated only during parse).
func (m *Model) AddNode(layer Layer, inputs []TensorLocation) (int, error) {
	node := &Node{Layer: layer, Inputs: append([]TensorLocation(nil), inputs...)}
	node.InputDims = make([][]int, len(inputs))
	for i, loc := range inputs {
		dims, err := m.OutputDimsOf(loc)
		if err != nil {
			return 0, err
		}
		node.InputDims[i] = dims
	}
	outDims, err := layer.CalcOutputDimensions(node)
	if err != nil {
		return 0, fmt.Errorf("graph: node %d (%s): %w", len(m.Nodes), layer.Kind(), err)
	}
	for _, d := range outDims {
		if err := validateDims(d); err != nil {
			return 0, fmt.Errorf("graph: node %d (%s): %w", len(m.Nodes), layer.Kind(), err)
		}
	}
	node.OutputDims = outDims
	m.Nodes = append(m.Nodes, node)
	return len(m.Nodes) - 1, nil
}

func validateDims(dims []int) error {
	if len(dims) == 0 {
		return fmt.Errorf("%w: rank-0 output", ErrInvalidGraph)
	}
	for _, d := range dims {
		if d <= 0 {
			return fmt.Errorf("%w: zero or negative dimension %v", ErrInvalidGraph, dims)
		}
	}
	return nil
}

// Validate checks the whole-model invariants that aren't enforced
// incrementally by AddNode: every input/output TensorLocation resolves,
// and the node order is already a valid topological order (every node's
// inputs reference strictly earlier nodes, which AddNode guarantees by
// construction since a node can only reference nodes already appended —
// so a cycle is structurally impossible through this API, matching
// spec.md §9's "the source model is acyclic by construction").
func (m *Model) Validate() error {
	for _, loc := range m.Inputs {
		if _, err := m.OutputDimsOf(loc); err != nil {
			return err
		}
	}
	for _, loc := range m.Outputs {
		if _, err := m.OutputDimsOf(loc); err != nil {
			return err
		}
	}
	for i, node := range m.Nodes {
		for _, loc := range node.Inputs {
			if loc.NodeIndex >= i {
				return fmt.Errorf("graph: %w: node %d references node %d, which is not earlier in topological order", ErrInvalidGraph, i, loc.NodeIndex)
			}
		}
	}
	return nil
}
