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

package compilednn

import (
	"fmt"

	"github.com/nncompile/compilednn/activation"
	"github.com/nncompile/compilednn/arena"
	"github.com/nncompile/compilednn/compiler"
	"github.com/nncompile/compilednn/graph"
)

// CompiledNN is one compiled instance of a model: a buffer plan plus one
// closure per node, ready to Apply in the graph's construction order
// (already a valid topological order, graph.Model's own invariant).
//
// A *CompiledNN is safe to share read-only across goroutines for
// Input/Output address lookups, but Apply must not run concurrently with
// another Apply on the same instance (spec.md §5's "not Sync" contract).
// Independent instances compiled from the same or different models share
// no state and may Apply concurrently without synchronization.
type CompiledNN struct {
	model *graph.Model
	plan  arena.Plan
	ops   []compiler.Op
}

// Compile builds a CompiledNN from a parsed model. settings is
// constricted in place to whatever the host CPU actually supports before
// any op is compiled, so every emitted closure already reflects the
// downgraded settings.
func Compile(m *graph.Model, settings *CompilationSettings) (*CompiledNN, error) {
	settings.Constrict()

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}

	fuseConvBatchNorm(m)

	plan, err := arena.Plan(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompileFailed, err)
	}

	// One shared Handler across every node's Compile call: each emitter
	// calls act.DefineData itself, and DefineData dedupes by (kind,
	// params) regardless of call order, so constant blocks are shared
	// across nodes automatically (spec.md §4.9).
	act := activation.NewHandler(settings.UseExpApproxInSigmoid, settings.UseExpApproxInTanh)

	ops := make([]compiler.Op, len(m.Nodes))
	for i, node := range m.Nodes {
		inputs := make([][]float32, len(node.Inputs))
		for j, loc := range node.Inputs {
			inputs[j] = plan.View(loc.NodeIndex, loc.OutputIndex, numElements(m.Nodes[loc.NodeIndex].OutputDims[loc.OutputIndex]))
		}
		output := plan.View(i, 0, numElements(node.OutputDims[0]))

		op, err := compiler.Compile(node, inputs, output, act, settings.XMMRegs)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d (%s): %v", ErrCompileFailed, i, node.Layer.Kind(), err)
		}
		ops[i] = op
	}

	return &CompiledNN{model: m, plan: plan, ops: ops}, nil
}

// Apply runs every node's compiled closure once, in topological order,
// reading whatever is currently in the Input buffers and leaving results
// in the Output buffers.
func (c *CompiledNN) Apply() {
	for _, op := range c.ops {
		op.Run()
	}
}

// NumInputs reports how many external inputs the model declares.
func (c *CompiledNN) NumInputs() int { return len(c.model.Inputs) }

// NumOutputs reports how many external outputs the model declares.
func (c *CompiledNN) NumOutputs() int { return len(c.model.Outputs) }

// Input returns the buffer backing external input i. Callers write the
// tensor to process into this slice before calling Apply.
func (c *CompiledNN) Input(i int) []float32 {
	loc := c.model.Inputs[i]
	n := numElements(c.model.Nodes[loc.NodeIndex].OutputDims[loc.OutputIndex])
	return c.plan.View(loc.NodeIndex, loc.OutputIndex, n)
}

// Output returns the buffer backing external output i. Valid after
// Apply has run at least once.
func (c *CompiledNN) Output(i int) []float32 {
	loc := c.model.Outputs[i]
	n := numElements(c.model.Nodes[loc.NodeIndex].OutputDims[loc.OutputIndex])
	return c.plan.View(loc.NodeIndex, loc.OutputIndex, n)
}

// BufferInfo reports the arena's slot count and total byte size, for
// cmd/compilednn-bench.
func (c *CompiledNN) BufferInfo() string { return c.plan.BufferInfo() }

func numElements(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
