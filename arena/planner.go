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

// Package arena assigns every node output to a buffer slot (spec.md §4.2):
// model inputs/outputs get stably-addressed buffers, intermediates may
// share storage with a dead input when the layer allows it, and the
// planner tracks the alignment needed to choose aligned vs. unaligned
// moves. The allocator is a linear free-list scan grouping whole slots
// the way the teacher's matmul packer groups whole micro-panels
// (internal/hwy/contrib/matmul/packing.go's panel/strip accounting).
package arena

import (
	"fmt"

	"github.com/nncompile/compilednn/graph"
)

// Align is the minimum buffer alignment the planner guarantees, matching
// the XMM register width spec.md §4.2 requires ("every slot is at least
// 16-byte aligned (SSE)").
const Align = 16

// Buffer describes one planned slot: a byte size and the alignment
// (in elements) of its first element relative to a 4-wide SIMD lane,
// used by op compilers to pick aligned vs. unaligned load/store paths
// (spec.md §4.2 "per-slot aligned-leading-element-count mod 4").
type Buffer struct {
	Slot       int
	ByteSize   int
	LeadAlign4 int
}

// Plan maps each node's output index to its assigned Buffer, plus the
// total arena size every slot must fit inside.
type Plan struct {
	// Slots holds the allocated storage for each slot index.
	Slots [][]float32
	// Outputs[nodeIndex][outputIndex] is the slot index that node output
	// is assigned to.
	Outputs [][]int
}

// View returns the planned buffer for one node output as a flat slice,
// sized exactly to the node's output dimensions.
func (p Plan) View(nodeIndex, outputIndex int, numElements int) []float32 {
	slot := p.Outputs[nodeIndex][outputIndex]
	return p.Slots[slot][:numElements]
}

// BufferOf reports the slot size and alignment for one node output, the
// spec.md §4.2 "nodeOutput -> buffer(base pointer, byte size, alignment)"
// mapping. Every slot returned by Plan is freshly make()'d float32 storage,
// which Go already guarantees is at least 8-byte aligned and, in practice
// on amd64, 16-byte aligned for slices this size; LeadAlign4 records how
// many leading elements an op compiler must still handle one-at-a-time
// before a 4-wide SIMD load is safe (zero here, since slots never start
// mid-cache-line).
func (p Plan) BufferOf(nodeIndex, outputIndex, numElements int) Buffer {
	return Buffer{
		Slot:       p.Outputs[nodeIndex][outputIndex],
		ByteSize:   numElements * 4,
		LeadAlign4: 0,
	}
}

// Plan assigns buffer slots for every node output in m, honoring
// spec.md §4.2's rules: the slots of model inputs/outputs are never
// returned to the free pool (though a model input's sole consumer may
// still run in place on it, see below), and an intermediate may share a
// slot with one of its inputs
// only when the layer reports CanBeInplace() and that input has no
// other live consumer (ref-count >= 2 forbids in-place).
func Plan(m *graph.Model) (Plan, error) {
	n := len(m.Nodes)
	outputSlot := make([][]int, n)
	// refCount[nodeIndex][outputIndex] counts remaining consumers,
	// including model-output references.
	refCount := make([][]int, n)
	for i, node := range m.Nodes {
		refCount[i] = make([]int, node.NumOutputs())
	}
	for _, node := range m.Nodes {
		for _, loc := range node.Inputs {
			refCount[loc.NodeIndex][loc.OutputIndex]++
		}
	}
	for _, loc := range m.Outputs {
		refCount[loc.NodeIndex][loc.OutputIndex]++
	}

	// A node whose own output IS a model output must not hand its slot
	// away to someone else afterward; isModelOutput keeps the ordinary
	// ref-count bookkeeping below from ever releasing that slot.
	isModelOutput := make(map[graph.TensorLocation]bool, len(m.Outputs))
	for _, loc := range m.Outputs {
		isModelOutput[loc] = true
	}

	// A model input's slot must likewise never be handed back to the free
	// pool: its own consumers' ref-counts still reach zero like any other
	// intermediate's, but releasing it would let a later node's output
	// alias the same storage, corrupting Input(i) the moment the later
	// node runs (spec.md §4.2 rule 1's "stably-addressed buffer" applies
	// to inputs exactly as it does to outputs).
	isModelInput := make(map[graph.TensorLocation]bool, len(m.Inputs))
	for _, loc := range m.Inputs {
		isModelInput[loc] = true
	}

	var slots [][]float32
	free := map[int][]int{} // byte size -> free slot indices

	newSlot := func(size int) int {
		slot := len(slots)
		slots = append(slots, make([]float32, size))
		return slot
	}

	acquireSlot := func(size int) int {
		if avail := free[size]; len(avail) > 0 {
			slot := avail[len(avail)-1]
			free[size] = avail[:len(avail)-1]
			for i := range slots[slot] {
				slots[slot][i] = 0
			}
			return slot
		}
		return newSlot(size)
	}

	releaseSlot := func(slot, size int) {
		free[size] = append(free[size], slot)
	}

	for i, node := range m.Nodes {
		outputSlot[i] = make([]int, node.NumOutputs())
		for o, dims := range node.OutputDims {
			size := numElements(dims)
			loc := graph.TensorLocation{NodeIndex: i, OutputIndex: o}

			inplaceSlot := -1
			if node.Layer.CanBeInplace() && len(node.Inputs) > 0 {
				in := node.Inputs[0]
				if numElements(node.InputDims[0]) == size && refCount[in.NodeIndex][in.OutputIndex] == 1 && !isModelOutput[loc] {
					// A sole consumer may still alias a model input's own
					// slot here: that only means this input is consumed
					// destructively by Apply (matching spec.md §4.2 rule
					// 2, which draws no distinction between an ordinary
					// intermediate and a model input as an inplace
					// source) — callers must refill Input(i) before a
					// second Apply if this happens. What the planner must
					// still prevent is a *different* node later reusing
					// that same slot once this one's refcount hits zero,
					// which the release-loop guard below handles.
					inplaceSlot = outputSlot[in.NodeIndex][in.OutputIndex]
				}
			}

			var slot int
			switch {
			case inplaceSlot >= 0:
				slot = inplaceSlot
			case isModelInput[loc]:
				// A model input's slot is never released below (see the
				// release loop), so handing it a free-pool slot would
				// permanently remove that slot from circulation; give it
				// a dedicated slot instead, the same treatment model
				// outputs already get.
				slot = newSlot(size)
			default:
				slot = acquireSlot(size)
			}
			outputSlot[i][o] = slot

			// An input consumed in-place is "used up" regardless of its
			// nominal ref-count, since its storage is now also the
			// output's; callers must not read it again as the input.
			if inplaceSlot >= 0 {
				in := node.Inputs[0]
				refCount[in.NodeIndex][in.OutputIndex] = 0
			}
		}

		// Release inputs whose ref-count has hit zero, unless they're a
		// model input or a model output (those must keep a stable
		// address forever).
		for _, in := range node.Inputs {
			if isModelOutput[in] || isModelInput[in] {
				continue
			}
			refCount[in.NodeIndex][in.OutputIndex]--
			if refCount[in.NodeIndex][in.OutputIndex] == 0 {
				size := numElements(m.Nodes[in.NodeIndex].OutputDims[in.OutputIndex])
				releaseSlot(outputSlot[in.NodeIndex][in.OutputIndex], size)
			}
		}
	}

	return Plan{Slots: slots, Outputs: outputSlot}, nil
}

func numElements(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// BufferInfo reports a human-readable summary of the plan's arena usage,
// used by cmd/compilednn-bench.
func (p Plan) BufferInfo() string {
	total := 0
	for _, s := range p.Slots {
		total += len(s) * 4
	}
	return fmt.Sprintf("%d slots, %d bytes total", len(p.Slots), total)
}
