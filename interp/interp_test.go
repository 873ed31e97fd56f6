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

package interp

import (
	"testing"

	"github.com/nncompile/compilednn/graph"
)

func TestRunDenseIdentity(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{2}}, nil)
	dense, _ := m.AddNode(&graph.DenseLayer{
		Units:   2,
		Weights: []float32{1, 0, 0, 1},
	}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: dense}}

	out, err := Run(m, [][]float32{{3, 4}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out[0][0] != 3 || out[0][1] != 4 {
		t.Fatalf("got %v, want [3 4]", out[0])
	}
}

func TestRunReluBasic(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{3}}, nil)
	relu, _ := m.AddNode(&graph.ReluLayer{}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: relu}}

	out, err := Run(m, [][]float32{{-1, 0, 2}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []float32{0, 0, 2}
	for i := range want {
		if out[0][i] != want[i] {
			t.Fatalf("got %v, want %v", out[0], want)
		}
	}
}

func TestRunConcatenateAxisMinusOne(t *testing.T) {
	m := &graph.Model{}
	a, _ := m.AddNode(&graph.InputLayer{Dims: []int{2}}, nil)
	b, _ := m.AddNode(&graph.InputLayer{Dims: []int{3}}, nil)
	cat, err := m.AddNode(&graph.ConcatenateLayer{Axis: -1}, []graph.TensorLocation{{NodeIndex: a}, {NodeIndex: b}})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	m.Inputs = []graph.TensorLocation{{NodeIndex: a}, {NodeIndex: b}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: cat}}

	out, err := Run(m, [][]float32{{1, 2}, {3, 4, 5}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []float32{1, 2, 3, 4, 5}
	for i := range want {
		if out[0][i] != want[i] {
			t.Fatalf("got %v, want %v", out[0], want)
		}
	}
}

func TestRunAveragePooling2D(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{2, 2, 1}}, nil)
	pool, _ := m.AddNode(&graph.AveragePooling2DLayer{
		PoolH: 2, PoolW: 2, StrideH: 2, StrideW: 2, Padding: graph.PaddingValid,
	}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: pool}}

	out, err := Run(m, [][]float32{{1, 2, 3, 4}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out[0][0] != 2.5 {
		t.Fatalf("got %v, want [2.5]", out[0])
	}
}

func TestRunSoftmax(t *testing.T) {
	m := &graph.Model{}
	in, _ := m.AddNode(&graph.InputLayer{Dims: []int{3}}, nil)
	sm, _ := m.AddNode(&graph.SoftmaxLayer{Axis: -1}, []graph.TensorLocation{{NodeIndex: in}})
	m.Inputs = []graph.TensorLocation{{NodeIndex: in}}
	m.Outputs = []graph.TensorLocation{{NodeIndex: sm}}

	out, err := Run(m, [][]float32{{1, 1, 1}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var sum float32
	for _, v := range out[0] {
		sum += v
		if v < 0.333 || v > 0.334 {
			t.Fatalf("expected uniform softmax, got %v", out[0])
		}
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("softmax output should sum to 1, got %v", sum)
	}
}
