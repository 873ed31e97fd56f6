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

package modelio

import (
	"strings"
	"testing"

	"github.com/nncompile/compilednn/graph"
)

const denseReluDoc = `{
  "config": {
    "name": "tiny",
    "layers": [
      {
        "class_name": "InputLayer",
        "name": "in",
        "config": {"batch_input_shape": [null, 4]},
        "inbound_nodes": []
      },
      {
        "class_name": "Dense",
        "name": "dense1",
        "config": {"units": 2, "activation": "linear"},
        "inbound_nodes": [[["in", 0, 0]]]
      },
      {
        "class_name": "ReLU",
        "name": "relu1",
        "config": {"negative_slope": 0.0},
        "inbound_nodes": [[["dense1", 0, 0]]]
      }
    ],
    "input_layers": [["in", 0, 0]],
    "output_layers": [["relu1", 0, 0]]
  },
  "weights": {
    "dense1": {
      "kernel": [1, 0, 0, 1, 0, 0, 0, 0],
      "bias": [0, 0]
    }
  }
}`

func TestLoadDenseRelu(t *testing.T) {
	m, err := Load(strings.NewReader(denseReluDoc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(m.Nodes))
	}
	if len(m.Inputs) != 1 || len(m.Outputs) != 1 {
		t.Fatalf("got %d inputs / %d outputs, want 1/1", len(m.Inputs), len(m.Outputs))
	}
	reluNode := m.Nodes[2]
	if _, ok := reluNode.Layer.(*graph.ReluLayer); !ok {
		t.Fatalf("node 2 is %T, want *graph.ReluLayer", reluNode.Layer)
	}
}

func TestLoadRejectsUnknownLayerClass(t *testing.T) {
	doc := `{"config":{"layers":[{"class_name":"LSTM","name":"l","config":{},"inbound_nodes":[]}],"input_layers":[],"output_layers":[]}}`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatal("expected an error for an unsupported layer class")
	}
}

func TestLoadZeroPadding2DNestedSpec(t *testing.T) {
	doc := `{
      "config": {
        "layers": [
          {"class_name": "InputLayer", "name": "in", "config": {"batch_input_shape": [null, 4, 4, 1]}, "inbound_nodes": []},
          {"class_name": "ZeroPadding2D", "name": "pad", "config": {"padding": [[1, 2], [0, 3]]}, "inbound_nodes": [[["in", 0, 0]]]}
        ],
        "input_layers": [["in", 0, 0]],
        "output_layers": [["pad", 0, 0]]
      }
    }`
	m, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pad, ok := m.Nodes[1].Layer.(*graph.ZeroPadding2DLayer)
	if !ok {
		t.Fatalf("node 1 is %T, want *graph.ZeroPadding2DLayer", m.Nodes[1].Layer)
	}
	if pad.Top != 1 || pad.Bottom != 2 || pad.Left != 0 || pad.Right != 3 {
		t.Fatalf("got %+v, want {Top:1 Bottom:2 Left:0 Right:3}", pad)
	}
}

// reluNegativeSlopeDoc builds a ReLU with a nonzero negative_slope,
// varying only the top-level keras_version string between the two
// subtests below.
func reluNegativeSlopeDoc(kerasVersion string) string {
	versionField := ""
	if kerasVersion != "" {
		versionField = `"keras_version": "` + kerasVersion + `",`
	}
	return `{` + versionField + `
      "config": {
        "layers": [
          {"class_name": "InputLayer", "name": "in", "config": {"batch_input_shape": [null, 2]}, "inbound_nodes": []},
          {"class_name": "ReLU", "name": "relu1", "config": {"negative_slope": 0.3}, "inbound_nodes": [[["in", 0, 0]]]}
        ],
        "input_layers": [["in", 0, 0]],
        "output_layers": [["relu1", 0, 0]]
      }
    }`
}

func TestLoadReluNegativeSlopeGatedByKerasVersion(t *testing.T) {
	// No keras_version at all: the writer could predate negative_slope's
	// introduction, so it must be ignored.
	m, err := Load(strings.NewReader(reluNegativeSlopeDoc("")))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	relu := m.Nodes[1].Layer.(*graph.ReluLayer)
	if relu.NegativeSlope != 0 {
		t.Fatalf("no keras_version: NegativeSlope = %v, want 0", relu.NegativeSlope)
	}

	// An old keras_version (negative_slope added in 2.3.0): still ignored.
	m, err = Load(strings.NewReader(reluNegativeSlopeDoc("2.2.4")))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	relu = m.Nodes[1].Layer.(*graph.ReluLayer)
	if relu.NegativeSlope != 0 {
		t.Fatalf("keras_version 2.2.4: NegativeSlope = %v, want 0", relu.NegativeSlope)
	}

	// A keras_version at the gate: honored.
	m, err = Load(strings.NewReader(reluNegativeSlopeDoc("2.3.0")))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	relu = m.Nodes[1].Layer.(*graph.ReluLayer)
	if relu.NegativeSlope != 0.3 {
		t.Fatalf("keras_version 2.3.0: NegativeSlope = %v, want 0.3", relu.NegativeSlope)
	}
}

func TestLoadONNXUnsupported(t *testing.T) {
	if err := LoadONNX(strings.NewReader("")); err != ErrONNXUnsupported {
		t.Fatalf("got %v, want ErrONNXUnsupported", err)
	}
}
