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
	"io"

	"github.com/nncompile/compilednn/graph"
	"github.com/nncompile/compilednn/modelio"
)

// Model is a parsed, not-yet-compiled network graph. Load it once, then
// Compile it against whatever CompilationSettings the caller wants;
// compiling the same Model twice with different settings is fine, since
// Compile never mutates the Model.
type Model struct {
	g *graph.Model
}

// Load reads a Keras-style model_config document (spec.md §2, §6). ONNX
// documents are explicitly unsupported; see modelio.LoadONNX.
func Load(r io.Reader) (*Model, error) {
	g, err := modelio.Load(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	return &Model{g: g}, nil
}

// NumInputs reports how many external inputs the model declares.
func (m *Model) NumInputs() int { return len(m.g.Inputs) }

// NumOutputs reports how many external outputs the model declares.
func (m *Model) NumOutputs() int { return len(m.g.Outputs) }

// Compile lowers the model to a runnable CompiledNN under settings.
// Compile constricts its own copy of settings to the host's actual ISA
// support; the caller's value is left unchanged.
func (m *Model) Compile(settings CompilationSettings) (*CompiledNN, error) {
	return Compile(m.g, &settings)
}
