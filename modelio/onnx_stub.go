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
	"errors"
	"io"
)

// ErrONNXUnsupported is returned by LoadONNX. The original C++ model
// loader explicitly rejects several ONNX constructs rather than
// attempting a partial import (sparse and segmented tensor initializers,
// training-only nodes, and local functions), treating full ONNX import
// as an optional feature behind a flag rather than a core requirement.
// No protobuf library exists anywhere in the example pack to decode an
// ONNX ModelProto in the first place, so this module carries the same
// non-support forward explicitly instead of silently omitting it.
var ErrONNXUnsupported = errors.New("modelio: ONNX import is not supported")

// LoadONNX always fails. It exists so callers have one obvious place to
// learn why: reading an onnx.ModelProto requires a protobuf decoder, and
// wiring one in without it being exercised by anything else in this
// module would mean adding a dependency with no grounding in the example
// pack.
func LoadONNX(r io.Reader) error {
	return ErrONNXUnsupported
}
