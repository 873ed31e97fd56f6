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

// Package compilednn is the public surface: Load a model, Compile it
// against a CompilationSettings, then Apply the result over Input/Output
// buffers (spec.md §6).
package compilednn

import "errors"

// The five error kinds spec.md §7 names, as wrapped sentinels rather than
// a custom error interface — matching the plain fmt.Errorf("%w: ...")
// idiom used throughout graph, arena, activation and compiler.
var (
	// ErrModelLoad wraps failures reading a model document (modelio).
	ErrModelLoad = errors.New("model load error")
	// ErrUnsupportedOption wraps a CompilationSettings combination or
	// layer parameter this module does not implement.
	ErrUnsupportedOption = errors.New("unsupported option")
	// ErrInvalidGraph wraps a structurally invalid model. It is this
	// package's own sentinel, distinct from graph.ErrInvalidGraph: Compile
	// includes the graph error's text but does not wrap it.
	ErrInvalidGraph = errors.New("invalid graph")
	// ErrCompileFailed wraps an operation-compiler or planner failure. It
	// is distinct from compiler.ErrCompile: Compile includes the
	// underlying error's text but does not wrap it.
	ErrCompileFailed = errors.New("compile error")
	// ErrRuntimeFeatureMissing wraps a request to use an ISA extension
	// CompilationSettings.Constrict found the host doesn't have.
	ErrRuntimeFeatureMissing = errors.New("runtime feature missing")
)
