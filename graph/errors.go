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

import "errors"

// ErrInvalidGraph is the sentinel for shape/rank/topology invariant
// violations (spec.md §7's InvalidGraph kind). Wrap it with fmt.Errorf's
// %w verb to add a reason; callers compare with errors.Is.
var ErrInvalidGraph = errors.New("invalid graph")
