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

// Package modelio reads a serialized network description into a
// graph.Model. It mirrors the graph-construction half of Keras's HDF5
// model format: the same model_config JSON tree Keras stores as an HDF5
// attribute, with weight arrays given as nested float arrays directly
// in the document rather than as references into an HDF5 binary
// container (no HDF5 library exists anywhere in the example pack to read
// the container itself — see DESIGN.md).
package modelio

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nncompile/compilednn/graph"
)

// kerasDoc is the top-level JSON document: a model_config tree (class
// name + nested layer configs, the same shape Keras's
// `model.to_json()` produces) plus this reader's own flattened weight
// table keyed by layer name.
type kerasDoc struct {
	// KerasVersion is the writer's `keras_version` string, the same
	// top-level key `model.to_json()` stamps on every document. Several
	// layer config keys were added to Keras after their layer class
	// existed (spec.md §6, SUPPLEMENTED FEATURES); versionGate below
	// uses this to decide whether an absent/zero field value means
	// "not set" or "this writer couldn't have set it yet".
	KerasVersion string `json:"keras_version"`
	Config struct {
		Name        string       `json:"name"`
		Layers      []kerasLayer `json:"layers"`
		InputLayers [][2]any     `json:"input_layers"`
		OutputLayers [][2]any    `json:"output_layers"`
	} `json:"config"`
	Weights map[string]map[string][]float32 `json:"weights"` // layerName -> weightName -> flat data
}

type kerasLayer struct {
	ClassName  string          `json:"class_name"`
	Name       string          `json:"name"`
	Config     json.RawMessage `json:"config"`
	InboundNodes [][][]any      `json:"inbound_nodes"`
}

// genericConfig mirrors the subset of Keras's per-layer config keys this
// reader understands, for every layer class; unrecognized keys are ignored, matching
// the original's version-gated field reads (spec.md §6, SUPPLEMENTED
// FEATURES).
type genericConfig struct {
	Units           int      `json:"units"`
	Activation      string   `json:"activation"`
	Filters         int      `json:"filters"`
	KernelSize      []int    `json:"kernel_size"`
	Strides         []int    `json:"strides"`
	// Padding is raw because its shape differs by layer class: a
	// "valid"/"same" enum string for conv/pooling layers, but a bare int
	// or nested pair for ZeroPadding1D/2D — see padSpecConfig.
	Padding  json.RawMessage `json:"padding"`
	PoolSize        []int    `json:"pool_size"`
	DepthMultiplier int      `json:"depth_multiplier"`
	Axis            any      `json:"axis"`
	Alpha           float32  `json:"alpha"`
	Theta           float32  `json:"theta"`
	MaxValue        *float32 `json:"max_value"`
	NegativeSlope   float32  `json:"negative_slope"`
	Threshold       *float32 `json:"threshold"`
	Rate            float32  `json:"rate"`
	BatchInputShape []any    `json:"batch_input_shape"`
	TargetShape     []int    `json:"target_shape"`
	Size            []int    `json:"size"`
	Interpolation   string   `json:"interpolation"`
}

// padSpecConfig is decoded separately from genericConfig for
// ZeroPadding1D/2D/Cropping2D: those layers spell their spatial extents
// under the same "padding"/"cropping" JSON key conv/pooling layers use
// for the enum string "valid"/"same", so the two can't share one typed
// struct field.
type padSpecConfig struct {
	Padding  any `json:"padding"`
	Cropping any `json:"cropping"`
}

// Load parses a Keras-style model_config document into a graph.Model.
func Load(r io.Reader) (*graph.Model, error) {
	var doc kerasDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("modelio: decode: %w", err)
	}

	m := &graph.Model{}
	nodeByName := map[string]int{}

	for _, kl := range doc.Config.Layers {
		var cfg genericConfig
		if err := json.Unmarshal(kl.Config, &cfg); err != nil {
			return nil, fmt.Errorf("modelio: layer %q config: %w", kl.Name, err)
		}

		inputs, err := resolveInputs(kl, nodeByName)
		if err != nil {
			return nil, err
		}

		layer, err := buildLayer(kl.ClassName, cfg, kl.Config, doc.Weights[kl.Name], doc.KerasVersion)
		if err != nil {
			return nil, fmt.Errorf("modelio: layer %q: %w", kl.Name, err)
		}

		idx, err := m.AddNode(layer, inputs)
		if err != nil {
			return nil, fmt.Errorf("modelio: layer %q: %w", kl.Name, err)
		}
		nodeByName[kl.Name] = idx
	}

	for _, entry := range doc.Config.InputLayers {
		name, _ := entry[0].(string)
		idx, ok := nodeByName[name]
		if !ok {
			return nil, fmt.Errorf("modelio: input layer %q not found", name)
		}
		m.Inputs = append(m.Inputs, graph.TensorLocation{NodeIndex: idx})
	}
	for _, entry := range doc.Config.OutputLayers {
		name, _ := entry[0].(string)
		idx, ok := nodeByName[name]
		if !ok {
			return nil, fmt.Errorf("modelio: output layer %q not found", name)
		}
		m.Outputs = append(m.Outputs, graph.TensorLocation{NodeIndex: idx})
	}
	m.InputIsQuantized = make([]bool, len(m.Inputs))

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("modelio: %w", err)
	}
	return m, nil
}

func resolveInputs(kl kerasLayer, nodeByName map[string]int) ([]graph.TensorLocation, error) {
	if len(kl.InboundNodes) == 0 {
		return nil, nil
	}
	var out []graph.TensorLocation
	for _, entry := range kl.InboundNodes[0] {
		name, _ := entry[0].(string)
		idx, ok := nodeByName[name]
		if !ok {
			return nil, fmt.Errorf("modelio: inbound reference to unknown layer %q", name)
		}
		outputIdx := 0
		if len(entry) > 2 {
			if f, ok := entry[2].(float64); ok {
				outputIdx = int(f)
			}
		}
		out = append(out, graph.TensorLocation{NodeIndex: idx, OutputIndex: outputIdx})
	}
	return out, nil
}

// versionGate names the minimum keras_version at which Keras started
// reading a given optional config key: negative_slope and threshold
// were added to ReLU in 2.3.0 and 2.1.0 respectively, and interpolation
// to UpSampling2D in 2.2.3 (spec.md §6, SUPPLEMENTED FEATURES). A
// document written by an older Keras cannot have meant anything by the
// field being present at all, so it's ignored rather than trusted.
var versionGate = map[string][3]int{
	"negative_slope": {2, 3, 0},
	"threshold":      {2, 1, 0},
	"interpolation":  {2, 2, 3},
}

// versionAtLeast reports whether v (a "major.minor.patch" keras_version
// string) is at or above min. An empty or unparseable v is treated as
// older than anything gated, matching the original's behavior of
// falling back to the pre-field default when the writer's version is
// unknown.
func versionAtLeast(v string, min [3]int) bool {
	if v == "" {
		return false
	}
	parts := strings.SplitN(v, ".", 3)
	var got [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return false
		}
		got[i] = n
	}
	for i := 0; i < 3; i++ {
		if got[i] != min[i] {
			return got[i] > min[i]
		}
	}
	return true
}

func activationID(name string) graph.ActivationID {
	switch name {
	case "relu":
		return graph.ActRelu
	case "tanh":
		return graph.ActTanh
	case "sigmoid":
		return graph.ActSigmoid
	case "hard_sigmoid":
		return graph.ActHardSigmoid
	case "elu":
		return graph.ActElu
	case "selu":
		return graph.ActSelu
	case "exponential":
		return graph.ActExponential
	case "softsign":
		return graph.ActSoftsign
	case "softmax":
		return graph.ActSoftmax
	default:
		return graph.ActLinear
	}
}

func paddingKind(raw json.RawMessage) graph.Padding {
	var name string
	if json.Unmarshal(raw, &name) == nil && name == "same" {
		return graph.PaddingSame
	}
	return graph.PaddingValid
}

func axisInt(a any) int {
	switch v := a.(type) {
	case float64:
		return int(v)
	case []any:
		if len(v) > 0 {
			if f, ok := v[0].(float64); ok {
				return int(f)
			}
		}
	}
	return -1
}

func buildLayer(className string, cfg genericConfig, raw json.RawMessage, weights map[string][]float32, kerasVersion string) (graph.Layer, error) {
	switch className {
	case "InputLayer":
		dims := make([]int, 0, len(cfg.BatchInputShape)-1)
		for _, d := range cfg.BatchInputShape[1:] {
			if f, ok := d.(float64); ok {
				dims = append(dims, int(f))
			}
		}
		return &graph.InputLayer{Dims: dims}, nil

	case "Dense":
		return &graph.DenseLayer{
			Units:      cfg.Units,
			Activation: activationID(cfg.Activation),
			Weights:    weights["kernel"],
			Bias:       weights["bias"],
		}, nil

	case "Activation":
		return &graph.ActivationLayer{Activation: activationID(cfg.Activation)}, nil

	case "ReLU":
		maxVal := float32(0)
		if cfg.MaxValue != nil {
			maxVal = *cfg.MaxValue
		}
		negSlope := float32(0)
		if versionAtLeast(kerasVersion, versionGate["negative_slope"]) {
			negSlope = cfg.NegativeSlope
		}
		threshold := float32(0)
		if cfg.Threshold != nil && versionAtLeast(kerasVersion, versionGate["threshold"]) {
			threshold = *cfg.Threshold
		}
		return &graph.ReluLayer{MaxValue: maxVal, NegativeSlope: negSlope, Threshold: threshold}, nil

	case "LeakyReLU":
		return &graph.LeakyReluLayer{Alpha: cfg.Alpha}, nil

	case "ELU":
		return &graph.EluLayer{Alpha: cfg.Alpha}, nil

	case "ThresholdedReLU":
		return &graph.ThresholdedReluLayer{Theta: cfg.Theta}, nil

	case "Softmax":
		return &graph.SoftmaxLayer{Axis: axisInt(cfg.Axis)}, nil

	case "Conv1D":
		return &graph.Conv1DLayer{
			Filters: cfg.Filters, Kernel: dim0(cfg.KernelSize), Stride: dim0(cfg.Strides),
			Padding: paddingKind(cfg.Padding), Activation: activationID(cfg.Activation),
			Weights: weights["kernel"], Bias: weights["bias"],
		}, nil

	case "Conv2D":
		return &graph.Conv2DLayer{
			Filters: cfg.Filters, KernelH: dim0(cfg.KernelSize), KernelW: dim1(cfg.KernelSize),
			StrideH: dim0(cfg.Strides), StrideW: dim1(cfg.Strides),
			Padding: paddingKind(cfg.Padding), Activation: activationID(cfg.Activation),
			Weights: weights["kernel"], Bias: weights["bias"],
		}, nil

	case "DepthwiseConv2D":
		return &graph.DepthwiseConv2DLayer{
			KernelH: dim0(cfg.KernelSize), KernelW: dim1(cfg.KernelSize),
			StrideH: dim0(cfg.Strides), StrideW: dim1(cfg.Strides),
			DepthMultiplier: cfg.DepthMultiplier, Padding: paddingKind(cfg.Padding),
			Activation: activationID(cfg.Activation),
			Weights:    weights["depthwise_kernel"], Bias: weights["bias"],
		}, nil

	case "SeparableConv2D":
		return &graph.SeparableConv2DLayer{
			KernelH: dim0(cfg.KernelSize), KernelW: dim1(cfg.KernelSize),
			StrideH: dim0(cfg.Strides), StrideW: dim1(cfg.Strides),
			DepthMultiplier: cfg.DepthMultiplier, Filters: cfg.Filters,
			Padding: paddingKind(cfg.Padding), Activation: activationID(cfg.Activation),
			DepthwiseWeights: weights["depthwise_kernel"],
			PointwiseWeights: weights["pointwise_kernel"],
			Bias:             weights["bias"],
		}, nil

	case "MaxPooling1D":
		return &graph.MaxPooling1DLayer{PoolSize: dim0(cfg.PoolSize), Stride: dim0(cfg.Strides), Padding: paddingKind(cfg.Padding)}, nil
	case "AveragePooling1D":
		return &graph.AveragePooling1DLayer{PoolSize: dim0(cfg.PoolSize), Stride: dim0(cfg.Strides), Padding: paddingKind(cfg.Padding)}, nil
	case "MaxPooling2D":
		return &graph.MaxPooling2DLayer{
			PoolH: dim0(cfg.PoolSize), PoolW: dim1(cfg.PoolSize),
			StrideH: dim0(cfg.Strides), StrideW: dim1(cfg.Strides), Padding: paddingKind(cfg.Padding),
		}, nil
	case "AveragePooling2D":
		return &graph.AveragePooling2DLayer{
			PoolH: dim0(cfg.PoolSize), PoolW: dim1(cfg.PoolSize),
			StrideH: dim0(cfg.Strides), StrideW: dim1(cfg.Strides), Padding: paddingKind(cfg.Padding),
		}, nil
	case "GlobalMaxPooling2D":
		return &graph.GlobalMaxPooling2DLayer{}, nil
	case "GlobalAveragePooling2D":
		return &graph.GlobalAveragePooling2DLayer{}, nil

	case "BatchNormalization":
		return &graph.BatchNormalizationLayer{
			Axis:   axisInt(cfg.Axis),
			Factor: weights["factor"],
			Offset: weights["offset"],
		}, nil

	case "Dropout":
		return &graph.DropoutLayer{Rate: cfg.Rate}, nil

	case "Reshape":
		return &graph.ReshapeLayer{TargetDims: cfg.TargetShape}, nil

	case "Flatten":
		return &graph.FlattenLayer{}, nil

	case "ZeroPadding1D":
		return paddingLayer1D(raw)
	case "ZeroPadding2D":
		return paddingLayer2D(raw)
	case "Cropping2D":
		return croppingLayer2D(raw)
	case "UpSampling2D":
		interp := graph.InterpNearest
		if cfg.Interpolation == "bilinear" && versionAtLeast(kerasVersion, versionGate["interpolation"]) {
			interp = graph.InterpBilinear
		}
		return &graph.UpSampling2DLayer{SizeH: dim0(cfg.Size), SizeW: dim1(cfg.Size), Interpolation: interp}, nil

	case "Concatenate":
		return &graph.ConcatenateLayer{Axis: axisInt(cfg.Axis)}, nil
	case "Add":
		return &graph.AddLayer{}, nil
	case "Subtract":
		return &graph.SubtractLayer{}, nil
	case "Multiply":
		return &graph.MultiplyLayer{}, nil
	case "Average":
		return &graph.AverageLayer{}, nil
	case "Minimum":
		return &graph.MinimumLayer{}, nil
	case "Maximum":
		return &graph.MaximumLayer{}, nil

	default:
		return nil, fmt.Errorf("unsupported layer class %q", className)
	}
}

func dim0(xs []int) int {
	if len(xs) > 0 {
		return xs[0]
	}
	return 0
}

func dim1(xs []int) int {
	if len(xs) > 1 {
		return xs[1]
	}
	return dim0(xs)
}

// paddingLayer2D and croppingLayer2D accept either a single int, a
// [2]int pair, or a [[t,b],[l,r]] nested pair, matching Keras's own
// flexible padding/cropping argument forms.
func paddingLayer1D(raw json.RawMessage) (graph.Layer, error) {
	var spec padSpecConfig
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("zeroPadding1d: %w", err)
	}
	switch v := spec.Padding.(type) {
	case float64:
		n := int(v)
		return &graph.ZeroPadding1DLayer{Left: n, Right: n}, nil
	case []any:
		pair, ok := asIntPair(v)
		if !ok {
			return nil, fmt.Errorf("zeroPadding1d: expected a 2-element padding spec, got %v", v)
		}
		return &graph.ZeroPadding1DLayer{Left: pair[0], Right: pair[1]}, nil
	default:
		return nil, fmt.Errorf("zeroPadding1d: unrecognized padding spec %v", spec.Padding)
	}
}

func paddingLayer2D(raw json.RawMessage) (graph.Layer, error) {
	var spec padSpecConfig
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("zeroPadding2d: %w", err)
	}
	t, b, l, r, err := unpack2D(spec.Padding)
	if err != nil {
		return nil, fmt.Errorf("zeroPadding2d: %w", err)
	}
	return &graph.ZeroPadding2DLayer{Top: t, Bottom: b, Left: l, Right: r}, nil
}

func croppingLayer2D(raw json.RawMessage) (graph.Layer, error) {
	var spec padSpecConfig
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("cropping2d: %w", err)
	}
	t, b, l, r, err := unpack2D(spec.Cropping)
	if err != nil {
		return nil, fmt.Errorf("cropping2d: %w", err)
	}
	return &graph.Cropping2DLayer{Top: t, Bottom: b, Left: l, Right: r}, nil
}

func unpack2D(raw any) (top, bottom, left, right int, err error) {
	switch v := raw.(type) {
	case float64:
		n := int(v)
		return n, n, n, n, nil
	case []any:
		if len(v) != 2 {
			return 0, 0, 0, 0, fmt.Errorf("expected a 2-element padding spec, got %v", v)
		}
		switch pair0 := v[0].(type) {
		case float64:
			h := int(pair0)
			w, ok := v[1].(float64)
			if !ok {
				return 0, 0, 0, 0, fmt.Errorf("expected numeric padding, got %v", v[1])
			}
			return h, h, int(w), int(w), nil
		case []any:
			hPair, ok1 := asIntPair(pair0)
			wPair, ok2 := asIntPair(v[1])
			if !ok1 || !ok2 {
				return 0, 0, 0, 0, fmt.Errorf("expected nested [top,bottom],[left,right] padding, got %v", v)
			}
			return hPair[0], hPair[1], wPair[0], wPair[1], nil
		}
	}
	return 0, 0, 0, 0, fmt.Errorf("unrecognized padding spec %v", raw)
}

func asIntPair(raw any) ([2]int, bool) {
	v, ok := raw.([]any)
	if !ok || len(v) != 2 {
		return [2]int{}, false
	}
	a, ok1 := v[0].(float64)
	b, ok2 := v[1].(float64)
	if !ok1 || !ok2 {
		return [2]int{}, false
	}
	return [2]int{int(a), int(b)}, true
}
