//go:build amd64 && !goexperiment.simd

package hwy

import "golang.org/x/sys/cpu"

// Without GOEXPERIMENT=simd the archsimd intrinsics in ops_avx2.go/ops_avx512.go
// aren't usable, so Vec stays on the scalar kernels in ops_base.go regardless
// of dispatch level; but golang.org/x/sys/cpu still lets us report the real
// ISA level for CompilationSettings' downgrade logic.

func init() {
	if NoSimdEnv() {
		setScalarMode()
		return
	}
	detectCPUFeatures()
}

func detectCPUFeatures() {
	switch {
	case cpu.X86.HasAVX512F:
		currentLevel, currentWidth, currentName = DispatchAVX512, 64, "avx512"
	case cpu.X86.HasAVX2:
		currentLevel, currentWidth, currentName = DispatchAVX2, 32, "avx2"
	case cpu.X86.HasSSE42:
		currentLevel, currentWidth, currentName = DispatchSSE42, 16, "sse4.2"
	default:
		currentLevel, currentWidth, currentName = DispatchSSE2, 16, "sse2"
	}
}

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 16 // Use 16-byte vectors even in scalar mode for consistency
	currentName = "scalar"
}
