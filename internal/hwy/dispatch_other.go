//go:build !amd64

// This compiler only targets x86/x86-64 (see spec §1); on
// every other GOARCH the dispatch level is pinned to the portable scalar
// path and every x86 feature probe reports false, so CompilationSettings
// downgrades its ISA requests uniformly instead of needing an arch switch.

package hwy

func init() {
	currentLevel = DispatchScalar
	currentWidth = 16
	currentName = "scalar"
}

// HasSSE42 returns false on non-x86 platforms.
func HasSSE42() bool { return false }

// HasAVX2 returns false on non-x86 platforms.
func HasAVX2() bool { return false }

// HasFMA3 returns false on non-x86 platforms.
func HasFMA3() bool { return false }

// HasF16C returns false on non-x86 platforms (F16C is an x86-specific feature).
func HasF16C() bool {
	return false
}

// HasAVX512FP16 returns false on non-x86 platforms (AVX-512 is x86-specific).
func HasAVX512FP16() bool {
	return false
}

// HasAVX512BF16 returns false on non-x86 platforms (AVX-512 is x86-specific).
func HasAVX512BF16() bool {
	return false
}

// HasARMFP16 returns false on non-ARM64 platforms (ARM FP16 is ARM-specific).
func HasARMFP16() bool {
	return false
}

// HasARMBF16 returns false on non-ARM64 platforms (ARM BF16 is ARM-specific).
func HasARMBF16() bool {
	return false
}
