package kernel

import (
	"github.com/opd-ai/mpeg2stinx/video"
)

func minOp[T video.Sample, A Acc](x, y T, _ *env[A]) T {
	if y < x {
		return y
	}
	return x
}

func maxOp[T video.Sample, A Acc](x, y T, _ *env[A]) T {
	if y > x {
		return y
	}
	return x
}

func diffOp[T video.Sample, A Acc](x, y T, e *env[A]) T {
	d := A(x) - A(y)
	if d < 0 {
		d = -d
	}
	return clampTo[T](d, e.max)
}

func makeDiffOp[T video.Sample, A Acc](x, y T, e *env[A]) T {
	return clampTo[T](A(x)-A(y)+e.bias, e.max)
}

func addDiffOp[T video.Sample, A Acc](x, y T, e *env[A]) T {
	return clampTo[T](A(x)+A(y)-e.bias, e.max)
}

func sharpOp[T video.Sample, A Acc](x, y T, e *env[A]) T {
	return clampTo[T](A(x)+scaled(A(x)-A(y), e.scale, e.max), e.max)
}

func sharpDOp[T video.Sample, A Acc](x, y T, e *env[A]) T {
	return clampTo[T](e.bias+scaled(A(x)-A(y), e.scale, e.max), e.max)
}

// limDOp keeps whichever operand deviates less from the bias, y on a tie.
// When the two deviations point in opposite directions the kept one is
// scaled.
func limDOp[T video.Sample, A Acc](x, y T, e *env[A]) T {
	dx := A(x) - e.bias
	dy := A(y) - e.bias
	d := dy
	if abs(dx) < abs(dy) {
		d = dx
	}
	if (dx < 0 && dy > 0) || (dx > 0 && dy < 0) {
		d = scaled(d, e.scale, e.max)
	}
	return clampTo[T](d+e.bias, e.max)
}

func averageOp[T video.Sample, A Acc](x, y T, _ *env[A]) T {
	return T((uint64(x) + uint64(y) + 1) >> 1)
}

func median3Op[T video.Sample, A Acc](x, y, z T, _ *env[A]) T {
	if x > y {
		x, y = y, x
	}
	if y > z {
		y = z
	}
	if x > y {
		return x
	}
	return y
}

func abs[A Acc](v A) A {
	if v < 0 {
		return -v
	}
	return v
}

var (
	minKernel      = binaryKernel{minOp[uint8, int16], minOp[uint16, int32], minOp[uint32, int64]}
	maxKernel      = binaryKernel{maxOp[uint8, int16], maxOp[uint16, int32], maxOp[uint32, int64]}
	diffKernel     = binaryKernel{diffOp[uint8, int16], diffOp[uint16, int32], diffOp[uint32, int64]}
	makeDiffKernel = binaryKernel{makeDiffOp[uint8, int16], makeDiffOp[uint16, int32], makeDiffOp[uint32, int64]}
	addDiffKernel  = binaryKernel{addDiffOp[uint8, int16], addDiffOp[uint16, int32], addDiffOp[uint32, int64]}
	sharpKernel    = binaryKernel{sharpOp[uint8, int16], sharpOp[uint16, int32], sharpOp[uint32, int64]}
	sharpDKernel   = binaryKernel{sharpDOp[uint8, int16], sharpDOp[uint16, int32], sharpDOp[uint32, int64]}
	limDKernel     = binaryKernel{limDOp[uint8, int16], limDOp[uint16, int32], limDOp[uint32, int64]}
	averageKernel  = binaryKernel{averageOp[uint8, int16], averageOp[uint16, int32], averageOp[uint32, int64]}
	median3Kernel  = ternaryKernel{median3Op[uint8, int16], median3Op[uint16, int32], median3Op[uint32, int64]}
)

// Min returns the per-sample minimum of a and b over every plane.
func Min(a, b *video.Frame) (*video.Frame, error) {
	return runBinary(a, b, AllPlanes, minKernel, params{})
}

// Max returns the per-sample maximum of a and b over every plane.
func Max(a, b *video.Frame) (*video.Frame, error) {
	return runBinary(a, b, AllPlanes, maxKernel, params{})
}

// Median3 returns the per-sample median of a, b and c. When processChroma
// is false only luma is filtered and chroma is copied from a.
func Median3(a, b, c *video.Frame, processChroma bool) (*video.Frame, error) {
	return runTernary(a, b, c, Planes(processChroma), median3Kernel, params{})
}

// MedianPlanes is Median3 over an explicit plane selection.
func MedianPlanes(a, b, c *video.Frame, planes PlaneMask) (*video.Frame, error) {
	return runTernary(a, b, c, planes, median3Kernel, params{})
}

// Diff returns |a - b|.
func Diff(a, b *video.Frame) (*video.Frame, error) {
	return runBinary(a, b, AllPlanes, diffKernel, params{})
}

// MakeDiff returns (a - b) + bias, clamped.
func MakeDiff(a, b *video.Frame, bias BiasMode) (*video.Frame, error) {
	return runBinary(a, b, AllPlanes, makeDiffKernel, params{bias: bias})
}

// AddDiff returns (a + b) - bias, clamped. AddDiff(b, MakeDiff(a, b)) == a
// wherever the intermediate difference did not clamp.
func AddDiff(a, b *video.Frame, bias BiasMode) (*video.Frame, error) {
	return runBinary(a, b, AllPlanes, addDiffKernel, params{bias: bias})
}

// Sharp returns cur + trunc((cur - blurred) * strength), clamped.
func Sharp(cur, blurred *video.Frame, strength float64) (*video.Frame, error) {
	return runBinary(cur, blurred, AllPlanes, sharpKernel, params{scale: strength})
}

// SharpD returns bias + trunc((cur - blurred) * strength), clamped.
func SharpD(cur, blurred *video.Frame, strength float64, bias BiasMode) (*video.Frame, error) {
	return runBinary(cur, blurred, AllPlanes, sharpDKernel, params{scale: strength, bias: bias})
}

// LimD limits two bias-centred difference clips against each other.
func LimD(a, b *video.Frame, scale float64, bias BiasMode) (*video.Frame, error) {
	return runBinary(a, b, AllPlanes, limDKernel, params{scale: scale, bias: bias})
}

// Average returns (a + b + 1) / 2.
func Average(a, b *video.Frame) (*video.Frame, error) {
	return runBinary(a, b, AllPlanes, averageKernel, params{})
}
