package kernel

import (
	"fmt"

	"github.com/opd-ai/mpeg2stinx/video"
)

// Acc is the set of signed accumulators used for intermediate values.
type Acc interface {
	~int16 | ~int32 | ~int64
}

// BiasMode selects the constant that centres signed differences.
type BiasMode int

const (
	// BiasHalfRange centres differences at 1 << (bits-1), e.g. 128 for 8 bit.
	BiasHalfRange BiasMode = iota
	// BiasLegacy centres differences at 1 << (bits/2), e.g. 16 for 8 bit.
	BiasLegacy
)

// String implements fmt.Stringer.
func (b BiasMode) String() string {
	switch b {
	case BiasHalfRange:
		return "half-range"
	case BiasLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("BiasMode(%d)", int(b))
	}
}

// Bias returns the centring constant for a bit depth.
func (b BiasMode) Bias(bits int) uint64 {
	if b == BiasLegacy {
		return uint64(1) << uint(bits/2)
	}
	return uint64(1) << uint(bits-1)
}

// env carries the per-call constants in accumulator precision.
type env[A Acc] struct {
	max   A
	bias  A
	scale float64
}

func newEnv[A Acc](format video.Format, bias BiasMode, scale float64) *env[A] {
	return &env[A]{
		max:   A(format.MaxValue()),
		bias:  A(bias.Bias(format.BitsPerSample)),
		scale: scale,
	}
}

// clampTo saturates v into [0, max] and narrows it to the sample type.
func clampTo[T video.Sample, A Acc](v, max A) T {
	if v < 0 {
		return 0
	}
	if v > max {
		return T(max)
	}
	return T(v)
}

// scaled multiplies a difference by s, truncating toward zero. The result
// saturates at ±2·max so that it always fits the accumulator.
func scaled[A Acc](d A, s float64, max A) A {
	v := float64(d) * s
	limit := 2 * float64(max)
	if v > limit {
		v = limit
	} else if v < -limit {
		v = -limit
	}
	return A(v)
}

type binaryFunc[T video.Sample, A Acc] func(x, y T, e *env[A]) T

type ternaryFunc[T video.Sample, A Acc] func(x, y, z T, e *env[A]) T

// binaryKernel holds one operator instantiated for every storage width.
type binaryKernel struct {
	u8  binaryFunc[uint8, int16]
	u16 binaryFunc[uint16, int32]
	u32 binaryFunc[uint32, int64]
}

type ternaryKernel struct {
	u8  ternaryFunc[uint8, int16]
	u16 ternaryFunc[uint16, int32]
	u32 ternaryFunc[uint32, int64]
}

// params are the scalar arguments shared by all planes of one call.
type params struct {
	bias  BiasMode
	scale float64
}

func applyBinary[T video.Sample, A Acc](a, b, out *video.Plane, fn binaryFunc[T, A], e *env[A]) {
	for y := 0; y < out.Height; y++ {
		ra := video.Row[T](a, y)
		rb := video.Row[T](b, y)
		ro := video.Row[T](out, y)
		for x := range ro {
			ro[x] = fn(ra[x], rb[x], e)
		}
	}
}

func applyTernary[T video.Sample, A Acc](a, b, c, out *video.Plane, fn ternaryFunc[T, A], e *env[A]) {
	for y := 0; y < out.Height; y++ {
		ra := video.Row[T](a, y)
		rb := video.Row[T](b, y)
		rc := video.Row[T](c, y)
		ro := video.Row[T](out, y)
		for x := range ro {
			ro[x] = fn(ra[x], rb[x], rc[x], e)
		}
	}
}

// runBinary validates the operands and applies k to the planes selected by
// planes. Unselected planes are copied from a.
func runBinary(a, b *video.Frame, planes PlaneMask, k binaryKernel, p params) (*video.Frame, error) {
	if err := video.CheckCompatible(a, b); err != nil {
		return nil, err
	}
	out := video.NewFrameLike(a)
	for i := range out.Planes {
		if !planes.Has(i) {
			out.Planes[i] = a.Planes[i].Clone()
			continue
		}
		pa, pb, po := a.Planes[i], b.Planes[i], out.Planes[i]
		switch a.Format.BytesPerSample {
		case 1:
			applyBinary(pa, pb, po, k.u8, newEnv[int16](a.Format, p.bias, p.scale))
		case 2:
			applyBinary(pa, pb, po, k.u16, newEnv[int32](a.Format, p.bias, p.scale))
		case 4:
			applyBinary(pa, pb, po, k.u32, newEnv[int64](a.Format, p.bias, p.scale))
		default:
			return nil, video.MismatchError("bytes per sample", a.Format.BytesPerSample, "1, 2 or 4")
		}
	}
	return out, nil
}

func runTernary(a, b, c *video.Frame, planes PlaneMask, k ternaryKernel, p params) (*video.Frame, error) {
	if err := video.CheckCompatible(a, b, c); err != nil {
		return nil, err
	}
	out := video.NewFrameLike(a)
	for i := range out.Planes {
		if !planes.Has(i) {
			out.Planes[i] = a.Planes[i].Clone()
			continue
		}
		pa, pb, pc, po := a.Planes[i], b.Planes[i], c.Planes[i], out.Planes[i]
		switch a.Format.BytesPerSample {
		case 1:
			applyTernary(pa, pb, pc, po, k.u8, newEnv[int16](a.Format, p.bias, p.scale))
		case 2:
			applyTernary(pa, pb, pc, po, k.u16, newEnv[int32](a.Format, p.bias, p.scale))
		case 4:
			applyTernary(pa, pb, pc, po, k.u32, newEnv[int64](a.Format, p.bias, p.scale))
		default:
			return nil, video.MismatchError("bytes per sample", a.Format.BytesPerSample, "1, 2 or 4")
		}
	}
	return out, nil
}

// PlaneMask selects the planes an operator processes.
type PlaneMask uint8

const (
	// PlaneLuma selects plane 0 only.
	PlaneLuma PlaneMask = 1 << iota
	planeU
	planeV

	// AllPlanes selects every plane.
	AllPlanes = PlaneLuma | planeU | planeV
)

// Planes builds a mask from a chroma flag: luma only, or every plane.
func Planes(processChroma bool) PlaneMask {
	if processChroma {
		return AllPlanes
	}
	return PlaneLuma
}

// PlaneList builds a mask from explicit plane indexes.
func PlaneList(indexes ...int) PlaneMask {
	var m PlaneMask
	for _, i := range indexes {
		if i >= 0 && i < 3 {
			m |= 1 << uint(i)
		}
	}
	return m
}

// Has reports whether plane i is selected.
func (m PlaneMask) Has(i int) bool {
	return i >= 0 && i < 3 && m&(1<<uint(i)) != 0
}
