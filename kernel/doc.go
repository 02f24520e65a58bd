// Package kernel implements the per-sample composition operators of the
// comb-repair pipeline.
//
// Every operator has one generic implementation parameterized by the sample
// storage type and a signed accumulator wide enough for the intermediate
// values of that width:
//
//	uint8  samples -> int16 accumulator
//	uint16 samples -> int32 accumulator
//	uint32 samples -> int64 accumulator
//
// Results are always clamped to [0, 2^bits - 1]; nothing wraps.
//
// # Operators
//
//	Min(a, b), Max(a, b)             per-sample min / max
//	Median3(a, b, c, chroma)         per-sample median of three
//	Diff(a, b)                       |a - b|
//	MakeDiff(a, b, bias)             (a - b) + bias
//	AddDiff(a, b, bias)              (a + b) - bias
//	Sharp(cur, blurred, s)           cur + (cur - blurred) * s
//	SharpD(cur, blurred, s, bias)    bias + (cur - blurred) * s
//	LimD(a, b, scale, bias)          smaller deviation, scaled on sign disagreement
//
// All operators validate that their operands agree on plane count, bit
// depth and byte width, failing with video.ErrFormatMismatch otherwise.
// Inputs are never modified; each call allocates one output frame.
package kernel
