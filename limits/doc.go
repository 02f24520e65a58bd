// Package limits provides centralized format constants and validation functions
// for the comb-repair pipeline. This package ensures consistent format enforcement
// across all components of the filter graph.
//
// # Supported Formats
//
// The pipeline operates on constant-format planar integer video:
//
//   - Sample widths of 8, 16 or 32 bits, stored in 1, 2 or 4 byte cells.
//     The kernels clamp every result to [0, 2^bits - 1].
//
//   - One gray plane or three Y, U, V planes. Chroma subsampling is limited
//     to MaxSubSampling in each direction.
//
//   - Frame heights must split into two fields whose chroma planes are still
//     whole rows, so the luma height must be a multiple of 2 << SubSamplingH.
//
// # Validation Functions
//
//	err := limits.ValidateFormat(info.Format)
//	if err != nil {
//	    // Handle ErrUnsupportedFormat
//	}
//
//	err = limits.ValidateFieldGeometry(info)
//
// # Error Types
//
//   - ErrUnsupportedFormat: the bit depth, storage width or plane layout is
//     outside what the kernels implement.
//   - ErrBadGeometry: the frame cannot be split into fields.
//
// Both wrap video.ErrFormatMismatch so callers can classify them with the
// module-wide taxonomy.
package limits
