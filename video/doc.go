// Package video defines the frame and plane data model shared by every
// stage of the comb-repair pipeline.
//
// # Formats
//
// A [Format] describes planar integer video: one gray plane or three
// Y, U, V planes, with 8, 16 or 32 significant bits stored in 1, 2 or 4
// byte cells. Chroma planes may be subsampled.
//
//	format := video.YUV420P8
//	frame := video.NewFrame(format, 720, 480)
//
// # Sample Access
//
// Plane data is stored as raw little-endian bytes so that one frame type
// serves every sample width. Typed row access goes through the generic
// [Row] helper:
//
//	row := video.Row[uint16](frame.Planes[0], y)
//	for x := range row {
//	    row[x] = min(row[x], 940)
//	}
//
// # Errors
//
// The package also owns the error taxonomy used across the module:
// [ErrInvalidConfig], [ErrFormatMismatch], [ErrDependencyUnavailable],
// [ErrUnimplemented] and [ErrExternalFilter]. Per-frame failures are tagged
// with the stage that produced them through [StageError]:
//
//	if errors.Is(err, video.ErrFormatMismatch) {
//	    // operands disagree on plane count, bit depth or byte width
//	}
package video
