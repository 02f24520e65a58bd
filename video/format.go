package video

import "fmt"

// ColorFamily identifies the plane layout of a format.
type ColorFamily int

const (
	// ColorFamilyUndefined marks a zero Format.
	ColorFamilyUndefined ColorFamily = iota
	// ColorFamilyGray is a single luma plane.
	ColorFamilyGray
	// ColorFamilyYUV is three planes: Y, U and V.
	ColorFamilyYUV
)

// String returns the family name.
func (c ColorFamily) String() string {
	switch c {
	case ColorFamilyGray:
		return "Gray"
	case ColorFamilyYUV:
		return "YUV"
	default:
		return "Undefined"
	}
}

// Format describes the sample layout shared by all frames of a clip.
type Format struct {
	ColorFamily    ColorFamily
	BitsPerSample  int
	BytesPerSample int
	SubSamplingW   int // log2 horizontal chroma subsampling
	SubSamplingH   int // log2 vertical chroma subsampling
}

// Preset formats.
var (
	Gray8     = NewFormat(ColorFamilyGray, 8, 0, 0)
	Gray16    = NewFormat(ColorFamilyGray, 16, 0, 0)
	Gray32    = NewFormat(ColorFamilyGray, 32, 0, 0)
	YUV420P8  = NewFormat(ColorFamilyYUV, 8, 1, 1)
	YUV422P8  = NewFormat(ColorFamilyYUV, 8, 1, 0)
	YUV444P8  = NewFormat(ColorFamilyYUV, 8, 0, 0)
	YUV420P16 = NewFormat(ColorFamilyYUV, 16, 1, 1)
	YUV444P16 = NewFormat(ColorFamilyYUV, 16, 0, 0)
	YUV444P32 = NewFormat(ColorFamilyYUV, 32, 0, 0)
	YUV420P32 = NewFormat(ColorFamilyYUV, 32, 1, 1)
)

// GrayFormat returns a gray format with the given bit depth.
func GrayFormat(bits int) Format {
	return NewFormat(ColorFamilyGray, bits, 0, 0)
}

// NewFormat builds a format, deriving the storage width from the bit depth.
func NewFormat(family ColorFamily, bits, subW, subH int) Format {
	if family == ColorFamilyGray {
		subW, subH = 0, 0
	}
	return Format{
		ColorFamily:    family,
		BitsPerSample:  bits,
		BytesPerSample: BytesForBits(bits),
		SubSamplingW:   subW,
		SubSamplingH:   subH,
	}
}

// BytesForBits returns the storage cell width for a bit depth.
func BytesForBits(bits int) int {
	switch {
	case bits <= 0:
		return 0
	case bits <= 8:
		return 1
	case bits <= 16:
		return 2
	default:
		return 4
	}
}

// IsZero reports whether the format is undefined. Clips with a variable
// format report a zero Format.
func (f Format) IsZero() bool {
	return f.ColorFamily == ColorFamilyUndefined
}

// NumPlanes returns 1 for gray and 3 for YUV.
func (f Format) NumPlanes() int {
	switch f.ColorFamily {
	case ColorFamilyGray:
		return 1
	case ColorFamilyYUV:
		return 3
	default:
		return 0
	}
}

// MaxValue returns the largest representable sample, 2^bits - 1.
func (f Format) MaxValue() uint64 {
	return (uint64(1) << uint(f.BitsPerSample)) - 1
}

// PlaneDimensions returns the size of plane i for a frame of width x height.
func (f Format) PlaneDimensions(i, width, height int) (int, int) {
	if i == 0 {
		return width, height
	}
	return width >> uint(f.SubSamplingW), height >> uint(f.SubSamplingH)
}

// Gray returns the single-plane format with the same sample layout.
func (f Format) Gray() Format {
	return NewFormat(ColorFamilyGray, f.BitsPerSample, 0, 0)
}

// String implements fmt.Stringer, e.g. "YUV420P8" or "Gray16".
func (f Format) String() string {
	if f.IsZero() {
		return "Undefined"
	}
	if f.ColorFamily == ColorFamilyGray {
		return fmt.Sprintf("Gray%d", f.BitsPerSample)
	}
	sub := "444"
	switch {
	case f.SubSamplingW == 1 && f.SubSamplingH == 1:
		sub = "420"
	case f.SubSamplingW == 1 && f.SubSamplingH == 0:
		sub = "422"
	case f.SubSamplingW == 2 && f.SubSamplingH == 0:
		sub = "411"
	case f.SubSamplingW != 0 || f.SubSamplingH != 0:
		sub = fmt.Sprintf("%d%d", f.SubSamplingW, f.SubSamplingH)
	}
	return fmt.Sprintf("YUV%sP%d", sub, f.BitsPerSample)
}

// FieldOrder describes how a clip's frames relate to interlaced fields.
type FieldOrder int

const (
	// Progressive frames are not field based.
	Progressive FieldOrder = iota
	// BottomFieldFirst frames are interlaced, bottom field first.
	BottomFieldFirst
	// TopFieldFirst frames are interlaced, top field first.
	TopFieldFirst
)

// Info is the constant description of a clip.
type Info struct {
	Format     Format
	Width      int
	Height     int
	NumFrames  int // 0 when the length is unknown
	FieldOrder FieldOrder
}

// SameFormat reports whether two clips share format and dimensions.
func (i Info) SameFormat(other Info) bool {
	return i.Format == other.Format && i.Width == other.Width && i.Height == other.Height
}

// IsConstant reports whether every frame of the clip shares one format.
func (i Info) IsConstant() bool {
	return !i.Format.IsZero() && i.Width > 0 && i.Height > 0
}
