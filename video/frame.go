package video

import (
	"encoding/binary"
	"unsafe"
)

// Sample is the set of storage types for plane cells.
type Sample interface {
	~uint8 | ~uint16 | ~uint32
}

// Plane is a 2D grid of unsigned samples stored as raw bytes.
type Plane struct {
	Width          int
	Height         int
	Stride         int // samples per row
	BytesPerSample int
	Data           []byte
}

// NewPlane allocates a zeroed plane.
func NewPlane(width, height, bytesPerSample int) *Plane {
	if width <= 0 || height <= 0 {
		return &Plane{BytesPerSample: bytesPerSample}
	}
	return &Plane{
		Width:          width,
		Height:         height,
		Stride:         width,
		BytesPerSample: bytesPerSample,
		Data:           make([]byte, width*height*bytesPerSample),
	}
}

// Row returns the samples of row y as a typed slice aliasing the plane.
// T must match the plane's storage width.
func Row[T Sample](p *Plane, y int) []T {
	if y < 0 || y >= p.Height || len(p.Data) == 0 {
		return nil
	}
	var zero T
	if int(unsafe.Sizeof(zero)) != p.BytesPerSample {
		return nil
	}
	off := y * p.Stride * p.BytesPerSample
	return unsafe.Slice((*T)(unsafe.Pointer(&p.Data[off])), p.Width)
}

// At returns the sample at (x, y), or 0 outside the plane.
func (p *Plane) At(x, y int) uint32 {
	if x < 0 || x >= p.Width || y < 0 || y >= p.Height {
		return 0
	}
	off := (y*p.Stride + x) * p.BytesPerSample
	switch p.BytesPerSample {
	case 1:
		return uint32(p.Data[off])
	case 2:
		return uint32(binary.NativeEndian.Uint16(p.Data[off:]))
	default:
		return binary.NativeEndian.Uint32(p.Data[off:])
	}
}

// Set stores v at (x, y). Out of range coordinates are ignored.
func (p *Plane) Set(x, y int, v uint32) {
	if x < 0 || x >= p.Width || y < 0 || y >= p.Height {
		return
	}
	off := (y*p.Stride + x) * p.BytesPerSample
	switch p.BytesPerSample {
	case 1:
		p.Data[off] = uint8(v)
	case 2:
		binary.NativeEndian.PutUint16(p.Data[off:], uint16(v))
	default:
		binary.NativeEndian.PutUint32(p.Data[off:], v)
	}
}

// Fill sets every sample to v.
func (p *Plane) Fill(v uint32) {
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.Set(x, y, v)
		}
	}
}

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	return &Plane{
		Width:          p.Width,
		Height:         p.Height,
		Stride:         p.Stride,
		BytesPerSample: p.BytesPerSample,
		Data:           append([]byte(nil), p.Data...),
	}
}

// CopyRow copies row srcY of src into row dstY of p. Both planes must share
// width and sample size.
func (p *Plane) CopyRow(dstY int, src *Plane, srcY int) {
	n := p.Width * p.BytesPerSample
	d := dstY * p.Stride * p.BytesPerSample
	s := srcY * src.Stride * src.BytesPerSample
	copy(p.Data[d:d+n], src.Data[s:s+n])
}

// Frame is one picture: 1 or 3 planes sharing a format.
type Frame struct {
	Format Format
	Planes []*Plane
}

// NewFrame allocates a zeroed frame of the given format and luma size.
func NewFrame(format Format, width, height int) *Frame {
	n := format.NumPlanes()
	f := &Frame{
		Format: format,
		Planes: make([]*Plane, n),
	}
	for i := 0; i < n; i++ {
		w, h := format.PlaneDimensions(i, width, height)
		f.Planes[i] = NewPlane(w, h, format.BytesPerSample)
	}
	return f
}

// NewFrameLike allocates a zeroed frame with the format and size of f.
func NewFrameLike(f *Frame) *Frame {
	return NewFrame(f.Format, f.Width(), f.Height())
}

// Width returns the luma width.
func (f *Frame) Width() int {
	if len(f.Planes) == 0 {
		return 0
	}
	return f.Planes[0].Width
}

// Height returns the luma height.
func (f *Frame) Height() int {
	if len(f.Planes) == 0 {
		return 0
	}
	return f.Planes[0].Height
}

// Clone creates a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Format: f.Format,
		Planes: make([]*Plane, len(f.Planes)),
	}
	for i, p := range f.Planes {
		out.Planes[i] = p.Clone()
	}
	return out
}

// Matches reports whether the frame conforms to a clip description.
func (f *Frame) Matches(info Info) bool {
	return f.Format == info.Format && f.Width() == info.Width && f.Height() == info.Height &&
		len(f.Planes) == info.Format.NumPlanes()
}

// CheckCompatible verifies that frames share plane count, bit depth and
// byte width with the first one. The error names the offending value.
func CheckCompatible(frames ...*Frame) error {
	if len(frames) == 0 {
		return nil
	}
	ref := frames[0]
	for _, f := range frames[1:] {
		if len(f.Planes) != len(ref.Planes) {
			return MismatchError("plane count", len(f.Planes), len(ref.Planes))
		}
		if f.Format.BitsPerSample != ref.Format.BitsPerSample {
			return MismatchError("bit depth", f.Format.BitsPerSample, ref.Format.BitsPerSample)
		}
		if f.Format.BytesPerSample != ref.Format.BytesPerSample {
			return MismatchError("bytes per sample", f.Format.BytesPerSample, ref.Format.BytesPerSample)
		}
		for i, p := range f.Planes {
			rp := ref.Planes[i]
			if p.Width != rp.Width || p.Height != rp.Height {
				return MismatchError("plane dimensions",
					[2]int{p.Width, p.Height}, [2]int{rp.Width, rp.Height})
			}
		}
	}
	return nil
}
