// Package limits provides centralized format limits for the comb-repair pipeline.
// This ensures consistent validation across different components of the system.
package limits

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/opd-ai/mpeg2stinx/video"
)

const (
	// MaxPlanes is the largest plane count of a supported format (Y, U, V).
	MaxPlanes = 3

	// MaxSubSampling is the largest log2 chroma subsampling factor accepted.
	MaxSubSampling = 2

	// MaxDimension bounds width and height to keep accumulators and
	// allocation sizes sane (16K video).
	MaxDimension = 16384

	// BlurKernelScale is the integer scale the 3-tap blur kernels are
	// quantized to.
	BlurKernelScale = 1023
)

// SupportedBitDepths lists the sample widths the kernels implement.
var SupportedBitDepths = []int{8, 16, 32}

var (
	// ErrUnsupportedFormat indicates a format the kernels cannot process
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", video.ErrFormatMismatch)

	// ErrBadGeometry indicates frame dimensions that cannot be split into fields
	ErrBadGeometry = fmt.Errorf("%w: bad frame geometry", video.ErrFormatMismatch)
)

// ValidateFormat validates a format against the supported sample widths and
// plane layouts. Returns an error with context naming the offending value.
func ValidateFormat(format video.Format) error {
	if format.IsZero() {
		return fmt.Errorf("%w: variable or undefined format", ErrUnsupportedFormat)
	}
	if !lo.Contains(SupportedBitDepths, format.BitsPerSample) {
		return fmt.Errorf("%w: bit depth %d not in %v", ErrUnsupportedFormat, format.BitsPerSample, SupportedBitDepths)
	}
	if format.BytesPerSample != video.BytesForBits(format.BitsPerSample) {
		return fmt.Errorf("%w: %d bytes per sample for %d bits", ErrUnsupportedFormat,
			format.BytesPerSample, format.BitsPerSample)
	}
	if format.NumPlanes() < 1 || format.NumPlanes() > MaxPlanes {
		return fmt.Errorf("%w: %d planes", ErrUnsupportedFormat, format.NumPlanes())
	}
	if format.SubSamplingW < 0 || format.SubSamplingW > MaxSubSampling ||
		format.SubSamplingH < 0 || format.SubSamplingH > MaxSubSampling {
		return fmt.Errorf("%w: subsampling %dx%d exceeds %d", ErrUnsupportedFormat,
			format.SubSamplingW, format.SubSamplingH, MaxSubSampling)
	}
	return nil
}

// ValidateDimensions validates frame dimensions against MaxDimension and the
// chroma subsampling of the format.
func ValidateDimensions(info video.Info) error {
	if info.Width <= 0 || info.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadGeometry, info.Width, info.Height)
	}
	if info.Width > MaxDimension || info.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds limit %d", ErrBadGeometry, info.Width, info.Height, MaxDimension)
	}
	if info.Width%(1<<uint(info.Format.SubSamplingW)) != 0 || info.Height%(1<<uint(info.Format.SubSamplingH)) != 0 {
		return fmt.Errorf("%w: %dx%d not divisible by chroma subsampling", ErrBadGeometry, info.Width, info.Height)
	}
	return nil
}

// ValidateFieldGeometry validates that every plane of a clip can be split
// into two whole fields.
func ValidateFieldGeometry(info video.Info) error {
	if err := ValidateDimensions(info); err != nil {
		return err
	}
	mod := 2 << uint(info.Format.SubSamplingH)
	if info.Height%mod != 0 {
		return fmt.Errorf("%w: height %d must be a multiple of %d to separate fields", ErrBadGeometry, info.Height, mod)
	}
	return nil
}

// ValidateClip runs every check that applies to a clip entering the pipeline.
func ValidateClip(info video.Info) error {
	return errors.Join(ValidateFormat(info.Format), ValidateFieldGeometry(info))
}
