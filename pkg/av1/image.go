package av1

import (
	"fmt"
	"image"

	"github.com/user/av1rtc/pkg/ports"
)

// ImageView is a non-owning view over a decoded picture. Views yielded by
// Images borrow the engine's frame buffer and must not outlive the next push
// to the decoder. A zero ImageView is empty.
type ImageView struct {
	h ports.ImageHandle
}

// IsNull reports whether the view refers to no image.
func (v ImageView) IsNull() bool { return v.h == nil }

// Format returns the pixel format.
func (v ImageView) Format() ports.PixelFormat {
	if v.h == nil {
		return ports.PixelFormatUnknown
	}
	return v.h.Format()
}

// Width returns the display width in pixels.
func (v ImageView) Width() int {
	if v.h == nil {
		return 0
	}
	return v.h.Width()
}

// Height returns the display height in pixels.
func (v ImageView) Height() int {
	if v.h == nil {
		return 0
	}
	return v.h.Height()
}

// Stride returns the byte stride of plane 0 (Y), 1 (U) or 2 (V).
func (v ImageView) Stride(plane int) int {
	if v.h == nil || plane < 0 || plane > 2 {
		return 0
	}
	return v.h.Stride(plane)
}

// Plane returns the bytes of plane 0 (Y), 1 (U) or 2 (V) without copying.
func (v ImageView) Plane(plane int) []byte {
	if v.h == nil || plane < 0 || plane > 2 {
		return nil
	}
	return v.h.Plane(plane)
}

// YCbCr returns an image.YCbCr sharing the view's planes. It fails for
// formats with more than 8 bits per sample.
func (v ImageView) YCbCr() (*image.YCbCr, error) {
	var ratio image.YCbCrSubsampleRatio
	switch v.Format() {
	case ports.PixelFormatI420:
		ratio = image.YCbCrSubsampleRatio420
	case ports.PixelFormatI444:
		ratio = image.YCbCrSubsampleRatio444
	default:
		return nil, fmt.Errorf("av1: no YCbCr view for %s images", v.Format())
	}
	if v.Stride(1) != v.Stride(2) {
		return nil, fmt.Errorf("av1: chroma strides differ (%d, %d)", v.Stride(1), v.Stride(2))
	}
	return &image.YCbCr{
		Y:              v.Plane(0),
		Cb:             v.Plane(1),
		Cr:             v.Plane(2),
		YStride:        v.Stride(0),
		CStride:        v.Stride(1),
		SubsampleRatio: ratio,
		Rect:           image.Rect(0, 0, v.Width(), v.Height()),
	}, nil
}

// CopyYCbCr returns a deep copy of the picture that stays valid after the
// decoder moves on.
func (v ImageView) CopyYCbCr() (*image.YCbCr, error) {
	src, err := v.YCbCr()
	if err != nil {
		return nil, err
	}
	dst := image.NewYCbCr(src.Rect, src.SubsampleRatio)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	cw, ch := w, h
	if src.SubsampleRatio == image.YCbCrSubsampleRatio420 {
		cw, ch = (w+1)/2, (h+1)/2
	}
	copyPlane(dst.Y, dst.YStride, src.Y, src.YStride, w, h)
	copyPlane(dst.Cb, dst.CStride, src.Cb, src.CStride, cw, ch)
	copyPlane(dst.Cr, dst.CStride, src.Cr, src.CStride, cw, ch)
	return dst, nil
}

func copyPlane(dst []byte, dstStride int, src []byte, srcStride int, w, h int) {
	for y := 0; y < h; y++ {
		copy(dst[y*dstStride:y*dstStride+w], src[y*srcStride:y*srcStride+w])
	}
}

// Image owns a standalone picture allocated by the engine. The zero value,
// and EmptyImage, hold nothing.
type Image struct {
	h ports.ImageHandle
}

// EmptyImage returns an Image holding no picture.
func EmptyImage() *Image {
	return &Image{}
}

// AllocImage allocates a standalone picture owned by the returned Image.
func AllocImage(engine ports.Engine, format ports.PixelFormat, width, height, align int) (*Image, error) {
	h, err := engine.AllocImage(format, width, height, align)
	if err != nil {
		return nil, fmt.Errorf("av1: allocate %s %dx%d image: %w", format, width, height, err)
	}
	return &Image{h: h}, nil
}

// IsNull reports whether the image holds no picture.
func (img *Image) IsNull() bool { return img.h == nil }

// View returns a view over the image, valid until Close.
func (img *Image) View() ImageView {
	return ImageView{h: img.h}
}

// Close releases the picture. It is safe to call more than once.
func (img *Image) Close() {
	if img.h == nil {
		return
	}
	img.h.Free()
	img.h = nil
}
