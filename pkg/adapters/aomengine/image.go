//go:build !noaom

package aomengine

/*
#include <aom/aom_image.h>

static int img_fmt(const aom_image_t *img) {
    return img->fmt;
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/user/av1rtc/pkg/ports"
)

// aomImage adapts an aom_image_t. Decoder images are owned by the decoder;
// owned is set only for images from AllocImage.
type aomImage struct {
	img   *C.aom_image_t
	owned bool
}

// AllocImage allocates a standalone image with aom_img_alloc.
func (Engine) AllocImage(format ports.PixelFormat, width, height, align int) (ports.ImageHandle, error) {
	f, ok := imgFormat(format)
	if !ok {
		return nil, fmt.Errorf("aomengine: unsupported pixel format %s", format)
	}
	if align < 1 {
		align = 1
	}
	img := C.aom_img_alloc(nil, f, C.uint(width), C.uint(height), C.uint(align))
	if img == nil {
		return nil, errAlloc(fmt.Sprintf("%s %dx%d image", format, width, height))
	}
	return &aomImage{img: img, owned: true}, nil
}

func imgFormat(f ports.PixelFormat) (C.aom_img_fmt_t, bool) {
	switch f {
	case ports.PixelFormatI420:
		return C.AOM_IMG_FMT_I420, true
	case ports.PixelFormatI42016:
		return C.AOM_IMG_FMT_I42016, true
	case ports.PixelFormatI444:
		return C.AOM_IMG_FMT_I444, true
	default:
		return 0, false
	}
}

func (i *aomImage) Format() ports.PixelFormat {
	switch C.img_fmt(i.img) {
	case C.AOM_IMG_FMT_I420:
		return ports.PixelFormatI420
	case C.AOM_IMG_FMT_I42016:
		return ports.PixelFormatI42016
	case C.AOM_IMG_FMT_I444:
		return ports.PixelFormatI444
	default:
		return ports.PixelFormatUnknown
	}
}

func (i *aomImage) Width() int  { return int(i.img.d_w) }
func (i *aomImage) Height() int { return int(i.img.d_h) }

func (i *aomImage) Stride(plane int) int {
	return int(i.img.stride[plane])
}

// Plane returns the rows of plane that hold displayed pixels.
func (i *aomImage) Plane(plane int) []byte {
	p := i.img.planes[plane]
	if p == nil {
		return nil
	}
	rows := int(i.img.d_h)
	if plane > 0 {
		shift := uint(i.img.y_chroma_shift)
		rows = (rows + (1 << shift) - 1) >> shift
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), rows*i.Stride(plane))
}

func (i *aomImage) Free() {
	if !i.owned || i.img == nil {
		return
	}
	C.aom_img_free(i.img)
	i.img = nil
}

var _ ports.ImageHandle = (*aomImage)(nil)
