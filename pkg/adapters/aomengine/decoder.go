//go:build !noaom

package aomengine

/*
#include <aom/aom_decoder.h>
#include <aom/aomdx.h>
#include <stdlib.h>

static aom_codec_err_t init_decoder(aom_codec_ctx_t *ctx, aom_codec_dec_cfg_t *cfg) {
    return aom_codec_dec_init(ctx, aom_codec_av1_dx(), cfg, 0);
}
*/
import "C"

import (
	"unsafe"

	"github.com/user/av1rtc/pkg/ports"
)

// decoder is one libaom decoder context. ctx and cfg live in C memory.
type decoder struct {
	ctx *C.aom_codec_ctx_t
	cfg *C.aom_codec_dec_cfg_t
}

// NewDecoder initializes an AV1 decoder. Zero width and height let libaom
// discover the picture size from the bitstream.
func (Engine) NewDecoder(cfg ports.DecoderConfig) (ports.DecoderContext, error) {
	d := &decoder{
		ctx: allocCtx(),
		cfg: (*C.aom_codec_dec_cfg_t)(C.calloc(1, C.sizeof_aom_codec_dec_cfg_t)),
	}
	if d.ctx == nil || d.cfg == nil {
		d.free()
		return nil, errAlloc("decoder context")
	}

	d.cfg.threads = C.uint(cfg.Threads)
	d.cfg.w = C.uint(cfg.Width)
	d.cfg.h = C.uint(cfg.Height)
	d.cfg.allow_lowbitdepth = C.uint(cBool(cfg.AllowLowBitDepth))

	if res := C.init_decoder(d.ctx, d.cfg); res != C.AOM_CODEC_OK {
		err := statusError("aom_codec_dec_init", res, d.ctx)
		d.free()
		return nil, err
	}
	return d, nil
}

// Decode submits data, or flushes when data is empty.
func (d *decoder) Decode(data []byte) error {
	var res C.aom_codec_err_t
	if len(data) == 0 {
		res = C.aom_codec_decode(d.ctx, nil, 0, nil)
	} else {
		res = C.aom_codec_decode(d.ctx, (*C.uint8_t)(unsafe.Pointer(&data[0])), C.size_t(len(data)), nil)
	}
	if res != C.AOM_CODEC_OK {
		return statusError("aom_codec_decode", res, d.ctx)
	}
	return nil
}

func (d *decoder) NextImage(cursor *ports.Cursor) (ports.ImageHandle, bool) {
	iter, _ := cursor.Token.(C.aom_codec_iter_t)
	img := C.aom_codec_get_frame(d.ctx, &iter)
	cursor.Token = iter
	if img == nil {
		return nil, false
	}
	return &aomImage{img: img}, true
}

func (d *decoder) Destroy() error {
	var err error
	if res := C.aom_codec_destroy(d.ctx); res != C.AOM_CODEC_OK {
		err = statusError("aom_codec_destroy", res, nil)
	}
	d.free()
	return err
}

func (d *decoder) free() {
	freeC(d.cfg)
	freeC(d.ctx)
	d.cfg, d.ctx = nil, nil
}

var _ ports.DecoderContext = (*decoder)(nil)
