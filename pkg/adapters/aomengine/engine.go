//go:build !noaom

// Package aomengine implements ports.Engine on top of libaom.
package aomengine

/*
#cgo !windows pkg-config: aom
#cgo windows CFLAGS: -IC:/vcpkg/installed/x64-windows-static/include
#cgo windows LDFLAGS: -LC:/vcpkg/installed/x64-windows-static/lib -laom -static -lpthread
#include <aom/aom_codec.h>
#include <stdlib.h>

static const char* error_detail(aom_codec_ctx_t *ctx) {
    if (ctx == NULL || ctx->priv == NULL) {
        return NULL;
    }
    return aom_codec_error_detail(ctx);
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/user/av1rtc/pkg/ports"
)

// Engine is the libaom AV1 engine. It holds no state.
type Engine struct{}

// New returns the libaom engine.
func New() *Engine {
	return &Engine{}
}

// Version returns the libaom version string.
func Version() string {
	return C.GoString(C.aom_codec_version_str())
}

// statusError translates a non-OK libaom status. ctx may be nil.
func statusError(call string, res C.aom_codec_err_t, ctx *C.aom_codec_ctx_t) error {
	e := &ports.StatusError{
		Call:    call,
		Code:    int(res),
		Message: C.GoString(C.aom_codec_err_to_string(res)),
	}
	if detail := C.error_detail(ctx); detail != nil {
		e.Detail = C.GoString(detail)
	}
	return e
}

func allocCtx() *C.aom_codec_ctx_t {
	ctx := (*C.aom_codec_ctx_t)(C.calloc(1, C.sizeof_aom_codec_ctx_t))
	return ctx
}

func freeC[T any](p *T) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

var _ ports.Engine = (*Engine)(nil)

func errAlloc(what string) error {
	return fmt.Errorf("aomengine: failed to allocate %s", what)
}
