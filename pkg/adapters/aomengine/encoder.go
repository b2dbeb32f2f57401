//go:build !noaom

package aomengine

/*
#include <aom/aom_encoder.h>
#include <aom/aomcx.h>
#include <stdlib.h>

typedef struct {
    unsigned int w, h, threads, usage, input_bit_depth;
    int tb_num, tb_den;
    int kf_auto;
    unsigned int kf_min, kf_max;
    unsigned int min_q, max_q, bitrate;
    int end_usage;
    int one_pass;
    unsigned int lag;
    unsigned int undershoot, overshoot;
    unsigned int buf_initial, buf_optimal, buf_sz;
    int error_resilient;
} rt_config;

static void apply_config(aom_codec_enc_cfg_t *cfg, const rt_config *c) {
    cfg->g_w = c->w;
    cfg->g_h = c->h;
    cfg->g_threads = c->threads;
    cfg->g_usage = c->usage;
    cfg->g_input_bit_depth = c->input_bit_depth;
    cfg->g_bit_depth = (aom_bit_depth_t)c->input_bit_depth;
    cfg->g_timebase.num = c->tb_num;
    cfg->g_timebase.den = c->tb_den;
    cfg->kf_mode = c->kf_auto ? AOM_KF_AUTO : AOM_KF_DISABLED;
    cfg->kf_min_dist = c->kf_min;
    cfg->kf_max_dist = c->kf_max;
    cfg->rc_min_quantizer = c->min_q;
    cfg->rc_max_quantizer = c->max_q;
    cfg->rc_target_bitrate = c->bitrate;
    switch (c->end_usage) {
    case 1: cfg->rc_end_usage = AOM_CBR; break;
    case 2: cfg->rc_end_usage = AOM_CQ; break;
    case 3: cfg->rc_end_usage = AOM_Q; break;
    default: cfg->rc_end_usage = AOM_VBR; break;
    }
    if (c->one_pass) {
        cfg->g_pass = AOM_RC_ONE_PASS;
    }
    cfg->g_lag_in_frames = c->lag;
    cfg->rc_undershoot_pct = c->undershoot;
    cfg->rc_overshoot_pct = c->overshoot;
    cfg->rc_buf_initial_sz = c->buf_initial;
    cfg->rc_buf_optimal_sz = c->buf_optimal;
    cfg->rc_buf_sz = c->buf_sz;
    cfg->g_error_resilient = c->error_resilient ? AOM_ERROR_RESILIENT_DEFAULT : 0;
}

static void read_config(const aom_codec_enc_cfg_t *cfg, rt_config *c) {
    c->w = cfg->g_w;
    c->h = cfg->g_h;
    c->threads = cfg->g_threads;
    c->usage = cfg->g_usage;
    c->input_bit_depth = cfg->g_input_bit_depth;
    c->tb_num = cfg->g_timebase.num;
    c->tb_den = cfg->g_timebase.den;
    c->kf_auto = cfg->kf_mode == AOM_KF_AUTO;
    c->kf_min = cfg->kf_min_dist;
    c->kf_max = cfg->kf_max_dist;
    c->min_q = cfg->rc_min_quantizer;
    c->max_q = cfg->rc_max_quantizer;
    c->bitrate = cfg->rc_target_bitrate;
    switch (cfg->rc_end_usage) {
    case AOM_CBR: c->end_usage = 1; break;
    case AOM_CQ: c->end_usage = 2; break;
    case AOM_Q: c->end_usage = 3; break;
    default: c->end_usage = 0; break;
    }
    c->one_pass = cfg->g_pass == AOM_RC_ONE_PASS;
    c->lag = cfg->g_lag_in_frames;
    c->undershoot = cfg->rc_undershoot_pct;
    c->overshoot = cfg->rc_overshoot_pct;
    c->buf_initial = cfg->rc_buf_initial_sz;
    c->buf_optimal = cfg->rc_buf_optimal_sz;
    c->buf_sz = cfg->rc_buf_sz;
    c->error_resilient = cfg->g_error_resilient != 0;
}

// The engine keeps its own copy of the configuration it was last given.
static const aom_codec_enc_cfg_t* live_config(aom_codec_ctx_t *ctx) {
    return ctx->config.enc;
}

static aom_codec_err_t init_encoder(aom_codec_ctx_t *ctx, aom_codec_enc_cfg_t *cfg) {
    return aom_codec_enc_init(ctx, aom_codec_av1_cx(), cfg, 0);
}

static aom_codec_err_t config_default(aom_codec_enc_cfg_t *cfg, unsigned int usage) {
    return aom_codec_enc_config_default(aom_codec_av1_cx(), cfg, usage);
}

// aom_codec_control is a type-checked macro that needs a literal control id.
#define CTRL(id) case id: return aom_codec_control(ctx, id, value);

static aom_codec_err_t control_int(aom_codec_ctx_t *ctx, int id, int value) {
    switch (id) {
    CTRL(AOME_SET_CPUUSED)
    CTRL(AV1E_SET_ENABLE_CDEF)
    CTRL(AV1E_SET_ENABLE_TPL_MODEL)
    CTRL(AV1E_SET_DELTAQ_MODE)
    CTRL(AV1E_SET_ENABLE_ORDER_HINT)
    CTRL(AV1E_SET_AQ_MODE)
    CTRL(AOME_SET_MAX_INTRA_BITRATE_PCT)
    CTRL(AV1E_SET_COEFF_COST_UPD_FREQ)
    CTRL(AV1E_SET_MODE_COST_UPD_FREQ)
    CTRL(AV1E_SET_MV_COST_UPD_FREQ)
    CTRL(AV1E_SET_TUNE_CONTENT)
    CTRL(AV1E_SET_ENABLE_PALETTE)
    CTRL(AV1E_SET_TILE_ROWS)
    CTRL(AV1E_SET_TILE_COLUMNS)
    CTRL(AV1E_SET_ROW_MT)
    CTRL(AV1E_SET_ENABLE_OBMC)
    CTRL(AV1E_SET_NOISE_SENSITIVITY)
    CTRL(AV1E_SET_ENABLE_WARPED_MOTION)
    CTRL(AV1E_SET_ENABLE_GLOBAL_MOTION)
    CTRL(AV1E_SET_ENABLE_REF_FRAME_MVS)
    CTRL(AV1E_SET_SUPERBLOCK_SIZE)
    CTRL(AV1E_SET_ENABLE_CFL_INTRA)
    CTRL(AV1E_SET_ENABLE_SMOOTH_INTRA)
    CTRL(AV1E_SET_ENABLE_ANGLE_DELTA)
    CTRL(AV1E_SET_ENABLE_FILTER_INTRA)
    CTRL(AV1E_SET_INTRA_DEFAULT_TX_ONLY)
    CTRL(AV1E_SET_DISABLE_TRELLIS_QUANT)
    CTRL(AV1E_SET_ENABLE_DIST_WTD_COMP)
    CTRL(AV1E_SET_ENABLE_DIFF_WTD_COMP)
    CTRL(AV1E_SET_ENABLE_DUAL_FILTER)
    CTRL(AV1E_SET_ENABLE_INTERINTRA_COMP)
    CTRL(AV1E_SET_ENABLE_INTERINTRA_WEDGE)
    CTRL(AV1E_SET_ENABLE_INTRA_EDGE_FILTER)
    CTRL(AV1E_SET_ENABLE_INTRABC)
    CTRL(AV1E_SET_ENABLE_MASKED_COMP)
    CTRL(AV1E_SET_ENABLE_PAETH_INTRA)
    CTRL(AV1E_SET_ENABLE_QM)
    CTRL(AV1E_SET_ENABLE_RECT_PARTITIONS)
    CTRL(AV1E_SET_ENABLE_RESTORATION)
    CTRL(AV1E_SET_ENABLE_SMOOTH_INTERINTRA)
    CTRL(AV1E_SET_ENABLE_TX64)
    CTRL(AV1E_SET_MAX_REFERENCE_FRAMES)
    default:
        return AOM_CODEC_INVALID_PARAM;
    }
}

static int pkt_kind(const aom_codec_cx_pkt_t *pkt) {
    return pkt->kind;
}

static void* pkt_frame_buf(const aom_codec_cx_pkt_t *pkt) {
    return pkt->data.frame.buf;
}

static size_t pkt_frame_sz(const aom_codec_cx_pkt_t *pkt) {
    return pkt->data.frame.sz;
}

static int pkt_is_key(const aom_codec_cx_pkt_t *pkt) {
    return (pkt->data.frame.flags & AOM_FRAME_IS_KEY) != 0;
}

static aom_codec_pts_t pkt_pts(const aom_codec_cx_pkt_t *pkt) {
    return pkt->data.frame.pts;
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/user/av1rtc/pkg/ports"
)

var controlIDs = map[ports.ControlID]C.int{
	ports.ControlCPUUsed:                C.AOME_SET_CPUUSED,
	ports.ControlEnableCDEF:             C.AV1E_SET_ENABLE_CDEF,
	ports.ControlEnableTPLModel:         C.AV1E_SET_ENABLE_TPL_MODEL,
	ports.ControlDeltaQMode:             C.AV1E_SET_DELTAQ_MODE,
	ports.ControlEnableOrderHint:        C.AV1E_SET_ENABLE_ORDER_HINT,
	ports.ControlAQMode:                 C.AV1E_SET_AQ_MODE,
	ports.ControlMaxIntraBitratePct:     C.AOME_SET_MAX_INTRA_BITRATE_PCT,
	ports.ControlCoeffCostUpdFreq:       C.AV1E_SET_COEFF_COST_UPD_FREQ,
	ports.ControlModeCostUpdFreq:        C.AV1E_SET_MODE_COST_UPD_FREQ,
	ports.ControlMVCostUpdFreq:          C.AV1E_SET_MV_COST_UPD_FREQ,
	ports.ControlTuneContent:            C.AV1E_SET_TUNE_CONTENT,
	ports.ControlEnablePalette:          C.AV1E_SET_ENABLE_PALETTE,
	ports.ControlTileRows:               C.AV1E_SET_TILE_ROWS,
	ports.ControlTileColumns:            C.AV1E_SET_TILE_COLUMNS,
	ports.ControlRowMT:                  C.AV1E_SET_ROW_MT,
	ports.ControlEnableOBMC:             C.AV1E_SET_ENABLE_OBMC,
	ports.ControlNoiseSensitivity:       C.AV1E_SET_NOISE_SENSITIVITY,
	ports.ControlEnableWarpedMotion:     C.AV1E_SET_ENABLE_WARPED_MOTION,
	ports.ControlEnableGlobalMotion:     C.AV1E_SET_ENABLE_GLOBAL_MOTION,
	ports.ControlEnableRefFrameMVs:      C.AV1E_SET_ENABLE_REF_FRAME_MVS,
	ports.ControlSuperblockSize:         C.AV1E_SET_SUPERBLOCK_SIZE,
	ports.ControlEnableCFLIntra:         C.AV1E_SET_ENABLE_CFL_INTRA,
	ports.ControlEnableSmoothIntra:      C.AV1E_SET_ENABLE_SMOOTH_INTRA,
	ports.ControlEnableAngleDelta:       C.AV1E_SET_ENABLE_ANGLE_DELTA,
	ports.ControlEnableFilterIntra:      C.AV1E_SET_ENABLE_FILTER_INTRA,
	ports.ControlIntraDefaultTXOnly:     C.AV1E_SET_INTRA_DEFAULT_TX_ONLY,
	ports.ControlDisableTrellisQuant:    C.AV1E_SET_DISABLE_TRELLIS_QUANT,
	ports.ControlEnableDistWtdComp:      C.AV1E_SET_ENABLE_DIST_WTD_COMP,
	ports.ControlEnableDiffWtdComp:      C.AV1E_SET_ENABLE_DIFF_WTD_COMP,
	ports.ControlEnableDualFilter:       C.AV1E_SET_ENABLE_DUAL_FILTER,
	ports.ControlEnableInterIntraComp:   C.AV1E_SET_ENABLE_INTERINTRA_COMP,
	ports.ControlEnableInterIntraWedge:  C.AV1E_SET_ENABLE_INTERINTRA_WEDGE,
	ports.ControlEnableIntraEdgeFilter:  C.AV1E_SET_ENABLE_INTRA_EDGE_FILTER,
	ports.ControlEnableIntraBC:          C.AV1E_SET_ENABLE_INTRABC,
	ports.ControlEnableMaskedComp:       C.AV1E_SET_ENABLE_MASKED_COMP,
	ports.ControlEnablePaethIntra:       C.AV1E_SET_ENABLE_PAETH_INTRA,
	ports.ControlEnableQM:               C.AV1E_SET_ENABLE_QM,
	ports.ControlEnableRectPartitions:   C.AV1E_SET_ENABLE_RECT_PARTITIONS,
	ports.ControlEnableRestoration:      C.AV1E_SET_ENABLE_RESTORATION,
	ports.ControlEnableSmoothInterIntra: C.AV1E_SET_ENABLE_SMOOTH_INTERINTRA,
	ports.ControlEnableTX64:             C.AV1E_SET_ENABLE_TX64,
	ports.ControlMaxReferenceFrames:     C.AV1E_SET_MAX_REFERENCE_FRAMES,
}

// encoder is one libaom encoder context. ctx, cfg and img live in C memory.
type encoder struct {
	ctx *C.aom_codec_ctx_t
	cfg *C.aom_codec_enc_cfg_t
	img *C.aom_image_t
}

// NewEncoder loads libaom's default configuration for cfg.Usage, overlays cfg
// and initializes an encoder.
func (Engine) NewEncoder(cfg ports.EncoderConfig) (ports.EncoderContext, error) {
	e := &encoder{
		ctx: allocCtx(),
		cfg: (*C.aom_codec_enc_cfg_t)(C.calloc(1, C.sizeof_aom_codec_enc_cfg_t)),
		img: (*C.aom_image_t)(C.calloc(1, C.sizeof_aom_image_t)),
	}
	if e.ctx == nil || e.cfg == nil || e.img == nil {
		e.free()
		return nil, errAlloc("encoder context")
	}

	if res := C.config_default(e.cfg, C.uint(cfg.Usage)); res != C.AOM_CODEC_OK {
		e.free()
		return nil, fmt.Errorf("%w: %w", ports.ErrNoDefaultConfig, statusError("aom_codec_enc_config_default", res, nil))
	}

	rc := toRTConfig(cfg)
	C.apply_config(e.cfg, &rc)

	if res := C.init_encoder(e.ctx, e.cfg); res != C.AOM_CODEC_OK {
		err := statusError("aom_codec_enc_init", res, e.ctx)
		e.free()
		return nil, err
	}
	return e, nil
}

func (e *encoder) Control(id ports.ControlID, value int) error {
	native, ok := controlIDs[id]
	if !ok {
		return fmt.Errorf("aomengine: unknown control %s", id)
	}
	if res := C.control_int(e.ctx, native, C.int(value)); res != C.AOM_CODEC_OK {
		return statusError("aom_codec_control("+id.String()+")", res, e.ctx)
	}
	return nil
}

func (e *encoder) Config() ports.EncoderConfig {
	var rc C.rt_config
	C.read_config(C.live_config(e.ctx), &rc)
	return fromRTConfig(rc)
}

// SetConfig starts from the live configuration so fields EncoderConfig does
// not model are preserved.
func (e *encoder) SetConfig(cfg ports.EncoderConfig) error {
	*e.cfg = *C.live_config(e.ctx)
	rc := toRTConfig(cfg)
	C.apply_config(e.cfg, &rc)
	if res := C.aom_codec_enc_config_set(e.ctx, e.cfg); res != C.AOM_CODEC_OK {
		return statusError("aom_codec_enc_config_set", res, e.ctx)
	}
	return nil
}

// Encode wraps frame.Data in place. The buffer is pinned for the duration of
// the call since libaom holds it through the C image descriptor.
func (e *encoder) Encode(frame ports.RawFrame, pts int64, duration uint64, flags uint32) error {
	if len(frame.Data) == 0 {
		return &ports.StatusError{Call: "aom_img_wrap", Code: int(C.AOM_CODEC_INVALID_PARAM), Message: "empty frame"}
	}
	format, ok := imgFormat(frame.Format)
	if !ok {
		return &ports.StatusError{Call: "aom_img_wrap", Code: int(C.AOM_CODEC_INVALID_PARAM), Message: "unsupported pixel format " + frame.Format.String()}
	}
	align := frame.StrideAlign
	if align < 1 {
		align = 1
	}

	var pinner runtime.Pinner
	pinner.Pin(&frame.Data[0])
	defer pinner.Unpin()

	img := C.aom_img_wrap(e.img, format, C.uint(frame.Width), C.uint(frame.Height), C.uint(align),
		(*C.uchar)(unsafe.Pointer(&frame.Data[0])))
	if img == nil {
		return &ports.StatusError{Call: "aom_img_wrap", Code: int(C.AOM_CODEC_INVALID_PARAM), Message: "invalid image layout"}
	}
	defer func() {
		// Drop the Go pointer from C memory once the engine is done with it.
		for p := range e.img.planes {
			e.img.planes[p] = nil
		}
		e.img.img_data = nil
	}()

	res := C.aom_codec_encode(e.ctx, img, C.aom_codec_pts_t(pts), C.ulong(duration), C.aom_enc_frame_flags_t(flags))
	if res != C.AOM_CODEC_OK {
		return statusError("aom_codec_encode", res, e.ctx)
	}
	return nil
}

func (e *encoder) NextPacket(cursor *ports.Cursor) (ports.Packet, bool) {
	iter, _ := cursor.Token.(C.aom_codec_iter_t)
	pkt := C.aom_codec_get_cx_data(e.ctx, &iter)
	cursor.Token = iter
	if pkt == nil {
		return ports.Packet{}, false
	}

	switch C.pkt_kind(pkt) {
	case C.AOM_CODEC_CX_FRAME_PKT:
		buf := C.pkt_frame_buf(pkt)
		sz := int(C.pkt_frame_sz(pkt))
		var data []byte
		if buf != nil && sz > 0 {
			data = unsafe.Slice((*byte)(buf), sz)
		}
		return ports.Packet{
			Kind: ports.PacketFrame,
			Data: data,
			Key:  C.pkt_is_key(pkt) != 0,
			PTS:  int64(C.pkt_pts(pkt)),
		}, true
	case C.AOM_CODEC_STATS_PKT:
		return ports.Packet{Kind: ports.PacketStats}, true
	case C.AOM_CODEC_PSNR_PKT:
		return ports.Packet{Kind: ports.PacketPSNR}, true
	default:
		return ports.Packet{Kind: ports.PacketCustom}, true
	}
}

func (e *encoder) Destroy() error {
	var err error
	if res := C.aom_codec_destroy(e.ctx); res != C.AOM_CODEC_OK {
		err = statusError("aom_codec_destroy", res, nil)
	}
	e.free()
	return err
}

func (e *encoder) free() {
	freeC(e.img)
	freeC(e.cfg)
	freeC(e.ctx)
	e.img, e.cfg, e.ctx = nil, nil, nil
}

func toRTConfig(cfg ports.EncoderConfig) C.rt_config {
	return C.rt_config{
		w:               C.uint(cfg.Width),
		h:               C.uint(cfg.Height),
		threads:         C.uint(cfg.Threads),
		usage:           C.uint(cfg.Usage),
		input_bit_depth: C.uint(cfg.InputBitDepth),
		tb_num:          C.int(cfg.Timebase.Num),
		tb_den:          C.int(cfg.Timebase.Den),
		kf_auto:         cBool(cfg.KeyframeMode == ports.KeyframeAuto),
		kf_min:          C.uint(cfg.KeyframeMinDist),
		kf_max:          C.uint(cfg.KeyframeMaxDist),
		min_q:           C.uint(cfg.MinQuantizer),
		max_q:           C.uint(cfg.MaxQuantizer),
		bitrate:         C.uint(cfg.TargetBitrate),
		end_usage:       C.int(cfg.RateControl),
		one_pass:        cBool(cfg.OnePass),
		lag:             C.uint(cfg.LagInFrames),
		undershoot:      C.uint(cfg.UndershootPct),
		overshoot:       C.uint(cfg.OvershootPct),
		buf_initial:     C.uint(cfg.BufInitialSize),
		buf_optimal:     C.uint(cfg.BufOptimalSize),
		buf_sz:          C.uint(cfg.BufSize),
		error_resilient: cBool(cfg.ErrorResilient),
	}
}

func fromRTConfig(rc C.rt_config) ports.EncoderConfig {
	kf := ports.KeyframeDisabled
	if rc.kf_auto != 0 {
		kf = ports.KeyframeAuto
	}
	return ports.EncoderConfig{
		Width:           int(rc.w),
		Height:          int(rc.h),
		Threads:         int(rc.threads),
		Timebase:        ports.Timebase{Num: int(rc.tb_num), Den: int(rc.tb_den)},
		Usage:           ports.Usage(rc.usage),
		InputBitDepth:   int(rc.input_bit_depth),
		KeyframeMode:    kf,
		KeyframeMinDist: int(rc.kf_min),
		KeyframeMaxDist: int(rc.kf_max),
		MinQuantizer:    int(rc.min_q),
		MaxQuantizer:    int(rc.max_q),
		TargetBitrate:   int(rc.bitrate),
		RateControl:     ports.RateControl(rc.end_usage),
		OnePass:         rc.one_pass != 0,
		LagInFrames:     int(rc.lag),
		UndershootPct:   int(rc.undershoot),
		OvershootPct:    int(rc.overshoot),
		BufInitialSize:  int(rc.buf_initial),
		BufOptimalSize:  int(rc.buf_optimal),
		BufSize:         int(rc.buf_sz),
		ErrorResilient:  rc.error_resilient != 0,
	}
}

func cBool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

var _ ports.EncoderContext = (*encoder)(nil)
