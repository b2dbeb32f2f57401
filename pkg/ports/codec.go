// Package ports declares the interfaces between av1rtc's core and its
// adapters: the native AV1 engine, containers, rendering, debug sinks,
// the file system and logging.
package ports

import "fmt"

// Timebase is a rational number of seconds per timestamp tick.
type Timebase struct {
	Num int
	Den int
}

// Usage selects the engine's encoding profile.
type Usage int

const (
	UsageGoodQuality Usage = 0
	UsageRealtime    Usage = 1
)

// RateControl selects the rate-control end usage.
type RateControl int

const (
	RateControlVBR RateControl = iota
	RateControlCBR
	RateControlCQ
	RateControlQ
)

// String returns the string representation of the rate-control mode.
func (r RateControl) String() string {
	switch r {
	case RateControlVBR:
		return "vbr"
	case RateControlCBR:
		return "cbr"
	case RateControlCQ:
		return "cq"
	case RateControlQ:
		return "q"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// KeyframeMode selects keyframe placement.
type KeyframeMode int

const (
	KeyframeAuto KeyframeMode = iota
	KeyframeDisabled
)

// EncoderConfig is the complete configuration record an encoder context is
// initialized from. Quantizers are in the engine's 0-63 scale and
// TargetBitrate is in kbps. Buffer sizes are milliseconds of TargetBitrate.
type EncoderConfig struct {
	Width         int      `yaml:"width"`
	Height        int      `yaml:"height"`
	Threads       int      `yaml:"threads"`
	Timebase      Timebase `yaml:"timebase"`
	Usage         Usage    `yaml:"usage"`
	InputBitDepth int      `yaml:"input_bit_depth"`

	KeyframeMode    KeyframeMode `yaml:"keyframe_mode"`
	KeyframeMinDist int          `yaml:"keyframe_min_dist"`
	KeyframeMaxDist int          `yaml:"keyframe_max_dist"`

	MinQuantizer  int         `yaml:"min_quantizer"`
	MaxQuantizer  int         `yaml:"max_quantizer"`
	TargetBitrate int         `yaml:"target_bitrate"`
	RateControl   RateControl `yaml:"rate_control"`
	OnePass       bool        `yaml:"one_pass"`
	LagInFrames   int         `yaml:"lag_in_frames"`
	UndershootPct int         `yaml:"undershoot_pct"`
	OvershootPct  int         `yaml:"overshoot_pct"`

	BufInitialSize int `yaml:"buf_initial_size"`
	BufOptimalSize int `yaml:"buf_optimal_size"`
	BufSize        int `yaml:"buf_size"`

	ErrorResilient bool `yaml:"error_resilient"`
}

// DecoderConfig configures a decoder context. Zero Width/Height means the
// picture size is discovered from the bitstream.
type DecoderConfig struct {
	Threads          int
	Width            int
	Height           int
	AllowLowBitDepth bool
}

// PixelFormat identifies the layout of an image's planes.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatI420                // 8-bit YUV 4:2:0 planar
	PixelFormatI42016              // high bit depth YUV 4:2:0, 2 bytes per sample
	PixelFormatI444                // 8-bit YUV 4:4:4 planar
)

// String returns the string representation of the pixel format.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormatI420:
		return "I420"
	case PixelFormatI42016:
		return "I42016"
	case PixelFormatI444:
		return "I444"
	default:
		return "unknown"
	}
}

// ImageHandle is a decoded or allocated picture living in engine memory.
type ImageHandle interface {
	Format() PixelFormat
	Width() int
	Height() int

	// Stride returns the byte stride of plane 0 (Y), 1 (U) or 2 (V).
	Stride(plane int) int

	// Plane returns a view over a plane's bytes without copying.
	Plane(plane int) []byte

	// Free releases an image obtained from Engine.AllocImage.
	// Images owned by a decoder must never be freed by callers.
	Free()
}
