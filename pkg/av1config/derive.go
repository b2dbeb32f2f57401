// Package av1config derives a complete real-time AV1 encoder configuration
// from a handful of user-facing knobs. It performs no I/O.
package av1config

import "github.com/user/av1rtc/pkg/ports"

// Fixed real-time parameters.
const (
	TicksPerSecond = 90000 // RTP clock; one PTS tick is 1/90000 s
	BitDepth       = 8
	LagInFrames    = 0 // no look-ahead

	UndershootPct  = 50
	OvershootPct   = 50
	BufInitialSize = 600
	BufOptimalSize = 600
	BufSize        = 1000
)

// Settings are the knobs an application controls.
type Settings struct {
	Width   int
	Height  int
	Quality Quality

	// KeyframeInterval is the maximum distance between keyframes in frames.
	// Zero disables automatic keyframe placement.
	KeyframeInterval int

	// Threads is supplied by the host process. Values below 1 are treated as 1.
	Threads int
}

// Derived is the output of Derive: a configuration record the engine can be
// initialized from in one call plus the controls to apply afterwards.
type Derived struct {
	Config   ports.EncoderConfig
	Controls []ports.Control
}

// Derive maps settings onto a complete encoder configuration. It never fails:
// out-of-range inputs are clamped.
func Derive(s Settings) Derived {
	threads := s.Threads
	if threads < 1 {
		threads = 1
	}

	cfg := ports.EncoderConfig{
		Width:         s.Width,
		Height:        s.Height,
		Threads:       threads,
		Timebase:      ports.Timebase{Num: 1, Den: TicksPerSecond},
		Usage:         ports.UsageRealtime,
		InputBitDepth: BitDepth,

		UndershootPct:  UndershootPct,
		OvershootPct:   OvershootPct,
		BufInitialSize: BufInitialSize,
		BufOptimalSize: BufOptimalSize,
		BufSize:        BufSize,
		ErrorResilient: false,

		// Frames must leave the encoder as soon as they are pushed.
		RateControl: ports.RateControlCBR,
		OnePass:     true,
		LagInFrames: LagInFrames,
	}

	if s.KeyframeInterval > 0 {
		cfg.KeyframeMode = ports.KeyframeAuto
		cfg.KeyframeMinDist = 0
		cfg.KeyframeMaxDist = s.KeyframeInterval
	} else {
		cfg.KeyframeMode = ports.KeyframeDisabled
	}

	cfg.MinQuantizer, cfg.MaxQuantizer = s.Quality.Quantizers()
	cfg.TargetBitrate = TargetBitrate(s.Width, s.Height, s.Quality)

	return Derived{
		Config:   cfg,
		Controls: Controls(cfg),
	}
}

// BaseBitrate returns the unscaled bitrate in kbps for a resolution.
func BaseBitrate(width, height int) int {
	base := width * height / 1000
	if base <= 0 {
		base = 1920 * 1080 / 1000
	}
	return base
}

// TargetBitrate scales the base bitrate by the quality's percentage, falling
// back to the base bitrate when the scaled value is not positive.
func TargetBitrate(width, height int, q Quality) int {
	base := BaseBitrate(width, height)
	_, _, scale := q.Params()
	if bitrate := base * scale / 100; bitrate > 0 {
		return bitrate
	}
	return base
}

// ApplyQuality overwrites only the quantizer bounds and target bitrate of cfg.
func ApplyQuality(cfg ports.EncoderConfig, width, height int, q Quality) ports.EncoderConfig {
	cfg.MinQuantizer, cfg.MaxQuantizer = q.Quantizers()
	cfg.TargetBitrate = TargetBitrate(width, height, q)
	return cfg
}
