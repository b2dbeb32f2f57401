// Package av1 drives real-time AV1 encoder and decoder sessions on top of a
// native engine and exposes their output as lazy, lifetime-scoped sequences.
//
// Sessions are single-owner: they may be handed between goroutines but must
// not be used by two goroutines at once.
package av1

import (
	"errors"
	"fmt"

	"github.com/user/av1rtc/pkg/av1config"
	"github.com/user/av1rtc/pkg/ports"
)

// Encoder owns one live encoder context.
type Encoder struct {
	ctx    ports.EncoderContext
	width  int
	height int
	log    ports.Logger

	// epoch increments on every push and on Close; iterators from an older
	// epoch report Exhausted.
	epoch uint64
}

// NewEncoder derives a configuration from s, initializes an engine context
// with it and applies the derived controls.
//
// Control failures are logged and ignored: an unsupported capability costs
// efficiency, not correctness.
func NewEncoder(engine ports.Engine, s av1config.Settings, log ports.Logger) (*Encoder, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrEngineInit, s.Width, s.Height)
	}
	log = log.WithComponent("av1.encoder")

	d := av1config.Derive(s)
	ctx, err := engine.NewEncoder(d.Config)
	if err != nil {
		if errors.Is(err, ports.ErrNoDefaultConfig) {
			return nil, fmt.Errorf("%w: %w", ErrConfigDefault, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrEngineInit, err)
	}

	for _, c := range d.Controls {
		if err := ctx.Control(c.ID, c.Value); err != nil {
			log.Warn("Control %s=%d not applied: %v", c.ID, c.Value, err)
		}
	}

	log.Debug("Encoder created: %dx%d, %d threads, q %d-%d, %d kbps",
		d.Config.Width, d.Config.Height, d.Config.Threads,
		d.Config.MinQuantizer, d.Config.MaxQuantizer, d.Config.TargetBitrate)

	return &Encoder{
		ctx:    ctx,
		width:  s.Width,
		height: s.Height,
		log:    log,
	}, nil
}

// Width returns the configured picture width.
func (e *Encoder) Width() int { return e.width }

// Height returns the configured picture height.
func (e *Encoder) Height() int { return e.height }

// FrameSize returns the minimum buffer length Encode accepts.
func (e *Encoder) FrameSize() int {
	return (3*e.width*e.height + 1) / 2
}

// Encode submits one tightly packed I420 frame without copying it and returns
// the frames the engine produced for it. The engine reads data only during
// this call.
//
// The returned iterator and its frames are invalidated by the next Encode
// or Close.
func (e *Encoder) Encode(pts int64, data []byte, strideAlign int) (*Frames, error) {
	if e.ctx == nil {
		return nil, ErrClosed
	}
	if 2*len(data) < 3*e.width*e.height {
		return nil, fmt.Errorf("%w: got %d bytes, need %d for %dx%d",
			ErrInsufficientData, len(data), e.FrameSize(), e.width, e.height)
	}

	e.epoch++
	frame := ports.RawFrame{
		Format:      ports.PixelFormatI420,
		Width:       e.width,
		Height:      e.height,
		StrideAlign: strideAlign,
		Data:        data,
	}
	if err := e.ctx.Encode(frame, pts, 1, 0); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineEncode, err)
	}
	return &Frames{enc: e, epoch: e.epoch}, nil
}

// EncodeCopy is Encode followed by Collect. It returns ErrNoOutput when the
// engine produced nothing for this push.
func (e *Encoder) EncodeCopy(pts int64, data []byte, strideAlign int) ([]Frame, error) {
	frames, err := e.Encode(pts, data, strideAlign)
	if err != nil {
		return nil, err
	}
	out := frames.Collect()
	if len(out) == 0 {
		return nil, ErrNoOutput
	}
	return out, nil
}

// SetQuality recomputes the quantizer bounds and target bitrate for q and
// applies them in place. Every other field of the live configuration is left
// as the engine reports it.
func (e *Encoder) SetQuality(q av1config.Quality) error {
	if e.ctx == nil {
		return ErrClosed
	}
	cfg := av1config.ApplyQuality(e.ctx.Config(), e.width, e.height, q)
	if err := e.ctx.SetConfig(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrEngineReconfig, err)
	}
	e.log.Debug("Quality set to %s: q %d-%d, %d kbps", q, cfg.MinQuantizer, cfg.MaxQuantizer, cfg.TargetBitrate)
	return nil
}

// Bitrate returns the live target bitrate in kbps, or 0 once closed.
func (e *Encoder) Bitrate() int {
	if e.ctx == nil {
		return 0
	}
	return e.ctx.Config().TargetBitrate
}

// Config returns a snapshot of the live configuration.
func (e *Encoder) Config() ports.EncoderConfig {
	if e.ctx == nil {
		return ports.EncoderConfig{}
	}
	return e.ctx.Config()
}

// Close releases the engine context. Closing twice is a no-op.
// It panics if the engine fails to release the context, since the native
// library state can no longer be trusted.
func (e *Encoder) Close() {
	if e.ctx == nil {
		return
	}
	ctx := e.ctx
	e.ctx = nil
	e.epoch++
	if err := ctx.Destroy(); err != nil {
		panic(fmt.Sprintf("av1: destroy encoder: %v", err))
	}
}
