package av1

import (
	"fmt"

	"github.com/user/av1rtc/pkg/ports"
)

// Decoder owns one live decoder context. The picture size is discovered
// from the bitstream.
type Decoder struct {
	ctx   ports.DecoderContext
	log   ports.Logger
	epoch uint64
}

// NewDecoder initializes a decoder with the given thread count.
func NewDecoder(engine ports.Engine, threads int, log ports.Logger) (*Decoder, error) {
	if threads < 1 {
		threads = 1
	}
	log = log.WithComponent("av1.decoder")

	ctx, err := engine.NewDecoder(ports.DecoderConfig{
		Threads:          threads,
		AllowLowBitDepth: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineInit, err)
	}
	log.Debug("Decoder created: %d threads", threads)

	return &Decoder{ctx: ctx, log: log}, nil
}

// Decode submits one compressed chunk and returns the images it completed.
// A decoder may need several chunks before producing anything.
//
// Images are owned by the engine and are invalidated by the next Decode,
// Flush or Close.
func (d *Decoder) Decode(data []byte) (*Images, error) {
	if d.ctx == nil {
		return nil, ErrClosed
	}
	d.epoch++
	if err := d.ctx.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineDecode, err)
	}
	return &Images{dec: d, epoch: d.epoch}, nil
}

// Flush asks the engine for any frame it is holding back.
func (d *Decoder) Flush() (*Images, error) {
	return d.Decode(nil)
}

// Close releases the engine context. Closing twice is a no-op.
// It panics if the engine fails to release the context.
func (d *Decoder) Close() {
	if d.ctx == nil {
		return
	}
	ctx := d.ctx
	d.ctx = nil
	d.epoch++
	if err := ctx.Destroy(); err != nil {
		panic(fmt.Sprintf("av1: destroy decoder: %v", err))
	}
}
