package mocks

import (
	"github.com/user/av1rtc/pkg/ports"
)

// Engine is a scripted implementation of ports.Engine. Contexts it creates
// read the error fields live, so tests may change them between calls.
type Engine struct {
	NewEncoderErr error
	NewDecoderErr error
	AllocErr      error

	ControlErrs  map[ports.ControlID]error
	EncodeErr    error
	SetConfigErr error
	DecodeErr    error
	DestroyErr   error

	// PacketsFunc returns the packets buffered by the n-th Encode call
	// (zero-based). Nil emits one key-on-first frame packet per push.
	PacketsFunc func(n int, frame ports.RawFrame, pts int64) []ports.Packet

	// ImagesFunc returns the images buffered by the n-th Decode call.
	// Nil emits one DecodeWidth x DecodeHeight I420 image per non-empty chunk.
	ImagesFunc   func(n int, data []byte) []ports.ImageHandle
	DecodeWidth  int
	DecodeHeight int

	// Recorded state for verification
	Encoders  []*EncoderContext
	Decoders  []*DecoderContext
	Allocated []*Image
}

// EncoderContext is the fake encoder context created by Engine.NewEncoder.
type EncoderContext struct {
	engine *Engine
	cfg    ports.EncoderConfig

	// Recorded calls for verification
	InitConfig     ports.EncoderConfig
	Controls       []ports.Control
	EncodeCalls    []EncodeCall
	SetConfigCalls []ports.EncoderConfig
	DestroyCalls   int

	pending []ports.Packet
}

// EncodeCall records a call to Encode.
type EncodeCall struct {
	PTS         int64
	Duration    uint64
	Flags       uint32
	StrideAlign int
	Len         int
}

// DecoderContext is the fake decoder context created by Engine.NewDecoder.
type DecoderContext struct {
	engine *Engine

	// Recorded calls for verification
	Config       ports.DecoderConfig
	DecodeCalls  [][]byte
	DestroyCalls int

	pending []ports.ImageHandle
}

// NewEncoder records cfg and returns a fake context.
func (m *Engine) NewEncoder(cfg ports.EncoderConfig) (ports.EncoderContext, error) {
	if m.NewEncoderErr != nil {
		return nil, m.NewEncoderErr
	}
	ctx := &EncoderContext{engine: m, cfg: cfg, InitConfig: cfg}
	m.Encoders = append(m.Encoders, ctx)
	return ctx, nil
}

// NewDecoder records cfg and returns a fake context.
func (m *Engine) NewDecoder(cfg ports.DecoderConfig) (ports.DecoderContext, error) {
	if m.NewDecoderErr != nil {
		return nil, m.NewDecoderErr
	}
	ctx := &DecoderContext{engine: m, Config: cfg}
	m.Decoders = append(m.Decoders, ctx)
	return ctx, nil
}

// AllocImage returns a Go-backed image.
func (m *Engine) AllocImage(format ports.PixelFormat, width, height, align int) (ports.ImageHandle, error) {
	if m.AllocErr != nil {
		return nil, m.AllocErr
	}
	img := NewImage(format, width, height, align)
	m.Allocated = append(m.Allocated, img)
	return img, nil
}

// Control records the assignment.
func (c *EncoderContext) Control(id ports.ControlID, value int) error {
	c.Controls = append(c.Controls, ports.Control{ID: id, Value: value})
	if err, ok := c.engine.ControlErrs[id]; ok {
		return err
	}
	return nil
}

// Config returns the live configuration.
func (c *EncoderContext) Config() ports.EncoderConfig {
	return c.cfg
}

// SetConfig records cfg and makes it live.
func (c *EncoderContext) SetConfig(cfg ports.EncoderConfig) error {
	c.SetConfigCalls = append(c.SetConfigCalls, cfg)
	if c.engine.SetConfigErr != nil {
		return c.engine.SetConfigErr
	}
	c.cfg = cfg
	return nil
}

// Encode records the push and buffers its scripted packets.
func (c *EncoderContext) Encode(frame ports.RawFrame, pts int64, duration uint64, flags uint32) error {
	n := len(c.EncodeCalls)
	c.EncodeCalls = append(c.EncodeCalls, EncodeCall{
		PTS:         pts,
		Duration:    duration,
		Flags:       flags,
		StrideAlign: frame.StrideAlign,
		Len:         len(frame.Data),
	})
	c.pending = nil
	if c.engine.EncodeErr != nil {
		return c.engine.EncodeErr
	}
	if c.engine.PacketsFunc != nil {
		c.pending = c.engine.PacketsFunc(n, frame, pts)
		return nil
	}
	c.pending = []ports.Packet{{
		Kind: ports.PacketFrame,
		Data: []byte{0x12, 0x00, byte(n)},
		Key:  n == 0,
		PTS:  pts,
	}}
	return nil
}

// NextPacket walks the packets buffered by the last Encode.
func (c *EncoderContext) NextPacket(cursor *ports.Cursor) (ports.Packet, bool) {
	i, _ := cursor.Token.(int)
	if i >= len(c.pending) {
		return ports.Packet{}, false
	}
	cursor.Token = i + 1
	return c.pending[i], true
}

// Destroy records the call.
func (c *EncoderContext) Destroy() error {
	c.DestroyCalls++
	return c.engine.DestroyErr
}

// Decode records the chunk and buffers its scripted images.
func (c *DecoderContext) Decode(data []byte) error {
	n := len(c.DecodeCalls)
	c.DecodeCalls = append(c.DecodeCalls, data)
	c.pending = nil
	if c.engine.DecodeErr != nil {
		return c.engine.DecodeErr
	}
	if c.engine.ImagesFunc != nil {
		c.pending = c.engine.ImagesFunc(n, data)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	w, h := c.engine.DecodeWidth, c.engine.DecodeHeight
	if w == 0 || h == 0 {
		w, h = 64, 36
	}
	c.pending = []ports.ImageHandle{NewImage(ports.PixelFormatI420, w, h, 32)}
	return nil
}

// NextImage walks the images buffered by the last Decode.
func (c *DecoderContext) NextImage(cursor *ports.Cursor) (ports.ImageHandle, bool) {
	i, _ := cursor.Token.(int)
	if i >= len(c.pending) {
		return nil, false
	}
	cursor.Token = i + 1
	return c.pending[i], true
}

// Destroy records the call.
func (c *DecoderContext) Destroy() error {
	c.DestroyCalls++
	return c.engine.DestroyErr
}

// Image is a Go-backed ports.ImageHandle.
type Image struct {
	Fmt       ports.PixelFormat
	W, H      int
	Strides   [3]int
	Planes    [3][]byte
	FreeCalls int
}

// NewImage allocates planes for format with strides rounded up to align.
func NewImage(format ports.PixelFormat, width, height, align int) *Image {
	if align < 1 {
		align = 1
	}
	bps := 1
	if format == ports.PixelFormatI42016 {
		bps = 2
	}
	cw, ch := (width+1)/2, (height+1)/2
	if format == ports.PixelFormatI444 {
		cw, ch = width, height
	}
	img := &Image{Fmt: format, W: width, H: height}
	dims := [3][2]int{{width, height}, {cw, ch}, {cw, ch}}
	for p, d := range dims {
		stride := (d[0]*bps + align - 1) / align * align
		img.Strides[p] = stride
		img.Planes[p] = make([]byte, stride*d[1])
	}
	return img
}

func (i *Image) Format() ports.PixelFormat { return i.Fmt }
func (i *Image) Width() int                { return i.W }
func (i *Image) Height() int               { return i.H }
func (i *Image) Stride(plane int) int      { return i.Strides[plane] }
func (i *Image) Plane(plane int) []byte    { return i.Planes[plane] }
func (i *Image) Free()                     { i.FreeCalls++ }

var (
	_ ports.Engine         = (*Engine)(nil)
	_ ports.EncoderContext = (*EncoderContext)(nil)
	_ ports.DecoderContext = (*DecoderContext)(nil)
	_ ports.ImageHandle    = (*Image)(nil)
)
