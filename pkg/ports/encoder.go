package ports

import (
	"errors"
	"fmt"
)

// ErrNoDefaultConfig is wrapped by Engine.NewEncoder errors when the engine
// cannot produce its baseline encoder configuration.
var ErrNoDefaultConfig = errors.New("engine: no default encoder configuration")

// Engine is the narrow call surface of a native AV1 codec library.
// Everything behind it (entropy coding, motion search, transforms) is opaque.
type Engine interface {
	// NewEncoder loads the engine's default encoder configuration, overlays cfg
	// on it and initializes one encoder context.
	NewEncoder(cfg EncoderConfig) (EncoderContext, error)

	// NewDecoder initializes one decoder context.
	NewDecoder(cfg DecoderConfig) (DecoderContext, error)

	// AllocImage allocates a standalone image owned by the caller.
	// The returned handle must be released with Free.
	AllocImage(format PixelFormat, width, height, align int) (ImageHandle, error)
}

// EncoderContext is one live encoder instance inside the engine.
// Implementations are not safe for concurrent use.
type EncoderContext interface {
	// Control sets a single codec capability. Unsupported controls return an error
	// that callers may treat as a warning.
	Control(id ControlID, value int) error

	// Config returns a snapshot of the live configuration.
	Config() EncoderConfig

	// SetConfig applies cfg in place. Fields the engine knows about but EncoderConfig
	// does not carry are left untouched.
	SetConfig(cfg EncoderConfig) error

	// Encode wraps frame without copying and submits it for compression.
	Encode(frame RawFrame, pts int64, duration uint64, flags uint32) error

	// NextPacket returns the next buffered output packet after cursor and advances it.
	// ok is false once the engine has nothing more for the current push.
	// Packet data is owned by the engine and valid until the next Encode or Destroy.
	NextPacket(cursor *Cursor) (pkt Packet, ok bool)

	// Destroy releases the context. It must be called exactly once.
	Destroy() error
}

// Cursor is the engine's iteration token for draining buffered output.
// Callers start every drain from the zero Cursor and must not inspect Token.
type Cursor struct {
	Token any
}

// RawFrame is an uncompressed planar picture handed to Encode.
type RawFrame struct {
	Format      PixelFormat
	Width       int
	Height      int
	StrideAlign int
	Data        []byte
}

// PacketKind tags the packets an encoder emits.
type PacketKind int

const (
	// PacketFrame carries compressed frame data.
	PacketFrame PacketKind = iota
	// PacketStats carries first-pass statistics.
	PacketStats
	// PacketPSNR carries quality metrics.
	PacketPSNR
	// PacketCustom is any engine-specific packet.
	PacketCustom
)

// String returns the string representation of the packet kind.
func (k PacketKind) String() string {
	switch k {
	case PacketFrame:
		return "frame"
	case PacketStats:
		return "stats"
	case PacketPSNR:
		return "psnr"
	case PacketCustom:
		return "custom"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Packet is one output unit pulled from an encoder.
type Packet struct {
	Kind PacketKind
	Data []byte
	Key  bool
	PTS  int64
}

// StatusError is a non-OK status returned by a native engine call.
type StatusError struct {
	Call    string // native function that failed
	Code    int    // native status code
	Message string // engine's description of Code
	Detail  string // optional context-specific detail
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (code %d): %s", e.Call, e.Message, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s: %s (code %d)", e.Call, e.Message, e.Code)
}
