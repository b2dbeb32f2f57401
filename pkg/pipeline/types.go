package pipeline

import (
	"image"
	"image/color"

	"github.com/user/av1rtc/pkg/av1config"
	"github.com/user/av1rtc/pkg/ports"
)

// =============================================================================
// Capture Stage Types
// =============================================================================

// CaptureInput describes the synthetic screen recording to produce.
type CaptureInput struct {
	Width  int
	Height int
	Frames int
	FPS    float64
	Theme  ScreenTheme
}

// DefaultCaptureInput returns CaptureInput with default values.
func DefaultCaptureInput() CaptureInput {
	return CaptureInput{
		Width:  1280,
		Height: 720,
		Frames: 90,
		FPS:    30,
		Theme:  DefaultScreenTheme(),
	}
}

// ScreenTheme defines the colors of the synthetic desktop.
type ScreenTheme struct {
	Desktop   color.Color
	Window    color.Color
	TitleBar  color.Color
	Text      color.Color
	Highlight color.Color
	Cursor    color.Color
}

// DefaultScreenTheme returns a light editor-like theme.
func DefaultScreenTheme() ScreenTheme {
	return ScreenTheme{
		Desktop:   color.RGBA{R: 40, G: 44, B: 52, A: 255},
		Window:    color.RGBA{R: 250, G: 250, B: 250, A: 255},
		TitleBar:  color.RGBA{R: 220, G: 220, B: 225, A: 255},
		Text:      color.RGBA{R: 60, G: 60, B: 60, A: 255},
		Highlight: color.RGBA{R: 100, G: 180, B: 255, A: 255},
		Cursor:    color.Black,
	}
}

// CaptureResult contains the captured frames in presentation order.
type CaptureResult struct {
	Frames []RawFrame
}

// RawFrame is one tightly packed 8-bit I420 picture.
type RawFrame struct {
	Index       int
	TimestampMs int
	Data        []byte
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// QualityChange switches the encoder to Quality before frame Frame is pushed.
type QualityChange struct {
	Frame   int               `yaml:"frame"`
	Quality av1config.Quality `yaml:"quality"`
}

// EncodeInput contains parameters for encoding.
type EncodeInput struct {
	Frames           []RawFrame
	Width            int
	Height           int
	FPS              float64
	Quality          av1config.Quality
	KeyframeInterval int
	Threads          int
	StrideAlign      int
	QualityChanges   []QualityChange
}

// EncodeResult contains the compressed frames and statistics.
type EncodeResult struct {
	Samples   []ports.Sample
	Keyframes int
	Bytes     int64

	// NoOutput counts pushes for which the encoder surfaced no frame.
	NoOutput int

	// Bitrates holds the live target bitrate (kbps) at every push.
	Bitrates []int

	DurationMs int
	Config     ports.EncoderConfig
	Controls   []ports.Control
}

// =============================================================================
// Decode Stage Types
// =============================================================================

// DecodeInput contains the samples to decode.
type DecodeInput struct {
	Samples []ports.Sample
	Width   int
	Height  int
	Threads int

	// ThumbnailEvery saves every Nth decoded image through the debug sink.
	// Zero disables thumbnails.
	ThumbnailEvery int
	ThumbnailWidth int
}

// DecodeResult summarizes a decode pass.
type DecodeResult struct {
	Images int

	// Mismatched counts images whose dimensions differ from the input.
	Mismatched int

	Thumbnails []image.Image
}
