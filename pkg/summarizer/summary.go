// Package summarizer provides summary generation for encode runs.
package summarizer

import "time"

// Summary contains all data collected during one run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Settings chosen by the user
	Settings Settings

	// Encoder configuration derived from the settings
	Encoder EncoderInfo

	// Output file details
	Output OutputInfo

	// Verification is nil when the output was not decoded.
	Verification *VerificationInfo
}

// Settings contains the user-facing knobs.
type Settings struct {
	Width            int
	Height           int
	FPS              float64
	Frames           int
	Quality          string
	KeyframeInterval int // 0 = disabled
	Threads          int
	QualityChanges   int
}

// EncoderInfo contains the derived encoder configuration.
type EncoderInfo struct {
	Version       string
	RateControl   string
	MinQuantizer  int
	MaxQuantizer  int
	TargetBitrate int // kbps, at the end of the run
	MinBitrate    int // kbps, lowest target seen
	MaxBitrate    int // kbps, highest target seen
	Controls      int
}

// OutputInfo contains information about the compressed output.
type OutputInfo struct {
	Path          string
	EncodedFrames int
	Keyframes     int
	NoOutput      int
	EncodedBytes  int64
	FileSize      int64
	DurationMs    int
}

// EffectiveBitrate returns the achieved bitrate in kbps.
func (o OutputInfo) EffectiveBitrate() float64 {
	if o.DurationMs <= 0 {
		return 0
	}
	return float64(o.EncodedBytes*8) / float64(o.DurationMs)
}

// VerificationInfo contains the result of decoding the output.
type VerificationInfo struct {
	Samples       int
	DecodedImages int
	Mismatched    int
	Thumbnails    int
}

// OK reports whether every sample decoded to a correctly sized image.
func (v VerificationInfo) OK() bool {
	return v.DecodedImages == v.Samples && v.Mismatched == 0
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSettings sets the user settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithEncoder sets the derived encoder configuration.
func (b *Builder) WithEncoder(encoder EncoderInfo) *Builder {
	b.summary.Encoder = encoder
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithVerification sets the decode verification result.
func (b *Builder) WithVerification(v VerificationInfo) *Builder {
	b.summary.Verification = &v
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
