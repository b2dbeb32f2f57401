// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"fmt"
	"slices"

	"github.com/user/av1rtc/pkg/adapters/codecdetect"
	"github.com/user/av1rtc/pkg/av1config"
	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
)

// Config contains all configuration for one encode run.
type Config struct {
	OutputPath string

	// Capture
	Width  int
	Height int
	Frames int
	FPS    float64
	Theme  pipeline.ScreenTheme

	// Encoding
	Quality          av1config.Quality
	KeyframeInterval int
	Threads          int
	StrideAlign      int
	QualityChanges   []pipeline.QualityChange

	// Verification
	Verify         bool
	ThumbnailEvery int
	ThumbnailWidth int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputPath:       "output.mp4",
		Width:            1280,
		Height:           720,
		Frames:           90,
		FPS:              30,
		Theme:            pipeline.DefaultScreenTheme(),
		Quality:          av1config.Balanced,
		KeyframeInterval: 0,
		Threads:          4,
		StrideAlign:      1,
		Verify:           true,
	}
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	captureStage pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult]
	encodeStage  pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	decodeStage  pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult]
	muxer        ports.Muxer
	demuxer      ports.Demuxer
	fs           ports.FileSystem
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	captureStage pipeline.Stage[pipeline.CaptureInput, pipeline.CaptureResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	decodeStage pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult],
	muxer ports.Muxer,
	demuxer ports.Demuxer,
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		captureStage: captureStage,
		encodeStage:  encodeStage,
		decodeStage:  decodeStage,
		muxer:        muxer,
		demuxer:      demuxer,
		fs:           fs,
		logger:       logger,
	}
}

// Run executes capture, encode, mux, write and, when enabled, decode
// verification of the written file.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	o.logger.Info("Starting pipeline")

	// 1. Capture
	o.logger.Info("Capturing %d frames at %dx%d", config.Frames, config.Width, config.Height)
	captureInput := pipeline.DefaultCaptureInput()
	captureInput.Width = config.Width
	captureInput.Height = config.Height
	captureInput.Frames = config.Frames
	captureInput.FPS = config.FPS
	if config.Theme != (pipeline.ScreenTheme{}) {
		captureInput.Theme = config.Theme
	}
	captured, err := o.captureStage.Execute(ctx, captureInput)
	if err != nil {
		o.logger.Error("Failed to capture frames: %s", err)
		return RunResult{}, fmt.Errorf("capture stage: %w", err)
	}

	// 2. Encode
	o.logger.Info("Encoding with quality %s", config.Quality)
	encoded, err := o.encodeStage.Execute(ctx, o.buildEncodeInput(config, captured))
	if err != nil {
		o.logger.Error("Failed to encode frames: %s", err)
		return RunResult{}, fmt.Errorf("encode stage: %w", err)
	}
	o.logger.Info("Encoded %d frames, %d bytes", len(encoded.Samples), encoded.Bytes)
	if encoded.NoOutput > 0 {
		o.logger.Warn("%d frames produced no output", encoded.NoOutput)
	}

	// 3. Mux
	track := ports.Track{
		Codec:     "av01",
		Width:     config.Width,
		Height:    config.Height,
		Timescale: av1config.TicksPerSecond,
	}
	data, err := o.muxer.Mux(track, encoded.Samples)
	if err != nil {
		o.logger.Error("Failed to build MP4: %s", err)
		return RunResult{}, fmt.Errorf("mux: %w", err)
	}

	// 4. Write output file
	if err := o.fs.WriteFile(config.OutputPath, data); err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return RunResult{}, fmt.Errorf("write output: %w", err)
	}
	o.logger.Info("Wrote %s (%d bytes)", config.OutputPath, len(data))

	result := RunResult{
		OutputPath:       config.OutputPath,
		Width:            config.Width,
		Height:           config.Height,
		FPS:              config.FPS,
		Quality:          config.Quality,
		QualityChanges:   len(config.QualityChanges),
		CapturedFrames:   len(captured.Frames),
		EncodedFrames:    len(encoded.Samples),
		Keyframes:        encoded.Keyframes,
		NoOutput:         encoded.NoOutput,
		EncodedBytes:     encoded.Bytes,
		FileSize:         int64(len(data)),
		DurationMs:       encoded.DurationMs,
		Config:           encoded.Config,
		Controls:         len(encoded.Controls),
		MinTargetBitrate: minOrZero(encoded.Bitrates),
		MaxTargetBitrate: maxOrZero(encoded.Bitrates),
	}

	// 5. Verify
	if config.Verify {
		verify, err := o.Verify(ctx, data, VerifyConfig{
			Threads:        config.Threads,
			ThumbnailEvery: config.ThumbnailEvery,
			ThumbnailWidth: config.ThumbnailWidth,
		})
		if err != nil {
			o.logger.Error("Verification failed: %s", err)
			return result, fmt.Errorf("verify: %w", err)
		}
		result.Verification = &verify
		if verify.DecodedImages != len(encoded.Samples) || verify.Mismatched > 0 {
			o.logger.Warn("Decoded %d of %d frames, %d with wrong size", verify.DecodedImages, len(encoded.Samples), verify.Mismatched)
		}
	}

	o.logger.Info("Pipeline completed successfully")
	return result, nil
}

// VerifyConfig controls decoding of an MP4 file.
type VerifyConfig struct {
	Threads        int
	ThumbnailEvery int
	ThumbnailWidth int
}

// Verify checks that data is an AV1 MP4 and decodes every sample.
func (o *Orchestrator) Verify(ctx context.Context, data []byte, config VerifyConfig) (VerifyResult, error) {
	if err := codecdetect.RequireAV1(data); err != nil {
		return VerifyResult{}, err
	}
	track, samples, err := o.demuxer.Demux(data)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("demux: %w", err)
	}
	o.logger.Info("Decoding %d samples (%dx%d)", len(samples), track.Width, track.Height)

	decoded, err := o.decodeStage.Execute(ctx, pipeline.DecodeInput{
		Samples:        samples,
		Width:          track.Width,
		Height:         track.Height,
		Threads:        config.Threads,
		ThumbnailEvery: config.ThumbnailEvery,
		ThumbnailWidth: config.ThumbnailWidth,
	})
	if err != nil {
		return VerifyResult{}, fmt.Errorf("decode stage: %w", err)
	}

	keyframes := 0
	for _, s := range samples {
		if s.Key {
			keyframes++
		}
	}
	return VerifyResult{
		Width:         track.Width,
		Height:        track.Height,
		Samples:       len(samples),
		Keyframes:     keyframes,
		DecodedImages: decoded.Images,
		Mismatched:    decoded.Mismatched,
		Thumbnails:    len(decoded.Thumbnails),
	}, nil
}

// VerifyFile reads path and runs Verify on its contents.
func (o *Orchestrator) VerifyFile(ctx context.Context, path string, config VerifyConfig) (VerifyResult, error) {
	data, err := o.fs.ReadFile(path)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return o.Verify(ctx, data, config)
}

func (o *Orchestrator) buildEncodeInput(config Config, captured pipeline.CaptureResult) pipeline.EncodeInput {
	return pipeline.EncodeInput{
		Frames:           captured.Frames,
		Width:            config.Width,
		Height:           config.Height,
		FPS:              config.FPS,
		Quality:          config.Quality,
		KeyframeInterval: config.KeyframeInterval,
		Threads:          config.Threads,
		StrideAlign:      config.StrideAlign,
		QualityChanges:   config.QualityChanges,
	}
}

func minOrZero(v []int) int {
	if len(v) == 0 {
		return 0
	}
	return slices.Min(v)
}

func maxOrZero(v []int) int {
	if len(v) == 0 {
		return 0
	}
	return slices.Max(v)
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	OutputPath string

	// Settings
	Width          int
	Height         int
	FPS            float64
	Quality        av1config.Quality
	QualityChanges int

	// Encoding
	CapturedFrames   int
	EncodedFrames    int
	Keyframes        int
	NoOutput         int
	EncodedBytes     int64
	FileSize         int64
	DurationMs       int
	Config           ports.EncoderConfig
	Controls         int
	MinTargetBitrate int // kbps
	MaxTargetBitrate int // kbps

	// Verification is nil when decoding was skipped.
	Verification *VerifyResult
}

// VerifyResult describes a decode pass over an MP4 file.
type VerifyResult struct {
	Width         int
	Height        int
	Samples       int
	Keyframes     int
	DecodedImages int
	Mismatched    int
	Thumbnails    int
}
