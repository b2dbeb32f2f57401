package orchestrator

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/av1rtc/pkg/adapters/codecdetect"
	"github.com/user/av1rtc/pkg/adapters/logger"
	"github.com/user/av1rtc/pkg/adapters/mp4sink"
	"github.com/user/av1rtc/pkg/adapters/mp4source"
	"github.com/user/av1rtc/pkg/av1config"
	"github.com/user/av1rtc/pkg/mocks"
	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
)

type mockCaptureStage struct {
	input pipeline.CaptureInput
	err   error
}

func (m *mockCaptureStage) Execute(ctx context.Context, input pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	m.input = input
	if m.err != nil {
		return pipeline.CaptureResult{}, m.err
	}
	frames := make([]pipeline.RawFrame, input.Frames)
	for i := range frames {
		frames[i] = pipeline.RawFrame{Index: i}
	}
	return pipeline.CaptureResult{Frames: frames}, nil
}

type mockEncodeStage struct {
	input pipeline.EncodeInput
	err   error
}

func (m *mockEncodeStage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	m.input = input
	if m.err != nil {
		return pipeline.EncodeResult{}, m.err
	}
	result := pipeline.EncodeResult{DurationMs: 100, Controls: make([]ports.Control, 41)}
	for i := range input.Frames {
		data := []byte{0x12, 0x00, 0x32, 0x01, byte(i)}
		if i == 0 {
			data = []byte{0x12, 0x00, 0x0a, 0x03, 0x00, 0x00, 0x00, 0x32, 0x01, 0x00}
			result.Keyframes++
		}
		result.Samples = append(result.Samples, ports.Sample{Data: data, Key: i == 0, PTS: int64(i) * 3000, Duration: 3000})
		result.Bytes += int64(len(data))
		result.Bitrates = append(result.Bitrates, 100+i)
	}
	return result, nil
}

type mockDecodeStage struct {
	input pipeline.DecodeInput
	err   error
}

func (m *mockDecodeStage) Execute(ctx context.Context, input pipeline.DecodeInput) (pipeline.DecodeResult, error) {
	m.input = input
	if m.err != nil {
		return pipeline.DecodeResult{}, m.err
	}
	return pipeline.DecodeResult{Images: len(input.Samples)}, nil
}

type fixture struct {
	capture *mockCaptureStage
	encode  *mockEncodeStage
	decode  *mockDecodeStage
	fs      *mocks.FileSystem
	orch    *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		capture: &mockCaptureStage{},
		encode:  &mockEncodeStage{},
		decode:  &mockDecodeStage{},
		fs:      mocks.NewFileSystem(),
	}
	f.orch = New(f.capture, f.encode, f.decode, mp4sink.New(), mp4source.New(), f.fs, logger.NewNoop())
	return f
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.OutputPath = "out.mp4"
	cfg.Width, cfg.Height, cfg.Frames = 320, 180, 4
	cfg.QualityChanges = []pipeline.QualityChange{{Frame: 2, Quality: av1config.Low}}
	return cfg
}

func TestOrchestrator_Run(t *testing.T) {
	f := newFixture()

	result, err := f.orch.Run(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, 320, f.capture.input.Width)
	assert.Equal(t, 4, f.capture.input.Frames)
	assert.Len(t, f.encode.input.Frames, 4)
	assert.Equal(t, av1config.Balanced, f.encode.input.Quality)
	assert.Len(t, f.encode.input.QualityChanges, 1)

	assert.Equal(t, pipeline.DefaultScreenTheme(), f.capture.input.Theme)

	assert.Equal(t, []string{"out.mp4"}, f.fs.Writes)
	data, ok := f.fs.GetFile("out.mp4")
	require.True(t, ok)
	codec, err := codecdetect.DetectFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, codecdetect.CodecAV1, codec)

	assert.Equal(t, 4, result.CapturedFrames)
	assert.Equal(t, 4, result.EncodedFrames)
	assert.Equal(t, 1, result.Keyframes)
	assert.Equal(t, int64(len(data)), result.FileSize)
	assert.Equal(t, 100, result.MinTargetBitrate)
	assert.Equal(t, 103, result.MaxTargetBitrate)
	assert.Equal(t, 41, result.Controls)
	assert.Equal(t, 1, result.QualityChanges)

	require.NotNil(t, result.Verification)
	assert.Equal(t, 4, result.Verification.Samples)
	assert.Equal(t, 4, result.Verification.DecodedImages)
	assert.Equal(t, 1, result.Verification.Keyframes)
	assert.Equal(t, 320, f.decode.input.Width)
	assert.Equal(t, 180, f.decode.input.Height)
}

func TestOrchestrator_RunWithoutVerify(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.Verify = false

	result, err := f.orch.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, result.Verification)
	assert.Nil(t, f.decode.input.Samples)
}

func TestOrchestrator_StageErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		setup  func(f *fixture)
		prefix string
	}{
		{"capture", func(f *fixture) { f.capture.err = boom }, "capture stage"},
		{"encode", func(f *fixture) { f.encode.err = boom }, "encode stage"},
		{"decode", func(f *fixture) { f.decode.err = boom }, "verify"},
		{"write", func(f *fixture) {
			f.fs.WriteFileFunc = func(path string, data []byte) error { return boom }
		}, "write output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f)

			_, err := f.orch.Run(context.Background(), testConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.prefix)
		})
	}
}

func TestOrchestrator_MuxErrorOnEmptyOutput(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.Frames = 0

	_, err := f.orch.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mux")
	assert.Empty(t, f.fs.Files())
}

func TestOrchestrator_VerifyFile(t *testing.T) {
	f := newFixture()
	cfg := testConfig()
	cfg.Verify = false
	_, err := f.orch.Run(context.Background(), cfg)
	require.NoError(t, err)

	result, err := f.orch.VerifyFile(context.Background(), "out.mp4", VerifyConfig{Threads: 2, ThumbnailEvery: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, result.DecodedImages)
	assert.Equal(t, 2, f.decode.input.Threads)
	assert.Equal(t, 2, f.decode.input.ThumbnailEvery)

	_, err = f.orch.VerifyFile(context.Background(), "missing.mp4", VerifyConfig{})
	assert.Error(t, err)
}

func TestOrchestrator_VerifyRejectsGarbage(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Verify(context.Background(), []byte("not an mp4 file"), VerifyConfig{})
	assert.Error(t, err)
	assert.Nil(t, f.decode.input.Samples)
}

func TestOrchestrator_VerifyReportsMismatch(t *testing.T) {
	f := newFixture()
	decode := pipeline.StageFunc[pipeline.DecodeInput, pipeline.DecodeResult](
		func(ctx context.Context, in pipeline.DecodeInput) (pipeline.DecodeResult, error) {
			return pipeline.DecodeResult{Images: len(in.Samples), Mismatched: 2, Thumbnails: []image.Image{image.NewRGBA(image.Rect(0, 0, 8, 8))}}, nil
		})
	orch := New(f.capture, f.encode, decode, mp4sink.New(), mp4source.New(), f.fs, logger.NewNoop())

	result, err := orch.Run(context.Background(), testConfig())
	require.NoError(t, err)
	require.NotNil(t, result.Verification)
	assert.Equal(t, 2, result.Verification.Mismatched)
	assert.Equal(t, 1, result.Verification.Thumbnails)
}
