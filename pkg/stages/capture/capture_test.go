package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/av1rtc/pkg/adapters/ggrenderer"
	"github.com/user/av1rtc/pkg/adapters/logger"
	"github.com/user/av1rtc/pkg/mocks"
	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
)

func whiteInput(frames int) pipeline.CaptureInput {
	in := pipeline.DefaultCaptureInput()
	in.Width, in.Height, in.Frames = 64, 36, frames
	in.Theme.Desktop = color.White
	return in
}

func TestStage_Execute(t *testing.T) {
	renderer := &mocks.Renderer{}
	sink := mocks.NewDebugSink(true)
	stage := NewStage(renderer, sink, logger.NewNoop(), 3)

	result, err := stage.Execute(context.Background(), whiteInput(10))
	require.NoError(t, err)
	require.Len(t, result.Frames, 10)

	for i, f := range result.Frames {
		assert.Equal(t, i, f.Index)
		assert.Len(t, f.Data, 64*36*3/2)
	}
	assert.Equal(t, 0, result.Frames[0].TimestampMs)
	assert.Equal(t, 300, result.Frames[9].TimestampMs)

	assert.Equal(t, 10, renderer.Canvases)
	assert.Len(t, sink.SourceFrames, 10)
}

func TestStage_WrongCanvasSize(t *testing.T) {
	renderer := &mocks.Renderer{}
	renderer.CreateCanvasFunc = func(width, height int, bg color.Color) ports.Canvas {
		return (&mocks.Renderer{}).CreateCanvas(width/2, height, bg)
	}
	sink := mocks.NewDebugSink(true)

	_, err := NewStage(renderer, sink, logger.NewNoop(), 2).Execute(context.Background(), whiteInput(4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendered 32x36, want 64x36")
	assert.Empty(t, sink.SourceFrames)
}

func TestStage_SinkDisabled(t *testing.T) {
	sink := mocks.NewDebugSink(false)
	_, err := NewStage(&mocks.Renderer{}, sink, logger.NewNoop(), 2).Execute(context.Background(), whiteInput(3))
	require.NoError(t, err)
	assert.Empty(t, sink.SourceFrames)
}

func TestStage_InvalidInput(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, mocks.NewDebugSink(false), logger.NewNoop(), 1)

	in := whiteInput(1)
	in.Width = 0
	_, err := stage.Execute(context.Background(), in)
	assert.Error(t, err)

	in = whiteInput(1)
	in.FPS = 0
	_, err = stage.Execute(context.Background(), in)
	assert.Error(t, err)

	result, err := stage.Execute(context.Background(), whiteInput(0))
	require.NoError(t, err)
	assert.Empty(t, result.Frames)
}

func TestStage_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStage(&mocks.Renderer{}, mocks.NewDebugSink(false), logger.NewNoop(), 2).Execute(ctx, whiteInput(5))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStage_FramesDiffer(t *testing.T) {
	in := pipeline.DefaultCaptureInput()
	in.Width, in.Height, in.Frames = 160, 90, 4

	result, err := NewStage(ggrenderer.New(logger.NewNoop()), mocks.NewDebugSink(false), logger.NewNoop(), 2).Execute(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, result.Frames, 4)
	assert.False(t, bytes.Equal(result.Frames[0].Data, result.Frames[3].Data))
}

func TestFrameSize(t *testing.T) {
	assert.Equal(t, 345600, FrameSize(640, 360))
	assert.Equal(t, 1382400, FrameSize(1280, 720))
	assert.Equal(t, 9+2*4, FrameSize(3, 3))
}

func TestToI420(t *testing.T) {
	tests := []struct {
		name    string
		c       color.RGBA
		y, u, v byte
	}{
		{"white", color.RGBA{255, 255, 255, 255}, 235, 128, 128},
		{"black", color.RGBA{0, 0, 0, 255}, 16, 128, 128},
		{"red", color.RGBA{255, 0, 0, 255}, 82, 90, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 4, 2))
			for i := 0; i < len(img.Pix); i += 4 {
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = tt.c.R, tt.c.G, tt.c.B, tt.c.A
			}
			out := ToI420(img)
			require.Len(t, out, 12)
			assert.Equal(t, bytes.Repeat([]byte{tt.y}, 8), out[:8])
			assert.Equal(t, []byte{tt.u, tt.u}, out[8:10])
			assert.Equal(t, []byte{tt.v, tt.v}, out[10:12])
		})
	}
}

func TestToI420_NonRGBA(t *testing.T) {
	img := image.NewGray(image.Rect(10, 10, 14, 12))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	out := ToI420(img)
	require.Len(t, out, 12)
	assert.Equal(t, byte(235), out[0])
}
