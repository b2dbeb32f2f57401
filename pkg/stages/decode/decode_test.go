package decode

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/av1rtc/pkg/adapters/logger"
	"github.com/user/av1rtc/pkg/av1"
	"github.com/user/av1rtc/pkg/mocks"
	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
)

func samples(n int) []ports.Sample {
	out := make([]ports.Sample, n)
	for i := range out {
		out[i] = ports.Sample{Data: []byte{0x12, 0x00, byte(i)}, Key: i == 0, PTS: int64(i * 3000)}
	}
	return out
}

func newStage(engine *mocks.Engine, sink *mocks.DebugSink) (*Stage, *mocks.Renderer) {
	renderer := &mocks.Renderer{}
	return NewStage(engine, renderer, sink, logger.NewNoop()), renderer
}

func TestStage_Execute(t *testing.T) {
	engine := &mocks.Engine{}
	stage, _ := newStage(engine, mocks.NewDebugSink(false))

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Samples: samples(5),
		Width:   64,
		Height:  36,
		Threads: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Images)
	assert.Zero(t, result.Mismatched)
	assert.Empty(t, result.Thumbnails)

	require.Len(t, engine.Decoders, 1)
	dec := engine.Decoders[0]
	assert.Equal(t, 2, dec.Config.Threads)
	// Five samples plus the flush.
	require.Len(t, dec.DecodeCalls, 6)
	assert.Empty(t, dec.DecodeCalls[5])
	assert.Equal(t, 1, dec.DestroyCalls)
}

func TestStage_FlushSurfacesHeldImages(t *testing.T) {
	engine := &mocks.Engine{
		ImagesFunc: func(n int, data []byte) []ports.ImageHandle {
			if len(data) == 0 {
				return []ports.ImageHandle{mocks.NewImage(ports.PixelFormatI420, 64, 36, 32)}
			}
			return nil
		},
	}
	stage, _ := newStage(engine, mocks.NewDebugSink(false))

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{Samples: samples(3), Width: 64, Height: 36})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Images)
}

func TestStage_Mismatched(t *testing.T) {
	engine := &mocks.Engine{DecodeWidth: 32, DecodeHeight: 18}
	stage, _ := newStage(engine, mocks.NewDebugSink(false))

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{Samples: samples(2), Width: 64, Height: 36})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Mismatched)
}

func TestStage_Thumbnails(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	stage, renderer := newStage(&mocks.Engine{}, sink)

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Samples:        samples(7),
		Width:          64,
		Height:         36,
		ThumbnailEvery: 3,
		ThumbnailWidth: 32,
	})
	require.NoError(t, err)

	require.Len(t, result.Thumbnails, 3)
	assert.Equal(t, image.Rect(0, 0, 32, 18), result.Thumbnails[0].Bounds())
	assert.Equal(t, 3, renderer.Resizes)
	assert.Contains(t, sink.Thumbnails, 0)
	assert.Contains(t, sink.Thumbnails, 3)
	assert.Contains(t, sink.Thumbnails, 6)
}

func TestStage_ThumbnailDefaultWidth(t *testing.T) {
	stage, _ := newStage(&mocks.Engine{}, mocks.NewDebugSink(false))

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Samples:        samples(1),
		Width:          64,
		Height:         36,
		ThumbnailEvery: 1,
	})
	require.NoError(t, err)
	require.Len(t, result.Thumbnails, 1)
	assert.Equal(t, DefaultThumbnailWidth, result.Thumbnails[0].Bounds().Dx())
	assert.Equal(t, 90, result.Thumbnails[0].Bounds().Dy())
}

func TestStage_DecodeError(t *testing.T) {
	engine := &mocks.Engine{DecodeErr: &ports.StatusError{Call: "aom_codec_decode", Code: 7, Message: "corrupt frame"}}
	stage, _ := newStage(engine, mocks.NewDebugSink(false))

	_, err := stage.Execute(context.Background(), pipeline.DecodeInput{Samples: samples(1), Width: 64, Height: 36})
	require.Error(t, err)
	assert.ErrorIs(t, err, av1.ErrEngineDecode)

	var status *ports.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 7, status.Code)
	assert.Equal(t, 1, engine.Decoders[0].DestroyCalls)
}

func TestStage_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stage, _ := newStage(&mocks.Engine{}, mocks.NewDebugSink(false))

	_, err := stage.Execute(ctx, pipeline.DecodeInput{Samples: samples(2)})
	assert.ErrorIs(t, err, context.Canceled)
}
