package av1

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/av1rtc/pkg/adapters/logger"
	"github.com/user/av1rtc/pkg/av1config"
	"github.com/user/av1rtc/pkg/mocks"
	"github.com/user/av1rtc/pkg/ports"
)

func newTestEncoder(t *testing.T, engine *mocks.Engine, width, height int) *Encoder {
	t.Helper()
	enc, err := NewEncoder(engine, av1config.Settings{
		Width:            width,
		Height:           height,
		Quality:          av1config.Balanced,
		KeyframeInterval: 120,
		Threads:          4,
	}, logger.NewNoop())
	require.NoError(t, err)
	t.Cleanup(enc.Close)
	return enc
}

func frameBuffer(width, height int) []byte {
	return make([]byte, width*height*3/2)
}

func TestNewEncoder_AppliesDerivedConfigAndControls(t *testing.T) {
	engine := &mocks.Engine{}
	enc := newTestEncoder(t, engine, 1280, 720)

	require.Len(t, engine.Encoders, 1)
	ctx := engine.Encoders[0]

	want := av1config.Derive(av1config.Settings{
		Width: 1280, Height: 720, Quality: av1config.Balanced, KeyframeInterval: 120, Threads: 4,
	})
	assert.Equal(t, want.Config, ctx.InitConfig)
	assert.Equal(t, want.Controls, ctx.Controls)
	assert.Equal(t, 1280, enc.Width())
	assert.Equal(t, 720, enc.Height())
}

func TestNewEncoder_ControlFailuresAreTolerated(t *testing.T) {
	engine := &mocks.Engine{
		ControlErrs: map[ports.ControlID]error{
			ports.ControlEnableTX64: &ports.StatusError{Call: "control", Code: 8, Message: "unsupported"},
		},
	}
	enc := newTestEncoder(t, engine, 640, 360)

	// Every control is still attempted.
	assert.Len(t, engine.Encoders[0].Controls, 41)
	assert.NotNil(t, enc)
}

func TestNewEncoder_InitFailure(t *testing.T) {
	native := &ports.StatusError{Call: "aom_codec_enc_init", Code: 8, Message: "Invalid parameter"}
	engine := &mocks.Engine{NewEncoderErr: native}

	_, err := NewEncoder(engine, av1config.Settings{Width: 64, Height: 64, Threads: 1}, logger.NewNoop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEngineInit)

	var se *ports.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 8, se.Code)
}

func TestNewEncoder_ConfigDefaultFailure(t *testing.T) {
	engine := &mocks.Engine{NewEncoderErr: errors.Join(ports.ErrNoDefaultConfig, errors.New("usage rejected"))}

	_, err := NewEncoder(engine, av1config.Settings{Width: 64, Height: 64, Threads: 1}, logger.NewNoop())
	assert.ErrorIs(t, err, ErrConfigDefault)
	assert.NotErrorIs(t, err, ErrEngineInit)
}

func TestNewEncoder_InvalidDimensions(t *testing.T) {
	engine := &mocks.Engine{}

	_, err := NewEncoder(engine, av1config.Settings{Width: 0, Height: 360}, logger.NewNoop())
	assert.ErrorIs(t, err, ErrEngineInit)
	assert.Empty(t, engine.Encoders)
}

func TestEncode_InsufficientData(t *testing.T) {
	engine := &mocks.Engine{}
	enc := newTestEncoder(t, engine, 640, 360)

	_, err := enc.Encode(0, make([]byte, 345599), 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Empty(t, engine.Encoders[0].EncodeCalls, "no engine call on short buffers")

	_, err = enc.Encode(0, nil, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)

	frames, err := enc.Encode(0, make([]byte, 345600), 1)
	require.NoError(t, err)
	assert.NotNil(t, frames)
	assert.Equal(t, 345600, enc.FrameSize())
}

func TestEncode_PushesOneTickWithoutFlags(t *testing.T) {
	engine := &mocks.Engine{}
	enc := newTestEncoder(t, engine, 64, 64)

	_, err := enc.Encode(3000, frameBuffer(64, 64), 16)
	require.NoError(t, err)

	calls := engine.Encoders[0].EncodeCalls
	require.Len(t, calls, 1)
	assert.Equal(t, mocks.EncodeCall{PTS: 3000, Duration: 1, Flags: 0, StrideAlign: 16, Len: 6144}, calls[0])
}

func TestEncode_SkipsNonFramePackets(t *testing.T) {
	engine := &mocks.Engine{
		PacketsFunc: func(n int, frame ports.RawFrame, pts int64) []ports.Packet {
			return []ports.Packet{
				{Kind: ports.PacketStats, Data: []byte("stats")},
				{Kind: ports.PacketFrame, Data: []byte{1, 2, 3}, Key: true, PTS: pts},
				{Kind: ports.PacketPSNR},
				{Kind: ports.PacketCustom},
				{Kind: ports.PacketFrame, Data: []byte{4}, PTS: pts + 1},
			}
		},
	}
	enc := newTestEncoder(t, engine, 64, 64)

	frames, err := enc.Encode(90, frameBuffer(64, 64), 1)
	require.NoError(t, err)

	var got []Frame
	for f := range frames.All() {
		got = append(got, f)
	}
	require.Len(t, got, 2)
	assert.Equal(t, Frame{Data: []byte{1, 2, 3}, Key: true, PTS: 90}, got[0])
	assert.Equal(t, Frame{Data: []byte{4}, Key: false, PTS: 91}, got[1])
	assert.Equal(t, Exhausted, frames.State())

	// Not restartable.
	_, ok := frames.Next()
	assert.False(t, ok)
}

func TestEncode_EmptyOutputIsNotAnError(t *testing.T) {
	engine := &mocks.Engine{
		PacketsFunc: func(int, ports.RawFrame, int64) []ports.Packet { return nil },
	}
	enc := newTestEncoder(t, engine, 64, 64)

	frames, err := enc.Encode(0, frameBuffer(64, 64), 1)
	require.NoError(t, err)
	assert.Empty(t, frames.Collect())
	assert.Equal(t, Exhausted, frames.State())

	_, err = enc.EncodeCopy(1, frameBuffer(64, 64), 1)
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestEncode_EngineFailure(t *testing.T) {
	engine := &mocks.Engine{}
	enc := newTestEncoder(t, engine, 64, 64)
	engine.EncodeErr = &ports.StatusError{Call: "aom_codec_encode", Code: 1, Message: "Unspecified error"}

	_, err := enc.Encode(0, frameBuffer(64, 64), 1)
	assert.ErrorIs(t, err, ErrEngineEncode)
}

func TestFrames_StaleAfterNextPush(t *testing.T) {
	engine := &mocks.Engine{}
	enc := newTestEncoder(t, engine, 64, 64)

	first, err := enc.Encode(0, frameBuffer(64, 64), 1)
	require.NoError(t, err)
	second, err := enc.Encode(1, frameBuffer(64, 64), 1)
	require.NoError(t, err)

	_, ok := first.Next()
	assert.False(t, ok)
	assert.Equal(t, Exhausted, first.State())

	f, ok := second.Next()
	require.True(t, ok)
	assert.Equal(t, int64(1), f.PTS)
	assert.False(t, f.Key)
}

func TestFrames_AbandonedEarly(t *testing.T) {
	engine := &mocks.Engine{
		PacketsFunc: func(n int, _ ports.RawFrame, pts int64) []ports.Packet {
			return []ports.Packet{
				{Kind: ports.PacketFrame, Data: []byte{1}, PTS: pts},
				{Kind: ports.PacketFrame, Data: []byte{2}, PTS: pts},
			}
		},
	}
	enc := newTestEncoder(t, engine, 64, 64)

	frames, err := enc.Encode(0, frameBuffer(64, 64), 1)
	require.NoError(t, err)
	for range frames.All() {
		break
	}
	assert.Equal(t, Draining, frames.State())

	f, ok := frames.Next()
	require.True(t, ok)
	assert.Equal(t, []byte{2}, f.Data)
}

func TestEncodeCopy_ReturnsOwnedFrames(t *testing.T) {
	shared := []byte{9, 9, 9}
	engine := &mocks.Engine{
		PacketsFunc: func(n int, _ ports.RawFrame, pts int64) []ports.Packet {
			return []ports.Packet{{Kind: ports.PacketFrame, Data: shared, Key: true, PTS: pts}}
		},
	}
	enc := newTestEncoder(t, engine, 64, 64)

	frames, err := enc.EncodeCopy(0, frameBuffer(64, 64), 1)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	shared[0] = 0
	assert.Equal(t, []byte{9, 9, 9}, frames[0].Data)
}

func TestSetQuality_TouchesOnlyRateFields(t *testing.T) {
	engine := &mocks.Engine{}
	enc := newTestEncoder(t, engine, 1280, 720)
	before := enc.Config()

	require.NoError(t, enc.SetQuality(av1config.Low))

	after := enc.Config()
	assert.Equal(t, 18, after.MinQuantizer)
	assert.Equal(t, 45, after.MaxQuantizer)
	assert.Equal(t, 460, after.TargetBitrate)
	assert.Equal(t, 460, enc.Bitrate())

	after.MinQuantizer, after.MaxQuantizer, after.TargetBitrate = before.MinQuantizer, before.MaxQuantizer, before.TargetBitrate
	assert.Equal(t, before, after)
}

func TestSetQuality_PreservesEngineSideChanges(t *testing.T) {
	engine := &mocks.Engine{}
	enc := newTestEncoder(t, engine, 640, 360)

	// Simulate a field the engine changed on its own.
	live := enc.Config()
	live.ErrorResilient = true
	require.NoError(t, engine.Encoders[0].SetConfig(live))

	require.NoError(t, enc.SetQuality(av1config.Best))
	assert.True(t, enc.Config().ErrorResilient)
}

func TestSetQuality_Idempotent(t *testing.T) {
	engine := &mocks.Engine{}
	enc := newTestEncoder(t, engine, 1280, 720)

	require.NoError(t, enc.SetQuality(av1config.Custom(150)))
	once := enc.Config()
	require.NoError(t, enc.SetQuality(av1config.Custom(150)))
	assert.Equal(t, once, enc.Config())
}

func TestSetQuality_EngineRejects(t *testing.T) {
	engine := &mocks.Engine{}
	enc := newTestEncoder(t, engine, 1280, 720)
	bitrate := enc.Bitrate()

	engine.SetConfigErr = &ports.StatusError{Call: "aom_codec_enc_config_set", Code: 8, Message: "Invalid parameter"}
	err := enc.SetQuality(av1config.Best)
	assert.ErrorIs(t, err, ErrEngineReconfig)
	assert.Equal(t, bitrate, enc.Bitrate())
}

func TestEncoderClose(t *testing.T) {
	engine := &mocks.Engine{}
	enc, err := NewEncoder(engine, av1config.Settings{Width: 64, Height: 64, Threads: 1}, logger.NewNoop())
	require.NoError(t, err)

	frames, err := enc.Encode(0, frameBuffer(64, 64), 1)
	require.NoError(t, err)

	enc.Close()
	enc.Close()
	assert.Equal(t, 1, engine.Encoders[0].DestroyCalls)

	_, ok := frames.Next()
	assert.False(t, ok, "iterators end when the session closes")

	_, err = enc.Encode(1, frameBuffer(64, 64), 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, enc.SetQuality(av1config.Best), ErrClosed)
	assert.Equal(t, 0, enc.Bitrate())
}

func TestEncoderClose_DestroyFailurePanics(t *testing.T) {
	engine := &mocks.Engine{}
	enc, err := NewEncoder(engine, av1config.Settings{Width: 64, Height: 64, Threads: 1}, logger.NewNoop())
	require.NoError(t, err)

	engine.DestroyErr = errors.New("corrupt")
	assert.Panics(t, enc.Close)
}
