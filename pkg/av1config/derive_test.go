package av1config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/av1rtc/pkg/ports"
)

func TestDerive_RealtimeDefaults(t *testing.T) {
	d := Derive(Settings{Width: 1280, Height: 720, Quality: Balanced, KeyframeInterval: 300, Threads: 4})
	cfg := d.Config

	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, ports.Timebase{Num: 1, Den: 90000}, cfg.Timebase)
	assert.Equal(t, ports.UsageRealtime, cfg.Usage)
	assert.Equal(t, 8, cfg.InputBitDepth)

	assert.Equal(t, ports.RateControlCBR, cfg.RateControl)
	assert.True(t, cfg.OnePass)
	assert.Equal(t, 0, cfg.LagInFrames)

	assert.Equal(t, ports.KeyframeAuto, cfg.KeyframeMode)
	assert.Equal(t, 0, cfg.KeyframeMinDist)
	assert.Equal(t, 300, cfg.KeyframeMaxDist)

	assert.Equal(t, 12, cfg.MinQuantizer)
	assert.Equal(t, 35, cfg.MaxQuantizer)
	assert.Equal(t, 921*66/100, cfg.TargetBitrate)

	assert.Equal(t, 50, cfg.UndershootPct)
	assert.Equal(t, 50, cfg.OvershootPct)
	assert.Equal(t, 600, cfg.BufInitialSize)
	assert.Equal(t, 600, cfg.BufOptimalSize)
	assert.Equal(t, 1000, cfg.BufSize)
	assert.False(t, cfg.ErrorResilient)
}

func TestDerive_KeyframeDisabled(t *testing.T) {
	d := Derive(Settings{Width: 640, Height: 480, Quality: Best, Threads: 2})
	assert.Equal(t, ports.KeyframeDisabled, d.Config.KeyframeMode)
}

func TestDerive_ThreadsClamped(t *testing.T) {
	d := Derive(Settings{Width: 320, Height: 180, Quality: Low, Threads: 0})
	assert.Equal(t, 1, d.Config.Threads)

	v, ok := Lookup(d.Controls, ports.ControlTileColumns)
	require.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestDerive_QuantizersAlwaysUsable(t *testing.T) {
	qualities := []Quality{Best, Balanced, Low}
	for b := -10; b <= MaxCustomPercent+10; b += 5 {
		qualities = append(qualities, Custom(b))
	}

	for _, q := range qualities {
		cfg := Derive(Settings{Width: 1920, Height: 1080, Quality: q, Threads: 8}).Config
		assert.True(t, ValidQuantizers(cfg.MinQuantizer, cfg.MaxQuantizer), "quality %s", q)
		assert.Positive(t, cfg.TargetBitrate, "quality %s", q)
	}
}

func TestBaseBitrate(t *testing.T) {
	assert.Equal(t, 921, BaseBitrate(1280, 720))
	assert.Equal(t, 230, BaseBitrate(640, 360))
	assert.Equal(t, 2073, BaseBitrate(0, 0))
	assert.Equal(t, 2073, BaseBitrate(10, 10))
}

func TestTargetBitrate_ZeroScaleFallsBackToBase(t *testing.T) {
	tests := []struct {
		width, height int
	}{
		{1280, 720},
		{640, 360},
		{320, 180},
		{0, 0},
	}

	for _, tt := range tests {
		base := BaseBitrate(tt.width, tt.height)
		assert.Equal(t, base, TargetBitrate(tt.width, tt.height, Custom(0)))
		assert.Equal(t, base, TargetBitrate(tt.width, tt.height, Custom(-20)))
	}

	// 1% of a tiny base rounds down to zero.
	assert.Equal(t, BaseBitrate(50, 50), TargetBitrate(50, 50, Custom(1)))
}

func TestTargetBitrate_Scaled(t *testing.T) {
	assert.Equal(t, 921, TargetBitrate(1280, 720, Best))
	assert.Equal(t, 460, TargetBitrate(1280, 720, Low))
	assert.Equal(t, 1842, TargetBitrate(1280, 720, Custom(200)))
}

func TestApplyQuality_TouchesOnlyRateFields(t *testing.T) {
	cfg := Derive(Settings{Width: 1280, Height: 720, Quality: Best, KeyframeInterval: 60, Threads: 4}).Config

	updated := ApplyQuality(cfg, 1280, 720, Low)
	assert.Equal(t, 18, updated.MinQuantizer)
	assert.Equal(t, 45, updated.MaxQuantizer)
	assert.Equal(t, 460, updated.TargetBitrate)

	updated.MinQuantizer = cfg.MinQuantizer
	updated.MaxQuantizer = cfg.MaxQuantizer
	updated.TargetBitrate = cfg.TargetBitrate
	assert.Equal(t, cfg, updated)
}

func TestApplyQuality_Idempotent(t *testing.T) {
	cfg := Derive(Settings{Width: 640, Height: 360, Quality: Best, Threads: 2}).Config

	once := ApplyQuality(cfg, 640, 360, Custom(130))
	twice := ApplyQuality(once, 640, 360, Custom(130))
	assert.Equal(t, once, twice)
}
