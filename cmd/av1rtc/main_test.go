package main

import (
	"bytes"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/user/av1rtc/pkg/av1config"
	"github.com/user/av1rtc/pkg/pipeline"
)

func TestParseQualityChanges(t *testing.T) {
	changes, err := parseQualityChanges([]string{"30:low", " 60 :150"})
	require.NoError(t, err)
	assert.Equal(t, []pipeline.QualityChange{
		{Frame: 30, Quality: av1config.Low},
		{Frame: 60, Quality: av1config.Custom(150)},
	}, changes)

	for _, bad := range []string{"30", "x:low", "30:ultra"} {
		_, err := parseQualityChanges([]string{bad})
		assert.Error(t, err, bad)
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"av1rtc"}, args...))
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	out, err := runApp(t, "config", "-W", "640", "-H", "360", "-t", "4", "-q", "low")
	require.NoError(t, err)

	assert.Contains(t, out, "width: 640")
	assert.Contains(t, out, "quality: low")
	assert.Contains(t, out, "id: tile_rows")
	assert.NotContains(t, out, "id: tile_columns")
	assert.Contains(t, out, "id: cpu_used")
}

func TestConfigCommand_InvalidQuality(t *testing.T) {
	_, err := runApp(t, "config", "-q", "ultra")
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	app := newApp()
	set := flag.NewFlagSet("encode", flag.ContinueOnError)
	for _, f := range append(app.Flags, encodeFlags()...) {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{
		"--width", "320", "--height", "180", "--frames", "12",
		"--quality-change", "6:best", "--no-verify", "--quiet",
	}))

	cfg, err := loadConfig(cli.NewContext(app, set, nil))
	require.NoError(t, err)

	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 180, cfg.Height)
	assert.Equal(t, 12, cfg.Frames)
	assert.Equal(t, []pipeline.QualityChange{{Frame: 6, Quality: av1config.Best}}, cfg.QualityChanges)
	assert.False(t, cfg.Verify)
	assert.Equal(t, "quiet", cfg.LogLevel)
	assert.Equal(t, av1config.Balanced, cfg.Quality)
}

func TestLoadConfig_ValidationError(t *testing.T) {
	app := newApp()
	set := flag.NewFlagSet("encode", flag.ContinueOnError)
	for _, f := range encodeFlags() {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--frames", "4", "--quality-change", "9:low"}))

	_, err := loadConfig(cli.NewContext(app, set, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quality change")
}
