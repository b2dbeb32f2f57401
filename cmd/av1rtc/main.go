// Package main provides the CLI entry point for av1rtc.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/av1rtc/pkg/adapters/aomengine"
	"github.com/user/av1rtc/pkg/adapters/filesink"
	"github.com/user/av1rtc/pkg/adapters/ggrenderer"
	"github.com/user/av1rtc/pkg/adapters/logger"
	"github.com/user/av1rtc/pkg/adapters/mp4sink"
	"github.com/user/av1rtc/pkg/adapters/mp4source"
	"github.com/user/av1rtc/pkg/adapters/nullsink"
	"github.com/user/av1rtc/pkg/adapters/osfilesystem"
	"github.com/user/av1rtc/pkg/av1config"
	"github.com/user/av1rtc/pkg/config"
	"github.com/user/av1rtc/pkg/orchestrator"
	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
	"github.com/user/av1rtc/pkg/stages/capture"
	"github.com/user/av1rtc/pkg/stages/decode"
	"github.com/user/av1rtc/pkg/stages/encode"
	"github.com/user/av1rtc/pkg/summarizer"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "av1rtc",
		Usage:   l10n.T("Real-time AV1 screen encoder"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
			&cli.StringFlag{Name: "log-format", Usage: l10n.T("Log format (console, text, json)"), Category: l10n.T("Logging")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
		},
		Commands: []*cli.Command{
			encodeCommand(),
			decodeCommand(),
			configCommand(),
			versionCommand(),
		},
	}
}

func encodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output MP4 file path"), Category: l10n.T("Output")},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Write a Markdown summary to this path"), Category: l10n.T("Output")},
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Frame width in pixels"), Category: l10n.T("Capture")},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Frame height in pixels"), Category: l10n.T("Capture")},
		&cli.Float64Flag{Name: "fps", Usage: l10n.T("Frames per second"), Category: l10n.T("Capture")},
		&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Number of frames to capture"), Category: l10n.T("Capture")},
		&cli.IntFlag{Name: "workers", Usage: l10n.T("Frame rendering workers (0 = number of CPUs)"), Category: l10n.T("Capture")},
		&cli.StringFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("Quality (best, balanced, low or 0-200)"), Category: l10n.T("Encoding")},
		&cli.IntFlag{Name: "keyframe-interval", Usage: l10n.T("Maximum frames between keyframes (0 = disabled)"), Category: l10n.T("Encoding")},
		&cli.IntFlag{Name: "threads", Aliases: []string{"t"}, Usage: l10n.T("Encoder threads"), Category: l10n.T("Encoding")},
		&cli.IntFlag{Name: "stride-align", Usage: l10n.T("Row alignment of input planes"), Category: l10n.T("Encoding")},
		&cli.StringSliceFlag{Name: "quality-change", Usage: l10n.T("Change quality at a frame, as FRAME:QUALITY"), Category: l10n.T("Encoding")},
		&cli.BoolFlag{Name: "no-verify", Usage: l10n.T("Skip decoding the output"), Category: l10n.T("Verification")},
		&cli.IntFlag{Name: "thumbnail-every", Usage: l10n.T("Save every Nth decoded frame as a thumbnail"), Category: l10n.T("Verification")},
		&cli.IntFlag{Name: "thumbnail-width", Usage: l10n.T("Thumbnail width in pixels"), Category: l10n.T("Verification")},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T("Debug")},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T("Debug")},
	}
}

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:   "encode",
		Usage:  l10n.T("Capture synthetic screen frames and encode them to AV1 MP4"),
		Flags:  encodeFlags(),
		Action: runEncode,
	}
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     l10n.T("Decode an AV1 MP4 file and verify every frame"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "threads", Aliases: []string{"t"}, Usage: l10n.T("Decoder threads")},
			&cli.IntFlag{Name: "thumbnail-every", Usage: l10n.T("Save every Nth decoded frame as a thumbnail")},
			&cli.IntFlag{Name: "thumbnail-width", Usage: l10n.T("Thumbnail width in pixels")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output")},
			&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output")},
		},
		Action: runDecode,
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:   "config",
		Usage:  l10n.T("Print the derived encoder configuration as YAML"),
		Flags:  encodeFlags(),
		Action: runConfig,
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, l10n.F("av1rtc version %s (%s)", version, aomengine.Version()))
			return nil
		},
	}
}

// loadConfig reads the optional config file and applies command-line
// overrides on top of it.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = "quiet"
	}

	strs := map[string]*string{
		"output":    &cfg.OutputPath,
		"summary":   &cfg.SummaryPath,
		"debug-dir": &cfg.DebugDir,
	}
	for name, dst := range strs {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	ints := map[string]*int{
		"width":             &cfg.Width,
		"height":            &cfg.Height,
		"frames":            &cfg.Frames,
		"workers":           &cfg.Workers,
		"keyframe-interval": &cfg.KeyframeInterval,
		"threads":           &cfg.Threads,
		"stride-align":      &cfg.StrideAlign,
		"thumbnail-every":   &cfg.ThumbnailEvery,
		"thumbnail-width":   &cfg.ThumbnailWidth,
	}
	for name, dst := range ints {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	if c.IsSet("fps") {
		cfg.FPS = c.Float64("fps")
	}
	if c.IsSet("quality") {
		q, err := av1config.ParseQuality(c.String("quality"))
		if err != nil {
			return cfg, err
		}
		cfg.Quality = q
	}
	if c.IsSet("quality-change") {
		changes, err := parseQualityChanges(c.StringSlice("quality-change"))
		if err != nil {
			return cfg, err
		}
		cfg.QualityChanges = changes
	}
	if c.Bool("no-verify") {
		cfg.Verify = false
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// parseQualityChanges parses FRAME:QUALITY pairs such as "30:low".
func parseQualityChanges(values []string) ([]pipeline.QualityChange, error) {
	changes := make([]pipeline.QualityChange, 0, len(values))
	for _, v := range values {
		frame, quality, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("invalid quality change %q: want FRAME:QUALITY", v)
		}
		n, err := strconv.Atoi(strings.TrimSpace(frame))
		if err != nil {
			return nil, fmt.Errorf("invalid quality change %q: %w", v, err)
		}
		q, err := av1config.ParseQuality(quality)
		if err != nil {
			return nil, err
		}
		changes = append(changes, pipeline.QualityChange{Frame: n, Quality: q})
	}
	return changes, nil
}

func newLogger(cfg config.Config) ports.Logger {
	level := ports.ParseLogLevel(cfg.LogLevel)
	if level == ports.LevelQuiet {
		return logger.NewNoop()
	}
	switch cfg.LogFormat {
	case "json":
		return logger.NewLogrus(os.Stderr, level, true)
	case "text":
		return logger.NewLogrus(os.Stderr, level, false)
	default:
		return logger.NewConsole(level)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// app bundles the adapters shared by the commands.
type app struct {
	fs       ports.FileSystem
	renderer ports.Renderer
	sink     ports.DebugSink
	log      ports.Logger
	orch     *orchestrator.Orchestrator
}

func newAppContext(cfg config.Config) (*app, error) {
	log := newLogger(cfg)
	fs := osfilesystem.New()
	renderer := ggrenderer.New(log)
	engine := aomengine.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	orch := orchestrator.New(
		capture.NewStage(renderer, sink, log, cfg.Workers),
		encode.NewStage(engine, sink, log),
		decode.NewStage(engine, renderer, sink, log),
		mp4sink.New(),
		mp4source.New(),
		fs,
		log,
	)
	return &app{fs: fs, renderer: renderer, sink: sink, log: log, orch: orch}, nil
}

func runEncode(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	a, err := newAppContext(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(a.log)
	defer cancel()

	result, err := a.orch.Run(ctx, cfg.ToOrchestratorConfig())
	if err != nil {
		return err
	}

	if cfg.SummaryPath != "" {
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), a.fs)
		if err := w.Write(cfg.SummaryPath, buildSummary(cfg, result)); err != nil {
			return err
		}
		a.log.Info("Summary saved to %s", cfg.SummaryPath)
	}

	if v := result.Verification; v != nil && (v.DecodedImages != v.Samples || v.Mismatched > 0) {
		return fmt.Errorf("verification failed: decoded %d of %d frames, %d with wrong size", v.DecodedImages, v.Samples, v.Mismatched)
	}
	a.log.Info("Output saved to %s", cfg.OutputPath)
	return nil
}

func runDecode(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("decode: expected one input file")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	a, err := newAppContext(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(a.log)
	defer cancel()

	v, err := a.orch.VerifyFile(ctx, c.Args().First(), orchestrator.VerifyConfig{
		Threads:        cfg.Threads,
		ThumbnailEvery: cfg.ThumbnailEvery,
		ThumbnailWidth: cfg.ThumbnailWidth,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, l10n.F("%dx%d, %d samples, %d keyframes, %d decoded", v.Width, v.Height, v.Samples, v.Keyframes, v.DecodedImages))
	if v.DecodedImages != v.Samples || v.Mismatched > 0 {
		return fmt.Errorf("verification failed: decoded %d of %d frames, %d with wrong size", v.DecodedImages, v.Samples, v.Mismatched)
	}
	return nil
}

// derivedConfig is the document printed by the config command.
type derivedConfig struct {
	Settings struct {
		Width            int               `yaml:"width"`
		Height           int               `yaml:"height"`
		Quality          av1config.Quality `yaml:"quality"`
		KeyframeInterval int               `yaml:"keyframe_interval"`
		Threads          int               `yaml:"threads"`
	} `yaml:"settings"`
	Config   ports.EncoderConfig `yaml:"config"`
	Controls []ports.Control     `yaml:"controls"`
}

func runConfig(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var doc derivedConfig
	doc.Settings.Width = cfg.Width
	doc.Settings.Height = cfg.Height
	doc.Settings.Quality = cfg.Quality
	doc.Settings.KeyframeInterval = cfg.KeyframeInterval
	doc.Settings.Threads = cfg.Threads

	derived := av1config.Derive(av1config.Settings{
		Width:            cfg.Width,
		Height:           cfg.Height,
		Quality:          cfg.Quality,
		KeyframeInterval: cfg.KeyframeInterval,
		Threads:          cfg.Threads,
	})
	doc.Config = derived.Config
	doc.Controls = derived.Controls

	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func buildSummary(cfg config.Config, r orchestrator.RunResult) *summarizer.Summary {
	b := summarizer.NewBuilder().
		WithSettings(summarizer.Settings{
			Width:            r.Width,
			Height:           r.Height,
			FPS:              r.FPS,
			Frames:           r.CapturedFrames,
			Quality:          r.Quality.String(),
			KeyframeInterval: cfg.KeyframeInterval,
			Threads:          r.Config.Threads,
			QualityChanges:   r.QualityChanges,
		}).
		WithEncoder(summarizer.EncoderInfo{
			Version:       aomengine.Version(),
			RateControl:   r.Config.RateControl.String(),
			MinQuantizer:  r.Config.MinQuantizer,
			MaxQuantizer:  r.Config.MaxQuantizer,
			TargetBitrate: r.Config.TargetBitrate,
			MinBitrate:    r.MinTargetBitrate,
			MaxBitrate:    r.MaxTargetBitrate,
			Controls:      r.Controls,
		}).
		WithOutput(summarizer.OutputInfo{
			Path:          r.OutputPath,
			EncodedFrames: r.EncodedFrames,
			Keyframes:     r.Keyframes,
			NoOutput:      r.NoOutput,
			EncodedBytes:  r.EncodedBytes,
			FileSize:      r.FileSize,
			DurationMs:    r.DurationMs,
		})
	if v := r.Verification; v != nil {
		b.WithVerification(summarizer.VerificationInfo{
			Samples:       v.Samples,
			DecodedImages: v.DecodedImages,
			Mismatched:    v.Mismatched,
			Thumbnails:    v.Thumbnails,
		})
	}
	return b.Build()
}
