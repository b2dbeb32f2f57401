// Package encode implements the encoding stage: it drives one av1.Encoder
// over captured frames and keeps a copy of every compressed frame.
package encode

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/user/av1rtc/pkg/av1"
	"github.com/user/av1rtc/pkg/av1config"
	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
)

// Stage encodes raw I420 frames.
type Stage struct {
	engine ports.Engine
	sink   ports.DebugSink
	logger ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(engine ports.Engine, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		engine: engine,
		sink:   sink,
		logger: logger,
	}
}

// debugConfig is the document written to config.yaml.
type debugConfig struct {
	Config   ports.EncoderConfig `yaml:"config"`
	Controls []ports.Control     `yaml:"controls"`
}

// Execute encodes all frames in order.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if len(input.Frames) == 0 {
		return result, fmt.Errorf("no frames to encode")
	}
	if input.FPS <= 0 {
		return result, fmt.Errorf("invalid frame rate %v", input.FPS)
	}

	settings := av1config.Settings{
		Width:            input.Width,
		Height:           input.Height,
		Quality:          input.Quality,
		KeyframeInterval: input.KeyframeInterval,
		Threads:          input.Threads,
	}
	enc, err := av1.NewEncoder(s.engine, settings, s.logger)
	if err != nil {
		return result, fmt.Errorf("create encoder: %w", err)
	}
	defer enc.Close()

	log := s.logger.WithComponent("encode")
	result.Controls = av1config.Derive(settings).Controls

	if s.sink.Enabled() {
		data, err := yaml.Marshal(debugConfig{Config: enc.Config(), Controls: result.Controls})
		if err == nil {
			err = s.sink.SaveConfigYAML(data)
		}
		if err != nil {
			log.Warn("Failed to save encoder config: %v", err)
		}
	}

	changes := scheduledChanges(input.QualityChanges)
	log.Debug("Encoding %d frames at %.2f fps", len(input.Frames), input.FPS)

	for i, frame := range input.Frames {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if q, ok := changes[i]; ok {
			if err := enc.SetQuality(q); err != nil {
				return result, fmt.Errorf("frame %d: %w", i, err)
			}
			log.Info("Quality changed to %s at frame %d", q, i)
		}

		pts := PTS(i, input.FPS)
		frames, err := enc.EncodeCopy(pts, frame.Data, input.StrideAlign)
		switch {
		case errors.Is(err, av1.ErrNoOutput):
			result.NoOutput++
		case err != nil:
			return result, fmt.Errorf("encode frame %d: %w", i, err)
		}

		for _, f := range frames {
			index := len(result.Samples)
			result.Samples = append(result.Samples, ports.Sample{Data: f.Data, Key: f.Key, PTS: f.PTS})
			result.Bytes += int64(len(f.Data))
			if f.Key {
				result.Keyframes++
			}
			if s.sink.Enabled() {
				if err := s.sink.SavePacket(index, f.Data); err != nil {
					log.Warn("Failed to save packet %d: %v", index, err)
				}
			}
		}
		result.Bitrates = append(result.Bitrates, enc.Bitrate())
	}

	assignDurations(result.Samples, PTS(1, input.FPS))
	result.Config = enc.Config()
	result.DurationMs = int(math.Round(float64(len(input.Frames)) * 1000 / input.FPS))

	log.Debug("Encoded %d frames, %d keyframes, %d bytes", len(result.Samples), result.Keyframes, result.Bytes)
	return result, nil
}

// PTS returns the presentation timestamp of frame index in 90 kHz ticks.
func PTS(index int, fps float64) int64 {
	return int64(math.Round(float64(index) * av1config.TicksPerSecond / fps))
}

// scheduledChanges indexes changes by frame; the last entry for a frame wins.
func scheduledChanges(changes []pipeline.QualityChange) map[int]av1config.Quality {
	sorted := append([]pipeline.QualityChange(nil), changes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	m := make(map[int]av1config.Quality, len(sorted))
	for _, c := range sorted {
		m[c.Frame] = c.Quality
	}
	return m
}

// assignDurations sets each sample's duration to the gap to the next one.
// The last sample gets one frame period.
func assignDurations(samples []ports.Sample, period int64) {
	for i := range samples {
		d := period
		if i+1 < len(samples) {
			d = samples[i+1].PTS - samples[i].PTS
		}
		if d < 0 {
			d = 0
		}
		samples[i].Duration = uint32(d)
	}
}
