// Package decode implements the verification stage: compressed samples are
// fed back through an av1.Decoder and every surfaced image is checked.
package decode

import (
	"context"
	"fmt"
	"image"

	"github.com/user/av1rtc/pkg/av1"
	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
)

// DefaultThumbnailWidth is used when DecodeInput.ThumbnailWidth is zero.
const DefaultThumbnailWidth = 160

// Stage decodes samples.
type Stage struct {
	engine   ports.Engine
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new decode stage.
func NewStage(engine ports.Engine, renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		engine:   engine,
		renderer: renderer,
		sink:     sink,
		logger:   logger,
	}
}

// Execute decodes every sample and then flushes the decoder.
func (s *Stage) Execute(ctx context.Context, input pipeline.DecodeInput) (pipeline.DecodeResult, error) {
	result := pipeline.DecodeResult{}

	dec, err := av1.NewDecoder(s.engine, input.Threads, s.logger)
	if err != nil {
		return result, fmt.Errorf("create decoder: %w", err)
	}
	defer dec.Close()

	log := s.logger.WithComponent("decode")
	log.Debug("Decoding %d samples", len(input.Samples))

	for i, sample := range input.Samples {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		images, err := dec.Decode(sample.Data)
		if err != nil {
			return result, fmt.Errorf("decode sample %d: %w", i, err)
		}
		if err := s.drain(images, input, &result); err != nil {
			return result, err
		}
	}

	images, err := dec.Flush()
	if err != nil {
		return result, fmt.Errorf("flush decoder: %w", err)
	}
	if err := s.drain(images, input, &result); err != nil {
		return result, err
	}

	if result.Mismatched > 0 {
		log.Warn("%d decoded images differ from %dx%d", result.Mismatched, input.Width, input.Height)
	}
	log.Debug("Decoded %d images", result.Images)
	return result, nil
}

func (s *Stage) drain(images *av1.Images, input pipeline.DecodeInput, result *pipeline.DecodeResult) error {
	for view := range images.All() {
		index := result.Images
		result.Images++

		if view.Width() != input.Width || view.Height() != input.Height {
			result.Mismatched++
		}
		if input.ThumbnailEvery <= 0 || index%input.ThumbnailEvery != 0 {
			continue
		}

		thumb, err := s.thumbnail(view, input.ThumbnailWidth)
		if err != nil {
			return fmt.Errorf("thumbnail %d: %w", index, err)
		}
		result.Thumbnails = append(result.Thumbnails, thumb)
		if s.sink.Enabled() {
			if err := s.sink.SaveThumbnail(index, thumb); err != nil {
				s.logger.Warn("Failed to save thumbnail %d: %v", index, err)
			}
		}
	}
	return nil
}

// thumbnail scales view to width, keeping the aspect ratio. The result does
// not reference decoder memory.
func (s *Stage) thumbnail(view av1.ImageView, width int) (image.Image, error) {
	src, err := view.YCbCr()
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		width = DefaultThumbnailWidth
	}
	height := max(view.Height()*width/view.Width(), 1)
	return s.renderer.ResizeImage(src, width, height), nil
}
