// Package capture implements the screen capture stage. It renders synthetic
// screen-content frames and hands them to the encoder as packed I420.
package capture

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/image/draw"

	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
)

// Stage renders and converts frames.
type Stage struct {
	renderer   ports.Renderer
	sink       ports.DebugSink
	logger     ports.Logger
	numWorkers int
}

// NewStage creates a new capture stage.
func NewStage(renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger, numWorkers int) *Stage {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Stage{
		renderer:   renderer,
		sink:       sink,
		logger:     logger.WithComponent("capture"),
		numWorkers: numWorkers,
	}
}

// Execute renders input.Frames frames.
func (s *Stage) Execute(ctx context.Context, input pipeline.CaptureInput) (pipeline.CaptureResult, error) {
	if input.Width <= 0 || input.Height <= 0 {
		return pipeline.CaptureResult{}, fmt.Errorf("invalid capture size %dx%d", input.Width, input.Height)
	}
	if input.FPS <= 0 {
		return pipeline.CaptureResult{}, fmt.Errorf("invalid frame rate %v", input.FPS)
	}
	if input.Frames <= 0 {
		return pipeline.CaptureResult{Frames: []pipeline.RawFrame{}}, nil
	}

	workers := min(s.numWorkers, input.Frames)
	s.logger.Debug("Capturing %d frames with %d workers", input.Frames, workers)

	jobs := make(chan int, input.Frames)
	results := make(chan pipeline.RawFrame, input.Frames)
	// Each worker sends at most one error and then exits.
	errChan := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go s.worker(ctx, &wg, input, jobs, results, errChan)
	}

	for i := 0; i < input.Frames; i++ {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
		close(errChan)
	}()

	frames := make([]pipeline.RawFrame, 0, input.Frames)
	for f := range results {
		frames = append(frames, f)
	}

	if err := <-errChan; err != nil {
		return pipeline.CaptureResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return pipeline.CaptureResult{}, err
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Index < frames[j].Index
	})

	s.logger.Debug("Capture completed")
	return pipeline.CaptureResult{Frames: frames}, nil
}

func (s *Stage) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	input pipeline.CaptureInput,
	jobs <-chan int,
	results chan<- pipeline.RawFrame,
	errChan chan<- error,
) {
	defer wg.Done()

	for idx := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		img := drawScreen(s.renderer, input, idx)
		if b := img.Bounds(); b.Dx() != input.Width || b.Dy() != input.Height {
			errChan <- fmt.Errorf("frame %d: rendered %dx%d, want %dx%d", idx, b.Dx(), b.Dy(), input.Width, input.Height)
			return
		}
		if s.sink.Enabled() {
			if err := s.sink.SaveSourceFrame(idx, img); err != nil {
				s.logger.Warn("Failed to save source frame %d: %v", idx, err)
			}
		}

		results <- pipeline.RawFrame{
			Index:       idx,
			TimestampMs: int(float64(idx) * 1000 / input.FPS),
			Data:        ToI420(img),
		}
	}
}

// FrameSize returns the packed I420 size of a width x height picture.
func FrameSize(width, height int) int {
	cw, ch := (width+1)/2, (height+1)/2
	return width*height + 2*cw*ch
}

// ToI420 converts img to tightly packed 8-bit I420 using BT.601 studio-range
// coefficients. Chroma is the average of each 2x2 block.
func ToI420(img image.Image) []byte {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	width, height := rgba.Rect.Dx(), rgba.Rect.Dy()
	cw, ch := (width+1)/2, (height+1)/2
	out := make([]byte, FrameSize(width, height))
	yPlane := out[:width*height]
	uPlane := out[width*height : width*height+cw*ch]
	vPlane := out[width*height+cw*ch:]

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*rgba.Stride + x*4
			r, g, b := int(rgba.Pix[idx]), int(rgba.Pix[idx+1]), int(rgba.Pix[idx+2])
			yPlane[y*width+x] = clampByte(((66*r + 129*g + 25*b + 128) >> 8) + 16)
		}
	}

	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			var r, g, b, n int
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					x, y := cx*2+dx, cy*2+dy
					if x >= width || y >= height {
						continue
					}
					idx := y*rgba.Stride + x*4
					r += int(rgba.Pix[idx])
					g += int(rgba.Pix[idx+1])
					b += int(rgba.Pix[idx+2])
					n++
				}
			}
			r, g, b = r/n, g/n, b/n
			uPlane[cy*cw+cx] = clampByte(((-38*r - 74*g + 112*b + 128) >> 8) + 128)
			vPlane[cy*cw+cx] = clampByte(((112*r - 94*g - 18*b + 128) >> 8) + 128)
		}
	}
	return out
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
