package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/av1rtc/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer. Canvases it creates
// count draw calls and render a plain image of the background color.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	mu       sync.Mutex
	Canvases int
	Resizes  int
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	m.mu.Lock()
	m.Canvases++
	m.mu.Unlock()
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	return &Canvas{width: width, height: height, bg: bg}
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	m.mu.Lock()
	m.Resizes++
	m.mu.Unlock()
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas.
type Canvas struct {
	width  int
	height int
	bg     color.Color

	Draws int
}

func (m *Canvas) DrawRect(x, y, w, h int, c color.Color)                             { m.Draws++ }
func (m *Canvas) DrawRoundedRect(x, y, w, h, radius int, c color.Color)              { m.Draws++ }
func (m *Canvas) DrawRectStroke(x, y, w, h int, c color.Color, strokeWidth float64) { m.Draws++ }
func (m *Canvas) DrawCircle(x, y, radius int, c color.Color)                         { m.Draws++ }
func (m *Canvas) DrawLine(x1, y1, x2, y2 int, c color.Color, width float64)         { m.Draws++ }
func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle)              { m.Draws++ }

func (m *Canvas) ToImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	if m.bg != nil {
		r, g, b, a := m.bg.RGBA()
		c := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}

var _ ports.Canvas = (*Canvas)(nil)
