package capture

import (
	"fmt"
	"image"

	"github.com/user/av1rtc/pkg/pipeline"
	"github.com/user/av1rtc/pkg/ports"
)

var codeLines = []string{
	"func (e *Encoder) Encode(pts int64, data []byte) (*Frames, error) {",
	"	if 2*len(data) < 3*e.width*e.height {",
	"		return nil, ErrInsufficientData",
	"	}",
	"	e.epoch++",
	"	if err := e.ctx.Encode(frame, pts, 1, 0); err != nil {",
	"		return nil, err",
	"	}",
	"	return &Frames{enc: e, epoch: e.epoch}, nil",
	"}",
}

// drawScreen renders frame index of a desktop with one editor window. Text is
// typed in progressively, the current line is highlighted and the pointer
// travels across the window, so consecutive frames differ in small regions.
func drawScreen(r ports.Renderer, input pipeline.CaptureInput, index int) image.Image {
	w, h := input.Width, input.Height
	theme := input.Theme
	c := r.CreateCanvas(w, h, theme.Desktop)

	margin := max(w/20, 2)
	winX, winY := margin, margin
	winW, winH := w-2*margin, h-2*margin
	title := max(h/24, 4)
	c.DrawRoundedRect(winX, winY, winW, winH, max(title/3, 1), theme.Window)
	c.DrawRect(winX, winY, winW, title, theme.TitleBar)
	for i := 0; i < 3; i++ {
		c.DrawCircle(winX+title/2+i*title, winY+title/2, max(title/4, 1), theme.Highlight)
	}

	lineH := max(h/30, 8)
	textX := winX + margin/2
	top := winY + title + lineH
	typed := index * 4
	visible := (winH - title - lineH) / lineH
	style := ports.TextStyle{FontSize: float64(lineH) * 0.8, Color: theme.Text}

	current := 0
	for i := 0; i < visible && typed > 0; i++ {
		line := codeLines[i%len(codeLines)]
		n := min(len(line), typed)
		typed -= n
		current = i
		c.DrawText(line[:n], textX, top+i*lineH, style)
	}
	c.DrawRectStroke(winX+1, top+current*lineH-lineH/2, winW-2, lineH, theme.Highlight, 1)

	status := fmt.Sprintf("frame %d", index)
	c.DrawText(status, winX+winW-margin/2, winY+winH-lineH/2, ports.TextStyle{
		FontSize: style.FontSize,
		Color:    theme.Text,
		Align:    ports.AlignRight,
	})

	span := max(input.Frames, 1)
	px := winX + (winW*index)/span
	py := winY + title + (winH-title)*((index*7)%span)/span
	c.DrawLine(px, py, px+lineH/2, py+lineH, theme.Cursor, 2)
	c.DrawCircle(px, py, 2, theme.Cursor)

	return c.ToImage()
}
