package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	b.WriteString("# Encode Summary\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Settings\n\n")
	table(&b, [][2]string{
		{"Resolution", fmt.Sprintf("%dx%d", s.Settings.Width, s.Settings.Height)},
		{"Frame rate", fmt.Sprintf("%.2f fps", s.Settings.FPS)},
		{"Frames", fmt.Sprintf("%d", s.Settings.Frames)},
		{"Quality", s.Settings.Quality},
		{"Keyframe interval", keyframeInterval(s.Settings.KeyframeInterval)},
		{"Threads", fmt.Sprintf("%d", s.Settings.Threads)},
		{"Quality changes", fmt.Sprintf("%d", s.Settings.QualityChanges)},
	})

	b.WriteString("## Encoder\n\n")
	rows := [][2]string{}
	if s.Encoder.Version != "" {
		rows = append(rows, [2]string{"Library", s.Encoder.Version})
	}
	rows = append(rows,
		[2]string{"Rate control", s.Encoder.RateControl},
		[2]string{"Quantizer range", fmt.Sprintf("%d-%d", s.Encoder.MinQuantizer, s.Encoder.MaxQuantizer)},
		[2]string{"Target bitrate", fmt.Sprintf("%d kbps", s.Encoder.TargetBitrate)},
	)
	if s.Encoder.MinBitrate != s.Encoder.MaxBitrate {
		rows = append(rows, [2]string{"Target range", fmt.Sprintf("%d-%d kbps", s.Encoder.MinBitrate, s.Encoder.MaxBitrate)})
	}
	rows = append(rows, [2]string{"Controls applied", fmt.Sprintf("%d", s.Encoder.Controls)})
	table(&b, rows)

	b.WriteString("## Output\n\n")
	table(&b, [][2]string{
		{"File", fmt.Sprintf("`%s`", s.Output.Path)},
		{"Encoded frames", fmt.Sprintf("%d", s.Output.EncodedFrames)},
		{"Keyframes", fmt.Sprintf("%d", s.Output.Keyframes)},
		{"Frames without output", fmt.Sprintf("%d", s.Output.NoOutput)},
		{"Payload", formatBytes(s.Output.EncodedBytes)},
		{"File size", formatBytes(s.Output.FileSize)},
		{"Duration", fmt.Sprintf("%.2f s", float64(s.Output.DurationMs)/1000)},
		{"Effective bitrate", fmt.Sprintf("%.1f kbps", s.Output.EffectiveBitrate())},
	})

	b.WriteString("## Verification\n\n")
	if s.Verification == nil {
		b.WriteString("Skipped.\n")
		return b.String()
	}
	v := s.Verification
	status := "OK"
	if !v.OK() {
		status = "FAILED"
	}
	table(&b, [][2]string{
		{"Status", status},
		{"Samples", fmt.Sprintf("%d", v.Samples)},
		{"Decoded images", fmt.Sprintf("%d", v.DecodedImages)},
		{"Size mismatches", fmt.Sprintf("%d", v.Mismatched)},
		{"Thumbnails", fmt.Sprintf("%d", v.Thumbnails)},
	})
	return b.String()
}

func table(b *strings.Builder, rows [][2]string) {
	b.WriteString("| Item | Value |\n|------|-------|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], r[1])
	}
	b.WriteString("\n")
}

func keyframeInterval(n int) string {
	if n <= 0 {
		return "disabled"
	}
	return fmt.Sprintf("%d frames", n)
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

var _ Formatter = (*MarkdownFormatter)(nil)
