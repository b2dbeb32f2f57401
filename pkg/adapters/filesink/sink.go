// Package filesink writes debug output of a run into a directory tree:
//
//	<dir>/config.yaml
//	<dir>/source/frame-0000.png
//	<dir>/packets/frame-0000.obu
//	<dir>/thumbnails/frame-0000.png
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/av1rtc/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveConfigYAML saves the derived encoder configuration.
func (s *Sink) SaveConfigYAML(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "config.yaml"), data)
}

// SaveSourceFrame saves a synthesized frame as PNG.
func (s *Sink) SaveSourceFrame(index int, img image.Image) error {
	return s.savePNG("source", index, img)
}

// SavePacket saves a compressed frame as a raw OBU stream.
func (s *Sink) SavePacket(index int, data []byte) error {
	dir := filepath.Join(s.baseDir, "packets")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(dir, frameName(index, "obu")), data)
}

// SaveThumbnail saves a decoded thumbnail as PNG.
func (s *Sink) SaveThumbnail(index int, img image.Image) error {
	return s.savePNG("thumbnails", index, img)
}

func (s *Sink) savePNG(sub string, index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, sub)
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode %s frame %d: %w", sub, index, err)
	}
	return s.fs.WriteFile(filepath.Join(dir, frameName(index, "png")), data)
}

func frameName(index int, ext string) string {
	return fmt.Sprintf("frame-%04d.%s", index, ext)
}

var _ ports.DebugSink = (*Sink)(nil)
