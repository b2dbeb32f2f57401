package ports

import (
	"image"
)

// DebugSink receives intermediate results of a run for offline inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveConfigYAML saves the derived encoder configuration.
	SaveConfigYAML(data []byte) error

	// SaveSourceFrame saves a synthesized input frame before conversion to I420.
	SaveSourceFrame(index int, img image.Image) error

	// SavePacket saves one compressed frame as a raw OBU stream.
	SavePacket(index int, data []byte) error

	// SaveThumbnail saves a scaled-down decoded frame.
	SaveThumbnail(index int, img image.Image) error
}
