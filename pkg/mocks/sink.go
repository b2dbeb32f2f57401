package mocks

import (
	"image"
	"sync"

	"github.com/user/av1rtc/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	ConfigYAML   []byte
	SourceFrames map[int]image.Image
	Packets      map[int][]byte
	Thumbnails   map[int]image.Image

	SavePacketErr error
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:      enabled,
		SourceFrames: make(map[int]image.Image),
		Packets:      make(map[int][]byte),
		Thumbnails:   make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveConfigYAML(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfigYAML = data
	return nil
}

func (m *DebugSink) SaveSourceFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceFrames[index] = img
	return nil
}

func (m *DebugSink) SavePacket(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SavePacketErr != nil {
		return m.SavePacketErr
	}
	m.Packets[index] = append([]byte(nil), data...)
	return nil
}

func (m *DebugSink) SaveThumbnail(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Thumbnails[index] = img
	return nil
}

// PacketCount returns the number of saved packets.
func (m *DebugSink) PacketCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Packets)
}

var _ ports.DebugSink = (*DebugSink)(nil)
