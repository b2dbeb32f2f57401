//go:build noaom

// Package aomengine implements ports.Engine on top of libaom. This build was
// made without libaom and every constructor fails.
package aomengine

import (
	"errors"

	"github.com/user/av1rtc/pkg/ports"
)

// ErrUnavailable is returned when the binary was built with the noaom tag.
var ErrUnavailable = errors.New("aomengine: built without libaom (noaom tag)")

// Engine is a placeholder that reports ErrUnavailable.
type Engine struct{}

// New returns the placeholder engine.
func New() *Engine {
	return &Engine{}
}

// Version reports that libaom is not linked.
func Version() string {
	return "unavailable"
}

func (Engine) NewEncoder(ports.EncoderConfig) (ports.EncoderContext, error) {
	return nil, ErrUnavailable
}

func (Engine) NewDecoder(ports.DecoderConfig) (ports.DecoderContext, error) {
	return nil, ErrUnavailable
}

func (Engine) AllocImage(ports.PixelFormat, int, int, int) (ports.ImageHandle, error) {
	return nil, ErrUnavailable
}

var _ ports.Engine = (*Engine)(nil)
