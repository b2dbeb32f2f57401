package av1

import (
	"iter"

	"github.com/user/av1rtc/pkg/ports"
)

// IterState is the state of an extraction iterator.
type IterState int

const (
	// Draining means the engine may still hold output for this push.
	Draining IterState = iota
	// Exhausted means the sequence has ended. Only a new push starts a new one.
	Exhausted
)

// String returns the string representation of the state.
func (s IterState) String() string {
	if s == Draining {
		return "draining"
	}
	return "exhausted"
}

// Frame is one compressed frame.
//
// Data is owned by the engine and is only valid until the next push to, or
// Close of, the encoder that produced it. Use Clone to retain it.
type Frame struct {
	Data []byte
	Key  bool
	PTS  int64
}

// Clone returns a copy of f whose Data is owned by the caller.
func (f Frame) Clone() Frame {
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	return Frame{Data: data, Key: f.Key, PTS: f.PTS}
}

// Frames drains the compressed frames buffered for a single push.
// It is not restartable and becomes Exhausted once the encoder is pushed
// again or closed.
type Frames struct {
	enc    *Encoder
	epoch  uint64
	cursor ports.Cursor
	state  IterState
}

// Next returns the next compressed frame. Packets that do not carry frame
// data are skipped.
func (it *Frames) Next() (Frame, bool) {
	if it.state == Exhausted {
		return Frame{}, false
	}
	if it.enc.ctx == nil || it.enc.epoch != it.epoch {
		it.state = Exhausted
		return Frame{}, false
	}
	for {
		pkt, ok := it.enc.ctx.NextPacket(&it.cursor)
		if !ok {
			it.state = Exhausted
			return Frame{}, false
		}
		if pkt.Kind != ports.PacketFrame {
			continue
		}
		return Frame{Data: pkt.Data, Key: pkt.Key, PTS: pkt.PTS}, true
	}
}

// All returns the remaining frames as a sequence.
func (it *Frames) All() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for {
			f, ok := it.Next()
			if !ok || !yield(f) {
				return
			}
		}
	}
}

// Collect drains the iterator and returns owned copies of every frame.
func (it *Frames) Collect() []Frame {
	var out []Frame
	for f := range it.All() {
		out = append(out, f.Clone())
	}
	return out
}

// State reports whether the iterator can still yield frames.
func (it *Frames) State() IterState {
	return it.state
}

// Images drains the decoded images buffered for a single push or flush.
type Images struct {
	dec    *Decoder
	epoch  uint64
	cursor ports.Cursor
	state  IterState
}

// Next returns the next decoded image.
func (it *Images) Next() (ImageView, bool) {
	if it.state == Exhausted {
		return ImageView{}, false
	}
	if it.dec.ctx == nil || it.dec.epoch != it.epoch {
		it.state = Exhausted
		return ImageView{}, false
	}
	h, ok := it.dec.ctx.NextImage(&it.cursor)
	if !ok || h == nil {
		it.state = Exhausted
		return ImageView{}, false
	}
	return ImageView{h: h}, true
}

// All returns the remaining images as a sequence.
func (it *Images) All() iter.Seq[ImageView] {
	return func(yield func(ImageView) bool) {
		for {
			img, ok := it.Next()
			if !ok || !yield(img) {
				return
			}
		}
	}
}

// State reports whether the iterator can still yield images.
func (it *Images) State() IterState {
	return it.state
}
