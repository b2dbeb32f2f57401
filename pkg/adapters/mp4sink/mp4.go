// Package mp4sink packs AV1 samples into a fragmented MP4 file.
package mp4sink

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/av1"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/av1rtc/pkg/ports"
)

const trackID = 1

// Muxer implements ports.Muxer for AV1 video.
type Muxer struct{}

// New creates a new AV1 MP4 muxer.
func New() *Muxer {
	return &Muxer{}
}

// Mux writes ftyp, moov and one moof/mdat fragment holding every sample.
// The av1C record carries the sequence header of the first keyframe.
func (m *Muxer) Mux(track ports.Track, samples []ports.Sample) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to mux")
	}
	if track.Timescale == 0 {
		return nil, fmt.Errorf("track timescale must be positive")
	}

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(track.Timescale, "video", "und")
	trak := init.Moov.Trak

	av1C := configRecord(samples)
	av01 := mp4.CreateVisualSampleEntryBox("av01", uint16(track.Width), uint16(track.Height), av1C)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(av01)
	trak.Tkhd.Width = mp4.Fixed32(track.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(track.Height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	base := samples[0].PTS
	for _, s := range samples {
		flags := mp4.NonSyncSampleFlags
		if s.Key {
			flags = mp4.SyncSampleFlags
		}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(s.Data)),
				Dur:   s.Duration,
			},
			DecodeTime: uint64(s.PTS - base),
			Data:       s.Data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso6", "av01", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}
	return buf.Bytes(), nil
}

func configRecord(samples []ports.Sample) *mp4.Av1CBox {
	var seqHdr []byte
	for _, s := range samples {
		if s.Key {
			seqHdr = SequenceHeader(s.Data)
			break
		}
	}

	var profile byte
	if payload := obuPayload(seqHdr); len(payload) > 0 {
		profile = payload[0] >> 5
	}

	return &mp4.Av1CBox{
		CodecConfRec: av1.CodecConfRec{
			Version:            1,
			SeqProfile:         profile,
			SeqLevelIdx0:       8, // 4.0
			ChromaSubsamplingX: 1,
			ChromaSubsamplingY: 1,
			ConfigOBUs:         seqHdr,
		},
	}
}

const obuSequenceHeader = 1

// SequenceHeader returns the complete sequence header OBU in data, or nil.
func SequenceHeader(data []byte) []byte {
	for off := 0; off < len(data); {
		start := off
		header := data[off]
		obuType := (header >> 3) & 0x0f
		hasExt := header&0x04 != 0
		hasSize := header&0x02 != 0
		off++
		if hasExt {
			off++
		}

		size := len(data) - off
		if hasSize {
			var ok bool
			size, off, ok = readLeb128(data, off)
			if !ok {
				return nil
			}
		}
		end := off + size
		if end > len(data) || off > len(data) {
			return nil
		}
		if obuType == obuSequenceHeader {
			return data[start:end]
		}
		off = end
	}
	return nil
}

// obuPayload strips the header and size field of a single OBU.
func obuPayload(obu []byte) []byte {
	if len(obu) < 2 {
		return nil
	}
	off := 1
	if obu[0]&0x04 != 0 {
		off++
	}
	if obu[0]&0x02 != 0 {
		var ok bool
		_, off, ok = readLeb128(obu, off)
		if !ok {
			return nil
		}
	}
	if off >= len(obu) {
		return nil
	}
	return obu[off:]
}

func readLeb128(data []byte, off int) (value, next int, ok bool) {
	for i := 0; i < 8; i++ {
		if off >= len(data) {
			return 0, off, false
		}
		b := data[off]
		off++
		value |= int(b&0x7f) << (i * 7)
		if b&0x80 == 0 {
			return value, off, true
		}
	}
	return 0, off, false
}

var _ ports.Muxer = (*Muxer)(nil)
