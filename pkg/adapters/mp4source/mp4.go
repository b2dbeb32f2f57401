// Package mp4source extracts compressed video samples from fragmented MP4.
package mp4source

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/av1rtc/pkg/ports"
)

// Demuxer implements ports.Demuxer.
type Demuxer struct{}

// New creates a new demuxer.
func New() *Demuxer {
	return &Demuxer{}
}

// Demux returns the first video track and all of its samples in decode order.
// Only fragmented files are supported.
func (d *Demuxer) Demux(data []byte) (ports.Track, []ports.Sample, error) {
	f, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return ports.Track{}, nil, fmt.Errorf("decode mp4: %w", err)
	}
	if !f.IsFragmented() || f.Init == nil || f.Init.Moov == nil {
		return ports.Track{}, nil, fmt.Errorf("progressive MP4 not supported, use fragmented MP4")
	}

	track, trackID, ok := videoTrack(f.Init.Moov)
	if !ok {
		return ports.Track{}, nil, fmt.Errorf("no video track found")
	}

	var trex *mp4.TrexBox
	if f.Init.Moov.Mvex != nil {
		for _, t := range f.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var samples []ports.Sample
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				full, err := frag.GetFullSamples(trex)
				if err != nil {
					return ports.Track{}, nil, fmt.Errorf("get samples: %w", err)
				}
				for _, s := range full {
					samples = append(samples, ports.Sample{
						Data:     s.Data,
						Key:      s.Flags == mp4.SyncSampleFlags,
						PTS:      int64(s.DecodeTime),
						Duration: s.Dur,
					})
				}
			}
		}
	}

	return track, samples, nil
}

func videoTrack(moov *mp4.MoovBox) (ports.Track, uint32, bool) {
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		track := ports.Track{
			Width:     int(trak.Tkhd.Width >> 16),
			Height:    int(trak.Tkhd.Height >> 16),
			Timescale: 1000,
		}
		if trak.Mdia.Mdhd != nil {
			track.Timescale = trak.Mdia.Mdhd.Timescale
		}
		if minf := trak.Mdia.Minf; minf != nil && minf.Stbl != nil && minf.Stbl.Stsd != nil {
			for _, child := range minf.Stbl.Stsd.Children {
				track.Codec = child.Type()
				if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
					track.Width = int(vse.Width)
					track.Height = int(vse.Height)
				}
				break
			}
		}
		return track, trak.Tkhd.TrackID, true
	}
	return ports.Track{}, 0, false
}

var _ ports.Demuxer = (*Demuxer)(nil)
