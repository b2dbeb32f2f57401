package ports

// Sample is one compressed frame stored in a container.
// PTS and Duration are in Track.Timescale ticks.
type Sample struct {
	Data     []byte
	Key      bool
	PTS      int64
	Duration uint32
}

// Track describes the single video track of a container.
type Track struct {
	Codec     string // sample entry type, e.g. "av01"
	Width     int
	Height    int
	Timescale uint32
}

// Muxer packs compressed samples into a container file.
type Muxer interface {
	Mux(track Track, samples []Sample) ([]byte, error)
}

// Demuxer extracts the video track of a container file without decoding it.
type Demuxer interface {
	Demux(data []byte) (Track, []Sample, error)
}
