// Package codecdetect identifies the video codec stored in an MP4 file.
package codecdetect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecAV1     Codec = "av1"
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecUnknown Codec = "unknown"
)

// ErrNotAV1 is returned by RequireAV1 for files whose video track is not AV1.
var ErrNotAV1 = errors.New("codecdetect: video track is not AV1")

// DetectFromFile detects the video codec used in an MP4 file.
func DetectFromFile(path string) (Codec, error) {
	f, err := os.Open(path)
	if err != nil {
		return CodecUnknown, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return DetectFromReader(f)
}

// DetectFromReader detects the video codec and rewinds reader.
func DetectFromReader(reader io.ReadSeeker) (Codec, error) {
	f, err := mp4.DecodeFile(reader)
	if err != nil {
		return CodecUnknown, fmt.Errorf("decode mp4: %w", err)
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return CodecUnknown, fmt.Errorf("seek: %w", err)
	}
	return detect(f)
}

// DetectFromBytes detects the video codec from MP4 data.
func DetectFromBytes(data []byte) (Codec, error) {
	return DetectFromReader(bytes.NewReader(data))
}

// RequireAV1 fails unless data is an MP4 whose video track is AV1.
func RequireAV1(data []byte) error {
	codec, err := DetectFromBytes(data)
	if err != nil {
		return err
	}
	if codec != CodecAV1 {
		return fmt.Errorf("%w: found %s", ErrNotAV1, codec)
	}
	return nil
}

func detect(f *mp4.File) (Codec, error) {
	var moov *mp4.MoovBox
	switch {
	case f.IsFragmented() && f.Init != nil:
		moov = f.Init.Moov
	default:
		moov = f.Moov
	}
	if moov == nil {
		return CodecUnknown, fmt.Errorf("no moov box found")
	}

	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
			continue
		}
		for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
			if c := fromSampleEntry(child.Type()); c != CodecUnknown {
				return c, nil
			}
		}
	}
	return CodecUnknown, fmt.Errorf("no video track found")
}

func fromSampleEntry(typ string) Codec {
	switch typ {
	case "av01":
		return CodecAV1
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecHEVC
	default:
		return CodecUnknown
	}
}
