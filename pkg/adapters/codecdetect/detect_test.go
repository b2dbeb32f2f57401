package codecdetect

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSampleEntry(t *testing.T) {
	tests := []struct {
		typ  string
		want Codec
	}{
		{"av01", CodecAV1},
		{"avc1", CodecH264},
		{"avc3", CodecH264},
		{"hvc1", CodecHEVC},
		{"hev1", CodecHEVC},
		{"mp4a", CodecUnknown},
		{"", CodecUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, fromSampleEntry(tt.typ))
		})
	}
}

func TestDetectFromBytes_Garbage(t *testing.T) {
	codec, err := DetectFromBytes([]byte("not an mp4 at all"))
	assert.Error(t, err)
	assert.Equal(t, CodecUnknown, codec)

	require.Error(t, RequireAV1(nil))
}

func TestDetectFromFile_Missing(t *testing.T) {
	_, err := DetectFromFile(filepath.Join(t.TempDir(), "missing.mp4"))
	assert.ErrorContains(t, err, "open file")
}
