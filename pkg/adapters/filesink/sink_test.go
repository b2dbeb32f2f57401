package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/av1rtc/pkg/mocks"
	"github.com/user/av1rtc/pkg/ports"
)

var testBaseDir = filepath.Join("debug")

func newSink() (*Sink, *mocks.FileSystem, *mocks.Renderer) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return []byte("png"), nil
		},
	}
	return New(testBaseDir, fs, renderer), fs, renderer
}

func TestSink_Enabled(t *testing.T) {
	sink, _, _ := newSink()
	assert.True(t, sink.Enabled())
}

func TestSink_SaveConfigYAML(t *testing.T) {
	sink, fs, _ := newSink()

	data := []byte("width: 1280\n")
	require.NoError(t, sink.SaveConfigYAML(data))

	saved, ok := fs.GetFile(filepath.Join(testBaseDir, "config.yaml"))
	require.True(t, ok)
	assert.Equal(t, data, saved)
}

func TestSink_SavePacket(t *testing.T) {
	sink, fs, _ := newSink()

	require.NoError(t, sink.SavePacket(7, []byte{0x12, 0x00}))

	saved, ok := fs.GetFile(filepath.Join(testBaseDir, "packets", "frame-0007.obu"))
	require.True(t, ok)
	assert.Equal(t, []byte{0x12, 0x00}, saved)

	exists, err := fs.Exists(filepath.Join(testBaseDir, "packets"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSink_SaveImages(t *testing.T) {
	sink, fs, _ := newSink()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	require.NoError(t, sink.SaveSourceFrame(0, img))
	require.NoError(t, sink.SaveThumbnail(12, img))

	files := fs.Files()
	assert.Contains(t, files, filepath.Join(testBaseDir, "source", "frame-0000.png"))
	assert.Contains(t, files, filepath.Join(testBaseDir, "thumbnails", "frame-0012.png"))
}

func TestSink_EncodeError(t *testing.T) {
	sink, fs, renderer := newSink()
	renderer.EncodeImageFunc = func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
		return nil, errors.New("boom")
	}

	err := sink.SaveThumbnail(3, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thumbnails frame 3")
	assert.Empty(t, fs.Files())
}
