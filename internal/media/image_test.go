package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareImageBytes_ReencodesToWebP(t *testing.T) {
	attachment, err := PrepareImageBytes(pngBytes(t, 64, 48))
	require.NoError(t, err)

	assert.Equal(t, "upload.webp", attachment.Filename)
	assert.Equal(t, "image/webp", attachment.ContentType)
	assert.NotEmpty(t, attachment.Data)
}

func TestPrepareImageBytes_DownscalesOversized(t *testing.T) {
	attachment, err := PrepareImageBytes(pngBytes(t, MaxDimension+512, 100))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(attachment.Data))
	require.NoError(t, err)
	assert.LessOrEqual(t, decoded.Bounds().Dx(), MaxDimension)
	assert.LessOrEqual(t, decoded.Bounds().Dy(), MaxDimension)
}

func TestPrepareImageBytes_KeepsSmallDimensions(t *testing.T) {
	attachment, err := PrepareImageBytes(pngBytes(t, 100, 80))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(attachment.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 80, decoded.Bounds().Dy())
}

func TestPrepareImageBytes_RejectsEmpty(t *testing.T) {
	_, err := PrepareImageBytes(nil)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestPrepareImageBytes_RejectsOversizedFile(t *testing.T) {
	_, err := PrepareImageBytes(make([]byte, MaxUploadBytes+1))
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestPrepareImageBytes_RejectsNonImage(t *testing.T) {
	_, err := PrepareImageBytes([]byte("%PDF-1.4 definitely not an image"))
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestPrepareImageBytes_RejectsTruncatedImage(t *testing.T) {
	data := pngBytes(t, 64, 64)
	_, err := PrepareImageBytes(data[:20])
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestPrepareImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 32, 32), 0o600))

	attachment, err := PrepareImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", attachment.ContentType)
}

func TestPrepareImageFile_MissingFile(t *testing.T) {
	_, err := PrepareImageFile(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeUpload))
}
