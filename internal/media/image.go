// Package media prepares local image files for upload: validation,
// downscaling, and webp re-encoding happen on the client so the upload
// endpoint only ever sees bounded, well-formed payloads.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"os"

	"ripple/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxUploadBytes bounds the raw file size before decoding.
	MaxUploadBytes = 10 * 1024 * 1024
	// MaxDimension bounds the longer edge after downscaling.
	MaxDimension = 2048
	// WebPQuality is the lossy quality for the re-encoded payload.
	WebPQuality = 70
)

// Attachment is an upload-ready media payload.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PrepareImageFile reads a local image file and returns an upload-ready
// attachment. Remote URLs never go through this path; they are passed to
// the send pipeline unchanged.
func PrepareImageFile(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewUploadError(fmt.Errorf("failed to read %s: %w", path, err))
	}
	return PrepareImageBytes(data)
}

// PrepareImageBytes validates raw image bytes, downscales oversized
// images, and re-encodes to webp.
func PrepareImageBytes(data []byte) (*Attachment, error) {
	if len(data) == 0 {
		return nil, models.NewValidationError("no file selected")
	}
	if len(data) > MaxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("file too large (max %dMB)", MaxUploadBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(data)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("invalid image file")
	}

	decoded = downscale(decoded, MaxDimension)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, decoded, &webp.Options{Quality: WebPQuality}); err != nil {
		return nil, models.NewUploadError(fmt.Errorf("failed to encode webp: %w", err))
	}

	return &Attachment{
		Filename:    "upload.webp",
		ContentType: "image/webp",
		Data:        buf.Bytes(),
	}, nil
}

func isAllowedImageMIME(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// downscale bounds the longer edge at maxSize, preserving aspect ratio.
// Images already within bounds are returned unchanged.
func downscale(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(w)
	if h > w {
		scale = float64(maxSize) / float64(h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
