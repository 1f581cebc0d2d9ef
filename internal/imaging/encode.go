package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/ironsheep/frame-bridge/internal/frame"
)

// EncodedImage is an image result encoded as base64 PNG.
type EncodedImage struct {
	// Width of the image in pixels.
	Width int `json:"width"`

	// Height of the image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the PNG file encoded with standard base64.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG result.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// EncodeFrame encodes a grayscale frame (for example an edge map) as PNG.
func EncodeFrame(f *frame.Frame) (*EncodedImage, error) {
	return EncodePNG(f.Gray())
}

// DecodeRawFrame wraps a base64 luminance buffer as a frame.
//
// A stride of 0 means rows are tightly packed.
func DecodeRawFrame(dataBase64 string, width, height, stride int) (*frame.Frame, error) {
	data, err := base64.StdEncoding.DecodeString(dataBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame data: %w", err)
	}
	if stride == 0 {
		stride = width
	}
	return frame.NewWithStride(data, width, height, stride)
}
