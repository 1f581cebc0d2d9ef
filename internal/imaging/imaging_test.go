package imaging

import (
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ironsheep/frame-bridge/internal/frame"
)

// createTestImage writes a solid color PNG to a temp dir and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "test-image.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createPatternFrame numbers pixels so crops can be checked by value.
func createPatternFrame(width, height int) *frame.Frame {
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = byte(y*10 + x)
		}
	}
	return &frame.Frame{Width: width, Height: height, Stride: width, Pix: pix}
}

func TestNewFrameCache(t *testing.T) {
	cache := NewFrameCache()
	if cache == nil {
		t.Fatal("NewFrameCache returned nil")
	}
	if cache.Len() != 0 {
		t.Errorf("new cache has %d entries", cache.Len())
	}
}

func TestFrameCache_Load(t *testing.T) {
	path := createTestImage(t, 20, 10, color.White)
	cache := NewFrameCache()

	f, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.Width != 20 || f.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 20x10", f.Width, f.Height)
	}
	if f.At(5, 5) != 255 {
		t.Errorf("white pixel: got %d, want 255", f.At(5, 5))
	}

	// Second load must return the cached frame.
	f2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if f != f2 {
		t.Error("second Load did not return the cached frame")
	}
}

func TestFrameCache_Load_NonExistent(t *testing.T) {
	cache := NewFrameCache()
	if _, err := cache.Load("/nonexistent/path/image.png"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestFrameCache_Load_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cache := NewFrameCache()
	_, err := cache.Load(path)
	if err == nil || !strings.Contains(err.Error(), "failed to decode image") {
		t.Errorf("got %v, want a decode error", err)
	}
}

func TestFrameCache_EvictAndClear(t *testing.T) {
	p1 := createTestImage(t, 4, 4, color.Black)
	p2 := createTestImage(t, 4, 4, color.White)
	cache := NewFrameCache()

	for _, p := range []string{p1, p2} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	// Both temp files share a name, so the paths differ only by directory.
	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}

	cache.Evict(p1)
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d entries, want 1", cache.Len())
	}
	cache.Evict("/not/cached.png")

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d entries, want 0", cache.Len())
	}
}

func TestFrameCache_ConcurrentAccess(t *testing.T) {
	path := createTestImage(t, 16, 16, color.Gray{Y: 90})
	cache := NewFrameCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("concurrent Load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestCropFrame(t *testing.T) {
	f := createPatternFrame(10, 8)

	c, err := CropFrame(f, image.Rect(2, 3, 6, 7))
	if err != nil {
		t.Fatalf("CropFrame failed: %v", err)
	}
	if c.Width != 4 || c.Height != 4 {
		t.Fatalf("size: got %dx%d, want 4x4", c.Width, c.Height)
	}
	if c.At(0, 0) != 32 {
		t.Errorf("At(0,0): got %d, want 32", c.At(0, 0))
	}
	if c.At(3, 3) != 65 {
		t.Errorf("At(3,3): got %d, want 65", c.At(3, 3))
	}

	// The crop is a view: writes show through.
	f.Pix[3*10+2] = 255
	if c.At(0, 0) != 255 {
		t.Error("crop does not share memory with the frame")
	}
}

func TestCropFrame_FullFrame(t *testing.T) {
	f := createPatternFrame(10, 8)
	c, err := CropFrame(f, f.Bounds())
	if err != nil {
		t.Fatalf("CropFrame failed: %v", err)
	}
	if c.Width != 10 || c.Height != 8 {
		t.Errorf("size: got %dx%d, want 10x8", c.Width, c.Height)
	}
}

func TestCropFrame_Invalid(t *testing.T) {
	f := createPatternFrame(10, 8)

	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{"outside", image.Rect(5, 5, 11, 8)},
		{"negative origin", image.Rect(-1, 0, 4, 4)},
		{"empty", image.Rectangle{Min: image.Pt(4, 4), Max: image.Pt(4, 6)}},
		{"inverted", image.Rectangle{Min: image.Pt(6, 6), Max: image.Pt(2, 2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropFrame(f, tt.rect); err == nil {
				t.Errorf("CropFrame(%v) succeeded, want error", tt.rect)
			}
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	f := createPatternFrame(10, 8)

	enc, err := EncodeFrame(f)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	if enc.Width != 10 || enc.Height != 8 || enc.MimeType != "image/png" {
		t.Errorf("result: got %dx%d %s", enc.Width, enc.Height, enc.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}

	r, _, _, _ := img.At(3, 2).RGBA()
	if uint8(r>>8) != 23 {
		t.Errorf("pixel (3,2): got %d, want 23", r>>8)
	}
}

func TestDecodeRawFrame(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6}
	enc := base64.StdEncoding.EncodeToString(raw)

	f, err := DecodeRawFrame(enc, 3, 2, 0)
	if err != nil {
		t.Fatalf("DecodeRawFrame failed: %v", err)
	}
	if f.At(2, 1) != 6 {
		t.Errorf("At(2,1): got %d, want 6", f.At(2, 1))
	}

	f, err = DecodeRawFrame(enc, 2, 2, 3)
	if err != nil {
		t.Fatalf("DecodeRawFrame with stride failed: %v", err)
	}
	if f.At(1, 1) != 5 {
		t.Errorf("strided At(1,1): got %d, want 5", f.At(1, 1))
	}
}

func TestDecodeRawFrame_Errors(t *testing.T) {
	if _, err := DecodeRawFrame("%%%", 2, 2, 0); err == nil {
		t.Error("expected error for invalid base64")
	}

	enc := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})
	_, err := DecodeRawFrame(enc, 2, 2, 0)
	if !errors.Is(err, frame.ErrBufferTooSmall) {
		t.Errorf("got %v, want ErrBufferTooSmall", err)
	}
}
