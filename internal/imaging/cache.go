package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/ironsheep/frame-bridge/internal/frame"
)

// FrameCache provides thread-safe caching of grayscale frames decoded from
// image files.
//
// Frames are keyed by the exact path string. Different paths to the same
// file (relative vs absolute) produce separate entries.
//
// # Memory Management
//
// Cached frames stay in memory until Evict or Clear. One 8-bit plane per
// image is kept, not the decoded color image.
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]*frame.Frame
}

// NewFrameCache creates an empty cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]*frame.Frame),
	}
}

// Load returns the grayscale frame for path, decoding the file on first use.
// Supported formats are PNG, JPEG and GIF.
func (c *FrameCache) Load(path string) (*frame.Frame, error) {
	c.mu.RLock()
	if f, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	f := frame.FromImage(img)

	c.mu.Lock()
	c.frames[path] = f
	c.mu.Unlock()

	return f, nil
}

// Len reports the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*frame.Frame)
	c.mu.Unlock()
}

// Evict removes the frame cached for path, if any.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}
