// Package imaging moves frames between files, base64 payloads and PNG output
// for the MCP server.
//
// Frames loaded from disk are converted to grayscale once and cached by
// path. Raw frames from clients arrive as base64 luminance buffers. Results
// that are images (edge maps, overlays) leave as base64 PNG.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. Cached frames are shared, so
// callers must treat them as read-only.
package imaging
