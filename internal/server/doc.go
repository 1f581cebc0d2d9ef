// Package server implements the MCP (Model Context Protocol) server for frame
// analysis tools.
//
// The server exposes the frame bridge (Canny + Hough line detection and
// brightness) to MCP clients, so the same analysis a camera host runs per
// frame can be inspected on stills and captured buffers.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - frame_version: Greeting banner and backend version
//   - frame_detect_lines: Lines in (rho, theta) form plus the "rho,theta;" string
//   - frame_brightness: Mean and standard deviation of intensity
//   - frame_edge_detect: Canny edge map as PNG
//   - frame_overlay_lines: Lines drawn as a camera preview shows them
//   - frame_parse_lines: Decode a serialized line string
//   - frame_cache: Report, evict or clear cached file frames
//
// # Frame Input
//
// Frame tools take either a path to an image file, converted to grayscale,
// or data_base64 with width and height (and optionally stride) describing a
// raw 8-bit luminance buffer. An optional crop {x1,y1,x2,y2} restricts the
// analysis; results are then in crop coordinates.
//
// # Frame Caching
//
// Frames loaded from files are cached by path until evicted or cleared with
// frame_cache. Raw buffers are never cached.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Each tool call is logged with a unique call_id.
//
// # Usage
//
//	b, err := bridge.New(cfg, bridge.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	srv := server.New(b, server.WithLogger(logger))
//	return srv.Run()
package server
