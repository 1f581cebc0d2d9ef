package server

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTestImageFile writes a solid color PNG and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
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

// stepFrame returns a base64 width x height buffer that is 0 left of column
// step and 255 from it on.
func stepFrame(width, height, step int) string {
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := step; x < width; x++ {
			pix[y*width+x] = 255
		}
	}
	return base64.StdEncoding.EncodeToString(pix)
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Fatalf("content type: got %v, want text", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}

func TestHandleToolsCall_Version(t *testing.T) {
	s := newTestServer(t)

	var got VersionResult
	decodeResult(t, callTool(t, s, "frame_version", nil), &got)

	if !strings.HasPrefix(got.Greeting, "Hello from Go !\nWe're using ") {
		t.Errorf("greeting: got %q", got.Greeting)
	}
	if got.Backend == "" || got.Version == "" {
		t.Errorf("backend/version empty: %+v", got)
	}
	if len(got.Available) == 0 {
		t.Error("available_backends is empty")
	}
}

func TestHandleToolsCall_DetectLines(t *testing.T) {
	s := newTestServer(t)

	var got LinesResult
	decodeResult(t, callTool(t, s, "frame_detect_lines", map[string]interface{}{
		"data_base64": stepFrame(200, 200, 100),
		"width":       200,
		"height":      200,
	}), &got)

	if got.Width != 200 || got.Height != 200 {
		t.Errorf("size: got %dx%d, want 200x200", got.Width, got.Height)
	}
	if got.Serialized != "99,0;" {
		t.Errorf("serialized: got %q, want %q", got.Serialized, "99,0;")
	}
	if got.Count != 1 || len(got.Lines) != 1 {
		t.Fatalf("count: got %d (%d lines), want 1", got.Count, len(got.Lines))
	}
	if got.Lines[0].Rho != 99 || got.Lines[0].Theta != 0 {
		t.Errorf("line: got %+v, want rho 99 theta 0", got.Lines[0])
	}
}

func TestHandleToolsCall_DetectLines_UniformFile(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 64, 48, color.RGBA{200, 50, 10, 255})

	var got LinesResult
	decodeResult(t, callTool(t, s, "frame_detect_lines", map[string]interface{}{
		"path": path,
	}), &got)

	if got.Count != 0 || got.Serialized != "" {
		t.Errorf("uniform image: got %d lines %q, want none", got.Count, got.Serialized)
	}
	if got.Lines == nil {
		t.Error("lines should be an empty list, not null")
	}
}

func TestHandleToolsCall_DetectLines_Cropped(t *testing.T) {
	s := newTestServer(t)

	// Cropping 50 columns off the left moves the edge from x=99 to x=49.
	var got LinesResult
	decodeResult(t, callTool(t, s, "frame_detect_lines", map[string]interface{}{
		"data_base64": stepFrame(200, 200, 100),
		"width":       200,
		"height":      200,
		"crop":        map[string]interface{}{"x1": 50, "y1": 0, "x2": 200, "y2": 200},
	}), &got)

	if got.Width != 150 || got.Height != 200 {
		t.Errorf("size: got %dx%d, want 150x200", got.Width, got.Height)
	}
	if got.Serialized != "49,0;" {
		t.Errorf("serialized: got %q, want %q", got.Serialized, "49,0;")
	}
}

func TestHandleToolsCall_Brightness(t *testing.T) {
	s := newTestServer(t)

	pix := make([]byte, 100)
	for i := range pix {
		pix[i] = 128
	}

	var got struct {
		Mean   float64  `json:"mean"`
		StdDev *float64 `json:"std_dev"`
	}
	decodeResult(t, callTool(t, s, "frame_brightness", map[string]interface{}{
		"data_base64": base64.StdEncoding.EncodeToString(pix),
		"width":       10,
		"height":      10,
	}), &got)

	if got.Mean != 128 {
		t.Errorf("mean: got %v, want 128", got.Mean)
	}
	if got.StdDev == nil || *got.StdDev != 0 {
		t.Errorf("std_dev: got %v, want 0", got.StdDev)
	}
}

func TestHandleToolsCall_BrightnessFromFile(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 20, 20, color.White)

	var got struct {
		Mean float64 `json:"mean"`
	}
	decodeResult(t, callTool(t, s, "frame_brightness", map[string]interface{}{"path": path}), &got)

	if got.Mean != 255 {
		t.Errorf("mean: got %v, want 255", got.Mean)
	}
}

func TestHandleToolsCall_EdgeDetect(t *testing.T) {
	s := newTestServer(t)

	var got struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
		EdgePixels  int    `json:"edge_pixels"`
	}
	decodeResult(t, callTool(t, s, "frame_edge_detect", map[string]interface{}{
		"data_base64": stepFrame(200, 200, 100),
		"width":       200,
		"height":      200,
	}), &got)

	if got.Width != 200 || got.Height != 200 || got.MimeType != "image/png" {
		t.Errorf("image: got %dx%d %s", got.Width, got.Height, got.MimeType)
	}
	if got.EdgePixels != 200 {
		t.Errorf("edge_pixels: got %d, want 200", got.EdgePixels)
	}
	if _, err := base64.StdEncoding.DecodeString(got.ImageBase64); err != nil {
		t.Errorf("image_base64 is not valid base64: %v", err)
	}
}

func TestHandleToolsCall_OverlayLines(t *testing.T) {
	s := newTestServer(t)

	var got struct {
		Width    int `json:"width"`
		Height   int `json:"height"`
		Count    int `json:"count"`
		Segments []struct {
			From struct{ X, Y float64 } `json:"from"`
		} `json:"segments"`
	}
	decodeResult(t, callTool(t, s, "frame_overlay_lines", map[string]interface{}{
		"data_base64": stepFrame(40, 30, 20),
		"width":       40,
		"height":      30,
		"lines":       "10,0;",
		"transform": map[string]interface{}{
			"crop_width":  40,
			"crop_height": 30,
			"view_width":  80,
			"view_height": 60,
		},
	}), &got)

	if got.Width != 80 || got.Height != 60 {
		t.Errorf("size: got %dx%d, want 80x60", got.Width, got.Height)
	}
	if got.Count != 1 || len(got.Segments) != 1 {
		t.Fatalf("count: got %d, want 1", got.Count)
	}
	if got.Segments[0].From.X != 20 {
		t.Errorf("projected x: got %v, want 20", got.Segments[0].From.X)
	}
}

func TestHandleToolsCall_OverlayDetects(t *testing.T) {
	s := newTestServer(t)

	var got struct {
		Width int `json:"width"`
		Count int `json:"count"`
	}
	decodeResult(t, callTool(t, s, "frame_overlay_lines", map[string]interface{}{
		"data_base64": stepFrame(200, 200, 100),
		"width":       200,
		"height":      200,
	}), &got)

	if got.Width != 200 || got.Count != 1 {
		t.Errorf("got width %d count %d, want 200 and 1", got.Width, got.Count)
	}
}

func TestHandleToolsCall_ParseLines(t *testing.T) {
	s := newTestServer(t)

	var got ParsedLinesResult
	decodeResult(t, callTool(t, s, "frame_parse_lines", map[string]interface{}{
		"lines": "12.5,1.5708;bad;-40,3.12414;",
	}), &got)

	if got.Count != 2 || len(got.Lines) != 2 {
		t.Fatalf("count: got %d, want 2", got.Count)
	}
	if got.Lines[0].Rho != 12.5 || got.Lines[1].Rho != -40 {
		t.Errorf("lines: got %+v", got.Lines)
	}
}

func TestHandleFrameCache(t *testing.T) {
	s := newTestServer(t)
	pathA := createTestImageFile(t, 10, 10, color.Black)
	pathB := createTestImageFile(t, 10, 10, color.White)

	for _, p := range []string{pathA, pathB} {
		resp := callTool(t, s, "frame_brightness", map[string]interface{}{"path": p})
		if resp.Error != nil {
			t.Fatalf("frame_brightness %s: %+v", p, resp.Error)
		}
	}

	var got CacheResult
	decodeResult(t, callTool(t, s, "frame_cache", map[string]interface{}{}), &got)
	if got.Action != "stats" || got.Cached != 2 {
		t.Errorf("stats: got %+v, want 2 cached", got)
	}

	decodeResult(t, callTool(t, s, "frame_cache", map[string]interface{}{"action": "evict", "path": pathA}), &got)
	if got.Cached != 1 {
		t.Errorf("after evict: got %d cached, want 1", got.Cached)
	}

	// Evicting an unknown path is not an error.
	decodeResult(t, callTool(t, s, "frame_cache", map[string]interface{}{"action": "evict", "path": "/nope.png"}), &got)
	if got.Cached != 1 {
		t.Errorf("after unknown evict: got %d cached, want 1", got.Cached)
	}

	decodeResult(t, callTool(t, s, "frame_cache", map[string]interface{}{"action": "clear"}), &got)
	if got.Cached != 0 {
		t.Errorf("after clear: got %d cached, want 0", got.Cached)
	}

	for _, args := range []map[string]interface{}{
		{"action": "evict"},
		{"action": "flush"},
	} {
		if resp := callTool(t, s, "frame_cache", args); resp.Error == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 10, 10, color.Black)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"unknown tool", "nonexistent_tool", map[string]interface{}{}},
		{"no frame", "frame_detect_lines", map[string]interface{}{}},
		{"missing file", "frame_brightness", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"both inputs", "frame_brightness", map[string]interface{}{"path": path, "data_base64": "AAAA", "width": 1, "height": 3}},
		{"short buffer", "frame_brightness", map[string]interface{}{"data_base64": "AAAA", "width": 10, "height": 10}},
		{"zero size", "frame_detect_lines", map[string]interface{}{"data_base64": "AAAA", "width": 0, "height": 3}},
		{"bad base64", "frame_brightness", map[string]interface{}{"data_base64": "%%%", "width": 1, "height": 1}},
		{"crop outside", "frame_brightness", map[string]interface{}{
			"path": path,
			"crop": map[string]interface{}{"x1": 0, "y1": 0, "x2": 20, "y2": 5},
		}},
		{"bad color", "frame_overlay_lines", map[string]interface{}{"path": path, "lines": "", "line_color": "red"}},
		{"bad transform", "frame_overlay_lines", map[string]interface{}{
			"path":      path,
			"lines":     "",
			"transform": map[string]interface{}{"crop_width": 10},
		}},
		{"huge view", "frame_overlay_lines", map[string]interface{}{
			"path":  path,
			"lines": "",
			"transform": map[string]interface{}{
				"crop_width": 10, "crop_height": 10,
				"view_width": 1e12, "view_height": 1e12,
				"frame_width": 10, "frame_height": 10,
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("expected error response")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("got %+v, want -32602", resp.Error)
	}
}
