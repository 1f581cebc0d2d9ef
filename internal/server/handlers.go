package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/frame-bridge/internal/bridge"
	"github.com/ironsheep/frame-bridge/internal/detection"
	"github.com/ironsheep/frame-bridge/internal/frame"
	"github.com/ironsheep/frame-bridge/internal/imaging"
	"github.com/ironsheep/frame-bridge/internal/overlay"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "frame_detect_lines").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// Every call is logged with a generated call_id.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.logger.WithFields(logrus.Fields{
		"call_id": uuid.NewString(),
		"tool":    params.Name,
	})
	start := time.Now()

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("Tool call failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.WithField("elapsed", time.Since(start).String()).Debug("Tool call finished")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each frame tool handler:
//  1. Unmarshals arguments from JSON
//  2. Resolves the frame from a path or a raw buffer, then crops it
//  3. Calls the bridge or overlay
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "frame_version":
		return s.handleFrameVersion()
	case "frame_detect_lines":
		return s.handleFrameDetectLines(args)
	case "frame_brightness":
		return s.handleFrameBrightness(args)
	case "frame_edge_detect":
		return s.handleFrameEdgeDetect(args)
	case "frame_overlay_lines":
		return s.handleFrameOverlayLines(args)
	case "frame_parse_lines":
		return s.handleFrameParseLines(args)
	case "frame_cache":
		return s.handleFrameCache(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as the
// zero value.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Frame Input ===

type cropArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type frameArgs struct {
	Path       string    `json:"path"`
	DataBase64 string    `json:"data_base64"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Stride     int       `json:"stride"`
	Crop       *cropArgs `json:"crop"`
}

var errNoFrame = errors.New("either path or data_base64 is required")

// loadFrame resolves the frame named by a, applying the crop if given.
func (s *Server) loadFrame(a frameArgs) (*frame.Frame, error) {
	var (
		f   *frame.Frame
		err error
	)
	switch {
	case a.Path != "" && a.DataBase64 != "":
		return nil, errors.New("path and data_base64 are mutually exclusive")
	case a.Path != "":
		f, err = s.cache.Load(a.Path)
	case a.DataBase64 != "":
		f, err = imaging.DecodeRawFrame(a.DataBase64, a.Width, a.Height, a.Stride)
	default:
		return nil, errNoFrame
	}
	if err != nil {
		return nil, err
	}

	if a.Crop == nil {
		return f, nil
	}
	rect := image.Rectangle{
		Min: image.Pt(a.Crop.X1, a.Crop.Y1),
		Max: image.Pt(a.Crop.X2, a.Crop.Y2),
	}
	return imaging.CropFrame(f, rect)
}

// === Handlers ===

// VersionResult reports the native library in use.
type VersionResult struct {
	Greeting  string   `json:"greeting"`
	Backend   string   `json:"backend"`
	Version   string   `json:"version"`
	Available []string `json:"available_backends"`
}

func (s *Server) handleFrameVersion() (interface{}, error) {
	be := s.bridge.Backend()
	return &VersionResult{
		Greeting:  s.bridge.Greeting(),
		Backend:   be.Name(),
		Version:   be.Version(),
		Available: detection.Available(),
	}, nil
}

// LinesResult contains detected lines.
type LinesResult struct {
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Count      int              `json:"count"`
	Lines      []detection.Line `json:"lines"`
	Serialized string           `json:"serialized"`
}

func (s *Server) handleFrameDetectLines(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := s.loadFrame(a)
	if err != nil {
		return nil, err
	}

	lines, err := s.bridge.DetectLines(f)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []detection.Line{}
	}

	return &LinesResult{
		Width:      f.Width,
		Height:     f.Height,
		Count:      len(lines),
		Lines:      lines,
		Serialized: bridge.FormatLines(lines),
	}, nil
}

func (s *Server) handleFrameBrightness(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := s.loadFrame(a)
	if err != nil {
		return nil, err
	}
	return s.bridge.BrightnessStats(f)
}

// EdgeResult is an edge map image.
type EdgeResult struct {
	*imaging.EncodedImage
	EdgePixels int `json:"edge_pixels"`
}

func (s *Server) handleFrameEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := s.loadFrame(a)
	if err != nil {
		return nil, err
	}

	edges, err := s.bridge.EdgeMap(f)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodeFrame(edges)
	if err != nil {
		return nil, err
	}

	count := 0
	for y := 0; y < edges.Height; y++ {
		for x := 0; x < edges.Width; x++ {
			if edges.At(x, y) != 0 {
				count++
			}
		}
	}

	return &EdgeResult{EncodedImage: enc, EdgePixels: count}, nil
}

type overlayArgs struct {
	frameArgs
	Lines       *string            `json:"lines"`
	Transform   *overlay.Transform `json:"transform"`
	LineColor   string             `json:"line_color"`
	LineWidth   int                `json:"line_width"`
	MarkCenters *bool              `json:"mark_centers"`
}

// OverlayResult is a rendered preview with the projected lines.
type OverlayResult struct {
	*imaging.EncodedImage
	Count    int               `json:"count"`
	Segments []overlay.Segment `json:"segments"`
}

func (s *Server) handleFrameOverlayLines(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	f, err := s.loadFrame(a.frameArgs)
	if err != nil {
		return nil, err
	}

	var lines []detection.Line
	if a.Lines != nil {
		lines = bridge.ParseLines(*a.Lines)
	} else if lines, err = s.bridge.DetectLines(f); err != nil {
		return nil, err
	}

	t := overlay.Identity(f.Width, f.Height)
	if a.Transform != nil {
		t = *a.Transform
		if t.FrameWidth == 0 && t.FrameHeight == 0 {
			t.FrameWidth, t.FrameHeight = float64(f.Width), float64(f.Height)
		}
	}

	style := overlay.DefaultStyle()
	if a.LineColor != "" {
		style.LineColor = a.LineColor
	}
	if a.LineWidth > 0 {
		style.LineWidth = a.LineWidth
	}
	if a.MarkCenters != nil {
		style.MarkCenters = *a.MarkCenters
	}

	img, err := overlay.Render(f, lines, t, style)
	if err != nil {
		return nil, err
	}
	enc, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		EncodedImage: enc,
		Count:        len(lines),
		Segments:     t.ProjectLines(lines),
	}, nil
}

type parseLinesArgs struct {
	Lines string `json:"lines"`
}

// ParsedLinesResult contains lines recovered from a serialized string.
type ParsedLinesResult struct {
	Count int              `json:"count"`
	Lines []detection.Line `json:"lines"`
}

func (s *Server) handleFrameParseLines(args json.RawMessage) (interface{}, error) {
	var a parseLinesArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	lines := bridge.ParseLines(a.Lines)
	return &ParsedLinesResult{Count: len(lines), Lines: lines}, nil
}

// CacheResult reports the frame cache after an action.
type CacheResult struct {
	Action string `json:"action"`
	Cached int    `json:"cached"`
}

type cacheArgs struct {
	Action string `json:"action"`
	Path   string `json:"path"`
}

func (s *Server) handleFrameCache(args json.RawMessage) (interface{}, error) {
	var a cacheArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	switch a.Action {
	case "", "stats":
		a.Action = "stats"
	case "evict":
		if a.Path == "" {
			return nil, errors.New("evict requires path")
		}
		s.cache.Evict(a.Path)
	case "clear":
		s.cache.Clear()
	default:
		return nil, fmt.Errorf("unknown cache action %q (want stats, evict or clear)", a.Action)
	}

	s.logger.WithFields(logrus.Fields{
		"action": a.Action,
		"path":   a.Path,
	}).Debug("Frame cache")

	return &CacheResult{Action: a.Action, Cached: s.cache.Len()}, nil
}
