package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// frameProperties returns the schema properties shared by every tool that
// takes a frame: either a file path or a raw luminance buffer, plus an
// optional crop.
func frameProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to an image file (PNG, JPEG or GIF). Converted to grayscale. Use either path or data_base64.",
		},
		"data_base64": map[string]interface{}{
			"type":        "string",
			"description": "Raw 8-bit grayscale pixels, row-major, base64 encoded. Requires width and height.",
		},
		"width": map[string]interface{}{
			"type":        "integer",
			"description": "Frame width in pixels (with data_base64)",
		},
		"height": map[string]interface{}{
			"type":        "integer",
			"description": "Frame height in pixels (with data_base64)",
		},
		"stride": map[string]interface{}{
			"type":        "integer",
			"description": "Bytes per row (with data_base64). Default: width",
		},
		"crop": map[string]interface{}{
			"type":        "object",
			"description": "Optional region to analyze; results use its coordinates. (x1,y1) inclusive, (x2,y2) exclusive.",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
	}
}

// withProperties adds extra properties to the shared frame properties.
func withProperties(extra map[string]interface{}) map[string]interface{} {
	props := frameProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "frame_version",
			Description: "Report the greeting banner, the active vision backend and its version, and the backends compiled into this build.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "frame_detect_lines",
			Description: "Run Canny edge detection followed by the standard Hough transform on a grayscale frame. Returns lines in (rho, theta) form, strongest first, and the serialized \"rho,theta;\" string.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": frameProperties(),
			},
		},
		{
			Name:        "frame_brightness",
			Description: "Compute the mean intensity of a grayscale frame (0-255) and, when the backend supports it, the standard deviation.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": frameProperties(),
			},
		},
		{
			Name:        "frame_edge_detect",
			Description: "Return the Canny edge map of a frame as base64 PNG, with the number of edge pixels.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": frameProperties(),
			},
		},
		{
			Name:        "frame_overlay_lines",
			Description: "Draw lines over a frame as a camera preview would show them: cropped, scaled to the view and optionally rotated a quarter turn. Lines are detected unless given. Returns base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"lines": map[string]interface{}{
						"type":        "string",
						"description": "Serialized lines (\"rho,theta;...\"). Default: detect lines in the frame",
					},
					"transform": map[string]interface{}{
						"type":        "object",
						"description": "Preview geometry. Default: the whole frame, unscaled",
						"properties": map[string]interface{}{
							"crop_left":    map[string]interface{}{"type": "number"},
							"crop_top":     map[string]interface{}{"type": "number"},
							"crop_width":   map[string]interface{}{"type": "number"},
							"crop_height":  map[string]interface{}{"type": "number"},
							"view_width":   map[string]interface{}{"type": "number"},
							"view_height":  map[string]interface{}{"type": "number"},
							"frame_width":  map[string]interface{}{"type": "number"},
							"frame_height": map[string]interface{}{"type": "number"},
							"rotated":      map[string]interface{}{"type": "boolean"},
						},
					},
					"line_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color for lines. Default: #FF0000",
					},
					"line_width": map[string]interface{}{
						"type":        "integer",
						"description": "Line width in view pixels. Default: 4",
					},
					"mark_centers": map[string]interface{}{
						"type":        "boolean",
						"description": "Mark the frame and view centers. Default: true",
					},
				}),
			},
		},
		{
			Name:        "frame_parse_lines",
			Description: "Parse a serialized \"rho,theta;\" line string. Malformed segments are skipped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lines": map[string]interface{}{
						"type":        "string",
						"description": "Serialized lines",
					},
				},
				"required": []string{"lines"},
			},
		},
		{
			Name:        "frame_cache",
			Description: "Inspect or drop frames cached from image files. Use evict after a file changes on disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"action": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"stats", "evict", "clear"},
						"description": "stats (default), evict one path, or clear all",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Image path to evict",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
