package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session id returned by watermark_load",
	}
}

func integerProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "watermark_load",
			Description: "Load an image file to watermark. Without session_id a new session is created; with one, that session starts over on the new image. Returns the session id and image metadata.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (JPEG, PNG, GIF, BMP, TIFF, WebP)",
					},
					"session_id": sessionIDProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "watermark_status",
			Description: "Report the state of a session: source file, size, recorded click and number of watermarks applied.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "watermark_close",
			Description: "Discard a session and free its images.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
				},
				"required": []string{"session_id"},
			},
		},

		// Placement
		{
			Name:        "watermark_set_position",
			Description: "Record a click position in image pixels. A later watermark_apply with mode \"click\" puts the top-left of the text there.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"x":          integerProperty("X coordinate (0 = left edge)"),
					"y":          integerProperty("Y coordinate (0 = top edge)"),
				},
				"required": []string{"session_id", "x", "y"},
			},
		},
		{
			Name:        "watermark_resolve_position",
			Description: "Compute where a text box lands for an anchor without drawing anything. Sizes come from the session image and the measured text, or from explicit values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id":   sessionIDProperty(),
					"anchor":       anchorProperty(),
					"image_width":  integerProperty("Image width; overrides the session image"),
					"image_height": integerProperty("Image height; overrides the session image"),
					"text":         map[string]interface{}{"type": "string", "description": "Text to measure"},
					"font_size":    integerProperty("Font size in pixels for measuring text"),
					"text_width":   integerProperty("Text box width; overrides measuring"),
					"text_height":  integerProperty("Text box height; overrides measuring"),
				},
			},
		},

		// Drawing
		{
			Name:        "watermark_apply",
			Description: "Draw text onto the session image. Watermarks accumulate until watermark_reset. Place it at a named anchor, at the recorded click (mode \"click\"), or at explicit x/y.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Watermark text (must not be empty)",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"anchor", "click"},
						"description": "Placement mode (default: anchor)",
					},
					"anchor": anchorProperty(),
					"x":      integerProperty("Explicit X of the text box top-left; needs y"),
					"y":      integerProperty("Explicit Y of the text box top-left; needs x"),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Text color: #RRGGBB, #RGB, R,G,B or a name like white (default: white)",
					},
					"opacity": map[string]interface{}{
						"type":        "number",
						"description": "Opacity in (0, 1] (default: 1.0)",
					},
					"font_size": integerProperty("Font size in pixels (default: server setting, 20)"),
				},
				"required": []string{"session_id", "text"},
			},
		},
		{
			Name:        "watermark_reset",
			Description: "Discard every applied watermark and the recorded click, restoring the image as loaded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
				},
				"required": []string{"session_id"},
			},
		},

		// Inspection
		{
			Name:        "watermark_preview",
			Description: "Return the current image fitted into a box (default 400x400) as base64 PNG. Never upscales.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"max_width":  integerProperty("Maximum width (default: 400)"),
					"max_height": integerProperty("Maximum height (default: 400)"),
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "watermark_zoom",
			Description: "Crop and enlarge a region of the current image. Defaults to the last watermark's text box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"x1":         integerProperty("Left edge (inclusive)"),
					"y1":         integerProperty("Top edge (inclusive)"),
					"x2":         integerProperty("Right edge (exclusive)"),
					"y2":         integerProperty("Bottom edge (exclusive)"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Zoom factor (default: 2, max: 8)",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "watermark_grid",
			Description: "Overlay a labelled coordinate grid on the current image, to help choose a click position.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"spacing":    integerProperty("Grid spacing in pixels (default: 50)"),
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label intersections (default: true)",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color (default: red, drawn at 50% opacity)",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "watermark_sample_color",
			Description: "Get the color of one pixel of the current image as hex, RGB, RGBA and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"x":          integerProperty("X coordinate"),
					"y":          integerProperty("Y coordinate"),
				},
				"required": []string{"session_id", "x", "y"},
			},
		},
		{
			Name:        "watermark_diff",
			Description: "Compare the current image with the original: number of changed pixels and the rectangle that contains them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "watermark_verify",
			Description: "Run OCR on the last watermark's text box and report whether the text can be read back. Requires Tesseract.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (default: server setting, eng)",
					},
				},
				"required": []string{"session_id"},
			},
		},

		// Export
		{
			Name:        "watermark_save",
			Description: "Write the current image to a file. The format follows the extension (png, jpg, bmp, tiff); a path without one gets .png.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": sessionIDProperty(),
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute output path",
					},
				},
				"required": []string{"session_id", "path"},
			},
		},
	}
}

func anchorProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"Top Left", "Center", "Bottom Right"},
		"description": "Named position (default: Center). top-left and bottom-right are also accepted.",
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
