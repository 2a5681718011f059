// Package server implements the MCP (Model Context Protocol) server for text
// watermarking.
//
// Each tool call is one user intent: load an image, click a position, apply
// a watermark, reset, preview, save. The server keeps one session.Session per
// session id and replaces it after every successful call; a failed call
// leaves the session exactly as it was.
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
// Session:
//   - watermark_load: Load an image into a new or existing session
//   - watermark_status: Describe a session
//   - watermark_close: Drop a session
//
// Placement:
//   - watermark_set_position: Record a click
//   - watermark_resolve_position: Anchor arithmetic without drawing
//
// Drawing:
//   - watermark_apply: Draw text at an anchor, the click or explicit x/y
//   - watermark_reset: Restore the loaded image
//
// Inspection:
//   - watermark_preview: Fitted thumbnail (400x400 by default)
//   - watermark_zoom: Enlarged crop, by default of the last watermark
//   - watermark_grid: Coordinate grid for choosing a click
//   - watermark_sample_color: Pixel color
//   - watermark_diff: What changed since loading
//   - watermark_verify: OCR the last watermark
//
// Export:
//   - watermark_save: Write the current image; .png when no extension
//
// # Defaults
//
// watermark_apply uses anchor Center, color white, opacity 1.0 and the
// configured font size (20 unless WATERMARK_DEFAULT_FONT_SIZE is set).
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC errors with code -32000 and the error
// text in data. Invalid tools/call params use -32602, unparsable lines
// -32700 and unknown methods -32601.
//
// # Logging
//
// Logs go to the zap logger passed in Options, never to stdout.
package server
