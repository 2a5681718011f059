// Package imaging provides the image source and sink used by the watermark
// tools: decoding, saving, previews and inspection helpers.
//
// Everything here works with standard Go image.Image values and a
// coordinate system where (0,0) is the top-left corner, X increases
// rightward and Y increases downward. Functions that take coordinates treat
// them as relative to the image's top-left corner, whatever its Bounds().Min.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left), Max is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Other functions are
// stateless and never modify their input images, so they can be called
// concurrently.
//
// # Color Representation
//
// Colors are returned in multiple formats for flexibility:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGB: 8-bit components (0-255)
//   - RGBA: 8-bit components with alpha (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Output
//
// Save picks the encoder from the file extension and defaults to PNG, which
// is lossless. Preview, Zoom and GridOverlay return base64 PNG for display
// by MCP clients. Diff compares two images pixel by pixel, which is how a
// reset is checked against the original.
package imaging
