// Package watermark burns semi-transparent text into a copy of an image.
//
// The package has three parts:
//
//   - Placement: ResolveAnchorPosition turns a named Anchor (Top Left,
//     Center, Bottom Right) plus the image size and text box size into the
//     pixel at which the text box's top-left corner is drawn. A Placement
//     may instead carry an explicit point, such as a pointer click.
//   - Fonts: the font resource. A configured font file is used when set;
//     otherwise the bundled Go Regular font. A configured file that cannot
//     be loaded is reported as ErrFontUnavailable.
//   - Compositing: Composite renders the text onto a transparent layer and
//     blends it over a copy of the base image with the "over" operator.
//
// # Coordinates
//
// Positions are relative to the top-left corner of the image, X to the
// right and Y down. The text box is the line box of the rendered string:
// advance width by ascent plus descent. Positions are not clamped, so a
// box larger than the image can start at negative coordinates; the part
// outside the image is clipped when drawn.
//
// # Opacity
//
// Opacity is a real number in (0, 1]. It maps to an 8-bit alpha with
// round(opacity*255): 1.0 is 255 (opaque) and 0.1 is 26.
//
// # Immutability
//
// Composite never modifies its input. Applying twice means compositing
// onto the previous output, so watermarks accumulate until the caller
// goes back to the original image.
package watermark
