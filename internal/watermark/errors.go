package watermark

import "errors"

// Errors returned by the compositor. All of them are local to a single
// request; callers match them with errors.Is.
var (
	// ErrNoBaseImage is returned when there is no image to draw on.
	ErrNoBaseImage = errors.New("no base image loaded")

	// ErrNoPositionSet is returned in click-to-place mode before a click
	// has been recorded.
	ErrNoPositionSet = errors.New("no watermark position set")

	// ErrInvalidAnchor is returned for anchor names outside Top Left,
	// Center and Bottom Right.
	ErrInvalidAnchor = errors.New("invalid anchor")

	// ErrFontUnavailable is returned when the configured font file cannot
	// be read or parsed.
	ErrFontUnavailable = errors.New("font unavailable")

	// ErrEmptyText is returned when the watermark text is empty.
	ErrEmptyText = errors.New("watermark text is empty")

	ErrInvalidOpacity  = errors.New("opacity must be in (0, 1]")
	ErrInvalidFontSize = errors.New("font size must be positive")
)
