package session

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/watermark-mcp/internal/watermark"
)

// State is the lifecycle stage of a Session.
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateApplied
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateApplied:
		return "applied"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session holds everything one user is working on: the image as uploaded,
// the image with all watermarks applied so far and the last recorded click.
//
// Session is a value. Every operation returns a new Session and leaves the
// receiver as it was, so a failed operation never leaves a half-updated
// state behind. Images are shared between copies but never written to.
type Session struct {
	source   string
	original image.Image
	current  image.Image

	position    image.Point
	hasPosition bool

	lastText   string
	lastRegion image.Rectangle
	applied    int
}

// Upload starts over with img as the original.
func (s Session) Upload(img image.Image, source string) Session {
	if img == nil {
		return Session{}
	}
	return Session{
		source:   source,
		original: img,
		current:  img,
	}
}

// SetPosition records a pointer click in image coordinates.
func (s Session) SetPosition(p image.Point) (Session, error) {
	if s.original == nil {
		return s, watermark.ErrNoBaseImage
	}
	s.position = p
	s.hasPosition = true
	return s, nil
}

// Apply draws spec onto the current image at placement. Watermarks
// accumulate until Reset.
func (s Session) Apply(spec watermark.Spec, placement watermark.Placement, fonts *watermark.Fonts) (Session, error) {
	if s.current == nil {
		return s, watermark.ErrNoBaseImage
	}

	out, region, err := watermark.Apply(s.current, spec, placement, fonts)
	if err != nil {
		return s, err
	}

	s.current = out
	s.lastText = spec.Text
	s.lastRegion = region
	s.applied++
	return s, nil
}

// ApplyAtClick applies spec with its top-left at the recorded click.
func (s Session) ApplyAtClick(spec watermark.Spec, fonts *watermark.Fonts) (Session, error) {
	if s.current == nil {
		return s, watermark.ErrNoBaseImage
	}
	if !s.hasPosition {
		return s, watermark.ErrNoPositionSet
	}
	return s.Apply(spec, watermark.AtPoint(s.position), fonts)
}

// Reset discards every applied watermark and the recorded click. The new
// current image is an independent copy of the original.
func (s Session) Reset() (Session, error) {
	if s.original == nil {
		return s, watermark.ErrNoBaseImage
	}
	return Session{
		source:   s.source,
		original: s.original,
		current:  imaging.Clone(s.original),
	}, nil
}

// State reports the lifecycle stage.
func (s Session) State() State {
	switch {
	case s.original == nil:
		return StateEmpty
	case s.applied > 0:
		return StateApplied
	default:
		return StateLoaded
	}
}

// Source is the path or name the original image came from.
func (s Session) Source() string { return s.source }

// Original returns the image as uploaded.
func (s Session) Original() image.Image { return s.original }

// Current returns the image with every watermark applied since the last
// upload or reset.
func (s Session) Current() image.Image { return s.current }

// AppliedCount is the number of watermarks in Current.
func (s Session) AppliedCount() int { return s.applied }

// LastText returns the text of the most recent watermark.
func (s Session) LastText() string { return s.lastText }

// LastRegion returns the text box of the most recent watermark. It may lie
// partly outside the image.
func (s Session) LastRegion() image.Rectangle { return s.lastRegion }

// Position returns the recorded click and whether there is one.
func (s Session) Position() (image.Point, bool) {
	return s.position, s.hasPosition
}
