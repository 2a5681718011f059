package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/watermark-mcp/internal/imaging"
	"github.com/ironsheep/watermark-mcp/internal/ocr"
	"github.com/ironsheep/watermark-mcp/internal/session"
	"github.com/ironsheep/watermark-mcp/internal/watermark"
)

// Defaults applied to watermark_apply when arguments are omitted.
const (
	DefaultAnchor  = watermark.Center
	DefaultColor   = "white"
	DefaultOpacity = 1.0

	DefaultZoom      = 2.0
	DefaultGridColor = "red"
	gridLineAlpha    = 128
)

// ErrNoWatermark is returned by tools that inspect the last watermark
// before one has been applied.
var ErrNoWatermark = errors.New("no watermark applied yet")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "watermark_load", "watermark_apply").
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
// A failed tool never changes the session it was called on.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed",
			zap.String("tool", params.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug("tool done",
		zap.String("tool", params.Name),
		zap.Duration("elapsed", time.Since(start)))

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
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Looks up the session
//  4. Calls the session/imaging/ocr function
//  5. Stores the next session state and returns the result
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Session
	case "watermark_load":
		return s.handleLoad(args)
	case "watermark_status":
		return s.handleStatus(args)
	case "watermark_close":
		return s.handleClose(args)

	// Placement
	case "watermark_set_position":
		return s.handleSetPosition(args)
	case "watermark_resolve_position":
		return s.handleResolvePosition(args)

	// Drawing
	case "watermark_apply":
		return s.handleApply(args)
	case "watermark_reset":
		return s.handleReset(args)

	// Inspection
	case "watermark_preview":
		return s.handlePreview(args)
	case "watermark_zoom":
		return s.handleZoom(args)
	case "watermark_grid":
		return s.handleGrid(args)
	case "watermark_sample_color":
		return s.handleSampleColor(args)
	case "watermark_diff":
		return s.handleDiff(args)
	case "watermark_verify":
		return s.handleVerify(args)

	// Export
	case "watermark_save":
		return s.handleSave(args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Result types ===

// PointResult is a pixel coordinate.
type PointResult struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SizeResult is a width and height in pixels.
type SizeResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RectResult is a pixel rectangle; (x1,y1) inclusive, (x2,y2) exclusive.
type RectResult struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func pointResult(p image.Point) PointResult { return PointResult{X: p.X, Y: p.Y} }

func rectResult(r image.Rectangle) RectResult {
	return RectResult{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// StatusResult describes a session.
type StatusResult struct {
	SessionID    string       `json:"session_id"`
	State        string       `json:"state"`
	Source       string       `json:"source,omitempty"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Position     *PointResult `json:"position,omitempty"`
	AppliedCount int          `json:"applied_count"`
	LastText     string       `json:"last_text,omitempty"`
	LastRegion   *RectResult  `json:"last_region,omitempty"`
	Font         string       `json:"font"`
}

// LoadResult is returned by watermark_load.
type LoadResult struct {
	SessionID string             `json:"session_id"`
	State     string             `json:"state"`
	Image     *imaging.ImageInfo `json:"image"`
}

// ApplyResult is returned by watermark_apply.
type ApplyResult struct {
	SessionID    string      `json:"session_id"`
	State        string      `json:"state"`
	Placement    string      `json:"placement"`
	Position     PointResult `json:"position"`
	TextBox      SizeResult  `json:"text_box"`
	Region       RectResult  `json:"region"`
	Alpha        uint8       `json:"alpha"`
	Color        string      `json:"color"`
	FontSize     int         `json:"font_size"`
	AppliedCount int         `json:"applied_count"`
}

// ResolveResult is returned by watermark_resolve_position.
type ResolveResult struct {
	Anchor    string      `json:"anchor"`
	ImageSize SizeResult  `json:"image_size"`
	TextBox   SizeResult  `json:"text_box"`
	Position  PointResult `json:"position"`
}

// ResetResult is returned by watermark_reset.
type ResetResult struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Identical bool   `json:"identical_to_original"`
}

// SaveResult is returned by watermark_save.
type SaveResult struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// CloseResult is returned by watermark_close.
type CloseResult struct {
	SessionID string `json:"session_id"`
	Closed    bool   `json:"closed"`
}

// === Helpers ===

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) lookup(id string) (session.Session, error) {
	if id == "" {
		return session.Session{}, errors.New("session_id is required")
	}
	return s.sessions.Get(id)
}

// update runs fn on the stored session and stores the result atomically.
func (s *Server) update(id string, fn func(session.Session) (session.Session, error)) (session.Session, error) {
	if id == "" {
		return session.Session{}, errors.New("session_id is required")
	}
	return s.sessions.Update(id, fn)
}

func (s *Server) status(id string, sess session.Session) *StatusResult {
	res := &StatusResult{
		SessionID:    id,
		State:        sess.State().String(),
		Source:       sess.Source(),
		AppliedCount: sess.AppliedCount(),
		LastText:     sess.LastText(),
		Font:         s.fonts.Source(),
	}
	if img := sess.Current(); img != nil {
		res.Width, res.Height = img.Bounds().Dx(), img.Bounds().Dy()
	}
	if p, ok := sess.Position(); ok {
		pr := pointResult(p)
		res.Position = &pr
	}
	if sess.AppliedCount() > 0 {
		rr := rectResult(sess.LastRegion())
		res.LastRegion = &rr
	}
	return res
}

// === Session Handlers ===

type loadArgs struct {
	Path      string `json:"path"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	img, info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}

	var sess session.Session
	id := a.SessionID
	if id == "" {
		sess = sess.Upload(img, a.Path)
		id = s.sessions.Create(sess)
	} else {
		sess, err = s.sessions.Update(id, func(prev session.Session) (session.Session, error) {
			return prev.Upload(img, a.Path), nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("image loaded",
		zap.String("session", id),
		zap.String("path", a.Path),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height))

	return &LoadResult{SessionID: id, State: sess.State().String(), Image: info}, nil
}

func (s *Server) handleStatus(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.lookup(a.SessionID)
	if err != nil {
		return nil, err
	}
	return s.status(a.SessionID, sess), nil
}

func (s *Server) handleClose(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.lookup(a.SessionID); err != nil {
		return nil, err
	}
	s.sessions.Delete(a.SessionID)
	return &CloseResult{SessionID: a.SessionID, Closed: true}, nil
}

// === Placement Handlers ===

type setPositionArgs struct {
	SessionID string `json:"session_id"`
	X         *int   `json:"x"`
	Y         *int   `json:"y"`
}

func (s *Server) handleSetPosition(args json.RawMessage) (interface{}, error) {
	var a setPositionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.X == nil || a.Y == nil {
		return nil, errors.New("x and y are required")
	}
	next, err := s.update(a.SessionID, func(sess session.Session) (session.Session, error) {
		return sess.SetPosition(image.Pt(*a.X, *a.Y))
	})
	if err != nil {
		return nil, err
	}
	return s.status(a.SessionID, next), nil
}

type resolvePositionArgs struct {
	SessionID   string `json:"session_id"`
	Anchor      string `json:"anchor"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`
	Text        string `json:"text"`
	FontSize    int    `json:"font_size"`
	TextWidth   int    `json:"text_width"`
	TextHeight  int    `json:"text_height"`
}

func (s *Server) handleResolvePosition(args json.RawMessage) (interface{}, error) {
	var a resolvePositionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	anchor, err := s.parseAnchor(a.Anchor)
	if err != nil {
		return nil, err
	}

	imageSize := image.Pt(a.ImageWidth, a.ImageHeight)
	if a.SessionID != "" && (a.ImageWidth == 0 || a.ImageHeight == 0) {
		sess, err := s.lookup(a.SessionID)
		if err != nil {
			return nil, err
		}
		if sess.Current() == nil {
			return nil, watermark.ErrNoBaseImage
		}
		imageSize = sess.Current().Bounds().Size()
	}
	if imageSize.X <= 0 || imageSize.Y <= 0 {
		return nil, errors.New("image size is required: pass session_id or image_width and image_height")
	}

	textBox := image.Pt(a.TextWidth, a.TextHeight)
	if textBox.X == 0 && textBox.Y == 0 {
		if a.Text == "" {
			return nil, errors.New("text box is required: pass text or text_width and text_height")
		}
		size := a.FontSize
		if size == 0 {
			size = s.cfg.DefaultFontSize
		}
		if textBox, err = s.fonts.TextBox(a.Text, size); err != nil {
			return nil, err
		}
	}

	pos, err := watermark.ResolveAnchorPosition(imageSize, textBox, anchor)
	if err != nil {
		return nil, err
	}
	return &ResolveResult{
		Anchor:    anchor.String(),
		ImageSize: SizeResult{Width: imageSize.X, Height: imageSize.Y},
		TextBox:   SizeResult{Width: textBox.X, Height: textBox.Y},
		Position:  pointResult(pos),
	}, nil
}

func (s *Server) parseAnchor(name string) (watermark.Anchor, error) {
	if name == "" {
		return DefaultAnchor, nil
	}
	return watermark.ParseAnchor(name)
}

// === Drawing Handlers ===

type applyArgs struct {
	SessionID string   `json:"session_id"`
	Text      string   `json:"text"`
	Mode      string   `json:"mode"`
	Anchor    string   `json:"anchor"`
	X         *int     `json:"x"`
	Y         *int     `json:"y"`
	Color     string   `json:"color"`
	Opacity   *float64 `json:"opacity"`
	FontSize  int      `json:"font_size"`
}

func (s *Server) handleApply(args json.RawMessage) (interface{}, error) {
	var a applyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = DefaultColor
	}
	if a.FontSize == 0 {
		a.FontSize = s.cfg.DefaultFontSize
	}
	opacity := DefaultOpacity
	if a.Opacity != nil {
		opacity = *a.Opacity
	}

	c, err := imaging.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}
	spec := watermark.Spec{Text: a.Text, Color: c, Opacity: opacity, FontSize: a.FontSize}

	var apply func(session.Session) (session.Session, error)
	var placement string
	switch {
	case a.Mode == "click":
		apply = func(sess session.Session) (session.Session, error) {
			return sess.ApplyAtClick(spec, s.fonts)
		}
		placement = "click"
	case a.Mode != "" && a.Mode != "anchor":
		return nil, fmt.Errorf("unknown mode %q: want anchor or click", a.Mode)
	case a.X != nil || a.Y != nil:
		if a.X == nil || a.Y == nil {
			return nil, errors.New("x and y must be given together")
		}
		p := watermark.AtPoint(image.Pt(*a.X, *a.Y))
		apply = func(sess session.Session) (session.Session, error) {
			return sess.Apply(spec, p, s.fonts)
		}
		placement = p.String()
	default:
		anchor, err := s.parseAnchor(a.Anchor)
		if err != nil {
			return nil, err
		}
		apply = func(sess session.Session) (session.Session, error) {
			return sess.Apply(spec, watermark.AtAnchor(anchor), s.fonts)
		}
		placement = anchor.String()
	}

	next, err := s.update(a.SessionID, apply)
	if err != nil {
		return nil, err
	}

	region := next.LastRegion()
	s.log.Debug("watermark applied",
		zap.String("session", a.SessionID),
		zap.String("placement", placement),
		zap.Stringer("region", region))

	return &ApplyResult{
		SessionID:    a.SessionID,
		State:        next.State().String(),
		Placement:    placement,
		Position:     pointResult(region.Min),
		TextBox:      SizeResult{Width: region.Dx(), Height: region.Dy()},
		Region:       rectResult(region),
		Alpha:        watermark.AlphaFromOpacity(opacity),
		Color:        fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		FontSize:     a.FontSize,
		AppliedCount: next.AppliedCount(),
	}, nil
}

func (s *Server) handleReset(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	next, err := s.update(a.SessionID, func(sess session.Session) (session.Session, error) {
		return sess.Reset()
	})
	if err != nil {
		return nil, err
	}
	diff, err := imaging.Diff(next.Original(), next.Current(), 0)
	if err != nil {
		return nil, err
	}
	return &ResetResult{SessionID: a.SessionID, State: next.State().String(), Identical: diff.Identical}, nil
}

// === Inspection Handlers ===

type previewArgs struct {
	SessionID string `json:"session_id"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxWidth == 0 {
		a.MaxWidth = s.cfg.PreviewSize
	}
	if a.MaxHeight == 0 {
		a.MaxHeight = s.cfg.PreviewSize
	}
	img, err := s.currentImage(a.SessionID)
	if err != nil {
		return nil, err
	}
	return imaging.Preview(img, a.MaxWidth, a.MaxHeight)
}

type zoomArgs struct {
	SessionID string  `json:"session_id"`
	X1        *int    `json:"x1"`
	Y1        *int    `json:"y1"`
	X2        *int    `json:"x2"`
	Y2        *int    `json:"y2"`
	Scale     float64 `json:"scale"`
}

func (s *Server) handleZoom(args json.RawMessage) (interface{}, error) {
	var a zoomArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = DefaultZoom
	}
	sess, err := s.lookup(a.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Current() == nil {
		return nil, watermark.ErrNoBaseImage
	}

	var region image.Rectangle
	switch {
	case a.X1 != nil && a.Y1 != nil && a.X2 != nil && a.Y2 != nil:
		region = image.Rect(*a.X1, *a.Y1, *a.X2, *a.Y2)
	case a.X1 != nil || a.Y1 != nil || a.X2 != nil || a.Y2 != nil:
		return nil, errors.New("x1, y1, x2 and y2 must be given together")
	case sess.AppliedCount() > 0:
		region = sess.LastRegion().Inset(-ocr.Padding)
	default:
		return nil, ErrNoWatermark
	}
	return imaging.Zoom(sess.Current(), region, a.Scale)
}

type gridArgs struct {
	SessionID       string `json:"session_id"`
	Spacing         int    `json:"spacing"`
	ShowCoordinates *bool  `json:"show_coordinates"`
	Color           string `json:"color"`
}

func (s *Server) handleGrid(args json.RawMessage) (interface{}, error) {
	var a gridArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Spacing == 0 {
		a.Spacing = imaging.DefaultGridSpacing
	}
	if a.Color == "" {
		a.Color = DefaultGridColor
	}
	show := true
	if a.ShowCoordinates != nil {
		show = *a.ShowCoordinates
	}

	c, err := imaging.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}
	img, err := s.currentImage(a.SessionID)
	if err != nil {
		return nil, err
	}
	return imaging.GridOverlay(img, a.Spacing, show, color.NRGBA{R: c.R, G: c.G, B: c.B, A: gridLineAlpha})
}

type sampleColorArgs struct {
	SessionID string `json:"session_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.currentImage(a.SessionID)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

func (s *Server) handleDiff(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.lookup(a.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Original() == nil {
		return nil, watermark.ErrNoBaseImage
	}
	return imaging.Diff(sess.Original(), sess.Current(), imaging.DefaultDiffThreshold)
}

type verifyArgs struct {
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

func (s *Server) handleVerify(args json.RawMessage) (interface{}, error) {
	var a verifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.cfg.OCRLanguage
	}
	sess, err := s.lookup(a.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.AppliedCount() == 0 {
		return nil, ErrNoWatermark
	}
	return ocr.VerifyText(sess.Current(), sess.LastRegion(), sess.LastText(), a.Language)
}

// === Export Handlers ===

type saveArgs struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
}

func (s *Server) handleSave(args json.RawMessage) (interface{}, error) {
	var a saveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.currentImage(a.SessionID)
	if err != nil {
		return nil, err
	}

	path, err := imaging.Save(img, a.Path)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(path)
	s.log.Info("image saved", zap.String("session", a.SessionID), zap.String("path", path))

	return &SaveResult{
		SessionID: a.SessionID,
		Path:      path,
		Format:    imaging.FormatFromPath(path),
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
	}, nil
}

func (s *Server) currentImage(id string) (image.Image, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if sess.Current() == nil {
		return nil, watermark.ErrNoBaseImage
	}
	return sess.Current(), nil
}
