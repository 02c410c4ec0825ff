// Package render draws a board frame onto any Surface. The drawing calls
// mirror the fogleman/gg context so a *gg.Context is a Surface as is.
package render

import (
	"image/color"

	"github.com/tacticsboard/board/internal/geo"
	"github.com/tacticsboard/board/pkg/core"
)

// Surface is the drawing API the renderer needs.
type Surface interface {
	Clear()
	Push()
	Pop()
	Scale(sx, sy float64)
	Translate(tx, ty float64)
	SetColor(c color.Color)
	SetLineWidth(w float64)
	SetDash(dashes ...float64)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Stroke()
	Fill()
	DrawCircle(x, y, r float64)
	DrawRectangle(x, y, w, h float64)
	DrawStringAnchored(s string, x, y, ax, ay float64)
}

// Drawing constants in world units.
const (
	MarkerRadius  = 20.0
	LineWidth     = 3.0
	PathWidth     = 2.0
	FieldStroke   = 2.0
	labelOffset   = 25.0
	triangleLabel = 8.0
)

// PathDash is the dash pattern of recorded paths.
var PathDash = []float64{6, 4}

var (
	backgroundColor = color.RGBA{R: 0x26, G: 0x32, B: 0x38, A: 0xff}
	pitchColor      = color.RGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}
	chalkColor      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	darkText        = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff}
)

// Frame is everything one render pass needs to know about the board.
type Frame struct {
	Markers []core.Marker
	Lines   []core.Line

	// Draft is the line being drawn, nil when no line is in progress.
	Draft *core.Line
	// Recording is the path being captured, drawn dashed in RecordingColor.
	Recording      []core.Point
	RecordingColor core.Color
}

// Render draws f through view v. Every transform pushed here is popped
// before returning, so repeated calls do not accumulate.
func Render(s Surface, f Frame, v geo.View) {
	s.SetColor(backgroundColor)
	s.Clear()

	zoom := v.Zoom
	s.Push()
	defer s.Pop()
	s.Scale(zoom, zoom)
	s.Translate(v.Offset.X/zoom, v.Offset.Y/zoom)

	drawField(s)

	for _, l := range f.Lines {
		strokePolyline(s, l.Points, RGBA(l.Color), LineWidth, nil)
	}
	if f.Draft != nil {
		strokePolyline(s, f.Draft.Points, RGBA(f.Draft.Color), LineWidth, nil)
	}

	for _, m := range f.Markers {
		if m.HasPath() {
			strokePolyline(s, m.Path, RGBA(m.Color), PathWidth, PathDash)
		}
		drawMarker(s, m)
	}
	strokePolyline(s, f.Recording, RGBA(f.RecordingColor), PathWidth, PathDash)
}

// RGBA converts a hex board color into an image color.
func RGBA(c core.Color) color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func strokePolyline(s Surface, points []core.Point, c color.Color, width float64, dash []float64) {
	if len(points) < 2 {
		return
	}
	s.SetColor(c)
	s.SetLineWidth(width)
	s.SetDash(dash...)
	s.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		s.LineTo(p.X, p.Y)
	}
	s.Stroke()
	if len(dash) > 0 {
		s.SetDash()
	}
}

func drawField(s Surface) {
	w, h := float64(core.FieldWidth), float64(core.FieldHeight)

	s.SetColor(pitchColor)
	s.DrawRectangle(0, 0, w, h)
	s.Fill()

	s.SetColor(chalkColor)
	s.SetLineWidth(FieldStroke)
	s.DrawRectangle(0, 0, w, h)
	s.Stroke()

	s.MoveTo(w/2, 0)
	s.LineTo(w/2, h)
	s.Stroke()

	s.DrawCircle(w/2, h/2, 50)
	s.Stroke()

	boxW, boxH := 90.0, 200.0
	s.DrawRectangle(0, (h-boxH)/2, boxW, boxH)
	s.Stroke()
	s.DrawRectangle(w-boxW, (h-boxH)/2, boxW, boxH)
	s.Stroke()
}

func drawMarker(s Surface, m core.Marker) {
	x, y := m.Position.X, m.Position.Y
	fill := RGBA(m.Color)

	switch m.Shape {
	case core.ShapeTriangle:
		s.SetColor(fill)
		s.MoveTo(x, y-MarkerRadius)
		s.LineTo(x+MarkerRadius, y+MarkerRadius)
		s.LineTo(x-MarkerRadius, y+MarkerRadius)
		s.ClosePath()
		s.Fill()
		s.SetColor(labelColor(fill))
		s.DrawStringAnchored(m.Label, x, y+triangleLabel, 0.5, 0.5)
	case core.ShapeArrow:
		s.SetColor(fill)
		s.MoveTo(x-MarkerRadius, y-MarkerRadius*0.75)
		s.LineTo(x+MarkerRadius, y)
		s.LineTo(x-MarkerRadius, y+MarkerRadius*0.75)
		s.LineTo(x-MarkerRadius/2, y)
		s.ClosePath()
		s.Fill()
		s.SetColor(chalkColor)
		s.DrawStringAnchored(m.Label, x, y-labelOffset, 0.5, 0.5)
	case core.ShapeText:
		s.SetColor(fill)
		s.DrawStringAnchored(m.Label, x, y, 0.5, 0.5)
	default:
		// circle and default share the disc glyph
		s.SetColor(fill)
		s.DrawCircle(x, y, MarkerRadius)
		s.Fill()
		s.SetColor(labelColor(fill))
		s.DrawStringAnchored(m.Label, x, y, 0.5, 0.5)
	}
}

// labelColor keeps labels readable on light swatches.
func labelColor(fill color.RGBA) color.Color {
	luma := 0.299*float64(fill.R) + 0.587*float64(fill.G) + 0.114*float64(fill.B)
	if luma > 160 {
		return darkText
	}
	return chalkColor
}
