package geo

import "github.com/tacticsboard/board/pkg/core"

// Zoom limits and the step applied per wheel event.
const (
	MinZoom  = 0.5
	MaxZoom  = 2.5
	ZoomStep = 0.1
)

// ToWorld maps a screen point into world space: (screen - offset) / zoom.
func ToWorld(screen core.Point, zoom float64, offset core.Point) core.Point {
	return screen.Sub(offset).Div(zoom)
}

// ToScreen maps a world point into screen space. It is the inverse of ToWorld.
func ToScreen(world core.Point, zoom float64, offset core.Point) core.Point {
	return world.Scale(zoom).Add(offset)
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// View is the current zoom and pan of the board.
type View struct {
	Zoom   float64
	Offset core.Point
}

// DefaultView returns an unzoomed, unpanned view.
func DefaultView() View {
	return View{Zoom: 1}
}

// ToWorld maps a screen point through this view.
func (v View) ToWorld(screen core.Point) core.Point {
	return ToWorld(screen, v.Zoom, v.Offset)
}

// ToScreen maps a world point through this view.
func (v View) ToScreen(world core.Point) core.Point {
	return ToScreen(world, v.Zoom, v.Offset)
}

// ZoomIn steps the zoom up. The offset is left as is, so the view does not
// re-anchor around the pointer.
func (v View) ZoomIn() View {
	v.Zoom = ClampZoom(v.Zoom + ZoomStep)
	return v
}

// ZoomOut steps the zoom down, leaving the offset untouched.
func (v View) ZoomOut() View {
	v.Zoom = ClampZoom(v.Zoom - ZoomStep)
	return v
}

// Wheel applies one wheel event: negative deltas zoom in, positive zoom out.
func (v View) Wheel(deltaY float64) View {
	switch {
	case deltaY < 0:
		return v.ZoomIn()
	case deltaY > 0:
		return v.ZoomOut()
	default:
		return v
	}
}

// PanGesture tracks one pan drag in screen space.
type PanGesture struct {
	start  core.Point
	origin core.Point
}

// BeginPan starts a pan at pointer with the view's current offset.
func BeginPan(pointer core.Point, v View) PanGesture {
	return PanGesture{start: pointer, origin: v.Offset}
}

// Offset returns the offset for the current pointer position:
// pointer - start + offsetAtStart.
func (g PanGesture) Offset(pointer core.Point) core.Point {
	return pointer.Sub(g.start).Add(g.origin)
}
