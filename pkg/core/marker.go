package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is the fixed logical size of the drawing surface in world units.
const (
	FieldWidth  = 900
	FieldHeight = 360
)

// Shape is the rendering variant of a marker. It is chosen at creation time.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeTriangle Shape = "triangle"
	ShapeArrow    Shape = "arrow"
	ShapeText     Shape = "text"
	ShapeDefault  Shape = "default"
)

// Shapes lists the selectable shapes in selector order.
var Shapes = []Shape{ShapeCircle, ShapeTriangle, ShapeArrow, ShapeText, ShapeDefault}

// Valid reports whether s is one of the known shapes.
func (s Shape) Valid() bool {
	for _, known := range Shapes {
		if s == known {
			return true
		}
	}
	return false
}

// DefaultLabel is the label used when the user supplies none.
func (s Shape) DefaultLabel() string {
	if s == ShapeText {
		return "T"
	}
	return "M"
}

// ParseShape converts a shape name (case-insensitive) into a Shape.
func ParseShape(name string) (Shape, error) {
	s := Shape(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown shape: %q", name)
	}
	return s, nil
}

// Color is a hex color string such as "#e53935".
type Color string

// Palette is the fixed set of swatches offered by the color selector.
var Palette = []Color{
	"#e53935", // red
	"#1e88e5", // blue
	"#fdd835", // yellow
	"#212121", // black
	"#fafafa", // white
}

// DefaultColor is the swatch selected when the editor starts.
var DefaultColor = Palette[0]

// InPalette reports whether c is one of the palette swatches.
func (c Color) InPalette() bool {
	for _, p := range Palette {
		if strings.EqualFold(string(c), string(p)) {
			return true
		}
	}
	return false
}

// RGB decodes the hex color. Malformed input yields black.
func (c Color) RGB() (r, g, b uint8) {
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// Marker is a placed, labeled point entity with an optional recorded path.
type Marker struct {
	ID       int64
	Position Point
	Color    Color
	Label    string
	Shape    Shape
	// Path is nil when the marker never recorded. When set it has at least 2 points.
	Path []Point
}

// HasPath reports whether the marker carries a playable recording.
func (m Marker) HasPath() bool {
	return len(m.Path) >= 2
}

// Clone returns a deep copy of the marker.
func (m Marker) Clone() Marker {
	m.Path = ClonePoints(m.Path)
	return m
}

// Line is a committed freehand polyline.
type Line struct {
	ID     int64
	Points []Point
	Color  Color
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	l.Points = ClonePoints(l.Points)
	return l
}
