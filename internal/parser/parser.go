// Package parser converts raw command arguments into board values.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tacticsboard/board/internal/editor"
	"github.com/tacticsboard/board/internal/geo"
	"github.com/tacticsboard/board/internal/util"
	"github.com/tacticsboard/board/pkg/core"
)

// ErrInvalidArgs is wrapped by every argument error.
var ErrInvalidArgs = errors.New("invalid arguments")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgs, fmt.Sprintf(format, args...))
}

// Clean strips surrounding whitespace and quotes from every argument and
// unescapes doubled quotes, in place.
func Clean(args []string) []string {
	for i, v := range args {
		args[i] = util.CleanArg(v)
	}
	return args
}

// Require checks that at least n arguments are present.
func Require(args []string, n int) error {
	if len(args) < n {
		return invalid("expected %d argument(s), got %d", n, len(args))
	}
	return nil
}

// parseIntFromFloat parses a string that may be an integer ("32") or float ("32.00") into int64.
// Hosts that only know floating point numbers send ids as "3.0".
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// ParseID parses a positive marker, line or request id.
func ParseID(arg string) (int64, error) {
	id, err := parseIntFromFloat(strings.TrimSpace(arg))
	if err != nil {
		return 0, invalid("id %q: %v", arg, err)
	}
	if id <= 0 {
		return 0, invalid("id must be positive, got %d", id)
	}
	return id, nil
}

// ParseFloat parses a finite number such as a wheel delta.
func ParseFloat(arg string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return 0, invalid("number %q: %v", arg, err)
	}
	if !core.Pt(f, 0).IsFinite() {
		return 0, invalid("number %q is not finite", arg)
	}
	return f, nil
}

// ParsePoint parses an "x,y" screen point.
func ParsePoint(arg string) (core.Point, error) {
	p, err := geo.PointFromString(arg)
	if err != nil {
		return core.Point{}, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return p, nil
}

// ParsePolyline parses a "[[x,y],...]" polyline of at least 2 points.
func ParsePolyline(arg string) ([]core.Point, error) {
	points, err := geo.ParsePolyline(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return points, nil
}

// ParseTool parses a tool name.
func ParseTool(arg string) (editor.Tool, error) {
	t, err := editor.ParseTool(arg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return t, nil
}

// ParseShape parses a marker shape name.
func ParseShape(arg string) (core.Shape, error) {
	s, err := core.ParseShape(arg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return s, nil
}

// ParseColor accepts a palette index ("0".."4") or a palette hex value with
// or without the leading '#'.
func ParseColor(arg string) (core.Color, error) {
	arg = strings.TrimSpace(arg)
	if i, err := strconv.Atoi(arg); err == nil {
		if i < 0 || i >= len(core.Palette) {
			return "", invalid("palette index %d out of range", i)
		}
		return core.Palette[i], nil
	}
	c := core.Color(strings.ToLower(arg))
	if !strings.HasPrefix(string(c), "#") {
		c = "#" + c
	}
	if !c.InPalette() {
		return "", invalid("color %q is not in the palette", arg)
	}
	return c, nil
}
