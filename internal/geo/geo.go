// Package geo maps between screen space and world space and provides small
// geometry helpers for polylines.
package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tacticsboard/board/pkg/core"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PointFromString parses a string in the format "x,y" into a point.
func PointFromString(coords string) (core.Point, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return core.Point{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Point{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Point{}, ErrInvalidCoordinates
	}
	p := core.Point{X: x, Y: y}
	if !p.IsFinite() {
		return core.Point{}, ErrInvalidCoordinates
	}
	return p, nil
}
