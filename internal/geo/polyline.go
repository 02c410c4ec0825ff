package geo

import (
	"encoding/json"
	"fmt"

	"github.com/tacticsboard/board/pkg/core"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ParsePolyline parses a JSON array of coordinates into world points.
// Input format: "[[x1,y1],[x2,y2],...]"
func ParsePolyline(input string) ([]core.Point, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse polyline JSON: %w", err)
	}

	if len(coords) < 2 {
		return nil, fmt.Errorf("polyline must have at least 2 points, got %d", len(coords))
	}

	points := make([]core.Point, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		points[i] = core.Point{X: coord[0], Y: coord[1]}
	}

	return points, nil
}

// LineString converts points into a simplefeatures line string.
// Fewer than 2 points yield an empty line string.
func LineString(points []core.Point) geom.LineString {
	if len(points) < 2 {
		return geom.LineString{}
	}
	flatCoords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flatCoords = append(flatCoords, p.X, p.Y)
	}
	return geom.NewLineString(geom.NewSequence(flatCoords, geom.DimXY))
}

// PathLength returns the length of the polyline through points in world units.
func PathLength(points []core.Point) float64 {
	return LineString(points).Length()
}
