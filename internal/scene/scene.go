// Package scene holds the in-memory diagram: markers and lines in insertion
// order. It is safe for concurrent use by the editor and playback goroutines.
package scene

import (
	"sync"

	"github.com/tacticsboard/board/pkg/core"
)

// HitRadius is the hit-test threshold in world units, matching the drawn marker radius.
const HitRadius = 20.0

// Scene is the set of markers and lines on the board.
type Scene struct {
	mu      sync.RWMutex
	markers []core.Marker
	lines   []core.Line

	nextMarkerID int64
	nextLineID   int64
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{nextMarkerID: 1, nextLineID: 1}
}

// AddMarker appends a marker with a fresh id. It always succeeds.
func (s *Scene) AddMarker(position core.Point, color core.Color, label string, shape core.Shape) core.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := core.Marker{
		ID:       s.nextMarkerID,
		Position: position,
		Color:    color,
		Label:    label,
		Shape:    shape,
	}
	s.nextMarkerID++
	s.markers = append(s.markers, m)
	return m
}

// AddLine appends a line with a fresh id. Fewer than 2 points is a no-op.
func (s *Scene) AddLine(points []core.Point, color core.Color) (core.Line, bool) {
	if len(points) < 2 {
		return core.Line{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := core.Line{
		ID:     s.nextLineID,
		Points: core.ClonePoints(points),
		Color:  color,
	}
	s.nextLineID++
	s.lines = append(s.lines, l)
	return l.Clone(), true
}

// MoveMarker replaces the position of marker id. Unknown ids are ignored.
func (s *Scene) MoveMarker(id int64, position core.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.markerIndex(id)
	if i < 0 {
		return false
	}
	s.markers[i].Position = position
	return true
}

// SetMarkerPath stores a recorded path. Unknown ids and paths shorter than
// 2 points are ignored.
func (s *Scene) SetMarkerPath(id int64, path []core.Point) bool {
	if len(path) < 2 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.markerIndex(id)
	if i < 0 {
		return false
	}
	s.markers[i].Path = core.ClonePoints(path)
	return true
}

// SetMarkerColor recolors marker id.
func (s *Scene) SetMarkerColor(id int64, color core.Color) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.markerIndex(id)
	if i < 0 {
		return false
	}
	s.markers[i].Color = color
	return true
}

// RemoveMarker deletes marker id. Its id is not reused.
func (s *Scene) RemoveMarker(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.markerIndex(id)
	if i < 0 {
		return false
	}
	s.markers = append(s.markers[:i], s.markers[i+1:]...)
	return true
}

// RemoveLine deletes line id. Its id is not reused.
func (s *Scene) RemoveLine(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true
		}
	}
	return false
}

// FindMarkerNear returns the first marker, in insertion order, strictly
// closer than radius to p. Overlapping markers resolve to the earliest one,
// not the closest.
func (s *Scene) FindMarkerNear(p core.Point, radius float64) (core.Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.markers {
		if m.Position.Distance(p) < radius {
			return m.Clone(), true
		}
	}
	return core.Marker{}, false
}

// Marker returns a copy of marker id.
func (s *Scene) Marker(id int64) (core.Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.markerIndex(id)
	if i < 0 {
		return core.Marker{}, false
	}
	return s.markers[i].Clone(), true
}

// Markers returns copies of all markers in insertion order.
func (s *Scene) Markers() []core.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Marker, len(s.markers))
	for i, m := range s.markers {
		out[i] = m.Clone()
	}
	return out
}

// Lines returns copies of all lines in insertion order.
func (s *Scene) Lines() []core.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Line, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.Clone()
	}
	return out
}

// Len returns the number of markers and lines.
func (s *Scene) Len() (markers, lines int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers), len(s.lines)
}

// Snapshot returns the persisted form of the scene.
func (s *Scene) Snapshot() core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.NewDocument(s.markers, s.lines)
}

// Replace discards the current content and installs doc wholesale. The id
// counters continue past the highest loaded id. doc must already be valid.
func (s *Scene) Replace(doc core.Document) {
	markers := doc.MarkerList()
	lines := doc.LineList()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers = markers
	s.lines = lines
	for _, m := range markers {
		if m.ID >= s.nextMarkerID {
			s.nextMarkerID = m.ID + 1
		}
	}
	for _, l := range lines {
		if l.ID >= s.nextLineID {
			s.nextLineID = l.ID + 1
		}
	}
}

// Clear removes every marker and line. Ids keep counting up.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = nil
	s.lines = nil
}

func (s *Scene) markerIndex(id int64) int {
	for i := range s.markers {
		if s.markers[i].ID == id {
			return i
		}
	}
	return -1
}
