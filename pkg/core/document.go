package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedDocument is returned when persisted board data cannot be applied.
var ErrMalformedDocument = errors.New("malformed board document")

// Document is the persisted form of a scene. Field names are part of the
// storage format and must not change.
type Document struct {
	Markers []MarkerRecord `json:"markers"`
	Lines   []LineRecord   `json:"lines"`
}

// MarkerRecord is the persisted form of a Marker.
type MarkerRecord struct {
	ID    int64   `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color Color   `json:"color"`
	Label string  `json:"label"`
	Type  Shape   `json:"type"`
	Path  []Point `json:"path,omitempty"`
}

// LineRecord is the persisted form of a Line.
type LineRecord struct {
	ID     int64   `json:"id"`
	Points []Point `json:"points"`
	Color  Color   `json:"color"`
}

// NewDocument builds a document from markers and lines in their current order.
func NewDocument(markers []Marker, lines []Line) Document {
	doc := Document{
		Markers: make([]MarkerRecord, 0, len(markers)),
		Lines:   make([]LineRecord, 0, len(lines)),
	}
	for _, m := range markers {
		doc.Markers = append(doc.Markers, MarkerRecord{
			ID:    m.ID,
			X:     m.Position.X,
			Y:     m.Position.Y,
			Color: m.Color,
			Label: m.Label,
			Type:  m.Shape,
			Path:  ClonePoints(m.Path),
		})
	}
	for _, l := range lines {
		doc.Lines = append(doc.Lines, LineRecord{
			ID:     l.ID,
			Points: ClonePoints(l.Points),
			Color:  l.Color,
		})
	}
	return doc
}

// MarkerList converts the records back into markers.
func (d Document) MarkerList() []Marker {
	out := make([]Marker, 0, len(d.Markers))
	for _, r := range d.Markers {
		out = append(out, Marker{
			ID:       r.ID,
			Position: Point{X: r.X, Y: r.Y},
			Color:    r.Color,
			Label:    r.Label,
			Shape:    r.Type,
			Path:     ClonePoints(r.Path),
		})
	}
	return out
}

// LineList converts the records back into lines.
func (d Document) LineList() []Line {
	out := make([]Line, 0, len(d.Lines))
	for _, r := range d.Lines {
		out = append(out, Line{
			ID:     r.ID,
			Points: ClonePoints(r.Points),
			Color:  r.Color,
		})
	}
	return out
}

// Validate checks every invariant a scene relies on. It reports the first
// violation found, wrapped in ErrMalformedDocument.
func (d Document) Validate() error {
	seen := make(map[int64]bool, len(d.Markers))
	for i, m := range d.Markers {
		switch {
		case m.ID <= 0:
			return malformed("marker %d: invalid id %d", i, m.ID)
		case seen[m.ID]:
			return malformed("marker %d: duplicate id %d", i, m.ID)
		case !m.Type.Valid():
			return malformed("marker %d: unknown type %q", m.ID, m.Type)
		case m.Color == "":
			return malformed("marker %d: missing color", m.ID)
		case !(Point{X: m.X, Y: m.Y}).IsFinite():
			return malformed("marker %d: non-finite position", m.ID)
		case m.Path != nil && len(m.Path) < 2:
			return malformed("marker %d: path has %d points", m.ID, len(m.Path))
		}
		if !allFinite(m.Path) {
			return malformed("marker %d: non-finite path point", m.ID)
		}
		seen[m.ID] = true
	}

	seen = make(map[int64]bool, len(d.Lines))
	for i, l := range d.Lines {
		switch {
		case l.ID <= 0:
			return malformed("line %d: invalid id %d", i, l.ID)
		case seen[l.ID]:
			return malformed("line %d: duplicate id %d", i, l.ID)
		case l.Color == "":
			return malformed("line %d: missing color", l.ID)
		case len(l.Points) < 2:
			return malformed("line %d: has %d points", l.ID, len(l.Points))
		}
		if !allFinite(l.Points) {
			return malformed("line %d: non-finite point", l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

// MarshalJSON keeps empty collections as [] rather than null.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	if d.Markers == nil {
		d.Markers = []MarkerRecord{}
	}
	if d.Lines == nil {
		d.Lines = []LineRecord{}
	}
	return json.Marshal(plain(d))
}

// DecodeDocument parses and validates persisted board data.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	// "path": [] means the marker never recorded.
	for i := range doc.Markers {
		if doc.Markers[i].Path != nil && len(doc.Markers[i].Path) == 0 {
			doc.Markers[i].Path = nil
		}
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedDocument, fmt.Sprintf(format, args...))
}

func allFinite(points []Point) bool {
	for _, p := range points {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}
