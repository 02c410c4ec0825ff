package editor

import (
	"github.com/tacticsboard/board/internal/geo"
	"github.com/tacticsboard/board/pkg/core"
)

// Status summarises the editor for hosts.
type Status struct {
	Tool       Tool       `json:"tool"`
	Color      core.Color `json:"color"`
	Shape      core.Shape `json:"shape"`
	State      string     `json:"state"`
	Zoom       float64    `json:"zoom"`
	Offset     core.Point `json:"offset"`
	Markers    int        `json:"markers"`
	Lines      int        `json:"lines"`
	Pending    int        `json:"pending"`
	Recording  int64      `json:"recording,omitempty"`
	Playing    []int64    `json:"playing"`
	InkLength  float64    `json:"inkLength"`
	PathLength float64    `json:"pathLength"`
}

// Status returns a snapshot of the selectors, the view and the scene size.
// InkLength sums the committed lines and PathLength the recorded paths, in
// world units.
func (e *Editor) Status() Status {
	e.mu.Lock()
	st := Status{
		Tool:    e.tool,
		Color:   e.color,
		Shape:   e.shape,
		State:   e.state.String(),
		Zoom:    e.view.Zoom,
		Offset:  e.view.Offset,
		Pending: len(e.pending),
	}
	if e.state == StateRecordingPath {
		st.Recording = e.recordingID
	}
	e.mu.Unlock()

	markers := e.scene.Markers()
	lines := e.scene.Lines()
	st.Markers = len(markers)
	st.Lines = len(lines)
	st.Playing = []int64{}
	for _, m := range markers {
		if m.HasPath() {
			st.PathLength += geo.PathLength(m.Path)
		}
		if e.Playing(m.ID) {
			st.Playing = append(st.Playing, m.ID)
		}
	}
	for _, l := range lines {
		st.InkLength += geo.PathLength(l.Points)
	}
	return st
}
