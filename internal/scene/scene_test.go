package scene

import (
	"sync"
	"testing"

	"github.com/tacticsboard/board/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMarker_UniqueIDs(t *testing.T) {
	s := New()
	seen := make(map[int64]bool)
	for i := 0; i < 100; i++ {
		m := s.AddMarker(core.Pt(float64(i), 0), core.DefaultColor, "M", core.ShapeCircle)
		assert.False(t, seen[m.ID], "id %d reused", m.ID)
		seen[m.ID] = true
	}
	markers, _ := s.Len()
	assert.Equal(t, 100, markers)
}

func TestAddMarker_IDsNotReusedAfterRemove(t *testing.T) {
	s := New()
	a := s.AddMarker(core.Pt(0, 0), core.DefaultColor, "A", core.ShapeCircle)
	require.True(t, s.RemoveMarker(a.ID))
	b := s.AddMarker(core.Pt(0, 0), core.DefaultColor, "B", core.ShapeCircle)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAddLine_Threshold(t *testing.T) {
	tests := []struct {
		name   string
		points []core.Point
		added  bool
	}{
		{"empty", nil, false},
		{"one point", []core.Point{core.Pt(1, 1)}, false},
		{"two points", []core.Point{core.Pt(1, 1), core.Pt(2, 2)}, true},
		{"three points", []core.Point{core.Pt(1, 1), core.Pt(2, 2), core.Pt(3, 1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, ok := s.AddLine(tt.points, core.DefaultColor)
			assert.Equal(t, tt.added, ok)
			_, lines := s.Len()
			if tt.added {
				assert.Equal(t, 1, lines)
			} else {
				assert.Zero(t, lines)
			}
		})
	}
}

func TestAddLine_CopiesPoints(t *testing.T) {
	s := New()
	pts := []core.Point{core.Pt(1, 1), core.Pt(2, 2)}
	_, ok := s.AddLine(pts, core.DefaultColor)
	require.True(t, ok)
	pts[0] = core.Pt(99, 99)
	assert.Equal(t, core.Pt(1, 1), s.Lines()[0].Points[0])
}

func TestMoveMarker(t *testing.T) {
	s := New()
	m := s.AddMarker(core.Pt(10, 10), "#1e88e5", "C1", core.ShapeArrow)

	assert.True(t, s.MoveMarker(m.ID, core.Pt(50, 60)))
	got, ok := s.Marker(m.ID)
	require.True(t, ok)
	assert.Equal(t, core.Pt(50, 60), got.Position)
	assert.Equal(t, "C1", got.Label)
	assert.Equal(t, core.ShapeArrow, got.Shape)
	assert.Equal(t, core.Color("#1e88e5"), got.Color)

	assert.False(t, s.MoveMarker(999, core.Pt(1, 1)))
}

func TestSetMarkerPath(t *testing.T) {
	s := New()
	m := s.AddMarker(core.Pt(0, 0), core.DefaultColor, "M", core.ShapeCircle)

	assert.False(t, s.SetMarkerPath(m.ID, []core.Point{core.Pt(1, 1)}))
	got, _ := s.Marker(m.ID)
	assert.Nil(t, got.Path, "single point path must not be stored")

	assert.False(t, s.SetMarkerPath(42, []core.Point{core.Pt(1, 1), core.Pt(2, 2)}))

	path := []core.Point{core.Pt(1, 1), core.Pt(2, 2), core.Pt(3, 3)}
	assert.True(t, s.SetMarkerPath(m.ID, path))
	got, _ = s.Marker(m.ID)
	assert.Equal(t, path, got.Path)
}

func TestFindMarkerNear_FirstMatchWins(t *testing.T) {
	s := New()
	a := s.AddMarker(core.Pt(100, 100), core.DefaultColor, "A", core.ShapeCircle)
	b := s.AddMarker(core.Pt(105, 100), core.DefaultColor, "B", core.ShapeCircle)

	// the query point is closer to B, but A was inserted first
	got, ok := s.FindMarkerNear(core.Pt(104, 100), HitRadius)
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)
	assert.NotEqual(t, b.ID, got.ID)
}

func TestFindMarkerNear_StrictRadius(t *testing.T) {
	s := New()
	s.AddMarker(core.Pt(0, 0), core.DefaultColor, "A", core.ShapeCircle)

	_, ok := s.FindMarkerNear(core.Pt(20, 0), HitRadius)
	assert.False(t, ok, "distance equal to the radius is a miss")

	_, ok = s.FindMarkerNear(core.Pt(19.99, 0), HitRadius)
	assert.True(t, ok)
}

func TestRemoveLine(t *testing.T) {
	s := New()
	l, _ := s.AddLine([]core.Point{core.Pt(0, 0), core.Pt(1, 1)}, core.DefaultColor)
	assert.True(t, s.RemoveLine(l.ID))
	assert.False(t, s.RemoveLine(l.ID))
}

func TestSetMarkerColor(t *testing.T) {
	s := New()
	m := s.AddMarker(core.Pt(0, 0), core.Palette[0], "M", core.ShapeCircle)
	assert.True(t, s.SetMarkerColor(m.ID, core.Palette[3]))
	got, _ := s.Marker(m.ID)
	assert.Equal(t, core.Palette[3], got.Color)
	assert.False(t, s.SetMarkerColor(77, core.Palette[1]))
}

func TestSnapshotReplace(t *testing.T) {
	src := New()
	m := src.AddMarker(core.Pt(100, 50), core.Palette[1], "C1", core.ShapeTriangle)
	src.SetMarkerPath(m.ID, []core.Point{core.Pt(1, 2), core.Pt(3, 4)})
	src.AddLine([]core.Point{core.Pt(10, 10), core.Pt(20, 10)}, core.Palette[2])
	doc := src.Snapshot()

	dst := New()
	dst.AddMarker(core.Pt(1, 1), core.Palette[0], "old", core.ShapeCircle)
	dst.AddMarker(core.Pt(2, 2), core.Palette[0], "old", core.ShapeCircle)
	dst.Replace(doc)

	assert.Equal(t, src.Markers(), dst.Markers())
	assert.Equal(t, src.Lines(), dst.Lines())

	// new ids continue past both the loaded and the previously issued ids
	next := dst.AddMarker(core.Pt(0, 0), core.Palette[0], "M", core.ShapeCircle)
	assert.Equal(t, int64(3), next.ID)
	nextLine, _ := dst.AddLine([]core.Point{core.Pt(0, 0), core.Pt(1, 0)}, core.Palette[0])
	assert.Equal(t, int64(2), nextLine.ID)
}

func TestClear(t *testing.T) {
	s := New()
	s.AddMarker(core.Pt(0, 0), core.DefaultColor, "M", core.ShapeCircle)
	s.AddLine([]core.Point{core.Pt(0, 0), core.Pt(1, 1)}, core.DefaultColor)
	s.Clear()
	markers, lines := s.Len()
	assert.Zero(t, markers)
	assert.Zero(t, lines)
}

func TestConcurrentMoves(t *testing.T) {
	s := New()
	a := s.AddMarker(core.Pt(0, 0), core.DefaultColor, "A", core.ShapeCircle)
	b := s.AddMarker(core.Pt(0, 0), core.DefaultColor, "B", core.ShapeCircle)

	var wg sync.WaitGroup
	for _, id := range []int64{a.ID, b.ID} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s.MoveMarker(id, core.Pt(float64(id), float64(i)))
				s.Markers()
			}
		}(id)
	}
	wg.Wait()

	gotA, _ := s.Marker(a.ID)
	gotB, _ := s.Marker(b.ID)
	assert.Equal(t, core.Pt(1, 499), gotA.Position)
	assert.Equal(t, core.Pt(2, 499), gotB.Position)
}
