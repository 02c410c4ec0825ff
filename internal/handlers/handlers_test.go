package handlers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tacticsboard/board/internal/dispatcher"
	"github.com/tacticsboard/board/internal/editor"
	"github.com/tacticsboard/board/internal/parser"
	"github.com/tacticsboard/board/internal/scene"
	"github.com/tacticsboard/board/internal/storage"
	"github.com/tacticsboard/board/internal/storage/memory"
	"github.com/tacticsboard/board/pkg/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type fixture struct {
	d   *dispatcher.Dispatcher
	ed  *editor.Editor
	svc *Service
	dir string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	t.Cleanup(d.Close)

	ed := editor.New(scene.New(), editor.WithStore(storage.NewAdapter(memory.New(), "", nil)))
	dir := t.TempDir()
	svc := NewService(Dependencies{
		Editor:    ed,
		ExportDir: dir,
		Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	svc.RegisterHandlers(d)
	return fixture{d: d, ed: ed, svc: svc, dir: dir}
}

func (f fixture) run(t *testing.T, cmd string, args ...string) any {
	t.Helper()
	result, err := f.d.Dispatch(dispatcher.Event{Command: cmd, Args: args})
	require.NoError(t, err, cmd)
	return result
}

func TestHandlers_Scenario(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "marker", f.run(t, ":TOOL:", "marker"))
	req := f.run(t, ":CLICK:", "100,50")
	markerID := f.run(t, ":LABEL:", "1", `"C1"`)
	assert.Equal(t, int64(1), req)
	assert.Equal(t, int64(1), markerID)

	f.run(t, ":TOOL:", "line")
	assert.Equal(t, "drawing", f.run(t, ":POINTER:DOWN:", "10,10"))
	f.run(t, ":POINTER:MOVE:", "20,10")
	f.run(t, ":POINTER:MOVE:", "20,20")
	assert.Equal(t, "idle", f.run(t, ":POINTER:UP:", "20,20"))

	assert.Equal(t, "ok", f.run(t, ":SAVE:"))
	f.run(t, ":CLEAR:")
	assert.Equal(t, true, f.run(t, ":LOAD:"))

	markers := f.ed.Scene().Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, core.Pt(100, 50), markers[0].Position)
	assert.Equal(t, "C1", markers[0].Label)
	lines := f.ed.Scene().Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, []core.Point{core.Pt(10, 10), core.Pt(20, 10), core.Pt(20, 20)}, lines[0].Points)
}

func TestHandlers_LabelKeepsSeparators(t *testing.T) {
	f := newFixture(t)
	f.run(t, ":CLICK:", "1,1")
	id := f.run(t, ":LABEL:", "1", "A", "B")

	m, ok := f.ed.Scene().Marker(id.(int64))
	require.True(t, ok)
	assert.Equal(t, "A|B", m.Label)
}

func TestHandlers_LabelCancelUsesDefault(t *testing.T) {
	f := newFixture(t)
	f.run(t, ":SHAPE:", "text")
	f.run(t, ":CLICK:", "1,1")
	id := f.run(t, ":LABEL:CANCEL:", "1")

	m, _ := f.ed.Scene().Marker(id.(int64))
	assert.Equal(t, "T", m.Label)
	assert.Equal(t, core.ShapeText, m.Shape)
}

func TestHandlers_DrawAndRecord(t *testing.T) {
	f := newFixture(t)
	f.run(t, ":CLICK:", "50,50")
	f.run(t, ":LABEL:", "1", "R")

	f.run(t, ":TOOL:", "line")
	assert.Equal(t, "idle", f.run(t, ":DRAW:", "[[0,0],[10,0],[10,10]]"))
	require.Len(t, f.ed.Scene().Lines(), 1)

	assert.Equal(t, "recording", f.run(t, ":RECORD:", "1"))
	assert.Equal(t, "idle", f.run(t, ":DRAW:", "[[50,50],[60,50],[70,50]]"))

	m, _ := f.ed.Scene().Marker(1)
	assert.Equal(t, []core.Point{core.Pt(60, 50), core.Pt(70, 50)}, m.Path)
	assert.Len(t, f.ed.Scene().Lines(), 1, "recording consumed the gesture")

	assert.Equal(t, false, f.run(t, ":PLAY:", "1"), "no player configured")
	assert.Equal(t, false, f.run(t, ":STOP:", "1"))
}

func TestHandlers_View(t *testing.T) {
	f := newFixture(t)

	f.run(t, ":PAN:BEGIN:", "100,100")
	assert.Equal(t, core.Pt(10, 20), f.run(t, ":PAN:MOVE:", "110,120"))
	assert.Equal(t, core.Pt(15, 20), f.run(t, ":PAN:END:", "115,120"))

	assert.InDelta(t, 1.1, f.run(t, ":ZOOM:IN:").(float64), 1e-9)
	assert.InDelta(t, 1.0, f.run(t, ":ZOOM:OUT:").(float64), 1e-9)
	assert.InDelta(t, 1.1, f.run(t, ":WHEEL:", "-120").(float64), 1e-9)
}

func TestHandlers_SceneEdits(t *testing.T) {
	f := newFixture(t)
	f.run(t, ":CLICK:", "1,1")
	f.run(t, ":LABEL:", "1", "A")
	f.run(t, ":TOOL:", "line")
	f.run(t, ":DRAW:", "[[0,0],[1,1]]")

	assert.Equal(t, "ok", f.run(t, ":MARKER:COLOR:", "1", "2"))
	m, _ := f.ed.Scene().Marker(1)
	assert.Equal(t, core.Color("#fdd835"), m.Color)

	assert.Equal(t, true, f.run(t, ":LINE:DELETE:", "1"))
	assert.Equal(t, false, f.run(t, ":LINE:DELETE:", "1"))
	assert.Equal(t, true, f.run(t, ":MARKER:DELETE:", "1"))
}

func TestHandlers_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		cmd  string
		args []string
		is   error
	}{
		{"missing point", ":CLICK:", nil, parser.ErrInvalidArgs},
		{"bad point", ":POINTER:DOWN:", []string{"x,y"}, parser.ErrInvalidArgs},
		{"bad tool", ":TOOL:", []string{"record"}, parser.ErrInvalidArgs},
		{"bad color", ":COLOR:", []string{"9"}, parser.ErrInvalidArgs},
		{"unknown request", ":LABEL:", []string{"7", "x"}, editor.ErrUnknownRequest},
		{"unknown marker", ":RECORD:", []string{"7"}, editor.ErrMarkerNotFound},
		{"recolor unknown", ":MARKER:COLOR:", []string{"7", "0"}, editor.ErrMarkerNotFound},
		{"bad id", ":PLAY:", []string{"zero"}, parser.ErrInvalidArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.d.Dispatch(dispatcher.Event{Command: tt.cmd, Args: tt.args})
			assert.ErrorIs(t, err, tt.is)
		})
	}

	f.run(t, ":TOOL:", "move")
	_, err := f.d.Dispatch(dispatcher.Event{Command: ":CLICK:", Args: []string{"1,1"}})
	assert.ErrorIs(t, err, editor.ErrWrongTool)
}

func TestHandlers_LoadWithNothingSaved(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, false, f.run(t, ":LOAD:"))
}

func TestHandlers_ExportIsQueued(t *testing.T) {
	f := newFixture(t)
	f.run(t, ":CLICK:", "100,100")
	f.run(t, ":LABEL:", "1", "A")

	explicit := filepath.Join(f.dir, "named.png")
	assert.Equal(t, "queued", f.run(t, ":EXPORT:PNG:", explicit))
	assert.Equal(t, "queued", f.run(t, ":EXPORT:PNG:"))
	f.d.Close()

	_, err := os.Stat(explicit)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.dir, "board.20260301_120000.png"))
	assert.NoError(t, err)
}

func TestHandlers_Status(t *testing.T) {
	f := newFixture(t)
	f.run(t, ":COLOR:", "#1e88e5")
	f.run(t, ":CLICK:", "5,5")

	st, ok := f.run(t, ":STATUS:").(editor.Status)
	require.True(t, ok)
	assert.Equal(t, core.Color("#1e88e5"), st.Color)
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, 0, st.Markers)
}

func TestRegisterHandlers_CoversCommandTable(t *testing.T) {
	f := newFixture(t)
	for _, cmd := range []string{
		":TOOL:", ":COLOR:", ":SHAPE:", ":CLICK:", ":LABEL:", ":LABEL:CANCEL:",
		":POINTER:DOWN:", ":POINTER:MOVE:", ":POINTER:UP:", ":DRAW:",
		":PAN:BEGIN:", ":PAN:MOVE:", ":PAN:END:", ":ZOOM:IN:", ":ZOOM:OUT:", ":WHEEL:",
		":RECORD:", ":PLAY:", ":STOP:", ":MARKER:COLOR:", ":MARKER:DELETE:", ":LINE:DELETE:",
		":CLEAR:", ":SAVE:", ":LOAD:", ":EXPORT:PNG:", ":STATUS:",
	} {
		assert.True(t, f.d.HasHandler(cmd), cmd)
	}
}
