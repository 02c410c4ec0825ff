// Package editor is the board's interaction state machine. It turns screen
// space pointer events into scene mutations according to the selected tool,
// and fronts the view, playback and persistence actions.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/tacticsboard/board/internal/geo"
	"github.com/tacticsboard/board/internal/queue"
	"github.com/tacticsboard/board/internal/render"
	"github.com/tacticsboard/board/internal/scene"
	"github.com/tacticsboard/board/pkg/core"
)

var (
	// ErrMarkerNotFound is returned by marker actions given an unknown id.
	ErrMarkerNotFound = errors.New("marker not found")
	// ErrUnknownRequest is returned when completing a label request that is
	// not pending.
	ErrUnknownRequest = errors.New("unknown label request")
	// ErrWrongTool is returned by tool-specific actions under another tool.
	ErrWrongTool = errors.New("action not available for the selected tool")
	// ErrNoStore is returned by Save and Load when no store is configured.
	ErrNoStore = errors.New("no persistence store configured")
)

// Store persists the board document. *storage.Adapter satisfies it.
type Store interface {
	Save(ctx context.Context, doc core.Document) error
	Load(ctx context.Context) (core.Document, bool, error)
}

// Player replays recorded paths. *playback.Engine satisfies it.
type Player interface {
	Play(markerID int64) bool
	Stop(markerID int64) bool
	StopAll()
	Playing(markerID int64) bool
	Wait()
}

// PendingLabel is a marker placement waiting for its label. Color and shape
// are captured when the click happens.
type PendingLabel struct {
	ID       int64
	Position core.Point
	Color    core.Color
	Shape    core.Shape
}

// Option configures an Editor.
type Option func(*Editor)

// WithStore sets the persistence store used by Save and Load.
func WithStore(s Store) Option {
	return func(e *Editor) {
		e.store = s
	}
}

// WithPlayer sets the playback engine used by Play and StopPlayback.
func WithPlayer(p Player) Option {
	return func(e *Editor) {
		e.player = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = l
	}
}

// Editor owns the selected tool, color, shape, the view and the transient
// gesture state for one board. Its methods are safe for concurrent use.
type Editor struct {
	scene  *scene.Scene
	store  Store
	player Player
	logger *slog.Logger

	mu    sync.Mutex
	tool  Tool
	color core.Color
	shape core.Shape
	view  geo.View
	state State

	draft      *queue.Queue[core.Point]
	draftColor core.Color

	recording   *queue.Queue[core.Point]
	recordingID int64

	moving    int64 // 0 when no marker is held by the move tool
	pan       *geo.PanGesture
	pending   map[int64]PendingLabel
	requestID int64
}

// New creates an editor over sc with the marker tool, the first palette
// color, the circle shape and the default view selected.
func New(sc *scene.Scene, opts ...Option) *Editor {
	e := &Editor{
		scene:     sc,
		logger:    slog.Default(),
		tool:      ToolMarker,
		color:     core.DefaultColor,
		shape:     core.ShapeCircle,
		view:      geo.DefaultView(),
		draft:     queue.New[core.Point](),
		recording: queue.New[core.Point](),
		pending:   make(map[int64]PendingLabel),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scene returns the underlying scene.
func (e *Editor) Scene() *scene.Scene {
	return e.scene
}

// Tool returns the selected tool.
func (e *Editor) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

// SelectTool switches tools. An in-progress line is discarded and a held
// marker released; a recording is unaffected.
func (e *Editor) SelectTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tool: %q", t)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if t == e.tool {
		return nil
	}
	if e.state == StateDrawingLine {
		e.draft.Clear()
		e.state = StateIdle
	}
	e.moving = 0
	e.tool = t
	e.logger.Debug("tool selected", "tool", t)
	return nil
}

// Color returns the selected swatch.
func (e *Editor) Color() core.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.color
}

// SelectColor selects a palette swatch for new markers and lines.
func (e *Editor) SelectColor(c core.Color) error {
	if !c.InPalette() {
		return fmt.Errorf("color %q is not in the palette", c)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.color = core.Color(strings.ToLower(string(c)))
	return nil
}

// Shape returns the shape used for new markers.
func (e *Editor) Shape() core.Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shape
}

// SelectShape selects the shape for new markers.
func (e *Editor) SelectShape(s core.Shape) error {
	if !s.Valid() {
		return fmt.Errorf("unknown shape: %q", s)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shape = s
	return nil
}

// State returns the transient state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// View returns the current zoom and offset.
func (e *Editor) View() geo.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// BeginMarkerPlacement is the first half of a marker tool click. It records
// where the marker goes and returns the request the label must answer.
func (e *Editor) BeginMarkerPlacement(screen core.Point) (PendingLabel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tool != ToolMarker {
		return PendingLabel{}, ErrWrongTool
	}
	e.requestID++
	req := PendingLabel{
		ID:       e.requestID,
		Position: e.view.ToWorld(screen),
		Color:    e.color,
		Shape:    e.shape,
	}
	e.pending[req.ID] = req
	return req, nil
}

// CompleteMarkerPlacement answers a pending request. When ok is false or the
// label is blank the shape's default label is used. The marker is placed
// even if the tool changed in between.
func (e *Editor) CompleteMarkerPlacement(requestID int64, label string, ok bool) (core.Marker, error) {
	e.mu.Lock()
	req, found := e.pending[requestID]
	delete(e.pending, requestID)
	e.mu.Unlock()

	if !found {
		return core.Marker{}, fmt.Errorf("%w: %d", ErrUnknownRequest, requestID)
	}

	if !ok || strings.TrimSpace(label) == "" {
		label = req.Shape.DefaultLabel()
	}
	m := e.scene.AddMarker(req.Position, req.Color, label, req.Shape)
	e.logger.Info("marker placed", "id", m.ID, "label", m.Label, "shape", m.Shape, "x", m.Position.X, "y", m.Position.Y)
	return m, nil
}

// PendingLabels returns the unanswered requests ordered by id.
func (e *Editor) PendingLabels() []PendingLabel {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]PendingLabel, 0, len(e.pending))
	for _, p := range e.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PointerDown starts a gesture: a line under the line tool, a hit test under
// the move tool. It is ignored while recording and under the marker tool.
func (e *Editor) PointerDown(screen core.Point) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateRecordingPath {
		return e.state
	}
	world := e.view.ToWorld(screen)

	switch e.tool {
	case ToolLine:
		e.draft.Clear()
		e.draft.Push(world)
		e.draftColor = e.color
		e.state = StateDrawingLine
	case ToolMove:
		e.moving = 0
		if m, ok := e.scene.FindMarkerNear(world, scene.HitRadius); ok {
			e.moving = m.ID
		}
	}
	return e.state
}

// PointerMove extends the gesture in progress. Every event is kept; there is
// no distance filter.
func (e *Editor) PointerMove(screen core.Point) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	world := e.view.ToWorld(screen)

	switch {
	case e.state == StateRecordingPath:
		e.recording.Push(world)
		e.scene.MoveMarker(e.recordingID, world)
	case e.state == StateDrawingLine:
		e.draft.Push(world)
	case e.tool == ToolMove && e.moving != 0:
		// The marker centre snaps to the pointer.
		e.scene.MoveMarker(e.moving, world)
	}
	return e.state
}

// PointerUp ends the gesture in progress. Lines and recordings shorter than
// 2 points are dropped silently.
func (e *Editor) PointerUp(screen core.Point) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateRecordingPath:
		e.commitRecording()
	case StateDrawingLine:
		points := e.draft.GetAndEmpty()
		if l, ok := e.scene.AddLine(points, e.draftColor); ok {
			e.logger.Info("line committed", "id", l.ID, "points", len(l.Points), "length", geo.PathLength(l.Points))
		} else {
			e.logger.Debug("line discarded", "points", len(points))
		}
		e.state = StateIdle
	default:
		e.moving = 0
	}
	return e.state
}

// StartRecording begins capturing a path for markerID. Any line being drawn
// is discarded and a playback of the marker is stopped.
func (e *Editor) StartRecording(markerID int64) error {
	if _, ok := e.scene.Marker(markerID); !ok {
		return fmt.Errorf("%w: %d", ErrMarkerNotFound, markerID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player != nil {
		e.player.Stop(markerID)
	}
	e.draft.Clear()
	e.moving = 0
	e.recording.Clear()
	e.recordingID = markerID
	e.state = StateRecordingPath
	e.logger.Debug("recording started", "marker", markerID)
	return nil
}

// CancelRecording abandons the recording in progress without touching the
// marker's stored path. The marker stays where the pointer left it.
func (e *Editor) CancelRecording() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRecordingPath {
		return false
	}
	e.recording.Clear()
	e.recordingID = 0
	e.state = StateIdle
	return true
}

// RecordingTarget returns the marker being recorded.
func (e *Editor) RecordingTarget() (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recordingID, e.state == StateRecordingPath
}

func (e *Editor) commitRecording() {
	points := e.recording.GetAndEmpty()
	if len(points) >= 2 && e.scene.SetMarkerPath(e.recordingID, points) {
		e.logger.Info("path recorded", "marker", e.recordingID, "points", len(points), "length", geo.PathLength(points))
	} else {
		e.logger.Debug("recording discarded", "marker", e.recordingID, "points", len(points))
	}
	e.recordingID = 0
	e.state = StateIdle
}

// MarkerAt returns the marker under a screen point.
func (e *Editor) MarkerAt(screen core.Point) (core.Marker, bool) {
	world := e.View().ToWorld(screen)
	return e.scene.FindMarkerNear(world, scene.HitRadius)
}

// BeginPan starts a pan gesture at a screen point.
func (e *Editor) BeginPan(screen core.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := geo.BeginPan(screen, e.view)
	e.pan = &g
}

// PanTo moves the view 1:1 with the pointer and returns the new offset.
// Without an active pan it does nothing.
func (e *Editor) PanTo(screen core.Point) core.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pan != nil {
		e.view.Offset = e.pan.Offset(screen)
	}
	return e.view.Offset
}

// EndPan finishes the pan gesture.
func (e *Editor) EndPan() core.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pan = nil
	return e.view.Offset
}

// ZoomIn steps the zoom up and returns it. The offset is unchanged.
func (e *Editor) ZoomIn() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = e.view.ZoomIn()
	return e.view.Zoom
}

// ZoomOut steps the zoom down and returns it. The offset is unchanged.
func (e *Editor) ZoomOut() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = e.view.ZoomOut()
	return e.view.Zoom
}

// Wheel applies one wheel event and returns the zoom.
func (e *Editor) Wheel(deltaY float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = e.view.Wheel(deltaY)
	return e.view.Zoom
}

// Play replays the marker's recorded path. It reports false when nothing
// was started.
func (e *Editor) Play(markerID int64) bool {
	if e.player == nil {
		return false
	}
	return e.player.Play(markerID)
}

// StopPlayback stops the marker's playback.
func (e *Editor) StopPlayback(markerID int64) bool {
	if e.player == nil {
		return false
	}
	return e.player.Stop(markerID)
}

// Playing reports whether the marker is being replayed.
func (e *Editor) Playing(markerID int64) bool {
	return e.player != nil && e.player.Playing(markerID)
}

// SetMarkerColor recolors an existing marker.
func (e *Editor) SetMarkerColor(markerID int64, c core.Color) error {
	if !c.InPalette() {
		return fmt.Errorf("color %q is not in the palette", c)
	}
	if !e.scene.SetMarkerColor(markerID, core.Color(strings.ToLower(string(c)))) {
		return fmt.Errorf("%w: %d", ErrMarkerNotFound, markerID)
	}
	return nil
}

// RemoveMarker deletes a marker, stopping its playback and any recording
// targeting it.
func (e *Editor) RemoveMarker(markerID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player != nil {
		e.player.Stop(markerID)
	}
	if !e.scene.RemoveMarker(markerID) {
		return false
	}
	if e.state == StateRecordingPath && e.recordingID == markerID {
		e.recording.Clear()
		e.recordingID = 0
		e.state = StateIdle
	}
	if e.moving == markerID {
		e.moving = 0
	}
	return true
}

// RemoveLine deletes a committed line.
func (e *Editor) RemoveLine(lineID int64) bool {
	return e.scene.RemoveLine(lineID)
}

// ClearScene stops every playback, abandons transient state and empties the
// scene. The view is kept.
func (e *Editor) ClearScene() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltLocked()
	e.scene.Clear()
	e.logger.Info("scene cleared")
}

// Save writes the markers and lines through the store.
func (e *Editor) Save(ctx context.Context) error {
	if e.store == nil {
		return ErrNoStore
	}
	return e.store.Save(ctx, e.scene.Snapshot())
}

// Load replaces the scene with the stored document. It returns false and
// leaves the scene untouched when nothing is stored or the read fails.
func (e *Editor) Load(ctx context.Context) (bool, error) {
	if e.store == nil {
		return false, ErrNoStore
	}
	doc, ok, err := e.store.Load(ctx)
	if err != nil || !ok {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltLocked()
	e.scene.Replace(doc)
	return true, nil
}

// haltLocked stops playbacks and drops every transient gesture. e.mu must
// be held. Player observers must not call back into the editor.
func (e *Editor) haltLocked() {
	if e.player != nil {
		e.player.StopAll()
		e.player.Wait()
	}
	e.draft.Clear()
	e.recording.Clear()
	e.recordingID = 0
	e.moving = 0
	e.pan = nil
	e.state = StateIdle
}

// Frame returns what the renderer needs for the current board.
func (e *Editor) Frame() render.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := render.Frame{
		Markers: e.scene.Markers(),
		Lines:   e.scene.Lines(),
	}
	switch e.state {
	case StateDrawingLine:
		f.Draft = &core.Line{Points: e.draft.Snapshot(), Color: e.draftColor}
	case StateRecordingPath:
		f.Recording = e.recording.Snapshot()
		if m, ok := e.scene.Marker(e.recordingID); ok {
			f.RecordingColor = m.Color
		}
	}
	return f
}
