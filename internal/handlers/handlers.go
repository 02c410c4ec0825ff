// Package handlers exposes the editor's controls as dispatcher commands.
// Every command takes string arguments; points are "x,y" in screen space.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tacticsboard/board/internal/dispatcher"
	"github.com/tacticsboard/board/internal/editor"
	"github.com/tacticsboard/board/internal/parser"
	"github.com/tacticsboard/board/internal/render"
	"github.com/tacticsboard/board/pkg/core"
)

// DefaultStorageTimeout bounds a single save or load.
const DefaultStorageTimeout = 10 * time.Second

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Editor         *editor.Editor
	Logger         *slog.Logger
	ExportDir      string
	StorageTimeout time.Duration
	// Now is used to name exports; defaults to time.Now.
	Now func() time.Time
}

// Service provides the handler methods for board commands.
type Service struct {
	deps Dependencies
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.StorageTimeout <= 0 {
		deps.StorageTimeout = DefaultStorageTimeout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// RegisterHandlers registers every board command with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Selectors
	d.Register(":TOOL:", s.handleTool, dispatcher.Logged())
	d.Register(":COLOR:", s.handleColor, dispatcher.Logged())
	d.Register(":SHAPE:", s.handleShape, dispatcher.Logged())

	// Marker placement is two-phase: click, then label
	d.Register(":CLICK:", s.handleClick, dispatcher.Logged())
	d.Register(":LABEL:", s.handleLabel, dispatcher.Logged())
	d.Register(":LABEL:CANCEL:", s.handleLabelCancel, dispatcher.Logged())

	// Pointer gestures
	d.Register(":POINTER:DOWN:", s.pointer(s.deps.Editor.PointerDown), dispatcher.Logged())
	d.Register(":POINTER:MOVE:", s.pointer(s.deps.Editor.PointerMove), dispatcher.Logged())
	d.Register(":POINTER:UP:", s.pointer(s.deps.Editor.PointerUp), dispatcher.Logged())
	d.Register(":DRAW:", s.handleDraw, dispatcher.Logged())

	// View
	d.Register(":PAN:BEGIN:", s.handlePanBegin, dispatcher.Logged())
	d.Register(":PAN:MOVE:", s.handlePanMove, dispatcher.Logged())
	d.Register(":PAN:END:", s.handlePanEnd, dispatcher.Logged())
	d.Register(":ZOOM:IN:", s.handleZoomIn, dispatcher.Logged())
	d.Register(":ZOOM:OUT:", s.handleZoomOut, dispatcher.Logged())
	d.Register(":WHEEL:", s.handleWheel, dispatcher.Logged())

	// Record and playback
	d.Register(":RECORD:", s.handleRecord, dispatcher.Logged())
	d.Register(":PLAY:", s.handlePlay, dispatcher.Logged())
	d.Register(":STOP:", s.handleStop, dispatcher.Logged())

	// Scene edits
	d.Register(":MARKER:COLOR:", s.handleMarkerColor, dispatcher.Logged())
	d.Register(":MARKER:DELETE:", s.handleMarkerDelete, dispatcher.Logged())
	d.Register(":LINE:DELETE:", s.handleLineDelete, dispatcher.Logged())
	d.Register(":CLEAR:", s.handleClear, dispatcher.Logged())

	// Persistence and output
	d.Register(":SAVE:", s.handleSave, dispatcher.Logged())
	d.Register(":LOAD:", s.handleLoad, dispatcher.Logged())
	d.Register(":EXPORT:PNG:", s.handleExport, dispatcher.Buffered(8), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(":STATUS:", s.handleStatus)
}

func (s *Service) handleTool(e dispatcher.Event) (any, error) {
	args := parser.Clean(e.Args)
	if err := parser.Require(args, 1); err != nil {
		return nil, err
	}
	tool, err := parser.ParseTool(args[0])
	if err != nil {
		return nil, err
	}
	if err := s.deps.Editor.SelectTool(tool); err != nil {
		return nil, err
	}
	return string(tool), nil
}

func (s *Service) handleColor(e dispatcher.Event) (any, error) {
	args := parser.Clean(e.Args)
	if err := parser.Require(args, 1); err != nil {
		return nil, err
	}
	c, err := parser.ParseColor(args[0])
	if err != nil {
		return nil, err
	}
	if err := s.deps.Editor.SelectColor(c); err != nil {
		return nil, err
	}
	return string(c), nil
}

func (s *Service) handleShape(e dispatcher.Event) (any, error) {
	args := parser.Clean(e.Args)
	if err := parser.Require(args, 1); err != nil {
		return nil, err
	}
	shape, err := parser.ParseShape(args[0])
	if err != nil {
		return nil, err
	}
	if err := s.deps.Editor.SelectShape(shape); err != nil {
		return nil, err
	}
	return string(shape), nil
}

func (s *Service) handleClick(e dispatcher.Event) (any, error) {
	p, err := s.point(e)
	if err != nil {
		return nil, err
	}
	req, err := s.deps.Editor.BeginMarkerPlacement(p)
	if err != nil {
		return nil, err
	}
	return req.ID, nil
}

func (s *Service) handleLabel(e dispatcher.Event) (any, error) {
	args := parser.Clean(e.Args)
	if err := parser.Require(args, 1); err != nil {
		return nil, err
	}
	id, err := parser.ParseID(args[0])
	if err != nil {
		return nil, err
	}
	label := ""
	if len(args) > 1 {
		// Labels may contain the separator; rejoin the rest.
		label = strings.Join(args[1:], "|")
	}
	m, err := s.deps.Editor.CompleteMarkerPlacement(id, label, true)
	if err != nil {
		return nil, err
	}
	return m.ID, nil
}

func (s *Service) handleLabelCancel(e dispatcher.Event) (any, error) {
	id, err := s.id(e)
	if err != nil {
		return nil, err
	}
	m, err := s.deps.Editor.CompleteMarkerPlacement(id, "", false)
	if err != nil {
		return nil, err
	}
	return m.ID, nil
}

func (s *Service) pointer(fn func(core.Point) editor.State) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		p, err := s.point(e)
		if err != nil {
			return nil, err
		}
		return fn(p).String(), nil
	}
}

func (s *Service) handleDraw(e dispatcher.Event) (any, error) {
	args := parser.Clean(e.Args)
	if err := parser.Require(args, 1); err != nil {
		return nil, err
	}
	points, err := parser.ParsePolyline(args[0])
	if err != nil {
		return nil, err
	}
	ed := s.deps.Editor
	ed.PointerDown(points[0])
	for _, p := range points[1:] {
		ed.PointerMove(p)
	}
	return ed.PointerUp(points[len(points)-1]).String(), nil
}

func (s *Service) handlePanBegin(e dispatcher.Event) (any, error) {
	p, err := s.point(e)
	if err != nil {
		return nil, err
	}
	s.deps.Editor.BeginPan(p)
	return s.deps.Editor.View().Offset, nil
}

func (s *Service) handlePanMove(e dispatcher.Event) (any, error) {
	p, err := s.point(e)
	if err != nil {
		return nil, err
	}
	return s.deps.Editor.PanTo(p), nil
}

func (s *Service) handlePanEnd(e dispatcher.Event) (any, error) {
	if len(e.Args) > 0 {
		p, err := s.point(e)
		if err != nil {
			return nil, err
		}
		s.deps.Editor.PanTo(p)
	}
	return s.deps.Editor.EndPan(), nil
}

func (s *Service) handleZoomIn(e dispatcher.Event) (any, error) {
	return s.deps.Editor.ZoomIn(), nil
}

func (s *Service) handleZoomOut(e dispatcher.Event) (any, error) {
	return s.deps.Editor.ZoomOut(), nil
}

func (s *Service) handleWheel(e dispatcher.Event) (any, error) {
	args := parser.Clean(e.Args)
	if err := parser.Require(args, 1); err != nil {
		return nil, err
	}
	delta, err := parser.ParseFloat(args[0])
	if err != nil {
		return nil, err
	}
	return s.deps.Editor.Wheel(delta), nil
}

func (s *Service) handleRecord(e dispatcher.Event) (any, error) {
	id, err := s.id(e)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Editor.StartRecording(id); err != nil {
		return nil, err
	}
	return s.deps.Editor.State().String(), nil
}

func (s *Service) handlePlay(e dispatcher.Event) (any, error) {
	id, err := s.id(e)
	if err != nil {
		return nil, err
	}
	return s.deps.Editor.Play(id), nil
}

func (s *Service) handleStop(e dispatcher.Event) (any, error) {
	id, err := s.id(e)
	if err != nil {
		return nil, err
	}
	return s.deps.Editor.StopPlayback(id), nil
}

func (s *Service) handleMarkerColor(e dispatcher.Event) (any, error) {
	args := parser.Clean(e.Args)
	if err := parser.Require(args, 2); err != nil {
		return nil, err
	}
	id, err := parser.ParseID(args[0])
	if err != nil {
		return nil, err
	}
	c, err := parser.ParseColor(args[1])
	if err != nil {
		return nil, err
	}
	if err := s.deps.Editor.SetMarkerColor(id, c); err != nil {
		return nil, err
	}
	return "ok", nil
}

func (s *Service) handleMarkerDelete(e dispatcher.Event) (any, error) {
	id, err := s.id(e)
	if err != nil {
		return nil, err
	}
	return s.deps.Editor.RemoveMarker(id), nil
}

func (s *Service) handleLineDelete(e dispatcher.Event) (any, error) {
	id, err := s.id(e)
	if err != nil {
		return nil, err
	}
	return s.deps.Editor.RemoveLine(id), nil
}

func (s *Service) handleClear(e dispatcher.Event) (any, error) {
	s.deps.Editor.ClearScene()
	return "ok", nil
}

func (s *Service) handleSave(e dispatcher.Event) (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.deps.StorageTimeout)
	defer cancel()

	if err := s.deps.Editor.Save(ctx); err != nil {
		return nil, err
	}
	return "ok", nil
}

func (s *Service) handleLoad(e dispatcher.Event) (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.deps.StorageTimeout)
	defer cancel()

	loaded, err := s.deps.Editor.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !loaded {
		s.deps.Logger.Info("Nothing to load, keeping the current board")
	}
	return loaded, nil
}

// handleExport renders the board as it is when the queued command runs.
func (s *Service) handleExport(e dispatcher.Event) (any, error) {
	args := parser.Clean(e.Args)
	path := s.ExportPath(args)
	if err := render.ExportPNG(path, s.deps.Editor.Frame(), s.deps.Editor.View()); err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", path, err)
	}
	s.deps.Logger.Info("Board exported", "path", path)
	return path, nil
}

// ExportPath returns the target of an export: the first argument when given,
// otherwise a timestamped file in the export directory.
func (s *Service) ExportPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	name := fmt.Sprintf("board.%s.png", s.deps.Now().Format("20060102_150405"))
	return filepath.Join(s.deps.ExportDir, name)
}

func (s *Service) handleStatus(e dispatcher.Event) (any, error) {
	return s.deps.Editor.Status(), nil
}

func (s *Service) point(e dispatcher.Event) (core.Point, error) {
	args := parser.Clean(e.Args)
	if err := parser.Require(args, 1); err != nil {
		return core.Point{}, err
	}
	return parser.ParsePoint(args[0])
}

func (s *Service) id(e dispatcher.Event) (int64, error) {
	args := parser.Clean(e.Args)
	if err := parser.Require(args, 1); err != nil {
		return 0, err
	}
	return parser.ParseID(args[0])
}
