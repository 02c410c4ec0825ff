// Package playback replays recorded marker paths, one point per tick.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tacticsboard/board/pkg/core"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tacticsboard/board/internal/playback"

// DefaultTickInterval is the delay between two path points.
const DefaultTickInterval = 30 * time.Millisecond

// Scene is the part of the scene model playback touches.
type Scene interface {
	Marker(id int64) (core.Marker, bool)
	MoveMarker(id int64, position core.Point) bool
}

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

// StepFunc observes every position a playback applies.
type StepFunc func(markerID int64, step int, position core.Point)

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Option configures an Engine.
type Option func(*Engine)

// WithTickInterval overrides DefaultTickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithTicker replaces the ticker source, mainly for tests.
func WithTicker(f TickerFunc) Option {
	return func(e *Engine) {
		e.newTicker = f
	}
}

// WithObserver registers a callback run after every step. It is called from
// the playback goroutine.
func WithObserver(fn StepFunc) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

type run struct {
	cancel chan struct{}
}

// Engine runs independent playbacks, at most one per marker.
type Engine struct {
	scene     Scene
	interval  time.Duration
	newTicker TickerFunc
	observer  StepFunc
	logger    *slog.Logger

	mu      sync.Mutex
	running map[int64]*run
	wg      sync.WaitGroup

	active metric.Int64UpDownCounter
	steps  metric.Int64Counter
}

// New creates an engine driving positions on scene.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(scene Scene, opts ...Option) (*Engine, error) {
	e := &Engine{
		scene:     scene,
		interval:  DefaultTickInterval,
		newTicker: NewTimeTicker,
		logger:    slog.Default(),
		running:   make(map[int64]*run),
	}
	for _, opt := range opts {
		opt(e)
	}

	m := otel.Meter(instrumentationName)

	var err error
	e.active, err = m.Int64UpDownCounter(
		"playback.active",
		metric.WithDescription("Number of playbacks currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active playback counter: %w", err)
	}

	e.steps, err = m.Int64Counter(
		"playback.steps",
		metric.WithDescription("Total path points applied by playbacks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating playback step counter: %w", err)
	}

	return e, nil
}

// Play starts replaying the recorded path of markerID. It returns false,
// doing nothing, when the marker is unknown or has no path of at least 2
// points. Playing a marker that is already playing restarts it.
func (e *Engine) Play(markerID int64) bool {
	m, ok := e.scene.Marker(markerID)
	if !ok || !m.HasPath() {
		return false
	}
	path := m.Path

	e.mu.Lock()
	if prev, ok := e.running[markerID]; ok {
		close(prev.cancel)
		delete(e.running, markerID)
	}
	r := &run{cancel: make(chan struct{})}
	e.running[markerID] = r
	ticker := e.newTicker(e.interval)
	e.wg.Add(1)
	e.mu.Unlock()

	e.active.Add(context.Background(), 1)
	e.logger.Debug("playback started", "marker", markerID, "points", len(path))

	go e.loop(markerID, path, r, ticker)
	return true
}

func (e *Engine) loop(markerID int64, path []core.Point, r *run, ticker Ticker) {
	defer e.wg.Done()
	defer ticker.Stop()
	defer e.finish(markerID, r)

	for i := 0; i < len(path); {
		select {
		case <-r.cancel:
			e.logger.Debug("playback stopped", "marker", markerID, "step", i)
			return
		case <-ticker.C():
			if !e.step(markerID, r, path[i]) {
				e.logger.Debug("playback stopped", "marker", markerID, "step", i)
				return
			}
			e.steps.Add(context.Background(), 1)
			if e.observer != nil {
				e.observer(markerID, i, path[i])
			}
			i++
		}
	}
	e.logger.Debug("playback complete", "marker", markerID)
}

// step moves the marker unless r was stopped or replaced. Stop and a
// restarting Play hold e.mu, so once they return no step of r lands.
func (e *Engine) step(markerID int64, r *run, p core.Point) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running[markerID] != r {
		return false
	}
	e.scene.MoveMarker(markerID, p)
	return true
}

func (e *Engine) finish(markerID int64, r *run) {
	e.active.Add(context.Background(), -1)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running[markerID] == r {
		delete(e.running, markerID)
	}
}

// Stop cancels the playback of markerID. The marker keeps the position of
// the last applied step.
func (e *Engine) Stop(markerID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.running[markerID]
	if !ok {
		return false
	}
	close(r.cancel)
	delete(e.running, markerID)
	return true
}

// StopAll cancels every running playback.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, r := range e.running {
		close(r.cancel)
		delete(e.running, id)
	}
}

// Playing reports whether markerID has a playback in progress.
func (e *Engine) Playing(markerID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.running[markerID]
	return ok
}

// Wait blocks until every started playback has finished or been stopped.
func (e *Engine) Wait() {
	e.wg.Wait()
}
