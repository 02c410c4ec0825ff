// Package storage persists the board document as a single blob under a
// fixed key in a pluggable key-value backend.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tacticsboard/board/pkg/core"
)

// DefaultKey is the key the board is stored under when none is configured.
const DefaultKey = "whiteboard"

// Backend is the interface all key-value storage implementations must satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Get returns the value stored under key. A missing key is not an
	// error: it returns ok == false.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}

// Adapter saves and loads the board document through a Backend.
type Adapter struct {
	backend Backend
	key     string
	logger  *slog.Logger
}

// NewAdapter binds backend to key. An empty key falls back to DefaultKey.
func NewAdapter(backend Backend, key string, logger *slog.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{backend: backend, key: key, logger: logger}
}

// Key returns the storage key.
func (a *Adapter) Key() string {
	return a.key
}

// Save serialises doc and writes it under the adapter's key.
func (a *Adapter) Save(ctx context.Context, doc core.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}
	if err := a.backend.Put(ctx, a.key, data); err != nil {
		return fmt.Errorf("failed to save board %q: %w", a.key, err)
	}
	a.logger.Info("Board saved", "key", a.key, "markers", len(doc.Markers), "lines", len(doc.Lines), "bytes", len(data))
	return nil
}

// Load reads the document stored under the adapter's key. ok is false when
// nothing was ever saved. Malformed data is rejected as a whole with an
// error wrapping core.ErrMalformedDocument.
func (a *Adapter) Load(ctx context.Context) (doc core.Document, ok bool, err error) {
	data, ok, err := a.backend.Get(ctx, a.key)
	if err != nil {
		return core.Document{}, false, fmt.Errorf("failed to read board %q: %w", a.key, err)
	}
	if !ok {
		a.logger.Debug("No saved board", "key", a.key)
		return core.Document{}, false, nil
	}

	doc, err = core.DecodeDocument(data)
	if err != nil {
		a.logger.Warn("Refusing malformed board", "key", a.key, "error", err)
		return core.Document{}, false, err
	}
	a.logger.Info("Board loaded", "key", a.key, "markers", len(doc.Markers), "lines", len(doc.Lines))
	return doc, true, nil
}
