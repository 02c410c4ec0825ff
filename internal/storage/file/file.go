// Package file implements storage.Backend with one JSON file per key,
// optionally gzip-compressed.
package file

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tacticsboard/board/internal/config"
	"github.com/tacticsboard/board/internal/util"
)

// Backend stores each key in Dir as <key>.json or <key>.json.gz.
type Backend struct {
	cfg config.FileConfig
}

// New creates a new file backend
func New(cfg config.FileConfig) *Backend {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	return &Backend{cfg: cfg}
}

// Init ensures the output directory exists.
func (b *Backend) Init() error {
	if err := os.MkdirAll(b.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// Path returns the file a key is written to with the current settings.
func (b *Backend) Path(key string) string {
	return b.path(key, b.cfg.Compress)
}

func (b *Backend) path(key string, compressed bool) string {
	name := util.SanitizeFilename(key) + ".json"
	if compressed {
		name += ".gz"
	}
	return filepath.Join(b.cfg.Dir, name)
}

// Get reads key. The file matching the compression setting is preferred;
// the other variant is read when it is the only one present.
func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	for _, compressed := range []bool{b.cfg.Compress, !b.cfg.Compress} {
		data, err := readFile(b.path(key, compressed), compressed)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	}
	return nil, false, nil
}

// Put writes key atomically: data goes to a temp file that is renamed over
// the target.
func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(b.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	target := b.Path(key)
	tmp, err := os.CreateTemp(b.cfg.Dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if b.cfg.Compress {
		err = writeGzip(tmp, value)
	} else {
		_, err = tmp.Write(value)
	}
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}
	return nil
}

func writeGzip(w io.Writer, value []byte) error {
	gz := gzip.NewWriter(w)
	if _, err := gz.Write(value); err != nil {
		return err
	}
	return gz.Close()
}

func readFile(path string, compressed bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !compressed {
		return data, nil
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip %s: %w", path, err)
	}
	defer gz.Close()
	out, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return out, nil
}
