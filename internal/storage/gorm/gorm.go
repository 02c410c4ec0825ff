// Package gormstorage implements storage.Backend on a GORM connection. The
// sqlite and postgres backends share it and differ only in how they connect.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tacticsboard/board/internal/database"
	"github.com/tacticsboard/board/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Opener establishes the database connection on Init.
type Opener func() (*gorm.DB, error)

// Backend stores each key as one row of board_blobs.
type Backend struct {
	open Opener
	db   *gorm.DB
	log  zerolog.Logger
}

// New creates a backend that connects through open when initialised.
func New(open Opener, log zerolog.Logger) *Backend {
	return &Backend{open: open, log: log}
}

// Init connects and migrates the schema.
func (b *Backend) Init() error {
	db, err := b.open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Setup(db, b.log); err != nil {
		_ = database.Close(db)
		return err
	}
	b.db = db
	return nil
}

// Close releases the connection.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	err := database.Close(b.db)
	b.db = nil
	return err
}

// DB returns the active connection, nil before Init.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Get returns the stored value for key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	blob, ok, err := b.find(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	return []byte(blob.Value), true, nil
}

// Revision returns how many times key has been written, 0 when absent.
func (b *Backend) Revision(ctx context.Context, key string) (uint, error) {
	blob, ok, err := b.find(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	return blob.Revision, nil
}

// Put inserts or replaces the value for key.
func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	if b.db == nil {
		return errors.New("backend not initialized")
	}
	now := time.Now()
	blob := model.Blob{
		Name:      key,
		Value:     datatypes.JSON(value),
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      blob.Value,
			"updated_at": now,
			"revision":   gorm.Expr("board_blobs.revision + 1"),
		}),
	}).Create(&blob).Error
}

func (b *Backend) find(ctx context.Context, key string) (model.Blob, bool, error) {
	if b.db == nil {
		return model.Blob{}, false, errors.New("backend not initialized")
	}
	var blob model.Blob
	err := b.db.WithContext(ctx).Where("name = ?", key).First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Blob{}, false, nil
	}
	if err != nil {
		return model.Blob{}, false, err
	}
	return blob, true, nil
}
