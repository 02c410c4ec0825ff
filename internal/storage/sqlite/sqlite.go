// Package sqlitestorage stores the board in a local SQLite database file.
package sqlitestorage

import (
	"github.com/rs/zerolog"
	"github.com/tacticsboard/board/internal/config"
	"github.com/tacticsboard/board/internal/database"
	gormstorage "github.com/tacticsboard/board/internal/storage/gorm"
	"gorm.io/gorm"
)

// Backend is a gormstorage.Backend bound to a SQLite file.
type Backend struct {
	*gormstorage.Backend
	path string
}

// New creates a new SQLite backend
func New(cfg config.SQLiteConfig, log zerolog.Logger) *Backend {
	return &Backend{
		Backend: gormstorage.New(func() (*gorm.DB, error) {
			return database.OpenSqlite(cfg.Path, log)
		}, log),
		path: cfg.Path,
	}
}

// Path returns the database file.
func (b *Backend) Path() string {
	return b.path
}
