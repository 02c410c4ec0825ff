// Package postgresstorage stores the board in a PostgreSQL database.
package postgresstorage

import (
	"github.com/rs/zerolog"
	"github.com/tacticsboard/board/internal/config"
	"github.com/tacticsboard/board/internal/database"
	gormstorage "github.com/tacticsboard/board/internal/storage/gorm"
	"gorm.io/gorm"
)

// Backend is a gormstorage.Backend bound to a Postgres server.
type Backend struct {
	*gormstorage.Backend
	cfg config.DatabaseConfig
}

// New creates a new Postgres backend. No connection is made until Init.
func New(cfg config.DatabaseConfig, log zerolog.Logger) *Backend {
	return &Backend{
		Backend: gormstorage.New(func() (*gorm.DB, error) {
			return database.OpenPostgres(cfg, log)
		}, log),
		cfg: cfg,
	}
}

// Database returns the configured database name.
func (b *Backend) Database() string {
	return b.cfg.Database
}
