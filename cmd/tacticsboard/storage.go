package main

import (
	"fmt"

	"github.com/tacticsboard/board/internal/config"
	"github.com/tacticsboard/board/internal/storage"
	"github.com/tacticsboard/board/internal/storage/file"
	"github.com/tacticsboard/board/internal/storage/memory"
	pgstorage "github.com/tacticsboard/board/internal/storage/postgres"
	sqlitestorage "github.com/tacticsboard/board/internal/storage/sqlite"

	"github.com/rs/zerolog"
)

// Storage backend names accepted by storage.type.
const (
	storageMemory   = "memory"
	storageFile     = "file"
	storageSQLite   = "sqlite"
	storagePostgres = "postgres"
)

func createStorageBackend(storageCfg config.StorageConfig, dbCfg config.DatabaseConfig, log zerolog.Logger) (storage.Backend, error) {
	switch storageCfg.Type {
	case storagePostgres:
		return pgstorage.New(dbCfg, log), nil

	case storageSQLite:
		return sqlitestorage.New(storageCfg.SQLite, log), nil

	case storageFile, "":
		return file.New(storageCfg.File), nil

	case storageMemory:
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

func initStorage(storageCfg config.StorageConfig, dbCfg config.DatabaseConfig, log zerolog.Logger) (storage.Backend, error) {
	backend, err := createStorageBackend(storageCfg, dbCfg, log)
	if err != nil {
		return nil, err
	}
	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}
	log.Info().Str("type", storageCfg.Type).Str("key", storageCfg.Key).Msg("Storage backend initialized")
	return backend, nil
}
