// Package store is the persistence gateway: typed CRUD over the engine's
// entities, schema migration, and atomic status updates, backed by an
// embedded gorm.io/gorm + SQLite database. The start-contention rule needs
// a transactional "check live job then insert", which is the reason this is
// a real ACID store rather than a flat file.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/casparjones/rdumper/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Gateway owns the single *gorm.DB used by the whole process. SQLite's
// single-writer semantics plus the busy_timeout pragma set in Open are the
// gateway's only mutex point, per the engine's concurrency model.
type Gateway struct {
	db *gorm.DB
}

// Open creates the state directory if needed, opens the SQLite file in WAL
// mode, sets a busy_timeout so concurrent writers block instead of failing
// immediately, and runs AutoMigrate for every entity.
func Open(path string) (*Gateway, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create state directory: %v", model.ErrFilesystemFailure, err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.DatabaseConnection{},
		&model.Task{},
		&model.Job{},
		&model.Artifact{},
		&model.TableProgress{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Gateway{db: db}, nil
}

// DB exposes the underlying *gorm.DB for query composition beyond the
// typed methods of the gateway.
func (g *Gateway) DB() *gorm.DB { return g.db }
