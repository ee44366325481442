// Package store opens the persistent store and wraps its transactions. The
// engine talks to gorm only; postgres backs production and sqlite backs
// development and tests.
package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/model"
)

// Open connects to the database named by url. URLs with a postgres scheme use
// the postgres driver; anything else is treated as a sqlite DSN (a file path
// or a file::memory: URI).
func Open(url string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		dialector = postgres.Open(url)
	} else {
		dialector = sqlite.Open(url)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fault.Storage(err, "abriendo base de datos")
	}
	return db, nil
}

// Migrate creates or updates every engine table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fault.Storage(err, "migrando esquema")
	}
	return nil
}

// WithTx runs fn inside a transaction. Errors already carrying a fault code
// pass through untouched; anything else (including a failed commit) surfaces
// as STORAGE_ERROR so partial writes are never half-reported.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	var fe *fault.Error
	if errors.As(err, &fe) {
		return err
	}
	return fault.Storage(err, "transacción no completada")
}
