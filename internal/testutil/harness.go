// Package testutil provides the shared database harness for engine tests.
// Tests run against an in-memory SQLite database with the full schema
// migrated, mirroring how the original system exercised its API suite.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vmfab/rutero/internal/model"
)

// OpenDB returns a migrated, isolated in-memory database. A single pooled
// connection keeps SQLite serializing concurrent writers, so claim-race tests
// observe the same at-most-one-winner outcome the production store gives.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// SeedMaquina inserts a machine and returns it.
func SeedMaquina(t *testing.T, db *gorm.DB, nombre, tipo string) model.Maquina {
	t.Helper()
	m := model.Maquina{Nombre: nombre, Tipo: tipo}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// SeedTemplate inserts ordered template rows for a machine type. Each entry
// is (orden, operacion, centro_trabajo).
func SeedTemplate(t *testing.T, db *gorm.DB, nombre, tipo string, steps [][3]any) {
	t.Helper()
	for _, s := range steps {
		row := model.PlantillaEstacion{
			PlantillaNombre: nombre,
			MaquinaTipo:     tipo,
			Orden:           s[0].(int),
			Operacion:       s[1].(string),
			CentroTrabajo:   s[2].(string),
			TE:              "00:10:00",
		}
		require.NoError(t, db.Create(&row).Error)
	}
}
