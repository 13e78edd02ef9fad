// Package dbtest opens a migrated in-memory SQLite database for tests.
package dbtest

import (
	"testing"

	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 每次一个独立的 :memory: 库；只开一个连接，否则每个连接各是一个空库
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func User(t testing.TB, conn *gorm.DB, email string, admin bool) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Name: email, Email: email, PasswordHash: "x", IsAdmin: admin}
	require.NoError(t, conn.Create(u).Error)
	return u
}

func Person(t testing.TB, conn *gorm.DB, identification string) *models.Person {
	t.Helper()
	p := &models.Person{ID: uuid.NewString(), FirstName: "Ana", LastName: "Ruiz", Identification: identification, Role: models.RoleStudent}
	require.NoError(t, conn.Create(p).Error)
	return p
}

func Item(t testing.TB, conn *gorm.DB, ownerID, placa string) *models.Item {
	t.Helper()
	it := &models.Item{ID: uuid.NewString(), Placa: placa, Name: "Item " + placa, Category: "video", Slug: "item-" + placa, Available: true, OwnerID: ownerID}
	require.NoError(t, conn.Create(it).Error)
	return it
}
