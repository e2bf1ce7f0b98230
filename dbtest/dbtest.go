// Package dbtest opens throwaway SQLite databases and fixtures for tests.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"LittleLemon/config"
	"LittleLemon/models"
	"LittleLemon/permission"
	"LittleLemon/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const Password = "Secret#123"

var dbSeq int64

// Open returns a fresh in-memory database with every table migrated and the
// three groups seeded. It is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:littlelemon%d?mode=memory&cache=shared&_foreign_keys=on", atomic.AddInt64(&dbSeq, 1))
	return prepare(t, sqlite.Open(name), 1)
}

// OpenPool returns a file-backed SQLite database served by several pooled
// connections, so transactions from different goroutines really overlap.
// Writers queue on SQLite's database lock instead of failing with SQLITE_BUSY.
func OpenPool(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "littlelemon.db")
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=10000&_txlock=immediate", path)
	return prepare(t, sqlite.Open(dsn), conns)
}

// OpenServer connects to the MySQL or PostgreSQL database named by
// TEST_DB_DRIVER and TEST_DB_DSN and recreates every table. The test is skipped
// when they are unset. Row locks only take effect on these drivers.
func OpenServer(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	driver, dsn := os.Getenv("TEST_DB_DRIVER"), os.Getenv("TEST_DB_DSN")
	if driver == "" || dsn == "" {
		t.Skip("TEST_DB_DRIVER and TEST_DB_DSN not set")
	}
	dialector, err := config.DatabaseConfig{Driver: driver, DSN: dsn}.Dialector()
	require.NoError(t, err)

	db := connect(t, dialector, conns)
	tables := append(models.All(), "auth_user_groups")
	require.NoError(t, db.Migrator().DropTable(tables...))
	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, config.SeedGroups(context.Background(), db))
	return db
}

func prepare(t testing.TB, dialector gorm.Dialector, conns int) *gorm.DB {
	t.Helper()
	db := connect(t, dialector, conns)
	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, config.SeedGroups(context.Background(), db))
	return db
}

func connect(t testing.TB, dialector gorm.Dialector, conns int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user with the shared test password and the given groups.
func CreateUser(t testing.TB, db *gorm.DB, username string, isAdmin bool, groups ...string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	u := &models.User{Username: username, Password: string(hash), IsAdmin: isAdmin}
	require.NoError(t, users.Create(ctx, u))
	for _, name := range groups {
		g, err := users.FindGroup(ctx, name)
		require.NoError(t, err)
		require.NoError(t, users.AddToGroup(ctx, u, g))
	}
	return u
}

func Customer(t testing.TB, db *gorm.DB, username string) *models.User {
	return CreateUser(t, db, username, false, permission.CustomerGroup)
}

func CreateCategory(t testing.TB, db *gorm.DB, title string) *models.Category {
	t.Helper()
	c := &models.Category{Title: title, Slug: strings.ToLower(strings.ReplaceAll(title, " ", "-"))}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateMenuItem inserts a menu item priced from a decimal string such as "4.10".
func CreateMenuItem(t testing.TB, db *gorm.DB, category *models.Category, title, price string) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		Title:      title,
		Price:      decimal.RequireFromString(price),
		CategoryID: category.ID,
	}
	require.NoError(t, db.Omit("Category").Create(item).Error)
	item.Category = *category
	return item
}
