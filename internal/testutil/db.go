// Package testutil provides shared test databases and fixtures for backend tests.
package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"pulse/internal/database"
	"pulse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory SQLite database private to t. The pool is
// capped at one connection, so code under test must not reach for the root
// handle while a transaction on it is open.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared"), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewFileDB opens a migrated SQLite database file under t.TempDir() with
// conns pooled connections, for tests that need writers on separate
// connections. Writers wait on each other for up to five seconds.
func NewFileDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pulse.db")
	db, err := gorm.Open(sqlite.Open("file:"+path+"?_busy_timeout=5000&_journal_mode=WAL"), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with fake profile data.
func CreateUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		ExternalID: "idp|" + gofakeit.UUID(),
		Email:      gofakeit.Email(),
		Name:       gofakeit.Name(),
		Username:   gofakeit.Username() + gofakeit.DigitN(6),
		Image:      gofakeit.URL(),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreatePost inserts a post by author.
func CreatePost(t *testing.T, db *gorm.DB, author models.User) models.Post {
	t.Helper()
	post := models.Post{AuthorID: author.ID, Content: gofakeit.Sentence(8)}
	require.NoError(t, db.Omit("Author").Create(&post).Error)
	return post
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
