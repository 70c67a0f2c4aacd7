package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"posterr/internal/database"
	"posterr/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory SQLite database migrated with the
// production schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// baseTime is whole-second UTC so stored timestamps compare exactly.
var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{ID: uuid.New(), Name: username, Username: username, CreatedAt: baseTime}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), &u))
	return u
}

func createPost(t *testing.T, db *gorm.DB, author uuid.UUID, content string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author, CreatedAt: at}
	if content != "" {
		p.Content = &content
	}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}

func createRepost(t *testing.T, db *gorm.DB, author uuid.UUID, original uint, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author, OriginalPostID: &original, CreatedAt: at}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}
