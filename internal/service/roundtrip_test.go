package service

import (
	"context"
	"testing"
	"time"

	"posterr/internal/database"
	"posterr/internal/models"
	"posterr/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateThenGetPost_RoundTrip(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	user := models.User{ID: uuid.New(), Name: "user1", Username: "user1"}
	require.NoError(t, repository.NewUserRepository(db).Create(ctx, &user))

	posts := repository.NewPostRepository(db)
	creator := NewPostService(posts, PostServiceOptions{})
	feed := NewFeedService(posts, FeedServiceOptions{})

	created, err := creator.CreatePost(ctx, CreatePostInput{UserID: user.ID, Content: "héllo wörld"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	view, err := feed.GetPost(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Content)
	assert.Equal(t, "héllo wörld", *view.Content)
	assert.Equal(t, user.ID, view.User.ID)
	assert.True(t, created.CreatedAt.Equal(view.CreatedAt),
		"stored %s, read back %s", created.CreatedAt.Format(time.RFC3339Nano), view.CreatedAt.Format(time.RFC3339Nano))
	assert.Nil(t, view.OriginalPost)

	quote := "quoted"
	repost, err := creator.CreateRepost(ctx, CreateRepostInput{UserID: user.ID, Content: &quote, OriginalPostID: created.ID})
	require.NoError(t, err)

	view, err = feed.GetPost(ctx, repost.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Content)
	assert.Equal(t, quote, *view.Content)
	assert.True(t, repost.CreatedAt.Equal(view.CreatedAt))
	require.NotNil(t, view.OriginalPost)
	assert.Equal(t, created.ID, view.OriginalPost.ID)
	assert.Equal(t, "héllo wörld", *view.OriginalPost.Content)
}
