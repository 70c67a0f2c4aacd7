package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"posterr/internal/cache"
	"posterr/internal/featureflags"
	"posterr/internal/models"
	"posterr/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeedService(repo repository.PostRepository, flags string) *FeedService {
	return NewFeedService(repo, FeedServiceOptions{Flags: featureflags.NewManager(flags)})
}

func TestListPosts_Validation(t *testing.T) {
	svc := newTestFeedService(noopPostRepo(), "")

	_, err := svc.ListPosts(context.Background(), ListPostsInput{Skip: -1, Take: 10})
	assertValidationError(t, err, "Skip cannot be negative.")

	_, err = svc.ListPosts(context.Background(), ListPostsInput{Take: 0})
	assertValidationError(t, err, "Take must be greater than zero.")
}

func TestListPosts_LargeTakeIsServedInBoundedPages(t *testing.T) {
	repo := noopPostRepo()
	var gotQuery repository.PostQuery
	repo.listFn = func(_ context.Context, q repository.PostQuery) ([]*models.Post, error) {
		gotQuery = q
		return nil, nil
	}

	page, err := newTestFeedService(repo, "").ListPosts(context.Background(), ListPostsInput{Skip: 500, Take: 250})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, gotQuery.Take)
	assert.Equal(t, 500, gotQuery.Skip)
	assert.Equal(t, 3, page.CurrentPage, "page number follows the requested take")
}

func TestListPosts_PagingAndFilters(t *testing.T) {
	tests := []struct {
		skip, take, wantPage int
	}{
		{0, 10, 1},
		{10, 5, 3},
		{7, 5, 2},
	}
	for _, tt := range tests {
		repo := noopPostRepo()
		var gotQuery repository.PostQuery
		var gotFilter repository.PostFilter
		repo.listFn = func(_ context.Context, q repository.PostQuery) ([]*models.Post, error) {
			gotQuery = q
			return nil, nil
		}
		repo.countFn = func(_ context.Context, f repository.PostFilter) (int64, error) {
			gotFilter = f
			return 42, nil
		}

		page, err := newTestFeedService(repo, "").ListPosts(context.Background(), ListPostsInput{
			Skip: tt.skip, Take: tt.take, SortBy: "Trending", Keyword: "teste", AuthorID: &author,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.wantPage, page.CurrentPage)
		assert.Equal(t, int64(42), page.TotalPosts)
		assert.NotNil(t, page.Posts)
		assert.Equal(t, models.SortTrending, gotQuery.Sort)
		assert.Equal(t, tt.skip, gotQuery.Skip)
		assert.Equal(t, tt.take, gotQuery.Take)
		assert.Equal(t, "teste", gotFilter.Keyword)
		assert.Equal(t, &author, gotFilter.AuthorID)
	}
}

func TestNormalizeSort(t *testing.T) {
	assert.Equal(t, models.SortTrending, NormalizeSort("trending"))
	assert.Equal(t, models.SortTrending, NormalizeSort(" TRENDING "))
	assert.Equal(t, models.SortLatest, NormalizeSort(""))
	assert.Equal(t, models.SortLatest, NormalizeSort("oldest"))
}

func TestNewPostView_UnrollsOneLevel(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	grandID := uint(1)
	grand := &models.Post{ID: grandID, Content: strPtr("grand"), User: models.User{ID: other, Username: "user2"}}
	middle := &models.Post{
		ID:             2,
		Content:        strPtr("middle"),
		User:           models.User{ID: other, Username: "user2"},
		OriginalPostID: &grandID,
		OriginalPost:   grand,
	}
	middleID := uint(2)
	top := &models.Post{
		ID:             3,
		CreatedAt:      created,
		User:           models.User{ID: author, Name: "user1", Username: "user1", CreatedAt: created},
		OriginalPostID: &middleID,
		OriginalPost:   middle,
	}

	view := NewPostView(top)
	assert.Equal(t, uint(3), view.ID)
	assert.Nil(t, view.Content)
	assert.Equal(t, "user1", view.User.Username)
	require.NotNil(t, view.OriginalPost)
	assert.Equal(t, uint(2), view.OriginalPost.ID)
	assert.Nil(t, view.OriginalPost.OriginalPost)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var shape map[string]any
	require.NoError(t, json.Unmarshal(raw, &shape))
	assert.Contains(t, shape, "createdAt")
	assert.Contains(t, shape, "user")
	original := shape["originalPost"].(map[string]any)
	assert.NotContains(t, original, "originalPost")

	root := NewPostView(grand)
	assert.Nil(t, root.OriginalPost)
}

func TestListPosts_CachedUntilWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	repo := noopPostRepo()
	lists := 0
	repo.listFn = func(_ context.Context, _ repository.PostQuery) ([]*models.Post, error) {
		lists++
		return []*models.Post{{ID: uint(lists), Content: strPtr("p"), User: models.User{ID: author}}}, nil
	}
	svc := newTestFeedService(repo, "feed_cache=on")
	in := ListPostsInput{Take: 10}

	first, err := svc.ListPosts(context.Background(), in)
	require.NoError(t, err)
	second, err := svc.ListPosts(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, lists)
	assert.Equal(t, first.Posts[0].ID, second.Posts[0].ID)

	// A successful creation retires cached pages.
	_, err = newTestPostService(noopPostRepo(), "").CreatePost(context.Background(), CreatePostInput{UserID: author, Content: "new"})
	require.NoError(t, err)

	third, err := svc.ListPosts(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 2, lists)
	assert.Equal(t, uint(2), third.Posts[0].ID)
}

func TestListPosts_CacheDisabledByFlag(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	repo := noopPostRepo()
	lists := 0
	repo.listFn = func(_ context.Context, _ repository.PostQuery) ([]*models.Post, error) {
		lists++
		return nil, nil
	}
	svc := newTestFeedService(repo, "feed_cache=off")

	for i := 0; i < 2; i++ {
		_, err := svc.ListPosts(context.Background(), ListPostsInput{Take: 10})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, lists)
}

func TestGetPost(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = originalBy(other, 5)
	svc := newTestFeedService(repo, "")

	view, err := svc.GetPost(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), view.ID)

	_, err = svc.GetPost(context.Background(), 6)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListPosts_ErrorPropagates(t *testing.T) {
	repo := noopPostRepo()
	boom := models.NewInternalError(assert.AnError)
	repo.countFn = func(_ context.Context, _ repository.PostFilter) (int64, error) { return 0, boom }

	_, err := newTestFeedService(repo, "").ListPosts(context.Background(), ListPostsInput{Take: 1, AuthorID: &uuid.Nil})
	assert.ErrorIs(t, err, boom)
}
