package service

import (
	"context"
	"strings"
	"time"

	"posterr/internal/cache"
	"posterr/internal/featureflags"
	"posterr/internal/models"
	"posterr/internal/observability"
	"posterr/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// MaxPageSize bounds the rows read for one page. Larger takes are accepted
// and served at most MaxPageSize posts.
const MaxPageSize = 100

// ListPostsInput selects one feed page.
type ListPostsInput struct {
	Skip     int
	Take     int
	SortBy   string
	Keyword  string
	AuthorID *uuid.UUID
}

// FeedServiceOptions tunes feed caching. Zero values take defaults.
type FeedServiceOptions struct {
	CacheTTL time.Duration
	Flags    *featureflags.Manager
}

type FeedService struct {
	postRepo repository.PostRepository
	opts     FeedServiceOptions
}

func NewFeedService(postRepo repository.PostRepository, opts FeedServiceOptions) *FeedService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.ListTTL
	}
	return &FeedService{postRepo: postRepo, opts: opts}
}

// NormalizeSort maps any token other than "trending" to "latest".
func NormalizeSort(sortBy string) string {
	if strings.EqualFold(strings.TrimSpace(sortBy), models.SortTrending) {
		return models.SortTrending
	}
	return models.SortLatest
}

func (in ListPostsInput) validate() error {
	if in.Skip < 0 {
		return models.NewValidationError("Skip cannot be negative.")
	}
	if in.Take <= 0 {
		return models.NewValidationError("Take must be greater than zero.")
	}
	return nil
}

// ListPosts returns one filtered, sorted page and the total number of posts
// matching the same filter.
func (s *FeedService) ListPosts(ctx context.Context, in ListPostsInput) (*FeedPage, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	sortBy := NormalizeSort(in.SortBy)

	span, ctx := observability.NewSpan(ctx, "FeedService.ListPosts",
		attribute.String("feed.sort", sortBy),
		attribute.Int("feed.skip", in.Skip),
		attribute.Int("feed.take", in.Take))
	defer span.End()

	q := repository.PostQuery{
		PostFilter: repository.PostFilter{Keyword: in.Keyword, AuthorID: in.AuthorID},
		Skip:       in.Skip,
		Take:       min(in.Take, MaxPageSize),
		Sort:       sortBy,
	}
	currentPage := in.Skip/in.Take + 1

	var page FeedPage
	load := func() error {
		p, err := s.loadPage(ctx, q, currentPage)
		if err != nil {
			return err
		}
		page = *p
		return nil
	}

	if !s.opts.Flags.Enabled(featureflags.FeedCache, uuid.Nil) {
		if err := load(); err != nil {
			span.SetError(err)
			return nil, err
		}
		return &page, nil
	}

	author := ""
	if in.AuthorID != nil {
		author = in.AuthorID.String()
	}
	key := cache.PostsListKey(cache.PostsListVersionValue(ctx), q.Skip, in.Take, q.Sort, q.Keyword, author)
	result := "hit"
	err := cache.Aside(ctx, key, &page, s.opts.CacheTTL, func() error {
		result = "miss"
		return load()
	})
	observability.FeedCacheResults.WithLabelValues(result).Inc()
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return &page, nil
}

func (s *FeedService) loadPage(ctx context.Context, q repository.PostQuery, currentPage int) (*FeedPage, error) {
	posts, err := s.postRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.Count(ctx, q.PostFilter)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, NewPostView(p))
	}
	return &FeedPage{
		CurrentPage: currentPage,
		TotalPosts:  total,
		Posts:       views,
	}, nil
}

// GetPost returns a single post view or a NOT_FOUND AppError.
func (s *FeedService) GetPost(ctx context.Context, id uint) (*PostView, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewPostView(post)
	return &view, nil
}
