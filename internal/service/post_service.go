// Package service holds the business rules for posting, the feed and profiles.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"posterr/internal/cache"
	"posterr/internal/featureflags"
	"posterr/internal/middleware"
	"posterr/internal/models"
	"posterr/internal/observability"
	"posterr/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Quota defaults.
const (
	DefaultDailyLimit  = 5
	DefaultQuotaWindow = 24 * time.Hour
)

// Creation kinds, also used as metric labels.
const (
	KindPost   = "post"
	KindRepost = "repost"
	KindQuote  = "quote"
)

// CreateRequest is either a CreatePostInput or a CreateRepostInput.
type CreateRequest interface {
	author() uuid.UUID
	toPost() (*models.Post, error)
}

// CreatePostInput creates a root post.
type CreatePostInput struct {
	UserID  uuid.UUID
	Content string
}

// CreateRepostInput reposts OriginalPostID. A non-blank Content makes it a
// quote repost.
type CreateRepostInput struct {
	UserID         uuid.UUID
	Content        *string
	OriginalPostID uint
}

func (in CreatePostInput) author() uuid.UUID { return in.UserID }

func (in CreatePostInput) toPost() (*models.Post, error) {
	if in.UserID == uuid.Nil {
		return nil, models.NewValidationError("User Id is required.")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required.")
	}
	if err := checkContentLength(in.Content); err != nil {
		return nil, err
	}
	content := in.Content
	return &models.Post{UserID: in.UserID, Content: &content}, nil
}

func (in CreateRepostInput) author() uuid.UUID { return in.UserID }

func (in CreateRepostInput) toPost() (*models.Post, error) {
	if in.UserID == uuid.Nil {
		return nil, models.NewValidationError("User Id is required.")
	}
	if in.OriginalPostID == 0 {
		return nil, models.NewValidationError("Post Id is required.")
	}
	var content *string
	if in.Content != nil && strings.TrimSpace(*in.Content) != "" {
		if err := checkContentLength(*in.Content); err != nil {
			return nil, err
		}
		c := *in.Content
		content = &c
	}
	original := in.OriginalPostID
	return &models.Post{UserID: in.UserID, Content: content, OriginalPostID: &original}, nil
}

func checkContentLength(content string) error {
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		return models.NewValidationError(
			fmt.Sprintf("Content exceeds maximum length of %d characters.", models.MaxContentLength))
	}
	return nil
}

// PostServiceOptions tunes the creation rules. Zero values take defaults.
type PostServiceOptions struct {
	DailyLimit int
	Window     time.Duration
	Flags      *featureflags.Manager
	Now        func() time.Time
}

type PostService struct {
	postRepo repository.PostRepository
	opts     PostServiceOptions
	locks    *keyedMutex
}

func NewPostService(postRepo repository.PostRepository, opts PostServiceOptions) *PostService {
	if opts.DailyLimit <= 0 {
		opts.DailyLimit = DefaultDailyLimit
	}
	if opts.Window <= 0 {
		opts.Window = DefaultQuotaWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &PostService{
		postRepo: postRepo,
		opts:     opts,
		locks:    newKeyedMutex(),
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	return s.Create(ctx, in)
}

func (s *PostService) CreateRepost(ctx context.Context, in CreateRepostInput) (*models.Post, error) {
	return s.Create(ctx, in)
}

// Create validates req and inserts exactly one post, or nothing on any
// failure. Checks run in order: author, quota, original, duplicate repost,
// self repost.
func (s *PostService) Create(ctx context.Context, req CreateRequest) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.Create",
		attribute.String("user.id", req.author().String()))
	defer span.End()

	post, err := req.toPost()
	if err != nil {
		s.reject(span, err)
		return nil, err
	}
	kind := creationKind(post)
	span.AddAttributes(attribute.String("post.kind", kind))

	unlock := s.locks.Lock(post.UserID.String())
	defer unlock()

	err = s.postRepo.Transaction(ctx, func(tx repository.PostRepository) error {
		if err := tx.LockAuthor(ctx, post.UserID); err != nil {
			return err
		}

		now := s.opts.Now().UTC().Truncate(time.Microsecond)
		since := now.Add(-s.opts.Window)
		count, err := tx.CountByUser(ctx, post.UserID, &since, &now)
		if err != nil {
			return err
		}
		if count >= int64(s.opts.DailyLimit) {
			return models.ErrQuotaExceeded
		}

		if post.OriginalPostID != nil {
			if err := s.checkRepost(ctx, tx, post.UserID, *post.OriginalPostID); err != nil {
				return err
			}
		}

		post.CreatedAt = now
		return tx.Create(ctx, post)
	})
	if err != nil {
		s.reject(span, err)
		return nil, err
	}

	cache.InvalidatePostsList(ctx)
	observability.PostsCreated.WithLabelValues(kind).Inc()
	span.AddAttributes(attribute.Int64("post.id", int64(post.ID)))
	return post, nil
}

func (s *PostService) checkRepost(ctx context.Context, tx repository.PostRepository, userID uuid.UUID, originalID uint) error {
	original, err := tx.GetByID(ctx, originalID)
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrOriginalPostNotFound
	}
	if err != nil {
		return err
	}

	reposted, err := tx.HasReposted(ctx, userID, originalID)
	if err != nil {
		return err
	}
	if reposted {
		return models.ErrAlreadyReposted
	}

	if original.UserID == userID && s.opts.Flags.Enabled(featureflags.BlockSelfRepost, userID) {
		return models.ErrSelfRepost
	}
	return nil
}

func (s *PostService) reject(span *observability.Span, err error) {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		observability.PostRejections.WithLabelValues(strings.ToLower(appErr.Code)).Inc()
		span.AddAttributes(attribute.String("error.code", appErr.Code))
		return
	}
	span.SetError(err)
	middleware.Logger.Error("post creation failed", "error", err)
}

func creationKind(p *models.Post) string {
	switch {
	case !p.IsRepost():
		return KindPost
	case p.Content != nil:
		return KindQuote
	default:
		return KindRepost
	}
}
