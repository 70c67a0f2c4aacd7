package repository

import (
	"context"
	"errors"
	"time"

	"posterr/internal/cache"
	"posterr/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows the feed. Zero values disable a filter.
type PostFilter struct {
	Keyword  string
	AuthorID *uuid.UUID
}

// PostQuery is one page of the feed.
type PostQuery struct {
	PostFilter
	Skip int
	Take int
	Sort string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, q PostQuery) ([]*models.Post, error)
	Count(ctx context.Context, f PostFilter) (int64, error)
	CountByUser(ctx context.Context, userID uuid.UUID, since, until *time.Time) (int64, error)
	CountByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	HasReposted(ctx context.Context, userID uuid.UUID, originalPostID uint) (bool, error)
	LockAuthor(ctx context.Context, userID uuid.UUID) error
	Transaction(ctx context.Context, fn func(PostRepository) error) error
}

// postRepository implements PostRepository
type postRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// reader returns the replica outside transactions. Reads inside a
// transaction must see its own writes and locks.
func (r *postRepository) reader(ctx context.Context) *gorm.DB {
	if r.inTx {
		return r.db.WithContext(ctx)
	}
	return readDB(r.db).WithContext(ctx)
}

// Create inserts post without touching its associations. A duplicate
// (author, original) pair maps to models.ErrAlreadyReposted.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return models.ErrAlreadyReposted
	}
	return models.NewInternalError(err)
}

// GetByID loads a post with its author and, for reposts, the original post
// and the original's author. Posts are immutable so the result is cached.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		err := r.reader(ctx).
			Preload("User").
			Preload("OriginalPost").
			Preload("OriginalPost.User").
			First(&post, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		if err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	var posts []*models.Post
	base := r.applyFilter(r.reader(ctx).Model(&models.Post{}), q.PostFilter).
		Preload("User").
		Preload("OriginalPost").
		Preload("OriginalPost.User")
	err := r.applySort(base, q.Sort).
		Offset(q.Skip).
		Limit(q.Take).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applySort appends the ORDER BY clause for the requested sort. repost_count
// is a SELECT alias, which every supported engine accepts in ORDER BY.
// Ties fall back to recency and then id so paging is stable.
func (r *postRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case models.SortTrending:
		return db.
			Select("posts.*, (SELECT COUNT(*) FROM posts AS rp WHERE rp.original_post_id = posts.id) AS repost_count").
			Order("repost_count DESC").
			Order("posts.created_at DESC").
			Order("posts.id DESC")
	default: // "latest" and anything unrecognized
		return db.Order("posts.created_at DESC").Order("posts.id DESC")
	}
}

func (r *postRepository) applyFilter(db *gorm.DB, f PostFilter) *gorm.DB {
	if f.Keyword != "" {
		db = db.Where(containsClause(r.db.Dialector.Name()), f.Keyword)
	}
	if f.AuthorID != nil {
		db = db.Where("posts.user_id = ?", *f.AuthorID)
	}
	return db
}

func (r *postRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var total int64
	if err := r.applyFilter(r.reader(ctx).Model(&models.Post{}), f).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// CountByUser counts root posts and reposts by userID created within
// [since, until]. Nil bounds are open.
func (r *postRepository) CountByUser(ctx context.Context, userID uuid.UUID, since, until *time.Time) (int64, error) {
	q := r.reader(ctx).Model(&models.Post{}).Where("user_id = ?", userID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	if until != nil {
		q = q.Where("created_at <= ?", *until)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

type userPostCount struct {
	UserID uuid.UUID
	Total  int64
}

// CountByUsers returns lifetime post counts keyed by author. Users without
// posts are absent from the map. An empty userIDs counts every author.
func (r *postRepository) CountByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	q := r.reader(ctx).Model(&models.Post{}).
		Select("user_id, COUNT(*) AS total").
		Group("user_id")
	if len(userIDs) > 0 {
		q = q.Where("user_id IN ?", userIDs)
	}
	var rows []userPostCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

func (r *postRepository) HasReposted(ctx context.Context, userID uuid.UUID, originalPostID uint) (bool, error) {
	var n int64
	err := r.reader(ctx).Model(&models.Post{}).
		Where("user_id = ? AND original_post_id = ?", userID, originalPostID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// LockAuthor takes a row lock on the author so concurrent creations by the
// same user serialize on the quota check. SQLite has no row locks; its
// writers are already serialized.
func (r *postRepository) LockAuthor(ctx context.Context, userID uuid.UUID) error {
	q := r.db.WithContext(ctx).Model(&models.User{}).Select("id")
	if r.db.Dialector.Name() != dialectSQLite {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var user models.User
	err := q.Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewUserNotFoundError(userID)
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Transaction runs fn against a repository bound to a single transaction.
func (r *postRepository) Transaction(ctx context.Context, fn func(PostRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postRepository{db: tx, inTx: true})
	})
}
