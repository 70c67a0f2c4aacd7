package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxContentLength is the maximum number of characters in Post.Content.
const MaxContentLength = 777

// Feed sort tokens. Anything other than SortTrending orders by recency.
const (
	SortLatest   = "latest"
	SortTrending = "trending"
)

// Post is either a root post (OriginalPostID == nil) or a repost of another
// post. Content is nil for a plain repost.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Content        *string   `gorm:"size:777" json:"content"`
	UserID         uuid.UUID `gorm:"type:varchar(36);not null;index:idx_posts_user_created,priority:1;uniqueIndex:idx_posts_user_original,priority:1" json:"userId"`
	User           User      `gorm:"foreignKey:UserID" json:"user"`
	OriginalPostID *uint     `gorm:"index:idx_posts_original;uniqueIndex:idx_posts_user_original,priority:2" json:"originalPostId,omitempty"`
	OriginalPost   *Post     `gorm:"foreignKey:OriginalPostID" json:"originalPost,omitempty"`
	// RepostCount is computed by the trending feed query and never stored.
	RepostCount int64     `gorm:"->;-:migration" json:"repostCount"`
	CreatedAt   time.Time `gorm:"not null;index:idx_posts_user_created,priority:2" json:"createdAt"`
}

// IsRepost reports whether p references an original post.
func (p *Post) IsRepost() bool {
	return p.OriginalPostID != nil
}
