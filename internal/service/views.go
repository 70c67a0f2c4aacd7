package service

import (
	"time"

	"posterr/internal/models"

	"github.com/google/uuid"
)

// AuthorView is the author summary embedded in every PostView.
type AuthorView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostView is the feed representation of a post. OriginalPost is set only
// for reposts and never carries an OriginalPost of its own.
type PostView struct {
	ID           uint       `json:"id"`
	Content      *string    `json:"content"`
	CreatedAt    time.Time  `json:"createdAt"`
	User         AuthorView `json:"user"`
	OriginalPost *PostView  `json:"originalPost,omitempty"`
}

// UserView is a profile with its lifetime post count.
type UserView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
	TotalPosts int64     `json:"totalPosts"`
}

// FeedPage is one page of the feed together with the filtered total.
type FeedPage struct {
	CurrentPage int        `json:"currentPage"`
	TotalPosts  int64      `json:"totalPosts"`
	Posts       []PostView `json:"posts"`
}

func newAuthorView(u models.User) AuthorView {
	return AuthorView{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// NewPostView shapes p, unrolling its original post exactly one level.
func NewPostView(p *models.Post) PostView {
	view := flatPostView(p)
	if p.OriginalPost != nil {
		original := flatPostView(p.OriginalPost)
		view.OriginalPost = &original
	}
	return view
}

func flatPostView(p *models.Post) PostView {
	return PostView{
		ID:        p.ID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		User:      newAuthorView(p.User),
	}
}

func newUserView(u models.User, totalPosts int64) UserView {
	return UserView{
		ID:         u.ID,
		Name:       u.Name,
		Username:   u.Username,
		CreatedAt:  u.CreatedAt,
		TotalPosts: totalPosts,
	}
}
