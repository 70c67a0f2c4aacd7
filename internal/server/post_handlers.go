package server

import (
	"strings"

	"posterr/internal/middleware"
	"posterr/internal/models"
	"posterr/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

// CreateRepostRequest is the body of POST /api/posts/repost.
type CreateRepostRequest struct {
	UserID  string  `json:"userId"`
	Content *string `json:"content"`
	PostID  uint    `json:"postId"`
}

// parseAuthor accepts an empty id so the service reports the missing field.
// On a malformed id it writes the 400 and returns errResponseWritten.
func parseAuthor(c *fiber.Ctx, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		_ = respondCreateError(c, models.NewValidationError("Invalid user ID"))
		return uuid.Nil, errResponseWritten
	}
	middleware.WithUserID(c, id.String())
	return id, nil
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Creates a root post. Each user may create 5 posts or reposts per rolling 24 hours.
// @Tags posts
// @Accept json
// @Produce plain
// @Param request body CreatePostRequest true "Post"
// @Success 200 "Created"
// @Failure 400 {string} string "Validation or business-rule failure"
// @Failure 404 {string} string "Unknown user"
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return respondCreateError(c, models.NewValidationError("Invalid request body"))
	}
	userID, err := parseAuthor(c, req.UserID)
	if err != nil {
		return nil
	}

	if _, err := s.posts.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:  userID,
		Content: req.Content,
	}); err != nil {
		return respondCreateError(c, err)
	}
	c.Status(fiber.StatusOK)
	return nil
}

// CreateRepost handles POST /api/posts/repost
// @Summary Repost a post
// @Description Reposts postId, optionally quoting it. A user may repost a given post once.
// @Tags posts
// @Accept json
// @Produce plain
// @Param request body CreateRepostRequest true "Repost"
// @Success 200 "Created"
// @Failure 400 {string} string "Validation or business-rule failure"
// @Failure 404 {string} string "Unknown user"
// @Router /posts/repost [post]
func (s *Server) CreateRepost(c *fiber.Ctx) error {
	var req CreateRepostRequest
	if err := c.BodyParser(&req); err != nil {
		return respondCreateError(c, models.NewValidationError("Invalid request body"))
	}
	userID, err := parseAuthor(c, req.UserID)
	if err != nil {
		return nil
	}

	if _, err := s.posts.CreateRepost(c.UserContext(), service.CreateRepostInput{
		UserID:         userID,
		Content:        req.Content,
		OriginalPostID: req.PostID,
	}); err != nil {
		return respondCreateError(c, err)
	}
	c.Status(fiber.StatusOK)
	return nil
}

// GetPosts handles GET /api/posts
// @Summary List the feed
// @Tags posts
// @Produce json
// @Param skip query int false "Posts to skip" default(0)
// @Param take query int false "Page size (>= 1, at most 100 posts returned)" default(10)
// @Param sortBy query string false "latest or trending" default(latest)
// @Param keyword query string false "Case-sensitive content substring"
// @Param userId query string false "Author filter"
// @Success 200 {object} service.FeedPage
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return nil
	}
	take, err := queryInt(c, "take", 10)
	if err != nil {
		return nil
	}
	in := service.ListPostsInput{
		Skip:    skip,
		Take:    take,
		SortBy:  c.Query("sortBy"),
		Keyword: c.Query("keyword"),
	}
	if raw := c.Query("userId"); raw != "" {
		id, err := parseUUID(c, "userId", raw)
		if err != nil {
			return nil
		}
		in.AuthorID = &id
	}

	page, err := s.feed.ListPosts(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
// @Summary Get one post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.PostView
// @Failure 404 "Not found"
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.feed.GetPost(c.UserContext(), id)
	if err != nil {
		status := statusFor(err)
		if status == fiber.StatusNotFound {
			c.Status(fiber.StatusNotFound)
			return nil
		}
		return models.RespondWithError(c, status, err)
	}
	return c.JSON(view)
}
