package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"posterr/internal/middleware"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix    = "user:%s"
	PostKeyPrefix    = "post:%d"
	PostsListPrefix  = "posts:list:v%d:%s"
	PostsListVersion = "posts:list:version"
)

const (
	UserTTL = 10 * time.Minute
	PostTTL = 30 * time.Minute
	// ListTTL bounds how long a feed page may be served; writes bump the
	// version so a page never outlives the data it was built from.
	ListTTL = 30 * time.Second
)

func UserKey(userID uuid.UUID) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// PostsListKey builds the key of one feed page under the given list version.
// The query parts are hashed because keywords are arbitrary user text.
func PostsListKey(version int64, parts ...any) string {
	h := sha1.New()
	for _, p := range parts {
		_, _ = fmt.Fprintf(h, "%v\x1f", p)
	}
	return fmt.Sprintf(PostsListPrefix, version, hex.EncodeToString(h.Sum(nil)))
}

// PostsListVersionValue returns the current feed version. 0 means no write
// has been recorded, or Redis is unavailable.
func PostsListVersionValue(ctx context.Context) int64 {
	if client == nil {
		return 0
	}
	v, err := client.Get(ctx, PostsListVersion).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "feed version read failed", slog.String("error", err.Error()))
		}
		return 0
	}
	return v
}

// InvalidatePostsList retires every cached feed page by bumping the version.
func InvalidatePostsList(ctx context.Context) {
	if client == nil {
		return
	}
	if err := client.Incr(ctx, PostsListVersion).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "feed invalidation failed", slog.String("error", err.Error()))
	}
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}
