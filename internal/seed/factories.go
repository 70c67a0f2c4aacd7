package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"
	"unicode/utf8"

	"posterr/internal/middleware"
	"posterr/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postSpacing keeps any 24h window at four posts or fewer per author, so a
// seeded account can still post right away.
const postSpacing = 7 * time.Hour

// Options tune the fake-content factory.
type Options struct {
	// DryRun builds entities without writing them.
	DryRun bool
	// MaxDays bounds how far back post timestamps reach.
	MaxDays int
	// Seed makes generated content reproducible when non-zero.
	Seed int64
	// RepostRatio is the share of generated posts that are reposts.
	RepostRatio float64
	// QuoteRatio is the share of reposts that carry a quote.
	QuoteRatio float64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	rng    *rand.Rand
	now    time.Time
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		now:    time.Now().UTC().Truncate(time.Microsecond),
		nextID: 1000,
	}
}

// Content returns fake post text within the content limit.
func (f *Factory) Content() string {
	text := f.faker.Sentence(f.rng.Intn(20) + 4)
	if utf8.RuneCountInString(text) > models.MaxContentLength {
		text = string([]rune(text)[:models.MaxContentLength])
	}
	return text
}

// BuildPost constructs an unsaved root post for user.
func (f *Factory) BuildPost(user models.User, at time.Time) *models.Post {
	content := f.Content()
	return &models.Post{Content: &content, UserID: user.ID, CreatedAt: at}
}

// BuildRepost constructs an unsaved repost of original, quoting it when
// quote is set.
func (f *Factory) BuildRepost(user models.User, original *models.Post, quote bool, at time.Time) *models.Post {
	p := &models.Post{UserID: user.ID, OriginalPostID: &original.ID, CreatedAt: at}
	if quote {
		content := f.Content()
		p.Content = &content
	}
	return p
}

// CreatePost persists p. Posts are written one at a time because later
// reposts need the ids of earlier posts.
func (f *Factory) CreatePost(ctx context.Context, p *models.Post) error {
	if f.opts.DryRun {
		f.nextID++
		p.ID = f.nextID
		middleware.Logger.DebugContext(ctx, "[dry-run] CreatePost", "id", p.ID, "user", p.UserID)
		return nil
	}
	return f.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// Posts generates n posts spread over users. Every post respects the
// creation rules: authors stay below five posts per 24h, a user reposts
// a given post at most once, and nobody reposts their own post.
func (f *Factory) Posts(ctx context.Context, users []models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 || n <= 0 {
		return nil, nil
	}

	// Each author walks backwards from now in postSpacing steps.
	next := make(map[int]time.Time, len(users))
	for i := range users {
		next[i] = f.now.Add(-time.Duration(f.rng.Intn(60)) * time.Minute)
	}
	oldest := f.now.Add(-time.Duration(f.opts.MaxDays) * 24 * time.Hour)

	type slot struct {
		author int
		at     time.Time
	}
	slots := make([]slot, 0, n)
	for len(slots) < n {
		progressed := false
		for i := range users {
			if len(slots) == n {
				break
			}
			if next[i].Before(oldest) {
				continue
			}
			slots = append(slots, slot{author: i, at: next[i]})
			next[i] = next[i].Add(-postSpacing)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	if len(slots) < n {
		middleware.Logger.WarnContext(ctx, "seed window too small, generating fewer posts",
			"requested", n, "generated", len(slots))
	}

	// Oldest first so reposts always point backwards in time.
	for i, j := 0, len(slots)-1; i < j; i, j = i+1, j-1 {
		slots[i], slots[j] = slots[j], slots[i]
	}

	var created []*models.Post
	reposted := make(map[string]bool)
	for _, s := range slots {
		author := users[s.author]
		var p *models.Post
		if original := f.pickOriginal(created, author, reposted); original != nil {
			p = f.BuildRepost(author, original, f.rng.Float64() < f.opts.QuoteRatio, s.at)
			reposted[repostKey(author, original.ID)] = true
		} else {
			p = f.BuildPost(author, s.at)
		}
		if err := f.CreatePost(ctx, p); err != nil {
			return created, fmt.Errorf("create post: %w", err)
		}
		created = append(created, p)
	}
	return created, nil
}

func (f *Factory) pickOriginal(created []*models.Post, author models.User, reposted map[string]bool) *models.Post {
	if len(created) == 0 || f.rng.Float64() >= f.opts.RepostRatio {
		return nil
	}
	for attempt := 0; attempt < 5; attempt++ {
		candidate := created[f.rng.Intn(len(created))]
		if candidate.UserID == author.ID || reposted[repostKey(author, candidate.ID)] {
			continue
		}
		return candidate
	}
	return nil
}

func repostKey(u models.User, postID uint) string {
	return fmt.Sprintf("%s:%d", u.ID, postID)
}
