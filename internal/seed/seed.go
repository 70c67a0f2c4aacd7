// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"posterr/internal/middleware"
	"posterr/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures/users.yaml
var defaultFixture []byte

// FixtureUser is one account in a user fixture.
type FixtureUser struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
}

// Fixture is the YAML document read by LoadFixture.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
}

// LoadFixture reads a user fixture from path, or the embedded default
// accounts when path is empty.
func LoadFixture(path string) (*Fixture, error) {
	raw := defaultFixture
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}
		raw = b
	}
	return ParseFixture(raw)
}

// ParseFixture decodes and validates a YAML user fixture.
func ParseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for i, u := range f.Users {
		if strings.TrimSpace(u.Username) == "" {
			return nil, fmt.Errorf("fixture user %d: username is required", i)
		}
		if u.ID != "" {
			if _, err := uuid.Parse(u.ID); err != nil {
				return nil, fmt.Errorf("fixture user %q: invalid id: %w", u.Username, err)
			}
		}
	}
	return &f, nil
}

// Models converts the fixture into users, generating ids where omitted.
// Name falls back to the username.
func (f *Fixture) Models() []models.User {
	out := make([]models.User, 0, len(f.Users))
	for _, u := range f.Users {
		id := uuid.New()
		if u.ID != "" {
			id = uuid.MustParse(u.ID)
		}
		name := u.Name
		if name == "" {
			name = u.Username
		}
		out = append(out, models.User{ID: id, Name: name, Username: u.Username})
	}
	return out
}

// Users inserts the fixture accounts when the users table is empty and
// returns how many were created. Existing data is never touched.
func Users(ctx context.Context, db *gorm.DB, fixture *Fixture) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		middleware.Logger.InfoContext(ctx, "users present, skipping seed", "count", count)
		return 0, nil
	}

	users := fixture.Models()
	if len(users) == 0 {
		return 0, nil
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&users).Error; err != nil {
		return 0, fmt.Errorf("seed users: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "seeded users", "count", len(users))
	return len(users), nil
}

// Clear removes all posts and users.
func Clear(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.User{}).Error
	})
}
