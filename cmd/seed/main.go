// Command main runs the database seeder for Posterr.
package main

import (
	"context"
	"flag"
	"log"

	"posterr/internal/bootstrap"
	"posterr/internal/config"
	"posterr/internal/repository"
	"posterr/internal/seed"
)

func main() {
	fixture := flag.String("fixture", "", "YAML user fixture (defaults to the built-in user1..user4)")
	numPosts := flag.Int("posts", 0, "Number of fake posts to generate")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build posts without writing them")
	days := flag.Int("days", 30, "How many days back post timestamps reach")
	repostRatio := flag.Float64("reposts", 0.3, "Share of generated posts that are reposts")
	quoteRatio := flag.Float64("quotes", 0.5, "Share of reposts that carry a quote")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible content (0 = time based)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: fixture=%q posts=%d clean=%v dry-run=%v", *fixture, *numPosts, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *shouldClean {
		if err := seed.Clear(ctx, db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := bootstrap.SeedUsers(ctx, db, *fixture); err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}

	if *numPosts > 0 {
		users, err := repository.NewUserRepository(db).List(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		factory := seed.NewFactory(db, seed.Options{
			DryRun:      *dryRun,
			MaxDays:     *days,
			Seed:        *randSeed,
			RepostRatio: *repostRatio,
			QuoteRatio:  *quoteRatio,
		})
		posts, err := factory.Posts(ctx, users, *numPosts)
		if err != nil {
			log.Fatalf("Post seeding failed: %v", err)
		}
		log.Printf("Generated %d posts for %d users", len(posts), len(users))
	}

	log.Println("All done!")
}
