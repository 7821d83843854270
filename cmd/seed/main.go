// Package main seeds a development database with demo accounts and stories.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/abdotaker608/golden-pens-api/internal/auth"
	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/domain"
	"github.com/abdotaker608/golden-pens-api/internal/id"
	"github.com/abdotaker608/golden-pens-api/internal/logger"
	"github.com/abdotaker608/golden-pens-api/internal/store"
	"github.com/abdotaker608/golden-pens-api/internal/store/sqlite"
)

const demoPassword = "golden-pens-demo"

type demoAuthor struct {
	email     string
	firstName string
	lastName  string
	nickname  string
	provider  bool
	stories   []demoStory
}

type demoStory struct {
	title       string
	description string
	tags        []string
	category    domain.Category
	chapters    []string
}

var demoAuthors = []demoAuthor{
	{
		email: "amina@goldenpens.dev", firstName: "Amina", lastName: "Haddad", nickname: "inkwell",
		stories: []demoStory{
			{
				title:       "The Cartographer's Daughter",
				description: "A mapmaker's apprentice discovers the coastline keeps moving.",
				tags:        []string{"adventure", "mystery"},
				category:    domain.CategoryNovel,
				chapters:    []string{"The Shifting Coast", "Inland", "The Last Survey"},
			},
			{
				title:       "Letters Never Sent",
				description: "Short pieces from a drawer that was never opened.",
				tags:        []string{"letters"},
				category:    domain.CategoryShortStory,
				chapters:    []string{"To My Brother", "To the Sea"},
			},
		},
	},
	{
		email: "omar@goldenpens.dev", firstName: "Omar", lastName: "Khalil", nickname: "nightowl",
		provider: true,
		stories: []demoStory{
			{
				title:       "Midnight Frequencies",
				description: "A late-night radio host starts taking calls from the future.",
				tags:        []string{"scifi", "radio"},
				category:    domain.CategoryNovel,
				chapters:    []string{"Static", "The First Caller"},
			},
		},
	},
	{
		email: "lina@goldenpens.dev", firstName: "Lina", lastName: "Mansour", nickname: "quietpen",
		stories: []demoStory{
			{
				title:    "Fragments",
				tags:     []string{"poetry"},
				category: domain.CategoryPoetry,
				chapters: []string{"I", "II", "III"},
			},
		},
	},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if cfg.App.Environment == "production" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := sqlite.Open(cfg.DatabasePath(), log.Logger)
	if err != nil {
		log.Fatal("Failed to open database", "path", cfg.DatabasePath(), "error", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := seed(ctx, db); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}

	log.Info("Demo data seeded",
		"authors", len(demoAuthors),
		"password", demoPassword,
		"database", cfg.DatabasePath(),
	)
}

func seed(ctx context.Context, db store.Store) error {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	var userIDs []string
	for _, a := range demoAuthors {
		userID, err := seedAuthor(ctx, db, a, hash)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.email, err)
		}
		userIDs = append(userIDs, userID)
	}

	// Everyone follows the first author, the first follows the second.
	for _, followerID := range userIDs[1:] {
		if _, err := db.ToggleFollow(ctx, userIDs[0], followerID); err != nil {
			return err
		}
	}
	if _, err := db.ToggleFollow(ctx, userIDs[1], userIDs[0]); err != nil {
		return err
	}
	return nil
}

func seedAuthor(ctx context.Context, db store.Store, a demoAuthor, passwordHash string) (string, error) {
	if existing, err := db.GetUserByEmail(ctx, a.email); err == nil {
		return existing.ID, nil // already seeded
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	accessToken, err := auth.GenerateAccessToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	user := &domain.User{
		ID:            id.MustGenerate("user"),
		Email:         a.email,
		FirstName:     a.firstName,
		LastName:      a.lastName,
		EmailVerified: true,
		AccessToken:   accessToken,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if a.provider {
		user.SocialID = uuid.NewString()
	} else {
		user.PasswordHash = passwordHash
	}
	if err := db.CreateUser(ctx, user); err != nil {
		return "", err
	}
	if err := db.CreateAuthor(ctx, &domain.Author{UserID: user.ID, Nickname: a.nickname}); err != nil {
		return "", err
	}

	for i, s := range a.stories {
		story := &domain.Story{
			ID:          id.MustGenerate("story"),
			AuthorID:    user.ID,
			Title:       s.title,
			Description: s.description,
			Tags:        s.tags,
			Category:    s.category,
			CreatedAt:   now.Add(-time.Duration(i*24) * time.Hour),
		}
		if story.Tags == nil {
			story.Tags = []string{}
		}
		if err := db.CreateStory(ctx, story); err != nil {
			return "", err
		}

		for n, title := range s.chapters {
			chapter := &domain.Chapter{
				ID:        id.MustGenerate("chapter"),
				StoryID:   story.ID,
				Title:     title,
				Content:   fmt.Sprintf("Chapter %d of %s.\n\nThe words go here.", n+1, s.title),
				CreatedAt: story.CreatedAt.Add(time.Duration(n) * time.Hour),
			}
			if err := db.CreateChapter(ctx, chapter); err != nil {
				return "", err
			}
		}
	}
	return user.ID, nil
}
