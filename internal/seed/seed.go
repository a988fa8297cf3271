// Package seed fills a database with demo users, posts and interactions.
// Every write goes through the engine, so seeded data carries the same
// notifications and constraints as real traffic.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pulse/internal/database"
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/service"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	PostsPerUser int
	// FollowRatio is the chance that any user follows any other user.
	FollowRatio float64
	// LikeRatio is the chance that any user likes any post.
	LikeRatio   float64
	MaxComments int
	ShouldClean bool
	// RandSeed fixes the generated content. Zero picks a time-based seed.
	RandSeed int64
}

// DefaultOptions is a small but well-connected demo data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:     20,
		PostsPerUser: 3,
		FollowRatio:  0.3,
		LikeRatio:    0.2,
		MaxComments:  3,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users    int `json:"users"`
	Posts    int `json:"posts"`
	Follows  int `json:"follows"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// Seeder drives the engine with generated content.
type Seeder struct {
	db      *gorm.DB
	engine  *service.Engine
	factory *Factory
	opts    Options
}

// NewSeeder binds a seeder to db and the engine that writes to it.
func NewSeeder(db *gorm.DB, engine *service.Engine, opts Options) *Seeder {
	if opts.RandSeed == 0 {
		opts.RandSeed = time.Now().UnixNano()
	}
	return &Seeder{db: db, engine: engine, factory: NewFactory(opts.RandSeed), opts: opts}
}

// Run seeds users, then the follow graph, then posts with likes and comments.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	log := middleware.Logger.With(slog.String("component", "seed"))
	log.InfoContext(ctx, "Starting database seeding",
		slog.Int("users", s.opts.NumUsers),
		slog.Int("posts_per_user", s.opts.PostsPerUser),
	)

	if s.opts.ShouldClean {
		if err := Clean(ctx, s.db); err != nil {
			return summary, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	users, err := s.seedUsers(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to create users: %w", err)
	}
	summary.Users = len(users)

	if summary.Follows, err = s.seedFollows(ctx, users); err != nil {
		return summary, fmt.Errorf("failed to create follows: %w", err)
	}

	posts, err := s.seedPosts(ctx, users)
	if err != nil {
		return summary, fmt.Errorf("failed to create posts: %w", err)
	}
	summary.Posts = len(posts)

	if summary.Likes, summary.Comments, err = s.seedReactions(ctx, users, posts); err != nil {
		return summary, fmt.Errorf("failed to create reactions: %w", err)
	}

	log.InfoContext(ctx, "Database seeding completed",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.Int("follows", summary.Follows),
		slog.Int("likes", summary.Likes),
		slog.Int("comments", summary.Comments),
	)
	return summary, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]uint, error) {
	ids := make([]uint, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		profile, err := s.engine.Identity.Upsert(ctx, s.factory.User(i))
		if err != nil {
			return nil, err
		}
		if _, err := s.engine.Identity.UpdateProfile(ctx, s.factory.Profile(profile.ID)); err != nil {
			return nil, err
		}
		ids = append(ids, profile.ID)
	}
	return ids, nil
}

func (s *Seeder) seedFollows(ctx context.Context, users []uint) (int, error) {
	created := 0
	for _, follower := range users {
		for _, target := range users {
			if follower == target || !s.factory.Chance(s.opts.FollowRatio) {
				continue
			}
			err := s.engine.Follows.Follow(ctx, follower, target)
			if models.IsCode(err, models.CodeConflict) {
				continue
			}
			if err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []uint) ([]uint, error) {
	ids := make([]uint, 0, len(users)*s.opts.PostsPerUser)
	for _, author := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			post, err := s.engine.Posts.CreatePost(ctx, s.factory.Post(author))
			if err != nil {
				return nil, err
			}
			ids = append(ids, post.ID)
		}
	}
	return ids, nil
}

func (s *Seeder) seedReactions(ctx context.Context, users, posts []uint) (int, int, error) {
	likes, comments := 0, 0
	if len(users) == 0 {
		return 0, 0, nil
	}
	for _, post := range posts {
		for _, user := range users {
			if !s.factory.Chance(s.opts.LikeRatio) {
				continue
			}
			if _, err := s.engine.Likes.ToggleLike(ctx, user, post); err != nil {
				return likes, comments, err
			}
			likes++
		}

		n := s.factory.Intn(s.opts.MaxComments + 1)
		for i := 0; i < n; i++ {
			commenter := users[s.factory.Intn(len(users))]
			if _, err := s.engine.Comments.CreateComment(ctx, s.factory.Comment(commenter, post)); err != nil {
				return likes, comments, err
			}
			comments++
		}
	}
	return likes, comments, nil
}

// Clean removes all rows, children first.
func Clean(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.InfoContext(ctx, "Clearing existing data")
	db = db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE notifications, follows, likes, comments, posts, users RESTART IDENTITY CASCADE`).Error
	}

	all := database.PersistentModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(all[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
