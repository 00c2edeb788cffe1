package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gosimple/slug"
	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"blogsphere/internal/app"
	"blogsphere/internal/auth"
	"blogsphere/internal/config"
	"blogsphere/internal/db"
	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/service"
)

const sampleImage = "https://picsum.photos/1200/800"

// SeedPost is one sample post. Author is an index into the seeded authors.
type SeedPost struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Author   int    `json:"author"`
}

var defaultPosts = []SeedPost{
	{"The Future of Artificial Intelligence", "Exploring the latest advancements in AI technology...", "tech", "published", 0},
	{"Morning Routine for Productivity", "Discover the best morning habits for peak performance...", "lifestyle", "published", 1},
	{"Modern Teaching Methods", "Innovative approaches to education in the digital age...", "education", "published", 0},
	{"Mental Health Awareness", "Understanding and managing mental health challenges...", "health", "published", 1},
	{"Blockchain Technology Explained", "Comprehensive guide to understanding blockchain...", "tech", "draft", 0},
	{"Sustainable Living Tips", "How to reduce your environmental footprint...", "lifestyle", "published", 1},
	{"Online Learning Platforms", "Top platforms for remote education...", "education", "published", 0},
	{"Nutrition for Athletes", "Optimal dietary plans for sports performance...", "health", "published", 1},
	{"Cybersecurity Best Practices", "Essential tips for protecting your digital assets...", "tech", "published", 0},
	{"Minimalist Lifestyle Benefits", "Why less might actually be more...", "lifestyle", "draft", 1},
	{"Yoga for Stress Relief", "Effective yoga poses for relaxation...", "health", "published", 1},
	{"Quantum Computing Basics", "Introduction to the future of computing...", "tech", "draft", 0},
}

type seedUser struct {
	name, email string
	role        model.Role
}

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	source := pflag.String("source", "", "optional URL of a JSON array of posts to seed instead of the built-in samples")
	password := pflag.String("password", "password123", "password for the seeded accounts")
	adminEmail := pflag.String("admin-email", "admin@example.com", "email of the seeded admin")
	pflag.Parse()

	log := logging.New(os.Stdout, "info", "text")
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error(ctx, "load config", "error", err)
		os.Exit(1)
	}
	if cfg.DBDriver == "memory" {
		log.Error(ctx, "seeding the memory driver has no effect, set DB_DRIVER to mysql or postgres")
		os.Exit(1)
	}

	posts := defaultPosts
	if *source != "" {
		log.Info(ctx, "fetching posts", "url", *source)
		if posts, err = fetchPosts(ctx, *source); err != nil {
			log.Error(ctx, "fetch posts", "error", err)
			os.Exit(1)
		}
	}

	dsn := cfg.MySQLDSN
	if cfg.DBDriver == "postgres" {
		dsn = cfg.PostgresDSN
	}
	gormDB, err := db.Open(cfg.DBDriver, dsn, false)
	if err != nil {
		log.Error(ctx, "connect database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Error(ctx, "migrate", "error", err)
		os.Exit(1)
	}

	users := []seedUser{
		{"Admin", *adminEmail, model.RoleAdmin},
		{"Jane Writer", "jane@example.com", model.RoleUser},
		{"John Author", "john@example.com", model.RoleUser},
	}
	created, skipped, err := seed(ctx, app.SQLRepositories(gormDB), log, users, *password, posts)
	if err != nil {
		log.Error(ctx, "seed failed", "error", err)
		os.Exit(1)
	}
	log.Info(ctx, "seed completed", "posts_created", created, "posts_skipped", skipped)
}

// seed creates the accounts and posts. Existing accounts are reused and posts whose
// slug already exists are skipped, so running it twice is harmless.
func seed(ctx context.Context, repos app.Repositories, log logging.Logger, users []seedUser, password string, posts []SeedPost) (created, skipped int, err error) {
	userService := service.NewUserService(repos.Users, nil, log)
	comments := service.NewCommentService(repos.Posts, repos.Comments, repos.Users, log)
	postService := service.NewPostService(repos.Posts, repos.Users, comments, nil, log)

	identities := make([]*auth.Identity, 0, len(users))
	for _, u := range users {
		user, err := userService.CreateUser(ctx, u.name, u.email, password, u.role)
		if errors.Is(err, apperrors.ErrConflict) {
			user, err = repos.Users.FindByEmail(ctx, u.email)
		}
		if err != nil {
			return created, skipped, fmt.Errorf("seed user %s: %w", u.email, err)
		}
		identities = append(identities, &auth.Identity{UserID: user.ID, Role: user.Role})
	}
	// the first account is the admin; posts belong to the others
	authors := identities[1:]

	for _, p := range posts {
		existing, err := repos.Posts.FindBySlug(ctx, slug.Make(p.Title))
		if err == nil && existing != nil {
			skipped++
			continue
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, skipped, fmt.Errorf("check post %q: %w", p.Title, err)
		}

		author := authors[p.Author%len(authors)]
		post, err := postService.Create(ctx, author.UserID, service.CreatePostInput{
			Title:    p.Title,
			Content:  p.Content,
			Category: p.Category,
			Image:    sampleImage,
		})
		if err != nil {
			return created, skipped, fmt.Errorf("create post %q: %w", p.Title, err)
		}
		if p.Status == string(model.PostStatusPublished) {
			if _, err := postService.Update(ctx, post.ID, author, service.PostPatch{Status: p.Status}); err != nil {
				return created, skipped, fmt.Errorf("publish post %q: %w", p.Title, err)
			}
		}
		created++
	}
	return created, skipped, nil
}

// fetchPosts downloads a JSON array of SeedPost.
func fetchPosts(ctx context.Context, url string) ([]SeedPost, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var posts []SeedPost
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return posts, nil
}
