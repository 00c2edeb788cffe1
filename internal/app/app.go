// Package app assembles repositories, services and handlers into an echo server.
package app

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"blogsphere/internal/auth"
	"blogsphere/internal/cache"
	"blogsphere/internal/config"
	"blogsphere/internal/handler"
	"blogsphere/internal/logging"
	"blogsphere/internal/middleware"
	"blogsphere/internal/repository"
	"blogsphere/internal/repository/memory"
	"blogsphere/internal/router"
	"blogsphere/internal/service"
)

// Repositories is the storage backend of the application.
type Repositories struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Settings repository.SettingsRepository
}

// SQLRepositories builds gorm-backed repositories.
func SQLRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    repository.NewUserRepository(db),
		Posts:    repository.NewPostRepository(db),
		Comments: repository.NewCommentRepository(db),
		Settings: repository.NewSettingsRepository(db),
	}
}

// MemoryRepositories builds repositories over an in-process store.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Users:    store.Users(),
		Posts:    store.Posts(),
		Comments: store.Comments(),
		Settings: store.Settings(),
	}
}

// Deps are the collaborators New needs. Cache and Assets may be nil.
type Deps struct {
	Config *config.Config
	Logger logging.Logger
	Cache  *cache.Client
	Repos  Repositories
	Assets service.AssetStorer
}

// New wires services and handlers and returns a ready echo instance.
func New(d Deps) *echo.Echo {
	cfg := d.Config
	debug := cfg.Debug()

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(d.Cache)
	gate := auth.NewGate(jwtService, tokenStore)

	settingsService := service.NewSettingsService(d.Repos.Settings, d.Cache, d.Logger)
	authService := service.NewAuthService(d.Repos.Users, settingsService, jwtService, tokenStore, d.Logger)
	userService := service.NewUserService(d.Repos.Users, d.Cache, d.Logger)
	commentService := service.NewCommentService(d.Repos.Posts, d.Repos.Comments, d.Repos.Users, d.Logger)
	postService := service.NewPostService(d.Repos.Posts, d.Repos.Users, commentService, d.Assets, d.Logger)
	dashboardService := service.NewDashboardService(d.Repos.Users, d.Repos.Posts, d.Repos.Comments, d.Logger)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, d.Logger, middleware.NewAuth(gate, debug), router.Handlers{
		Auth:      handler.NewAuthHandler(authService, debug),
		Users:     handler.NewUserHandler(userService, debug),
		Posts:     handler.NewPostHandler(postService, debug),
		Comments:  handler.NewCommentHandler(commentService, debug),
		Dashboard: handler.NewDashboardHandler(dashboardService, debug),
		Settings:  handler.NewSettingsHandler(settingsService, debug),
		Uploads:   handler.NewUploadHandler(d.Assets, debug),
	})
	return e
}
