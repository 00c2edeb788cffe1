package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"blogsphere/internal/config"
	"blogsphere/internal/handler"
	"blogsphere/internal/logging"
	authmw "blogsphere/internal/middleware"
	"blogsphere/internal/model"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Posts     *handler.PostHandler
	Comments  *handler.CommentHandler
	Dashboard *handler.DashboardHandler
	Settings  *handler.SettingsHandler
	Uploads   *handler.UploadHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log logging.Logger, guard *authmw.Auth, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	authenticated := guard.Required()
	admin := guard.RequireRoles(model.RoleAdmin)

	// Auth
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout, authenticated)
	api.GET("/auth/me", h.Auth.Me, authenticated)

	// Posts. Static segments are matched before :id.
	posts := api.Group("/posts")
	posts.GET("", h.Posts.List, guard.Optional())
	posts.GET("/admin", h.Posts.List, authenticated, admin)
	posts.GET("/:id", h.Posts.Get, guard.Optional())
	posts.POST("", h.Posts.Create, authenticated)
	posts.PUT("/:id", h.Posts.Update, authenticated)
	posts.PATCH("/:id/status", h.Posts.UpdateStatus, authenticated, admin)
	posts.DELETE("/:id", h.Posts.Delete, authenticated)
	posts.POST("/:id/like", h.Posts.ToggleLike, authenticated)

	// Comments
	posts.POST("/:id/comments", h.Comments.AddComment, authenticated)
	posts.POST("/:id/comments/:commentId/like", h.Comments.ToggleLike, authenticated)
	posts.POST("/:id/comments/:commentId/replies", h.Comments.AddReply, authenticated)
	posts.DELETE("/comments/:commentId", h.Comments.Delete, authenticated)

	// Users
	users := api.Group("/users", authenticated, admin)
	users.GET("", h.Users.ListUsers)
	users.POST("", h.Users.CreateUser)
	users.GET("/:id", h.Users.GetUser)
	users.DELETE("/:id", h.Users.DeleteUser)
	users.PATCH("/:id/role", h.Users.UpdateRole)

	// Dashboard
	dashboard := api.Group("/dashboard", authenticated, admin)
	dashboard.GET("/stats", h.Dashboard.Stats)
	dashboard.GET("/activity", h.Dashboard.RecentActivity)
	dashboard.GET("/popular-posts", h.Dashboard.PopularPosts)

	// Settings
	api.GET("/settings", h.Settings.Get)
	api.PUT("/settings", h.Settings.Update, authenticated, admin)

	// Uploads
	api.POST("/upload/single", h.Uploads.Single, authenticated)
	api.POST("/upload/multiple", h.Uploads.Multiple, authenticated, admin)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
