package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"blogsphere/internal/middleware"
	"blogsphere/internal/model"
	"blogsphere/internal/service"
)

// PostHandler serves the post lifecycle endpoints.
type PostHandler struct {
	errorMapper
	posts service.PostService
}

// NewPostHandler creates a post handler.
func NewPostHandler(posts service.PostService, debug bool) *PostHandler {
	return &PostHandler{errorMapper: errorMapper{debug: debug}, posts: posts}
}

// CreatePostRequest is the JSON or multipart payload for a new post.
type CreatePostRequest struct {
	Title    string `json:"title" form:"title" validate:"required"`
	Content  string `json:"content" form:"content" validate:"required"`
	Category string `json:"category" form:"category" validate:"required"`
	Image    string `json:"image" form:"image"`
}

// UpdateStatusRequest is the admin moderation payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PostResponse wraps a post with a status message.
type PostResponse struct {
	Message string      `json:"message"`
	Post    *model.Post `json:"blog"`
}

// List godoc
// @Summary List posts
// @Description Published posts, newest first. Admin callers also see drafts.
// @Tags posts
// @Produce json
// @Param category query string false "tech, lifestyle, education or health"
// @Param author query string false "Author ID"
// @Success 200 {array} model.PostSummary
// @Failure 400 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	filter := service.PostFilter{
		Category:           c.QueryParam("category"),
		AuthorID:           c.QueryParam("author"),
		IncludeUnpublished: middleware.IdentityFrom(c).IsAdmin(),
	}
	posts, err := h.posts.List(c.Request().Context(), filter)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// Get godoc
// @Summary Get a post by id or slug
// @Tags posts
// @Produce json
// @Param id path string true "Post ID or slug"
// @Success 200 {object} model.PostDetail
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), c.Param("id"), middleware.IdentityFrom(c))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, post)
}

// Create godoc
// @Summary Create a draft post
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post data"
// @Param image formData file false "Cover image"
// @Success 201 {object} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	var req CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.CreatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Image:    req.Image,
	}
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		switch {
		case err == nil:
			file, err := readFile(fh)
			if err != nil {
				return h.fail(err)
			}
			in.ImageFile = &file
		case !errors.Is(err, http.ErrMissingFile):
			return h.fail(err)
		}
	}

	identity := middleware.IdentityFrom(c)
	post, err := h.posts.Create(c.Request().Context(), identity.UserID, in)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, PostResponse{Message: "Blog created", Post: post})
}

// Update godoc
// @Summary Update a post
// @Description Owners may change any field. Admins may change only the status of any post.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body service.PostPatch true "Fields to change"
// @Success 200 {object} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "post id")
	if err != nil {
		return h.fail(err)
	}
	var patch service.PostPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	return h.update(c, id, patch)
}

// UpdateStatus godoc
// @Summary Publish or unpublish a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/status [patch]
func (h *PostHandler) UpdateStatus(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "post id")
	if err != nil {
		return h.fail(err)
	}
	var req UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.update(c, id, service.PostPatch{Status: req.Status})
}

func (h *PostHandler) update(c echo.Context, id uuid.UUID, patch service.PostPatch) error {
	identity := middleware.IdentityFrom(c)
	post, err := h.posts.Update(c.Request().Context(), id, identity, patch)
	if err != nil {
		return h.fail(err)
	}
	message := "Blog updated"
	if identity.IsAdmin() && post.AuthorID != identity.UserID {
		message = "Blog status updated"
	}
	return c.JSON(http.StatusOK, PostResponse{Message: message, Post: post})
}

// Delete godoc
// @Summary Delete a post and all of its comments
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "post id")
	if err != nil {
		return h.fail(err)
	}
	if err := h.posts.Delete(c.Request().Context(), id, middleware.IdentityFrom(c)); err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Blog deleted successfully"})
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} model.Post
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/like [post]
func (h *PostHandler) ToggleLike(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "post id")
	if err != nil {
		return h.fail(err)
	}
	post, err := h.posts.ToggleLike(c.Request().Context(), id, middleware.IdentityFrom(c).UserID)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, post)
}
