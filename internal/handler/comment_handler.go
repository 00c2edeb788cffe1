package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"blogsphere/internal/middleware"
	"blogsphere/internal/service"
)

// CommentHandler serves comment and reply endpoints.
type CommentHandler struct {
	errorMapper
	comments service.CommentService
}

// NewCommentHandler creates a comment handler.
func NewCommentHandler(comments service.CommentService, debug bool) *CommentHandler {
	return &CommentHandler{errorMapper: errorMapper{debug: debug}, comments: comments}
}

// CommentRequest carries the comment text.
type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// DeleteCommentResponse reports how many comments were removed with the subtree.
type DeleteCommentResponse struct {
	Message string `json:"message"`
	Removed int64  `json:"removed"`
}

// AddComment godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} model.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/comments [post]
func (h *CommentHandler) AddComment(c echo.Context) error {
	postID, err := service.ParseID(c.Param("id"), "post id")
	if err != nil {
		return h.fail(err)
	}
	var req CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.AddComment(c.Request().Context(), postID, middleware.IdentityFrom(c).UserID, req.Content)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// AddReply godoc
// @Summary Reply to a comment
// @Description The reply belongs to the parent comment's post regardless of the post id in the path.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param commentId path string true "Parent comment ID"
// @Param request body CommentRequest true "Reply"
// @Success 201 {object} model.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/comments/{commentId}/replies [post]
func (h *CommentHandler) AddReply(c echo.Context) error {
	parentID, err := service.ParseID(c.Param("commentId"), "comment id")
	if err != nil {
		return h.fail(err)
	}
	var req CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	reply, err := h.comments.AddReply(c.Request().Context(), parentID, middleware.IdentityFrom(c).UserID, req.Content)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusCreated, reply)
}

// ToggleLike godoc
// @Summary Like or unlike a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {array} string
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/comments/{commentId}/like [post]
func (h *CommentHandler) ToggleLike(c echo.Context) error {
	id, err := service.ParseID(c.Param("commentId"), "comment id")
	if err != nil {
		return h.fail(err)
	}
	likes, err := h.comments.ToggleLike(c.Request().Context(), id, middleware.IdentityFrom(c).UserID)
	if err != nil {
		return h.fail(err)
	}
	if likes == nil {
		likes = []uuid.UUID{}
	}
	return c.JSON(http.StatusOK, likes)
}

// Delete godoc
// @Summary Delete a comment and all of its replies
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentId path string true "Comment ID"
// @Success 200 {object} DeleteCommentResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/comments/{commentId} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := service.ParseID(c.Param("commentId"), "comment id")
	if err != nil {
		return h.fail(err)
	}
	removed, err := h.comments.Delete(c.Request().Context(), id, middleware.IdentityFrom(c).UserID)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, DeleteCommentResponse{
		Message: "Comment and its replies deleted successfully",
		Removed: removed,
	})
}
