package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"blogsphere/internal/auth"
	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository"
	"blogsphere/internal/storage"
)

// maxSlugAttempts bounds the -2, -3, ... suffix search for a free slug.
const maxSlugAttempts = 100

// AssetStorer stores uploaded files. Implemented by *storage.AssetStore.
type AssetStorer interface {
	Store(ctx context.Context, f storage.File, folder string) (*storage.Asset, error)
	StoreMany(ctx context.Context, files []storage.File, folder string) ([]*storage.Asset, error)
}

// CreatePostInput is the payload for a new post.
type CreatePostInput struct {
	Title     string
	Content   string
	Category  string
	Image     string
	ImageFile *storage.File
}

// PostPatch holds the fields to change. Empty strings are ignored.
type PostPatch struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

func (p PostPatch) statusOnly() bool {
	return p.Status != "" && p.Title == "" && p.Content == "" && p.Category == ""
}

// PostFilter narrows List. AuthorID is a raw id and is validated.
type PostFilter struct {
	Category           string
	AuthorID           string
	IncludeUnpublished bool
}

// PostService manages the post lifecycle.
type PostService interface {
	Create(ctx context.Context, authorID uuid.UUID, in CreatePostInput) (*model.Post, error)
	List(ctx context.Context, filter PostFilter) ([]model.PostSummary, error)
	// Get resolves key as an id first, then as a slug.
	Get(ctx context.Context, key string, viewer *auth.Identity) (*model.PostDetail, error)
	Update(ctx context.Context, id uuid.UUID, identity *auth.Identity, patch PostPatch) (*model.Post, error)
	Delete(ctx context.Context, id uuid.UUID, identity *auth.Identity) error
	ToggleLike(ctx context.Context, id, userID uuid.UUID) (*model.Post, error)
}

type postService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	comments CommentService
	assets   AssetStorer
	log      logging.Logger
}

// NewPostService creates a post service. assets may be nil when uploads are disabled.
func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	comments CommentService,
	assets AssetStorer,
	log logging.Logger,
) PostService {
	return &postService{
		posts:    posts,
		users:    users,
		comments: comments,
		assets:   assets,
		log:      log.With("component", "posts"),
	}
}

func parseCategory(raw string) (model.Category, error) {
	c := model.Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", apperrors.Validation(fmt.Sprintf("invalid category %q", raw))
	}
	return c, nil
}

func parseStatus(raw string) (model.PostStatus, error) {
	st := model.PostStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !st.Valid() {
		return "", apperrors.Validation(fmt.Sprintf("invalid status %q", raw))
	}
	return st, nil
}

func (s *postService) Create(ctx context.Context, authorID uuid.UUID, in CreatePostInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" || strings.TrimSpace(in.Category) == "" {
		return nil, apperrors.Validation("title, content and category are required")
	}
	category, err := parseCategory(in.Category)
	if err != nil {
		return nil, err
	}

	postSlug, err := s.uniqueSlug(ctx, title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	image := strings.TrimSpace(in.Image)
	if in.ImageFile != nil {
		if s.assets == nil {
			return nil, apperrors.Validation("image uploads are not configured")
		}
		asset, err := s.assets.Store(ctx, *in.ImageFile, storage.FolderPosts)
		if err != nil {
			return nil, err
		}
		image = asset.URL
	}

	post := &model.Post{
		Title:    title,
		Content:  content,
		Category: category,
		Slug:     postSlug,
		Image:    image,
		Status:   model.PostStatusDraft,
		AuthorID: authorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("a post with this slug already exists")
		}
		return nil, apperrors.Store("failed to create post", err)
	}

	s.log.Info(ctx, "post created", "post_id", post.ID, "author_id", authorID)
	return post, nil
}

// uniqueSlug derives a slug from title, appending -2, -3, ... until it is free.
func (s *postService) uniqueSlug(ctx context.Context, title string, self uuid.UUID) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "post"
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.posts.SlugExists(ctx, candidate, self)
		if err != nil {
			return "", apperrors.Store("failed to check slug", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", apperrors.Conflict("could not find a free slug for this title")
}

func (s *postService) List(ctx context.Context, filter PostFilter) ([]model.PostSummary, error) {
	var q repository.PostQuery
	if filter.Category != "" {
		category, err := parseCategory(filter.Category)
		if err != nil {
			return nil, err
		}
		q.Category = category
	}
	if filter.AuthorID != "" {
		authorID, err := parseID(filter.AuthorID, "author id")
		if err != nil {
			return nil, err
		}
		q.AuthorID = authorID
	}
	if !filter.IncludeUnpublished {
		q.Status = model.PostStatusPublished
	}

	posts, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, apperrors.Store("failed to list posts", err)
	}

	authorIDs := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
	}
	refs, err := authorRefs(ctx, s.users, authorIDs)
	if err != nil {
		return nil, apperrors.Store("failed to load authors", err)
	}

	out := make([]model.PostSummary, 0, len(posts))
	for _, p := range posts {
		author, ok := refs[p.AuthorID]
		if !ok {
			author = model.AuthorRef{ID: p.AuthorID}
		}
		out = append(out, model.PostSummary{
			Post:          p,
			Author:        author,
			CommentsCount: len(p.Comments),
			LikesCount:    len(p.Likes),
		})
	}
	return out, nil
}

func (s *postService) find(ctx context.Context, key string) (*model.Post, error) {
	if id, err := uuid.Parse(key); err == nil {
		post, err := s.posts.FindByID(ctx, id)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Store("failed to fetch post", err)
		}
	}
	post, err := s.posts.FindBySlug(ctx, key)
	if err != nil {
		return nil, lookupErr(err, "Blog not found", "failed to fetch post")
	}
	return post, nil
}

func canManage(post *model.Post, identity *auth.Identity) bool {
	return identity != nil && (identity.IsAdmin() || identity.UserID == post.AuthorID)
}

func (s *postService) Get(ctx context.Context, key string, viewer *auth.Identity) (*model.PostDetail, error) {
	post, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if !post.Published() && !canManage(post, viewer) {
		return nil, apperrors.NotFound("Blog not found")
	}

	ids := make([]uuid.UUID, 0, len(post.Likes)+1)
	ids = append(ids, post.AuthorID)
	ids = append(ids, post.Likes...)
	refs, err := authorRefs(ctx, s.users, ids)
	if err != nil {
		return nil, apperrors.Store("failed to load authors", err)
	}

	thread, err := s.comments.Thread(ctx, post)
	if err != nil {
		return nil, err
	}

	author, ok := refs[post.AuthorID]
	if !ok {
		author = model.AuthorRef{ID: post.AuthorID}
	}
	likers := make([]model.AuthorRef, 0, len(post.Likes))
	for _, id := range post.Likes {
		if ref, ok := refs[id]; ok {
			likers = append(likers, ref)
		} else {
			likers = append(likers, model.AuthorRef{ID: id})
		}
	}

	return &model.PostDetail{
		Post:          *post,
		Author:        author,
		Likers:        likers,
		Thread:        thread,
		CommentsCount: len(post.Comments),
		LikesCount:    len(post.Likes),
	}, nil
}

func (s *postService) Update(ctx context.Context, id uuid.UUID, identity *auth.Identity, patch PostPatch) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Blog not found", "failed to update post")
	}

	switch {
	case identity.IsAdmin() && patch.statusOnly():
		status, err := parseStatus(patch.Status)
		if err != nil {
			return nil, err
		}
		post.Status = status

	case identity != nil && identity.UserID == post.AuthorID:
		if err := s.applyPatch(ctx, post, patch); err != nil {
			return nil, err
		}

	default:
		return nil, apperrors.Forbidden("Access denied")
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("a post with this slug already exists")
		}
		return nil, apperrors.Store("failed to update post", err)
	}
	return post, nil
}

func (s *postService) applyPatch(ctx context.Context, post *model.Post, patch PostPatch) error {
	if title := strings.TrimSpace(patch.Title); title != "" && title != post.Title {
		postSlug, err := s.uniqueSlug(ctx, title, post.ID)
		if err != nil {
			return err
		}
		post.Title = title
		post.Slug = postSlug
	}
	if content := strings.TrimSpace(patch.Content); content != "" {
		post.Content = content
	}
	if patch.Category != "" {
		category, err := parseCategory(patch.Category)
		if err != nil {
			return err
		}
		post.Category = category
	}
	if patch.Status != "" {
		status, err := parseStatus(patch.Status)
		if err != nil {
			return err
		}
		post.Status = status
	}
	return nil
}

func (s *postService) Delete(ctx context.Context, id uuid.UUID, identity *auth.Identity) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "Blog not found", "failed to delete post")
	}
	if !canManage(post, identity) {
		return apperrors.Forbidden("Access Denied")
	}

	removed, err := s.comments.DeleteForPost(ctx, post.ID)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return apperrors.Store("failed to delete post", err)
	}

	s.log.Info(ctx, "post deleted", "post_id", post.ID, "comments_removed", removed)
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, id, userID uuid.UUID) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Blog not found", "failed to like post")
	}

	post.Likes = toggleID(post.Likes, userID)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, apperrors.Store("failed to like post", err)
	}
	return post, nil
}
