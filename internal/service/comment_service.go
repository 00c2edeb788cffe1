package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository"
)

// CommentService maintains comment trees attached to posts.
type CommentService interface {
	AddComment(ctx context.Context, postID, authorID uuid.UUID, content string) (*model.Comment, error)
	// AddReply takes the post from the parent comment, never from the caller.
	AddReply(ctx context.Context, parentID, authorID uuid.UUID, content string) (*model.Comment, error)
	ToggleLike(ctx context.Context, commentID, userID uuid.UUID) ([]uuid.UUID, error)
	// Delete removes a comment and its whole subtree, returning how many records were removed.
	Delete(ctx context.Context, commentID, callerID uuid.UUID) (int64, error)
	// DeleteForPost removes every comment of a post at any depth.
	DeleteForPost(ctx context.Context, postID uuid.UUID) (int64, error)
	// Thread renders a post's comments as a nested tree with author names.
	Thread(ctx context.Context, post *model.Post) ([]*model.CommentNode, error)
}

type commentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	log      logging.Logger
}

// NewCommentService creates a comment service.
func NewCommentService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	log logging.Logger,
) CommentService {
	return &commentService{
		posts:    posts,
		comments: comments,
		users:    users,
		log:      log.With("component", "comments"),
	}
}

func commentText(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperrors.Validation("comment content is required")
	}
	return content, nil
}

func (s *commentService) AddComment(ctx context.Context, postID, authorID uuid.UUID, content string) (*model.Comment, error) {
	text, err := commentText(content)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, lookupErr(err, "Blog not found", "failed to add comment")
	}

	comment := &model.Comment{
		PostID:  post.ID,
		UserID:  authorID,
		Content: text,
		Depth:   0,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.Store("failed to add comment", err)
	}

	post.Comments = append(post.Comments, comment.ID)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, apperrors.Store("failed to attach comment", err)
	}
	return comment, nil
}

func (s *commentService) AddReply(ctx context.Context, parentID, authorID uuid.UUID, content string) (*model.Comment, error) {
	text, err := commentText(content)
	if err != nil {
		return nil, err
	}

	parent, err := s.comments.FindByID(ctx, parentID)
	if err != nil {
		return nil, lookupErr(err, "Parent comment not found", "failed to add reply")
	}

	reply := &model.Comment{
		PostID:   parent.PostID,
		UserID:   authorID,
		Content:  text,
		ParentID: &parent.ID,
		Depth:    parent.Depth + 1,
	}
	if err := s.comments.Create(ctx, reply); err != nil {
		return nil, apperrors.Store("failed to add reply", err)
	}

	parent.Replies = append(parent.Replies, reply.ID)
	if err := s.comments.Update(ctx, parent); err != nil {
		return nil, apperrors.Store("failed to attach reply", err)
	}
	return reply, nil
}

func (s *commentService) ToggleLike(ctx context.Context, commentID, userID uuid.UUID) ([]uuid.UUID, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, lookupErr(err, "Comment not found", "failed to like comment")
	}

	comment.Likes = toggleID(comment.Likes, userID)
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.Store("failed to like comment", err)
	}
	likes := []uuid.UUID(comment.Likes)
	if likes == nil {
		likes = []uuid.UUID{}
	}
	return likes, nil
}

func (s *commentService) Delete(ctx context.Context, commentID, callerID uuid.UUID) (int64, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return 0, lookupErr(err, "Comment not found", "failed to delete comment")
	}
	if comment.UserID != callerID {
		return 0, apperrors.Forbidden("Not authorized to delete this comment")
	}

	descendants, err := s.collectDescendants(ctx, comment.ID)
	if err != nil {
		return 0, apperrors.Store("failed to delete comment replies", err)
	}
	removed, err := s.comments.DeleteByIDs(ctx, descendants)
	if err != nil {
		return 0, apperrors.Store("failed to delete comment replies", err)
	}

	if err := s.detach(ctx, comment); err != nil {
		return removed, apperrors.Store("failed to detach comment", err)
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return removed, apperrors.Store("failed to delete comment", err)
	}
	return removed + 1, nil
}

// collectDescendants walks the subtree below root breadth-first over parent links.
func (s *commentService) collectDescendants(ctx context.Context, root uuid.UUID) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]struct{}{root: {}}
	var out []uuid.UUID
	frontier := []uuid.UUID{root}
	for len(frontier) > 0 {
		children, err := s.comments.FindByParentIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, child := range children {
			if _, ok := seen[child.ID]; ok {
				continue
			}
			seen[child.ID] = struct{}{}
			out = append(out, child.ID)
			frontier = append(frontier, child.ID)
		}
	}
	return out, nil
}

// detach removes the comment's id from its parent's replies or its post's comment list.
// A missing parent or post is logged and tolerated.
func (s *commentService) detach(ctx context.Context, comment *model.Comment) error {
	if comment.ParentID != nil {
		parent, err := s.comments.FindByID(ctx, *comment.ParentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn(ctx, "parent comment missing during delete", "comment_id", comment.ID, "parent_id", *comment.ParentID)
			return nil
		}
		if err != nil {
			return err
		}
		var changed bool
		if parent.Replies, changed = removeID(parent.Replies, comment.ID); !changed {
			return nil
		}
		return s.comments.Update(ctx, parent)
	}

	post, err := s.posts.FindByID(ctx, comment.PostID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn(ctx, "post missing during comment delete", "comment_id", comment.ID, "post_id", comment.PostID)
		return nil
	}
	if err != nil {
		return err
	}
	var changed bool
	if post.Comments, changed = removeID(post.Comments, comment.ID); !changed {
		return nil
	}
	return s.posts.Update(ctx, post)
}

func (s *commentService) DeleteForPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	removed, err := s.comments.DeleteByPostID(ctx, postID)
	if err != nil {
		return 0, apperrors.Store("failed to delete post comments", err)
	}
	s.log.Debug(ctx, "post comments deleted", "post_id", postID, "count", removed)
	return removed, nil
}

func (s *commentService) Thread(ctx context.Context, post *model.Post) ([]*model.CommentNode, error) {
	comments, err := s.comments.FindByPostID(ctx, post.ID)
	if err != nil {
		return nil, apperrors.Store("failed to load comments", err)
	}

	byID := make(map[uuid.UUID]model.Comment, len(comments))
	authorIDs := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
		authorIDs = append(authorIDs, c.UserID)
	}
	refs, err := authorRefs(ctx, s.users, authorIDs)
	if err != nil {
		return nil, apperrors.Store("failed to load comment authors", err)
	}

	visited := make(map[uuid.UUID]struct{}, len(comments))
	var build func(ids []uuid.UUID) []*model.CommentNode
	build = func(ids []uuid.UUID) []*model.CommentNode {
		nodes := make([]*model.CommentNode, 0, len(ids))
		for _, id := range ids {
			c, ok := byID[id]
			if !ok {
				continue
			}
			if _, dup := visited[id]; dup {
				continue
			}
			visited[id] = struct{}{}
			author, ok := refs[c.UserID]
			if !ok {
				author = model.AuthorRef{ID: c.UserID}
			}
			likes := []uuid.UUID(c.Likes)
			if likes == nil {
				likes = []uuid.UUID{}
			}
			nodes = append(nodes, &model.CommentNode{
				ID:        c.ID,
				PostID:    c.PostID,
				Author:    author,
				Content:   c.Content,
				Likes:     likes,
				ParentID:  c.ParentID,
				Depth:     c.Depth,
				Replies:   build(c.Replies),
				CreatedAt: c.CreatedAt,
			})
		}
		return nodes
	}
	return build(post.Comments), nil
}
