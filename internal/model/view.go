package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthorRef is the public projection of a user attached to content.
type AuthorRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PostSummary is a list item: the post plus its author and derived counters.
type PostSummary struct {
	Post
	Author        AuthorRef `json:"author"`
	CommentsCount int       `json:"commentsCount"`
	LikesCount    int       `json:"likesCount"`
}

// PostDetail is a single post with liker names and its full comment thread.
type PostDetail struct {
	Post
	Author        AuthorRef      `json:"author"`
	Likers        []AuthorRef    `json:"likes"`
	Thread        []*CommentNode `json:"comments"`
	CommentsCount int            `json:"commentsCount"`
	LikesCount    int            `json:"likesCount"`
}

// CommentNode is a comment rendered with its author and nested replies.
type CommentNode struct {
	ID        uuid.UUID      `json:"id"`
	PostID    uuid.UUID      `json:"blog"`
	Author    AuthorRef      `json:"user"`
	Content   string         `json:"content"`
	Likes     []uuid.UUID    `json:"likes"`
	ParentID  *uuid.UUID     `json:"parentComment"`
	Depth     int            `json:"depth"`
	Replies   []*CommentNode `json:"replies"`
	CreatedAt time.Time      `json:"createdAt"`
}
