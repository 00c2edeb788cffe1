package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"blogsphere/internal/auth"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository"
	"blogsphere/internal/repository/memory"
)

type fixture struct {
	store     *memory.Store
	posts     PostService
	comments  CommentService
	dashboard *dashboardService
	settings  SettingsService
	users     UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	log := logging.NewDiscard()

	comments := NewCommentService(store.Posts(), store.Comments(), store.Users(), log)
	return &fixture{
		store:     store,
		comments:  comments,
		posts:     NewPostService(store.Posts(), store.Users(), comments, nil, log),
		dashboard: NewDashboardService(store.Users(), store.Posts(), store.Comments(), log).(*dashboardService),
		settings:  NewSettingsService(store.Settings(), nil, log),
		users:     NewUserService(store.Users(), nil, log),
	}
}

func (f *fixture) user(t *testing.T, name string, role model.Role) *auth.Identity {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return &auth.Identity{UserID: u.ID, Role: role}
}

func (f *fixture) post(t *testing.T, author *auth.Identity, title string, status model.PostStatus) *model.Post {
	t.Helper()
	ctx := context.Background()
	p, err := f.posts.Create(ctx, author.UserID, CreatePostInput{Title: title, Content: "body of " + title, Category: "tech"})
	require.NoError(t, err)
	if status == model.PostStatusPublished {
		p, err = f.posts.Update(ctx, p.ID, author, PostPatch{Status: string(status)})
		require.NoError(t, err)
	}
	return p
}

func (f *fixture) loadPost(t *testing.T, id uuid.UUID) *model.Post {
	t.Helper()
	p, err := f.store.Posts().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (f *fixture) loadComment(t *testing.T, id uuid.UUID) *model.Comment {
	t.Helper()
	c, err := f.store.Comments().FindByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

// faultyComments fails selected writes and passes everything else to the wrapped store.
type faultyComments struct {
	repository.CommentRepository
	updateErr       error
	deleteErr       error
	deleteByPostErr error
}

func (c *faultyComments) Update(ctx context.Context, comment *model.Comment) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	return c.CommentRepository.Update(ctx, comment)
}

func (c *faultyComments) Delete(ctx context.Context, id uuid.UUID) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	return c.CommentRepository.Delete(ctx, id)
}

func (c *faultyComments) DeleteByPostID(ctx context.Context, postID uuid.UUID) (int64, error) {
	if c.deleteByPostErr != nil {
		return 0, c.deleteByPostErr
	}
	return c.CommentRepository.DeleteByPostID(ctx, postID)
}

// withFaultyComments rebuilds the comment and post services over a faulty comment store.
func (f *fixture) withFaultyComments() (*faultyComments, CommentService, PostService) {
	faulty := &faultyComments{CommentRepository: f.store.Comments()}
	log := logging.NewDiscard()
	comments := NewCommentService(f.store.Posts(), faulty, f.store.Users(), log)
	posts := NewPostService(f.store.Posts(), f.store.Users(), comments, nil, log)
	return faulty, comments, posts
}
