package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogsphere/internal/model"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		current, last int64
		expected      string
	}{
		{0, 0, "0.0%"},
		{5, 0, "100.0%"},
		{10, 10, "0.0%"},
		{15, 10, "50.0%"},
		{5, 10, "-50.0%"},
		{4, 3, "33.3%"},
		{2, 3, "-33.3%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PercentChange(tt.current, tt.last), "current=%d last=%d", tt.current, tt.last)
	}
}

func TestLastMonthCutoff(t *testing.T) {
	now := time.Date(2026, time.March, 15, 17, 42, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC), lastMonthCutoff(now))

	// January rolls back into the previous year
	jan := time.Date(2026, time.January, 3, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.December, 3, 0, 0, 0, 0, time.UTC), lastMonthCutoff(jan))
}

func TestPreview(t *testing.T) {
	short := "short comment"
	assert.Equal(t, short, preview(short))

	long := "ééééééééééééééééééééééééééééééééééééééééééééééééééééééé"
	got := preview(long)
	assert.Equal(t, 53, len([]rune(got)))
	assert.Equal(t, "...", got[len(got)-3:])
}

func TestDashboardService_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	f.dashboard.now = func() time.Time { return now }

	old := &model.User{Name: "veteran", Email: "veteran@example.com", PasswordHash: "x", CreatedAt: now.AddDate(0, -3, 0)}
	require.NoError(t, f.store.Users().Create(ctx, old))

	f.store.SetClock(func() time.Time { return now.AddDate(0, 0, -2) })
	alice := f.user(t, "alice", model.RoleUser)
	bob := f.user(t, "bob", model.RoleUser)

	popular := f.post(t, alice, "Popular", model.PostStatusPublished)
	quiet := f.post(t, bob, "Quiet", model.PostStatusDraft)

	_, err := f.comments.AddComment(ctx, popular.ID, bob.UserID, "great")
	require.NoError(t, err)
	_, err = f.posts.ToggleLike(ctx, popular.ID, bob.UserID)
	require.NoError(t, err)

	dash, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, StatCard{Count: 3, Change: "200.0%", Period: "from last month"}, dash.Stats.Users)
	assert.Equal(t, StatCard{Count: 2, Change: "100.0%", Period: "from last month"}, dash.Stats.Posts)
	assert.Equal(t, int64(1), dash.Stats.Comments.Count)

	require.Len(t, dash.PostsByCategory, 1)
	tech := dash.PostsByCategory[0]
	assert.Equal(t, model.CategoryTech, tech.Category)
	assert.Equal(t, int64(2), tech.Count)
	assert.Equal(t, int64(3), tech.Engagement)

	require.Len(t, dash.TopAuthors, 2)
	assert.Equal(t, "alice", dash.TopAuthors[0].Name)
	assert.Equal(t, int64(3), dash.TopAuthors[0].Engagement)
	assert.Equal(t, "bob", dash.TopAuthors[1].Name)

	require.Len(t, dash.PopularPosts, 2)
	assert.Equal(t, popular.ID, dash.PopularPosts[0].ID)
	assert.Equal(t, quiet.ID, dash.PopularPosts[1].ID)

	assert.NotEmpty(t, dash.RecentActivity)
	assert.LessOrEqual(t, len(dash.RecentActivity), 10)
}

func TestDashboardService_TopAuthorsSkipsDeletedUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", model.RoleUser)
	ghost := f.user(t, "ghost", model.RoleUser)
	f.post(t, alice, "Kept", model.PostStatusPublished)
	f.post(t, ghost, "Orphan", model.PostStatusPublished)
	require.NoError(t, f.store.Users().Delete(ctx, ghost.UserID))

	dash, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, dash.TopAuthors, 1)
	assert.Equal(t, "alice", dash.TopAuthors[0].Name)
	assert.Len(t, dash.PopularPosts, 2)
}

func TestDashboardService_RecentActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	f.store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	alice := f.user(t, "alice", model.RoleUser)
	ghost := f.user(t, "ghost", model.RoleUser)
	post := f.post(t, alice, "Hello", model.PostStatusPublished)
	orphan := f.post(t, ghost, "Orphan", model.PostStatusPublished)
	_, err := f.comments.AddComment(ctx, post.ID, alice.UserID, "first!")
	require.NoError(t, err)
	require.NoError(t, f.store.Users().Delete(ctx, ghost.UserID))

	feed, err := f.dashboard.RecentActivity(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	assert.Equal(t, "comment", feed[0].Type)
	assert.Equal(t, "New comment on \"Hello\" by alice", feed[0].Message)
	assert.Equal(t, "blog", feed[1].Type)
	assert.Equal(t, "New blog posted: \"Hello\" by alice", feed[1].Message)
	assert.Equal(t, "user", feed[2].Type)
	assert.Equal(t, "New user registered: alice", feed[2].Message)
	for _, a := range feed {
		assert.NotEqual(t, orphan.ID, a.ID)
	}
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Timestamp.After(feed[i-1].Timestamp))
	}
}

func TestDashboardService_PopularPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", model.RoleUser)
	ghost := f.user(t, "ghost", model.RoleUser)

	older := f.post(t, alice, "Older", model.PostStatusPublished)
	newer := f.post(t, alice, "Newer", model.PostStatusPublished)
	liked := f.post(t, ghost, "Liked", model.PostStatusPublished)
	_, err := f.posts.ToggleLike(ctx, liked.ID, alice.UserID)
	require.NoError(t, err)
	require.NoError(t, f.store.Users().Delete(ctx, ghost.UserID))

	popular, err := f.dashboard.PopularPosts(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.Equal(t, liked.ID, popular[0].ID)
	assert.Equal(t, "Unknown", popular[0].Author.Name)
	assert.Equal(t, int64(1), popular[0].LikeCount)
	assert.Equal(t, newer.ID, popular[1].ID)
	assert.Equal(t, older.ID, popular[2].ID)
	assert.Equal(t, "alice", popular[1].Author.Name)
}

func TestDashboardService_CountsTopLevelComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", model.RoleUser)
	post := f.post(t, alice, "Threaded", model.PostStatusPublished)

	root, err := f.comments.AddComment(ctx, post.ID, alice.UserID, "root")
	require.NoError(t, err)
	reply, err := f.comments.AddReply(ctx, root.ID, alice.UserID, "reply")
	require.NoError(t, err)
	_, err = f.comments.AddReply(ctx, reply.ID, alice.UserID, "nested")
	require.NoError(t, err)

	list, err := f.posts.List(ctx, PostFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].CommentsCount)

	dash, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dash.Stats.Comments.Count)
	require.Len(t, dash.PostsByCategory, 1)
	assert.Equal(t, int64(1), dash.PostsByCategory[0].TotalComments)
	assert.Equal(t, int64(2), dash.PostsByCategory[0].Engagement)
	require.Len(t, dash.TopAuthors, 1)
	assert.Equal(t, int64(1), dash.TopAuthors[0].TotalComments)
	require.Len(t, dash.PopularPosts, 1)
	assert.Equal(t, int64(1), dash.PopularPosts[0].CommentCount)

	popular, err := f.dashboard.PopularPosts(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, int64(1), popular[0].CommentCount)
}
