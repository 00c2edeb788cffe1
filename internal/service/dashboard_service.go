package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	apperrors "blogsphere/internal/errors"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository"
)

const (
	changePeriod       = "from last month"
	topAuthorsLimit    = 5
	popularPostsLimit  = 5
	recentPerKind      = 5
	recentLimit        = 10
	activityPerKind    = 3
	activityLimit      = 5
	commentPreviewSize = 50
)

// StatCard is a headline counter with its month-over-month change.
type StatCard struct {
	Count  int64  `json:"count"`
	Change string `json:"change"`
	Period string `json:"period"`
}

// DashboardStats groups the headline counters.
type DashboardStats struct {
	Users    StatCard `json:"users"`
	Posts    StatCard `json:"blogs"`
	Comments StatCard `json:"comments"`
}

// CategoryStat aggregates engagement per category.
type CategoryStat struct {
	Category      model.Category `json:"category"`
	Count         int64          `json:"count"`
	TotalComments int64          `json:"totalComments"`
	TotalLikes    int64          `json:"totalLikes"`
	Engagement    int64          `json:"engagement"`
}

// AuthorStat aggregates engagement per author.
type AuthorStat struct {
	UserID        uuid.UUID `json:"userId"`
	Name          string    `json:"name"`
	PostCount     int64     `json:"blogCount"`
	TotalComments int64     `json:"totalComments"`
	TotalLikes    int64     `json:"totalLikes"`
	Engagement    int64     `json:"engagement"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	Type      string           `json:"type"`
	ID        uuid.UUID        `json:"id"`
	Message   string           `json:"message"`
	Details   map[string]any   `json:"details,omitempty"`
	User      *model.AuthorRef `json:"user,omitempty"`
	Post      *PostRef         `json:"blog,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// PostRef identifies a post in activity entries.
type PostRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// PopularPost is a post ranked by engagement or likes.
type PopularPost struct {
	ID           uuid.UUID        `json:"id"`
	Title        string           `json:"title"`
	Slug         string           `json:"slug"`
	Category     model.Category   `json:"category"`
	Status       model.PostStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	Author       model.AuthorRef  `json:"author"`
	CommentCount int64            `json:"commentCount"`
	LikeCount    int64            `json:"likeCount"`
	Engagement   int64            `json:"engagement"`
}

// Dashboard is the full admin analytics payload.
type Dashboard struct {
	Stats           DashboardStats `json:"stats"`
	PostsByCategory []CategoryStat `json:"blogsByCategory"`
	TopAuthors      []AuthorStat   `json:"topAuthors"`
	RecentActivity  []Activity     `json:"recentActivity"`
	PopularPosts    []PopularPost  `json:"popularBlogs"`
}

// DashboardService computes admin analytics.
type DashboardService interface {
	Stats(ctx context.Context) (*Dashboard, error)
	RecentActivity(ctx context.Context) ([]Activity, error)
	PopularPosts(ctx context.Context) ([]PopularPost, error)
}

type dashboardService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	log      logging.Logger
	now      func() time.Time
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(
	users repository.UserRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	log logging.Logger,
) DashboardService {
	return &dashboardService{
		users:    users,
		posts:    posts,
		comments: comments,
		log:      log.With("component", "dashboard"),
		now:      time.Now,
	}
}

// lastMonthCutoff is midnight on the same day of the previous calendar month.
func lastMonthCutoff(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()-1, now.Day(), 0, 0, 0, 0, now.Location())
}

// PercentChange renders (current-last)/last as a one-decimal percentage.
// A zero baseline reads as 100% growth when anything exists now.
func PercentChange(current, last int64) string {
	if last == 0 {
		if current > 0 {
			return "100.0%"
		}
		return "0.0%"
	}
	change := decimal.NewFromInt(current - last).
		Div(decimal.NewFromInt(last)).
		Mul(decimal.NewFromInt(100))
	return change.StringFixed(1) + "%"
}

type counter interface {
	Count(ctx context.Context) (int64, error)
	CountCreatedBefore(ctx context.Context, t time.Time) (int64, error)
}

func statCard(ctx context.Context, c counter, cutoff time.Time) (StatCard, error) {
	current, err := c.Count(ctx)
	if err != nil {
		return StatCard{}, err
	}
	last, err := c.CountCreatedBefore(ctx, cutoff)
	if err != nil {
		return StatCard{}, err
	}
	return StatCard{Count: current, Change: PercentChange(current, last), Period: changePeriod}, nil
}

func (s *dashboardService) Stats(ctx context.Context) (*Dashboard, error) {
	cutoff := lastMonthCutoff(s.now())

	var (
		out   Dashboard
		posts []model.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Stats.Users, err = statCard(gctx, s.users, cutoff)
		return err
	})
	g.Go(func() (err error) {
		out.Stats.Posts, err = statCard(gctx, s.posts, cutoff)
		return err
	})
	g.Go(func() (err error) {
		out.Stats.Comments, err = statCard(gctx, s.comments, cutoff)
		return err
	})
	g.Go(func() (err error) {
		posts, err = s.posts.List(gctx, repository.PostQuery{})
		return err
	})
	g.Go(func() (err error) {
		out.RecentActivity, err = s.recentFeed(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error(ctx, "dashboard aggregation failed", "error", err)
		return nil, apperrors.Store("failed to get dashboard statistics", err)
	}

	authorIDs := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, apperrors.Store("failed to get dashboard statistics", err)
	}
	names := make(map[uuid.UUID]string, len(authors))
	for _, a := range authors {
		names[a.ID] = a.Name
	}

	out.PostsByCategory = postsByCategory(posts)
	out.TopAuthors = topAuthors(posts, names)
	out.PopularPosts = popularByEngagement(posts, names)
	return &out, nil
}

func engagement(comments, likes int64) int64 {
	return comments*2 + likes
}

// commentCount counts top-level comments only, matching the post list.
func commentCount(p model.Post) int64 {
	return int64(len(p.Comments))
}

func postsByCategory(posts []model.Post) []CategoryStat {
	byCategory := make(map[model.Category]*CategoryStat)
	for _, p := range posts {
		stat, ok := byCategory[p.Category]
		if !ok {
			stat = &CategoryStat{Category: p.Category}
			byCategory[p.Category] = stat
		}
		stat.Count++
		stat.TotalComments += commentCount(p)
		stat.TotalLikes += int64(len(p.Likes))
	}

	out := make([]CategoryStat, 0, len(byCategory))
	for _, stat := range byCategory {
		stat.Engagement = engagement(stat.TotalComments, stat.TotalLikes)
		out = append(out, *stat)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Engagement != out[j].Engagement {
			return out[i].Engagement > out[j].Engagement
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// topAuthors ranks authors by engagement, keeps the top five, then drops authors
// whose user record no longer exists.
func topAuthors(posts []model.Post, names map[uuid.UUID]string) []AuthorStat {
	byAuthor := make(map[uuid.UUID]*AuthorStat)
	for _, p := range posts {
		stat, ok := byAuthor[p.AuthorID]
		if !ok {
			stat = &AuthorStat{UserID: p.AuthorID, Name: names[p.AuthorID]}
			byAuthor[p.AuthorID] = stat
		}
		stat.PostCount++
		stat.TotalComments += commentCount(p)
		stat.TotalLikes += int64(len(p.Likes))
	}

	ranked := make([]AuthorStat, 0, len(byAuthor))
	for _, stat := range byAuthor {
		stat.Engagement = engagement(stat.TotalComments, stat.TotalLikes)
		ranked = append(ranked, *stat)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Engagement != ranked[j].Engagement {
			return ranked[i].Engagement > ranked[j].Engagement
		}
		return ranked[i].PostCount > ranked[j].PostCount
	})
	if len(ranked) > topAuthorsLimit {
		ranked = ranked[:topAuthorsLimit]
	}

	out := make([]AuthorStat, 0, len(ranked))
	for _, stat := range ranked {
		if stat.Name != "" {
			out = append(out, stat)
		}
	}
	return out
}

func toPopular(p model.Post, names map[uuid.UUID]string, fallback string) PopularPost {
	name, ok := names[p.AuthorID]
	author := model.AuthorRef{ID: p.AuthorID, Name: name}
	if !ok {
		author = model.AuthorRef{Name: fallback}
	}
	comments := commentCount(p)
	likes := int64(len(p.Likes))
	return PopularPost{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Category:     p.Category,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		Author:       author,
		CommentCount: comments,
		LikeCount:    likes,
		Engagement:   engagement(comments, likes),
	}
}

// popularByEngagement expects posts newest first, so ties favour newer posts.
func popularByEngagement(posts []model.Post, names map[uuid.UUID]string) []PopularPost {
	out := make([]PopularPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPopular(p, names, ""))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Engagement > out[j].Engagement
	})
	if len(out) > popularPostsLimit {
		out = out[:popularPostsLimit]
	}
	return out
}

// recentFeed merges the newest users, posts and comments into one feed.
func (s *dashboardService) recentFeed(ctx context.Context) ([]Activity, error) {
	users, err := s.users.Recent(ctx, recentPerKind)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.Recent(ctx, recentPerKind)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.Recent(ctx, recentPerKind)
	if err != nil {
		return nil, err
	}

	refs, postTitles, err := s.resolve(ctx, posts, comments)
	if err != nil {
		return nil, err
	}

	feed := make([]Activity, 0, len(users)+len(posts)+len(comments))
	for _, u := range users {
		feed = append(feed, Activity{
			Type:      "user",
			ID:        u.ID,
			Message:   fmt.Sprintf("%s joined the platform", u.Name),
			Details:   map[string]any{"email": u.Email, "role": u.Role},
			Timestamp: u.CreatedAt,
		})
	}
	for _, p := range posts {
		name := "Unknown"
		if ref, ok := refs[p.AuthorID]; ok {
			name = ref.Name
		}
		feed = append(feed, Activity{
			Type:      "blog",
			ID:        p.ID,
			Message:   fmt.Sprintf("%s published \"%s\"", name, p.Title),
			Details:   map[string]any{"category": p.Category, "status": p.Status},
			Timestamp: p.CreatedAt,
		})
	}
	for _, c := range comments {
		name := "Unknown"
		if ref, ok := refs[c.UserID]; ok {
			name = ref.Name
		}
		title, ok := postTitles[c.PostID]
		if !ok {
			title = "Unknown Blog"
		}
		feed = append(feed, Activity{
			Type:      "comment",
			ID:        c.ID,
			Message:   fmt.Sprintf("%s commented on \"%s\"", name, title),
			Details:   map[string]any{"content": preview(c.Content)},
			Timestamp: c.CreatedAt,
		})
	}

	return newestActivities(feed, recentLimit), nil
}

func (s *dashboardService) resolve(ctx context.Context, posts []model.Post, comments []model.Comment) (map[uuid.UUID]model.AuthorRef, map[uuid.UUID]string, error) {
	userIDs := make([]uuid.UUID, 0, len(posts)+len(comments))
	postIDs := make([]uuid.UUID, 0, len(comments))
	for _, p := range posts {
		userIDs = append(userIDs, p.AuthorID)
	}
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
		postIDs = append(postIDs, c.PostID)
	}

	refs, err := authorRefs(ctx, s.users, userIDs)
	if err != nil {
		return nil, nil, err
	}
	commented, err := s.posts.FindByIDs(ctx, postIDs)
	if err != nil {
		return nil, nil, err
	}
	titles := make(map[uuid.UUID]string, len(commented))
	for _, p := range commented {
		titles[p.ID] = p.Title
	}
	return refs, titles, nil
}

func (s *dashboardService) RecentActivity(ctx context.Context) ([]Activity, error) {
	users, err := s.users.Recent(ctx, activityPerKind)
	if err != nil {
		return nil, apperrors.Store("Failed to fetch recent activity", err)
	}
	posts, err := s.posts.Recent(ctx, activityPerKind)
	if err != nil {
		return nil, apperrors.Store("Failed to fetch recent activity", err)
	}
	comments, err := s.comments.Recent(ctx, activityPerKind)
	if err != nil {
		return nil, apperrors.Store("Failed to fetch recent activity", err)
	}
	refs, titles, err := s.resolve(ctx, posts, comments)
	if err != nil {
		return nil, apperrors.Store("Failed to fetch recent activity", err)
	}

	feed := make([]Activity, 0, len(users)+len(posts)+len(comments))
	for _, u := range users {
		feed = append(feed, Activity{
			Type:      "user",
			ID:        u.ID,
			Message:   fmt.Sprintf("New user registered: %s", u.Name),
			User:      &model.AuthorRef{ID: u.ID, Name: u.Name},
			Timestamp: u.CreatedAt,
		})
	}
	for _, p := range posts {
		author, ok := refs[p.AuthorID]
		if !ok {
			continue
		}
		feed = append(feed, Activity{
			Type:      "blog",
			ID:        p.ID,
			Message:   fmt.Sprintf("New blog posted: \"%s\" by %s", p.Title, author.Name),
			User:      &author,
			Post:      &PostRef{ID: p.ID, Title: p.Title},
			Timestamp: p.CreatedAt,
		})
	}
	for _, c := range comments {
		author, ok := refs[c.UserID]
		title, found := titles[c.PostID]
		if !ok || !found {
			continue
		}
		feed = append(feed, Activity{
			Type:      "comment",
			ID:        c.ID,
			Message:   fmt.Sprintf("New comment on \"%s\" by %s", title, author.Name),
			User:      &author,
			Post:      &PostRef{ID: c.PostID, Title: title},
			Timestamp: c.CreatedAt,
		})
	}
	return newestActivities(feed, activityLimit), nil
}

func (s *dashboardService) PopularPosts(ctx context.Context) ([]PopularPost, error) {
	posts, err := s.posts.List(ctx, repository.PostQuery{})
	if err != nil {
		return nil, apperrors.Store("Failed to fetch popular blogs", err)
	}
	// posts arrive newest first, so the stable sort keeps newer posts ahead on equal likes
	sort.SliceStable(posts, func(i, j int) bool {
		return len(posts[i].Likes) > len(posts[j].Likes)
	})
	if len(posts) > popularPostsLimit {
		posts = posts[:popularPostsLimit]
	}

	authorIDs := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
	}
	refs, err := authorRefs(ctx, s.users, authorIDs)
	if err != nil {
		return nil, apperrors.Store("Failed to fetch popular blogs", err)
	}
	names := make(map[uuid.UUID]string, len(refs))
	for id, ref := range refs {
		names[id] = ref.Name
	}

	out := make([]PopularPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPopular(p, names, "Unknown"))
	}
	return out, nil
}

func newestActivities(feed []Activity, limit int) []Activity {
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= commentPreviewSize {
		return content
	}
	return string(runes[:commentPreviewSize]) + "..."
}
