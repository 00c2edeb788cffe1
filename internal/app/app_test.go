package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogsphere/internal/auth"
	"blogsphere/internal/config"
	"blogsphere/internal/logging"
	"blogsphere/internal/model"
	"blogsphere/internal/repository/memory"
)

type testServer struct {
	e     *echo.Echo
	cfg   *config.Config
	store *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.DBDriver = "memory"
	store := memory.New()
	e := New(Deps{
		Config: cfg,
		Logger: logging.NewDiscard(),
		Repos:  MemoryRepositories(store),
	})
	return &testServer{e: e, cfg: cfg, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// admin creates an admin directly in the store and returns a token for it.
func (s *testServer) admin(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	u := &model.User{Name: "root", Email: "root@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, s.store.Users().Create(context.Background(), u))
	token, err := auth.NewJWTService(s.cfg.JWTSecret, s.cfg.TokenTTL).IssueToken(u.ID, model.RoleAdmin)
	require.NoError(t, err)
	return u.ID, token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type userBody struct {
	ID   uuid.UUID  `json:"id"`
	Role model.Role `json:"role"`
}

type postBody struct {
	ID     uuid.UUID        `json:"id"`
	Slug   string           `json:"slug"`
	Status model.PostStatus `json:"status"`
}

func (s *testServer) login(t *testing.T, name, email string) (uuid.UUID, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Token string   `json:"token"`
		User  userBody `json:"user"`
	}](t, rec)
	require.NotEmpty(t, body.Token)
	assert.Equal(t, model.RoleUser, body.User.Role)
	return body.User.ID, body.Token
}

func (s *testServer) createPost(t *testing.T, token, title string) postBody {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title": title, "content": "Some content", "category": "tech",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[struct {
		Post postBody `json:"blog"`
	}](t, rec).Post
}

func TestDraftVisibility(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.login(t, "Alice", "alice@example.com")
	_, adminToken := s.admin(t)

	post := s.createPost(t, aliceToken, "My First Draft")
	assert.Equal(t, "my-first-draft", post.Slug)
	assert.Equal(t, model.PostStatusDraft, post.Status)

	rec := s.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]postBody](t, rec))

	rec = s.do(t, http.MethodGet, "/api/posts", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]postBody](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/posts/admin", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]postBody](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/posts/admin", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/posts/my-first-draft", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/posts/my-first-draft", aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/posts/"+post.ID.String()+"/status", adminToken, map[string]string{"status": "published"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]postBody](t, rec), 1)
}

func TestAuthenticationErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no token found", decode[errorBody](t, rec).Message)

	rec = s.do(t, http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid token", decode[errorBody](t, rec).Message)

	// an optional-auth route still rejects a bad token
	rec = s.do(t, http.MethodGet, "/api/posts", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "x", "email": "bad", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeAndLogout(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.login(t, "Alice", "alice@example.com")

	rec := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[struct {
		User userBody `json:"user"`
	}](t, rec)
	assert.Equal(t, aliceID, me.User.ID)

	rec = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	aliceID, aliceToken := s.login(t, "Alice", "alice@example.com")
	adminID, adminToken := s.admin(t)

	rec := s.do(t, http.MethodDelete, "/api/users/"+aliceID.String(), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Role 'user' is not authorized to access this resource.", decode[errorBody](t, rec).Message)

	rec = s.do(t, http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]userBody](t, rec), 2)

	rec = s.do(t, http.MethodDelete, "/api/users/"+adminID.String(), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You cannot delete your own admin account", decode[errorBody](t, rec).Message)

	rec = s.do(t, http.MethodPatch, "/api/users/"+aliceID.String()+"/role", adminToken, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleAdmin, decode[userBody](t, rec).Role)

	rec = s.do(t, http.MethodDelete, "/api/users/"+aliceID.String(), adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users/"+aliceID.String(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentThreadOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.login(t, "Alice", "alice@example.com")
	_, bobToken := s.login(t, "Bob", "bob@example.com")
	_, adminToken := s.admin(t)
	post := s.createPost(t, aliceToken, "Threads")
	postPath := "/api/posts/" + post.ID.String()

	rec := s.do(t, http.MethodPost, postPath+"/comments", bobToken, map[string]string{"content": "top"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	top := decode[struct {
		ID uuid.UUID `json:"id"`
	}](t, rec)

	// the post id in the path does not decide which post a reply belongs to
	rec = s.do(t, http.MethodPost, "/api/posts/"+uuid.NewString()+"/comments/"+top.ID.String()+"/replies", aliceToken, map[string]string{"content": "reply"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reply := decode[struct {
		PostID uuid.UUID `json:"blog"`
		Depth  int       `json:"depth"`
	}](t, rec)
	assert.Equal(t, post.ID, reply.PostID)
	assert.Equal(t, 1, reply.Depth)

	rec = s.do(t, http.MethodPost, postPath+"/comments/"+top.ID.String()+"/like", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]uuid.UUID](t, rec), 1)

	rec = s.do(t, http.MethodGet, postPath, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		Comments []struct {
			User    struct{ Name string } `json:"user"`
			Replies []json.RawMessage     `json:"replies"`
		} `json:"comments"`
		CommentsCount int `json:"commentsCount"`
	}](t, rec)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "Bob", detail.Comments[0].User.Name)
	assert.Len(t, detail.Comments[0].Replies, 1)
	assert.Equal(t, 1, detail.CommentsCount)

	// only the author may delete, admins included
	rec = s.do(t, http.MethodDelete, "/api/posts/comments/"+top.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/posts/comments/"+top.ID.String(), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[struct {
		Removed int64 `json:"removed"`
	}](t, rec).Removed)

	rec = s.do(t, http.MethodDelete, postPath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, postPath, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSettingsAndDashboard(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.login(t, "Alice", "alice@example.com")
	_, adminToken := s.admin(t)

	rec := s.do(t, http.MethodGet, "/api/settings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "My Blog", decode[model.Settings](t, rec).SiteName)

	rec = s.do(t, http.MethodPut, "/api/settings", aliceToken, map[string]string{"siteName": "Hijack"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/settings", adminToken, map[string]interface{}{"siteName": "Notes", "enableRegistration": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notes", decode[model.Settings](t, rec).SiteName)

	rec = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Late", "email": "late@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/dashboard/stats", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/dashboard/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[struct {
		Stats struct {
			Users struct {
				Count int64 `json:"count"`
			} `json:"users"`
		} `json:"stats"`
	}](t, rec)
	assert.Equal(t, int64(2), stats.Stats.Users.Count)

	for _, path := range []string{"/api/dashboard/activity", "/api/dashboard/popular-posts"} {
		rec = s.do(t, http.MethodGet, path, adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestUploadsDisabledWithoutStore(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "Alice", "alice@example.com")

	rec := s.do(t, http.MethodPost, "/api/upload/single", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
