package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulse/internal/config"
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/service"
	"pulse/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-identity-secret"

type testEnv struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{Env: "test", IDPJWTSecret: testSecret, FeedCacheTTLSeconds: 30}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	return testEnv{srv: srv, app: srv.NewApp(), db: db}
}

func identityToken(t *testing.T, subject string) string {
	t.Helper()
	claims := middleware.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// do sends a request as subject (no Authorization header when subject is
// empty) and returns the status and body.
func (e testEnv) do(t *testing.T, method, path, subject string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+identityToken(t, subject))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (e testEnv) sync(t *testing.T, subject, username string) models.Profile {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/users/sync", subject, fiber.Map{"username": username, "name": username})
	require.Equal(t, http.StatusOK, status, string(body))
	var profile models.Profile
	require.NoError(t, json.Unmarshal(body, &profile))
	return profile
}

func errorCode(t *testing.T, body []byte) models.ErrorCode {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Code
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"redis":"unavailable"`)
}

func TestAPI_Identity(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := env.do(t, http.MethodGet, "/api/posts", "idp|stranger", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, errorCode(t, body))

	first := env.sync(t, "idp|ada", "ada")
	again := env.sync(t, "idp|ada", "ada")
	assert.Equal(t, first.ID, again.ID)

	status, body = env.do(t, http.MethodPost, "/api/users/sync", "idp|other", fiber.Map{"username": "ada"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeConflict, errorCode(t, body))

	status, _ = env.do(t, http.MethodPost, "/api/users/sync", "idp|nameless", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPut, "/api/users/me", "idp|ada", fiber.Map{"name": "Ada Lovelace", "bio": "engines"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "engines")
}

func TestAPI_SocialFlow(t *testing.T) {
	env := newTestEnv(t)
	alice := env.sync(t, "idp|alice", "alice")
	bob := env.sync(t, "idp|bob", "bob")

	followPath := fmt.Sprintf("/api/users/%d/follow", alice.ID)
	status, _ := env.do(t, http.MethodPost, followPath, "idp|bob", nil)
	require.Equal(t, http.StatusCreated, status)
	status, body := env.do(t, http.MethodPost, followPath, "idp|bob", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeConflict, errorCode(t, body))

	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", bob.ID), "idp|bob", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(t, http.MethodPost, "/api/users/abc/follow", "idp|bob", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/api/users/alice/follow", "idp|bob", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"following":true}`, string(body))

	status, body = env.do(t, http.MethodPost, "/api/posts", "idp|alice", fiber.Map{"content": "hello world"})
	require.Equal(t, http.StatusCreated, status)
	var post models.PostView
	require.NoError(t, json.Unmarshal(body, &post))

	status, _ = env.do(t, http.MethodPost, "/api/posts", "idp|alice", fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", post.ID), "idp|bob", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"outcome":"created"}`, string(body))

	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID), "idp|bob", fiber.Map{"content": "nice"})
	require.Equal(t, http.StatusCreated, status)

	status, body = env.do(t, http.MethodGet, "/api/posts", "idp|bob", nil)
	require.Equal(t, http.StatusOK, status)
	var feed []models.PostView
	require.NoError(t, json.Unmarshal(body, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, models.PostCounts{Likes: 1, Comments: 1}, feed[0].Counts)

	status, body = env.do(t, http.MethodGet, "/api/notifications", "idp|alice", nil)
	require.Equal(t, http.StatusOK, status)
	var notifications []models.NotificationView
	require.NoError(t, json.Unmarshal(body, &notifications))
	require.Len(t, notifications, 3)

	status, body = env.do(t, http.MethodPost, "/api/notifications/read", "idp|alice", fiber.Map{"ids": []uint{notifications[0].ID, notifications[1].ID}})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"updated":2}`, string(body))

	status, body = env.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), "idp|bob", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, errorCode(t, body))

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), "idp|alice", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), "idp|alice", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/api/users/alice", "idp|bob", nil)
	require.Equal(t, http.StatusOK, status)
	var profile models.Profile
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, models.UserCounts{Followers: 1}, profile.Counts)

	status, body = env.do(t, http.MethodGet, "/api/users/alice/posts", "idp|bob", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, body = env.do(t, http.MethodGet, "/api/users/suggestions?count=5", "idp|alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"username":"bob"`)

	status, _ = env.do(t, http.MethodDelete, followPath, "idp|bob", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodDelete, followPath, "idp|bob", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListFeed(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestAPI_StoreFailuresMapToStatus(t *testing.T) {
	tests := []struct {
		name       string
		storeErr   error
		wantStatus int
		wantCode   models.ErrorCode
	}{
		{"transient", models.NewTransientError(context.DeadlineExceeded), http.StatusServiceUnavailable, models.CodeTransient},
		{"internal", models.NewInternalError(errors.New("relation secret_table is broken")), http.StatusInternalServerError, models.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.sync(t, "idp|bob", "bob")

			posts := new(MockPostRepository)
			posts.On("GetByID", mock.Anything, uint(7)).Return(nil, tt.storeErr)
			repos := repository.NewRepositories(env.db)
			env.srv.engine.Likes = service.NewLikeService(posts, repos.Likes, repository.NewTxRunner(env.db))

			status, body := env.do(t, http.MethodPost, "/api/posts/7/like", "idp|bob", nil)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, errorCode(t, body))
			assert.NotContains(t, string(body), "secret_table")
			posts.AssertExpectations(t)
		})
	}
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "post ID", humanizeParam("postId"))
	assert.Equal(t, "chat room ID", humanizeParam("chatRoomId"))
	assert.Equal(t, "username", humanizeParam("username"))
}
