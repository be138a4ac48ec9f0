package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/taskboard/adapters/memory"
	"github.com/layer-3/taskboard/adapters/store"
	"github.com/layer-3/taskboard/adapters/tokenizer"
	"github.com/layer-3/taskboard/ports"
	"github.com/layer-3/taskboard/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPublisher struct{}

func (nopPublisher) PublishLogout(context.Context, string, string) error { return nil }
func (nopPublisher) PublishUserDeleted(context.Context, string) error    { return nil }

type downStore struct{}

func (downStore) Revoke(context.Context, string, time.Duration) error { return errors.New("down") }
func (downStore) IsRevoked(context.Context, string) (bool, error)     { return true, errors.New("down") }

type testServer struct {
	router *gin.Engine
	admin  *service.AdminService
}

type serverOption func(*Options, *ports.RevocationStore)

func withRevocations(s ports.RevocationStore) serverOption {
	return func(_ *Options, r *ports.RevocationStore) { *r = s }
}

func withRateLimit(window time.Duration, maxRequests int) serverOption {
	return func(o *Options, _ *ports.RevocationStore) { o.RateLimiter = NewRateLimiter(window, maxRequests) }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := memory.NewUserRepository()
	tasks := memory.NewTaskRepository()
	tokens, err := tokenizer.NewJWTTokenizer("router-test-secret-router-test-secret")
	require.NoError(t, err)

	var revocations ports.RevocationStore = store.NewMemoryStore(nil)
	o := Options{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	for _, opt := range opts {
		opt(&o, &revocations)
	}

	admin := service.NewAdminService(users, nopPublisher{})
	router := SetupRouter(Services{
		Gate:  service.NewGate(tokens, revocations, users),
		Auth:  service.NewAuthService(users, tokens, revocations, nopPublisher{}),
		Tasks: service.NewTaskService(tasks, users),
		Admin: admin,
	}, o)

	return &testServer{router: router, admin: admin}
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()

	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

type sessionData struct {
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Token string `json:"token"`
}

func (s *testServer) register(t *testing.T, name, email string) sessionData {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": name, "email": email, "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data sessionData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func (s *testServer) loginAdmin(t *testing.T) sessionData {
	t.Helper()
	_, err := s.admin.EnsureAdmin(context.Background(), service.AdminInput{Name: "Admin", Email: "admin@example.com", Password: "admin-pass"})
	require.NoError(t, err)

	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "admin@example.com", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data sessionData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Server is running", resp.Message)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestRegisterAndMe(t *testing.T) {
	s := newTestServer(t)
	session := s.register(t, "Ada", "Ada@Example.com")
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, "user", session.User.Role)
	assert.NotEmpty(t, session.Token)

	w, resp := s.do(t, http.MethodGet, "/api/v1/auth/me", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":{"id":"`+session.User.ID+`","name":"Ada","email":"ada@example.com","role":"user"}}`, string(resp.Data))
}

func TestRegisterErrors(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ada", "ada@example.com")

	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists with this email", resp.Message)

	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "A", "email": "x", "password": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation failed", resp.Message)
	fields := map[string]string{}
	for _, e := range resp.Errors {
		fields[e.Field] = e.Message
	}
	assert.Equal(t, map[string]string{
		"name":     "Name must be between 2 and 50 characters",
		"email":    "Please provide a valid email",
		"password": "Password must be at least 6 characters",
	}, fields)

	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", resp.Message)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "Ada", "ada@example.com")

	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ada@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", resp.Message)

	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ada@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", resp.Message)
}

func TestGateResponses(t *testing.T) {
	s := newTestServer(t)
	session := s.register(t, "Ada", "ada@example.com")

	w, resp := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", resp.Message)

	w, resp = s.do(t, http.MethodGet, "/api/v1/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", resp.Message)

	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/logout", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout successful", resp.Message)

	w, resp = s.do(t, http.MethodGet, "/api/v1/auth/me", session.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is no longer valid", resp.Message)
}

func TestGateFailsClosedWhenStoreIsDown(t *testing.T) {
	s := newTestServer(t, withRevocations(downStore{}))
	session := s.register(t, "Ada", "ada@example.com")

	w, resp := s.do(t, http.MethodGet, "/api/v1/auth/me", session.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is no longer valid", resp.Message)
}

func TestDeletedUserTokenAnswersNotFound(t *testing.T) {
	s := newTestServer(t)
	admin := s.loginAdmin(t)
	victim := s.register(t, "Bob", "bob@example.com")

	w, _ := s.do(t, http.MethodDelete, "/api/v1/admin/users/"+victim.User.ID, admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := s.do(t, http.MethodGet, "/api/v1/auth/me", victim.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", resp.Message)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitAppliesToAPI(t *testing.T) {
	s := newTestServer(t, withRateLimit(time.Hour, 2))

	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w, resp := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests from this IP, please try again later.", resp.Message)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w, _ = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}
