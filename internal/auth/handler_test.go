package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vivenda-crm/vivenda-crm/internal/shared"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	args := m.Called(ctx, id, userID, expiresAt, ip, ua)
	return args.Error(0)
}

func (m *mockRepo) DeleteSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestHandler(t *testing.T, repo Repository) (*Handler, *shared.SessionManager) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "vivenda_session", time.Hour, false)
	csrf := shared.NewCSRFManager("test-csrf-secret")
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	return NewHandler(logger, NewService(repo), sessions, csrf), sessions
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func withSession(r *http.Request) (*http.Request, *shared.Session) {
	sess := &shared.Session{ID: "test-session"}
	ctx := shared.ContextWithSession(r.Context(), sess)
	return r.WithContext(ctx), sess
}

func TestLoginSuccess(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindByEmail", mock.Anything, "agent@vivenda.es").Return(&User{
		ID:           7,
		Email:        "agent@vivenda.es",
		FullName:     "Lucia Fernandez",
		Role:         shared.RoleAgent,
		PasswordHash: hashPassword(t, "correct-horse"),
		IsActive:     true,
	}, nil)
	repo.On("CreateSession", mock.Anything, mock.Anything, int64(7), mock.Anything, mock.Anything, mock.Anything).Return(nil)

	handler, _ := newTestHandler(t, repo)

	body, _ := json.Marshal(map[string]string{"email": "agent@vivenda.es", "password": "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req, sess := withSession(req)
	rec := httptest.NewRecorder()

	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.User.ID)
	assert.NotEmpty(t, resp.CSRFToken)
	assert.Equal(t, "7", sess.User())
	assert.Equal(t, shared.RoleAgent, sess.Role())
	repo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindByEmail", mock.Anything, "agent@vivenda.es").Return(&User{
		ID:           7,
		Email:        "agent@vivenda.es",
		Role:         shared.RoleAgent,
		PasswordHash: hashPassword(t, "correct-horse"),
		IsActive:     true,
	}, nil)

	handler, _ := newTestHandler(t, repo)

	body, _ := json.Marshal(map[string]string{"email": "agent@vivenda.es", "password": "wrong-horse"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req, _ = withSession(req)
	rec := httptest.NewRecorder()

	handler.handleLogin(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginInactiveUser(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindByEmail", mock.Anything, "former@vivenda.es").Return(&User{
		ID:           3,
		Email:        "former@vivenda.es",
		Role:         shared.RoleAgent,
		PasswordHash: hashPassword(t, "still-remembers"),
		IsActive:     false,
	}, nil)

	handler, _ := newTestHandler(t, repo)

	body, _ := json.Marshal(map[string]string{"email": "former@vivenda.es", "password": "still-remembers"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req, _ = withSession(req)
	rec := httptest.NewRecorder()

	handler.handleLogin(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindByEmail", mock.Anything, "ghost@vivenda.es").Return(nil, shared.ErrNotFound)

	handler, _ := newTestHandler(t, repo)

	body, _ := json.Marshal(map[string]string{"email": "ghost@vivenda.es", "password": "whatever-pass"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req, _ = withSession(req)
	rec := httptest.NewRecorder()

	handler.handleLogin(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	handler, _ := newTestHandler(t, new(mockRepo))

	body, _ := json.Marshal(map[string]string{"email": "not-an-email", "password": "short"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req, _ = withSession(req)
	rec := httptest.NewRecorder()

	handler.handleLogin(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	repo := new(mockRepo)
	repo.On("DeleteSession", mock.Anything, "test-session").Return(nil)

	handler, _ := newTestHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req, sess := withSession(req)
	sess.SetUser("7")
	rec := httptest.NewRecorder()

	handler.handleLogout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestMeRequiresSession(t *testing.T) {
	handler, _ := newTestHandler(t, new(mockRepo))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req, _ = withSession(req)
	rec := httptest.NewRecorder()

	handler.handleMe(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
