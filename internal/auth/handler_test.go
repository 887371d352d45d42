package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/linentrack/linentrack/internal/shared"
)

func newLoginHandler(t *testing.T, repo Repository) (*Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	otp := NewOTPStore(client, 10*time.Minute)
	svc := NewService(repo, otp, &recordingMailer{}, &recordingAuditor{})
	return NewHandler(nil, svc, sessions, csrf), sessions
}

func TestLoginSetsSessionUser(t *testing.T) {
	account := testAccount(t)
	repo := newStubAccountRepo(account)
	handler, sessions := newLoginHandler(t, repo)

	body := `{"username":"nurse01","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	handler.login(res, req)
	require.NoError(t, sessions.Commit(req.Context(), res, req, sess))

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "1", sess.User())
	require.Contains(t, repo.sessions, sess.ID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "nurse01", payload["username"])
	require.NotEmpty(t, payload["csrf_token"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	account := testAccount(t)
	handler, sessions := newLoginHandler(t, newStubAccountRepo(account))

	body := `{"username":"nurse01","password":"wrongpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	handler.login(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
}

func TestLogoutDestroysSession(t *testing.T) {
	account := testAccount(t)
	repo := newStubAccountRepo(account)
	handler, sessions := newLoginHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("1")
	repo.sessions[sess.ID] = 1
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	handler.logout(res, req)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.NotContains(t, repo.sessions, sess.ID)
}
