package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-todo/app/models"
)

func TestSessionResolver_ResolvesUser(t *testing.T) {
	f := newFixture(t)
	resolver := NewSessionResolver(f.store.Sessions(), f.store.Users(), testCookies, quietLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	f.login(t, req, f.alice)

	var got *models.User
	resolver.Middleware(captureUser(&got)).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, f.alice.ID, got.ID)
}

func TestSessionResolver_Anonymous(t *testing.T) {
	f := newFixture(t)
	resolver := NewSessionResolver(f.store.Sessions(), f.store.Users(), testCookies, quietLogger())

	t.Run("no cookie", func(t *testing.T) {
		var got *models.User
		rec := httptest.NewRecorder()
		resolver.Middleware(captureUser(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Nil(t, got)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("destroyed session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		sess := f.login(t, req, f.alice)
		require.NoError(t, f.store.Sessions().Destroy(context.Background(), sess.Token))

		var got *models.User
		resolver.Middleware(captureUser(&got)).ServeHTTP(httptest.NewRecorder(), req)
		assert.Nil(t, got)
	})

	t.Run("expired session", func(t *testing.T) {
		now := time.Now()
		sess, err := f.store.Sessions().Create(context.Background(), f.alice.ID, -time.Second)
		require.NoError(t, err)
		// The cookie outlives the stored session.
		cookie, err := testCookies.Issue(&models.Session{Token: sess.Token, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)

		var got *models.User
		resolver.Middleware(captureUser(&got)).ServeHTTP(httptest.NewRecorder(), req)
		assert.Nil(t, got)
	})
}

func TestSessionResolver_FailOpenOnStoreError(t *testing.T) {
	f := newFixture(t)
	logger, hook := test.NewNullLogger()
	resolver := NewSessionResolver(brokenSessions{f.store.Sessions()}, f.store.Users(), testCookies, logger)
	require.True(t, resolver.FailOpen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	f.login(t, req, f.alice)

	var got *models.User
	rec := httptest.NewRecorder()
	resolver.Middleware(captureUser(&got)).ServeHTTP(rec, req)

	assert.Nil(t, got)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "session.resolve.failed", hook.LastEntry().Message)
}

func TestSessionResolver_FailClosedOnStoreError(t *testing.T) {
	f := newFixture(t)
	logger, _ := test.NewNullLogger()
	resolver := NewSessionResolver(brokenSessions{f.store.Sessions()}, f.store.Users(), testCookies, logger)
	resolver.FailOpen = false

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	f.login(t, req, f.alice)

	called := false
	rec := httptest.NewRecorder()
	resolver.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
