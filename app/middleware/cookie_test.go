package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-todo/app/models"
)

func TestSessionCookies_RoundTrip(t *testing.T) {
	now := time.Now()
	sess := &models.Session{Token: "tok-1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	cookie, err := testCookies.Issue(sess)
	require.NoError(t, err)
	assert.Equal(t, "todo.sid", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.NotContains(t, cookie.Value, "u1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	token, err := testCookies.Token(req)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestSessionCookies_Rejects(t *testing.T) {
	now := time.Now()
	valid, err := testCookies.Issue(&models.Session{Token: "tok", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)
	expired, err := testCookies.Issue(&models.Session{Token: "tok", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	other := SessionCookies{Name: "todo.sid", Secret: []byte("other-secret")}
	forged, err := other.Issue(&models.Session{Token: "tok", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "missing"},
		{name: "garbage", cookie: &http.Cookie{Name: "todo.sid", Value: "garbage"}},
		{name: "tampered", cookie: &http.Cookie{Name: "todo.sid", Value: valid.Value + "x"}},
		{name: "expired", cookie: expired},
		{name: "wrong secret", cookie: forged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			_, err := testCookies.Token(req)
			assert.Error(t, err)
		})
	}
}

func TestSessionCookies_Clear(t *testing.T) {
	c := testCookies.Clear()
	assert.Equal(t, "todo.sid", c.Name)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}
