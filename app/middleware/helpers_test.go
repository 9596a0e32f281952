package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"social-todo/app/models"
	"social-todo/app/services"
)

var testCookies = SessionCookies{Name: "todo.sid", Secret: []byte("test-secret")}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	store *services.MemoryStore
	alice *models.User
	bob   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := services.NewMemoryStore()
	alice := &models.User{Email: "alice@example.com", Name: "Alice"}
	require.NoError(t, store.Users().Create(ctx, alice, "pw123"))
	bob := &models.User{Email: "bob@example.com", Name: "Bob"}
	require.NoError(t, store.Users().Create(ctx, bob, "pw456"))
	return &fixture{store: store, alice: alice, bob: bob}
}

func (f *fixture) login(t *testing.T, req *http.Request, u *models.User) *models.Session {
	t.Helper()
	sess, err := f.store.Sessions().Create(context.Background(), u.ID, time.Hour)
	require.NoError(t, err)
	cookie, err := testCookies.Issue(sess)
	require.NoError(t, err)
	req.AddCookie(cookie)
	return sess
}

type brokenSessions struct{ services.SessionStore }

func (brokenSessions) Get(context.Context, string) (*models.Session, error) {
	return nil, errors.New("connection refused")
}

type brokenTasks struct{ services.TaskStore }

func (brokenTasks) FindVisible(context.Context, *models.User) ([]models.Task, error) {
	return nil, errors.New("connection refused")
}

// captureUser records the user seen by the final handler.
func captureUser(dst **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst = CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}
