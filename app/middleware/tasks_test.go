package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-todo/app/models"
)

func TestLoadUserTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shared, err := f.store.Tasks().Create(ctx, &models.Task{
		OwnerID: f.alice.ID, Name: "Groceries", Description: "milk", Collaborators: []string{"bob@example.com"},
	})
	require.NoError(t, err)
	_, err = f.store.Tasks().Create(ctx, &models.Task{OwnerID: f.alice.ID, Name: "Private", Description: "secret"})
	require.NoError(t, err)

	var seen []models.TaskView
	handler := LoadUserTasks(f.store.Tasks(), quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Tasks(r.Context())
	}))

	t.Run("owner", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithUser(req.Context(), f.alice)))
		require.Len(t, seen, 2)
		for _, v := range seen {
			assert.True(t, v.Mine)
		}
	})

	t.Run("collaborator", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithUser(req.Context(), f.bob)))
		require.Len(t, seen, 1)
		assert.Equal(t, shared.ID, seen[0].ID)
		assert.False(t, seen[0].Mine)
	})

	t.Run("anonymous", func(t *testing.T) {
		seen = []models.TaskView{{}}
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Nil(t, seen)
	})
}

func TestLoadUserTasks_StoreErrorContinues(t *testing.T) {
	f := newFixture(t)
	called := false
	handler := LoadUserTasks(brokenTasks{f.store.Tasks()}, quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, Tasks(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithUser(req.Context(), f.alice)))
	assert.True(t, called)
}
