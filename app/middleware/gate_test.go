package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"social-todo/app/models"
)

func TestRequireUser(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	RequireUser(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/task/create", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/task/create", nil)
	req = req.WithContext(WithUser(req.Context(), &models.User{ID: "u1"}))
	rec = httptest.NewRecorder()
	RequireUser(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCanMutate(t *testing.T) {
	task := &models.Task{OwnerID: "u1", Collaborators: []string{"bob@example.com"}}

	assert.True(t, CanMutate(&models.User{ID: "u1", Email: "alice@example.com"}, task))
	assert.True(t, CanMutate(&models.User{ID: "u2", Email: "bob@example.com"}, task))
	assert.False(t, CanMutate(&models.User{ID: "u3", Email: "carol@example.com"}, task))
	assert.False(t, CanMutate(nil, task))
	assert.False(t, CanMutate(&models.User{ID: "u1"}, nil))
}
