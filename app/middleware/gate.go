package middleware

import (
	"net/http"

	"social-todo/app/models"
)

// RequireUser answers 403 with an empty body unless a user was resolved.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CanMutate reports whether u may change t: only the owner and the task's
// collaborators may.
func CanMutate(u *models.User, t *models.Task) bool {
	return t != nil && t.VisibleTo(u)
}
