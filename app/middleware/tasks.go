package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"social-todo/app/models"
	"social-todo/app/services"
)

// LoadUserTasks loads the tasks visible to the current user and marks the ones
// they own. Anonymous requests pass through untouched; a store error leaves the
// request without tasks.
func LoadUserTasks(tasks services.TaskStore, logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			visible, err := tasks.FindVisible(r.Context(), user)
			if err != nil {
				logger.WithError(err).WithField("user_id", user.ID).Warn("tasks.load.failed")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTasks(r.Context(), models.NewTaskViews(visible, user))))
		})
	}
}
