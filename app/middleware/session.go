package middleware

import (
	"context"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"social-todo/app/models"
	"social-todo/app/services"
)

// SessionResolver resolves the current user from the session cookie.
//
// Lookup failures other than "not found" are governed by FailOpen: when true
// (the default from NewSessionResolver) the request continues anonymously and
// the failure is logged; when false the request is answered with 503.
type SessionResolver struct {
	Sessions services.SessionStore
	Users    services.UserStore
	Cookies  SessionCookies
	Logger   *log.Logger
	FailOpen bool
}

// NewSessionResolver creates a fail-open resolver.
func NewSessionResolver(sessions services.SessionStore, users services.UserStore, cookies SessionCookies, logger *log.Logger) *SessionResolver {
	return &SessionResolver{
		Sessions: sessions,
		Users:    users,
		Cookies:  cookies,
		Logger:   logger,
		FailOpen: true,
	}
}

// Middleware attaches the resolved user, if any, to the request context.
func (s *SessionResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := s.Cookies.Token(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.resolve(r.Context(), token)
		switch {
		case err == nil:
			r = r.WithContext(WithUser(r.Context(), user))
		case errors.Is(err, services.ErrNotFound):
		case s.FailOpen:
			s.Logger.WithError(err).Warn("session.resolve.failed")
		default:
			s.Logger.WithError(err).Error("session.resolve.failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *SessionResolver) resolve(ctx context.Context, token string) (*models.User, error) {
	sess, err := s.Sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Users.FindByID(ctx, sess.UserID)
}
