// Package services persists users, tasks and sessions.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"social-todo/app/models"
)

// UserStore persists user accounts.
type UserStore interface {
	// Create hashes password onto u and saves it, assigning u.ID.
	Create(ctx context.Context, u *models.User, password string) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// TaskStore persists tasks.
type TaskStore interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	// FindVisible returns the tasks u owns or collaborates on.
	FindVisible(ctx context.Context, u *models.User) ([]models.Task, error)
	SetComplete(ctx context.Context, id string, complete bool) error
	Delete(ctx context.Context, id string) error
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error)
	// Get returns ErrNotFound for unknown and expired tokens alike.
	Get(ctx context.Context, token string) (*models.Session, error)
	Destroy(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

var (
	_ UserStore    = (*UserService)(nil)
	_ TaskStore    = (*TaskService)(nil)
	_ SessionStore = (*SessionService)(nil)
	_ UserStore    = (*MemoryUserStore)(nil)
	_ TaskStore    = (*MemoryTaskStore)(nil)
	_ SessionStore = (*MemorySessionStore)(nil)
	_ SessionStore = (*CachedSessionStore)(nil)
)

func prepareUser(u *models.User, password string) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	if err := u.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return nil
}

func prepareTask(t *models.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return nil
}

func newSession(userID string, ttl time.Duration) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
