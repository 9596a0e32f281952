package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"social-todo/app/models"
)

// MemoryStore keeps users, tasks and sessions in process memory.
// It backs local development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User
	tasks    map[string]models.Task
	sessions map[string]models.Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		tasks:    make(map[string]models.Task),
		sessions: make(map[string]models.Session),
	}
}

// Users returns the UserStore view of the memory store.
func (m *MemoryStore) Users() *MemoryUserStore { return &MemoryUserStore{m} }

// Tasks returns the TaskStore view of the memory store.
func (m *MemoryStore) Tasks() *MemoryTaskStore { return &MemoryTaskStore{m} }

// Sessions returns the SessionStore view of the memory store.
func (m *MemoryStore) Sessions() *MemorySessionStore { return &MemorySessionStore{m} }

// MemoryUserStore is the UserStore view of a MemoryStore.
type MemoryUserStore struct{ m *MemoryStore }

// Create validates u, hashes password and saves the user. Emails are unique.
func (s *MemoryUserStore) Create(_ context.Context, u *models.User, password string) error {
	if err := prepareUser(u, password); err != nil {
		return err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	s.m.users[u.ID] = *u
	return nil
}

// FindByID returns the user with the given ID.
func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// FindByEmail returns the user registered with email.
func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, u := range s.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryTaskStore is the TaskStore view of a MemoryStore.
type MemoryTaskStore struct{ m *MemoryStore }

// Create validates and saves a task for an existing owner.
func (s *MemoryTaskStore) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	if err := prepareTask(t); err != nil {
		return nil, err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[t.OwnerID]; !ok {
		return nil, ErrNotFound
	}
	stored := *t
	stored.Collaborators = append([]string(nil), t.Collaborators...)
	s.m.tasks[t.ID] = stored
	return t, nil
}

// FindByID returns the task with the given ID.
func (s *MemoryTaskStore) FindByID(_ context.Context, id string) (*models.Task, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	t, ok := s.m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

// FindVisible returns the tasks u owns or collaborates on, oldest first.
func (s *MemoryTaskStore) FindVisible(_ context.Context, u *models.User) ([]models.Task, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var out []models.Task
	for _, t := range s.m.tasks {
		if t.VisibleTo(u) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SetComplete updates only the completion flag of a task.
func (s *MemoryTaskStore) SetComplete(_ context.Context, id string, complete bool) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t, ok := s.m.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.IsComplete = complete
	s.m.tasks[id] = t
	return nil
}

// Delete removes a task. Deleting a missing task is not an error.
func (s *MemoryTaskStore) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.tasks, id)
	return nil
}

// MemorySessionStore is the SessionStore view of a MemoryStore.
type MemorySessionStore struct{ m *MemoryStore }

// Create starts a session for userID that expires after ttl.
func (s *MemorySessionStore) Create(_ context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	sess := newSession(userID, ttl)
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.sessions[sess.Token] = *sess
	return sess, nil
}

// Get returns a live session by token.
func (s *MemorySessionStore) Get(_ context.Context, token string) (*models.Session, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	sess, ok := s.m.sessions[token]
	if !ok || sess.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Destroy deletes the session. Unknown tokens are ignored.
func (s *MemorySessionStore) Destroy(_ context.Context, token string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.sessions, token)
	return nil
}

// PurgeExpired deletes every session that expired at or before now.
func (s *MemorySessionStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	n := 0
	for token, sess := range s.m.sessions {
		if sess.Expired(now) {
			delete(s.m.sessions, token)
			n++
		}
	}
	return n, nil
}
