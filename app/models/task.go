package models

import (
	"strings"
	"time"
)

// MaxCollaborators is the number of collaborator slots offered on a task.
const MaxCollaborators = 3

// Task represents a to-do item owned by one user and shared by email.
type Task struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id" validate:"required"`
	Name          string    `json:"name" validate:"min=1,max=500"`
	Description   string    `json:"description" validate:"min=1,max=500"`
	IsComplete    bool      `json:"is_complete"`
	Collaborators []string  `json:"collaborators" validate:"max=3,dive,email"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate checks the task against its schema before it is saved.
func (t *Task) Validate() error {
	return validate.Struct(t)
}

// HasCollaborator reports whether email is one of the task's collaborators.
func (t *Task) HasCollaborator(email string) bool {
	if email == "" {
		return false
	}
	for _, c := range t.Collaborators {
		if c == email {
			return true
		}
	}
	return false
}

// VisibleTo reports whether the task belongs to, or is shared with, the user.
func (t *Task) VisibleTo(u *User) bool {
	if u == nil {
		return false
	}
	return t.OwnerID == u.ID || t.HasCollaborator(u.Email)
}

// TaskView is a task decorated for a single response. Mine is never stored.
type TaskView struct {
	Task
	Mine bool `json:"mine"`
}

// NewTaskViews annotates tasks with ownership relative to the viewer.
func NewTaskViews(tasks []Task, viewer *User) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, TaskView{Task: t, Mine: viewer != nil && t.OwnerID == viewer.ID})
	}
	return views
}

// CleanCollaborators trims the submitted collaborator fields and drops empty ones.
func CleanCollaborators(fields ...string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
