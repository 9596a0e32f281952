// Package middleware holds the per-request pipeline: session resolution,
// task loading, the access gate, request logging and tracing.
package middleware

import (
	"context"

	"social-todo/app/models"
)

type contextKey int

const (
	userKey contextKey = iota
	tasksKey
)

// WithUser returns a copy of ctx carrying the current user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// CurrentUser returns the user resolved for the request, or nil.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithTasks returns a copy of ctx carrying the tasks visible to the current user.
func WithTasks(ctx context.Context, tasks []models.TaskView) context.Context {
	return context.WithValue(ctx, tasksKey, tasks)
}

// Tasks returns the tasks loaded for the request, or nil.
func Tasks(ctx context.Context) []models.TaskView {
	tasks, _ := ctx.Value(tasksKey).([]models.TaskView)
	return tasks
}
