package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"social-todo/app/middleware"
	"social-todo/app/models"
	"social-todo/app/services"
)

const (
	msgSaveFailed     = "Error saving task!"
	msgCompleteFailed = "Error completing task!"
	msgDeleteFailed   = "Error deleting task!"
)

// TaskController handles task mutations. Every route requires a current user.
type TaskController struct {
	Tasks  services.TaskStore
	Render *Renderer
	Logger *log.Logger
}

// NewTaskController creates a new TaskController.
func NewTaskController(tasks services.TaskStore, render *Renderer, logger *log.Logger) *TaskController {
	return &TaskController{Tasks: tasks, Render: render, Logger: logger}
}

// CreateTask handles POST /task/create.
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	fields := make([]string, 0, models.MaxCollaborators)
	for i := 1; i <= models.MaxCollaborators; i++ {
		fields = append(fields, r.PostFormValue("collaborator"+strconv.Itoa(i)))
	}
	collaborators := models.CleanCollaborators(fields...)
	for _, email := range collaborators {
		if !models.IsEmail(email) {
			c.Render.Index(w, r, []string{msgBadEmail})
			return
		}
	}

	task := &models.Task{
		OwnerID:       user.ID,
		Name:          strings.TrimSpace(r.PostFormValue("name")),
		Description:   strings.TrimSpace(r.PostFormValue("description")),
		IsComplete:    false,
		Collaborators: collaborators,
	}
	if _, err := c.Tasks.Create(r.Context(), task); err != nil {
		c.Logger.WithError(err).WithField("user_id", user.ID).Warn("task.create.failed")
		c.Render.Index(w, r, msgSaveFailed)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// SetCompletion handles POST /tasks/{id}/{action:complete|incomplete}.
func (c *TaskController) SetCompletion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	task, ok := c.authorize(w, r, vars["id"], msgCompleteFailed, false)
	if !ok {
		return
	}

	if err := c.Tasks.SetComplete(r.Context(), task.ID, vars["action"] == "complete"); err != nil {
		c.Logger.WithError(err).WithField("task_id", task.ID).Warn("task.complete.failed")
		c.Render.setFlash(w, msgCompleteFailed)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// DeleteTask handles POST /tasks/{id}/delete. Deleting a task that is
// already gone is not an error.
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := c.authorize(w, r, mux.Vars(r)["id"], msgDeleteFailed, true)
	if !ok {
		return
	}

	if err := c.Tasks.Delete(r.Context(), task.ID); err != nil {
		c.Logger.WithError(err).WithField("task_id", task.ID).Warn("task.delete.failed")
		c.Render.setFlash(w, msgDeleteFailed)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// authorize loads the task and checks the requester may change it. On failure
// it has already written the response. A missing task is flashed as failMsg
// unless missingOK is set.
func (c *TaskController) authorize(w http.ResponseWriter, r *http.Request, id, failMsg string, missingOK bool) (*models.Task, bool) {
	user := middleware.CurrentUser(r.Context())

	task, err := c.Tasks.FindByID(r.Context(), id)
	if err != nil {
		entry := c.Logger.WithField("task_id", id)
		missing := errors.Is(err, services.ErrNotFound)
		if !missing {
			entry = entry.WithError(err)
		}
		entry.Warn("task.lookup.failed")
		if !missing || !missingOK {
			c.Render.setFlash(w, failMsg)
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return nil, false
	}

	if !middleware.CanMutate(user, task) {
		c.Logger.WithFields(log.Fields{"task_id": id, "user_id": user.ID}).Warn("task.mutation.denied")
		w.WriteHeader(http.StatusForbidden)
		return nil, false
	}
	return task, true
}
