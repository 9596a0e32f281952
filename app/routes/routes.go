package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"social-todo/app/controllers"
	"social-todo/app/middleware"
)

// Handlers groups the controllers and per-request middleware served by the router.
type Handlers struct {
	Home     *controllers.HomeController
	Users    *controllers.UserController
	Tasks    *controllers.TaskController
	Sessions *middleware.SessionResolver
	// LoadTasks runs on the home page only.
	LoadTasks mux.MiddlewareFunc
	// Observe wraps every matched route, after session resolution.
	Observe []mux.MiddlewareFunc
}

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, h Handlers) {
	router.Use(h.Sessions.Middleware)
	for _, mw := range h.Observe {
		router.Use(mw)
	}

	router.Handle("/", h.LoadTasks(http.HandlerFunc(h.Home.Index))).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.Home.Health).Methods(http.MethodGet)
	router.HandleFunc("/user/register", h.Users.Register).Methods(http.MethodPost)
	router.HandleFunc("/user/login", h.Users.Login).Methods(http.MethodPost)
	router.HandleFunc("/user/logout", h.Users.Logout).Methods(http.MethodGet)

	// Everything below requires a logged-in user.
	gated := router.NewRoute().Subrouter()
	gated.Use(middleware.RequireUser)
	gated.HandleFunc("/tasks/{id}/{action:complete|incomplete}", h.Tasks.SetCompletion).Methods(http.MethodPost)
	gated.HandleFunc("/tasks/{id}/delete", h.Tasks.DeleteTask).Methods(http.MethodPost)
	gated.HandleFunc("/task/create", h.Tasks.CreateTask).Methods(http.MethodPost)
}
