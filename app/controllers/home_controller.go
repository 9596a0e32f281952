package controllers

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// HomeController handles the home page and the health check.
type HomeController struct {
	Render *Renderer
	Ping   func(ctx context.Context) error
	Logger *log.Logger
}

// NewHomeController creates a new HomeController. ping may be nil.
func NewHomeController(render *Renderer, ping func(ctx context.Context) error, logger *log.Logger) *HomeController {
	return &HomeController{Render: render, Ping: ping, Logger: logger}
}

// Index handles GET /.
func (c *HomeController) Index(w http.ResponseWriter, r *http.Request) {
	c.Render.Index(w, r, c.Render.takeFlash(w, r))
}

// Health handles GET /healthz.
func (c *HomeController) Health(w http.ResponseWriter, r *http.Request) {
	if c.Ping != nil {
		if err := c.Ping(r.Context()); err != nil {
			c.Logger.WithError(err).Warn("health.ping.failed")
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte("ok"))
}
