package controllers

import (
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"

	log "github.com/sirupsen/logrus"

	"social-todo/app/middleware"
	"social-todo/app/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookie = "todo.flash"

type indexView struct {
	CurrentUser       *models.User
	Tasks             []models.TaskView
	Errors            []string
	CollaboratorSlots []int
}

// Renderer writes the server-rendered pages and carries flash messages
// across redirects.
type Renderer struct {
	tmpl   *template.Template
	logger *log.Logger
	secure bool
	slots  []int
}

// NewRenderer parses the embedded templates. secure marks the flash cookie
// Secure, matching the session cookie.
func NewRenderer(logger *log.Logger, secure bool) *Renderer {
	slots := make([]int, models.MaxCollaborators)
	for i := range slots {
		slots[i] = i + 1
	}
	return &Renderer{
		tmpl:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
		logger: logger,
		secure: secure,
		slots:  slots,
	}
}

// Index renders the home page for the current request. errs may be a string,
// a []string or nil.
func (rd *Renderer) Index(w http.ResponseWriter, r *http.Request, errs any) {
	view := indexView{
		CurrentUser: middleware.CurrentUser(r.Context()),
		Tasks:       middleware.Tasks(r.Context()),
		Errors:      errorList(errs),

		CollaboratorSlots: rd.slots,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rd.tmpl.ExecuteTemplate(w, "index.html", view); err != nil {
		rd.logger.WithError(err).Error("render.index.failed")
	}
}

func errorList(errs any) []string {
	switch e := errs.(type) {
	case string:
		if e == "" {
			return nil
		}
		return []string{e}
	case []string:
		return e
	default:
		return nil
	}
}

// setFlash stores a message to be shown by the next rendered page.
func (rd *Renderer) setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
		Secure:   rd.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the pending message, if any, and clears it.
func (rd *Renderer) takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, HttpOnly: true, Secure: rd.secure})
	msg, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
