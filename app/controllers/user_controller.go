package controllers

import (
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"social-todo/app/middleware"
	"social-todo/app/models"
	"social-todo/app/services"
)

const (
	msgPasswordMismatch = "Password and password confirmation do not match."
	msgBadEmail         = "Bad email"
	msgRegisterFailed   = "Error registering you!"
	msgNoSuchUser       = "Bad login, no such user"
	msgBadPassword      = "Bad password"
	msgLoginFailed      = "Error logging in!"
)

// UserController handles registration, login and logout.
type UserController struct {
	Users      services.UserStore
	Sessions   services.SessionStore
	Cookies    middleware.SessionCookies
	SessionTTL time.Duration
	Render     *Renderer
	Logger     *log.Logger
}

// NewUserController creates a new UserController.
func NewUserController(users services.UserStore, sessions services.SessionStore, cookies middleware.SessionCookies,
	sessionTTL time.Duration, render *Renderer, logger *log.Logger) *UserController {
	return &UserController{
		Users:      users,
		Sessions:   sessions,
		Cookies:    cookies,
		SessionTTL: sessionTTL,
		Render:     render,
		Logger:     logger,
	}
}

// Register handles POST /user/register.
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if password != r.PostFormValue("passwordConfirmation") {
		c.Render.Index(w, r, msgPasswordMismatch)
		return
	}
	if !models.IsEmail(email) {
		c.Render.Index(w, r, msgBadEmail)
		return
	}

	user := &models.User{Email: email, Name: strings.TrimSpace(r.PostFormValue("name"))}
	if err := c.Users.Create(r.Context(), user, password); err != nil {
		c.Logger.WithError(err).WithField("email", email).Warn("user.register.failed")
		c.Render.Index(w, r, msgRegisterFailed)
		return
	}
	if err := c.startSession(w, r, user); err != nil {
		c.Logger.WithError(err).WithField("user_id", user.ID).Error("session.create.failed")
		c.Render.Index(w, r, msgRegisterFailed)
		return
	}

	c.Logger.WithField("user_id", user.ID).Info("user.registered")
	http.Redirect(w, r, "/", http.StatusFound)
}

// Login handles POST /user/login.
func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))

	user, err := c.Users.FindByEmail(r.Context(), email)
	if err != nil {
		c.Render.Index(w, r, msgNoSuchUser)
		return
	}

	ok, err := user.ComparePassword(r.PostFormValue("password"))
	if err != nil || !ok {
		c.Render.Index(w, r, msgBadPassword)
		return
	}

	if err := c.startSession(w, r, user); err != nil {
		c.Logger.WithError(err).WithField("user_id", user.ID).Error("session.create.failed")
		c.Render.Index(w, r, msgLoginFailed)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout handles GET /user/logout. It succeeds with or without a session.
func (c *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := c.Cookies.Token(r); err == nil {
		if err := c.Sessions.Destroy(r.Context(), token); err != nil {
			c.Logger.WithError(err).Warn("session.destroy.failed")
		}
	}
	http.SetCookie(w, c.Cookies.Clear())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (c *UserController) startSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sess, err := c.Sessions.Create(r.Context(), user.ID, c.SessionTTL)
	if err != nil {
		return err
	}
	cookie, err := c.Cookies.Issue(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, cookie)
	return nil
}
