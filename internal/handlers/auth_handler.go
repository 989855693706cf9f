package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"evnt/internal/flash"
	"evnt/internal/store"
	"evnt/security"

	"github.com/pocketbase/pocketbase/core"
)

// AuthHandler signs users in with their PocketBase password and keeps the
// auth token in a cookie for the HTML pages.
type AuthHandler struct {
	base
	cookieName   string
	cookieSecure bool
}

func NewAuthHandler(deps Deps, cookieName string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		base:         newBase(deps),
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
	}
}

type loginView struct {
	Email string
	Next  string
	Error string
}

func (h *AuthHandler) LoginForm(e *core.RequestEvent) error {
	if e.Auth != nil {
		return e.Redirect(http.StatusSeeOther, "/")
	}
	return h.render(e, http.StatusOK, "login.html", "Sign in", loginView{
		Next: security.SafeRedirect(e.Request.URL.Query().Get("next")),
	})
}

func (h *AuthHandler) Login(e *core.RequestEvent) error {
	email := strings.TrimSpace(e.Request.FormValue("email"))
	password := e.Request.FormValue("password")
	next := security.SafeRedirect(e.Request.FormValue("next"))

	user := authenticate(e.App, email, password)
	if user == nil {
		slog.Info("failed sign in", "email", email)
		return h.render(e, http.StatusOK, "login.html", "Sign in", loginView{
			Email: email,
			Next:  next,
			Error: "Invalid email or password.",
		})
	}

	token, err := user.NewAuthToken()
	if err != nil {
		return h.fail(e, err)
	}

	security.SetAuthCookie(e.Response, h.cookieName, token, h.cookieSecure)
	e.Auth = user
	h.notify(e, flash.Message{Level: flash.Info, Text: "Welcome back!"})
	return e.Redirect(http.StatusSeeOther, next)
}

// authenticate checks site accounts first, then superusers.
func authenticate(app core.App, email, password string) *core.Record {
	for _, collection := range []string{store.CollectionUsers, core.CollectionNameSuperusers} {
		record, err := app.FindAuthRecordByEmail(collection, email)
		if err == nil && record.ValidatePassword(password) {
			return record
		}
	}
	return nil
}

func (h *AuthHandler) Logout(e *core.RequestEvent) error {
	security.ClearAuthCookie(e.Response, h.cookieName)
	return e.Redirect(http.StatusSeeOther, "/")
}
