package security

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// LoadAuthCookie authenticates browser requests from the auth token cookie
// when no Authorization header was sent.
func LoadAuthCookie(cookieName string) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Auth != nil {
			return e.Next()
		}

		cookie, err := e.Request.Cookie(cookieName)
		if err != nil || cookie.Value == "" {
			return e.Next()
		}

		record, err := e.App.FindAuthRecordByToken(cookie.Value, core.TokenTypeAuth)
		if err == nil {
			e.Auth = record
		}
		return e.Next()
	}
}

// RequireLogin sends anonymous page views to the login page and refuses
// anonymous writes.
func RequireLogin(e *core.RequestEvent) error {
	if e.Auth != nil {
		return e.Next()
	}

	if e.Request.Method == http.MethodGet || e.Request.Method == http.MethodHead {
		return e.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(e.Request.URL.RequestURI()))
	}
	return apis.NewForbiddenError("Please sign in first.", nil)
}

func SetAuthCookie(w http.ResponseWriter, name, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SafeRedirect keeps post-login redirects on this site.
func SafeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" {
		return "/"
	}
	return next
}
