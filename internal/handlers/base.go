package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"evnt/internal/flash"
	"evnt/internal/render"
	"evnt/internal/status"
	"evnt/models"
	"evnt/monitoring"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
)

// Deps are shared by every page handler.
type Deps struct {
	Views   *render.Renderer
	Flash   flash.Store
	Monitor *monitoring.Monitor
}

type base struct {
	Deps
}

func newBase(deps Deps) base {
	if deps.Flash == nil {
		deps.Flash = flash.Discard
	}
	return base{Deps: deps}
}

// ViewerFrom maps the authenticated record, if any, to a Viewer.
func ViewerFrom(e *core.RequestEvent) models.Viewer {
	if e.Auth == nil {
		return models.Viewer{}
	}

	name := e.Auth.GetString("name")
	if name == "" {
		name = e.Auth.Email()
	}
	return models.Viewer{
		ID:        e.Auth.Id,
		Name:      name,
		Superuser: e.Auth.IsSuperuser(),
	}
}

func (b *base) render(e *core.RequestEvent, code int, view, title string, data any, extra ...flash.Message) error {
	v := ViewerFrom(e)

	msgs, err := b.Flash.Pop(e.Request.Context(), v.ID)
	if err != nil {
		slog.Warn("failed to load flash messages", "userID", v.ID, "error", err)
	}
	msgs = append(msgs, extra...)

	html, err := b.Views.Render(view, render.Page{
		Title:    title,
		Viewer:   v,
		Messages: msgs,
		Data:     data,
	})
	if err != nil {
		slog.Error("failed to render page", "view", view, "error", err)
		return apis.NewInternalServerError("Failed to render page", nil)
	}

	b.Monitor.TrackView(strings.TrimSuffix(view, ".html"))
	return e.HTML(code, html)
}

func (b *base) notify(e *core.RequestEvent, msg flash.Message) {
	v := ViewerFrom(e)
	if err := b.Flash.Push(e.Request.Context(), v.ID, msg); err != nil {
		slog.Warn("failed to store flash message", "userID", v.ID, "error", err)
	}
}

// fail maps service errors to API errors.
func (b *base) fail(e *core.RequestEvent, err error) error {
	switch {
	case errors.Is(err, status.ErrNotFound):
		b.Monitor.TrackDenied("not_found")
		return apis.NewNotFoundError("The requested evnt could not be found.", nil)
	case errors.Is(err, status.ErrForbidden):
		b.Monitor.TrackDenied("forbidden")
		return apis.NewForbiddenError("You are not allowed to do that.", nil)
	case errors.Is(err, status.ErrUnauthenticated):
		b.Monitor.TrackDenied("unauthenticated")
		return apis.NewForbiddenError("Please sign in first.", nil)
	case errors.Is(err, status.ErrUnknownAction):
		return apis.NewBadRequestError("Unknown action.", nil)
	}

	slog.Error("request failed", "method", e.Request.Method, "path", e.Request.URL.Path, "error", err)
	return apis.NewInternalServerError("Something went wrong.", nil)
}

// ErrorPages renders API errors from site routes as HTML. PocketBase's own
// /api and dashboard routes keep their JSON replies.
func ErrorPages(deps Deps) func(e *core.RequestEvent) error {
	b := newBase(deps)

	return func(e *core.RequestEvent) error {
		return b.errorPage(e, e.Next())
	}
}

func (b *base) errorPage(e *core.RequestEvent, err error) error {
	if err == nil {
		return nil
	}

	path := e.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/_/") {
		return err
	}

	var apiErr *router.ApiError
	if !errors.As(err, &apiErr) || e.Written() {
		return err
	}

	return b.render(e, apiErr.Status, "error.html", http.StatusText(apiErr.Status), errorView{
		Status:  apiErr.Status,
		Message: apiErr.Message,
	})
}

type errorView struct {
	Status  int
	Message string
}
