package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"evnt/internal/access"
	"evnt/internal/flash"
	"evnt/internal/forms"
	"evnt/internal/services"
	"evnt/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

const (
	msgPosted    = "Evnt posted successfully."
	msgNotPosted = "Your evnt was not posted. Try again."
	msgSaved     = "Changes saved!"
	msgNotSaved  = "Error while updating evnt."
)

// ManageHandler serves the signed in user's own events. Every route is
// mounted behind security.RequireLogin.
type ManageHandler struct {
	base
	events *services.EventService
}

func NewManageHandler(deps Deps, events *services.EventService) *ManageHandler {
	return &ManageHandler{base: newBase(deps), events: events}
}

type eventFormView struct {
	Heading    string
	Action     string
	Form       forms.EventForm
	Categories []models.Category
}

func (h *ManageHandler) Dashboard(e *core.RequestEvent) error {
	return h.render(e, http.StatusOK, "manage.html", "Manage", nil)
}

func (h *ManageHandler) PrivateList(e *core.RequestEvent) error {
	events, err := h.events.PrivateEvents(e.Request.Context(), ViewerFrom(e))
	if err != nil {
		return h.fail(e, err)
	}
	return h.render(e, http.StatusOK, "private_events.html", "Private evnts", events)
}

func (h *ManageHandler) PrivateDetail(e *core.RequestEvent) error {
	detail, err := h.events.PrivateEventDetail(e.Request.Context(), ViewerFrom(e), e.Request.PathValue("slug"))
	if err != nil {
		return h.fail(e, err)
	}
	return h.render(e, http.StatusOK, "private_event_detail.html", detail.Event.Name, detail)
}

func (h *ManageHandler) AttendList(e *core.RequestEvent) error {
	events, err := h.events.AttendList(e.Request.Context(), ViewerFrom(e))
	if err != nil {
		return h.fail(e, err)
	}
	return h.render(e, http.StatusOK, "attend_list.html", "Attending", events)
}

func (h *ManageHandler) AddForm(e *core.RequestEvent) error {
	return h.renderForm(e, "Post an evnt", "/manage/add", forms.EventForm{})
}

func (h *ManageHandler) Add(e *core.RequestEvent) error {
	ctx := e.Request.Context()
	form := forms.EventFormFromRequest(e.Request)

	ev, err := h.events.Create(ctx, ViewerFrom(e), &form, uploadedImage(e))
	if err != nil {
		if forms.FieldErrors(err) != nil {
			return h.renderForm(e, "Post an evnt", "/manage/add", form,
				flash.Message{Level: flash.Error, Text: msgNotPosted})
		}
		return h.fail(e, err)
	}

	h.Monitor.TrackMutation("create")
	h.notify(e, flash.Message{Level: flash.Success, Text: msgPosted})
	return e.Redirect(http.StatusSeeOther, ev.URL())
}

func (h *ManageHandler) EditForm(e *core.RequestEvent) error {
	slug := e.Request.PathValue("slug")

	ev, err := h.events.Resolve(e.Request.Context(), ViewerFrom(e), slug, access.Edit)
	if err != nil {
		return h.fail(e, err)
	}
	return h.renderForm(e, "Edit "+ev.Name, "/manage/edit/"+ev.Slug, forms.EventFormFromEvent(ev))
}

func (h *ManageHandler) Edit(e *core.RequestEvent) error {
	ctx := e.Request.Context()
	slug := e.Request.PathValue("slug")
	form := forms.EventFormFromRequest(e.Request)

	ev, err := h.events.Edit(ctx, ViewerFrom(e), slug, &form, uploadedImage(e))
	if err != nil {
		if forms.FieldErrors(err) != nil {
			return h.renderForm(e, "Edit "+form.Name, "/manage/edit/"+slug, form,
				flash.Message{Level: flash.Error, Text: msgNotSaved})
		}
		return h.fail(e, err)
	}

	h.Monitor.TrackMutation("edit")
	h.notify(e, flash.Message{Level: flash.Success, Text: msgSaved})
	return e.Redirect(http.StatusSeeOther, ev.URL())
}

func (h *ManageHandler) DeleteConfirm(e *core.RequestEvent) error {
	ev, err := h.events.Resolve(e.Request.Context(), ViewerFrom(e), e.Request.PathValue("slug"), access.Delete)
	if err != nil {
		return h.fail(e, err)
	}
	return h.render(e, http.StatusOK, "delete_event.html", "Delete "+ev.Name, ev)
}

func (h *ManageHandler) Delete(e *core.RequestEvent) error {
	if err := h.events.Delete(e.Request.Context(), ViewerFrom(e), e.Request.PathValue("slug")); err != nil {
		return h.fail(e, err)
	}

	h.Monitor.TrackMutation("delete")
	return e.Redirect(http.StatusSeeOther, "/")
}

func (h *ManageHandler) renderForm(e *core.RequestEvent, heading, action string, form forms.EventForm, extra ...flash.Message) error {
	categories, err := h.events.Categories(e.Request.Context())
	if err != nil {
		return h.fail(e, err)
	}

	return h.render(e, http.StatusOK, "event_form.html", heading, eventFormView{
		Heading:    heading,
		Action:     action,
		Form:       form,
		Categories: categories,
	}, extra...)
}

// uploadedImage returns the first file of the image field, or nil when the
// form carries none.
func uploadedImage(e *core.RequestEvent) *filesystem.File {
	files, err := e.FindUploadedFiles("image")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			slog.Warn("failed to read uploaded image", "error", err)
		}
		return nil
	}
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
