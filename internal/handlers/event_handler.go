package handlers

import (
	"net/http"

	"evnt/internal/access"
	"evnt/internal/forms"
	"evnt/internal/services"
	"evnt/models"

	"github.com/pocketbase/pocketbase/core"
)

const (
	addedToList     = "This evnt has been added to your evnt list."
	removedFromList = "This evnt has been removed from your attend-list"
)

type EventHandler struct {
	base
	events *services.EventService
}

func NewEventHandler(deps Deps, events *services.EventService) *EventHandler {
	return &EventHandler{base: newBase(deps), events: events}
}

type eventDetailView struct {
	Detail       *services.EventDetail
	Comment      forms.CommentForm
	ActionURL    string
	CanEdit      bool
	AttendAdd    string
	AttendRemove string
}

type tagView struct {
	Tag    *models.Tag
	Events []models.Event
}

func (h *EventHandler) List(e *core.RequestEvent) error {
	events, err := h.events.PublicEvents(e.Request.Context())
	if err != nil {
		return h.fail(e, err)
	}
	return h.render(e, http.StatusOK, "events.html", "Evnts", events)
}

func (h *EventHandler) Detail(e *core.RequestEvent) error {
	return h.renderDetail(e, http.StatusOK, forms.CommentForm{})
}

// Act handles the detail page form: an attendance button named after the
// event ID toggles the attend-list, anything else is a comment.
func (h *EventHandler) Act(e *core.RequestEvent) error {
	v := ViewerFrom(e)
	ctx := e.Request.Context()
	slug := e.Request.PathValue("slug")

	ev, err := h.events.Resolve(ctx, v, slug, access.Public)
	if err != nil {
		return h.fail(e, err)
	}

	if action := e.Request.FormValue(ev.ID); services.IsAttendanceAction(action) {
		if _, err := h.events.ToggleAttendance(ctx, v, slug, action); err != nil {
			return h.fail(e, err)
		}

		if action == services.AttendAdd {
			h.Monitor.TrackAttendance("add")
			return e.String(http.StatusOK, addedToList)
		}
		h.Monitor.TrackAttendance("remove")
		return e.String(http.StatusOK, removedFromList)
	}

	form := forms.CommentFormFromRequest(e.Request)
	if _, err := h.events.AddComment(ctx, v, slug, &form); err != nil {
		if forms.FieldErrors(err) != nil {
			return h.renderDetail(e, http.StatusOK, form)
		}
		return h.fail(e, err)
	}

	h.Monitor.TrackComment()
	return e.Redirect(http.StatusSeeOther, ev.URL())
}

// Tag - public events carrying a matching tag
func (h *EventHandler) Tag(e *core.RequestEvent) error {
	tag, events, err := h.events.TagEvents(e.Request.Context(), e.Request.PathValue("slug"))
	if err != nil {
		return h.fail(e, err)
	}

	return h.render(e, http.StatusOK, "tag.html", "#"+tag.Name, tagView{Tag: tag, Events: events})
}

func (h *EventHandler) renderDetail(e *core.RequestEvent, code int, form forms.CommentForm) error {
	v := ViewerFrom(e)

	detail, err := h.events.EventDetail(e.Request.Context(), v, e.Request.PathValue("slug"))
	if err != nil {
		return h.fail(e, err)
	}

	return h.render(e, code, "event_detail.html", detail.Event.Name, eventDetailView{
		Detail:       detail,
		Comment:      form,
		ActionURL:    detail.Event.URL(),
		CanEdit:      detail.Event.OwnedBy(v),
		AttendAdd:    services.AttendAdd,
		AttendRemove: services.AttendRemove,
	})
}
