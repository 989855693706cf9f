package handlers

import (
	"net/http"

	"evnt/internal/services"

	"github.com/pocketbase/pocketbase/core"
)

type CategoryHandler struct {
	base
	events *services.EventService
}

func NewCategoryHandler(deps Deps, events *services.EventService) *CategoryHandler {
	return &CategoryHandler{base: newBase(deps), events: events}
}

// Home - upcoming public events and the category index
func (h *CategoryHandler) Home(e *core.RequestEvent) error {
	page, err := h.events.Home(e.Request.Context())
	if err != nil {
		return h.fail(e, err)
	}
	return h.render(e, http.StatusOK, "index.html", "", page)
}

// List - every category with its public events
func (h *CategoryHandler) List(e *core.RequestEvent) error {
	listing, err := h.events.CategoryList(e.Request.Context())
	if err != nil {
		return h.fail(e, err)
	}
	return h.render(e, http.StatusOK, "categories.html", "Categories", listing)
}

// Detail - public events of one category plus the viewer's own private ones
func (h *CategoryHandler) Detail(e *core.RequestEvent) error {
	detail, err := h.events.CategoryDetail(e.Request.Context(), ViewerFrom(e), e.Request.PathValue("slug"))
	if err != nil {
		return h.fail(e, err)
	}
	return h.render(e, http.StatusOK, "category_detail.html", detail.Category.Name, detail)
}
