package handlers

import (
	"errors"
	"net/http"

	"evnt/internal/services"
	"evnt/internal/status"
	"evnt/models"

	"github.com/pocketbase/pocketbase/core"
)

const invalidSearch = "The entry you made is invalid :( "

type SearchHandler struct {
	base
	events *services.EventService
}

func NewSearchHandler(deps Deps, events *services.EventService) *SearchHandler {
	return &SearchHandler{base: newBase(deps), events: events}
}

type searchView struct {
	Query   string
	Results []models.Event
}

func (h *SearchHandler) Search(e *core.RequestEvent) error {
	query := e.Request.URL.Query().Get("search")

	results, err := h.events.Search(e.Request.Context(), ViewerFrom(e), query)
	if errors.Is(err, status.ErrInvalidQuery) {
		return e.String(http.StatusBadRequest, invalidSearch)
	}
	if err != nil {
		return h.fail(e, err)
	}

	return h.render(e, http.StatusOK, "search.html", "Search", searchView{
		Query:   query,
		Results: results,
	})
}
