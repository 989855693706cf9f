package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02T15:04"

type Event struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Host         string          `json:"host"`
	Venue        string          `json:"venue"`
	Date         time.Time       `json:"date"`
	TicketPrice  decimal.Decimal `json:"ticket_price"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	ImageURL     string          `json:"image_url"`
	OwnerID      string          `json:"owner_id"`
	OwnerName    string          `json:"owner_name"`
	Private      bool            `json:"private"`
	Tags         []Tag           `json:"tags"`
	AttendeeIDs  []string        `json:"attendee_ids"`
}

// EventInput is sanitized write data for creating or updating an event.
type EventInput struct {
	Name        string
	CategoryID  string
	Host        string
	Venue       string
	Date        time.Time
	TicketPrice decimal.Decimal
	Description string
	Private     bool
	TagNames    []string
}

func (e *Event) OwnedBy(v Viewer) bool {
	return v.Authenticated() && e.OwnerID == v.ID
}

func (e *Event) AttendedBy(userID string) bool {
	return userID != "" && slices.Contains(e.AttendeeIDs, userID)
}

func (e *Event) TagIDs() []string {
	ids := make([]string, 0, len(e.Tags))
	for _, tag := range e.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

func (e *Event) HasTag(tagID string) bool {
	for _, tag := range e.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}

// URL is the detail page path; private events live under the owner's dashboard.
func (e *Event) URL() string {
	if e.Private {
		return "/manage/private/" + e.Slug
	}
	return "/events/" + e.Slug
}

func (e *Event) DateLabel() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format("Mon, 02 Jan 2006 15:04")
}

func (e *Event) PriceLabel() string {
	if e.TicketPrice.IsZero() {
		return "Free"
	}
	return e.TicketPrice.StringFixed(2)
}

// Input converts a stored event back into editable form data.
func (e *Event) Input() EventInput {
	names := make([]string, 0, len(e.Tags))
	for _, tag := range e.Tags {
		names = append(names, tag.Name)
	}
	return EventInput{
		Name:        e.Name,
		CategoryID:  e.CategoryID,
		Host:        e.Host,
		Venue:       e.Venue,
		Date:        e.Date,
		TicketPrice: e.TicketPrice,
		Description: e.Description,
		Private:     e.Private,
		TagNames:    names,
	}
}

// UniqueEvents merges event lists keeping the first occurrence of every ID.
func UniqueEvents(lists ...[]Event) []Event {
	seen := make(map[string]struct{})
	var out []Event
	for _, list := range lists {
		for _, ev := range list {
			if _, ok := seen[ev.ID]; ok {
				continue
			}
			seen[ev.ID] = struct{}{}
			out = append(out, ev)
		}
	}
	return out
}

// SortByDate orders events by date, then ID, so listings are stable.
func SortByDate(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
