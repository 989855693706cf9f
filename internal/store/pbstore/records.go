package pbstore

import (
	"slices"
	"strings"

	"evnt/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

func toEvent(r *core.Record) models.Event {
	ev := models.Event{
		ID:          r.Id,
		Name:        r.GetString("name"),
		Slug:        r.GetString("slug"),
		CategoryID:  r.GetString("category"),
		Host:        r.GetString("host"),
		Venue:       r.GetString("venue"),
		Date:        r.GetDateTime("date").Time(),
		Description: r.GetString("description"),
		Image:       r.GetString("image"),
		OwnerID:     r.GetString("owner"),
		Private:     r.GetBool("private"),
		AttendeeIDs: r.GetStringSlice("attendees"),
	}

	if price, err := decimal.NewFromString(r.GetString("ticket_price")); err == nil {
		ev.TicketPrice = price
	}
	if ev.Image != "" {
		ev.ImageURL = "/api/files/" + r.BaseFilesPath() + "/" + ev.Image
	}
	if category := r.ExpandedOne("category"); category != nil {
		ev.CategoryName = category.GetString("name")
	}
	if owner := r.ExpandedOne("owner"); owner != nil {
		ev.OwnerName = owner.GetString("name")
		if ev.OwnerName == "" {
			ev.OwnerName = owner.GetString("email")
		}
	}
	for _, tag := range r.ExpandedAll("tags") {
		ev.Tags = append(ev.Tags, toTag(tag))
	}
	slices.SortFunc(ev.Tags, func(a, b models.Tag) int { return strings.Compare(a.Slug, b.Slug) })

	return ev
}

func toCategory(r *core.Record) models.Category {
	return models.Category{
		ID:   r.Id,
		Name: r.GetString("name"),
		Slug: r.GetString("slug"),
	}
}

func toTag(r *core.Record) models.Tag {
	return models.Tag{
		ID:   r.Id,
		Name: r.GetString("name"),
		Slug: r.GetString("slug"),
	}
}

func toComment(r *core.Record) models.Comment {
	return models.Comment{
		ID:       r.Id,
		EventID:  r.GetString("event"),
		Username: r.GetString("username"),
		Body:     r.GetString("comment"),
		Created:  r.GetDateTime("created").Time(),
	}
}
